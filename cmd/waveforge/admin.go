package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/waveforge/waveforge/internal/adapter/postgres"
	"github.com/waveforge/waveforge/internal/config"
	"github.com/waveforge/waveforge/internal/domain/tenant"
	"github.com/waveforge/waveforge/internal/domain/user"
	"github.com/waveforge/waveforge/internal/port/store"
	"github.com/waveforge/waveforge/internal/service"
)

// runAdmin dispatches platform admin subcommands.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "create-user":
		return runAdminCreateUser(args[1:])
	case "list-users":
		return runAdminListUsers(args[1:])
	case "create-tenant":
		return runAdminCreateTenant(args[1:])
	case "list-tenants":
		return runAdminListTenants(args[1:])
	case "set-status":
		return runAdminSetStatus(args[1:])
	case "activate-domain":
		return runAdminActivateDomain(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: waveforge admin <command> [options]

Commands:
  create-user      Create a platform account (owner or admin)
  list-users       List all accounts
  create-tenant    Create a storefront tenant for an owner account
  list-tenants     List all tenants
  set-status       Activate or deactivate a tenant
  activate-domain  Mark a custom domain as verified
  help             Show this help message

Examples:
  waveforge admin create-user --email beats@night.example --name "Night Audio"
  waveforge admin create-user --email ops@waveforge.app --name "Ops" --admin
  waveforge admin create-tenant --name "Night Audio" --slug night --owner <user-id> --plan pro
  waveforge admin set-status --tenant <tenant-id> --status inactive
  waveforge admin activate-domain --domain beats.nightaudio.com
`)
}

func loadAdminDeps() (store.Store, *service.Tenants, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	st := postgres.NewStore(pool)
	tenants := service.NewTenants(st, nil)

	cleanup := func() {
		pool.Close()
	}
	return st, tenants, cleanup, nil
}

func runAdminCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	email := fs.String("email", "", "account email address (required)")
	name := fs.String("name", "", "display name (required)")
	password := fs.String("password", "", "password (prompted if not provided)")
	admin := fs.Bool("admin", false, "grant platform admin role")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	pass := *password
	if pass == "" {
		var err error
		pass, err = promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pass != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	token, err := newAPIToken()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	role := user.RoleOwner
	if *admin {
		role = user.RoleAdmin
	}

	st, _, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        *email,
		Name:         *name,
		Role:         role,
		PasswordHash: string(hash),
		APIToken:     token,
		Enabled:      true,
		CreatedAt:    time.Now(),
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(os.Stderr, "User created: %s (id=%s, role=%s)\n", u.Email, u.ID, u.Role)
	fmt.Fprintf(os.Stderr, "API token: %s\n", token)
	return nil
}

func runAdminListUsers(args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, _, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	users, err := st.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Println("No users found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tENABLED")
	for i := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n",
			users[i].ID, users[i].Email, users[i].Name, users[i].Role, users[i].Enabled)
	}
	return w.Flush()
}

func runAdminCreateTenant(args []string) error {
	fs := flag.NewFlagSet("create-tenant", flag.ContinueOnError)
	name := fs.String("name", "", "storefront name (required)")
	slug := fs.String("slug", "", "subdomain slug (required)")
	owner := fs.String("owner", "", "owner user id (required)")
	plan := fs.String("plan", "launch", "plan: launch, pro or studio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *slug == "" || *owner == "" {
		return fmt.Errorf("--name, --slug and --owner are required")
	}

	_, tenants, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	t, err := tenants.Create(context.Background(), tenant.CreateRequest{
		Name:        *name,
		Slug:        *slug,
		Plan:        tenant.Plan(*plan),
		OwnerUserID: *owner,
	})
	if err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Tenant created: %s (id=%s, slug=%s, plan=%s)\n", t.Name, t.ID, t.Slug, t.Plan)
	return nil
}

func runAdminListTenants(args []string) error {
	fs := flag.NewFlagSet("list-tenants", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, tenants, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	all, err := tenants.List(context.Background())
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	if len(all) == 0 {
		fmt.Println("No tenants found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSLUG\tPLAN\tSTATUS\tCUSTOM_DOMAIN")
	for i := range all {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			all[i].ID, all[i].Name, all[i].Slug, all[i].Plan, all[i].Status, all[i].CustomDomain)
	}
	return w.Flush()
}

func runAdminSetStatus(args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ContinueOnError)
	tenantID := fs.String("tenant", "", "tenant id (required)")
	status := fs.String("status", "", "active or inactive (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *tenantID == "" {
		return fmt.Errorf("--tenant is required")
	}
	s := tenant.Status(*status)
	if s != tenant.StatusActive && s != tenant.StatusInactive {
		return fmt.Errorf("--status must be active or inactive")
	}

	_, tenants, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := tenants.SetStatus(context.Background(), *tenantID, s); err != nil {
		return fmt.Errorf("set status: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Tenant %s is now %s\n", *tenantID, s)
	return nil
}

func runAdminActivateDomain(args []string) error {
	fs := flag.NewFlagSet("activate-domain", flag.ContinueOnError)
	dom := fs.String("domain", "", "custom domain hostname (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dom == "" {
		return fmt.Errorf("--domain is required")
	}

	_, tenants, cleanup, err := loadAdminDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := tenants.ActivateDomain(context.Background(), *dom); err != nil {
		return fmt.Errorf("activate domain: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Domain %s activated\n", *dom)
	return nil
}

// newAPIToken returns a random bearer token for the account.
func newAPIToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "wf_" + hex.EncodeToString(b), nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
