package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/tenant"
	"github.com/waveforge/waveforge/internal/port/messagequeue"
	"github.com/waveforge/waveforge/internal/port/store"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

// reservedSlugs can never name a storefront; they collide with platform
// routing.
var reservedSlugs = map[string]bool{
	"www": true, "api": true, "app": true, "admin": true, "mail": true,
}

// Tenants manages the tenant lifecycle and the owner settings surface
// (slug and custom-domain mutation). Resolution is the Resolver's job.
type Tenants struct {
	store     store.TenantStore
	publisher messagequeue.Publisher
}

// NewTenants creates the tenant service. publisher may be nil.
func NewTenants(s store.TenantStore, p messagequeue.Publisher) *Tenants {
	return &Tenants{store: s, publisher: p}
}

// Create validates and creates a new tenant. Invoked at SaaS signup (plan
// checkout completion) and from the platform admin CLI.
func (s *Tenants) Create(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: tenant name is required", domain.ErrValidation)
	}
	if err := validateSlug(req.Slug); err != nil {
		return nil, err
	}
	if !req.Plan.Valid() {
		return nil, fmt.Errorf("%w: unknown plan %q", domain.ErrValidation, req.Plan)
	}
	if req.OwnerUserID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrValidation)
	}

	t, err := s.store.CreateTenant(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "tenants.created", t)
	return t, nil
}

// Get returns a tenant by id.
func (s *Tenants) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

// List returns all tenants (platform admin).
func (s *Tenants) List(ctx context.Context) ([]tenant.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// UpdateSettings applies owner-mutable settings. Only the tenant's owner
// (or a platform admin) may call this; the handler enforces identity.
func (s *Tenants) UpdateSettings(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	t, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Slug != "" && req.Slug != t.Slug {
		if err := validateSlug(req.Slug); err != nil {
			return nil, err
		}
		t.Slug = req.Slug
	}
	if req.Branding != nil {
		t.Branding = *req.Branding
	}

	if req.CustomDomain != nil {
		d := strings.ToLower(strings.TrimSpace(*req.CustomDomain))
		if d == "" {
			t.CustomDomain = ""
		} else {
			if !t.Plan.AllowsCustomDomain() {
				return nil, fmt.Errorf("%w: plan %q does not include custom domains", domain.ErrValidation, t.Plan)
			}
			// The domain row starts pending; DNS verification flips it to
			// active out-of-band.
			if _, err := s.store.UpsertTenantDomain(ctx, t.ID, d); err != nil {
				return nil, err
			}
			t.CustomDomain = d
		}
	}

	if err := s.store.UpdateTenant(ctx, t); err != nil {
		return nil, err
	}
	s.publish(ctx, "tenants.updated", t)
	return t, nil
}

// SetStatus toggles a tenant active/inactive (platform admin only; tenants
// are never hard-deleted).
func (s *Tenants) SetStatus(ctx context.Context, id string, status tenant.Status) error {
	if status != tenant.StatusActive && status != tenant.StatusInactive {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.store.SetTenantStatus(ctx, id, status)
}

// ActivateDomain marks a custom domain verified. Models the out-of-band
// DNS check completing; exposed to platform admins.
func (s *Tenants) ActivateDomain(ctx context.Context, dom string) error {
	dom = strings.ToLower(strings.TrimSpace(dom))
	if dom == "" {
		return fmt.Errorf("%w: domain is required", domain.ErrValidation)
	}
	return s.store.SetDomainStatus(ctx, dom, tenant.DomainActive)
}

func (s *Tenants) publish(ctx context.Context, subject string, t *tenant.Tenant) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{"tenant_id": t.ID, "slug": t.Slug})
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		slog.Warn("tenant event publish failed", "subject", subject, "error", err)
	}
}

// validateSlug enforces the subdomain naming rules: lowercase
// alphanumerics and hyphens, at least 3 characters, not reserved.
func validateSlug(slug string) error {
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: invalid slug %q: must be 3-63 lowercase alphanumeric characters or hyphens", domain.ErrValidation, slug)
	}
	if reservedSlugs[slug] {
		return fmt.Errorf("%w: slug %q is reserved", domain.ErrValidation, slug)
	}
	return nil
}
