package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/tenant"
)

const tenantColumns = `id, name, slug, custom_domain, plan, status, owner_user_id, branding, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (*tenant.Tenant, error) {
	var (
		t            tenant.Tenant
		customDomain *string
		brandingJSON []byte
	)
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &customDomain, &t.Plan, &t.Status,
		&t.OwnerUserID, &brandingJSON, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customDomain != nil {
		t.CustomDomain = *customDomain
	}
	if brandingJSON != nil {
		_ = json.Unmarshal(brandingJSON, &t.Branding)
	}
	return &t, nil
}

func (s *Store) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (id, name, slug, plan, owner_user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+tenantColumns,
		uuid.NewString(), req.Name, req.Slug, req.Plan, req.OwnerUserID)
	t, err := scanTenant(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create tenant %q: %w", req.Slug, domain.ErrConflict)
		}
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return t, nil
}

func (s *Store) GetTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant by slug %q", slug)
	}
	return t, nil
}

func (s *Store) GetTenantByOwner(ctx context.Context, ownerUserID string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants
		 WHERE owner_user_id = $1 AND status = 'active'
		 ORDER BY created_at ASC LIMIT 1`, ownerUserID)
	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant by owner %s", ownerUserID)
	}
	return t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	return orEmpty(tenants), rows.Err()
}

func (s *Store) UpdateTenant(ctx context.Context, t *tenant.Tenant) error {
	brandingJSON, err := json.Marshal(t.Branding)
	if err != nil {
		return fmt.Errorf("marshal branding: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants
		 SET name = $2, slug = $3, custom_domain = $4, branding = $5, updated_at = now()
		 WHERE id = $1`,
		t.ID, t.Name, t.Slug, nullIfEmpty(t.CustomDomain), brandingJSON)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("update tenant %s: %w", t.ID, domain.ErrConflict)
	}
	return execExpectOne(tag, err, "update tenant %s", t.ID)
}

func (s *Store) SetTenantStatus(ctx context.Context, id string, status tenant.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	return execExpectOne(tag, err, "set tenant %s status", id)
}

// --- Custom domains ---

// UpsertTenantDomain replaces the tenant's domain row, resetting it to
// pending. The unique index on domain enforces at most one tenant per
// domain string.
func (s *Store) UpsertTenantDomain(ctx context.Context, tenantID, dom string) (*tenant.Domain, error) {
	var d tenant.Domain
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tenant_domains (tenant_id, domain, status)
		 VALUES ($1, $2, 'pending')
		 ON CONFLICT (tenant_id) DO UPDATE
		   SET domain = EXCLUDED.domain, status = 'pending', updated_at = now()
		 RETURNING id, tenant_id, domain, status, created_at, updated_at`,
		tenantID, dom,
	).Scan(&d.ID, &d.TenantID, &d.Domain, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("domain %q already registered: %w", dom, domain.ErrConflict)
		}
		return nil, fmt.Errorf("upsert tenant domain: %w", err)
	}
	return &d, nil
}

func (s *Store) GetActiveDomain(ctx context.Context, dom string) (*tenant.Domain, error) {
	var d tenant.Domain
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, domain, status, created_at, updated_at
		 FROM tenant_domains WHERE domain = $1 AND status = 'active'`, dom,
	).Scan(&d.ID, &d.TenantID, &d.Domain, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get active domain %q", dom)
	}
	return &d, nil
}

func (s *Store) SetDomainStatus(ctx context.Context, dom string, status tenant.DomainStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenant_domains SET status = $2, updated_at = now() WHERE domain = $1`,
		dom, status)
	return execExpectOne(tag, err, "set domain %q status", dom)
}
