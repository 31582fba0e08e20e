// Package tenant defines the storefront tenant domain model for multi-tenancy.
package tenant

import "time"

// Plan gates tenant capabilities. Custom domains require Pro or Studio.
type Plan string

const (
	PlanLaunch Plan = "launch"
	PlanPro    Plan = "pro"
	PlanStudio Plan = "studio"
)

// Valid reports whether p is a known plan.
func (p Plan) Valid() bool {
	switch p {
	case PlanLaunch, PlanPro, PlanStudio:
		return true
	}
	return false
}

// AllowsCustomDomain reports whether the plan includes custom-domain routing.
func (p Plan) AllowsCustomDomain() bool {
	return p == PlanPro || p == PlanStudio
}

// Status is the tenant lifecycle state. Tenants are never hard-deleted;
// platform admins toggle status instead.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Tenant represents one independently branded storefront.
type Tenant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	CustomDomain string    `json:"custom_domain,omitempty"`
	Plan         Plan      `json:"plan"`
	Status       Status    `json:"status"`
	OwnerUserID  string    `json:"owner_user_id"`
	Branding     Branding  `json:"branding"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Active reports whether the tenant is resolvable for storefront traffic.
func (t *Tenant) Active() bool {
	return t.Status == StatusActive
}

// Branding holds per-tenant presentation data. Opaque to the core.
type Branding struct {
	DisplayName string `json:"display_name,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
}

// DomainStatus is the verification state of a custom domain. A domain
// participates in resolution only once active; the pending→active
// transition happens out-of-band (DNS verification).
type DomainStatus string

const (
	DomainPending DomainStatus = "pending"
	DomainActive  DomainStatus = "active"
)

// Domain records a custom domain's verification state independent of the
// tenant row. A given domain string maps to at most one tenant.
type Domain struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	Domain    string       `json:"domain"`
	Status    DomainStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CreateRequest holds the fields required to create a new tenant.
type CreateRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Plan        Plan   `json:"plan"`
	OwnerUserID string `json:"owner_user_id"`
}

// UpdateRequest holds the owner-mutable tenant settings.
type UpdateRequest struct {
	Name         string    `json:"name,omitempty"`
	Slug         string    `json:"slug,omitempty"`
	CustomDomain *string   `json:"custom_domain,omitempty"`
	Branding     *Branding `json:"branding,omitempty"`
}
