// Package store defines the database port (interface).
package store

import (
	"context"
	"time"

	"github.com/waveforge/waveforge/internal/domain/catalog"
	"github.com/waveforge/waveforge/internal/domain/offer"
	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/domain/tenant"
	"github.com/waveforge/waveforge/internal/domain/user"
)

// Store is the port interface for database operations.
type Store interface {
	TenantStore
	OrderStore
	CatalogStore
	OfferStore
	UserStore
}

// TenantStore covers tenant and custom-domain persistence.
type TenantStore interface {
	CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
	GetTenantByOwner(ctx context.Context, ownerUserID string) (*tenant.Tenant, error)
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)
	UpdateTenant(ctx context.Context, t *tenant.Tenant) error
	SetTenantStatus(ctx context.Context, id string, status tenant.Status) error

	// UpsertTenantDomain replaces the tenant's domain row with the given
	// domain in pending state.
	UpsertTenantDomain(ctx context.Context, tenantID, domain string) (*tenant.Domain, error)
	// GetActiveDomain looks up an active custom domain by exact hostname.
	GetActiveDomain(ctx context.Context, domain string) (*tenant.Domain, error)
	SetDomainStatus(ctx context.Context, domain string, status tenant.DomainStatus) error
}

// OrderStore covers the order lifecycle. CompleteOrder and FailOrder are
// conditional updates guarded on status=pending; committed reports whether
// this call performed the transition.
type OrderStore interface {
	// CreateOrder inserts the order and all items in one transaction. The
	// items must be committed before any payment-provider call so a webhook
	// arriving immediately after session creation finds its lines.
	CreateOrder(ctx context.Context, o *order.Order, items []order.Item) error
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]order.Item, error)
	// GetCompletedOrderForEmail returns the completed order owned by the
	// given customer email, or domain.ErrNotFound.
	GetCompletedOrderForEmail(ctx context.Context, id, email string) (*order.Order, error)
	CompleteOrder(ctx context.Context, id, transactionID string, downloadExpiresAt time.Time) (committed bool, err error)
	FailOrder(ctx context.Context, id string) (committed bool, err error)
	IncrementDownloadCount(ctx context.Context, itemID string) error
}

// CatalogStore is read-only input to the order core.
type CatalogStore interface {
	GetBeat(ctx context.Context, id string) (*catalog.Beat, error)
	GetLicenseTier(ctx context.Context, id string) (*catalog.LicenseTier, error)
	GetSoundKit(ctx context.Context, id string) (*catalog.SoundKit, error)
}

// OfferStore persists buyer offers.
type OfferStore interface {
	CreateOffer(ctx context.Context, o *offer.Offer) error
}

// UserStore covers the thin account surface (role lookup, admin CLI).
type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByToken(ctx context.Context, token string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}
