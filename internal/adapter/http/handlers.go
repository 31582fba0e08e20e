package http

import (
	"log/slog"
	"net/http"

	"github.com/waveforge/waveforge/internal/adapter/otel"
	"github.com/waveforge/waveforge/internal/domain/tenant"
	"github.com/waveforge/waveforge/internal/middleware"
	"github.com/waveforge/waveforge/internal/port/store"
	"github.com/waveforge/waveforge/internal/service"
)

// Handlers holds the wired services behind the HTTP surface.
type Handlers struct {
	resolver *service.Resolver
	checkout *service.Checkout
	confirm  *service.Confirm
	download *service.Download
	offers   *service.Offers
	tenants  *service.Tenants
	store    store.Store

	verifyLimiter   *middleware.WindowLimiter
	offerLimiter    *middleware.WindowLimiter
	downloadLimiter *middleware.WindowLimiter

	metrics *otel.Metrics
}

// NewHandlers wires the services into the HTTP surface. metrics may be nil.
func NewHandlers(
	resolver *service.Resolver,
	checkout *service.Checkout,
	confirm *service.Confirm,
	download *service.Download,
	offers *service.Offers,
	tenants *service.Tenants,
	st store.Store,
	verifyLimiter, offerLimiter, downloadLimiter *middleware.WindowLimiter,
	metrics *otel.Metrics,
) *Handlers {
	return &Handlers{
		resolver:        resolver,
		checkout:        checkout,
		confirm:         confirm,
		download:        download,
		offers:          offers,
		tenants:         tenants,
		store:           st,
		verifyLimiter:   verifyLimiter,
		offerLimiter:    offerLimiter,
		downloadLimiter: downloadLimiter,
		metrics:         metrics,
	}
}

// tenantFromRequest resolves the storefront tenant from the request host.
// Tenant-scoped endpoints reject landing resolutions with 404.
func (h *Handlers) tenantFromRequest(w http.ResponseWriter, r *http.Request) (*tenant.Tenant, bool) {
	var ownerID string
	if u := middleware.UserFromContext(r.Context()); u != nil {
		ownerID = u.ID
	}

	res, err := h.resolver.Resolve(r.Context(), r.Host, ownerID)
	if err != nil {
		slog.Error("tenant resolution degraded", "host", r.Host, "error", err)
	}
	if res.Landing || res.Tenant == nil {
		writeError(w, http.StatusNotFound, "storefront not found")
		return nil, false
	}
	return res.Tenant, true
}
