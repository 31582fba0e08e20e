package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waveforge/waveforge/internal/domain/user"
	"github.com/waveforge/waveforge/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. Auth is
// optional on public storefront routes; the owner and admin groups
// require it.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Stripe webhook stays outside auth; the signature check is the gate.
	r.Post("/api/v1/webhooks/stripe", h.HandleStripeWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/storefront", h.ResolveStorefront)

		r.Post("/checkout/stripe", h.CreateStripeCheckout)
		r.Post("/checkout/paypal", h.CreatePayPalCheckout)
		r.Post("/checkout/paypal/capture", h.CapturePayPalCheckout)
		r.With(h.verifyLimiter.Handler).Post("/checkout/stripe/verify", h.VerifyStripeCheckout)

		r.With(h.downloadLimiter.Handler).Post("/downloads", h.GetDownloads)

		r.With(h.offerLimiter.Handler).Post("/offers", h.SubmitOffer)

		// Owner settings
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleOwner))
			r.Get("/settings/tenant", h.GetTenantSettings)
			r.Put("/settings/tenant", h.UpdateTenantSettings)
		})

		// Platform admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(user.RoleAdmin))
			r.Get("/tenants", h.ListTenants)
			r.Post("/tenants", h.CreateTenant)
			r.Get("/tenants/{id}", h.GetTenant)
			r.Put("/tenants/{id}/status", h.SetTenantStatus)
			r.Post("/domains/activate", h.ActivateDomain)
		})
	})
}
