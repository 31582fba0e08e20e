package http

import (
	"log/slog"
	"net/http"

	"github.com/waveforge/waveforge/internal/middleware"
)

// ResolveStorefront maps the request host to a storefront tenant or the
// SaaS landing experience. Landing is a normal 200, not an error.
func (h *Handlers) ResolveStorefront(w http.ResponseWriter, r *http.Request) {
	var ownerID string
	if u := middleware.UserFromContext(r.Context()); u != nil {
		ownerID = u.ID
	}

	res, err := h.resolver.Resolve(r.Context(), r.Host, ownerID)
	if err != nil {
		// Resolution degrades to landing on store errors rather than failing
		// the request or guessing a tenant.
		slog.Error("tenant resolution degraded", "host", r.Host, "error", err)
	}
	writeJSON(w, http.StatusOK, res)
}
