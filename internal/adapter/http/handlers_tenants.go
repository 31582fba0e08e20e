package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/waveforge/waveforge/internal/domain/tenant"
	"github.com/waveforge/waveforge/internal/middleware"
)

// GetTenantSettings returns the authenticated owner's storefront settings.
func (h *Handlers) GetTenantSettings(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	t, err := h.store.GetTenantByOwner(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err, "no storefront for this account")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// UpdateTenantSettings applies owner-mutable settings: name, slug,
// branding, and (plan permitting) the custom domain.
func (h *Handlers) UpdateTenantSettings(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.UpdateRequest](w, r)
	if !ok {
		return
	}

	u := middleware.UserFromContext(r.Context())
	t, err := h.store.GetTenantByOwner(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err, "no storefront for this account")
		return
	}

	updated, err := h.tenants.UpdateSettings(r.Context(), t.ID, req)
	if err != nil {
		writeDomainError(w, err, "storefront not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- Platform admin surface ---

func (h *Handlers) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (h *Handlers) CreateTenant(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tenant.CreateRequest](w, r)
	if !ok {
		return
	}
	t, err := h.tenants.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "owner account not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type statusRequest struct {
	Status tenant.Status `json:"status"`
}

// SetTenantStatus toggles a tenant between active and inactive. Tenants
// are never hard-deleted.
func (h *Handlers) SetTenantStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[statusRequest](w, r)
	if !ok {
		return
	}
	if req.Status != tenant.StatusActive && req.Status != tenant.StatusInactive {
		writeError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}
	if err := h.tenants.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeDomainError(w, err, "tenant not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

type activateDomainRequest struct {
	Domain string `json:"domain"`
}

// ActivateDomain marks a custom domain verified, admitting it to
// resolution.
func (h *Handlers) ActivateDomain(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[activateDomainRequest](w, r)
	if !ok {
		return
	}
	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}
	if err := h.tenants.ActivateDomain(r.Context(), req.Domain); err != nil {
		writeDomainError(w, err, "domain not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"domain": req.Domain, "status": "active"})
}
