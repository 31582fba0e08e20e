package http

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/waveforge/waveforge/internal/domain/offer"
)

// SubmitOffer accepts a buyer price offer on a beat and relays it to the
// producer. Limited per submitter email on top of the route's per-IP limit.
func (h *Handlers) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[offer.CreateRequest](w, r)
	if !ok {
		return
	}
	t, ok := h.tenantFromRequest(w, r)
	if !ok {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && h.offerLimiter != nil {
		if allowed, retryAfter := h.offerLimiter.Allow("email:" + email); !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", math.Ceil(retryAfter.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
	}

	producerEmail := ""
	if owner, err := h.store.GetUser(r.Context(), t.OwnerUserID); err == nil {
		producerEmail = owner.Email
	} else {
		slog.Error("owner lookup for offer notice failed", "tenant", t.ID, "error", err)
	}

	o, err := h.offers.Submit(r.Context(), t.ID, producerEmail, req)
	if err != nil {
		writeDomainError(w, err, "beat not found")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
