package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/offer"
	"github.com/waveforge/waveforge/internal/port/notifier"
	"github.com/waveforge/waveforge/internal/port/store"
)

// Offers receives buyer price offers on beats and relays them to the
// producer. Rate limiting (per IP and per submitter email) happens at the
// HTTP layer.
type Offers struct {
	store    store.Store
	notifier notifier.Notifier
	// producerEmail receives offer notices for the tenant. Looked up from
	// the owner account by the handler wiring.
	now func() time.Time
}

// NewOffers creates the offer service.
func NewOffers(s store.Store, n notifier.Notifier) *Offers {
	return &Offers{store: s, notifier: n, now: time.Now}
}

// Submit validates, persists and relays one offer. The notice email is
// best-effort; a stored offer without a delivered notice is still visible
// to the producer.
func (s *Offers) Submit(ctx context.Context, tenantID, producerEmail string, req offer.CreateRequest) (*offer.Offer, error) {
	if req.BeatID == "" {
		return nil, fmt.Errorf("%w: beatId is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.Email) == "" || !strings.Contains(req.Email, "@") {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: offer amount must be positive", domain.ErrValidation)
	}

	beat, err := s.store.GetBeat(ctx, req.BeatID)
	if err != nil {
		return nil, err
	}

	o := &offer.Offer{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		BeatID:    beat.ID,
		Email:     strings.TrimSpace(req.Email),
		Name:      strings.TrimSpace(req.Name),
		Amount:    req.Amount,
		Message:   req.Message,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("persist offer: %w", err)
	}

	if producerEmail != "" {
		notice := notifier.OfferNotice{
			To:        producerEmail,
			BeatTitle: beat.Title,
			Email:     o.Email,
			Name:      o.Name,
			Amount:    o.Amount,
			Message:   o.Message,
		}
		if err := s.notifier.SendOfferNotice(ctx, notice); err != nil {
			slog.Error("offer notice email failed", "offer", o.ID, "error", err)
		}
	}

	return o, nil
}
