package postgres

import (
	"context"
	"fmt"

	"github.com/waveforge/waveforge/internal/domain/offer"
)

func (s *Store) CreateOffer(ctx context.Context, o *offer.Offer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO offers (id, tenant_id, beat_id, email, name, amount, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.TenantID, o.BeatID, o.Email, nullIfEmpty(o.Name), o.Amount,
		nullIfEmpty(o.Message), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}
