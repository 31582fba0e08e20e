package postgres

import (
	"context"

	"github.com/waveforge/waveforge/internal/domain/catalog"
)

func (s *Store) GetBeat(ctx context.Context, id string) (*catalog.Beat, error) {
	var b catalog.Beat
	row := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, title, genre, bpm, file_keys, created_at
		 FROM beats WHERE id = $1`, id)
	var genre *string
	if err := row.Scan(&b.ID, &b.TenantID, &b.Title, &genre, &b.BPM, &b.FileKeys, &b.CreatedAt); err != nil {
		return nil, notFoundWrap(err, "get beat %s", id)
	}
	if genre != nil {
		b.Genre = *genre
	}
	return &b, nil
}

func (s *Store) GetLicenseTier(ctx context.Context, id string) (*catalog.LicenseTier, error) {
	var lt catalog.LicenseTier
	row := s.pool.QueryRow(ctx,
		`SELECT id, beat_id, name, license_type, price, file_keys
		 FROM license_tiers WHERE id = $1`, id)
	if err := row.Scan(&lt.ID, &lt.BeatID, &lt.Name, &lt.Type, &lt.Price, &lt.FileKeys); err != nil {
		return nil, notFoundWrap(err, "get license tier %s", id)
	}
	return &lt, nil
}

func (s *Store) GetSoundKit(ctx context.Context, id string) (*catalog.SoundKit, error) {
	var k catalog.SoundKit
	row := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, title, price, file_keys, created_at
		 FROM sound_kits WHERE id = $1`, id)
	if err := row.Scan(&k.ID, &k.TenantID, &k.Title, &k.Price, &k.FileKeys, &k.CreatedAt); err != nil {
		return nil, notFoundWrap(err, "get sound kit %s", id)
	}
	return &k, nil
}
