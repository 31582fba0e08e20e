// Package catalog defines the read-only catalog models the order core
// consumes: beats, their license tiers, and sound kits. Catalog writes
// happen through the producer admin surface, outside this core.
package catalog

import "time"

// LicenseType classifies the deliverable of a purchased license tier.
type LicenseType string

const (
	LicenseMP3   LicenseType = "mp3"
	LicenseWAV   LicenseType = "wav"
	LicenseStems LicenseType = "stems"

	// LicenseSoundKit is the fixed classification for sound-kit purchases.
	LicenseSoundKit LicenseType = "sound_kit"
)

// Beat is a purchasable track. BPM and genre feed license documents.
type Beat struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre,omitempty"`
	BPM       int       `json:"bpm,omitempty"`
	FileKeys  []string  `json:"file_keys,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LicenseTier is a rights package for a beat with its own price and files.
type LicenseTier struct {
	ID       string      `json:"id"`
	BeatID   string      `json:"beat_id"`
	Name     string      `json:"name"`
	Type     LicenseType `json:"type"`
	Price    float64     `json:"price"`
	FileKeys []string    `json:"file_keys,omitempty"`
}

// SoundKit is a purchasable sample pack.
type SoundKit struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	FileKeys  []string  `json:"file_keys,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
