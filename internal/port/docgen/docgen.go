// Package docgen defines the license-document generation port. The real
// implementation delegates to an external PDF rendering collaborator.
package docgen

import (
	"context"
	"time"
)

// Request carries everything a license document needs.
type Request struct {
	OrderID       string    `json:"order_id"`
	ItemID        string    `json:"item_id"`
	ItemType      string    `json:"item_type"`
	ItemTitle     string    `json:"item_title"`
	LicenseName   string    `json:"license_name"`
	LicenseType   string    `json:"license_type"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	PurchasedAt   time.Time `json:"purchased_at"`
	Price         float64   `json:"price"`
	BPM           int       `json:"bpm,omitempty"`
	Genre         string    `json:"genre,omitempty"`
}

// Artifact references a generated document.
type Artifact struct {
	ItemID  string `json:"item_id"`
	FileKey string `json:"file_key"`
	URL     string `json:"url,omitempty"`
}

// Generator produces license documents.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Artifact, error)
}
