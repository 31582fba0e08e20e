// Package notifier defines the outbound email port.
package notifier

import (
	"context"
	"time"

	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/port/docgen"
)

// OrderConfirmation bundles everything the purchase email includes. The
// download link is re-entrant (order id + customer email), not a bare
// signed URL baked into the message.
type OrderConfirmation struct {
	Order       *order.Order
	Items       []order.Item
	DownloadURL string
	ExpiresAt   time.Time
	Artifacts   []docgen.Artifact
}

// OfferNotice relays a buyer offer to the producer.
type OfferNotice struct {
	To        string
	BeatTitle string
	Email     string
	Name      string
	Amount    float64
	Message   string
}

// Notifier sends customer and producer email.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, c OrderConfirmation) error
	SendOfferNotice(ctx context.Context, n OfferNotice) error
}
