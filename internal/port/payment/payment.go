// Package payment defines the payment-provider ports. Adapters wrap the
// Stripe SDK and the PayPal REST API; services depend only on these
// interfaces so the confirmation race can be tested with fakes.
package payment

import "context"

// LineItem is one provider-side price line, mirroring an order item.
type LineItem struct {
	Title  string
	Amount float64 // major currency units; adapters convert as needed
}

// StripeSessionParams creates a Checkout Session in payment mode.
type StripeSessionParams struct {
	OrderID       string // stored in session metadata for later cross-check
	CustomerEmail string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
}

// StripeSession is the subset of a Checkout Session this core reads back.
type StripeSession struct {
	ID string
	// URL is the hosted checkout redirect target.
	URL string
	// MetadataOrderID is the order id written at creation time.
	MetadataOrderID string
	// PaymentStatus is the provider's authoritative state ("paid", "unpaid", ...).
	PaymentStatus string
	// PaymentIntentID is the capture/intent id once paid.
	PaymentIntentID string
}

// StripeGateway is the Stripe port.
type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, p StripeSessionParams) (*StripeSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*StripeSession, error)
	// VerifyWebhook checks the signature header against the configured
	// secret and returns the event type and raw session payload for
	// checkout.session.* events.
	VerifyWebhook(payload []byte, sigHeader string) (*WebhookEvent, error)
}

// WebhookEvent is a verified provider webhook event.
type WebhookEvent struct {
	Type            string
	SessionID       string
	MetadataOrderID string
	PaymentStatus   string
	PaymentIntentID string
}

// PayPalOrderParams creates a provider order pending buyer approval.
type PayPalOrderParams struct {
	OrderID       string // carried as purchase-unit custom_id
	CustomerEmail string
	Total         float64
	Currency      string
	ReturnURL     string
	CancelURL     string
}

// PayPalOrder is the provider order as created.
type PayPalOrder struct {
	ID          string
	ApprovalURL string
}

// PayPalCapture is the result of capturing an approved order.
type PayPalCapture struct {
	// Status is the capture status; "COMPLETED" is the only success.
	Status string
	// CaptureID is the settled transaction id.
	CaptureID string
	// CustomID echoes the local order id stored at creation.
	CustomID string
}

// PayPalGateway is the PayPal port.
type PayPalGateway interface {
	CreateOrder(ctx context.Context, p PayPalOrderParams) (*PayPalOrder, error)
	CaptureOrder(ctx context.Context, paypalOrderID string) (*PayPalCapture, error)
}
