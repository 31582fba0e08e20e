package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	wfotel "github.com/waveforge/waveforge/internal/adapter/otel"
	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/port/payment"
	"github.com/waveforge/waveforge/internal/port/store"
)

// Fulfiller runs post-completion side effects. Split out as an interface
// so the confirmation race can be tested with a counting fake.
type Fulfiller interface {
	Fulfill(ctx context.Context, o *order.Order)
}

// Confirm transitions orders from pending to a terminal state exactly once,
// regardless of which path (client verification or provider webhook)
// observes the payment first. The store's conditional update on
// status=pending is the concurrency guard; the provider is the source of
// truth for whether money actually moved.
type Confirm struct {
	store       store.OrderStore
	stripe      payment.StripeGateway
	paypal      payment.PayPalGateway
	fulfiller   Fulfiller
	downloadTTL time.Duration
	metrics     *wfotel.Metrics
	now         func() time.Time
}

// NewConfirm creates the confirmation handler.
func NewConfirm(s store.OrderStore, stripe payment.StripeGateway, paypal payment.PayPalGateway, f Fulfiller, downloadTTL time.Duration) *Confirm {
	return &Confirm{store: s, stripe: stripe, paypal: paypal, fulfiller: f, downloadTTL: downloadTTL, now: time.Now}
}

// SetMetrics attaches metric instruments. Optional.
func (c *Confirm) SetMetrics(m *wfotel.Metrics) { c.metrics = m }

// VerifyResult reports the provider's payment state to the client.
type VerifyResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// VerifyStripeSession is the client-initiated path after redirect-back.
// The caller-supplied order id is never trusted on its own: it must match
// the order id stored in the session's metadata at creation time.
func (c *Confirm) VerifyStripeSession(ctx context.Context, sessionID, orderID string) (*VerifyResult, error) {
	if sessionID == "" || orderID == "" {
		return nil, fmt.Errorf("%w: sessionId and orderId are required", domain.ErrValidation)
	}

	sess, err := c.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch stripe session: %w", err)
	}
	if sess.MetadataOrderID != orderID {
		return nil, fmt.Errorf("%w: order id does not match session metadata", domain.ErrIntegrity)
	}

	if sess.PaymentStatus != "paid" {
		return &VerifyResult{Success: false, Status: sess.PaymentStatus}, nil
	}

	if err := c.complete(ctx, orderID, sess.PaymentIntentID); err != nil {
		return nil, err
	}
	return &VerifyResult{Success: true, Status: "paid"}, nil
}

// HandleStripeWebhook is the asynchronous provider path. Signature
// verification happens in the gateway; the local order id is recovered
// from session metadata, never from the request.
func (c *Confirm) HandleStripeWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	ev, err := c.stripe.VerifyWebhook(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIntegrity, err)
	}

	if ev.Type != "checkout.session.completed" {
		slog.Debug("ignoring stripe event", "type", ev.Type)
		return nil
	}
	if ev.MetadataOrderID == "" {
		return fmt.Errorf("%w: event session has no order id metadata", domain.ErrIntegrity)
	}
	if ev.PaymentStatus != "paid" {
		slog.Info("session completed but not paid", "session", ev.SessionID, "status", ev.PaymentStatus)
		return nil
	}

	return c.complete(ctx, ev.MetadataOrderID, ev.PaymentIntentID)
}

// CaptureResult is returned by the explicit PayPal capture step.
type CaptureResult struct {
	Success       bool         `json:"success"`
	Order         *order.Order `json:"order,omitempty"`
	TransactionID string       `json:"transactionId,omitempty"`
}

// CapturePayPal finalizes an approved PayPal order. The provider's
// custom_id (written at creation) must match the supplied local order id.
func (c *Confirm) CapturePayPal(ctx context.Context, paypalOrderID, orderID string) (*CaptureResult, error) {
	if paypalOrderID == "" || orderID == "" {
		return nil, fmt.Errorf("%w: paypalOrderId and orderId are required", domain.ErrValidation)
	}

	capt, err := c.paypal.CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		return nil, fmt.Errorf("capture paypal order: %w", err)
	}
	if capt.CustomID != orderID {
		return nil, fmt.Errorf("%w: order id does not match paypal order", domain.ErrIntegrity)
	}

	switch capt.Status {
	case "COMPLETED":
		if err := c.complete(ctx, orderID, capt.CaptureID); err != nil {
			return nil, err
		}
	case "DECLINED", "FAILED":
		// Explicit terminal failure from the provider.
		if committed, err := c.store.FailOrder(ctx, orderID); err != nil {
			return nil, fmt.Errorf("fail order: %w", err)
		} else if committed {
			slog.Info("order failed at capture", "order", orderID, "capture_status", capt.Status)
			if c.metrics != nil {
				c.metrics.OrdersFailed.Add(ctx, 1, metric.WithAttributes(
					attribute.String("capture_status", capt.Status)))
			}
		}
		return nil, fmt.Errorf("%w: capture not completed (%s)", domain.ErrValidation, capt.Status)
	default:
		// Pending/other states: report non-success without mutating.
		return nil, fmt.Errorf("%w: capture not completed (%s)", domain.ErrValidation, capt.Status)
	}

	o, err := c.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &CaptureResult{Success: true, Order: o, TransactionID: capt.CaptureID}, nil
}

// complete commits pending→completed via the store's conditional update.
// Both confirmation paths may observe "paid" concurrently; only the caller
// whose update actually flips the row triggers fulfillment. The losing
// caller sees an already-completed order and returns success without side
// effects - no duplicate email, documents or counters.
func (c *Confirm) complete(ctx context.Context, orderID, transactionID string) error {
	committed, err := c.store.CompleteOrder(ctx, orderID, transactionID, c.now().Add(c.downloadTTL))
	if err != nil {
		return fmt.Errorf("complete order: %w", err)
	}
	if !committed {
		o, err := c.store.GetOrder(ctx, orderID)
		if err != nil {
			return fmt.Errorf("load order after lost race: %w", err)
		}
		if o.Status == order.StatusCompleted {
			slog.Debug("order already completed", "order", orderID)
			return nil
		}
		return fmt.Errorf("%w: order %s is %s", domain.ErrConflict, orderID, o.Status)
	}

	o, err := c.store.GetOrder(ctx, orderID)
	if err != nil {
		// The transition committed; fulfillment is best-effort anyway.
		slog.Error("load order for fulfillment failed", "order", orderID, "error", err)
		return nil
	}
	c.fulfiller.Fulfill(ctx, o)
	return nil
}
