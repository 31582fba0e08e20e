package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	wfotel "github.com/waveforge/waveforge/internal/adapter/otel"
	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/port/payment"
	"github.com/waveforge/waveforge/internal/port/store"
)

// CheckoutConfig holds the checkout-time settings shared by both providers.
type CheckoutConfig struct {
	// PublicBaseURL is where success/cancel redirects land.
	PublicBaseURL string
	Currency      string
	// DownloadWindow sets the order's download_expires_at at creation.
	DownloadWindow time.Duration
}

// Checkout turns a submitted cart payload into a persisted pending order
// plus a provider payment session.
type Checkout struct {
	store   store.OrderStore
	stripe  payment.StripeGateway
	paypal  payment.PayPalGateway
	cfg     CheckoutConfig
	metrics *wfotel.Metrics
	now     func() time.Time
}

// NewCheckout creates the checkout orchestrator.
func NewCheckout(s store.OrderStore, stripe payment.StripeGateway, paypal payment.PayPalGateway, cfg CheckoutConfig) *Checkout {
	return &Checkout{store: s, stripe: stripe, paypal: paypal, cfg: cfg, now: time.Now}
}

// SetMetrics attaches metric instruments. Optional.
func (c *Checkout) SetMetrics(m *wfotel.Metrics) { c.metrics = m }

// StripeCheckoutResult is returned to the client, which handles navigation.
type StripeCheckoutResult struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
	OrderID   string `json:"orderId"`
}

// PayPalCheckoutResult carries the approval redirect for the buyer.
type PayPalCheckoutResult struct {
	OrderID       string `json:"orderId"`
	PayPalOrderID string `json:"paypalOrderId"`
	ApprovalURL   string `json:"approvalUrl"`
}

// CreateStripeSession validates the payload, persists the pending order and
// its line items, then creates a Stripe Checkout Session whose metadata
// carries the local order id. The order and items commit before the
// provider call so a webhook arriving right after session creation always
// finds them. A session-creation failure leaves the pending order dangling;
// it simply never leaves pending (an abandoned cart).
func (c *Checkout) CreateStripeSession(ctx context.Context, tenantID string, req order.CheckoutRequest) (*StripeCheckoutResult, error) {
	if err := validateCheckout(req, true); err != nil {
		return nil, err
	}

	o, items := c.buildOrder(tenantID, "stripe", req, req.SubmittedTotal())
	if err := c.store.CreateOrder(ctx, o, items); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	// Line items use the same submitted prices written to the order rows,
	// so the charge and the record cannot diverge.
	lines := make([]payment.LineItem, len(req.Items))
	for i, it := range req.Items {
		lines[i] = payment.LineItem{Title: lineTitle(it), Amount: it.Price}
	}

	sess, err := c.stripe.CreateCheckoutSession(ctx, payment.StripeSessionParams{
		OrderID:       o.ID,
		CustomerEmail: o.CustomerEmail,
		LineItems:     lines,
		SuccessURL:    c.cfg.PublicBaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}&orderId=" + url.QueryEscape(o.ID),
		CancelURL:     c.cfg.PublicBaseURL + "/cart",
	})
	if err != nil {
		return nil, fmt.Errorf("create stripe session: %w", err)
	}

	c.recordTotal(ctx, o.Total, "stripe")
	return &StripeCheckoutResult{URL: sess.URL, SessionID: sess.ID, OrderID: o.ID}, nil
}

// CreatePayPalOrder mirrors the Stripe path with an optional discount
// applied to the persisted total and the provider amount alike. Capture is
// a separate explicit step.
func (c *Checkout) CreatePayPalOrder(ctx context.Context, tenantID string, req order.CheckoutRequest) (*PayPalCheckoutResult, error) {
	if err := validateCheckout(req, false); err != nil {
		return nil, err
	}
	if req.DiscountAmount < 0 {
		return nil, fmt.Errorf("%w: discount amount must not be negative", domain.ErrValidation)
	}
	total := req.SubmittedTotal() - req.DiscountAmount
	if total < 0 {
		return nil, fmt.Errorf("%w: discount exceeds order total", domain.ErrValidation)
	}

	o, items := c.buildOrder(tenantID, "paypal", req, total)
	o.DiscountCode = req.DiscountCode
	if err := c.store.CreateOrder(ctx, o, items); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	p, err := c.paypal.CreateOrder(ctx, payment.PayPalOrderParams{
		OrderID:       o.ID,
		CustomerEmail: o.CustomerEmail,
		Total:         total,
		Currency:      strings.ToUpper(c.cfg.Currency),
		ReturnURL:     c.cfg.PublicBaseURL + "/checkout/paypal/return?orderId=" + url.QueryEscape(o.ID),
		CancelURL:     c.cfg.PublicBaseURL + "/cart",
	})
	if err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}

	c.recordTotal(ctx, total, "paypal")
	return &PayPalCheckoutResult{OrderID: o.ID, PayPalOrderID: p.ID, ApprovalURL: p.ApprovalURL}, nil
}

func (c *Checkout) recordTotal(ctx context.Context, total float64, provider string) {
	if c.metrics != nil {
		c.metrics.OrderTotal.Record(ctx, total, metric.WithAttributes(
			attribute.String("payment.provider", provider)))
	}
}

// buildOrder snapshots the submitted payload into order rows. Titles,
// license names and prices are frozen here; later catalog edits must not
// touch historical orders.
func (c *Checkout) buildOrder(tenantID, provider string, req order.CheckoutRequest, total float64) (*order.Order, []order.Item) {
	now := c.now()
	o := &order.Order{
		ID:                uuid.NewString(),
		TenantID:          tenantID,
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		CustomerName:      strings.TrimSpace(req.CustomerName),
		Total:             total,
		Status:            order.StatusPending,
		PaymentProvider:   provider,
		DownloadExpiresAt: now.Add(c.cfg.DownloadWindow),
		CreatedAt:         now,
	}
	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.Item{
			ID:            uuid.NewString(),
			OrderID:       o.ID,
			ItemType:      it.ItemType,
			BeatID:        it.BeatID,
			LicenseTierID: it.LicenseTierID,
			SoundKitID:    it.SoundKitID,
			Title:         it.Title,
			LicenseName:   it.LicenseName,
			Price:         it.Price,
		}
	}
	return o, items
}

// validateCheckout fails fast before any persistence or provider call.
func validateCheckout(req order.CheckoutRequest, requireName bool) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}
	if strings.TrimSpace(req.CustomerEmail) == "" || !strings.Contains(req.CustomerEmail, "@") {
		return fmt.Errorf("%w: customer email is required", domain.ErrValidation)
	}
	if requireName && strings.TrimSpace(req.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", domain.ErrValidation)
	}
	for i, it := range req.Items {
		if it.ItemType != order.ItemBeat && it.ItemType != order.ItemSoundKit {
			return fmt.Errorf("%w: item %d has unknown type %q", domain.ErrValidation, i, it.ItemType)
		}
		if it.Price <= 0 {
			return fmt.Errorf("%w: item %d must have a positive price", domain.ErrValidation, i)
		}
		if it.Title == "" {
			return fmt.Errorf("%w: item %d is missing a title", domain.ErrValidation, i)
		}
	}
	return nil
}

func lineTitle(it order.ItemInput) string {
	if it.ItemType == order.ItemBeat && it.LicenseName != "" {
		return it.Title + " - " + it.LicenseName
	}
	return it.Title
}
