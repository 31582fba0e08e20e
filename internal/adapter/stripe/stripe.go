// Package stripe implements the Stripe payment port on top of the official
// stripe-go SDK using hosted Checkout Sessions.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/waveforge/waveforge/internal/config"
	"github.com/waveforge/waveforge/internal/port/payment"
)

const metadataOrderID = "order_id"

// Gateway wraps the Stripe SDK behind the payment port.
type Gateway struct {
	webhookSecret   string
	allowUnverified bool
	currency        string
}

// New configures the SDK client and returns the gateway.
func New(cfg config.Stripe, currency string) *Gateway {
	stripe.Key = cfg.SecretKey
	return &Gateway{
		webhookSecret:   cfg.WebhookSecret,
		allowUnverified: cfg.AllowUnverifiedWebhooks,
		currency:        currency,
	}
}

// CreateCheckoutSession opens a hosted payment-mode session. The local
// order id goes into session metadata so later verification can cross-check.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, p payment.StripeSessionParams) (*payment.StripeSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Title),
				},
				UnitAmount: stripe.Int64(toMinorUnits(li.Amount)),
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(p.CustomerEmail),
		LineItems:     lineItems,
		SuccessURL:    stripe.String(p.SuccessURL),
		CancelURL:     stripe.String(p.CancelURL),
		Metadata:      map[string]string{metadataOrderID: p.OrderID},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return toSession(sess), nil
}

// GetCheckoutSession fetches the session for payment verification.
func (g *Gateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.StripeSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %s: %w", sessionID, err)
	}
	return toSession(sess), nil
}

// VerifyWebhook validates the Stripe-Signature header and decodes the
// session payload for checkout.session.* events. With the unverified
// escape hatch enabled the payload is parsed without a signature check.
func (g *Gateway) VerifyWebhook(payload []byte, sigHeader string) (*payment.WebhookEvent, error) {
	var event stripe.Event
	if g.allowUnverified {
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("parse webhook payload: %w", err)
		}
	} else {
		verified, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
		if err != nil {
			return nil, fmt.Errorf("verify webhook signature: %w", err)
		}
		event = verified
	}

	out := &payment.WebhookEvent{Type: string(event.Type)}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("parse webhook session: %w", err)
	}
	out.SessionID = sess.ID
	out.MetadataOrderID = sess.Metadata[metadataOrderID]
	out.PaymentStatus = string(sess.PaymentStatus)
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

func toSession(sess *stripe.CheckoutSession) *payment.StripeSession {
	out := &payment.StripeSession{
		ID:              sess.ID,
		URL:             sess.URL,
		MetadataOrderID: sess.Metadata[metadataOrderID],
		PaymentStatus:   string(sess.PaymentStatus),
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out
}

// toMinorUnits converts major currency units to the integer cents Stripe
// expects, rounding half away from zero.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
