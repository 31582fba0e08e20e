package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/port/payment"
)

func pendingOrder(st *stubStore, id string) *order.Order {
	o := &order.Order{
		ID: id, TenantID: "t-1",
		CustomerEmail: "buyer@example.com", CustomerName: "Ada Buyer",
		Total: 79.99, Status: order.StatusPending,
		PaymentProvider: "stripe", CreatedAt: time.Now(),
	}
	st.orders[id] = o
	return o
}

func newTestConfirm(st *stubStore, sg *stubStripe, pg *stubPayPal) (*Confirm, *stubFulfiller) {
	f := &stubFulfiller{}
	return NewConfirm(st, sg, pg, f, 72*time.Hour), f
}

func TestVerifyStripeSessionCompletesOrder(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	sg := &stubStripe{session: payment.StripeSession{
		ID: "cs_1", MetadataOrderID: "o-1", PaymentStatus: "paid", PaymentIntentID: "pi_1",
	}}
	c, f := newTestConfirm(st, sg, &stubPayPal{})

	res, err := c.VerifyStripeSession(context.Background(), "cs_1", "o-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Success || res.Status != "paid" {
		t.Fatalf("unexpected result %+v", res)
	}

	o, _ := st.GetOrder(context.Background(), "o-1")
	if o.Status != order.StatusCompleted {
		t.Fatalf("order status = %s", o.Status)
	}
	if o.PaymentTransactionID != "pi_1" {
		t.Fatalf("transaction id = %q", o.PaymentTransactionID)
	}
	if f.count() != 1 {
		t.Fatalf("fulfiller called %d times, want 1", f.count())
	}
}

func TestVerifyStripeSessionUnpaidDoesNotMutate(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	sg := &stubStripe{session: payment.StripeSession{
		ID: "cs_1", MetadataOrderID: "o-1", PaymentStatus: "unpaid",
	}}
	c, f := newTestConfirm(st, sg, &stubPayPal{})

	res, err := c.VerifyStripeSession(context.Background(), "cs_1", "o-1")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Success {
		t.Fatal("unpaid session must not report success")
	}

	o, _ := st.GetOrder(context.Background(), "o-1")
	if o.Status != order.StatusPending {
		t.Fatalf("order must stay pending, got %s", o.Status)
	}
	if f.count() != 0 {
		t.Fatal("fulfiller must not run for unpaid sessions")
	}
}

func TestVerifyStripeSessionMetadataMismatch(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	sg := &stubStripe{session: payment.StripeSession{
		ID: "cs_1", MetadataOrderID: "o-other", PaymentStatus: "paid", PaymentIntentID: "pi_1",
	}}
	c, f := newTestConfirm(st, sg, &stubPayPal{})

	_, err := c.VerifyStripeSession(context.Background(), "cs_1", "o-1")
	if !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if f.count() != 0 {
		t.Fatal("fulfiller must not run on mismatch")
	}
}

func TestConfirmIsIdempotentAcrossPaths(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	sg := &stubStripe{
		session: payment.StripeSession{
			ID: "cs_1", MetadataOrderID: "o-1", PaymentStatus: "paid", PaymentIntentID: "pi_1",
		},
		event: &payment.WebhookEvent{
			Type: "checkout.session.completed", SessionID: "cs_1",
			MetadataOrderID: "o-1", PaymentStatus: "paid", PaymentIntentID: "pi_1",
		},
	}
	c, f := newTestConfirm(st, sg, &stubPayPal{})
	ctx := context.Background()

	if err := c.HandleStripeWebhook(ctx, []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	// The client verification path observes the same paid session after
	// the webhook already won the race.
	res, err := c.VerifyStripeSession(ctx, "cs_1", "o-1")
	if err != nil {
		t.Fatalf("verify after webhook: %v", err)
	}
	if !res.Success {
		t.Fatal("second observer must still report success")
	}
	// And a webhook redelivery is a no-op too.
	if err := c.HandleStripeWebhook(ctx, []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook redelivery: %v", err)
	}

	if f.count() != 1 {
		t.Fatalf("fulfillment ran %d times, want exactly 1", f.count())
	}
}

func TestHandleStripeWebhookIgnoresOtherEvents(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	sg := &stubStripe{event: &payment.WebhookEvent{Type: "invoice.paid"}}
	c, f := newTestConfirm(st, sg, &stubPayPal{})

	if err := c.HandleStripeWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if st.completeCalls != 0 || f.count() != 0 {
		t.Fatal("unrelated events must not touch orders")
	}
}

func TestHandleStripeWebhookBadSignature(t *testing.T) {
	sg := &stubStripe{eventErr: errBoom}
	c, _ := newTestConfirm(newStubStore(), sg, &stubPayPal{})

	err := c.HandleStripeWebhook(context.Background(), []byte("{}"), "sig")
	if !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestHandleStripeWebhookCompletedButUnpaid(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	sg := &stubStripe{event: &payment.WebhookEvent{
		Type: "checkout.session.completed", SessionID: "cs_1",
		MetadataOrderID: "o-1", PaymentStatus: "unpaid",
	}}
	c, f := newTestConfirm(st, sg, &stubPayPal{})

	if err := c.HandleStripeWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	o, _ := st.GetOrder(context.Background(), "o-1")
	if o.Status != order.StatusPending || f.count() != 0 {
		t.Fatal("unpaid completion event must not mutate the order")
	}
}

func TestCapturePayPalCompletesOrder(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1").PaymentProvider = "paypal"
	pg := &stubPayPal{capture: payment.PayPalCapture{
		Status: "COMPLETED", CaptureID: "CAP-1", CustomID: "o-1",
	}}
	c, f := newTestConfirm(st, &stubStripe{}, pg)

	res, err := c.CapturePayPal(context.Background(), "PP-1", "o-1")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !res.Success || res.TransactionID != "CAP-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Order == nil || res.Order.Status != order.StatusCompleted {
		t.Fatalf("returned order %+v", res.Order)
	}
	if f.count() != 1 {
		t.Fatalf("fulfiller called %d times", f.count())
	}
}

func TestCapturePayPalCustomIDMismatch(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	pg := &stubPayPal{capture: payment.PayPalCapture{
		Status: "COMPLETED", CaptureID: "CAP-1", CustomID: "o-other",
	}}
	c, _ := newTestConfirm(st, &stubStripe{}, pg)

	_, err := c.CapturePayPal(context.Background(), "PP-1", "o-1")
	if !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	o, _ := st.GetOrder(context.Background(), "o-1")
	if o.Status != order.StatusPending {
		t.Fatalf("order must stay pending, got %s", o.Status)
	}
}

func TestCapturePayPalDeclinedFailsOrder(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	pg := &stubPayPal{capture: payment.PayPalCapture{Status: "DECLINED", CustomID: "o-1"}}
	c, f := newTestConfirm(st, &stubStripe{}, pg)

	_, err := c.CapturePayPal(context.Background(), "PP-1", "o-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	o, _ := st.GetOrder(context.Background(), "o-1")
	if o.Status != order.StatusFailed {
		t.Fatalf("order status = %s, want failed", o.Status)
	}
	if f.count() != 0 {
		t.Fatal("fulfiller must not run for declined captures")
	}
}

func TestCapturePayPalPendingLeavesOrderOpen(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	pg := &stubPayPal{capture: payment.PayPalCapture{Status: "PENDING", CustomID: "o-1"}}
	c, _ := newTestConfirm(st, &stubStripe{}, pg)

	_, err := c.CapturePayPal(context.Background(), "PP-1", "o-1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	o, _ := st.GetOrder(context.Background(), "o-1")
	if o.Status != order.StatusPending {
		t.Fatalf("pending capture must not mutate, got %s", o.Status)
	}
}

func TestCompleteSetsDownloadWindowFromConfirmationTime(t *testing.T) {
	st := newStubStore()
	pendingOrder(st, "o-1")
	sg := &stubStripe{session: payment.StripeSession{
		ID: "cs_1", MetadataOrderID: "o-1", PaymentStatus: "paid", PaymentIntentID: "pi_1",
	}}
	c, _ := newTestConfirm(st, sg, &stubPayPal{})
	confirmedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return confirmedAt }

	if _, err := c.VerifyStripeSession(context.Background(), "cs_1", "o-1"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	o, _ := st.GetOrder(context.Background(), "o-1")
	if want := confirmedAt.Add(72 * time.Hour); !o.DownloadExpiresAt.Equal(want) {
		t.Fatalf("download expiry = %v, want %v", o.DownloadExpiresAt, want)
	}
}
