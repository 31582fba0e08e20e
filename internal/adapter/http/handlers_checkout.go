package http

import (
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/waveforge/waveforge/internal/domain/order"
)

// CreateStripeCheckout opens a hosted Stripe Checkout Session for the
// submitted cart payload.
func (h *Handlers) CreateStripeCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[order.CheckoutRequest](w, r)
	if !ok {
		return
	}
	t, ok := h.tenantFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.checkout.CreateStripeSession(r.Context(), t.ID, req)
	if err != nil {
		writeDomainError(w, err, "checkout failed")
		return
	}
	h.countOrderCreated(r, "stripe")
	writeJSON(w, http.StatusOK, result)
}

// CreatePayPalCheckout creates a PayPal order pending buyer approval.
func (h *Handlers) CreatePayPalCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[order.CheckoutRequest](w, r)
	if !ok {
		return
	}
	t, ok := h.tenantFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.checkout.CreatePayPalOrder(r.Context(), t.ID, req)
	if err != nil {
		writeDomainError(w, err, "checkout failed")
		return
	}
	h.countOrderCreated(r, "paypal")
	writeJSON(w, http.StatusOK, result)
}

type captureRequest struct {
	PayPalOrderID string `json:"paypalOrderId"`
	OrderID       string `json:"orderId"`
}

// CapturePayPalCheckout finalizes an approved PayPal order.
func (h *Handlers) CapturePayPalCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[captureRequest](w, r)
	if !ok {
		return
	}
	if req.PayPalOrderID == "" || req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "paypalOrderId and orderId are required")
		return
	}

	result, err := h.confirm.CapturePayPal(r.Context(), req.PayPalOrderID, req.OrderID)
	if err != nil {
		writeDomainError(w, err, "order not found")
		return
	}
	if result.Success {
		h.countOrderCompleted(r)
	}
	writeJSON(w, http.StatusOK, result)
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
	OrderID   string `json:"orderId"`
}

// VerifyStripeCheckout is the client-initiated confirmation path after
// the redirect back from Stripe.
func (h *Handlers) VerifyStripeCheckout(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[verifyRequest](w, r)
	if !ok {
		return
	}
	if req.SessionID == "" || req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "sessionId and orderId are required")
		return
	}

	result, err := h.confirm.VerifyStripeSession(r.Context(), req.SessionID, req.OrderID)
	if err != nil {
		writeDomainError(w, err, "order not found")
		return
	}
	if result.Success {
		h.countOrderCompleted(r)
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleStripeWebhook consumes checkout.session.completed events. The raw
// body must reach signature verification untouched.
func (h *Handlers) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	if err := h.confirm.HandleStripeWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeDomainError(w, err, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handlers) countOrderCreated(r *http.Request, provider string) {
	if h.metrics != nil {
		h.metrics.OrdersCreated.Add(r.Context(), 1,
			metric.WithAttributes(attribute.String("payment.provider", provider)))
	}
}

func (h *Handlers) countOrderCompleted(r *http.Request) {
	if h.metrics != nil {
		h.metrics.OrdersCompleted.Add(r.Context(), 1)
	}
}
