package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "waveforge"

// StartCheckoutSpan starts a span for one checkout attempt.
func StartCheckoutSpan(ctx context.Context, provider, tenantID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "checkout",
		trace.WithAttributes(
			attribute.String("payment.provider", provider),
			attribute.String("tenant.id", tenantID),
		),
	)
}

// StartFulfillmentSpan starts a span for the post-payment pipeline.
func StartFulfillmentSpan(ctx context.Context, orderID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "fulfillment",
		trace.WithAttributes(
			attribute.String("order.id", orderID),
		),
	)
}
