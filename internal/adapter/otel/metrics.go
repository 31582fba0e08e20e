package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "waveforge"

// Metrics holds the storefront metric instruments.
type Metrics struct {
	OrdersCreated       metric.Int64Counter
	OrdersCompleted     metric.Int64Counter
	OrdersFailed        metric.Int64Counter
	FulfillmentFailures metric.Int64Counter
	Downloads           metric.Int64Counter
	OrderTotal          metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.OrdersCreated, err = meter.Int64Counter("waveforge.orders.created",
		metric.WithDescription("Number of checkout orders created"))
	if err != nil {
		return nil, err
	}

	m.OrdersCompleted, err = meter.Int64Counter("waveforge.orders.completed",
		metric.WithDescription("Number of orders that reached completed"))
	if err != nil {
		return nil, err
	}

	m.OrdersFailed, err = meter.Int64Counter("waveforge.orders.failed",
		metric.WithDescription("Number of orders that reached failed"))
	if err != nil {
		return nil, err
	}

	m.FulfillmentFailures, err = meter.Int64Counter("waveforge.fulfillment.failures",
		metric.WithDescription("Number of non-fatal fulfillment step failures"))
	if err != nil {
		return nil, err
	}

	m.Downloads, err = meter.Int64Counter("waveforge.downloads",
		metric.WithDescription("Number of download page accesses served"))
	if err != nil {
		return nil, err
	}

	m.OrderTotal, err = meter.Float64Histogram("waveforge.order.total_usd",
		metric.WithDescription("Order totals in USD"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
