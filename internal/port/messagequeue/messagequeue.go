// Package messagequeue defines the event publishing port.
package messagequeue

import "context"

// Publisher emits domain events (orders.completed, tenants.updated) for
// downstream consumers. Publishing is best-effort; it never drives
// fulfillment, which runs in-process on the committing transition.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
