package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	wfotel "github.com/waveforge/waveforge/internal/adapter/otel"
	"github.com/waveforge/waveforge/internal/domain/catalog"
	"github.com/waveforge/waveforge/internal/domain/order"
	"github.com/waveforge/waveforge/internal/port/docgen"
	"github.com/waveforge/waveforge/internal/port/messagequeue"
	"github.com/waveforge/waveforge/internal/port/notifier"
	"github.com/waveforge/waveforge/internal/port/store"
)

// maxDocWorkers bounds concurrent license-document generation per order.
const maxDocWorkers = 4

// Fulfillment produces purchase artifacts and notifies the customer once
// an order is newly completed. Everything here is best-effort: a failure
// never rolls back the payment confirmation, and the customer can always
// reach their files through the download-access flow.
type Fulfillment struct {
	store     store.Store
	docs      docgen.Generator
	notifier  notifier.Notifier
	publisher messagequeue.Publisher
	metrics   *wfotel.Metrics
	// PublicBaseURL builds the re-entrant download link in the email.
	publicBaseURL string
}

// NewFulfillment creates the fulfillment pipeline. publisher may be nil.
func NewFulfillment(s store.Store, d docgen.Generator, n notifier.Notifier, p messagequeue.Publisher, publicBaseURL string) *Fulfillment {
	return &Fulfillment{store: s, docs: d, notifier: n, publisher: p, publicBaseURL: publicBaseURL}
}

// SetMetrics attaches metric instruments. Optional.
func (f *Fulfillment) SetMetrics(m *wfotel.Metrics) { f.metrics = m }

// Fulfill generates one license document per item and sends the
// confirmation email. Called exactly once per order, by the confirmation
// path that actually committed the pending→completed transition.
func (f *Fulfillment) Fulfill(ctx context.Context, o *order.Order) {
	items, err := f.store.GetOrderItems(ctx, o.ID)
	if err != nil {
		slog.Error("fulfillment: load items failed", "order", o.ID, "error", err)
		return
	}

	artifacts := f.generateDocuments(ctx, o, items)

	conf := notifier.OrderConfirmation{
		Order:       o,
		Items:       items,
		DownloadURL: f.publicBaseURL + "/downloads?orderId=" + o.ID,
		ExpiresAt:   o.DownloadExpiresAt,
		Artifacts:   artifacts,
	}
	if err := f.notifier.SendOrderConfirmation(ctx, conf); err != nil {
		// The order is still honored; the download flow remains open.
		slog.Error("fulfillment: confirmation email failed", "order", o.ID, "error", err)
		f.countFailure(ctx, "email")
	}

	f.publishCompleted(ctx, o, len(items), len(artifacts))
}

// generateDocuments renders license documents in parallel, continuing past
// per-item failures. Partial fulfillment beats none: failed items are
// logged and omitted from the artifact list.
func (f *Fulfillment) generateDocuments(ctx context.Context, o *order.Order, items []order.Item) []docgen.Artifact {
	var (
		mu        sync.Mutex
		artifacts []docgen.Artifact
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDocWorkers)

	for _, it := range items {
		g.Go(func() error {
			req, err := f.documentRequest(gctx, o, it)
			if err != nil {
				slog.Error("fulfillment: resolve license context failed",
					"order", o.ID, "item", it.ID, "error", err)
				f.countFailure(gctx, "license_context")
				return nil
			}
			art, err := f.docs.Generate(gctx, *req)
			if err != nil {
				slog.Error("fulfillment: license generation failed",
					"order", o.ID, "item", it.ID, "title", it.Title, "error", err)
				f.countFailure(gctx, "license_doc")
				return nil
			}
			mu.Lock()
			artifacts = append(artifacts, *art)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; they log and continue

	return artifacts
}

// documentRequest resolves the item's effective license classification:
// sound kits use the fixed sound_kit type, beats resolve the purchased
// tier's type plus the beat's bpm/genre for document context.
func (f *Fulfillment) documentRequest(ctx context.Context, o *order.Order, it order.Item) (*docgen.Request, error) {
	req := docgen.Request{
		OrderID:       o.ID,
		ItemID:        it.ID,
		ItemType:      string(it.ItemType),
		ItemTitle:     it.Title,
		LicenseName:   it.LicenseName,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		PurchasedAt:   o.CreatedAt,
		Price:         it.Price,
	}

	if it.ItemType == order.ItemSoundKit {
		req.LicenseType = string(catalog.LicenseSoundKit)
		if req.LicenseName == "" {
			req.LicenseName = "Sound Kit License"
		}
		return &req, nil
	}

	tier, err := f.store.GetLicenseTier(ctx, it.LicenseTierID)
	if err != nil {
		return nil, err
	}
	req.LicenseType = string(tier.Type)

	beat, err := f.store.GetBeat(ctx, it.BeatID)
	if err != nil {
		return nil, err
	}
	req.BPM = beat.BPM
	req.Genre = beat.Genre
	return &req, nil
}

func (f *Fulfillment) countFailure(ctx context.Context, step string) {
	if f.metrics != nil {
		f.metrics.FulfillmentFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("step", step)))
	}
}

// publishCompleted emits the orders.completed event for downstream
// consumers. Never drives fulfillment itself.
func (f *Fulfillment) publishCompleted(ctx context.Context, o *order.Order, itemCount, artifactCount int) {
	if f.publisher == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"order_id":  o.ID,
		"tenant_id": o.TenantID,
		"total":     o.Total,
		"items":     itemCount,
		"artifacts": artifactCount,
	})
	if err != nil {
		return
	}
	if err := f.publisher.Publish(ctx, "orders.completed", payload); err != nil {
		slog.Warn("fulfillment: event publish failed", "order", o.ID, "error", err)
	}
}
