package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/waveforge/waveforge/internal/domain/order"
)

const orderColumns = `id, tenant_id, customer_email, customer_name, total, status,
	payment_provider, payment_transaction_id, discount_code, download_expires_at, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*order.Order, error) {
	var (
		o             order.Order
		transactionID *string
		discountCode  *string
	)
	err := row.Scan(&o.ID, &o.TenantID, &o.CustomerEmail, &o.CustomerName, &o.Total,
		&o.Status, &o.PaymentProvider, &transactionID, &discountCode,
		&o.DownloadExpiresAt, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if transactionID != nil {
		o.PaymentTransactionID = *transactionID
	}
	if discountCode != nil {
		o.DiscountCode = *discountCode
	}
	return &o, nil
}

// CreateOrder inserts the order and all its items in one transaction. The
// commit happens before any payment-provider call, so a webhook racing the
// redirect always finds complete line items.
func (s *Store) CreateOrder(ctx context.Context, o *order.Order, items []order.Item) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, tenant_id, customer_email, customer_name, total, status,
		                     payment_provider, discount_code, download_expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.TenantID, o.CustomerEmail, o.CustomerName, o.Total, o.Status,
		o.PaymentProvider, nullIfEmpty(o.DiscountCode), o.DownloadExpiresAt, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range items {
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, item_type, beat_id, license_tier_id,
			                          sound_kit_id, title, license_name, price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.OrderID, it.ItemType, nullIfEmpty(it.BeatID), nullIfEmpty(it.LicenseTierID),
			nullIfEmpty(it.SoundKitID), it.Title, nullIfEmpty(it.LicenseName), it.Price)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFoundWrap(err, "get order %s", id)
	}
	return o, nil
}

// GetCompletedOrderForEmail serves the download-access flow: the order
// must be completed and owned by the given email (case-insensitive).
func (s *Store) GetCompletedOrderForEmail(ctx context.Context, id, email string) (*order.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE id = $1 AND lower(customer_email) = lower($2) AND status = 'completed'`,
		id, strings.TrimSpace(email))
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFoundWrap(err, "get completed order %s", id)
	}
	return o, nil
}

func (s *Store) GetOrderItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, order_id, item_type, beat_id, license_tier_id, sound_kit_id,
		        title, license_name, price, download_count
		 FROM order_items WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var (
			it            order.Item
			beatID        *string
			licenseTierID *string
			soundKitID    *string
			licenseName   *string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemType, &beatID, &licenseTierID,
			&soundKitID, &it.Title, &licenseName, &it.Price, &it.DownloadCount); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if beatID != nil {
			it.BeatID = *beatID
		}
		if licenseTierID != nil {
			it.LicenseTierID = *licenseTierID
		}
		if soundKitID != nil {
			it.SoundKitID = *soundKitID
		}
		if licenseName != nil {
			it.LicenseName = *licenseName
		}
		items = append(items, it)
	}
	return orEmpty(items), rows.Err()
}

// CompleteOrder flips pending→completed with a conditional update. The
// WHERE status = 'pending' clause is the guard against the verify/webhook
// race: both may observe "paid", only one update takes effect. committed
// reports whether this call performed the transition.
func (s *Store) CompleteOrder(ctx context.Context, id, transactionID string, downloadExpiresAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders
		 SET status = 'completed', payment_transaction_id = $2, download_expires_at = $3
		 WHERE id = $1 AND status = 'pending'`,
		id, transactionID, downloadExpiresAt)
	if err != nil {
		return false, fmt.Errorf("complete order %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// FailOrder flips pending→failed under the same guard.
func (s *Store) FailOrder(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = 'failed' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, fmt.Errorf("fail order %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementDownloadCount bumps the per-item telemetry counter.
func (s *Store) IncrementDownloadCount(ctx context.Context, itemID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE order_items SET download_count = download_count + 1 WHERE id = $1`, itemID)
	return execExpectOne(tag, err, "increment download count %s", itemID)
}
