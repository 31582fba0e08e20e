// Package order defines the order aggregate: one checkout attempt and its
// immutable line-item snapshots.
package order

import "time"

// Status is the order state. Transitions are pending→completed or
// pending→failed only; terminal states are absorbing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ItemType distinguishes the two purchasable variants.
type ItemType string

const (
	ItemBeat     ItemType = "beat"
	ItemSoundKit ItemType = "sound_kit"
)

// Order represents one checkout attempt. Total is fixed at creation time
// from the submitted item prices; re-verification never recomputes it from
// current catalog prices.
type Order struct {
	ID                   string    `json:"id"`
	TenantID             string    `json:"tenant_id"`
	CustomerEmail        string    `json:"customer_email"`
	CustomerName         string    `json:"customer_name"`
	Total                float64   `json:"total"`
	Status               Status    `json:"status"`
	PaymentProvider      string    `json:"payment_provider"`
	PaymentTransactionID string    `json:"payment_transaction_id,omitempty"`
	DiscountCode         string    `json:"discount_code,omitempty"`
	DownloadExpiresAt    time.Time `json:"download_expires_at"`
	CreatedAt            time.Time `json:"created_at"`
}

// Item is one priced line within an order. Title, license name and price
// are snapshots captured at order time; later catalog edits must not
// alter historical orders.
type Item struct {
	ID            string   `json:"id"`
	OrderID       string   `json:"order_id"`
	ItemType      ItemType `json:"item_type"`
	BeatID        string   `json:"beat_id,omitempty"`
	LicenseTierID string   `json:"license_tier_id,omitempty"`
	SoundKitID    string   `json:"sound_kit_id,omitempty"`
	Title         string   `json:"title"`
	LicenseName   string   `json:"license_name,omitempty"`
	Price         float64  `json:"price"`
	DownloadCount int      `json:"download_count"`
}

// ItemInput is one submitted cart line in a checkout request.
type ItemInput struct {
	ItemType      ItemType `json:"itemType"`
	BeatID        string   `json:"beatId,omitempty"`
	LicenseTierID string   `json:"licenseTierId,omitempty"`
	SoundKitID    string   `json:"soundKitId,omitempty"`
	Title         string   `json:"title"`
	LicenseName   string   `json:"licenseName,omitempty"`
	Price         float64  `json:"price"`
}

// CheckoutRequest is the common checkout payload for both providers.
type CheckoutRequest struct {
	Items          []ItemInput `json:"items"`
	CustomerEmail  string      `json:"customerEmail"`
	CustomerName   string      `json:"customerName"`
	DiscountCode   string      `json:"discountCode,omitempty"`
	DiscountAmount float64     `json:"discountAmount,omitempty"`
}

// SubmittedTotal sums the submitted item prices. The stored order total
// and the provider line items must both derive from this one sum.
func (r CheckoutRequest) SubmittedTotal() float64 {
	var sum float64
	for _, it := range r.Items {
		sum += it.Price
	}
	return sum
}
