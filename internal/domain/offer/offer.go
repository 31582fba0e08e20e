// Package offer defines buyer price offers on beats (the inquiry surface).
package offer

import "time"

// Offer is a buyer's proposed price for a beat, relayed to the producer.
type Offer struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	BeatID    string    `json:"beat_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Amount    float64   `json:"amount"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest is the submission payload.
type CreateRequest struct {
	BeatID  string  `json:"beatId"`
	Email   string  `json:"email"`
	Name    string  `json:"name,omitempty"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message,omitempty"`
}
