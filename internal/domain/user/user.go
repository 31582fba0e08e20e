// Package user defines platform accounts. Auth here is deliberately thin:
// role lookup for tenant ownership and the platform-admin surface.
package user

import "time"

// Role controls access to the settings and platform-admin surfaces.
type Role string

const (
	// RoleOwner owns exactly one tenant storefront.
	RoleOwner Role = "owner"
	// RoleAdmin is a platform operator.
	RoleAdmin Role = "admin"
)

// User is a platform account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	APIToken     string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
}
