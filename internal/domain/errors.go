// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates the request payload failed validation.
var ErrValidation = errors.New("validation failed")

// ErrIntegrity indicates an identity cross-check failure (order/session
// metadata mismatch, forged webhook signature). Never silently accepted.
var ErrIntegrity = errors.New("integrity check failed")

// ErrExpired indicates the download window for an order has closed.
var ErrExpired = errors.New("download window expired")

// ErrRateLimited indicates the caller exhausted a request window.
var ErrRateLimited = errors.New("rate limit exceeded")
