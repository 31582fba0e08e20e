// Package files defines the download URL signing port.
package files

import "time"

// Signer produces time-limited signed URLs for stored audio files.
type Signer interface {
	SignedURL(fileKey string, expiresAt time.Time) (string, error)
}
