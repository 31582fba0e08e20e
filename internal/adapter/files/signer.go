// Package files implements HMAC-signed, time-limited download URLs for
// the file delivery endpoint.
package files

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/waveforge/waveforge/internal/config"
)

// Signer mints and validates signed file URLs. The signature covers the
// file key and the expiry so neither can be swapped.
type Signer struct {
	baseURL string
	secret  []byte
}

// NewSigner creates a signer from the files configuration.
func NewSigner(cfg config.Files) *Signer {
	return &Signer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  []byte(cfg.SigningSecret),
	}
}

// SignedURL returns a delivery URL valid until expiresAt.
func (s *Signer) SignedURL(fileKey string, expiresAt time.Time) (string, error) {
	if fileKey == "" {
		return "", fmt.Errorf("empty file key")
	}
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	sig := s.sign(fileKey, exp)

	q := url.Values{}
	q.Set("expires", exp)
	q.Set("sig", sig)
	return s.baseURL + "/" + pathEscapeKey(fileKey) + "?" + q.Encode(), nil
}

// Verify checks a signature produced by SignedURL against the current time.
func (s *Signer) Verify(fileKey, exp, sig string, now time.Time) bool {
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil || now.After(time.Unix(expUnix, 0)) {
		return false
	}
	expected := s.sign(fileKey, exp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *Signer) sign(fileKey, exp string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(fileKey))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(exp))
	return hex.EncodeToString(mac.Sum(nil))
}

// pathEscapeKey escapes each path segment while keeping slashes intact.
func pathEscapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
