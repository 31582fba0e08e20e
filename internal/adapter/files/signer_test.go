package files

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/waveforge/waveforge/internal/config"
)

func newTestSigner() *Signer {
	return NewSigner(config.Files{
		BaseURL:       "https://files.example.com/d",
		SigningSecret: "test-secret",
	})
}

func TestSignedURLRoundTrip(t *testing.T) {
	s := newTestSigner()
	expires := time.Now().Add(15 * time.Minute)

	raw, err := s.SignedURL("beats/abc/track.wav", expires)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.HasPrefix(raw, "https://files.example.com/d/beats/abc/track.wav?") {
		t.Fatalf("unexpected URL: %s", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	exp := u.Query().Get("expires")
	sig := u.Query().Get("sig")

	if !s.Verify("beats/abc/track.wav", exp, sig, time.Now()) {
		t.Error("signature should verify before expiry")
	}
	if s.Verify("beats/abc/other.wav", exp, sig, time.Now()) {
		t.Error("signature must not verify for a different file key")
	}
	if s.Verify("beats/abc/track.wav", exp, sig, expires.Add(time.Second)) {
		t.Error("signature must not verify after expiry")
	}
}

func TestSignedURLTamperedExpiry(t *testing.T) {
	s := newTestSigner()
	expires := time.Now().Add(time.Minute)

	raw, err := s.SignedURL("kits/drum.zip", expires)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	u, _ := url.Parse(raw)
	sig := u.Query().Get("sig")

	later := strconv.FormatInt(time.Now().Add(24*time.Hour).Unix(), 10)
	if s.Verify("kits/drum.zip", later, sig, time.Now()) {
		t.Error("extended expiry must break the signature")
	}
}

func TestSignedURLEmptyKey(t *testing.T) {
	s := newTestSigner()
	if _, err := s.SignedURL("", time.Now().Add(time.Minute)); err == nil {
		t.Error("expected error for empty file key")
	}
}
