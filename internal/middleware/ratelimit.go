package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"sync"
	"time"
)

// WindowLimiter is a sliding-window request limiter keyed by an arbitrary
// string (client IP, submitter email). Counters live in process memory and
// reset on restart; this is an abuse guard, not a quota system.
type WindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	span    time.Duration
	maxKeys int // max tracked keys (prevents memory exhaustion)
	now     func() time.Time
}

type window struct {
	// hits holds request timestamps inside the current span, oldest first.
	hits     []time.Time
	lastSeen time.Time
}

// NewWindowLimiter creates a limiter allowing limit requests per span per key.
func NewWindowLimiter(limit int, span time.Duration) *WindowLimiter {
	return &WindowLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
		maxKeys: 100000,
		now:     time.Now,
	}
}

// Allow records a request for key and reports whether it is within the
// window. retryAfter is the wait until the oldest in-window hit expires.
func (l *WindowLimiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.span)

	w, exists := l.windows[key]
	if !exists {
		if len(l.windows) >= l.maxKeys {
			return false, l.span // reject when at capacity
		}
		w = &window{}
		l.windows[key] = w
	}

	// Drop hits that fell out of the window.
	i := 0
	for i < len(w.hits) && !w.hits[i].After(cutoff) {
		i++
	}
	w.hits = w.hits[i:]
	w.lastSeen = now

	if len(w.hits) >= l.limit {
		return false, w.hits[0].Add(l.span).Sub(now)
	}

	w.hits = append(w.hits, now)
	return true, 0
}

// Handler returns HTTP middleware that enforces the limiter per client IP.
func (l *WindowLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := l.Allow(realIP(r))
		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", math.Ceil(retryAfter.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartCleanup spawns a goroutine that removes idle windows every interval.
// Returns a cancel function that stops the cleanup goroutine.
func (l *WindowLimiter) StartCleanup(interval, maxIdle time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				l.cleanup(maxIdle)
			}
		}
	}()
	return func() { close(done) }
}

func (l *WindowLimiter) cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-maxIdle)
	for key, w := range l.windows {
		if w.lastSeen.Before(cutoff) {
			delete(l.windows, key)
		}
	}
}

// Len returns the number of tracked keys (for metrics and testing).
func (l *WindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// realIP extracts the client IP from RemoteAddr.
// Proxy headers (X-Forwarded-For, X-Real-Ip) are NOT trusted because
// they can be spoofed by attackers to bypass rate limiting.
func realIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
