// Package service contains the storefront application services.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/waveforge/waveforge/internal/domain"
	"github.com/waveforge/waveforge/internal/domain/tenant"
	"github.com/waveforge/waveforge/internal/port/cache"
	"github.com/waveforge/waveforge/internal/port/store"
)

// Resolution is the outcome of hostname-to-tenant resolution. Landing means
// the generic SaaS experience applies; it is a normal outcome, not an error.
type Resolution struct {
	Tenant  *tenant.Tenant `json:"tenant,omitempty"`
	Landing bool           `json:"landing"`
}

// Resolver maps an inbound hostname (and optionally the authenticated
// user) to the tenant whose storefront the request operates against.
type Resolver struct {
	store        store.TenantStore
	cache        cache.Cache
	cacheTTL     time.Duration
	rootDomains  []string
	previewHosts map[string]bool
}

// NewResolver creates a Resolver. cache may be nil to disable caching.
func NewResolver(s store.TenantStore, c cache.Cache, cacheTTL time.Duration, rootDomains, previewHosts []string) *Resolver {
	preview := make(map[string]bool, len(previewHosts))
	for _, h := range previewHosts {
		preview[strings.ToLower(h)] = true
	}
	roots := make([]string, len(rootDomains))
	for i, d := range rootDomains {
		roots[i] = strings.ToLower(d)
	}
	return &Resolver{
		store:        s,
		cache:        c,
		cacheTTL:     cacheTTL,
		rootDomains:  roots,
		previewHosts: preview,
	}
}

// Resolve determines the tenant scope for host. ownerUserID is the
// authenticated user id, or empty for anonymous requests; callers must not
// invoke Resolve before authentication state has settled, or the
// reserved-host path would miss the owner's tenant.
//
// Ordered, first match wins: reserved/preview host (owner's active tenant,
// else landing); subdomain slug under a root domain; exact active custom
// domain; landing. Lookup errors degrade to landing and are returned for
// logging; they never resolve to an arbitrary tenant.
func (r *Resolver) Resolve(ctx context.Context, host, ownerUserID string) (Resolution, error) {
	host = normalizeHost(host)
	if host == "" {
		return Resolution{Landing: true}, nil
	}

	// 1. Reserved SaaS root or preview host: authenticated owners land on
	// their own storefront, everyone else sees the landing page. Not
	// cached; the outcome depends on who is asking.
	if r.isReservedHost(host) {
		if ownerUserID == "" {
			return Resolution{Landing: true}, nil
		}
		t, err := r.store.GetTenantByOwner(ctx, ownerUserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return Resolution{Landing: true}, nil
			}
			return Resolution{Landing: true}, fmt.Errorf("resolve owner tenant: %w", err)
		}
		if !t.Active() {
			return Resolution{Landing: true}, nil
		}
		return Resolution{Tenant: t}, nil
	}

	if res, ok := r.fromCache(ctx, host); ok {
		return res, nil
	}

	// 2. Subdomain of a root domain; "www" is not a slug.
	if slug, ok := r.subdomainSlug(host); ok {
		t, err := r.store.GetTenantBySlug(ctx, slug)
		switch {
		case err == nil && t.Active():
			res := Resolution{Tenant: t}
			r.toCache(ctx, host, res)
			return res, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return Resolution{Landing: true}, fmt.Errorf("resolve slug %q: %w", slug, err)
		}
		// Unknown or inactive slug falls through to custom-domain lookup:
		// the bare hostname could still be someone's verified domain.
	}

	// 3. Exact custom domain, usable only when the domain row is active
	// and its tenant is active.
	d, err := r.store.GetActiveDomain(ctx, host)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			res := Resolution{Landing: true}
			r.toCache(ctx, host, res)
			return res, nil
		}
		return Resolution{Landing: true}, fmt.Errorf("resolve domain %q: %w", host, err)
	}
	t, err := r.store.GetTenant(ctx, d.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Resolution{Landing: true}, nil
		}
		return Resolution{Landing: true}, fmt.Errorf("resolve domain tenant: %w", err)
	}
	if !t.Active() {
		return Resolution{Landing: true}, nil
	}
	res := Resolution{Tenant: t}
	r.toCache(ctx, host, res)
	return res, nil
}

// isReservedHost reports whether host is a preview host or a bare/"www"
// root domain.
func (r *Resolver) isReservedHost(host string) bool {
	if r.previewHosts[host] {
		return true
	}
	for _, root := range r.rootDomains {
		if host == root || host == "www."+root {
			return true
		}
	}
	return false
}

// subdomainSlug extracts the candidate slug when host sits under a root
// domain. Returns false for bare roots and "www".
func (r *Resolver) subdomainSlug(host string) (string, bool) {
	for _, root := range r.rootDomains {
		if !strings.HasSuffix(host, "."+root) {
			continue
		}
		label := strings.TrimSuffix(host, "."+root)
		if label == "" || label == "www" {
			return "", false
		}
		return label, true
	}
	return "", false
}

func (r *Resolver) fromCache(ctx context.Context, host string) (Resolution, bool) {
	if r.cache == nil {
		return Resolution{}, false
	}
	data, ok, err := r.cache.Get(ctx, "resolve:"+host)
	if err != nil || !ok {
		return Resolution{}, false
	}
	var res Resolution
	if err := json.Unmarshal(data, &res); err != nil {
		return Resolution{}, false
	}
	return res, true
}

func (r *Resolver) toCache(ctx context.Context, host string, res Resolution) {
	if r.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, "resolve:"+host, data, r.cacheTTL); err != nil {
		slog.Debug("resolver cache set failed", "host", host, "error", err)
	}
}

// normalizeHost lowercases host and strips any port.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
