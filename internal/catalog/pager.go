package catalog

import (
	"context"
	"strconv"
	"time"
)

const (
	pagerScope   = "pager"
	pagerMinSize = 5
	pagerMaxSize = 100
	pagerTTL     = 30 * 24 * time.Hour
)

type pagerStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	CacheKey(scope, id string) string
}

// PagerPrefs remembers the page size a visitor picked, keyed by their cart
// session token. Unknown or garbled values fall back to the given default.
type PagerPrefs struct {
	store pagerStore
	isNil func(error) bool
}

// NewPagerPrefs constructs the pager preference store.
func NewPagerPrefs(store pagerStore, isNil func(error) bool) *PagerPrefs {
	return &PagerPrefs{store: store, isNil: isNil}
}

// Remember persists the clamped page size for the session.
func (p *PagerPrefs) Remember(ctx context.Context, sessionToken string, size int) (int, error) {
	size = clampPageSize(size)
	err := p.store.Set(ctx, p.store.CacheKey(pagerScope, sessionToken), strconv.Itoa(size), pagerTTL)
	return size, err
}

// Lookup returns the stored page size, or fallback when nothing usable is stored.
func (p *PagerPrefs) Lookup(ctx context.Context, sessionToken string, fallback int) int {
	raw, err := p.store.Get(ctx, p.store.CacheKey(pagerScope, sessionToken))
	if err != nil {
		return fallback
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return clampPageSize(size)
}

func clampPageSize(size int) int {
	if size < pagerMinSize {
		return pagerMinSize
	}
	if size > pagerMaxSize {
		return pagerMaxSize
	}
	return size
}
