// Package memory provides an in-memory implementation of the reconciliation
// cache, used by tests and as the fallback when no Redis is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"cardhawk/internal/domain"
)

type entry struct {
	bundle    domain.PricingBundle
	expiresAt time.Time
}

// BundleCache is a mutex-guarded in-memory domain.BundleCache with per-entry
// expiry.
type BundleCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewBundleCache creates an empty in-memory cache with the given TTL.
func NewBundleCache(ttl time.Duration) *BundleCache {
	return &BundleCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the stored bundle, or domain.ErrNotFound on a miss or an
// expired entry. Expired entries are dropped on access.
func (c *BundleCache) Get(_ context.Context, serial string) (domain.PricingBundle, error) {
	c.mu.RLock()
	e, ok := c.entries[serial]
	c.mu.RUnlock()

	if !ok {
		return domain.PricingBundle{}, domain.ErrNotFound
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, serial)
		c.mu.Unlock()
		return domain.PricingBundle{}, domain.ErrNotFound
	}
	return e.bundle, nil
}

// Set stores a bundle under the serial, replacing any previous entry.
func (c *BundleCache) Set(_ context.Context, serial string, bundle domain.PricingBundle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[serial] = entry{
		bundle:    bundle,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Len returns the number of live entries, expired or not.
func (c *BundleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Compile-time interface check.
var _ domain.BundleCache = (*BundleCache)(nil)
