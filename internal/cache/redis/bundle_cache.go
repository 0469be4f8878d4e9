package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cardhawk/internal/domain"
)

// BundleCache implements domain.BundleCache. Each pricing bundle is stored
// as a JSON string at key "bundle:{serial}" with the configured TTL;
// entries are replaced wholesale, never partially updated.
type BundleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBundleCache creates a BundleCache backed by the given Client. ttl
// bounds how long an extracted bundle is served before a listing forces a
// live catalog re-fetch.
func NewBundleCache(c *Client, ttl time.Duration) *BundleCache {
	return &BundleCache{rdb: c.Underlying(), ttl: ttl}
}

func bundleKey(serial string) string {
	return "bundle:" + serial
}

// Get retrieves the pricing bundle for a serial. It returns
// domain.ErrNotFound when the key does not exist or has expired.
func (bc *BundleCache) Get(ctx context.Context, serial string) (domain.PricingBundle, error) {
	data, err := bc.rdb.Get(ctx, bundleKey(serial)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.PricingBundle{}, domain.ErrNotFound
		}
		return domain.PricingBundle{}, fmt.Errorf("redis: get bundle %s: %w", serial, err)
	}

	var bundle domain.PricingBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return domain.PricingBundle{}, fmt.Errorf("redis: unmarshal bundle %s: %w", serial, err)
	}
	return bundle, nil
}

// Set stores a pricing bundle under the listing serial with the configured
// expiry.
func (bc *BundleCache) Set(ctx context.Context, serial string, bundle domain.PricingBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("redis: marshal bundle %s: %w", serial, err)
	}

	if err := bc.rdb.Set(ctx, bundleKey(serial), data, bc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set bundle %s: %w", serial, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.BundleCache = (*BundleCache)(nil)
