package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhawk/internal/domain"
)

func testBundle() domain.PricingBundle {
	price := 130.0
	return domain.PricingBundle{
		Prices:     domain.PriceTable{"PSA 10": &price, "SGC 10": nil},
		CatalogURL: "https://catalog.example.com/game/base-set/charizard-4",
		ImageURL:   "https://img.example.com/4.jpg",
		Liquidity:  domain.LiquidityBreakdown{"12", "3", "5", "9", "2", "41"},
		FetchedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBundleCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewBundleCache(72 * time.Hour)

	_, err := c.Get(ctx, "serial-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	want := testBundle()
	require.NoError(t, c.Set(ctx, "serial-1", want))

	got, err := c.Get(ctx, "serial-1")
	require.NoError(t, err)
	assert.Equal(t, want, got, "a stored bundle is returned verbatim within TTL")
}

func TestBundleCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewBundleCache(72 * time.Hour)

	base := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	require.NoError(t, c.Set(ctx, "serial-1", testBundle()))

	c.now = func() time.Time { return base.Add(71 * time.Hour) }
	_, err := c.Get(ctx, "serial-1")
	require.NoError(t, err)

	c.now = func() time.Time { return base.Add(73 * time.Hour) }
	_, err = c.Get(ctx, "serial-1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "after TTL the entry behaves as a miss")
	assert.Zero(t, c.Len(), "expired entries are dropped on access")
}

func TestBundleCacheWholesaleReplace(t *testing.T) {
	ctx := context.Background()
	c := NewBundleCache(time.Hour)

	require.NoError(t, c.Set(ctx, "serial-1", testBundle()))

	replacement := testBundle()
	replacement.CatalogURL = "https://catalog.example.com/game/base-set/charizard-4-holo"
	replacement.Liquidity = nil
	require.NoError(t, c.Set(ctx, "serial-1", replacement))

	got, err := c.Get(ctx, "serial-1")
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}
