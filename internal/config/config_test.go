package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Marketplace.StorefrontURL = "https://market.example/marketplace?page=1&cat=cards"
	cfg.Marketplace.QueryURL = "https://api.market.example/index/query"
	cfg.Marketplace.AssetBaseURL = "https://market.example/item/"
	cfg.Catalog.SearchURL = "https://catalog.example/search"
	return cfg
}

func TestValidateAcceptsFilledDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Mode = "bogus"
	cfg.Catalog.SearchURL = ""
	cfg.Engine.SellingFee = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "search_url")
	assert.Contains(t, err.Error(), "selling_fee")
}

func TestDurationUnmarshalText(t *testing.T) {
	var d duration
	require.NoError(t, d.UnmarshalText([]byte("72h")))
	assert.Equal(t, 72*time.Hour, d.Duration)

	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CARDHAWK_ENGINE_MARGIN_THRESHOLD", "0.02")
	t.Setenv("CARDHAWK_ENGINE_CACHE_TTL", "24h")
	t.Setenv("CARDHAWK_REDIS_ADDR", "redis.example:6379")
	t.Setenv("CARDHAWK_NOTIFY_DISCORD_WEBHOOK_URL", "https://discord.example/hook")

	cfg := validConfig()
	applyEnvOverrides(&cfg)

	assert.Equal(t, 0.02, cfg.Engine.MarginThreshold)
	assert.Equal(t, 24*time.Hour, cfg.Engine.CacheTTL.Duration)
	assert.Equal(t, "redis.example:6379", cfg.Redis.Addr)
	assert.Equal(t, "https://discord.example/hook", cfg.Notify.DiscordWebhooks[""])
}

func TestDefaultsMatchDeploymentExpectations(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 0.15, cfg.Engine.MarginThreshold)
	assert.Equal(t, 0.065, cfg.Engine.SellingFee)
	assert.Equal(t, 72*time.Hour, cfg.Engine.CacheTTL.Duration)
	assert.Equal(t, "/game/", cfg.Catalog.ProductMarker)
	assert.Equal(t, "monitor", cfg.Mode)
}
