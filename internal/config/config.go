// Package config defines the top-level configuration for the cardhawk
// monitor and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by CARDHAWK_* environment
// variables.
type Config struct {
	Marketplace MarketplaceConfig `toml:"marketplace"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Engine      EngineConfig      `toml:"engine"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	S3          S3Config          `toml:"s3"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// MarketplaceConfig holds the storefront feed endpoints.
type MarketplaceConfig struct {
	// StorefrontURL is the browse URL as copied from the storefront,
	// including its page parameter; its filter parameters carry over to
	// every feed query. Optional when the feed needs no filters.
	StorefrontURL string `toml:"storefront_url"`
	// QueryURL is the index-query API root.
	QueryURL string `toml:"query_url"`
	// AssetBaseURL is the public listing page prefix; the listing's proof
	// of integrity is appended to it.
	AssetBaseURL string `toml:"asset_base_url"`
	UserAgent    string `toml:"user_agent"`
	// Feed names the watermark for this storefront.
	Feed     string `toml:"feed"`
	PageSize int    `toml:"page_size"`
}

// CatalogConfig holds the price-catalog endpoints.
type CatalogConfig struct {
	SearchURL     string `toml:"search_url"`
	ProductMarker string `toml:"product_marker"`
	UserAgent     string `toml:"user_agent"`
}

// EngineConfig holds the evaluation thresholds and pacing.
type EngineConfig struct {
	// MarginThreshold is the minimum catalog-over-listing margin, as a
	// fraction, for an arbitrage signal.
	MarginThreshold float64 `toml:"margin_threshold"`
	// SellingFee is the marketplace fee fraction applied to the listing
	// price when evaluating offers.
	SellingFee float64 `toml:"selling_fee"`
	// CacheTTL bounds how long a catalog pricing bundle may be reused.
	CacheTTL duration `toml:"cache_ttl"`
	// PacingDelay is the wait inserted after each live catalog fetch.
	PacingDelay duration `toml:"pacing_delay"`
	// ScanInterval is how often monitor mode starts a new scan.
	ScanInterval duration `toml:"scan_interval"`
	// FoldTitle folds attributes whose names contain "Title" into the
	// canonical title during normalization.
	FoldTitle bool `toml:"fold_title"`
}

// RedisConfig holds Redis connection parameters. An empty Addr disables
// Redis; the cache then runs in process memory.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters. Leaving both DSN
// and Host empty disables persistence; signals are then notify-only and no
// watermark survives restarts.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for feed page
// snapshots. An empty Bucket disables snapshots.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials. DiscordWebhooks maps
// an event name to a webhook URL; the "" key is the default route.
type NotifyConfig struct {
	DiscordWebhooks map[string]string `toml:"discord_webhooks"`
	TelegramToken   string            `toml:"telegram_token"`
	TelegramChatID  string            `toml:"telegram_chat_id"`
	Events          []string          `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "72h", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "72h" or "500ms".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Marketplace: MarketplaceConfig{
			Feed:     "storefront",
			PageSize: 40,
		},
		Catalog: CatalogConfig{
			ProductMarker: "/game/",
		},
		Engine: EngineConfig{
			MarginThreshold: 0.15,
			SellingFee:      0.065,
			CacheTTL:        duration{72 * time.Hour},
			PacingDelay:     duration{2 * time.Second},
			ScanInterval:    duration{15 * time.Minute},
			FoldTitle:       false,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "cardhawk",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"arb_detected", "offer_detected", "error"},
		},
		Mode:     "monitor",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":    true,
	"monitor": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, monitor)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Marketplace
	if c.Marketplace.QueryURL == "" {
		errs = append(errs, "marketplace: query_url must not be empty")
	}
	if c.Marketplace.AssetBaseURL == "" {
		errs = append(errs, "marketplace: asset_base_url must not be empty")
	}
	if c.Marketplace.Feed == "" {
		errs = append(errs, "marketplace: feed must not be empty")
	}
	if c.Marketplace.PageSize < 1 {
		errs = append(errs, "marketplace: page_size must be >= 1")
	}

	// Catalog
	if c.Catalog.SearchURL == "" {
		errs = append(errs, "catalog: search_url must not be empty")
	}
	if c.Catalog.ProductMarker == "" {
		errs = append(errs, "catalog: product_marker must not be empty")
	}

	// Engine
	if c.Engine.MarginThreshold < 0 {
		errs = append(errs, "engine: margin_threshold must be >= 0")
	}
	if c.Engine.SellingFee < 0 || c.Engine.SellingFee >= 1 {
		errs = append(errs, fmt.Sprintf("engine: selling_fee must be in [0, 1), got %v", c.Engine.SellingFee))
	}
	if c.Engine.CacheTTL.Duration <= 0 {
		errs = append(errs, "engine: cache_ttl must be positive")
	}
	if c.Engine.PacingDelay.Duration < 0 {
		errs = append(errs, "engine: pacing_delay must be >= 0")
	}
	if c.Mode == "monitor" && c.Engine.ScanInterval.Duration <= 0 {
		errs = append(errs, "engine: scan_interval must be positive in monitor mode")
	}

	// Redis
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Postgres
	if postgresEnabled(c.Postgres) {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Bucket != "" {
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when bucket is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// postgresEnabled reports whether any Postgres connection source is
// configured.
func postgresEnabled(p PostgresConfig) bool {
	return strings.TrimSpace(p.DSN) != "" || p.Host != ""
}

// PostgresEnabled reports whether persistence is configured.
func (c *Config) PostgresEnabled() bool {
	return postgresEnabled(c.Postgres)
}

// RedisEnabled reports whether the shared cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// S3Enabled reports whether feed snapshots are configured.
func (c *Config) S3Enabled() bool {
	return c.S3.Bucket != ""
}
