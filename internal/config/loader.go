package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CARDHAWK_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known CARDHAWK_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Marketplace ──
	setStr(&cfg.Marketplace.StorefrontURL, "CARDHAWK_MARKETPLACE_STOREFRONT_URL")
	setStr(&cfg.Marketplace.QueryURL, "CARDHAWK_MARKETPLACE_QUERY_URL")
	setStr(&cfg.Marketplace.AssetBaseURL, "CARDHAWK_MARKETPLACE_ASSET_BASE_URL")
	setStr(&cfg.Marketplace.UserAgent, "CARDHAWK_MARKETPLACE_USER_AGENT")
	setStr(&cfg.Marketplace.Feed, "CARDHAWK_MARKETPLACE_FEED")
	setInt(&cfg.Marketplace.PageSize, "CARDHAWK_MARKETPLACE_PAGE_SIZE")

	// ── Catalog ──
	setStr(&cfg.Catalog.SearchURL, "CARDHAWK_CATALOG_SEARCH_URL")
	setStr(&cfg.Catalog.ProductMarker, "CARDHAWK_CATALOG_PRODUCT_MARKER")
	setStr(&cfg.Catalog.UserAgent, "CARDHAWK_CATALOG_USER_AGENT")

	// ── Engine ──
	setFloat64(&cfg.Engine.MarginThreshold, "CARDHAWK_ENGINE_MARGIN_THRESHOLD")
	setFloat64(&cfg.Engine.SellingFee, "CARDHAWK_ENGINE_SELLING_FEE")
	setDuration(&cfg.Engine.CacheTTL, "CARDHAWK_ENGINE_CACHE_TTL")
	setDuration(&cfg.Engine.PacingDelay, "CARDHAWK_ENGINE_PACING_DELAY")
	setDuration(&cfg.Engine.ScanInterval, "CARDHAWK_ENGINE_SCAN_INTERVAL")
	setBool(&cfg.Engine.FoldTitle, "CARDHAWK_ENGINE_FOLD_TITLE")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "CARDHAWK_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "CARDHAWK_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "CARDHAWK_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "CARDHAWK_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "CARDHAWK_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "CARDHAWK_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "CARDHAWK_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "CARDHAWK_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "CARDHAWK_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "CARDHAWK_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "CARDHAWK_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "CARDHAWK_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "CARDHAWK_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "CARDHAWK_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "CARDHAWK_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "CARDHAWK_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "CARDHAWK_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "CARDHAWK_S3_REGION")
	setStr(&cfg.S3.Bucket, "CARDHAWK_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "CARDHAWK_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "CARDHAWK_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "CARDHAWK_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "CARDHAWK_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "CARDHAWK_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "CARDHAWK_NOTIFY_TELEGRAM_CHAT_ID")
	setStringSlice(&cfg.Notify.Events, "CARDHAWK_NOTIFY_EVENTS")
	if v := os.Getenv("CARDHAWK_NOTIFY_DISCORD_WEBHOOK_URL"); v != "" {
		if cfg.Notify.DiscordWebhooks == nil {
			cfg.Notify.DiscordWebhooks = map[string]string{}
		}
		cfg.Notify.DiscordWebhooks[""] = v
	}

	// ── Top-level ──
	setStr(&cfg.Mode, "CARDHAWK_MODE")
	setStr(&cfg.LogLevel, "CARDHAWK_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
