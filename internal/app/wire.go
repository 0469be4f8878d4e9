package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "cardhawk/internal/blob/s3"
	"cardhawk/internal/cache/memory"
	"cardhawk/internal/cache/redis"
	"cardhawk/internal/catalog"
	"cardhawk/internal/config"
	"cardhawk/internal/domain"
	"cardhawk/internal/evaluate"
	"cardhawk/internal/marketplace"
	"cardhawk/internal/normalize"
	"cardhawk/internal/notify"
	"cardhawk/internal/pipeline"
	"cardhawk/internal/store/postgres"
)

// Dependencies bundles everything the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Reconciler *pipeline.Reconciler
	Notifier   *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
//
// Redis, Postgres, and S3 are each optional. A Redis connection failure is
// never fatal: the cache falls back to process memory and only loses
// cross-run reuse.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Bundle cache: Redis when configured and reachable, memory otherwise ---
	var bundleCache domain.BundleCache
	if cfg.RedisEnabled() {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			logger.Warn("redis unavailable, caching in process memory",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		} else {
			closers = append(closers, func() { _ = redisClient.Close() })
			bundleCache = redis.NewBundleCache(redisClient, cfg.Engine.CacheTTL.Duration)
		}
	}
	if bundleCache == nil {
		bundleCache = memory.NewBundleCache(cfg.Engine.CacheTTL.Duration)
	}

	// --- PostgreSQL (optional persistence) ---
	var (
		watermarks domain.WatermarkStore
		signals    domain.SignalStore
	)
	if cfg.PostgresEnabled() {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		watermarks = postgres.NewWatermarkStore(pool)
		signals = postgres.NewSignalStore(pool)
	}

	// --- S3 feed snapshots (optional) ---
	var snapshots pipeline.Snapshotter
	if cfg.S3Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		// Fail at startup rather than on the first snapshot of a scan.
		if err := s3Client.Health(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3 health: %w", err)
		}
		snapshots = s3blob.NewSnapshotter(s3Client)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if len(cfg.Notify.DiscordWebhooks) > 0 {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhooks))
	}
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Feed and catalog clients ---
	feed := marketplace.NewClient(marketplace.ClientConfig{
		StorefrontURL: cfg.Marketplace.StorefrontURL,
		QueryURL:      cfg.Marketplace.QueryURL,
		AssetBaseURL:  cfg.Marketplace.AssetBaseURL,
		UserAgent:     cfg.Marketplace.UserAgent,
	})
	matcher := catalog.NewMatcher(catalog.NewClient(catalog.ClientConfig{
		SearchURL:     cfg.Catalog.SearchURL,
		ProductMarker: cfg.Catalog.ProductMarker,
		UserAgent:     cfg.Catalog.UserAgent,
	}), logger)

	deps.Reconciler = pipeline.NewReconciler(pipeline.ReconcilerConfig{
		Feed:        feed,
		Matcher:     matcher,
		Cache:       bundleCache,
		Arbitrage:   evaluate.NewArbitrageEvaluator(cfg.Engine.MarginThreshold),
		Offers:      evaluate.NewOfferEvaluator(cfg.Engine.SellingFee),
		Notifier:    deps.Notifier,
		Watermarks:  watermarks,
		Signals:     signals,
		Snapshots:   snapshots,
		FeedName:    cfg.Marketplace.Feed,
		PageSize:    cfg.Marketplace.PageSize,
		PacingDelay: cfg.Engine.PacingDelay.Duration,
		Normalize:   normalize.Options{FoldTitle: cfg.Engine.FoldTitle},
	}, logger)

	return deps, cleanup, nil
}
