// Package pipeline drives the scan: page through the marketplace feed,
// normalize each listing, resolve catalog pricing through the cache, and
// evaluate arbitrage and offer signals.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cardhawk/internal/catalog"
	"cardhawk/internal/domain"
	"cardhawk/internal/evaluate"
	"cardhawk/internal/normalize"
	"cardhawk/internal/notify"
)

// Feed retrieves pages of marketplace listings.
type Feed interface {
	FetchPage(ctx context.Context, offset, limit int) (domain.FeedPage, error)
	ListingURL(proofOfIntegrity string) string
}

// CatalogMatcher resolves a normalized listing to its catalog pricing
// bundle.
type CatalogMatcher interface {
	Match(ctx context.Context, l domain.NormalizedListing) (domain.PricingBundle, error)
}

// Snapshotter archives raw feed pages for later replay.
type Snapshotter interface {
	SnapshotPage(ctx context.Context, runID string, page int, body []byte) error
}

// ReconcilerConfig wires a Reconciler's collaborators and tuning.
// Watermarks, Signals, and Snapshots are optional; a nil value disables
// that concern without affecting the scan itself.
type ReconcilerConfig struct {
	Feed      Feed
	Matcher   CatalogMatcher
	Cache     domain.BundleCache
	Arbitrage *evaluate.ArbitrageEvaluator
	Offers    *evaluate.OfferEvaluator
	Notifier  *notify.Notifier

	Watermarks domain.WatermarkStore
	Signals    domain.SignalStore
	Snapshots  Snapshotter

	// FeedName keys the watermark for this feed.
	FeedName string
	PageSize int
	// PacingDelay is the wait after each live catalog fetch. Cache hits
	// are never paced.
	PacingDelay time.Duration
	Normalize   normalize.Options
}

// Reconciler runs one scan of the feed. Per-listing failures are contained:
// a malformed listing, an unconfident match, or an unresolvable grade skips
// that listing and the scan continues.
type Reconciler struct {
	cfg    ReconcilerConfig
	logger *slog.Logger

	newRunID func() string
}

// NewReconciler creates a Reconciler.
func NewReconciler(cfg ReconcilerConfig, logger *slog.Logger) *Reconciler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 40
	}
	return &Reconciler{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "reconciler")),
		newRunID: uuid.NewString,
	}
}

// Run executes a single scan: newest listings first, stopping at the
// previous run's watermark when one exists, then advancing the watermark to
// the newest listing seen.
func (r *Reconciler) Run(ctx context.Context) error {
	runID := r.newRunID()
	logger := r.logger.With(slog.String("run_id", runID))
	logger.Info("scan started", slog.String("feed", r.cfg.FeedName))

	watermark := r.loadWatermark(ctx, logger)

	var (
		newestSerial string
		processed    int
		signals      int
	)

	// covered is true only when the scan reached the previous watermark or
	// the end of the feed. A scan cut short by a page fetch failure must
	// not advance the watermark, or the unreached listings would be
	// skipped by every future run.
	covered := false

	offset, pageNum := 0, 0
	for {
		page, err := r.cfg.Feed.FetchPage(ctx, offset, r.cfg.PageSize)
		if err != nil {
			if ctx.Err() == nil {
				if nerr := r.cfg.Notifier.Notify(ctx, notify.EventError, notify.ErrorEmbed("feed fetch", err)); nerr != nil {
					logger.Error("error notify failed", slog.String("error", nerr.Error()))
				}
			}
			if pageNum == 0 {
				return fmt.Errorf("pipeline: fetching first page: %w", err)
			}
			logger.Error("page fetch failed, stopping scan",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()),
			)
			break
		}

		r.snapshot(ctx, logger, runID, pageNum, page.Raw)

		if len(page.Listings) == 0 {
			covered = true
			break
		}

		hitWatermark := false
		for _, listing := range page.Listings {
			n := normalize.Flatten(listing.Attributes, r.cfg.Normalize)
			if n.Title == "" {
				n.Title = listing.Title
			}

			if newestSerial == "" && n.Serial != "" {
				newestSerial = n.Serial
			}

			if watermark != "" && n.Serial == watermark {
				hitWatermark = true
				break
			}

			emitted, err := r.processListing(ctx, logger, listing, n)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("listing skipped",
					slog.String("serial", n.Serial),
					slog.String("error", err.Error()),
				)
			}
			processed++
			signals += emitted
		}

		if hitWatermark {
			logger.Info("reached previous watermark", slog.String("serial", watermark))
			covered = true
			break
		}

		offset += r.cfg.PageSize
		pageNum++
		if page.Total > 0 && offset >= page.Total {
			covered = true
			break
		}
	}

	if covered && newestSerial != "" {
		r.saveWatermark(ctx, logger, newestSerial)
	} else if newestSerial != "" {
		logger.Warn("scan incomplete, watermark not advanced",
			slog.String("newest_serial", newestSerial),
		)
	}

	logger.Info("scan complete",
		slog.Int("processed", processed),
		slog.Int("signals", signals),
	)
	return nil
}

// RunLoop runs scans on a repeating interval until the context is
// cancelled.
func (r *Reconciler) RunLoop(ctx context.Context, interval time.Duration) error {
	// Run immediately on start.
	if err := r.Run(ctx); err != nil {
		r.logger.Error("scan failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.Run(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.logger.Error("scan failed", slog.String("error", err.Error()))
			}
		}
	}
}

// processListing evaluates one listing and returns how many signals it
// emitted. Offer evaluation runs first and does not depend on catalog data.
func (r *Reconciler) processListing(ctx context.Context, logger *slog.Logger, listing domain.Listing, n domain.NormalizedListing) (int, error) {
	if err := normalize.Validate(n); err != nil {
		return 0, err
	}

	emitted := 0
	listingURL := r.cfg.Feed.ListingURL(listing.ProofOfIntegrity)

	if r.evaluateOffers(ctx, logger, listing, n, listingURL) {
		emitted++
	}

	bundle, err := r.bundleFor(ctx, logger, n)
	if err != nil {
		if errors.Is(err, domain.ErrNoConfidentMatch) {
			logger.Debug("no confident catalog match",
				slog.String("serial", n.Serial),
				slog.String("title", n.Title),
			)
			return emitted, nil
		}
		return emitted, err
	}

	price, key, err := catalog.ResolvePrice(bundle.Prices, n.Grader, n.Grade)
	if err != nil {
		logger.Debug("grade unresolved",
			slog.String("serial", n.Serial),
			slog.String("grader", n.Grader),
			slog.String("grade", n.Grade),
		)
		return emitted, nil
	}

	marginPct, fired := r.cfg.Arbitrage.Evaluate(price, listing.PriceUSD)
	if !fired {
		return emitted, nil
	}

	sig := domain.ArbitrageSignal{
		Listing:      n,
		CardName:     n.Title,
		ImageURL:     bundle.ImageURL,
		CatalogURL:   bundle.CatalogURL,
		ListingURL:   listingURL,
		Volume:       catalog.VolumeForGrade(bundle.Liquidity, n.Grade),
		CatalogPrice: price,
		ListingPrice: listing.PriceUSD,
		MarginPct:    marginPct,
	}

	logger.Info("arbitrage signal",
		slog.String("serial", n.Serial),
		slog.String("card", n.Title),
		slog.String("grade_key", key),
		slog.Float64("catalog_price", price),
		slog.Float64("listing_price", listing.PriceUSD),
		slog.Float64("margin_pct", marginPct),
	)

	if err := r.cfg.Notifier.Notify(ctx, notify.EventArbitrage, notify.ArbitrageEmbed(sig)); err != nil {
		logger.Error("arbitrage notify failed", slog.String("error", err.Error()))
	}
	if r.cfg.Signals != nil {
		if err := r.cfg.Signals.RecordArbitrage(ctx, sig); err != nil {
			logger.Error("arbitrage record failed", slog.String("error", err.Error()))
		}
	}

	return emitted + 1, nil
}

// evaluateOffers checks the listing's outstanding offers against the
// listing price plus selling fee, and reports whether a signal fired.
func (r *Reconciler) evaluateOffers(ctx context.Context, logger *slog.Logger, listing domain.Listing, n domain.NormalizedListing, listingURL string) bool {
	best, marginPct, fired := r.cfg.Offers.Evaluate(listing.PriceUSD, listing.Offers)
	if !fired {
		return false
	}

	sig := domain.OfferSignal{
		Listing:        n,
		CardName:       n.Title,
		ImageURL:       listing.ImageURL,
		ListingURL:     listingURL,
		BestOfferPrice: best,
		ListingPrice:   listing.PriceUSD,
		MarginPct:      marginPct,
	}

	logger.Info("offer signal",
		slog.String("serial", n.Serial),
		slog.String("card", n.Title),
		slog.Float64("best_offer", best),
		slog.Float64("listing_price", listing.PriceUSD),
		slog.Float64("margin_pct", marginPct),
	)

	if err := r.cfg.Notifier.Notify(ctx, notify.EventOffer, notify.OfferEmbed(sig)); err != nil {
		logger.Error("offer notify failed", slog.String("error", err.Error()))
	}
	if r.cfg.Signals != nil {
		if err := r.cfg.Signals.RecordOffer(ctx, sig); err != nil {
			logger.Error("offer record failed", slog.String("error", err.Error()))
		}
	}
	return true
}

// bundleFor returns the cached pricing bundle for the listing's serial, or
// fetches it from the catalog on a miss. Cache failures degrade to a live
// fetch; a live fetch is followed by the pacing delay.
func (r *Reconciler) bundleFor(ctx context.Context, logger *slog.Logger, n domain.NormalizedListing) (domain.PricingBundle, error) {
	bundle, err := r.cfg.Cache.Get(ctx, n.Serial)
	if err == nil {
		return bundle, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("cache read failed",
			slog.String("serial", n.Serial),
			slog.String("error", err.Error()),
		)
	}

	bundle, err = r.cfg.Matcher.Match(ctx, n)
	if err != nil {
		return domain.PricingBundle{}, err
	}

	if err := r.cfg.Cache.Set(ctx, n.Serial, bundle); err != nil {
		logger.Warn("cache write failed",
			slog.String("serial", n.Serial),
			slog.String("error", err.Error()),
		)
	}

	if r.cfg.PacingDelay > 0 {
		select {
		case <-ctx.Done():
			return domain.PricingBundle{}, ctx.Err()
		case <-time.After(r.cfg.PacingDelay):
		}
	}

	return bundle, nil
}

func (r *Reconciler) loadWatermark(ctx context.Context, logger *slog.Logger) string {
	if r.cfg.Watermarks == nil {
		return ""
	}
	watermark, err := r.cfg.Watermarks.Get(ctx, r.cfg.FeedName)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("watermark read failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return watermark
}

func (r *Reconciler) saveWatermark(ctx context.Context, logger *slog.Logger, serial string) {
	if r.cfg.Watermarks == nil {
		return
	}
	if err := r.cfg.Watermarks.Set(ctx, r.cfg.FeedName, serial); err != nil {
		logger.Error("watermark write failed",
			slog.String("serial", serial),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Reconciler) snapshot(ctx context.Context, logger *slog.Logger, runID string, page int, raw []byte) {
	if r.cfg.Snapshots == nil || len(raw) == 0 {
		return
	}
	if err := r.cfg.Snapshots.SnapshotPage(ctx, runID, page, raw); err != nil {
		logger.Warn("page snapshot failed",
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
	}
}
