package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhawk/internal/cache/memory"
	"cardhawk/internal/domain"
	"cardhawk/internal/evaluate"
	"cardhawk/internal/notify"
)

type fakeFeed struct {
	pages []domain.FeedPage
	calls int
	err   error
	// errPage is the page index from which err applies.
	errPage int
}

func (f *fakeFeed) FetchPage(_ context.Context, offset, limit int) (domain.FeedPage, error) {
	f.calls++
	idx := offset / limit
	if f.err != nil && idx >= f.errPage {
		return domain.FeedPage{}, f.err
	}
	if idx >= len(f.pages) {
		return domain.FeedPage{}, nil
	}
	return f.pages[idx], nil
}

func (f *fakeFeed) ListingURL(proof string) string {
	return "https://market.example/item/" + proof
}

type fakeMatcher struct {
	bundles map[string]domain.PricingBundle
	err     error
	calls   int
}

func (m *fakeMatcher) Match(_ context.Context, l domain.NormalizedListing) (domain.PricingBundle, error) {
	m.calls++
	if m.err != nil {
		return domain.PricingBundle{}, m.err
	}
	b, ok := m.bundles[l.Serial]
	if !ok {
		return domain.PricingBundle{}, domain.ErrNoConfidentMatch
	}
	return b, nil
}

type fakeWatermarks struct {
	serials map[string]string
}

func (w *fakeWatermarks) Get(_ context.Context, feed string) (string, error) {
	s, ok := w.serials[feed]
	if !ok {
		return "", domain.ErrNotFound
	}
	return s, nil
}

func (w *fakeWatermarks) Set(_ context.Context, feed, serial string) error {
	w.serials[feed] = serial
	return nil
}

type fakeSignals struct {
	arbs   []domain.ArbitrageSignal
	offers []domain.OfferSignal
}

func (s *fakeSignals) RecordArbitrage(_ context.Context, sig domain.ArbitrageSignal) error {
	s.arbs = append(s.arbs, sig)
	return nil
}

func (s *fakeSignals) RecordOffer(_ context.Context, sig domain.OfferSignal) error {
	s.offers = append(s.offers, sig)
	return nil
}

type capturedEvent struct {
	event string
	embed notify.Embed
}

type captureSender struct {
	events []capturedEvent
}

func (c *captureSender) Send(_ context.Context, event string, e notify.Embed) error {
	c.events = append(c.events, capturedEvent{event: event, embed: e})
	return nil
}

func (c *captureSender) Name() string { return "capture" }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func price(v float64) *float64 { return &v }

func charizardListing(serial string, priceUSD float64, offers ...domain.Offer) domain.Listing {
	return domain.Listing{
		Title:            "Charizard Holo PSA 10",
		ProofOfIntegrity: "proof-" + serial,
		ImageURL:         "https://market.example/img/" + serial + ".jpg",
		PriceUSD:         priceUSD,
		Offers:           offers,
		Attributes: []domain.RawAttribute{
			{Name: "Title", Value: "Charizard"},
			{Name: "Card Number", Value: "#4/102"},
			{Name: "Set", Value: "Base Set"},
			{Name: "Language", Value: "English"},
			{Name: "Grader", Value: "PSA"},
			{Name: "Grade", Value: "10 GEM MINT"},
			{Name: "Serial", Value: serial},
		},
	}
}

func newTestReconciler(t *testing.T, feed *fakeFeed, matcher *fakeMatcher) (*Reconciler, *fakeWatermarks, *fakeSignals, *captureSender) {
	t.Helper()

	watermarks := &fakeWatermarks{serials: map[string]string{}}
	signals := &fakeSignals{}
	sender := &captureSender{}

	r := NewReconciler(ReconcilerConfig{
		Feed:       feed,
		Matcher:    matcher,
		Cache:      memory.NewBundleCache(72 * time.Hour),
		Arbitrage:  evaluate.NewArbitrageEvaluator(0.15),
		Offers:     evaluate.NewOfferEvaluator(0.065),
		Notifier:   notify.NewNotifier([]notify.Sender{sender}, nil, discard()),
		Watermarks: watermarks,
		Signals:    signals,
		FeedName:   "storefront",
		PageSize:   40,
	}, discard())

	return r, watermarks, signals, sender
}

func TestRunEmitsArbitrageSignal(t *testing.T) {
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 1, Listings: []domain.Listing{charizardListing("SN-1", 100)}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{
		"SN-1": {
			Prices:     domain.PriceTable{"PSA 10": price(130)},
			CatalogURL: "https://catalog.example/game/charizard-4",
			ImageURL:   "https://catalog.example/img/charizard.jpg",
			Liquidity:  domain.LiquidityBreakdown{"12", "3", "5", "8", "2", "40"},
		},
	}}

	r, watermarks, signals, sender := newTestReconciler(t, feed, matcher)

	require.NoError(t, r.Run(context.Background()))

	require.Len(t, signals.arbs, 1)
	sig := signals.arbs[0]
	assert.Equal(t, "Charizard", sig.CardName)
	assert.Equal(t, 130.0, sig.CatalogPrice)
	assert.Equal(t, 100.0, sig.ListingPrice)
	assert.Equal(t, 23.08, sig.MarginPct)
	assert.Equal(t, "40", sig.Volume)
	assert.Equal(t, "https://market.example/item/proof-SN-1", sig.ListingURL)

	require.Len(t, sender.events, 1)
	assert.Equal(t, notify.EventArbitrage, sender.events[0].event)

	assert.Equal(t, "SN-1", watermarks.serials["storefront"])
}

func TestRunBelowMarginEmitsNothing(t *testing.T) {
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 1, Listings: []domain.Listing{charizardListing("SN-1", 100)}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{
		"SN-1": {Prices: domain.PriceTable{"PSA 10": price(110)}},
	}}

	r, _, signals, sender := newTestReconciler(t, feed, matcher)

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, signals.arbs)
	assert.Empty(t, sender.events)
}

func TestRunEmitsOfferSignal(t *testing.T) {
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 1, Listings: []domain.Listing{
			charizardListing("SN-1", 80, domain.Offer{NetPriceUSD: 90}),
		}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{}}

	r, _, signals, sender := newTestReconciler(t, feed, matcher)

	require.NoError(t, r.Run(context.Background()))

	require.Len(t, signals.offers, 1)
	sig := signals.offers[0]
	assert.Equal(t, 90.0, sig.BestOfferPrice)
	assert.Equal(t, 80.0, sig.ListingPrice)

	require.Len(t, sender.events, 1)
	assert.Equal(t, notify.EventOffer, sender.events[0].event)
	assert.Empty(t, signals.arbs)
}

func TestRunStopsAtWatermark(t *testing.T) {
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 3, Listings: []domain.Listing{
			charizardListing("SN-3", 50),
			charizardListing("SN-2", 50),
			charizardListing("SN-1", 50),
		}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{}}

	r, watermarks, _, _ := newTestReconciler(t, feed, matcher)
	watermarks.serials["storefront"] = "SN-2"

	require.NoError(t, r.Run(context.Background()))

	// Only SN-3 should hit the catalog; SN-2 and SN-1 are behind the
	// watermark.
	assert.Equal(t, 1, matcher.calls)
	assert.Equal(t, "SN-3", watermarks.serials["storefront"])
}

func TestRunCacheHitSkipsCatalog(t *testing.T) {
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 1, Listings: []domain.Listing{charizardListing("SN-1", 100)}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{}}

	r, _, signals, _ := newTestReconciler(t, feed, matcher)

	cached := domain.PricingBundle{
		Prices:     domain.PriceTable{"PSA 10": price(130)},
		CatalogURL: "https://catalog.example/game/charizard-4",
	}
	require.NoError(t, r.cfg.Cache.Set(context.Background(), "SN-1", cached))

	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 0, matcher.calls)
	require.Len(t, signals.arbs, 1)
	assert.Equal(t, "https://catalog.example/game/charizard-4", signals.arbs[0].CatalogURL)
}

func TestRunSkipsMalformedListing(t *testing.T) {
	malformed := domain.Listing{
		Title:    "Mystery Card",
		PriceUSD: 10,
		Attributes: []domain.RawAttribute{
			{Name: "Serial", Value: "SN-BAD"},
		},
	}
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 2, Listings: []domain.Listing{malformed, charizardListing("SN-1", 100)}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{
		"SN-1": {Prices: domain.PriceTable{"PSA 10": price(130)}},
	}}

	r, _, signals, _ := newTestReconciler(t, feed, matcher)

	require.NoError(t, r.Run(context.Background()))

	// The malformed listing is skipped without aborting the scan.
	require.Len(t, signals.arbs, 1)
	assert.Equal(t, "SN-1", signals.arbs[0].Listing.Serial)
}

func TestRunGradeUnresolvedSkips(t *testing.T) {
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 1, Listings: []domain.Listing{charizardListing("SN-1", 100)}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{
		"SN-1": {Prices: domain.PriceTable{"BGS 9.5": price(200)}},
	}}

	r, _, signals, _ := newTestReconciler(t, feed, matcher)

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, signals.arbs)
}

func TestRunFirstPageErrorIsFatal(t *testing.T) {
	feed := &fakeFeed{err: errors.New("boom")}
	matcher := &fakeMatcher{}

	r, _, _, sender := newTestReconciler(t, feed, matcher)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching first page")

	require.Len(t, sender.events, 1)
	assert.Equal(t, notify.EventError, sender.events[0].event)
}

func TestRunMatcherTransportErrorContained(t *testing.T) {
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 2, Listings: []domain.Listing{
			charizardListing("SN-2", 100),
			charizardListing("SN-1", 100),
		}},
	}}
	matcher := &fakeMatcher{err: errors.New("catalog unreachable")}

	r, watermarks, signals, _ := newTestReconciler(t, feed, matcher)

	// The scan completes and the watermark still advances.
	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, signals.arbs)
	assert.Equal(t, 2, matcher.calls)
	assert.Equal(t, "SN-2", watermarks.serials["storefront"])
}

func TestRunMidScanPageFailureKeepsWatermark(t *testing.T) {
	pageOne := make([]domain.Listing, 0, 40)
	pageOne = append(pageOne, charizardListing("SN-NEW", 50))
	for i := 0; i < 39; i++ {
		pageOne = append(pageOne, charizardListing("SN-OLD", 50))
	}
	feed := &fakeFeed{
		pages:   []domain.FeedPage{{Total: 80, Listings: pageOne}},
		err:     errors.New("timeout"),
		errPage: 1,
	}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{}}

	r, watermarks, _, _ := newTestReconciler(t, feed, matcher)

	// The failure on page two ends the scan without error, but the
	// unreached listings must stay ahead of the watermark.
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, feed.calls)
	assert.NotContains(t, watermarks.serials, "storefront")

	// A later run covers the first page's listings again.
	firstRunMatches := matcher.calls
	feed.calls = 0
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2*firstRunMatches, matcher.calls)
}

func TestRunPaginates(t *testing.T) {
	pageOne := make([]domain.Listing, 0, 40)
	for i := 0; i < 40; i++ {
		pageOne = append(pageOne, charizardListing("SN-A", 50))
	}
	feed := &fakeFeed{pages: []domain.FeedPage{
		{Total: 41, Listings: pageOne},
		{Total: 41, Listings: []domain.Listing{charizardListing("SN-B", 50)}},
	}}
	matcher := &fakeMatcher{bundles: map[string]domain.PricingBundle{}}

	r, _, _, _ := newTestReconciler(t, feed, matcher)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, feed.calls)
}
