package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cardhawk/internal/domain"
)

// searcher is the slice of Client the matcher depends on, split out so tests
// can substitute a fixture-backed fake.
type searcher interface {
	Search(ctx context.Context, query string) (SearchResult, error)
	FetchProduct(ctx context.Context, url string) (*ProductPage, error)
	IsProductURL(u string) bool
}

// Matcher locates the catalog entry for a normalized listing. A match is
// confident only when the search redirects straight to a product page, or
// when exactly one filtered candidate survives and points at a product
// page; anything else is domain.ErrNoConfidentMatch.
type Matcher struct {
	client searcher
	logger *slog.Logger

	// OnAmbiguous, when set, receives the surviving candidate set whenever
	// disambiguation fails, so operators can review near-misses manually.
	OnAmbiguous func(listing domain.NormalizedListing, survivors []domain.CatalogCandidate)
}

// NewMatcher creates a Matcher backed by the given catalog client.
func NewMatcher(client *Client, logger *slog.Logger) *Matcher {
	return &Matcher{
		client: client,
		logger: logger.With(slog.String("component", "matcher")),
	}
}

// BuildQuery builds the catalog search query from a normalized listing:
// the title, followed by the card number when present, with "+" in place of
// spaces.
func BuildQuery(l domain.NormalizedListing) string {
	q := l.Title
	if l.CardNumber != "" {
		q = fmt.Sprintf("%s %s", l.Title, l.CardNumber)
	}
	return strings.ReplaceAll(q, " ", "+")
}

// Match resolves a listing to its catalog pricing bundle, or
// domain.ErrNoConfidentMatch when zero or multiple candidates survive the
// filters. Transport failures are returned as-is for the caller's
// per-listing boundary.
func (m *Matcher) Match(ctx context.Context, l domain.NormalizedListing) (domain.PricingBundle, error) {
	res, err := m.client.Search(ctx, BuildQuery(l))
	if err != nil {
		return domain.PricingBundle{}, err
	}

	if res.Product != nil {
		return toBundle(res.Product), nil
	}

	survivors := FilterCandidates(l, res.Candidates)

	if len(survivors) != 1 || !m.client.IsProductURL(survivors[0].URL) {
		if m.OnAmbiguous != nil {
			m.OnAmbiguous(l, survivors)
		}
		m.logger.DebugContext(ctx, "no confident match",
			slog.String("serial", l.Serial),
			slog.String("title", l.Title),
			slog.Int("survivors", len(survivors)),
		)
		return domain.PricingBundle{}, domain.ErrNoConfidentMatch
	}

	page, err := m.client.FetchProduct(ctx, survivors[0].URL)
	if err != nil {
		return domain.PricingBundle{}, err
	}
	return toBundle(page), nil
}

func toBundle(p *ProductPage) domain.PricingBundle {
	return domain.PricingBundle{
		Prices:     p.Prices,
		CatalogURL: p.URL,
		ImageURL:   p.ImageURL,
		Liquidity:  p.Liquidity,
		FetchedAt:  time.Now().UTC(),
	}
}

// FilterCandidates applies the matching rules to search result rows and
// returns the survivors in row order. A candidate survives only when all of
// the following hold:
//
//   - the listing title appears in the candidate title, case-insensitively;
//   - the card number, when present, appears verbatim in the candidate title;
//   - Japanese listings match only candidates whose set label mentions
//     Japanese, and English listings only candidates whose set label does not;
//   - a listing from a Promo set matches only Promo-set candidates;
//   - the first-edition flag agrees with the "1st Edition" marker in the
//     candidate title, in both directions.
//
// If any survivor's set label contains the listing's set as a
// case-insensitive substring, that candidate is selected immediately and all
// others are discarded.
func FilterCandidates(l domain.NormalizedListing, candidates []domain.CatalogCandidate) []domain.CatalogCandidate {
	var survivors []domain.CatalogCandidate

	for _, cand := range candidates {
		if !accepts(l, cand) {
			continue
		}

		if strings.Contains(strings.ToLower(cand.SetLabel), strings.ToLower(l.Set)) {
			return []domain.CatalogCandidate{cand}
		}

		survivors = append(survivors, cand)
	}

	return survivors
}

func accepts(l domain.NormalizedListing, cand domain.CatalogCandidate) bool {
	if !strings.Contains(strings.ToLower(cand.Title), strings.ToLower(l.Title)) {
		return false
	}
	if l.CardNumber != "" && !strings.Contains(cand.Title, l.CardNumber) {
		return false
	}
	if l.Language == "Japanese" && !strings.Contains(cand.SetLabel, "Japanese") {
		return false
	}
	if l.Language == "English" && strings.Contains(cand.SetLabel, "Japanese") {
		return false
	}
	if strings.Contains(l.Set, "Promo") && !strings.Contains(cand.SetLabel, "Promo") {
		return false
	}
	hasEdition := strings.Contains(cand.Title, "1st Edition")
	if l.FirstEdition != hasEdition {
		return false
	}
	return true
}
