package domain

import "time"

// CatalogCandidate is one row from a catalog search results page. Candidates
// are ephemeral; they exist only while the matcher disambiguates.
type CatalogCandidate struct {
	URL      string
	Title    string
	SetLabel string
}

// PriceTable maps a catalog-defined grade label (e.g. "PSA 10", "Grade 9.5",
// "Ungraded") to a price in USD. A nil entry records a cell that did not
// parse as a decimal price. Keys are catalog-defined and never normalized.
type PriceTable map[string]*float64

// LiquidityBreakdown is the catalog's sales-volume row: textual volume
// figures in left-to-right page order, consumed positionally by grade band.
type LiquidityBreakdown []string

// PricingBundle is everything extracted from one catalog product page. It is
// the cache payload, immutable once stored and replaced wholesale on
// refresh.
type PricingBundle struct {
	Prices     PriceTable         `json:"prices"`
	CatalogURL string             `json:"catalog_url"`
	ImageURL   string             `json:"image_url"`
	Liquidity  LiquidityBreakdown `json:"liquidity"`
	FetchedAt  time.Time          `json:"fetched_at"`
}
