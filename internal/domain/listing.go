// Package domain defines the core types shared across cardhawk: marketplace
// listings, catalog pricing data, detection signals, and the store and cache
// interfaces their implementations satisfy.
package domain

// RawAttribute is a single attribute as supplied by the marketplace feed.
// Name may be empty to denote boolean flag attributes such as edition
// markers; Value is either a string or a list of strings.
type RawAttribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Strings returns the attribute value as a slice of strings, regardless of
// whether the feed sent a single string or a list. Non-string values are
// dropped.
func (a RawAttribute) Strings() []string {
	switch v := a.Value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Offer is an outstanding buy offer on a listing, net of marketplace fees.
type Offer struct {
	NetPriceUSD float64 `json:"net_price_usd"`
}

// Listing is one marketplace listing as selected for processing.
type Listing struct {
	Title            string
	ProofOfIntegrity string
	ImageURL         string
	Attributes       []RawAttribute
	PriceUSD         float64
	Offers           []Offer
}

// NormalizedListing is the typed record derived from a listing's raw
// attribute list. CardNumber is digits only; an empty CardNumber means the
// attribute was absent or carried no numeric token, which is valid and
// changes matching behavior. Serial is the stable per-item identifier used
// as the cache key and run-to-run watermark.
type NormalizedListing struct {
	Title        string
	CardNumber   string
	Set          string
	Language     string
	Grader       string
	Grade        string
	Serial       string
	FirstEdition bool
	Extra        map[string]string
}

// FeedPage is one page of listings from the marketplace feed.
type FeedPage struct {
	Total    int
	Listings []Listing
	// Raw is the page body as received, kept for snapshot archival.
	Raw []byte
}
