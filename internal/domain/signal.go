package domain

// ArbitrageSignal is emitted when the resolved catalog price exceeds the
// listing price by at least the configured margin. MarginPct is always
// derivable from the two prices.
type ArbitrageSignal struct {
	Listing      NormalizedListing
	CardName     string
	ImageURL     string
	CatalogURL   string
	ListingURL   string
	Volume       string
	CatalogPrice float64
	ListingPrice float64
	MarginPct    float64
}

// OfferSignal is emitted when the best outstanding buy offer covers the
// listing price plus the marketplace selling fee. It is evaluated
// independently of catalog matching.
type OfferSignal struct {
	Listing        NormalizedListing
	CardName       string
	ImageURL       string
	ListingURL     string
	BestOfferPrice float64
	ListingPrice   float64
	MarginPct      float64
}
