package marketplace

import (
	"encoding/json"
	"fmt"

	"cardhawk/internal/domain"
)

// APIPage is the index-query response envelope.
type APIPage struct {
	Total  int        `json:"total"`
	Assets []APIAsset `json:"assets"`
}

// APIAsset is one asset as returned by the marketplace index API.
type APIAsset struct {
	Title            string                `json:"title"`
	ProofOfIntegrity string                `json:"proof_of_integrity"`
	Image            string                `json:"image"`
	Attributes       []domain.RawAttribute `json:"attributes"`
	ListingData      []APIListingData      `json:"listing_data"`
	OfferData        []APIOfferData        `json:"offer_data"`
}

// APIListingData carries one listing's asking price.
type APIListingData struct {
	Price APIPrice `json:"price"`
}

// APIOfferData carries one outstanding offer.
type APIOfferData struct {
	Price APIOfferPrice `json:"price"`
}

// APIPrice nests the gross USD amount.
type APIPrice struct {
	Amount APIAmount `json:"amount"`
}

// APIOfferPrice nests the USD amount net of fees.
type APIOfferPrice struct {
	NetAmount APIAmount `json:"netAmount"`
}

// APIAmount is a currency amount in USD.
type APIAmount struct {
	USD float64 `json:"usd"`
}

// DecodePage parses an index-query response body into a feed page, keeping
// the raw body for snapshot archival.
func DecodePage(body []byte) (domain.FeedPage, error) {
	var api APIPage
	if err := json.Unmarshal(body, &api); err != nil {
		return domain.FeedPage{}, fmt.Errorf("marketplace: decode page: %w", err)
	}

	page := domain.FeedPage{Total: api.Total, Raw: body}
	for _, asset := range api.Assets {
		page.Listings = append(page.Listings, asset.ToDomainListing())
	}
	return page, nil
}

// ToDomainListing converts an API asset to a domain Listing. The listing
// price is the first listing entry's net USD price; assets without listing
// data carry a zero price.
func (a APIAsset) ToDomainListing() domain.Listing {
	l := domain.Listing{
		Title:            a.Title,
		ProofOfIntegrity: a.ProofOfIntegrity,
		ImageURL:         a.Image,
		Attributes:       a.Attributes,
	}

	if len(a.ListingData) > 0 {
		l.PriceUSD = a.ListingData[0].Price.Amount.USD
	}

	for _, offer := range a.OfferData {
		l.Offers = append(l.Offers, domain.Offer{NetPriceUSD: offer.Price.NetAmount.USD})
	}

	return l
}
