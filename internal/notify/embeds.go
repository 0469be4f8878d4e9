package notify

import (
	"fmt"

	"cardhawk/internal/domain"
)

// ArbitrageEmbed renders an arbitrage signal: card name, image, both prices
// with their source URLs, sales volume, and the margin percentage.
func ArbitrageEmbed(sig domain.ArbitrageSignal) Embed {
	return Embed{
		Title:       sig.CardName,
		Description: fmt.Sprintf("Volume: %s", sig.Volume),
		ImageURL:    sig.ImageURL,
		Fields: []EmbedField{
			{Name: "Listing", Value: fmt.Sprintf("$%.2f\n%s", sig.ListingPrice, sig.ListingURL)},
			{Name: "Catalog", Value: fmt.Sprintf("$%.2f\n%s", sig.CatalogPrice, sig.CatalogURL)},
		},
		Footer: fmt.Sprintf("Price difference of %.2f%%", sig.MarginPct),
	}
}

// ErrorEmbed renders an operational failure for the error event channel.
func ErrorEmbed(stage string, err error) Embed {
	return Embed{
		Title:       "scan error",
		Description: fmt.Sprintf("%s: %v", stage, err),
	}
}

// OfferEmbed renders an offer signal: card name, image, listing link, and
// the listing-vs-best-offer prices.
func OfferEmbed(sig domain.OfferSignal) Embed {
	return Embed{
		Title:    sig.CardName,
		URL:      sig.ListingURL,
		ImageURL: sig.ImageURL,
		Fields: []EmbedField{
			{Name: "Listing Price", Value: fmt.Sprintf("$%.2f", sig.ListingPrice)},
			{Name: "Top Offer", Value: fmt.Sprintf("$%.2f", sig.BestOfferPrice)},
		},
		Footer: fmt.Sprintf("Price difference of %.2f%%", sig.MarginPct),
	}
}
