package evaluate

import "cardhawk/internal/domain"

// OfferEvaluator compares the best outstanding buy offer against the listing
// price net of a selling fee. It runs independently of catalog matching.
type OfferEvaluator struct {
	sellingFee float64
}

// NewOfferEvaluator creates an evaluator with the given selling-fee
// fraction.
func NewOfferEvaluator(sellingFee float64) *OfferEvaluator {
	return &OfferEvaluator{sellingFee: sellingFee}
}

// BestOffer returns the highest net offer price, floored at zero. An empty
// offer set yields zero, which never fires.
func (e *OfferEvaluator) BestOffer(offers []domain.Offer) float64 {
	best := 0.0
	for _, o := range offers {
		if o.NetPriceUSD > best {
			best = o.NetPriceUSD
		}
	}
	return best
}

// Evaluate reports whether the best offer covers the listing price plus the
// selling fee, boundary inclusive, along with the margin percentage.
func (e *OfferEvaluator) Evaluate(listingPrice float64, offers []domain.Offer) (bestOffer, marginPct float64, fired bool) {
	best := e.BestOffer(offers)
	if best <= 0 {
		return best, 0, false
	}
	return best, MarginPct(listingPrice, best), best >= listingPrice*(1+e.sellingFee)
}
