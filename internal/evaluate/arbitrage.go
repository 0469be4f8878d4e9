// Package evaluate holds the two threshold checks that turn prices into
// signals: catalog-vs-listing arbitrage and best-offer undervaluation. Both
// are pure computations; thresholds come in at construction as
// configuration, not constants.
package evaluate

import "math"

// MarginPct is the percentage difference reported on signals:
// round((1 - base/reference) * 100, 2), with the larger (reference) price in
// the denominator so a firing signal always reports a positive margin.
func MarginPct(base, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return math.Round((1-base/reference)*100*100) / 100
}

// ArbitrageEvaluator compares a resolved catalog price against the listing
// price using a percentage-margin threshold.
type ArbitrageEvaluator struct {
	margin float64
}

// NewArbitrageEvaluator creates an evaluator with the given margin fraction
// (e.g. 0.15 requires the catalog price to exceed the listing by 15%).
func NewArbitrageEvaluator(margin float64) *ArbitrageEvaluator {
	return &ArbitrageEvaluator{margin: margin}
}

// Evaluate reports whether an arbitrage condition holds and the margin
// percentage to attach to the signal. The boundary is inclusive: a catalog
// price exactly listingPrice*(1+margin) fires.
func (e *ArbitrageEvaluator) Evaluate(catalogPrice, listingPrice float64) (marginPct float64, fired bool) {
	return MarginPct(listingPrice, catalogPrice), catalogPrice >= listingPrice*(1+e.margin)
}
