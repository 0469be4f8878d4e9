package catalog

import (
	"fmt"

	"cardhawk/internal/domain"
	"cardhawk/internal/normalize"
)

// gradeBands maps a numeric grade token to its position in the catalog's
// sales-volume row. Length and order are catalog-defined.
var gradeBands = map[string]int{
	"":    0,
	"7":   1,
	"8":   2,
	"9":   3,
	"9.5": 4,
	"10":  5,
}

// ResolvePrice maps a (grader, grade) pair to a price in the table. The
// primary key is "{Grader} {grade}" with grade reduced to its numeric
// token; the fallback is "Grade {grade}". When neither key is present, or
// the matched cell was unparseable or zero, it returns
// domain.ErrGradeUnresolved — never a default price. The key that resolved
// is returned alongside the price.
func ResolvePrice(table domain.PriceTable, grader, grade string) (float64, string, error) {
	tok, ok := normalize.NumericToken(grade)
	if !ok {
		return 0, "", fmt.Errorf("grade %q: %w", grade, domain.ErrGradeUnresolved)
	}

	key := fmt.Sprintf("%s %s", grader, tok)
	price, present := table[key]
	if !present {
		key = fmt.Sprintf("Grade %s", tok)
		price, present = table[key]
	}
	if !present || price == nil || *price == 0 {
		return 0, "", fmt.Errorf("grade %q (%s): %w", grade, grader, domain.ErrGradeUnresolved)
	}

	return *price, key, nil
}

// VolumeForGrade returns the sales-volume figure for the listing's grade
// band, or an empty string when the grade has no band or the breakdown is
// shorter than the catalog's fixed length.
func VolumeForGrade(liq domain.LiquidityBreakdown, grade string) string {
	tok, _ := normalize.NumericToken(grade)
	idx, ok := gradeBands[tok]
	if !ok || idx >= len(liq) {
		return ""
	}
	return liq[idx]
}
