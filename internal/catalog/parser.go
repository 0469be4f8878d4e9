// Package catalog implements the price-reference catalog collaborator: a
// search and product-page HTTP client, the goquery parsing adapter that
// isolates catalog markup, the multi-criteria matcher, and grade-to-price
// resolution.
package catalog

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cardhawk/internal/domain"
)

// ExtractPriceTable parses the full price table of a product page into one
// entry per grade label. A cell that does not parse as a decimal price
// yields a nil entry rather than aborting extraction of the other grades.
func ExtractPriceTable(doc *goquery.Document) domain.PriceTable {
	table := domain.PriceTable{}

	doc.Find("#full-prices tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		grade := strings.TrimSpace(cells.Eq(0).Text())
		if grade == "" {
			return
		}

		raw := strings.TrimSpace(cells.Eq(1).Text())
		raw = strings.ReplaceAll(raw, "$", "")
		raw = strings.ReplaceAll(raw, ",", "")
		if price, err := strconv.ParseFloat(raw, 64); err == nil {
			table[grade] = &price
		} else {
			table[grade] = nil
		}
	})

	return table
}

// ExtractLiquidity parses the product page's sales-volume row, returning its
// link texts in left-to-right order. Length and order are catalog-defined
// and consumed positionally by the grade band table.
func ExtractLiquidity(doc *goquery.Document) domain.LiquidityBreakdown {
	var liq domain.LiquidityBreakdown
	doc.Find("tr.sales_volume a").Each(func(_ int, link *goquery.Selection) {
		liq = append(liq, strings.TrimSpace(link.Text()))
	})
	return liq
}

// ExtractCandidateRows parses a search results table into candidate rows.
// Row cells are positional: image link, title link, set label.
func ExtractCandidateRows(doc *goquery.Document) []domain.CatalogCandidate {
	var out []domain.CatalogCandidate

	doc.Find(`table#games_table tbody tr[id^="product-"]`).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		href, _ := cells.Eq(0).Find("a").Attr("href")
		out = append(out, domain.CatalogCandidate{
			URL:      strings.TrimSpace(href),
			Title:    strings.TrimSpace(cells.Eq(1).Find("a").Text()),
			SetLabel: strings.TrimSpace(cells.Eq(2).Text()),
		})
	})

	return out
}

// ExtractImage returns the representative product image reference, or an
// empty string when the page carries none.
func ExtractImage(doc *goquery.Document) string {
	src, _ := doc.Find("#product_details img").First().Attr("src")
	return strings.TrimSpace(src)
}
