package catalog

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productPageHTML = `
<html><body>
<div id="product_details">
  <img src="https://img.example.com/cards/4.jpg" alt="front">
</div>
<div id="full-prices">
  <table>
    <tr><td>Ungraded</td><td>$14.48</td></tr>
    <tr><td>Grade 9</td><td>$22.00</td></tr>
    <tr><td>Grade 9.5</td><td>$24.00</td></tr>
    <tr><td>SGC 10</td><td>-</td></tr>
    <tr><td>PSA 10</td><td>$1,043.00</td></tr>
  </table>
</div>
<table>
  <tr class="sales_volume">
    <td><a href="#">12</a></td>
    <td><a href="#">3</a></td>
    <td><a href="#">5</a></td>
    <td><a href="#">9</a></td>
    <td><a href="#">2</a></td>
    <td><a href="#">41</a></td>
  </tr>
</table>
</body></html>`

const resultsPageHTML = `
<html><body>
<table id="games_table">
<tbody>
  <tr id="product-101">
    <td><a href="https://catalog.example.com/game/base-set/charizard-4">img</a></td>
    <td><a href="/game/base-set/charizard-4">Charizard 4</a></td>
    <td>Base Set</td>
  </tr>
  <tr id="product-102">
    <td><a href="https://catalog.example.com/game/japanese-base/charizard-4">img</a></td>
    <td><a href="/game/japanese-base/charizard-4">Charizard 4</a></td>
    <td>Japanese Base Set</td>
  </tr>
  <tr id="ad-row">
    <td>sponsored</td>
  </tr>
</tbody>
</table>
</body></html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractPriceTable(t *testing.T) {
	table := ExtractPriceTable(parseDoc(t, productPageHTML))

	require.Len(t, table, 5)

	require.NotNil(t, table["Ungraded"])
	assert.Equal(t, 14.48, *table["Ungraded"])

	require.NotNil(t, table["PSA 10"])
	assert.Equal(t, 1043.0, *table["PSA 10"])

	// Non-numeric cell parses to nil, not an error, and the remaining rows
	// still extract.
	v, present := table["SGC 10"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestExtractLiquidity(t *testing.T) {
	liq := ExtractLiquidity(parseDoc(t, productPageHTML))
	assert.Equal(t, []string{"12", "3", "5", "9", "2", "41"}, []string(liq))
}

func TestExtractCandidateRows(t *testing.T) {
	cands := ExtractCandidateRows(parseDoc(t, resultsPageHTML))

	require.Len(t, cands, 2, "rows without a product- id are skipped")
	assert.Equal(t, "https://catalog.example.com/game/base-set/charizard-4", cands[0].URL)
	assert.Equal(t, "Charizard 4", cands[0].Title)
	assert.Equal(t, "Base Set", cands[0].SetLabel)
	assert.Equal(t, "Japanese Base Set", cands[1].SetLabel)
}

func TestExtractImage(t *testing.T) {
	assert.Equal(t, "https://img.example.com/cards/4.jpg", ExtractImage(parseDoc(t, productPageHTML)))
	assert.Empty(t, ExtractImage(parseDoc(t, resultsPageHTML)))
}
