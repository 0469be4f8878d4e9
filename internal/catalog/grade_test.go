package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardhawk/internal/domain"
)

func priceTable(entries map[string]float64, unparseable ...string) domain.PriceTable {
	t := domain.PriceTable{}
	for k, v := range entries {
		p := v
		t[k] = &p
	}
	for _, k := range unparseable {
		t[k] = nil
	}
	return t
}

func TestResolvePricePrimaryKey(t *testing.T) {
	table := priceTable(map[string]float64{"PSA 10": 130, "Grade 10": 90})

	price, key, err := ResolvePrice(table, "PSA", "10 GEM MINT")
	require.NoError(t, err)
	assert.Equal(t, 130.0, price)
	assert.Equal(t, "PSA 10", key, "primary key is tried before the fallback")
}

func TestResolvePriceFallbackKey(t *testing.T) {
	table := priceTable(map[string]float64{"Grade 9.5": 24})

	price, key, err := ResolvePrice(table, "BGS", "9.5 GEM MINT+")
	require.NoError(t, err)
	assert.Equal(t, 24.0, price)
	assert.Equal(t, "Grade 9.5", key)
}

func TestResolvePriceAbsent(t *testing.T) {
	table := priceTable(map[string]float64{"Ungraded": 14.48})

	_, _, err := ResolvePrice(table, "PSA", "10 GEM MINT")
	assert.ErrorIs(t, err, domain.ErrGradeUnresolved)
}

func TestResolvePriceUnparseableCell(t *testing.T) {
	table := priceTable(map[string]float64{"Grade 10": 90}, "PSA 10")

	// The primary key exists but its cell was unparseable; that is an
	// unresolved grade, never a synthesized price.
	_, _, err := ResolvePrice(table, "PSA", "10 GEM MINT")
	assert.ErrorIs(t, err, domain.ErrGradeUnresolved)
}

func TestResolvePriceZeroCell(t *testing.T) {
	table := priceTable(map[string]float64{"PSA 10": 0, "Grade 10": 90})

	// A $0.00 cell is a placeholder, not a price; resolving it would pair
	// with a zero listing price into a meaningless signal. It also does
	// not fall through to the fallback key.
	_, _, err := ResolvePrice(table, "PSA", "10 GEM MINT")
	assert.ErrorIs(t, err, domain.ErrGradeUnresolved)
}

func TestResolvePriceNoNumericGrade(t *testing.T) {
	table := priceTable(map[string]float64{"PSA 10": 130})

	_, _, err := ResolvePrice(table, "PSA", "GEM MINT")
	assert.ErrorIs(t, err, domain.ErrGradeUnresolved)
}

func TestVolumeForGrade(t *testing.T) {
	liq := domain.LiquidityBreakdown{"12", "3", "5", "9", "2", "41"}

	assert.Equal(t, "41", VolumeForGrade(liq, "10 GEM MINT"))
	assert.Equal(t, "2", VolumeForGrade(liq, "9.5 GEM MINT+"))
	assert.Equal(t, "3", VolumeForGrade(liq, "7 NM"))
	assert.Empty(t, VolumeForGrade(liq, "6 EX"), "grades outside the band table have no volume")
	assert.Empty(t, VolumeForGrade(domain.LiquidityBreakdown{"12"}, "10"), "short breakdown yields no volume")
}
