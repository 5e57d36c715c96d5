package retail_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/retail/retailtest"
)

// =============================================================================
// RECORD TESTS
// =============================================================================

func TestRealizedPrice(t *testing.T) {
	r := retailtest.Record("S1", "100", "ACME", 0, 4, 1000, 260)
	p, ok := r.RealizedPrice()
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.NewFromInt(250)))

	zeroQty := r
	zeroQty.Quantity = retail.NullDecimal(0)
	_, ok = zeroQty.RealizedPrice()
	assert.False(t, ok, "zero quantity carries no realized price")

	zeroSales := r
	zeroSales.TotalSales = retail.NullDecimal(0)
	_, ok = zeroSales.RealizedPrice()
	assert.False(t, ok, "zero sales carries no realized price")

	nullQty := r
	nullQty.Quantity = decimal.NullDecimal{}
	_, ok = nullQty.RealizedPrice()
	assert.False(t, ok)
}

func TestMissing_WhitespaceIsMissing(t *testing.T) {
	r := retailtest.Record("S1", "100", "ACME", 0, 1, 10, 10)
	assert.False(t, r.Missing(retail.FieldSupplier))

	r.Supplier = "   "
	assert.True(t, r.Missing(retail.FieldSupplier))

	r.RRP = decimal.NullDecimal{}
	assert.True(t, r.Missing(retail.FieldRRP))
}

func TestNewTable_EmptyIsFatal(t *testing.T) {
	_, err := retail.NewTable("empty", nil)
	assert.True(t, errors.Is(err, retail.ErrEmptyTable))
}

// =============================================================================
// PARTITION TESTS
// =============================================================================

func TestPartitionBy_FirstAppearanceOrder(t *testing.T) {
	records := []retail.Record{
		retailtest.Record("Beta", "1", "X", 0, 1, 1, 1),
		retailtest.Record("Alpha", "2", "X", 0, 1, 1, 1),
		retailtest.Record("Beta", "3", "X", 0, 1, 1, 1),
		retailtest.Record("", "4", "X", 0, 1, 1, 1),
	}

	p := retail.PartitionBy(records, retail.ByStore)

	assert.Equal(t, []string{"Beta", "Alpha"}, p.Keys())
	beta, ok := p.Get("Beta")
	require.True(t, ok)
	assert.Len(t, beta, 2)
	assert.Equal(t, "3", beta[1].ItemCode, "records keep input order")
}

func TestPartition_LookupIsCaseInsensitive(t *testing.T) {
	records := []retail.Record{retailtest.Record("S1", "1", "Bidco Africa", 0, 1, 1, 1)}
	p := retail.PartitionBy(records, retail.BySupplier)

	g, ok := p.Lookup("  BIDCO africa ")
	require.True(t, ok)
	assert.Equal(t, "Bidco Africa", g.Key)

	_, ok = p.Lookup("bidco")
	assert.False(t, ok, "lookup is exact apart from case and whitespace")
}

func TestCompositeKey_RoundTrip(t *testing.T) {
	key := retail.CompositeKey("Cooking Oils", "Vegetable Oil")
	assert.Equal(t, []string{"Cooking Oils", "Vegetable Oil"}, retail.SplitKey(key))
}

// =============================================================================
// STATS / ERRORS
// =============================================================================

func TestMedian(t *testing.T) {
	m, ok := retail.Median([]float64{3, 1, 2})
	require.True(t, ok)
	assert.Equal(t, 2.0, m)

	m, _ = retail.Median([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, m)

	_, ok = retail.Median(nil)
	assert.False(t, ok)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, retail.KindNotFound, retail.KindOf(&retail.NotFoundError{Kind: "supplier", Name: "x"}))
	assert.Equal(t, retail.KindValidation, retail.KindOf(retail.Invalid("min_score", 2, "must be within [0,1]")))
	assert.Equal(t, retail.KindInternal, retail.KindOf(errors.New("boom")))
}
