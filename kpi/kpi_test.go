package kpi_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-insights/kpi"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/quality"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/retail/retailtest"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func marketTable(t *testing.T) *retail.Table {
	hh := retailtest.Record("S2", "300", "KAPA", 1, 4, 400, 100)
	hh.Category = "Household"
	return retailtest.Table(t,
		retailtest.Record("S1", "100", "BIDCO", 0, 2, 250, 130),
		retailtest.Record("S1", "101", "BIDCO", 0, 1, 50, 60),
		retailtest.Record("S2", "100", " BIDCO ", 1, 3, 300, 130),
		retailtest.Record("S1", "200", "KAPA", 0, 5, 600, 130),
		hh,
		// no units, still a transaction
		retailtest.Record("S3", "200", "KAPA", 2, 0, 0, 130),
	)
}

func dec(t *testing.T, want float64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromFloat(want).Equal(got), "want %v, got %s", want, got)
}

// =============================================================================
// TOTALS
// =============================================================================

func TestMarket(t *testing.T) {
	m := kpi.Market(marketTable(t))

	dec(t, 1600, m.Sales)
	dec(t, 15, m.Units)
	assert.Equal(t, 6, m.Transactions)
	assert.Equal(t, 3, m.UniqueStores)
	assert.Equal(t, 2, m.UniqueSuppliers, "supplier keys are trimmed")
	assert.Equal(t, 4, m.UniqueSKUs)
	require.NotNil(t, m.AvgTransactionValue)
	assert.True(t, m.AvgTransactionValue.Sub(decimal.NewFromFloat(266.666)).Abs().LessThan(decimal.NewFromFloat(0.001)))
	assert.Equal(t, retailtest.Epoch, m.From)
	assert.Equal(t, retailtest.Epoch.AddDate(0, 0, 2), m.To)
}

func TestSupplier_MarketShareRoundTrip(t *testing.T) {
	table := marketTable(t)

	s, err := kpi.Supplier(table, "bidco")
	require.NoError(t, err)

	// 250 + 50 + 300 of 1600
	dec(t, 600, s.Sales)
	dec(t, 6, s.Units)
	assert.Equal(t, 3, s.Transactions)
	require.NotNil(t, s.MarketSharePct)
	assert.InDelta(t, 600.0/1600.0*100, *s.MarketSharePct, 1e-9)
	assert.Equal(t, 2, s.UniqueSKUs)
	assert.Equal(t, 2, s.StoresPresent)
	assert.Equal(t, "BIDCO", s.Supplier)
}

func TestSupplier_NoSubstringMatch(t *testing.T) {
	_, err := kpi.Supplier(marketTable(t), "BID")
	assert.True(t, retail.IsNotFound(err))
}

func TestSharePct_ZeroMarket(t *testing.T) {
	assert.Nil(t, kpi.SharePct(decimal.NewFromInt(5), decimal.Zero))
}

// =============================================================================
// RANKINGS
// =============================================================================

func TestCategories(t *testing.T) {
	cats := kpi.Categories(marketTable(t).Records)

	require.Len(t, cats, 2)
	assert.Equal(t, "Foods", cats[0].Category)
	dec(t, 1200, cats[0].Totals.Sales)
	assert.InDelta(t, 75.0, *cats[0].SalesSharePct, 1e-9)
	assert.Equal(t, "Household", cats[1].Category)
}

func TestStoreRankings_StableTies(t *testing.T) {
	table := retailtest.Table(t,
		retailtest.Record("B", "1", "X", 0, 1, 100, 100),
		retailtest.Record("A", "1", "X", 0, 1, 100, 100),
		retailtest.Record("C", "1", "X", 0, 1, 300, 100),
	)

	ranks := kpi.StoreRankings(table.Records, 0)

	var order []string
	for _, r := range ranks {
		order = append(order, r.Store)
	}
	assert.Equal(t, []string{"C", "B", "A"}, order)
	assert.Len(t, kpi.StoreRankings(table.Records, 1), 1)
}

func TestTopSKUs_ByUnits(t *testing.T) {
	table := marketTable(t)

	bySales := kpi.TopSKUs(table.Records, kpi.MetricSales, 1)
	require.Len(t, bySales, 1)
	assert.Equal(t, "200", bySales[0].SKU)
	assert.Equal(t, 2, bySales[0].StoresPresent)

	byUnits := kpi.TopSKUs(table.Records, kpi.MetricUnits, 0)
	assert.Equal(t, "100", byUnits[0].SKU, "5 units, first in input order")
	assert.Equal(t, "200", byUnits[1].SKU)

	_, err := kpi.ParseMetric("margin")
	assert.True(t, retail.IsValidation(err))
}

func TestDailyTrends(t *testing.T) {
	trends := kpi.DailyTrends(marketTable(t).Records)

	require.Len(t, trends, 3)
	assert.Equal(t, retailtest.Epoch, trends[0].Date)
	dec(t, 900, trends[0].Totals.Sales)
	assert.Equal(t, 3, trends[0].Totals.Transactions)
	assert.Equal(t, 1, trends[2].Totals.Transactions)
}

// =============================================================================
// SUMMARY AND COMPOSITION
// =============================================================================

func TestSummarize(t *testing.T) {
	s, err := kpi.Summarize(marketTable(t), "BIDCO", "")
	require.NoError(t, err)

	assert.Equal(t, "37.50%", s.KeyMetrics.MarketShare)
	assert.Equal(t, "KES 600.00", s.KeyMetrics.TotalSales)
	assert.Equal(t, "6.00", s.KeyMetrics.TotalUnits)
	assert.Equal(t, "2 of 3 stores", s.KeyMetrics.StoreCoverage)
	require.Len(t, s.TopStores, 2)
	assert.Equal(t, "S1", s.TopStores[0].Store)
	assert.Equal(t, "100", s.TopProducts[0].SKU)
}

func TestSummarize_ThousandsSeparator(t *testing.T) {
	table := retailtest.Table(t, retailtest.Record("S1", "1", "X", 0, 1, 1234567.5, 0))

	s, err := kpi.Summarize(table, "X", "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD 1,234,567.50", s.KeyMetrics.TotalSales)
}

func TestCompose_SelectsHeadlines(t *testing.T) {
	overall := 0.92
	grade := quality.GradeA
	trusted := true
	uplift := 35.0
	index := 1.02

	d := kpi.Compose(
		&quality.Score{Overall: &overall, Grade: &grade, Trusted: &trusted},
		promo.Summary{SKUsOnPromo: 2, TotalSKUs: 5, AvgUpliftPct: &uplift},
		pricing.Positioning{PortfolioIndex: &index, PortfolioPosition: pricing.PositionAtMarket},
		kpi.ExecutiveSummary{Supplier: "BIDCO", KeyMetrics: kpi.KeyMetrics{MarketShare: "12.00%"}},
	)

	assert.Equal(t, "BIDCO", d.Supplier)
	assert.Equal(t, &overall, d.Quality.Overall)
	assert.Equal(t, 2, d.Promos.SKUsOnPromo)
	assert.Equal(t, pricing.PositionAtMarket, d.Pricing.Position)
	assert.Equal(t, "12.00%", d.KPIs.MarketShare)

	empty := kpi.Compose(nil, promo.Summary{}, pricing.Positioning{}, kpi.ExecutiveSummary{})
	assert.Nil(t, empty.Quality.Overall)
}
