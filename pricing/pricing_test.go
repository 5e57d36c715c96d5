package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/retail/retailtest"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// sales returns n one-unit sales of sku at price in a Cooking Oils section.
func sales(store, sku, supplier, section string, price float64, n int) []retail.Record {
	out := make([]retail.Record, n)
	for i := range out {
		r := retailtest.Priced(store, sku, supplier, i, price, price)
		out[i] = retailtest.InSet(r, "Cooking Oils", section)
	}
	return out
}

func join(groups ...[]retail.Record) []retail.Record {
	var out []retail.Record
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// marketRecords is the worked example: BIDCO at 1200 against three
// competitors averaging 1233.33.
func marketRecords(store string) []retail.Record {
	return join(
		sales(store, "T1", "BIDCO", "Vegetable Oil", 1200, 3),
		sales(store, "C1", "KAPA", "Vegetable Oil", 1250, 3),
		sales(store, "C2", "PWANI", "Vegetable Oil", 1300, 3),
		sales(store, "C3", "MENENGAI", "Vegetable Oil", 1150, 3),
	)
}

func calculate(t *testing.T, records []retail.Record) pricing.Positioning {
	t.Helper()
	pos, err := pricing.Calculate(retailtest.Table(t, records...), "bidco", pricing.DefaultConfig())
	require.NoError(t, err)
	return pos
}

// =============================================================================
// INDEX
// =============================================================================

func TestCalculate_WorkedExample(t *testing.T) {
	pos := calculate(t, marketRecords("S1"))

	require.Len(t, pos.Results, 1)
	r := pos.Results[0]
	assert.Equal(t, "T1", r.SKU)
	assert.Equal(t, 3, r.CompetitorCount)
	assert.Equal(t, 9, r.CompetitorTransactions)
	assert.InDelta(t, 1233.333, *r.CompetitorAvgPrice, 1e-3)
	assert.InDelta(t, 0.973, *r.Index, 1e-3)
	assert.Equal(t, pricing.PositionAtMarket, r.Position)

	assert.Equal(t, 1, pos.TotalSKUs)
	assert.Equal(t, 1, pos.AtMarketSKUs)
	assert.InDelta(t, 0.973, *pos.PortfolioIndex, 1e-3)
}

func TestCalculate_SingleCompetitorIsInsufficient(t *testing.T) {
	base := calculate(t, marketRecords("S1"))

	// GIVEN: a second set in the same store with one competitor SKU
	pos := calculate(t, join(
		marketRecords("S1"),
		sales("S1", "T2", "BIDCO", "Olive Oil", 1000, 3),
		sales("S1", "C4", "KAPA", "Olive Oil", 900, 3),
	))

	var t2 pricing.Result
	for _, r := range pos.Results {
		if r.SKU == "T2" {
			t2 = r
		}
	}
	assert.Equal(t, pricing.PositionInsufficient, t2.Position)
	assert.Nil(t, t2.Index)
	assert.Nil(t, t2.CompetitorAvgPrice)

	// THEN: the store and portfolio indices do not move
	require.Len(t, pos.Stores, 1)
	assert.Equal(t, base.Stores[0].Index, pos.Stores[0].Index)
	assert.Equal(t, *base.PortfolioIndex, *pos.PortfolioIndex)
	assert.Equal(t, 1, pos.InsufficientSKUs)
	assert.Equal(t, 1, pos.TotalSKUs)
}

func TestCalculate_TooFewTransactionsExcludesPair(t *testing.T) {
	records := marketRecords("S1")
	// Drop one T1 sale: two observations is under the minimum
	pos := calculate(t, records[1:])

	assert.Empty(t, pos.Results)
	assert.Nil(t, pos.PortfolioIndex)
	assert.Equal(t, []string{"Insufficient data for competitive comparison."}, pos.Recommendations)
	assert.Equal(t, 1, pos.Exclusions.ThinPairs)
	assert.Equal(t, 1, pos.Exclusions.ThinTargetPairs)
}

func TestCalculate_ExclusionsAreCounted(t *testing.T) {
	// GIVEN: an indexed store, a store where T1 has 2 rows, a store with a
	// single competitor, a row with no units and a row with no section
	unpriced := retailtest.Record("S1", "C1", "KAPA", 9, 0, 0, 1250)
	unclassified := retailtest.Priced("S1", "C9", "KAPA", 0, 1000, 1000)
	unclassified.Section = ""
	records := join(
		marketRecords("S1"),
		sales("S2", "T1", "BIDCO", "Vegetable Oil", 1200, 2),
		sales("S2", "C1", "KAPA", "Vegetable Oil", 1250, 3),
		sales("S2", "C2", "PWANI", "Vegetable Oil", 1300, 3),
		sales("S3", "T1", "BIDCO", "Vegetable Oil", 1200, 3),
		sales("S3", "C1", "KAPA", "Vegetable Oil", 1250, 3),
		[]retail.Record{unpriced, unclassified},
	)

	// WHEN
	pos := calculate(t, records)

	// THEN: every dropped row and pair is counted
	assert.Equal(t, pricing.Exclusions{
		UnpricedRecords:     1,
		UnclassifiedRecords: 1,
		ThinPairs:           1,
		ThinTargetPairs:     1,
		NoBenchmarkPairs:    1,
	}, pos.Exclusions)

	// THEN: only S1 contributes an index
	require.Len(t, pos.Results, 2)
	require.Len(t, pos.SKUs, 1)
	assert.Equal(t, 2, pos.SKUs[0].Stores)
	assert.Equal(t, 1, pos.SKUs[0].IndexedStores)
	require.Len(t, pos.Stores, 1)
	assert.Equal(t, "S1", pos.Stores[0].Key)
	assert.InDelta(t, 1200/(3700.0/3), *pos.PortfolioIndex, 1e-9)
}

func TestCalculate_PortfolioWeighsStoresEqually(t *testing.T) {
	pos := calculate(t, join(
		// S1: T1 at 0.973
		marketRecords("S1"),
		// S2: T1 at 1500 / 1000 = 1.5
		sales("S2", "T1", "BIDCO", "Vegetable Oil", 1500, 3),
		sales("S2", "C1", "KAPA", "Vegetable Oil", 1000, 3),
		sales("S2", "C2", "PWANI", "Vegetable Oil", 1000, 3),
		// S2: T3 at 900 / 1000 = 0.9
		sales("S2", "T3", "BIDCO", "Sunflower Oil", 900, 3),
		sales("S2", "C5", "KAPA", "Sunflower Oil", 1000, 3),
		sales("S2", "C6", "PWANI", "Sunflower Oil", 1000, 3),
	))

	s1 := 1200.0 / (3700.0 / 3)
	s2 := (1.5 + 0.9) / 2

	require.Len(t, pos.Stores, 2)
	assert.Equal(t, "S2", pos.Stores[0].Key, "highest index first")
	assert.InDelta(t, s2, pos.Stores[0].Index, 1e-9)
	assert.Equal(t, 2, pos.Stores[0].Members)
	assert.InDelta(t, s1, pos.Stores[1].Index, 1e-9)
	assert.InDelta(t, (s1+s2)/2, *pos.PortfolioIndex, 1e-9)

	// SKU level: T1 averages its two stores
	require.Len(t, pos.SKUs, 2)
	t1 := pos.SKUs[0]
	assert.Equal(t, "T1", t1.SKU)
	assert.Equal(t, 2, t1.IndexedStores)
	assert.InDelta(t, (s1+1.5)/2, *t1.Index, 1e-9)
	assert.Equal(t, pricing.PositionPremium, t1.Position)
	assert.Equal(t, pricing.PositionAtMarket, pos.SKUs[1].Position, "0.9 is inside the band")

	assert.InDelta(t, ((s1+1.5)/2+0.9)/2, *pos.MedianSKUIndex, 1e-9)
	require.Len(t, pos.Categories, 1)
	assert.Equal(t, "Cooking Oils", pos.Categories[0].Key)
}

func TestCalculate_PriceVsRRP(t *testing.T) {
	records := marketRecords("S1")
	for i := 0; i < 3; i++ {
		records[i].RRP = retail.NullDecimal(1500)
	}
	pos := calculate(t, records)

	require.Len(t, pos.SKUs, 1)
	assert.InDelta(t, -20.0, *pos.SKUs[0].PriceVsRRPPct, 1e-9)
	assert.InDelta(t, 0.973, *pos.SKUs[0].Index, 1e-3, "rrp never replaces the index")
}

func TestCalculate_UnknownSupplier(t *testing.T) {
	_, err := pricing.Calculate(retailtest.Table(t, marketRecords("S1")...), "NOBODY", pricing.DefaultConfig())
	assert.True(t, retail.IsNotFound(err))
}

func TestCalculate_Idempotent(t *testing.T) {
	table := retailtest.Table(t, marketRecords("S1")...)
	a, err := pricing.Calculate(table, "BIDCO", pricing.DefaultConfig())
	require.NoError(t, err)
	b, err := pricing.Calculate(table, "BIDCO", pricing.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// =============================================================================
// SETS, POSITIONS, RECOMMENDATIONS
// =============================================================================

func TestCompetitiveSets(t *testing.T) {
	table := retailtest.Table(t, join(
		marketRecords("S1"),
		sales("S1", "C4", "KAPA", "Olive Oil", 900, 1),
	)...)

	sets := pricing.CompetitiveSets(table, "BIDCO")

	require.Len(t, sets, 2)
	assert.Equal(t, "Vegetable Oil", sets[0].Section)
	assert.Equal(t, []string{"T1"}, sets[0].TargetSKUs)
	assert.Equal(t, []string{"C1", "C2", "C3"}, sets[0].CompetitorSKUs)
	assert.Empty(t, sets[1].TargetSKUs)
}

func TestPositionFor(t *testing.T) {
	cfg := pricing.DefaultConfig()
	cases := []struct {
		index *float64
		want  pricing.Position
	}{
		{nil, pricing.PositionInsufficient},
		{retail.Float(1.11), pricing.PositionPremium},
		{retail.Float(1.1), pricing.PositionAtMarket},
		{retail.Float(0.9), pricing.PositionAtMarket},
		{retail.Float(0.89), pricing.PositionDiscount},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, cfg.PositionFor(tc.index))
	}
}

func TestCalculate_PremiumRecommendations(t *testing.T) {
	pos := calculate(t, join(
		sales("S1", "T1", "BIDCO", "Vegetable Oil", 1300, 3),
		sales("S1", "C1", "KAPA", "Vegetable Oil", 1000, 3),
		sales("S1", "C2", "PWANI", "Vegetable Oil", 1000, 3),
	))

	require.Len(t, pos.Recommendations, 3)
	assert.Contains(t, pos.Recommendations[0], "Overall premium pricing (index: 1.30)")
	assert.Contains(t, pos.Recommendations[1], "100% of SKUs are premium-priced")
	assert.Contains(t, pos.Recommendations[2], "Cooking Oils is significantly premium")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, pricing.DefaultConfig().Validate())

	cfg := pricing.DefaultConfig()
	cfg.AtMarketBand = pricing.Band{Low: 1.1, High: 0.9}
	assert.True(t, retail.IsValidation(cfg.Validate()))
}
