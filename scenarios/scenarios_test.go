package scenarios_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/quality"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/scenarios"
)

func load(t *testing.T, id string) *retail.Table {
	t.Helper()
	table, err := scenarios.Source{ID: id}.Load(context.Background())
	require.NoError(t, err)
	return table
}

func TestList_AllScenariosBuild(t *testing.T) {
	for _, s := range scenarios.List() {
		t.Run(s.ID, func(t *testing.T) {
			table, err := s.Table()
			require.NoError(t, err)
			assert.Equal(t, scenarios.Days*len(scenarios.Stores)*8, table.Len())
			assert.Equal(t, "scenario:"+s.ID, table.Source)
		})
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := scenarios.Get("black-friday")
	assert.True(t, retail.IsNotFound(err))
}

func TestRecords_Deterministic(t *testing.T) {
	s, err := scenarios.Get("bidco-promo")
	require.NoError(t, err)
	assert.Equal(t, s.Records(), s.Records())
}

func TestBidcoPromo_DetectedInThreeOfFiveStores(t *testing.T) {
	// GIVEN: BIDCO oils discounted 25% for four days in three stores
	table := load(t, "bidco-promo")
	cfg := promo.DefaultConfig()

	// WHEN
	a, err := promo.Detect(table, cfg)
	require.NoError(t, err)
	sum, err := promo.SupplierSummary(a, "bidco", cfg)
	require.NoError(t, err)

	// THEN: both oils on promo, the fat is baseline
	assert.Equal(t, 3, sum.TotalSKUs)
	assert.Equal(t, 2, sum.SKUsOnPromo)
	for _, s := range sum.SKUs {
		switch s.SKU {
		case "1001", "1002":
			assert.Equal(t, promo.StatusOnPromo, s.Status)
			assert.Equal(t, 3, s.StoresOnPromo)
			require.NotNil(t, s.CoveragePct)
			assert.InDelta(t, 60.0, *s.CoveragePct, 1e-9)
			require.NotNil(t, s.UpliftPct)
			assert.Greater(t, *s.UpliftPct, 50.0)
			require.NotNil(t, s.DiscountDepth)
			assert.InDelta(t, 25.0, *s.DiscountDepth, 1e-9)
		case "1003":
			assert.Equal(t, promo.StatusBaseline, s.Status)
		}
	}
	assert.Len(t, sum.TopPerformers, 2)
}

func TestPriceWar_BidcoPremium(t *testing.T) {
	pos, err := pricing.Calculate(load(t, "price-war"), "BIDCO", pricing.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, pricing.PositionPremium, pos.PortfolioPosition)
	assert.Equal(t, 3, pos.PremiumSKUs)
	assert.Zero(t, pos.InsufficientSKUs)
}

func TestSteadyMarket_BidcoAtMarketAndNoPromos(t *testing.T) {
	table := load(t, "steady-market")

	pos, err := pricing.Calculate(table, "BIDCO", pricing.DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, pos.PortfolioIndex)

	a, err := promo.Detect(table, promo.DefaultConfig())
	require.NoError(t, err)
	for _, s := range a.SKUs {
		assert.Equal(t, promo.StatusBaseline, s.Status, s.SKU)
	}
}

func TestDirtyData_OnlyThikaRoadUntrusted(t *testing.T) {
	scores := quality.ScoreAll(load(t, "dirty-data"), quality.KindStore, quality.DefaultConfig())

	require.Len(t, scores, len(scenarios.Stores))
	for _, s := range scores {
		if s.GroupKey == "Thika Road" {
			assert.False(t, s.IsTrusted())
			assert.NotEmpty(t, s.Issues)
			continue
		}
		assert.True(t, s.IsTrusted(), s.GroupKey)
	}
}
