package insight_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-insights/insight"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/scenarios"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newService(t *testing.T, scenario string) *insight.Service {
	t.Helper()
	svc, err := insight.New(scenarios.Source{ID: scenario}, insight.DefaultOptions(), nil)
	require.NoError(t, err)
	_, err = svc.Reload(context.Background())
	require.NoError(t, err)
	return svc
}

type failingSource struct{ calls atomic.Int32 }

func (f *failingSource) Load(context.Context) (*retail.Table, error) {
	f.calls.Add(1)
	return nil, errors.New("export unavailable")
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestNew_RejectsInvalidOptions(t *testing.T) {
	opts := insight.DefaultOptions()
	opts.Promo.TopN = 0

	_, err := insight.New(nil, opts, nil)
	assert.True(t, retail.IsValidation(err))
}

func TestOperations_NoSnapshot(t *testing.T) {
	svc, err := insight.New(nil, insight.DefaultOptions(), nil)
	require.NoError(t, err)

	_, err = svc.QualityReport()
	assert.ErrorIs(t, err, retail.ErrEmptyTable)
	_, err = svc.Dashboard("BIDCO")
	assert.ErrorIs(t, err, retail.ErrEmptyTable)
	_, err = svc.Reload(context.Background())
	assert.ErrorIs(t, err, retail.ErrEmptyTable)
}

func TestReload_FailureKeepsPreviousSnapshot(t *testing.T) {
	good, err := scenarios.Source{ID: "steady-market"}.Load(context.Background())
	require.NoError(t, err)

	svc, err := insight.New(&failingSource{}, insight.DefaultOptions(), nil)
	require.NoError(t, err)
	svc.Swap(good)

	_, err = svc.Reload(context.Background())
	assert.Error(t, err)

	current, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Same(t, good, current)
}

func TestRefresher_ReloadsOnInterval(t *testing.T) {
	src := &failingSource{}
	svc, err := insight.New(src, insight.DefaultOptions(), nil)
	require.NoError(t, err)

	r := insight.NewRefresher(svc, 5*time.Millisecond)
	r.LoadOnStart = true
	r.Start()
	assert.Eventually(t, func() bool { return src.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	r.Stop()

	// stopping twice is harmless
	r.Stop()
}

// =============================================================================
// OPERATIONS
// =============================================================================

func TestQualityOperations(t *testing.T) {
	svc := newService(t, "dirty-data")

	report, err := svc.QualityReport()
	require.NoError(t, err)
	assert.Equal(t, len(scenarios.Stores), report.TotalStores)
	assert.Equal(t, 1, report.UntrustedStores)

	floor := 0.9
	stores, err := svc.StoreScores(&floor, true)
	require.NoError(t, err)
	assert.Len(t, stores, len(scenarios.Stores)-1)

	bad := 1.5
	_, err = svc.StoreScores(&bad, false)
	assert.True(t, retail.IsValidation(err))

	score, err := svc.SupplierScore("kapa")
	require.NoError(t, err)
	assert.Equal(t, "KAPA", score.GroupKey)

	_, err = svc.SupplierScore("KAP")
	assert.True(t, retail.IsNotFound(err))
}

func TestPromoAndPricing(t *testing.T) {
	svc := newService(t, "bidco-promo")

	sum, err := svc.PromoAnalysis("BIDCO")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.SKUsOnPromo)

	pos, err := svc.PricePositioning("BIDCO")
	require.NoError(t, err)
	assert.Equal(t, "BIDCO", pos.Supplier)

	_, err = svc.PromoAnalysis("Unknown")
	assert.True(t, retail.IsNotFound(err))
}

func TestKPIOperations(t *testing.T) {
	svc := newService(t, "steady-market")

	market, err := svc.MarketOverview()
	require.NoError(t, err)
	assert.Equal(t, 4, market.UniqueSuppliers)

	k, err := svc.KPIs("bidco")
	require.NoError(t, err)
	require.NotNil(t, k.MarketSharePct)
	assert.Greater(t, *k.MarketSharePct, 0.0)

	exec, err := svc.ExecutiveSummary("BIDCO")
	require.NoError(t, err)
	assert.Contains(t, exec.KeyMetrics.TotalSales, "KES ")
	assert.Equal(t, "5 of 5 stores", exec.KeyMetrics.StoreCoverage)
}

func TestDashboard_ComposesAllEngines(t *testing.T) {
	svc := newService(t, "price-war")

	d, err := svc.Dashboard("bidco")
	require.NoError(t, err)

	assert.Equal(t, "BIDCO", d.Supplier)
	require.NotNil(t, d.Quality.Overall)
	assert.Equal(t, pricing.PositionPremium, d.Pricing.Position)
	assert.Equal(t, 3, d.Promos.TotalSKUs)
	assert.NotEmpty(t, d.KPIs.MarketShare)

	_, err = svc.Dashboard("nobody")
	assert.True(t, retail.IsNotFound(err))
}

func TestDashboard_Idempotent(t *testing.T) {
	svc := newService(t, "bidco-promo")

	first, err := svc.Dashboard("BIDCO")
	require.NoError(t, err)
	second, err := svc.Dashboard("BIDCO")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOptions_CrossSectionalMode(t *testing.T) {
	opts := insight.DefaultOptions()
	opts.Promo.Mode = promo.ModeCrossSectional
	svc, err := insight.New(scenarios.Source{ID: "bidco-promo"}, opts, nil)
	require.NoError(t, err)
	_, err = svc.Reload(context.Background())
	require.NoError(t, err)

	sum, err := svc.PromoAnalysis("BIDCO")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalSKUs)
}
