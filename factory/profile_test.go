package factory_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-insights/factory"
	"github.com/warp/retail-insights/insight"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/retail"
)

func TestParseProfile_EmptyIsDefaults(t *testing.T) {
	opts, err := factory.ParseProfile(`{}`)
	require.NoError(t, err)
	assert.Equal(t, insight.DefaultOptions(), opts)
}

func TestParseProfile_OverridesOnlyWhatIsSet(t *testing.T) {
	// GIVEN: a profile tuning one threshold per engine
	profile := `{
		"currency": "UGX",
		"quality": {
			"trust_threshold": 0.8,
			"date_window": {"from": "2025-01-01"},
			"completeness_fields": ["store_name", "item_code"],
			"category_hierarchy": {"Cooking Oils": "Foods"}
		},
		"promo": {"mode": "cross_sectional", "top_n": 10},
		"pricing": {"at_market_band": {"low": 0.95, "high": 1.05}}
	}`

	// WHEN
	opts, err := factory.ParseProfile(profile)
	require.NoError(t, err)

	// THEN
	def := insight.DefaultOptions()
	assert.Equal(t, "UGX", opts.Currency)

	assert.Equal(t, 0.8, opts.Quality.TrustThreshold)
	assert.Equal(t, def.Quality.MinRecordsForTrust, opts.Quality.MinRecordsForTrust)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), opts.Quality.DateWindow.From)
	assert.True(t, opts.Quality.DateWindow.To.IsZero(), "omitted bound is open")
	assert.Equal(t, []retail.Field{retail.FieldStoreName, retail.FieldItemCode}, opts.Quality.CompletenessFields)
	assert.Equal(t, "Foods", opts.Quality.CategoryHierarchy["Cooking Oils"])

	assert.Equal(t, promo.ModeCrossSectional, opts.Promo.Mode)
	assert.Equal(t, 10, opts.Promo.TopN)
	assert.Equal(t, def.Promo.DiscountThresholdPct, opts.Promo.DiscountThresholdPct)

	assert.Equal(t, pricing.Band{Low: 0.95, High: 1.05}, opts.Pricing.AtMarketBand)
	assert.Equal(t, def.Pricing.MinCompetitorsForIndex, opts.Pricing.MinCompetitorsForIndex)
}

func TestParseProfile_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		profile string
	}{
		{"unknown mode", `{"promo": {"mode": "weekly"}}`},
		{"unknown field", `{"quality": {"completeness_fields": ["margin"]}}`},
		{"bad date", `{"quality": {"date_window": {"to": "01/01/2026"}}}`},
		{"trust above one", `{"quality": {"trust_threshold": 1.2}}`},
		{"inverted band", `{"pricing": {"at_market_band": {"low": 1.1, "high": 0.9}}}`},
		{"ceiling below threshold", `{"promo": {"discount_threshold_pct": 50, "max_realistic_discount_pct": 40}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.ParseProfile(tt.profile)
			assert.True(t, retail.IsValidation(err), "got %v", err)
		})
	}
}

func TestParseProfile_MalformedJSON(t *testing.T) {
	_, err := factory.ParseProfile(`{"promo":`)
	assert.Error(t, err)
	assert.False(t, retail.IsValidation(err))
}

func TestLoadProfile(t *testing.T) {
	opts, err := factory.LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, insight.DefaultOptions(), opts)

	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pricing": {"min_competitors_for_index": 3}}`), 0o600))

	opts, err = factory.LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Pricing.MinCompetitorsForIndex)

	_, err = factory.LoadProfile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
