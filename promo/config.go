/*
Package promo detects sustained promotional discounting and measures the
incremental volume it drives.

PURPOSE:
  Classifies store-day-SKU observations as promo or baseline, rolls them up
  to SKU level (uplift, coverage, discount depth) and ranks top performers.

ANALYSIS MODES:
  The mode is a fixed deployment choice, never auto-selected per request.

  longitudinal (default):
    Per (store, SKU), each day with sales is a promo day when
      (median RRP - day's realized price) / median RRP * 100 >= threshold
    Status needs BOTH promo days >= MinPromoDays AND baseline days >=
    MinBaselineDays. Uplift compares average units per promo day against
    average units per baseline day.

  cross_sectional:
    Per SKU, each (store, day) is promo or baseline by the same threshold
    against the SKU-wide median RRP. Days with at least MinPromoStores
    promo stores and MinBaselineStores baseline stores are compared, and
    uplift is promo units per store-day against baseline units per
    store-day over those days.

EXAMPLE:
  Promo: 100 units over 2 days (50/day); baseline: 60 units over 3 days
  (20/day). Uplift = (50 - 20) / 20 * 100 = 150%.

  Negative uplift is a valid result (cannibalization).

INSUFFICIENT DATA:
  A SKU with fewer than MinTransactions priced observations across all
  stores -> status insufficient_data and every dependent metric nil. Store
  status depends only on the promo and baseline day counts.

SEE ALSO:
  - detector.go: Longitudinal mode and SKU roll-up
  - crosssection.go: Cross-sectional mode
  - summary.go: Supplier summary, ranking, insights
*/
package promo

import (
	"fmt"

	"github.com/warp/retail-insights/retail"
)

// Mode selects the promo interpretation.
type Mode string

const (
	ModeLongitudinal   Mode = "longitudinal"
	ModeCrossSectional Mode = "cross_sectional"
)

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLongitudinal, ModeCrossSectional:
		return Mode(s), nil
	}
	return "", retail.Invalid("promo.mode", s, fmt.Sprintf("must be %q or %q", ModeLongitudinal, ModeCrossSectional))
}

// Status is the classification of a SKU (or store-SKU pair).
type Status string

const (
	StatusOnPromo      Status = "on_promo"
	StatusBaseline     Status = "baseline"
	StatusInsufficient Status = "insufficient_data"
)

// Config controls promo detection.
type Config struct {
	Mode Mode

	DiscountThresholdPct float64
	// Days with a discount deeper than this are treated as data errors and
	// excluded from classification.
	MaxRealisticDiscountPct float64

	MinPromoDays    int
	MinBaselineDays int
	MinTransactions int

	// Cross-sectional mode only.
	MinPromoStores    int
	MinBaselineStores int

	MinPromoUnitsForRanking float64
	TopN                    int
}

// DefaultConfig returns the standard thresholds in longitudinal mode.
func DefaultConfig() Config {
	return Config{
		Mode:                    ModeLongitudinal,
		DiscountThresholdPct:    10,
		MaxRealisticDiscountPct: 70,
		MinPromoDays:            2,
		MinBaselineDays:         2,
		MinTransactions:         5,
		MinPromoStores:          1,
		MinBaselineStores:       1,
		MinPromoUnitsForRanking: 50,
		TopN:                    5,
	}
}

// Validate rejects out-of-domain settings.
func (c Config) Validate() error {
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.DiscountThresholdPct <= 0 || c.DiscountThresholdPct >= 100 {
		return retail.Invalid("promo.discount_threshold_pct", c.DiscountThresholdPct, "must be within (0,100)")
	}
	if c.MaxRealisticDiscountPct <= c.DiscountThresholdPct {
		return retail.Invalid("promo.max_realistic_discount_pct", c.MaxRealisticDiscountPct, "must exceed the discount threshold")
	}
	if c.MinPromoDays < 1 || c.MinBaselineDays < 1 {
		return retail.Invalid("promo.min_days", fmt.Sprintf("%d/%d", c.MinPromoDays, c.MinBaselineDays), "must be >= 1")
	}
	if c.MinPromoStores < 1 || c.MinBaselineStores < 1 {
		return retail.Invalid("promo.min_stores", fmt.Sprintf("%d/%d", c.MinPromoStores, c.MinBaselineStores), "must be >= 1")
	}
	if c.MinTransactions < 0 {
		return retail.Invalid("promo.min_transactions", c.MinTransactions, "must be >= 0")
	}
	if c.MinPromoUnitsForRanking < 0 {
		return retail.Invalid("promo.min_promo_units_for_ranking", c.MinPromoUnitsForRanking, "must be >= 0")
	}
	if c.TopN < 1 {
		return retail.Invalid("promo.top_n", c.TopN, "must be >= 1")
	}
	return nil
}
