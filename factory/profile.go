/*
Package factory provides JSON to Go analysis-profile conversion.

PURPOSE:
  Converts a JSON analysis profile into the validated engine configs the
  insight service runs with. Thresholds can be tuned per deployment without
  code changes; anything the profile leaves out keeps its default.

JSON SCHEMA:
  {
    "name": "kenya-modern-trade",
    "currency": "KES",
    "quality": {
      "trust_threshold": 0.75,
      "min_records_for_trust": 10,
      "consistency_tolerance": 0.01,
      "price_ceiling": 1000000,
      "date_window": {"from": "2024-01-01", "to": "2026-01-01"},
      "completeness_fields": ["store_name", "item_code", "supplier"],
      "category_hierarchy": {"Cooking Oils": "Foods"}
    },
    "promo": {
      "mode": "longitudinal",
      "discount_threshold_pct": 10,
      "max_realistic_discount_pct": 70,
      "min_promo_days": 2,
      "min_baseline_days": 2,
      "min_transactions": 5,
      "min_promo_stores": 1,
      "min_baseline_stores": 1,
      "min_promo_units_for_ranking": 50,
      "top_n": 5
    },
    "pricing": {
      "min_transactions_for_price": 3,
      "min_competitors_for_index": 2,
      "at_market_band": {"low": 0.9, "high": 1.1}
    }
  }

KEY FEATURES:
  - Every field is optional; omitted fields take the engine default
  - Unknown completeness fields are rejected
  - The result is validated before it is returned

USAGE:
  opts, err := factory.ParseProfile(jsonString)
  svc, err := insight.New(source, opts, logger)

SEE ALSO:
  - insight/service.go: Options
  - config/config.go: PROFILE_PATH
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/warp/retail-insights/insight"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/quality"
	"github.com/warp/retail-insights/retail"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProfileJSON is the JSON representation of an analysis profile.
type ProfileJSON struct {
	Name     string       `json:"name,omitempty"`
	Currency string       `json:"currency,omitempty"`
	Quality  *QualityJSON `json:"quality,omitempty"`
	Promo    *PromoJSON   `json:"promo,omitempty"`
	Pricing  *PricingJSON `json:"pricing,omitempty"`
}

// QualityJSON represents quality scoring thresholds.
type QualityJSON struct {
	TrustThreshold       *float64          `json:"trust_threshold,omitempty"`
	MinRecordsForTrust   *int              `json:"min_records_for_trust,omitempty"`
	ConsistencyTolerance *float64          `json:"consistency_tolerance,omitempty"`
	PriceCeiling         *float64          `json:"price_ceiling,omitempty"`
	DateWindow           *WindowJSON       `json:"date_window,omitempty"`
	CompletenessFields   []string          `json:"completeness_fields,omitempty"`
	CategoryHierarchy    map[string]string `json:"category_hierarchy,omitempty"`
}

// WindowJSON is a date window with YYYY-MM-DD bounds; empty means open.
type WindowJSON struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// PromoJSON represents promo detection thresholds.
type PromoJSON struct {
	Mode                    string   `json:"mode,omitempty"` // longitudinal, cross_sectional
	DiscountThresholdPct    *float64 `json:"discount_threshold_pct,omitempty"`
	MaxRealisticDiscountPct *float64 `json:"max_realistic_discount_pct,omitempty"`
	MinPromoDays            *int     `json:"min_promo_days,omitempty"`
	MinBaselineDays         *int     `json:"min_baseline_days,omitempty"`
	MinTransactions         *int     `json:"min_transactions,omitempty"`
	MinPromoStores          *int     `json:"min_promo_stores,omitempty"`
	MinBaselineStores       *int     `json:"min_baseline_stores,omitempty"`
	MinPromoUnitsForRanking *float64 `json:"min_promo_units_for_ranking,omitempty"`
	TopN                    *int     `json:"top_n,omitempty"`
}

// PricingJSON represents price index thresholds.
type PricingJSON struct {
	MinTransactionsForPrice *int      `json:"min_transactions_for_price,omitempty"`
	MinCompetitorsForIndex  *int      `json:"min_competitors_for_index,omitempty"`
	AtMarketBand            *BandJSON `json:"at_market_band,omitempty"`
}

// BandJSON is the at-market index interval.
type BandJSON struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// =============================================================================
// PROFILE FACTORY
// =============================================================================

// ParseProfile parses a JSON string into validated service options.
func ParseProfile(jsonStr string) (insight.Options, error) {
	var pj ProfileJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return insight.Options{}, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return FromJSON(pj)
}

// LoadProfile reads and parses a profile file. An empty path yields the
// defaults.
func LoadProfile(path string) (insight.Options, error) {
	if path == "" {
		return insight.DefaultOptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return insight.Options{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return ParseProfile(string(data))
}

// FromJSON applies a profile over the defaults and validates the result.
func FromJSON(pj ProfileJSON) (insight.Options, error) {
	opts := insight.DefaultOptions()
	if pj.Currency != "" {
		opts.Currency = pj.Currency
	}

	if pj.Quality != nil {
		q, err := parseQuality(*pj.Quality, opts.Quality)
		if err != nil {
			return insight.Options{}, err
		}
		opts.Quality = q
	}
	if pj.Promo != nil {
		p, err := parsePromo(*pj.Promo, opts.Promo)
		if err != nil {
			return insight.Options{}, err
		}
		opts.Promo = p
	}
	if pj.Pricing != nil {
		opts.Pricing = parsePricing(*pj.Pricing, opts.Pricing)
	}

	if err := opts.Validate(); err != nil {
		return insight.Options{}, err
	}
	return opts, nil
}

func parseQuality(qj QualityJSON, cfg quality.Config) (quality.Config, error) {
	setFloat(&cfg.TrustThreshold, qj.TrustThreshold)
	setInt(&cfg.MinRecordsForTrust, qj.MinRecordsForTrust)
	setFloat(&cfg.ConsistencyTolerance, qj.ConsistencyTolerance)
	setFloat(&cfg.PriceCeiling, qj.PriceCeiling)

	if qj.DateWindow != nil {
		w, err := parseWindow(*qj.DateWindow)
		if err != nil {
			return cfg, err
		}
		cfg.DateWindow = w
	}

	if len(qj.CompletenessFields) > 0 {
		fields := make([]retail.Field, 0, len(qj.CompletenessFields))
		for _, name := range qj.CompletenessFields {
			f, ok := retail.ParseField(name)
			if !ok {
				return cfg, retail.Invalid("quality.completeness_fields", name, "unknown field")
			}
			fields = append(fields, f)
		}
		cfg.CompletenessFields = fields
	}

	if len(qj.CategoryHierarchy) > 0 {
		cfg.CategoryHierarchy = make(map[string]string, len(qj.CategoryHierarchy))
		for sub, cat := range qj.CategoryHierarchy {
			cfg.CategoryHierarchy[sub] = cat
		}
	}
	return cfg, nil
}

func parseWindow(wj WindowJSON) (quality.Window, error) {
	var w quality.Window
	var err error
	if wj.From != "" {
		if w.From, err = time.Parse("2006-01-02", wj.From); err != nil {
			return w, retail.Invalid("quality.date_window.from", wj.From, "want YYYY-MM-DD")
		}
	}
	if wj.To != "" {
		if w.To, err = time.Parse("2006-01-02", wj.To); err != nil {
			return w, retail.Invalid("quality.date_window.to", wj.To, "want YYYY-MM-DD")
		}
	}
	return w, nil
}

func parsePromo(pj PromoJSON, cfg promo.Config) (promo.Config, error) {
	if pj.Mode != "" {
		mode, err := promo.ParseMode(pj.Mode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}
	setFloat(&cfg.DiscountThresholdPct, pj.DiscountThresholdPct)
	setFloat(&cfg.MaxRealisticDiscountPct, pj.MaxRealisticDiscountPct)
	setInt(&cfg.MinPromoDays, pj.MinPromoDays)
	setInt(&cfg.MinBaselineDays, pj.MinBaselineDays)
	setInt(&cfg.MinTransactions, pj.MinTransactions)
	setInt(&cfg.MinPromoStores, pj.MinPromoStores)
	setInt(&cfg.MinBaselineStores, pj.MinBaselineStores)
	setFloat(&cfg.MinPromoUnitsForRanking, pj.MinPromoUnitsForRanking)
	setInt(&cfg.TopN, pj.TopN)
	return cfg, nil
}

func parsePricing(pj PricingJSON, cfg pricing.Config) pricing.Config {
	setInt(&cfg.MinTransactionsForPrice, pj.MinTransactionsForPrice)
	setInt(&cfg.MinCompetitorsForIndex, pj.MinCompetitorsForIndex)
	if pj.AtMarketBand != nil {
		cfg.AtMarketBand = pricing.Band{Low: pj.AtMarketBand.Low, High: pj.AtMarketBand.High}
	}
	return cfg
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
