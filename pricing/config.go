/*
Package pricing benchmarks a target supplier's realized prices against the
competitors selling substitutable SKUs.

PURPOSE:
  Groups SKUs into competitive sets keyed by (sub-department, section),
  prices each (SKU, store) pair, and expresses the target's price as an
  index over the competitor mean in the same set and store.

INDEX:
  index = target avg realized price / mean of competitor SKU avg prices
  > band.High  premium
  < band.Low   discount
  otherwise    at_market

  Example: 1200 / ((1250 + 1300 + 1150) / 3) = 0.973 -> at_market

AGGREGATION:
  SKU        mean of the SKU's store indices
  Category   mean of SKU indices per sub-department
  Store      mean of (SKU, store) indices within the store
  Portfolio  mean of store indices, so every store weighs the same

  A set-store with fewer than MinCompetitorsForIndex competitor SKUs has no
  benchmark. Its results are insufficient_data and never enter an average.

SEE ALSO:
  - sets.go: Competitive set construction
  - calculator.go: Per-pair results and aggregates
  - recommend.go: Pricing recommendations
*/
package pricing

import (
	"github.com/warp/retail-insights/retail"
)

// Position labels where a price index sits against the market.
type Position string

const (
	PositionPremium      Position = "premium"
	PositionAtMarket     Position = "at_market"
	PositionDiscount     Position = "discount"
	PositionInsufficient Position = "insufficient_data"
)

// Band is the closed at-market interval.
type Band struct {
	Low  float64
	High float64
}

// Config controls price indexing.
type Config struct {
	MinTransactionsForPrice int
	MinCompetitorsForIndex  int
	AtMarketBand            Band
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinTransactionsForPrice: 3,
		MinCompetitorsForIndex:  2,
		AtMarketBand:            Band{Low: 0.9, High: 1.1},
	}
}

// Validate rejects out-of-domain settings.
func (c Config) Validate() error {
	if c.MinTransactionsForPrice < 1 {
		return retail.Invalid("pricing.min_transactions_for_price", c.MinTransactionsForPrice, "must be >= 1")
	}
	if c.MinCompetitorsForIndex < 1 {
		return retail.Invalid("pricing.min_competitors_for_index", c.MinCompetitorsForIndex, "must be >= 1")
	}
	if c.AtMarketBand.Low <= 0 || c.AtMarketBand.High < c.AtMarketBand.Low {
		return retail.Invalid("pricing.at_market_band", c.AtMarketBand, "need 0 < low <= high")
	}
	return nil
}

// PositionFor classifies an index. A nil index is insufficient_data.
func (c Config) PositionFor(index *float64) Position {
	switch {
	case index == nil:
		return PositionInsufficient
	case *index > c.AtMarketBand.High:
		return PositionPremium
	case *index < c.AtMarketBand.Low:
		return PositionDiscount
	default:
		return PositionAtMarket
	}
}
