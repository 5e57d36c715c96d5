package kpi

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/quality"
	"github.com/warp/retail-insights/retail"
)

// DefaultCurrency prefixes formatted money values.
const DefaultCurrency = "KES"

// summaryTopN bounds the rankings in an executive summary.
const summaryTopN = 5

// =============================================================================
// EXECUTIVE SUMMARY
// =============================================================================

// KeyMetrics are display-ready headline figures.
type KeyMetrics struct {
	MarketShare   string
	TotalSales    string
	TotalUnits    string
	AvgUnitPrice  string
	StoreCoverage string
}

// ExecutiveSummary gathers market, supplier and ranking views.
type ExecutiveSummary struct {
	Supplier    string
	Market      MarketOverview
	Performance SupplierKPIs
	Categories  []CategoryBreakdown
	TopStores   []StoreRanking
	TopProducts []SKURanking
	KeyMetrics  KeyMetrics
}

// Summarize builds the executive summary for a supplier.
func Summarize(table *retail.Table, supplier, currency string) (ExecutiveSummary, error) {
	perf, err := Supplier(table, supplier)
	if err != nil {
		return ExecutiveSummary{}, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	market := Market(table)
	records := retail.Filter(table.Records, retail.OfSupplier(supplier))

	return ExecutiveSummary{
		Supplier:    perf.Supplier,
		Market:      market,
		Performance: perf,
		Categories:  perf.Categories,
		TopStores:   StoreRankings(records, summaryTopN),
		TopProducts: TopSKUs(records, MetricSales, summaryTopN),
		KeyMetrics: KeyMetrics{
			MarketShare:   formatPct(perf.MarketSharePct),
			TotalSales:    formatMoney(currency, &perf.Sales),
			TotalUnits:    formatNumber(perf.Units),
			AvgUnitPrice:  formatMoney(currency, floatDecimal(perf.AvgUnitPrice)),
			StoreCoverage: fmt.Sprintf("%d of %d stores", perf.StoresPresent, market.UniqueStores),
		},
	}, nil
}

func floatDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func formatPct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func formatMoney(currency string, v *decimal.Decimal) string {
	if v == nil {
		return "N/A"
	}
	return currency + " " + formatNumber(*v)
}

// formatNumber renders two decimals with thousands separators.
func formatNumber(v decimal.Decimal) string {
	s := v.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + frac
}

// =============================================================================
// DASHBOARD
// =============================================================================

// QualityView is the supplier's quality headline. Fields are nil when the
// supplier has no score.
type QualityView struct {
	Overall *float64
	Grade   *quality.Grade
	Trusted *bool
}

// PromoView is the supplier's promo headline.
type PromoView struct {
	SKUsOnPromo  int
	TotalSKUs    int
	AvgUpliftPct *float64
}

// PricingView is the supplier's price headline.
type PricingView struct {
	PortfolioIndex *float64
	Position       pricing.Position
}

// Dashboard is the combined supplier view.
type Dashboard struct {
	Supplier string
	Quality  QualityView
	Promos   PromoView
	Pricing  PricingView
	KPIs     KeyMetrics
}

// Compose selects the headline of each engine output. q may be nil.
func Compose(q *quality.Score, p promo.Summary, pr pricing.Positioning, s ExecutiveSummary) Dashboard {
	d := Dashboard{
		Supplier: s.Supplier,
		Promos: PromoView{
			SKUsOnPromo:  p.SKUsOnPromo,
			TotalSKUs:    p.TotalSKUs,
			AvgUpliftPct: p.AvgUpliftPct,
		},
		Pricing: PricingView{
			PortfolioIndex: pr.PortfolioIndex,
			Position:       pr.PortfolioPosition,
		},
		KPIs: s.KeyMetrics,
	}
	if q != nil {
		d.Quality = QualityView{Overall: q.Overall, Grade: q.Grade, Trusted: q.Trusted}
	}
	return d
}
