package kpi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// Metric selects the measure a SKU ranking sorts by.
type Metric string

const (
	MetricSales Metric = "sales"
	MetricUnits Metric = "units"
)

// ParseMetric resolves a ranking measure; empty means sales.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case "":
		return MetricSales, nil
	case MetricSales, MetricUnits:
		return Metric(s), nil
	}
	return "", retail.Invalid("by", s, "must be sales or units")
}

func (m Metric) of(t Totals) decimal.Decimal {
	if m == MetricUnits {
		return t.Units
	}
	return t.Sales
}

// CategoryBreakdown is one category's totals and share of the subset.
type CategoryBreakdown struct {
	Category      string
	Totals        Totals
	UniqueSKUs    int
	SalesSharePct *float64
}

// Categories sums records per category, highest sales first.
func Categories(records []retail.Record) []CategoryBreakdown {
	total := Sum(records)
	p := retail.PartitionBy(records, retail.ByCategory)
	out := make([]CategoryBreakdown, 0, p.Len())
	for _, g := range p.Groups {
		t := Sum(g.Records)
		out = append(out, CategoryBreakdown{
			Category:      g.Key,
			Totals:        t,
			UniqueSKUs:    distinct(g.Records, retail.BySKU),
			SalesSharePct: SharePct(t.Sales, total.Sales),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Totals.Sales.GreaterThan(out[j].Totals.Sales)
	})
	return out
}

// StoreRanking is one store's totals.
type StoreRanking struct {
	Store               string
	Totals              Totals
	UniqueSKUs          int
	AvgTransactionValue *decimal.Decimal
}

// StoreRankings returns the topN stores by sales. topN <= 0 returns all.
func StoreRankings(records []retail.Record, topN int) []StoreRanking {
	p := retail.PartitionBy(records, retail.ByStore)
	out := make([]StoreRanking, 0, p.Len())
	for _, g := range p.Groups {
		t := Sum(g.Records)
		out = append(out, StoreRanking{
			Store:               g.Key,
			Totals:              t,
			UniqueSKUs:          distinct(g.Records, retail.BySKU),
			AvgTransactionValue: t.AvgTransactionValue(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Totals.Sales.GreaterThan(out[j].Totals.Sales)
	})
	return head(out, topN)
}

// SKURanking is one SKU's totals.
type SKURanking struct {
	SKU           string
	Description   string
	Supplier      string
	Totals        Totals
	StoresPresent int
}

// TopSKUs returns the topN SKUs by the chosen measure. topN <= 0 returns
// all.
func TopSKUs(records []retail.Record, by Metric, topN int) []SKURanking {
	p := retail.PartitionBy(records, retail.BySKU)
	out := make([]SKURanking, 0, p.Len())
	for _, g := range p.Groups {
		out = append(out, SKURanking{
			SKU:           g.Key,
			Description:   g.Records[0].Description,
			Supplier:      retail.BySupplier(g.Records[0]),
			Totals:        Sum(g.Records),
			StoresPresent: distinct(g.Records, retail.ByStore),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return by.of(out[i].Totals).GreaterThan(by.of(out[j].Totals))
	})
	return head(out, topN)
}

// DailyPoint is one calendar day's totals.
type DailyPoint struct {
	Date   time.Time
	Totals Totals
}

// DailyTrends sums records per calendar day in date order.
func DailyTrends(records []retail.Record) []DailyPoint {
	byDay := make(map[time.Time][]retail.Record)
	var days []time.Time
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		d := r.Day()
		if _, ok := byDay[d]; !ok {
			days = append(days, d)
		}
		byDay[d] = append(byDay[d], r)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]DailyPoint, 0, len(days))
	for _, d := range days {
		out = append(out, DailyPoint{Date: d, Totals: Sum(byDay[d])})
	}
	return out
}

func head[T any](xs []T, n int) []T {
	if n > 0 && len(xs) > n {
		return xs[:n]
	}
	return xs
}
