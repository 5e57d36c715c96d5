/*
Package kpi rolls transactions up into business totals and composes the
engine outputs into a single supplier view.

PURPOSE:
  Market and supplier totals, market share, category breakdowns, store and
  SKU rankings, daily trends, and the executive summary.

TOTALS:
  Sales and units are summed with decimal arithmetic over every record.
  Records with a null quantity or sale contribute nothing to that sum but
  still count as transactions.

  market_share_pct = supplier sales / market sales * 100

RANKINGS:
  Descending by the ranked measure. Ties keep input order (the order in
  which each key first appears in the table).

SEE ALSO:
  - rankings.go: Categories, stores, SKUs, daily trends
  - summary.go: Executive summary and dashboard composition
*/
package kpi

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// =============================================================================
// TOTALS
// =============================================================================

// Totals are the additive measures of a record subset.
type Totals struct {
	Sales        decimal.Decimal
	Units        decimal.Decimal
	Transactions int
}

// Sum totals records.
func Sum(records []retail.Record) Totals {
	t := Totals{Sales: decimal.Zero, Units: decimal.Zero, Transactions: len(records)}
	for _, r := range records {
		if r.TotalSales.Valid {
			t.Sales = t.Sales.Add(r.TotalSales.Decimal)
		}
		if r.Quantity.Valid {
			t.Units = t.Units.Add(r.Quantity.Decimal)
		}
	}
	return t
}

// AvgTransactionValue is sales per transaction, nil for no transactions.
func (t Totals) AvgTransactionValue() *decimal.Decimal {
	if t.Transactions == 0 {
		return nil
	}
	v := t.Sales.Div(decimal.NewFromInt(int64(t.Transactions)))
	return &v
}

// SharePct returns part / whole * 100, nil when whole is zero.
func SharePct(part, whole decimal.Decimal) *float64 {
	if whole.IsZero() {
		return nil
	}
	v := part.Div(whole).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return &v
}

// avgUnitPrice is the mean realized price over priced records.
func avgUnitPrice(records []retail.Record) *float64 {
	var prices []float64
	for _, r := range records {
		if p, ok := r.RealizedPrice(); ok {
			prices = append(prices, p.InexactFloat64())
		}
	}
	return retail.MeanPtr(prices)
}

func distinct(records []retail.Record, key retail.KeyFunc) int {
	return retail.PartitionBy(records, key).Len()
}

// =============================================================================
// MARKET AND SUPPLIER
// =============================================================================

// MarketOverview summarizes the whole table.
type MarketOverview struct {
	Totals
	UniqueStores    int
	UniqueSuppliers int
	UniqueSKUs      int

	AvgTransactionValue *decimal.Decimal
	AvgUnitPrice        *float64

	From time.Time
	To   time.Time
}

// Market computes market-wide totals across all suppliers.
func Market(table *retail.Table) MarketOverview {
	t := Sum(table.Records)
	m := MarketOverview{
		Totals:              t,
		UniqueStores:        distinct(table.Records, retail.ByStore),
		UniqueSuppliers:     distinct(table.Records, retail.BySupplier),
		UniqueSKUs:          distinct(table.Records, retail.BySKU),
		AvgTransactionValue: t.AvgTransactionValue(),
		AvgUnitPrice:        avgUnitPrice(table.Records),
	}
	m.From, m.To, _ = table.DateRange()
	return m
}

// SupplierKPIs are one supplier's totals and share of the market.
type SupplierKPIs struct {
	Supplier string
	Totals
	MarketSharePct *float64
	UniqueSKUs     int
	StoresPresent  int
	AvgUnitPrice   *float64
	Categories     []CategoryBreakdown
}

// Supplier computes the KPIs of the supplier matching name
// case-insensitively.
func Supplier(table *retail.Table, name string) (SupplierKPIs, error) {
	records := retail.Filter(table.Records, retail.OfSupplier(name))
	if len(records) == 0 {
		return SupplierKPIs{}, &retail.NotFoundError{Kind: "supplier", Name: name}
	}
	market := Sum(table.Records)
	t := Sum(records)
	return SupplierKPIs{
		Supplier:       retail.BySupplier(records[0]),
		Totals:         t,
		MarketSharePct: SharePct(t.Sales, market.Sales),
		UniqueSKUs:     distinct(records, retail.BySKU),
		StoresPresent:  distinct(records, retail.ByStore),
		AvgUnitPrice:   avgUnitPrice(records),
		Categories:     Categories(records),
	}, nil
}
