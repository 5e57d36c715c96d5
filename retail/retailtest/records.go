// Package retailtest builds transaction records for tests.
package retailtest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// Epoch is day 0 for Record.
var Epoch = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

// Record builds a complete, valid record. rrp <= 0 leaves RRP null.
func Record(store, sku, supplier string, day int, qty, sales, rrp float64) retail.Record {
	r := retail.Record{
		StoreName:     store,
		ItemCode:      sku,
		Barcode:       "600" + sku,
		Description:   "Item " + sku,
		Supplier:      supplier,
		Category:      "Foods",
		Department:    "Grocery",
		SubDepartment: "Cooking Oils",
		Section:       "Vegetable Oil",
		Date:          Epoch.AddDate(0, 0, day),
		Quantity:      retail.NullDecimal(qty),
		TotalSales:    retail.NullDecimal(sales),
	}
	if rrp > 0 {
		r.RRP = retail.NullDecimal(rrp)
	}
	return r
}

// Priced builds a one-unit sale at price.
func Priced(store, sku, supplier string, day int, price, rrp float64) retail.Record {
	return Record(store, sku, supplier, day, 1, price, rrp)
}

// InSet moves a record to another competitive set.
func InSet(r retail.Record, subDepartment, section string) retail.Record {
	r.SubDepartment = subDepartment
	r.Section = section
	return r
}

// Repeat returns n copies of r.
func Repeat(r retail.Record, n int) []retail.Record {
	out := make([]retail.Record, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// Table wraps records in a snapshot, failing the test on error.
func Table(t testing.TB, records ...retail.Record) *retail.Table {
	t.Helper()
	table, err := retail.NewTable("test", records)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

// Dec is a shorthand for decimal.NewFromFloat.
func Dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }
