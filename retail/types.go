/*
Package retail provides the transaction table shared by every analytic engine.

PURPOSE:
  Defines the normalized point-of-sale record, the immutable snapshot that
  wraps a set of records, and the keyed-partition step the engines use to
  split a snapshot into groups (store, supplier, SKU, competitive set).

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: one normalized transaction row
  - Field: named column used by completeness checks
  - Table: immutable snapshot, loaded once per process (or per scenario)

DESIGN PRINCIPLES:
  1. Immutability: engines never write to a Table or its Records
  2. Precision: money and quantities use decimal.Decimal
  3. Explicit absence: nullable numerics are decimal.NullDecimal, never 0
  4. Exclusion, not imputation: a record without a realized price is
     skipped by price computations and counted, never filled in

USAGE:
  table, err := retail.NewTable("scenario:baseline", records)
  if err != nil {
      return err // ErrEmptyTable is fatal for every engine
  }
  byStore := retail.PartitionBy(table.Records, retail.ByStore)

SEE ALSO:
  - partition.go: Keyed partitions
  - errors.go: NotFound / Validation / EmptyTable errors
  - stats.go: Mean / median helpers
*/
package retail

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FIELDS
// =============================================================================

// Field names a column of the transaction table.
type Field string

const (
	FieldStoreName     Field = "store_name"
	FieldItemCode      Field = "item_code"
	FieldBarcode       Field = "item_barcode"
	FieldDescription   Field = "description"
	FieldSupplier      Field = "supplier"
	FieldCategory      Field = "category"
	FieldDepartment    Field = "department"
	FieldSubDepartment Field = "sub_department"
	FieldSection       Field = "section"
	FieldDate          Field = "date_of_sale"
	FieldQuantity      Field = "quantity"
	FieldTotalSales    Field = "total_sales"
	FieldRRP           Field = "rrp"
	FieldUnitPrice     Field = "unit_price"
	FieldDiscountPct   Field = "discount_pct"
)

// AllFields lists every column in table order.
var AllFields = []Field{
	FieldStoreName, FieldItemCode, FieldBarcode, FieldDescription, FieldSupplier,
	FieldCategory, FieldDepartment, FieldSubDepartment, FieldSection, FieldDate,
	FieldQuantity, FieldTotalSales, FieldRRP, FieldUnitPrice, FieldDiscountPct,
}

// RequiredFields are the columns that must be populated for a record to be
// considered complete.
var RequiredFields = []Field{
	FieldStoreName, FieldItemCode, FieldDescription, FieldSupplier,
	FieldCategory, FieldSubDepartment, FieldSection, FieldDate,
	FieldQuantity, FieldTotalSales,
}

// ParseField resolves a column name. Unknown names return false.
func ParseField(s string) (Field, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range AllFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one normalized point-of-sale transaction.
type Record struct {
	StoreName     string
	ItemCode      string
	Barcode       string
	Description   string
	Supplier      string
	Category      string
	Department    string
	SubDepartment string
	Section       string
	Date          time.Time

	Quantity   decimal.NullDecimal
	TotalSales decimal.NullDecimal
	RRP        decimal.NullDecimal

	// UnitPrice is the realized price as reported by the source system.
	UnitPrice decimal.NullDecimal
	// DiscountPct is the discount as reported by the source system.
	DiscountPct decimal.NullDecimal
}

// RealizedPrice returns total_sales / quantity. ok is false when either
// value is absent or zero; such records carry no realized price.
func (r Record) RealizedPrice() (decimal.Decimal, bool) {
	if !r.Quantity.Valid || !r.TotalSales.Valid {
		return decimal.Zero, false
	}
	if r.Quantity.Decimal.IsZero() || r.TotalSales.Decimal.IsZero() {
		return decimal.Zero, false
	}
	return r.TotalSales.Decimal.Div(r.Quantity.Decimal), true
}

// PricedPositive reports whether the record has a strictly positive realized
// price built from positive quantity and sales. Price-based engines only read
// records for which this holds.
func (r Record) PricedPositive() bool {
	if !r.Quantity.Valid || !r.TotalSales.Valid {
		return false
	}
	return r.Quantity.Decimal.IsPositive() && r.TotalSales.Decimal.IsPositive()
}

// Missing reports whether a field is null, empty or whitespace-only.
func (r Record) Missing(f Field) bool {
	switch f {
	case FieldStoreName:
		return blank(r.StoreName)
	case FieldItemCode:
		return blank(r.ItemCode)
	case FieldBarcode:
		return blank(r.Barcode) || strings.TrimSpace(r.Barcode) == "0"
	case FieldDescription:
		return blank(r.Description)
	case FieldSupplier:
		return blank(r.Supplier)
	case FieldCategory:
		return blank(r.Category)
	case FieldDepartment:
		return blank(r.Department)
	case FieldSubDepartment:
		return blank(r.SubDepartment)
	case FieldSection:
		return blank(r.Section)
	case FieldDate:
		return r.Date.IsZero()
	case FieldQuantity:
		return !r.Quantity.Valid
	case FieldTotalSales:
		return !r.TotalSales.Valid
	case FieldRRP:
		return !r.RRP.Valid
	case FieldUnitPrice:
		return !r.UnitPrice.Valid
	case FieldDiscountPct:
		return !r.DiscountPct.Valid
	}
	return true
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Day truncates the sale date to a calendar day in UTC.
func (r Record) Day() time.Time {
	y, m, d := r.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NullDecimal wraps a float into a valid decimal.NullDecimal.
func NullDecimal(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

// =============================================================================
// TABLE - Immutable snapshot
// =============================================================================

// Table is a fully materialized, read-only snapshot of transactions.
type Table struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time
	Records  []Record
}

// NewTable wraps records in a snapshot. An empty record set is fatal.
func NewTable(source string, records []Record) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	return &Table{
		ID:       uuid.New(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Records:  records,
	}, nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.Records) }

// DateRange returns the first and last sale day. Records without a date are
// ignored; ok is false when no record has one.
func (t *Table) DateRange() (from, to time.Time, ok bool) {
	for _, r := range t.Records {
		if r.Date.IsZero() {
			continue
		}
		d := r.Day()
		if !ok || d.Before(from) {
			from = d
		}
		if !ok || d.After(to) {
			to = d
		}
		ok = true
	}
	return from, to, ok
}

// SameName compares two grouping keys case-insensitively, ignoring
// surrounding whitespace.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
