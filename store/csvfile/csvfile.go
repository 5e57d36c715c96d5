// Package csvfile reads a point-of-sale export into a retail.Table.
//
// Headers are matched by snake-cased name ("Store Name" -> store_name,
// "Sub-Department" -> sub_department, "Date Of Sale" -> date_of_sale) so
// the usual export layouts map without configuration. Unknown columns are
// ignored. Malformed rows are skipped and counted; Source logs the counts.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// aliases maps alternative header spellings to canonical fields.
var aliases = map[string]retail.Field{
	"store":               retail.FieldStoreName,
	"barcode":             retail.FieldBarcode,
	"sku":                 retail.FieldItemCode,
	"date":                retail.FieldDate,
	"sale_date":           retail.FieldDate,
	"qty":                 retail.FieldQuantity,
	"sales":               retail.FieldTotalSales,
	"realized_unit_price": retail.FieldUnitPrice,
	"discount":            retail.FieldDiscountPct,
	"discount_%":          retail.FieldDiscountPct,
}

// dateLayouts are tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2006/01/02",
}

// Stats describes one parse.
type Stats struct {
	Rows    int
	Skipped int
	// Unmapped lists header names that matched no field.
	Unmapped []string
}

// Parse reads CSV data with a header row into records.
func Parse(r io.Reader) ([]retail.Record, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var stats Stats
	fields := make([]retail.Field, len(headers))
	mapped := 0
	for i, h := range headers {
		key := toSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		f, ok := retail.ParseField(key)
		if !ok {
			f, ok = aliases[key]
		}
		if !ok {
			stats.Unmapped = append(stats.Unmapped, h)
			continue
		}
		fields[i] = f
		mapped++
	}
	if mapped == 0 {
		return nil, stats, retail.Invalid("header", strings.Join(headers, ","), "no recognizable columns")
	}

	var records []retail.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		stats.Rows++
		if err != nil {
			stats.Skipped++
			continue
		}
		rec := retail.Record{}
		for i, val := range row {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			set(&rec, fields[i], strings.TrimSpace(val))
		}
		records = append(records, rec)
	}
	return records, stats, nil
}

func set(r *retail.Record, f retail.Field, v string) {
	switch f {
	case retail.FieldStoreName:
		r.StoreName = v
	case retail.FieldItemCode:
		r.ItemCode = v
	case retail.FieldBarcode:
		r.Barcode = v
	case retail.FieldDescription:
		r.Description = v
	case retail.FieldSupplier:
		r.Supplier = v
	case retail.FieldCategory:
		r.Category = v
	case retail.FieldDepartment:
		r.Department = v
	case retail.FieldSubDepartment:
		r.SubDepartment = v
	case retail.FieldSection:
		r.Section = v
	case retail.FieldDate:
		r.Date = parseDate(v)
	case retail.FieldQuantity:
		r.Quantity = parseDecimal(v)
	case retail.FieldTotalSales:
		r.TotalSales = parseDecimal(v)
	case retail.FieldRRP:
		r.RRP = parseDecimal(v)
	case retail.FieldUnitPrice:
		r.UnitPrice = parseDecimal(v)
	case retail.FieldDiscountPct:
		r.DiscountPct = parseDecimal(strings.TrimSuffix(v, "%"))
	}
}

// parseDecimal leaves unparseable values null so quality scoring sees them.
func parseDecimal(v string) decimal.NullDecimal {
	v = strings.ReplaceAll(v, ",", "")
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseDate(v string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// toSnakeCase converts "Column Name" -> "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// =============================================================================
// SOURCE
// =============================================================================

// Source loads a table from a CSV file on each call.
type Source struct {
	Path string
	// Logger receives the parse stats of each load. Defaults to slog.Default.
	Logger *slog.Logger
}

// Load parses the file into a fresh table.
func (s Source) Load(ctx context.Context) (*retail.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	records, stats, err := Parse(f)
	if err != nil {
		return nil, err
	}

	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	attrs := []any{"path", s.Path, "rows", stats.Rows, "skipped", stats.Skipped, "unmapped", stats.Unmapped}
	if stats.Skipped > 0 || len(stats.Unmapped) > 0 {
		log.Warn("csv export has unusable rows or columns", attrs...)
	} else {
		log.Debug("csv export parsed", attrs...)
	}
	return retail.NewTable("csv:"+s.Path, records)
}
