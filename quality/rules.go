package quality

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// =============================================================================
// RULES
// =============================================================================

// Pillar names a scoring pillar.
type Pillar string

const (
	PillarCompleteness Pillar = "completeness"
	PillarValidity     Pillar = "validity"
	PillarConsistency  Pillar = "consistency"
)

// Env carries the configuration-derived context rules read.
type Env struct {
	Tolerance    decimal.Decimal
	PriceCeiling decimal.Decimal
	Window       Window
	Hierarchy    map[string]string
}

func newEnv(cfg Config, hierarchy map[string]string) Env {
	return Env{
		Tolerance:    decimal.NewFromFloat(cfg.ConsistencyTolerance),
		PriceCeiling: decimal.NewFromFloat(cfg.PriceCeiling),
		Window:       cfg.DateWindow,
		Hierarchy:    hierarchy,
	}
}

// Rule is a single record-level predicate. Rules do not depend on each
// other, so adding one never changes how the others evaluate.
type Rule struct {
	Name        string
	Field       string
	Description string
	Check       func(r retail.Record, env Env) bool
}

// DefaultValidityRules returns the validity rule set.
func DefaultValidityRules() []Rule {
	return []Rule{
		{
			Name:        "quantity_present",
			Field:       string(retail.FieldQuantity),
			Description: "quantity missing or zero",
			Check: func(r retail.Record, _ Env) bool {
				return r.Quantity.Valid && !r.Quantity.Decimal.IsZero()
			},
		},
		{
			Name:        "total_sales_present",
			Field:       string(retail.FieldTotalSales),
			Description: "total sales missing or zero",
			Check: func(r retail.Record, _ Env) bool {
				return r.TotalSales.Valid && !r.TotalSales.Decimal.IsZero()
			},
		},
		{
			Name:        "rrp_positive",
			Field:       string(retail.FieldRRP),
			Description: "RRP missing or not positive",
			Check: func(r retail.Record, _ Env) bool {
				return r.RRP.Valid && r.RRP.Decimal.IsPositive()
			},
		},
		{
			Name:        "realized_price_positive",
			Field:       "realized_unit_price",
			Description: "realized unit price undefined or not positive",
			Check: func(r retail.Record, _ Env) bool {
				p, ok := r.RealizedPrice()
				return ok && p.IsPositive()
			},
		},
		{
			Name:        "realized_price_ceiling",
			Field:       "realized_unit_price",
			Description: "realized unit price above sanity ceiling",
			Check: func(r retail.Record, env Env) bool {
				p, ok := r.RealizedPrice()
				return ok && p.LessThan(env.PriceCeiling)
			},
		},
		{
			Name:        "date_in_window",
			Field:       string(retail.FieldDate),
			Description: "sale date outside accepted window",
			Check: func(r retail.Record, env Env) bool {
				return !r.Date.IsZero() && env.Window.Contains(r.Date)
			},
		},
	}
}

// DefaultConsistencyRules returns the consistency rule set. A rule with
// nothing to compare (e.g. no reported unit price) passes.
func DefaultConsistencyRules() []Rule {
	return []Rule{
		{
			Name:        "realized_price_matches",
			Field:       string(retail.FieldUnitPrice),
			Description: "reported unit price differs from total_sales/quantity",
			Check: func(r retail.Record, env Env) bool {
				p, ok := r.RealizedPrice()
				if !ok || !r.UnitPrice.Valid {
					return true
				}
				stored := r.UnitPrice.Decimal
				allowed := stored.Abs().Mul(env.Tolerance)
				return p.Sub(stored).Abs().LessThanOrEqual(allowed)
			},
		},
		{
			Name:        "discount_direction",
			Field:       string(retail.FieldDiscountPct),
			Description: "price above RRP while a positive discount is reported",
			Check: func(r retail.Record, _ Env) bool {
				p, ok := r.RealizedPrice()
				if !ok || !r.RRP.Valid || !p.GreaterThan(r.RRP.Decimal) {
					return true
				}
				return !r.DiscountPct.Valid || !r.DiscountPct.Decimal.IsPositive()
			},
		},
		{
			Name:        "category_hierarchy",
			Field:       string(retail.FieldSubDepartment),
			Description: "sub-department does not belong to declared category",
			Check: func(r retail.Record, env Env) bool {
				parent, ok := env.Hierarchy[strings.TrimSpace(r.SubDepartment)]
				if !ok {
					return true
				}
				return retail.SameName(parent, r.Category)
			},
		},
	}
}

// DeriveHierarchy maps each sub-department to the category most records
// declare for it. Ties go to the alphabetically first category.
func DeriveHierarchy(records []retail.Record) map[string]string {
	counts := make(map[string]map[string]int)
	for _, r := range records {
		sub, cat := strings.TrimSpace(r.SubDepartment), strings.TrimSpace(r.Category)
		if sub == "" || cat == "" {
			continue
		}
		if counts[sub] == nil {
			counts[sub] = make(map[string]int)
		}
		counts[sub][cat]++
	}

	hierarchy := make(map[string]string, len(counts))
	for sub, cats := range counts {
		names := make([]string, 0, len(cats))
		for c := range cats {
			names = append(names, c)
		}
		sort.Strings(names)
		best := names[0]
		for _, c := range names[1:] {
			if cats[c] > cats[best] {
				best = c
			}
		}
		hierarchy[sub] = best
	}
	return hierarchy
}
