/*
Package scenarios builds deterministic demo datasets.

PURPOSE:
  Provides pre-built transaction tables for demos and tests. Every scenario
  covers the same stores, suppliers and two weeks of trading; they differ
  in how prices move and how clean the data is.

AVAILABLE SCENARIOS:
  steady-market: Everyone sells at RRP, no promotions
  bidco-promo:   BIDCO oils 25% off in three of five stores on days 7-10
  price-war:     KAPA and PWANI undercut RRP by 15% for the whole period
  dirty-data:    Steady market where every Thika Road row is damaged

HOW SCENARIOS WORK:
  1. Walk days x stores x catalog
  2. Daily units follow a fixed base plus a small rotating offset
  3. The scenario's pricer sets the discount and volume multiplier
  4. The scenario's damage step (if any) corrupts selected rows

ADDING NEW SCENARIOS:
  1. Add an entry to 'all' with ID, name, description, category
  2. Give it a pricer and optional damage function

SEE ALSO:
  - api/scenarios.go: HTTP loader
  - store/sqlite: where loaded scenarios are persisted
*/
package scenarios

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// Start is the first trading day of every scenario.
var Start = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

// Days is the length of every scenario.
const Days = 14

// Stores trading in every scenario.
var Stores = []string{"Bamburi", "Kilimani", "Nyali", "Westlands", "Thika Road"}

type product struct {
	sku, barcode, desc, supplier string
	subDepartment, section       string
	rrp                          float64
	baseUnits                    int
}

var catalog = []product{
	{"1001", "6161100110011", "Elianto Corn Oil 1L", "BIDCO", "Cooking Oils", "Vegetable Oil", 560, 6},
	{"1002", "6161100110028", "Golden Fry Oil 2L", "BIDCO", "Cooking Oils", "Vegetable Oil", 620, 8},
	{"1003", "6161100110035", "Kimbo 1kg", "BIDCO", "Cooking Fats", "Shortening", 380, 5},
	{"2001", "6164000220011", "Kapa Oil 1L", "KAPA", "Cooking Oils", "Vegetable Oil", 540, 7},
	{"2002", "6164000220028", "Kapa Oil 2L", "KAPA", "Cooking Oils", "Vegetable Oil", 600, 6},
	{"3001", "6161108330011", "Fresh Fri 1L", "PWANI", "Cooking Oils", "Vegetable Oil", 550, 9},
	{"3002", "6161108330028", "Tily 1kg", "PWANI", "Cooking Fats", "Shortening", 360, 6},
	{"4001", "6161200440011", "Rina 1kg", "MENENGAI", "Cooking Fats", "Shortening", 370, 4},
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// Scenario describes a demo dataset.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Category    string

	pricer pricer
	damage func(i int, r *retail.Record) bool
}

// pricer returns the discount fraction and volume multiplier for one
// store/SKU/day.
type pricer func(store int, p product, day int) (discount, lift float64)

func atRRP(int, product, int) (float64, float64) { return 0, 1 }

var all = []Scenario{
	{
		ID:          "steady-market",
		Name:        "Steady Market",
		Description: "All suppliers sell at RRP for two weeks, no promotions",
		Category:    "baseline",
		pricer:      atRRP,
	},
	{
		ID:          "bidco-promo",
		Name:        "BIDCO Promotion",
		Description: "BIDCO oils 25% off in Bamburi, Kilimani and Nyali on days 7-10 with doubled volume",
		Category:    "promo",
		pricer: func(store int, p product, day int) (float64, float64) {
			if p.supplier == "BIDCO" && p.subDepartment == "Cooking Oils" && store < 3 && day >= 7 && day <= 10 {
				return 0.25, 2
			}
			return 0, 1
		},
	},
	{
		ID:          "price-war",
		Name:        "Price War",
		Description: "KAPA and PWANI sell 15% under RRP everywhere; BIDCO holds price",
		Category:    "pricing",
		pricer: func(_ int, p product, _ int) (float64, float64) {
			if p.supplier == "KAPA" || p.supplier == "PWANI" {
				return 0.15, 1.2
			}
			return 0, 1
		},
	},
	{
		ID:          "dirty-data",
		Name:        "Dirty Data",
		Description: "Steady market where every Thika Road row has blanks, a return, a missing RRP or no date",
		Category:    "quality",
		pricer:      atRRP,
		damage: func(i int, r *retail.Record) bool {
			if r.StoreName != "Thika Road" {
				return false
			}
			switch i % 4 {
			case 0:
				r.Description = ""
				r.Supplier = ""
			case 1:
				r.Quantity = decimal.NewNullDecimal(r.Quantity.Decimal.Neg())
				r.Description = ""
			case 2:
				r.RRP = decimal.NullDecimal{}
				r.Section = ""
			case 3:
				r.Date = time.Time{}
			}
			return true
		},
	},
}

// List returns every scenario in display order.
func List() []Scenario {
	out := make([]Scenario, len(all))
	copy(out, all)
	return out
}

// Get looks up a scenario by ID.
func Get(id string) (Scenario, error) {
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return Scenario{}, &retail.NotFoundError{Kind: "scenario", Name: id}
}

// =============================================================================
// GENERATION
// =============================================================================

// Records generates the scenario's transactions. The output is identical on
// every call.
func (s Scenario) Records() []retail.Record {
	records := make([]retail.Record, 0, Days*len(Stores)*len(catalog))
	i := 0
	for day := 0; day < Days; day++ {
		for si, store := range Stores {
			for pi, p := range catalog {
				discount, lift := s.pricer(si, p, day)
				units := p.baseUnits + (day+si+pi)%3
				qty := decimal.NewFromFloat(float64(units) * lift).Round(0)
				price := decimal.NewFromFloat(p.rrp * (1 - discount)).Round(2)

				r := retail.Record{
					StoreName:     store,
					ItemCode:      p.sku,
					Barcode:       p.barcode,
					Description:   p.desc,
					Supplier:      p.supplier,
					Category:      "Foods",
					Department:    "Grocery",
					SubDepartment: p.subDepartment,
					Section:       p.section,
					Date:          Start.AddDate(0, 0, day),
					Quantity:      decimal.NewNullDecimal(qty),
					TotalSales:    decimal.NewNullDecimal(qty.Mul(price).Round(2)),
					RRP:           retail.NullDecimal(p.rrp),
					UnitPrice:     decimal.NewNullDecimal(price),
					DiscountPct:   retail.NullDecimal(discount * 100),
				}
				if s.damage != nil && s.damage(i, &r) {
					i++
				}
				records = append(records, r)
			}
		}
	}
	return records
}

// Table wraps the scenario's records in a snapshot.
func (s Scenario) Table() (*retail.Table, error) {
	return retail.NewTable("scenario:"+s.ID, s.Records())
}

// Source serves one scenario as an insight source.
type Source struct {
	ID string
}

// Load builds the scenario table.
func (src Source) Load(ctx context.Context) (*retail.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := Get(src.ID)
	if err != nil {
		return nil, err
	}
	return s.Table()
}
