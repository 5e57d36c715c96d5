package promo

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// DayClassification is one (store, SKU, date) observation.
type DayClassification struct {
	Date        time.Time
	Units       float64
	Sales       float64
	AvgPrice    float64
	DiscountPct float64
	IsPromo     bool
	// Suspicious days exceed the realistic discount ceiling and are left
	// out of the promo/baseline counts.
	Suspicious bool
}

// StoreSKU is the classification of a SKU within one store.
type StoreSKU struct {
	Store        string
	SKU          string
	Supplier     string
	Observations int
	MedianRRP    *float64

	PromoDays     int
	BaselineDays  int
	Status        Status
	PromoUnits    float64
	BaselineUnits float64

	UpliftPct        *float64
	DiscountDepth    *float64
	AvgPromoPrice    *float64
	AvgBaselinePrice *float64

	Days []DayClassification
}

// SKUSummary rolls store classifications up to SKU level.
type SKUSummary struct {
	SKU           string
	Description   string
	Supplier      string
	SubDepartment string
	Section       string
	Observations  int

	StoresCarrying int
	StoresOnPromo  int
	StoresBaseline int
	PromoDays      int
	BaselineDays   int

	Status        Status
	PromoUnits    float64
	BaselineUnits float64
	UpliftPct     *float64
	CoveragePct   *float64
	DiscountDepth *float64

	TopPerformerEligible bool
}

// Exclusions counts what was left out of the computation and why.
type Exclusions struct {
	// UnpricedRecords had null, zero or negative quantity or sales.
	UnpricedRecords int
	// MissingRRPRecords were priced but had no usable RRP.
	MissingRRPRecords int
	// SuspiciousDays are store-days that exceeded the realistic discount
	// ceiling.
	SuspiciousDays int
}

// Analysis is the result of one detection pass.
type Analysis struct {
	Mode       Mode
	Stores     []StoreSKU
	SKUs       []SKUSummary
	Exclusions Exclusions
}

// =============================================================================
// DETECTION
// =============================================================================

// Detect runs the configured mode over the table.
func Detect(table *retail.Table, cfg Config) (Analysis, error) {
	if err := cfg.Validate(); err != nil {
		return Analysis{}, err
	}
	if cfg.Mode == ModeCrossSectional {
		return detectCrossSectional(table, cfg), nil
	}
	return detectLongitudinal(table, cfg), nil
}

func storeSKUKey(r retail.Record) string {
	return retail.CompositeKey(retail.ByStore(r), retail.BySKU(r))
}

// priced splits out records without a positive realized price.
func priced(records []retail.Record, ex *Exclusions) []retail.Record {
	out := make([]retail.Record, 0, len(records))
	for _, r := range records {
		if !r.PricedPositive() {
			ex.UnpricedRecords++
			continue
		}
		out = append(out, r)
	}
	return out
}

// medianRRP returns the median of the positive RRPs in records.
func medianRRP(records []retail.Record) (float64, bool) {
	var rrps []decimal.Decimal
	for _, r := range records {
		if r.RRP.Valid && r.RRP.Decimal.IsPositive() {
			rrps = append(rrps, r.RRP.Decimal)
		}
	}
	m, ok := retail.MedianDecimal(rrps)
	if !ok {
		return 0, false
	}
	return m.InexactFloat64(), true
}

func detectLongitudinal(table *retail.Table, cfg Config) Analysis {
	a := Analysis{Mode: ModeLongitudinal}
	valid := priced(table.Records, &a.Exclusions)

	pairs := retail.PartitionBy(valid, storeSKUKey)
	for _, g := range pairs.Groups {
		a.Stores = append(a.Stores, classifyStoreSKU(g.Records, cfg, &a.Exclusions))
	}

	a.SKUs = rollUp(table.Records, valid, a.Stores, cfg)
	return a
}

// classifyStoreSKU runs the day-threshold model over one store-SKU pair.
func classifyStoreSKU(records []retail.Record, cfg Config, ex *Exclusions) StoreSKU {
	first := records[0]
	s := StoreSKU{
		Store:        retail.ByStore(first),
		SKU:          retail.BySKU(first),
		Supplier:     first.Supplier,
		Observations: len(records),
		Status:       StatusInsufficient,
	}

	rrp, ok := medianRRP(records)
	if !ok {
		ex.MissingRRPRecords += len(records)
		return s
	}
	s.MedianRRP = &rrp
	s.Days = classifyDays(records, rrp, cfg)

	var promoDiscounts, promoPrices, basePrices []float64
	for _, d := range s.Days {
		switch {
		case d.Suspicious:
			ex.SuspiciousDays++
		case d.IsPromo:
			s.PromoDays++
			s.PromoUnits += d.Units
			promoDiscounts = append(promoDiscounts, d.DiscountPct)
			promoPrices = append(promoPrices, d.AvgPrice)
		default:
			s.BaselineDays++
			s.BaselineUnits += d.Units
			basePrices = append(basePrices, d.AvgPrice)
		}
	}

	s.Status = statusFor(s.PromoDays, cfg.MinPromoDays, s.BaselineDays, cfg.MinBaselineDays)
	s.AvgBaselinePrice = retail.MeanPtr(basePrices)
	if s.Status == StatusOnPromo {
		s.UpliftPct = upliftPct(s.PromoUnits, s.PromoDays, s.BaselineUnits, s.BaselineDays)
		s.DiscountDepth = retail.MeanPtr(promoDiscounts)
		s.AvgPromoPrice = retail.MeanPtr(promoPrices)
	}
	return s
}

// classifyDays aggregates records per calendar day, in date order.
func classifyDays(records []retail.Record, medianRRP float64, cfg Config) []DayClassification {
	type acc struct{ units, sales decimal.Decimal }
	byDay := make(map[time.Time]*acc)
	var order []time.Time
	for _, r := range records {
		d := r.Day()
		a, ok := byDay[d]
		if !ok {
			a = &acc{}
			byDay[d] = a
			order = append(order, d)
		}
		a.units = a.units.Add(r.Quantity.Decimal)
		a.sales = a.sales.Add(r.TotalSales.Decimal)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	days := make([]DayClassification, 0, len(order))
	for _, d := range order {
		a := byDay[d]
		price := a.sales.Div(a.units).InexactFloat64()
		discount := (medianRRP - price) / medianRRP * 100
		day := DayClassification{
			Date:        d,
			Units:       a.units.InexactFloat64(),
			Sales:       a.sales.InexactFloat64(),
			AvgPrice:    price,
			DiscountPct: discount,
		}
		if discount > cfg.MaxRealisticDiscountPct {
			day.Suspicious = true
		} else {
			day.IsPromo = discount >= cfg.DiscountThresholdPct
		}
		days = append(days, day)
	}
	return days
}

// statusFor requires both thresholds for on_promo: a promo cannot be
// confirmed without a comparison baseline.
func statusFor(promo, minPromo, baseline, minBaseline int) Status {
	switch {
	case promo >= minPromo && baseline >= minBaseline:
		return StatusOnPromo
	case baseline >= minBaseline:
		return StatusBaseline
	default:
		return StatusInsufficient
	}
}

// upliftPct compares per-period averages so uneven period lengths do not
// bias the result.
func upliftPct(promoUnits float64, promoPeriods int, baseUnits float64, basePeriods int) *float64 {
	if promoPeriods == 0 || basePeriods == 0 {
		return nil
	}
	promoAvg := promoUnits / float64(promoPeriods)
	baseAvg := baseUnits / float64(basePeriods)
	if baseAvg == 0 {
		return nil
	}
	u := (promoAvg - baseAvg) / baseAvg * 100
	return &u
}

// =============================================================================
// SKU ROLL-UP
// =============================================================================

// rollUp builds one summary per SKU present in the table. all provides SKU
// identity (a SKU with no priced rows still appears, as insufficient);
// valid provides the observation count.
func rollUp(all, valid []retail.Record, stores []StoreSKU, cfg Config) []SKUSummary {
	identity := retail.PartitionBy(all, retail.BySKU)
	observed := retail.PartitionBy(valid, retail.BySKU)

	bySKU := make(map[string][]StoreSKU)
	for _, s := range stores {
		bySKU[s.SKU] = append(bySKU[s.SKU], s)
	}

	out := make([]SKUSummary, 0, identity.Len())
	for _, g := range identity.Groups {
		first := g.Records[0]
		obs, _ := observed.Get(g.Key)
		sum := SKUSummary{
			SKU:            g.Key,
			Description:    first.Description,
			Supplier:       first.Supplier,
			SubDepartment:  first.SubDepartment,
			Section:        first.Section,
			Observations:   len(obs),
			StoresCarrying: len(bySKU[g.Key]),
			Status:         StatusInsufficient,
		}
		if sum.Observations < cfg.MinTransactions || sum.StoresCarrying == 0 {
			out = append(out, sum)
			continue
		}

		var uplifts, discounts []float64
		for _, s := range bySKU[g.Key] {
			sum.PromoDays += s.PromoDays
			sum.BaselineDays += s.BaselineDays
			switch s.Status {
			case StatusOnPromo:
				sum.StoresOnPromo++
				sum.PromoUnits += s.PromoUnits
				sum.BaselineUnits += s.BaselineUnits
				if s.UpliftPct != nil {
					uplifts = append(uplifts, *s.UpliftPct)
				}
				for _, d := range s.Days {
					if d.IsPromo {
						discounts = append(discounts, d.DiscountPct)
					}
				}
			case StatusBaseline:
				sum.StoresBaseline++
			}
		}

		switch {
		case sum.StoresOnPromo > 0:
			sum.Status = StatusOnPromo
			sum.UpliftPct = retail.MeanPtr(uplifts)
			sum.DiscountDepth = retail.MeanPtr(discounts)
		case sum.StoresBaseline > 0:
			sum.Status = StatusBaseline
		}
		if sum.Status != StatusInsufficient {
			cov := float64(sum.StoresOnPromo) / float64(sum.StoresCarrying) * 100
			sum.CoveragePct = &cov
		}
		sum.TopPerformerEligible = sum.Status == StatusOnPromo &&
			sum.UpliftPct != nil &&
			sum.PromoUnits >= cfg.MinPromoUnitsForRanking
		out = append(out, sum)
	}
	return out
}
