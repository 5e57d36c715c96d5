package promo

import (
	"sort"
	"time"

	"github.com/warp/retail-insights/retail"
)

// detectCrossSectional compares stores against each other on the same day.
// A (store, SKU, day) is a promo observation when that day's realized price
// sits below the SKU median RRP by at least the discount threshold. Only
// days with enough promo stores and enough baseline stores are compared;
// uplift is the promo units per store-day against the baseline units per
// store-day over those days.
func detectCrossSectional(table *retail.Table, cfg Config) Analysis {
	a := Analysis{Mode: ModeCrossSectional}
	valid := priced(table.Records, &a.Exclusions)

	identity := retail.PartitionBy(table.Records, retail.BySKU)
	observed := retail.PartitionBy(valid, retail.BySKU)

	a.SKUs = make([]SKUSummary, 0, identity.Len())
	for _, g := range identity.Groups {
		first := g.Records[0]
		obs, _ := observed.Get(g.Key)
		sum := SKUSummary{
			SKU:           g.Key,
			Description:   first.Description,
			Supplier:      first.Supplier,
			SubDepartment: first.SubDepartment,
			Section:       first.Section,
			Observations:  len(obs),
			Status:        StatusInsufficient,
		}
		stores := classifyStores(obs, cfg, &a.Exclusions)
		a.Stores = append(a.Stores, stores...)
		sum.StoresCarrying = len(stores)

		if sum.Observations < cfg.MinTransactions || len(stores) == 0 {
			a.SKUs = append(a.SKUs, sum)
			continue
		}

		promoStoreDays := 0
		for _, s := range stores {
			sum.PromoDays += s.PromoDays
			sum.BaselineDays += s.BaselineDays
			promoStoreDays += s.PromoDays
			switch s.Status {
			case StatusOnPromo:
				sum.StoresOnPromo++
			case StatusBaseline:
				sum.StoresBaseline++
			}
		}

		cmp := compareDays(stores, cfg)
		switch {
		case cmp.days > 0:
			sum.Status = StatusOnPromo
			sum.PromoUnits = cmp.promoUnits
			sum.BaselineUnits = cmp.baseUnits
			sum.UpliftPct = upliftPct(cmp.promoUnits, cmp.promoObs, cmp.baseUnits, cmp.baseObs)
			sum.DiscountDepth = retail.MeanPtr(cmp.discounts)
		case promoStoreDays == 0 && sum.StoresBaseline >= cfg.MinBaselineStores:
			sum.Status = StatusBaseline
		}
		if sum.Status != StatusInsufficient {
			cov := float64(sum.StoresOnPromo) / float64(sum.StoresCarrying) * 100
			sum.CoveragePct = &cov
		}
		sum.TopPerformerEligible = sum.Status == StatusOnPromo &&
			sum.UpliftPct != nil &&
			sum.PromoUnits >= cfg.MinPromoUnitsForRanking
		a.SKUs = append(a.SKUs, sum)
	}
	return a
}

// classifyStores splits one SKU's priced records by store and classifies
// each store-day against the SKU median RRP. A store is on_promo when it
// had any promo day, baseline when it only had baseline days. Suspicious
// days are counted in the exclusions and left out.
func classifyStores(records []retail.Record, cfg Config, ex *Exclusions) []StoreSKU {
	if len(records) == 0 {
		return nil
	}
	rrp, ok := medianRRP(records)
	byStore := retail.PartitionBy(records, retail.ByStore)
	out := make([]StoreSKU, 0, byStore.Len())
	for _, g := range byStore.Groups {
		s := StoreSKU{
			Store:        g.Key,
			SKU:          retail.BySKU(g.Records[0]),
			Supplier:     g.Records[0].Supplier,
			Observations: len(g.Records),
			Status:       StatusInsufficient,
		}
		if !ok {
			ex.MissingRRPRecords += len(g.Records)
			out = append(out, s)
			continue
		}
		s.MedianRRP = &rrp
		s.Days = classifyDays(g.Records, rrp, cfg)

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

		switch {
		case s.PromoDays > 0:
			s.Status = StatusOnPromo
			s.DiscountDepth = retail.MeanPtr(promoDiscounts)
			s.AvgPromoPrice = retail.MeanPtr(promoPrices)
		case s.BaselineDays > 0:
			s.Status = StatusBaseline
		}
		s.AvgBaselinePrice = retail.MeanPtr(basePrices)
		out = append(out, s)
	}
	return out
}

// dayComparison accumulates the store-days that took part in a same-day
// comparison.
type dayComparison struct {
	days       int
	promoObs   int
	baseObs    int
	promoUnits float64
	baseUnits  float64
	discounts  []float64
}

// compareDays groups store-days by date and keeps the dates with at least
// MinPromoStores promo stores and MinBaselineStores baseline stores.
func compareDays(stores []StoreSKU, cfg Config) dayComparison {
	type day struct{ promo, base []DayClassification }
	byDate := make(map[time.Time]*day)
	var dates []time.Time
	for _, s := range stores {
		for _, d := range s.Days {
			if d.Suspicious {
				continue
			}
			e, ok := byDate[d.Date]
			if !ok {
				e = &day{}
				byDate[d.Date] = e
				dates = append(dates, d.Date)
			}
			if d.IsPromo {
				e.promo = append(e.promo, d)
			} else {
				e.base = append(e.base, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var c dayComparison
	for _, date := range dates {
		e := byDate[date]
		if len(e.promo) < cfg.MinPromoStores || len(e.base) < cfg.MinBaselineStores {
			continue
		}
		c.days++
		for _, d := range e.promo {
			c.promoObs++
			c.promoUnits += d.Units
			c.discounts = append(c.discounts, d.DiscountPct)
		}
		for _, d := range e.base {
			c.baseObs++
			c.baseUnits += d.Units
		}
	}
	return c
}
