package promo

import (
	"fmt"
	"sort"

	"github.com/warp/retail-insights/retail"
)

// TopPerformers returns up to cfg.TopN on-promo SKUs that moved at least
// MinPromoUnitsForRanking promo units, ordered by uplift descending, then
// promo units descending, then item code ascending.
func TopPerformers(skus []SKUSummary, cfg Config) []SKUSummary {
	var eligible []SKUSummary
	for _, s := range skus {
		if s.Status == StatusOnPromo && s.UpliftPct != nil && s.PromoUnits >= cfg.MinPromoUnitsForRanking {
			eligible = append(eligible, s)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if *a.UpliftPct != *b.UpliftPct {
			return *a.UpliftPct > *b.UpliftPct
		}
		if a.PromoUnits != b.PromoUnits {
			return a.PromoUnits > b.PromoUnits
		}
		return a.SKU < b.SKU
	})
	if len(eligible) > cfg.TopN {
		eligible = eligible[:cfg.TopN]
	}
	return eligible
}

// Summary is a supplier's promo portfolio and performance.
type Summary struct {
	Supplier      string
	SubDepartment string

	TotalSKUs   int
	SKUsOnPromo int
	PromoSKUPct float64

	AvgUpliftPct    *float64
	MedianUpliftPct *float64
	AvgDiscountPct  *float64
	AvgCoveragePct  *float64

	TopPerformers []SKUSummary
	SKUs          []SKUSummary
	Exclusions    Exclusions
	Insights      []string
}

// SupplierSummary restricts an analysis to one supplier (case-insensitive
// exact match) and aggregates it.
func SupplierSummary(a Analysis, supplier string, cfg Config) (Summary, error) {
	var skus []SKUSummary
	for _, s := range a.SKUs {
		if retail.SameName(s.Supplier, supplier) {
			skus = append(skus, s)
		}
	}
	if len(skus) == 0 {
		return Summary{}, &retail.NotFoundError{Kind: "supplier", Name: supplier}
	}

	sum := Summary{
		Supplier:      skus[0].Supplier,
		SubDepartment: modalSubDepartment(skus),
		TotalSKUs:     len(skus),
		SKUs:          skus,
		Exclusions:    a.Exclusions,
	}

	var uplifts, discounts, coverage []float64
	for _, s := range skus {
		if s.Status == StatusOnPromo {
			sum.SKUsOnPromo++
			if s.UpliftPct != nil {
				uplifts = append(uplifts, *s.UpliftPct)
			}
		}
		if s.DiscountDepth != nil {
			discounts = append(discounts, *s.DiscountDepth)
		}
		if s.CoveragePct != nil {
			coverage = append(coverage, *s.CoveragePct)
		}
	}
	sum.PromoSKUPct = float64(sum.SKUsOnPromo) / float64(sum.TotalSKUs) * 100
	sum.AvgUpliftPct = retail.MeanPtr(uplifts)
	sum.MedianUpliftPct = retail.MedianPtr(uplifts)
	sum.AvgDiscountPct = retail.MeanPtr(discounts)
	sum.AvgCoveragePct = retail.MeanPtr(coverage)
	sum.TopPerformers = TopPerformers(skus, cfg)
	sum.Insights = insights(sum)
	return sum, nil
}

func modalSubDepartment(skus []SKUSummary) string {
	counts := make(map[string]int)
	best := ""
	for _, s := range skus {
		counts[s.SubDepartment]++
		if n := counts[s.SubDepartment]; n > counts[best] || (n == counts[best] && s.SubDepartment < best) {
			best = s.SubDepartment
		}
	}
	return best
}

// insights renders the headline observations for a supplier summary.
func insights(s Summary) []string {
	var out []string

	switch {
	case s.PromoSKUPct < 30:
		out = append(out, fmt.Sprintf("Only %.1f%% of SKUs are on promotion. Consider expanding promo coverage.", s.PromoSKUPct))
	case s.PromoSKUPct > 70:
		out = append(out, fmt.Sprintf("High promo activity (%.1f%% of SKUs). Evaluate ROI of promotional spend.", s.PromoSKUPct))
	}

	if u := s.AvgUpliftPct; u != nil {
		switch {
		case *u > 50:
			out = append(out, fmt.Sprintf("Strong promo performance with %.1f%% average uplift. Promos are driving significant incremental volume.", *u))
		case *u > 20:
			out = append(out, fmt.Sprintf("Moderate promo uplift (%.1f%%). Consider testing deeper discounts or better placement.", *u))
		case *u > 0:
			out = append(out, fmt.Sprintf("Low promo uplift (%.1f%%). Promotions may not be cost-effective at current discount levels.", *u))
		default:
			out = append(out, fmt.Sprintf("Negative uplift (%.1f%%). Promos are cannibalizing baseline sales.", *u))
		}
	}

	if d := s.AvgDiscountPct; d != nil {
		switch {
		case *d > 20:
			out = append(out, fmt.Sprintf("Deep discounts (%.1f%% average). Ensure margin remains positive.", *d))
		case *d < 10:
			out = append(out, fmt.Sprintf("Shallow discounts (%.1f%% average). May not be noticeable to consumers.", *d))
		}
	}
	return out
}
