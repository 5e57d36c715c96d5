package pricing

import "fmt"

// Recommendation cutoffs.
const (
	overallPremium   = 1.15
	overallDiscount  = 0.85
	mixSharePct      = 50.0
	categoryPremium  = 1.2
	categoryDiscount = 0.8
)

// recommend turns a positioning into plain-language pricing advice.
func recommend(p Positioning) []string {
	if p.TotalSKUs == 0 || p.PortfolioIndex == nil {
		return []string{"Insufficient data for competitive comparison."}
	}

	var out []string
	idx := *p.PortfolioIndex
	switch {
	case idx > overallPremium:
		out = append(out, fmt.Sprintf("Overall premium pricing (index: %.2f). Consider selective price reductions on high-volume SKUs.", idx))
	case idx < overallDiscount:
		out = append(out, fmt.Sprintf("Overall discount positioning (index: %.2f). Opportunity to increase prices without losing competitiveness.", idx))
	default:
		out = append(out, fmt.Sprintf("Competitive pricing (index: %.2f). Well-positioned vs market.", idx))
	}

	total := float64(p.TotalSKUs)
	if pct := float64(p.PremiumSKUs) / total * 100; pct > mixSharePct {
		out = append(out, fmt.Sprintf("%.0f%% of SKUs are premium-priced. Review if premium positioning is supported by brand perception.", pct))
	}
	if pct := float64(p.DiscountSKUs) / total * 100; pct > mixSharePct {
		out = append(out, fmt.Sprintf("%.0f%% of SKUs are discount-priced. Potential margin opportunity through selective price increases.", pct))
	}

	// Categories are sorted highest index first.
	if n := len(p.Categories); n > 0 {
		if top := p.Categories[0]; top.Index > categoryPremium {
			out = append(out, fmt.Sprintf("%s is significantly premium (index: %.2f). Consider price testing to optimize volume.", top.Key, top.Index))
		}
		if low := p.Categories[n-1]; low.Index < categoryDiscount {
			out = append(out, fmt.Sprintf("%s is deeply discounted (index: %.2f). Opportunity for price increase.", low.Key, low.Index))
		}
	}
	return out
}
