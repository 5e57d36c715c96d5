package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/retail"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

// Result is the index of one target SKU in one store.
type Result struct {
	SKU           string
	Description   string
	Supplier      string
	Store         string
	SubDepartment string
	Section       string

	TargetAvgPrice   float64
	TransactionCount int

	CompetitorAvgPrice     *float64
	CompetitorCount        int
	CompetitorTransactions int

	Index    *float64
	Position Position
}

// SKUIndex aggregates a target SKU across stores.
type SKUIndex struct {
	SKU           string
	Description   string
	SubDepartment string
	Section       string

	Stores        int
	IndexedStores int
	Index         *float64
	Position      Position

	AvgPrice      *float64
	AvgRRP        *float64
	PriceVsRRPPct *float64
}

// Aggregate is a mean index over a category or a store.
type Aggregate struct {
	Key      string
	Index    float64
	Position Position
	Members  int
}

// Exclusions counts what the calculation left out and why.
type Exclusions struct {
	// UnpricedRecords had null, zero or negative quantity or sales.
	UnpricedRecords int
	// UnclassifiedRecords were priced but had no sub-department or section.
	UnclassifiedRecords int
	// ThinPairs are (SKU, store) pairs, target or competitor, with fewer
	// than MinTransactionsForPrice priced rows. ThinTargetPairs is the
	// target supplier's share of them.
	ThinPairs       int
	ThinTargetPairs int
	// NoBenchmarkPairs are target (SKU, store) pairs whose set had too few
	// competitor SKUs in that store.
	NoBenchmarkPairs int
}

// Positioning is the full price picture for one supplier.
type Positioning struct {
	Supplier string
	Sets     []CompetitiveSet
	Results  []Result
	SKUs     []SKUIndex

	Categories []Aggregate
	Stores     []Aggregate

	PortfolioIndex    *float64
	PortfolioPosition Position
	AvgSKUIndex       *float64
	MedianSKUIndex    *float64

	// Counts over SKUs. TotalSKUs excludes insufficient_data.
	TotalSKUs        int
	PremiumSKUs      int
	AtMarketSKUs     int
	DiscountSKUs     int
	InsufficientSKUs int

	Exclusions Exclusions

	Recommendations []string
}

// =============================================================================
// CALCULATION
// =============================================================================

// skuPrice is the mean realized price of one SKU in one set-store.
type skuPrice struct {
	first retail.Record
	avg   float64
	count int
}

// Calculate indexes every target SKU against its competitive set in each
// store. The target is matched case-insensitively; a supplier absent from
// the table is NotFound.
func Calculate(table *retail.Table, target string, cfg Config) (Positioning, error) {
	if err := cfg.Validate(); err != nil {
		return Positioning{}, err
	}

	var valid []retail.Record
	var ex Exclusions
	name := ""
	for _, r := range table.Records {
		if name == "" && retail.SameName(r.Supplier, target) {
			name = retail.BySupplier(r)
		}
		switch {
		case !r.PricedPositive():
			ex.UnpricedRecords++
		case BySet(r) == "":
			ex.UnclassifiedRecords++
			valid = append(valid, r)
		default:
			valid = append(valid, r)
		}
	}
	if name == "" {
		return Positioning{}, &retail.NotFoundError{Kind: "supplier", Name: target}
	}

	pos := Positioning{Supplier: name, Sets: competitiveSets(valid, target)}
	setStores := retail.PartitionBy(valid, func(r retail.Record) string {
		set := BySet(r)
		if set == "" {
			return ""
		}
		return retail.CompositeKey(retail.ByStore(r), set)
	})
	for _, g := range setStores.Groups {
		pos.Results = append(pos.Results, indexSetStore(g.Records, target, cfg, &ex)...)
	}
	pos.Exclusions = ex

	pos.SKUs = skuIndices(pos.Results, valid, target, cfg)
	pos.Categories = aggregateSKUs(pos.SKUs, cfg)
	pos.Stores = aggregateStores(pos.Results, cfg)

	var storeIdx, skuIdx []float64
	for _, s := range pos.Stores {
		storeIdx = append(storeIdx, s.Index)
	}
	pos.PortfolioIndex = retail.MeanPtr(storeIdx)
	pos.PortfolioPosition = cfg.PositionFor(pos.PortfolioIndex)

	for _, s := range pos.SKUs {
		switch s.Position {
		case PositionPremium:
			pos.PremiumSKUs++
		case PositionAtMarket:
			pos.AtMarketSKUs++
		case PositionDiscount:
			pos.DiscountSKUs++
		default:
			pos.InsufficientSKUs++
			continue
		}
		skuIdx = append(skuIdx, *s.Index)
	}
	pos.TotalSKUs = len(skuIdx)
	pos.AvgSKUIndex = retail.MeanPtr(skuIdx)
	pos.MedianSKUIndex = retail.MedianPtr(skuIdx)
	pos.Recommendations = recommend(pos)
	return pos, nil
}

// indexSetStore prices every SKU of one competitive set in one store and
// indexes the target SKUs against the competitor mean. Thin pairs and
// unbenchmarked targets are counted in ex.
func indexSetStore(records []retail.Record, target string, cfg Config, ex *Exclusions) []Result {
	bySKU := retail.PartitionBy(records, retail.BySKU)

	var targets []skuPrice
	var competitorPrices []float64
	competitorTx := 0
	for _, g := range bySKU.Groups {
		if len(g.Records) < cfg.MinTransactionsForPrice {
			ex.ThinPairs++
			if retail.SameName(g.Records[0].Supplier, target) {
				ex.ThinTargetPairs++
			}
			continue
		}
		prices := make([]float64, 0, len(g.Records))
		for _, r := range g.Records {
			p, _ := r.RealizedPrice()
			prices = append(prices, p.InexactFloat64())
		}
		avg, _ := retail.Mean(prices)
		sp := skuPrice{first: g.Records[0], avg: avg, count: len(g.Records)}
		if retail.SameName(sp.first.Supplier, target) {
			targets = append(targets, sp)
		} else {
			competitorPrices = append(competitorPrices, avg)
			competitorTx += sp.count
		}
	}

	var benchmark *float64
	if len(competitorPrices) >= cfg.MinCompetitorsForIndex {
		benchmark = retail.MeanPtr(competitorPrices)
	}

	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		r := Result{
			SKU:                    retail.BySKU(t.first),
			Description:            t.first.Description,
			Supplier:               t.first.Supplier,
			Store:                  retail.ByStore(t.first),
			SubDepartment:          t.first.SubDepartment,
			Section:                t.first.Section,
			TargetAvgPrice:         t.avg,
			TransactionCount:       t.count,
			CompetitorAvgPrice:     benchmark,
			CompetitorCount:        len(competitorPrices),
			CompetitorTransactions: competitorTx,
		}
		if benchmark != nil && *benchmark > 0 {
			idx := t.avg / *benchmark
			r.Index = &idx
		} else {
			ex.NoBenchmarkPairs++
		}
		r.Position = cfg.PositionFor(r.Index)
		results = append(results, r)
	}
	return results
}

// skuIndices rolls results up per SKU and adds the price-vs-RRP figure,
// computed over all of the SKU's priced records.
func skuIndices(results []Result, valid []retail.Record, target string, cfg Config) []SKUIndex {
	records := retail.PartitionBy(retail.Filter(valid, retail.OfSupplier(target)), retail.BySKU)

	var order []string
	bySKU := make(map[string][]Result)
	for _, r := range results {
		if _, ok := bySKU[r.SKU]; !ok {
			order = append(order, r.SKU)
		}
		bySKU[r.SKU] = append(bySKU[r.SKU], r)
	}

	out := make([]SKUIndex, 0, len(order))
	for _, sku := range order {
		rs := bySKU[sku]
		s := SKUIndex{
			SKU:           sku,
			Description:   rs[0].Description,
			SubDepartment: rs[0].SubDepartment,
			Section:       rs[0].Section,
			Stores:        len(rs),
		}
		var idx []float64
		for _, r := range rs {
			if r.Index != nil {
				idx = append(idx, *r.Index)
			}
		}
		s.IndexedStores = len(idx)
		s.Index = retail.MeanPtr(idx)
		s.Position = cfg.PositionFor(s.Index)

		recs, _ := records.Get(sku)
		s.AvgPrice, s.AvgRRP, s.PriceVsRRPPct = priceVsRRP(recs)
		out = append(out, s)
	}
	return out
}

func priceVsRRP(records []retail.Record) (avgPrice, avgRRP, pct *float64) {
	var prices []float64
	var rrps []decimal.Decimal
	for _, r := range records {
		if p, ok := r.RealizedPrice(); ok {
			prices = append(prices, p.InexactFloat64())
		}
		if r.RRP.Valid && r.RRP.Decimal.IsPositive() {
			rrps = append(rrps, r.RRP.Decimal)
		}
	}
	avgPrice = retail.MeanPtr(prices)
	if len(rrps) > 0 {
		v := decimal.Avg(rrps[0], rrps[1:]...).InexactFloat64()
		avgRRP = &v
	}
	if avgPrice != nil && avgRRP != nil {
		v := (*avgPrice - *avgRRP) / *avgRRP * 100
		pct = &v
	}
	return avgPrice, avgRRP, pct
}

// aggregateSKUs averages defined SKU indices per sub-department.
func aggregateSKUs(skus []SKUIndex, cfg Config) []Aggregate {
	var order []string
	groups := make(map[string][]float64)
	for _, s := range skus {
		if s.Index == nil {
			continue
		}
		if _, ok := groups[s.SubDepartment]; !ok {
			order = append(order, s.SubDepartment)
		}
		groups[s.SubDepartment] = append(groups[s.SubDepartment], *s.Index)
	}
	return aggregates(order, groups, cfg)
}

// aggregateStores averages defined (SKU, store) indices per store.
func aggregateStores(results []Result, cfg Config) []Aggregate {
	var order []string
	groups := make(map[string][]float64)
	for _, r := range results {
		if r.Index == nil {
			continue
		}
		if _, ok := groups[r.Store]; !ok {
			order = append(order, r.Store)
		}
		groups[r.Store] = append(groups[r.Store], *r.Index)
	}
	return aggregates(order, groups, cfg)
}

// aggregates returns one mean per key, highest index first with ties in
// first-appearance order.
func aggregates(order []string, groups map[string][]float64, cfg Config) []Aggregate {
	out := make([]Aggregate, 0, len(order))
	for _, k := range order {
		m, _ := retail.Mean(groups[k])
		out = append(out, Aggregate{Key: k, Index: m, Position: cfg.PositionFor(&m), Members: len(groups[k])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index > out[j].Index })
	return out
}
