/*
dto.go - Data Transfer Objects for the HTTP API

PURPOSE:
  Defines the JSON shapes of every response and converts engine results
  into them. Engine types stay free of JSON tags; this is the only place
  that knows the wire names.

CONVENTIONS:
  - snake_case field names
  - money and quantities are JSON numbers (decimal -> float64 at the edge)
  - undefined metrics are null, never 0
  - dates are YYYY-MM-DD

ENVELOPE:
  {"success": true, "data": ..., "metadata": {...}, "timestamp": "..."}
  {"success": false, "error": {"error_kind": "not_found", "detail": "..."}, "timestamp": "..."}

SEE ALSO:
  - handlers.go: Uses these DTOs
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-insights/kpi"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/quality"
	"github.com/warp/retail-insights/scenarios"
)

// =============================================================================
// ENVELOPE
// =============================================================================

// Response wraps every successful payload.
type Response struct {
	Success   bool           `json:"success"`
	Data      any            `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// ErrorBody is the structured error pair.
type ErrorBody struct {
	ErrorKind string `json:"error_kind"`
	Detail    string `json:"detail"`
}

// ErrorResponse is returned for every failure.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

// HealthDTO is the liveness payload.
type HealthDTO struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Records    int    `json:"records"`
	Timestamp  string `json:"timestamp"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// QUALITY
// =============================================================================

// IssueDTO is one failing check.
type IssueDTO struct {
	Type        string  `json:"type"`
	Pillar      string  `json:"pillar"`
	Severity    string  `json:"severity"`
	Field       string  `json:"field,omitempty"`
	Description string  `json:"description"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
}

// ScoreDTO is one store or supplier quality score.
type ScoreDTO struct {
	Name              string     `json:"name"`
	Kind              string     `json:"kind"`
	OverallScore      *float64   `json:"overall_score"`
	Grade             *string    `json:"grade"`
	IsTrusted         *bool      `json:"is_trusted"`
	CompletenessScore *float64   `json:"completeness_score"`
	ValidityScore     *float64   `json:"validity_score"`
	ConsistencyScore  *float64   `json:"consistency_score"`
	TotalRecords      int        `json:"total_records"`
	Issues            []IssueDTO `json:"issues,omitempty"`
}

// TrustSummaryDTO counts trusted and untrusted groups.
type TrustSummaryDTO struct {
	Trusted   int `json:"trusted"`
	Untrusted int `json:"untrusted"`
}

// QualityReportDTO is the dataset-wide report.
type QualityReportDTO struct {
	ReportDate      string          `json:"report_date"`
	TotalRecords    int             `json:"total_records"`
	TotalStores     int             `json:"total_stores"`
	TotalSuppliers  int             `json:"total_suppliers"`
	OverallMetrics  ScoreDTO        `json:"overall_metrics"`
	StoreSummary    TrustSummaryDTO `json:"store_summary"`
	SupplierSummary TrustSummaryDTO `json:"supplier_summary"`
	CriticalIssues  []IssueDTO      `json:"critical_issues"`
}

// StoreScoresDTO is the filtered store list.
type StoreScoresDTO struct {
	Stores []ScoreDTO `json:"stores"`
	Count  int        `json:"count"`
}

func toIssueDTOs(issues []quality.Issue) []IssueDTO {
	out := make([]IssueDTO, len(issues))
	for i, is := range issues {
		out[i] = IssueDTO{
			Type:        is.Rule,
			Pillar:      string(is.Pillar),
			Severity:    string(is.Severity),
			Field:       is.Field,
			Description: is.Description,
			Count:       is.Count,
			Percentage:  is.Percentage,
		}
	}
	return out
}

func toScoreDTO(s quality.Score, withIssues bool) ScoreDTO {
	dto := ScoreDTO{
		Name:              s.GroupKey,
		Kind:              string(s.Kind),
		OverallScore:      s.Overall,
		IsTrusted:         s.Trusted,
		CompletenessScore: s.Completeness,
		ValidityScore:     s.Validity,
		ConsistencyScore:  s.Consistency,
		TotalRecords:      s.RecordCount,
	}
	if s.Grade != nil {
		g := string(*s.Grade)
		dto.Grade = &g
	}
	if withIssues {
		dto.Issues = toIssueDTOs(s.Issues)
	}
	return dto
}

func toScoreDTOs(scores []quality.Score) []ScoreDTO {
	out := make([]ScoreDTO, len(scores))
	for i, s := range scores {
		out[i] = toScoreDTO(s, false)
	}
	return out
}

func toQualityReportDTO(r quality.Report, now time.Time) QualityReportDTO {
	return QualityReportDTO{
		ReportDate:      now.Format("2006-01-02"),
		TotalRecords:    r.TotalRecords,
		TotalStores:     r.TotalStores,
		TotalSuppliers:  r.TotalSuppliers,
		OverallMetrics:  toScoreDTO(r.Dataset, false),
		StoreSummary:    TrustSummaryDTO{Trusted: r.TrustedStores, Untrusted: r.UntrustedStores},
		SupplierSummary: TrustSummaryDTO{Trusted: r.TrustedSuppliers, Untrusted: r.UntrustedSuppliers},
		CriticalIssues:  toIssueDTOs(r.CriticalIssues),
	}
}

// =============================================================================
// PROMO
// =============================================================================

// PromoSKUDTO is one SKU's promo classification.
type PromoSKUDTO struct {
	SKU            string   `json:"sku"`
	Description    string   `json:"description"`
	SubDepartment  string   `json:"sub_department"`
	Status         string   `json:"status"`
	StoresCarrying int      `json:"stores_carrying"`
	StoresOnPromo  int      `json:"stores_on_promo"`
	PromoDays      int      `json:"promo_days"`
	BaselineDays   int      `json:"baseline_days"`
	PromoUnits     float64  `json:"promo_units"`
	BaselineUnits  float64  `json:"baseline_units"`
	UpliftPct      *float64 `json:"uplift_pct"`
	CoveragePct    *float64 `json:"coverage_pct"`
	DiscountDepth  *float64 `json:"discount_depth_pct"`
}

// PromoPortfolioDTO summarizes promo reach.
type PromoPortfolioDTO struct {
	TotalSKUs      int      `json:"total_skus"`
	SKUsOnPromo    int      `json:"skus_on_promo"`
	PromoSKUPct    float64  `json:"promo_sku_pct"`
	AvgCoveragePct *float64 `json:"avg_coverage_pct"`
}

// PromoPerformanceDTO summarizes promo effect.
type PromoPerformanceDTO struct {
	AvgUpliftPct    *float64 `json:"avg_uplift_pct"`
	MedianUpliftPct *float64 `json:"median_uplift_pct"`
	AvgDiscountPct  *float64 `json:"avg_discount_pct"`
}

// ExclusionsDTO counts what the detector left out.
type ExclusionsDTO struct {
	UnpricedRecords   int `json:"unpriced_records"`
	MissingRRPRecords int `json:"missing_rrp_records"`
	SuspiciousDays    int `json:"suspicious_days"`
}

// PromoAnalysisDTO is a supplier's promo picture.
type PromoAnalysisDTO struct {
	Supplier      string              `json:"supplier"`
	SubDepartment string              `json:"sub_department"`
	Mode          string              `json:"mode"`
	Portfolio     PromoPortfolioDTO   `json:"portfolio"`
	Performance   PromoPerformanceDTO `json:"performance"`
	TopPerformers []PromoSKUDTO       `json:"top_performers"`
	SKUs          []PromoSKUDTO       `json:"skus"`
	Exclusions    ExclusionsDTO       `json:"exclusions"`
	Insights      []string            `json:"insights"`
}

func toPromoSKUDTOs(skus []promo.SKUSummary) []PromoSKUDTO {
	out := make([]PromoSKUDTO, len(skus))
	for i, s := range skus {
		out[i] = PromoSKUDTO{
			SKU:            s.SKU,
			Description:    s.Description,
			SubDepartment:  s.SubDepartment,
			Status:         string(s.Status),
			StoresCarrying: s.StoresCarrying,
			StoresOnPromo:  s.StoresOnPromo,
			PromoDays:      s.PromoDays,
			BaselineDays:   s.BaselineDays,
			PromoUnits:     s.PromoUnits,
			BaselineUnits:  s.BaselineUnits,
			UpliftPct:      s.UpliftPct,
			CoveragePct:    s.CoveragePct,
			DiscountDepth:  s.DiscountDepth,
		}
	}
	return out
}

func toPromoAnalysisDTO(s promo.Summary, mode promo.Mode) PromoAnalysisDTO {
	insights := s.Insights
	if insights == nil {
		insights = []string{}
	}
	return PromoAnalysisDTO{
		Supplier:      s.Supplier,
		SubDepartment: s.SubDepartment,
		Mode:          string(mode),
		Portfolio: PromoPortfolioDTO{
			TotalSKUs:      s.TotalSKUs,
			SKUsOnPromo:    s.SKUsOnPromo,
			PromoSKUPct:    s.PromoSKUPct,
			AvgCoveragePct: s.AvgCoveragePct,
		},
		Performance: PromoPerformanceDTO{
			AvgUpliftPct:    s.AvgUpliftPct,
			MedianUpliftPct: s.MedianUpliftPct,
			AvgDiscountPct:  s.AvgDiscountPct,
		},
		TopPerformers: toPromoSKUDTOs(s.TopPerformers),
		SKUs:          toPromoSKUDTOs(s.SKUs),
		Exclusions: ExclusionsDTO{
			UnpricedRecords:   s.Exclusions.UnpricedRecords,
			MissingRRPRecords: s.Exclusions.MissingRRPRecords,
			SuspiciousDays:    s.Exclusions.SuspiciousDays,
		},
		Insights: insights,
	}
}

// =============================================================================
// PRICING
// =============================================================================

// PriceIndexDTO is one SKU's index across stores.
type PriceIndexDTO struct {
	SKU           string   `json:"sku"`
	Description   string   `json:"description"`
	SubDepartment string   `json:"sub_department"`
	Section       string   `json:"section"`
	Stores        int      `json:"stores"`
	IndexedStores int      `json:"indexed_stores"`
	PriceIndex    *float64 `json:"price_index"`
	Positioning   string   `json:"positioning"`
	AvgPrice      *float64 `json:"avg_price"`
	AvgRRP        *float64 `json:"avg_rrp"`
	PriceVsRRPPct *float64 `json:"price_vs_rrp_pct"`
}

// AggregateIndexDTO is a category or store mean index.
type AggregateIndexDTO struct {
	Name        string  `json:"name"`
	PriceIndex  float64 `json:"price_index"`
	Positioning string  `json:"positioning"`
	Members     int     `json:"members"`
}

// PricePortfolioDTO is the supplier-level price summary.
type PricePortfolioDTO struct {
	PortfolioIndex    *float64 `json:"portfolio_index"`
	Positioning       string   `json:"positioning"`
	AvgSKUIndex       *float64 `json:"avg_sku_index"`
	MedianSKUIndex    *float64 `json:"median_sku_index"`
	TotalSKUs         int      `json:"total_skus"`
	PremiumSKUs       int      `json:"premium_skus"`
	AtMarketSKUs      int      `json:"at_market_skus"`
	DiscountSKUs      int      `json:"discount_skus"`
	InsufficientSKUs  int      `json:"insufficient_data_skus"`
	CompetitiveSets   int      `json:"competitive_sets"`
	StoreSKUsAnalyzed int      `json:"store_skus_analyzed"`
}

// PriceExclusionsDTO counts what the price calculation left out.
type PriceExclusionsDTO struct {
	UnpricedRecords     int `json:"unpriced_records"`
	UnclassifiedRecords int `json:"unclassified_records"`
	ThinPairs           int `json:"thin_pairs"`
	ThinTargetPairs     int `json:"thin_target_pairs"`
	NoBenchmarkPairs    int `json:"no_benchmark_pairs"`
}

// PricePositioningDTO is a supplier's price picture.
type PricePositioningDTO struct {
	Supplier        string              `json:"supplier"`
	Portfolio       PricePortfolioDTO   `json:"portfolio"`
	Exclusions      PriceExclusionsDTO  `json:"exclusions"`
	PriceIndices    []PriceIndexDTO     `json:"price_indices"`
	CategoryIndices []AggregateIndexDTO `json:"category_indices"`
	StoreIndices    []AggregateIndexDTO `json:"store_indices"`
	Recommendations []string            `json:"recommendations"`
}

func toAggregateDTOs(aggs []pricing.Aggregate) []AggregateIndexDTO {
	out := make([]AggregateIndexDTO, len(aggs))
	for i, a := range aggs {
		out[i] = AggregateIndexDTO{Name: a.Key, PriceIndex: a.Index, Positioning: string(a.Position), Members: a.Members}
	}
	return out
}

func toPricePositioningDTO(p pricing.Positioning) PricePositioningDTO {
	indices := make([]PriceIndexDTO, len(p.SKUs))
	for i, s := range p.SKUs {
		indices[i] = PriceIndexDTO{
			SKU:           s.SKU,
			Description:   s.Description,
			SubDepartment: s.SubDepartment,
			Section:       s.Section,
			Stores:        s.Stores,
			IndexedStores: s.IndexedStores,
			PriceIndex:    s.Index,
			Positioning:   string(s.Position),
			AvgPrice:      s.AvgPrice,
			AvgRRP:        s.AvgRRP,
			PriceVsRRPPct: s.PriceVsRRPPct,
		}
	}
	recs := p.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return PricePositioningDTO{
		Supplier: p.Supplier,
		Portfolio: PricePortfolioDTO{
			PortfolioIndex:    p.PortfolioIndex,
			Positioning:       string(p.PortfolioPosition),
			AvgSKUIndex:       p.AvgSKUIndex,
			MedianSKUIndex:    p.MedianSKUIndex,
			TotalSKUs:         p.TotalSKUs,
			PremiumSKUs:       p.PremiumSKUs,
			AtMarketSKUs:      p.AtMarketSKUs,
			DiscountSKUs:      p.DiscountSKUs,
			InsufficientSKUs:  p.InsufficientSKUs,
			CompetitiveSets:   len(p.Sets),
			StoreSKUsAnalyzed: len(p.Results),
		},
		Exclusions: PriceExclusionsDTO{
			UnpricedRecords:     p.Exclusions.UnpricedRecords,
			UnclassifiedRecords: p.Exclusions.UnclassifiedRecords,
			ThinPairs:           p.Exclusions.ThinPairs,
			ThinTargetPairs:     p.Exclusions.ThinTargetPairs,
			NoBenchmarkPairs:    p.Exclusions.NoBenchmarkPairs,
		},
		PriceIndices:    indices,
		CategoryIndices: toAggregateDTOs(p.Categories),
		StoreIndices:    toAggregateDTOs(p.Stores),
		Recommendations: recs,
	}
}

// =============================================================================
// KPIS
// =============================================================================

// TotalsDTO are additive measures.
type TotalsDTO struct {
	Sales        float64 `json:"total_sales"`
	Units        float64 `json:"total_units"`
	Transactions int     `json:"total_transactions"`
}

// CategoryDTO is one category's totals.
type CategoryDTO struct {
	Category string `json:"category"`
	TotalsDTO
	UniqueSKUs    int      `json:"unique_skus"`
	SalesSharePct *float64 `json:"sales_share_pct"`
}

// MarketDTO is the market overview.
type MarketDTO struct {
	TotalsDTO
	UniqueStores        int      `json:"unique_stores"`
	UniqueSuppliers     int      `json:"unique_suppliers"`
	UniqueSKUs          int      `json:"unique_skus"`
	AvgTransactionValue *float64 `json:"avg_transaction_value"`
	AvgUnitPrice        *float64 `json:"avg_unit_price"`
	DateFrom            string   `json:"date_from,omitempty"`
	DateTo              string   `json:"date_to,omitempty"`
}

// SupplierKPIsDTO is one supplier's totals and share.
type SupplierKPIsDTO struct {
	Supplier string `json:"supplier"`
	TotalsDTO
	MarketSharePct *float64      `json:"market_share_pct"`
	UniqueSKUs     int           `json:"unique_skus"`
	StoresPresent  int           `json:"stores_present"`
	AvgUnitPrice   *float64      `json:"avg_unit_price"`
	Categories     []CategoryDTO `json:"categories"`
}

// StoreRankingDTO is one ranked store.
type StoreRankingDTO struct {
	Store string `json:"store_name"`
	TotalsDTO
	UniqueSKUs          int      `json:"unique_skus"`
	AvgTransactionValue *float64 `json:"avg_transaction_value"`
}

// SKURankingDTO is one ranked SKU.
type SKURankingDTO struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Supplier    string `json:"supplier"`
	TotalsDTO
	StoresPresent int `json:"stores_present"`
}

// KeyMetricsDTO are the formatted headline figures.
type KeyMetricsDTO struct {
	MarketShare   string `json:"market_share"`
	TotalSales    string `json:"total_sales"`
	TotalUnits    string `json:"total_units"`
	AvgUnitPrice  string `json:"avg_unit_price"`
	StoreCoverage string `json:"store_coverage"`
}

// ExecutiveSummaryDTO is the formatted supplier summary.
type ExecutiveSummaryDTO struct {
	Supplier    string            `json:"supplier"`
	Market      MarketDTO         `json:"market_overview"`
	Performance SupplierKPIsDTO   `json:"supplier_performance"`
	TopStores   []StoreRankingDTO `json:"top_stores"`
	TopProducts []SKURankingDTO   `json:"top_products"`
	KeyMetrics  KeyMetricsDTO     `json:"key_metrics"`
}

func num(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func numPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := num(*d)
	return &f
}

func toTotalsDTO(t kpi.Totals) TotalsDTO {
	return TotalsDTO{Sales: num(t.Sales), Units: num(t.Units), Transactions: t.Transactions}
}

func toCategoryDTOs(cats []kpi.CategoryBreakdown) []CategoryDTO {
	out := make([]CategoryDTO, len(cats))
	for i, c := range cats {
		out[i] = CategoryDTO{
			Category:      c.Category,
			TotalsDTO:     toTotalsDTO(c.Totals),
			UniqueSKUs:    c.UniqueSKUs,
			SalesSharePct: c.SalesSharePct,
		}
	}
	return out
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func toMarketDTO(m kpi.MarketOverview) MarketDTO {
	return MarketDTO{
		TotalsDTO:           toTotalsDTO(m.Totals),
		UniqueStores:        m.UniqueStores,
		UniqueSuppliers:     m.UniqueSuppliers,
		UniqueSKUs:          m.UniqueSKUs,
		AvgTransactionValue: numPtr(m.AvgTransactionValue),
		AvgUnitPrice:        m.AvgUnitPrice,
		DateFrom:            formatDay(m.From),
		DateTo:              formatDay(m.To),
	}
}

func toSupplierKPIsDTO(s kpi.SupplierKPIs) SupplierKPIsDTO {
	return SupplierKPIsDTO{
		Supplier:       s.Supplier,
		TotalsDTO:      toTotalsDTO(s.Totals),
		MarketSharePct: s.MarketSharePct,
		UniqueSKUs:     s.UniqueSKUs,
		StoresPresent:  s.StoresPresent,
		AvgUnitPrice:   s.AvgUnitPrice,
		Categories:     toCategoryDTOs(s.Categories),
	}
}

func toKeyMetricsDTO(k kpi.KeyMetrics) KeyMetricsDTO {
	return KeyMetricsDTO(k)
}

func toExecutiveSummaryDTO(s kpi.ExecutiveSummary) ExecutiveSummaryDTO {
	stores := make([]StoreRankingDTO, len(s.TopStores))
	for i, r := range s.TopStores {
		stores[i] = StoreRankingDTO{
			Store:               r.Store,
			TotalsDTO:           toTotalsDTO(r.Totals),
			UniqueSKUs:          r.UniqueSKUs,
			AvgTransactionValue: numPtr(r.AvgTransactionValue),
		}
	}
	products := make([]SKURankingDTO, len(s.TopProducts))
	for i, r := range s.TopProducts {
		products[i] = SKURankingDTO{
			SKU:           r.SKU,
			Description:   r.Description,
			Supplier:      r.Supplier,
			TotalsDTO:     toTotalsDTO(r.Totals),
			StoresPresent: r.StoresPresent,
		}
	}
	return ExecutiveSummaryDTO{
		Supplier:    s.Supplier,
		Market:      toMarketDTO(s.Market),
		Performance: toSupplierKPIsDTO(s.Performance),
		TopStores:   stores,
		TopProducts: products,
		KeyMetrics:  toKeyMetricsDTO(s.KeyMetrics),
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardDTO is the combined supplier view.
type DashboardDTO struct {
	Supplier string `json:"supplier"`
	Quality  struct {
		OverallScore *float64 `json:"overall_score"`
		Grade        *string  `json:"grade"`
		IsTrusted    *bool    `json:"is_trusted"`
	} `json:"quality"`
	Promos struct {
		SKUsOnPromo  int      `json:"skus_on_promo"`
		TotalSKUs    int      `json:"total_skus"`
		AvgUpliftPct *float64 `json:"avg_uplift_pct"`
	} `json:"promos"`
	Pricing struct {
		PortfolioIndex *float64 `json:"portfolio_index"`
		Positioning    string   `json:"positioning"`
	} `json:"pricing"`
	KPIs KeyMetricsDTO `json:"kpis"`
}

func toDashboardDTO(d kpi.Dashboard) DashboardDTO {
	var dto DashboardDTO
	dto.Supplier = d.Supplier
	dto.Quality.OverallScore = d.Quality.Overall
	dto.Quality.IsTrusted = d.Quality.Trusted
	if d.Quality.Grade != nil {
		g := string(*d.Quality.Grade)
		dto.Quality.Grade = &g
	}
	dto.Promos.SKUsOnPromo = d.Promos.SKUsOnPromo
	dto.Promos.TotalSKUs = d.Promos.TotalSKUs
	dto.Promos.AvgUpliftPct = d.Promos.AvgUpliftPct
	dto.Pricing.PortfolioIndex = d.Pricing.PortfolioIndex
	dto.Pricing.Positioning = string(d.Pricing.Position)
	dto.KPIs = toKeyMetricsDTO(d.KPIs)
	return dto
}

func toScenarioDTOs(list []scenarios.Scenario) []ScenarioDTO {
	out := make([]ScenarioDTO, len(list))
	for i, s := range list {
		out[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description, Category: s.Category}
	}
	return out
}
