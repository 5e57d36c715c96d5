/*
Package insight serves the analytics engines over one loaded snapshot.

PURPOSE:
  Owns the current transaction table and the validated analysis configs,
  and exposes the request/response operations the HTTP layer calls:

    QualityReport, StoreScores, SupplierScore
    PromoAnalysis, PricePositioning
    KPIs, MarketOverview, ExecutiveSummary
    Dashboard (fan-out over the above)

SNAPSHOTS:
  The table is held in an atomic.Pointer. Reload builds a new table from the
  Source and swaps it in; requests already running keep the table they
  started with. Tables are never mutated after the swap.

ERRORS:
  With no snapshot loaded every operation returns retail.ErrEmptyTable.
  Unknown suppliers are *retail.NotFoundError; bad filters are
  *retail.ValidationError.

SEE ALSO:
  - refresher.go: Periodic reload
  - api/handlers.go: HTTP bindings
*/
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/warp/retail-insights/kpi"
	"github.com/warp/retail-insights/pricing"
	"github.com/warp/retail-insights/promo"
	"github.com/warp/retail-insights/quality"
	"github.com/warp/retail-insights/retail"
)

// Source produces a fresh snapshot.
type Source interface {
	Load(ctx context.Context) (*retail.Table, error)
}

// Options are the analysis settings fixed for the life of a Service.
type Options struct {
	Quality  quality.Config
	Promo    promo.Config
	Pricing  pricing.Config
	Currency string
}

// DefaultOptions returns the default configs of every engine.
func DefaultOptions() Options {
	return Options{
		Quality:  quality.DefaultConfig(),
		Promo:    promo.DefaultConfig(),
		Pricing:  pricing.DefaultConfig(),
		Currency: kpi.DefaultCurrency,
	}
}

// Validate checks every engine config.
func (o Options) Validate() error {
	if err := o.Quality.Validate(); err != nil {
		return err
	}
	if err := o.Promo.Validate(); err != nil {
		return err
	}
	return o.Pricing.Validate()
}

// Service runs analyses against the current snapshot.
type Service struct {
	source Source
	opts   Options
	log    *slog.Logger

	table atomic.Pointer[retail.Table]
}

// New validates opts and returns a service with no snapshot loaded.
func New(source Source, opts Options, logger *slog.Logger) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Currency == "" {
		opts.Currency = kpi.DefaultCurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, opts: opts, log: logger}, nil
}

// Options returns the service settings.
func (s *Service) Options() Options { return s.opts }

// =============================================================================
// SNAPSHOT
// =============================================================================

// Reload loads a new table from the source and swaps it in. On failure the
// previous snapshot stays.
func (s *Service) Reload(ctx context.Context) (*retail.Table, error) {
	if s.source == nil {
		return nil, fmt.Errorf("no source configured: %w", retail.ErrEmptyTable)
	}
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.Swap(table)
	return table, nil
}

// Swap replaces the snapshot.
func (s *Service) Swap(table *retail.Table) {
	s.table.Store(table)
	from, to, _ := table.DateRange()
	s.log.Info("snapshot loaded",
		"id", table.ID,
		"source", table.Source,
		"records", table.Len(),
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
	)
}

// Snapshot returns the current table.
func (s *Service) Snapshot() (*retail.Table, error) {
	t := s.table.Load()
	if t == nil {
		return nil, retail.ErrEmptyTable
	}
	return t, nil
}

// =============================================================================
// QUALITY
// =============================================================================

// QualityReport scores the dataset, stores and suppliers.
func (s *Service) QualityReport() (quality.Report, error) {
	t, err := s.Snapshot()
	if err != nil {
		return quality.Report{}, err
	}
	return quality.BuildReport(t, s.opts.Quality), nil
}

// StoreScores returns store scores, optionally filtered by a minimum overall
// score in [0,1] and by trust.
func (s *Service) StoreScores(minScore *float64, trustedOnly bool) ([]quality.Score, error) {
	t, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return quality.FilterScores(quality.ScoreAll(t, quality.KindStore, s.opts.Quality), minScore, trustedOnly)
}

// SupplierScore returns one supplier's score, matched case-insensitively.
func (s *Service) SupplierScore(name string) (quality.Score, error) {
	t, err := s.Snapshot()
	if err != nil {
		return quality.Score{}, err
	}
	return quality.Find(quality.ScoreAll(t, quality.KindSupplier, s.opts.Quality), quality.KindSupplier, name)
}

// =============================================================================
// PROMO AND PRICING
// =============================================================================

// PromoAnalysis detects promotions and summarizes one supplier's portfolio.
func (s *Service) PromoAnalysis(supplier string) (promo.Summary, error) {
	t, err := s.Snapshot()
	if err != nil {
		return promo.Summary{}, err
	}
	return s.promoAnalysis(t, supplier)
}

func (s *Service) promoAnalysis(t *retail.Table, supplier string) (promo.Summary, error) {
	a, err := promo.Detect(t, s.opts.Promo)
	if err != nil {
		return promo.Summary{}, err
	}
	return promo.SupplierSummary(a, supplier, s.opts.Promo)
}

// PricePositioning indexes a supplier's prices against competitors.
func (s *Service) PricePositioning(supplier string) (pricing.Positioning, error) {
	t, err := s.Snapshot()
	if err != nil {
		return pricing.Positioning{}, err
	}
	return pricing.Calculate(t, supplier, s.opts.Pricing)
}

// =============================================================================
// KPIS
// =============================================================================

// KPIs returns a supplier's totals, market share and categories.
func (s *Service) KPIs(supplier string) (kpi.SupplierKPIs, error) {
	t, err := s.Snapshot()
	if err != nil {
		return kpi.SupplierKPIs{}, err
	}
	return kpi.Supplier(t, supplier)
}

// MarketOverview returns market-wide totals.
func (s *Service) MarketOverview() (kpi.MarketOverview, error) {
	t, err := s.Snapshot()
	if err != nil {
		return kpi.MarketOverview{}, err
	}
	return kpi.Market(t), nil
}

// ExecutiveSummary returns the formatted supplier summary.
func (s *Service) ExecutiveSummary(supplier string) (kpi.ExecutiveSummary, error) {
	t, err := s.Snapshot()
	if err != nil {
		return kpi.ExecutiveSummary{}, err
	}
	return kpi.Summarize(t, supplier, s.opts.Currency)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard runs the four analyses for a supplier concurrently on one
// snapshot and composes their headlines. The first error in the order
// quality, promo, pricing, KPIs is returned.
func (s *Service) Dashboard(supplier string) (kpi.Dashboard, error) {
	t, err := s.Snapshot()
	if err != nil {
		return kpi.Dashboard{}, err
	}

	var (
		wg      sync.WaitGroup
		score   quality.Score
		summary promo.Summary
		pos     pricing.Positioning
		exec    kpi.ExecutiveSummary
		errs    [4]error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		score, errs[0] = quality.Find(quality.ScoreAll(t, quality.KindSupplier, s.opts.Quality), quality.KindSupplier, supplier)
	}()
	go func() {
		defer wg.Done()
		summary, errs[1] = s.promoAnalysis(t, supplier)
	}()
	go func() {
		defer wg.Done()
		pos, errs[2] = pricing.Calculate(t, supplier, s.opts.Pricing)
	}()
	go func() {
		defer wg.Done()
		exec, errs[3] = kpi.Summarize(t, supplier, s.opts.Currency)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return kpi.Dashboard{}, err
		}
	}
	return kpi.Compose(&score, summary, pos, exec), nil
}
