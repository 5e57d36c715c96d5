/*
handlers.go - HTTP API handlers for the retail insights service

PURPOSE:
  Exposes the analytics engines via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to insight.Service.

ENDPOINTS:
  Health:
    GET    /health                          Liveness and snapshot id

  Quality:
    GET    /api/quality/report              Dataset-wide quality report
    GET    /api/quality/stores              Store scores (?min_score=&trusted_only=)
    GET    /api/quality/suppliers/{name}    One supplier's score

  Promotions and pricing:
    GET    /api/promos/{supplier}           Promo portfolio and uplift
    GET    /api/pricing/{supplier}          Price index positioning

  KPIs:
    GET    /api/kpis/market                 Market totals
    GET    /api/kpis/{supplier}             Supplier totals and share
    GET    /api/kpis/{supplier}/summary     Executive summary

  Dashboard:
    GET    /api/dashboard/{supplier}        All of the above, headlines only

  Scenarios:
    GET    /api/scenarios                   List demo scenarios
    GET    /api/scenarios/current           Currently loaded scenario
    POST   /api/scenarios/load              Load a demo scenario

REQUEST FLOW:
  1. Parse path and query parameters
  2. Call the service against the current snapshot
  3. Convert the result to DTOs
  4. Wrap in the response envelope

ERROR HANDLING:
  Errors are returned as {success:false, error:{error_kind, detail}}:
  - 400 validation: out-of-range or unparseable parameter
  - 404 not_found:  unknown supplier, store or scenario
  - 503 internal:   no snapshot loaded
  - 500 internal:   anything else

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/retail-insights/insight"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/store/sqlite"
)

// Version is reported by /health.
const Version = "0.1.0"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *insight.Service
	Metrics *Metrics

	// Store, when set, persists loaded scenarios and is the service source.
	Store *sqlite.Store

	// AllowedOrigins configures CORS.
	AllowedOrigins []string

	// now is replaceable in tests.
	now func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler around a service.
func NewHandler(svc *insight.Service, store *sqlite.Store) *Handler {
	return &Handler{
		Service:        svc,
		Metrics:        NewMetrics(),
		Store:          store,
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		now:            time.Now,
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness. It never fails; a missing snapshot shows as zero
// records.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dto := HealthDTO{Status: "healthy", Version: Version, Timestamp: h.timestamp()}
	if t, err := h.Service.Snapshot(); err == nil {
		dto.SnapshotID = t.ID.String()
		dto.Records = t.Len()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// QUALITY HANDLERS
// =============================================================================

// GetQualityReport returns the dataset-wide quality report.
func (h *Handler) GetQualityReport(w http.ResponseWriter, r *http.Request) {
	done := h.Metrics.Observe("quality_report")
	report, err := h.Service.QualityReport()
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toQualityReportDTO(report, h.now()), nil)
}

// GetStoreScores returns store scores filtered by min_score and trusted_only.
func (h *Handler) GetStoreScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var minScore *float64
	if raw := q.Get("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.fail(w, retail.Invalid("min_score", raw, "not a number"))
			return
		}
		minScore = &v
	}
	trustedOnly := false
	if raw := q.Get("trusted_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(w, retail.Invalid("trusted_only", raw, "not a boolean"))
			return
		}
		trustedOnly = v
	}

	done := h.Metrics.Observe("store_scores")
	scores, err := h.Service.StoreScores(minScore, trustedOnly)
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, StoreScoresDTO{Stores: toScoreDTOs(scores), Count: len(scores)}, map[string]any{
		"filters": map[string]any{"min_score": minScore, "trusted_only": trustedOnly},
	})
}

// GetSupplierScore returns one supplier's score with its issues.
func (h *Handler) GetSupplierScore(w http.ResponseWriter, r *http.Request) {
	name := pathName(r, "name")

	done := h.Metrics.Observe("supplier_score")
	score, err := h.Service.SupplierScore(name)
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toScoreDTO(score, true), nil)
}

// =============================================================================
// PROMO AND PRICING HANDLERS
// =============================================================================

// GetPromoAnalysis returns a supplier's promo portfolio and performance.
func (h *Handler) GetPromoAnalysis(w http.ResponseWriter, r *http.Request) {
	supplier := pathName(r, "supplier")

	done := h.Metrics.Observe("promo_analysis")
	summary, err := h.Service.PromoAnalysis(supplier)
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	mode := h.Service.Options().Promo.Mode
	h.respond(w, r, toPromoAnalysisDTO(summary, mode), nil)
}

// GetPricePositioning returns a supplier's price indices.
func (h *Handler) GetPricePositioning(w http.ResponseWriter, r *http.Request) {
	supplier := pathName(r, "supplier")

	done := h.Metrics.Observe("price_positioning")
	pos, err := h.Service.PricePositioning(supplier)
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toPricePositioningDTO(pos), nil)
}

// =============================================================================
// KPI HANDLERS
// =============================================================================

// GetMarketKPIs returns market-wide totals.
func (h *Handler) GetMarketKPIs(w http.ResponseWriter, r *http.Request) {
	done := h.Metrics.Observe("market_overview")
	m, err := h.Service.MarketOverview()
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toMarketDTO(m), nil)
}

// GetSupplierKPIs returns a supplier's totals, share and categories.
func (h *Handler) GetSupplierKPIs(w http.ResponseWriter, r *http.Request) {
	supplier := pathName(r, "supplier")

	done := h.Metrics.Observe("supplier_kpis")
	k, err := h.Service.KPIs(supplier)
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toSupplierKPIsDTO(k), nil)
}

// GetExecutiveSummary returns the formatted supplier summary.
func (h *Handler) GetExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	supplier := pathName(r, "supplier")

	done := h.Metrics.Observe("executive_summary")
	s, err := h.Service.ExecutiveSummary(supplier)
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toExecutiveSummaryDTO(s), map[string]any{
		"currency": h.Service.Options().Currency,
	})
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns the combined supplier view.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	supplier := pathName(r, "supplier")

	done := h.Metrics.Observe("dashboard")
	d, err := h.Service.Dashboard(supplier)
	done()
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r, toDashboardDTO(d), nil)
}

// =============================================================================
// HELPERS
// =============================================================================

func pathName(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

// respond wraps data in the success envelope. Metadata always carries the
// endpoint and the snapshot the result was computed on.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, data any, metadata map[string]any) {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["endpoint"] = r.URL.Path
	if t, err := h.Service.Snapshot(); err == nil {
		metadata["snapshot_id"] = t.ID.String()
		metadata["data_source"] = t.Source
	}
	writeJSON(w, http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Metadata:  metadata,
		Timestamp: h.timestamp(),
	})
}

// fail maps an error to its status and writes the error envelope.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case retail.IsNotFound(err):
		status = http.StatusNotFound
	case retail.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, retail.ErrEmptyTable):
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, retail.KindOf(err), err, h.timestamp())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, kind string, err error, timestamp string) {
	resp := ErrorResponse{
		Error:     ErrorBody{ErrorKind: kind},
		Timestamp: timestamp,
	}
	if err != nil {
		resp.Error.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
