/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. Metrics:    Prometheus request counter by route pattern
  5. CORS:       Cross-origin requests for a dashboard frontend

ROUTE GROUPS:
  /health               Liveness
  /metrics              Prometheus exposition
  /api/quality/*        Quality scores
  /api/promos/*         Promo detection
  /api/pricing/*        Price positioning
  /api/kpis/*           KPI aggregation
  /api/dashboard/*      Combined view
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", h.Health)
	r.Get("/health", h.Health)
	r.Method("GET", "/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Quality routes
		r.Route("/quality", func(r chi.Router) {
			r.Get("/report", h.GetQualityReport)
			r.Get("/stores", h.GetStoreScores)
			r.Get("/suppliers/{name}", h.GetSupplierScore)
		})

		r.Get("/promos/{supplier}", h.GetPromoAnalysis)
		r.Get("/pricing/{supplier}", h.GetPricePositioning)

		// KPI routes; /market is matched before the supplier pattern
		r.Route("/kpis", func(r chi.Router) {
			r.Get("/market", h.GetMarketKPIs)
			r.Get("/{supplier}", h.GetSupplierKPIs)
			r.Get("/{supplier}/summary", h.GetExecutiveSummary)
		})

		r.Get("/dashboard/{supplier}", h.GetDashboard)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
