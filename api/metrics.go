package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/retail-insights/retail"
)

// Metrics is the service's Prometheus registry.
type Metrics struct {
	reg *prometheus.Registry

	Requests         *prometheus.CounterVec
	AnalysisSec      *prometheus.HistogramVec
	SnapshotRecords  prometheus.Gauge
	SnapshotLoadedAt prometheus.Gauge
	Reloads          *prometheus.CounterVec
}

// NewMetrics registers every collector on a private registry.
func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	analysis := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retail_analysis_duration_seconds",
		Help:    "Time spent in one analysis operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	records := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "retail_snapshot_records",
		Help: "Records in the current snapshot.",
	})
	loadedAt := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "retail_snapshot_loaded_timestamp_seconds",
		Help: "Unix time the current snapshot was loaded.",
	})
	reloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_snapshot_reloads_total",
		Help: "Snapshot reload attempts by result.",
	}, []string{"result"})

	r.MustRegister(requests, analysis, records, loadedAt, reloads)
	return &Metrics{
		reg:              r,
		Requests:         requests,
		AnalysisSec:      analysis,
		SnapshotRecords:  records,
		SnapshotLoadedAt: loadedAt,
		Reloads:          reloads,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Observe times one analysis operation.
func (m *Metrics) Observe(operation string) func() {
	start := time.Now()
	return func() {
		m.AnalysisSec.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// Snapshot records the gauges for a newly swapped table.
func (m *Metrics) Snapshot(t *retail.Table) {
	m.SnapshotRecords.Set(float64(t.Len()))
	m.SnapshotLoadedAt.Set(float64(t.LoadedAt.Unix()))
}

// Reloaded counts a reload attempt.
func (m *Metrics) Reloaded(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
}

// Middleware counts requests by chi route pattern, so path parameters do
// not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
