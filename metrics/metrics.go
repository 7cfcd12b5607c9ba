package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics собирает счётчики приложения в собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	MatchesRecorded     *prometheus.CounterVec
	TransactionsApplied *prometheus.CounterVec
	CatalogReloads      *prometheus.CounterVec
	CatalogSize         prometheus.Gauge
	StandingsCache      *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "draftleague_http_requests_total",
			Help: "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "draftleague_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		MatchesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "draftleague_match_results_total",
			Help: "Recorded match results by stage (league or knockout).",
		}, []string{"stage"}),
		TransactionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "draftleague_transactions_total",
			Help: "Applied roster transactions by type.",
		}, []string{"type"}),
		CatalogReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "draftleague_catalog_reloads_total",
			Help: "Catalog reload attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "draftleague_catalog_entries",
			Help: "Entries in the active pokemon catalog.",
		}),
		StandingsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "draftleague_standings_cache_total",
			Help: "Standings cache lookups by result (hit or miss).",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.MatchesRecorded,
		m.TransactionsApplied,
		m.CatalogReloads,
		m.CatalogSize,
		m.StandingsCache,
	)
	return m
}

// Handler отдаёт метрики для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware labels requests with the chi route pattern, not the raw path,
// so tournament IDs do not blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
