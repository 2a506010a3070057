package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of the host backend on a private registry,
// so several servers can live in one process (tests, the function entry).
type Metrics struct {
	registry     *prometheus.Registry
	analyses     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	requests     *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_analyses_total",
			Help: "Analyses performed by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notes_analysis_duration_seconds",
			Help:    "Time spent analyzing a note",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_cache_lookups_total",
			Help: "Result cache lookups by result",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.analyses,
		m.duration,
		m.cacheLookups,
		m.requests,
		collectors.NewGoCollector(),
	)

	return m
}

// ObserveAnalysis records one analysis
func (m *Metrics) ObserveAnalysis(mode, outcome string, elapsed time.Duration) {
	m.analyses.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// CacheLookup records a cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records a served HTTP request
func (m *Metrics) ObserveRequest(route, code string) {
	m.requests.WithLabelValues(route, code).Inc()
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
