package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the dashboard backend.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	FetchDuration   *prometheus.HistogramVec // labels: source
	FetchErrors     *prometheus.CounterVec   // labels: source
	CacheRequests   *prometheus.CounterVec   // labels: result=hit|miss
	ComputeDuration *prometheus.HistogramVec // labels: kind=indicators|simulation|signal
	SimulatedPaths  prometheus.Counter
	HTTPRequests    *prometheus.CounterVec // labels: route, status
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsnisam_fetch_duration_seconds",
			Help:    "Market data fetch latency by source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsnisam_fetch_errors_total",
			Help: "Failed market data fetches by source",
		}, []string{"source"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsnisam_cache_requests_total",
			Help: "Series cache lookups by result",
		}, []string{"result"}),
		ComputeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsnisam_compute_duration_seconds",
			Help:    "Indicator, simulation and signal compute latency",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"kind"}),
		SimulatedPaths: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tsnisam_simulated_paths_total",
			Help: "Total Monte Carlo paths generated",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsnisam_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
	}

	m.Registry.MustRegister(
		m.FetchDuration,
		m.FetchErrors,
		m.CacheRequests,
		m.ComputeDuration,
		m.SimulatedPaths,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one fetch attempt.
func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(source).Inc()
	}
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// ObserveCompute records the time spent in one compute step.
func (m *Metrics) ObserveCompute(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.ComputeDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// AddPaths counts generated simulation paths.
func (m *Metrics) AddPaths(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SimulatedPaths.Add(float64(n))
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
