package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry for the timetable API. Every
// method is safe on a nil receiver so wiring stays optional in tests.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	solveTotal      *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	solveNodes      prometheus.Histogram
	solveBacktracks prometheus.Histogram
	cacheOps        *prometheus.CounterVec
	jobsInflight    prometheus.Gauge
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	solveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_solve_total",
		Help: "Solve runs by terminal outcome",
	}, []string{"outcome"})

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_solve_duration_seconds",
		Help:    "Wall-clock duration of solve runs",
		Buckets: prometheus.DefBuckets,
	})

	solveNodes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_solve_nodes",
		Help:    "Search nodes expanded per successful solve",
		Buckets: prometheus.ExponentialBuckets(1, 10, 8),
	})

	solveBacktracks := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_solve_backtracks",
		Help:    "Backtracks per successful solve",
		Buckets: prometheus.ExponentialBuckets(1, 10, 8),
	})

	cacheOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_cache_operations_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})

	jobsInflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_jobs_inflight",
		Help: "Solve jobs accepted but not yet finished",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, solveTotal, solveDuration,
		solveNodes, solveBacktracks, cacheOps, jobsInflight, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		solveTotal:      solveTotal,
		solveDuration:   solveDuration,
		solveNodes:      solveNodes,
		solveBacktracks: solveBacktracks,
		cacheOps:        cacheOps,
		jobsInflight:    jobsInflight,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSolve records one finished solve run by outcome.
func (m *MetricsService) RecordSolve(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.solveTotal.WithLabelValues(outcome).Inc()
	m.solveDuration.Observe(duration.Seconds())
}

// ObserveSearchEffort records nodes and backtracks of a completed search.
func (m *MetricsService) ObserveSearchEffort(nodes, backtracks int64) {
	if m == nil {
		return
	}
	m.solveNodes.Observe(float64(nodes))
	m.solveBacktracks.Observe(float64(backtracks))
}

// RecordCacheOperation counts one response cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheOps.WithLabelValues(result).Inc()
}

// IncJobsInflight marks one solve job accepted.
func (m *MetricsService) IncJobsInflight() {
	if m == nil {
		return
	}
	m.jobsInflight.Inc()
}

// DecJobsInflight marks one solve job finished.
func (m *MetricsService) DecJobsInflight() {
	if m == nil {
		return
	}
	m.jobsInflight.Dec()
}
