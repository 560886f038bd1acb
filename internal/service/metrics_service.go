package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/1300Sarthak/CS157a/internal/models"
)

// MetricsService owns the Prometheus registry and keeps the running totals
// behind the JSON summary endpoint.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheOpDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	batchTotal      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchCourses    *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
	batchCommitted       uint64
	batchRolledBack      uint64
}

// NewMetricsService registers the HTTP, cache, store and batch enrollment
// collectors plus the Go runtime collector.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Latency of catalog, roster and transcript cache operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of enrollment session statements",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		batchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_batches_total",
			Help: "Batch enrollment calls by verdict and transaction action",
		}, []string{"verdict", "action"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrollment_batch_duration_seconds",
			Help:    "Duration of batch enrollment transactions",
			Buckets: prometheus.DefBuckets,
		}, []string{"verdict"}),
		batchCourses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_batch_courses_total",
			Help: "Per-course batch outcomes by classification",
		}, []string{"classification"}),
	}

	m.registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheOpDuration, m.cacheLookups,
		m.dbQueryDuration,
		m.batchTotal, m.batchDuration, m.batchCourses,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
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

// ObserveHTTPRequest records one request. path is the route template.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache read and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOpDuration.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheOpDuration.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records the timing of one session statement.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveBatchEnrollment records the verdict, transaction action and per-course
// classifications of one batch call.
func (m *MetricsService) ObserveBatchEnrollment(report *models.BatchReport, duration time.Duration) {
	if m == nil || report == nil {
		return
	}
	action := string(report.Action)
	if action == "" {
		action = "NONE"
	}
	m.batchTotal.WithLabelValues(string(report.Verdict), action).Inc()
	m.batchDuration.WithLabelValues(string(report.Verdict)).Observe(duration.Seconds())
	for _, outcome := range report.Outcomes {
		m.batchCourses.WithLabelValues(string(outcome.Classification)).Inc()
	}
	if report.Committed() {
		atomic.AddUint64(&m.batchCommitted, 1)
	} else {
		atomic.AddUint64(&m.batchRolledBack, 1)
	}
}

// Snapshot returns the running totals for the summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)

	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, hits+misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMillis(atomic.LoadUint64(&m.requestDurationTotal), requests),
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: averageMillis(atomic.LoadUint64(&m.dbQueryDurationTotal), dbCount),
		BatchesCommitted:         atomic.LoadUint64(&m.batchCommitted),
		BatchesRolledBack:        atomic.LoadUint64(&m.batchRolledBack),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func ratio(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func averageMillis(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}
