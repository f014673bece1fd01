package service

import (
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

const metricsNamespace = "itqan"

// MetricsService owns the Prometheus registry of the unified read layer and
// keeps running totals for the system snapshot.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	httpDuration   *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	cacheLatency   *prometheus.HistogramVec
	cacheWrites    *prometheus.HistogramVec
	cacheFallbacks prometheus.Counter
	storeQueries   *prometheus.HistogramVec
	unmappedStatus *prometheus.CounterVec

	hits, misses, fallbacks uint64
	requests, requestNanos  uint64
	storeCalls, storeNanos  uint64
}

// NewMetricsService registers the unified collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of unified API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Unified API requests by route and status.",
		}, []string{"method", "route", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups per key namespace and result.",
		}, []string{"namespace", "result"}),
		cacheLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "read_seconds",
			Help:      "Latency of cache reads.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"namespace"}),
		cacheWrites: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "write_seconds",
			Help:      "Latency of cache writes.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"namespace"}),
		cacheFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "fallbacks_total",
			Help:      "Cache failures absorbed by reading from the store or leaving entries to expire.",
		}),
		storeQueries: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "store",
			Name:      "query_seconds",
			Help:      "Latency of per-kind store queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"family", "kind"}),
		unmappedStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "unified",
			Name:      "unmapped_status_total",
			Help:      "Records whose stored status fell back to a default.",
		}, []string{"family", "kind"}),
	}
	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "goroutines",
		Help:      "Live goroutines.",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.httpDuration, m.httpRequests,
		m.cacheLookups, m.cacheLatency, m.cacheWrites, m.cacheFallbacks,
		m.storeQueries, m.unmappedStatus, goroutines,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one finished request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	atomic.AddUint64(&m.requests, 1)
	atomic.AddUint64(&m.requestNanos, uint64(duration.Nanoseconds()))
}

// RecordCacheLookup counts a read against the namespace of key.
func (m *MetricsService) RecordCacheLookup(key string, hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	ns := cacheKeyNamespace(key)
	m.cacheLatency.WithLabelValues(ns).Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues(ns, "hit").Inc()
		atomic.AddUint64(&m.hits, 1)
		return
	}
	m.cacheLookups.WithLabelValues(ns, "miss").Inc()
	atomic.AddUint64(&m.misses, 1)
}

// ObserveCacheWrite times a cache write for the namespace of key.
func (m *MetricsService) ObserveCacheWrite(key string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.WithLabelValues(cacheKeyNamespace(key)).Observe(duration.Seconds())
}

// RecordCacheFallback counts a cache failure that the caller absorbed.
func (m *MetricsService) RecordCacheFallback() {
	if m == nil {
		return
	}
	m.cacheFallbacks.Inc()
	atomic.AddUint64(&m.fallbacks, 1)
}

// RecordUnmappedStatus counts a status string the classifier did not recognise.
func (m *MetricsService) RecordUnmappedStatus(family, kind string) {
	if m == nil {
		return
	}
	m.unmappedStatus.WithLabelValues(family, kind).Inc()
}

// ObserveStoreQuery times one per-kind store call.
func (m *MetricsService) ObserveStoreQuery(family string, kind models.Kind, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeQueries.WithLabelValues(family, string(kind)).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeCalls, 1)
	atomic.AddUint64(&m.storeNanos, uint64(duration.Nanoseconds()))
}

// Snapshot returns the running totals for the system endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.hits)
	misses := atomic.LoadUint64(&m.misses)
	requests := atomic.LoadUint64(&m.requests)
	storeCalls := atomic.LoadUint64(&m.storeCalls)

	return models.SystemMetrics{
		CacheHitRatio:            ratio(float64(hits), float64(hits+misses)),
		CacheHits:                hits,
		CacheMisses:              misses,
		CacheFallbacks:           atomic.LoadUint64(&m.fallbacks),
		RequestsTotal:            requests,
		AverageRequestDurationMs: ratio(float64(atomic.LoadUint64(&m.requestNanos)), float64(requests)) / float64(time.Millisecond),
		DBQueryCount:             storeCalls,
		AverageDBQueryDurationMs: ratio(float64(atomic.LoadUint64(&m.storeNanos)), float64(storeCalls)) / float64(time.Millisecond),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

// cacheKeyNamespace returns the leading segment of a unified cache key.
func cacheKeyNamespace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

func ratio(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole
}
