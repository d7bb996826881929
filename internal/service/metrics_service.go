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

	"github.com/campushq/sis-core-api/internal/models"
)

const metricsNamespace = "sis"

// latencyBuckets covers the expected API and cache latency range. The
// default buckets top out too early for slow report queries.
var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

type httpCollectors struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

type cacheCollectors struct {
	lookupLatency prometheus.Histogram
	writeLatency  prometheus.Histogram
	hitRatio      prometheus.Gauge
	hits          prometheus.Counter
	misses        prometheus.Counter
}

type queryCollectors struct {
	duration *prometheus.HistogramVec
}

// snapshotCounters shadow the Prometheus collectors so Snapshot can compute
// averages without scraping the registry.
type snapshotCounters struct {
	cacheHits       uint64
	cacheMisses     uint64
	requests        uint64
	requestDuration uint64
	queries         uint64
	queryDuration   uint64
}

// MetricsService owns the Prometheus registry and feeds the system metrics
// snapshot exposed on the platform endpoints.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler
	http     httpCollectors
	cache    cacheCollectors
	query    queryCollectors
	counters snapshotCounters
}

// NewMetricsService builds the registry and registers all collectors,
// including the Go runtime collector.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.http = httpCollectors{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   latencyBuckets,
		}, []string{"method", "path", "status"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}

	m.cache = cacheCollectors{
		lookupLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookup_duration_seconds",
			Help:      "Latency of cache lookups",
			Buckets:   latencyBuckets,
		}),
		writeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "write_duration_seconds",
			Help:      "Latency of cache writes",
			Buckets:   latencyBuckets,
		}),
		hitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "hit_ratio",
			Help:      "Ratio of cache hits to total lookups",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses",
		}),
	}

	m.query = queryCollectors{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries",
			Buckets:   latencyBuckets,
		}, []string{"query"}),
	}

	m.registry.MustRegister(
		m.http.duration, m.http.total,
		m.cache.lookupLatency, m.cache.writeLatency, m.cache.hitRatio, m.cache.hits, m.cache.misses,
		m.query.duration,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveRequest records a finished HTTP request.
func (m *MetricsService) ObserveRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.http.duration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	m.http.total.WithLabelValues(method, path, label).Inc()
	atomic.AddUint64(&m.counters.requests, 1)
	atomic.AddUint64(&m.counters.requestDuration, uint64(duration.Nanoseconds()))
}

// ObserveCacheLookup records one cache lookup outcome and refreshes the ratio.
func (m *MetricsService) ObserveCacheLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cache.lookupLatency.Observe(duration.Seconds())
	if hit {
		m.cache.hits.Inc()
		atomic.AddUint64(&m.counters.cacheHits, 1)
	} else {
		m.cache.misses.Inc()
		atomic.AddUint64(&m.counters.cacheMisses, 1)
	}
	hits := atomic.LoadUint64(&m.counters.cacheHits)
	total := hits + atomic.LoadUint64(&m.counters.cacheMisses)
	if total > 0 {
		m.cache.hitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite records the duration of a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cache.writeLatency.Observe(duration.Seconds())
}

// ObserveQuery records one database query timing under the given label.
func (m *MetricsService) ObserveQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.query.duration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.counters.queries, 1)
	atomic.AddUint64(&m.counters.queryDuration, uint64(duration.Nanoseconds()))
}

// Snapshot aggregates the shadow counters into a reporting struct.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.counters.cacheHits)
	misses := atomic.LoadUint64(&m.counters.cacheMisses)
	requests := atomic.LoadUint64(&m.counters.requests)
	queries := atomic.LoadUint64(&m.counters.queries)

	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, hits+misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMs(atomic.LoadUint64(&m.counters.requestDuration), requests),
		DBQueryCount:             queries,
		AverageDBQueryDurationMs: averageMs(atomic.LoadUint64(&m.counters.queryDuration), queries),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func ratio(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func averageMs(totalNs, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNs) / float64(count) / float64(time.Millisecond)
}
