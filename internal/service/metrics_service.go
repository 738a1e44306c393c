package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/vehicle-records-api/internal/models"
)

// Notification outcomes recorded by RecordNotification.
const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

// MetricsService encapsulates Prometheus instrumentation. A nil receiver is a no-op.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	reportRecords   prometheus.Histogram
	notifications   *prometheus.CounterVec
	scanDuration    prometheus.Histogram
	lastScan        prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "document_query_duration_seconds",
		Help:    "Duration of document lookups per kind",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	reportRecords := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "expiry_report_records",
		Help:    "Number of merged records per expiry report before pagination",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expiry_notifications_total",
		Help: "Expiry reminders by document kind and outcome",
	}, []string{"kind", "outcome"})

	scanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "expiry_scan_duration_seconds",
		Help:    "Duration of a full expiry reminder scan",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	lastScan := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "expiry_scan_last_run_timestamp_seconds",
		Help: "Unix time the last expiry reminder scan finished",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups, dbQueryDuration,
		reportRecords, notifications, scanDuration, lastScan, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		dbQueryDuration: dbQueryDuration,
		reportRecords:   reportRecords,
		notifications:   notifications,
		scanDuration:    scanDuration,
		lastScan:        lastScan,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDocumentQuery records the duration of one document lookup.
func (m *MetricsService) ObserveDocumentQuery(kind models.DocumentKind, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(string(kind)).Observe(duration.Seconds())
}

// ObserveReportSize records how many records a report merged.
func (m *MetricsService) ObserveReportSize(n int) {
	if m == nil {
		return
	}
	m.reportRecords.Observe(float64(n))
}

// RecordNotification counts one reminder outcome.
func (m *MetricsService) RecordNotification(kind models.DocumentKind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(kind), outcome).Inc()
}

// ObserveScan records a finished reminder scan.
func (m *MetricsService) ObserveScan(duration time.Duration, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(duration.Seconds())
	m.lastScan.Set(float64(finishedAt.Unix()))
}
