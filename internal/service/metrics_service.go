package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the domain counters.
const (
	ResultOK                   = "ok"
	ResultCapacityExceeded     = "capacity_exceeded"
	ResultDuplicate            = "duplicate"
	ResultNoActiveSubscription = "no_active_subscription"
	ResultNoop                 = "noop"
	ResultRejected             = "rejected"
	ResultError                = "error"
)

// MetricsService owns the Prometheus registry for the studio API.
type MetricsService struct {
	registry             *prometheus.Registry
	handler              http.Handler
	requestDuration      *prometheus.HistogramVec
	requestTotal         *prometheus.CounterVec
	cacheLookups         *prometheus.CounterVec
	cacheLatency         prometheus.Observer
	enrollments          *prometheus.CounterVec
	attendanceMarks      *prometheus.CounterVec
	subscriptionsExpired prometheus.Counter
}

// NewMetricsService registers the HTTP, cache and studio collectors.
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

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by outcome",
	}, []string{"result"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	enrollments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_enrollments_total",
		Help: "Class enrollment attempts by outcome",
	}, []string{"result"})

	attendanceMarks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_attendance_marked_total",
		Help: "Attendance presence updates by outcome",
	}, []string{"result"})

	subscriptionsExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studio_subscriptions_expired_total",
		Help: "Subscriptions expired by the background sweep",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheLatency, enrollments, attendanceMarks, subscriptionsExpired, goroutines)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:      requestDuration,
		requestTotal:         requestTotal,
		cacheLookups:         cacheLookups,
		cacheLatency:         cacheLatency,
		enrollments:          enrollments,
		attendanceMarks:      attendanceMarks,
		subscriptionsExpired: subscriptionsExpired,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
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

// ObserveHTTPRequest records request latency and count.
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

// RecordEnrollment counts an enrollment attempt.
func (m *MetricsService) RecordEnrollment(result string) {
	if m == nil {
		return
	}
	m.enrollments.WithLabelValues(result).Inc()
}

// RecordAttendanceMark counts a presence update.
func (m *MetricsService) RecordAttendanceMark(result string) {
	if m == nil {
		return
	}
	m.attendanceMarks.WithLabelValues(result).Inc()
}

// AddExpiredSubscriptions counts subscriptions expired by the sweeper.
func (m *MetricsService) AddExpiredSubscriptions(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.subscriptionsExpired.Add(float64(n))
}
