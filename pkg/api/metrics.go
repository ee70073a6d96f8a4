package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/tapebox/pkg/tape"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Tape operation metrics
	tapeOperationsTotal   *prometheus.CounterVec
	tapeOperationDuration *prometheus.HistogramVec
	tapePrograms          prometheus.Gauge
	tapeTombstones        prometheus.Gauge
	tapeSizeBytes         prometheus.Gauge
	tapeTruncated         prometheus.Gauge

	authRequestsTotal *prometheus.CounterVec
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates all Prometheus metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapebox_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tapebox_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tapebox_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		tapeOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapebox_tape_operations_total",
				Help: "Total number of tape operations",
			},
			[]string{"operation", "status"},
		),

		tapeOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tapebox_tape_operation_duration_seconds",
				Help:    "Tape operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		tapePrograms: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tapebox_tape_programs",
				Help: "Number of active programs on the tape",
			},
		),

		tapeTombstones: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tapebox_tape_tombstones",
				Help: "Number of recoverable deleted programs on the tape",
			},
		),

		tapeSizeBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tapebox_tape_size_bytes",
				Help: "Size of the tape file in bytes",
			},
		),

		tapeTruncated: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tapebox_tape_truncated",
				Help: "1 if the last scan stopped at unrecognized data",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapebox_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tapebox_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

func statusLabel(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTapeOperation records a tape operation
func (m *Metrics) RecordTapeOperation(operation string, success bool, duration time.Duration) {
	m.tapeOperationsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
	m.tapeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateTapeStats updates the tape gauges
func (m *Metrics) UpdateTapeStats(stats *tape.Stats) {
	m.tapePrograms.Set(float64(stats.Programs))
	m.tapeTombstones.Set(float64(stats.Tombstones))
	m.tapeSizeBytes.Set(float64(stats.FileSize))
	if stats.Truncated {
		m.tapeTruncated.Set(1)
	} else {
		m.tapeTruncated.Set(0)
	}
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	m.authRequestsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	m.healthChecksTotal.WithLabelValues(statusLabel(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// InstrumentAuthMiddleware records the outcome of requests that carried an API key
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		wrapped := next(h)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasAPIKey := r.Header.Get("X-API-Key") != ""

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			wrapped.ServeHTTP(rw, r)

			if hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
