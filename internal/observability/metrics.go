package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	requestTotal     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errorTotal       *prometheus.CounterVec
	queryTotal       *prometheus.CounterVec
	aggregationTime  prometheus.Histogram
	resolutionsTotal *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propcrm",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "propcrm",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propcrm",
			Name:      "http_errors_total",
			Help:      "Total number of HTTP errors by code",
		}, []string{"path", "method", "code"}),
		queryTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propcrm",
			Name:      "dashboard_queries_total",
			Help:      "Dashboard aggregation queries by outcome",
		}, []string{"query", "outcome"}),
		aggregationTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "propcrm",
			Name:      "dashboard_aggregation_seconds",
			Help:      "Duration of a full dashboard aggregation",
			Buckets:   prometheus.DefBuckets,
		}),
		resolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propcrm",
			Name:      "session_resolutions_total",
			Help:      "Session resolutions by outcome",
		}, []string{"outcome"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(path, method, code).Inc()
}

// RecordQuery counts one dashboard query outcome ("ok", "failed" or "skipped").
func (m *Metrics) RecordQuery(query, outcome string) {
	if m == nil {
		return
	}
	m.queryTotal.WithLabelValues(query, outcome).Inc()
}

// ObserveAggregation records how long a dashboard aggregation took.
func (m *Metrics) ObserveAggregation(duration time.Duration) {
	if m == nil {
		return
	}
	m.aggregationTime.Observe(duration.Seconds())
}

// RecordResolution counts a session resolution outcome.
func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutionsTotal.WithLabelValues(outcome).Inc()
}
