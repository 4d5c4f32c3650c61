// Package prometheus provides Prometheus-backed implementations of the
// pkg/metrics interfaces.
package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/deckd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpMetrics is the Prometheus implementation of metrics.HTTPMetrics.
type httpMetrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	parseFailures       prometheus.Counter
	handlerFailures     prometheus.Counter
	activeConnections   prometheus.Gauge
	connectionsAccepted prometheus.Counter
	connectionsClosed   prometheus.Counter
}

// NewHTTPMetrics creates a Prometheus-backed HTTPMetrics registered on reg.
//
// Returns a no-op implementation if reg is nil (metrics disabled).
func NewHTTPMetrics(reg *prometheus.Registry) metrics.HTTPMetrics {
	if reg == nil {
		return metrics.NewNoopHTTPMetrics()
	}

	return &httpMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckd_http_requests_total",
				Help: "Total number of HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "deckd_http_request_duration_milliseconds",
				Help: "Duration of HTTP requests in milliseconds",
				Buckets: []float64{
					1,     // 1ms
					10,    // 10ms
					100,   // 100ms
					1000,  // 1s
					10000, // 10s
					60000, // 1m, deck generation can be slow
				},
			},
			[]string{"method"},
		),
		parseFailures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "deckd_http_parse_failures_total",
				Help: "Total number of requests rejected as malformed",
			},
		),
		handlerFailures: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "deckd_http_handler_failures_total",
				Help: "Total number of handler errors or panics converted to 500",
			},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "deckd_http_active_connections",
				Help: "Current number of HTTP connections being handled",
			},
		),
		connectionsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "deckd_http_connections_accepted_total",
				Help: "Total number of HTTP connections accepted",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "deckd_http_connections_closed_total",
				Help: "Total number of HTTP connections closed",
			},
		),
	}
}

func (m *httpMetrics) RecordRequest(method string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds() * 1000) // Convert to milliseconds
}

func (m *httpMetrics) RecordParseFailure() {
	m.parseFailures.Inc()
}

func (m *httpMetrics) RecordHandlerFailure() {
	m.handlerFailures.Inc()
}

func (m *httpMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *httpMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *httpMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}
