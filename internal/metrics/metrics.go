package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pantry"

// Metrics holds the service's prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Inventory metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	LedgerErrors      *prometheus.CounterVec
	PalletsFinished   *prometheus.CounterVec
	PalletBoxes       *prometheus.CounterVec

	// Live event metrics
	WebsocketClients prometheus.Gauge
	EventsPublished  *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_operations_total",
			Help:      "Inventory operations by outcome (ok or error kind)",
		},
		[]string{"operation", "outcome"},
	)
	m.OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inventory_operation_duration_seconds",
			Help:      "Inventory operation duration including the transaction",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)
	m.LedgerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_ledger_errors_total",
			Help:      "Activity ledger writes rejected by the store",
		},
		[]string{"step"},
	)
	m.PalletsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pallets_finished_total",
			Help:      "Pallets committed to inventory",
		},
		[]string{"status"},
	)
	m.PalletBoxes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pallet_boxes_committed_total",
			Help:      "Staged boxes committed by finished pallets",
		},
		[]string{"status"},
	)

	m.WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected live event clients",
		},
	)
	m.EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Inventory events broadcast to live clients",
		},
		[]string{"type"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.OperationsTotal,
		m.OperationDuration,
		m.LedgerErrors,
		m.PalletsFinished,
		m.PalletBoxes,
		m.WebsocketClients,
		m.EventsPublished,
	)
	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOperation records one inventory operation and its outcome
func (m *Metrics) RecordOperation(op, outcome string, duration time.Duration) {
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordInternalError counts a rejected activity ledger write
func (m *Metrics) RecordInternalError(step string) {
	m.LedgerErrors.WithLabelValues(step).Inc()
}

// RecordPalletFinished counts a finished pallet and its boxes
func (m *Metrics) RecordPalletFinished(status string, boxes int) {
	m.PalletsFinished.WithLabelValues(status).Inc()
	m.PalletBoxes.WithLabelValues(status).Add(float64(boxes))
}

// RecordEventPublished counts a broadcast event
func (m *Metrics) RecordEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// SetWebsocketClients sets the number of connected live clients
func (m *Metrics) SetWebsocketClients(n int) {
	m.WebsocketClients.Set(float64(n))
}
