package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "watercan"

// Metrics holds the Prometheus collectors exposed on /metrics. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DeliveriesRecorded *prometheus.CounterVec
	DeliveryRejections *prometheus.CounterVec
	StockLevel         *prometheus.GaugeVec
	StockConflicts     prometheus.Counter
}

// New registers the collectors on a private registry.
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

	m.DeliveriesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cans_delivered_total",
			Help:      "Cans consumed by recorded deliveries",
		},
		[]string{"size"},
	)

	m.DeliveryRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_rejections_total",
			Help:      "Delivery reports rejected before persistence",
		},
		[]string{"reason"},
	)

	m.StockLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_cans",
			Help:      "Cans currently on hand",
		},
		[]string{"size"},
	)

	m.StockConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_write_conflicts_total",
			Help:      "Versioned stock writes that lost a concurrent race",
		},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DeliveriesRecorded,
		m.DeliveryRejections,
		m.StockLevel,
		m.StockConflicts,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDelivery adds the delivered cans per size.
func (m *Metrics) RecordDelivery(cans25L, cans10L, cans1L int) {
	if m == nil {
		return
	}
	m.DeliveriesRecorded.WithLabelValues("25L").Add(float64(cans25L))
	m.DeliveriesRecorded.WithLabelValues("10L").Add(float64(cans10L))
	m.DeliveriesRecorded.WithLabelValues("1L").Add(float64(cans1L))
}

// RecordDeliveryRejection counts a rejected delivery by reason.
func (m *Metrics) RecordDeliveryRejection(reason string) {
	if m == nil {
		return
	}
	m.DeliveryRejections.WithLabelValues(reason).Inc()
}

// SetStockLevel publishes the quantities of the current snapshot.
func (m *Metrics) SetStockLevel(cans25L, cans10L, cans1L int) {
	if m == nil {
		return
	}
	m.StockLevel.WithLabelValues("25L").Set(float64(cans25L))
	m.StockLevel.WithLabelValues("10L").Set(float64(cans10L))
	m.StockLevel.WithLabelValues("1L").Set(float64(cans1L))
}

// RecordStockConflict counts a lost optimistic write.
func (m *Metrics) RecordStockConflict() {
	if m == nil {
		return
	}
	m.StockConflicts.Inc()
}
