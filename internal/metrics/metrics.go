// Package metrics exposes textkeeper's Prometheus metrics: store operation
// counts and latencies, markdown render latency and preview HTTP traffic.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "textkeeper"

	operationLabel = "operation"
	backendLabel   = "backend"
	resultLabel    = "result"
	routeLabel     = "route"
	codeLabel      = "code"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	storeOperationsTotal   *prometheus.CounterVec
	storeOperationSeconds  *prometheus.HistogramVec
	renderSeconds          prometheus.Histogram
	renderInputBytesTotal  prometheus.Counter
	autosaveTotal          *prometheus.CounterVec
	httpRequestsTotal      *prometheus.CounterVec
	httpRequestDurationSec *prometheus.HistogramVec
}

// NewMetrics creates a registry with the process and Go runtime collectors
// plus textkeeper's own metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	return &Metrics{
		registry: reg,
		storeOperationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of store operations by outcome.",
		}, []string{backendLabel, operationLabel, resultLabel}),
		storeOperationSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_seconds",
			Help:      "Latency of store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{backendLabel, operationLabel}),
		renderSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "markdown",
			Name:      "render_seconds",
			Help:      "Time spent rendering markdown to HTML.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		renderInputBytesTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "markdown",
			Name:      "input_bytes_total",
			Help:      "Total bytes of markdown rendered.",
		}),
		autosaveTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "autosaves_total",
			Help:      "Debounced draft writes by outcome.",
		}, []string{resultLabel}),
		httpRequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "requests_total",
			Help:      "Preview server requests by route and status code.",
		}, []string{routeLabel, codeLabel}),
		httpRequestDurationSec: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "preview",
			Name:      "request_seconds",
			Help:      "Preview server request latency.",
		}, []string{routeLabel}),
	}, nil
}

// ObserveStoreOperation records one store call.
func (m *Metrics) ObserveStoreOperation(backend, operation string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOperationsTotal.WithLabelValues(backend, operation, result).Inc()
	m.storeOperationSeconds.WithLabelValues(backend, operation).Observe(d.Seconds())
}

// ObserveRender records one markdown render of n input bytes.
func (m *Metrics) ObserveRender(n int, d time.Duration) {
	m.renderInputBytesTotal.Add(float64(n))
	m.renderSeconds.Observe(d.Seconds())
}

// AddAutosave counts a debounced draft write.
func (m *Metrics) AddAutosave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.autosaveTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records one preview server request.
func (m *Metrics) ObserveHTTPRequest(route string, code int, d time.Duration) {
	m.httpRequestsTotal.WithLabelValues(route, fmt.Sprint(code)).Inc()
	m.httpRequestDurationSec.WithLabelValues(route).Observe(d.Seconds())
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
