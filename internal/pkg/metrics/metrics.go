// Package metrics provides Prometheus collectors for the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "odyssey_gateway"

// Metrics groups every collector the gateway exports.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	sdkErrors           *prometheus.CounterVec
	uploads             *prometheus.CounterVec
	uploadedBytes       prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route", "method"}),
		sdkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "odyssey",
			Name:      "errors_total",
			Help:      "Failed odyssey client operations.",
		}, []string{"operation"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arweave",
			Name:      "uploads_total",
			Help:      "Arweave uploads by content type and result.",
		}, []string{"content_type", "result"}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "arweave",
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully uploaded to arweave.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpRequestDuration,
		m.sdkErrors,
		m.uploads,
		m.uploadedBytes,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(route, method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// RecordSDKError counts a failed odyssey client operation.
func (m *Metrics) RecordSDKError(operation string) {
	if m == nil {
		return
	}
	m.sdkErrors.WithLabelValues(operation).Inc()
}

// RecordUpload counts an upload attempt; size is only added on success.
func (m *Metrics) RecordUpload(contentType string, size int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.uploadedBytes.Add(float64(size))
	}
	m.uploads.WithLabelValues(contentType, result).Inc()
}
