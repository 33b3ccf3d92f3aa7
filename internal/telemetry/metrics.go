package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ProviderErrors   *prometheus.CounterVec
	WebhooksTotal    *prometheus.CounterVec
	CompletionsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_bridge_requests_total",
				Help: "Total number of requests by operation, provider, and status",
			},
			[]string{"operation", "provider", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courier_bridge_request_duration_seconds",
				Help:    "Request duration in seconds by operation and provider",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "provider"},
		),
		ProviderErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_bridge_provider_errors_total",
				Help: "Total provider API errors by provider and error type",
			},
			[]string{"provider", "error_type"},
		),
		WebhooksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_bridge_webhooks_total",
				Help: "Total webhook events received by provider and kind",
			},
			[]string{"provider", "kind"},
		),
		CompletionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_bridge_completions_total",
				Help: "Total finalized deliveries by provider",
			},
			[]string{"provider"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, provider, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, provider, status).Inc()
	m.RequestDuration.WithLabelValues(operation, provider).Observe(duration)
}

// RecordError records a provider error metric.
func (m *Metrics) RecordError(provider, errorType string) {
	m.ProviderErrors.WithLabelValues(provider, errorType).Inc()
}

// RecordWebhook records a received webhook event.
func (m *Metrics) RecordWebhook(provider, kind string) {
	m.WebhooksTotal.WithLabelValues(provider, kind).Inc()
}

// RecordCompletion records a finalized delivery.
func (m *Metrics) RecordCompletion(provider string) {
	m.CompletionsTotal.WithLabelValues(provider).Inc()
}
