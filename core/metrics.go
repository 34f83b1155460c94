package core

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives the outcome of every token operation.
type Metrics interface {
	ObserveValidation(result string, duration time.Duration)
	ObserveGeneration(result string)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveValidation(string, time.Duration) {}
func (NopMetrics) ObserveGeneration(string)                {}

// PrometheusMetrics implements Metrics with Prometheus collectors.
type PrometheusMetrics struct {
	validations *prometheus.CounterVec
	generations *prometheus.CounterVec
	latency     prometheus.Histogram
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtsecurity_token_validations_total",
			Help: "Token validations by result.",
		}, []string{"result"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtsecurity_token_generations_total",
			Help: "Token generations by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jwtsecurity_token_validation_seconds",
			Help:    "Time spent validating tokens.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{m.validations, m.generations, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register token metrics: %w", err)
		}
	}

	return m, nil
}

func (m *PrometheusMetrics) ObserveValidation(result string, duration time.Duration) {
	m.validations.WithLabelValues(result).Inc()
	if duration > 0 {
		m.latency.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) ObserveGeneration(result string) {
	m.generations.WithLabelValues(result).Inc()
}
