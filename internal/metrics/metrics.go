// Package metrics exposes the Prometheus collectors of the backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ingestTotal         *prometheus.CounterVec
	recommendationTotal *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ingestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartplant",
			Name:      "ingest_total",
			Help:      "Observations processed by the ingestion pipeline, by outcome.",
		}, []string{"outcome"}),
		recommendationTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartplant",
			Name:      "recommendation_total",
			Help:      "Recommendation results computed, by overall status.",
		}, []string{"status"}),
	}
}

// ObserveIngestOutcome records one pipeline run keyed by its outcome
// class (stored, validation_error, persistence_error).
func (m *Metrics) ObserveIngestOutcome(outcome string) {
	m.ingestTotal.WithLabelValues(outcome).Inc()
}

// ObserveRecommendation records the overall status of a computed result.
func (m *Metrics) ObserveRecommendation(status string) {
	m.recommendationTotal.WithLabelValues(status).Inc()
}
