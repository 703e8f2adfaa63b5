// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the charge collectors. A nil *Metrics records nothing.
type Metrics struct {
	charges  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lookups  *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		charges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pix",
			Name:      "charges_total",
			Help:      "PIX charge attempts by gateway and outcome.",
		}, []string{"gateway", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pix",
			Name:      "charge_duration_seconds",
			Help:      "Time spent creating a PIX charge.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"gateway"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pix",
			Name:      "customer_lookups_total",
			Help:      "Customer lookups by source and result.",
		}, []string{"source", "result"}),
	}
	reg.MustRegister(m.charges, m.duration, m.lookups)
	return m
}

// ObserveCharge records one charge attempt. outcome is "success" or an error kind.
func (m *Metrics) ObserveCharge(gateway, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.charges.WithLabelValues(gateway, outcome).Inc()
	m.duration.WithLabelValues(gateway).Observe(elapsed.Seconds())
}

// ObserveLookup records one customer lookup. result is "hit", "miss" or "error".
func (m *Metrics) ObserveLookup(source, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(source, result).Inc()
}
