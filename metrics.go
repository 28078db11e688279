package uzkv

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the engine's prometheus counters.
type Metrics struct {
	Verifications *prometheus.CounterVec
	Registrations prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uzkv",
			Name:      "verifications_total",
			Help:      "Proof verifications by scheme and outcome.",
		}, []string{"scheme", "outcome"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "uzkv",
			Name:      "registrations_total",
			Help:      "Verification keys registered.",
		}),
	}
	reg.MustRegister(m.Verifications, m.Registrations)
	return m
}
