package guard

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts guard decisions by outcome and reason.
type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics creates guard metrics and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "focusflow",
			Subsystem: "guard",
			Name:      "decisions_total",
			Help:      "Total access decisions by outcome and denial reason.",
		}, []string{"outcome", "reason"}), // outcome: "allowed", "denied"
	}
	if reg != nil {
		reg.MustRegister(m.decisions)
	}
	return m
}

func (m *Metrics) observe(d Decision) {
	outcome := "denied"
	if d.Allowed {
		outcome = "allowed"
	}
	m.decisions.WithLabelValues(outcome, string(d.Reason)).Inc()
}

// Collector exposes the underlying counter, mainly for tests.
func (m *Metrics) Collector() *prometheus.CounterVec {
	return m.decisions
}
