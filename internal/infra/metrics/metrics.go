package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts core operations by name and outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gymfix_operations_total",
			Help: "Core operations by name and outcome.",
		}, []string{"op", "outcome"}),
	}
}

// Default registers on the global prometheus registry (served at /metrics).
func Default() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

func (m *Metrics) Observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}
