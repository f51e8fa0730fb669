package screening

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the screening subsystem.
type Metrics struct {
	ScreensTotal *prometheus.CounterVec
}

// NewMetrics registers and returns screening metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScreensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risklens_screenings_total",
			Help: "Sanctions screenings by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.ScreensTotal)
	return m
}

// Hooks returns a Hooks that increments the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnScreen: func(outcome string) {
			m.ScreensTotal.WithLabelValues(outcome).Inc()
		},
	}
}
