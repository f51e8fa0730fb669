package investigation

import "github.com/prometheus/client_golang/prometheus"

// ServiceHooks are optional observation points for the Service. The zero
// value is a no-op.
type ServiceHooks struct {
	// OnMutation fires once per mutation attempt with the operation name
	// and its outcome (ok, noop, not_found, invalid_input,
	// invalid_transition, error).
	OnMutation func(op, outcome string)

	// OnTransition fires on every committed status change.
	OnTransition func(from, to AlertStatus)

	// OnNarrative fires when a narrative run finishes (ok, fallback, lost).
	OnNarrative func(outcome string, seconds float64)
}

func (h ServiceHooks) onMutation(op, outcome string) {
	if h.OnMutation != nil {
		h.OnMutation(op, outcome)
	}
}

func (h ServiceHooks) onTransition(from, to AlertStatus) {
	if h.OnTransition != nil {
		h.OnTransition(from, to)
	}
}

func (h ServiceHooks) onNarrative(outcome string, seconds float64) {
	if h.OnNarrative != nil {
		h.OnNarrative(outcome, seconds)
	}
}

// Metrics holds Prometheus metrics for the investigation subsystem.
type Metrics struct {
	MutationsTotal    *prometheus.CounterVec
	TransitionsTotal  *prometheus.CounterVec
	NarrativesTotal   *prometheus.CounterVec
	NarrativeDuration prometheus.Histogram
}

// NewMetrics registers and returns investigation metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risklens_alert_mutations_total",
			Help: "Alert mutation attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		TransitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risklens_alert_transitions_total",
			Help: "Committed alert status transitions.",
		}, []string{"from", "to"}),
		NarrativesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risklens_narratives_total",
			Help: "Narrative generation runs by outcome.",
		}, []string{"outcome"}),
		NarrativeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "risklens_narrative_duration_seconds",
			Help:    "Duration of narrative generation runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s .. ~64s
		}),
	}

	reg.MustRegister(
		m.MutationsTotal,
		m.TransitionsTotal,
		m.NarrativesTotal,
		m.NarrativeDuration,
	)

	return m
}

// Hooks returns a ServiceHooks that increments the corresponding metrics.
func (m *Metrics) Hooks() ServiceHooks {
	return ServiceHooks{
		OnMutation: func(op, outcome string) {
			m.MutationsTotal.WithLabelValues(op, outcome).Inc()
		},
		OnTransition: func(from, to AlertStatus) {
			m.TransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
		},
		OnNarrative: func(outcome string, seconds float64) {
			m.NarrativesTotal.WithLabelValues(outcome).Inc()
			m.NarrativeDuration.Observe(seconds)
		},
	}
}
