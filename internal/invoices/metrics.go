package invoices

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts lifecycle outcomes.
type Metrics struct {
	transitions *prometheus.CounterVec
	created     prometheus.Counter
}

// NewMetrics registers invoice counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finance_invoice_transitions_total",
			Help: "Invoice status transitions by action and outcome.",
		}, []string{"action", "outcome"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finance_invoices_created_total",
			Help: "Invoices created.",
		}),
	}
	reg.MustRegister(m.transitions, m.created)
	return m
}

func (m *Metrics) observeTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) observeCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}
