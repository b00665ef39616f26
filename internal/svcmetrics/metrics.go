// Package svcmetrics instruments each service transport with a gauge for how
// deep the pending-message table is running and counters for how often
// entries time out and how often responses are dropped. No HTTP /metrics
// endpoint lives here — that's the external server wrapper's job.
package svcmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a per-service set of collectors, labeled by service name so a
// single registry can hold one Metrics per Transport.
type Metrics struct {
	pendingDepth prometheus.Gauge
	timeouts     prometheus.Counter
	drops        prometheus.Counter
}

// New registers a labeled Metrics instance against reg. Callers typically
// pass prometheus.DefaultRegisterer or a test-local registry.
func New(reg prometheus.Registerer, service string) *Metrics {
	m := &Metrics{
		pendingDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "nacctl",
			Subsystem:   "transport",
			Name:        "pending_depth",
			Help:        "Number of in-flight requests awaiting a correlated response.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "nacctl",
			Subsystem:   "transport",
			Name:        "timeouts_total",
			Help:        "Pending requests purged after exceeding the service deadline.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "nacctl",
			Subsystem:   "transport",
			Name:        "drops_total",
			Help:        "Responses dropped: decode failure or unmatched message index.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.pendingDepth, m.timeouts, m.drops)
	}
	return m
}

// ObservePendingDepth records the current size of the pending-message table.
func (m *Metrics) ObservePendingDepth(n int) {
	if m == nil {
		return
	}
	m.pendingDepth.Set(float64(n))
}

// IncTimeout records one pending-table entry purged by the deadline sweep.
func (m *Metrics) IncTimeout() {
	if m == nil {
		return
	}
	m.timeouts.Inc()
}

// IncDrop records one response dropped for decode failure or an unmatched
// message index.
func (m *Metrics) IncDrop() {
	if m == nil {
		return
	}
	m.drops.Inc()
}
