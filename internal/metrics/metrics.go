// Package metrics exposes Prometheus collectors for ledger operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records gateway operation counts and latencies.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	imbalanced prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "billsplit",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger gateway operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "billsplit",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Ledger gateway operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		imbalanced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "billsplit",
			Subsystem: "ledger",
			Name:      "imbalanced_transactions_total",
			Help:      "Allocation sets accepted with differing lent and borrow totals.",
		}),
	}
	reg.MustRegister(m.operations, m.duration, m.imbalanced)
	return m
}

// ObserveOperation records one gateway call. outcome is "ok" or an error kind.
func (m *Metrics) ObserveOperation(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveImbalance counts an allocation set accepted under the warn policy.
func (m *Metrics) ObserveImbalance() {
	if m == nil {
		return
	}
	m.imbalanced.Inc()
}
