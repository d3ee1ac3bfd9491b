package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOperation("CreateTrip", "ok", 5*time.Millisecond)
	m.ObserveOperation("CreateTrip", "ok", 5*time.Millisecond)
	m.ObserveOperation("CreateTrip", "not_found", time.Millisecond)
	m.ObserveImbalance()

	if got := testutil.ToFloat64(m.operations.WithLabelValues("CreateTrip", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("CreateTrip", "not_found")); got != 1 {
		t.Errorf("not_found count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.imbalanced); got != 1 {
		t.Errorf("imbalanced = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("CreateTrip", "ok", time.Millisecond)
	m.ObserveImbalance()
}
