package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestSweepRecords(t *testing.T) {
	m := NewSweep("regtest")
	start := time.Now().Add(-time.Second)

	if inc := delta(t, handshakeAttemptsTotal.WithLabelValues("regtest", "success", "none"), func() {
		m.Observe(true, "", start)
	}); inc != 1 {
		t.Fatalf("expected success counter increment, got %v", inc)
	}

	if inc := delta(t, handshakeAttemptsTotal.WithLabelValues("regtest", "failure", "timeout"), func() {
		m.Observe(false, "timeout", start)
	}); inc != 1 {
		t.Fatalf("expected failure counter increment, got %v", inc)
	}

	m.Observe(false, "protocol", start)
}

func TestSweepDefaultsUnknownNetwork(t *testing.T) {
	m := NewSweep("")
	start := time.Now()

	if inc := delta(t, handshakeAttemptsTotal.WithLabelValues("unknown", "failure", "connect"), func() {
		m.Observe(false, "connect", start)
	}); inc != 1 {
		t.Fatalf("expected unknown-network counter increment, got %v", inc)
	}
}
