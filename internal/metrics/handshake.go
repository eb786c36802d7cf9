// Package metrics exposes prometheus collectors for the handshake sweep.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	handshakeAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "handshake_scanner",
		Subsystem: "sweep",
		Name:      "attempts_total",
		Help:      "Count of handshake attempts by terminal result.",
	}, []string{"network", "result", "reason"})

	handshakeAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "handshake_scanner",
		Subsystem: "sweep",
		Name:      "attempt_duration_seconds",
		Help:      "Duration of handshake attempts.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "result"})
)

// Sweep tracks per-attempt handshake metrics for one network.
type Sweep struct {
	network string
}

// NewSweep constructs a metrics collector for handshake attempts.
func NewSweep(network string) *Sweep {
	if network == "" {
		network = "unknown"
	}
	return &Sweep{network: network}
}

// Observe records a single attempt outcome and duration.
func (m *Sweep) Observe(success bool, reason string, started time.Time) {
	result := "failure"
	if success {
		result = "success"
	}
	if reason == "" {
		reason = "none"
	}

	handshakeAttemptsTotal.WithLabelValues(m.network, result, reason).Inc()
	handshakeAttemptDuration.WithLabelValues(m.network, result).Observe(time.Since(started).Seconds())
}
