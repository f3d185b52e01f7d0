package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	WalletConnects      prometheus.Counter
	Registrations       *prometheus.CounterVec
	FallbackReads       prometheus.Counter
	RemoteWriteFailures prometheus.Counter
	StatusCheckSeconds  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		WalletConnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "evidgate_wallet_connects_total",
			Help: "Total number of successful wallet connections",
		}),
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "evidgate_registrations_total",
			Help: "Total number of completed registrations by role",
		}, []string{"role"}),
		FallbackReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "evidgate_local_fallback_reads_total",
			Help: "Reads answered by the local tier after a remote failure",
		}),
		RemoteWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "evidgate_remote_write_failures_total",
			Help: "Best-effort remote writes that were swallowed",
		}),
		StatusCheckSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "evidgate_status_check_duration_seconds",
			Help:    "Latency of registration status checks",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
	}
}

// IncrementWalletConnects increments the wallet connection counter by 1.
func (m *Metrics) IncrementWalletConnects() {
	if m != nil {
		m.WalletConnects.Inc()
	}
}

// IncrementRegistrations increments the registration counter for a role.
func (m *Metrics) IncrementRegistrations(role string) {
	if m != nil {
		m.Registrations.WithLabelValues(role).Inc()
	}
}

// IncrementFallbackReads increments the local fallback read counter by 1.
func (m *Metrics) IncrementFallbackReads() {
	if m != nil {
		m.FallbackReads.Inc()
	}
}

// IncrementRemoteWriteFailures increments the swallowed remote write counter.
func (m *Metrics) IncrementRemoteWriteFailures() {
	if m != nil {
		m.RemoteWriteFailures.Inc()
	}
}

// ObserveStatusCheck records the latency of one status check.
func (m *Metrics) ObserveStatusCheck(seconds float64) {
	if m != nil {
		m.StatusCheckSeconds.Observe(seconds)
	}
}
