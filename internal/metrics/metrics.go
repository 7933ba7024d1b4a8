// Package metrics exposes Prometheus counters for the wallet engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's instrumentation. A nil *Metrics is valid and
// records nothing, so tests that don't care about counters can pass nil.
type Metrics struct {
	walletComputations *prometheus.CounterVec
	walletFailures     prometheus.Counter
	awards             *prometheus.CounterVec
	breakdowns         prometheus.Counter
}

// New registers the engine metrics on the given registerer. Each server
// instance owns its registry, so tests can create isolated instances.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		walletComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kidwallet_wallet_computations_total",
			Help: "Wallet computations by the data path that served them.",
		}, []string{"path"}),
		walletFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kidwallet_wallet_failures_total",
			Help: "Wallet computations where every data path failed.",
		}),
		awards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kidwallet_awards_total",
			Help: "Point awards by outcome (awarded, duplicate, fallback).",
		}, []string{"outcome"}),
		breakdowns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kidwallet_breakdowns_total",
			Help: "Earnings breakdown computations.",
		}),
	}
	reg.MustRegister(m.walletComputations, m.walletFailures, m.awards, m.breakdowns)
	return m
}

func (m *Metrics) WalletComputed(path string) {
	if m == nil {
		return
	}
	m.walletComputations.WithLabelValues(path).Inc()
}

func (m *Metrics) WalletFailed() {
	if m == nil {
		return
	}
	m.walletFailures.Inc()
}

func (m *Metrics) AwardRecorded(outcome string) {
	if m == nil {
		return
	}
	m.awards.WithLabelValues(outcome).Inc()
}

func (m *Metrics) BreakdownComputed() {
	if m == nil {
		return
	}
	m.breakdowns.Inc()
}
