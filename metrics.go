package smt

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds optional Prometheus instrumentation for a Tree. A nil
// *Metrics is always safe to use: every observe method returns early on
// a nil receiver, so instrumentation is strictly opt-in.
type Metrics struct {
	updates      prometheus.Counter
	batchUpdates prometheus.Counter
	batchSize    prometheus.Histogram
	proofs       prometheus.Counter
}

// NewMetrics registers a Metrics set on reg. reg may be
// prometheus.DefaultRegisterer, or a dedicated registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smt",
			Name:      "updates_total",
			Help:      "Number of single-key Update calls.",
		}),
		batchUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smt",
			Name:      "batch_updates_total",
			Help:      "Number of UpdateAll calls.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smt",
			Name:      "batch_update_size",
			Help:      "Number of key/value pairs per UpdateAll call.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		proofs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "smt",
			Name:      "merkle_proofs_total",
			Help:      "Number of MerkleProof calls.",
		}),
	}
	reg.MustRegister(m.updates, m.batchUpdates, m.batchSize, m.proofs)
	return m
}

func (m *Metrics) observeUpdate() {
	if m == nil {
		return
	}
	m.updates.Inc()
}

func (m *Metrics) observeBatchUpdate(size int) {
	if m == nil {
		return
	}
	m.batchUpdates.Inc()
	m.batchSize.Observe(float64(size))
}

func (m *Metrics) observeProof() {
	if m == nil {
		return
	}
	m.proofs.Inc()
}
