package cache

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels recorded by Metrics.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeInvalid = "invalid"
	OutcomeSet     = "set"
	OutcomeDelete  = "delete"
	OutcomeError   = "error"
)

// Metrics counts cache operations per entity prefix and outcome.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics builds the cache counters and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contacts",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache operations by entity prefix and outcome.",
		}, []string{"prefix", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations)
	}
	return m
}

// Observe increments the counter for prefix and outcome.
func (m *Metrics) Observe(prefix, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(prefix, outcome).Inc()
}

// Counter exposes the counter for prefix and outcome, mainly for tests.
func (m *Metrics) Counter(prefix, outcome string) prometheus.Counter {
	return m.operations.WithLabelValues(prefix, outcome)
}

// Sizer is implemented by backends that can report how many entries they
// hold.
type Sizer interface {
	Size() int
}

// RegisterEntriesGauge exposes the entry count of s as
// contacts_cache_entries on reg.
func RegisterEntriesGauge(reg prometheus.Registerer, s Sizer) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "contacts",
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Entries held by the in-process cache backend, expired or not.",
	}, func() float64 { return float64(s.Size()) }))
}
