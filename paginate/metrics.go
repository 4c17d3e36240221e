package paginate

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Cache lookup outcomes reported by Metrics.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Cache populate results reported by Metrics.
const (
	PopulateStored       = "stored"
	PopulateSkippedEmpty = "skipped_empty"
	PopulateFailed       = "failed"
)

// Metrics counts cache and query activity per model. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	lookups    *prometheus.CounterVec
	populates  *prometheus.CounterVec
	listCalls  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pager",
			Name:      "cache_lookups_total",
			Help:      "Cached list lookups by outcome.",
		}, []string{"model", "outcome"}),
		populates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pager",
			Name:      "cache_populates_total",
			Help:      "Cache writes attempted after a miss, by result.",
		}, []string{"model", "result"}),
		listCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pager",
			Name:      "list_calls_total",
			Help:      "List requests handed to the executor, including ones its query cache answers.",
		}, []string{"model"}),
	}

	for _, c := range []prometheus.Collector{m.lookups, m.populates, m.listCalls} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "paginate: register metrics")
		}
	}
	return m, nil
}

func (m *Metrics) lookup(model, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(model, outcome).Inc()
}

func (m *Metrics) populate(model, result string) {
	if m == nil {
		return
	}
	m.populates.WithLabelValues(model, result).Inc()
}

func (m *Metrics) listCall(model string) {
	if m == nil {
		return
	}
	m.listCalls.WithLabelValues(model).Inc()
}
