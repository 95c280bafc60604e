package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink implements Sink backed by Prometheus counters.
type PromSink struct {
	mutations  *prometheus.CounterVec
	writes     *prometheus.CounterVec
	superseded prometheus.Counter
}

// NewPromSink creates a PromSink and registers its collectors with the given
// registerer.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	s := &PromSink{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_board_mutations_total",
			Help: "Optimistic local mutations applied, by gesture kind.",
		}, []string{"kind"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_board_writes_total",
			Help: "Persistence writes completed, by operation and outcome.",
		}, []string{"op", "outcome"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_board_writes_superseded_total",
			Help: "Pending writes cancelled by a newer mutation for the same entry.",
		}),
	}
	for _, c := range []prometheus.Collector{s.mutations, s.writes, s.superseded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *PromSink) MutationApplied(kind string) {
	s.mutations.WithLabelValues(kind).Inc()
}

func (s *PromSink) WriteCompleted(op, outcome string) {
	s.writes.WithLabelValues(op, outcome).Inc()
}

func (s *PromSink) WriteSuperseded() {
	s.superseded.Inc()
}
