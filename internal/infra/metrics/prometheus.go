package metrics

import (
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inventory"

// Sink turns events into prometheus counters named inventory_<event>_total.
// The label set of the first event of a name fixes that counter's labels;
// later events with other label names are counted as dropped.
type Sink struct {
	reg     prometheus.Registerer
	mu      sync.Mutex
	vecs    map[string]*prometheus.CounterVec
	dropped prometheus.Counter
}

func NewSink(reg prometheus.Registerer) *Sink {
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "metric_events_dropped_total",
		Help:      "Events that could not be recorded because of a label mismatch.",
	})
	reg.MustRegister(dropped)
	return &Sink{reg: reg, vecs: map[string]*prometheus.CounterVec{}, dropped: dropped}
}

func (s *Sink) RecordEvent(name string, labels map[string]string) {
	vec, err := s.vec(name, labels)
	if err != nil {
		s.dropped.Inc()
		return
	}
	c, err := vec.GetMetricWith(prometheus.Labels(labels))
	if err != nil {
		s.dropped.Inc()
		return
	}
	c.Inc()
}

func (s *Sink) vec(name string, labels map[string]string) (*prometheus.CounterVec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.vecs[name]; ok {
		return v, nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	v := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name + "_total",
		Help:      "Count of " + name + " events.",
	}, keys)
	if err := s.reg.Register(v); err != nil {
		return nil, err
	}
	s.vecs[name] = v
	return v, nil
}
