// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for stream teardown, batch failure fan-out,
// standalone wrappers and engine tasks. A nil *Metrics records nothing.

package control

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values.
const (
	DestroyInline    = "inline"
	DestroyEngine    = "engine"
	VariantQueue     = "queue"
	VariantImmediate = "immediate"
	VariantCombiner  = "combiner"
	KindTransportOp  = "transport_op"
	KindStreamBatch  = "stream_batch"
)

// Metrics holds the collectors.
type Metrics struct {
	streamsDestroyed *prometheus.CounterVec
	batchFailures    *prometheus.CounterVec
	batchCompletions *prometheus.CounterVec
	standaloneLive   *prometheus.GaugeVec
	engineTasks      *prometheus.CounterVec
}

// NewMetrics creates the collectors under namespace and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		streamsDestroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_destroyed_total",
			Help:      "Stream destroy callbacks dispatched, by path (inline or engine).",
		}, []string{"path"}),
		batchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_failures_total",
			Help:      "Stream op batches failed, by propagation variant.",
		}, []string{"variant"}),
		batchCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_completions_total",
			Help:      "Completions produced while failing batches, by phase.",
		}, []string{"phase"}),
		standaloneLive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "standalone_wrappers_live",
			Help:      "Standalone op wrappers allocated and not yet completed.",
		}, []string{"kind"}),
		engineTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_tasks_total",
			Help:      "Engine tasks by outcome.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{
		m.streamsDestroyed, m.batchFailures, m.batchCompletions, m.standaloneLive, m.engineTasks,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// StreamDestroyed counts a destroy dispatched on path.
func (m *Metrics) StreamDestroyed(path string) {
	if m == nil {
		return
	}
	m.streamsDestroyed.WithLabelValues(path).Inc()
}

// BatchFailed counts one failed batch and its completions per phase.
func (m *Metrics) BatchFailed(variant string, phases []string) {
	if m == nil {
		return
	}
	m.batchFailures.WithLabelValues(variant).Inc()
	for _, p := range phases {
		m.batchCompletions.WithLabelValues(p).Inc()
	}
}

// StandaloneAllocated increments the live wrapper gauge.
func (m *Metrics) StandaloneAllocated(kind string) {
	if m == nil {
		return
	}
	m.standaloneLive.WithLabelValues(kind).Inc()
}

// StandaloneReleased decrements the live wrapper gauge.
func (m *Metrics) StandaloneReleased(kind string) {
	if m == nil {
		return
	}
	m.standaloneLive.WithLabelValues(kind).Dec()
}

// EngineTask counts an engine task outcome.
func (m *Metrics) EngineTask(result string) {
	if m == nil {
		return
	}
	m.engineTasks.WithLabelValues(result).Inc()
}
