// Package metrics defines the Prometheus collectors of the compile and
// evaluation pipeline. Collectors are registered on a caller-supplied
// registerer so tests can use a private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compile results.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Metrics holds every collector. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Compilations  *prometheus.CounterVec
	Scheduled     prometheus.Counter
	Evaluations   *prometheus.CounterVec
	DrainDuration prometheus.Histogram
	QueueDepth    prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Compilations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "texgraph_shader_compilations_total",
			Help: "Shader source builds by mode and result",
		}, []string{"mode", "result"}),
		Scheduled: f.NewCounter(prometheus.CounterOpts{
			Name: "texgraph_scheduled_nodes_total",
			Help: "Nodes enqueued for re-evaluation",
		}),
		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "texgraph_evaluations_total",
			Help: "Node evaluations by result",
		}, []string{"result"}),
		DrainDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "texgraph_drain_duration_seconds",
			Help:    "Time to drain the dirty queue",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "texgraph_dirty_queue_depth",
			Help: "Nodes waiting in the dirty queue",
		}),
	}
}

// Compiled records one shader build.
func (m *Metrics) Compiled(mode string, ok bool) {
	if m == nil {
		return
	}
	m.Compilations.WithLabelValues(mode, result(ok)).Inc()
}

// Enqueued records a scheduled node and the resulting queue depth.
func (m *Metrics) Enqueued(depth int) {
	if m == nil {
		return
	}
	m.Scheduled.Inc()
	m.QueueDepth.Set(float64(depth))
}

// Evaluated records one node evaluation and the remaining queue depth.
func (m *Metrics) Evaluated(ok bool, depth int) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(result(ok)).Inc()
	m.QueueDepth.Set(float64(depth))
}

// Drained records the duration of one drain in seconds.
func (m *Metrics) Drained(seconds float64) {
	if m == nil {
		return
	}
	m.DrainDuration.Observe(seconds)
}

func result(ok bool) string {
	if ok {
		return ResultOK
	}
	return ResultFailed
}
