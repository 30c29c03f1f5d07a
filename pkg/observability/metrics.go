package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// Metrics holds the Prometheus collectors fed by scheduler hooks.
type Metrics struct {
	NodeStarts     *prometheus.CounterVec
	NodeFinishes   *prometheus.CounterVec
	NodeErrors     *prometheus.CounterVec
	SkillsStarted  prometheus.Counter
	SkillsFinished prometheus.Counter
	SkillsRunning  prometheus.Gauge
	Ticks          prometheus.Counter
	SkillFrames    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillgraph_node_starts_total",
			Help: "Nodes started, by node type.",
		}, []string{"type"}),
		NodeFinishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillgraph_node_finishes_total",
			Help: "Nodes finished, by node type.",
		}, []string{"type"}),
		NodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillgraph_node_errors_total",
			Help: "Node lifecycle calls that failed or panicked, by node type.",
		}, []string{"type"}),
		SkillsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillgraph_skills_started_total",
			Help: "Skills started.",
		}),
		SkillsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillgraph_skills_finished_total",
			Help: "Skills finished.",
		}),
		SkillsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skillgraph_skills_running",
			Help: "Skills currently in flight.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillgraph_ticks_total",
			Help: "Skill updates performed.",
		}),
		SkillFrames: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillgraph_skill_frames",
			Help:    "Ticks a skill took to finish.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	for _, c := range []prometheus.Collector{
		m.NodeStarts, m.NodeFinishes, m.NodeErrors,
		m.SkillsStarted, m.SkillsFinished, m.SkillsRunning,
		m.Ticks, m.SkillFrames,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns scheduler hooks that update the collectors.
func (m *Metrics) Hooks() domain.SkillHooks {
	return domain.SkillHooks{
		OnSkillStart: func(context.Context, *domain.SkillEvent) {
			m.SkillsStarted.Inc()
			m.SkillsRunning.Inc()
		},
		OnSkillFinish: func(_ context.Context, e *domain.SkillEvent) {
			m.SkillsFinished.Inc()
			m.SkillsRunning.Dec()
			m.SkillFrames.Observe(float64(e.Frame))
		},
		OnTick: func(context.Context, *domain.SkillEvent) {
			m.Ticks.Inc()
		},
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeStarts.WithLabelValues(e.NodeType).Inc()
		},
		OnNodeFinish: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeFinishes.WithLabelValues(e.NodeType).Inc()
		},
		OnNodeError: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeErrors.WithLabelValues(e.NodeType).Inc()
		},
	}
}
