package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/skillgraph/pkg/domain"
)

const tracerName = "github.com/aretw0/skillgraph"

type nodeKey struct {
	skill string
	node  string
}

// Tracing opens a span per skill and a child span per node run.
type Tracing struct {
	tracer trace.Tracer

	mu     sync.Mutex
	skills map[string]skillSpan
	nodes  map[nodeKey]trace.Span
}

type skillSpan struct {
	ctx  context.Context
	span trace.Span
}

// NewTracing creates tracing hooks backed by tp.
func NewTracing(tp trace.TracerProvider) *Tracing {
	return &Tracing{
		tracer: tp.Tracer(tracerName),
		skills: make(map[string]skillSpan),
		nodes:  make(map[nodeKey]trace.Span),
	}
}

// Hooks returns the scheduler hooks.
func (t *Tracing) Hooks() domain.SkillHooks {
	return domain.SkillHooks{
		OnSkillStart:  t.skillStart,
		OnSkillFinish: t.skillFinish,
		OnTick: func(_ context.Context, e *domain.SkillEvent) {
			t.mu.Lock()
			defer t.mu.Unlock()
			if s, ok := t.skills[e.SkillID]; ok {
				s.span.AddEvent("tick", trace.WithAttributes(attribute.Int("frame", e.Frame)))
			}
		},
		OnNodeStart:  t.nodeStart,
		OnNodeFinish: t.nodeFinish,
		OnNodeError:  t.nodeError,
	}
}

func (t *Tracing) skillStart(ctx context.Context, e *domain.SkillEvent) {
	ctx, span := t.tracer.Start(ctx, "skill",
		trace.WithTimestamp(e.Timestamp),
		trace.WithAttributes(
			attribute.String("skill.id", e.SkillID),
			attribute.String("graph.id", e.GraphID),
		),
	)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.skills[e.SkillID] = skillSpan{ctx: ctx, span: span}
}

func (t *Tracing) skillFinish(_ context.Context, e *domain.SkillEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, span := range t.nodes {
		if k.skill == e.SkillID {
			span.End(trace.WithTimestamp(e.Timestamp))
			delete(t.nodes, k)
		}
	}
	s, ok := t.skills[e.SkillID]
	if !ok {
		return
	}
	s.span.SetAttributes(attribute.Int("skill.frames", e.Frame))
	s.span.End(trace.WithTimestamp(e.Timestamp))
	delete(t.skills, e.SkillID)
}

func (t *Tracing) nodeStart(ctx context.Context, e *domain.NodeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := nodeKey{e.SkillID, e.NodeGUID}
	if prev, ok := t.nodes[key]; ok {
		prev.AddEvent("restarted")
		prev.End(trace.WithTimestamp(e.Timestamp))
	}
	if s, ok := t.skills[e.SkillID]; ok {
		ctx = s.ctx
	}
	_, span := t.tracer.Start(ctx, "node "+e.NodeType,
		trace.WithTimestamp(e.Timestamp),
		trace.WithAttributes(
			attribute.String("node.guid", e.NodeGUID),
			attribute.String("node.type", e.NodeType),
			attribute.Int("frame", e.Frame),
		),
	)
	t.nodes[key] = span
}

func (t *Tracing) nodeFinish(_ context.Context, e *domain.NodeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := nodeKey{e.SkillID, e.NodeGUID}
	if span, ok := t.nodes[key]; ok {
		span.SetAttributes(attribute.Int("frame.finished", e.Frame))
		span.End(trace.WithTimestamp(e.Timestamp))
		delete(t.nodes, key)
	}
}

func (t *Tracing) nodeError(ctx context.Context, e *domain.NodeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := nodeKey{e.SkillID, e.NodeGUID}
	span, ok := t.nodes[key]
	if !ok {
		// Hooks attached mid-run see errors for nodes they never saw start.
		if s, found := t.skills[e.SkillID]; found {
			ctx = s.ctx
		}
		_, span = t.tracer.Start(ctx, "node "+e.NodeType, trace.WithTimestamp(e.Timestamp))
	}
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	}
	span.End(trace.WithTimestamp(e.Timestamp))
	delete(t.nodes, key)
}
