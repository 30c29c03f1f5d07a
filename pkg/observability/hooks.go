package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// Combine returns hooks that call every non-nil callback of each set, in
// argument order.
func Combine(sets ...domain.SkillHooks) domain.SkillHooks {
	var out domain.SkillHooks
	for _, h := range sets {
		out.OnSkillStart = chainSkill(out.OnSkillStart, h.OnSkillStart)
		out.OnSkillFinish = chainSkill(out.OnSkillFinish, h.OnSkillFinish)
		out.OnTick = chainSkill(out.OnTick, h.OnTick)
		out.OnNodeStart = chainNode(out.OnNodeStart, h.OnNodeStart)
		out.OnNodeFinish = chainNode(out.OnNodeFinish, h.OnNodeFinish)
		out.OnNodeError = chainNode(out.OnNodeError, h.OnNodeError)
	}
	return out
}

func chainSkill(a, b func(context.Context, *domain.SkillEvent)) func(context.Context, *domain.SkillEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.SkillEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainNode(a, b func(context.Context, *domain.NodeEvent)) func(context.Context, *domain.NodeEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *domain.NodeEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LogHooks logs skill transitions at Info and node failures at Error.
// Node starts and finishes are logged at Debug.
func LogHooks(logger *slog.Logger) domain.SkillHooks {
	return domain.SkillHooks{
		OnSkillStart: func(ctx context.Context, e *domain.SkillEvent) {
			logger.InfoContext(ctx, "skill started", "skill", e.SkillID, "graph", e.GraphID)
		},
		OnSkillFinish: func(ctx context.Context, e *domain.SkillEvent) {
			logger.InfoContext(ctx, "skill finished", "skill", e.SkillID, "graph", e.GraphID, "frames", e.Frame)
		},
		OnNodeStart: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node started", "skill", e.SkillID, "node", e.NodeGUID, "type", e.NodeType, "frame", e.Frame)
		},
		OnNodeFinish: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node finished", "skill", e.SkillID, "node", e.NodeGUID, "type", e.NodeType, "frame", e.Frame)
		},
		OnNodeError: func(ctx context.Context, e *domain.NodeEvent) {
			logger.ErrorContext(ctx, "node failed", "skill", e.SkillID, "node", e.NodeGUID, "type", e.NodeType, "frame", e.Frame, "err", e.Err)
		},
	}
}
