package scheduler

import (
	"context"
	"log/slog"

	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
)

// Scheduler owns the skills it started and advances them one tick at a
// time. It is not safe for concurrent use.
type Scheduler struct {
	logger   *slog.Logger
	hooks    domain.SkillHooks
	maxDepth int
	skills   []*Skill
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.SkillHooks) Option {
	return func(s *Scheduler) { s.hooks = h }
}

// WithMaxDepth bounds same-call completion chains.
func WithMaxDepth(depth int) Option {
	return func(s *Scheduler) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// New creates a scheduler with no skills.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:   logging.NewNop(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSkill creates a skill for g without starting it.
func (s *Scheduler) NewSkill(ctx context.Context, g *graph.Graph) *Skill {
	return newSkill(ctx, g, s)
}

// Start creates and starts a skill for g. Skills still running after Start
// are kept and advanced by Tick.
func (s *Scheduler) Start(ctx context.Context, g *graph.Graph) (*Skill, error) {
	skill := newSkill(ctx, g, s)
	if err := skill.Start(); err != nil {
		return nil, err
	}
	if skill.State() == Running {
		s.skills = append(s.skills, skill)
	}
	return skill, nil
}

// Tick updates every running skill once and forgets the finished ones.
func (s *Scheduler) Tick() {
	for _, skill := range append([]*Skill(nil), s.skills...) {
		skill.Update()
	}
	kept := s.skills[:0]
	for _, skill := range s.skills {
		if skill.State() == Running {
			kept = append(kept, skill)
		}
	}
	clear(s.skills[len(kept):])
	s.skills = kept
}

// Running returns the skills still in flight.
func (s *Scheduler) Running() []*Skill {
	return append([]*Skill(nil), s.skills...)
}

// Idle reports whether no skill is in flight.
func (s *Scheduler) Idle() bool { return len(s.skills) == 0 }

// Timeline lists the GUIDs reachable from the entry node over control
// edges, breadth first. Every control output is followed, whatever a
// branch would choose at run time.
func Timeline(g *graph.Graph) []string {
	entry, ok := g.EntryNode()
	if !ok {
		return nil
	}
	seen := map[*graph.Node]bool{entry: true}
	queue := []*graph.Node{entry}
	var out []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, n.GUID)
		for _, p := range n.OutputPorts() {
			if !p.Control {
				continue
			}
			for _, e := range p.Edges() {
				next := e.InputNode()
				if next == nil || seen[next] {
					continue
				}
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return out
}
