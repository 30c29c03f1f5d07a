package skillgraph

import (
	"context"
	"sync"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/scheduler"
)

// maxTrackedSkills caps the finished skills a workspace remembers.
const maxTrackedSkills = 64

// SkillStatus is a snapshot of one skill.
type SkillStatus struct {
	ID      string   `json:"id"`
	State   string   `json:"state"`
	Frame   int      `json:"frame"`
	Running []string `json:"running,omitempty"`
}

// StatusOf snapshots s.
func StatusOf(s *scheduler.Skill) SkillStatus {
	return SkillStatus{
		ID:      s.ID,
		State:   s.State().String(),
		Frame:   s.Frame(),
		Running: s.Running(),
	}
}

// Workspace shares one graph and its own scheduler between goroutines.
// Every access goes through a single mutex; the graph and scheduler
// themselves stay single-owner.
type Workspace struct {
	engine *Engine

	mu     sync.Mutex
	graph  *graph.Graph
	sched  *scheduler.Scheduler
	skills map[string]*scheduler.Skill
	order  []string

	subMu  sync.Mutex
	subs   map[int]chan domain.GraphChange
	nextID int
}

// NewWorkspace wraps g. The workspace installs its own graph hooks to feed
// change subscribers.
func (e *Engine) NewWorkspace(g *graph.Graph) *Workspace {
	w := &Workspace{
		engine: e,
		graph:  g,
		sched: scheduler.New(
			scheduler.WithLogger(e.logger),
			scheduler.WithHooks(e.hooks),
			scheduler.WithMaxDepth(e.maxDepth),
		),
		skills: make(map[string]*scheduler.Skill),
		subs:   make(map[int]chan domain.GraphChange),
	}
	g.SetHooks(graph.Hooks{OnGraphChanges: w.broadcast})
	return w
}

// Engine returns the engine the workspace belongs to.
func (w *Workspace) Engine() *Engine { return w.engine }

// Do runs fn with exclusive access to the graph.
func (w *Workspace) Do(fn func(g *graph.Graph) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.graph)
}

// Document snapshots the graph.
func (w *Workspace) Document() (*domain.GraphDocument, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.graph.Document()
}

// Save persists the graph through the engine store.
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.engine.Save(ctx, w.graph)
}

// StartSkill starts a skill that later Tick calls advance. The skill keeps
// the values of ctx but not its cancellation, since it outlives the caller.
func (w *Workspace) StartSkill(ctx context.Context) (SkillStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, err := w.sched.Start(context.WithoutCancel(ctx), w.graph)
	if err != nil {
		return SkillStatus{}, err
	}
	w.track(s)
	return StatusOf(s), nil
}

// Tick advances every running skill once and returns all tracked skills.
func (w *Workspace) Tick() []SkillStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sched.Tick()
	return w.statuses()
}

// Skills returns the tracked skills, oldest first.
func (w *Workspace) Skills() []SkillStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statuses()
}

// RunSkill starts a skill and drives it to completion while holding the
// workspace, so nothing else observes the graph mid-run. Scheduled skills
// are not ticked by it.
func (w *Workspace) RunSkill(ctx context.Context, opts RunOptions) (SkillStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.sched.NewSkill(ctx, w.graph)
	if err := s.Start(); err != nil {
		return SkillStatus{}, err
	}
	w.track(s)
	err := drive(ctx, s, opts)
	return StatusOf(s), err
}

// Subscribe returns a channel of structural graph changes and a function
// that cancels the subscription. Slow subscribers miss changes rather than
// block the graph.
func (w *Workspace) Subscribe() (<-chan domain.GraphChange, func()) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	id := w.nextID
	w.nextID++
	ch := make(chan domain.GraphChange, 32)
	w.subs[id] = ch
	return ch, func() {
		w.subMu.Lock()
		defer w.subMu.Unlock()
		if _, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(ch)
		}
	}
}

func (w *Workspace) broadcast(c domain.GraphChange) {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	for _, ch := range w.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func (w *Workspace) track(s *scheduler.Skill) {
	w.skills[s.ID] = s
	w.order = append(w.order, s.ID)
	for len(w.order) > maxTrackedSkills {
		oldest := w.skills[w.order[0]]
		if oldest.State() == scheduler.Running {
			break
		}
		delete(w.skills, w.order[0])
		w.order = w.order[1:]
	}
}

func (w *Workspace) statuses() []SkillStatus {
	out := make([]SkillStatus, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, StatusOf(w.skills[id]))
	}
	return out
}
