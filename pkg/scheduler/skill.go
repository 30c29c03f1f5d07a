package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
)

// State is the lifecycle of a skill.
type State int

const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "not_started"
	}
}

// DefaultMaxDepth bounds the chain of nodes that may complete inside a
// single call before propagation is cut off.
const DefaultMaxDepth = 4096

// Skill is one running walk over a graph. Nodes that are in flight live in
// the running set; nodes discovered during a tick wait in the ready set and
// are promoted when the tick ends, so no node is started and updated in the
// same tick.
type Skill struct {
	ID string

	ctx    context.Context
	graph  *graph.Graph
	logger *slog.Logger
	hooks  domain.SkillHooks

	state State
	frame int

	running *nodeSet
	ready   *nodeSet
	owner   map[*graph.Node]*nodeSet

	inTick   bool
	starting bool
	started map[*graph.Node]struct{}
	depth   int
	maxDep  int

	onFinish []func(*Skill)
}

func newSkill(ctx context.Context, g *graph.Graph, s *Scheduler) *Skill {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Skill{
		ID:      uuid.NewString(),
		ctx:     ctx,
		graph:   g,
		logger:  s.logger,
		hooks:   s.hooks,
		running: newNodeSet("running"),
		ready:   newNodeSet("ready"),
		owner:   make(map[*graph.Node]*nodeSet),
		started: make(map[*graph.Node]struct{}),
		maxDep:  s.maxDepth,
	}
}

// Graph returns the graph the skill walks.
func (s *Skill) Graph() *graph.Graph { return s.graph }

// State returns the lifecycle state.
func (s *Skill) State() State { return s.state }

// Frame returns the number of completed ticks.
func (s *Skill) Frame() int { return s.frame }

// Running returns the GUIDs of in-flight nodes.
func (s *Skill) Running() []string { return s.running.guids() }

// Ready returns the GUIDs of nodes staged for promotion.
func (s *Skill) Ready() []string { return s.ready.guids() }

// OnFinish registers a callback run exactly once when the skill finishes.
func (s *Skill) OnFinish(fn func(*Skill)) {
	s.onFinish = append(s.onFinish, fn)
}

// Start starts the entry node and walks its control output. Chains of nodes
// that finish on start drain before Start returns; if nothing is left in
// flight the skill finishes without a tick.
func (s *Skill) Start() error {
	switch s.state {
	case Running:
		return fmt.Errorf("skill %s: already running", s.ID)
	case Finished:
		return fmt.Errorf("skill %s: %w", s.ID, domain.ErrSkillFinished)
	}
	entry, ok := s.graph.EntryNode()
	if !ok {
		return fmt.Errorf("skill %s on graph %s: %w", s.ID, s.graph.ID, domain.ErrNoEntryNode)
	}

	s.state = Running
	s.starting = true
	s.logger.Debug("skill started", "skill", s.ID, "graph", s.graph.ID, "entry", entry.GUID)
	if s.hooks.OnSkillStart != nil {
		s.hooks.OnSkillStart(s.ctx, s.skillEvent())
	}

	s.pullInputs(entry)
	s.nodeHook(s.hooks.OnNodeStart, entry, nil)
	if err := entry.Start(); err != nil {
		s.report(entry, err)
	} else {
		for _, next := range entry.ControlSuccessors() {
			s.launch(next)
		}
	}

	s.starting = false
	s.finishIfIdle()
	return nil
}

// Update advances every running node by one tick, promotes the ready set
// and finishes the skill when nothing is left in flight.
func (s *Skill) Update() {
	if s.state != Running {
		return
	}

	s.inTick = true
	clear(s.started)
	for _, n := range s.running.snapshot() {
		if !s.running.contains(n) {
			continue
		}
		if _, fresh := s.started[n]; fresh {
			continue
		}
		if err := n.Update(); err != nil {
			s.report(n, err)
		}
	}

	for _, n := range s.ready.snapshot() {
		s.ready.remove(n)
		if s.owner[n] != s.ready {
			continue
		}
		s.running.add(n)
		s.owner[n] = s.running
	}
	s.inTick = false
	s.frame++

	if s.hooks.OnTick != nil {
		s.hooks.OnTick(s.ctx, s.skillEvent())
	}
	s.finishIfIdle()
}

// Finish is the completion signal nodes send through graph.Node.Finish.
// The node leaves the set that owns it and its control successors are
// started right away.
func (s *Skill) Finish(n *graph.Node) {
	set, ok := s.owner[n]
	if !ok {
		s.logger.Warn("finish from node not owned by skill", "skill", s.ID, "node", n.GUID)
		return
	}
	set.remove(n)
	delete(s.owner, n)
	n.Bind(nil)

	s.logger.Debug("node finished", "skill", s.ID, "node", n.GUID, "type", n.Type(), "frame", s.frame)
	s.nodeHook(s.hooks.OnNodeFinish, n, nil)

	if s.state != Running {
		return
	}
	for _, next := range n.ControlSuccessors() {
		s.launch(next)
	}
}

// Forget drops a node that was removed from the graph while in flight. Its
// successors are not walked.
func (s *Skill) Forget(n *graph.Node) {
	set, ok := s.owner[n]
	if !ok {
		return
	}
	set.remove(n)
	delete(s.owner, n)
	delete(s.started, n)
	s.logger.Debug("node removed while in flight", "skill", s.ID, "node", n.GUID)

	// Start and Update check for idleness on their own way out.
	if s.inTick || s.starting || s.depth > 0 {
		return
	}
	s.finishIfIdle()
}

// launch binds n to the skill, pulls its data inputs and starts it. A node
// already in flight is restarted in place; there is no join barrier.
func (s *Skill) launch(n *graph.Node) {
	if s.depth >= s.maxDep {
		s.logger.Error("completion chain too deep, dropping node", "skill", s.ID, "node", n.GUID, "depth", s.depth)
		return
	}
	s.depth++
	defer func() { s.depth-- }()

	if _, owned := s.owner[n]; owned {
		s.logger.Debug("node re-triggered while in flight", "skill", s.ID, "node", n.GUID)
	} else {
		target := s.running
		if s.inTick {
			target = s.ready
		}
		target.add(n)
		s.owner[n] = target
	}
	n.Bind(s)
	if s.inTick {
		s.started[n] = struct{}{}
	}

	s.pullInputs(n)
	s.nodeHook(s.hooks.OnNodeStart, n, nil)
	if err := n.Start(); err != nil {
		s.report(n, err)
	}
}

// report logs a node failure and drops the node without walking its
// successors. The rest of the skill carries on.
func (s *Skill) report(n *graph.Node, err error) {
	s.logger.Error("node failed", "skill", s.ID, "node", n.GUID, "type", n.Type(), "err", err)
	if set, ok := s.owner[n]; ok {
		set.remove(n)
		delete(s.owner, n)
	}
	n.Bind(nil)
	s.nodeHook(s.hooks.OnNodeError, n, err)
}

// pullInputs copies upstream values into n's connected data inputs.
// Sequential upstream nodes carry no value; data upstream nodes are
// evaluated first, recursively, each at most once per pull.
func (s *Skill) pullInputs(n *graph.Node) {
	s.pull(n, map[*graph.Node]bool{n: true})
}

func (s *Skill) pull(n *graph.Node, visited map[*graph.Node]bool) {
	for _, p := range n.InputPorts() {
		if p.Control || !p.Connected() {
			continue
		}
		e := p.Edges()[0]
		up, src := e.OutputNode(), e.OutputPort()
		if up == nil || src == nil {
			s.logger.Warn("data edge without resolved source", "skill", s.ID, "edge", e.GUID)
			continue
		}
		if up.IsSequential() {
			continue
		}
		if !visited[up] {
			visited[up] = true
			s.pull(up, visited)
			if err := up.ResolveOutputs(); err != nil {
				s.logger.Warn("upstream output not resolved", "skill", s.ID, "node", up.GUID, "err", err)
				continue
			}
		}
		if err := n.SetPortValue(p, up.Value(src.Key())); err != nil {
			s.logger.Warn("data pull rejected", "skill", s.ID, "node", n.GUID, "port", p.Key(), "err", err)
		}
	}
}

func (s *Skill) finishIfIdle() {
	if s.state != Running || s.running.len() > 0 || s.ready.len() > 0 {
		return
	}
	s.state = Finished
	s.logger.Debug("skill finished", "skill", s.ID, "graph", s.graph.ID, "frames", s.frame)
	if s.hooks.OnSkillFinish != nil {
		s.hooks.OnSkillFinish(s.ctx, s.skillEvent())
	}
	callbacks := s.onFinish
	s.onFinish = nil
	for _, fn := range callbacks {
		fn(s)
	}
}

func (s *Skill) skillEvent() *domain.SkillEvent {
	return &domain.SkillEvent{
		Timestamp: time.Now(),
		SkillID:   s.ID,
		GraphID:   s.graph.ID,
		Frame:     s.frame,
	}
}

func (s *Skill) nodeHook(fn func(context.Context, *domain.NodeEvent), n *graph.Node, err error) {
	if fn == nil {
		return
	}
	fn(s.ctx, &domain.NodeEvent{
		Timestamp: time.Now(),
		SkillID:   s.ID,
		NodeGUID:  n.GUID,
		NodeType:  n.Type(),
		Frame:     s.frame,
		Err:       err,
	})
}
