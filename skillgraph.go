package skillgraph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/pkg/adapters/memory"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/nodes"
	"github.com/aretw0/skillgraph/pkg/ports"
	"github.com/aretw0/skillgraph/pkg/scheduler"
)

// DefaultLockTTL bounds how long a crashed holder can keep a graph locked
// in a distributed locker.
const DefaultLockTTL = 30 * time.Second

// Engine is the high-level entry point for the library. It wires a node
// registry, a graph store, a locker and the scheduler configuration.
type Engine struct {
	store    ports.GraphStore
	locker   ports.Locker
	registry *graph.Registry
	logger   *slog.Logger
	hooks    domain.SkillHooks
	maxDepth int
	lockTTL  time.Duration

	sched *scheduler.Scheduler
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the graph store. Defaults to an in-memory store.
func WithStore(s ports.GraphStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithLocker sets the locker guarding saves and runs. Defaults to an
// in-process locker; use the redis locker when several processes share a store.
func WithLocker(l ports.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithRegistry replaces the node registry. Defaults to the built-in nodes.
func WithRegistry(r *graph.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithHooks registers scheduler lifecycle hooks.
func WithHooks(h domain.SkillHooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// WithMaxDepth bounds same-call completion chains.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.maxDepth = depth }
}

// WithLockTTL sets the lease requested from the locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.lockTTL = ttl }
}

// New creates an engine. Unset dependencies get in-process defaults.
func New(opts ...Option) *Engine {
	e := &Engine{lockTTL: DefaultLockTTL}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.locker == nil {
		e.locker = memory.NewLocker()
	}
	if e.registry == nil {
		e.registry = nodes.NewRegistry()
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.sched = scheduler.New(
		scheduler.WithLogger(e.logger),
		scheduler.WithHooks(e.hooks),
		scheduler.WithMaxDepth(e.maxDepth),
	)
	return e
}

// Registry returns the node registry used to load graphs.
func (e *Engine) Registry() *graph.Registry { return e.registry }

// Scheduler returns the engine scheduler. Like the graphs it walks, it is
// single-owner; network adapters go through a Workspace instead.
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }

// Store returns the configured graph store.
func (e *Engine) Store() ports.GraphStore { return e.store }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// NewGraph creates an empty graph that logs through the engine logger.
func (e *Engine) NewGraph(opts ...graph.Option) *graph.Graph {
	return graph.New(append([]graph.Option{graph.WithLogger(e.logger)}, opts...)...)
}

// LoadDocument rebuilds a live graph from its persisted form.
func (e *Engine) LoadDocument(doc *domain.GraphDocument) (*graph.Graph, error) {
	return graph.Load(doc, e.registry, graph.WithLogger(e.logger))
}

// Load fetches a document from the store and rebuilds it.
func (e *Engine) Load(ctx context.Context, id string) (*graph.Graph, error) {
	doc, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := e.LoadDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", id, err)
	}
	return g, nil
}

// Save persists g under its ID while holding the graph lock.
func (e *Engine) Save(ctx context.Context, g *graph.Graph) error {
	doc, err := g.Document()
	if err != nil {
		return fmt.Errorf("save graph %s: %w", g.ID, err)
	}
	return e.withLock(ctx, "save:"+g.ID, func() error {
		return e.store.Save(ctx, doc)
	})
}

// Delete removes a stored graph.
func (e *Engine) Delete(ctx context.Context, id string) error {
	return e.withLock(ctx, "save:"+id, func() error {
		return e.store.Delete(ctx, id)
	})
}

// List returns the stored graph IDs.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.store.List(ctx)
}

func (e *Engine) withLock(ctx context.Context, key string, fn func() error) error {
	unlock, err := e.locker.Lock(ctx, key, e.lockTTL)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("failed to release lock", "key", key, "err", err)
		}
	}()
	return fn()
}
