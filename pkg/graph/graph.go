package graph

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/pkg/domain"
)

var nopLogger = logging.NewNop()

// Hooks notifies editor collaborators of graph mutations. Any field may be nil.
type Hooks struct {
	OnGraphChanges          func(domain.GraphChange)
	OnParameterListChanged  func()
	OnParameterModified     func(guid string)
	OnParameterValueChanged func(guid string, value any)
}

// Graph owns the node, edge and parameter lists and the indices derived from
// them. It is single-owner: callers serialize access.
type Graph struct {
	ID   string
	Name string

	entryGUID string

	nodes  []*Node
	edges  []*Edge
	params []*Parameter

	nodesByGUID map[string]*Node
	edgesByGUID map[string]*Edge

	logger *slog.Logger
	hooks  Hooks
}

// Option configures a Graph.
type Option func(*Graph)

// WithID sets the graph identifier used by stores.
func WithID(id string) Option {
	return func(g *Graph) { g.ID = id }
}

// WithName sets the display name.
func WithName(name string) Option {
	return func(g *Graph) { g.Name = name }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithHooks registers editor notification callbacks.
func WithHooks(h Hooks) Option {
	return func(g *Graph) { g.hooks = h }
}

// New creates an empty graph. A random ID is assigned unless WithID is given.
func New(opts ...Option) *Graph {
	g := &Graph{
		ID:          uuid.NewString(),
		nodesByGUID: make(map[string]*Node),
		edgesByGUID: make(map[string]*Edge),
		logger:      nopLogger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetHooks replaces the notification callbacks.
func (g *Graph) SetHooks(h Hooks) { g.hooks = h }

// Logger returns the graph's logger.
func (g *Graph) Logger() *slog.Logger { return g.logger }

// Nodes returns the node list in insertion order.
func (g *Graph) Nodes() []*Node { return append([]*Node(nil), g.nodes...) }

// Edges returns the edge list in insertion order.
func (g *Graph) Edges() []*Edge { return append([]*Edge(nil), g.edges...) }

// Node looks up a node by GUID.
func (g *Graph) Node(guid string) (*Node, bool) {
	n, ok := g.nodesByGUID[guid]
	return n, ok
}

// Edge looks up an edge by GUID.
func (g *Graph) Edge(guid string) (*Edge, bool) {
	e, ok := g.edgesByGUID[guid]
	return e, ok
}

// OutputEdges returns the edges leaving the node's output ports.
func (g *Graph) OutputEdges(nodeGUID string) []*Edge {
	n, ok := g.nodesByGUID[nodeGUID]
	if !ok {
		return nil
	}
	var out []*Edge
	for _, p := range n.OutputPorts() {
		out = append(out, p.edges...)
	}
	return out
}

// EntryNode returns the designated entry node.
func (g *Graph) EntryNode() (*Node, bool) {
	if g.entryGUID == "" {
		return nil, false
	}
	return g.Node(g.entryGUID)
}

// EntryGUID returns the stored entry node GUID, resolved or not.
func (g *Graph) EntryGUID() string { return g.entryGUID }

// SetEntryNode designates the node skills start from.
func (g *Graph) SetEntryNode(guid string) error {
	if _, ok := g.nodesByGUID[guid]; !ok {
		return fmt.Errorf("entry %s: %w", guid, domain.ErrNodeNotFound)
	}
	g.entryGUID = guid
	return nil
}

// AddNode registers a node, builds its ports and runs its enable hook.
// A node whose enable hook fails is removed again. An unresolved parameter
// is tolerated and AddNode returns nil; other enable failures are returned.
func (g *Graph) AddNode(n *Node) error {
	if n == nil {
		return fmt.Errorf("add node: nil node")
	}
	if _, dup := g.nodesByGUID[n.GUID]; dup {
		return fmt.Errorf("add node %s: %w", n.GUID, domain.ErrDuplicateNode)
	}

	n.graph = g
	g.nodes = append(g.nodes, n)
	g.nodesByGUID[n.GUID] = n
	for _, e := range n.rebuildPorts() {
		g.logger.Warn("dropping stale edge on added node", "node", n.GUID, "edge", e.GUID)
	}
	g.emit(domain.GraphChange{Kind: domain.ChangeAddedNode, NodeGUID: n.GUID})

	if err := g.enable(n); err != nil {
		g.DeleteNode(n)
		if errors.Is(err, domain.ErrParameterNotFound) {
			g.logger.Warn("removed node with unresolved parameter", "node", n.GUID, "err", err)
			return nil
		}
		return err
	}
	return nil
}

func (g *Graph) enable(n *Node) error {
	en, ok := n.behavior.(Enabler)
	if !ok {
		return nil
	}
	if err := n.call("enable", func() error { return en.Enable(n) }); err != nil {
		return err
	}
	// enable may bind state that changes the port set
	g.RecomputePorts(n)
	return nil
}

// RemoveNode drops the node from the list and index. Edges are not
// cascaded; use DeleteNode to disconnect them first.
func (g *Graph) RemoveNode(n *Node) {
	if n == nil {
		return
	}
	if _, ok := g.nodesByGUID[n.GUID]; !ok {
		return
	}
	delete(g.nodesByGUID, n.GUID)
	for i, existing := range g.nodes {
		if existing == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	if d, ok := n.behavior.(Disabler); ok {
		if err := SafeCall(func() error { d.Disable(n); return nil }); err != nil {
			g.logger.Error("disable failed", "node", n.GUID, "err", err)
		}
	}
	if g.entryGUID == n.GUID {
		g.entryGUID = ""
	}
	if f := n.finisher; f != nil {
		n.finisher = nil
		f.Forget(n)
	}
	g.emit(domain.GraphChange{Kind: domain.ChangeRemovedNode, NodeGUID: n.GUID})
}

// DeleteNode disconnects every edge of the node and then removes it.
func (g *Graph) DeleteNode(n *Node) {
	if n == nil {
		return
	}
	for _, e := range n.AllEdges() {
		if err := g.Disconnect(e.GUID); err != nil {
			g.logger.Warn("disconnect during delete", "node", n.GUID, "edge", e.GUID, "err", err)
		}
	}
	g.RemoveNode(n)
}

// RecomputePorts rebuilds the node's ports from its current state and
// disconnects edges whose endpoint no longer exists or no longer fits.
func (g *Graph) RecomputePorts(n *Node) {
	for _, e := range n.rebuildPorts() {
		if _, ok := g.edgesByGUID[e.GUID]; !ok {
			continue
		}
		if err := g.Disconnect(e.GUID); err != nil {
			g.logger.Warn("disconnect orphaned edge", "node", n.GUID, "edge", e.GUID, "err", err)
		}
	}
	g.NotifyNodeChanged(n)
}

// NotifyNodeChanged emits a node change notification.
func (g *Graph) NotifyNodeChanged(n *Node) {
	g.emit(domain.GraphChange{Kind: domain.ChangeNodeChanged, NodeGUID: n.GUID})
}

// RegenerateData rebuilds the indices from the persisted lists, re-derives
// every node's ports and re-resolves every edge. Edges that do not resolve
// are dropped. Calling it repeatedly yields the same graph.
func (g *Graph) RegenerateData() {
	g.nodesByGUID = make(map[string]*Node, len(g.nodes))
	nodes := g.nodes[:0]
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		if _, dup := g.nodesByGUID[n.GUID]; dup {
			g.logger.Warn("dropping node with duplicate guid", "node", n.GUID)
			continue
		}
		n.graph = g
		g.nodesByGUID[n.GUID] = n
		nodes = append(nodes, n)
	}
	g.nodes = nodes

	for _, n := range g.nodes {
		for _, p := range n.ports {
			p.edges = nil
		}
		n.rebuildPorts()
	}

	g.edgesByGUID = make(map[string]*Edge, len(g.edges))
	edges := g.edges[:0]
	for _, e := range g.edges {
		if e == nil {
			continue
		}
		if _, dup := g.edgesByGUID[e.GUID]; dup {
			g.logger.Warn("dropping edge with duplicate guid", "edge", e.GUID)
			continue
		}
		if err := g.resolve(e); err != nil {
			g.logger.Warn("dropping unresolved edge", "edge", e.GUID, "err", err)
			continue
		}
		g.edgesByGUID[e.GUID] = e
		edges = append(edges, e)
	}
	g.edges = edges
}

func (g *Graph) resolve(e *Edge) error {
	in, ok := g.nodesByGUID[e.InputNodeGUID]
	if !ok {
		return fmt.Errorf("input node %s: %w", e.InputNodeGUID, domain.ErrNodeNotFound)
	}
	out, ok := g.nodesByGUID[e.OutputNodeGUID]
	if !ok {
		return fmt.Errorf("output node %s: %w", e.OutputNodeGUID, domain.ErrNodeNotFound)
	}
	ip, ok := in.GetPort(e.InputField, e.InputIdentifier)
	if !ok {
		return fmt.Errorf("input %s.%s: %w", in.GUID, portKey(e.InputField, e.InputIdentifier), domain.ErrPortNotFound)
	}
	op, ok := out.GetPort(e.OutputField, e.OutputIdentifier)
	if !ok {
		return fmt.Errorf("output %s.%s: %w", out.GUID, portKey(e.OutputField, e.OutputIdentifier), domain.ErrPortNotFound)
	}
	if err := CanConnect(ip, op); err != nil {
		return err
	}
	e.inputPort, e.outputPort = ip, op
	e.InputMultiple, e.OutputMultiple = ip.Multiple, op.Multiple
	ip.attach(e)
	op.attach(e)
	return nil
}

func (g *Graph) emit(c domain.GraphChange) {
	if g.hooks.OnGraphChanges != nil {
		g.hooks.OnGraphChanges(c)
	}
}
