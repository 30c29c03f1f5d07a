package graph

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// Finisher receives the completion signal of a running node. Forget is
// called when a bound node is removed from its graph.
type Finisher interface {
	Finish(n *Node)
	Forget(n *Node)
}

// Node is one instance of a registered node type inside a graph.
type Node struct {
	GUID       string
	Position   domain.Position
	Expanded   bool
	Locked     bool
	CustomName string

	desc     *Descriptor
	behavior Behavior
	graph    *Graph
	finisher Finisher

	// ports is the arena; index maps port keys to arena slots and is rebuilt
	// together with the arena.
	ports []*Port
	index map[string]int

	// values backs every data port, keyed by port key.
	values map[string]any
}

func newNode(guid string, d *Descriptor, pos domain.Position) *Node {
	return &Node{
		GUID:     guid,
		Position: pos,
		Expanded: true,
		desc:     d,
		behavior: d.New(),
		index:    make(map[string]int),
		values:   make(map[string]any),
	}
}

// Type returns the node's type tag.
func (n *Node) Type() string { return n.desc.Type }

// Descriptor returns the static registration of the node's type.
func (n *Node) Descriptor() *Descriptor { return n.desc }

// Behavior returns the type-specific logic and persisted state.
func (n *Node) Behavior() Behavior { return n.behavior }

// Graph returns the graph the node was added to, or nil.
func (n *Node) Graph() *Graph { return n.graph }

// Name returns the custom name, falling back to the type display name.
func (n *Node) Name() string {
	if n.CustomName != "" {
		return n.CustomName
	}
	return n.desc.Name
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%s]", n.desc.Type, n.GUID)
}

// IsSequential reports whether the node takes part in control flow.
// Outputs of sequential nodes are never copied by data pulls.
func (n *Node) IsSequential() bool {
	if n.desc.Sequential {
		return true
	}
	for _, p := range n.ports {
		if p.Control {
			return true
		}
	}
	return false
}

// GetPort returns the port with the given field and sub-identifier.
func (n *Node) GetPort(field, identifier string) (*Port, bool) {
	i, ok := n.index[portKey(field, identifier)]
	if !ok {
		return nil, false
	}
	return n.ports[i], true
}

// GetAllPorts returns every port in arena order.
func (n *Node) GetAllPorts() []*Port {
	return append([]*Port(nil), n.ports...)
}

// InputPorts returns the input ports in arena order.
func (n *Node) InputPorts() []*Port { return n.portsByDirection(Input) }

// OutputPorts returns the output ports in arena order.
func (n *Node) OutputPorts() []*Port { return n.portsByDirection(Output) }

func (n *Node) portsByDirection(d Direction) []*Port {
	var out []*Port
	for _, p := range n.ports {
		if p.Direction == d {
			out = append(out, p)
		}
	}
	return out
}

// OutputPortByDisplayName returns the first output port shown under name.
func (n *Node) OutputPortByDisplayName(name string) (*Port, bool) {
	for _, p := range n.ports {
		if p.Direction == Output && p.DisplayName == name {
			return p, true
		}
	}
	return nil, false
}

// Walk returns the nodes reached through the output port shown under
// displayName, one entry per edge.
func (n *Node) Walk(displayName string) []*Node {
	p, ok := n.OutputPortByDisplayName(displayName)
	if !ok {
		return nil
	}
	return inputNodes(p)
}

// WalkField returns the nodes reached through every output port of field.
func (n *Node) WalkField(field string) []*Node {
	var out []*Node
	for _, p := range n.ports {
		if p.Direction == Output && p.Field == field {
			out = append(out, inputNodes(p)...)
		}
	}
	return out
}

func inputNodes(p *Port) []*Node {
	out := make([]*Node, 0, len(p.edges))
	for _, e := range p.edges {
		if target := e.InputNode(); target != nil {
			out = append(out, target)
		}
	}
	return out
}

// ControlSuccessors returns the nodes a finished node hands control to.
// A Brancher behavior picks the control outputs; otherwise all are walked.
func (n *Node) ControlSuccessors() []*Node {
	if b, ok := n.behavior.(Brancher); ok {
		var out []*Node
		for _, field := range b.Branches(n) {
			out = append(out, n.WalkField(field)...)
		}
		return out
	}
	var out []*Node
	for _, p := range n.ports {
		if p.Direction == Output && p.Control {
			out = append(out, inputNodes(p)...)
		}
	}
	return out
}

// AllEdges returns every edge attached to any of the node's ports.
func (n *Node) AllEdges() []*Edge {
	var out []*Edge
	seen := make(map[*Edge]struct{})
	for _, p := range n.ports {
		for _, e := range p.edges {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// IsInputPortConnected reports whether any input port of field has an edge.
func (n *Node) IsInputPortConnected(field string) bool {
	return n.isConnected(Input, field)
}

// IsOutputPortConnected reports whether any output port of field has an edge.
func (n *Node) IsOutputPortConnected(field string) bool {
	return n.isConnected(Output, field)
}

func (n *Node) isConnected(d Direction, field string) bool {
	for _, p := range n.ports {
		if p.Direction == d && p.Field == field && len(p.edges) > 0 {
			return true
		}
	}
	return false
}

// Value returns the backing value of a data port by key.
func (n *Node) Value(key string) any { return n.values[key] }

// Input returns the backing value of the data input of field.
func (n *Node) Input(field string) any { return n.values[field] }

// Output returns the backing value of the data output of field.
func (n *Node) Output(field string) any { return n.values[field] }

// SetInput assigns the data input of field, checked against the port type.
func (n *Node) SetInput(field string, value any) error {
	return n.setValue(Input, field, value)
}

// SetOutput assigns the data output of field, checked against the port type.
func (n *Node) SetOutput(field string, value any) error {
	return n.setValue(Output, field, value)
}

func (n *Node) setValue(d Direction, field string, value any) error {
	p, ok := n.GetPort(field, "")
	if !ok || p.Direction != d {
		return fmt.Errorf("%s %s %q: %w", n, d, field, domain.ErrPortNotFound)
	}
	return n.SetPortValue(p, value)
}

// SetPortValue assigns the backing value of p.
func (n *Node) SetPortValue(p *Port, value any) error {
	if p.Control {
		return fmt.Errorf("%s: control port %q carries no value", n, p.Key())
	}
	v, err := schema.Coerce(p.Type, value)
	if err != nil {
		return &TypeMismatchError{Target: p.String(), Expected: p.Type.Name(), Value: value, Reason: err}
	}
	n.values[p.Key()] = v
	return nil
}

// Bind attaches the node to a running skill. Passing nil unbinds it.
func (n *Node) Bind(f Finisher) { n.finisher = f }

// Finish signals completion to the skill the node is bound to.
func (n *Node) Finish() {
	if n.finisher == nil {
		n.logger().Warn("finish called on unbound node", "node", n.GUID, "type", n.desc.Type)
		return
	}
	n.finisher.Finish(n)
}

// Start runs the behavior's Start inside a recover boundary.
func (n *Node) Start() error {
	return n.call("start", func() error { return n.behavior.Start(n) })
}

// Update runs the behavior's Update inside a recover boundary.
func (n *Node) Update() error {
	return n.call("update", func() error { return n.behavior.Update(n) })
}

// ResolveOutputs refreshes live outputs of data nodes before a pull.
func (n *Node) ResolveOutputs() error {
	r, ok := n.behavior.(OutputResolver)
	if !ok {
		return nil
	}
	return n.call("resolve", func() error { return r.ResolveOutputs(n) })
}

func (n *Node) call(op string, fn func() error) error {
	if err := SafeCall(fn); err != nil {
		return &NodeError{NodeGUID: n.GUID, NodeType: n.desc.Type, Op: op, Err: err}
	}
	return nil
}

// Record returns the persisted form of the node.
func (n *Node) Record() (domain.NodeRecord, error) {
	fields, err := encodeFields(n.behavior)
	if err != nil {
		return domain.NodeRecord{}, fmt.Errorf("%s: encode fields: %w", n, err)
	}
	rec := domain.NodeRecord{
		GUID:       n.GUID,
		Type:       n.desc.Type,
		Position:   n.Position,
		Expanded:   n.Expanded,
		Locked:     n.Locked,
		CustomName: n.CustomName,
		Fields:     fields,
	}
	for _, p := range n.ports {
		if p.Direction != Input || p.Control {
			continue
		}
		if rec.Values == nil {
			rec.Values = make(map[string]any)
		}
		rec.Values[p.Key()] = n.values[p.Key()]
	}
	return rec, nil
}

func (n *Node) logger() *slog.Logger {
	if n.graph != nil {
		return n.graph.logger
	}
	return nopLogger
}

// rebuildPorts discards the arena and rebuilds it from the declared fields.
// Edges previously attached are re-attached by port key when the new port
// still exists with a compatible direction and type; the rest are returned
// so the graph can disconnect them.
func (n *Node) rebuildPorts() (orphans []*Edge) {
	old := n.ports

	specs := n.desc.OrderedPorts()
	if fo, ok := n.behavior.(FieldOrderer); ok {
		specs = fo.OverrideFieldOrder(specs)
	}
	if dp, ok := n.behavior.(DynamicPorts); ok {
		var expanded []PortSpec
		for _, spec := range specs {
			expanded = append(expanded, dp.RecomputePorts(n, spec)...)
		}
		specs = expanded
	}

	n.ports = make([]*Port, 0, len(specs))
	n.index = make(map[string]int, len(specs))
	values := make(map[string]any, len(specs))
	for _, spec := range specs {
		key := portKey(spec.Field, spec.Identifier)
		if _, dup := n.index[key]; dup {
			n.logger().Warn("duplicate port key, keeping first", "node", n.GUID, "port", key)
			continue
		}
		p := &Port{PortSpec: spec, index: len(n.ports), node: n}
		n.index[key] = p.index
		n.ports = append(n.ports, p)

		if spec.Control {
			continue
		}
		if v, err := schema.Coerce(spec.Type, n.values[key]); err == nil {
			values[key] = v
		} else {
			values[key] = spec.Type.Default()
		}
	}
	n.values = values

	for _, op := range old {
		for _, e := range op.edges {
			if !n.reattach(op, e) {
				orphans = append(orphans, e)
			}
		}
	}
	return orphans
}

func (n *Node) reattach(old *Port, e *Edge) bool {
	p, ok := n.GetPort(old.Field, old.Identifier)
	if !ok || p.Direction != old.Direction {
		return false
	}
	var other *Port
	if p.Direction == Input {
		other = e.outputPort
	} else {
		other = e.inputPort
	}
	if other == nil || !schema.Identical(p.Type, other.Type) {
		return false
	}
	if p.Direction == Input {
		e.inputPort = p
	} else {
		e.outputPort = p
	}
	p.attach(e)
	return true
}

// onEdgeConnected records e on the local port.
func (n *Node) onEdgeConnected(p *Port, e *Edge) {
	p.attach(e)
}

// onEdgeDisconnected drops the local record of e and resets an input that
// has no edges left, unless the behavior opts out.
func (n *Node) onEdgeDisconnected(e *Edge) {
	for _, p := range n.ports {
		if !p.detach(e) {
			continue
		}
		if p.Direction != Input || p.Control || len(p.edges) > 0 {
			continue
		}
		if r, ok := n.behavior.(PortResetter); ok && !r.CanResetPort(p) {
			continue
		}
		n.values[p.Key()] = p.Type.Default()
	}
}
