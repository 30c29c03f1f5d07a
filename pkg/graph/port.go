package graph

import (
	"fmt"

	"github.com/aretw0/skillgraph/pkg/schema"
)

// Direction is the side of a node a port sits on.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Names of the control ports every sequential node inherits.
const (
	FieldStart = "start"
	FieldEnd   = "end"
)

// PortSpec declares one port of a node type.
type PortSpec struct {
	Field       string
	Identifier  string
	DisplayName string
	Direction   Direction
	Type        schema.Type
	Multiple    bool
	Control     bool
	Tooltip     string
	Vertical    bool
}

// StartSpec is the control input inherited by sequential node types.
func StartSpec() PortSpec {
	return PortSpec{
		Field:       FieldStart,
		DisplayName: "Start",
		Direction:   Input,
		Type:        schema.Control(),
		Multiple:    true,
		Control:     true,
	}
}

// EndSpec is the control output inherited by sequential node types.
func EndSpec() PortSpec {
	return PortSpec{
		Field:       FieldEnd,
		DisplayName: "End",
		Direction:   Output,
		Type:        schema.Control(),
		Multiple:    true,
		Control:     true,
	}
}

// Port is a live connection point. Ports are owned by exactly one node and
// live in the node's port arena at a stable index until the next rebuild.
type Port struct {
	PortSpec

	index int
	node  *Node
	edges []*Edge
}

// Node returns the owning node.
func (p *Port) Node() *Node { return p.node }

// Index returns the port's position in the owner's arena.
func (p *Port) Index() int { return p.index }

// Key returns the value key of the port: the field name, suffixed with the
// sub-identifier when one is set.
func (p *Port) Key() string { return portKey(p.Field, p.Identifier) }

// Edges returns a copy of the edges attached to the port.
func (p *Port) Edges() []*Edge {
	return append([]*Edge(nil), p.edges...)
}

// EdgeCount returns the number of attached edges.
func (p *Port) EdgeCount() int { return len(p.edges) }

// Connected reports whether at least one edge is attached.
func (p *Port) Connected() bool { return len(p.edges) > 0 }

func (p *Port) String() string {
	owner := "<detached>"
	if p.node != nil {
		owner = p.node.GUID
	}
	return fmt.Sprintf("%s.%s(%s)", owner, p.Key(), p.Direction)
}

func (p *Port) attach(e *Edge) {
	for _, existing := range p.edges {
		if existing == e {
			return
		}
	}
	p.edges = append(p.edges, e)
}

func (p *Port) detach(e *Edge) bool {
	for i, existing := range p.edges {
		if existing == e {
			p.edges = append(p.edges[:i], p.edges[i+1:]...)
			return true
		}
	}
	return false
}

func portKey(field, identifier string) string {
	if identifier == "" {
		return field
	}
	return field + "/" + identifier
}
