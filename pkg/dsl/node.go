package dsl

import (
	"fmt"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
)

type link struct {
	outField string
	target   string
	inField  string
}

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	alias   string
	typ     string
	name    string
	pos     domain.Position
	fields  map[string]any
	values  map[string]any
	param   string
	links   []link
	builder *Builder
}

// At places the node on the canvas.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.pos.X, n.pos.Y = x, y
	return n
}

// Named sets the custom display name.
func (n *NodeBuilder) Named(name string) *NodeBuilder {
	n.name = name
	return n
}

// Field sets a persisted behavior field, e.g. Field("frames", 3) on a wait node.
func (n *NodeBuilder) Field(key string, value any) *NodeBuilder {
	n.fields[key] = value
	return n
}

// Value sets the inline value of a data input port.
func (n *NodeBuilder) Value(port string, value any) *NodeBuilder {
	n.values[port] = value
	return n
}

// Param binds the node to a parameter declared with Builder.Param. It
// fills the parameter_guid field at build time.
func (n *NodeBuilder) Param(name string) *NodeBuilder {
	n.param = name
	return n
}

// Then adds a control edge from this node's default control output to the
// start of alias.
func (n *NodeBuilder) Then(alias string) *NodeBuilder {
	n.links = append(n.links, link{target: alias})
	return n
}

// ThenOn adds a control edge from a named control output, such as a
// branch's "true" or "false".
func (n *NodeBuilder) ThenOn(output, alias string) *NodeBuilder {
	n.links = append(n.links, link{outField: output, target: alias})
	return n
}

// Pipe adds a data edge from output to alias's input.
func (n *NodeBuilder) Pipe(output, alias, input string) *NodeBuilder {
	n.links = append(n.links, link{outField: output, target: alias, inField: input})
	return n
}

// Add starts the next node; it allows chaining across nodes.
func (n *NodeBuilder) Add(alias, typ string) *NodeBuilder {
	return n.builder.Add(alias, typ)
}

func (n *NodeBuilder) add(g *graph.Graph, params map[string]string) error {
	fields := make(map[string]any, len(n.fields)+1)
	for k, v := range n.fields {
		fields[k] = v
	}
	if n.param != "" {
		guid, ok := params[n.param]
		if !ok {
			return fmt.Errorf("node %s: parameter %q: %w", n.alias, n.param, domain.ErrParameterNotFound)
		}
		fields["parameter_guid"] = guid
	}

	node, err := n.builder.reg.Restore(domain.NodeRecord{
		GUID:       newGUID(),
		Type:       n.typ,
		Position:   n.pos,
		CustomName: n.name,
		Fields:     fields,
	})
	if err != nil {
		return fmt.Errorf("node %s: %w", n.alias, err)
	}
	if err := g.AddNode(node); err != nil {
		return fmt.Errorf("node %s: %w", n.alias, err)
	}
	if _, ok := g.Node(node.GUID); !ok {
		return fmt.Errorf("node %s: dropped on enable: %w", n.alias, domain.ErrParameterNotFound)
	}
	for port, v := range n.values {
		if err := node.SetInput(port, v); err != nil {
			return fmt.Errorf("node %s: %w", n.alias, err)
		}
	}
	n.builder.guids[n.alias] = node.GUID
	return nil
}
