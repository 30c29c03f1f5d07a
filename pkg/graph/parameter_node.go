package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// ParameterNodeType is the type tag of parameter-reference nodes.
const ParameterNodeType = "parameter"

// Port fields of a parameter-reference node.
const (
	ParameterInputField  = "input"
	ParameterOutputField = "output"
)

// Accessor selects whether a parameter node reads or writes its parameter.
type Accessor string

const (
	AccessorGet Accessor = "get"
	AccessorSet Accessor = "set"
)

// ParameterNode references a graph parameter by GUID. It exposes exactly
// one port: an output for Get, an input for Set. The port is typed by the
// bound parameter, or "any" while the parameter is unresolved.
//
// Parameter nodes have no control ports and are never launched by a skill.
// A Set node writes only when Assign is called from an editor; writes at
// run time go through the set_variable node.
type ParameterNode struct {
	ParameterGUID string   `mapstructure:"parameter_guid"`
	Accessor      Accessor `mapstructure:"accessor"`

	param *Parameter
}

// ParameterDescriptor returns the registration of parameter nodes.
func ParameterDescriptor() Descriptor {
	return Descriptor{
		Type: ParameterNodeType,
		Name: "Parameter",
		Ports: []PortSpec{
			{Field: ParameterInputField, DisplayName: "Value", Direction: Input, Type: schema.Any()},
			{Field: ParameterOutputField, DisplayName: "Value", Direction: Output, Type: schema.Any(), Multiple: true},
		},
		Fields: schema.Schema{
			"parameter_guid": schema.String(),
			"accessor":       schema.String(),
		},
		New: func() Behavior { return &ParameterNode{Accessor: AccessorGet} },
	}
}

var parameterDescriptor = ParameterDescriptor()

// NewParameterNode builds an unattached parameter node bound to paramGUID.
func NewParameterNode(paramGUID string, a Accessor, pos domain.Position) *Node {
	n := newNode(uuid.NewString(), &parameterDescriptor, pos)
	pn := n.behavior.(*ParameterNode)
	pn.ParameterGUID = paramGUID
	pn.Accessor = a
	return n
}

// Parameter returns the bound parameter, if resolved.
func (p *ParameterNode) Parameter() (*Parameter, bool) {
	return p.param, p.param != nil
}

func (p *ParameterNode) lookup(n *Node) (*Parameter, bool) {
	if p.param != nil {
		return p.param, true
	}
	if n.graph == nil {
		return nil, false
	}
	return n.graph.Parameter(p.ParameterGUID)
}

func (p *ParameterNode) RecomputePorts(n *Node, spec PortSpec) []PortSpec {
	active := ParameterOutputField
	if p.Accessor == AccessorSet {
		active = ParameterInputField
	}
	if spec.Field != active {
		return nil
	}
	spec.Type = schema.Any()
	if param, ok := p.lookup(n); ok {
		spec.Type = param.Type
	}
	return []PortSpec{spec}
}

func (p *ParameterNode) Enable(n *Node) error {
	param, ok := n.graph.Parameter(p.ParameterGUID)
	if !ok {
		return fmt.Errorf("parameter %q: %w", p.ParameterGUID, domain.ErrParameterNotFound)
	}
	p.param = param
	return nil
}

func (p *ParameterNode) Disable(*Node) { p.param = nil }

// ResolveOutputs publishes the live parameter value on a Get node.
func (p *ParameterNode) ResolveOutputs(n *Node) error {
	if p.Accessor != AccessorGet {
		return nil
	}
	param, ok := p.lookup(n)
	if !ok {
		return fmt.Errorf("parameter %q: %w", p.ParameterGUID, domain.ErrParameterNotFound)
	}
	return n.SetOutput(ParameterOutputField, param.Value)
}

// Assign writes a Set node's input value to the parameter. It is an
// edit-time operation.
func (p *ParameterNode) Assign(n *Node) error {
	if p.Accessor != AccessorSet {
		return fmt.Errorf("%s: assign on a %s accessor", n, p.Accessor)
	}
	if n.graph == nil {
		return fmt.Errorf("%s: not in a graph", n)
	}
	return n.graph.UpdateParameter(p.ParameterGUID, n.Input(ParameterInputField))
}

func (p *ParameterNode) Start(*Node) error { return nil }

func (p *ParameterNode) Update(*Node) error { return nil }

// SetParameterAccessor flips a parameter node between Get and Set. The
// edges of the removed port are disconnected and the opposite port is
// created, typed by the bound parameter.
func (g *Graph) SetParameterAccessor(n *Node, a Accessor) error {
	pn, ok := n.behavior.(*ParameterNode)
	if !ok {
		return fmt.Errorf("%s: not a parameter node", n)
	}
	if a != AccessorGet && a != AccessorSet {
		return fmt.Errorf("%s: unknown accessor %q", n, a)
	}
	if pn.Accessor == a {
		return nil
	}
	pn.Accessor = a
	g.RecomputePorts(n)
	return nil
}
