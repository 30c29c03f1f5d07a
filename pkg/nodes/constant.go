package nodes

import (
	"fmt"

	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// ConstantValueField is the data output of the constant node.
const ConstantValueField = "value"

// Constant publishes an inline value on an output typed by ValueType.
type Constant struct {
	ValueType string `mapstructure:"value_type"`
	Value     any    `mapstructure:"value"`
}

func ConstantDescriptor() graph.Descriptor {
	return graph.Descriptor{
		Type: TypeConstant,
		Name: "Constant",
		Ports: []graph.PortSpec{{
			Field:       ConstantValueField,
			DisplayName: "Value",
			Direction:   graph.Output,
			Type:        schema.Any(),
			Multiple:    true,
		}},
		Fields: schema.Schema{"value_type": schema.String()},
		New:    func() graph.Behavior { return &Constant{ValueType: schema.NameAny} },
	}
}

func (c *Constant) valueType() schema.Type {
	t, err := schema.ParseType(c.ValueType)
	if err != nil {
		return schema.Any()
	}
	return t
}

func (c *Constant) RecomputePorts(_ *graph.Node, spec graph.PortSpec) []graph.PortSpec {
	spec.Type = c.valueType()
	return []graph.PortSpec{spec}
}

func (c *Constant) Enable(n *graph.Node) error {
	if _, err := schema.ParseType(c.ValueType); err != nil {
		return fmt.Errorf("constant %s: %w", n.GUID, err)
	}
	v, err := schema.Coerce(c.valueType(), c.Value)
	if err != nil {
		return fmt.Errorf("constant %s: %w", n.GUID, err)
	}
	c.Value = v
	return nil
}

func (c *Constant) ResolveOutputs(n *graph.Node) error {
	return n.SetOutput(ConstantValueField, c.Value)
}

func (c *Constant) Start(*graph.Node) error  { return nil }
func (c *Constant) Update(*graph.Node) error { return nil }
