package nodes

import (
	"fmt"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// SetVariableValueField is the data input of the set_variable node.
const SetVariableValueField = "value"

// SetVariable assigns its value input to a graph parameter when control
// reaches it, then finishes. The input is typed by the parameter.
type SetVariable struct {
	ParameterGUID string `mapstructure:"parameter_guid"`
}

func SetVariableDescriptor() graph.Descriptor {
	return graph.Descriptor{
		Type:       TypeSetVariable,
		Name:       "Set Variable",
		Sequential: true,
		Ports: []graph.PortSpec{{
			Field:       SetVariableValueField,
			DisplayName: "Value",
			Direction:   graph.Input,
			Type:        schema.Any(),
		}},
		Fields: schema.Schema{"parameter_guid": schema.String()},
		New:    func() graph.Behavior { return &SetVariable{} },
	}
}

func (s *SetVariable) RecomputePorts(n *graph.Node, spec graph.PortSpec) []graph.PortSpec {
	if spec.Field == SetVariableValueField && n.Graph() != nil {
		if p, ok := n.Graph().Parameter(s.ParameterGUID); ok {
			spec.Type = p.Type
		}
	}
	return []graph.PortSpec{spec}
}

func (s *SetVariable) Enable(n *graph.Node) error {
	if _, ok := n.Graph().Parameter(s.ParameterGUID); !ok {
		return fmt.Errorf("parameter %q: %w", s.ParameterGUID, domain.ErrParameterNotFound)
	}
	return nil
}

func (s *SetVariable) Start(n *graph.Node) error {
	g := n.Graph()
	if g == nil {
		return fmt.Errorf("%s: not in a graph", n)
	}
	if err := g.UpdateParameter(s.ParameterGUID, n.Input(SetVariableValueField)); err != nil {
		return err
	}
	n.Finish()
	return nil
}

func (s *SetVariable) Update(*graph.Node) error { return nil }
