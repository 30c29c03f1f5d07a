package nodes

import (
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// Port fields of the branch node.
const (
	BranchConditionField = "condition"
	BranchTrueField      = "true"
	BranchFalseField     = "false"
)

// Branch hands control to its "true" or "false" output depending on the
// condition pulled at start.
type Branch struct {
	taken string
}

func BranchDescriptor() graph.Descriptor {
	return graph.Descriptor{
		Type: TypeBranch,
		Name: "Branch",
		Ports: []graph.PortSpec{
			{Field: BranchConditionField, DisplayName: "Condition", Direction: graph.Input, Type: schema.Bool()},
			graph.StartSpec(),
			{Field: BranchTrueField, DisplayName: "True", Direction: graph.Output, Type: schema.Control(), Multiple: true, Control: true},
			{Field: BranchFalseField, DisplayName: "False", Direction: graph.Output, Type: schema.Control(), Multiple: true, Control: true},
		},
		New: func() graph.Behavior { return &Branch{} },
	}
}

func (b *Branch) Start(n *graph.Node) error {
	cond, _ := n.Input(BranchConditionField).(bool)
	b.taken = BranchFalseField
	if cond {
		b.taken = BranchTrueField
	}
	n.Finish()
	return nil
}

func (b *Branch) Update(*graph.Node) error { return nil }

func (b *Branch) Branches(*graph.Node) []string {
	if b.taken == "" {
		return nil
	}
	return []string{b.taken}
}
