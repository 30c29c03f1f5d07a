package nodes

import "github.com/aretw0/skillgraph/pkg/graph"

// Type tags of the built-in nodes.
const (
	TypeEntry       = "entry"
	TypeLog         = "log"
	TypeWait        = "wait"
	TypeCounter     = "counter"
	TypeBranch      = "branch"
	TypeConstant    = "constant"
	TypeSetVariable = "set_variable"
)

// Descriptors returns the registrations of every built-in node type,
// parameter nodes included.
func Descriptors() []graph.Descriptor {
	return []graph.Descriptor{
		EntryDescriptor(),
		LogDescriptor(),
		WaitDescriptor(),
		CounterDescriptor(),
		BranchDescriptor(),
		ConstantDescriptor(),
		SetVariableDescriptor(),
		graph.ParameterDescriptor(),
	}
}

// Register adds the built-in node types to reg.
func Register(reg *graph.Registry) {
	for _, d := range Descriptors() {
		reg.MustRegister(d)
	}
}

// NewRegistry returns a registry holding the built-in node types.
func NewRegistry() *graph.Registry {
	reg := graph.NewRegistry()
	Register(reg)
	return reg
}
