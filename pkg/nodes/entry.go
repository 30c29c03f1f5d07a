package nodes

import (
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// EntryOutputField is the control output of the entry node.
const EntryOutputField = "start_point"

// Entry is where a skill begins. Its start does nothing; the scheduler walks
// its control output right after.
type Entry struct{}

func EntryDescriptor() graph.Descriptor {
	return graph.Descriptor{
		Type: TypeEntry,
		Name: "Start",
		Ports: []graph.PortSpec{{
			Field:       EntryOutputField,
			DisplayName: "GraphStartPoint",
			Direction:   graph.Output,
			Type:        schema.Control(),
			Multiple:    true,
			Control:     true,
		}},
		New: func() graph.Behavior { return &Entry{} },
	}
}

func (e *Entry) Start(*graph.Node) error  { return nil }
func (e *Entry) Update(*graph.Node) error { return nil }
