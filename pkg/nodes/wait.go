package nodes

import (
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// Wait finishes after Frames update calls. Zero or fewer frames finish on start.
type Wait struct {
	Frames int `mapstructure:"frames"`

	elapsed int
}

func WaitDescriptor() graph.Descriptor {
	return graph.Descriptor{
		Type:       TypeWait,
		Name:       "Wait",
		Sequential: true,
		Fields:     schema.Schema{"frames": schema.Int()},
		New:        func() graph.Behavior { return &Wait{Frames: 1} },
	}
}

func (w *Wait) Start(n *graph.Node) error {
	w.elapsed = 0
	if w.Frames <= 0 {
		n.Finish()
	}
	return nil
}

func (w *Wait) Update(n *graph.Node) error {
	w.elapsed++
	if w.elapsed >= w.Frames {
		n.Finish()
	}
	return nil
}

// Elapsed returns the updates received since the last start.
func (w *Wait) Elapsed() int { return w.elapsed }
