package nodes

import (
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/schema"
)

// CounterLabelField is the data input of the counter node.
const CounterLabelField = "label"

// Counter counts its updates and finishes once it has seen Times of them.
// It keeps its label input so tests can check what the data pull delivered.
type Counter struct {
	Times int `mapstructure:"times"`

	label   string
	updates int
	starts  int
}

func CounterDescriptor() graph.Descriptor {
	return graph.Descriptor{
		Type:       TypeCounter,
		Name:       "Counter",
		Sequential: true,
		Ports: []graph.PortSpec{{
			Field:       CounterLabelField,
			DisplayName: "Label",
			Direction:   graph.Input,
			Type:        schema.String(),
		}},
		Fields: schema.Schema{"times": schema.Int()},
		New:    func() graph.Behavior { return &Counter{Times: 3} },
	}
}

func (c *Counter) Start(n *graph.Node) error {
	c.starts++
	c.updates = 0
	c.label, _ = n.Input(CounterLabelField).(string)
	return nil
}

func (c *Counter) Update(n *graph.Node) error {
	c.updates++
	if c.updates >= c.Times {
		n.Finish()
	}
	return nil
}

func (c *Counter) Label() string { return c.label }
func (c *Counter) Updates() int  { return c.updates }
func (c *Counter) Starts() int   { return c.starts }
