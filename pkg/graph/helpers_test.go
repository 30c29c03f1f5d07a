package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/schema"
)

type source struct {
	Amount int `mapstructure:"amount"`
}

func (s *source) Start(*Node) error  { return nil }
func (s *source) Update(*Node) error { return nil }

type sink struct{}

func (s *sink) Start(n *Node) error { n.Finish(); return nil }
func (s *sink) Update(*Node) error  { return nil }

type sticky struct{ sink }

func (s *sticky) CanResetPort(*Port) bool { return false }

type reordered struct{ sink }

func (r *reordered) OverrideFieldOrder(fields []PortSpec) []PortSpec {
	out := make([]PortSpec, len(fields))
	for i := range fields {
		out[len(fields)-1-i] = fields[i]
	}
	return out
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.Register(Descriptor{
		Type: "source",
		Ports: []PortSpec{
			{Field: "out", DisplayName: "Out", Direction: Output, Type: schema.Int(), Multiple: true},
			{Field: "text", DisplayName: "Text", Direction: Output, Type: schema.String()},
		},
		Fields: schema.Schema{"amount": schema.Int()},
		New:    func() Behavior { return &source{} },
	}))
	require.NoError(t, reg.Register(Descriptor{
		Type:       "sink",
		Sequential: true,
		Ports: []PortSpec{
			{Field: "in", DisplayName: "In", Direction: Input, Type: schema.Int()},
			{Field: "many", DisplayName: "Many", Direction: Input, Type: schema.Int(), Multiple: true},
		},
		New: func() Behavior { return &sink{} },
	}))
	require.NoError(t, reg.Register(Descriptor{
		Type:       "sticky",
		Sequential: true,
		Ports:      []PortSpec{{Field: "in", DisplayName: "In", Direction: Input, Type: schema.Int()}},
		New:        func() Behavior { return &sticky{} },
	}))
	require.NoError(t, reg.Register(Descriptor{
		Type:       "reordered",
		Sequential: true,
		Ports:      []PortSpec{{Field: "in", DisplayName: "In", Direction: Input, Type: schema.Int()}},
		New:        func() Behavior { return &reordered{} },
	}))
	require.NoError(t, reg.Register(ParameterDescriptor()))
	return reg
}

func addNode(t *testing.T, g *Graph, reg *Registry, typ string) *Node {
	t.Helper()
	n, err := reg.Create(typ, domain.Position{X: 10, Y: 20})
	require.NoError(t, err)
	require.NoError(t, g.AddNode(n))
	return n
}

func port(t *testing.T, n *Node, field string) *Port {
	t.Helper()
	p, ok := n.GetPort(field, "")
	require.True(t, ok, "port %s on %s", field, n)
	return p
}

func portFields(n *Node) []string {
	var out []string
	for _, p := range n.GetAllPorts() {
		out = append(out, p.Key())
	}
	return out
}

type recorder struct {
	changes []domain.GraphChange
}

func (r *recorder) hooks() Hooks {
	return Hooks{OnGraphChanges: func(c domain.GraphChange) { r.changes = append(r.changes, c) }}
}

func (r *recorder) kinds() []domain.ChangeKind {
	var out []domain.ChangeKind
	for _, c := range r.changes {
		out = append(out, c.Kind)
	}
	return out
}
