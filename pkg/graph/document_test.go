package graph

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/skillgraph/pkg/domain"
)

type shape struct {
	nodes  map[string]string // guid -> type|name|x|y
	edges  []domain.EdgeKey
	params map[string]any
}

func shapeOf(t *testing.T, g *Graph) shape {
	t.Helper()
	s := shape{nodes: map[string]string{}, params: map[string]any{}}
	for _, n := range g.Nodes() {
		s.nodes[n.GUID] = n.Type() + "|" + n.CustomName + "|" + jsonString(t, n.Position)
	}
	for _, e := range g.Edges() {
		s.edges = append(s.edges, e.Record().Key())
	}
	sort.Slice(s.edges, func(i, j int) bool { return jsonString(t, s.edges[i]) < jsonString(t, s.edges[j]) })
	for _, p := range g.Parameters() {
		s.params[p.GUID] = p.Value
	}
	return s
}

func jsonString(t *testing.T, v any) string {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func buildSample(t *testing.T, reg *Registry) *Graph {
	t.Helper()
	g := New(WithName("sample"))
	xGUID, err := g.AddParameter("X", "int", 4)
	require.NoError(t, err)
	_, err = g.AddParameter("Speed", "vector2", []float64{1.5, 2})
	require.NoError(t, err)

	src := addNode(t, g, reg, "source")
	src.Behavior().(*source).Amount = 12
	src.CustomName = "Producer"
	dst := addNode(t, g, reg, "sink")
	dst.Position = domain.Position{X: 300, Y: 40, Width: 120, Height: 60}
	next := addNode(t, g, reg, "sink")
	require.NoError(t, next.SetInput("in", 3))

	get := NewParameterNode(xGUID, AccessorGet, domain.Position{X: 5})
	require.NoError(t, g.AddNode(get))

	_, err = g.Connect(port(t, dst, "in"), port(t, src, "out"))
	require.NoError(t, err)
	_, err = g.Connect(port(t, next, FieldStart), port(t, dst, FieldEnd))
	require.NoError(t, err)
	_, err = g.Connect(port(t, next, "many"), get.GetAllPorts()[0])
	require.NoError(t, err)
	require.NoError(t, g.SetEntryNode(dst.GUID))
	return g
}

func TestDocument_RoundTrip(t *testing.T) {
	reg := testRegistry(t)
	g := buildSample(t, reg)

	codecs := map[string]struct {
		marshal   func(any) ([]byte, error)
		unmarshal func([]byte, any) error
	}{
		"json": {json.Marshal, json.Unmarshal},
		"yaml": {yaml.Marshal, yaml.Unmarshal},
	}

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			doc, err := g.Document()
			require.NoError(t, err)
			data, err := codec.marshal(doc)
			require.NoError(t, err)

			var decoded domain.GraphDocument
			require.NoError(t, codec.unmarshal(data, &decoded))

			loaded, err := Load(&decoded, reg)
			require.NoError(t, err)

			assert.Equal(t, shapeOf(t, g), shapeOf(t, loaded))
			assert.Equal(t, g.ID, loaded.ID)
			assert.Equal(t, "sample", loaded.Name)

			entry, ok := loaded.EntryNode()
			require.True(t, ok)
			assert.Equal(t, g.EntryGUID(), entry.GUID)

			for _, n := range g.Nodes() {
				ln, ok := loaded.Node(n.GUID)
				require.True(t, ok)
				assert.Equal(t, portFields(n), portFields(ln))
				want, err := n.Record()
				require.NoError(t, err)
				got, err := ln.Record()
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}

			again, err := loaded.Document()
			require.NoError(t, err)
			assert.True(t, domain.Diff(doc, again).Empty())
		})
	}
}

func TestLoad_DropsUnresolvable(t *testing.T) {
	reg := testRegistry(t)
	doc := &domain.GraphDocument{
		ID: "g",
		Nodes: []domain.NodeRecord{
			{GUID: "a", Type: "source"},
			{GUID: "b", Type: "sink"},
			{GUID: "p", Type: ParameterNodeType, Fields: map[string]any{"parameter_guid": "gone", "accessor": "get"}},
		},
		Edges: []domain.EdgeRecord{
			{GUID: "ok", InputNodeGUID: "b", InputField: "in", OutputNodeGUID: "a", OutputField: "out"},
			{GUID: "dangling", InputNodeGUID: "b", InputField: "many", OutputNodeGUID: "p", OutputField: "output"},
			{GUID: "mistyped", InputNodeGUID: "b", InputField: "in", OutputNodeGUID: "a", OutputField: "text"},
		},
		EntryNodeGUID: "missing",
	}

	g, err := Load(doc, reg)
	require.NoError(t, err)

	assert.Len(t, g.Nodes(), 2, "parameter node with unknown parameter drops out")
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, "ok", g.Edges()[0].GUID)
	_, ok := g.EntryNode()
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	reg := testRegistry(t)

	_, err := Load(&domain.GraphDocument{Nodes: []domain.NodeRecord{{GUID: "x", Type: "unknown"}}}, reg)
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)

	_, err = Load(&domain.GraphDocument{Nodes: []domain.NodeRecord{{GUID: "x", Type: "source", Fields: map[string]any{"amount": "many"}}}}, reg)
	assert.Error(t, err)

	_, err = Load(&domain.GraphDocument{Parameters: []domain.ParameterRecord{{GUID: "p", Type: "int", Value: "x"}}}, reg)
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)

	_, err = Load(nil, reg)
	assert.Error(t, err)
}
