package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph/pkg/domain"
)

func TestParameters(t *testing.T) {
	var listChanges, modified int
	var lastValue any
	g := New(WithHooks(Hooks{
		OnParameterListChanged:  func() { listChanges++ },
		OnParameterModified:     func(string) { modified++ },
		OnParameterValueChanged: func(_ string, v any) { lastValue = v },
	}))

	guid, err := g.AddParameter("X", "int", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, listChanges)

	p, ok := g.Parameter(guid)
	require.True(t, ok)
	assert.Equal(t, 0, p.Value, "nil stores the type default")

	require.NoError(t, g.UpdateParameter(guid, float64(5)))
	assert.Equal(t, 5, p.Value)
	assert.Equal(t, 5, lastValue)
	assert.Equal(t, 1, modified)

	err = g.UpdateParameter(guid, "five")
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
	var tm *TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "int", tm.Expected)
	assert.Equal(t, 5, p.Value, "failed update leaves the value")

	require.NoError(t, g.RenameParameter(guid, "Y"))
	_, ok = g.ParameterByName("X")
	assert.False(t, ok)
	v, ok := g.ParameterValue("Y")
	require.True(t, ok)
	assert.Equal(t, 5, v)

	found, err := g.SetParameterValue("Y", 8)
	require.NoError(t, err)
	assert.True(t, found)
	found, err = g.SetParameterValue("missing", 8)
	require.NoError(t, err)
	assert.False(t, found)

	_, ok = g.Parameter("missing")
	assert.False(t, ok)
	assert.ErrorIs(t, g.UpdateParameter("missing", 1), domain.ErrParameterNotFound)

	_, err = g.AddParameter("bad", "int", "x")
	assert.ErrorIs(t, err, domain.ErrTypeMismatch)
	_, err = g.AddParameter("bad", "nope", nil)
	assert.Error(t, err)
}

func TestParameterNode_SinglePortFollowsAccessor(t *testing.T) {
	reg := testRegistry(t)
	g := New()
	guid, err := g.AddParameter("X", "int", 3)
	require.NoError(t, err)

	n := NewParameterNode(guid, AccessorGet, domain.Position{})
	require.NoError(t, g.AddNode(n))

	require.Len(t, n.GetAllPorts(), 1)
	out := n.GetAllPorts()[0]
	assert.Equal(t, Output, out.Direction)
	assert.Equal(t, "int", out.Type.Name())
	assert.True(t, out.Multiple)

	dst := addNode(t, g, reg, "sink")
	_, err = g.Connect(port(t, dst, "in"), out)
	require.NoError(t, err)

	require.NoError(t, g.SetParameterAccessor(n, AccessorSet))
	require.Len(t, n.GetAllPorts(), 1)
	in := n.GetAllPorts()[0]
	assert.Equal(t, Input, in.Direction)
	assert.Equal(t, ParameterInputField, in.Field)
	assert.Equal(t, "int", in.Type.Name())
	assert.Empty(t, g.Edges(), "edges of the removed port are disconnected")
	assert.False(t, dst.IsInputPortConnected("in"))

	src := addNode(t, g, reg, "source")
	_, err = g.Connect(in, port(t, src, "out"))
	require.NoError(t, err)

	require.NoError(t, g.SetParameterAccessor(n, AccessorGet))
	require.Len(t, n.GetAllPorts(), 1)
	assert.Equal(t, Output, n.GetAllPorts()[0].Direction)
	assert.Empty(t, g.Edges())

	assert.Error(t, g.SetParameterAccessor(n, "sideways"))
	assert.Error(t, g.SetParameterAccessor(dst, AccessorGet))
}

func TestParameterNode_UnboundIsUntyped(t *testing.T) {
	n := NewParameterNode("nowhere", AccessorGet, domain.Position{})
	n.rebuildPorts()
	require.Len(t, n.GetAllPorts(), 1)
	assert.Equal(t, "any", n.GetAllPorts()[0].Type.Name())
}

func TestParameterNode_UnresolvedRemovesItself(t *testing.T) {
	rec := &recorder{}
	g := New(WithHooks(rec.hooks()))

	n := NewParameterNode("missing-guid", AccessorGet, domain.Position{})
	require.NoError(t, g.AddNode(n), "unresolved parameters are tolerated")

	_, ok := g.Node(n.GUID)
	assert.False(t, ok)
	assert.Equal(t, domain.ChangeRemovedNode, rec.changes[len(rec.changes)-1].Kind)
}

func TestParameterNode_GetAndAssign(t *testing.T) {
	g := New()
	guid, err := g.AddParameter("X", "int", 1)
	require.NoError(t, err)

	get := NewParameterNode(guid, AccessorGet, domain.Position{})
	set := NewParameterNode(guid, AccessorSet, domain.Position{})
	require.NoError(t, g.AddNode(get))
	require.NoError(t, g.AddNode(set))

	require.NoError(t, set.SetInput(ParameterInputField, 5))
	require.NoError(t, set.Behavior().(*ParameterNode).Assign(set))

	require.NoError(t, get.ResolveOutputs())
	assert.Equal(t, 5, get.Output(ParameterOutputField))

	assert.Error(t, get.Behavior().(*ParameterNode).Assign(get), "get nodes do not assign")
	assert.Error(t, set.SetInput(ParameterInputField, "text"))
}

func TestRemoveParameter_DeletesBoundNodes(t *testing.T) {
	reg := testRegistry(t)
	g := New()
	guid, err := g.AddParameter("X", "int", 1)
	require.NoError(t, err)
	get := NewParameterNode(guid, AccessorGet, domain.Position{})
	require.NoError(t, g.AddNode(get))
	dst := addNode(t, g, reg, "sink")
	_, err = g.Connect(port(t, dst, "in"), get.GetAllPorts()[0])
	require.NoError(t, err)

	assert.True(t, g.RemoveParameter(guid))
	assert.False(t, g.RemoveParameter(guid))
	_, ok := g.Node(get.GUID)
	assert.False(t, ok)
	assert.Empty(t, g.Edges())
}
