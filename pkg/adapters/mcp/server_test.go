package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/dsl"
	"github.com/aretw0/skillgraph/pkg/nodes"
)

func newTestServer(t *testing.T, frames int) *Server {
	t.Helper()
	eng := skillgraph.New()
	b := dsl.New(eng.Registry()).ID("mcp").Param("X", "int", 1).Param("Label", "string", "a")
	b.Add("start", nodes.TypeEntry).Then("wait")
	b.Add("wait", nodes.TypeWait).Field("frames", frames)
	g, err := b.Build()
	require.NoError(t, err)
	return NewServer(eng.NewWorkspace(g))
}

func call(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var tool *server.ServerTool
	for _, st := range s.tools() {
		if st.Tool.Name == name {
			tool = &st
			break
		}
	}
	require.NotNil(t, tool, "tool %s is registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestTools_Registered(t *testing.T) {
	s := newTestServer(t, 1)
	var names []string
	for _, st := range s.tools() {
		names = append(names, st.Tool.Name)
	}
	assert.ElementsMatch(t, []string{"get_graph", "get_mermaid", "list_parameters", "set_parameter", "run_skill"}, names)
}

func TestGetGraph(t *testing.T) {
	s := newTestServer(t, 1)
	res := call(t, s, "get_graph", nil)
	assert.False(t, res.IsError)

	var doc domain.GraphDocument
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &doc))
	assert.Equal(t, "mcp", doc.ID)
	assert.Len(t, doc.Nodes, 2)
}

func TestGetMermaid(t *testing.T) {
	s := newTestServer(t, 1)
	assert.Contains(t, text(t, call(t, s, "get_mermaid", nil)), "graph TD")
}

func TestParameters(t *testing.T) {
	s := newTestServer(t, 1)

	res := call(t, s, "list_parameters", nil)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"Label"`)

	res = call(t, s, "set_parameter", map[string]any{"name": "X", "value": "7"})
	require.False(t, res.IsError, text(t, res))
	var rec domain.ParameterRecord
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &rec))
	assert.EqualValues(t, 7, rec.Value)

	res = call(t, s, "set_parameter", map[string]any{"name": "Label", "value": "plain words"})
	require.False(t, res.IsError, text(t, res))
	assert.Equal(t, "plain words", s.parameters()[1].Value)

	res = call(t, s, "set_parameter", map[string]any{"name": "X", "value": `"seven"`})
	assert.True(t, res.IsError)

	res = call(t, s, "set_parameter", map[string]any{"name": "Nope", "value": "1"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), domain.ErrParameterNotFound.Error())
}

func TestRunSkill(t *testing.T) {
	s := newTestServer(t, 3)

	res := call(t, s, "run_skill", nil)
	require.False(t, res.IsError, text(t, res))
	var out RunResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "finished", out.Skill.State)
	assert.Equal(t, 3, out.Skill.Frame)
	assert.False(t, out.TickLimited)
	assert.Len(t, out.Parameters, 2)

	res = call(t, s, "run_skill", map[string]any{"max_ticks": 2})
	require.False(t, res.IsError, text(t, res))
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.True(t, out.TickLimited)
	assert.Equal(t, "running", out.Skill.State)
}

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, float64(5), decodeValue("5"))
	assert.Equal(t, true, decodeValue("true"))
	assert.Equal(t, "quoted", decodeValue(`"quoted"`))
	assert.Equal(t, "bare words", decodeValue("bare words"))
}
