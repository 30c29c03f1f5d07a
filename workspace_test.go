package skillgraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/nodes"
)

func TestWorkspace_Skills(t *testing.T) {
	eng := skillgraph.New()
	ws := eng.NewWorkspace(waitGraph(t, eng, "ws", 2))

	st, err := ws.StartSkill(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "running", st.State)
	assert.Len(t, st.Running, 1)

	statuses := ws.Tick()
	require.Len(t, statuses, 1)
	assert.Equal(t, 1, statuses[0].Frame)

	statuses = ws.Tick()
	assert.Equal(t, "finished", statuses[0].State)
	assert.Empty(t, statuses[0].Running)

	run, err := ws.RunSkill(t.Context(), skillgraph.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "finished", run.State)
	assert.Equal(t, 2, run.Frame)

	all := ws.Skills()
	require.Len(t, all, 2)
	assert.Equal(t, st.ID, all[0].ID)
	assert.Equal(t, run.ID, all[1].ID)
}

func TestWorkspace_StartSkillOutlivesRequest(t *testing.T) {
	var tickErrs []error
	eng := skillgraph.New(skillgraph.WithHooks(domain.SkillHooks{
		OnTick: func(ctx context.Context, _ *domain.SkillEvent) {
			tickErrs = append(tickErrs, ctx.Err())
		},
	}))
	ws := eng.NewWorkspace(waitGraph(t, eng, "ws", 2))

	req, cancel := context.WithCancel(t.Context())
	_, err := ws.StartSkill(req)
	require.NoError(t, err)
	cancel()

	ws.Tick()
	statuses := ws.Tick()
	assert.Equal(t, "finished", statuses[0].State)
	assert.Equal(t, []error{nil, nil}, tickErrs)
}

func TestWorkspace_RunSkillTickLimit(t *testing.T) {
	eng := skillgraph.New()
	ws := eng.NewWorkspace(waitGraph(t, eng, "ws", 50))

	st, err := ws.RunSkill(t.Context(), skillgraph.RunOptions{MaxTicks: 5})
	assert.ErrorIs(t, err, skillgraph.ErrTickLimit)
	assert.Equal(t, 5, st.Frame)
	assert.Equal(t, "running", st.State)
}

func TestWorkspace_Subscribe(t *testing.T) {
	eng := skillgraph.New()
	ws := eng.NewWorkspace(eng.NewGraph())

	changes, cancel := ws.Subscribe()
	err := ws.Do(func(g *graph.Graph) error {
		n, err := eng.Registry().Create(nodes.TypeLog, domain.Position{})
		if err != nil {
			return err
		}
		return g.AddNode(n)
	})
	require.NoError(t, err)

	c := <-changes
	assert.Equal(t, domain.ChangeAddedNode, c.Kind)

	cancel()
	_, open := <-changes
	assert.False(t, open)
	cancel()
}

func TestWorkspace_Save(t *testing.T) {
	eng := skillgraph.New()
	ws := eng.NewWorkspace(waitGraph(t, eng, "ws-saved", 1))
	require.NoError(t, ws.Save(t.Context()))

	doc, err := eng.Store().Load(t.Context(), "ws-saved")
	require.NoError(t, err)
	live, err := ws.Document()
	require.NoError(t, err)
	assert.True(t, domain.Diff(live, doc).Empty())
}
