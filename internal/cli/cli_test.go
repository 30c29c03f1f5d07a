package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/internal/config"
	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/nodes"
)

const waitDoc = `{
  "id": "waiter",
  "entry_node": "s",
  "parameters": [{"guid": "p", "name": "X", "type": "int", "value": 1}],
  "nodes": [
    {"guid": "s", "type": "entry"},
    {"guid": "w", "type": "wait", "fields": {"frames": 3}}
  ],
  "edges": [
    {"guid": "e", "input_node": "w", "input_field": "start", "output_node": "s", "output_field": "start_point"}
  ]
}`

const waitYAML = `
id: waiter
entry_node: s
nodes:
  - guid: s
    type: entry
  - guid: w
    type: wait
    fields:
      frames: 3
edges:
  - guid: e
    input_node: w
    input_field: start
    output_node: s
    output_field: start_point
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newEngine() *skillgraph.Engine {
	return skillgraph.New(skillgraph.WithLogger(logging.NewNop()))
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"X=5", "Name=bob", "Flag=true", "Quoted=\"7\"", "List=[1,2]"})
	require.NoError(t, err)
	assert.Equal(t, json.Number("5"), got["X"])
	assert.Equal(t, "bob", got["Name"])
	assert.Equal(t, true, got["Flag"])
	assert.Equal(t, "7", got["Quoted"])
	assert.Len(t, got["List"], 2)

	for _, bad := range []string{"novalue", "=3"} {
		_, err := ParseAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestReadDocument(t *testing.T) {
	for name, content := range map[string]string{"waiter.json": waitDoc, "waiter.yaml": waitYAML} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, content)
			assert.True(t, IsDocumentPath(path))

			doc, err := ReadDocument(path)
			require.NoError(t, err)
			assert.Equal(t, "waiter", doc.ID)
			assert.Equal(t, "s", doc.EntryNodeGUID)
			require.Len(t, doc.Nodes, 2)
			assert.EqualValues(t, 3, doc.Nodes[1].Fields["frames"])
		})
	}

	t.Run("ID From File Name", func(t *testing.T) {
		path := writeFile(t, "anon.json", `{"nodes": []}`)
		doc, err := ReadDocument(path)
		require.NoError(t, err)
		assert.Equal(t, "anon", doc.ID)
	})

	assert.False(t, IsDocumentPath("waiter"), "plain ids go to the store")
	assert.False(t, IsDocumentPath(filepath.Join(t.TempDir(), "missing.json")))
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	eng := newEngine()
	path := writeFile(t, "waiter.json", waitDoc)

	res, err := RunOnce(ctx, eng, RunOptions{Ref: path, Params: []string{"X=9"}, Save: true})
	require.NoError(t, err)
	assert.Equal(t, "waiter", res.Graph)
	assert.Equal(t, "finished", res.Skill.State)
	assert.Equal(t, 3, res.Skill.Frame)
	require.Len(t, res.Parameters, 1)
	assert.Equal(t, 9, res.Parameters[0].Value)

	stored, err := eng.Store().Load(ctx, "waiter")
	require.NoError(t, err)
	assert.EqualValues(t, 9, stored.Parameters[0].Value, "saved with the override")

	t.Run("From Store", func(t *testing.T) {
		res, err := RunOnce(ctx, eng, RunOptions{Ref: "waiter"})
		require.NoError(t, err)
		assert.Equal(t, "finished", res.Skill.State)
	})

	t.Run("Tick Limit", func(t *testing.T) {
		res, err := RunOnce(ctx, eng, RunOptions{Ref: path, MaxTicks: 1})
		require.NoError(t, err)
		assert.True(t, res.TickLimited)
		assert.Equal(t, "running", res.Skill.State)
	})

	t.Run("Unknown Parameter", func(t *testing.T) {
		_, err := RunOnce(ctx, eng, RunOptions{Ref: path, Params: []string{"Y=1"}})
		assert.ErrorIs(t, err, domain.ErrParameterNotFound)
	})

	t.Run("Missing Graph", func(t *testing.T) {
		_, err := RunOnce(ctx, eng, RunOptions{Ref: "nope"})
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})
}

func TestExecute_Output(t *testing.T) {
	path := writeFile(t, "waiter.json", waitDoc)

	var text bytes.Buffer
	require.NoError(t, Execute(context.Background(), newEngine(), RunOptions{Ref: path}, &text))
	assert.Contains(t, text.String(), "finished after 3 frames")
	assert.Contains(t, text.String(), "X (int) = 1")

	var js bytes.Buffer
	require.NoError(t, Execute(context.Background(), newEngine(), RunOptions{Ref: path, JSON: true}, &js))
	var res RunResult
	require.NoError(t, json.Unmarshal(js.Bytes(), &res))
	assert.Equal(t, 3, res.Skill.Frame)

	err := Execute(context.Background(), newEngine(), RunOptions{Ref: "waiter", Watch: true}, &js)
	assert.Error(t, err, "watch mode needs a file")
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		cfg  config.StoreConfig
	}{
		{"Memory", config.StoreConfig{Backend: config.BackendMemory}},
		{"File", config.StoreConfig{Backend: config.BackendFile, Dir: t.TempDir(), Format: "yaml"}},
		{"SQLite", config.StoreConfig{Backend: config.BackendSQLite, SQLitePath: ":memory:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := OpenBackend(ctx, tt.cfg)
			require.NoError(t, err)
			defer b.Close()

			g, err := skillgraph.New(skillgraph.WithStore(b.Store), skillgraph.WithLocker(b.Locker)).
				LoadDocument(&domain.GraphDocument{ID: "g"})
			require.NoError(t, err)
			require.NotNil(t, g)
			require.NoError(t, b.Store.Save(ctx, &domain.GraphDocument{ID: "g"}))
			ids, err := b.Store.List(ctx)
			require.NoError(t, err)
			assert.Contains(t, ids, "g")
		})
	}

	_, err := OpenBackend(ctx, config.StoreConfig{Backend: "tape"})
	assert.Error(t, err)
}

func TestOpenBackend_RedisLockKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	b, err := OpenBackend(ctx, config.StoreConfig{
		Backend:     config.BackendRedis,
		RedisAddr:   mr.Addr(),
		RedisPrefix: "sg:",
	})
	require.NoError(t, err)
	defer b.Close()

	unlock, err := b.Locker.Lock(ctx, "run:g", time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("sg:lock:run:g"))
	assert.False(t, mr.Exists("sg:lock:lock:run:g"))
	require.NoError(t, unlock(ctx))
}

func TestOpenBackend_Middleware(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.StoreConfig{
		Backend:       config.BackendFile,
		Dir:           dir,
		Format:        "json",
		EncryptionKey: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		MaskPatterns:  []string{"^Secret"},
	}
	b, err := OpenBackend(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	doc := &domain.GraphDocument{ID: "sealed", Parameters: []domain.ParameterRecord{
		{GUID: "a", Name: "SecretToken", Type: "string", Value: "hunter2"},
		{GUID: "b", Name: "Visible", Type: "string", Value: "hello"},
	}}
	require.NoError(t, b.Store.Save(ctx, doc))

	raw, err := os.ReadFile(filepath.Join(dir, "sealed.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hello", "sealed at rest")
	assert.NotContains(t, string(raw), "hunter2")

	loaded, err := b.Store.Load(ctx, "sealed")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Parameters[0].Value)
	assert.Equal(t, "hello", loaded.Parameters[1].Value)

	cfg.MaskPatterns = []string{"("}
	_, err = OpenBackend(ctx, cfg)
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Store.Backend = config.BackendMemory

	eng, b, err := NewEngine(context.Background(), cfg, logging.NewNop(), domain.SkillHooks{})
	require.NoError(t, err)
	defer b.Close()
	assert.Same(t, b.Store, eng.Store())
	_, ok := eng.Registry().Lookup(nodes.TypeWait)
	assert.True(t, ok)
}
