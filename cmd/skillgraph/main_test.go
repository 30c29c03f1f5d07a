package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{
  "id": "demo",
  "name": "Demo",
  "entry_node": "s",
  "parameters": [{"guid": "p", "name": "Count", "type": "int", "value": 1}],
  "nodes": [
    {"guid": "s", "type": "entry"},
    {"guid": "w", "type": "wait", "fields": {"frames": 2}}
  ],
  "edges": [
    {"guid": "e", "input_node": "w", "input_field": "start", "output_node": "s", "output_field": "start_point"}
  ]
}`

// resetFlags restores every flag to its default; cobra keeps flag state
// between Execute calls on the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--store", "file", "--dir", dir, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return filepath.Join(dir, "store"), path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "skillgraph version ")
}

func TestRunFile(t *testing.T) {
	store, path := setup(t)

	out, err := execute(t, store, "run", path, "--set", "Count=4")
	require.NoError(t, err)
	assert.Contains(t, out, "finished after 2 frames")
	assert.Contains(t, out, "Count (int) = 4")

	out, err = execute(t, store, "run", path, "--max-ticks", "1", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"tick_limited": true`)
}

func TestGraphsAndParams(t *testing.T) {
	store, path := setup(t)

	out, err := execute(t, store, "graphs", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported demo")

	out, err = execute(t, store, "graphs", "list")
	require.NoError(t, err)
	assert.Equal(t, "demo\n", out)

	_, err = execute(t, store, "params", "set", "demo", "Count=7")
	require.NoError(t, err)

	out, err = execute(t, store, "params", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Count")
	assert.Contains(t, out, "7")

	out, err = execute(t, store, "diff", path, "demo")
	require.NoError(t, err)
	assert.Contains(t, out, `"parameters"`)

	out, err = execute(t, store, "diff", path, path)
	require.NoError(t, err)
	assert.Equal(t, "no changes\n", out)

	_, err = execute(t, store, "graphs", "delete", "demo")
	require.NoError(t, err)
	out, err = execute(t, store, "graphs", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestValidateAndExport(t *testing.T) {
	store, path := setup(t)

	out, err := execute(t, store, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "demo is valid (0 warnings)")

	out, err = execute(t, store, "graph", path)
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")

	out, err = execute(t, store, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Demo")

	broken := filepath.Join(filepath.Dir(path), "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"id": "broken", "nodes": [{"guid": "x", "type": "nope"}]}`), 0o644))
	out, err = execute(t, store, "validate", broken)
	assert.Error(t, err)
	assert.Contains(t, out, "unknown node type")
}

func TestBadConfig(t *testing.T) {
	_, err := execute(t, t.TempDir(), "version", "--store", "tape")
	assert.Error(t, err)
}
