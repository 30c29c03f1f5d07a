package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph/pkg/adapters/sqlite"
	"github.com/aretw0/skillgraph/pkg/ports"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ports.RunGraphStoreContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphs.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, ports.ContractDocument("persisted")))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.Load(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "contract", doc.Name)
	assert.Len(t, doc.Nodes, 3)
}
