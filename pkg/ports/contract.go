package ports

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph/pkg/domain"
)

// ContractDocument returns a small but complete document used by the
// contract suites: a parameter, three nodes and a control plus a data edge.
func ContractDocument(id string) *domain.GraphDocument {
	return &domain.GraphDocument{
		ID:            id,
		Name:          "contract",
		EntryNodeGUID: id + "-entry",
		Parameters: []domain.ParameterRecord{
			{GUID: id + "-x", Name: "X", Type: "string", Value: "five"},
		},
		Nodes: []domain.NodeRecord{
			{GUID: id + "-entry", Type: "entry", Position: domain.Position{X: 10, Y: 20}},
			{GUID: id + "-log", Type: "log", CustomName: "Say", Fields: map[string]any{"level": "info"}},
			{GUID: id + "-get", Type: "parameter", Fields: map[string]any{"parameter_guid": id + "-x", "accessor": "get"}},
		},
		Edges: []domain.EdgeRecord{
			{GUID: id + "-e1", InputNodeGUID: id + "-log", InputField: "start", InputMultiple: true, OutputNodeGUID: id + "-entry", OutputField: "start_point", OutputMultiple: true},
			{GUID: id + "-e2", InputNodeGUID: id + "-log", InputField: "message", OutputNodeGUID: id + "-get", OutputField: "output", OutputMultiple: true},
		},
	}
}

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore
// implementation adheres to the interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	id := "contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Save and Load", func(t *testing.T) {
		doc := ContractDocument(id)
		require.NoError(t, store.Save(ctx, doc))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, loaded.ID)
		assert.Equal(t, doc.Name, loaded.Name)
		assert.Equal(t, doc.EntryNodeGUID, loaded.EntryNodeGUID)
		assert.Equal(t, doc.Edges, loaded.Edges)
		require.Len(t, loaded.Nodes, len(doc.Nodes))
		for i := range doc.Nodes {
			assert.Equal(t, doc.Nodes[i].GUID, loaded.Nodes[i].GUID)
			assert.Equal(t, doc.Nodes[i].Type, loaded.Nodes[i].Type)
			assert.Equal(t, doc.Nodes[i].Position, loaded.Nodes[i].Position)
			assert.Equal(t, doc.Nodes[i].CustomName, loaded.Nodes[i].CustomName)
			assert.Equal(t, doc.Nodes[i].Fields, loaded.Nodes[i].Fields)
		}
		require.Len(t, loaded.Parameters, 1)
		assert.Equal(t, doc.Parameters[0].GUID, loaded.Parameters[0].GUID)
		assert.EqualValues(t, "five", loaded.Parameters[0].Value)
		assert.True(t, domain.Diff(doc, loaded).Empty())
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		doc := ContractDocument(id + "-iso")
		require.NoError(t, store.Save(ctx, doc))
		defer func() { _ = store.Delete(ctx, doc.ID) }()

		doc.Name = "mutated"
		doc.Nodes[0].Position.X = 999

		loaded, err := store.Load(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, "contract", loaded.Name)
		assert.Equal(t, 10.0, loaded.Nodes[0].Position.X)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		doc := ContractDocument(id)
		doc.Name = "renamed"
		require.NoError(t, store.Save(ctx, doc))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "renamed", loaded.Name)
	})

	t.Run("Save Without ID", func(t *testing.T) {
		assert.Error(t, store.Save(ctx, &domain.GraphDocument{Name: "anonymous"}))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := id+"-b", id+"-a"
		require.NoError(t, store.Save(ctx, ContractDocument(id1)))
		require.NoError(t, store.Save(ctx, ContractDocument(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
		assert.IsNonDecreasing(t, ids)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))
		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is fine")
	})
}

// RunLockerContract verifies mutual exclusion and release for a Locker.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	key := "contract-lock-" + time.Now().Format("150405.000000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NotNil(t, unlock)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Contention", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		short, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(short, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		var acquired atomic.Bool
		done := make(chan struct{})
		go func() {
			defer close(done)
			second, err := locker.Lock(ctx, key, 5*time.Second)
			if err == nil {
				acquired.Store(true)
				_ = second(ctx)
			}
		}()

		time.Sleep(50 * time.Millisecond)
		assert.False(t, acquired.Load(), "held lock blocks other callers")
		require.NoError(t, unlock(ctx))

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("waiter never acquired the released lock")
		}
		assert.True(t, acquired.Load())
	})
}
