package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/skillgraph/pkg/adapters/redis"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunGraphStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.ContractDocument("short-lived")))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "short-lived")

	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, "short-lived")
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)

	// the index is pruned against the wall clock
	time.Sleep(1200 * time.Millisecond)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.ContractDocument("mine")))
	assert.True(t, mr.Exists("custom:app:mine"))
	assert.True(t, mr.Exists("custom:app:index"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, ids)
}

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunLockerContract(t, redis.NewLocker(client, "test:"))
}

func TestRedisLocker_KeyLayout(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "graph-1", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:graph-1"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:graph-1"))
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "graph-2", time.Second)
	require.NoError(t, err)

	// the lock expires and someone else takes it
	mr.FastForward(2 * time.Second)
	other, err := locker.Lock(ctx, "graph-2", 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:graph-2"), "stale release leaves the new holder alone")
	require.NoError(t, other(ctx))
}
