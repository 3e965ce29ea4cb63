package state

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStore(RedisOptions{
		URL: fmt.Sprintf("redis://%s", mr.Addr()),
		Key: "genattr:counters:test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, store.Save(ctx, map[string]int{"employeeId": 42, "badge": 7}))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"employeeId": 42, "badge": 7}, loaded)
}

func TestRedisStoreSaveReplaces(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]int{"stale": 1}))
	require.NoError(t, store.Save(ctx, map[string]int{"employeeId": 5}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"employeeId": 5}, loaded)
}

func TestRedisStoreRejectsCorruptValues(t *testing.T) {
	store, mr := setupRedisStore(t)

	mr.HSet("genattr:counters:test", "employeeId", "not-a-number")

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageFailed)
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore(RedisOptions{URL: "://bad"})
	assert.Error(t, err)
}
