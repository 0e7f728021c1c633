package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "k", "v1"))
	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.NoError(t, kv.Set(ctx, "k", "v2"))
	v, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, kv.Remove(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	require.ErrorIs(t, err, ErrNotFound)

	// removing twice is fine
	require.NoError(t, kv.Remove(ctx, "k"))
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestSQLiteKVInMemory(t *testing.T) {
	kv, err := OpenSQLiteKV("file:kvtest?mode=memory&cache=shared")
	require.NoError(t, err)
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestSQLiteKVPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	kv, err := OpenSQLiteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, Key, `{"periodsByYear":{},"lastUpdated":0}`))
	require.NoError(t, kv.Close())

	kv, err = OpenSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()
	v, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	assert.Equal(t, `{"periodsByYear":{},"lastUpdated":0}`, v)
}

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := NewRedisKV(client)
	exerciseKV(t, kv)

	require.NoError(t, kv.Set(context.Background(), Key, "x"))
	assert.True(t, mr.Exists(redisKeyPrefix+Key))
	assert.Zero(t, mr.TTL(redisKeyPrefix+Key))
}
