package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	ctx := t.Context()

	_, found, err := store.Get(ctx, "telemetry")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "telemetry", []byte(`{"a":1}`), time.Hour))
	value, found, err := store.Get(ctx, "telemetry")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"a":1}`, string(value))
	assert.Equal(t, time.Hour, s.TTL("telemetry"))

	s.FastForward(2 * time.Hour)
	_, found, err = store.Get(ctx, "telemetry")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStoreReportsErrors(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)

	s.SetError("LOADING")
	_, _, err := store.Get(t.Context(), "telemetry")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(1024)
	ctx := t.Context()

	value := []byte("snapshot")
	require.NoError(t, store.Set(ctx, "k", value, time.Hour))
	value[0] = 'X'

	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "snapshot", string(got))

	_, found, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProvideFallsBackToMemory(t *testing.T) {
	store := Provide(Params{Log: zap.NewNop()})
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store = Provide(Params{Client: client, Log: zap.NewNop()})
	_, ok = store.(*RedisStore)
	assert.True(t, ok)
}
