package store

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStoreForTest(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return server, NewRedis(client, "")
}

func TestRedis(t *testing.T) {
	ctx := t.Context()

	t.Run("get returns ErrKeyNotFound for missing key", func(t *testing.T) {
		_, s := newRedisStoreForTest(t)

		_, err := s.Get(ctx, KeyRefreshToken)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		_, s := newRedisStoreForTest(t)

		require.NoError(t, s.Set(ctx, KeyRefreshToken, "RT1"))

		value, err := s.Get(ctx, KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "RT1", value)
	})

	t.Run("keys are namespaced by the default prefix", func(t *testing.T) {
		server, s := newRedisStoreForTest(t)

		require.NoError(t, s.Set(ctx, KeyRefreshToken, "RT1"))

		raw, err := server.Get("fotofair:session:" + KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "RT1", raw)
	})

	t.Run("custom prefix isolates installations", func(t *testing.T) {
		server := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() {
			_ = client.Close()
		})

		kioskA := NewRedis(client, "kiosk-a")
		kioskB := NewRedis(client, "kiosk-b")

		require.NoError(t, kioskA.Set(ctx, KeyRefreshToken, "RT-a"))

		_, err := kioskB.Get(ctx, KeyRefreshToken)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("delete removes key and is idempotent", func(t *testing.T) {
		_, s := newRedisStoreForTest(t)

		require.NoError(t, s.Set(ctx, KeyUser, `{"id":"u1"}`))
		require.NoError(t, s.Delete(ctx, KeyUser))
		require.NoError(t, s.Delete(ctx, KeyUser))

		_, err := s.Get(ctx, KeyUser)
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}
