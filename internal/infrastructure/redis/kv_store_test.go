package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/mesa-api/internal/domain"
)

// setupTestRedis levanta un miniredis y devuelve el store apuntando a él.
func setupTestRedis(t *testing.T) (*KVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewKVStore(client, "mesa:"), mr
}

func TestKVStore_SetGet(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "cart-storage:s1", []byte(`{"items":[]}`), 0))

	raw, err := mr.Get("mesa:cart-storage:s1")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, raw)

	got, err := s.Get(ctx, "cart-storage:s1")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(got))
}

func TestKVStore_Miss(t *testing.T) {
	s, _ := setupTestRedis(t)
	_, err := s.Get(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKVStore_TTL(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "auth-storage:s1", []byte("x"), time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("mesa:auth-storage:s1"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, "auth-storage:s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKVStore_Delete(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k"))
	assert.False(t, mr.Exists("mesa:k"))
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestKVStore_ErrorDeConexion(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
