package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/modguard"
	"github.com/wippyai/modguard/errors"
	"github.com/wippyai/modguard/guard"
)

var _ modguard.Store = (*Redis)(nil)

func newRedis(t *testing.T, prefix string) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := DialRedis(RedisConfig{Addr: mr.Addr(), Prefix: prefix})
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, "modguard:")

	require.NoError(t, r.Create(ctx, "cart", "state"))
	assert.True(t, mr.Exists("modguard:cart"))

	ok, err := r.HasKey(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)

	b, err := r.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, "state", string(b))

	require.NoError(t, r.Destroy(ctx, "cart"))
	assert.False(t, mr.Exists("modguard:cart"))
	assert.ErrorIs(t, r.Destroy(ctx, "cart"), errors.ErrNotFound)

	_, err = r.Get(ctx, "cart")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRedis_Descriptors(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, "")

	require.NoError(t, r.Create(ctx, "bytes", []byte{1, 2}))
	require.NoError(t, r.Create(ctx, "json", map[string]int{"num": 1}))
	require.NoError(t, r.Create(ctx, "nil", nil))

	got, err := mr.Get("json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"num":1}`, got)

	err = r.Create(ctx, "bad", make(chan int))
	assert.ErrorIs(t, err, errors.ErrInvalidDescriptor)
	assert.False(t, mr.Exists("bad"))
}

func TestRedis_CreateOverwrites(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, "")

	require.NoError(t, r.Create(ctx, "module", "m1"))
	require.NoError(t, r.Create(ctx, "module", "m2"))
	got, err := mr.Get("module")
	require.NoError(t, err)
	assert.Equal(t, "m2", got)
}

func TestRedis_ServerDown(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, "")
	mr.Close()

	assert.ErrorIs(t, r.Create(ctx, "k", "v"), errors.ErrStoreFault)
	_, err := r.HasKey(ctx, "k")
	assert.ErrorIs(t, err, errors.ErrStoreFault)
}

func TestRedis_SharedClientNotClosed(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewRedis(client, "p:")
	require.NoError(t, r.Close())
	require.NoError(t, client.Ping(ctx).Err())
}

func TestRedis_GuardKeepsFirstState(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedis(t, "")
	g, err := guard.New(r, guard.Config{})
	require.NoError(t, err)

	require.NoError(t, g.Acquire(ctx, "module", `{"foo":"m1"}`))
	require.NoError(t, g.Acquire(ctx, "module", `{}`))
	got, err := mr.Get("module")
	require.NoError(t, err)
	assert.Equal(t, `{"foo":"m1"}`, got)

	require.NoError(t, g.Release(ctx, "module"))
	require.NoError(t, g.Release(ctx, "module"))
	assert.False(t, mr.Exists("module"))
}
