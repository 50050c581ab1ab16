package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/modguard"
	"github.com/wippyai/modguard/errors"
	"github.com/wippyai/modguard/guard"
)

var _ modguard.Store = (*Memory)(nil)

type dropCounter struct {
	name  string
	drops *int
}

func (d dropCounter) Drop() { *d.drops++ }

func TestMemory_Basic(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Create(ctx, "cart", "state"))
	ok, err := m.HasKey(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)

	v, ok := m.Get("cart")
	require.True(t, ok)
	assert.Equal(t, "state", v)
	assert.Equal(t, []string{"cart"}, m.Keys())

	require.NoError(t, m.Destroy(ctx, "cart"))
	ok, err = m.HasKey(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_DestroyMissing(t *testing.T) {
	err := NewMemory().Destroy(context.Background(), "nope")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestMemory_CreateReplacesAndDrops(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	var drops int

	require.NoError(t, m.Create(ctx, "module", dropCounter{name: "m1", drops: &drops}))
	require.NoError(t, m.Create(ctx, "module", dropCounter{name: "m2", drops: &drops}))
	assert.Equal(t, 1, drops)

	v, _ := m.Get("module")
	assert.Equal(t, "m2", v.(dropCounter).name)

	require.NoError(t, m.Destroy(ctx, "module"))
	assert.Equal(t, 2, drops)
}

func TestMemory_Close(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	var drops int
	require.NoError(t, m.Create(ctx, "a", dropCounter{drops: &drops}))
	require.NoError(t, m.Create(ctx, "b", dropCounter{drops: &drops}))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 2, drops)
	assert.Equal(t, 0, m.Len())

	assert.ErrorIs(t, m.Create(ctx, "a", nil), errors.ErrClosed)
	assert.ErrorIs(t, m.Destroy(ctx, "a"), errors.ErrClosed)
	_, err := m.HasKey(ctx, "a")
	assert.ErrorIs(t, err, errors.ErrClosed)
}

// A second consumer must not reset state already held by the first.
func TestMemory_GuardKeepsFirstState(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	g, err := guard.New(m, guard.Config{})
	require.NoError(t, err)

	m1 := map[string]string{"foo": "m1"}
	m2 := map[string]string{}

	require.NoError(t, g.Acquire(ctx, "module", m1))
	require.NoError(t, g.Acquire(ctx, "module", m2))

	v, ok := m.Get("module")
	require.True(t, ok)
	assert.Equal(t, m1, v)

	require.NoError(t, g.Release(ctx, "module"))
	require.NoError(t, g.Release(ctx, "module"))
	_, ok = m.Get("module")
	assert.False(t, ok)
}

func TestMemory_GuardConsultsExternalRegistration(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	g, err := guard.New(m, guard.Config{Policy: guard.PolicyConsultStore})
	require.NoError(t, err)

	m1 := map[string]string{"foo": "m1"}
	require.NoError(t, m.Create(ctx, "module", m1))
	require.NoError(t, g.Acquire(ctx, "module", map[string]string{}))

	v, _ := m.Get("module")
	assert.Equal(t, m1, v)
}
