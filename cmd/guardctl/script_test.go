package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOps(t *testing.T) {
	ops, err := parseOps("acquire:mod=state, +mod ,release:mod,-mod,,ACQUIRE:other")
	require.NoError(t, err)
	assert.Equal(t, []op{
		{kind: opAcquire, key: "mod", payload: "state"},
		{kind: opAcquire, key: "mod"},
		{kind: opRelease, key: "mod"},
		{kind: opRelease, key: "mod"},
		{kind: opAcquire, key: "other"},
	}, ops)
}

func TestParseOps_Errors(t *testing.T) {
	for _, in := range []string{"mod", "drop:mod", "release:mod=x"} {
		_, err := parseOps(in)
		assert.Error(t, err, in)
	}
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "acquire mod=state", op{kind: opAcquire, key: "mod", payload: "state"}.String())
	assert.Equal(t, "release mod", op{kind: opRelease, key: "mod"}.String())
}
