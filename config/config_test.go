package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/modguard/errors"
	"github.com/wippyai/modguard/guard"
	"github.com/wippyai/modguard/store"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Full(t *testing.T) {
	doc := `
guard:
  diagnostics_enabled: true
  policy: consult-store
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    prefix: "app:"
log:
  level: debug
  development: true
`
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, cfg.Guard.DiagnosticsEnabled)
	assert.Equal(t, guard.PolicyConsultStore, cfg.Guard.Policy)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, store.RedisConfig{Addr: "redis:6379", DB: 2, Prefix: "app:"}, cfg.Store.Redis)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown field", doc: "guard:\n  verbose: true\n"},
		{name: "unknown policy", doc: "guard:\n  policy: eager\n"},
		{name: "unknown backend", doc: "store:\n  backend: etcd\n"},
		{name: "redis without addr", doc: "store:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{name: "bad level", doc: "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: wazero\n  wazero:\n    memory_limit_pages: 32\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendWazero, cfg.Store.Backend)
	assert.Equal(t, uint32(32), cfg.Store.Wazero.MemoryLimitPages)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestLogConfig_Logger(t *testing.T) {
	logger, err := LogConfig{Level: "warn"}.Logger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = LogConfig{Level: "chatty"}.Logger()
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	for _, backend := range []Backend{BackendMemory, BackendWazero} {
		t.Run(string(backend), func(t *testing.T) {
			st, closeFn, err := OpenStore(ctx, StoreConfig{Backend: backend})
			require.NoError(t, err)
			ok, err := st.HasKey(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
			require.NoError(t, closeFn(ctx))
		})
	}

	_, _, err := OpenStore(ctx, StoreConfig{Backend: "etcd"})
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
