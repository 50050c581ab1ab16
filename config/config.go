// Package config loads guardctl configuration from YAML.
package config

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/modguard"
	"github.com/wippyai/modguard/errors"
	"github.com/wippyai/modguard/guard"
	"github.com/wippyai/modguard/store"
)

// Backend names a store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendWazero Backend = "wazero"
	BackendRedis  Backend = "redis"
)

// Config is the top-level guardctl configuration.
type Config struct {
	Guard guard.Config `yaml:"guard"`
	Store StoreConfig  `yaml:"store"`
	Log   LogConfig    `yaml:"log"`
}

// StoreConfig selects and configures the store backend.
type StoreConfig struct {
	Backend Backend            `yaml:"backend"`
	Redis   store.RedisConfig  `yaml:"redis"`
	Wazero  store.WazeroConfig `yaml:"wazero"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Guard: guard.Config{Policy: guard.PolicyTrustLocal},
		Store: StoreConfig{
			Backend: BackendMemory,
			Redis: store.RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "modguard:",
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path on top of Default. Unknown fields are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "open "+path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML from r on top of Default. An empty document yields
// the defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values that YAML decoding cannot.
func (c Config) Validate() error {
	if _, err := guard.ParsePolicy(string(c.Guard.Policy)); err != nil {
		return err
	}
	switch c.Store.Backend {
	case BackendMemory, BackendWazero:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return errors.InvalidConfig("store.redis.addr is required for the redis backend")
		}
	default:
		return errors.InvalidConfig("unknown store backend %q", c.Store.Backend)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return errors.InvalidConfig("log.level: %v", err)
	}
	return nil
}

// Logger builds a zap logger from c.
func (c LogConfig) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, errors.InvalidConfig("log.level: %v", err)
	}
	zcfg := zap.NewProductionConfig()
	if c.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}

// OpenStore creates the configured store. The returned close function
// releases whatever the store owns.
func OpenStore(ctx context.Context, c StoreConfig) (modguard.Store, func(context.Context) error, error) {
	switch c.Backend {
	case BackendMemory, "":
		m := store.NewMemory()
		return m, func(context.Context) error { return m.Close() }, nil
	case BackendWazero:
		w := store.NewWazero(ctx, c.Wazero)
		return w, w.Close, nil
	case BackendRedis:
		r := store.DialRedis(c.Redis)
		return r, func(context.Context) error { return r.Close() }, nil
	default:
		return nil, nil, errors.InvalidConfig("unknown store backend %q", c.Backend)
	}
}
