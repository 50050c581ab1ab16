package store

import (
	"context"
	"encoding"
	"encoding/json"
	stderrors "errors"

	"github.com/redis/go-redis/v9"

	"github.com/wippyai/modguard/errors"
)

// RedisConfig describes how to reach the Redis server backing a Redis store
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"`
	DB       int    `yaml:"db"`
}

// Redis keeps each resource as one Redis string under prefix+key.
type Redis struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedis creates a store on a caller-owned client.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// DialRedis creates a store with its own client, closed by Close.
func DialRedis(cfg RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Redis{client: client, prefix: cfg.Prefix, owned: true}
}

// Create writes desc under key, overwriting any existing value.
func (r *Redis) Create(ctx context.Context, key string, desc any) error {
	value, err := encodeDescriptor(key, desc)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return errors.StoreFault(errors.PhaseCreate, key, err)
	}
	return nil
}

// Destroy deletes key. A key that was not present yields errors.KindNotFound.
func (r *Redis) Destroy(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return errors.StoreFault(errors.PhaseDestroy, key, err)
	}
	if n == 0 {
		return errors.NotFound(errors.PhaseDestroy, key)
	}
	return nil
}

// HasKey reports whether key exists in Redis.
func (r *Redis) HasKey(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		return false, errors.StoreFault(errors.PhaseProbe, key, err)
	}
	return n > 0, nil
}

// Get returns the raw value stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NotFound(errors.PhaseProbe, key)
	}
	if err != nil {
		return nil, errors.StoreFault(errors.PhaseProbe, key, err)
	}
	return b, nil
}

// Close closes the client when the store dialed it.
func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindStoreFault, err, "close redis client")
	}
	return nil
}

func encodeDescriptor(key string, desc any) (any, error) {
	switch d := desc.(type) {
	case string, []byte:
		return d, nil
	case encoding.BinaryMarshaler:
		return d, nil
	case nil:
		return "", nil
	}
	b, err := json.Marshal(desc)
	if err != nil {
		return nil, errors.New(errors.PhaseCreate, errors.KindInvalidDescriptor).
			Key(key).
			Value(desc).
			Detail("encode descriptor %T", desc).
			Cause(err).
			Build()
	}
	return b, nil
}
