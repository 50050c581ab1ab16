package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/modguard"
	"github.com/wippyai/modguard/config"
	"github.com/wippyai/modguard/guard"
)

// emptyModule stands in for a real module when the wazero backend runs
// without -wasm.
var emptyModule = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// session wires a guard to the configured store. It is driven from one
// goroutine only.
type session struct {
	guard      *guard.Guard
	store      modguard.Store
	closeStore func(context.Context) error
	log        *zap.Logger
	backend    config.Backend
	wasm       []byte
}

// newSession opens the store and guard. quiet discards the log, for the
// interactive console where it would draw over the screen.
func newSession(ctx context.Context, cfg config.Config, wasmFile string, obs guard.Observer, quiet bool) (*session, error) {
	logger := zap.NewNop()
	if !quiet {
		var err error
		if logger, err = cfg.Log.Logger(); err != nil {
			return nil, err
		}
	}

	var wasm []byte
	if cfg.Store.Backend == config.BackendWazero {
		wasm = emptyModule
		if wasmFile != "" {
			var err error
			wasm, err = os.ReadFile(wasmFile)
			if err != nil {
				return nil, fmt.Errorf("read wasm: %w", err)
			}
		}
	}

	st, closeStore, err := config.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	opts := []guard.Option{guard.WithLogger(logger)}
	if obs != nil {
		opts = append(opts, guard.WithObserver(obs))
	}
	g, err := guard.New(st, cfg.Guard, opts...)
	if err != nil {
		_ = closeStore(ctx)
		return nil, err
	}

	return &session{
		guard:      g,
		store:      st,
		closeStore: closeStore,
		log:        logger,
		backend:    cfg.Store.Backend,
		wasm:       wasm,
	}, nil
}

// descriptor builds what the store receives on create. The wazero backend
// needs module bytes; the others store the payload, or the key when the
// payload is empty.
func (s *session) descriptor(key, payload string) any {
	if s.backend == config.BackendWazero {
		return s.wasm
	}
	if payload == "" {
		return key
	}
	return payload
}

func (s *session) apply(ctx context.Context, o op) error {
	switch o.kind {
	case opAcquire:
		return s.guard.Acquire(ctx, o.key, s.descriptor(o.key, o.payload))
	case opRelease:
		return s.guard.Release(ctx, o.key)
	default:
		return fmt.Errorf("unknown operation %q", o.kind)
	}
}

// inStore reports store presence for display; probe errors show as false.
func (s *session) inStore(ctx context.Context, key string) bool {
	ok, err := s.store.HasKey(ctx, key)
	return err == nil && ok
}

// Close flushes the log and closes the store. Sync errors are dropped:
// zap reports one for every terminal-backed stderr.
func (s *session) Close(ctx context.Context) error {
	_ = s.log.Sync()
	return s.closeStore(ctx)
}
