package store

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/modguard/errors"
)

// WazeroConfig holds configuration for a store-owned wazero runtime
type WazeroConfig struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// Wazero keeps one named module instance per key in a wazero runtime.
type Wazero struct {
	rt       wazero.Runtime
	compiled map[string]wazero.CompiledModule
	mu       sync.Mutex
	owned    bool
}

// NewWazero creates a store with its own runtime, closed by Close.
func NewWazero(ctx context.Context, cfg WazeroConfig) *Wazero {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	w := NewWazeroWithRuntime(wazero.NewRuntimeWithConfig(ctx, runtimeCfg))
	w.owned = true
	return w
}

// NewWazeroWithRuntime creates a store on a caller-owned runtime.
// Close leaves the runtime open.
func NewWazeroWithRuntime(rt wazero.Runtime) *Wazero {
	return &Wazero{
		rt:       rt,
		compiled: make(map[string]wazero.CompiledModule),
	}
}

// Create instantiates desc as a module named key. desc is either a
// wazero.CompiledModule or wasm bytes, which are compiled first.
func (w *Wazero) Create(ctx context.Context, key string, desc any) error {
	var (
		compiled wazero.CompiledModule
		ownsComp bool
	)
	switch d := desc.(type) {
	case wazero.CompiledModule:
		compiled = d
	case []byte:
		c, err := w.rt.CompileModule(ctx, d)
		if err != nil {
			return errors.New(errors.PhaseCreate, errors.KindInvalidDescriptor).
				Key(key).
				Detail("compile module").
				Cause(err).
				Build()
		}
		compiled, ownsComp = c, true
	default:
		return errors.InvalidDescriptor(key, desc, "wazero.CompiledModule or []byte")
	}

	_, err := w.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(key))
	if err != nil {
		if ownsComp {
			_ = compiled.Close(ctx)
		}
		if w.rt.Module(key) != nil {
			return errors.AlreadyExists(key, err)
		}
		return errors.StoreFault(errors.PhaseCreate, key, err)
	}

	if ownsComp {
		w.mu.Lock()
		w.compiled[key] = compiled
		w.mu.Unlock()
	}
	return nil
}

// Destroy closes the module instance named key.
func (w *Wazero) Destroy(ctx context.Context, key string) error {
	mod := w.rt.Module(key)
	if mod == nil {
		return errors.NotFound(errors.PhaseDestroy, key)
	}
	err := mod.Close(ctx)

	w.mu.Lock()
	compiled, ok := w.compiled[key]
	delete(w.compiled, key)
	w.mu.Unlock()
	if ok {
		_ = compiled.Close(ctx)
	}

	if err != nil {
		return errors.StoreFault(errors.PhaseDestroy, key, err)
	}
	return nil
}

// HasKey reports whether a module named key is instantiated.
func (w *Wazero) HasKey(_ context.Context, key string) (bool, error) {
	return w.rt.Module(key) != nil, nil
}

// Module returns the instance named key, or nil.
func (w *Wazero) Module(key string) api.Module {
	return w.rt.Module(key)
}

// Runtime returns the underlying runtime.
func (w *Wazero) Runtime() wazero.Runtime {
	return w.rt
}

// Close releases modules compiled by the store and, when the store created
// the runtime, the runtime with every instance in it.
func (w *Wazero) Close(ctx context.Context) error {
	w.mu.Lock()
	compiled := w.compiled
	w.compiled = make(map[string]wazero.CompiledModule)
	w.mu.Unlock()

	if w.owned {
		if err := w.rt.Close(ctx); err != nil {
			return errors.Wrap(errors.PhaseStore, errors.KindStoreFault, err, "close runtime")
		}
		return nil
	}
	for _, c := range compiled {
		_ = c.Close(ctx)
	}
	return nil
}
