// Package modguard provides reference-counted registration of shared,
// named resources.
//
// A resource (for example a dynamically attached state module) is created
// the first time any consumer asks for it, reused by every later consumer,
// and torn down only when the last consumer lets go. Creating it twice
// would reset or duplicate shared state; tearing it down early would pull
// it out from under a consumer that still depends on it.
//
// # Architecture Overview
//
//	modguard/        Root package with the Store interface
//	├── guard/       Reference table and acquire/release state machine
//	├── store/       Store implementations (memory, wazero, redis)
//	├── config/      YAML configuration for the guardctl tool
//	├── errors/      Structured error types
//	└── cmd/guardctl Scripted and interactive guard console
//
// # Quick Start
//
//	st := store.NewMemory()
//	g, err := guard.New(st, guard.Config{DiagnosticsEnabled: true},
//	    guard.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Both consumers depend on "cart"; the store sees one Create.
//	_ = g.Acquire(ctx, "cart", cartState)
//	_ = g.Acquire(ctx, "cart", cartState)
//
//	// The store sees one Destroy, on the second Release.
//	_ = g.Release(ctx, "cart")
//	_ = g.Release(ctx, "cart")
//
// # Thread Safety
//
// guard.Guard is NOT thread-safe and is meant to be driven from a single
// goroutine, the way a UI render loop mounts and unmounts components. Wrap
// it with guard.NewLocked when several goroutines share one guard.
//
// # Store Faults
//
// The guard updates its count before calling the store. A failed Create
// therefore leaves a count of one behind, and a failed Destroy leaves the
// resource in the store with no count. Store errors are returned to the
// caller unchanged and never retried.
package modguard
