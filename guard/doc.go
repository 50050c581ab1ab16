// Package guard implements reference-counted registration of named
// resources in front of a modguard.Store.
//
// # State Machine
//
// Each key is either Absent (no count) or Active (count >= 1):
//
//	Absent  --Acquire-->  Active(1)    store.Create
//	Absent  --Release-->  Absent       warning only
//	Active(n) --Acquire--> Active(n+1)
//	Active(n) --Release--> Active(n-1) when n > 1
//	Active(1) --Release--> Absent      store.Destroy
//
// The guard decides from its own table, never from the store, whether it
// has already created a resource. The store is only asked to create or
// destroy on transitions across zero.
//
// # Store Faults
//
// Counts change before the store is called and are not rolled back:
//
//	g.Acquire(ctx, "cart", d) // Create fails: Count("cart") == 1
//	g.Release(ctx, "cart")    // Destroy fails: Count("cart") == 0
//
// The store error is returned unchanged.
//
// # Existence Policy
//
// PolicyTrustLocal (default) ignores whatever the store already holds.
// PolicyConsultStore probes the store on transitions across zero: a key
// created outside the guard is adopted with count 2 (a phantom reference
// for the outside owner plus the caller's), and a key already removed
// from the store is not destroyed again. The phantom reference is never
// released by the guard itself, so an adopted resource outlives its guard
// consumers unless someone releases the extra reference. Counts for keys
// touched outside the guard are a best guess.
//
// # Diagnostics
//
// With Config.DiagnosticsEnabled the guard logs registrations,
// unregistrations, the dependent count after each call and warnings for
// unmatched releases and pre-existing resources. Disabled, each site costs
// one branch. Observers (WithObserver, Subscribe) receive structured events
// regardless of the flag.
//
// # Thread Safety
//
// Guard is meant for one goroutine. Locked wraps a Guard with a mutex.
package guard
