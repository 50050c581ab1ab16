package modguard

import "context"

// Store holds the actual resource instances keyed by name.
//
// Behavior of Create for a key that already exists (override, merge or
// failure) is defined by the implementation. Callers that share a store
// through a guard never issue a second Create for an active key.
type Store interface {
	// Create builds the resource named key from desc.
	Create(ctx context.Context, key string, desc any) error

	// Destroy tears down the resource named key.
	Destroy(ctx context.Context, key string) error

	// HasKey reports whether a resource named key currently exists.
	HasKey(ctx context.Context, key string) (bool, error)
}

// Dropper is optionally implemented by descriptors that need cleanup
// when their resource is destroyed or replaced.
type Dropper interface {
	Drop()
}
