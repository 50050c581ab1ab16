package guard

import (
	"context"
	"sync"
)

// Locked serializes every call on a Guard, including the store call made
// on a transition, so check-then-act sequences stay atomic when several
// goroutines share one guard.
type Locked struct {
	g  *Guard
	mu sync.Mutex
}

// NewLocked wraps g. The caller must stop using g directly.
func NewLocked(g *Guard) *Locked {
	return &Locked{g: g}
}

// Acquire is Guard.Acquire under the lock.
func (l *Locked) Acquire(ctx context.Context, key string, desc any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Acquire(ctx, key, desc)
}

// Release is Guard.Release under the lock.
func (l *Locked) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Release(ctx, key)
}

// Hold acquires key under the lock and returns a lease whose release also
// goes through the lock.
func (l *Locked) Hold(ctx context.Context, key string, desc any) (*Lease, error) {
	return hold(ctx, l, key, desc)
}

// Count is Guard.Count under the lock.
func (l *Locked) Count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Count(key)
}

// Active is Guard.Active under the lock.
func (l *Locked) Active(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Active(key)
}

// Len is Guard.Len under the lock.
func (l *Locked) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Len()
}

// Entries is Guard.Entries under the lock.
func (l *Locked) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Entries()
}

// Subscribe adds an observer under the lock. Observers run while the lock
// is held and must not call back into l.
func (l *Locked) Subscribe(o Observer) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cancel := l.g.Subscribe(o)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		cancel()
	}
}

// Policy returns the wrapped guard's existence policy.
func (l *Locked) Policy() Policy {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Policy()
}
