package guard

import (
	"context"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/modguard"
	"github.com/wippyai/modguard/errors"
)

// Guard maps resource keys to reference counts and calls the store only
// when a count crosses zero.
//
// A Guard is not safe for concurrent use; see Locked.
type Guard struct {
	store     modguard.Store
	counts    map[string]int
	log       *zap.Logger
	observers []observerEntry
	policy    Policy
	nextObs   int
	diag      bool
}

type observerEntry struct {
	o  Observer
	id int
}

// Entry is a snapshot of one active key.
type Entry struct {
	Key   string
	Count int
}

// Option configures optional Guard collaborators.
type Option func(*Guard)

// WithLogger sets the diagnostic sink. Without it diagnostics go to a
// no-op logger even when enabled.
func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l.Named("guard")
		}
	}
}

// WithObserver subscribes o for the guard's lifetime.
func WithObserver(o Observer) Option {
	return func(g *Guard) {
		if o != nil {
			g.Subscribe(o)
		}
	}
}

// New creates a guard in front of store.
func New(store modguard.Store, cfg Config, opts ...Option) (*Guard, error) {
	if store == nil {
		return nil, errors.InvalidConfig("nil store")
	}
	policy, err := ParsePolicy(string(cfg.Policy))
	if err != nil {
		return nil, err
	}

	g := &Guard{
		store:  store,
		counts: make(map[string]int),
		log:    zap.NewNop(),
		policy: policy,
		diag:   cfg.DiagnosticsEnabled,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Policy returns the existence policy in effect.
func (g *Guard) Policy() Policy {
	return g.policy
}

// Acquire records one more dependent on key. The first acquisition asks
// the store to create the resource from desc; later ones only count.
//
// The count is raised before the store is called, so a failed Create
// leaves the key active with a count of one. The store error is returned
// as is.
func (g *Guard) Acquire(ctx context.Context, key string, desc any) error {
	if err := validateKey(errors.PhaseAcquire, key); err != nil {
		return err
	}
	defer g.logDependents(key)

	if n := g.counts[key]; n > 0 {
		g.counts[key] = n + 1
		g.notify(Event{Type: EventAcquired, Key: key, Count: n + 1})
		return nil
	}

	switch {
	case g.policy == PolicyConsultStore:
		if exists, known := g.probe(ctx, key); known && exists {
			// One phantom reference for the outside owner, one for us.
			g.counts[key] = 2
			if g.diag {
				g.log.Warn("module registered outside guard, assuming external dependent",
					zap.String("key", key))
			}
			g.notify(Event{Type: EventExternalRegistration, Key: key, Count: 2})
			return nil
		}
	case g.diag:
		if exists, known := g.probe(ctx, key); known && exists {
			g.log.Warn("module already present in store", zap.String("key", key))
		}
	}

	g.counts[key] = 1
	if g.diag {
		g.log.Info("register module", zap.String("key", key))
	}
	if err := g.store.Create(ctx, key, desc); err != nil {
		if g.diag {
			g.log.Warn("store create failed", zap.String("key", key), zap.Error(err))
		}
		g.notify(Event{Type: EventStoreFault, Key: key, Count: 1, Err: err})
		return err
	}
	g.notify(Event{Type: EventRegistered, Key: key, Count: 1})
	return nil
}

// Release drops one dependent on key. The last release asks the store to
// destroy the resource. Releasing a key with no outstanding acquisition
// is logged and otherwise ignored.
//
// The count is lowered before the store is called; a failed Destroy
// leaves the key inactive and returns the store error as is.
func (g *Guard) Release(ctx context.Context, key string) error {
	if err := validateKey(errors.PhaseRelease, key); err != nil {
		return err
	}

	n := g.counts[key]
	if n <= 0 {
		err := errors.UnmatchedRelease(key)
		if g.diag {
			g.log.Warn("cannot unregister non present module", zap.String("key", key), zap.Error(err))
		}
		g.notify(Event{Type: EventUnmatchedRelease, Key: key, Err: err})
		return nil
	}

	if n > 1 {
		g.counts[key] = n - 1
		g.logDependents(key)
		g.notify(Event{Type: EventReleased, Key: key, Count: n - 1})
		return nil
	}

	delete(g.counts, key)
	g.logDependents(key)

	if g.policy == PolicyConsultStore {
		if exists, known := g.probe(ctx, key); known && !exists {
			if g.diag {
				g.log.Warn("module already removed from store", zap.String("key", key))
			}
			g.notify(Event{Type: EventExternalRemoval, Key: key})
			return nil
		}
	}

	if g.diag {
		g.log.Info("unregister module", zap.String("key", key))
	}
	if err := g.store.Destroy(ctx, key); err != nil {
		if g.diag {
			g.log.Warn("store destroy failed", zap.String("key", key), zap.Error(err))
		}
		g.notify(Event{Type: EventStoreFault, Key: key, Err: err})
		return err
	}
	g.notify(Event{Type: EventUnregistered, Key: key})
	return nil
}

// Hold acquires key and returns a lease that releases it exactly once.
// No lease is returned when the acquire fails.
func (g *Guard) Hold(ctx context.Context, key string, desc any) (*Lease, error) {
	return hold(ctx, g, key, desc)
}

// Count returns the outstanding acquisitions for key. Absent keys report 0.
func (g *Guard) Count(key string) int {
	return g.counts[key]
}

// Active reports whether key has at least one outstanding acquisition.
func (g *Guard) Active(key string) bool {
	return g.counts[key] > 0
}

// Len returns the number of active keys.
func (g *Guard) Len() int {
	return len(g.counts)
}

// Entries returns the active keys sorted by key.
func (g *Guard) Entries() []Entry {
	entries := make([]Entry, 0, len(g.counts))
	for k, n := range g.counts {
		entries = append(entries, Entry{Key: k, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Subscribe adds an observer and returns a function that removes it.
// An observer may unsubscribe from inside its own callback; the event
// being delivered still reaches every other observer exactly once.
func (g *Guard) Subscribe(o Observer) (unsubscribe func()) {
	g.nextObs++
	id := g.nextObs
	g.observers = append(g.observers, observerEntry{id: id, o: o})
	return func() {
		for i, e := range g.observers {
			if e.id == id {
				// Copy so an in-flight notify keeps ranging over its own slice.
				g.observers = slices.Delete(slices.Clone(g.observers), i, i+1)
				return
			}
		}
	}
}

func (g *Guard) notify(e Event) {
	for _, entry := range g.observers {
		entry.o.OnGuardEvent(e)
	}
}

// probe asks the store whether key exists. known is false when the probe
// itself failed; callers then fall back to the local count.
func (g *Guard) probe(ctx context.Context, key string) (exists, known bool) {
	exists, err := g.store.HasKey(ctx, key)
	if err != nil {
		if g.diag {
			g.log.Warn("store probe failed", zap.String("key", key), zap.Error(err))
		}
		return false, false
	}
	return exists, true
}

func (g *Guard) logDependents(key string) {
	if g.diag {
		g.log.Debug("module dependents", zap.String("key", key), zap.Int("dependents", g.counts[key]))
	}
}
