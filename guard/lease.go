package guard

import "context"

// Registrar is the acquire/release surface shared by Guard and Locked.
type Registrar interface {
	Acquire(ctx context.Context, key string, desc any) error
	Release(ctx context.Context, key string) error
}

// Lease is one consumer's hold on a key. It belongs to that consumer and
// is not safe for concurrent use.
type Lease struct {
	r        Registrar
	key      string
	released bool
}

func hold(ctx context.Context, r Registrar, key string, desc any) (*Lease, error) {
	if err := r.Acquire(ctx, key, desc); err != nil {
		return nil, err
	}
	return &Lease{r: r, key: key}, nil
}

// Key returns the held key.
func (l *Lease) Key() string {
	return l.key
}

// Released reports whether Release has been called.
func (l *Lease) Released() bool {
	return l.released
}

// Release gives the key back. Only the first call reaches the guard, even
// if that call returned a store error.
func (l *Lease) Release(ctx context.Context) error {
	if l.released {
		return nil
	}
	l.released = true
	return l.r.Release(ctx, l.key)
}
