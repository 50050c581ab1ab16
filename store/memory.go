package store

import (
	"context"
	"sort"
	"sync"

	"github.com/wippyai/modguard"
	"github.com/wippyai/modguard/errors"
)

// Memory is an in-process store keeping each descriptor as the resource
// value. Create on an existing key replaces the value, the way a state
// container resets a module that is registered again.
type Memory struct {
	entries map[string]any
	mu      sync.RWMutex
	closed  bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]any),
	}
}

// Create stores desc under key, dropping any value it replaces.
func (m *Memory) Create(_ context.Context, key string, desc any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.Closed(errors.PhaseCreate)
	}

	if old, ok := m.entries[key]; ok {
		drop(old)
	}
	m.entries[key] = desc
	return nil
}

// Destroy removes key and drops its value.
func (m *Memory) Destroy(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.Closed(errors.PhaseDestroy)
	}

	value, ok := m.entries[key]
	if !ok {
		return errors.NotFound(errors.PhaseDestroy, key)
	}
	delete(m.entries, key)
	drop(value)
	return nil
}

// HasKey reports whether key is present.
func (m *Memory) HasKey(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, errors.Closed(errors.PhaseProbe)
	}
	_, ok := m.entries[key]
	return ok, nil
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok
}

// Len returns the number of stored resources.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Close drops every value and rejects further operations.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for k, v := range m.entries {
		drop(v)
		delete(m.entries, k)
	}
	return nil
}

func drop(v any) {
	if d, ok := v.(modguard.Dropper); ok {
		d.Drop()
	}
}
