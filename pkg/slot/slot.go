// Package slot provides the single-string key-value storage the task list
// persists into. A slot holds one opaque value per key; callers replace the
// whole value on every write.
package slot

import (
	"context"
	"sync"
)

// DefaultKey is the key the task collection is stored under.
const DefaultKey = "timer-todos"

// Slot is the contract for the key-value substrate.
type Slot interface {
	// Get returns the value stored at key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored at key.
	Set(ctx context.Context, key, value string) error
}

// Memory is an in-process Slot. The zero value is ready to use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates a Memory slot seeded with the given values.
func NewMemory(seed map[string]string) *Memory {
	m := &Memory{values: make(map[string]string, len(seed))}
	for k, v := range seed {
		m.values[k] = v
	}
	return m
}

// Get implements Slot.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Slot.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}
