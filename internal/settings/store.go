// Package settings defines the host settings contract and the scoped
// snapshot the trigger engine uses to override and restore host options.
package settings

import (
	"errors"
	"fmt"
	"sync"
)

// Setting names the trigger engine overrides for the duration of a session.
const (
	// MenuMode controls how the host displays the completion menu.
	MenuMode = "completion.menuMode"

	// IgnoreCase controls case sensitivity of candidate matching.
	IgnoreCase = "completion.ignoreCase"

	// Sources controls which data sources completion commands consult.
	Sources = "completion.sources"
)

// ErrUnknownSetting is returned for reads or writes of names the store does
// not recognize.
var ErrUnknownSetting = errors.New("unknown setting")

// Store is the host's settings surface. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the current value of a setting.
	Get(name string) (any, error)

	// Set replaces the value of a setting.
	Set(name string, value any) error
}

// MemoryStore is a map-backed Store with a fixed vocabulary: only names
// present at construction can be read or written.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStore creates a MemoryStore seeded with the given values.
func NewMemoryStore(initial map[string]any) *MemoryStore {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryStore{values: values}
}

// Get returns the current value of a setting.
func (m *MemoryStore) Get(name string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	return v, nil
}

// Set replaces the value of a setting.
func (m *MemoryStore) Set(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	m.values[name] = value
	return nil
}
