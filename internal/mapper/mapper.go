// Package mapper installs and removes the insert-mode key bindings that
// route keystrokes into the completion trigger. It owns which keys are
// bound; the host owns what a binding does with the literal character.
package mapper

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/autopop/internal/key"
)

// ErrNilBinder is returned by New when no binder is supplied.
var ErrNilBinder = errors.New("nil binder")

// Action runs after the host has inserted the bound key's literal
// character. For completion triggering this is the engine entry point plus
// directive execution.
type Action func() error

// Binder is the host surface for installing insert-mode key overrides.
// Bind replaces any existing override for the event.
type Binder interface {
	Bind(ev key.Event, action Action) error
	Unbind(ev key.Event) error
}

// Mapper tracks the currently bound trigger keys. Map always unbinds the
// previous set first, so calling it twice with the same keys yields the
// same net bindings rather than duplicates.
type Mapper struct {
	mu     sync.Mutex
	binder Binder
	bound  []key.Event
}

// New creates a Mapper over the host binder.
func New(binder Binder) (*Mapper, error) {
	if binder == nil {
		return nil, ErrNilBinder
	}
	return &Mapper{binder: binder}, nil
}

// Map replaces the bound key set with keys, wiring each to action. Keys
// that bind successfully stay tracked even when others fail; failures are
// joined into the returned error, never swallowed.
func (m *Mapper) Map(keys []key.Event, action Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if err := m.unmapLocked(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[key.Event]struct{}, len(keys))
	for _, ev := range keys {
		if _, dup := seen[ev]; dup {
			continue
		}
		seen[ev] = struct{}{}

		if err := m.binder.Bind(ev, action); err != nil {
			errs = append(errs, fmt.Errorf("bind %s: %w", ev, err))
			continue
		}
		m.bound = append(m.bound, ev)
	}

	return errors.Join(errs...)
}

// Unmap removes every tracked binding and clears the set. Unbind failures
// are joined into the returned error; the set is cleared regardless, since
// a binding the host refused to remove is out of the mapper's hands.
func (m *Mapper) Unmap() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unmapLocked()
}

func (m *Mapper) unmapLocked() error {
	var errs []error
	for _, ev := range m.bound {
		if err := m.binder.Unbind(ev); err != nil {
			errs = append(errs, fmt.Errorf("unbind %s: %w", ev, err))
		}
	}
	m.bound = nil
	return errors.Join(errs...)
}

// Keys returns the currently bound keys in binding order.
func (m *Mapper) Keys() []key.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]key.Event, len(m.bound))
	copy(out, m.bound)
	return out
}
