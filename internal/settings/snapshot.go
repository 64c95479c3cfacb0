package settings

import (
	"errors"
	"fmt"
	"sync"
)

// Snapshot writes settings through to a Store while recording each name's
// original value the first time it is written. RestoreAll puts the originals
// back and empties the snapshot, so one Snapshot can be reused across
// sessions.
//
// Only the first write per name records an original; later writes update the
// store but keep the earliest recording. This guarantees restoration to the
// true pre-session value even if a setting is overridden repeatedly.
type Snapshot struct {
	mu    sync.Mutex
	store Store
	saved map[string]any
	order []string
}

// NewSnapshot creates an empty Snapshot over the given store.
func NewSnapshot(store Store) *Snapshot {
	return &Snapshot{
		store: store,
		saved: make(map[string]any),
	}
}

// Set records the original value of name on first write, then writes value
// to the store. A failed read of the original aborts the write; a failed
// write keeps the recording so RestoreAll stays safe.
func (s *Snapshot) Set(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, recorded := s.saved[name]; !recorded {
		orig, err := s.store.Get(name)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", name, err)
		}
		s.saved[name] = orig
		s.order = append(s.order, name)
	}

	if err := s.store.Set(name, value); err != nil {
		return fmt.Errorf("override %s: %w", name, err)
	}
	return nil
}

// RestoreAll writes every recorded original back in reverse recording order
// and empties the snapshot. Individual write failures do not stop the
// remaining restores; they are joined into the returned error. Calling
// RestoreAll on an empty snapshot is a no-op.
func (s *Snapshot) RestoreAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if err := s.store.Set(name, s.saved[name]); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", name, err))
		}
	}

	s.saved = make(map[string]any)
	s.order = s.order[:0]

	return errors.Join(errs...)
}

// Len returns the number of settings currently recorded.
func (s *Snapshot) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
