package trigger

import (
	"errors"
	"sync"
)

// ErrUnlockWithoutLock is returned when Release is called with no
// outstanding Acquire.
var ErrUnlockWithoutLock = errors.New("unlock without matching lock")

// Lock is a counting suppression lock. While the count is above zero the
// engine refuses to open sessions. It is shared across sessions and may be
// shared across engines (the count belongs to the process, not to any one
// session).
type Lock struct {
	mu    sync.Mutex
	count int
}

// NewLock creates an unlocked Lock.
func NewLock() *Lock {
	return &Lock{}
}

// Acquire increments the lock count.
func (l *Lock) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
}

// Release decrements the lock count. Releasing an unlocked Lock is an
// error; the count stays clamped at zero and the Lock remains usable.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		return ErrUnlockWithoutLock
	}
	l.count--
	return nil
}

// Reset unconditionally clears the count.
func (l *Lock) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count = 0
}

// Locked reports whether the count is above zero.
func (l *Lock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count > 0
}

// Count returns the current count.
func (l *Lock) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
