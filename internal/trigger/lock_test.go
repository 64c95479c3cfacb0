package trigger

import (
	"errors"
	"testing"
)

func TestLockAcquireRelease(t *testing.T) {
	l := NewLock()

	if l.Locked() {
		t.Error("Locked() = true for new lock")
	}

	l.Acquire()
	l.Acquire()
	if got := l.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if !l.Locked() {
		t.Error("Locked() = false after Acquire")
	}

	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if !l.Locked() {
		t.Error("Locked() = false with one acquire outstanding")
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if l.Locked() {
		t.Error("Locked() = true after matching releases")
	}
}

func TestLockReleaseWithoutAcquire(t *testing.T) {
	l := NewLock()

	err := l.Release()
	if !errors.Is(err, ErrUnlockWithoutLock) {
		t.Fatalf("Release() error = %v, want %v", err, ErrUnlockWithoutLock)
	}
	if got := l.Count(); got != 0 {
		t.Errorf("Count() = %d, want clamped 0", got)
	}

	// The lock stays usable after the error.
	l.Acquire()
	if err := l.Release(); err != nil {
		t.Errorf("Release() after recovery error = %v", err)
	}
}

func TestLockReset(t *testing.T) {
	l := NewLock()
	l.Acquire()
	l.Acquire()
	l.Acquire()

	l.Reset()
	if got := l.Count(); got != 0 {
		t.Errorf("Count() after Reset = %d, want 0", got)
	}
	if err := l.Release(); !errors.Is(err, ErrUnlockWithoutLock) {
		t.Errorf("Release() after Reset error = %v, want %v", err, ErrUnlockWithoutLock)
	}
}
