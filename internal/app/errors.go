package app

import (
	"errors"
	"fmt"
)

// Application lifecycle errors.
var (
	// ErrAlreadyRunning is returned by Run when the application is
	// already running.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrShutdown is returned by Run after Shutdown has been called.
	ErrShutdown = errors.New("application shut down")
)

// InitError reports which component failed to build.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
