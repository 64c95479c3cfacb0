// Package command provides the user-facing command surface: a registry of
// named commands and the built-in completion control commands.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownCommand is returned when executing an unregistered name.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrDuplicateCommand is returned when registering a taken name.
	ErrDuplicateCommand = errors.New("command already registered")

	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("nil handler")
)

// Handler executes one command.
type Handler interface {
	Handle(ctx context.Context, args []string) Result
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, args []string) Result

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, args []string) Result {
	return f(ctx, args)
}

// Registry maps command names to handlers. Names are dot-namespaced, for
// example "completion.enable".
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler under name. Each name has exactly one handler.
func (r *Registry) Register(name string, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	r.handlers[name] = h
	return nil
}

// RegisterFunc is a convenience method for registering a function handler.
func (r *Registry) RegisterFunc(name string, fn HandlerFunc) error {
	return r.Register(name, fn)
}

// Unregister removes the handler for name, if any.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Has returns true if a handler is registered for name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Names returns all registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named command. An unregistered name yields an error
// result wrapping ErrUnknownCommand.
func (r *Registry) Execute(ctx context.Context, name string, args ...string) Result {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		return Error(fmt.Errorf("%w: %s", ErrUnknownCommand, name))
	}
	return h.Handle(ctx, args)
}
