package behavior

import (
	"errors"
	"fmt"
	"sort"
)

// Wildcard is the file type entry every registry must carry. It answers
// lookups for file types without an entry of their own.
const Wildcard = "*"

// ErrMissingFallback indicates a behavior table without a wildcard entry.
var ErrMissingFallback = errors.New(`behavior table missing "*" entry`)

// Registry maps file types to their ordered behavior lists. It is built
// once and never mutated, so lookups need no locking.
type Registry struct {
	table map[string][]Behavior
}

// NewRegistry compiles the given spec table into a registry. Lists keep
// their order; the table must contain a Wildcard entry. Compilation failures
// are reported with the file type and list position that caused them, and
// any conditions compiled before the failure are released.
func NewRegistry(specs map[string][]Spec) (*Registry, error) {
	if _, ok := specs[Wildcard]; !ok {
		return nil, ErrMissingFallback
	}

	r := &Registry{table: make(map[string][]Behavior, len(specs))}
	for filetype, list := range specs {
		compiled := make([]Behavior, 0, len(list))
		for i, spec := range list {
			b, err := spec.Compile()
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("behaviors[%s][%d]: %w", filetype, i, err)
			}
			compiled = append(compiled, b)
		}
		r.table[filetype] = compiled
	}
	return r, nil
}

// Resolve returns the behavior list for the file type, falling back to the
// wildcard entry when no exact match exists. The returned slice is a copy;
// callers may not reorder the registry through it.
func (r *Registry) Resolve(filetype string) []Behavior {
	list, ok := r.table[filetype]
	if !ok {
		list = r.table[Wildcard]
	}
	out := make([]Behavior, len(list))
	copy(out, list)
	return out
}

// FileTypes returns the registered file types in sorted order.
func (r *Registry) FileTypes() []string {
	types := make([]string, 0, len(r.table))
	for filetype := range r.table {
		types = append(types, filetype)
	}
	sort.Strings(types)
	return types
}

// Close releases the scripted conditions held by the registry. The registry
// must not be used afterwards.
func (r *Registry) Close() {
	for _, list := range r.table {
		for i := range list {
			if list[i].When != nil {
				list[i].When.Close()
			}
		}
	}
}
