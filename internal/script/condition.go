// Package script evaluates sandboxed Lua conditions that decide completion
// behavior eligibility beyond what regular expressions can express.
package script

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Errors returned by the script package.
var (
	// ErrEmptySource is returned when compiling an empty condition.
	ErrEmptySource = errors.New("empty condition source")

	// ErrConditionClosed is returned when evaluating a closed condition.
	ErrConditionClosed = errors.New("condition is closed")
)

// Condition is a compiled Lua predicate. Each evaluation exposes two
// globals to the chunk:
//
//	text     -- the text before the cursor
//	filetype -- the buffer's file type
//
// The chunk's return value decides eligibility; any truthy value means
// eligible. A chunk that returns nothing is never eligible.
//
// IMPORTANT: gopher-lua's LState is not goroutine-safe. The mutex serializes
// evaluations so a Condition may be shared across goroutines.
type Condition struct {
	mu     sync.Mutex
	state  *lua.LState
	fn     *lua.LFunction
	source string
	closed bool
}

// Compile compiles src into a reusable Condition. The Lua state is
// sandboxed: only the base, table, string, and math libraries are open, and
// the load family of functions is removed.
func Compile(src string) (*Condition, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptySource
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // opened selectively below
	})
	openSafeLibraries(L)
	removeUnsafeGlobals(L)

	fn, err := L.LoadString(src)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("compile condition: %w", err)
	}

	return &Condition{state: L, fn: fn, source: src}, nil
}

// MustCompile compiles src and panics on error.
// Use only for known-valid sources in initialization code.
func MustCompile(src string) *Condition {
	c, err := Compile(src)
	if err != nil {
		panic("invalid condition: " + err.Error())
	}
	return c
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// io, os, debug, and package stay closed: conditions are pure
	// predicates over the provided globals.
}

// removeUnsafeGlobals removes base-library functions that could bypass the
// sandbox by loading arbitrary chunks.
func removeUnsafeGlobals(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Eval runs the condition against the given text and file type.
// A Lua runtime error or panic is returned as an error with ok=false.
func (c *Condition) Eval(text, filetype string) (ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrConditionClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
			ok = false
		}
	}()

	c.state.SetGlobal("text", lua.LString(text))
	c.state.SetGlobal("filetype", lua.LString(filetype))

	c.state.Push(c.fn)
	if callErr := c.state.PCall(0, 1, nil); callErr != nil {
		return false, fmt.Errorf("eval condition: %w", callErr)
	}

	ret := c.state.Get(-1)
	c.state.Pop(1)

	return lua.LVAsBool(ret), nil
}

// Source returns the original condition source.
func (c *Condition) Source() string {
	return c.source
}

// Close releases the underlying Lua state. Eval on a closed Condition
// returns ErrConditionClosed. Close is idempotent.
func (c *Condition) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.state.Close()
	c.closed = true
}
