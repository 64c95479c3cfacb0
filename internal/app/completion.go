package app

import (
	"sync"

	"github.com/dshills/autopop/internal/key"
	"github.com/dshills/autopop/internal/mapper"
	"github.com/dshills/autopop/internal/trigger"
)

// controller is the control surface behind the completion.* commands. It
// owns the enabled flag and the current trigger key set; the mapper owns
// the bindings and the engine owns the session.
type controller struct {
	mapper *mapper.Mapper
	engine *trigger.Engine
	host   trigger.Host

	mu      sync.Mutex
	keys    []key.Event
	enabled bool
}

// Enable installs the trigger bindings and clears any leftover lock.
// Enabling while enabled is a no-op.
func (c *controller) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		return nil
	}
	if err := c.mapper.Map(c.keys, c.trigger); err != nil {
		return err
	}
	c.engine.ResetLock()
	c.enabled = true
	return nil
}

// Disable finishes any open session and removes the bindings.
func (c *controller) Disable() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return nil
	}
	c.engine.Finish()
	err := c.mapper.Unmap()
	c.enabled = false
	return err
}

// Enabled reports whether the bindings are installed.
func (c *controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Lock suppresses completion until a matching Unlock.
func (c *controller) Lock() {
	c.engine.Lock()
}

// Unlock releases one Lock.
func (c *controller) Unlock() error {
	return c.engine.Unlock()
}

// rebind swaps the trigger key set, remapping immediately when enabled.
func (c *controller) rebind(keys []key.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = keys
	if !c.enabled {
		return nil
	}
	return c.mapper.Map(keys, c.trigger)
}

// trigger is the action bound to every trigger key: ask the engine for a
// directive and run it against the host. The host has already inserted
// the key's character by the time this runs.
func (c *controller) trigger() error {
	d, err := c.engine.Trigger()
	if err != nil {
		return err
	}
	return trigger.Run(c.host, d)
}
