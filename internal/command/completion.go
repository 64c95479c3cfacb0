package command

import "context"

// Built-in command names.
const (
	CompletionEnable  = "completion.enable"
	CompletionDisable = "completion.disable"
	CompletionToggle  = "completion.toggle"
	CompletionLock    = "completion.lock"
	CompletionUnlock  = "completion.unlock"
)

// Completion is the control surface the built-in commands drive. The app
// layer implements it over the mapper and trigger engine.
type Completion interface {
	// Enable installs the trigger key bindings and resets the lock.
	Enable() error

	// Disable finishes any open session and removes the bindings.
	Disable() error

	// Enabled reports whether the bindings are installed.
	Enabled() bool

	// Lock suppresses completion until a matching Unlock.
	Lock()

	// Unlock releases one Lock. Unlocking when not locked is an error.
	Unlock() error
}

// RegisterCompletion registers the built-in completion control commands
// against the given control surface.
func RegisterCompletion(reg *Registry, c Completion) error {
	cmds := map[string]HandlerFunc{
		CompletionEnable: func(ctx context.Context, args []string) Result {
			if c.Enabled() {
				return NoOpWithMessage("completion already enabled")
			}
			if err := c.Enable(); err != nil {
				return Error(err)
			}
			return SuccessWithMessage("completion enabled")
		},
		CompletionDisable: func(ctx context.Context, args []string) Result {
			if !c.Enabled() {
				return NoOpWithMessage("completion already disabled")
			}
			if err := c.Disable(); err != nil {
				return Error(err)
			}
			return SuccessWithMessage("completion disabled")
		},
		CompletionToggle: func(ctx context.Context, args []string) Result {
			if c.Enabled() {
				if err := c.Disable(); err != nil {
					return Error(err)
				}
				return SuccessWithMessage("completion disabled")
			}
			if err := c.Enable(); err != nil {
				return Error(err)
			}
			return SuccessWithMessage("completion enabled")
		},
		CompletionLock: func(ctx context.Context, args []string) Result {
			c.Lock()
			return SuccessWithMessage("completion locked")
		},
		CompletionUnlock: func(ctx context.Context, args []string) Result {
			if err := c.Unlock(); err != nil {
				return Error(err)
			}
			return SuccessWithMessage("completion unlocked")
		},
	}

	for name, fn := range cmds {
		if err := reg.RegisterFunc(name, fn); err != nil {
			return err
		}
	}
	return nil
}
