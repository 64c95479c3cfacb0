package app

import (
	"errors"
	"fmt"

	"github.com/dshills/autopop/internal/config"
	"github.com/dshills/autopop/internal/logging"
	"github.com/dshills/autopop/internal/settings"
)

// watchConfig applies config reloads until the watcher or the application
// closes. Watch errors surface in the status line; editing continues on
// the previous configuration.
func (a *Application) watchConfig() {
	defer a.wg.Done()
	for {
		select {
		case cfg, ok := <-a.watcher.Reload():
			if !ok {
				return
			}
			if err := a.applyConfig(cfg); err != nil {
				a.log.Error("apply config: %v", err)
				a.host.SetMessage("config reload failed: " + err.Error())
				continue
			}
			a.log.Info("config reloaded")
			a.host.SetMessage("config reloaded")
		case err, ok := <-a.watcher.Errors():
			if !ok {
				return
			}
			a.log.Warn("config watch: %v", err)
			a.host.SetMessage("config error: " + err.Error())
		case <-a.done:
			return
		}
	}
}

// applyConfig swaps in a reloaded configuration: the engine finishes any
// open session against the old settings, then the host's base settings,
// the trigger keys, and the behavior registry move to the new values.
// The enabled flag is not touched; enabling and disabling stay with the
// user and the completion commands.
func (a *Application) applyConfig(cfg config.Config) error {
	keys, err := cfg.ParseKeys()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	a.engine.Reconfigure(cfg.TriggerConfig(), reg)

	var errs []error
	for _, s := range []struct {
		name  string
		value any
	}{
		{settings.MenuMode, cfg.Completion.MenuMode},
		{settings.IgnoreCase, cfg.Completion.IgnoreCase},
		{settings.Sources, cfg.Completion.Sources},
	} {
		if err := a.store.Set(s.name, s.value); err != nil {
			errs = append(errs, fmt.Errorf("set %s: %w", s.name, err))
		}
	}

	if err := a.control.rebind(keys); err != nil {
		errs = append(errs, fmt.Errorf("rebind keys: %w", err))
	}

	if a.opts.LogLevel == "" {
		a.log.SetLevel(logging.ParseLevel(cfg.Completion.LogLevel))
	}

	a.mu.Lock()
	old := a.registry
	a.cfg = cfg
	a.registry = reg
	a.mu.Unlock()
	if old != nil {
		old.Close()
	}

	return errors.Join(errs...)
}
