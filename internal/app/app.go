// Package app wires the autopop components into a runnable editor: it
// loads configuration, builds the event bus, behavior registry, trigger
// engine, terminal host, and key mapper, and owns their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/autopop/internal/behavior"
	"github.com/dshills/autopop/internal/command"
	"github.com/dshills/autopop/internal/config"
	"github.com/dshills/autopop/internal/event"
	"github.com/dshills/autopop/internal/host/termhost"
	"github.com/dshills/autopop/internal/logging"
	"github.com/dshills/autopop/internal/mapper"
	"github.com/dshills/autopop/internal/settings"
	"github.com/dshills/autopop/internal/trigger"
)

// shutdownTimeout bounds how long Shutdown waits for background tasks.
const shutdownTimeout = 5 * time.Second

// Options configures the application.
type Options struct {
	// ConfigPath is the TOML config file. Empty means defaults plus
	// environment overrides.
	ConfigPath string

	// File is the file to edit. Empty or nonexistent opens a new buffer.
	File string

	// FileType overrides the file type detected from the file extension.
	FileType string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogPath appends log lines to a file. The terminal belongs to the
	// screen while the editor runs, so logging is off unless a path is
	// given.
	LogPath string

	// Watch reloads the config file when it changes on disk. It has no
	// effect without a ConfigPath.
	Watch bool
}

// Application is the composed editor. Create one with New, drive it with
// Run, and release it with Shutdown.
type Application struct {
	opts Options

	log      *logging.Logger
	logFile  *os.File
	bus      *event.Bus
	store    *settings.MemoryStore
	host     *termhost.Host
	engine   *trigger.Engine
	mapper   *mapper.Mapper
	commands *command.Registry
	control  *controller
	watcher  *config.Watcher

	mu       sync.Mutex
	cfg      config.Config
	registry *behavior.Registry
	ui       *termhost.UI

	running      atomic.Bool
	done         chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownErr  error
}

// New builds the application. A failed build releases anything it already
// acquired before returning.
func New(opts Options) (*Application, error) {
	a := &Application{
		opts: opts,
		done: make(chan struct{}),
	}
	if err := a.bootstrap(); err != nil {
		_ = a.Shutdown()
		return nil, err
	}
	return a, nil
}

// bootstrap builds the components in dependency order.
func (a *Application) bootstrap() error {
	// 1. Logging first so later stages can report.
	if err := a.initLogging(); err != nil {
		return &InitError{Component: "logging", Err: err}
	}

	// 2. Configuration: defaults, file, environment.
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	a.cfg = cfg
	if a.opts.LogLevel == "" {
		a.log.SetLevel(logging.ParseLevel(cfg.Completion.LogLevel))
	}

	// 3. Event bus shared by the host and the engine.
	a.bus = event.NewBus()

	// 4. Behavior registry from the configured specs.
	reg, err := cfg.Registry()
	if err != nil {
		return &InitError{Component: "behaviors", Err: err}
	}
	a.registry = reg

	// 5. Buffer, settings store, and terminal host.
	buf, err := loadBuffer(a.opts.File)
	if err != nil {
		return &InitError{Component: "buffer", Err: err}
	}
	filetype := a.opts.FileType
	if filetype == "" {
		filetype = detectFileType(a.opts.File)
	}
	a.store = settings.NewMemoryStore(map[string]any{
		settings.MenuMode:   cfg.Completion.MenuMode,
		settings.IgnoreCase: cfg.Completion.IgnoreCase,
		settings.Sources:    cfg.Completion.Sources,
	})
	a.host = termhost.New(buf, filetype, a.store, a.bus,
		termhost.WithDictionary(termhost.DefaultDictionary(filetype)),
		termhost.WithLogger(a.log.WithComponent("host")),
	)

	// 6. Trigger engine on the shared bus.
	a.engine = trigger.New(cfg.TriggerConfig(), reg, a.host,
		trigger.WithBus(a.bus),
		trigger.WithLogger(a.log.WithComponent("trigger")),
	)

	// 7. Key mapper, completion controller, command registry.
	m, err := mapper.New(a.host)
	if err != nil {
		return &InitError{Component: "mapper", Err: err}
	}
	a.mapper = m
	keys, err := cfg.ParseKeys()
	if err != nil {
		return &InitError{Component: "keys", Err: err}
	}
	a.control = &controller{
		mapper: m,
		engine: a.engine,
		host:   a.host,
		keys:   keys,
	}
	a.commands = command.NewRegistry()
	if err := command.RegisterCompletion(a.commands, a.control); err != nil {
		return &InitError{Component: "commands", Err: err}
	}

	// 8. Install the trigger bindings when completion starts enabled.
	if cfg.Completion.Enabled {
		if err := a.control.Enable(); err != nil {
			return &InitError{Component: "completion", Err: err}
		}
	}

	// 9. Config watcher for live reload.
	if a.opts.Watch && a.opts.ConfigPath != "" {
		w, err := config.WatchFile(a.opts.ConfigPath,
			config.WithLogger(a.log.WithComponent("config")))
		if err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
		a.watcher = w
		a.wg.Add(1)
		go a.watchConfig()
	}

	return nil
}

func (a *Application) initLogging() error {
	a.log = logging.New(logging.DefaultConfig())
	if a.opts.LogPath == "" {
		a.log.Disable()
		return nil
	}
	f, err := os.OpenFile(a.opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	a.logFile = f
	a.log.SetOutput(f)
	if a.opts.LogLevel != "" {
		a.log.SetLevel(logging.ParseLevel(a.opts.LogLevel))
	}
	return nil
}

// Run opens the terminal screen and drives the editor until the user
// quits or ctx is canceled. It may be called once.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	select {
	case <-a.done:
		return ErrShutdown
	default:
	}

	ui, err := termhost.NewUI(a.host, a.commands,
		termhost.WithUILogger(a.log.WithComponent("ui")),
		termhost.WithStatus(a.statusLine),
	)
	if err != nil {
		return fmt.Errorf("create ui: %w", err)
	}
	a.mu.Lock()
	a.ui = ui
	a.mu.Unlock()

	// A Shutdown racing in before a.ui was published could not stop the
	// loop, so re-check now that it can.
	select {
	case <-a.done:
		return ErrShutdown
	default:
	}

	a.log.Info("editor running: file=%q filetype=%s", a.opts.File, a.host.FileType())
	return ui.Run(ctx)
}

// Running reports whether Run is active.
func (a *Application) Running() bool {
	return a.running.Load()
}

// Commands returns the command registry, letting callers run control
// commands such as completion.toggle without going through the UI.
func (a *Application) Commands() *command.Registry {
	return a.commands
}

// Config returns the currently applied configuration.
func (a *Application) Config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Shutdown stops the UI, the config watcher, and any open completion
// session, then releases the behavior registry and the log file. It is
// safe to call more than once and from a different goroutine than Run.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		var errs []error
		close(a.done)

		a.mu.Lock()
		ui := a.ui
		a.mu.Unlock()
		if ui != nil {
			ui.Stop()
		}

		if a.watcher != nil {
			if err := a.watcher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("config watcher: %w", err))
			}
		}

		// Wait for background tasks, but never hang a shutdown.
		idle := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(idle)
		}()
		select {
		case <-idle:
		case <-time.After(shutdownTimeout):
			a.log.Warn("shutdown timed out waiting for background tasks")
		}

		if a.engine != nil {
			a.engine.Finish()
		}
		if a.mapper != nil {
			if err := a.mapper.Unmap(); err != nil {
				errs = append(errs, fmt.Errorf("unmap keys: %w", err))
			}
		}
		if a.registry != nil {
			a.registry.Close()
		}
		if a.logFile != nil {
			if err := a.logFile.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close log: %w", err))
			}
		}

		a.shutdownErr = errors.Join(errs...)
	})
	return a.shutdownErr
}

// statusLine summarizes the completion state for the right side of the
// status bar.
func (a *Application) statusLine() string {
	if !a.control.Enabled() {
		return "acp off"
	}
	state := a.engine.State().String()
	if a.engine.Locked() {
		state += " locked"
	}
	return "acp " + state
}

// loadBuffer reads path into a buffer. A missing file opens empty, the
// way an editor opens a file it is about to create.
func loadBuffer(path string) (*termhost.Buffer, error) {
	if path == "" {
		return termhost.NewBuffer(nil), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return termhost.NewBuffer(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return termhost.NewBuffer(nil), nil
	}
	return termhost.NewBuffer(strings.Split(text, "\n")), nil
}

var filetypes = map[string]string{
	".c":    "c",
	".css":  "css",
	".go":   "go",
	".htm":  "html",
	".html": "html",
	".js":   "javascript",
	".lua":  "lua",
	".md":   "markdown",
	".py":   "python",
	".rb":   "ruby",
	".sh":   "sh",
	".toml": "toml",
	".txt":  "text",
}

// detectFileType maps a file extension to the file type used for
// behavior resolution. Unknown extensions fall back to "text".
func detectFileType(path string) string {
	if ft, ok := filetypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ft
	}
	return "text"
}
