package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/autopop/internal/behavior"
	"github.com/dshills/autopop/internal/event"
	"github.com/dshills/autopop/internal/logging"
	"github.com/dshills/autopop/internal/settings"
)

// Config holds the per-session overrides and attempt policy.
type Config struct {
	// MenuMode is written to the host's menu mode setting for the session.
	MenuMode string

	// Preview appends ",preview" to the menu mode, asking the host for a
	// documentation preview alongside the menu.
	Preview bool

	// IgnoreCase is written to the host's case sensitivity setting.
	IgnoreCase bool

	// Sources is written to the host's completion sources setting.
	Sources string

	// RetryFirstAttempt duplicates the first candidate so its attempt is
	// silently retried once. Hosts that drop the first completion attempt
	// right after a word-splitting character need this; hosts that do not
	// can disable it.
	RetryFirstAttempt bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MenuMode:          "menu-one",
		IgnoreCase:        false,
		Sources:           "buffer,window,dictionary",
		RetryFirstAttempt: true,
	}
}

// Engine is the completion trigger state machine. All exported methods are
// safe for concurrent use, though a well-behaved host drives the engine
// from a single goroutine.
type Engine struct {
	mu   sync.Mutex
	cfg  Config
	reg  *behavior.Registry
	host Host
	bus  *event.Bus
	log  *logging.Logger
	lock *Lock

	state State
	sess  *session
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithBus sets the event bus the engine subscribes and publishes on. The
// host must publish its insert-left and cursor-moved notifications on the
// same bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithLock shares a suppression lock between engines or with code that
// locks completion directly.
func WithLock(lock *Lock) Option {
	return func(e *Engine) { e.lock = lock }
}

// New creates an engine over the given registry and host.
func New(cfg Config, reg *behavior.Registry, host Host, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg,
		reg:   reg,
		host:  host,
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewBus()
	}
	if e.log == nil {
		e.log = logging.Discard
	}
	if e.lock == nil {
		e.lock = NewLock()
	}
	return e
}

// Bus returns the engine's event bus.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Trigger is the entry point invoked once per intercepted keystroke, after
// the host has inserted the literal character. It refuses to open a
// session while the lock is held or a menu is already visible, overrides
// the host settings for the session, and returns the directive whose
// continuation filters behaviors and issues the first attempt.
//
// A returned error means the settings override failed; everything written
// before the failure has been restored and no session is open.
func (e *Engine) Trigger() (Directive, error) {
	var events []any
	e.mu.Lock()
	d, err := e.triggerLocked(&events)
	e.mu.Unlock()
	e.publishAll(events)
	return d, err
}

func (e *Engine) triggerLocked(events *[]any) (Directive, error) {
	if e.lock.Locked() {
		return Directive{}, nil
	}
	if e.host.MenuVisible() {
		return Directive{}, nil
	}

	// A session whose menu was dismissed without leaving insert mode is
	// still open here. Tear it down so only one snapshot ever exists.
	if e.sess != nil {
		e.finishLocked(events)
	}

	snap := settings.NewSnapshot(e.host.Settings())
	menuMode := e.cfg.MenuMode
	if e.cfg.Preview {
		menuMode += ",preview"
	}
	overrides := []struct {
		name  string
		value any
	}{
		{settings.MenuMode, menuMode},
		{settings.IgnoreCase, e.cfg.IgnoreCase},
		{settings.Sources, e.cfg.Sources},
	}
	for _, o := range overrides {
		if err := snap.Set(o.name, o.value); err != nil {
			if rerr := snap.RestoreAll(); rerr != nil {
				e.log.Warn("restore after failed override: %v", rerr)
			}
			return Directive{}, fmt.Errorf("override settings: %w", err)
		}
	}

	sess := &session{
		id:       uuid.NewString(),
		snapshot: snap,
	}
	sub, err := e.bus.SubscribeFunc(event.TopicInsertLeft, func(ctx context.Context, ev any) error {
		e.Finish()
		return nil
	})
	if err != nil {
		if rerr := snap.RestoreAll(); rerr != nil {
			e.log.Warn("restore after failed subscribe: %v", rerr)
		}
		return Directive{}, fmt.Errorf("subscribe insert-left: %w", err)
	}
	sess.insertSub = sub
	e.sess = sess

	return Directive{Then: e.start}, nil
}

// start is the continuation of the Trigger directive. It runs after the
// host has executed the keystroke's literal insertion, so the text before
// the cursor now includes the typed character.
func (e *Engine) start() (Directive, error) {
	var events []any
	e.mu.Lock()
	var d Directive
	if e.sess != nil {
		d = e.feedLocked(e.reg.Resolve(e.host.FileType()), &events)
	}
	e.mu.Unlock()
	e.publishAll(events)
	return d, nil
}

// feedLocked filters behaviors against the text before the cursor,
// populates the candidate queue, and issues the first attempt. An empty
// queue finishes the session immediately.
func (e *Engine) feedLocked(behaviors []behavior.Behavior, events *[]any) Directive {
	sess := e.sess
	sess.filetype = e.host.FileType()
	text := e.host.TextBeforeCursor()

	queue := make([]behavior.Behavior, 0, len(behaviors)+1)
	for i := range behaviors {
		b := behaviors[i]
		ok, err := b.Eligible(text, sess.filetype)
		if err != nil {
			e.log.Warn("behavior %s condition: %v", b.Command, err)
			continue
		}
		if ok {
			queue = append(queue, b)
		}
	}

	if len(queue) == 0 {
		e.finishLocked(events)
		return Directive{}
	}

	eligible := len(queue)
	if e.cfg.RetryFirstAttempt {
		queue = append([]behavior.Behavior{queue[0]}, queue...)
	}
	sess.queue = queue
	e.state = StateAttemptPending

	if !sess.started {
		sess.started = true
		*events = append(*events, event.SessionStarted{
			SessionID:  sess.id,
			FileType:   sess.filetype,
			Candidates: eligible,
		})
	}

	return Directive{
		Ops:  []Op{{Kind: OpComplete, Command: queue[0].Command}},
		Then: e.attemptResult,
	}
}

// attemptResult is the continuation chained after every issued completion
// command. It inspects the menu outcome and either settles the session,
// falls back to the next candidate, or finishes.
func (e *Engine) attemptResult() (Directive, error) {
	var events []any
	e.mu.Lock()
	d := e.attemptResultLocked(&events)
	e.mu.Unlock()
	e.publishAll(events)
	return d, nil
}

func (e *Engine) attemptResultLocked(events *[]any) Directive {
	sess := e.sess
	if sess == nil || e.state != StateAttemptPending {
		// The session was torn down while the attempt ran.
		return Directive{}
	}

	if e.host.MenuVisible() {
		current := sess.queue[0]
		*events = append(*events, event.MenuShown{
			SessionID: sess.id,
			Command:   current.Command,
		})

		e.state = StateShown
		if current.Repeat {
			sub, err := e.bus.SubscribeFunc(
				event.TopicCursorMoved, e.onCursorMoved, event.WithOnce())
			if err != nil {
				e.log.Warn("subscribe cursor-moved: %v", err)
			} else {
				sess.cursorSub = sub
				e.state = StateRepeating
			}
		}

		// Undo the host's auto-inserted common prefix and put the
		// selection on the first entry. The menu stays open for the user.
		return Directive{Ops: []Op{{Kind: OpRestorePrefix}, {Kind: OpSelectFirst}}}
	}

	// No menu: drop the failed candidate and fall back to the next one.
	sess.queue = sess.queue[1:]
	if len(sess.queue) > 0 {
		next := sess.queue[0]
		e.log.Debug("attempt failed, falling back to %s", next.Command)
		return Directive{
			Ops:  []Op{{Kind: OpCancel}, {Kind: OpComplete, Command: next.Command}},
			Then: e.attemptResult,
		}
	}

	e.finishLocked(events)
	return Directive{Ops: []Op{{Kind: OpCancel}}}
}

// onCursorMoved handles the one-shot cursor notification armed in repeat
// mode: it re-feeds the single behavior whose menu is showing, so path
// style completions keep re-triggering segment by segment.
func (e *Engine) onCursorMoved(ctx context.Context, ev any) error {
	var events []any
	e.mu.Lock()
	var d Directive
	if e.sess != nil && e.state == StateRepeating {
		e.sess.cursorSub = nil
		current := e.sess.queue[0]
		d = e.feedLocked([]behavior.Behavior{current}, &events)
	}
	e.mu.Unlock()
	e.publishAll(events)
	return Run(e.host, d)
}

// Finish tears down the open session: cancels the session's
// subscriptions, restores every overridden setting, and returns the
// engine to idle. It is idempotent and safe to call with no open session.
func (e *Engine) Finish() {
	var events []any
	e.mu.Lock()
	e.finishLocked(&events)
	e.mu.Unlock()
	e.publishAll(events)
}

func (e *Engine) finishLocked(events *[]any) {
	sess := e.sess
	if sess == nil {
		e.state = StateIdle
		return
	}

	if sess.insertSub != nil {
		_ = e.bus.Unsubscribe(sess.insertSub)
	}
	if sess.cursorSub != nil {
		// One-shot subscriptions that already fired are gone from the
		// bus; unsubscribing again is harmless.
		_ = e.bus.Unsubscribe(sess.cursorSub)
	}

	// Restore failures must not keep the session alive. Log and move on.
	if err := sess.snapshot.RestoreAll(); err != nil {
		e.log.Warn("restore settings: %v", err)
	}

	if sess.started {
		*events = append(*events, event.SessionFinished{SessionID: sess.id})
	}

	e.sess = nil
	e.state = StateIdle
}

// Lock suppresses session starts until a matching Unlock.
func (e *Engine) Lock() {
	e.lock.Acquire()
}

// Unlock releases one Lock. Unlocking an unlocked engine returns
// ErrUnlockWithoutLock and leaves the count at zero.
func (e *Engine) Unlock() error {
	return e.lock.Release()
}

// ResetLock unconditionally clears the lock count. Used when completion is
// re-enabled after a full disable.
func (e *Engine) ResetLock() {
	e.lock.Reset()
}

// Locked reports whether session starts are currently suppressed.
func (e *Engine) Locked() bool {
	return e.lock.Locked()
}

// Reconfigure swaps the engine's config and registry, finishing any open
// session first so no session straddles two configurations. The engine
// does not own either registry; the caller closes the old one once no
// other component uses it.
func (e *Engine) Reconfigure(cfg Config, reg *behavior.Registry) {
	var events []any
	e.mu.Lock()
	e.finishLocked(&events)
	e.cfg = cfg
	e.reg = reg
	e.mu.Unlock()
	e.publishAll(events)
}

// publishAll delivers events gathered while the engine mutex was held.
// Publishing after release lets handlers call back into the engine.
func (e *Engine) publishAll(events []any) {
	for _, ev := range events {
		if err := e.bus.Publish(context.Background(), ev); err != nil {
			e.log.Warn("publish event: %v", err)
		}
	}
}
