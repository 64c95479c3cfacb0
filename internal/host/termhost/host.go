package termhost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/autopop/internal/event"
	"github.com/dshills/autopop/internal/key"
	"github.com/dshills/autopop/internal/logging"
	"github.com/dshills/autopop/internal/mapper"
	"github.com/dshills/autopop/internal/settings"
	"github.com/dshills/autopop/internal/trigger"
)

// ErrNilAction is returned when a nil action is bound to a key.
var ErrNilAction = errors.New("nil action")

// Host implements trigger.Host and mapper.Binder over a Buffer, a settings
// store, and the shared event bus. All methods are safe for concurrent use.
type Host struct {
	mu       sync.Mutex
	buf      *Buffer
	menu     menu
	store    *settings.MemoryStore
	bus      *event.Bus
	log      *logging.Logger
	filetype string
	dict     []string
	bindings map[key.Event]mapper.Action
	message  string
}

// Option configures a Host.
type Option func(*Host)

// WithDictionary supplies the word list consulted by the "dictionary"
// completion source.
func WithDictionary(words []string) Option {
	return func(h *Host) { h.dict = words }
}

// WithLogger sets the host logger.
func WithLogger(log *logging.Logger) Option {
	return func(h *Host) { h.log = log }
}

// New creates a Host editing buf. The store must carry the completion
// settings the engine overrides per session.
func New(buf *Buffer, filetype string, store *settings.MemoryStore, bus *event.Bus, opts ...Option) *Host {
	h := &Host{
		buf:      buf,
		store:    store,
		bus:      bus,
		log:      logging.Discard,
		filetype: filetype,
		bindings: make(map[key.Event]mapper.Action),
	}
	h.menu.selected = -1
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MenuVisible reports whether the completion popup is shown.
func (h *Host) MenuVisible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.menu.visible()
}

// TextBeforeCursor returns the current line's text up to the cursor.
func (h *Host) TextBeforeCursor() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.TextBeforeCursor()
}

// FileType returns the file type the buffer was opened with.
func (h *Host) FileType() string {
	return h.filetype
}

// Settings exposes the host settings store.
func (h *Host) Settings() settings.Store {
	return h.store
}

// Execute performs one directive operation.
func (h *Host) Execute(op trigger.Op) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch op.Kind {
	case trigger.OpComplete:
		return h.completeLocked(op.Command)
	case trigger.OpCancel:
		h.cancelLocked()
		return nil
	case trigger.OpRestorePrefix:
		h.restorePrefixLocked()
		return nil
	case trigger.OpSelectFirst:
		if h.menu.visible() {
			h.menu.selected = 0
		}
		return nil
	default:
		return fmt.Errorf("unknown operation %d", op.Kind)
	}
}

// completeLocked runs a completion command against the text before the
// cursor. Too few candidates means no menu opens; the caller observes the
// outcome through MenuVisible.
func (h *Host) completeLocked(command string) error {
	h.menu.close()

	before := h.buf.TextBeforeCursor()
	ignoreCase := h.settingBool(settings.IgnoreCase)

	var base string
	var items []string
	switch command {
	case CommandKeyword:
		base = keywordBaseRE.FindString(before)
		if base == "" {
			return nil
		}
		items = matchPrefix(h.keywordPool(), base, ignoreCase)
	case CommandFile:
		base = fileBaseRE.FindString(before)
		items = fileCandidates(base, ignoreCase)
	default:
		h.log.Debug("no completion source for command %q", command)
		return nil
	}

	if len(items) < h.menuMinItems() {
		return nil
	}

	// Insert the longest common candidate prefix in place of the typed
	// base. The engine follows up with a restore-prefix op once the menu
	// is up.
	inserted := commonPrefix(items, ignoreCase)
	h.buf.ReplaceBefore(len([]rune(base)), inserted)
	h.menu.open(base, items, inserted)
	return nil
}

func (h *Host) cancelLocked() {
	if !h.menu.visible() {
		return
	}
	h.buf.ReplaceBefore(len([]rune(h.menu.inserted)), h.menu.base)
	h.menu.close()
}

func (h *Host) restorePrefixLocked() {
	if !h.menu.visible() {
		return
	}
	h.buf.ReplaceBefore(len([]rune(h.menu.inserted)), h.menu.base)
	h.menu.inserted = h.menu.base
}

// keywordPool gathers candidate words from the sources the settings name.
func (h *Host) keywordPool() []string {
	seen := make(map[string]struct{})
	var pool []string
	add := func(words []string) {
		for _, w := range words {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			pool = append(pool, w)
		}
	}

	for _, src := range strings.Split(h.settingString(settings.Sources, "buffer"), ",") {
		switch strings.TrimSpace(src) {
		case "buffer", "window":
			add(h.buf.Words())
		case "dictionary":
			add(h.dict)
		}
	}
	return pool
}

func (h *Host) menuMinItems() int {
	if csvContains(h.settingString(settings.MenuMode, "menu"), "menu-one") {
		return 1
	}
	return 2
}

func (h *Host) previewOn() bool {
	return csvContains(h.settingString(settings.MenuMode, ""), "preview")
}

func (h *Host) settingString(name, fallback string) string {
	v, err := h.store.Get(name)
	if err != nil {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

func (h *Host) settingBool(name string) bool {
	v, err := h.store.Get(name)
	if err != nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func csvContains(csv, want string) bool {
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == want {
			return true
		}
	}
	return false
}

// Bind installs a key binding. Part of mapper.Binder.
func (h *Host) Bind(ev key.Event, action mapper.Action) error {
	if action == nil {
		return ErrNilAction
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bindings[ev] = action
	return nil
}

// Unbind removes a key binding. Part of mapper.Binder.
func (h *Host) Unbind(ev key.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.bindings[ev]; !ok {
		return fmt.Errorf("key %s not bound", ev)
	}
	delete(h.bindings, ev)
	return nil
}

// Binding looks up the action bound to a key, if any.
func (h *Host) Binding(ev key.Event) (mapper.Action, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	action, ok := h.bindings[ev]
	return action, ok
}

// InsertRune inserts a rune at the cursor.
func (h *Host) InsertRune(r rune) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.InsertRune(r)
}

// Backspace deletes backwards. It reports whether anything changed.
func (h *Host) Backspace() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Backspace()
}

// NewLine breaks the current line at the cursor.
func (h *Host) NewLine() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.NewLine()
}

// MoveCursor shifts the cursor, reporting whether it moved.
func (h *Host) MoveCursor(dLine, dCol int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.Move(dLine, dCol)
}

// MenuNext inserts the next menu candidate.
func (h *Host) MenuNext() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.menu.visible() {
		return
	}
	item := h.menu.next()
	h.buf.ReplaceBefore(len([]rune(h.menu.inserted)), item)
	h.menu.inserted = item
}

// MenuPrev inserts the previous menu candidate.
func (h *Host) MenuPrev() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.menu.visible() {
		return
	}
	item := h.menu.prev()
	h.buf.ReplaceBefore(len([]rune(h.menu.inserted)), item)
	h.menu.inserted = item
}

// MenuAccept closes the menu keeping the selected candidate in the buffer.
// It reports whether a menu was open.
func (h *Host) MenuAccept() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.menu.visible() {
		return false
	}
	if current := h.menu.current(); current != h.menu.inserted {
		h.buf.ReplaceBefore(len([]rune(h.menu.inserted)), current)
	}
	h.menu.close()
	return true
}

// MenuDismiss closes the menu without touching the buffer. Used when typing
// continues past an open menu.
func (h *Host) MenuDismiss() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.menu.close()
}

// CursorMoved publishes the cursor position on the bus. Subscriber errors
// are logged, not returned; a failed re-trigger must not break editing.
func (h *Host) CursorMoved() {
	h.mu.Lock()
	line, col := h.buf.Cursor()
	h.mu.Unlock()

	if err := h.bus.Publish(context.Background(), event.CursorMoved{Line: line, Column: col}); err != nil {
		h.log.Warn("cursor moved handlers: %v", err)
	}
}

// LeaveInsert closes the menu, keeping whatever text completion left
// behind, and announces the mode change on the bus.
func (h *Host) LeaveInsert() {
	h.mu.Lock()
	h.menu.close()
	h.mu.Unlock()

	if err := h.bus.Publish(context.Background(), event.InsertLeft{FileType: h.filetype}); err != nil {
		h.log.Warn("insert left handlers: %v", err)
	}
}

// SetMessage sets the status line message.
func (h *Host) SetMessage(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.message = msg
}

// View is a render snapshot of the host state.
type View struct {
	Lines    []string
	Line     int
	Col      int
	FileType string
	Message  string
	Menu     *MenuView
	Preview  string
}

// MenuView describes the completion popup for rendering. Line and Col
// anchor the popup's top-left cell, one row below the completed text.
type MenuView struct {
	Items    []string
	Selected int
	Line     int
	Col      int
}

// View returns a consistent snapshot for drawing.
func (h *Host) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()

	line, col := h.buf.Cursor()
	v := View{
		Lines:    h.buf.Lines(),
		Line:     line,
		Col:      col,
		FileType: h.filetype,
		Message:  h.message,
	}
	if h.menu.visible() {
		items := make([]string, len(h.menu.items))
		copy(items, h.menu.items)
		v.Menu = &MenuView{
			Items:    items,
			Selected: h.menu.selected,
			Line:     line + 1,
			Col:      col - len([]rune(h.menu.inserted)),
		}
		if h.previewOn() && h.menu.selected >= 0 {
			v.Preview = h.menu.items[h.menu.selected]
		}
	}
	return v
}
