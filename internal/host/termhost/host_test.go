package termhost

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/autopop/internal/event"
	"github.com/dshills/autopop/internal/key"
	"github.com/dshills/autopop/internal/settings"
	"github.com/dshills/autopop/internal/trigger"
)

func newTestHost(t *testing.T, lines []string, opts ...Option) (*Host, *Buffer, *settings.MemoryStore, *event.Bus) {
	t.Helper()
	store := settings.NewMemoryStore(map[string]any{
		settings.MenuMode:   "menu",
		settings.IgnoreCase: false,
		settings.Sources:    "buffer",
	})
	bus := event.NewBus()
	buf := NewBuffer(lines)
	return New(buf, "go", store, bus, opts...), buf, store, bus
}

func complete(t *testing.T, h *Host, command string) {
	t.Helper()
	if err := h.Execute(trigger.Op{Kind: trigger.OpComplete, Command: command}); err != nil {
		t.Fatalf("Execute(complete) error = %v", err)
	}
}

func TestExecuteCompleteOpensMenu(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet beta", "alp"})
	buf.SetCursor(1, 3)

	complete(t, h, CommandKeyword)

	if !h.MenuVisible() {
		t.Fatal("MenuVisible() = false after keyword completion")
	}
	// The common prefix of the candidates replaces the typed base.
	if got := h.TextBeforeCursor(); got != "alpha" {
		t.Errorf("TextBeforeCursor() = %q, want %q", got, "alpha")
	}

	v := h.View()
	if v.Menu == nil {
		t.Fatal("View().Menu = nil")
	}
	want := []string{"alpha", "alphabet"}
	if !reflect.DeepEqual(v.Menu.Items, want) {
		t.Errorf("menu items = %v, want %v", v.Menu.Items, want)
	}
	if v.Menu.Selected != -1 {
		t.Errorf("menu selected = %d, want -1", v.Menu.Selected)
	}
}

func TestExecuteRestorePrefix(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)
	complete(t, h, CommandKeyword)

	if err := h.Execute(trigger.Op{Kind: trigger.OpRestorePrefix}); err != nil {
		t.Fatalf("Execute(restore-prefix) error = %v", err)
	}
	if got := h.TextBeforeCursor(); got != "alp" {
		t.Errorf("TextBeforeCursor() = %q, want typed prefix %q", got, "alp")
	}
	if !h.MenuVisible() {
		t.Error("MenuVisible() = false, menu should stay open")
	}
}

func TestExecuteSelectFirst(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)
	complete(t, h, CommandKeyword)

	if err := h.Execute(trigger.Op{Kind: trigger.OpSelectFirst}); err != nil {
		t.Fatalf("Execute(select-first) error = %v", err)
	}
	if got := h.View().Menu.Selected; got != 0 {
		t.Errorf("menu selected = %d, want 0", got)
	}
}

func TestExecuteCancelRestoresText(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)
	complete(t, h, CommandKeyword)

	if err := h.Execute(trigger.Op{Kind: trigger.OpCancel}); err != nil {
		t.Fatalf("Execute(cancel) error = %v", err)
	}
	if h.MenuVisible() {
		t.Error("MenuVisible() = true after cancel")
	}
	if got := h.TextBeforeCursor(); got != "alp" {
		t.Errorf("TextBeforeCursor() = %q, want %q", got, "alp")
	}
}

func TestExecuteCompleteTooFewCandidates(t *testing.T) {
	h, buf, store, _ := newTestHost(t, []string{"alpha", "alp"})
	buf.SetCursor(1, 3)

	// "menu" mode needs at least two candidates; only "alpha" matches.
	complete(t, h, CommandKeyword)
	if h.MenuVisible() {
		t.Fatal("MenuVisible() = true, want no menu for a single candidate")
	}
	if got := h.TextBeforeCursor(); got != "alp" {
		t.Errorf("TextBeforeCursor() = %q, want untouched %q", got, "alp")
	}

	// The menu-one override the engine applies makes one enough.
	if err := store.Set(settings.MenuMode, "menu-one,preview"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	complete(t, h, CommandKeyword)
	if !h.MenuVisible() {
		t.Error("MenuVisible() = false under menu-one mode")
	}
}

func TestExecuteCompleteIgnoreCase(t *testing.T) {
	h, buf, store, _ := newTestHost(t, []string{"Alpha ALPACA", "al"})
	buf.SetCursor(1, 2)
	if err := store.Set(settings.IgnoreCase, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	complete(t, h, CommandKeyword)

	if !h.MenuVisible() {
		t.Fatal("MenuVisible() = false with ignore case")
	}
	if got := h.TextBeforeCursor(); got != "Alp" {
		t.Errorf("TextBeforeCursor() = %q, want common prefix %q", got, "Alp")
	}
}

func TestExecuteCompleteDictionarySource(t *testing.T) {
	h, buf, store, _ := newTestHost(t, []string{"re"},
		WithDictionary([]string{"return", "retry", "range"}))
	buf.SetCursor(0, 2)
	if err := store.Set(settings.Sources, "dictionary"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	complete(t, h, CommandKeyword)

	v := h.View()
	if v.Menu == nil {
		t.Fatal("View().Menu = nil")
	}
	want := []string{"return", "retry"}
	if !reflect.DeepEqual(v.Menu.Items, want) {
		t.Errorf("menu items = %v, want %v", v.Menu.Items, want)
	}
}

func TestExecuteCompleteUnknownCommand(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)

	complete(t, h, "omni")

	if h.MenuVisible() {
		t.Error("MenuVisible() = true for unknown command")
	}
	if got := h.TextBeforeCursor(); got != "alp" {
		t.Errorf("TextBeforeCursor() = %q, want untouched %q", got, "alp")
	}
}

func TestExecuteUnknownOp(t *testing.T) {
	h, _, _, _ := newTestHost(t, []string{""})
	if err := h.Execute(trigger.Op{Kind: trigger.OpKind(99)}); err == nil {
		t.Error("Execute() error = nil for unknown op, want error")
	}
}

func TestMenuCycleThroughHost(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)
	complete(t, h, CommandKeyword)
	if err := h.Execute(trigger.Op{Kind: trigger.OpRestorePrefix}); err != nil {
		t.Fatalf("Execute(restore-prefix) error = %v", err)
	}
	if err := h.Execute(trigger.Op{Kind: trigger.OpSelectFirst}); err != nil {
		t.Fatalf("Execute(select-first) error = %v", err)
	}

	h.MenuNext()
	if got := h.TextBeforeCursor(); got != "alphabet" {
		t.Errorf("after MenuNext() text = %q, want %q", got, "alphabet")
	}
	h.MenuPrev()
	if got := h.TextBeforeCursor(); got != "alpha" {
		t.Errorf("after MenuPrev() text = %q, want %q", got, "alpha")
	}

	if !h.MenuAccept() {
		t.Fatal("MenuAccept() = false with open menu")
	}
	if h.MenuVisible() {
		t.Error("MenuVisible() = true after accept")
	}
	if got := h.TextBeforeCursor(); got != "alpha" {
		t.Errorf("after accept text = %q, want %q", got, "alpha")
	}
}

func TestMenuAcceptAfterSelectFirst(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)
	complete(t, h, CommandKeyword)
	if err := h.Execute(trigger.Op{Kind: trigger.OpRestorePrefix}); err != nil {
		t.Fatalf("Execute(restore-prefix) error = %v", err)
	}
	if err := h.Execute(trigger.Op{Kind: trigger.OpSelectFirst}); err != nil {
		t.Fatalf("Execute(select-first) error = %v", err)
	}

	// Selection is highlighted but the buffer still shows the typed
	// prefix; accepting materializes the selection.
	if got := h.TextBeforeCursor(); got != "alp" {
		t.Fatalf("text = %q before accept, want %q", got, "alp")
	}
	h.MenuAccept()
	if got := h.TextBeforeCursor(); got != "alpha" {
		t.Errorf("after accept text = %q, want %q", got, "alpha")
	}
}

func TestLeaveInsertKeepsTextAndPublishes(t *testing.T) {
	h, buf, _, bus := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)

	var left []event.InsertLeft
	if _, err := bus.SubscribeFunc(event.TopicInsertLeft, func(_ context.Context, ev any) error {
		left = append(left, ev.(event.InsertLeft))
		return nil
	}); err != nil {
		t.Fatalf("SubscribeFunc() error = %v", err)
	}

	complete(t, h, CommandKeyword)
	h.LeaveInsert()

	if h.MenuVisible() {
		t.Error("MenuVisible() = true after LeaveInsert")
	}
	// Completion text survives leaving insertion, like a popup closing on
	// mode change.
	if got := h.TextBeforeCursor(); got != "alpha" {
		t.Errorf("TextBeforeCursor() = %q, want %q", got, "alpha")
	}
	if len(left) != 1 || left[0].FileType != "go" {
		t.Errorf("insert left events = %+v, want one for go", left)
	}
}

func TestCursorMovedPublishes(t *testing.T) {
	h, _, _, bus := newTestHost(t, []string{""})

	var moves []event.CursorMoved
	if _, err := bus.SubscribeFunc(event.TopicCursorMoved, func(_ context.Context, ev any) error {
		moves = append(moves, ev.(event.CursorMoved))
		return nil
	}); err != nil {
		t.Fatalf("SubscribeFunc() error = %v", err)
	}

	h.InsertRune('x')
	h.CursorMoved()

	if len(moves) != 1 {
		t.Fatalf("cursor events = %d, want 1", len(moves))
	}
	if moves[0].Line != 0 || moves[0].Column != 1 {
		t.Errorf("cursor event = %+v, want line 0 column 1", moves[0])
	}
}

func TestBindUnbind(t *testing.T) {
	h, _, _, _ := newTestHost(t, []string{""})
	ev := key.MustParse("a")

	if err := h.Bind(ev, nil); !errors.Is(err, ErrNilAction) {
		t.Errorf("Bind(nil) error = %v, want %v", err, ErrNilAction)
	}

	called := false
	if err := h.Bind(ev, func() error { called = true; return nil }); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	action, ok := h.Binding(ev)
	if !ok {
		t.Fatal("Binding() = false after Bind")
	}
	if err := action(); err != nil || !called {
		t.Errorf("action() error = %v, called = %v", err, called)
	}

	if err := h.Unbind(ev); err != nil {
		t.Fatalf("Unbind() error = %v", err)
	}
	if err := h.Unbind(ev); err == nil {
		t.Error("second Unbind() error = nil, want error")
	}
}

func TestViewMenuAnchor(t *testing.T) {
	h, buf, _, _ := newTestHost(t, []string{"alpha alphabet", "say alp"})
	buf.SetCursor(1, 7)

	complete(t, h, CommandKeyword)

	v := h.View()
	if v.Menu == nil {
		t.Fatal("View().Menu = nil")
	}
	if v.Menu.Line != 2 {
		t.Errorf("menu line = %d, want 2", v.Menu.Line)
	}
	// Anchored under the start of the completed text: "say " is 4 wide.
	if v.Menu.Col != 4 {
		t.Errorf("menu col = %d, want 4", v.Menu.Col)
	}
}

func TestViewPreview(t *testing.T) {
	h, buf, store, _ := newTestHost(t, []string{"alpha alphabet", "alp"})
	buf.SetCursor(1, 3)
	if err := store.Set(settings.MenuMode, "menu,preview"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	complete(t, h, CommandKeyword)
	if got := h.View().Preview; got != "" {
		t.Errorf("Preview = %q with no selection, want empty", got)
	}

	if err := h.Execute(trigger.Op{Kind: trigger.OpSelectFirst}); err != nil {
		t.Fatalf("Execute(select-first) error = %v", err)
	}
	if got := h.View().Preview; got != "alpha" {
		t.Errorf("Preview = %q, want %q", got, "alpha")
	}
}
