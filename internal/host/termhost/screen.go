package termhost

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/autopop/internal/command"
	"github.com/dshills/autopop/internal/key"
	"github.com/dshills/autopop/internal/logging"
)

const maxMenuRows = 8

type uiMode int

const (
	modeNormal uiMode = iota
	modeInsert
	modeCommand
)

func (m uiMode) String() string {
	switch m {
	case modeInsert:
		return "INSERT"
	case modeCommand:
		return "COMMAND"
	default:
		return "NORMAL"
	}
}

// UI drives a tcell screen: it pumps terminal events into the host and
// renders the buffer, popup menu, and status line.
type UI struct {
	screen   tcell.Screen
	host     *Host
	commands *command.Registry
	log      *logging.Logger
	status   func() string

	mode    uiMode
	cmdline []rune
	offset  int

	quit     chan struct{}
	quitOnce sync.Once
}

// UIOption configures a UI.
type UIOption func(*UI)

// WithUILogger sets the UI logger.
func WithUILogger(log *logging.Logger) UIOption {
	return func(u *UI) { u.log = log }
}

// WithStatus supplies extra text for the right side of the status line.
func WithStatus(fn func() string) UIOption {
	return func(u *UI) { u.status = fn }
}

// NewUI creates a UI on a new tcell screen.
func NewUI(host *Host, commands *command.Registry, opts ...UIOption) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	u := &UI{
		screen:   screen,
		host:     host,
		commands: commands,
		log:      logging.Discard,
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

// Run initializes the screen and processes events until the user quits or
// ctx is canceled.
func (u *UI) Run(ctx context.Context) error {
	if err := u.screen.Init(); err != nil {
		return err
	}
	defer u.screen.Fini()
	defer u.Stop()

	go func() {
		select {
		case <-ctx.Done():
		case <-u.quit:
		}
		_ = u.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	for {
		u.draw()

		ev := u.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch e := ev.(type) {
		case *tcell.EventInterrupt:
			return ctx.Err()
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			if u.handleKey(e) {
				return nil
			}
		}
	}
}

// Stop makes Run return. Safe to call from any goroutine, more than once.
func (u *UI) Stop() {
	u.quitOnce.Do(func() { close(u.quit) })
}

// handleKey dispatches a key event by mode. It reports whether the UI
// should quit.
func (u *UI) handleKey(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyCtrlC {
		return true
	}

	switch u.mode {
	case modeInsert:
		u.insertKey(e)
	case modeCommand:
		u.commandKey(e)
	default:
		return u.normalKey(e)
	}
	return false
}

func (u *UI) normalKey(e *tcell.EventKey) bool {
	switch e.Key() {
	case tcell.KeyRune:
		switch e.Rune() {
		case 'q':
			return true
		case 'i':
			u.mode = modeInsert
			u.host.SetMessage("")
		case ':':
			u.mode = modeCommand
			u.cmdline = u.cmdline[:0]
		case 'h':
			u.host.MoveCursor(0, -1)
		case 'l':
			u.host.MoveCursor(0, 1)
		case 'j':
			u.host.MoveCursor(1, 0)
		case 'k':
			u.host.MoveCursor(-1, 0)
		}
	case tcell.KeyLeft:
		u.host.MoveCursor(0, -1)
	case tcell.KeyRight:
		u.host.MoveCursor(0, 1)
	case tcell.KeyDown:
		u.host.MoveCursor(1, 0)
	case tcell.KeyUp:
		u.host.MoveCursor(-1, 0)
	}
	return false
}

func (u *UI) insertKey(e *tcell.EventKey) {
	if u.host.MenuVisible() {
		switch e.Key() {
		case tcell.KeyEscape:
			u.mode = modeNormal
			u.host.LeaveInsert()
			return
		case tcell.KeyEnter:
			u.host.MenuAccept()
			u.host.CursorMoved()
			return
		case tcell.KeyTab, tcell.KeyDown, tcell.KeyCtrlN:
			u.host.MenuNext()
			return
		case tcell.KeyBacktab, tcell.KeyUp, tcell.KeyCtrlP:
			u.host.MenuPrev()
			return
		}
		// Anything else types through: close the menu and handle the
		// key normally.
		u.host.MenuDismiss()
	}

	if e.Key() == tcell.KeyEscape {
		u.mode = modeNormal
		u.host.LeaveInsert()
		return
	}

	ev, ok := translateKey(e)
	if !ok {
		return
	}

	if action, bound := u.host.Binding(ev); bound {
		u.applyEdit(ev)
		if err := action(); err != nil {
			u.log.Warn("completion trigger: %v", err)
		}
		return
	}

	if u.applyEdit(ev) {
		u.host.CursorMoved()
	}
}

// applyEdit performs the editing effect of a key and reports whether the
// buffer or cursor changed.
func (u *UI) applyEdit(ev key.Event) bool {
	switch ev.Key {
	case key.KeyBackspace:
		return u.host.Backspace()
	case key.KeyEnter:
		u.host.NewLine()
		return true
	case key.KeyLeft:
		return u.host.MoveCursor(0, -1)
	case key.KeyRight:
		return u.host.MoveCursor(0, 1)
	case key.KeyUp:
		return u.host.MoveCursor(-1, 0)
	case key.KeyDown:
		return u.host.MoveCursor(1, 0)
	}
	if ev.IsChar() && !ev.IsModified() {
		u.host.InsertRune(ev.Rune)
		return true
	}
	return false
}

func (u *UI) commandKey(e *tcell.EventKey) {
	switch e.Key() {
	case tcell.KeyEscape:
		u.mode = modeNormal
	case tcell.KeyEnter:
		u.runCommand(string(u.cmdline))
		u.mode = modeNormal
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(u.cmdline) > 0 {
			u.cmdline = u.cmdline[:len(u.cmdline)-1]
		} else {
			u.mode = modeNormal
		}
	case tcell.KeyRune:
		u.cmdline = append(u.cmdline, e.Rune())
	}
}

func (u *UI) runCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	res := u.commands.Execute(context.Background(), fields[0], fields[1:]...)
	switch {
	case res.IsError():
		u.host.SetMessage("error: " + res.Error.Error())
	case res.Message != "":
		u.host.SetMessage(res.Message)
	default:
		u.host.SetMessage(fields[0] + ": " + res.Status.String())
	}
}

// translateKey converts a tcell key event into the host's key
// representation. Uppercase runes carry an implicit Shift so terminal input
// matches parsed key specifications.
func translateKey(e *tcell.EventKey) (key.Event, bool) {
	mods := translateMods(e.Modifiers())

	switch e.Key() {
	case tcell.KeyRune:
		r := e.Rune()
		if unicode.IsUpper(r) {
			mods = mods.With(key.ModShift)
		}
		return key.RuneEvent(r, mods), true
	case tcell.KeyEnter:
		return key.SpecialEvent(key.KeyEnter, mods), true
	case tcell.KeyTab:
		return key.SpecialEvent(key.KeyTab, mods), true
	case tcell.KeyEscape:
		return key.SpecialEvent(key.KeyEscape, mods), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.SpecialEvent(key.KeyBackspace, mods), true
	case tcell.KeyDelete:
		return key.SpecialEvent(key.KeyDelete, mods), true
	case tcell.KeyHome:
		return key.SpecialEvent(key.KeyHome, mods), true
	case tcell.KeyEnd:
		return key.SpecialEvent(key.KeyEnd, mods), true
	case tcell.KeyUp:
		return key.SpecialEvent(key.KeyUp, mods), true
	case tcell.KeyDown:
		return key.SpecialEvent(key.KeyDown, mods), true
	case tcell.KeyLeft:
		return key.SpecialEvent(key.KeyLeft, mods), true
	case tcell.KeyRight:
		return key.SpecialEvent(key.KeyRight, mods), true
	}

	// Control chords arrive as dedicated key codes.
	if e.Key() >= tcell.KeyCtrlA && e.Key() <= tcell.KeyCtrlZ {
		r := rune('a' + e.Key() - tcell.KeyCtrlA)
		return key.RuneEvent(r, mods.With(key.ModCtrl)), true
	}
	return key.Event{}, false
}

func translateMods(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModMeta)
	}
	return mods
}

var (
	styleText     = tcell.StyleDefault
	styleBar      = tcell.StyleDefault.Reverse(true)
	styleMenu     = tcell.StyleDefault.Background(tcell.ColorSilver).Foreground(tcell.ColorBlack)
	styleSelected = tcell.StyleDefault.Background(tcell.ColorTeal).Foreground(tcell.ColorWhite)
)

func (u *UI) draw() {
	u.screen.Clear()
	width, height := u.screen.Size()
	if width < 1 || height < 2 {
		u.screen.Show()
		return
	}

	v := u.host.View()
	textRows := height - 1

	// Keep the cursor line on screen.
	if v.Line < u.offset {
		u.offset = v.Line
	}
	if v.Line >= u.offset+textRows {
		u.offset = v.Line - textRows + 1
	}

	for row := 0; row < textRows; row++ {
		idx := u.offset + row
		if idx >= len(v.Lines) {
			break
		}
		drawText(u.screen, 0, row, width, v.Lines[idx], styleText)
	}

	if v.Preview != "" {
		drawText(u.screen, 0, 0, width, " "+v.Preview+" ", styleBar)
	}
	if v.Menu != nil {
		u.drawMenu(v.Menu, width, textRows)
	}
	u.drawStatus(v, width, height)

	if u.mode == modeCommand {
		u.screen.ShowCursor(len(u.cmdline)+1, height-1)
	} else {
		col := v.Col
		if col >= width {
			col = width - 1
		}
		u.screen.ShowCursor(col, v.Line-u.offset)
	}
	u.screen.Show()
}

func (u *UI) drawMenu(m *MenuView, width, textRows int) {
	rows := len(m.Items)
	if rows > maxMenuRows {
		rows = maxMenuRows
	}

	// Scroll the window so the selection stays visible.
	start := 0
	if m.Selected >= rows {
		start = m.Selected - rows + 1
	}

	menuWidth := 0
	for _, item := range m.Items {
		if n := len([]rune(item)) + 2; n > menuWidth {
			menuWidth = n
		}
	}
	if menuWidth > width {
		menuWidth = width
	}

	x := m.Col
	if x+menuWidth > width {
		x = width - menuWidth
	}
	if x < 0 {
		x = 0
	}

	y := m.Line - u.offset
	if y+rows > textRows {
		// Not enough room below the cursor line; open upwards.
		y = m.Line - u.offset - 1 - rows
	}
	if y < 0 {
		y = 0
	}

	for i := 0; i < rows; i++ {
		style := styleMenu
		if start+i == m.Selected {
			style = styleSelected
		}
		item := " " + m.Items[start+i]
		for len([]rune(item)) < menuWidth {
			item += " "
		}
		drawText(u.screen, x, y+i, x+menuWidth, item, style)
	}
}

func (u *UI) drawStatus(v View, width, height int) {
	row := height - 1
	for x := 0; x < width; x++ {
		u.screen.SetContent(x, row, ' ', nil, styleBar)
	}

	if u.mode == modeCommand {
		drawText(u.screen, 0, row, width, ":"+string(u.cmdline), styleBar)
		return
	}

	left := " " + u.mode.String() + "  " + v.FileType
	if v.Message != "" {
		left += "  " + v.Message
	}
	drawText(u.screen, 0, row, width, left, styleBar)

	if u.status != nil {
		right := u.status() + " "
		x := width - len([]rune(right))
		if x > len([]rune(left)) {
			drawText(u.screen, x, row, width, right, styleBar)
		}
	}
}

func drawText(s tcell.Screen, x, y, maxX int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		if col >= maxX {
			return
		}
		s.SetContent(col, y, r, nil, style)
		col++
	}
}
