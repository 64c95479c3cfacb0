package key

import (
	"strings"
	"unicode"
)

// Event represents a single key press. Events are comparable and can be used
// as map keys; two events are equal when key, rune, and modifiers all match.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Modifiers contains the active modifier keys.
	Modifiers Modifier
}

// RuneEvent creates an event for a character key.
func RuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// SpecialEvent creates an event for a special key.
func SpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if any modifier is pressed. For character events
// Shift alone is not considered modified, since Shift changes the character
// itself.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Modifiers&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Modifiers != ModNone
}

// IsBackspace returns true if this is Backspace with no modifiers.
func (e Event) IsBackspace() bool {
	return e.Key == KeyBackspace && e.Modifiers == ModNone
}

// String returns a Vim-style specification for the event.
// Examples: "a", "<Space>", "<BS>", "<C-s>", "<CR>"
func (e Event) String() string {
	if e.IsRune() && !e.IsModified() {
		if e.Rune == ' ' {
			return "<Space>"
		}
		return string(e.Rune)
	}

	var parts []string
	if e.Modifiers.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Modifiers.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Modifiers.HasMeta() {
		parts = append(parts, "D")
	}
	if e.Modifiers.HasShift() && !e.IsRune() {
		parts = append(parts, "S")
	}

	var name string
	switch e.Key {
	case KeyRune:
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = strings.ToLower(string(e.Rune))
		}
	case KeyEscape:
		name = "Esc"
	case KeyEnter:
		name = "CR"
	case KeyTab:
		name = "Tab"
	case KeyBackspace:
		name = "BS"
	case KeyDelete:
		name = "Del"
	default:
		name = e.Key.String()
	}

	parts = append(parts, name)

	return "<" + strings.Join(parts, "-") + ">"
}

// Matches checks if this event matches a key specification string.
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e == parsed
}
