package key

import (
	"fmt"
	"strings"
)

// Key identifies a keyboard key. Character keys use KeyRune with the
// character carried in Event.Rune.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// KeyRune is used for character keys (letters, digits, punctuation).
	KeyRune
)

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "None"
	case KeyEscape:
		return "Escape"
	case KeyEnter:
		return "Enter"
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "Backspace"
	case KeyDelete:
		return "Delete"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyRune:
		return "Rune"
	default:
		return fmt.Sprintf("Key(%d)", k)
	}
}

// IsSpecial returns true if this is a special (non-character) key.
func (k Key) IsSpecial() bool {
	return k != KeyNone && k != KeyRune
}

// IsArrow returns true if this is an arrow key.
func (k Key) IsArrow() bool {
	return k >= KeyUp && k <= KeyRight
}

// keyNames maps key names (lowercase) to Key values.
var keyNames = map[string]Key{
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"cr":        KeyEnter,
	"tab":       KeyTab,
	"backspace": KeyBackspace,
	"bs":        KeyBackspace,
	"delete":    KeyDelete,
	"del":       KeyDelete,
	"home":      KeyHome,
	"end":       KeyEnd,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
}

// FromName returns the Key for a given name (case-insensitive).
// Returns KeyNone if the name is not recognized.
func FromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNames[name]; ok {
		return k
	}
	return KeyNone
}
