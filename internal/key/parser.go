package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single character: "a", "A", "1", "/"
//   - Key names: "Enter", "Escape", "Tab", "Backspace"
//   - With modifiers: "Ctrl+S", "Alt+Left"
//   - Vim-style: "<C-s>", "<A-x>", "<CR>", "<BS>", "<Esc>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	if strings.Contains(spec, "+") && len([]rune(spec)) > 1 {
		return parseModifierStyle(spec)
	}

	return parseSingle(spec)
}

// parseVimStyle parses Vim-style notation like "C-s", "CR", "BS".
func parseVimStyle(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}

	parts := strings.Split(inner, "-")

	var mods Modifier
	keyPart := parts[len(parts)-1]
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "c":
			mods = mods.With(ModCtrl)
		case "a":
			mods = mods.With(ModAlt)
		case "s":
			mods = mods.With(ModShift)
		case "m", "d":
			mods = mods.With(ModMeta)
		default:
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}

	return parseKeyPart(keyPart, mods)
}

// parseModifierStyle parses "Ctrl+S" style notation.
func parseModifierStyle(spec string) (Event, error) {
	parts := strings.Split(spec, "+")
	if len(parts) < 2 {
		return Event{}, ErrInvalidSpec
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(strings.TrimSpace(p))
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	return parseKeyPart(strings.TrimSpace(parts[len(parts)-1]), mods)
}

// parseSingle parses a bare character or key name.
func parseSingle(spec string) (Event, error) {
	if k := FromName(spec); k != KeyNone {
		return SpecialEvent(k, ModNone), nil
	}
	if strings.EqualFold(spec, "space") {
		return RuneEvent(' ', ModNone), nil
	}

	runes := []rune(spec)
	if len(runes) == 1 {
		r := runes[0]
		var mods Modifier
		// Uppercase letters carry implicit Shift
		if unicode.IsUpper(r) {
			mods = ModShift
		}
		return RuneEvent(r, mods), nil
	}

	return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
}

// parseKeyPart parses the key portion of a spec with known modifiers.
func parseKeyPart(keyPart string, mods Modifier) (Event, error) {
	keyPart = strings.TrimSpace(keyPart)
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	switch strings.ToLower(keyPart) {
	case "space":
		return RuneEvent(' ', mods), nil
	case "lt":
		return RuneEvent('<', mods), nil
	case "gt":
		return RuneEvent('>', mods), nil
	case "bar":
		return RuneEvent('|', mods), nil
	case "bslash":
		return RuneEvent('\\', mods), nil
	}

	if k := FromName(keyPart); k != KeyNone {
		return SpecialEvent(k, mods), nil
	}

	runes := []rune(keyPart)
	if len(runes) == 1 {
		r := runes[0]
		// Ctrl combinations are case-insensitive
		if mods.HasCtrl() {
			r = unicode.ToLower(r)
		}
		return RuneEvent(r, mods), nil
	}

	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// ParseAll parses a list of specifications, reporting the first failure with
// the offending spec attached.
func ParseAll(specs []string) ([]Event, error) {
	events := make([]Event, 0, len(specs))
	for _, spec := range specs {
		ev, err := Parse(spec)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", spec, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
