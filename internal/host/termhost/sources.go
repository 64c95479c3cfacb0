package termhost

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Completion commands the host understands. Behaviors naming anything else
// produce no menu and the engine falls back to the next behavior.
const (
	CommandKeyword = "keyword"
	CommandFile    = "file"
)

var (
	keywordBaseRE = regexp.MustCompile(`\w+$`)
	fileBaseRE    = regexp.MustCompile(`[-0-9A-Za-z._~+/\\]+$`)
)

// matchPrefix returns the items that start with base but are not base
// itself, preserving order.
func matchPrefix(items []string, base string, ignoreCase bool) []string {
	var out []string
	for _, item := range items {
		if ignoreCase {
			if len(item) < len(base) || !strings.EqualFold(item[:len(base)], base) {
				continue
			}
			if strings.EqualFold(item, base) {
				continue
			}
		} else {
			if !strings.HasPrefix(item, base) || item == base {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// commonPrefix returns the longest prefix shared by all items, using the
// first item's casing when matching case-insensitively.
func commonPrefix(items []string, ignoreCase bool) string {
	if len(items) == 0 {
		return ""
	}
	prefix := []rune(items[0])
	for _, item := range items[1:] {
		runes := []rune(item)
		if len(runes) < len(prefix) {
			prefix = prefix[:len(runes)]
		}
		for i := range prefix {
			a, b := prefix[i], runes[i]
			if ignoreCase {
				a = unicode.ToLower(a)
				b = unicode.ToLower(b)
			}
			if a != b {
				prefix = prefix[:i]
				break
			}
		}
	}
	return string(prefix)
}

// fileCandidates lists directory entries completing a partial path. The
// returned candidates are full replacements for base; directories carry a
// trailing separator so completion can continue into them.
func fileCandidates(base string, ignoreCase bool) []string {
	if base == "" {
		return nil
	}
	dir, prefix := filepath.Split(base)
	lookup := dir
	if lookup == "" {
		lookup = "."
	}
	entries, err := os.ReadDir(lookup)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if prefix != "" {
			if ignoreCase {
				if len(name) < len(prefix) || !strings.EqualFold(name[:len(prefix)], prefix) {
					continue
				}
			} else if !strings.HasPrefix(name, prefix) {
				continue
			}
		} else if strings.HasPrefix(name, ".") {
			// Bare directory listings skip dotfiles; type the dot to
			// see them.
			continue
		}
		candidate := dir + name
		if entry.IsDir() {
			candidate += string(filepath.Separator)
		}
		if candidate == base {
			continue
		}
		out = append(out, candidate)
	}
	return out
}

// DefaultDictionary returns a small built-in word list for the "dictionary"
// completion source, keyed by file type.
func DefaultDictionary(filetype string) []string {
	switch filetype {
	case "go":
		return []string{
			"append", "break", "chan", "const", "continue", "copy",
			"defer", "error", "fallthrough", "func", "import",
			"interface", "package", "range", "return", "select",
			"string", "struct", "switch", "type", "var",
		}
	case "python":
		return []string{
			"class", "continue", "except", "finally", "global",
			"import", "lambda", "nonlocal", "raise", "return",
			"while", "yield",
		}
	case "html":
		return []string{
			"article", "body", "button", "canvas", "div", "footer",
			"header", "input", "script", "section", "select",
			"span", "table", "template",
		}
	case "css":
		return []string{
			"background", "border", "color", "display", "flex",
			"font-size", "height", "margin", "overflow", "padding",
			"position", "width",
		}
	default:
		return nil
	}
}
