package termhost

import (
	"regexp"
	"strings"
)

var wordRE = regexp.MustCompile(`\w{2,}`)

// Buffer is a minimal line-oriented text buffer with a single cursor.
// Columns count runes, not bytes. Buffer is not safe for concurrent use;
// Host serializes access.
type Buffer struct {
	lines []string
	line  int
	col   int
}

// NewBuffer creates a buffer from the given lines. An empty slice yields a
// single empty line.
func NewBuffer(lines []string) *Buffer {
	copied := make([]string, len(lines))
	copy(copied, lines)
	if len(copied) == 0 {
		copied = []string{""}
	}
	return &Buffer{lines: copied}
}

// Lines returns a copy of the buffer contents.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Cursor returns the cursor position as (line, column), both zero-based.
func (b *Buffer) Cursor() (int, int) {
	return b.line, b.col
}

// SetCursor moves the cursor, clamping to valid positions.
func (b *Buffer) SetCursor(line, col int) {
	if line < 0 {
		line = 0
	}
	if line >= len(b.lines) {
		line = len(b.lines) - 1
	}
	b.line = line

	width := len([]rune(b.lines[b.line]))
	if col < 0 {
		col = 0
	}
	if col > width {
		col = width
	}
	b.col = col
}

// CurrentLine returns the line under the cursor.
func (b *Buffer) CurrentLine() string {
	return b.lines[b.line]
}

// TextBeforeCursor returns the current line's text up to the cursor.
func (b *Buffer) TextBeforeCursor() string {
	runes := []rune(b.lines[b.line])
	return string(runes[:b.col])
}

// InsertRune inserts a single rune at the cursor and advances it.
func (b *Buffer) InsertRune(r rune) {
	b.InsertString(string(r))
}

// InsertString inserts text at the cursor. The text must not contain
// newlines; use NewLine to break lines.
func (b *Buffer) InsertString(s string) {
	if s == "" {
		return
	}
	runes := []rune(b.lines[b.line])
	var sb strings.Builder
	sb.WriteString(string(runes[:b.col]))
	sb.WriteString(s)
	sb.WriteString(string(runes[b.col:]))
	b.lines[b.line] = sb.String()
	b.col += len([]rune(s))
}

// Backspace deletes the rune before the cursor. At the start of a line it
// joins the line with the previous one. Returns false if nothing changed.
func (b *Buffer) Backspace() bool {
	if b.col > 0 {
		runes := []rune(b.lines[b.line])
		b.lines[b.line] = string(runes[:b.col-1]) + string(runes[b.col:])
		b.col--
		return true
	}
	if b.line == 0 {
		return false
	}
	prev := b.lines[b.line-1]
	b.col = len([]rune(prev))
	b.lines[b.line-1] = prev + b.lines[b.line]
	b.lines = append(b.lines[:b.line], b.lines[b.line+1:]...)
	b.line--
	return true
}

// ReplaceBefore deletes up to n runes before the cursor on the current line
// and inserts s in their place. It never crosses line boundaries.
func (b *Buffer) ReplaceBefore(n int, s string) {
	if n > b.col {
		n = b.col
	}
	if n > 0 {
		runes := []rune(b.lines[b.line])
		b.lines[b.line] = string(runes[:b.col-n]) + string(runes[b.col:])
		b.col -= n
	}
	b.InsertString(s)
}

// NewLine breaks the current line at the cursor and moves the cursor to the
// start of the new line.
func (b *Buffer) NewLine() {
	runes := []rune(b.lines[b.line])
	rest := string(runes[b.col:])
	b.lines[b.line] = string(runes[:b.col])
	b.lines = append(b.lines[:b.line+1], append([]string{rest}, b.lines[b.line+1:]...)...)
	b.line++
	b.col = 0
}

// Move shifts the cursor by the given line and column deltas, clamping to
// the buffer. It reports whether the cursor actually moved.
func (b *Buffer) Move(dLine, dCol int) bool {
	line, col := b.line, b.col
	b.SetCursor(b.line+dLine, b.col+dCol)
	return b.line != line || b.col != col
}

// Words returns the distinct words of the buffer in order of first
// appearance. Words are \w runs of at least two characters.
func (b *Buffer) Words() []string {
	seen := make(map[string]struct{})
	var words []string
	for _, line := range b.lines {
		for _, w := range wordRE.FindAllString(line, -1) {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
	}
	return words
}
