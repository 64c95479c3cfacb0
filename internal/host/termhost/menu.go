package termhost

// menu models the completion popup: the candidate list, the text the user
// had typed when it opened, and whatever the host has inserted in its place
// since. selected is -1 while no entry is highlighted.
type menu struct {
	items    []string
	base     string
	inserted string
	selected int
}

func (m *menu) visible() bool {
	return len(m.items) > 0
}

func (m *menu) open(base string, items []string, inserted string) {
	m.items = items
	m.base = base
	m.inserted = inserted
	m.selected = -1
}

func (m *menu) close() {
	*m = menu{selected: -1}
}

// next advances the selection, wrapping past the end, and returns the newly
// selected candidate.
func (m *menu) next() string {
	m.selected++
	if m.selected >= len(m.items) {
		m.selected = 0
	}
	return m.items[m.selected]
}

// prev moves the selection backwards, wrapping to the last entry.
func (m *menu) prev() string {
	if m.selected <= 0 {
		m.selected = len(m.items)
	}
	m.selected--
	return m.items[m.selected]
}

// current returns the selected candidate, or the inserted text when nothing
// is selected.
func (m *menu) current() string {
	if m.selected >= 0 && m.selected < len(m.items) {
		return m.items[m.selected]
	}
	return m.inserted
}
