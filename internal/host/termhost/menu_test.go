package termhost

import "testing"

func TestMenuCycle(t *testing.T) {
	var m menu
	m.open("al", []string{"alpha", "alps", "alter"}, "al")

	if !m.visible() {
		t.Fatal("visible() = false after open")
	}
	if m.selected != -1 {
		t.Fatalf("selected = %d after open, want -1", m.selected)
	}

	if got := m.next(); got != "alpha" || m.selected != 0 {
		t.Errorf("next() = %q (selected %d), want alpha (0)", got, m.selected)
	}
	if got := m.next(); got != "alps" || m.selected != 1 {
		t.Errorf("next() = %q (selected %d), want alps (1)", got, m.selected)
	}
	m.next()
	if got := m.next(); got != "alpha" || m.selected != 0 {
		t.Errorf("next() wrapped to %q (selected %d), want alpha (0)", got, m.selected)
	}
}

func TestMenuPrevWraps(t *testing.T) {
	var m menu
	m.open("al", []string{"alpha", "alps"}, "al")

	if got := m.prev(); got != "alps" || m.selected != 1 {
		t.Errorf("prev() = %q (selected %d), want alps (1)", got, m.selected)
	}
	if got := m.prev(); got != "alpha" || m.selected != 0 {
		t.Errorf("prev() = %q (selected %d), want alpha (0)", got, m.selected)
	}
	if got := m.prev(); got != "alps" || m.selected != 1 {
		t.Errorf("prev() wrapped to %q (selected %d), want alps (1)", got, m.selected)
	}
}

func TestMenuCurrent(t *testing.T) {
	var m menu
	m.open("al", []string{"alpha", "alps"}, "alp")

	if got := m.current(); got != "alp" {
		t.Errorf("current() = %q with no selection, want inserted %q", got, "alp")
	}
	m.selected = 1
	if got := m.current(); got != "alps" {
		t.Errorf("current() = %q, want alps", got)
	}
}

func TestMenuClose(t *testing.T) {
	var m menu
	m.open("al", []string{"alpha"}, "al")
	m.close()

	if m.visible() {
		t.Error("visible() = true after close")
	}
	if m.selected != -1 {
		t.Errorf("selected = %d after close, want -1", m.selected)
	}
}
