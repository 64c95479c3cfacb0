package trigger

import (
	"errors"
	"testing"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{Op{Kind: OpComplete, Command: "keyword"}, "complete(keyword)"},
		{Op{Kind: OpCancel}, "cancel"},
		{Op{Kind: OpRestorePrefix}, "restore-prefix"},
		{Op{Kind: OpSelectFirst}, "select-first"},
		{Op{Kind: OpKind(99)}, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDirectiveIsZero(t *testing.T) {
	if !(Directive{}).IsZero() {
		t.Error("IsZero() = false for empty directive")
	}
	if (Directive{Ops: []Op{{Kind: OpCancel}}}).IsZero() {
		t.Error("IsZero() = true for directive with ops")
	}
	if (Directive{Then: func() (Directive, error) { return Directive{}, nil }}).IsZero() {
		t.Error("IsZero() = true for directive with continuation")
	}
}

func TestRunChainsContinuations(t *testing.T) {
	host := newFakeHost("go", "")

	second := Directive{Ops: []Op{{Kind: OpSelectFirst}}}
	first := Directive{
		Ops:  []Op{{Kind: OpCancel}},
		Then: func() (Directive, error) { return second, nil },
	}

	if err := Run(host, first); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"cancel", "select-first"}
	if got := host.opNames(); !equal(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
}

func TestRunStopsOnContinuationError(t *testing.T) {
	host := newFakeHost("go", "")
	boom := errors.New("continuation failed")

	d := Directive{
		Ops:  []Op{{Kind: OpCancel}},
		Then: func() (Directive, error) { return Directive{}, boom },
	}
	if err := Run(host, d); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestRunZeroDirective(t *testing.T) {
	host := newFakeHost("go", "")
	if err := Run(host, Directive{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(host.ops) != 0 {
		t.Errorf("ops = %v, want none", host.opNames())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateAttemptPending, "attempt-pending"},
		{StateShown, "shown"},
		{StateRepeating, "repeating"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
