package trigger

import "fmt"

// OpKind identifies one host-side operation within a directive.
type OpKind int

const (
	// OpComplete issues a completion command to the host.
	OpComplete OpKind = iota

	// OpCancel cancels the in-flight completion attempt, closing any menu
	// and discarding partial candidate text.
	OpCancel

	// OpRestorePrefix undoes the host's automatic insertion of the longest
	// common candidate prefix, returning the line to what the user typed.
	OpRestorePrefix

	// OpSelectFirst selects the first entry of the visible menu.
	OpSelectFirst
)

// String returns the operation kind name.
func (k OpKind) String() string {
	switch k {
	case OpComplete:
		return "complete"
	case OpCancel:
		return "cancel"
	case OpRestorePrefix:
		return "restore-prefix"
	case OpSelectFirst:
		return "select-first"
	default:
		return "unknown"
	}
}

// Op is one host-side operation. Command is set for OpComplete only.
type Op struct {
	Kind    OpKind
	Command string
}

// String returns a compact form for logs and tests.
func (o Op) String() string {
	if o.Kind == OpComplete {
		return fmt.Sprintf("%s(%s)", o.Kind, o.Command)
	}
	return o.Kind.String()
}

// Directive is an instruction the engine hands back to the host: execute
// Ops in order, then invoke Then for the next step of the session. A zero
// Directive means there is nothing to do.
//
// Ordering contract: the host must finish executing Ops before invoking
// Then, and must not interleave another engine call in between. Then may
// be nil when the session needs no further callback.
type Directive struct {
	Ops  []Op
	Then func() (Directive, error)
}

// IsZero reports whether the directive carries no work.
func (d Directive) IsZero() bool {
	return len(d.Ops) == 0 && d.Then == nil
}

// Run executes a directive chain against the host: each directive's ops in
// order, then its continuation, until the chain yields a zero directive.
// Host and continuation errors abort the chain and are returned unchanged.
func Run(h Host, d Directive) error {
	for !d.IsZero() {
		for _, op := range d.Ops {
			if err := h.Execute(op); err != nil {
				return err
			}
		}
		if d.Then == nil {
			return nil
		}
		next, err := d.Then()
		if err != nil {
			return err
		}
		d = next
	}
	return nil
}
