package trigger

// State is the engine's position in the session lifecycle.
type State int

const (
	// StateIdle means no session is open.
	StateIdle State = iota

	// StateAttemptPending means a completion command has been issued and
	// the engine is waiting for the host to report the menu outcome.
	StateAttemptPending

	// StateShown means an attempt produced a visible menu and the session
	// is resting until the user accepts, dismisses, or leaves insert mode.
	StateShown

	// StateRepeating is StateShown for a repeat behavior: the next cursor
	// movement re-triggers the same behavior without a full registry scan.
	StateRepeating
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttemptPending:
		return "attempt-pending"
	case StateShown:
		return "shown"
	case StateRepeating:
		return "repeating"
	default:
		return "unknown"
	}
}
