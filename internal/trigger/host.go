package trigger

import "github.com/dshills/autopop/internal/settings"

// Host is the editor capability surface the engine consumes. All methods
// are synchronous: by the time Execute returns for an OpComplete, the host
// has processed the attempt and MenuVisible reflects its outcome.
type Host interface {
	// MenuVisible reports whether a completion menu is currently shown.
	MenuVisible() bool

	// TextBeforeCursor returns the current line's text up to the cursor.
	TextBeforeCursor() string

	// FileType returns the file type of the buffer being edited.
	FileType() string

	// Execute performs one directive operation.
	Execute(op Op) error

	// Settings exposes the host options the engine overrides per session.
	Settings() settings.Store
}
