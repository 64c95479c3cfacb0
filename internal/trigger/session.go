package trigger

import (
	"github.com/dshills/autopop/internal/behavior"
	"github.com/dshills/autopop/internal/event"
	"github.com/dshills/autopop/internal/settings"
)

// session is the state of one trigger-to-finish cycle. It is created by
// Trigger and destroyed by finish; nothing outlives it except the shared
// lock count.
type session struct {
	id       string
	filetype string

	// queue holds the candidates still in play. queue[0] is the candidate
	// whose attempt is pending or whose menu is showing.
	queue []behavior.Behavior

	// started records that the candidate queue was populated at least
	// once; it pairs the session started and finished events.
	started bool

	snapshot  *settings.Snapshot
	insertSub event.Subscription
	cursorSub event.Subscription
}
