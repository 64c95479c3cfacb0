package event

// Topics published by the host editor.
const (
	// TopicInsertLeft is published when the editor leaves insertion mode.
	TopicInsertLeft Topic = "insert.left"

	// TopicCursorMoved is published when the cursor moves in insertion mode,
	// including moves caused by typing.
	TopicCursorMoved Topic = "cursor.moved"
)

// Topics published by the trigger engine.
const (
	// TopicSessionStarted is published when a completion session starts.
	TopicSessionStarted Topic = "completion.session.started"

	// TopicMenuShown is published when an attempt produces a visible menu.
	TopicMenuShown Topic = "completion.menu.shown"

	// TopicSessionFinished is published when a completion session ends.
	TopicSessionFinished Topic = "completion.session.finished"
)

// InsertLeft is published when the editor leaves insertion mode.
type InsertLeft struct {
	// FileType is the file type of the buffer being edited.
	FileType string
}

// EventTopic implements TopicProvider.
func (InsertLeft) EventTopic() Topic { return TopicInsertLeft }

// CursorMoved is published when the cursor moves in insertion mode.
type CursorMoved struct {
	// Line is the new cursor line (0-based).
	Line int

	// Column is the new cursor column (0-based).
	Column int
}

// EventTopic implements TopicProvider.
func (CursorMoved) EventTopic() Topic { return TopicCursorMoved }

// SessionStarted is published when a completion session starts.
type SessionStarted struct {
	// SessionID is the unique identifier of the session.
	SessionID string

	// FileType is the file type the behavior list was resolved for.
	FileType string

	// Candidates is the number of eligible behaviors queued.
	Candidates int
}

// EventTopic implements TopicProvider.
func (SessionStarted) EventTopic() Topic { return TopicSessionStarted }

// MenuShown is published when an attempt produces a visible menu.
type MenuShown struct {
	// SessionID is the unique identifier of the session.
	SessionID string

	// Command is the completion command that produced the menu.
	Command string
}

// EventTopic implements TopicProvider.
func (MenuShown) EventTopic() Topic { return TopicMenuShown }

// SessionFinished is published when a completion session ends.
type SessionFinished struct {
	// SessionID is the unique identifier of the session.
	SessionID string
}

// EventTopic implements TopicProvider.
func (SessionFinished) EventTopic() Topic { return TopicSessionFinished }
