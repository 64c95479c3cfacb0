package event

import "context"

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes an event.
	// The event parameter is type-erased; handlers should type-assert.
	Handle(ctx context.Context, event any) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// TopicProvider is implemented by event payloads that carry their own topic.
type TopicProvider interface {
	EventTopic() Topic
}

// Stats contains bus statistics.
type Stats struct {
	// Published is the total number of events published.
	Published uint64

	// Delivered is the total number of successful handler executions.
	Delivered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// ActiveSubscriptions is the current number of active subscriptions.
	ActiveSubscriptions int
}
