package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrInvalidEvent is returned when an event carries no topic.
	ErrInvalidEvent = errors.New("invalid event")

	// ErrInvalidTopic is returned when a topic is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidSubscription is returned when a subscription is nil.
	ErrInvalidSubscription = errors.New("invalid subscription")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrHandlerPanic is returned when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError wraps an error from a handler with subscription context.
type HandlerError struct {
	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Topic is the topic the handler was subscribed to.
	Topic string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler error for subscription " + e.SubscriptionID + " on topic " + e.Topic + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a recovered handler panic as an error.
type PanicError struct {
	// SubscriptionID is the ID of the subscription whose handler panicked.
	SubscriptionID string

	// Topic is the topic the handler was subscribed to.
	Topic string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "handler panic for subscription " + e.SubscriptionID + " on topic " + e.Topic
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
