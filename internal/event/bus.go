package event

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Bus is a synchronous topic-based event bus. Handlers run in the
// publisher's goroutine in subscription order; a panicking handler is
// isolated and reported as a PanicError.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription

	published     atomic.Uint64
	delivered     atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe creates a new subscription for the given topic pattern.
// Safe for concurrent use.
func (b *Bus) Subscribe(pattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(pattern, handler, opts...)

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *Bus) SubscribeFunc(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe cancels and removes a subscription.
// Safe for concurrent use.
func (b *Bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}

	sub.Cancel()
	if !b.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Publish delivers an event to all subscriptions whose pattern matches the
// event's topic, in subscription order. The event must implement
// TopicProvider. Handler errors and recovered panics are joined into the
// returned error; delivery continues past failures.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok {
		return ErrInvalidEvent
	}
	eventTopic := tp.EventTopic()
	if !eventTopic.IsValid() {
		return ErrInvalidEvent
	}

	b.mu.RLock()
	matched := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.IsActive() && eventTopic.Matches(sub.topic) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	b.published.Add(1)

	var errs []error
	for _, sub := range matched {
		// An earlier handler in this delivery may have cancelled it.
		if !sub.IsActive() {
			continue
		}

		// One-shot subscriptions are cancelled before the handler runs so
		// the handler can resubscribe.
		if sub.config.Once {
			sub.Cancel()
			b.remove(sub.id)
		}

		if err := b.dispatch(ctx, event, sub); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// dispatch runs one handler with panic isolation.
func (b *Bus) dispatch(ctx context.Context, event any, sub *subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			err = &PanicError{
				SubscriptionID: sub.id,
				Topic:          string(sub.topic),
				Value:          r,
				Stack:          string(debug.Stack()),
			}
		}
	}()

	if herr := sub.handler.Handle(ctx, event); herr != nil {
		b.handlerErrors.Add(1)
		return &HandlerError{SubscriptionID: sub.id, Topic: string(sub.topic), Err: herr}
	}

	b.delivered.Add(1)
	return nil
}

// remove deletes a subscription by ID, reporting whether it was present.
func (b *Bus) remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, sub := range b.subs {
		if sub.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()

	return Stats{
		Published:           b.published.Load(),
		Delivered:           b.delivered.Load(),
		HandlerErrors:       b.handlerErrors.Load(),
		HandlerPanics:       b.handlerPanics.Load(),
		ActiveSubscriptions: active,
	}
}
