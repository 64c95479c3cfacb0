package event

import (
	"crypto/rand"
	"encoding/hex"
	"sync/atomic"
	"time"
)

// Subscription represents an active event subscription.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic pattern.
	Topic() Topic

	// IsActive returns true if the subscription can receive events.
	IsActive() bool

	// Cancel permanently cancels the subscription.
	Cancel()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Once indicates the subscription auto-cancels before its first delivery.
	Once bool
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithOnce sets the subscription to auto-cancel after the first event.
// The cancellation happens before the handler runs, so the handler may
// resubscribe.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// subscription is the internal implementation of Subscription.
type subscription struct {
	id        string
	topic     Topic
	handler   Handler
	config    SubscriptionConfig
	cancelled atomic.Bool
}

func newSubscription(t Topic, h Handler, opts ...SubscriptionOption) *subscription {
	var config SubscriptionConfig
	for _, opt := range opts {
		opt(&config)
	}

	return &subscription{
		id:      generateID(),
		topic:   t,
		handler: h,
		config:  config,
	}
}

// ID returns the subscription ID.
func (s *subscription) ID() string {
	return s.id
}

// Topic returns the subscribed topic pattern.
func (s *subscription) Topic() Topic {
	return s.topic
}

// IsActive returns true if the subscription has not been cancelled.
func (s *subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Cancel permanently cancels the subscription.
func (s *subscription) Cancel() {
	s.cancelled.Store(true)
}

// generateID generates a unique subscription ID.
func generateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback to a timestamp-based ID if crypto/rand fails
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
