// Package event provides the synchronous notification bus connecting the
// host editor and the trigger engine.
//
// Topics are hierarchical dot-separated strings ("insert.left",
// "completion.session.started"). Subscription patterns may use "*" to match
// one segment and "**" to match any number of segments.
//
// Delivery is synchronous and ordered: Publish runs every matching handler
// in the publisher's goroutine, in subscription order. A handler panic is
// recovered and reported as a PanicError without disturbing later handlers.
//
// One-shot subscriptions (WithOnce) are cancelled before their handler runs,
// so a handler that needs to fire again can resubscribe. The trigger engine
// relies on this for its cursor-moved rearm cycle.
package event
