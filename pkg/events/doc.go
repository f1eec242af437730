/*
Package events provides the synchronous publish/subscribe hub used by
gostream's stream types for lifecycle and data notifications.

# Quick Start

	hub := events.NewHub()

	sub := hub.Subscribe("data", func(payload any) {
		fmt.Println("got:", payload)
	})
	defer sub.Cancel()

	hub.Publish("data", "hello")

# Dispatch semantics

Publish is synchronous and dispatches in registration order over a snapshot
of the subscribers present when Publish was called. Handlers may subscribe
or cancel during dispatch without affecting the in-progress dispatch.

SubscribeOnce registers a handler that is removed before its first dispatch
runs, so it fires at most once even if the handler republishes the event.
*/
package events
