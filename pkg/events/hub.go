package events

import "sync"

// Handler receives the payload published with an event.
type Handler func(payload any)

// Subscription identifies a registered handler so it can be cancelled.
type Subscription struct {
	hub   *Hub
	event string
	id    uint64
}

// Cancel removes the subscription from its hub. Cancelling an already
// cancelled subscription is a no-op.
func (s Subscription) Cancel() {
	if s.hub != nil {
		s.hub.unsubscribe(s.event, s.id)
	}
}

type subscriber struct {
	id   uint64
	once bool
	fn   Handler
}

// Hub is a minimal synchronous publish/subscribe registry.
//
// Publish dispatches in registration order over a snapshot of the current
// subscribers, so handlers added or cancelled during dispatch do not affect
// the in-progress dispatch. Hub is safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscriber
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]subscriber)}
}

// Subscribe registers a handler for the named event.
func (h *Hub) Subscribe(event string, fn Handler) Subscription {
	return h.add(event, fn, false)
}

// SubscribeOnce registers a handler that is removed after its first dispatch.
func (h *Hub) SubscribeOnce(event string, fn Handler) Subscription {
	return h.add(event, fn, true)
}

func (h *Hub) add(event string, fn Handler, once bool) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs[event] = append(h.subs[event], subscriber{id: id, once: once, fn: fn})
	return Subscription{hub: h, event: event, id: id}
}

func (h *Hub) unsubscribe(event string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := h.subs[event]
	for i, s := range list {
		if s.id == id {
			h.subs[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish dispatches the event synchronously to all current subscribers,
// in registration order. It returns the number of handlers invoked.
func (h *Hub) Publish(event string, payload any) int {
	h.mu.Lock()
	list := h.subs[event]
	snapshot := make([]subscriber, len(list))
	copy(snapshot, list)

	// Drop once-subscribers before dispatch so a handler that publishes the
	// same event recursively cannot fire them twice.
	kept := list[:0]
	for _, s := range list {
		if !s.once {
			kept = append(kept, s)
		}
	}
	h.subs[event] = kept
	h.mu.Unlock()

	for _, s := range snapshot {
		s.fn(payload)
	}
	return len(snapshot)
}

// ListenerCount returns the number of handlers registered for the event.
func (h *Hub) ListenerCount(event string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[event])
}
