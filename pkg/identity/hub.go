package identity

import (
	"context"
	"sync"
)

// Hub is an in-memory Source. Providers publish sign-ins into it.
//
// Deliveries are serialized: a listener never observes two transitions
// concurrently. Listeners must not call SignIn or SignOut synchronously.
type Hub struct {
	deliver sync.Mutex

	mu        sync.Mutex
	current   *Identity
	listeners map[uint64]Listener
	nextID    uint64
}

// NewHub returns a hub holding initial, which may be nil.
func NewHub(initial *Identity) *Hub {
	return &Hub{current: initial, listeners: make(map[uint64]Listener)}
}

func (h *Hub) Subscribe(fn Listener) func() {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	current := h.current
	h.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Current() *Identity {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// SignIn makes id current and notifies listeners. Publishing the identity
// that is already current is not a transition; a nil id signs out.
func (h *Hub) SignIn(id *Identity) {
	h.publish(id)
}

// SignOut clears the identity. Signing out while anonymous does nothing.
func (h *Hub) SignOut(context.Context) error {
	h.publish(nil)
	return nil
}

func (h *Hub) publish(next *Identity) {
	h.deliver.Lock()
	defer h.deliver.Unlock()

	h.mu.Lock()
	if h.current == next {
		h.mu.Unlock()
		return
	}
	h.current = next
	listeners := make([]Listener, 0, len(h.listeners))
	for _, l := range h.listeners {
		listeners = append(listeners, l)
	}
	h.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
}

var _ Source = (*Hub)(nil)
