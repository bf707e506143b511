package chatbot

import "sync"

// EventKind names a lifecycle notification.
type EventKind string

const (
	EventConnect EventKind = "connect"
	EventClose   EventKind = "close"
	EventLogin   EventKind = "login"
	EventPing    EventKind = "ping"
	EventMessage EventKind = "message"
)

// Notification is passed to listeners.
type Notification struct {
	Kind   EventKind
	Client *Client

	// Frame is set for message, login and ping notifications.
	Frame *Frame

	// Err is set on close when the transport ended with an error.
	Err error
}

// Listener receives notifications. Listeners run one at a time, in the
// order frames arrive, and must not wait on the same client's replies.
type Listener func(*Notification)

// registry holds listeners per kind in registration order.
type registry struct {
	mu        sync.RWMutex
	listeners map[EventKind][]Listener
}

func newRegistry() *registry {
	return &registry{listeners: make(map[EventKind][]Listener)}
}

func (r *registry) add(kind EventKind, l Listener) {
	r.mu.Lock()
	r.listeners[kind] = append(r.listeners[kind], l)
	r.mu.Unlock()
}

func (r *registry) publish(n *Notification) {
	r.mu.RLock()
	ls := r.listeners[n.Kind]
	r.mu.RUnlock()

	// add only appends, so the snapshot is stable
	for _, l := range ls {
		l(n)
	}
}
