// Package events is the publish/subscribe bus the facade reports session
// and paging conditions on.
package events

import (
	"sync"
)

// Event names emitted by the request pipeline.
const (
	// SessionExpired fires after a 440 response, once the session is cleared.
	SessionExpired = "formio.sessionExpired"
	// Unauthorized fires after a 401 response, once the session is cleared.
	Unauthorized = "formio.unauthorized"
	// RangeNotSatisfiable fires after a 416 response.
	RangeNotSatisfiable = "formio.rangeIsNotSatisfiable"
	// BadToken fires when the server rejects the token outright, once the
	// session is cleared.
	BadToken = "formio.badToken"
	// User fires when the current user changes. The payload is nil on logout.
	User = "formio.user"
)

// Handler receives the event name and its payload.
type Handler func(event string, payload any)

// Unsubscribe removes the subscription it was returned for. Calling it more
// than once is harmless.
type Unsubscribe func()

type listener struct {
	id   uint64
	fn   Handler
	once bool
}

// Bus dispatches events to subscribers synchronously, in subscription order.
// The zero value is ready to use.
type Bus struct {
	lock   sync.Mutex
	nextID uint64
	on     map[string][]listener
	any    []listener
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// On subscribes fn to event.
func (b *Bus) On(event string, fn Handler) Unsubscribe {
	return b.add(event, fn, false)
}

// Once subscribes fn to the next occurrence of event only.
func (b *Bus) Once(event string, fn Handler) Unsubscribe {
	return b.add(event, fn, true)
}

// OnAny subscribes fn to every event.
func (b *Bus) OnAny(fn Handler) Unsubscribe {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.nextID++
	id := b.nextID
	b.any = append(b.any, listener{id: id, fn: fn})

	return func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		b.any = remove(b.any, id)
	}
}

// Off drops every subscription to event.
func (b *Bus) Off(event string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	delete(b.on, event)
}

// Emit delivers payload to the subscribers of event, then to the OnAny
// subscribers. Handlers may subscribe or unsubscribe while being called;
// such changes apply from the next Emit.
func (b *Bus) Emit(event string, payload any) {
	b.lock.Lock()
	listeners := append([]listener(nil), b.on[event]...)
	anyListeners := append([]listener(nil), b.any...)
	for _, l := range listeners {
		if l.once {
			b.on[event] = remove(b.on[event], l.id)
		}
	}
	if len(b.on[event]) == 0 {
		delete(b.on, event)
	}
	b.lock.Unlock()

	for _, l := range listeners {
		l.fn(event, payload)
	}
	for _, l := range anyListeners {
		l.fn(event, payload)
	}
}

// ListenerCount returns the number of subscriptions to event, not counting
// OnAny subscriptions.
func (b *Bus) ListenerCount(event string) int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.on[event])
}

func (b *Bus) add(event string, fn Handler, once bool) Unsubscribe {
	b.lock.Lock()
	defer b.lock.Unlock()

	// if its our first listener, we need to setup the map
	if b.on == nil {
		b.on = make(map[string][]listener)
	}

	b.nextID++
	id := b.nextID
	b.on[event] = append(b.on[event], listener{id: id, fn: fn, once: once})

	return func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		if b.on == nil {
			return
		}
		b.on[event] = remove(b.on[event], id)
		if len(b.on[event]) == 0 {
			delete(b.on, event)
		}
	}
}

func remove(ls []listener, id uint64) []listener {
	for i, l := range ls {
		if l.id == id {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}
