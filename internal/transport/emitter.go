package transport

import (
	"sync"

	"github.com/tessro/stave/internal/core"
)

type listenerEntry struct {
	id   core.ListenerID
	kind core.EventKind
	fn   core.Listener
}

// Emitter fans lifecycle events out to listeners.
type Emitter struct {
	mu        sync.Mutex
	next      core.ListenerID
	listeners []listenerEntry
}

// On registers fn for events of kind.
func (e *Emitter) On(kind core.EventKind, fn core.Listener) core.ListenerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	e.listeners = append(e.listeners, listenerEntry{id: e.next, kind: kind, fn: fn})
	return e.next
}

// Off removes a listener. It returns false if id was not registered.
func (e *Emitter) Off(id core.ListenerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// ListenerCount returns how many listeners are registered for kind.
func (e *Emitter) ListenerCount(kind core.EventKind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, l := range e.listeners {
		if l.kind == kind {
			n++
		}
	}
	return n
}

// Emit delivers ev to its listeners in registration order. Listeners run
// outside the emitter's lock and may register or remove listeners.
func (e *Emitter) Emit(ev core.Event) {
	e.mu.Lock()
	var fns []core.Listener
	for _, l := range e.listeners {
		if l.kind == ev.Kind {
			fns = append(fns, l.fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
