package tail

import (
	"context"
	"sync"

	"github.com/tessro/stave/internal/core"
)

// Source is a lifecycle event emitter.
type Source interface {
	On(kind core.EventKind, fn core.Listener) core.ListenerID
	Off(id core.ListenerID) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithNotes also forwards note events.
func WithNotes(enabled bool) Option {
	return func(w *Watcher) {
		w.notes = enabled
	}
}

// WithBuffer sets the channel buffer size.
func WithBuffer(n int) Option {
	return func(w *Watcher) {
		w.buffer = n
	}
}

// Watcher forwards lifecycle events from a source onto a channel.
type Watcher struct {
	src    Source
	notes  bool
	buffer int
	events chan core.Event
	done   chan struct{}
	once   sync.Once
}

// NewWatcher creates a watcher for src.
func NewWatcher(src Source, opts ...Option) *Watcher {
	w := &Watcher{
		src:    src,
		buffer: 16,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.events = make(chan core.Event, w.buffer)
	return w
}

// Events returns the channel of lifecycle events.
func (w *Watcher) Events() <-chan core.Event {
	return w.events
}

// Start subscribes to the source and forwards events until ctx is done or
// Stop is called. The events channel is closed on return.
func (w *Watcher) Start(ctx context.Context) error {
	kinds := []core.EventKind{core.EventLoad, core.EventStart, core.EventStop, core.EventLoop}
	if w.notes {
		kinds = append(kinds, core.EventNote)
	}

	var mu sync.Mutex
	closed := false
	forward := func(ev core.Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case w.events <- ev:
		default:
			// Drop event if channel is full
		}
	}

	ids := make([]core.ListenerID, 0, len(kinds))
	for _, k := range kinds {
		ids = append(ids, w.src.On(k, forward))
	}
	defer func() {
		for _, id := range ids {
			w.src.Off(id)
		}
		mu.Lock()
		closed = true
		close(w.events)
		mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return nil
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.done) })
}
