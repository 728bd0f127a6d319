// Package binding keeps visual surfaces in step with a transport
// controller by relaying its lifecycle events.
package binding

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
)

// Surface is what the registry drives.
type Surface interface {
	Element
	SetSequence(seq *core.Sequence)
	ClearActiveNotes()
	Redraw(active *core.Note)
	Reload(ctx context.Context) error
}

// Source emits lifecycle events and holds the current sequence.
type Source interface {
	On(kind core.EventKind, fn core.Listener) core.ListenerID
	Off(id core.ListenerID) bool
	Sequence() *core.Sequence
}

// Registry binds surfaces to one Source.
type Registry struct {
	src Source
	dir *Directory
	log *slog.Logger

	// bindMu serializes Bind and Unbind so listener registration and the
	// entry update happen as one step.
	bindMu sync.Mutex

	mu      sync.Mutex
	order   []Surface
	entries map[Surface][]core.ListenerID
}

// New creates a registry for src. dir is used by RebindAll and may be nil.
func New(src Source, dir *Directory, log *slog.Logger) *Registry {
	if dir == nil {
		dir = NewDirectory()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		src:     src,
		dir:     dir,
		log:     log,
		entries: make(map[Surface][]core.ListenerID),
	}
}

// Bind relays start, stop and note events to s. Binding a surface that is
// already bound replaces its listeners.
func (r *Registry) Bind(s Surface) {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	r.unbind(s)

	ids := []core.ListenerID{
		r.src.On(core.EventStart, func(core.Event) { s.SetSequence(r.src.Sequence()) }),
		r.src.On(core.EventStop, func(core.Event) { s.ClearActiveNotes() }),
		r.src.On(core.EventNote, func(ev core.Event) { s.Redraw(ev.Note) }),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s] = ids
	r.order = append(r.order, s)
}

// Unbind removes the listeners registered for s. It returns false if s was
// not bound.
func (r *Registry) Unbind(s Surface) bool {
	r.bindMu.Lock()
	defer r.bindMu.Unlock()
	return r.unbind(s)
}

func (r *Registry) unbind(s Surface) bool {
	r.mu.Lock()
	ids, ok := r.entries[s]
	if ok {
		delete(r.entries, s)
		for i, b := range r.order {
			if b == s {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.src.Off(id)
	}
	return ok
}

// UnbindAll removes every binding.
func (r *Registry) UnbindAll() {
	for _, s := range r.Bound() {
		r.Unbind(s)
	}
}

// Bound returns the bound surfaces in binding order.
func (r *Registry) Bound() []Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Surface(nil), r.order...)
}

// Len returns the number of bound surfaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// RebindAll replaces every binding with the surfaces selector matches.
// Matches that are not surfaces are logged and reported in the result
// without failing the rest.
func (r *Registry) RebindAll(selector string) staveerr.PartialResult[[]Surface] {
	var result staveerr.PartialResult[[]Surface]
	r.UnbindAll()
	if selector == "" {
		return result
	}

	matches, err := r.dir.Query(selector)
	if err != nil {
		result.AddError(err)
		return result
	}
	for _, e := range matches {
		s, ok := e.(Surface)
		if !ok {
			r.log.Warn("selector matched non-visualizer element", "selector", selector, "element", e.Name())
			result.AddError(&nonSurfaceError{selector: selector, name: e.Name()})
			continue
		}
		r.Bind(s)
		result.Data = append(result.Data, s)
	}
	r.log.Debug("rebound surfaces", "selector", selector, "bound", len(result.Data))
	return result
}

// Sync shows seq on every bound surface and reloads them now.
func (r *Registry) Sync(ctx context.Context, seq *core.Sequence) {
	for _, s := range r.Bound() {
		s.SetSequence(seq)
		if err := s.Reload(ctx); err != nil {
			r.log.Warn("surface reload failed", "surface", s.Name(), "error", err)
		}
	}
}

// SequenceChanged follows a controller-derived sequence, such as a tempo
// change.
func (r *Registry) SequenceChanged(seq *core.Sequence) {
	r.Sync(context.Background(), seq)
}

// SelectorChanged rebinds to the new selector.
func (r *Registry) SelectorChanged(selector string) {
	r.RebindAll(selector)
}
