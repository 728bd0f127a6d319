package transport

import "sync"

// Player is anything the Arbiter can preempt.
type Player interface {
	ID() string
	Stop()
}

// Arbiter enforces that at most one Player is playing at a time.
// Controllers that should preempt each other must share one Arbiter.
type Arbiter struct {
	mu     sync.Mutex
	holder Player
}

// defaultArbiter is shared by controllers built without WithArbiter.
var defaultArbiter = NewArbiter()

// DefaultArbiter returns the process-wide arbiter.
func DefaultArbiter() *Arbiter {
	return defaultArbiter
}

// NewArbiter creates an empty Arbiter.
func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// RequestPlay makes p the playing instance, stopping the previous holder
// if it is a different instance.
func (a *Arbiter) RequestPlay(p Player) {
	a.mu.Lock()
	prev := a.holder
	a.holder = p
	a.mu.Unlock()

	// Stop takes the previous holder's own lock, so call it outside ours.
	if prev != nil && prev.ID() != p.ID() {
		prev.Stop()
	}
}

// Release clears the holder if it is id.
func (a *Arbiter) Release(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.holder != nil && a.holder.ID() == id {
		a.holder = nil
	}
}

// Holder returns the ID of the playing instance, or "" if none.
func (a *Arbiter) Holder() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.holder == nil {
		return ""
	}
	return a.holder.ID()
}
