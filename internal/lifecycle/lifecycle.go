// Package lifecycle holds the small coordination primitives shared by the
// transport and surface controllers: a coalescing reinitialization task and
// a generation counter used to discard superseded asynchronous results.
package lifecycle

import (
	"sync"
	"sync/atomic"
)

// Scheduler defers a function to run later, outside the caller's stack.
type Scheduler interface {
	Schedule(fn func())
}

// GoScheduler runs each scheduled function on its own goroutine.
type GoScheduler struct{}

// Schedule implements Scheduler.
func (GoScheduler) Schedule(fn func()) {
	go fn()
}

// ManualScheduler queues functions until Drain is called.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Pending returns the number of queued functions.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Drain runs queued functions, including ones queued while draining, and
// returns how many ran.
func (s *ManualScheduler) Drain() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return ran
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
		ran++
	}
}

// Coalescer collapses bursts of reinitialization requests into one pass.
// At most one pass is pending at a time; a full-reload request made while
// a pass is pending upgrades that pass instead of scheduling another.
type Coalescer struct {
	mu         sync.Mutex
	pending    bool
	fullReload bool
	sched      Scheduler
	run        func(fullReload bool)
}

// NewCoalescer returns a Coalescer that drains through sched into run.
func NewCoalescer(sched Scheduler, run func(fullReload bool)) *Coalescer {
	if sched == nil {
		sched = GoScheduler{}
	}
	return &Coalescer{sched: sched, run: run}
}

// Request asks for a pass. It returns true if a new pass was scheduled and
// false if the request was absorbed by one already pending.
func (c *Coalescer) Request(fullReload bool) bool {
	c.mu.Lock()
	c.fullReload = c.fullReload || fullReload
	if c.pending {
		c.mu.Unlock()
		return false
	}
	c.pending = true
	c.mu.Unlock()

	c.sched.Schedule(c.drain)
	return true
}

// Pending reports whether a pass is scheduled but has not started.
func (c *Coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

func (c *Coalescer) drain() {
	c.mu.Lock()
	full := c.fullReload
	c.pending = false
	c.fullReload = false
	c.mu.Unlock()

	c.run(full)
}

// Generation is a monotonically increasing token. Holders capture the
// current value before suspending and compare it afterwards; a mismatch
// means their result has been superseded.
type Generation struct {
	n atomic.Uint64
}

// Current returns the current generation.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// Next advances the generation and returns the new value.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// IsCurrent reports whether token is still the latest generation.
func (g *Generation) IsCurrent(token uint64) bool {
	return g.n.Load() == token
}
