package lifecycle

import (
	"testing"
)

func TestCoalescerCollapsesBurst(t *testing.T) {
	sched := &ManualScheduler{}
	var passes []bool
	c := NewCoalescer(sched, func(full bool) { passes = append(passes, full) })

	if !c.Request(false) {
		t.Fatal("first Request() = false, want true")
	}
	if c.Request(false) {
		t.Error("second Request() = true, want absorbed")
	}
	if c.Request(true) {
		t.Error("third Request() = true, want absorbed")
	}
	if sched.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", sched.Pending())
	}

	sched.Drain()

	if len(passes) != 1 {
		t.Fatalf("passes = %d, want 1", len(passes))
	}
	if !passes[0] {
		t.Error("absorbed full-reload request was lost")
	}
	if c.Pending() {
		t.Error("Pending() = true after drain")
	}
}

func TestCoalescerResetsAfterPass(t *testing.T) {
	sched := &ManualScheduler{}
	var passes []bool
	c := NewCoalescer(sched, func(full bool) { passes = append(passes, full) })

	c.Request(true)
	sched.Drain()
	c.Request(false)
	sched.Drain()

	if len(passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(passes))
	}
	if passes[1] {
		t.Error("full-reload flag leaked into the next pass")
	}
}

func TestCoalescerRequestDuringPass(t *testing.T) {
	sched := &ManualScheduler{}
	count := 0
	var c *Coalescer
	c = NewCoalescer(sched, func(bool) {
		count++
		if count == 1 {
			c.Request(false)
		}
	})

	c.Request(false)
	if ran := sched.Drain(); ran != 2 {
		t.Errorf("Drain() ran %d passes, want 2", ran)
	}
}

func TestGeneration(t *testing.T) {
	var g Generation
	token := g.Current()
	if !g.IsCurrent(token) {
		t.Error("IsCurrent(current) = false")
	}
	next := g.Next()
	if g.IsCurrent(token) {
		t.Error("IsCurrent(stale) = true")
	}
	if !g.IsCurrent(next) {
		t.Error("IsCurrent(next) = false")
	}
}
