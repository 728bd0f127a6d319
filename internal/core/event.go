package core

import "time"

// EventKind names a lifecycle event emitted by a transport controller.
type EventKind string

const (
	EventLoad  EventKind = "load"
	EventStart EventKind = "start"
	EventStop  EventKind = "stop"
	EventLoop  EventKind = "loop"
	EventNote  EventKind = "note"
)

// Event is a transport lifecycle signal.
type Event struct {
	Kind      EventKind
	Source    string // emitting controller's ID
	Note      *Note  // set for EventNote
	Finished  bool   // set for EventStop
	Position  float64
	Timestamp time.Time
}

// Listener receives lifecycle events.
type Listener func(Event)

// ListenerID identifies a registered listener so it can be removed.
type ListenerID uint64
