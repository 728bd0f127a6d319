package core

import (
	"context"
)

// PlaybackEngine advances time through a sequence and calls back per note.
type PlaybackEngine interface {
	// Start plays seq from offset seconds and blocks until playback ends.
	// It returns nil when the end of the sequence is reached and
	// errors.ErrStopped when Stop interrupted it.
	Start(ctx context.Context, seq *Sequence, offset float64) error
	Stop()
	Pause()
	Resume()
	SeekTo(seconds float64)
	// SetTempo changes the playback rate relative to the started sequence's tempo.
	SetTempo(qpm float64)
	PlayState() PlayState
	// IsPlaying is true while started or paused.
	IsPlaying() bool
}

// NoteCallbacks are invoked by a playback engine as it plays.
type NoteCallbacks struct {
	Run  func(Note)
	Stop func()
}

// EngineFactory builds playback engines for a sound profile.
type EngineFactory interface {
	NewEngine(profile Profile, cb NoteCallbacks) (PlaybackEngine, error)
}

// SampleLoader is implemented by engines that must fetch samples before playing.
type SampleLoader interface {
	LoadSamples(ctx context.Context, seq *Sequence) error
}

// Decoder turns a source locator into a sequence.
type Decoder interface {
	Decode(ctx context.Context, locator string) (*Sequence, error)
}
