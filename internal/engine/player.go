// Package engine is the playback engine: it walks a sequence in real time,
// voices each note and reports it through core.NoteCallbacks.
package engine

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
)

// ErrBusy is returned by Start while a previous Start is still running.
var ErrBusy = errors.New("engine already playing")

// Player schedules notes against the wall clock.
type Player struct {
	mu       sync.Mutex
	state    core.PlayState
	pausedAt time.Time
	stopReq  bool
	seekReq  *float64
	baseQPM  float64
	tempoQPM float64
	rate     float64

	voice Voice
	cb    core.NoteCallbacks
	wake  chan struct{}
}

// New creates a Player that sounds notes through voice.
func New(voice Voice, cb core.NoteCallbacks) *Player {
	if voice == nil {
		voice = Silent{}
	}
	return &Player{
		state: core.PlayStopped,
		rate:  1,
		voice: voice,
		cb:    cb,
		wake:  make(chan struct{}, 1),
	}
}

// Start implements core.PlaybackEngine.
func (p *Player) Start(ctx context.Context, seq *core.Sequence, offset float64) error {
	p.mu.Lock()
	if p.state != core.PlayStopped {
		p.mu.Unlock()
		return ErrBusy
	}
	p.state = core.PlayStarted
	p.stopReq = false
	p.seekReq = nil
	p.baseQPM = seq.QPM()
	p.rate = 1
	if p.tempoQPM > 0 {
		p.rate = p.tempoQPM / p.baseQPM
	}
	p.mu.Unlock()

	defer p.finish()

	notes := slices.Clone(seq.Notes)
	slices.SortStableFunc(notes, func(a, b core.Note) int {
		switch {
		case a.StartTime < b.StartTime:
			return -1
		case a.StartTime > b.StartTime:
			return 1
		}
		return 0
	})
	search := func(pos float64) int {
		return sort.Search(len(notes), func(i int) bool { return notes[i].StartTime >= pos })
	}

	idx := search(offset)
	pos := offset
	last := time.Now()
	running := true
	rate := 1.0

	for {
		p.mu.Lock()
		now := time.Now()
		if running {
			end := now
			if p.state == core.PlayPaused && p.pausedAt.After(last) {
				end = p.pausedAt
			}
			pos += end.Sub(last).Seconds() * rate
		}
		last = now

		if p.stopReq {
			p.mu.Unlock()
			return staveerr.ErrStopped
		}
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return err
		}
		if p.seekReq != nil {
			pos = *p.seekReq
			idx = search(pos)
			p.seekReq = nil
			p.voice.Silence()
		}
		running = p.state == core.PlayStarted
		rate = p.rate
		p.mu.Unlock()

		var timer *time.Timer
		var due <-chan time.Time
		if running {
			for idx < len(notes) && notes[idx].StartTime <= pos {
				n := notes[idx]
				idx++
				p.voice.Play(n, rate)
				if p.cb.Run != nil {
					p.cb.Run(n)
				}
			}
			if idx >= len(notes) && pos >= seq.TotalTime {
				return nil
			}

			next := seq.TotalTime
			if idx < len(notes) {
				next = notes[idx].StartTime
			}
			timer = time.NewTimer(max(0, core.Seconds((next-pos)/rate)))
			due = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
		case <-due:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (p *Player) finish() {
	p.mu.Lock()
	p.state = core.PlayStopped
	p.stopReq = false
	p.seekReq = nil
	p.mu.Unlock()

	p.voice.Silence()
	if p.cb.Stop != nil {
		p.cb.Stop()
	}
}

func (p *Player) poke() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Stop implements core.PlaybackEngine.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.state != core.PlayStopped {
		p.stopReq = true
	}
	p.mu.Unlock()
	p.poke()
}

// Pause implements core.PlaybackEngine.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state == core.PlayStarted {
		p.state = core.PlayPaused
		p.pausedAt = time.Now()
	}
	p.mu.Unlock()
	p.voice.Silence()
	p.poke()
}

// Resume implements core.PlaybackEngine.
func (p *Player) Resume() {
	p.mu.Lock()
	if p.state == core.PlayPaused {
		p.state = core.PlayStarted
	}
	p.mu.Unlock()
	p.poke()
}

// SeekTo implements core.PlaybackEngine.
func (p *Player) SeekTo(seconds float64) {
	p.mu.Lock()
	if p.state != core.PlayStopped {
		s := max(0, seconds)
		p.seekReq = &s
	}
	p.mu.Unlock()
	p.poke()
}

// SetTempo implements core.PlaybackEngine.
func (p *Player) SetTempo(qpm float64) {
	if qpm <= 0 {
		return
	}
	p.mu.Lock()
	p.tempoQPM = qpm
	if p.baseQPM > 0 {
		p.rate = qpm / p.baseQPM
	}
	p.mu.Unlock()
	p.poke()
}

// PlayState implements core.PlaybackEngine.
func (p *Player) PlayState() core.PlayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPlaying implements core.PlaybackEngine.
func (p *Player) IsPlaying() bool {
	return p.PlayState() != core.PlayStopped
}

var _ core.PlaybackEngine = (*Player)(nil)
