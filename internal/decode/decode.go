// Package decode turns Standard MIDI Files into sequences.
package decode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/fetch"
)

// Decoder fetches a locator and parses it as a Standard MIDI File.
type Decoder struct {
	fetcher *fetch.Fetcher
	log     *slog.Logger
}

// New creates a Decoder.
func New(f *fetch.Fetcher, log *slog.Logger) *Decoder {
	if f == nil {
		f = fetch.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Decoder{fetcher: f, log: log}
}

// Decode implements core.Decoder. All failures, including a file without
// notes, are reported as *errors.LoadError.
func (d *Decoder) Decode(ctx context.Context, locator string) (*core.Sequence, error) {
	data, err := d.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, &staveerr.LoadError{Source: locator, Err: err}
	}

	seq, err := Parse(data)
	if err != nil {
		return nil, &staveerr.LoadError{Source: locator, Err: err}
	}
	if seq.Empty() {
		return nil, &staveerr.LoadError{Source: locator, Err: staveerr.ErrNoContent}
	}
	if seq.Name == "" {
		seq.Name = displayName(locator)
	}

	d.log.Debug("decoded sequence", "source", locator, "notes", len(seq.Notes), "duration", seq.TotalTime)
	return seq, nil
}

type noteKey struct {
	track int
	ch    uint8
	pitch uint8
}

type openNote struct {
	start    float64
	velocity uint8
}

// Parse decodes SMF bytes. Notes still sounding at the end of a track are
// closed at the last event time.
func Parse(data []byte) (*core.Sequence, error) {
	seq := &core.Sequence{}
	open := make(map[noteKey][]openNote)
	var lastTime float64

	rd := smf.ReadTracksFrom(bytes.NewReader(data))
	rd.Do(func(ev smf.TrackEvent) {
		t := float64(ev.AbsMicroSeconds) / 1e6
		lastTime = max(lastTime, t)

		var (
			bpm          float64
			name         string
			ch, key, vel uint8
		)

		if ev.Message.GetMetaTempo(&bpm) {
			seq.Tempos = append(seq.Tempos, core.Tempo{Time: t, QPM: bpm})
			return
		}
		if ev.Message.GetMetaTrackName(&name) {
			if seq.Name == "" && strings.TrimSpace(name) != "" {
				seq.Name = strings.TrimSpace(name)
			}
			return
		}

		msg := midi.Message(ev.Message)
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			k := noteKey{track: ev.TrackNo, ch: ch, pitch: key}
			open[k] = append(open[k], openNote{start: t, velocity: vel})
		case msg.GetNoteEnd(&ch, &key):
			k := noteKey{track: ev.TrackNo, ch: ch, pitch: key}
			stack := open[k]
			if len(stack) == 0 {
				return
			}
			on := stack[0]
			open[k] = stack[1:]
			seq.Notes = append(seq.Notes, newNote(k, on, t))
		}
	})
	if err := rd.Error(); err != nil {
		return nil, fmt.Errorf("parse midi: %w", err)
	}

	for k, stack := range open {
		for _, on := range stack {
			seq.Notes = append(seq.Notes, newNote(k, on, lastTime))
		}
	}

	slices.SortStableFunc(seq.Notes, func(a, b core.Note) int {
		if a.StartTime != b.StartTime {
			if a.StartTime < b.StartTime {
				return -1
			}
			return 1
		}
		return a.Pitch - b.Pitch
	})
	seq.Tempos = normalizeTempos(seq.Tempos)

	seq.TotalTime = lastTime
	for _, n := range seq.Notes {
		seq.TotalTime = max(seq.TotalTime, n.EndTime)
	}
	return seq, nil
}

func newNote(k noteKey, on openNote, end float64) core.Note {
	return core.Note{
		Pitch:     int(k.pitch),
		Velocity:  int(on.velocity),
		StartTime: on.start,
		EndTime:   end,
		Channel:   int(k.ch),
	}
}

// normalizeTempos orders tempo changes and keeps the last one at each instant.
func normalizeTempos(tempos []core.Tempo) []core.Tempo {
	if len(tempos) == 0 {
		return []core.Tempo{{Time: 0, QPM: core.DefaultQPM}}
	}
	slices.SortStableFunc(tempos, func(a, b core.Tempo) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
	out := tempos[:0]
	for _, t := range tempos {
		if len(out) > 0 && out[len(out)-1].Time == t.Time {
			out[len(out)-1] = t
			continue
		}
		out = append(out, t)
	}
	return out
}

func displayName(locator string) string {
	base := path.Base(strings.ReplaceAll(locator, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
