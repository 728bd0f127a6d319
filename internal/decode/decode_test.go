package decode

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/fetch"
)

const ticksPerQuarter = 960

// writeSMF builds a single-track file at 120 qpm with one quarter note at
// each of the given start beats.
func writeSMF(t *testing.T, pitches []uint8, beats []uint32) []byte {
	t.Helper()

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("Fader Jakob"))
	track.Add(0, smf.MetaTempo(120))

	var now uint32
	for i, beat := range beats {
		at := beat * ticksPerQuarter
		track.Add(at-now, midi.NoteOn(0, pitches[i], 100))
		track.Add(ticksPerQuarter, midi.NoteOff(0, pitches[i]))
		now = at + ticksPerQuarter
	}
	track.Close(0)

	if err := sm.Add(track); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	var buf bytes.Buffer
	if _, err := sm.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	// Beats 0, 4 and 8 at 120 qpm start at 0s, 2s and 4s.
	data := writeSMF(t, []uint8{60, 64, 67}, []uint32{0, 4, 8})

	seq, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(seq.Notes) != 3 {
		t.Fatalf("len(Notes) = %d, want 3", len(seq.Notes))
	}

	wantStarts := []float64{0, 2, 4}
	for i, n := range seq.Notes {
		if math.Abs(n.StartTime-wantStarts[i]) > 1e-6 {
			t.Errorf("Notes[%d].StartTime = %v, want %v", i, n.StartTime, wantStarts[i])
		}
		if math.Abs(n.EndTime-n.StartTime-0.5) > 1e-6 {
			t.Errorf("Notes[%d] lasts %v, want 0.5", i, n.EndTime-n.StartTime)
		}
		if n.Velocity != 100 {
			t.Errorf("Notes[%d].Velocity = %d, want 100", i, n.Velocity)
		}
	}

	if math.Abs(seq.TotalTime-4.5) > 1e-6 {
		t.Errorf("TotalTime = %v, want 4.5", seq.TotalTime)
	}
	if len(seq.Tempos) != 1 || math.Abs(seq.Tempos[0].QPM-120) > 1e-6 {
		t.Errorf("Tempos = %+v, want one entry at 120", seq.Tempos)
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse([]byte("not a midi file")); err == nil {
		t.Error("Parse() error = nil, want error")
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fader-jakob.mid")
	if err := os.WriteFile(path, writeSMF(t, []uint8{60, 62}, []uint32{0, 1}), 0644); err != nil {
		t.Fatal(err)
	}

	seq, err := New(fetch.New(), nil).Decode(context.Background(), path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(seq.Notes) != 2 {
		t.Errorf("len(Notes) = %d, want 2", len(seq.Notes))
	}
	if seq.Name == "" {
		t.Error("Name is empty")
	}
}

func TestDecodeEmptySequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence.mid")
	if err := os.WriteFile(path, writeSMF(t, nil, nil), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(nil, nil).Decode(context.Background(), path)
	if !errors.Is(err, staveerr.ErrLoad) {
		t.Errorf("Decode() error = %v, want ErrLoad", err)
	}
	if !errors.Is(err, staveerr.ErrNoContent) {
		t.Errorf("Decode() error = %v, want ErrNoContent", err)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := New(nil, nil).Decode(context.Background(), filepath.Join(t.TempDir(), "missing.mid"))

	var loadErr *staveerr.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Decode() error = %v, want *LoadError", err)
	}
	if !errors.Is(err, staveerr.ErrNotFound) {
		t.Errorf("Decode() error = %v, want ErrNotFound cause", err)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"midifiles/Mikkel-rev.mid":            "Mikkel-rev",
		"https://example.com/a/b/Tre-sma.mid": "Tre-sma",
		`C:\music\song.mid`:                   "song",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}
