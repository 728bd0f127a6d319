package components

import (
	"strings"
	"testing"
	"time"

	"github.com/tessro/stave/internal/core"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{59.4, "0:59"},
		{59.6, "1:00"},
		{125, "2:05"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.in); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"▶️ Playing", 0, ""},
		{"♪♪♪♪♪♪", 5, "♪♪..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTransportPresentation(t *testing.T) {
	tr := NewTransport()

	loading := tr.Render(TransportState{Status: core.Status{Presentation: core.PresentationLoading}}, 60, 12, false)
	if !strings.Contains(loading, "Loading") {
		t.Error("loading presentation should say Loading")
	}

	failed := tr.Render(TransportState{Status: core.Status{Presentation: core.PresentationError, Error: "no content loaded"}}, 60, 12, false)
	if !strings.Contains(failed, "no content loaded") {
		t.Error("error presentation should show the error text")
	}

	ready := tr.Render(TransportState{
		Status:   core.Status{Presentation: core.PresentationReady, Duration: 90, Position: 30, Tempo: 120, Loop: true},
		Title:    "etude",
		TempoMin: 20,
		TempoMax: 140,
	}, 60, 12, true)
	for _, want := range []string{"etude", "0:30", "1:30", "120", "loop"} {
		if !strings.Contains(ready, want) {
			t.Errorf("ready transport missing %q", want)
		}
	}
}

func TestNotesFollowPosition(t *testing.T) {
	seq := &core.Sequence{Notes: []core.Note{
		{Pitch: 60, StartTime: 0, EndTime: 1},
		{Pitch: 62, StartTime: 1, EndTime: 2},
		{Pitch: 64, StartTime: 2, EndTime: 3},
	}}
	out := NewNotes().Render(seq, 1.5, 40, 12, false)
	if strings.Contains(out, "C4") {
		t.Error("finished note C4 should not be listed at 1.5s")
	}
	if !strings.Contains(out, "D4") || !strings.Contains(out, "E4") {
		t.Errorf("notes panel should list D4 and E4, got:\n%s", out)
	}
}

func TestSurfacesSelection(t *testing.T) {
	s := NewSurfaces()
	s.SelectPrev()
	if s.Selected() != 0 {
		t.Errorf("Selected() = %d, want 0", s.Selected())
	}
	s.SelectNext(2)
	s.SelectNext(2)
	if s.Selected() != 1 {
		t.Errorf("Selected() = %d, want 1 (clamped to the list)", s.Selected())
	}

	out := s.Render([]SurfaceEntry{{Name: "roll", Mode: "piano-roll", Bound: true}, {Name: "staff", Mode: "staff"}}, 40, 8, true)
	if !strings.Contains(out, "▸ ") || !strings.Contains(out, "●") {
		t.Errorf("surfaces panel should mark the selection and the bound surface:\n%s", out)
	}
}

func TestFormatTimeAgo(t *testing.T) {
	if got := formatTimeAgo(time.Now()); got != "now" {
		t.Errorf("formatTimeAgo(now) = %q, want now", got)
	}
	if got := formatTimeAgo(time.Now().Add(-90 * time.Second)); got != "1m" {
		t.Errorf("formatTimeAgo(-90s) = %q, want 1m", got)
	}
}
