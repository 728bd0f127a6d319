package tail

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/transport"
)

func TestFormatterLine(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)
	tests := []struct {
		name string
		opts []FormatterOption
		ev   core.Event
		want string
	}{
		{"start", nil, core.Event{Kind: core.EventStart, Position: 0}, "▶️ Playing from 0:00"},
		{"titled start", []FormatterOption{WithTitle("Fader Jakob")}, core.Event{Kind: core.EventStart, Position: 65}, "▶️ Playing: Fader Jakob from 1:05"},
		{"finished", []FormatterOption{WithEmoji(false)}, core.Event{Kind: core.EventStop, Finished: true, Position: 12}, "Finished at 0:12"},
		{"stopped", []FormatterOption{WithEmoji(false)}, core.Event{Kind: core.EventStop, Position: 3}, "Stopped at 0:03"},
		{"note", []FormatterOption{WithEmoji(false)}, core.Event{Kind: core.EventNote, Note: &core.Note{Pitch: 60}, Position: 2}, "Note C4 (60) at 0:02"},
		{"timestamp", []FormatterOption{WithEmoji(false), WithTimestamp(true)}, core.Event{Kind: core.EventLoop, Timestamp: ts}, "14:05:09 Looping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFormatter(tt.opts...).Format(tt.ev)
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatterTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}} {{.Note}} {{.Position}}"))
	got := f.Format(core.Event{Kind: core.EventNote, Note: &core.Note{Pitch: 69}, Position: 61})
	if got != "note A4 1:01" {
		t.Errorf("Format() = %q, want %q", got, "note A4 1:01")
	}

	bad := NewFormatter(WithTemplate("{{.Missing"), WithEmoji(false))
	if got := bad.Format(core.Event{Kind: core.EventLoad}); got != "Loaded" {
		t.Errorf("Format() with invalid template = %q, want the line format", got)
	}
}

func TestWatcherForwardsEvents(t *testing.T) {
	var src transport.Emitter
	w := NewWatcher(&src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for src.ListenerCount(core.EventStart) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	src.Emit(core.Event{Kind: core.EventStart})
	src.Emit(core.Event{Kind: core.EventNote, Note: &core.Note{Pitch: 60}})
	src.Emit(core.Event{Kind: core.EventStop, Finished: true})

	var kinds []string
	for i := 0; i < 2; i++ {
		kinds = append(kinds, string((<-w.Events()).Kind))
	}
	if strings.Join(kinds, ",") != "start,stop" {
		t.Errorf("events = %v, want [start stop] without notes", kinds)
	}

	cancel()
	<-done
	if _, ok := <-w.Events(); ok {
		t.Error("events channel still open after Start returned")
	}
	if n := src.ListenerCount(core.EventStart); n != 0 {
		t.Errorf("ListenerCount(start) = %d after Start returned, want 0", n)
	}
}

func TestWatcherDropsWhenFull(t *testing.T) {
	var src transport.Emitter
	w := NewWatcher(&src, WithNotes(true), WithBuffer(1))
	go w.Start(context.Background())
	defer w.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for src.ListenerCount(core.EventNote) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	for i := 0; i < 5; i++ {
		src.Emit(core.Event{Kind: core.EventNote, Note: &core.Note{Pitch: 60 + i}})
	}
	if got := (<-w.Events()).Note.Pitch; got != 60 {
		t.Errorf("first note = %d, want 60", got)
	}
	select {
	case ev := <-w.Events():
		t.Errorf("unexpected buffered event %v", ev.Kind)
	default:
	}
}
