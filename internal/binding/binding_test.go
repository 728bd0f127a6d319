package binding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/lifecycle"
	"github.com/tessro/stave/internal/surface"
	"github.com/tessro/stave/internal/transport"
)

type fakeSource struct {
	transport.Emitter
	seq *core.Sequence
}

func (s *fakeSource) Sequence() *core.Sequence { return s.seq }

type fakeSurface struct {
	name string

	mu      sync.Mutex
	seqs    []*core.Sequence
	clears  int
	redraws []int
	reloads int
}

func (s *fakeSurface) Name() string { return s.name }

func (s *fakeSurface) SetSequence(seq *core.Sequence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs = append(s.seqs, seq)
}

func (s *fakeSurface) ClearActiveNotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
}

func (s *fakeSurface) Redraw(active *core.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redraws = append(s.redraws, active.Pitch)
}

func (s *fakeSurface) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
	return nil
}

type plainElement string

func (e plainElement) Name() string { return string(e) }

func emitAll(src *fakeSource) {
	src.Emit(core.Event{Kind: core.EventStart})
	src.Emit(core.Event{Kind: core.EventNote, Note: &core.Note{Pitch: 62}})
	src.Emit(core.Event{Kind: core.EventStop})
}

func TestBindRelaysEvents(t *testing.T) {
	src := &fakeSource{seq: &core.Sequence{Name: "song"}}
	r := New(src, nil, nil)
	s := &fakeSurface{name: "roll"}

	r.Bind(s)
	emitAll(src)

	if len(s.seqs) != 1 || s.seqs[0] != src.seq {
		t.Errorf("sequences = %v, want the source's sequence once", s.seqs)
	}
	if len(s.redraws) != 1 || s.redraws[0] != 62 {
		t.Errorf("redraws = %v, want [62]", s.redraws)
	}
	if s.clears != 1 {
		t.Errorf("clears = %d, want 1", s.clears)
	}
}

func TestBindIsIdempotent(t *testing.T) {
	src := &fakeSource{}
	r := New(src, nil, nil)
	s := &fakeSurface{name: "roll"}

	r.Bind(s)
	r.Bind(s)
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	for _, kind := range []core.EventKind{core.EventStart, core.EventStop, core.EventNote} {
		if n := src.ListenerCount(kind); n != 1 {
			t.Errorf("ListenerCount(%s) = %d, want 1", kind, n)
		}
	}

	emitAll(src)
	if s.clears != 1 || len(s.redraws) != 1 {
		t.Errorf("clears, redraws = %d, %d, want 1, 1", s.clears, len(s.redraws))
	}
}

func TestConcurrentBindKeepsOneEntry(t *testing.T) {
	src := &fakeSource{}
	r := New(src, nil, nil)
	s := &fakeSurface{name: "roll"}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Bind(s)
		}()
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	for _, kind := range []core.EventKind{core.EventStart, core.EventStop, core.EventNote} {
		if n := src.ListenerCount(kind); n != 1 {
			t.Errorf("ListenerCount(%s) = %d, want 1", kind, n)
		}
	}

	r.Unbind(s)
	for _, kind := range []core.EventKind{core.EventStart, core.EventStop, core.EventNote} {
		if n := src.ListenerCount(kind); n != 0 {
			t.Errorf("ListenerCount(%s) = %d after Unbind, want 0", kind, n)
		}
	}
}

func TestUnbindRemovesListeners(t *testing.T) {
	src := &fakeSource{}
	r := New(src, nil, nil)
	a, b := &fakeSurface{name: "a"}, &fakeSurface{name: "b"}
	r.Bind(a)
	r.Bind(b)

	if !r.Unbind(a) {
		t.Error("Unbind() = false for a bound surface")
	}
	if r.Unbind(a) {
		t.Error("Unbind() = true for an unbound surface")
	}

	emitAll(src)
	if a.clears != 0 || len(a.redraws) != 0 || len(a.seqs) != 0 {
		t.Error("unbound surface still receives events")
	}
	if b.clears != 1 {
		t.Errorf("b clears = %d, want 1", b.clears)
	}

	r.Unbind(b)
	for _, kind := range []core.EventKind{core.EventStart, core.EventStop, core.EventNote} {
		if n := src.ListenerCount(kind); n != 0 {
			t.Errorf("ListenerCount(%s) = %d after unbinding everything, want 0", kind, n)
		}
	}
}

func TestRebindAll(t *testing.T) {
	roll, staff := &fakeSurface{name: "roll"}, &fakeSurface{name: "staff"}
	dir := NewDirectory(roll, plainElement("roll-label"), staff)
	src := &fakeSource{}
	r := New(src, dir, nil)

	r.Bind(staff)
	result := r.RebindAll("roll*")

	if len(result.Data) != 1 || result.Data[0] != roll {
		t.Errorf("bound = %v, want [roll]", result.Data)
	}
	if len(result.Errors) != 1 {
		t.Errorf("warnings = %v, want one for the non-surface match", result.Errors)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	emitAll(src)
	if staff.clears != 0 {
		t.Error("previous binding survived RebindAll")
	}

	result = r.RebindAll("")
	if r.Len() != 0 || result.HasErrors() {
		t.Errorf("Len, errors = %d, %v after empty selector", r.Len(), result.Errors)
	}
}

func TestDirectoryQuery(t *testing.T) {
	dir := NewDirectory(plainElement("roll"), plainElement("staff"), plainElement("roll-2"))
	tests := []struct {
		selector string
		want     []string
	}{
		{"*", []string{"roll", "staff", "roll-2"}},
		{"#staff", []string{"staff"}},
		{"#roll, #staff", []string{"roll", "staff"}},
		{"roll*", []string{"roll", "roll-2"}},
		{"roll*,#roll", []string{"roll", "roll-2"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := dir.Query(tt.selector)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Query(%q) = %d elements, want %d", tt.selector, len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Name() != tt.want[i] {
					t.Errorf("Query(%q)[%d] = %q, want %q", tt.selector, i, got[i].Name(), tt.want[i])
				}
			}
		})
	}

	if _, err := dir.Query("[bad"); !errors.Is(err, staveerr.ErrValidation) {
		t.Errorf("Query([bad) error = %v, want ErrValidation", err)
	}

	dir.Remove("staff")
	if got := len(dir.Elements()); got != 2 {
		t.Errorf("Elements() = %d after Remove, want 2", got)
	}
}

type noAudio struct{}

func (noAudio) NewEngine(core.Profile, core.NoteCallbacks) (core.PlaybackEngine, error) {
	return nil, errors.New("unused")
}

func TestTempoChangeUpdatesSurfaces(t *testing.T) {
	seq := &core.Sequence{
		Notes: []core.Note{
			{Pitch: 60, StartTime: 0, EndTime: 1},
			{Pitch: 62, StartTime: 2, EndTime: 3},
			{Pitch: 64, StartTime: 4, EndTime: 4},
		},
		Tempos:    []core.Tempo{{QPM: 120}},
		TotalTime: 4,
	}
	ctrl := transport.New(nil, noAudio{}, transport.WithSequence(seq))
	defer ctrl.Close()

	sched := &lifecycle.ManualScheduler{}
	roll := surface.New("roll", nil, surface.WithSequence(seq), surface.WithScheduler(sched))
	staff := surface.New("staff", nil, surface.WithSequence(seq), surface.WithMode("staff"), surface.WithScheduler(sched))

	r := New(ctrl, NewDirectory(roll, staff), nil)
	ctrl.SetObserver(r)
	if res := r.RebindAll("*"); res.HasErrors() {
		t.Fatal(res.ErrorSummary())
	}

	if err := ctrl.SetTempo(60); err != nil {
		t.Fatal(err)
	}
	for _, s := range []*surface.Surface{roll, staff} {
		if got := s.Sequence().TotalTime; got != 8 {
			t.Errorf("%s TotalTime = %v, want 8", s.Name(), got)
		}
		size, err := s.Size()
		if err != nil {
			t.Fatalf("%s Size() error = %v", s.Name(), err)
		}
		if size.Width != 240 {
			t.Errorf("%s width = %v, want 240", s.Name(), size.Width)
		}
	}
}
