package wizard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/stave/internal/core"
)

func TestFindMIDIFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, age time.Duration) {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("MThd"), 0o644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(-age)
		if err := os.Chtimes(p, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	write("old.mid", time.Hour)
	write("new.MIDI", time.Minute)
	write("notes.txt", 0)
	if err := os.Mkdir(filepath.Join(dir, "dir.mid"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := FindMIDIFiles(dir)
	if err != nil {
		t.Fatalf("FindMIDIFiles() error = %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if got := strings.Join(names, ","); got != "new.MIDI,old.mid" {
		t.Errorf("FindMIDIFiles() = %s, want new.MIDI,old.mid", got)
	}
}

func TestFileModelSelect(t *testing.T) {
	m := NewFileModel([]File{{Name: "a.mid", Path: "/a.mid"}, {Name: "b.mid", Path: "/b.mid"}})

	var model tea.Model = m
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("enter should quit the picker")
	}
	sel := model.(FileModel).Selected()
	if sel == nil || sel.Path != "/b.mid" {
		t.Errorf("Selected() = %v, want /b.mid", sel)
	}
	if !strings.Contains(model.View(), "b.mid") {
		t.Error("View() should list the files")
	}
}

func TestProfileChoice(t *testing.T) {
	tests := []struct {
		name    string
		choice  ProfileChoice
		want    core.Profile
		wantErr bool
	}{
		{"synth", ProfileChoice{Kind: "synth"}, core.SynthProfile(), false},
		{"default", ProfileChoice{Kind: "default"}, core.Profile{Kind: core.ProfileDefaultSamples}, false},
		{"named", ProfileChoice{Kind: "named", Location: "/sf"}, core.Profile{Kind: core.ProfileNamedSamples, Location: "/sf"}, false},
		{"named without location", ProfileChoice{Kind: "named"}, core.Profile{}, true},
		{"unknown", ProfileChoice{Kind: "organ"}, core.Profile{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.choice.Profile()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Profile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Profile() = %+v, want %+v", got, tt.want)
			}
		})
	}

	if c := NewProfileChoice(core.Profile{}); c.Kind != "synth" {
		t.Errorf("NewProfileChoice(zero).Kind = %q, want synth", c.Kind)
	}
	if ProfileForm(NewProfileChoice(core.SynthProfile())) == nil {
		t.Error("ProfileForm() = nil")
	}
}

func TestNeedsSource(t *testing.T) {
	if !NeedsSource(nil, "") {
		t.Error("NeedsSource(nil, \"\") = false, want true")
	}
	if NeedsSource(nil, "song.mid") {
		t.Error("a configured source should satisfy NeedsSource")
	}
	if NeedsSource([]string{"a.mid"}, "") {
		t.Error("an argument should satisfy NeedsSource")
	}
}
