package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/tessro/stave/internal/config"
	"github.com/tessro/stave/internal/core"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{-3, "0:00"},
		{0, "0:00"},
		{65, "1:05"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestNoteAt(t *testing.T) {
	seq := &core.Sequence{Notes: []core.Note{
		{Pitch: 60, StartTime: 0, EndTime: 1},
		{Pitch: 64, StartTime: 1, EndTime: 2},
	}}

	if n := noteAt(seq, 0.5); n == nil || n.Pitch != 60 {
		t.Errorf("noteAt(0.5) = %v, want pitch 60", n)
	}
	if n := noteAt(seq, 1); n == nil || n.Pitch != 64 {
		t.Errorf("noteAt(1) = %v, want pitch 64", n)
	}
	if n := noteAt(seq, 2); n != nil {
		t.Errorf("noteAt(2) = %v, want nil", n)
	}
	if n := noteAt(nil, 0); n != nil {
		t.Errorf("noteAt(nil) = %v, want nil", n)
	}
}

func TestSummarize(t *testing.T) {
	seq := &core.Sequence{
		Name: "scale",
		Notes: []core.Note{
			{Pitch: 67, Channel: 1, StartTime: 0, EndTime: 1},
			{Pitch: 60, Channel: 0, StartTime: 1, EndTime: 2},
			{Pitch: 64, Channel: 1, StartTime: 2, EndTime: 3},
		},
		Tempos:    []core.Tempo{{QPM: 90}},
		TotalTime: 3,
	}

	info := summarize("https://example.com/scale.mid", seq)
	if info.Notes != 3 {
		t.Errorf("Notes = %d, want 3", info.Notes)
	}
	if info.LowPitch != 60 || info.HighPitch != 67 {
		t.Errorf("range = %d-%d, want 60-67", info.LowPitch, info.HighPitch)
	}
	if !slices.Equal(info.Channels, []int{0, 1}) {
		t.Errorf("Channels = %v, want [0 1]", info.Channels)
	}
	if info.Tempo != 90 {
		t.Errorf("Tempo = %v, want 90", info.Tempo)
	}
	if info.Size != 0 {
		t.Errorf("Size = %d, want 0 for a remote source", info.Size)
	}
}

func TestResolveProfile(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })

	loc := "/samples"
	cfg = config.Default()
	cfg.Player.SoundFont = &loc

	if got := resolveProfile(false, ""); got.Kind != core.ProfileNamedSamples || got.Location != loc {
		t.Errorf("resolveProfile(config) = %+v, want named %s", got, loc)
	}
	if got := resolveProfile(true, ""); got.Kind != core.ProfileDefaultSamples {
		t.Errorf("resolveProfile(flag empty) = %+v, want default samples", got)
	}

	cfg.Player.SoundFont = nil
	if got := resolveProfile(false, ""); got.Kind != core.ProfileSynth {
		t.Errorf("resolveProfile(no config) = %+v, want synth", got)
	}
}

func TestConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{"tempo.max", "200", 200.0, false},
		{"fetch.retries", "5", 5, false},
		{"player.loop", "true", true, false},
		{"visualizer.type", "staff", "staff", false},
		{"tempo.min", "slow", nil, true},
		{"audio.enabled", "maybe", nil, true},
	}
	for _, tt := range tests {
		got, err := configValue(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("configValue(%s, %s) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("configValue(%s, %s) = %v, want %v", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestSetConfigKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := setConfigKey(path, "visualizer.type", "staff"); err != nil {
		t.Fatalf("setConfigKey() error = %v", err)
	}
	if err := setConfigKey(path, "tempo.max", "200"); err != nil {
		t.Fatalf("setConfigKey() error = %v", err)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Visualizer.Type != "staff" {
		t.Errorf("Visualizer.Type = %q, want staff", loaded.Visualizer.Type)
	}
	if loaded.Tempo.Max != 200 {
		t.Errorf("Tempo.Max = %v, want 200", loaded.Tempo.Max)
	}

	if err := setConfigKey(path, "visualizer.type", "spiral"); err == nil {
		t.Error("setConfigKey(spiral) should fail validation")
	}
	if err := setConfigKey(path, "player.volume", "3"); err == nil {
		t.Error("setConfigKey(unknown key) should fail")
	}
	if err := setConfigKey(path, "loop", "true"); err == nil {
		t.Error("setConfigKey(no section) should fail")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Stave Configuration") {
		t.Errorf("config file should start with the header, got %q", string(data))
	}
}

func TestClearConfigKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := setConfigKey(path, "player.sound_font", "/samples"); err != nil {
		t.Fatalf("setConfigKey() error = %v", err)
	}
	if err := clearConfigKey(path, "player", "sound_font"); err != nil {
		t.Fatalf("clearConfigKey() error = %v", err)
	}

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.Player.SoundFont != nil {
		t.Errorf("SoundFont = %q, want nil", *loaded.Player.SoundFont)
	}
}
