package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	staveerr "github.com/tessro/stave/internal/errors"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Tempo: TempoConfig{Max: 200}}
	cfg.ApplyDefaults()

	if cfg.Tempo.Min != 20 {
		t.Errorf("Tempo.Min = %v, want 20", cfg.Tempo.Min)
	}
	if cfg.Tempo.Max != 200 {
		t.Errorf("Tempo.Max = %v, want 200 (explicit value kept)", cfg.Tempo.Max)
	}
	if cfg.Visualizer.Type != "piano-roll" {
		t.Errorf("Visualizer.Type = %q, want piano-roll", cfg.Visualizer.Type)
	}
	if !cfg.Audio.On() {
		t.Error("Audio.On() = false, want true when unset")
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Visualizer.Type = "spiral"
	cfg.Tempo.Max = 10
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"visualizer:", "tempo:", "log:"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q, want it to mention %q", err, want)
		}
	}
	if !errors.Is(err, staveerr.ErrValidation) {
		t.Error("unknown visualizer type should unwrap to ErrValidation")
	}
}

func TestLoadFromSoundFont(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *string
	}{
		{"absent", "[player]\nloop = true\n", nil},
		{"empty", "[player]\nsound_font = \"\"\n", ptr("")},
		{"named", "[player]\nsound_font = \"/sf/piano\"\n", ptr("/sf/piano")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
			got := cfg.Player.SoundFont
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("SoundFont = %v, want %v", deref(got), deref(tt.want))
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STAVE_VISUALIZER_TYPE", "staff")
	t.Setenv("STAVE_AUDIO_ENABLED", "false")
	t.Setenv("STAVE_LOG_LEVEL", "debug")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Visualizer.Type != "staff" {
		t.Errorf("Visualizer.Type = %q, want staff", cfg.Visualizer.Type)
	}
	if cfg.Audio.On() {
		t.Error("Audio.On() = true, want false")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Player.Loop = true

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !got.Player.Loop {
		t.Error("Player.Loop = false after round trip")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"bogus", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func ptr(s string) *string { return &s }

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
