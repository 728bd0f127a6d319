package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.staverc, $XDG_CONFIG_HOME/stave/config.toml, ~/.config/stave/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where 'stave config init' writes.
func DefaultPath() string {
	paths := searchPaths()
	if len(paths) == 0 {
		return ""
	}
	return paths[len(paths)-1]
}

func searchPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".staverc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "stave", "config.toml"))
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Player
	if v := os.Getenv("STAVE_PLAYER_SRC"); v != "" {
		cfg.Player.Src = v
	}
	if v, ok := os.LookupEnv("STAVE_PLAYER_SOUND_FONT"); ok {
		cfg.Player.SoundFont = &v
	}
	if v := os.Getenv("STAVE_PLAYER_LOOP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Player.Loop = b
		}
	}

	// Visualizer
	if v := os.Getenv("STAVE_VISUALIZER_TYPE"); v != "" {
		cfg.Visualizer.Type = v
	}

	// Audio
	if v := os.Getenv("STAVE_AUDIO_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Audio.Enabled = &b
		}
	}
	if v := os.Getenv("STAVE_AUDIO_DEFAULT_SOUND_FONT"); v != "" {
		cfg.Audio.DefaultSoundFont = v
	}

	// Fetch
	if v := os.Getenv("STAVE_FETCH_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.Timeout = i
		}
	}

	// TUI
	if v := os.Getenv("STAVE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("STAVE_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("STAVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STAVE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
