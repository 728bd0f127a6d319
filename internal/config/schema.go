package config

// Config is the root configuration structure.
type Config struct {
	Player     PlayerConfig     `toml:"player"`
	Visualizer VisualizerConfig `toml:"visualizer"`
	Tempo      TempoConfig      `toml:"tempo"`
	Audio      AudioConfig      `toml:"audio"`
	Fetch      FetchConfig      `toml:"fetch"`
	TUI        TUIConfig        `toml:"tui"`
	Log        LogConfig        `toml:"log"`
}

// PlayerConfig holds transport controller settings.
type PlayerConfig struct {
	Src string `toml:"src"`
	// SoundFont selects the sound profile: absent for the synth, "" for the
	// default sound font, otherwise a sample location.
	SoundFont  *string `toml:"sound_font"`
	Loop       bool    `toml:"loop"`
	Visualizer string  `toml:"visualizer"`
}

// VisualizerConfig holds surface settings.
type VisualizerConfig struct {
	Type string `toml:"type"`
}

// TempoConfig bounds the tempo control.
type TempoConfig struct {
	Min  float64 `toml:"min"`
	Max  float64 `toml:"max"`
	Step float64 `toml:"step"`
}

// AudioConfig holds output settings.
type AudioConfig struct {
	Enabled          *bool  `toml:"enabled"`
	SampleRate       int    `toml:"sample_rate"`
	DefaultSoundFont string `toml:"default_sound_font"`
}

// On reports whether audio output is enabled.
func (c AudioConfig) On() bool {
	return c.Enabled == nil || *c.Enabled
}

// FetchConfig holds settings for reading remote sources and samples.
type FetchConfig struct {
	Timeout int `toml:"timeout"`
	Retries int `toml:"retries"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
