package config

// DefaultSoundFont is where sample profiles load from unless configured.
const DefaultSoundFont = "https://storage.googleapis.com/magentadata/js/soundfonts/sgm_plus/acoustic_grand_piano"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Visualizer: VisualizerConfig{
			Type: "piano-roll",
		},
		Tempo: TempoConfig{
			Min:  20,
			Max:  140,
			Step: 4,
		},
		Audio: AudioConfig{
			SampleRate:       48000,
			DefaultSoundFont: DefaultSoundFont,
		},
		Fetch: FetchConfig{
			Timeout: 30,
			Retries: 3,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 100,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Visualizer
	if c.Visualizer.Type == "" {
		c.Visualizer.Type = d.Visualizer.Type
	}

	// Tempo
	if c.Tempo.Min == 0 {
		c.Tempo.Min = d.Tempo.Min
	}
	if c.Tempo.Max == 0 {
		c.Tempo.Max = d.Tempo.Max
	}
	if c.Tempo.Step == 0 {
		c.Tempo.Step = d.Tempo.Step
	}

	// Audio
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.DefaultSoundFont == "" {
		c.Audio.DefaultSoundFont = d.Audio.DefaultSoundFont
	}

	// Fetch
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = d.Fetch.Timeout
	}
	if c.Fetch.Retries == 0 {
		c.Fetch.Retries = d.Fetch.Retries
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
