package config

import (
	"errors"
	"fmt"

	"github.com/tessro/stave/internal/core"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Visualizer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("visualizer: %w", err))
	}
	if err := c.Tempo.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tempo: %w", err))
	}
	if err := c.Audio.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("audio: %w", err))
	}
	if err := c.Fetch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fetch: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks VisualizerConfig for errors.
func (c *VisualizerConfig) Validate() error {
	if c.Type == "" {
		return nil
	}
	_, err := core.ParseMode(c.Type)
	return err
}

// Validate checks TempoConfig for errors.
func (c *TempoConfig) Validate() error {
	if c.Min <= 0 {
		return errors.New("min must be positive")
	}
	if c.Max < c.Min {
		return fmt.Errorf("max %g is below min %g", c.Max, c.Min)
	}
	if c.Step <= 0 {
		return errors.New("step must be positive")
	}
	return nil
}

// Validate checks AudioConfig for errors.
func (c *AudioConfig) Validate() error {
	if c.SampleRate < 0 {
		return errors.New("sample_rate must be non-negative")
	}
	return nil
}

// Validate checks FetchConfig for errors.
func (c *FetchConfig) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	if c.Retries < 0 {
		return errors.New("retries must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
