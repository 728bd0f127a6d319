package core

import (
	"slices"

	staveerr "github.com/tessro/stave/internal/errors"
)

// Mode is a surface rendering mode.
type Mode string

const (
	ModePianoRoll       Mode = "piano-roll"
	ModePianoRollCanvas Mode = "piano-roll-canvas"
	ModeWaterfall       Mode = "waterfall"
	ModeStaff           Mode = "staff"

	DefaultMode = ModePianoRoll
)

var modes = []Mode{ModePianoRollCanvas, ModePianoRoll, ModeWaterfall, ModeStaff}

// Modes returns every supported rendering mode.
func Modes() []Mode {
	return slices.Clone(modes)
}

// ParseMode validates s as a rendering mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if slices.Contains(modes, m) {
		return m, nil
	}
	allowed := make([]string, len(modes))
	for i, m := range modes {
		allowed[i] = string(m)
	}
	return "", &staveerr.ValidationError{Field: "visualizer type", Value: s, Allowed: allowed}
}

// ModeOrDefault never fails: unknown values fall back to DefaultMode.
func ModeOrDefault(s string) Mode {
	m, err := ParseMode(s)
	if err != nil {
		return DefaultMode
	}
	return m
}

// Next cycles through the supported modes.
func (m Mode) Next() Mode {
	i := slices.Index(modes, m)
	return modes[(i+1)%len(modes)]
}
