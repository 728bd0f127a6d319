package transport

import (
	"fmt"
	"math"
	"strconv"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
)

// Config is the declarative state of a controller.
type Config struct {
	// Source is a file path or URL of a MIDI file.
	Source string
	// Profile selects how notes are voiced.
	Profile core.Profile
	Loop    bool
	// Visualizer is the selector of surfaces bound to this controller.
	Visualizer string
}

// Patch is a partial Config. Nil fields are left unchanged.
type Patch struct {
	Source     *string
	Profile    *core.Profile
	Loop       *bool
	Visualizer *string
}

// Validate checks the patch without applying it.
func (p Patch) Validate() error {
	if p.Profile == nil {
		return nil
	}
	switch p.Profile.Kind {
	case core.ProfileSynth, core.ProfileDefaultSamples:
		return nil
	case core.ProfileNamedSamples:
		if p.Profile.Location == "" {
			return &staveerr.ValidationError{Field: "sound font", Value: ""}
		}
		return nil
	default:
		return &staveerr.ValidationError{
			Field:   "sound profile",
			Value:   string(p.Profile.Kind),
			Allowed: []string{string(core.ProfileSynth), string(core.ProfileDefaultSamples), string(core.ProfileNamedSamples)},
		}
	}
}

// TempoRange bounds the tempo control.
type TempoRange struct {
	Min  float64
	Max  float64
	Step float64
}

// DefaultTempoRange matches the tempo slider: 20 to 140 qpm in steps of 4.
var DefaultTempoRange = TempoRange{Min: 20, Max: 140, Step: 4}

// Contains reports whether qpm is within the range.
func (r TempoRange) Contains(qpm float64) bool {
	return qpm >= r.Min && qpm <= r.Max
}

// Clamp limits qpm to the range.
func (r TempoRange) Clamp(qpm float64) float64 {
	return math.Min(math.Max(qpm, r.Min), r.Max)
}

// Nudge moves qpm by n steps and clamps the result.
func (r TempoRange) Nudge(qpm float64, n int) float64 {
	step := r.Step
	if step <= 0 {
		step = 1
	}
	return r.Clamp(qpm + float64(n)*step)
}

func (r TempoRange) validate(qpm float64) error {
	if r.Contains(qpm) {
		return nil
	}
	return &staveerr.ValidationError{
		Field: "tempo",
		Value: strconv.FormatFloat(qpm, 'f', -1, 64),
		Allowed: []string{
			fmt.Sprintf("%g-%g", r.Min, r.Max),
		},
	}
}

// Observer is told about changes that bound surfaces must follow.
type Observer interface {
	// SequenceChanged is called when the controller derives a new sequence
	// outside of playback, such as a tempo change.
	SequenceChanged(seq *core.Sequence)
	// SelectorChanged is called when the visualizer selector changes.
	SelectorChanged(selector string)
}
