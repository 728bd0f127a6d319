package core

import (
	"slices"
	"time"
)

// DefaultQPM is the tempo assumed for sequences without tempo entries.
const DefaultQPM = 120.0

// Note is a single pitched event in a sequence. Times are in seconds.
type Note struct {
	Pitch              int     `json:"pitch"`
	Velocity           int     `json:"velocity"`
	StartTime          float64 `json:"start_time"`
	EndTime            float64 `json:"end_time"`
	QuantizedStartStep int     `json:"quantized_start_step,omitempty"`
	QuantizedEndStep   int     `json:"quantized_end_step,omitempty"`
	Channel            int     `json:"channel"`
}

// Duration returns how long the note sounds.
func (n Note) Duration() time.Duration {
	return Seconds(n.EndTime - n.StartTime)
}

// Scale returns a copy of the note with its times multiplied by ratio.
func (n Note) Scale(ratio float64) Note {
	n.StartTime *= ratio
	n.EndTime *= ratio
	return n
}

// Tempo is a tempo change in quarter notes per minute, applicable from Time.
type Tempo struct {
	Time float64 `json:"time"`
	QPM  float64 `json:"qpm"`
}

// Sequence is decoded note data. Sequences are treated as immutable once
// published; derive a changed copy instead of editing one in place.
type Sequence struct {
	Name                string  `json:"name,omitempty"`
	Notes               []Note  `json:"notes"`
	Tempos              []Tempo `json:"tempos"`
	TotalTime           float64 `json:"total_time"`
	TotalQuantizedSteps int     `json:"total_quantized_steps,omitempty"`
	StepsPerQuarter     int     `json:"steps_per_quarter,omitempty"`
}

// IsQuantized reports whether note positions are expressed in steps.
func (s *Sequence) IsQuantized() bool {
	return s != nil && s.StepsPerQuarter > 0
}

// Empty returns true if the sequence has no notes.
func (s *Sequence) Empty() bool {
	return s == nil || len(s.Notes) == 0
}

// QPM returns the first tempo entry's value.
func (s *Sequence) QPM() float64 {
	if s == nil || len(s.Tempos) == 0 || s.Tempos[0].QPM <= 0 {
		return DefaultQPM
	}
	return s.Tempos[0].QPM
}

// Duration returns the total time as a time.Duration.
func (s *Sequence) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return Seconds(s.TotalTime)
}

// NotesAfter counts the notes starting strictly after offset.
func (s *Sequence) NotesAfter(offset float64) int {
	if s == nil {
		return 0
	}
	count := 0
	for _, n := range s.Notes {
		if n.StartTime > offset {
			count++
		}
	}
	return count
}

// PitchRange returns the lowest and highest pitch in the sequence.
func (s *Sequence) PitchRange() (lo, hi int, ok bool) {
	if s.Empty() {
		return 0, 0, false
	}
	lo, hi = s.Notes[0].Pitch, s.Notes[0].Pitch
	for _, n := range s.Notes[1:] {
		lo = min(lo, n.Pitch)
		hi = max(hi, n.Pitch)
	}
	return lo, hi, true
}

// Pitches returns the distinct pitches used, in ascending order.
func (s *Sequence) Pitches() []int {
	if s == nil {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, n := range s.Notes {
		if !seen[n.Pitch] {
			seen[n.Pitch] = true
			out = append(out, n.Pitch)
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns a deep copy.
func (s *Sequence) Clone() *Sequence {
	if s == nil {
		return nil
	}
	c := *s
	c.Notes = slices.Clone(s.Notes)
	c.Tempos = slices.Clone(s.Tempos)
	return &c
}

// WithTempo derives a copy played at qpm. Note times and the total time are
// rescaled by exactly the tempo ratio, without rounding, and the first tempo
// entry takes the new value.
func (s *Sequence) WithTempo(qpm float64) *Sequence {
	if s == nil || qpm <= 0 {
		return s
	}
	ratio := s.QPM() / qpm
	c := s.Clone()
	for i := range c.Notes {
		c.Notes[i] = c.Notes[i].Scale(ratio)
	}
	for i := range c.Tempos {
		c.Tempos[i].Time *= ratio
	}
	if len(c.Tempos) == 0 {
		c.Tempos = []Tempo{{Time: 0, QPM: qpm}}
	} else {
		c.Tempos[0].QPM = qpm
	}
	c.TotalTime *= ratio
	return c
}

// Seconds converts fractional seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
