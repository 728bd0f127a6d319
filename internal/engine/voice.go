package engine

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/tessro/stave/internal/core"
)

const (
	minNoteLength = 40 * time.Millisecond
	maxNoteLength = 4 * time.Second
	attack        = 5 * time.Millisecond
	release       = 60 * time.Millisecond
)

// Voice sounds notes.
type Voice interface {
	// Play sounds n; rate is the tempo multiplier the note is played at.
	Play(n core.Note, rate float64)
	// Silence cuts every sounding note.
	Silence()
}

// Silent is a Voice that makes no sound.
type Silent struct{}

// Play implements Voice.
func (Silent) Play(core.Note, float64) {}

// Silence implements Voice.
func (Silent) Silence() {}

// Synth is a simple oscillator voice.
type Synth struct {
	out  Output
	wave WaveType
}

// NewSynth creates an oscillator voice.
func NewSynth(out Output) *Synth {
	if out == nil {
		out = Discard{}
	}
	return &Synth{out: out, wave: WaveTriangle}
}

// Play implements Voice.
func (s *Synth) Play(n core.Note, rate float64) {
	sr := s.out.SampleRate()
	d := noteLength(n, rate)
	osc := NewOscillator(PitchFrequency(n.Pitch), d, s.wave, sr)
	env := NewEnvelope(osc, d, attack, release, sr)
	s.out.Add(newVolume(env, velocityGain(n.Velocity)))
}

// Silence implements Voice.
func (s *Synth) Silence() {
	s.out.Clear()
}

// PitchFrequency converts a MIDI pitch to Hz (A4 = 69 = 440Hz).
func PitchFrequency(pitch int) float64 {
	return 440 * math.Pow(2, float64(pitch-69)/12)
}

func noteLength(n core.Note, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}
	d := time.Duration(float64(n.Duration()) / rate)
	return min(max(d, minNoteLength), maxNoteLength)
}

func velocityGain(velocity int) float64 {
	if velocity <= 0 {
		velocity = 100
	}
	return 0.25 * float64(min(velocity, 127)) / 127
}

// WaveType selects the shape of a synth voice.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
	WaveSquare
)

// oscillator streams a fixed-length periodic wave at one frequency.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator returns a streamer that plays freq for duration.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope ramps a note in over its attack and out over its release, and
// cuts it off after the note's length.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope wraps s in a linear attack and release envelope.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := max(total-att-rel, 0)

	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = max(float64(e.totalSamples-e.position)/float64(e.releaseSamples), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s by the linear gain vol. A gain of zero or less mutes it.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
