package engine

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// DefaultSampleRate is the output sample rate used when none is configured.
const DefaultSampleRate = beep.SampleRate(48000)

// Output receives voiced notes as streamers.
type Output interface {
	Add(s beep.Streamer)
	Clear()
	SampleRate() beep.SampleRate
}

// Discard drops everything; used when audio is disabled.
type Discard struct {
	Rate beep.SampleRate
}

// Add implements Output.
func (Discard) Add(beep.Streamer) {}

// Clear implements Output.
func (Discard) Clear() {}

// SampleRate implements Output.
func (d Discard) SampleRate() beep.SampleRate {
	if d.Rate == 0 {
		return DefaultSampleRate
	}
	return d.Rate
}

// Speaker mixes streamers onto the system audio device.
type Speaker struct {
	once  sync.Once
	err   error
	rate  beep.SampleRate
	mixer *beep.Mixer
}

// NewSpeaker creates a Speaker. The device is opened lazily by Init.
func NewSpeaker(rate beep.SampleRate) *Speaker {
	if rate == 0 {
		rate = DefaultSampleRate
	}
	return &Speaker{rate: rate, mixer: &beep.Mixer{}}
}

// Init opens the audio device once.
func (s *Speaker) Init() error {
	s.once.Do(func() {
		// Initialize speaker with sample rate and buffer size
		s.err = speaker.Init(s.rate, s.rate.N(100*time.Millisecond))
		if s.err == nil {
			speaker.Play(s.mixer)
		}
	})
	return s.err
}

// Add implements Output.
func (s *Speaker) Add(st beep.Streamer) {
	if s.Init() != nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Clear implements Output.
func (s *Speaker) Clear() {
	if s.Init() != nil {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}

// SampleRate implements Output.
func (s *Speaker) SampleRate() beep.SampleRate {
	return s.rate
}

// Mixer is an in-memory Output that can be streamed by the caller.
type Mixer struct {
	mu    sync.Mutex
	rate  beep.SampleRate
	mixer beep.Mixer
	added int
}

// NewMixer creates an in-memory Output.
func NewMixer(rate beep.SampleRate) *Mixer {
	if rate == 0 {
		rate = DefaultSampleRate
	}
	return &Mixer{rate: rate}
}

// Add implements Output.
func (m *Mixer) Add(s beep.Streamer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer.Add(s)
	m.added++
}

// Clear implements Output.
func (m *Mixer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer.Clear()
}

// SampleRate implements Output.
func (m *Mixer) SampleRate() beep.SampleRate {
	return m.rate
}

// Added returns how many streamers have been added in total.
func (m *Mixer) Added() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.added
}

// Active returns how many streamers are still playing.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Len()
}

// Stream pulls samples from the mix.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Stream(samples)
}
