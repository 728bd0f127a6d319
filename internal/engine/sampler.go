package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/fetch"
)

// resampleQuality is passed to beep.Resample.
const resampleQuality = 4

// SampleName is the file name holding the sample for a pitch.
func SampleName(pitch int) string {
	return fmt.Sprintf("p%d.wav", pitch)
}

// Sampler voices notes from per-pitch WAV samples under a sound font location.
type Sampler struct {
	location string
	out      Output
	fetcher  *fetch.Fetcher
	log      *slog.Logger

	mu      sync.Mutex
	buffers map[int]*beep.Buffer
}

// NewSampler creates a Sampler reading samples from location.
func NewSampler(location string, out Output, f *fetch.Fetcher, log *slog.Logger) *Sampler {
	if out == nil {
		out = Discard{}
	}
	if f == nil {
		f = fetch.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{
		location: location,
		out:      out,
		fetcher:  f,
		log:      log,
		buffers:  make(map[int]*beep.Buffer),
	}
}

// Location returns the sound font location.
func (s *Sampler) Location() string {
	return s.location
}

// Loaded reports whether the sample for pitch is buffered.
func (s *Sampler) Loaded(pitch int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.buffers[pitch]
	return ok
}

// LoadSamples fetches every pitch seq uses that is not already buffered.
func (s *Sampler) LoadSamples(ctx context.Context, seq *core.Sequence) error {
	for _, pitch := range seq.Pitches() {
		if s.Loaded(pitch) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		buf, err := s.load(ctx, pitch)
		if err != nil {
			return &staveerr.SampleLoadError{Location: s.location, Pitch: pitch, Err: err}
		}
		s.mu.Lock()
		s.buffers[pitch] = buf
		s.mu.Unlock()
	}
	return nil
}

func (s *Sampler) load(ctx context.Context, pitch int) (*beep.Buffer, error) {
	locator := fetch.Join(s.location, SampleName(pitch))
	s.log.Debug("loading sample", "pitch", pitch, "locator", locator)

	data, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	streamer, format, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", locator, err)
	}
	defer streamer.Close()

	rate := s.out.SampleRate()
	var src beep.Streamer = streamer
	if format.SampleRate != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, rate, streamer)
	}
	format.SampleRate = rate

	buf := beep.NewBuffer(format)
	buf.Append(src)
	return buf, nil
}

// Play implements Voice. Pitches without a loaded sample are skipped.
func (s *Sampler) Play(n core.Note, rate float64) {
	s.mu.Lock()
	buf, ok := s.buffers[n.Pitch]
	s.mu.Unlock()
	if !ok {
		return
	}
	length := s.out.SampleRate().N(noteLength(n, rate) + release)
	st := beep.Take(min(length, buf.Len()), buf.Streamer(0, buf.Len()))
	s.out.Add(newVolume(st, velocityGain(n.Velocity)*2))
}

// Silence implements Voice.
func (s *Sampler) Silence() {
	s.out.Clear()
}
