package engine

import (
	"context"
	"log/slog"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/fetch"
)

// Factory builds engines for a sound profile. It implements core.EngineFactory.
type Factory struct {
	Output Output
	// DefaultSoundFont is used by core.ProfileDefaultSamples.
	DefaultSoundFont string
	Fetcher          *fetch.Fetcher
	Log              *slog.Logger
}

// NewEngine implements core.EngineFactory.
func (f *Factory) NewEngine(profile core.Profile, cb core.NoteCallbacks) (core.PlaybackEngine, error) {
	out := f.Output
	if out == nil {
		out = Discard{}
	}

	switch profile.Kind {
	case core.ProfileDefaultSamples, core.ProfileNamedSamples:
		location := profile.Location
		if profile.Kind == core.ProfileDefaultSamples {
			location = f.DefaultSoundFont
		}
		sampler := NewSampler(location, out, f.Fetcher, f.Log)
		return &SamplePlayer{Player: New(sampler, cb), sampler: sampler}, nil
	default:
		return New(NewSynth(out), cb), nil
	}
}

// SamplePlayer is a Player whose voice needs samples loaded before Start.
type SamplePlayer struct {
	*Player
	sampler *Sampler
}

// LoadSamples implements core.SampleLoader.
func (p *SamplePlayer) LoadSamples(ctx context.Context, seq *core.Sequence) error {
	return p.sampler.LoadSamples(ctx, seq)
}

// Sampler returns the underlying sample voice.
func (p *SamplePlayer) Sampler() *Sampler {
	return p.sampler
}

var (
	_ core.EngineFactory = (*Factory)(nil)
	_ core.SampleLoader  = (*SamplePlayer)(nil)
)
