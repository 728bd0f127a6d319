package cli

import (
	"net/http"
	"time"

	"github.com/gopxl/beep"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/decode"
	"github.com/tessro/stave/internal/engine"
	"github.com/tessro/stave/internal/fetch"
	"github.com/tessro/stave/internal/transport"
)

// stack is the set of collaborators every command builds controllers from.
type stack struct {
	fetcher *fetch.Fetcher
	decoder *decode.Decoder
	engines *engine.Factory
}

// newStack wires the fetcher, decoder and engine factory from the loaded
// configuration. With mute, or when audio is disabled or the device cannot
// be opened, engines play silently.
func newStack(mute bool) *stack {
	f := fetch.New(
		fetch.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Fetch.Timeout) * time.Second}),
		fetch.WithRetries(cfg.Fetch.Retries, 500*time.Millisecond),
		fetch.WithLogger(logger),
	)

	rate := beep.SampleRate(cfg.Audio.SampleRate)
	var out engine.Output = engine.Discard{Rate: rate}
	if !mute && cfg.Audio.On() {
		sp := engine.NewSpeaker(rate)
		if err := sp.Init(); err != nil {
			logger.Warn("audio output unavailable, playing silently", "error", err)
		} else {
			out = sp
		}
	}

	return &stack{
		fetcher: f,
		decoder: decode.New(f, logger),
		engines: &engine.Factory{
			Output:           out,
			DefaultSoundFont: cfg.Audio.DefaultSoundFont,
			Fetcher:          f,
			Log:              logger,
		},
	}
}

// tempoRange returns the configured tempo bounds.
func tempoRange() transport.TempoRange {
	return transport.TempoRange{Min: cfg.Tempo.Min, Max: cfg.Tempo.Max, Step: cfg.Tempo.Step}
}

// newController builds a transport controller for src.
func (s *stack) newController(src string, profile core.Profile, loop bool, opts ...transport.Option) *transport.Controller {
	opts = append([]transport.Option{
		transport.WithConfig(transport.Config{
			Source:     src,
			Profile:    profile,
			Loop:       loop,
			Visualizer: cfg.Player.Visualizer,
		}),
		transport.WithTempoRange(tempoRange()),
		transport.WithLogger(logger),
	}, opts...)
	return transport.New(s.decoder, s.engines, opts...)
}

// resolveSource picks the positional argument over the configured source.
func resolveSource(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Player.Src
}

// resolveProfile maps the --sound-font flag, when set, or the configured
// sound font to a profile.
func resolveProfile(flagSet bool, flagValue string) core.Profile {
	if flagSet {
		return core.ProfileFromAttr(&flagValue)
	}
	return core.ProfileFromAttr(cfg.Player.SoundFont)
}
