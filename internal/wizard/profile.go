package wizard

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/tessro/stave/internal/core"
)

// ProfileChoice holds the answers of the profile form.
type ProfileChoice struct {
	Kind     string
	Location string
}

// NewProfileChoice seeds the form answers from p.
func NewProfileChoice(p core.Profile) *ProfileChoice {
	kind := p.Kind
	if kind == "" {
		kind = core.ProfileSynth
	}
	return &ProfileChoice{Kind: string(kind), Location: p.Location}
}

// Profile converts the answers to a profile.
func (c *ProfileChoice) Profile() (core.Profile, error) {
	switch core.ProfileKind(c.Kind) {
	case core.ProfileSynth:
		return core.SynthProfile(), nil
	case core.ProfileDefaultSamples:
		return core.Profile{Kind: core.ProfileDefaultSamples}, nil
	case core.ProfileNamedSamples:
		if c.Location == "" {
			return core.Profile{}, errors.New("a sound font location is required")
		}
		return core.Profile{Kind: core.ProfileNamedSamples, Location: c.Location}, nil
	default:
		return core.Profile{}, fmt.Errorf("unknown sound profile %q", c.Kind)
	}
}

// ProfileForm builds the huh form that fills c.
func ProfileForm(c *ProfileChoice) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sound").
				Description("How notes are voiced").
				Options(
					huh.NewOption("Built-in synth", string(core.ProfileSynth)),
					huh.NewOption("Default sound font", string(core.ProfileDefaultSamples)),
					huh.NewOption("Sound font at a location...", string(core.ProfileNamedSamples)),
				).
				Value(&c.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sound font location").
				Description("Directory or URL containing p<pitch>.wav samples").
				Value(&c.Location).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("location is required")
					}
					return nil
				}),
		).WithHideFunc(func() bool {
			return c.Kind != string(core.ProfileNamedSamples)
		}),
	)
}

// RunProfileForm asks for a sound profile, starting from current.
func RunProfileForm(current core.Profile) (core.Profile, error) {
	c := NewProfileChoice(current)
	if err := ProfileForm(c).Run(); err != nil {
		return current, fmt.Errorf("selection cancelled: %w", err)
	}
	return c.Profile()
}
