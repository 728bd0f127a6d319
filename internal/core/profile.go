package core

// ProfileKind selects how notes are voiced.
type ProfileKind string

const (
	// ProfileSynth is the simple oscillator synth used when no sound font is set.
	ProfileSynth ProfileKind = "synth"
	// ProfileDefaultSamples uses the configured default sound font.
	ProfileDefaultSamples ProfileKind = "default"
	// ProfileNamedSamples uses the sound font at Location.
	ProfileNamedSamples ProfileKind = "named"
)

// Profile is an instrument / sound profile selection.
type Profile struct {
	Kind     ProfileKind `json:"kind"`
	Location string      `json:"location,omitempty"`
}

// SynthProfile returns the oscillator profile.
func SynthProfile() Profile {
	return Profile{Kind: ProfileSynth}
}

// ProfileFromAttr maps a sound font setting to a profile: nil selects the
// synth, an empty string the default sound font, anything else a named one.
func ProfileFromAttr(v *string) Profile {
	switch {
	case v == nil:
		return Profile{Kind: ProfileSynth}
	case *v == "":
		return Profile{Kind: ProfileDefaultSamples}
	default:
		return Profile{Kind: ProfileNamedSamples, Location: *v}
	}
}

// Attr is the inverse of ProfileFromAttr.
func (p Profile) Attr() *string {
	switch p.Kind {
	case ProfileDefaultSamples:
		s := ""
		return &s
	case ProfileNamedSamples:
		s := p.Location
		return &s
	default:
		return nil
	}
}

// UsesSamples reports whether the profile needs a sample-loading step.
func (p Profile) UsesSamples() bool {
	return p.Kind == ProfileDefaultSamples || p.Kind == ProfileNamedSamples
}

func (p Profile) String() string {
	switch p.Kind {
	case ProfileDefaultSamples:
		return "default sound font"
	case ProfileNamedSamples:
		return p.Location
	default:
		return "synth"
	}
}
