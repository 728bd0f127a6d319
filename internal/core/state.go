package core

// PlayState is the playback engine's transport state.
type PlayState string

const (
	PlayStopped PlayState = "stopped"
	PlayStarted PlayState = "started"
	PlayPaused  PlayState = "paused"
)

// Presentation is what the controls show while content is loading, ready or broken.
type Presentation string

const (
	PresentationLoading Presentation = "loading"
	PresentationReady   Presentation = "ready"
	PresentationError   Presentation = "error"
)

// Status is a snapshot of a transport controller.
type Status struct {
	ID              string       `json:"id"`
	Source          string       `json:"source,omitempty"`
	Profile         Profile      `json:"profile"`
	Presentation    Presentation `json:"presentation"`
	Error           string       `json:"error,omitempty"`
	ControlsEnabled bool         `json:"controls_enabled"`
	Playing         bool         `json:"playing"`
	Loop            bool         `json:"loop"`
	Position        float64      `json:"position"`
	Duration        float64      `json:"duration"`
	Tempo           float64      `json:"tempo"`
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *Status) ProgressPercent() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	return s.Position / s.Duration * 100
}
