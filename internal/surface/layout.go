package surface

import (
	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/render"
)

// Highlight colours.
var (
	Green  = render.RGB{R: 9, G: 132, B: 49}
	Purple = render.RGB{R: 138, G: 54, B: 113}
	Brown  = render.RGB{R: 116, G: 64, B: 6}
	Yellow = render.RGB{R: 241, G: 233, B: 0}
	Red    = render.RGB{R: 242, G: 0, B: 0}
	Blue   = render.RGB{R: 10, G: 88, B: 186}
	Orange = render.RGB{R: 255, G: 142, B: 20}
)

// DefaultColor highlights pitches missing from the lookup.
var DefaultColor = Green

var pitchColors = map[int]render.RGB{
	55: Red,
	57: Blue,
	59: Orange,
	60: Green,
	62: Purple,
	64: Brown,
	65: Yellow,
	67: Red,
	69: Blue,
	71: Orange,
}

// ColorFor returns the highlight colour for pitch.
func ColorFor(pitch int) render.RGB {
	if c, ok := pitchColors[pitch]; ok {
		return c
	}
	return DefaultColor
}

// LayoutFor returns the rendering parameters for mode with the given
// active-note colour.
func LayoutFor(mode core.Mode, active render.RGB) render.Config {
	cfg := render.DefaultConfig()
	cfg.ActiveNoteRGB = active
	switch mode {
	case core.ModeStaff:
		cfg.NoteHeight = 15
		cfg.ScrollType = render.ScrollNote
	case core.ModeWaterfall:
		cfg.WhiteNoteHeight = 100
		cfg.WhiteNoteWidth = 35
		cfg.PixelsPerTimeStep = 60
	default:
		cfg.NoteHeight = 50
	}
	return cfg
}

// Size is a surface's extent in layout pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ComputeSize sizes a surface for seq. Height follows the pitch range and
// width the total time, or total quantized steps for quantized sequences.
func ComputeSize(seq *core.Sequence, cfg render.Config) (Size, error) {
	height := float64((cfg.MaxPitch - cfg.MinPitch) * cfg.NoteHeight)

	field, end := "totalTime", seq.TotalTime
	if seq.IsQuantized() {
		field, end = "totalQuantizedSteps", float64(seq.TotalQuantizedSteps)
	}
	if end == 0 {
		return Size{}, &staveerr.SizingError{Field: field}
	}
	return Size{Width: end * cfg.PixelsPerTimeStep, Height: height}, nil
}
