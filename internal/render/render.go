// Package render draws sequences to terminal surfaces.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/stave/internal/core"
)

// RGB is a highlight or note colour.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses an "r,g,b" triple.
func ParseRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("invalid colour %q: want r,g,b", s)
	}
	var v [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		v[i] = uint8(n)
	}
	return RGB{v[0], v[1], v[2]}, nil
}

func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// Color converts to a lipgloss colour.
func (c RGB) Color() lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// ScrollType controls how a renderer follows the active note.
type ScrollType int

const (
	ScrollPage ScrollType = iota
	ScrollNote
	ScrollBar
)

// Config holds rendering parameters. Sizes are in pixels of the reference
// layout; renderers scale them down to terminal cells.
type Config struct {
	NoteHeight        int
	NoteSpacing       int
	PixelsPerTimeStep float64
	MinPitch          int
	MaxPitch          int
	NoteRGB           RGB
	ActiveNoteRGB     RGB
	ScrollType        ScrollType
	WhiteNoteHeight   int
	WhiteNoteWidth    int
}

// DefaultConfig returns the base parameters every layout starts from.
func DefaultConfig() Config {
	return Config{
		NoteHeight:        6,
		NoteSpacing:       1,
		PixelsPerTimeStep: 30,
		NoteRGB:           RGB{8, 41, 64},
		ActiveNoteRGB:     RGB{240, 84, 119},
		WhiteNoteHeight:   70,
		WhiteNoteWidth:    20,
	}
}

// Renderer draws one sequence.
type Renderer interface {
	// Redraw highlights active, or clears highlighting if it is nil, and
	// returns the column the active note starts at.
	Redraw(active *core.Note) int
	ClearActiveNotes()
	// View renders into a width x height cell box.
	View(width, height int) string
}

// New builds the renderer for mode.
func New(mode core.Mode, seq *core.Sequence, cfg Config) (Renderer, error) {
	if seq == nil {
		return nil, fmt.Errorf("render %s: nil sequence", mode)
	}
	if cfg.MinPitch == 0 && cfg.MaxPitch == 0 {
		cfg.MinPitch, cfg.MaxPitch = PitchBounds(seq, true)
	}
	b := newBase(seq, cfg)
	switch mode {
	case core.ModePianoRoll:
		return &pianoRoll{base: b}, nil
	case core.ModePianoRollCanvas:
		return &pianoRoll{base: b, dense: true}, nil
	case core.ModeWaterfall:
		return &waterfall{base: b}, nil
	case core.ModeStaff:
		return &staff{base: b}, nil
	default:
		_, err := core.ParseMode(string(mode))
		return nil, err
	}
}

// PitchBounds returns the pitch range of seq, padded by two semitones on
// each side when padding is set.
func PitchBounds(seq *core.Sequence, padding bool) (lo, hi int) {
	lo, hi, ok := seq.PitchRange()
	if !ok {
		return 60, 72
	}
	if padding {
		lo -= 2
		hi += 2
	}
	return lo, hi
}

// base tracks highlighting and scroll position shared by every renderer.
type base struct {
	seq *core.Sequence
	cfg Config

	mu     sync.Mutex
	active []bool
	anchor float64 // time of the last active note, for scrolling
}

func newBase(seq *core.Sequence, cfg Config) base {
	return base{seq: seq, cfg: cfg, active: make([]bool, len(seq.Notes))}
}

func (b *base) Redraw(active *core.Note) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.active)
	if active == nil {
		return 0
	}
	start := b.noteStart(*active)
	for i, n := range b.seq.Notes {
		if n.Pitch != active.Pitch {
			continue
		}
		ns, ne := b.noteStart(n), b.noteEnd(n)
		if approx(ns, start) || (ns <= start && start < ne) {
			b.active[i] = true
		}
	}
	b.anchor = start
	return b.col(start)
}

func (b *base) ClearActiveNotes() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.active)
}

func (b *base) isActive(i int) bool {
	return b.active[i]
}

// noteStart is in quantized steps or seconds depending on the sequence.
func (b *base) noteStart(n core.Note) float64 {
	if b.seq.IsQuantized() {
		return float64(n.QuantizedStartStep)
	}
	return math.Round(n.StartTime*1e8) / 1e8
}

func (b *base) noteEnd(n core.Note) float64 {
	if b.seq.IsQuantized() {
		return float64(n.QuantizedEndStep)
	}
	return math.Round(n.EndTime*1e8) / 1e8
}

// colsPerStep scales pixelsPerTimeStep to terminal columns.
func (b *base) colsPerStep() float64 {
	return max(b.cfg.PixelsPerTimeStep/10, 1)
}

func (b *base) col(t float64) int {
	return int(math.Floor(t * b.colsPerStep()))
}

// span returns the first and last (exclusive) column a note covers. Every
// note is at least one column wide.
func (b *base) span(n core.Note) (int, int) {
	start := b.col(b.noteStart(n))
	end := b.col(b.noteEnd(n))
	return start, max(end, start+1)
}

// pageOffset scrolls in whole pages so the anchor stays visible.
func (b *base) pageOffset(width int) int {
	if width <= 0 {
		return 0
	}
	return (b.col(b.anchor) / width) * width
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// cell is one terminal cell before styling.
type cell struct {
	ch     rune
	active bool
	note   bool
}

// paint joins a row of cells into runs styled by kind.
func paint(row []cell, noteStyle, activeStyle, emptyStyle lipgloss.Style) string {
	var sb strings.Builder
	var run strings.Builder
	kind := -1
	flush := func() {
		if run.Len() == 0 {
			return
		}
		switch kind {
		case 2:
			sb.WriteString(activeStyle.Render(run.String()))
		case 1:
			sb.WriteString(noteStyle.Render(run.String()))
		default:
			sb.WriteString(emptyStyle.Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range row {
		k := 0
		if c.active {
			k = 2
		} else if c.note {
			k = 1
		}
		if k != kind {
			flush()
			kind = k
		}
		ch := c.ch
		if ch == 0 {
			ch = ' '
		}
		run.WriteRune(ch)
	}
	flush()
	return sb.String()
}

func (b *base) styles() (note, active, empty lipgloss.Style) {
	note = lipgloss.NewStyle().Foreground(b.cfg.NoteRGB.Color())
	active = lipgloss.NewStyle().Foreground(b.cfg.ActiveNoteRGB.Color()).Bold(true)
	empty = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	return
}

var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName returns the scientific pitch name, e.g. 60 is C4.
func PitchName(pitch int) string {
	return fmt.Sprintf("%s%d", pitchNames[((pitch%12)+12)%12], pitch/12-1)
}

func isBlackKey(pitch int) bool {
	switch ((pitch % 12) + 12) % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// window returns the first index of a length-n slice of total items that
// keeps focus visible, centring it when possible.
func window(total, n, focus int) int {
	if total <= n {
		return 0
	}
	start := focus - n/2
	return max(0, min(start, total-n))
}
