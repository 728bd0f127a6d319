package render

import (
	"slices"
	"strings"
)

// diatonic steps of the treble and bass staff lines, counted from C-1
var (
	trebleLines = []int{37, 39, 41, 43, 45} // E4 G4 B4 D5 F5
	bassLines   = []int{25, 27, 29, 31, 33} // G2 B2 D3 F3 A3
)

const middleC = 60

var letterSteps = [12]int{0, 0, 1, 1, 2, 3, 3, 4, 4, 5, 5, 6}

// diatonicStep maps a pitch to its staff position; sharps share the
// position of the natural below.
func diatonicStep(pitch int) int {
	return (pitch/12)*7 + letterSteps[pitch%12]
}

// staff draws notes as heads on treble and, when needed, bass staves.
type staff struct {
	base
}

func (r *staff) View(width, height int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := append([]int(nil), trebleLines...)
	if r.cfg.MinPitch < middleC {
		lines = append(lines, bassLines...)
	}
	top := max(diatonicStep(r.cfg.MaxPitch), trebleLines[4]+2)
	bottom := min(diatonicStep(r.cfg.MinPitch), trebleLines[0]-2)
	if r.cfg.MinPitch < middleC {
		bottom = min(bottom, bassLines[0]-2)
	}

	cols := max(width-gutterWidth, 1)
	off := r.offset(cols)

	rows := top - bottom + 1
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		step := top - y
		if slices.Contains(lines, step) {
			for x := range grid[y] {
				grid[y][x].ch = '─'
			}
		}
	}

	focus := rows / 2
	for i, n := range r.seq.Notes {
		y := top - diatonicStep(n.Pitch)
		x := r.col(r.noteStart(n)) - off
		if y < 0 || y >= rows || x < 0 || x >= cols {
			continue
		}
		head := '●'
		if r.noteEnd(n)-r.noteStart(n) >= r.halfNote() {
			head = '○'
		}
		active := r.isActive(i)
		if active {
			focus = y
		}
		grid[y][x] = cell{ch: head, note: true, active: active || grid[y][x].active}
		if isBlackKey(n.Pitch) && x > 0 && !grid[y][x-1].note {
			grid[y][x-1] = cell{ch: '♯', note: true, active: active}
		}
	}

	noteStyle, activeStyle, emptyStyle := r.styles()
	out := make([]string, rows)
	for y, row := range grid {
		label := "    │"
		switch top - y {
		case trebleLines[1]:
			label = " G  │"
		case bassLines[3]:
			if r.cfg.MinPitch < middleC {
				label = " F  │"
			}
		}
		out[y] = label + paint(row, noteStyle, activeStyle, emptyStyle)
	}
	if height > 0 && len(out) > height {
		start := window(len(out), height, focus)
		out = out[start : start+height]
	}
	return strings.Join(out, "\n")
}

// offset implements the scroll types: by page, keeping the active note at
// the left edge, or by bar.
func (r *staff) offset(cols int) int {
	switch r.cfg.ScrollType {
	case ScrollNote:
		return max(r.col(r.anchor)-2, 0)
	case ScrollBar:
		bar := r.col(r.barLength())
		if bar <= 0 {
			return r.pageOffset(cols)
		}
		return (r.col(r.anchor) / bar) * bar
	default:
		return r.pageOffset(cols)
	}
}

// barLength is four quarter notes in the sequence's time unit.
func (r *staff) barLength() float64 {
	if r.seq.IsQuantized() {
		return float64(4 * r.seq.StepsPerQuarter)
	}
	return 4 * 60 / r.seq.QPM()
}

func (r *staff) halfNote() float64 {
	return r.barLength() / 2
}
