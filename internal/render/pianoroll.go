package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const gutterWidth = 5

// pianoRoll draws one row per pitch, or two per row when dense.
type pianoRoll struct {
	base
	dense bool
}

func (r *pianoRoll) View(width, height int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cols := max(width-gutterWidth, 1)
	off := r.pageOffset(cols)

	pitches := r.cfg.MaxPitch - r.cfg.MinPitch + 1
	grid := make([][]cell, pitches)
	for i := range grid {
		grid[i] = make([]cell, cols)
	}

	focus := pitches / 2
	for i, n := range r.seq.Notes {
		row := r.cfg.MaxPitch - n.Pitch
		if row < 0 || row >= pitches {
			continue
		}
		start, end := r.span(n)
		active := r.isActive(i)
		if active {
			focus = row
		}
		for c := max(start, off); c < min(end, off+cols); c++ {
			x := c - off
			grid[row][x].note = true
			grid[row][x].active = grid[row][x].active || active
			grid[row][x].ch = '█'
		}
	}

	noteStyle, activeStyle, emptyStyle := r.styles()
	var lines []string
	if r.dense {
		lines = r.denseRows(grid, noteStyle, activeStyle, emptyStyle)
		focus /= 2
	} else {
		for i, row := range grid {
			lines = append(lines, r.gutter(r.cfg.MaxPitch-i)+paint(row, noteStyle, activeStyle, emptyStyle))
		}
	}

	if height > 0 && len(lines) > height {
		start := window(len(lines), height, focus)
		lines = lines[start : start+height]
	}
	return strings.Join(lines, "\n")
}

func (r *pianoRoll) gutter(pitch int) string {
	if pitch%12 != 0 {
		return strings.Repeat(" ", gutterWidth-1) + "│"
	}
	return fmt.Sprintf("%-*s│", gutterWidth-1, PitchName(pitch))
}

// denseRows packs two pitches into each row using half blocks.
func (r *pianoRoll) denseRows(grid [][]cell, noteStyle, activeStyle, emptyStyle lipgloss.Style) []string {
	var lines []string
	for i := 0; i < len(grid); i += 2 {
		top := grid[i]
		var bottom []cell
		if i+1 < len(grid) {
			bottom = grid[i+1]
		}
		row := make([]cell, len(top))
		for x := range top {
			hasTop := top[x].note
			hasBottom := bottom != nil && bottom[x].note
			c := cell{note: hasTop || hasBottom, active: top[x].active || (bottom != nil && bottom[x].active)}
			switch {
			case hasTop && hasBottom:
				c.ch = '█'
			case hasTop:
				c.ch = '▀'
			case hasBottom:
				c.ch = '▄'
			}
			row[x] = c
		}
		pitch := r.cfg.MaxPitch - i
		if (pitch-1)%12 == 0 {
			pitch--
		}
		lines = append(lines, r.gutter(pitch)+paint(row, noteStyle, activeStyle, emptyStyle))
	}
	return lines
}
