package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// waterfall lets notes fall towards a keyboard along the bottom edge.
type waterfall struct {
	base
}

func (r *waterfall) View(width, height int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	pitches := r.cfg.MaxPitch - r.cfg.MinPitch + 1
	keyW := max(1, r.cfg.WhiteNoteWidth/35)
	if width > 0 && pitches*(keyW+1) <= width {
		keyW++
	}
	keyRows := max(1, r.cfg.WhiteNoteHeight/50)
	rows := max(height-keyRows, 1)
	rowsPerSec := max(r.colsPerStep()/2, 1)

	cols := pitches * keyW
	grid := make([][]cell, rows)
	for i := range grid {
		grid[i] = make([]cell, cols)
	}

	lit := make(map[int]bool)
	focus := pitches / 2
	for i, n := range r.seq.Notes {
		p := n.Pitch - r.cfg.MinPitch
		if p < 0 || p >= pitches {
			continue
		}
		active := r.isActive(i)
		if active {
			lit[n.Pitch] = true
			focus = p * keyW
		}
		from := int(math.Floor((r.noteStart(n) - r.anchor) * rowsPerSec))
		to := int(math.Ceil((r.noteEnd(n) - r.anchor) * rowsPerSec))
		to = max(to, from+1)
		for k := max(from, 0); k < min(to, rows); k++ {
			y := rows - 1 - k
			for x := p * keyW; x < (p+1)*keyW; x++ {
				grid[y][x] = cell{ch: '█', note: true, active: active}
			}
		}
	}

	off := 0
	if width > 0 && cols > width {
		off = window(cols, width, focus)
		cols = width
	}

	noteStyle, activeStyle, emptyStyle := r.styles()
	lines := make([]string, 0, rows+keyRows)
	for _, row := range grid {
		lines = append(lines, paint(row[off:off+cols], noteStyle, activeStyle, emptyStyle))
	}
	for k := 0; k < keyRows; k++ {
		lines = append(lines, r.keyboardRow(k == keyRows-1, keyW, off, cols, lit, activeStyle))
	}
	return strings.Join(lines, "\n")
}

var (
	whiteKey = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	blackKey = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
)

// keyboardRow draws one row of keys. Black keys only reach into the upper
// rows, so the last row is all white.
func (r *waterfall) keyboardRow(last bool, keyW, off, cols int, lit map[int]bool, activeStyle lipgloss.Style) string {
	var sb strings.Builder
	for x := off; x < off+cols; x++ {
		pitch := r.cfg.MinPitch + x/keyW
		edge := x%keyW == keyW-1 && keyW > 1
		switch {
		case lit[pitch]:
			sb.WriteString(activeStyle.Render("█"))
		case isBlackKey(pitch) && !last:
			sb.WriteString(blackKey.Render("█"))
		case edge:
			sb.WriteString(blackKey.Render("▕"))
		default:
			sb.WriteString(whiteKey.Render("█"))
		}
	}
	return sb.String()
}
