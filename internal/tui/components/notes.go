package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/render"
	"github.com/tessro/stave/internal/tui/styles"
)

// Notes lists the notes at and after the playback position.
type Notes struct {
	offset int
}

// NewNotes creates a new Notes component
func NewNotes() *Notes {
	return &Notes{}
}

// ScrollDown scrolls the list down
func (n *Notes) ScrollDown() {
	n.offset++
}

// ScrollUp scrolls the list up
func (n *Notes) ScrollUp() {
	if n.offset > 0 {
		n.offset--
	}
}

// Render renders the notes panel
func (n *Notes) Render(seq *core.Sequence, position float64, width, height int, focused bool) string {
	title := styles.PanelTitle("Notes", focused)

	var content string
	if seq.Empty() {
		content = styles.Muted.Render("No notes")
	} else {
		content = n.renderNotes(seq, position, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *Notes) renderNotes(seq *core.Sequence, position float64, maxLines int) string {
	notes := seq.Notes

	// First note still sounding at position
	first := len(notes)
	for i, note := range notes {
		if note.EndTime > position {
			first = i
			break
		}
	}

	// Adjust offset if needed
	if first+n.offset >= len(notes) {
		n.offset = 0
	}

	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := first + n.offset
	end := start + visibleCount
	if end > len(notes) {
		end = len(notes)
	}

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		note := notes[i]
		label := fmt.Sprintf("%-4s %6.2fs  v%-3d", render.PitchName(note.Pitch), note.StartTime, note.Velocity)
		if note.StartTime <= position && position < note.EndTime {
			lines = append(lines, styles.Playing.Render("♪ "+label))
		} else {
			lines = append(lines, "  "+styles.Muted.Render(label))
		}
	}

	if end < len(notes) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(notes)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
