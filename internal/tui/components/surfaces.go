package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/stave/internal/tui/styles"
)

// SurfaceEntry describes one visual surface.
type SurfaceEntry struct {
	Name  string
	Mode  string
	Bound bool
	Ready bool
}

// Surfaces lists the visual surfaces and which one is shown.
type Surfaces struct {
	selected int
}

// NewSurfaces creates a new Surfaces component
func NewSurfaces() *Surfaces {
	return &Surfaces{selected: 0}
}

// SelectNext selects the next surface
func (s *Surfaces) SelectNext(n int) {
	if s.selected < n-1 {
		s.selected++
	}
}

// SelectPrev selects the previous surface
func (s *Surfaces) SelectPrev() {
	if s.selected > 0 {
		s.selected--
	}
}

// Selected returns the selected surface index
func (s *Surfaces) Selected() int {
	return s.selected
}

// Render renders the surfaces panel
func (s *Surfaces) Render(entries []SurfaceEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("Surfaces", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No surfaces")
	} else {
		content = s.renderEntries(entries, height-4, focused)
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

func (s *Surfaces) renderEntries(entries []SurfaceEntry, maxLines int, focused bool) string {
	// Adjust selected if out of bounds
	if s.selected >= len(entries) {
		s.selected = len(entries) - 1
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		selector := "  "
		if i == s.selected {
			selector = "▸ "
		}

		bound := ""
		if e.Bound {
			bound = styles.Playing.Render(" ●")
		}

		name := e.Name
		if i == s.selected && focused {
			name = styles.Highlight.Render(name)
		}

		line := fmt.Sprintf("%s%s %s%s", selector, name, styles.Dim.Render(e.Mode), bound)
		lines = append(lines, line)

		if len(lines) >= maxLines {
			break
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
