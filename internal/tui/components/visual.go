package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/stave/internal/tui/styles"
)

// Visual frames a surface's rendered view.
type Visual struct{}

// NewVisual creates a new Visual component
func NewVisual() *Visual {
	return &Visual{}
}

// Render renders the visual panel. view is drawn by the surface into a box
// of ViewSize(width, height).
func (v *Visual) Render(name, mode, view string, width, height int, focused bool) string {
	title := styles.PanelTitle(name+" · "+mode, focused)

	content := view
	if content == "" {
		content = styles.Muted.Render("Nothing to show yet")
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

// ViewSize returns the cells available to a surface inside the panel.
func ViewSize(width, height int) (int, int) {
	w, h := width-4, height-3
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
