package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/tui/styles"
)

// EventEntry is a formatted lifecycle event.
type EventEntry struct {
	Event core.Event
	Line  string
}

// Events displays recent lifecycle events, newest first.
type Events struct{}

// NewEvents creates a new Events component
func NewEvents() *Events {
	return &Events{}
}

// Render renders the events panel
func (e *Events) Render(entries []EventEntry, width, height int, focused bool) string {
	title := styles.PanelTitle("Events", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No events yet")
	} else {
		content = e.renderEntries(entries, width-4, height-4)
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

func (e *Events) renderEntries(entries []EventEntry, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		ago := formatTimeAgo(entry.Event.Timestamp)
		line := truncate(entry.Line, width-len(ago)-1)

		padding := width - lipgloss.Width(line) - len(ago)
		if padding < 1 {
			padding = 1
		}

		lines = append(lines, fmt.Sprintf("%s%s%s",
			line,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(ago)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < 5*time.Second {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return t.Format("15:04")
}
