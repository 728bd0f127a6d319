package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/tui/styles"
)

// TransportState is what the transport panel shows.
type TransportState struct {
	Status   core.Status
	Title    string
	Seeking  bool
	SeekPos  float64
	TempoMin float64
	TempoMax float64
}

// Transport displays play state, the seek bar and the tempo slider.
type Transport struct{}

// NewTransport creates a new Transport component
func NewTransport() *Transport {
	return &Transport{}
}

// Render renders the transport panel
func (t *Transport) Render(st TransportState, width, height int, focused bool) string {
	title := styles.PanelTitle("Transport", focused)

	var content string
	switch st.Status.Presentation {
	case core.PresentationLoading:
		content = styles.Muted.Render("Loading...")
	case core.PresentationError:
		content = styles.Failed.Render("✗ " + st.Status.Error)
	default:
		content = t.renderControls(st, width-4)
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

func (t *Transport) renderControls(st TransportState, width int) string {
	s := st.Status

	icon := styles.StatusIcon(s.Playing)
	name := st.Title
	if name == "" {
		name = s.Source
	}
	heading := icon + " " + styles.Title.Width(width-4).Render(truncate(name, width-4))

	// Seek bar
	pos := s.Position
	if st.Seeking {
		pos = st.SeekPos
	}
	pct := 0.0
	if s.Duration > 0 {
		pct = pos / s.Duration * 100
	}
	barWidth := width - 14 // Account for times on either side
	if barWidth < 10 {
		barWidth = 10
	}
	bar := styles.ProgressBar(pct, barWidth)
	if st.Seeking {
		bar = styles.SeekBar(pct, barWidth)
	}
	seek := fmt.Sprintf("%s %s %s", FormatSeconds(pos), bar, FormatSeconds(s.Duration))

	// Tempo slider
	sliderWidth := width - 16
	if sliderWidth < 10 {
		sliderWidth = 10
	}
	tempo := fmt.Sprintf("%s %s %s",
		styles.Label.Render("tempo"),
		styles.Slider(s.Tempo, st.TempoMin, st.TempoMax, sliderWidth),
		styles.Subtitle.Render(fmt.Sprintf("%3.0f", s.Tempo)))

	var flags []string
	if s.Loop {
		flags = append(flags, styles.Highlight.Render("🔁 loop"))
	}
	flags = append(flags, styles.Muted.Render("♪ "+s.Profile.String()))

	return lipgloss.JoinVertical(lipgloss.Left,
		heading,
		"",
		seek,
		tempo,
		"",
		strings.Join(flags, "  "),
	)
}

// FormatSeconds formats seconds as m:ss.
func FormatSeconds(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
