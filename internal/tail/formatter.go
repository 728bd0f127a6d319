package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/render"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	title         string
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTitle names the sequence in descriptions.
func WithTitle(title string) FormatterOption {
	return func(f *Formatter) {
		f.title = title
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetTitle changes the sequence name used in descriptions.
func (f *Formatter) SetTitle(title string) {
	f.title = title
}

// Format formats an event as a string.
func (f *Formatter) Format(e core.Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e core.Event) string {
	var parts []string

	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, eventEmoji(e))
	}
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e core.Event) string {
	data := templateData{
		Type:      string(e.Kind),
		Emoji:     eventEmoji(e),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Title:     f.title,
		Position:  FormatPosition(e.Position),
		Finished:  e.Finished,
	}
	if e.Note != nil {
		data.Pitch = e.Note.Pitch
		data.Note = render.PitchName(e.Note.Pitch)
		data.Velocity = e.Note.Velocity
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Title     string
	Position  string
	Finished  bool
	Pitch     int
	Note      string
	Velocity  int
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e core.Event) string {
	pos := FormatPosition(e.Position)
	switch e.Kind {
	case core.EventLoad:
		if f.title != "" {
			return "Loaded: " + f.title
		}
		return "Loaded"

	case core.EventStart:
		if f.title != "" {
			return fmt.Sprintf("Playing: %s from %s", f.title, pos)
		}
		return "Playing from " + pos

	case core.EventLoop:
		if f.title != "" {
			return "Looping: " + f.title
		}
		return "Looping"

	case core.EventStop:
		if e.Finished {
			return "Finished at " + pos
		}
		return "Stopped at " + pos

	case core.EventNote:
		if e.Note != nil {
			return fmt.Sprintf("Note %s (%d) at %s", render.PitchName(e.Note.Pitch), e.Note.Pitch, pos)
		}
		return "Note"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event.
func eventEmoji(e core.Event) string {
	switch e.Kind {
	case core.EventLoad:
		return "📂"
	case core.EventStart:
		return "▶️"
	case core.EventLoop:
		return "🔁"
	case core.EventStop:
		if e.Finished {
			return "✅"
		}
		return "⏹️"
	case core.EventNote:
		return "🎵"
	default:
		return "❓"
	}
}

// FormatPosition formats seconds as m:ss.
func FormatPosition(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
