package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{-10, 0, 50, 100, 150} {
		if got := lipgloss.Width(ProgressBar(pct, 20)); got != 20 {
			t.Errorf("ProgressBar(%v, 20) width = %d, want 20", pct, got)
		}
	}
}

func TestSeekBarHandle(t *testing.T) {
	bar := SeekBar(100, 10)
	if got := lipgloss.Width(bar); got != 10 {
		t.Errorf("SeekBar width = %d, want 10", got)
	}
	if strings.Count(bar, "●") != 1 {
		t.Errorf("SeekBar(100, 10) = %q, want one handle", bar)
	}
	if SeekBar(50, 0) != "" {
		t.Error("SeekBar with zero width should be empty")
	}
}

func TestSlider(t *testing.T) {
	tests := []struct {
		value float64
		want  int // handle offset
	}{
		{20, 0},
		{140, 9},
		{80, 4},
		{500, 9},
	}
	for _, tt := range tests {
		s := Slider(tt.value, 20, 140, 10)
		if lipgloss.Width(s) != 10 {
			t.Errorf("Slider(%v) width = %d, want 10", tt.value, lipgloss.Width(s))
		}
		plain := stripStyles(s)
		if got := strings.Index(plain, "◆"); got != len(strings.Repeat("─", tt.want)) {
			t.Errorf("Slider(%v) handle at byte %d, want after %d track cells", tt.value, got, tt.want)
		}
	}
	if Slider(50, 10, 10, 5) != "" {
		t.Error("Slider with an empty range should be empty")
	}
}

func stripStyles(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
