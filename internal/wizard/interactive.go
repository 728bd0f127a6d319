package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/stave/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
	dir     string
}

// NewInteractive creates a new interactive handler that browses dir for
// MIDI files.
func NewInteractive(dir string) *Interactive {
	return &Interactive{
		enabled: true,
		dir:     dir,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptSource launches the file picker if interactive mode is available.
// Returns the selected path, or "" if cancelled, not interactive or there
// is nothing to pick.
func (i *Interactive) PromptSource() (string, error) {
	if !i.CanInteract() {
		return "", nil
	}
	files, err := FindMIDIFiles(i.dir)
	if err != nil || len(files) == 0 {
		return "", err
	}
	f, err := RunFilePicker(files)
	if err != nil || f == nil {
		return "", err
	}
	return f.Path, nil
}

// PromptProfile asks which sound profile to play with if interactive mode
// is available. Otherwise current is returned unchanged.
func (i *Interactive) PromptProfile(current core.Profile) (core.Profile, error) {
	if !i.CanInteract() {
		return current, nil
	}
	return RunProfileForm(current)
}

// NeedsSource returns true if a source argument is required but missing.
func NeedsSource(args []string, configured string) bool {
	return len(args) == 0 && configured == ""
}
