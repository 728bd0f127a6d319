package wizard

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// File is a MIDI file offered by the picker.
type File struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// FindMIDIFiles lists the .mid and .midi files in dir, newest first.
func FindMIDIFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".mid", ".midi":
		default:
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Path:    filepath.Join(dir, e.Name()),
			Name:    e.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// FileModel is the bubbletea model for the file picker.
type FileModel struct {
	files    []File
	cursor   int
	selected *File
	width    int
	height   int
}

// Styles for file picker
var (
	fileTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	fileItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	fileSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	fileInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// NewFileModel creates a new file picker model.
func NewFileModel(files []File) FileModel {
	return FileModel{
		files:  files,
		width:  80,
		height: 20,
	}
}

// Init initializes the model.
func (m FileModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m FileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if len(m.files) > 0 && m.cursor < len(m.files) {
				m.selected = &m.files[m.cursor]
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.files)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = len(m.files) - 1
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m FileModel) View() string {
	var b strings.Builder

	b.WriteString(fileTitleStyle.Render("🎼 Select MIDI file"))
	b.WriteString("\n\n")

	if len(m.files) == 0 {
		b.WriteString(fileInfoStyle.Render("No .mid files found"))
	} else {
		for i, f := range m.files {
			line := f.Name + " " + fileInfoStyle.Render("("+humanize.Bytes(uint64(f.Size))+", "+humanize.Time(f.ModTime)+")")

			if i == m.cursor {
				b.WriteString(fileSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(fileItemStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	// Help
	b.WriteString("\n")
	b.WriteString(fileInfoStyle.Render("↑/↓ navigate • enter select • esc quit"))

	return b.String()
}

// Selected returns the selected file, or nil if none.
func (m FileModel) Selected() *File {
	return m.selected
}

// RunFilePicker runs the file picker and returns the selected file.
func RunFilePicker(files []File) (*File, error) {
	model := NewFileModel(files)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(FileModel).Selected(), nil
}
