package tui

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/stave/internal/binding"
	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/surface"
	"github.com/tessro/stave/internal/tail"
	"github.com/tessro/stave/internal/transport"
	"github.com/tessro/stave/internal/tui/components"
	"github.com/tessro/stave/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelTransport Panel = iota
	PanelVisual
	PanelSurfaces
	PanelNotes
	PanelEvents
	panelCount
)

const (
	seekStep        = 5.0 // seconds per arrow press
	seekCommitDelay = 400 * time.Millisecond
	maxEvents       = 50
)

// App holds the TUI application state
type App struct {
	ctrl        *transport.Controller
	registry    *binding.Registry
	surfaces    []*surface.Surface
	formatter   *tail.Formatter
	refreshRate time.Duration
}

// NewApp creates a new TUI application over a controller and its surfaces.
func NewApp(ctrl *transport.Controller, registry *binding.Registry, surfaces []*surface.Surface, refreshRate time.Duration) *App {
	return &App{
		ctrl:        ctrl,
		registry:    registry,
		surfaces:    surfaces,
		formatter:   tail.NewFormatter(),
		refreshRate: refreshRate,
	}
}

// Model is the main TUI model
type Model struct {
	app          *App
	events       <-chan core.Event
	width        int
	height       int
	focusedPanel Panel

	// State
	status core.Status
	log    []components.EventEntry

	// Components
	transportView *components.Transport
	visualView    *components.Visual
	surfacesView  *components.Surfaces
	notesView     *components.Notes
	eventsView    *components.Events

	// Seek gesture
	seeking bool
	seekPos float64
	seekSeq int

	// Overlays
	showHelp  bool
	showOpen  bool
	openInput textinput.Model

	// Error handling
	lastError   error
	errorExpiry time.Time // When to clear the error

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model reading lifecycle events from events.
func NewModel(app *App, events <-chan core.Event) Model {
	ti := textinput.New()
	ti.Placeholder = "path/to/song.mid or https://..."
	ti.CharLimit = 512
	ti.Width = 50

	return Model{
		app:           app,
		events:        events,
		focusedPanel:  PanelTransport,
		status:        app.ctrl.Status(),
		transportView: components.NewTransport(),
		visualView:    components.NewVisual(),
		surfacesView:  components.NewSurfaces(),
		notesView:     components.NewNotes(),
		eventsView:    components.NewEvents(),
		openInput:     ti,
	}
}

// Messages
type tickMsg time.Time
type eventMsg core.Event
type eventsClosedMsg struct{}
type seekCommitMsg struct{ seq int }
type errMsg error

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.app.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) syncSurfaces() tea.Cmd {
	return func() tea.Msg {
		m.app.registry.Sync(context.Background(), m.app.ctrl.Sequence())
		return nil
	}
}

func (m Model) setTempo(qpm float64) tea.Cmd {
	return func() tea.Msg {
		if err := m.app.ctrl.SetTempo(qpm); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) reload() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := m.app.ctrl.Reload(ctx); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.waitForEvent(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.status = m.app.ctrl.Status()
		return m, m.tick()

	case eventMsg:
		ev := core.Event(msg)
		m.status = m.app.ctrl.Status()
		var cmd tea.Cmd
		if ev.Kind == core.EventLoad {
			if seq := m.app.ctrl.Sequence(); seq != nil {
				m.app.formatter.SetTitle(seq.Name)
			}
			cmd = m.syncSurfaces()
		}
		m.addEvent(ev)
		return m, tea.Batch(cmd, m.waitForEvent())

	case eventsClosedMsg:
		return m, nil

	case seekCommitMsg:
		if m.seeking && msg.seq == m.seekSeq {
			m.seeking = false
			m.app.ctrl.EndSeek(m.seekPos)
			m.status = m.app.ctrl.Status()
		}
		return m, nil

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second) // Show error for 5 seconds
		return m, nil
	}

	// Forward other messages to textinput when the open overlay is active
	if m.showOpen {
		var inputCmd tea.Cmd
		m.openInput, inputCmd = m.openInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// Open overlay
	if m.showOpen {
		return m.handleOpenKeyPress(msg)
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "o":
		m.showOpen = true
		m.openInput.SetValue("")
		m.openInput.Focus()
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		if !m.status.ControlsEnabled {
			return m, nil
		}
		if m.status.Playing {
			m.app.ctrl.Stop()
		} else {
			m.app.ctrl.Play()
		}
		m.status = m.app.ctrl.Status()
		return m, nil
	case "left":
		return m.seek(-seekStep)
	case "right":
		return m.seek(seekStep)
	case "+", "=":
		return m, m.nudgeTempo(1)
	case "-":
		return m, m.nudgeTempo(-1)
	case "l":
		m.app.ctrl.SetLoop(!m.status.Loop)
		m.status = m.app.ctrl.Status()
		return m, nil
	case "v":
		if s := m.selectedSurface(); s != nil {
			s.SetModeAttr(string(s.Mode().Next()))
		}
		return m, nil
	case "r":
		return m, m.reload()
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelSurfaces:
		switch msg.String() {
		case "j", "down":
			m.surfacesView.SelectNext(len(m.app.surfaces))
		case "k", "up":
			m.surfacesView.SelectPrev()
		case "b", "enter":
			m.toggleBinding()
		}
	case PanelNotes:
		switch msg.String() {
		case "j", "down":
			m.notesView.ScrollDown()
		case "k", "up":
			m.notesView.ScrollUp()
		}
	}

	return m, nil
}

func (m Model) handleOpenKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showOpen = false
		m.openInput.Blur()
		return m, nil

	case "enter":
		src := strings.TrimSpace(m.openInput.Value())
		m.showOpen = false
		m.openInput.Blur()
		if src != "" {
			m.app.ctrl.Open(src)
			m.status = m.app.ctrl.Status()
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.openInput, inputCmd = m.openInput.Update(msg)
	return m, inputCmd
}

// seek moves the scrub position. The engine stays paused until no arrow key
// has been pressed for seekCommitDelay.
func (m Model) seek(delta float64) (tea.Model, tea.Cmd) {
	if !m.status.ControlsEnabled {
		return m, nil
	}
	if !m.seeking {
		m.app.ctrl.BeginSeek()
		m.seeking = true
		m.seekPos = m.app.ctrl.CurrentTime()
	}
	m.seekPos = min(max(m.seekPos+delta, 0), m.status.Duration)
	m.seekSeq++
	seq := m.seekSeq
	return m, tea.Tick(seekCommitDelay, func(time.Time) tea.Msg {
		return seekCommitMsg{seq: seq}
	})
}

func (m Model) nudgeTempo(steps int) tea.Cmd {
	if !m.status.ControlsEnabled {
		return nil
	}
	r := m.app.ctrl.TempoRange()
	return m.setTempo(r.Nudge(m.status.Tempo, steps))
}

func (m Model) selectedSurface() *surface.Surface {
	i := m.surfacesView.Selected()
	if i < 0 || i >= len(m.app.surfaces) {
		return nil
	}
	return m.app.surfaces[i]
}

func (m Model) isBound(s *surface.Surface) bool {
	return slices.ContainsFunc(m.app.registry.Bound(), func(b binding.Surface) bool {
		return b == binding.Surface(s)
	})
}

func (m Model) toggleBinding() {
	s := m.selectedSurface()
	if s == nil {
		return
	}
	if m.isBound(s) {
		m.app.registry.Unbind(s)
		s.ClearActiveNotes()
		return
	}
	m.app.registry.Bind(s)
	s.SetSequence(m.app.ctrl.Sequence())
}

func (m *Model) addEvent(ev core.Event) {
	entry := components.EventEntry{
		Event: ev,
		Line:  m.app.formatter.Format(ev),
	}

	// Add to front, keep max entries
	m.log = append([]components.EventEntry{entry}, m.log...)
	if len(m.log) > maxEvents {
		m.log = m.log[:maxEvents]
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	// Show overlays if active
	if m.showHelp {
		return m.renderHelp()
	}

	if m.showOpen {
		return m.renderOpen()
	}

	// Main layout: two columns
	// Left: Transport (top), Visual (bottom)
	// Right: Surfaces (top), Notes (middle), Events (bottom)

	leftWidth := m.width * 65 / 100
	rightWidth := m.width - leftWidth - 2
	body := m.height - 1
	transportHeight := 11
	visualHeight := body - transportHeight - 2
	surfacesHeight := body * 25 / 100
	notesHeight := body * 35 / 100
	eventsHeight := body - surfacesHeight - notesHeight - 6

	st := components.TransportState{
		Status:   m.status,
		Seeking:  m.seeking,
		SeekPos:  m.seekPos,
		TempoMin: m.app.ctrl.TempoRange().Min,
		TempoMax: m.app.ctrl.TempoRange().Max,
	}
	seq := m.app.ctrl.Sequence()
	if seq != nil {
		st.Title = seq.Name
	}

	transportView := m.transportView.Render(st, leftWidth-2, transportHeight, m.focusedPanel == PanelTransport)
	visualView := m.renderVisual(leftWidth-2, visualHeight)
	surfacesView := m.surfacesView.Render(m.surfaceEntries(), rightWidth-2, surfacesHeight, m.focusedPanel == PanelSurfaces)
	notesView := m.notesView.Render(seq, m.status.Position, rightWidth-2, notesHeight, m.focusedPanel == PanelNotes)
	eventsView := m.eventsView.Render(m.log, rightWidth-2, eventsHeight, m.focusedPanel == PanelEvents)

	// Compose layout
	leftCol := lipgloss.JoinVertical(lipgloss.Left, transportView, visualView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, surfacesView, notesView, eventsView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderVisual(width, height int) string {
	s := m.selectedSurface()
	focused := m.focusedPanel == PanelVisual
	if s == nil {
		return m.visualView.Render("surface", "-", "", width, height, focused)
	}
	w, h := components.ViewSize(width, height)
	return m.visualView.Render(s.Name(), string(s.Mode()), s.View(w, h), width, height, focused)
}

func (m Model) surfaceEntries() []components.SurfaceEntry {
	entries := make([]components.SurfaceEntry, len(m.app.surfaces))
	for i, s := range m.app.surfaces {
		entries[i] = components.SurfaceEntry{
			Name:  s.Name(),
			Mode:  string(s.Mode()),
			Bound: m.isBound(s),
			Ready: s.Ready(),
		}
	}
	return entries
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  space:play/stop  ←/→:seek  +/-:tempo  l:loop  v:mode  o:open  tab:switch panel")

	if m.lastError != nil {
		status = styles.Failed.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Stave UI - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  o            Open a file or URL
  Tab          Next panel
  Shift+Tab    Previous panel
  r            Reload

  Playback
  ────────
  Space        Play/Stop
  ←/→          Seek (pauses while scrubbing)
  +/=          Tempo up
  -            Tempo down
  l            Toggle loop
  v            Cycle visualizer mode

  Surfaces Panel
  ──────────────
  j/↓          Select next
  k/↑          Select previous
  b, Enter     Bind/unbind (●)

  Notes Panel
  ───────────
  j/↓          Scroll down
  k/↑          Scroll up

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderOpen() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	b.WriteString(titleStyle.Render("Open"))
	b.WriteString("\n\n")

	b.WriteString(m.openInput.View())
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Enter:open and play  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application
func Run(app *App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := tail.NewWatcher(app.ctrl)
	go func() { _ = watcher.Start(ctx) }()
	defer watcher.Stop()

	model := NewModel(app, watcher.Events())
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
