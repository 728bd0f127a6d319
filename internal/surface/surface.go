// Package surface implements visual surface controllers. A surface holds
// one renderer, rebuilds it when its source or mode changes and exposes the
// redraw contract used by the binding registry.
package surface

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/lifecycle"
	"github.com/tessro/stave/internal/render"
)

// RendererFactory builds a renderer for a sequence.
type RendererFactory func(mode core.Mode, seq *core.Sequence, cfg render.Config) (render.Renderer, error)

// Option configures a Surface.
type Option func(*Surface)

// WithSource sets the initial source locator.
func WithSource(src string) Option {
	return func(s *Surface) {
		s.src = src
	}
}

// WithSequence sets the initial sequence.
func WithSequence(seq *core.Sequence) Option {
	return func(s *Surface) {
		s.seq = seq
	}
}

// WithMode sets the initial mode without validation. Unknown modes render
// as core.DefaultMode.
func WithMode(mode string) Option {
	return func(s *Surface) {
		s.modeAttr = mode
	}
}

// WithRendererFactory replaces render.New.
func WithRendererFactory(f RendererFactory) Option {
	return func(s *Surface) {
		s.newRenderer = f
	}
}

// WithScheduler sets how coalesced reinitialization passes are run.
func WithScheduler(sched lifecycle.Scheduler) Option {
	return func(s *Surface) {
		s.sched = sched
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		s.log = l
	}
}

// Surface is a visual surface controller.
type Surface struct {
	id          string
	name        string
	decoder     core.Decoder
	newRenderer RendererFactory
	sched       lifecycle.Scheduler
	reinit      *lifecycle.Coalescer
	gen         lifecycle.Generation
	log         *slog.Logger

	mu       sync.Mutex
	src      string
	seq      *core.Sequence
	modeAttr string
	cfg      render.Config
	renderer render.Renderer
	size     Size
	lastErr  error
}

// New creates a surface. name is what binding selectors match against.
func New(name string, decoder core.Decoder, opts ...Option) *Surface {
	s := &Surface{
		id:          uuid.NewString(),
		name:        name,
		decoder:     decoder,
		newRenderer: render.New,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = LayoutFor(s.modeLocked(), DefaultColor)
	s.reinit = lifecycle.NewCoalescer(s.sched, func(full bool) {
		if err := s.Reinitialize(context.Background(), full); err != nil {
			s.log.Warn("surface reinitialize failed", "surface", s.name, "error", err)
		}
	})
	return s
}

// ID returns the surface's unique ID.
func (s *Surface) ID() string {
	return s.id
}

// Name returns the surface's element name.
func (s *Surface) Name() string {
	return s.name
}

// Mode returns the rendering mode. An unknown mode reads as the default.
func (s *Surface) Mode() core.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modeLocked()
}

func (s *Surface) modeLocked() core.Mode {
	return core.ModeOrDefault(s.modeAttr)
}

// SetMode validates and sets the rendering mode.
func (s *Surface) SetMode(mode string) error {
	m, err := core.ParseMode(mode)
	if err != nil {
		return err
	}
	s.SetModeAttr(string(m))
	return nil
}

// SetModeAttr sets the raw mode value without validation.
func (s *Surface) SetModeAttr(mode string) {
	s.mu.Lock()
	s.modeAttr = mode
	s.mu.Unlock()
	s.reinit.Request(false)
}

// Source returns the source locator.
func (s *Surface) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src
}

// SetSource declares new content by locator and schedules a reload.
func (s *Surface) SetSource(src string) {
	s.mu.Lock()
	s.src = src
	s.seq = nil
	s.gen.Next()
	s.mu.Unlock()
	s.reinit.Request(true)
}

// Sequence returns the displayed sequence.
func (s *Surface) Sequence() *core.Sequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// SetSequence displays seq. The source is cleared and a reload scheduled.
func (s *Surface) SetSequence(seq *core.Sequence) {
	s.mu.Lock()
	if s.seq == seq {
		s.mu.Unlock()
		return
	}
	s.seq = seq
	s.src = ""
	s.gen.Next()
	s.mu.Unlock()
	s.reinit.Request(true)
}

// Err returns the error from the last reinitialization, if any.
func (s *Surface) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Ready reports whether a renderer exists.
func (s *Surface) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer != nil
}

// Reload decodes the source again, if any, and rebuilds the renderer now.
func (s *Surface) Reload(ctx context.Context) error {
	return s.Reinitialize(ctx, true)
}

// Reinitialize rebuilds the renderer. With fullReload the source, if any,
// is decoded again; otherwise the held sequence is reused. A superseded
// pass returns nil without publishing.
func (s *Surface) Reinitialize(ctx context.Context, fullReload bool) error {
	s.mu.Lock()
	token := s.gen.Next()
	src := s.src
	decode := fullReload && src != ""
	if decode {
		s.seq = nil
	}
	seq := s.seq
	s.mu.Unlock()

	if decode {
		decoded, err := s.decoder.Decode(ctx, src)
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.gen.IsCurrent(token) {
			return nil
		}
		if err != nil {
			s.renderer = nil
			s.lastErr = err
			return err
		}
		s.seq = decoded
		return s.rebuildLocked()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gen.IsCurrent(token) {
		return nil
	}
	s.seq = seq
	return s.rebuildLocked()
}

// rebuildLocked replaces the renderer for the held sequence, mode and
// layout.
func (s *Surface) rebuildLocked() error {
	s.renderer = nil
	s.lastErr = nil
	if s.seq == nil {
		return nil
	}

	mode := s.modeLocked()
	cfg := LayoutFor(mode, s.cfg.ActiveNoteRGB)
	cfg.MinPitch, cfg.MaxPitch = render.PitchBounds(s.seq, true)

	size, err := ComputeSize(s.seq, cfg)
	if err != nil {
		s.lastErr = err
		return err
	}
	r, err := s.newRenderer(mode, s.seq, cfg)
	if err != nil {
		s.lastErr = err
		return err
	}
	s.cfg = cfg
	s.size = size
	s.renderer = r
	s.log.Debug("surface ready", "surface", s.name, "mode", mode, "width", size.Width, "height", size.Height)
	return nil
}

// Redraw re-renders with the layout for the current mode and highlights
// active, or clears highlighting when active is nil. It does nothing until
// a renderer exists.
func (s *Surface) Redraw(active *core.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer == nil {
		return
	}

	rgb := DefaultColor
	if active != nil {
		rgb = ColorFor(active.Pitch)
	}
	s.cfg.ActiveNoteRGB = rgb
	if err := s.rebuildLocked(); err != nil {
		s.log.Warn("surface redraw failed", "surface", s.name, "error", err)
		return
	}
	s.renderer.Redraw(active)
}

// ClearActiveNotes removes highlighting.
func (s *Surface) ClearActiveNotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer != nil {
		s.renderer.ClearActiveNotes()
	}
}

// ActiveColor returns the highlight colour in use.
func (s *Surface) ActiveColor() render.RGB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.ActiveNoteRGB
}

// Config returns the rendering parameters in use.
func (s *Surface) Config() render.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Size returns the surface extent for the displayed sequence.
func (s *Surface) Size() (Size, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == nil {
		return Size{}, staveerr.ErrNoContent
	}
	if s.renderer == nil && s.lastErr != nil {
		return Size{}, s.lastErr
	}
	return s.size, nil
}

// View renders the surface into a width x height cell box.
func (s *Surface) View(width, height int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderer == nil {
		var sizing *staveerr.SizingError
		if errors.As(s.lastErr, &sizing) {
			return sizing.Error()
		}
		return ""
	}
	return s.renderer.View(width, height)
}
