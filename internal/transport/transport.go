// Package transport implements the transport controller: it owns one
// playback engine, reinitializes it when its source or sound profile
// changes, and fans lifecycle events out to listeners.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/lifecycle"
)

// Option configures a Controller.
type Option func(*Controller)

// WithConfig sets the initial configuration.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithSequence sets an initial sequence to play instead of a source.
func WithSequence(seq *core.Sequence) Option {
	return func(c *Controller) {
		c.seq = seq
	}
}

// WithArbiter replaces the process-wide arbiter, isolating the controller
// from those that do not share a.
func WithArbiter(a *Arbiter) Option {
	return func(c *Controller) {
		c.arbiter = a
	}
}

// WithScheduler sets how coalesced reinitialization passes are run.
func WithScheduler(s lifecycle.Scheduler) Option {
	return func(c *Controller) {
		c.sched = s
	}
}

// WithTempoRange sets the accepted tempo range.
func WithTempoRange(r TempoRange) Option {
	return func(c *Controller) {
		c.tempo = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller is a transport controller.
type Controller struct {
	Emitter

	id      string
	decoder core.Decoder
	engines core.EngineFactory
	arbiter *Arbiter
	sched   lifecycle.Scheduler
	reinit  *lifecycle.Coalescer
	gen     lifecycle.Generation
	tempo   TempoRange
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	cfg          Config
	seq          *core.Sequence
	engine       core.PlaybackEngine
	presentation core.Presentation
	lastErr      error
	playing      bool
	seeking      bool
	autoplay     bool
	position     float64
	startedQPM   float64
	runs         uint64
	cancelRun    context.CancelFunc
	observer     Observer
	closed       bool
}

// New creates a controller. Nothing is loaded until Reload is called or a
// source is set.
func New(decoder core.Decoder, engines core.EngineFactory, opts ...Option) *Controller {
	c := &Controller{
		id:           uuid.NewString(),
		decoder:      decoder,
		engines:      engines,
		tempo:        DefaultTempoRange,
		presentation: core.PresentationLoading,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.arbiter == nil {
		c.arbiter = defaultArbiter
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.reinit = lifecycle.NewCoalescer(c.sched, c.runReinit)
	c.log = c.log.With("controller", c.id[:8])
	return c
}

// ID returns the controller's unique ID.
func (c *Controller) ID() string {
	return c.id
}

// SetObserver registers the observer told about tempo and selector changes.
func (c *Controller) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// Config returns the current configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Source returns the content locator.
func (c *Controller) Source() string {
	return c.Config().Source
}

// Profile returns the sound profile.
func (c *Controller) Profile() core.Profile {
	return c.Config().Profile
}

// Loop returns the loop flag.
func (c *Controller) Loop() bool {
	return c.Config().Loop
}

// SetLoop sets the loop flag. It takes effect at the next natural finish.
func (c *Controller) SetLoop(loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Loop = loop
}

// Sequence returns the current sequence, or nil.
func (c *Controller) Sequence() *core.Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// CurrentTime returns the playback position in seconds.
func (c *Controller) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Duration returns the sequence's total time in seconds.
func (c *Controller) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.durationLocked()
}

func (c *Controller) durationLocked() float64 {
	if c.seq == nil {
		return 0
	}
	return c.seq.TotalTime
}

// Playing reports whether playback is active.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Err returns the error behind the error presentation, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() core.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := core.Status{
		ID:              c.id,
		Source:          c.cfg.Source,
		Profile:         c.cfg.Profile,
		Presentation:    c.presentation,
		ControlsEnabled: c.presentation == core.PresentationReady,
		Playing:         c.playing,
		Loop:            c.cfg.Loop,
		Position:        c.position,
		Duration:        c.durationLocked(),
	}
	if c.seq != nil {
		st.Tempo = c.seq.QPM()
	}
	if c.lastErr != nil {
		st.Error = c.lastErr.Error()
	}
	return st
}

// ApplyConfig validates patch and applies it. Changing the source or the
// sound profile schedules a reinitialization pass.
func (c *Controller) ApplyConfig(p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	if p.Loop != nil {
		c.cfg.Loop = *p.Loop
	}
	profileChanged := p.Profile != nil && *p.Profile != c.cfg.Profile
	if profileChanged {
		c.cfg.Profile = *p.Profile
	}
	var selector *string
	if p.Visualizer != nil && *p.Visualizer != c.cfg.Visualizer {
		c.cfg.Visualizer = *p.Visualizer
		selector = p.Visualizer
	}
	full := c.seq == nil
	obs := c.observer
	c.mu.Unlock()

	if p.Source != nil {
		c.SetSource(*p.Source)
	} else if profileChanged {
		c.requestReinit(full)
	}
	if selector != nil && obs != nil {
		obs.SelectorChanged(*selector)
	}
	return nil
}

// SetSource declares new content by locator. The held sequence is dropped
// and a full reinitialization is scheduled.
func (c *Controller) SetSource(src string) {
	c.mu.Lock()
	c.cfg.Source = src
	c.seq = nil
	c.gen.Next()
	c.mu.Unlock()

	c.requestReinit(true)
}

// Open sets a new source and starts playback as soon as it has loaded.
func (c *Controller) Open(src string) {
	c.mu.Lock()
	c.autoplay = true
	c.mu.Unlock()
	c.SetSource(src)
}

// SetSequence declares new content directly. The source is cleared and
// any load in flight is discarded.
func (c *Controller) SetSequence(seq *core.Sequence) {
	c.mu.Lock()
	if c.seq == seq {
		c.mu.Unlock()
		return
	}
	c.seq = seq
	c.cfg.Source = ""
	c.gen.Next()
	c.mu.Unlock()

	c.requestReinit(true)
}

func (c *Controller) requestReinit(full bool) {
	c.Stop()
	c.setPresentation(core.PresentationLoading, nil)
	if c.reinit.Request(full) {
		c.log.Debug("reinitialize scheduled", "full", full)
	}
}

func (c *Controller) runReinit(full bool) {
	if err := c.Reinitialize(c.ctx, full); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Warn("reinitialize failed", "error", err)
	}
}

// Reload runs a full reinitialization now.
func (c *Controller) Reload(ctx context.Context) error {
	return c.Reinitialize(ctx, true)
}

// Reinitialize builds a fresh playback engine. With fullReload the source
// is decoded again; otherwise the held sequence is reused. A pass that is
// superseded by a newer source, sequence or pass returns nil without
// publishing anything.
func (c *Controller) Reinitialize(ctx context.Context, fullReload bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	token := c.gen.Next()
	src := c.cfg.Source
	profile := c.cfg.Profile
	if fullReload && src != "" {
		c.seq = nil
	}
	seq := c.seq
	c.presentation = core.PresentationLoading
	c.lastErr = nil
	c.mu.Unlock()

	c.log.Debug("reinitialize", "full", fullReload, "source", src, "profile", profile.String())

	if fullReload {
		if src != "" {
			decoded, err := c.decoder.Decode(ctx, src)
			if err != nil {
				var loadErr *staveerr.LoadError
				if !errors.As(err, &loadErr) {
					err = &staveerr.LoadError{Source: src, Err: err}
				}
				return c.fail(token, err)
			}
			if decoded.Empty() {
				return c.fail(token, &staveerr.LoadError{Source: src, Err: staveerr.ErrNoContent})
			}

			c.mu.Lock()
			if !c.gen.IsCurrent(token) {
				c.mu.Unlock()
				return nil
			}
			c.seq = decoded
			c.mu.Unlock()
			seq = decoded
		}

		c.mu.Lock()
		if c.gen.IsCurrent(token) {
			c.position = 0
		}
		c.mu.Unlock()
	}

	if seq == nil {
		// Nothing to play is shown as an error but is not one the caller
		// needs to handle.
		c.fail(token, staveerr.ErrNoContent)
		return nil
	}

	eng, err := c.engines.NewEngine(profile, core.NoteCallbacks{
		Run: func(n core.Note) { c.noteCallback(token, n) },
	})
	if err != nil {
		return c.fail(token, err)
	}
	if loader, ok := eng.(core.SampleLoader); ok {
		if err := loader.LoadSamples(ctx, seq); err != nil {
			var sampleErr *staveerr.SampleLoadError
			if !errors.As(err, &sampleErr) && !errors.Is(err, context.Canceled) {
				err = &staveerr.SampleLoadError{Location: profile.Location, Err: err}
			}
			return c.fail(token, err)
		}
	}

	c.mu.Lock()
	if !c.gen.IsCurrent(token) {
		c.mu.Unlock()
		c.log.Debug("discarding superseded reinitialize", "source", src)
		return nil
	}
	prev := c.engine
	run := c.runs
	cancelRun := c.cancelRun
	c.engine = eng
	c.presentation = core.PresentationReady
	c.lastErr = nil
	autoplay := c.autoplay
	c.autoplay = false
	c.mu.Unlock()

	// End any run on the previous engine, including one whose goroutine
	// has not entered Start yet.
	if prev != nil && prev.IsPlaying() {
		prev.Stop()
	}
	if cancelRun != nil {
		cancelRun()
	}
	c.handleStop(false, run)

	c.mu.Lock()
	pos := c.position
	c.mu.Unlock()

	c.log.Debug("loaded", "source", src, "notes", len(seq.Notes), "duration", seq.TotalTime)
	c.emit(core.EventLoad, nil, false, pos)

	if autoplay {
		c.Play()
	}
	return nil
}

// fail publishes err as the error presentation if token is still current.
// It returns err for a current pass and nil for a superseded one.
func (c *Controller) fail(token uint64, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gen.IsCurrent(token) {
		return nil
	}
	c.engine = nil
	c.autoplay = false
	c.presentation = core.PresentationError
	c.lastErr = err
	return err
}

func (c *Controller) setPresentation(p core.Presentation, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presentation = p
	c.lastErr = err
}

// Play starts playback from the current position, or resumes it if the
// engine is paused. It does nothing unless the controller is ready.
// Playing on one controller stops any other controller sharing the same
// Arbiter.
func (c *Controller) Play() {
	c.start(false)
}

func (c *Controller) start(looped bool) {
	c.mu.Lock()
	eng := c.engine
	if eng == nil || c.closed || c.seq == nil || c.presentation != core.PresentationReady {
		c.mu.Unlock()
		return
	}
	switch eng.PlayState() {
	case core.PlayPaused:
		c.mu.Unlock()
		// Only seeking pauses the engine, so this is rare.
		eng.Resume()
		return
	case core.PlayStarted:
		c.mu.Unlock()
		return
	}
	if c.playing && !looped {
		c.mu.Unlock()
		return
	}

	seq := c.seq
	offset := c.position
	// Jump to the start if there are no notes left to play.
	if seq.NotesAfter(offset) == 0 {
		offset = 0
	}
	c.position = offset
	c.playing = true
	c.runs++
	run := c.runs
	c.startedQPM = seq.QPM()
	runCtx, cancel := context.WithCancel(c.ctx)
	c.cancelRun = cancel
	c.mu.Unlock()

	c.arbiter.RequestPlay(c)

	kind := core.EventStart
	if looped {
		kind = core.EventLoop
	}
	c.log.Debug("play", "offset", offset, "looped", looped)
	c.emit(kind, nil, false, offset)

	go c.play(runCtx, cancel, eng, seq, offset, run)
}

func (c *Controller) play(ctx context.Context, cancel context.CancelFunc, eng core.PlaybackEngine, seq *core.Sequence, offset float64, run uint64) {
	err := eng.Start(ctx, seq, offset)
	cancel()
	switch {
	case err == nil:
		c.handleStop(true, run)
	case errors.Is(err, staveerr.ErrStopped), errors.Is(err, context.Canceled):
		c.handleStop(false, run)
	default:
		c.log.Warn("playback failed", "error", err)
		c.handleStop(false, run)
	}
}

// Stop stops playback. A stop event is emitted if playback was active.
func (c *Controller) Stop() {
	c.mu.Lock()
	eng := c.engine
	run := c.runs
	cancel := c.cancelRun
	c.mu.Unlock()

	if eng != nil && eng.IsPlaying() {
		eng.Stop()
	}
	// Also covers a run whose engine has not entered Start yet.
	if cancel != nil {
		cancel()
	}
	c.handleStop(false, run)
}

func (c *Controller) handleStop(finished bool, run uint64) {
	c.mu.Lock()
	if run != c.runs {
		c.mu.Unlock()
		return
	}
	if finished {
		if c.cfg.Loop && !c.closed && c.presentation == core.PresentationReady {
			c.position = 0
			c.mu.Unlock()
			c.start(true)
			return
		}
		c.position = c.durationLocked()
	}
	was := c.playing
	c.playing = false
	pos := c.position
	c.mu.Unlock()

	if was {
		c.arbiter.Release(c.id)
		c.log.Debug("stopped", "finished", finished, "position", pos)
		c.emit(core.EventStop, nil, finished, pos)
	}
}

// noteCallback runs on the engine's goroutine for every note played.
func (c *Controller) noteCallback(token uint64, n core.Note) {
	if !c.gen.IsCurrent(token) {
		return
	}
	c.mu.Lock()
	if !c.playing || c.seq == nil {
		c.mu.Unlock()
		return
	}
	// The engine reports times in the sequence it was started with; map
	// them onto the current one in case the tempo changed since.
	if qpm := c.seq.QPM(); c.startedQPM > 0 && qpm != c.startedQPM {
		n = n.Scale(c.startedQPM / qpm)
	}
	if !c.seeking {
		c.position = n.StartTime
	}
	pos := c.position
	c.mu.Unlock()

	c.emit(core.EventNote, &n, false, pos)
}

// BeginSeek pauses playback while the user scrubs.
func (c *Controller) BeginSeek() {
	c.mu.Lock()
	c.seeking = true
	eng := c.engine
	c.mu.Unlock()

	if eng != nil && eng.PlayState() == core.PlayStarted {
		eng.Pause()
	}
}

// EndSeek applies the scrubbed position and resumes playback if it was
// active.
func (c *Controller) EndSeek(seconds float64) {
	c.mu.Lock()
	c.seeking = false
	c.position = clamp(seconds, 0, c.durationLocked())
	eng := c.engine
	at := c.engineTimeLocked(c.position)
	c.mu.Unlock()

	if eng != nil && eng.IsPlaying() {
		eng.SeekTo(at)
		if eng.PlayState() == core.PlayPaused {
			eng.Resume()
		}
	}
}

// Seek is a complete seek gesture.
func (c *Controller) Seek(seconds float64) {
	c.BeginSeek()
	c.EndSeek(seconds)
}

// SetCurrentTime moves the playback position without pausing.
func (c *Controller) SetCurrentTime(seconds float64) {
	c.mu.Lock()
	c.position = clamp(seconds, 0, c.durationLocked())
	eng := c.engine
	at := c.engineTimeLocked(c.position)
	c.mu.Unlock()

	if eng != nil && eng.IsPlaying() {
		eng.SeekTo(at)
	}
}

// engineTimeLocked converts a position in the current sequence to the
// time base of the sequence the engine was started with.
func (c *Controller) engineTimeLocked(t float64) float64 {
	if c.seq == nil || c.startedQPM <= 0 || !c.playing {
		return t
	}
	return t * c.seq.QPM() / c.startedQPM
}

// SetTempo changes the tempo. The sequence is replaced by a rescaled copy,
// the running engine follows, and the observer is told so bound surfaces
// redraw with the new timing.
func (c *Controller) SetTempo(qpm float64) error {
	if err := c.tempo.validate(qpm); err != nil {
		return err
	}

	c.mu.Lock()
	if c.seq == nil {
		c.mu.Unlock()
		return nil
	}
	old := c.seq.QPM()
	c.seq = c.seq.WithTempo(qpm)
	c.position *= old / qpm
	seq := c.seq
	eng := c.engine
	obs := c.observer
	c.mu.Unlock()

	c.log.Debug("tempo", "qpm", qpm, "duration", seq.TotalTime)
	if eng != nil {
		eng.SetTempo(qpm)
	}
	if obs != nil {
		obs.SequenceChanged(seq)
	}
	return nil
}

// TempoRange returns the accepted tempo range.
func (c *Controller) TempoRange() TempoRange {
	return c.tempo
}

// Close stops playback and discards any pass in flight.
func (c *Controller) Close() {
	c.Stop()
	c.mu.Lock()
	c.closed = true
	c.gen.Next()
	eng := c.engine
	c.engine = nil
	c.mu.Unlock()

	if eng != nil && eng.IsPlaying() {
		eng.Stop()
	}
	c.arbiter.Release(c.id)
	c.cancel()
}

func (c *Controller) emit(kind core.EventKind, n *core.Note, finished bool, pos float64) {
	c.Emit(core.Event{
		Kind:      kind,
		Source:    c.id,
		Note:      n,
		Finished:  finished,
		Position:  pos,
		Timestamp: time.Now(),
	})
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

var _ Player = (*Controller)(nil)
