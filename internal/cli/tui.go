package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/binding"
	"github.com/tessro/stave/internal/core"
	"github.com/tessro/stave/internal/surface"
	"github.com/tessro/stave/internal/transport"
	"github.com/tessro/stave/internal/tui"
)

var (
	tuiRefresh    int
	tuiVisualizer string
	tuiSoundFont  string
	tuiMute       bool
)

var tuiCmd = &cobra.Command{
	Use:     "ui [file|url]",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive player",
	Long: `Launch the interactive terminal player.

The player shows:
  • Transport - play state, seek bar, tempo slider
  • Visual - the selected surface drawing the sequence
  • Surfaces - visual surfaces and which are bound to the player
  • Notes - notes at and after the playback position
  • Events - recent lifecycle events

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Space        Play/Stop
  ←/→          Seek
  +/-          Tempo up/down
  l            Toggle loop
  v            Cycle visualizer mode
  o            Open a file or URL
  Tab          Switch panel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	tuiCmd.Flags().StringVar(&tuiVisualizer, "visualizer", "", "selector of surfaces to bind, e.g. '#main' or '*'")
	tuiCmd.Flags().StringVar(&tuiSoundFont, "sound-font", "", "sound font location (empty for the default sound font)")
	tuiCmd.Flags().BoolVar(&tuiMute, "mute", false, "do not open the audio device")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	refresh := tuiRefresh
	if refresh <= 0 {
		refresh = cfg.TUI.RefreshInterval
	}

	s := newStack(tuiMute)
	profile := resolveProfile(cmd.Flags().Changed("sound-font"), tuiSoundFont)
	ctrl := s.newController("", profile, cfg.Player.Loop)
	defer ctrl.Close()

	surfaces := []*surface.Surface{
		surface.New("main", s.decoder, surface.WithMode(cfg.Visualizer.Type), surface.WithLogger(logger)),
		surface.New("staff", s.decoder, surface.WithMode(string(core.ModeStaff)), surface.WithLogger(logger)),
		surface.New("waterfall", s.decoder, surface.WithMode(string(core.ModeWaterfall)), surface.WithLogger(logger)),
	}
	dir := binding.NewDirectory()
	for _, sf := range surfaces {
		dir.Add(sf)
	}
	registry := binding.New(ctrl, dir, logger)
	ctrl.SetObserver(registry)

	selector := tuiVisualizer
	if selector == "" {
		selector = cfg.Player.Visualizer
	}
	if selector == "" {
		selector = "#main"
	}
	if err := ctrl.ApplyConfig(transport.Patch{Visualizer: &selector}); err != nil {
		return err
	}
	registry.RebindAll(selector)

	if src := resolveSource(args); src != "" {
		ctrl.Open(src)
	} else {
		// Shows "no content loaded" until a file is opened.
		_ = ctrl.Reload(context.Background())
	}

	app := tui.NewApp(ctrl, registry, surfaces, time.Duration(refresh)*time.Millisecond)
	return tui.Run(app)
}
