package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/tail"
	"github.com/tessro/stave/internal/transport"
	"github.com/tessro/stave/internal/wizard"
)

var (
	playLoop      bool
	playSoundFont string
	playChoose    bool
	playTempo     float64
	playMute      bool
	playNotes     bool
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

var playCmd = &cobra.Command{
	Use:   "play [file|url]",
	Short: "Play a MIDI file and follow its lifecycle events",
	Long: `Play a Standard MIDI File and print lifecycle events as they happen.

Events:
  - load   (sequence decoded and ready)
  - start  (playback started)
  - loop   (playback restarted from the beginning)
  - note   (a note sounded, with --notes)
  - stop   (stopped or finished)

Without an argument the configured player.src is played. In a terminal with
nothing configured, a picker lists the MIDI files in the current directory.

Examples:
  stave play song.mid
  stave play https://example.com/song.mid --loop
  stave play song.mid --sound-font ./piano --tempo 90
  stave play song.mid --notes --format '{{.Time}} {{.Note}}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVarP(&playLoop, "loop", "l", false, "restart when the end is reached")
	playCmd.Flags().StringVar(&playSoundFont, "sound-font", "", "sound font location (empty for the default sound font)")
	playCmd.Flags().BoolVar(&playChoose, "choose-sound", false, "pick the sound profile interactively")
	playCmd.Flags().Float64Var(&playTempo, "tempo", 0, "playback tempo in quarter notes per minute")
	playCmd.Flags().BoolVar(&playMute, "mute", false, "do not open the audio device")
	playCmd.Flags().BoolVar(&playNotes, "notes", false, "print note events")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom format template")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	interactive := wizard.NewInteractive(".")
	interactive.SetEnabled(!JSONOutput())

	src := resolveSource(args)
	if src == "" {
		picked, err := interactive.PromptSource()
		if err != nil {
			return err
		}
		src = picked
	}
	if src == "" {
		return &staveerr.LoadError{Err: staveerr.ErrNoContent}
	}

	profile := resolveProfile(cmd.Flags().Changed("sound-font"), playSoundFont)
	if playChoose {
		p, err := interactive.PromptProfile(profile)
		if err != nil {
			return err
		}
		profile = p
	}
	loop := playLoop || cfg.Player.Loop

	// Handle Ctrl+C gracefully
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctrl := newStack(playMute).newController(src, profile, loop)
	defer ctrl.Close()

	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)
	watcher := tail.NewWatcher(ctrl, tail.WithNotes(playNotes), tail.WithBuffer(64))
	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	if err := ctrl.Reload(ctx); err != nil {
		return err
	}
	if err := ctrl.Err(); err != nil {
		return err
	}
	seq := ctrl.Sequence()
	if seq != nil {
		formatter.SetTitle(seq.Name)
	}
	if playTempo > 0 {
		if err := ctrl.SetTempo(playTempo); err != nil {
			return err
		}
	}
	ctrl.Play()

	return followEvents(ctx, watcher, formatter, errCh)
}

// followEvents prints events until playback stops or ctx is cancelled.
func followEvents(ctx context.Context, w *tail.Watcher, f *tail.Formatter, errCh <-chan error) error {
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			printEvent(f, ev)
			if ev.Kind == core.EventStop {
				w.Stop()
				return nil
			}

		case <-ctx.Done():
			return nil

		case err := <-errCh:
			if err == context.Canceled {
				return nil
			}
			return err
		}
	}
}

type eventJSON struct {
	Type     string     `json:"type"`
	Time     time.Time  `json:"time"`
	Position float64    `json:"position"`
	Finished bool       `json:"finished,omitempty"`
	Note     *core.Note `json:"note,omitempty"`
}

func printEvent(f *tail.Formatter, ev core.Event) {
	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(eventJSON{
			Type:     string(ev.Kind),
			Time:     ev.Timestamp,
			Position: ev.Position,
			Finished: ev.Finished,
			Note:     ev.Note,
		})
		return
	}
	fmt.Println(f.Format(ev))
}

var _ tail.Source = (*transport.Controller)(nil)
