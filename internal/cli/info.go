package cli

import (
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/stave/internal/core"
	staveerr "github.com/tessro/stave/internal/errors"
	"github.com/tessro/stave/internal/fetch"
	"github.com/tessro/stave/internal/render"
)

var infoCmd = &cobra.Command{
	Use:   "info [file|url]",
	Short: "Summarize a MIDI file",
	Long:  `Decode a MIDI file and show its notes, duration, tempo and pitch range.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

var errNoSource = staveerr.ErrNoContent

// sequenceInfo is the summary printed by info.
type sequenceInfo struct {
	Name       string         `json:"name"`
	Source     string         `json:"source"`
	Size       int64          `json:"size,omitempty"`
	Notes      int            `json:"notes"`
	Duration   float64        `json:"duration"`
	Tempo      float64        `json:"tempo"`
	TempoCount int            `json:"tempo_changes"`
	LowPitch   int            `json:"low_pitch"`
	HighPitch  int            `json:"high_pitch"`
	Channels   []int          `json:"channels"`
	Quantized  bool           `json:"quantized"`
	Seq        *core.Sequence `json:"-"`
}

func summarize(src string, seq *core.Sequence) sequenceInfo {
	info := sequenceInfo{
		Name:       seq.Name,
		Source:     src,
		Notes:      len(seq.Notes),
		Duration:   seq.TotalTime,
		Tempo:      seq.QPM(),
		TempoCount: len(seq.Tempos),
		Quantized:  seq.IsQuantized(),
		Seq:        seq,
	}
	info.LowPitch, info.HighPitch, _ = seq.PitchRange()
	for _, n := range seq.Notes {
		if !slices.Contains(info.Channels, n.Channel) {
			info.Channels = append(info.Channels, n.Channel)
		}
	}
	slices.Sort(info.Channels)
	if !fetch.IsRemote(src) {
		if st, err := os.Stat(src); err == nil {
			info.Size = st.Size()
		}
	}
	return info
}

func runInfo(cmd *cobra.Command, args []string) error {
	src := resolveSource(args)
	if src == "" {
		return fmt.Errorf("no source given: %w", errNoSource)
	}

	seq, err := newStack(true).decoder.Decode(cmd.Context(), src)
	if err != nil {
		return err
	}
	info := summarize(src, seq)

	if JSONOutput() {
		return writeJSON(info)
	}

	t := NewTable()
	t.Row("Name", info.Name)
	t.Row("Source", info.Source)
	if info.Size > 0 {
		t.Row("Size", humanize.Bytes(uint64(info.Size)))
	}
	t.Row("Notes", humanize.Comma(int64(info.Notes)))
	t.Row("Duration", FormatDuration(int(info.Duration+0.5)))
	t.Row("Tempo", fmt.Sprintf("%s qpm (%d %s)", humanize.Ftoa(info.Tempo), info.TempoCount, pluralize(info.TempoCount, "entry", "entries")))
	t.Row("Range", fmt.Sprintf("%s - %s", render.PitchName(info.LowPitch), render.PitchName(info.HighPitch)))
	channels := make([]string, len(info.Channels))
	for i, c := range info.Channels {
		channels[i] = strconv.Itoa(c + 1)
	}
	t.Row("Channels", fmt.Sprint(channels))
	t.Row("Quantized", strconv.FormatBool(info.Quantized))
	t.Flush()
	return nil
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
