package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgpai22/lyricsync/internal/ffmpeg"
	"github.com/mgpai22/lyricsync/internal/lyric"
	"github.com/mgpai22/lyricsync/internal/playback"
	"github.com/mgpai22/lyricsync/internal/preview"
	"github.com/mgpai22/lyricsync/internal/timecode"
	"github.com/mgpai22/lyricsync/internal/timing"
	"github.com/mgpai22/lyricsync/internal/video"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Play the committed lyrics in the terminal",
	Long: `Play the committed lyrics against a clock and redraw the active lines
as they are sung. Playback stops at the end of the media, or of the lyrics
when no media is known, or on Ctrl+C.

The media length is read with ffprobe from --video or the session media
file. ffprobe is downloaded on first use when it is not installed.

Examples:
  lyricsync preview
  lyricsync preview --from 00:50.00
  lyricsync preview --video song.mp4 --staged`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

const clearScreen = "\033[H\033[2J"

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("from", "", "Start time (MM:SS.cc or seconds)")
	previewCmd.Flags().String("video", "", "Media file used for the playback length")
	previewCmd.Flags().Bool("staged", false, "Play the staged lyrics instead of the committed ones")
}

func runPreview(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	mediaPath, _ := cmd.Flags().GetString("video")
	staged, _ := cmd.Flags().GetBool("staged")

	start := 0.0
	if from != "" {
		t, err := parseTime(from)
		if err != nil {
			return err
		}
		start = t
	}

	st, err := loadSession()
	if err != nil {
		return err
	}
	if mediaPath == "" {
		mediaPath = st.Video
	}

	c := st.Buffer.Committed()
	if staged {
		c = st.Buffer.Staged()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	duration := lyricsDuration(c)
	if mediaPath != "" {
		d, err := mediaDuration(ctx, mediaPath)
		if err != nil {
			logger.Warnw("Could not read media length, using lyric length",
				"media", mediaPath,
				"error", err,
			)
		} else {
			duration = d
		}
	}

	logger.Infow("Starting preview",
		"lines", len(c),
		"from", timecode.Format(start, timecode.PrecisionCentiseconds),
		"duration", timecode.Format(duration, timecode.PrecisionCentiseconds),
	)

	clock := playback.NewClock(duration, time.Now)
	clock.SeekTo(start)
	clock.Play()

	interval := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	err = play(ctx, cmd.OutOrStdout(), c, clock, interval, cfg.Preview.Width)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Preview stopped")
		return nil
	}
	return err
}

// play redraws the frame for every poll until playback ends or ctx is done.
func play(
	ctx context.Context,
	out io.Writer,
	c lyric.Collection,
	player playback.Player,
	interval time.Duration,
	width int,
) error {
	resolver := timing.New(c)
	renderer := preview.NewRenderer(out, width)

	var last string
	poller := playback.NewPoller(interval)
	poller.Start(ctx, player, func(t float64) {
		view := renderer.Render(preview.Build(resolver, t))
		if view == last {
			return
		}
		last = view
		fmt.Fprint(out, clearScreen+view+"\n")
	})

	<-poller.Done()
	return poller.Err()
}

// lyricsDuration is where the last active window of c closes.
func lyricsDuration(c lyric.Collection) float64 {
	end := 0.0
	for _, lt := range timing.Prepare(c) {
		if e := lt.WindowEnd(); e > end {
			end = e
		}
	}
	return end
}

func mediaDuration(ctx context.Context, path string) (float64, error) {
	ffprobePath, err := ffmpeg.FFprobePath()
	if err != nil {
		return 0, err
	}
	info, err := video.NewProcessor(ffprobePath).GetInfo(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Seconds(), nil
}
