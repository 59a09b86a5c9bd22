package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mgpai22/lyricsync/internal/ffmpeg"
	"github.com/mgpai22/lyricsync/internal/session"
	"github.com/mgpai22/lyricsync/internal/timecode"
	"github.com/mgpai22/lyricsync/internal/video"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [media_file]",
	Short: "Show information about a media file",
	Long: `Show the length and streams of a media file, or of the session
media file when none is given.

With --attach the file becomes the session media used by preview.

Examples:
  lyricsync probe song.mp4
  lyricsync probe song.mp4 --attach`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().Bool("attach", false, "Store the file as the session media")
}

func runProbe(cmd *cobra.Command, args []string) error {
	attach, _ := cmd.Flags().GetBool("attach")

	var mediaPath string
	if len(args) == 1 {
		mediaPath = args[0]
	}

	var st *session.State
	if mediaPath == "" || attach {
		s, err := loadSession()
		if err != nil {
			return err
		}
		st = s
	}
	if mediaPath == "" {
		if st.Video == "" {
			return fmt.Errorf("no media file given and the session has none")
		}
		mediaPath = st.Video
	}

	ffprobePath, err := ffmpeg.FFprobePath()
	if err != nil {
		return fmt.Errorf("ffprobe unavailable: %w", err)
	}
	logger.Debugw("Using ffprobe", "path", ffprobePath)

	info, err := video.NewProcessor(ffprobePath).GetInfo(cmd.Context(), mediaPath)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	if attach {
		abs, err := filepath.Abs(mediaPath)
		if err != nil {
			return err
		}
		st.Video = abs
		if err := saveSession(st); err != nil {
			return err
		}
		logger.Infow("Attached media", "media", abs)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Media: %s\n", info.Path)
	fmt.Fprintf(out, "  Duration: %s\n", timecode.Format(info.Seconds(), timecode.PrecisionCentiseconds))
	if info.Codec != "" {
		fmt.Fprintf(out, "  Video: %s %dx%d @ %.2f fps\n", info.Codec, info.Width, info.Height, info.FrameRate)
	}
	fmt.Fprintf(out, "  Audio: %t\n", info.HasAudio)
	return nil
}
