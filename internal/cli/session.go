package cli

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/mgpai22/lyricsync/internal/fsutil"
	"github.com/mgpai22/lyricsync/internal/lyric"
	"github.com/mgpai22/lyricsync/internal/session"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [lyrics.json]",
	Short: "Start an editing session",
	Long: `Start an editing session from a lyric JSON file, or from the
bundled sample lyrics when no file is given.

Examples:
  lyricsync init
  lyricsync init song.json --video dQw4w9WgXcQ
  lyricsync init song.json --media song.mp4 --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var importCmd = &cobra.Command{
	Use:   "import [lyrics.json]",
	Short: "Replace the session lyrics with a JSON file",
	Long: `Replace both the committed and the staged lyrics with the contents
of a JSON file. A file that is not a JSON array of lines is rejected and
the session is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the lyrics as JSON",
	Long: `Write the committed lyrics, or the staged lyrics with --staged, as
JSON to --output, the clipboard, or stdout.

Examples:
  lyricsync export -o song.json
  lyricsync export --staged --clipboard`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	initCmd.Flags().String("video", "", "Video ID the lyrics belong to")
	initCmd.Flags().String("media", "", "Local audio or video file used by preview")
	initCmd.Flags().Bool("force", false, "Overwrite an existing session")

	exportCmd.Flags().Bool("staged", false, "Export the staged lyrics instead of the committed ones")
	exportCmd.Flags().Bool("clipboard", false, "Copy the JSON to the clipboard")
}

func runInit(cmd *cobra.Command, args []string) error {
	videoID, _ := cmd.Flags().GetString("video")
	media, _ := cmd.Flags().GetString("media")
	force, _ := cmd.Flags().GetBool("force")

	if videoID == "" {
		videoID = cfg.DefaultVideoID
	}

	path := sessionFile()
	if fsutil.FileExists(path) && !force {
		return fmt.Errorf("session already exists at %s: use --force to overwrite", path)
	}

	lyrics := lyric.Default()
	source := "sample lyrics"
	if len(args) == 1 {
		c, err := lyric.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to read lyrics: %w", err)
		}
		lyrics = c
		source = args[0]
	}

	if media != "" {
		if !fsutil.FileExists(media) {
			return fmt.Errorf("media file not found: %s", media)
		}
		if abs, err := filepath.Abs(media); err == nil {
			media = abs
		}
	}

	st := session.New(videoID, lyrics)
	st.Video = media

	logger.Infow("Creating session",
		"path", path,
		"video_id", videoID,
		"source", source,
		"lines", len(lyrics),
	)
	if err := saveSession(st); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session created: %s\n", path)
	fmt.Fprintf(cmd.OutOrStdout(), "  Lines: %d\n", len(lyrics))
	if videoID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  Video: %s\n", videoID)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	st, err := loadSession()
	if err != nil {
		return err
	}

	c, err := lyric.Open(args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	st.Buffer.Replace(c)
	if err := saveSession(st); err != nil {
		return err
	}

	logger.Infow("Imported lyrics", "file", args[0], "lines", len(c))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d lines from %s\n", len(c), args[0])
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	staged, _ := cmd.Flags().GetBool("staged")
	toClipboard, _ := cmd.Flags().GetBool("clipboard")
	outputPath, _ := cmd.Flags().GetString("output")

	st, err := loadSession()
	if err != nil {
		return err
	}

	c := st.Buffer.Committed()
	if staged {
		c = st.Buffer.Staged()
	}

	data, err := lyric.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode lyrics: %w", err)
	}

	switch {
	case outputPath != "":
		if err := fsutil.WriteFileAtomic(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		absOutput, _ := filepath.Abs(outputPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Lyrics exported: %s\n", absOutput)
	case toClipboard:
		if err := clipboard.WriteAll(string(data)); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Copied %d lines to the clipboard\n", len(c))
	default:
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return err
		}
	}

	logger.Debugw("Exported lyrics", "staged", staged, "lines", len(c))
	return nil
}
