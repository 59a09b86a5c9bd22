package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/mgpai22/lyricsync/internal/config"
	"github.com/mgpai22/lyricsync/internal/logging"
	"github.com/mgpai22/lyricsync/internal/session"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	sessionPath string
	logger      *logging.Logger
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lyricsync",
	Short: "Karaoke lyric timing editor and preview",
	Long: `Lyricsync edits word-timed karaoke lyrics and previews them
against a playback clock.

Lyrics are kept in a session with a committed and a staged copy. Edits
go to the staged copy until they are committed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warnw("Failed to load .env file", "error", err)
		}

		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c
		logger.Debugw("Loaded configuration",
			"path", cfg.Path(),
			"session", sessionFile(),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file path (default lyricsync.yaml)")
	rootCmd.PersistentFlags().
		StringVarP(&sessionPath, "session", "s", "", "Session file path (overrides config)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}

func sessionFile() string {
	if sessionPath != "" {
		return sessionPath
	}
	if cfg != nil && cfg.SessionPath != "" {
		return cfg.SessionPath
	}
	return config.DefaultSessionPath
}

func loadSession() (*session.State, error) {
	path := sessionFile()
	st, err := session.Load(path)
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("no session at %s: run \"lyricsync init\" first", path)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func saveSession(st *session.State) error {
	path := sessionFile()
	if err := st.Save(path); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	logger.Debugw("Saved session", "path", path)
	return nil
}
