package cli

import (
	"encoding/json"
	"fmt"

	"github.com/mgpai22/lyricsync/internal/highlight"
	"github.com/mgpai22/lyricsync/internal/preview"
	"github.com/mgpai22/lyricsync/internal/timing"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the active lines and highlights at a playback time",
	Long: `Resolve the lyrics at one playback time and print the frame the
preview would draw, or its JSON form with --json.

Examples:
  lyricsync resolve --at 00:52.30
  lyricsync resolve --at 10.25 --staged --json`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().String("at", "", "Playback time (MM:SS.cc or seconds)")
	resolveCmd.Flags().Bool("staged", false, "Resolve the staged lyrics instead of the committed ones")
	resolveCmd.Flags().Bool("json", false, "Print the frame as JSON")
	_ = resolveCmd.MarkFlagRequired("at")
}

// JSON view of a frame
type frameJSON struct {
	Time    float64    `json:"time"`
	Active  []int      `json:"active"`
	Primary int        `json:"primary"`
	Lines   []lineJSON `json:"lines"`
}

type lineJSON struct {
	Index                 int          `json:"index"`
	Kind                  string       `json:"kind"`
	Part                  string       `json:"part"`
	Translation           string       `json:"translation,omitempty"`
	Phrases               []phraseJSON `json:"phrases"`
	Background            []phraseJSON `json:"background,omitempty"`
	BackgroundTranslation string       `json:"background_translation,omitempty"`
}

type phraseJSON struct {
	Text     string  `json:"text"`
	Progress float64 `json:"progress"`
	Regime   string  `json:"regime"`
	CSS      string  `json:"css"`
}

func newFrameJSON(f preview.Frame) frameJSON {
	out := frameJSON{
		Time:    f.Time,
		Active:  f.Active,
		Primary: f.Primary,
		Lines:   make([]lineJSON, len(f.Lines)),
	}
	for i, ls := range f.Lines {
		out.Lines[i] = lineJSON{
			Index:       ls.Index,
			Kind:        string(ls.Kind),
			Part:        string(ls.Part),
			Translation: ls.Translation,
			Phrases:     phrasesJSON(ls.Main, f.Highlights[i].Main),
		}
		if ls.Background != nil {
			out.Lines[i].Background = phrasesJSON(*ls.Background, f.Highlights[i].Background)
			out.Lines[i].BackgroundTranslation = ls.BackgroundTranslation
		}
	}
	return out
}

func phrasesJSON(ts timing.TrackState, hl []highlight.Params) []phraseJSON {
	out := make([]phraseJSON, len(ts.Phrases))
	for i, p := range ts.Phrases {
		out[i] = phraseJSON{
			Text:     p.Text,
			Progress: hl[i].Progress,
			Regime:   hl[i].Regime.String(),
			CSS:      hl[i].CSS(),
		}
	}
	return out
}

func runResolve(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	staged, _ := cmd.Flags().GetBool("staged")
	asJSON, _ := cmd.Flags().GetBool("json")

	t, err := parseTime(at)
	if err != nil {
		return err
	}

	st, err := loadSession()
	if err != nil {
		return err
	}

	c := st.Buffer.Committed()
	if staged {
		c = st.Buffer.Staged()
	}

	frame := preview.Build(timing.New(c), t)
	logger.Debugw("Resolved frame",
		"time", t,
		"active", frame.Active,
		"primary", frame.Primary,
	)

	if asJSON {
		data, err := json.MarshalIndent(newFrameJSON(frame), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode frame: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	r := preview.NewRenderer(cmd.OutOrStdout(), cfg.Preview.Width)
	fmt.Fprintln(cmd.OutOrStdout(), r.Render(frame))
	return nil
}
