package cli

import (
	"fmt"
	"math"

	"github.com/mgpai22/lyricsync/internal/lyric"
	"github.com/mgpai22/lyricsync/internal/session"
	"github.com/mgpai22/lyricsync/internal/timecode"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Insert a placeholder line at a playback time",
	Long: `Insert a placeholder line stamped at --at, right after the line that
is current at that time.

Examples:
  lyricsync add --at 00:52.30
  lyricsync add --at 95.5`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [index]",
	Short: "Delete a staged line",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var stampCmd = &cobra.Command{
	Use:   "stamp [index]",
	Short: "Set the start time of a line",
	Long: `Set the start time of a line, or of its background voice with
--background, to the playback time given by --at.

Examples:
  lyricsync stamp 3 --at 01:02.45
  lyricsync stamp 3 --at 62.9 --background`,
	Args: cobra.ExactArgs(1),
	RunE: runStamp,
}

var addPhraseCmd = &cobra.Command{
	Use:   "add-phrase [index]",
	Short: "Append an empty phrase to a line",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddPhrase,
}

var deletePhraseCmd = &cobra.Command{
	Use:   "delete-phrase [index] [phrase]",
	Short: "Delete a phrase from a line",
	Args:  cobra.ExactArgs(2),
	RunE:  runDeletePhrase,
}

var movePhraseCmd = &cobra.Command{
	Use:   "move-phrase [index] [from] [to]",
	Short: "Move a phrase within a line",
	Args:  cobra.ExactArgs(3),
	RunE:  runMovePhrase,
}

var setCmd = &cobra.Command{
	Use:   "set [index]",
	Short: "Edit fields of a staged line",
	Long: `Edit fields of a staged line. Only the flags given are changed.

Phrase fields apply to the phrase selected with --phrase.

Examples:
  lyricsync set 2 --translation "Top speed"
  lyricsync set 2 --part secondary
  lyricsync set 2 --phrase 0 --text "最高" --duration 45 --kiai`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(stampCmd)
	rootCmd.AddCommand(addPhraseCmd)
	rootCmd.AddCommand(deletePhraseCmd)
	rootCmd.AddCommand(movePhraseCmd)
	rootCmd.AddCommand(setCmd)

	addCmd.Flags().String("at", "", "Playback time (MM:SS.cc or seconds)")
	_ = addCmd.MarkFlagRequired("at")

	stampCmd.Flags().String("at", "", "Playback time (MM:SS.cc or seconds)")
	_ = stampCmd.MarkFlagRequired("at")

	for _, c := range []*cobra.Command{stampCmd, addPhraseCmd, deletePhraseCmd, movePhraseCmd, setCmd} {
		c.Flags().BoolP("background", "b", false, "Edit the background voice")
	}

	setCmd.Flags().String("translation", "", "Line translation")
	setCmd.Flags().String("kind", "", "Line kind (normal, prelude, interlude, end)")
	setCmd.Flags().String("part", "", "Vocal part (primary, secondary, together)")
	setCmd.Flags().Int("phrase", -1, "Phrase index for the phrase fields")
	setCmd.Flags().String("text", "", "Phrase text")
	setCmd.Flags().Float64("duration", 0, "Phrase duration in centiseconds")
	setCmd.Flags().Bool("kiai", false, "Emphasize the phrase")
	setCmd.Flags().String("pronunciation", "", "Phrase pronunciation")
}

// editSession loads the session, applies edit and saves the result.
func editSession(edit func(st *session.State) error) error {
	st, err := loadSession()
	if err != nil {
		return err
	}
	if err := edit(st); err != nil {
		return err
	}
	return saveSession(st)
}

func runAdd(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	t, err := parseTime(at)
	if err != nil {
		return err
	}

	var index int
	err = editSession(func(st *session.State) error {
		index = st.Buffer.AddLine(t)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Infow("Added line", "index", index, "time", t)
	fmt.Fprintf(cmd.OutOrStdout(), "Added line %d at %s\n",
		index, timecode.Format(t, timecode.PrecisionCentiseconds))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	index, err := parseIndex("index", args[0])
	if err != nil {
		return err
	}

	err = editSession(func(st *session.State) error {
		return st.Buffer.DeleteLine(index)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted line %d\n", index)
	return nil
}

func runStamp(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	background, _ := cmd.Flags().GetBool("background")

	index, err := parseIndex("index", args[0])
	if err != nil {
		return err
	}
	t, err := parseTime(at)
	if err != nil {
		return err
	}

	err = editSession(func(st *session.State) error {
		return st.Buffer.StampLineTime(index, background, t)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Line %d starts at %s\n",
		index, timecode.Format(t, timecode.PrecisionCentiseconds))
	return nil
}

func runAddPhrase(cmd *cobra.Command, args []string) error {
	background, _ := cmd.Flags().GetBool("background")
	index, err := parseIndex("index", args[0])
	if err != nil {
		return err
	}

	err = editSession(func(st *session.State) error {
		return st.Buffer.AddPhrase(index, background)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added phrase to line %d\n", index)
	return nil
}

func runDeletePhrase(cmd *cobra.Command, args []string) error {
	background, _ := cmd.Flags().GetBool("background")
	idx, err := parseIndexes([]string{"index", "phrase"}, args)
	if err != nil {
		return err
	}

	err = editSession(func(st *session.State) error {
		return st.Buffer.DeletePhrase(idx[0], background, idx[1])
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted phrase %d of line %d\n", idx[1], idx[0])
	return nil
}

func runMovePhrase(cmd *cobra.Command, args []string) error {
	background, _ := cmd.Flags().GetBool("background")
	idx, err := parseIndexes([]string{"index", "from", "to"}, args)
	if err != nil {
		return err
	}

	err = editSession(func(st *session.State) error {
		return st.Buffer.MovePhrase(idx[0], background, idx[1], idx[2])
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Moved phrase %d to %d in line %d\n", idx[1], idx[2], idx[0])
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	index, err := parseIndex("index", args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	background, _ := flags.GetBool("background")
	phrase, _ := flags.GetInt("phrase")

	phraseFlags := []string{"text", "duration", "kiai", "pronunciation"}
	for _, name := range phraseFlags {
		if flags.Changed(name) && phrase < 0 {
			return fmt.Errorf("--%s requires --phrase", name)
		}
	}

	return editSession(func(st *session.State) error {
		staged := st.Buffer.Staged()
		if index < 0 || index >= len(staged) {
			return fmt.Errorf("line %d does not exist (%d lines)", index, len(staged))
		}
		line := staged[index]

		if flags.Changed("kind") {
			kind, _ := flags.GetString("kind")
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			line.Kind = k
		}
		if flags.Changed("part") {
			part, _ := flags.GetString("part")
			p, err := parsePart(part)
			if err != nil {
				return err
			}
			line.Part = p
		}

		tr := &line.Track
		if background {
			if line.Background == nil {
				return fmt.Errorf("line %d has no background voice", index)
			}
			tr = line.Background
		}

		if flags.Changed("translation") {
			tr.Translation, _ = flags.GetString("translation")
		}

		if phrase >= 0 {
			if phrase >= len(tr.Phrases) {
				return fmt.Errorf("phrase %d does not exist in line %d (%d phrases)", phrase, index, len(tr.Phrases))
			}
			p := &tr.Phrases[phrase]
			if flags.Changed("text") {
				p.Text, _ = flags.GetString("text")
			}
			if flags.Changed("duration") {
				d, _ := flags.GetFloat64("duration")
				if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
					return fmt.Errorf("duration must be a non-negative number, got %g", d)
				}
				p.Duration = d
			}
			if flags.Changed("kiai") {
				p.Emphasized, _ = flags.GetBool("kiai")
			}
			if flags.Changed("pronunciation") {
				p.Pronunciation, _ = flags.GetString("pronunciation")
			}
		}

		if err := st.Buffer.UpdateLine(index, line); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated line %d\n", index)
		return nil
	})
}

func parseKind(s string) (lyric.Kind, error) {
	switch k := lyric.Kind(s); k {
	case lyric.KindNormal, lyric.KindPrelude, lyric.KindInterlude, lyric.KindEnd:
		return k, nil
	}
	return "", fmt.Errorf("unknown line kind %q: use normal, prelude, interlude or end", s)
}

func parsePart(s string) (lyric.VocalPart, error) {
	switch p := lyric.VocalPart(s); p {
	case lyric.PartPrimary, lyric.PartSecondary, lyric.PartTogether:
		return p, nil
	}
	return "", fmt.Errorf("unknown vocal part %q: use primary, secondary or together", s)
}
