package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mgpai22/lyricsync/internal/buffer"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show staged changes against the committed lyrics",
	Args:  cobra.NoArgs,
	RunE:  runDiff,
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the staged lyrics",
	Args:  cobra.NoArgs,
	RunE:  runCommit,
}

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Drop staged changes and return to the committed lyrics",
	Args:  cobra.NoArgs,
	RunE:  runDiscard,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(discardCmd)
}

func colorText(text string, c color.Attribute) string {
	return color.New(c).SprintFunc()(text)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := loadSession()
	if err != nil {
		return err
	}

	committed, staged := st.Buffer.Snapshot()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Session: %s\n", sessionFile())
	if st.VideoID != "" {
		fmt.Fprintf(out, "  Video: %s\n", st.VideoID)
	}
	if st.Video != "" {
		fmt.Fprintf(out, "  Media: %s\n", st.Video)
	}
	fmt.Fprintf(out, "  Committed lines: %d\n", len(committed))
	fmt.Fprintf(out, "  Staged lines: %d\n", len(staged))

	if st.Buffer.HasUncommittedChanges() {
		fmt.Fprintf(out, "  Changes: %s\n", colorText("uncommitted", color.FgYellow))
	} else {
		fmt.Fprintf(out, "  Changes: %s\n", colorText("none", color.FgGreen))
	}

	issues := staged.Validate()
	if len(issues) > 0 {
		fmt.Fprintf(out, "  Warnings: %d\n", len(issues))
		for _, issue := range issues {
			fmt.Fprintf(out, "    %s\n", colorText(issue.String(), color.FgYellow))
		}
	}
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	st, err := loadSession()
	if err != nil {
		return err
	}

	diff, err := st.Buffer.Diff()
	if err != nil {
		return fmt.Errorf("failed to diff lyrics: %w", err)
	}

	if !buffer.Changed(diff) {
		fmt.Fprintln(cmd.OutOrStdout(), "No staged changes")
		return nil
	}
	writeDiff(cmd.OutOrStdout(), diff)
	return nil
}

func writeDiff(w io.Writer, diff []buffer.DiffLine) {
	for _, d := range diff {
		switch d.Op {
		case buffer.OpDelete:
			fmt.Fprintln(w, colorText(d.String(), color.FgRed))
		case buffer.OpAdd:
			fmt.Fprintln(w, colorText(d.String(), color.FgGreen))
		default:
			fmt.Fprintln(w, d.String())
		}
	}
}

func runCommit(cmd *cobra.Command, args []string) error {
	st, err := loadSession()
	if err != nil {
		return err
	}

	if !st.Buffer.Commit() {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit")
		return nil
	}
	if err := saveSession(st); err != nil {
		return err
	}

	logger.Infow("Committed staged lyrics", "lines", len(st.Buffer.Committed()))
	fmt.Fprintln(cmd.OutOrStdout(), "Changes committed")
	return nil
}

func runDiscard(cmd *cobra.Command, args []string) error {
	st, err := loadSession()
	if err != nil {
		return err
	}

	if !st.Buffer.Discard() {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to discard")
		return nil
	}
	if err := saveSession(st); err != nil {
		return err
	}

	logger.Infow("Discarded staged changes")
	fmt.Fprintln(cmd.OutOrStdout(), "Changes discarded")
	return nil
}
