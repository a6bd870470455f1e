package app

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
	"github.com/blackwell-systems/qacapture/internal/records"
)

var (
	shotsTest   string
	shotsUnset  bool
	shotsForget bool

	screenshotsCmd = &cobra.Command{
		Use:     "screenshots",
		Aliases: []string{"shots"},
		Short:   "Manage a test's screenshots",
		Long: `Lists and edits the screenshots of a test (default: the active test).

The order shown is the order screenshots are printed in the report.`,
		Args: cobra.NoArgs,
		RunE: withApp(runScreenshotsList),
	}

	shotsRmCmd = &cobra.Command{
		Use:   "rm <file>...",
		Short: "Remove screenshots from the record and delete their files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  withApp(runScreenshotsRm),
	}

	shotsMvCmd = &cobra.Command{
		Use:   "mv <file> <position>",
		Short: "Move a screenshot to a 1-based position in the print order",
		Args:  cobra.ExactArgs(2),
		RunE:  withApp(runScreenshotsMv),
	}

	shotsEditedCmd = &cobra.Command{
		Use:   "edited <file>",
		Short: "Mark a screenshot as edited (annotated outside qacapture)",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runScreenshotsEdited),
	}
)

func init() {
	screenshotsCmd.PersistentFlags().StringVarP(&shotsTest, "test", "t", "", "test id (default: the active test)")
	shotsRmCmd.Flags().BoolVar(&shotsForget, "keep-file", false, "only drop the entry, leave the file on disk")
	shotsEditedCmd.Flags().BoolVar(&shotsUnset, "unset", false, "clear the edited mark")

	screenshotsCmd.AddCommand(shotsRmCmd, shotsMvCmd, shotsEditedCmd)
	RootCmd.AddCommand(screenshotsCmd)
}

func runScreenshotsList(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(shotsTest)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderTestDetail(rec, a.Clock.Now()))
	return nil
}

func runScreenshotsRm(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(shotsTest)
	if err != nil {
		return err
	}

	remove := a.Records.RemoveScreenshot
	if shotsForget {
		remove = a.Records.ForgetScreenshot
	}

	out := cmd.OutOrStdout()
	for _, name := range args {
		ok, err := remove(rec.ID, name)
		if err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
		if !ok {
			fmt.Fprintf(out, "⚠ %s is not in test %s\n", name, output.ShortID(rec.ID))
			continue
		}
		fmt.Fprintf(out, "✓ Removed %s\n", name)
	}
	return nil
}

func runScreenshotsMv(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(shotsTest)
	if err != nil {
		return err
	}
	pos, err := strconv.Atoi(args[1])
	if err != nil || pos < 1 || pos > len(rec.Screenshots) {
		return fmt.Errorf("position must be between 1 and %d", len(rec.Screenshots))
	}

	order, ok := moveTo(rec.Screenshots, args[0], pos-1)
	if !ok {
		return fmt.Errorf("%s is not in test %s", args[0], output.ShortID(rec.ID))
	}
	if _, err := a.Records.ReorderScreenshots(rec.ID, order); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Moved %s to position %d\n", args[0], pos)
	return nil
}

// moveTo returns the filenames of shots with name moved to index to.
func moveTo(shots []records.Screenshot, name string, to int) ([]string, bool) {
	order := make([]string, 0, len(shots))
	found := false
	for _, s := range shots {
		if s.Filename == name {
			found = true
			continue
		}
		order = append(order, s.Filename)
	}
	if !found {
		return nil, false
	}
	order = append(order, "")
	copy(order[to+1:], order[to:])
	order[to] = name
	return order, true
}

func runScreenshotsEdited(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(shotsTest)
	if err != nil {
		return err
	}

	edited := !shotsUnset
	ok, err := a.Records.UpdateScreenshot(rec.ID, args[0], records.ScreenshotUpdate{Edited: &edited})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not in test %s", args[0], output.ShortID(rec.ID))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s edited=%t\n", args[0], edited)
	return nil
}
