package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
)

var (
	logAll bool

	logCmd = &cobra.Command{
		Use:   "log [id]",
		Short: "Show the capture log of a test",
		Long: `Shows when each screenshot of a test (default: the active test) was taken,
on which display and with which region. The log outlives screenshots removed
from the record and is dropped with the test.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(runLog),
	}
)

func init() {
	logCmd.Flags().BoolVarP(&logAll, "all", "a", false, "show captures of every test")
	RootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, a *evidence.App, args []string) error {
	testID := ""
	if !logAll {
		rec, err := a.ResolveTest(testArg(args))
		if err != nil {
			return err
		}
		testID = rec.ID
	}

	events, err := a.Prefs.ListCaptureEvents(testID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderCaptureLog(events, a.Clock.Now()))
	return nil
}
