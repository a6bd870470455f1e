package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/capture"
	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
	"github.com/blackwell-systems/qacapture/internal/selector"
)

var (
	captureDisplay   int
	captureArea      string
	captureSavedArea bool
	captureSelect    string

	captureCmd = &cobra.Command{
		Use:   "capture [id]",
		Short: "Take a screenshot into a test's folder",
		Long: `Captures a display into the next screenshot-NNN.png of a test
(default: the active test) and appends it to the record.

Without flags the whole selected display is captured. A region can be given
directly with --area, reused with --saved-area, or selected with --select,
which replays recorded pointer events through the region selector over a
single grab of the display. Script lines look like:

  down 100 80
  move 400 300
  up 400 300
  confirm

--area is in screenshot pixels; script coordinates are display points and
are scaled to pixels on confirm.`,
		Example: `  # Whole display
  qacapture capture

  # A fixed region on the second display
  qacapture capture --display 1 --area 0,0,800,600

  # Replay a selection gesture
  qacapture capture --select gesture.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(runCapture),
	}

	displaysCmd = &cobra.Command{
		Use:   "displays",
		Short: "List attached displays",
		Args:  cobra.NoArgs,
		RunE:  withApp(runDisplays),
	}
)

func init() {
	captureCmd.Flags().IntVarP(&captureDisplay, "display", "d", 0, "display id (default: the selected display)")
	captureCmd.Flags().StringVar(&captureArea, "area", "", "region as x,y,width,height")
	captureCmd.Flags().BoolVar(&captureSavedArea, "saved-area", false, "reuse the last captured region")
	captureCmd.Flags().StringVar(&captureSelect, "select", "", "selection script file ('-' for stdin)")
	captureCmd.MarkFlagsMutuallyExclusive("area", "saved-area", "select")

	RootCmd.AddCommand(captureCmd, displaysCmd)
}

func runCapture(cmd *cobra.Command, a *evidence.App, args []string) error {
	var override *int
	if cmd.Flags().Changed("display") {
		override = &captureDisplay
	}
	displayID := a.DisplayID(override)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	id := testArg(args)

	var (
		res *capture.Result
		err error
	)
	switch {
	case captureArea != "":
		area, perr := parseArea(captureArea)
		if perr != nil {
			return perr
		}
		res, err = a.CaptureArea(ctx, id, displayID, area)
	case captureSavedArea:
		area, ok := a.AreaFromSaved()
		if !ok {
			return errors.New("no saved area yet (capture with --area or --select first)")
		}
		res, err = a.CaptureArea(ctx, id, displayID, selector.FromImage(area))
	case captureSelect != "":
		res, err = runSelection(ctx, cmd, a, id, displayID)
	default:
		res, err = a.CaptureFullscreen(ctx, id, displayID)
	}
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", res.Filepath)
	return nil
}

// runSelection opens the selector over one grab and feeds it the script.
func runSelection(ctx context.Context, cmd *cobra.Command, a *evidence.App, id string, displayID int) (*capture.Result, error) {
	var in io.Reader = cmd.InOrStdin()
	if captureSelect != "-" {
		f, err := os.Open(captureSelect)
		if err != nil {
			return nil, fmt.Errorf("failed to open selection script: %w", err)
		}
		defer f.Close()
		in = f
	}
	events, err := selector.ParseScript(in)
	if err != nil {
		return nil, err
	}

	sel, err := a.BeginAreaSelection(ctx, id, displayID)
	if err != nil {
		return nil, err
	}
	state := sel.Session.Replay(events)
	if !state.Terminal() {
		sel.Session.Escape()
		return nil, fmt.Errorf("selection script ended while %s", state)
	}

	res, err := sel.Result()
	if errors.Is(err, evidence.ErrSelectionCancelled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Selection cancelled. Nothing saved.")
		return nil, nil
	}
	return res, err
}

func runDisplays(cmd *cobra.Command, a *evidence.App, args []string) error {
	displays, selected, err := a.Displays()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderDisplayTable(displays, selected))
	return nil
}
