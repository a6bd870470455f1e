package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
	"github.com/blackwell-systems/qacapture/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [id]",
	Short: "Keep a test's record in step with its folder",
	Long: `Watches the screenshot folder of a test (default: the active test) in
the foreground. Screenshots deleted or renamed outside qacapture are dropped
from the record so the report never lists a missing file.

Entries already missing when the watch starts are dropped first.`,
	Example: `  # Run in foreground (Ctrl+C to stop)
  qacapture watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(runWatch),
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(testArg(args))
	if err != nil {
		return err
	}

	w, err := watcher.New(a.Records, rec.ID, a.Logger.With().Str("component", "watcher").Logger())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	w.OnForget = func(filename string) {
		fmt.Fprintf(out, "⚠ %s was removed from disk and dropped from the record\n", filename)
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	fmt.Fprintf(out, "✓ Watching %s for test %s\n", w.Folder(), output.ShortID(rec.ID))
	fmt.Fprintln(out, "Press Ctrl+C to stop.")

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-ctx.Done()

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}
	fmt.Fprintln(out, "Watch stopped")
	return nil
}
