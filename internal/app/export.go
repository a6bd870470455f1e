package app

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Generate the PDF evidence report and complete the test",
	Long: `Renders a PDF with the header, notes and every screenshot in print order
into the test's folder (default: the active test), then marks the test
completed.

All header fields, including the verdict (--name), must be filled in.
Screenshots whose files have gone missing are left out and listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(runExport),
}

func init() {
	RootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(testArg(args))
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = output.NewProgress(total, "Rendering pages", cmd.ErrOrStderr())
		}
		bar.Set(done)
	}

	result, err := a.Exporter.Export(ctx, rec.ID, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Report written: %s (%d screenshot(s))\n", result.Path, result.Pages)
	for _, name := range result.Skipped {
		fmt.Fprintf(out, "⚠ Missing file left out: %s\n", name)
	}
	return nil
}
