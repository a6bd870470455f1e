package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/config"
	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
	"github.com/blackwell-systems/qacapture/internal/records"
)

var (
	newHeader    headerFlags
	updateHeader headerFlags
	updateNotes  string
	updateStatus string
	deleteForce  bool

	newCmd = &cobra.Command{
		Use:   "new",
		Short: "Start a new test record and make it active",
		Long: `Creates an in-progress test record with its own screenshot folder and
makes it the active test for later captures.

Header fields can be filled in now or later with 'qacapture update'. The
hierarchical layout needs system, cycle, case, type and type value up front
because they name the folder.`,
		Example: `  qacapture new --system Billing --cycle C1 --case TC-7 --type regression --type-value R-42`,
		Args:    cobra.NoArgs,
		RunE:    withApp(runNew),
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List test records, most recently updated first",
		Args:  cobra.NoArgs,
		RunE:  withApp(runList),
	}

	showCmd = &cobra.Command{
		Use:   "show [id]",
		Short: "Show one test record (default: the active test)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withApp(runShow),
	}

	continueCmd = &cobra.Command{
		Use:   "continue [id]",
		Short: "Make an existing test the active one",
		Long: `Makes a test record active so captures go into its folder.

Without an id an interactive picker lists every record.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(runContinue),
	}

	updateCmd = &cobra.Command{
		Use:   "update [id]",
		Short: "Edit a test's header, notes or status",
		Long: `Updates the header fields, notes or status of a test (default: the
active test). Only the flags given are changed.

The record's folder never moves. For records in the hierarchical layout use
'qacapture legacy rename' to move the folder along with the header.`,
		Example: `  # Record the verdict
  qacapture update --name pass

  # Add notes to a specific test
  qacapture update 3f2a --notes "login fails on second attempt"`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(runUpdate),
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a test record and its folder",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runDelete),
	}

	validateCmd = &cobra.Command{
		Use:   "validate [id]",
		Short: "Check which header fields are still missing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withApp(runValidate),
	}
)

func init() {
	newHeader.bind(newCmd)
	updateHeader.bind(updateCmd)
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "free-form notes printed in the report")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "in-progress or completed")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "do not ask for confirmation")

	RootCmd.AddCommand(newCmd, listCmd, showCmd, continueCmd, updateCmd, deleteCmd, validateCmd)
}

func runNew(cmd *cobra.Command, a *evidence.App, args []string) error {
	var h records.HeaderData
	newHeader.apply(cmd, &h)

	rec, err := a.CreateTest(h)
	if err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created test %s\n", output.ShortID(rec.ID))
	fmt.Fprintf(out, "  Folder: %s\n", rec.FolderPath)
	if v := records.ValidateForSave(rec.HeaderData); !v.IsValid {
		fmt.Fprint(out, "  "+output.RenderValidation("save", v))
	}
	return nil
}

func runList(cmd *cobra.Command, a *evidence.App, args []string) error {
	tests := a.Records.GetAllTests()
	if len(tests) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tests yet. Run 'qacapture new' to start one.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderTestTable(tests, a.Clock.Now()))
	return nil
}

func runShow(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(testArg(args))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderTestDetail(rec, a.Clock.Now()))
	return nil
}

func runContinue(cmd *cobra.Command, a *evidence.App, args []string) error {
	var rec *records.TestRecord
	if len(args) > 0 {
		r, err := a.ResolveTest(args[0])
		if err != nil {
			return err
		}
		rec = r
	} else {
		tests := a.Records.GetAllTests()
		if len(tests) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tests yet. Run 'qacapture new' to start one.")
			return nil
		}
		chosen, err := output.PickTest(tests, a.Clock.Now(), cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if chosen == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing selected.")
			return nil
		}
		rec = chosen
	}

	if err := a.Prefs.SetActiveTest(rec.ID); err != nil {
		return fmt.Errorf("failed to set active test: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Active test: %s (%s)\n", output.ShortID(rec.ID), rec.FolderPath)
	return nil
}

func runUpdate(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(testArg(args))
	if err != nil {
		return err
	}

	var upd records.TestUpdate
	h := rec.HeaderData
	if updateHeader.apply(cmd, &h) {
		upd.HeaderData = &h
	}
	if cmd.Flags().Changed("notes") {
		upd.Notes = &updateNotes
	}
	if cmd.Flags().Changed("status") {
		status := records.Status(updateStatus)
		upd.Status = &status
	}
	if upd == (records.TestUpdate{}) {
		return errors.New("nothing to update (see 'qacapture update --help')")
	}

	ok, err := a.Records.UpdateTest(rec.ID, upd)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", evidence.ErrTestNotFound, rec.ID)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Updated test %s\n", output.ShortID(rec.ID))
	if upd.HeaderData != nil && a.Config.Layout == config.LayoutHierarchical {
		fmt.Fprintln(out, "  Folder unchanged. Run 'qacapture legacy rename' to move it.")
	}
	return nil
}

func runDelete(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !deleteForce {
		question := fmt.Sprintf("Delete test %s and %d screenshot(s) in %s?", output.ShortID(rec.ID), len(rec.Screenshots), rec.FolderPath)
		if !confirm(cmd.InOrStdin(), out, question) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if _, err := a.DeleteTest(rec.ID); err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}
	fmt.Fprintf(out, "✓ Deleted test %s\n", output.ShortID(rec.ID))
	return nil
}

func runValidate(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(testArg(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderValidation("save", records.ValidateForSave(rec.HeaderData)))
	fmt.Fprint(out, output.RenderValidation("export", records.ValidateForPDF(rec.HeaderData)))
	return nil
}
