package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/layout"
	"github.com/blackwell-systems/qacapture/internal/output"
	"github.com/blackwell-systems/qacapture/internal/records"
)

var (
	legacyPathHeader   headerFlags
	legacyRenameHeader headerFlags

	legacyCmd = &cobra.Command{
		Use:   "legacy",
		Short: "Work with the hierarchical MM-YYYY/type/cycle/case folder scheme",
		Long: `Tools for records kept in the older hierarchical layout:

  <root>/<MM-YYYY>/<type value>/<cycle>/<case>

New records use this layout when the config sets 'layout: hierarchical'.
Folders are named from the header when the record is created and only move
when 'legacy rename' is run.`,
	}

	legacyPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the folder the hierarchical scheme would use this month",
		Args:  cobra.NoArgs,
		RunE:  withApp(runLegacyPath),
	}

	legacyCheckCmd = &cobra.Command{
		Use:   "check [id]",
		Short: "Report whether a test's folder follows the hierarchical scheme",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withApp(runLegacyCheck),
	}

	legacyRenameCmd = &cobra.Command{
		Use:   "rename [id]",
		Short: "Update header fields and move the folder to match",
		Long: `Applies the given header fields to a test (default: the active test) and
moves its hierarchical folder one level at a time to match them. A folder
from an earlier month also moves into the current month. Parent folders
left empty are removed. An existing target folder is never overwritten.`,
		Example: `  qacapture legacy rename --case TC-8`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    withApp(runLegacyRename),
	}
)

func init() {
	legacyPathHeader.bind(legacyPathCmd)
	legacyRenameHeader.bind(legacyRenameCmd)

	legacyCmd.AddCommand(legacyPathCmd, legacyCheckCmd, legacyRenameCmd)
	RootCmd.AddCommand(legacyCmd)
}

func runLegacyPath(cmd *cobra.Command, a *evidence.App, args []string) error {
	var h records.HeaderData
	legacyPathHeader.apply(cmd, &h)

	path, err := a.LegacyPath(h)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func runLegacyCheck(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(testArg(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !layout.IsValidTestFolder(rec.FolderPath) {
		fmt.Fprintf(out, "✗ %s is not a hierarchical test folder\n", rec.FolderPath)
		return &exitError{code: 1, msg: "not a hierarchical folder"}
	}
	fmt.Fprintf(out, "✓ %s\n", rec.FolderPath)

	change, pending := layout.DetectChangedLevel(rec.HeaderData, rec.HeaderData, rec.FolderPath, a.Clock.Now())
	if pending {
		fmt.Fprintf(out, "  %s folder %s is not the current %s (%s); 'legacy rename' would move it\n",
			change.Level, change.OldName, change.Level, change.NewName)
	}
	return nil
}

func runLegacyRename(cmd *cobra.Command, a *evidence.App, args []string) error {
	rec, err := a.ResolveTest(testArg(args))
	if err != nil {
		return err
	}

	h := rec.HeaderData
	legacyRenameHeader.apply(cmd, &h)

	folder, err := a.RenameLegacyFolder(rec.ID, h)
	if errors.Is(err, layout.ErrTargetExists) {
		return fmt.Errorf("%w (folder stays at %s)", err, folder)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Test %s is in %s\n", output.ShortID(rec.ID), folder)
	return nil
}
