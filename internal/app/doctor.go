package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
)

var (
	doctorFix bool

	doctorCmd = &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose drift between records, folders and the capture log",
		Long: `Runs diagnostic checks on the evidence store.

Checks:
  • Test database and preferences database are readable
  • Every test folder exists
  • Every listed screenshot file exists
  • No images sit in a folder without being listed
  • The capture log has no entries for deleted tests

Exits 1 on critical issues and 2 when there are only warnings.`,
		Args: cobra.NoArgs,
		RunE: withApp(runDoctor),
	}
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "drop missing screenshots and purge orphan log entries")
	RootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, a *evidence.App, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Running qacapture diagnostics...")
	fmt.Fprintln(out)

	if _, err := os.Stat(a.Records.Path()); err != nil {
		fmt.Fprintln(out, "✗ Test database not readable:", err)
		return &exitError{code: 1, msg: "diagnostics failed"}
	}
	fmt.Fprintf(out, "✓ Test database: %s (%d tests)\n", a.Records.Path(), len(a.Records.GetAllTests()))

	count, err := a.Prefs.GetEventCount()
	if err != nil {
		fmt.Fprintln(out, "✗ Preferences database not readable:", err)
		return &exitError{code: 1, msg: "diagnostics failed"}
	}
	fmt.Fprintf(out, "✓ Capture log: %d entries\n", count)

	issues, err := a.Check(doctorFix)
	if err != nil {
		return err
	}

	critical, warnings := 0, 0
	for _, issue := range issues {
		mark := "⚠"
		if issue.Severity == evidence.Critical {
			mark = "✗"
		}
		fmt.Fprintf(out, "%s [%s] %s\n", mark, output.ShortID(issue.TestID), issue.Message)
		switch {
		case issue.Fixed:
			fmt.Fprintln(out, "  Fixed")
			continue
		case issue.Action != "":
			fmt.Fprintf(out, "  Action: %s\n", issue.Action)
		}
		if issue.Severity == evidence.Critical {
			critical++
		} else {
			warnings++
		}
	}

	fmt.Fprintln(out)
	switch {
	case critical > 0:
		fmt.Fprintf(out, "Found %d critical issue(s) and %d warning(s).\n", critical, warnings)
		return &exitError{code: 1, msg: "diagnostics failed"}
	case warnings > 0:
		fmt.Fprintf(out, "Found %d warning(s).\n", warnings)
		return &exitError{code: 2, msg: "diagnostics found warnings"}
	}
	fmt.Fprintln(out, "✓ All checks passed!")
	return nil
}
