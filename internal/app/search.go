package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
	"github.com/blackwell-systems/qacapture/internal/records"
)

var (
	searchQuery records.Query
	searchFrom  string
	searchTo    string
	searchState string

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Find tests by header fields, status and dates",
		Long: `Lists tests matching every given filter. Text filters are exact and
case-sensitive. --from and --to (YYYY-MM-DD, inclusive) match tests that were
alive at any point in the range, from creation to last update.`,
		Example: `  qacapture search --system Billing --status completed
  qacapture search --from 2024-05-01 --to 2024-05-31`,
		Args: cobra.NoArgs,
		RunE: withApp(runSearch),
	}
)

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchQuery.System, "system", "", "system under test")
	f.StringVar(&searchQuery.TestType, "type", "", "test type")
	f.StringVar(&searchQuery.TestTypeValue, "type-value", "", "test type value")
	f.StringVar(&searchQuery.TestCycle, "cycle", "", "test cycle")
	f.StringVar(&searchQuery.TestCase, "case", "", "test case")
	f.StringVar(&searchState, "status", "", "in-progress or completed")
	f.StringVar(&searchFrom, "from", "", "first day, YYYY-MM-DD")
	f.StringVar(&searchTo, "to", "", "last day, YYYY-MM-DD")

	RootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, a *evidence.App, args []string) error {
	q := searchQuery

	if searchState != "" {
		q.Status = records.Status(searchState)
		if !q.Status.Valid() {
			return fmt.Errorf("invalid status %q", searchState)
		}
	}
	if searchFrom != "" {
		from, err := parseDate(searchFrom)
		if err != nil {
			return err
		}
		q.StartDate = &from
	}
	if searchTo != "" {
		to, err := parseDate(searchTo)
		if err != nil {
			return err
		}
		end := records.EndOfDay(to)
		q.EndDate = &end
	}

	tests := a.Records.SearchTests(q)
	if len(tests) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching tests.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderTestTable(tests, a.Clock.Now()))
	return nil
}
