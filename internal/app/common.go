package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/records"
	"github.com/blackwell-systems/qacapture/internal/selector"
)

// headerFlags binds the report header fields to a command.
type headerFlags struct {
	name, system, cycle, testCase, testType, typeValue string
}

func (f *headerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "verdict shown as the test name (pass, fail, partial)")
	cmd.Flags().StringVar(&f.system, "system", "", "system under test")
	cmd.Flags().StringVar(&f.cycle, "cycle", "", "test cycle")
	cmd.Flags().StringVar(&f.testCase, "case", "", "test case")
	cmd.Flags().StringVar(&f.testType, "type", "", "test type")
	cmd.Flags().StringVar(&f.typeValue, "type-value", "", "value for the test type (ticket, release, ...)")
}

// apply copies the flags the user set onto h.
func (f *headerFlags) apply(cmd *cobra.Command, h *records.HeaderData) bool {
	fields := []struct {
		flag string
		src  string
		dst  *string
	}{
		{"name", f.name, &h.TestName},
		{"system", f.system, &h.System},
		{"cycle", f.cycle, &h.TestCycle},
		{"case", f.testCase, &h.TestCase},
		{"type", f.testType, &h.TestType},
		{"type-value", f.typeValue, &h.TestTypeValue},
	}
	changed := false
	for _, field := range fields {
		if cmd.Flags().Changed(field.flag) {
			*field.dst = field.src
			changed = true
		}
	}
	return changed
}

// parseArea reads x,y,width,height.
func parseArea(s string) (selector.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return selector.Rect{}, fmt.Errorf("area must be x,y,width,height: %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return selector.Rect{}, fmt.Errorf("invalid area %q: %w", s, err)
		}
		v[i] = n
	}
	r := selector.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.Empty() {
		return selector.Rect{}, fmt.Errorf("area %q has no size", s)
	}
	return r, nil
}

// parseDate accepts YYYY-MM-DD in local time.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
