// Package output provides terminal output utilities for qacapture.
//
// This package includes:
//   - Table rendering for test records, displays and the capture log
//   - Record detail and validation summaries
//   - A colored terminal Notifier
//   - Progress bars for report export
//   - An interactive picker for choosing a test
//
// Table rendering functions return plain strings; color is only added when
// stdout is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/qacapture/internal/capture"
	"github.com/blackwell-systems/qacapture/internal/records"
	"github.com/blackwell-systems/qacapture/internal/store"
)

// ANSI color codes for status display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// ShortID returns the first block of a record id.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return truncate(id, 8)
}

// RenderTestTable renders records in the order given.
func RenderTestTable(tests []*records.TestRecord, now time.Time) string {
	if len(tests) == 0 {
		return "No tests found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-9s %-16s %-14s %-8s %-14s %-12s %-5s %s\n",
		"ID", "Test Case", "System", "Cycle", "Type", "Status", "Shots", "Updated"))
	sb.WriteString(strings.Repeat("─", 96))
	sb.WriteString("\n")

	for _, t := range tests {
		h := t.HeaderData
		testType := strings.TrimSpace(h.TestType + " " + h.TestTypeValue)
		// Pad before coloring so escape codes do not break alignment.
		status := colorize(statusColor(t.Status), fmt.Sprintf("%-12s", t.Status))
		sb.WriteString(fmt.Sprintf("%-9s %-16s %-14s %-8s %-14s %s %-5d %s\n",
			ShortID(t.ID),
			truncate(orDash(h.TestCase), 16),
			truncate(orDash(h.System), 14),
			truncate(orDash(h.TestCycle), 8),
			truncate(orDash(testType), 14),
			status,
			len(t.Screenshots),
			relTime(t.UpdatedAt, now)))
	}

	return sb.String()
}

// RenderTestDetail renders one record with its screenshots.
func RenderTestDetail(t *records.TestRecord, now time.Time) string {
	var sb strings.Builder
	h := t.HeaderData

	row := func(label, value string) {
		sb.WriteString(fmt.Sprintf("%-14s %s\n", label+":", value))
	}
	row("ID", t.ID)
	row("Status", colorize(statusColor(t.Status), string(t.Status)))
	row("Result", orDash(h.TestName))
	row("System", orDash(h.System))
	row("Test type", orDash(strings.TrimSpace(h.TestType+" "+h.TestTypeValue)))
	row("Test cycle", orDash(h.TestCycle))
	row("Test case", orDash(h.TestCase))
	row("Folder", t.FolderPath)
	row("Created", fmt.Sprintf("%s (%s)", t.CreatedAt.Local().Format("2006-01-02 15:04"), relTime(t.CreatedAt, now)))
	row("Updated", fmt.Sprintf("%s (%s)", t.UpdatedAt.Local().Format("2006-01-02 15:04"), relTime(t.UpdatedAt, now)))
	if t.PDFGenerated {
		row("Report", t.PDFPath)
	}

	if t.Notes != "" {
		sb.WriteString("\nNotes:\n")
		for _, line := range strings.Split(t.Notes, "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\nScreenshots (%d):\n", len(t.Screenshots)))
	for i, shot := range t.Screenshots {
		edited := ""
		if shot.Edited {
			edited = colorize(colorYellow, " (edited)")
		}
		sb.WriteString(fmt.Sprintf("  %2d. %-24s %s%s\n", i+1, shot.Filename, relTime(shot.CapturedAt, now), edited))
	}

	return sb.String()
}

// RenderValidation summarises a validation result. label names the action
// being checked, e.g. "save" or "report".
func RenderValidation(label string, v records.Validation) string {
	if v.IsValid {
		return colorize(colorGreen, "✓ ready to "+label) + "\n"
	}
	return colorize(colorRed, "✗ cannot "+label) + ", missing: " + strings.Join(v.MissingFields, ", ") + "\n"
}

// RenderDisplayTable renders the attached displays, marking selected.
func RenderDisplayTable(displays []capture.Display, selected int) string {
	if len(displays) == 0 {
		return "No displays found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-3s %-4s %-24s %-12s %s\n", "", "ID", "Label", "Size", "Origin"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	for _, d := range displays {
		marker := ""
		if d.ID == selected {
			marker = "*"
		}
		label := d.Label
		if d.Primary {
			label += " (primary)"
		}
		sb.WriteString(fmt.Sprintf("%-3s %-4d %-24s %-12s %d,%d\n",
			marker,
			d.ID,
			truncate(label, 24),
			fmt.Sprintf("%dx%d", d.Bounds.Dx(), d.Bounds.Dy()),
			d.Bounds.Min.X, d.Bounds.Min.Y))
	}
	return sb.String()
}

// RenderCaptureLog renders capture events oldest first.
func RenderCaptureLog(events []*store.CaptureEvent, now time.Time) string {
	if len(events) == 0 {
		return "No captures logged.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-9s %-24s %-8s %-22s %s\n", "Test", "File", "Display", "Area", "Captured"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, e := range events {
		area := "full screen"
		if e.Area != nil {
			area = e.Area.String()
		}
		sb.WriteString(fmt.Sprintf("%-9s %-24s %-8d %-22s %s\n",
			ShortID(e.TestID),
			truncate(e.Filename, 24),
			e.DisplayID,
			truncate(area, 22),
			relTime(e.CapturedAt, now)))
	}
	return sb.String()
}

// RenderCleanupResult summarises an auto-delete sweep.
func RenderCleanupResult(r records.CleanupResult) string {
	var sb strings.Builder
	switch r.DeletedCount {
	case 0:
		sb.WriteString("No tests were old enough to delete.\n")
	case 1:
		sb.WriteString("Deleted 1 completed test.\n")
	default:
		sb.WriteString(fmt.Sprintf("Deleted %d completed tests.\n", r.DeletedCount))
	}
	for _, e := range r.Errors {
		sb.WriteString(colorize(colorRed, "  error: ") + e + "\n")
	}
	return sb.String()
}

// RenderSettings renders the database settings.
func RenderSettings(s records.Settings, now time.Time) string {
	days := "off"
	if s.AutoDeleteAfterDays != nil {
		days = fmt.Sprintf("%d days after completion", *s.AutoDeleteAfterDays)
	}
	last := "never"
	if !s.LastCleanup.IsZero() {
		last = relTime(s.LastCleanup, now)
	}
	return fmt.Sprintf("%-14s %s\n%-14s %s\n", "Auto-delete:", days, "Last cleanup:", last)
}

func statusColor(s records.Status) string {
	if s == records.StatusCompleted {
		return colorGreen
	}
	return colorYellow
}

func relTime(t, now time.Time) string {
	if t.IsZero() {
		return colorize(colorGray, "never")
	}
	if now.Sub(t) < time.Minute && !t.After(now) {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// truncate shortens s to maxLen runes, ending in "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
