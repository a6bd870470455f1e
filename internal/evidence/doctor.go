package evidence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blackwell-systems/qacapture/internal/watcher"
)

// Severity ranks a doctor finding.
type Severity int

const (
	Warning Severity = iota
	Critical
)

// Issue is one doctor finding.
type Issue struct {
	Severity Severity
	TestID   string
	Message  string
	Action   string
	Fixed    bool
}

// Check looks for drift between the test database, the screenshot folders
// and the capture log. With fix set, screenshot entries whose files are gone
// are dropped and orphan capture log rows are purged.
func (a *App) Check(fix bool) ([]Issue, error) {
	var issues []Issue
	known := make(map[string]bool)

	for _, rec := range a.Records.GetAllTests() {
		known[rec.ID] = true

		info, err := os.Stat(rec.FolderPath)
		if err != nil || !info.IsDir() {
			issues = append(issues, Issue{
				Severity: Critical,
				TestID:   rec.ID,
				Message:  fmt.Sprintf("folder missing: %s", rec.FolderPath),
				Action:   "delete the test or restore the folder",
			})
			continue
		}

		referenced := make(map[string]bool, len(rec.Screenshots))
		var missing []string
		for _, shot := range rec.Screenshots {
			referenced[shot.Filename] = true
			if _, err := os.Lstat(filepath.Join(rec.FolderPath, shot.Filename)); errors.Is(err, os.ErrNotExist) {
				missing = append(missing, shot.Filename)
			}
		}
		if len(missing) > 0 {
			issue := Issue{
				Severity: Warning,
				TestID:   rec.ID,
				Message:  fmt.Sprintf("%d screenshot file(s) missing: %s", len(missing), strings.Join(missing, ", ")),
				Action:   "run 'qacapture doctor --fix' to drop them from the record",
			}
			if fix {
				if _, err := watcher.Reconcile(a.Records, rec.ID); err != nil {
					return issues, err
				}
				issue.Fixed = true
			}
			issues = append(issues, issue)
		}

		stray, err := unreferencedPNGs(rec.FolderPath, referenced)
		if err != nil {
			return issues, err
		}
		if len(stray) > 0 {
			issues = append(issues, Issue{
				Severity: Warning,
				TestID:   rec.ID,
				Message:  fmt.Sprintf("%d image(s) in folder not in record: %s", len(stray), strings.Join(stray, ", ")),
				Action:   "they will not appear in the report",
			})
		}
	}

	events, err := a.Prefs.ListCaptureEvents("")
	if err != nil {
		return issues, err
	}
	orphans := make(map[string]int)
	for _, e := range events {
		if !known[e.TestID] {
			orphans[e.TestID]++
		}
	}
	ids := make([]string, 0, len(orphans))
	for id := range orphans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		issue := Issue{
			Severity: Warning,
			TestID:   id,
			Message:  fmt.Sprintf("%d capture log entries for a deleted test", orphans[id]),
			Action:   "run 'qacapture doctor --fix' to purge them",
		}
		if fix {
			if _, err := a.Prefs.DeleteCaptureEvents(id); err != nil {
				return issues, err
			}
			issue.Fixed = true
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

func unreferencedPNGs(folder string, referenced map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", folder, err)
	}
	var stray []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") || referenced[e.Name()] {
			continue
		}
		stray = append(stray, e.Name())
	}
	return stray, nil
}
