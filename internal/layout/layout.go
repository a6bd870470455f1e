// Package layout implements the legacy hierarchical folder scheme
// root/MM-YYYY/testTypeValue/testCycle/testCase that predates the flat
// test-{id} folders of the record store.
//
// Paths here are derived from header fields, so editing a field moves the
// folder. The record store never does that; the two schemes are kept apart
// and only meet through the records.Locator interface.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/qacapture/internal/records"
)

// MonthFormat is the layout of the month segment.
const MonthFormat = "01-2006"

// minSegments is root plus the four levels.
const minSegments = 5

// Level names one level of the hierarchy.
type Level string

const (
	LevelCase  Level = "case"
	LevelCycle Level = "cycle"
	LevelType  Level = "type"
	LevelMonth Level = "month"
)

// Offset returns the level's position counted from the end of a path
// (case=1). Unknown levels return 0.
func (l Level) Offset() int {
	switch l {
	case LevelCase:
		return 1
	case LevelCycle:
		return 2
	case LevelType:
		return 3
	case LevelMonth:
		return 4
	}
	return 0
}

// ParseLevel accepts the level names used on the command line.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if l.Offset() == 0 {
		return "", fmt.Errorf("unknown level %q (want case, cycle, type or month)", s)
	}
	return l, nil
}

// Change describes the single level that differs between two headers.
type Change struct {
	Level   Level
	OldName string
	NewName string
}

// ErrTargetExists is returned by Reconcile when the renamed folder would
// overwrite an existing one.
var ErrTargetExists = errors.New("target folder already exists")

// MonthSegment formats now as the month folder name.
func MonthSegment(now time.Time) string {
	return now.Format(MonthFormat)
}

// BuildPath returns root/MM-YYYY/testTypeValue/testCycle/testCase. It
// reports false when any field needed to save progress is blank; the
// verdict is not needed.
func BuildPath(root string, h records.HeaderData, now time.Time) (string, bool) {
	if !records.ValidateForSave(h).IsValid {
		return "", false
	}
	return filepath.Join(root,
		MonthSegment(now),
		segment(h.TestTypeValue),
		segment(h.TestCycle),
		segment(h.TestCase),
	), true
}

// DetectChangedLevel compares the headers most specific level first and
// reports only the first difference. The month level compares the month
// encoded in oldPath with now, so the answer depends on when it is asked.
func DetectChangedLevel(oldH, newH records.HeaderData, oldPath string, now time.Time) (Change, bool) {
	fields := []struct {
		level    Level
		old, new string
	}{
		{LevelCase, oldH.TestCase, newH.TestCase},
		{LevelCycle, oldH.TestCycle, newH.TestCycle},
		{LevelType, oldH.TestTypeValue, newH.TestTypeValue},
	}
	for _, f := range fields {
		if segment(f.old) != segment(f.new) {
			return Change{Level: f.level, OldName: segment(f.old), NewName: segment(f.new)}, true
		}
	}

	parts := splitPath(oldPath)
	if len(parts) >= LevelMonth.Offset() {
		current := MonthSegment(now)
		if month := parts[len(parts)-LevelMonth.Offset()]; month != current {
			return Change{Level: LevelMonth, OldName: month, NewName: current}, true
		}
	}
	return Change{}, false
}

// RebuildPath replaces the segment of oldPath at level with newName. A
// path too short for the level is returned unchanged.
func RebuildPath(oldPath string, level Level, newName string) string {
	offset := level.Offset()
	parts := splitPath(oldPath)
	idx := len(parts) - offset
	if offset == 0 || idx < 0 || (idx == 0 && parts[0] == "") {
		return oldPath
	}
	parts[idx] = segment(newName)
	return strings.Join(parts, string(filepath.Separator))
}

// IsValidTestFolder reports whether path exists and has the month segment
// where the scheme puts it.
func IsValidTestFolder(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	var parts []string
	for _, p := range splitPath(path) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < minSegments {
		return false
	}
	return isMonth(parts[len(parts)-LevelMonth.Offset()])
}

// Reconcile renames oldPath on disk to follow a header edit. It returns the
// folder's path afterwards and whether anything moved. Directories left
// empty by the move are removed up to the changed level.
func Reconcile(oldH, newH records.HeaderData, oldPath string, now time.Time) (string, bool, error) {
	change, ok := DetectChangedLevel(oldH, newH, oldPath, now)
	if !ok || change.NewName == "" {
		return oldPath, false, nil
	}

	newPath := RebuildPath(oldPath, change.Level, change.NewName)
	if newPath == filepath.Clean(oldPath) {
		return oldPath, false, nil
	}

	if _, err := os.Stat(newPath); err == nil {
		return oldPath, false, fmt.Errorf("%w: %s", ErrTargetExists, newPath)
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return oldPath, false, fmt.Errorf("failed to create %s: %w", filepath.Dir(newPath), err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return oldPath, false, fmt.Errorf("failed to rename %s: %w", oldPath, err)
	}

	pruneEmpty(oldPath, change.Level.Offset())
	return newPath, true, nil
}

// pruneEmpty removes the now-empty ancestors of a moved folder, stopping at
// the level that changed. os.Remove refuses non-empty directories.
func pruneEmpty(oldPath string, offset int) {
	dir := filepath.Dir(filepath.Clean(oldPath))
	for i := 1; i < offset; i++ {
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

func splitPath(path string) []string {
	return strings.Split(filepath.Clean(path), string(filepath.Separator))
}

// segment makes a header value safe as a single path element.
func segment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, `\`, "-")
	return s
}

func isMonth(s string) bool {
	if len(s) != len(MonthFormat) {
		return false
	}
	_, err := time.Parse(MonthFormat, s)
	return err == nil
}
