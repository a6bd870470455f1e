package evidence

import (
	"fmt"

	"github.com/blackwell-systems/qacapture/internal/layout"
	"github.com/blackwell-systems/qacapture/internal/records"
)

// LegacyPath returns where the hierarchical scheme would put h this month.
func (a *App) LegacyPath(h records.HeaderData) (string, error) {
	path, ok := layout.BuildPath(a.Config.RootFolder, h, a.Clock.Now())
	if !ok {
		return "", &MissingFieldsError{Missing: records.ValidateForSave(h).MissingFields}
	}
	return path, nil
}

// MissingFieldsError lists header fields that must be filled first.
type MissingFieldsError struct {
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Missing)
}

// RenameLegacyFolder applies newH to a record stored in the hierarchical
// scheme, moving its folder one level at a time until the path matches the
// header and the current month. The record is only updated once the folder
// has moved.
func (a *App) RenameLegacyFolder(id string, newH records.HeaderData) (string, error) {
	rec, err := a.ResolveTest(id)
	if err != nil {
		return "", err
	}
	if v := records.ValidateForSave(newH); !v.IsValid {
		return "", &MissingFieldsError{Missing: v.MissingFields}
	}
	if !layout.IsValidTestFolder(rec.FolderPath) {
		return "", fmt.Errorf("test %s is not in a hierarchical folder: %s", rec.ID, rec.FolderPath)
	}

	now := a.Clock.Now()
	cur := rec.HeaderData
	folder := rec.FolderPath
	for {
		change, ok := layout.DetectChangedLevel(cur, newH, folder, now)
		if !ok {
			break
		}
		moved, ok, err := layout.Reconcile(cur, newH, folder, now)
		if err != nil {
			return folder, a.saveLegacy(rec.ID, cur, folder, err)
		}
		if !ok {
			break
		}
		a.Logger.Info().Str("id", rec.ID).Str("level", string(change.Level)).Str("from", folder).Str("to", moved).Msg("moved test folder")
		folder = moved

		switch change.Level {
		case layout.LevelCase:
			cur.TestCase = newH.TestCase
		case layout.LevelCycle:
			cur.TestCycle = newH.TestCycle
		case layout.LevelType:
			cur.TestTypeValue = newH.TestTypeValue
		}
	}

	return folder, a.saveLegacy(rec.ID, newH, folder, nil)
}

// saveLegacy records where the folder ended up even when a later level
// failed, so the record never points at a path that no longer exists.
func (a *App) saveLegacy(id string, h records.HeaderData, folder string, cause error) error {
	if _, err := a.Records.UpdateTest(id, records.TestUpdate{HeaderData: &h, FolderPath: &folder}); err != nil {
		return fmt.Errorf("failed to update test %s: %w", id, err)
	}
	return cause
}
