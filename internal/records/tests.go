package records

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// CreateTest starts a new in-progress record under rootFolder and creates
// its folder on disk.
//
// When the record cannot be saved, a folder this call created is removed
// again.
func (s *Store) CreateTest(rootFolder string, header *HeaderData) (*TestRecord, error) {
	var created *TestRecord
	var madeFolder string

	_, err := s.mutate(func(db *TestDatabase) (bool, error) {
		id := uuid.NewString()
		for {
			if _, existing := find(db, id); existing == nil {
				break
			}
			id = uuid.NewString()
		}

		var h HeaderData
		if header != nil {
			h = *header
		}

		folder, err := s.locator.Locate(rootFolder, id, h)
		if err != nil {
			return false, fmt.Errorf("failed to resolve folder for test %s: %w", id, err)
		}
		_, statErr := os.Stat(folder)
		if err := os.MkdirAll(folder, 0755); err != nil {
			return false, fmt.Errorf("failed to create test folder: %w", err)
		}
		if os.IsNotExist(statErr) {
			madeFolder = folder
		}

		now := s.stamp(db)
		created = &TestRecord{
			ID:          id,
			CreatedAt:   now,
			UpdatedAt:   now,
			Status:      StatusInProgress,
			HeaderData:  h,
			FolderPath:  folder,
			Screenshots: []Screenshot{},
		}
		db.Tests = append(db.Tests, created)
		return true, nil
	})
	if err != nil {
		if madeFolder != "" {
			if rmErr := os.RemoveAll(madeFolder); rmErr != nil {
				s.logger.Warn().Err(rmErr).Str("folder", madeFolder).Msg("failed to remove folder of unsaved test")
			}
		}
		return nil, err
	}

	s.logger.Info().Str("id", created.ID).Str("folder", created.FolderPath).Msg("test created")
	return created, nil
}

// GetTest returns the record with id, or nil if there is none.
func (s *Store) GetTest(id string) *TestRecord {
	db := s.Load()
	_, t := find(db, id)
	return t
}

// GetAllTests returns every record, most recently updated first.
func (s *Store) GetAllTests() []*TestRecord {
	db := s.Load()
	out := make([]*TestRecord, len(db.Tests))
	copy(out, db.Tests)
	sortByUpdated(out)
	return out
}

// UpdateTest merges upd into the record. It returns false when id is
// unknown.
func (s *Store) UpdateTest(id string, upd TestUpdate) (bool, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return false, fmt.Errorf("invalid status %q", *upd.Status)
	}

	return s.mutate(func(db *TestDatabase) (bool, error) {
		_, t := find(db, id)
		if t == nil {
			return false, nil
		}
		if upd.Status != nil {
			t.Status = *upd.Status
		}
		if upd.HeaderData != nil {
			t.HeaderData = *upd.HeaderData
		}
		if upd.Notes != nil {
			t.Notes = *upd.Notes
		}
		if upd.PDFGenerated != nil {
			t.PDFGenerated = *upd.PDFGenerated
		}
		if upd.PDFPath != nil {
			t.PDFPath = *upd.PDFPath
		}
		if upd.Screenshots != nil {
			t.Screenshots = append([]Screenshot{}, (*upd.Screenshots)...)
		}
		if upd.FolderPath != nil {
			t.FolderPath = *upd.FolderPath
		}
		t.UpdatedAt = s.stamp(db)
		return true, nil
	})
}

// DeleteTest removes the record and its folder. A folder that is already
// gone is not an error; a folder that cannot be removed keeps the record.
//
// The folder goes first. If the database write then fails the record stays
// listed with no folder behind it; the failure is logged and returned, and
// a later DeleteTest finishes the job.
func (s *Store) DeleteTest(id string) (bool, error) {
	var folder string
	deleted, err := s.mutate(func(db *TestDatabase) (bool, error) {
		i, t := find(db, id)
		if t == nil {
			return false, nil
		}
		if err := removeFolder(t); err != nil {
			return false, err
		}
		folder = t.FolderPath
		db.Tests = append(db.Tests[:i], db.Tests[i+1:]...)
		return true, nil
	})
	if err != nil && folder != "" {
		s.logger.Error().Err(err).Str("id", id).Str("folder", folder).Msg("test folder removed but record could not be deleted")
	}
	if deleted {
		s.logger.Info().Str("id", id).Msg("test deleted")
	}
	return deleted, err
}

// AddScreenshot appends filename to the record's screenshots.
func (s *Store) AddScreenshot(id, filename string, edited bool) (bool, error) {
	if filename == "" {
		return false, fmt.Errorf("screenshot filename is required")
	}
	return s.mutate(func(db *TestDatabase) (bool, error) {
		_, t := find(db, id)
		if t == nil {
			return false, nil
		}
		now := s.stamp(db)
		t.Screenshots = append(t.Screenshots, Screenshot{
			Filename:   filename,
			CapturedAt: now,
			Edited:     edited,
		})
		t.UpdatedAt = now
		return true, nil
	})
}

// UpdateScreenshot merges upd into the entry named filename. It returns
// false when either the record or the entry is unknown.
func (s *Store) UpdateScreenshot(id, filename string, upd ScreenshotUpdate) (bool, error) {
	return s.mutate(func(db *TestDatabase) (bool, error) {
		_, t := find(db, id)
		if t == nil {
			return false, nil
		}
		shot, ok := t.Screenshot(filename)
		if !ok {
			return false, nil
		}
		if upd.Edited != nil {
			shot.Edited = *upd.Edited
		}
		if upd.CapturedAt != nil {
			shot.CapturedAt = *upd.CapturedAt
		}
		t.UpdatedAt = s.stamp(db)
		return true, nil
	})
}

// RemoveScreenshot deletes the entry and its file. A file that is already
// gone is not an error.
func (s *Store) RemoveScreenshot(id, filename string) (bool, error) {
	return s.removeScreenshot(id, filename, true)
}

// ForgetScreenshot drops the entry but leaves the disk alone. Used when
// the file has already disappeared.
func (s *Store) ForgetScreenshot(id, filename string) (bool, error) {
	return s.removeScreenshot(id, filename, false)
}

func (s *Store) removeScreenshot(id, filename string, deleteFile bool) (bool, error) {
	return s.mutate(func(db *TestDatabase) (bool, error) {
		_, t := find(db, id)
		if t == nil {
			return false, nil
		}
		idx := -1
		for i, shot := range t.Screenshots {
			if shot.Filename == filename {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, nil
		}
		if deleteFile {
			path := filepath.Join(t.FolderPath, filename)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return false, fmt.Errorf("failed to delete screenshot %s: %w", path, err)
			}
		}
		t.Screenshots = append(t.Screenshots[:idx], t.Screenshots[idx+1:]...)
		t.UpdatedAt = s.stamp(db)
		return true, nil
	})
}

// ReorderScreenshots sets the print order. order must name every current
// screenshot exactly once.
func (s *Store) ReorderScreenshots(id string, order []string) (bool, error) {
	return s.mutate(func(db *TestDatabase) (bool, error) {
		_, t := find(db, id)
		if t == nil {
			return false, nil
		}
		if len(order) != len(t.Screenshots) {
			return false, ErrInvalidOrder
		}

		byName := make(map[string]Screenshot, len(t.Screenshots))
		for _, shot := range t.Screenshots {
			byName[shot.Filename] = shot
		}
		reordered := make([]Screenshot, 0, len(order))
		for _, name := range order {
			shot, ok := byName[name]
			if !ok {
				return false, ErrInvalidOrder
			}
			delete(byName, name)
			reordered = append(reordered, shot)
		}

		t.Screenshots = reordered
		t.UpdatedAt = s.stamp(db)
		return true, nil
	})
}

// Settings returns the database settings.
func (s *Store) Settings() Settings {
	return s.Load().Settings
}

// UpdateDatabaseSettings merges upd into the settings.
func (s *Store) UpdateDatabaseSettings(upd SettingsUpdate) error {
	if upd.AutoDeleteAfterDays != nil && *upd.AutoDeleteAfterDays < 0 {
		return fmt.Errorf("autoDeleteAfterDays must not be negative")
	}
	_, err := s.mutate(func(db *TestDatabase) (bool, error) {
		if upd.DisableAutoDelete {
			db.Settings.AutoDeleteAfterDays = nil
		} else if upd.AutoDeleteAfterDays != nil {
			days := *upd.AutoDeleteAfterDays
			db.Settings.AutoDeleteAfterDays = &days
		}
		if upd.LastCleanup != nil {
			db.Settings.LastCleanup = upd.LastCleanup.UTC()
		}
		return true, nil
	})
	return err
}

// removeFolder deletes the record's folder tree. An empty FolderPath is
// left alone rather than resolving to the working directory.
func removeFolder(t *TestRecord) error {
	if t.FolderPath == "" {
		return nil
	}
	if err := os.RemoveAll(t.FolderPath); err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", t.FolderPath, err)
	}
	return nil
}

func sortByUpdated(tests []*TestRecord) {
	sort.SliceStable(tests, func(i, j int) bool {
		return tests[i].UpdatedAt.After(tests[j].UpdatedAt)
	})
}
