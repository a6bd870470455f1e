package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Reconcile drops every screenshot entry of the record whose file is
// missing and returns the dropped filenames.
func Reconcile(recs Records, testID string) ([]string, error) {
	rec := recs.GetTest(testID)
	if rec == nil {
		return nil, fmt.Errorf("test %s not found", testID)
	}

	var dropped []string
	for _, shot := range rec.Screenshots {
		_, err := os.Lstat(filepath.Join(rec.FolderPath, shot.Filename))
		if !errors.Is(err, os.ErrNotExist) {
			continue
		}
		ok, err := recs.ForgetScreenshot(testID, shot.Filename)
		if err != nil {
			return dropped, fmt.Errorf("failed to drop %s: %w", shot.Filename, err)
		}
		if ok {
			dropped = append(dropped, shot.Filename)
		}
	}
	return dropped, nil
}
