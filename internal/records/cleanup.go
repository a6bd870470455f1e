package records

import (
	"fmt"
	"time"
)

// CleanupOldTests deletes completed records whose last update is older than
// the AutoDeleteAfterDays setting, folders included. Per-record failures
// are collected and the sweep continues. LastCleanup is always refreshed.
func (s *Store) CleanupOldTests() (CleanupResult, error) {
	result := CleanupResult{Errors: []string{}}

	_, err := s.mutate(func(db *TestDatabase) (bool, error) {
		now := s.now()
		days := db.Settings.AutoDeleteAfterDays

		if days != nil {
			maxAge := time.Duration(*days) * 24 * time.Hour
			kept := make([]*TestRecord, 0, len(db.Tests))
			for _, t := range db.Tests {
				if t.Status != StatusCompleted || now.Sub(t.UpdatedAt) <= maxAge {
					kept = append(kept, t)
					continue
				}
				if err := removeFolder(t); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("test %s: %v", t.ID, err))
					kept = append(kept, t)
					continue
				}
				s.logger.Info().Str("id", t.ID).Time("updated_at", t.UpdatedAt).Msg("cleaned up old test")
				result.DeletedCount++
			}
			db.Tests = kept
		}

		db.Settings.LastCleanup = now
		return true, nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}
