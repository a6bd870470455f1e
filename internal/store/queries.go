package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/qacapture/internal/selector"
)

// timeFormat is fixed width so captured_at sorts as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Preference operations

// GetPreference returns the stored value for key and whether it was set.
func (s *Store) GetPreference(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %s: %w", key, classify(err))
	}
	return value, true, nil
}

// SetPreference inserts or replaces key.
func (s *Store) SetPreference(key, value string) error {
	query := `
		INSERT OR REPLACE INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
	`
	_, err := s.db.Exec(query, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, classify(err))
	}
	return nil
}

// DeletePreference removes key. Removing an unset key is not an error.
func (s *Store) DeletePreference(key string) error {
	_, err := s.db.Exec(`DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, classify(err))
	}
	return nil
}

// ListPreferences returns every stored preference.
func (s *Store) ListPreferences() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM preferences ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", classify(err))
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference row: %w", err)
		}
		prefs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}
	return prefs, nil
}

// Capture log operations

// InsertCaptureEvent appends event and returns its id.
func (s *Store) InsertCaptureEvent(event *CaptureEvent) (int64, error) {
	var area sql.NullString
	if event.Area != nil {
		data, err := json.Marshal(event.Area)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal capture area: %w", err)
		}
		area = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO capture_events (test_id, filename, display_id, area, captured_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query,
		event.TestID,
		event.Filename,
		event.DisplayID,
		area,
		event.CapturedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert capture event for %s: %w", event.TestID, classify(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get capture event id: %w", err)
	}
	event.ID = id
	return id, nil
}

// ListCaptureEvents returns the capture log for testID, oldest first. An
// empty testID lists every test.
func (s *Store) ListCaptureEvents(testID string) ([]*CaptureEvent, error) {
	query := `
		SELECT id, test_id, filename, display_id, area, captured_at
		FROM capture_events
		WHERE ? = '' OR test_id = ?
		ORDER BY captured_at, id
	`

	rows, err := s.db.Query(query, testID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list capture events: %w", classify(err))
	}
	defer rows.Close()

	var events []*CaptureEvent
	for rows.Next() {
		var event CaptureEvent
		var area sql.NullString
		var capturedAt string

		if err := rows.Scan(&event.ID, &event.TestID, &event.Filename, &event.DisplayID, &area, &capturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan capture event row: %w", err)
		}

		event.CapturedAt, err = time.Parse(timeFormat, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse captured_at for event %d: %w", event.ID, err)
		}

		if area.Valid {
			var r selector.Rect
			if err := json.Unmarshal([]byte(area.String), &r); err != nil {
				return nil, fmt.Errorf("failed to unmarshal area for event %d: %w", event.ID, err)
			}
			event.Area = &r
		}

		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capture events: %w", err)
	}
	return events, nil
}

// DeleteCaptureEvents removes the log for testID and returns how many rows
// went.
func (s *Store) DeleteCaptureEvents(testID string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM capture_events WHERE test_id = ?`, testID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete capture events for %s: %w", testID, classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted capture events: %w", err)
	}
	return n, nil
}

// GetEventCount returns the total number of logged captures.
func (s *Store) GetEventCount() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM capture_events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count capture events: %w", classify(err))
	}
	return count, nil
}
