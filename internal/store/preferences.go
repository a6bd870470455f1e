package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/blackwell-systems/qacapture/internal/selector"
)

// SelectedDisplay returns the remembered display index, 0 when unset.
func (s *Store) SelectedDisplay() (int, error) {
	v, ok, err := s.GetPreference(KeySelectedDisplay)
	if err != nil || !ok {
		return 0, err
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeySelectedDisplay, v, err)
	}
	return id, nil
}

// SetSelectedDisplay remembers the display index.
func (s *Store) SetSelectedDisplay(id int) error {
	return s.SetPreference(KeySelectedDisplay, strconv.Itoa(id))
}

// SavedArea returns the last confirmed selection, nil when there is none.
func (s *Store) SavedArea() (*selector.Rect, error) {
	v, ok, err := s.GetPreference(KeySavedArea)
	if err != nil || !ok {
		return nil, err
	}
	var r selector.Rect
	if err := json.Unmarshal([]byte(v), &r); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeySavedArea, err)
	}
	return &r, nil
}

// SetSavedArea remembers r for the next area capture. A nil r forgets it.
func (s *Store) SetSavedArea(r *selector.Rect) error {
	if r == nil {
		return s.DeletePreference(KeySavedArea)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal saved area: %w", err)
	}
	return s.SetPreference(KeySavedArea, string(data))
}

// ActiveTest returns the id of the test new captures go to.
func (s *Store) ActiveTest() (string, error) {
	v, _, err := s.GetPreference(KeyActiveTest)
	return v, err
}

// SetActiveTest selects the test new captures go to. An empty id clears it.
func (s *Store) SetActiveTest(id string) error {
	if id == "" {
		return s.DeletePreference(KeyActiveTest)
	}
	return s.SetPreference(KeyActiveTest, id)
}

// Bool returns the boolean preference key, or def when unset.
func (s *Store) Bool(key string, def bool) (bool, error) {
	v, ok, err := s.GetPreference(key)
	if err != nil || !ok {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

// SetBool stores a boolean preference.
func (s *Store) SetBool(key string, v bool) error {
	return s.SetPreference(key, strconv.FormatBool(v))
}
