package store

import (
	"time"

	"github.com/blackwell-systems/qacapture/internal/selector"
)

// Preference keys.
const (
	KeySelectedDisplay     = "selected_display_id"
	KeySavedArea           = "saved_area"
	KeyCursorInScreenshots = "cursor_in_screenshots"
	KeyCopyToClipboard     = "copy_to_clipboard"
	KeyActiveTest          = "active_test_id"
)

// CaptureEvent records one screenshot written for a test.
type CaptureEvent struct {
	ID         int64
	TestID     string
	Filename   string
	DisplayID  int
	Area       *selector.Rect // nil for full-screen captures
	CapturedAt time.Time
}
