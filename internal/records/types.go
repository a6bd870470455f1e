package records

import (
	"errors"
	"time"
)

// ErrInvalidOrder is returned by ReorderScreenshots when the new order is
// not a permutation of the current screenshots.
var ErrInvalidOrder = errors.New("screenshot order must list every screenshot exactly once")

// Status is the lifecycle state of a test record.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// HeaderData is the free-form metadata shown at the top of a report.
// TestName doubles as the verdict (pass/fail/partial).
type HeaderData struct {
	TestName      string `json:"testName"`
	System        string `json:"system"`
	TestCycle     string `json:"testCycle"`
	TestCase      string `json:"testCase"`
	TestType      string `json:"testType"`
	TestTypeValue string `json:"testTypeValue"`
}

// Screenshot is one image in a record, in print order.
type Screenshot struct {
	Filename   string    `json:"filename"`
	CapturedAt time.Time `json:"capturedAt"`
	Edited     bool      `json:"edited"`
}

// TestRecord is one evidence record.
type TestRecord struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Status       Status       `json:"status"`
	HeaderData   HeaderData   `json:"headerData"`
	FolderPath   string       `json:"folderPath"`
	Screenshots  []Screenshot `json:"screenshots"`
	Notes        string       `json:"notes"`
	PDFGenerated bool         `json:"pdfGenerated"`
	PDFPath      string       `json:"pdfPath,omitempty"`
}

// Screenshot returns the entry named filename.
func (r *TestRecord) Screenshot(filename string) (*Screenshot, bool) {
	for i := range r.Screenshots {
		if r.Screenshots[i].Filename == filename {
			return &r.Screenshots[i], true
		}
	}
	return nil, false
}

// Settings are database-wide preferences.
type Settings struct {
	// AutoDeleteAfterDays enables cleanup of completed records; nil disables it.
	AutoDeleteAfterDays *int      `json:"autoDeleteAfterDays"`
	LastCleanup         time.Time `json:"lastCleanup"`
}

// TestDatabase is the whole persisted document.
type TestDatabase struct {
	Tests    []*TestRecord `json:"tests"`
	Settings Settings      `json:"settings"`
}

// TestUpdate is a partial update; nil fields are left alone.
type TestUpdate struct {
	Status       *Status
	HeaderData   *HeaderData
	Notes        *string
	PDFGenerated *bool
	PDFPath      *string
	Screenshots  *[]Screenshot
	// FolderPath only records a move already made on disk.
	FolderPath *string
}

// ScreenshotUpdate is a partial update of one screenshot entry.
type ScreenshotUpdate struct {
	Edited     *bool
	CapturedAt *time.Time
}

// SettingsUpdate is a partial update of Settings.
type SettingsUpdate struct {
	AutoDeleteAfterDays *int
	// DisableAutoDelete sets AutoDeleteAfterDays back to null.
	DisableAutoDelete bool
	LastCleanup       *time.Time
}

// Query filters SearchTests. Empty fields do not filter.
type Query struct {
	System        string
	TestType      string
	TestTypeValue string
	TestCycle     string
	TestCase      string
	Status        Status
	// StartDate and EndDate bound the record's lifetime inclusively: a
	// record matches when [CreatedAt, UpdatedAt] overlaps the range.
	StartDate *time.Time
	EndDate   *time.Time
}

// CleanupResult reports a cleanup sweep.
type CleanupResult struct {
	DeletedCount int      `json:"deletedCount"`
	Errors       []string `json:"errors"`
}

// Validation reports missing header fields.
type Validation struct {
	IsValid       bool     `json:"isValid"`
	MissingFields []string `json:"missingFields"`
}
