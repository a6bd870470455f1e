package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/qacapture/internal/records"
)

// ErrNotFound is returned when the record does not exist.
var ErrNotFound = errors.New("test not found")

// ValidationError reports the header fields a report still needs.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cannot generate report, missing fields: %s", strings.Join(e.Missing, ", "))
}

// Document is what a Renderer lays out: the header, the notes, and the
// screenshots in print order.
type Document struct {
	TestID      string
	Header      records.HeaderData
	Notes       string
	Pages       []Page
	GeneratedAt time.Time
}

// Page is one screenshot.
type Page struct {
	Path       string
	Filename   string
	CapturedAt time.Time
	Edited     bool
}

// ProgressFunc is told after each page is laid out.
type ProgressFunc func(done, total int)

// Renderer writes doc to path.
type Renderer interface {
	Render(ctx context.Context, doc *Document, path string, progress ProgressFunc) error
}

// Result describes a finished export.
type Result struct {
	Path    string
	Pages   int
	Skipped []string // listed screenshots whose files were missing
}
