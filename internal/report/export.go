package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/qacapture/internal/clock"
	"github.com/blackwell-systems/qacapture/internal/naming"
	"github.com/blackwell-systems/qacapture/internal/records"
)

// Records is the part of the record store an export needs.
type Records interface {
	GetTest(id string) *records.TestRecord
	UpdateTest(id string, upd records.TestUpdate) (bool, error)
}

// Exporter turns a test record into a PDF evidence report.
type Exporter struct {
	records  Records
	renderer Renderer
	clock    clock.Clock
	logger   zerolog.Logger
}

// New creates an Exporter.
func New(recs Records, renderer Renderer, c clock.Clock, logger zerolog.Logger) *Exporter {
	if c == nil {
		c = clock.Real()
	}
	return &Exporter{records: recs, renderer: renderer, clock: c, logger: logger}
}

// Filename returns the base report name for a header.
func Filename(h records.HeaderData) string {
	name := h.TestCase
	if name == "" {
		name = "report"
	}
	return sanitize(name) + "-evidence.pdf"
}

// Export validates the record, renders it next to its screenshots under a
// name that does not overwrite earlier reports, and marks the record
// completed.
func (e *Exporter) Export(ctx context.Context, id string, progress ProgressFunc) (*Result, error) {
	rec := e.records.GetTest(id)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if v := records.ValidateForPDF(rec.HeaderData); !v.IsValid {
		return nil, &ValidationError{Missing: v.MissingFields}
	}

	doc := &Document{
		TestID:      rec.ID,
		Header:      rec.HeaderData,
		Notes:       rec.Notes,
		GeneratedAt: e.clock.Now(),
	}
	var skipped []string
	for _, shot := range rec.Screenshots {
		path := filepath.Join(rec.FolderPath, shot.Filename)
		if _, err := os.Stat(path); err != nil {
			e.logger.Warn().Err(err).Str("file", path).Msg("screenshot missing, left out of report")
			skipped = append(skipped, shot.Filename)
			continue
		}
		doc.Pages = append(doc.Pages, Page{
			Path:       path,
			Filename:   shot.Filename,
			CapturedAt: shot.CapturedAt,
			Edited:     shot.Edited,
		})
	}

	if err := os.MkdirAll(rec.FolderPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report folder: %w", err)
	}
	out := filepath.Join(rec.FolderPath, naming.NextAvailableFilename(rec.FolderPath, Filename(rec.HeaderData)))

	if err := e.renderer.Render(ctx, doc, out, progress); err != nil {
		os.Remove(out)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	generated := true
	status := records.StatusCompleted
	ok, err := e.records.UpdateTest(id, records.TestUpdate{
		Status:       &status,
		PDFGenerated: &generated,
		PDFPath:      &out,
	})
	if err != nil {
		return nil, fmt.Errorf("report written to %s but the record was not updated: %w", out, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (deleted during export)", ErrNotFound, id)
	}

	e.logger.Info().Str("id", id).Str("path", out).Int("pages", len(doc.Pages)).Msg("report generated")
	return &Result{Path: out, Pages: len(doc.Pages), Skipped: skipped}, nil
}

func sanitize(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			out[i] = '-'
		}
	}
	return string(out)
}
