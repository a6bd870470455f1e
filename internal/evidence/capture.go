package evidence

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/blackwell-systems/qacapture/internal/capture"
	"github.com/blackwell-systems/qacapture/internal/records"
	"github.com/blackwell-systems/qacapture/internal/selector"
	"github.com/blackwell-systems/qacapture/internal/store"
)

var (
	// ErrSelectionOpen is returned by Selection.Result before the user has
	// confirmed or cancelled.
	ErrSelectionOpen = errors.New("selection still open")
	// ErrSelectionCancelled is returned by Selection.Result after Escape.
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// CaptureOptions builds capture options for rec from saved preferences,
// falling back to the configured defaults.
func (a *App) CaptureOptions(rec *records.TestRecord) capture.Options {
	cursor, err := a.Prefs.Bool(store.KeyCursorInScreenshots, a.Config.Capture.CursorInScreenshots)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("ignoring cursor preference")
	}
	clip, err := a.Prefs.Bool(store.KeyCopyToClipboard, a.Config.Capture.CopyToClipboard)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("ignoring clipboard preference")
	}
	return capture.Options{
		TargetFolder:        rec.FolderPath,
		CursorInScreenshots: cursor,
		CopyToClipboard:     clip,
	}
}

// DisplayID returns override when set, else the remembered display.
func (a *App) DisplayID(override *int) int {
	if override != nil {
		return *override
	}
	id, err := a.Prefs.SelectedDisplay()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("ignoring selected display preference")
		return 0
	}
	return id
}

// CaptureFullscreen captures the whole display into the test's folder and
// records the screenshot.
func (a *App) CaptureFullscreen(ctx context.Context, testID string, displayID int) (*capture.Result, error) {
	rec, err := a.ResolveTest(testID)
	if err != nil {
		return nil, err
	}

	res, err := a.Capture.CaptureFullscreen(ctx, displayID, a.CaptureOptions(rec))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w %d", ErrNoCaptureSource, displayID)
	}
	return res, a.recordCapture(rec.ID, res, displayID, nil)
}

// CaptureArea captures area, in display pixels, and remembers it as the
// saved area.
func (a *App) CaptureArea(ctx context.Context, testID string, displayID int, area selector.Rect) (*capture.Result, error) {
	rec, err := a.ResolveTest(testID)
	if err != nil {
		return nil, err
	}

	res, err := a.Capture.CaptureArea(ctx, displayID, area.Image(), a.CaptureOptions(rec))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w %d", ErrNoCaptureSource, displayID)
	}
	if err := a.Prefs.SetSavedArea(&area); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to remember area")
	}
	return res, a.recordCapture(rec.ID, res, displayID, &area)
}

// recordCapture adds the screenshot to the record and the capture log.
func (a *App) recordCapture(testID string, res *capture.Result, displayID int, area *selector.Rect) error {
	ok, err := a.Records.AddScreenshot(testID, res.Filename, false)
	if err != nil {
		return fmt.Errorf("screenshot saved to %s but not recorded: %w", res.Filepath, err)
	}
	if !ok {
		return fmt.Errorf("screenshot saved to %s but %w: %s", res.Filepath, ErrTestNotFound, testID)
	}

	event := &store.CaptureEvent{
		TestID:     testID,
		Filename:   res.Filename,
		DisplayID:  displayID,
		Area:       area,
		CapturedAt: a.Clock.Now(),
	}
	if _, err := a.Prefs.InsertCaptureEvent(event); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to log capture")
	}
	return nil
}

// Selection is an open region selection over a grabbed display.
type Selection struct {
	// Session receives the pointer and key events.
	Session *selector.Session
	// Pending is the raster shown under the overlay.
	Pending *capture.Pending

	result    *capture.Result
	err       error
	cancelled bool
}

// Result reports the outcome once the session has finished.
func (s *Selection) Result() (*capture.Result, error) {
	switch {
	case s.cancelled:
		return nil, ErrSelectionCancelled
	case !s.Session.Done():
		return nil, ErrSelectionOpen
	}
	return s.result, s.err
}

// BeginAreaSelection grabs the display once and opens the overlay over it.
// Confirming crops that same raster; cancelling releases it unsaved. Any
// previously open selection is cancelled first.
func (a *App) BeginAreaSelection(ctx context.Context, testID string, displayID int) (*Selection, error) {
	rec, err := a.ResolveTest(testID)
	if err != nil {
		return nil, err
	}
	opts := a.CaptureOptions(rec)

	pending, err := a.Capture.Grab(ctx, displayID, opts)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, fmt.Errorf("%w %d", ErrNoCaptureSource, displayID)
	}

	sel := &Selection{Pending: pending}
	onConfirm := func(r selector.Rect) {
		defer pending.Release()
		area := r.Image()
		res, err := a.Capture.SavePending(pending, &area, opts)
		if err != nil {
			sel.err = err
			return
		}
		if err := a.Prefs.SetSavedArea(&r); err != nil {
			a.Logger.Warn().Err(err).Msg("failed to remember area")
		}
		sel.result = res
		sel.err = a.recordCapture(rec.ID, res, pending.Display.ID, &r)
	}
	onCancel := func() {
		pending.Release()
		sel.cancelled = true
		a.Logger.Debug().Msg("area selection cancelled")
	}

	sel.Session = a.Overlay.Begin(pending.Display.Bounds, pending.Size(), onConfirm, onCancel)
	return sel, nil
}

// Displays lists displays with the remembered selection.
func (a *App) Displays() ([]capture.Display, int, error) {
	displays, err := a.Capture.Displays()
	if err != nil {
		return nil, 0, err
	}
	return displays, a.DisplayID(nil), nil
}

// SelectDisplay remembers id for later captures.
func (a *App) SelectDisplay(id int) error {
	displays, err := a.Capture.Displays()
	if err != nil {
		return err
	}
	if id < 0 || id >= len(displays) {
		return fmt.Errorf("display %d does not exist (%d attached)", id, len(displays))
	}
	return a.Prefs.SetSelectedDisplay(id)
}

// AreaFromSaved returns the saved area, if any, as an image rectangle.
func (a *App) AreaFromSaved() (image.Rectangle, bool) {
	r, err := a.Prefs.SavedArea()
	if err != nil || r == nil || r.Empty() {
		return image.Rectangle{}, false
	}
	return r.Image(), true
}
