// Package evidence holds the application state: every service the front
// end drives, wired once at startup and passed explicitly instead of living
// in package globals.
package evidence

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/qacapture/internal/capture"
	"github.com/blackwell-systems/qacapture/internal/clock"
	"github.com/blackwell-systems/qacapture/internal/config"
	"github.com/blackwell-systems/qacapture/internal/layout"
	"github.com/blackwell-systems/qacapture/internal/notify"
	"github.com/blackwell-systems/qacapture/internal/records"
	"github.com/blackwell-systems/qacapture/internal/report"
	"github.com/blackwell-systems/qacapture/internal/selector"
	"github.com/blackwell-systems/qacapture/internal/store"
)

var (
	// ErrTestNotFound is returned when an id matches no record.
	ErrTestNotFound = errors.New("test not found")
	// ErrAmbiguousID is returned when a short id prefix matches several records.
	ErrAmbiguousID = errors.New("id prefix matches more than one test")
	// ErrNoActiveTest is returned when no test id was given and none is active.
	ErrNoActiveTest = errors.New("no active test (create one with 'qacapture new' or pick one with 'qacapture continue')")
	// ErrNoCaptureSource is returned when the display cannot be captured.
	ErrNoCaptureSource = errors.New("no capture source for display")
)

// Deps are the platform collaborators. Zero values pick the defaults.
type Deps struct {
	Source    capture.Source
	Cursor    capture.CursorSource
	Clipboard capture.Clipboard
	Renderer  report.Renderer
	Notifier  notify.Notifier
	Logger    zerolog.Logger
	Clock     clock.Clock
}

// App is the application state.
type App struct {
	Config   *config.Config
	Records  *records.Store
	Prefs    *store.Store
	Capture  *capture.Service
	Overlay  *selector.Overlay
	Exporter *report.Exporter
	Notifier notify.Notifier
	Logger   zerolog.Logger
	Clock    clock.Clock
}

// Open wires the services described by cfg.
func Open(cfg *config.Config, deps Deps) (*App, error) {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop
	}
	if deps.Source == nil {
		deps.Source = capture.ScreenSource{}
	}
	if deps.Renderer == nil {
		deps.Renderer = report.PDFRenderer{}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var locator records.Locator = records.FlatLocator{}
	if cfg.Layout == config.LayoutHierarchical {
		locator = layout.Hierarchical{Clock: deps.Clock}
	}

	recs := records.New(cfg.TestsPath(),
		records.WithClock(deps.Clock),
		records.WithLocator(locator),
		records.WithNotifier(deps.Notifier),
		records.WithLogger(deps.Logger.With().Str("component", "records").Logger()),
	)
	if err := recs.Init(); err != nil {
		return nil, err
	}

	prefs, err := store.Open(cfg.PreferencesPath())
	if err != nil {
		return nil, err
	}

	captureOpts := []capture.Option{capture.WithNotifier(deps.Notifier)}
	if deps.Cursor != nil {
		captureOpts = append(captureOpts, capture.WithCursor(deps.Cursor))
	}
	if deps.Clipboard != nil {
		captureOpts = append(captureOpts, capture.WithClipboard(deps.Clipboard))
	}

	app := &App{
		Config:   cfg,
		Records:  recs,
		Prefs:    prefs,
		Capture:  capture.New(deps.Source, deps.Logger.With().Str("component", "capture").Logger(), captureOpts...),
		Overlay:  &selector.Overlay{},
		Exporter: report.New(recs, deps.Renderer, deps.Clock, deps.Logger.With().Str("component", "report").Logger()),
		Notifier: deps.Notifier,
		Logger:   deps.Logger,
		Clock:    deps.Clock,
	}

	if cfg.CleanupOnStart {
		if _, err := app.Cleanup(); err != nil {
			app.Logger.Warn().Err(err).Msg("startup cleanup failed")
		}
	}
	return app, nil
}

// Close releases the preferences database and any open selection.
func (a *App) Close() error {
	a.Overlay.Close()
	return a.Prefs.Close()
}

// ResolveTest turns a full id, a unique id prefix, or "" (the active test)
// into a record.
func (a *App) ResolveTest(id string) (*records.TestRecord, error) {
	if id == "" {
		active, err := a.Prefs.ActiveTest()
		if err != nil {
			return nil, err
		}
		if active == "" {
			return nil, ErrNoActiveTest
		}
		id = active
	}

	if rec := a.Records.GetTest(id); rec != nil {
		return rec, nil
	}

	var match *records.TestRecord
	for _, rec := range a.Records.GetAllTests() {
		if !strings.HasPrefix(rec.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
		match = rec
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrTestNotFound, id)
	}
	return match, nil
}

// CreateTest starts a record under the configured root folder and makes it
// the active test.
func (a *App) CreateTest(h records.HeaderData) (*records.TestRecord, error) {
	rec, err := a.Records.CreateTest(a.Config.RootFolder, &h)
	if err != nil {
		notify.Error(a.Notifier, "Could not create test", err.Error())
		return nil, err
	}
	if err := a.Prefs.SetActiveTest(rec.ID); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to remember active test")
	}
	return rec, nil
}

// DeleteTest removes the record, its folder and its capture log.
func (a *App) DeleteTest(id string) (bool, error) {
	deleted, err := a.Records.DeleteTest(id)
	if err != nil || !deleted {
		return deleted, err
	}
	a.forget(id)
	return true, nil
}

// forget drops what the preferences database knows about a deleted test.
func (a *App) forget(id string) {
	if _, err := a.Prefs.DeleteCaptureEvents(id); err != nil {
		a.Logger.Warn().Err(err).Str("id", id).Msg("failed to delete capture log")
	}
	if active, err := a.Prefs.ActiveTest(); err == nil && active == id {
		if err := a.Prefs.SetActiveTest(""); err != nil {
			a.Logger.Warn().Err(err).Msg("failed to clear active test")
		}
	}
}

// Cleanup runs the auto-delete sweep and drops the capture logs of the
// records it removed.
func (a *App) Cleanup() (records.CleanupResult, error) {
	before := a.Records.GetAllTests()

	result, err := a.Records.CleanupOldTests()
	if err != nil {
		return result, err
	}
	if result.DeletedCount == 0 {
		return result, nil
	}

	for _, rec := range before {
		if a.Records.GetTest(rec.ID) == nil {
			a.forget(rec.ID)
		}
	}
	a.Logger.Info().Int("deleted", result.DeletedCount).Msg("auto-delete sweep finished")
	return result, nil
}
