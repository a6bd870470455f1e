// Package capture grabs display rasters, optionally stamps the pointer on
// them, crops, and writes numbered PNG files into an evidence folder.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/qacapture/internal/naming"
	"github.com/blackwell-systems/qacapture/internal/notify"
)

// Service runs the capture pipeline. Captures are expected one at a time.
type Service struct {
	source    Source
	cursor    CursorSource
	clipboard Clipboard
	glyph     image.Image
	notifier  notify.Notifier
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCursor sets the pointer position source used for cursor stamping.
func WithCursor(c CursorSource) Option { return func(s *Service) { s.cursor = c } }

// WithClipboard sets the clipboard used when CopyToClipboard is on.
func WithClipboard(c Clipboard) Option { return func(s *Service) { s.clipboard = c } }

// WithGlyph replaces the default arrow cursor image.
func WithGlyph(g image.Image) Option { return func(s *Service) { s.glyph = g } }

// WithNotifier sets where user-visible failures are reported.
func WithNotifier(n notify.Notifier) Option { return func(s *Service) { s.notifier = n } }

// New creates a capture Service over source.
func New(source Source, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		source:   source,
		glyph:    DefaultCursor(),
		notifier: notify.Nop,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Displays lists the available displays.
func (s *Service) Displays() ([]Display, error) {
	displays, err := s.source.Displays()
	if err != nil {
		return nil, fmt.Errorf("failed to list displays: %w", err)
	}
	return displays, nil
}

// ResolveDisplay returns the display with index id, falling back to
// display 0 when id is out of range. ok is false when there are no
// displays at all.
func (s *Service) ResolveDisplay(id int) (Display, bool, error) {
	displays, err := s.Displays()
	if err != nil {
		return Display{}, false, err
	}
	if len(displays) == 0 {
		return Display{}, false, nil
	}
	if id < 0 || id >= len(displays) {
		s.logger.Debug().Int("display", id).Msg("display out of range, using display 0")
		id = 0
	}
	return displays[id], true, nil
}

// CaptureFullscreen grabs the whole display and writes it to
// opts.TargetFolder. It returns nil, nil when the display has no capture
// source.
func (s *Service) CaptureFullscreen(ctx context.Context, displayID int, opts Options) (*Result, error) {
	pending, err := s.Grab(ctx, displayID, opts)
	if err != nil || pending == nil {
		return nil, err
	}
	defer pending.Release()
	return s.SavePending(pending, nil, opts)
}

// CaptureArea is CaptureFullscreen cropped to area, given in raster pixels
// relative to the display.
func (s *Service) CaptureArea(ctx context.Context, displayID int, area image.Rectangle, opts Options) (*Result, error) {
	pending, err := s.Grab(ctx, displayID, opts)
	if err != nil || pending == nil {
		return nil, err
	}
	defer pending.Release()
	return s.SavePending(pending, &area, opts)
}

// Grab captures the display raster and, when enabled, stamps the cursor on
// it. The cursor goes onto the full display raster so a later crop keeps it
// where it appeared on screen. Returns nil, nil when there is no source.
func (s *Service) Grab(ctx context.Context, displayID int, opts Options) (*Pending, error) {
	display, ok, err := s.ResolveDisplay(displayID)
	if err != nil {
		s.fail("Screenshot failed", err)
		return nil, err
	}
	if !ok {
		s.logger.Warn().Int("display", displayID).Msg("no displays available")
		return nil, nil
	}

	raster, err := s.source.Grab(ctx, display)
	if errors.Is(err, ErrNoSource) {
		s.logger.Warn().Int("display", display.ID).Msg("display has no capture source")
		return nil, nil
	}
	if err != nil {
		err = fmt.Errorf("failed to grab display %d: %w", display.ID, err)
		s.fail("Screenshot failed", err)
		return nil, err
	}

	if opts.CursorInScreenshots {
		raster = s.stampCursor(raster, display)
	}

	return &Pending{Display: display, raster: raster}, nil
}

// SavePending crops the pending raster to area (nil for the whole display)
// and writes it as the next sequential PNG in opts.TargetFolder.
func (s *Service) SavePending(pending *Pending, area *image.Rectangle, opts Options) (*Result, error) {
	if pending.Released() {
		return nil, ErrReleased
	}

	img := pending.Raster()
	if area != nil {
		cropped, err := Crop(img, area.Add(img.Bounds().Min))
		if err != nil {
			s.fail("Screenshot failed", err)
			return nil, err
		}
		img = cropped
	}

	data, err := EncodePNG(img)
	if err != nil {
		s.fail("Screenshot failed", err)
		return nil, err
	}

	if err := os.MkdirAll(opts.TargetFolder, 0755); err != nil {
		err = fmt.Errorf("failed to create target folder: %w", err)
		s.fail("Could not save screenshot", err)
		return nil, err
	}

	filename := naming.NextSequentialFilename(opts.TargetFolder)
	path := filepath.Join(opts.TargetFolder, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		err = fmt.Errorf("failed to write %s: %w", path, err)
		s.fail("Could not save screenshot", err)
		return nil, err
	}

	if opts.CopyToClipboard {
		s.copyToClipboard(data)
	}

	s.logger.Info().Str("file", path).Int("display", pending.Display.ID).Msg("screenshot saved")
	return &Result{Filepath: path, Filename: filename}, nil
}

// stampCursor composites the pointer onto raster when it lies on display.
// Any failure leaves the raster untouched.
func (s *Service) stampCursor(raster *image.RGBA, display Display) *image.RGBA {
	if s.cursor == nil {
		s.logger.Debug().Msg("no cursor source, skipping cursor")
		return raster
	}
	pos, err := s.cursor.Position()
	if err != nil {
		s.logger.Debug().Err(err).Msg("cursor position unavailable")
		return raster
	}

	at, ok := cursorOnRaster(pos, display.Bounds, raster.Bounds().Size())
	if !ok {
		return raster
	}

	stamped, err := CompositeCursor(raster, s.glyph, at)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cursor compositing failed, saving without cursor")
		return raster
	}
	return stamped
}

// cursorOnRaster converts a global pointer position into raster pixels.
// ok is false when the pointer is not on this display.
func cursorOnRaster(pos image.Point, bounds image.Rectangle, rasterSize image.Point) (image.Point, bool) {
	rel := pos.Sub(bounds.Min)
	w, h := bounds.Dx(), bounds.Dy()
	if rel.X < 0 || rel.Y < 0 || rel.X >= w || rel.Y >= h {
		return image.Point{}, false
	}
	if rasterSize.X != w && w > 0 {
		rel.X = rel.X * rasterSize.X / w
	}
	if rasterSize.Y != h && h > 0 {
		rel.Y = rel.Y * rasterSize.Y / h
	}
	return rel, true
}

func (s *Service) copyToClipboard(data []byte) {
	if s.clipboard == nil {
		return
	}
	if err := s.clipboard.WriteImage(data); err != nil {
		s.logger.Warn().Err(err).Msg("failed to copy screenshot to clipboard")
		notify.Warn(s.notifier, "Clipboard", "The screenshot was saved but could not be copied to the clipboard.")
	}
}

func (s *Service) fail(title string, err error) {
	s.logger.Error().Err(err).Msg(title)
	notify.Error(s.notifier, title, err.Error())
}
