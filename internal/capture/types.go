package capture

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrNoSource means the display has no matching capture source.
	ErrNoSource = errors.New("no capture source for display")

	// ErrEmptyArea means the crop area does not overlap the raster.
	ErrEmptyArea = errors.New("capture area is empty")

	// ErrReleased means a pending capture was used after Release.
	ErrReleased = errors.New("pending capture was released")

	// ErrCursorUnavailable means the platform cannot report the pointer.
	ErrCursorUnavailable = errors.New("cursor position unavailable")
)

// Display is one monitor as enumerated by the platform.
type Display struct {
	ID      int             `json:"id"`
	Label   string          `json:"label"`
	Bounds  image.Rectangle `json:"bounds"`
	Primary bool            `json:"primary"`
}

// Source enumerates displays and grabs their contents.
type Source interface {
	Displays() ([]Display, error)
	// Grab returns the full raster of d. The raster may be larger than
	// d.Bounds on scaled displays. Returns ErrNoSource when d cannot be
	// captured.
	Grab(ctx context.Context, d Display) (*image.RGBA, error)
}

// CursorSource reports the pointer position in global screen coordinates.
type CursorSource interface {
	Position() (image.Point, error)
}

// Clipboard receives PNG-encoded images.
type Clipboard interface {
	WriteImage(png []byte) error
}

// Options controls a single capture.
type Options struct {
	TargetFolder        string
	CursorInScreenshots bool
	CopyToClipboard     bool
}

// Result locates the written PNG.
type Result struct {
	Filepath string `json:"filepath"`
	Filename string `json:"filename"`
}

// Pending is a grabbed display raster waiting for a crop decision.
type Pending struct {
	Display Display
	raster  *image.RGBA
}

// Size returns the raster size in pixels, or zero after Release.
func (p *Pending) Size() image.Point {
	if p == nil || p.raster == nil {
		return image.Point{}
	}
	return p.raster.Bounds().Size()
}

// Raster returns the grabbed image, or nil after Release.
func (p *Pending) Raster() *image.RGBA {
	if p == nil {
		return nil
	}
	return p.raster
}

// Release drops the raster so it can no longer be saved.
func (p *Pending) Release() {
	if p != nil {
		p.raster = nil
	}
}

// Released reports whether Release was called.
func (p *Pending) Released() bool { return p == nil || p.raster == nil }
