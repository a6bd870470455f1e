package capture

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenSource captures real displays through the OS.
type ScreenSource struct{}

// Displays enumerates active displays. The primary display is the one whose
// bounds start at the origin, or display 0 when none does.
func (ScreenSource) Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	displays := make([]Display, 0, n)
	primary := -1
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		if primary < 0 && bounds.Min == (image.Point{}) {
			primary = i
		}
		displays = append(displays, Display{
			ID:     i,
			Label:  fmt.Sprintf("Display %d (%dx%d)", i+1, bounds.Dx(), bounds.Dy()),
			Bounds: bounds,
		})
	}
	if primary < 0 && len(displays) > 0 {
		primary = 0
	}
	if primary >= 0 {
		displays[primary].Primary = true
	}
	return displays, nil
}

// Grab captures display d.
func (ScreenSource) Grab(ctx context.Context, d Display) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.ID < 0 || d.ID >= screenshot.NumActiveDisplays() {
		return nil, ErrNoSource
	}
	img, err := screenshot.CaptureDisplay(d.ID)
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", d.ID, err)
	}
	return img, nil
}
