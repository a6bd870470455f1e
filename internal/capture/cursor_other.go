//go:build !linux

package capture

import "image"

// SystemCursor reports ErrCursorUnavailable on platforms without a pointer
// query; captures are then saved without a cursor.
type SystemCursor struct{}

// Position always fails on this platform.
func (SystemCursor) Position() (image.Point, error) {
	return image.Point{}, ErrCursorUnavailable
}
