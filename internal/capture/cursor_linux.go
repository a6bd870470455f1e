//go:build linux

package capture

import (
	"fmt"
	"image"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// SystemCursor reads the pointer position from the X server.
type SystemCursor struct{}

// Position queries the pointer on the default screen's root window.
func (SystemCursor) Position() (image.Point, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: %v", ErrCursorUnavailable, err)
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root
	reply, err := xproto.QueryPointer(conn, root).Reply()
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: %v", ErrCursorUnavailable, err)
	}
	return image.Pt(int(reply.RootX), int(reply.RootY)), nil
}
