package selector

import (
	"fmt"
	"image"
)

const (
	// MinDrawSize is the size a fresh drawing must exceed on both axes to
	// be kept; smaller gestures are treated as stray clicks.
	MinDrawSize = 10

	// MinSize is the floor applied to every dimension while resizing.
	MinSize = 20

	// HandleSize is the side of the square hit area around each handle.
	HandleSize = 10

	// ConfirmWidth and ConfirmHeight size the confirm control.
	ConfirmWidth  = 72
	ConfirmHeight = 28

	confirmMargin = 6
)

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r (right and bottom edges inclusive,
// matching how a pointer lands on a drawn border).
func (r Rect) Contains(p image.Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// FromImage converts an image.Rectangle to a Rect.
func FromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// State is a step of the selection gesture.
type State int

const (
	Idle State = iota
	Drawing
	Adjusting
	Resizing
	Dragging
	Confirmed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Adjusting:
		return "adjusting"
	case Resizing:
		return "resizing"
	case Dragging:
		return "dragging"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool { return s == Confirmed || s == Cancelled }

// Handle identifies one of the eight resize grips.
type Handle int

const (
	NoHandle Handle = iota
	TopLeft
	Top
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
)

// Handles lists every grip in hit-test order.
var Handles = []Handle{TopLeft, TopRight, BottomRight, BottomLeft, Top, Right, Bottom, Left}

func (h Handle) String() string {
	switch h {
	case TopLeft:
		return "top-left"
	case Top:
		return "top"
	case TopRight:
		return "top-right"
	case Right:
		return "right"
	case BottomRight:
		return "bottom-right"
	case Bottom:
		return "bottom"
	case BottomLeft:
		return "bottom-left"
	case Left:
		return "left"
	default:
		return "none"
	}
}

// edges reports which rectangle edges the handle moves.
func (h Handle) edges() (left, top, right, bottom bool) {
	switch h {
	case TopLeft:
		return true, true, false, false
	case Top:
		return false, true, false, false
	case TopRight:
		return false, true, true, false
	case Right:
		return false, false, true, false
	case BottomRight:
		return false, false, true, true
	case Bottom:
		return false, false, false, true
	case BottomLeft:
		return true, false, false, true
	case Left:
		return true, false, false, false
	}
	return false, false, false, false
}

// center returns the handle's anchor point on r.
func (h Handle) center(r Rect) image.Point {
	midX := r.X + r.Width/2
	midY := r.Y + r.Height/2
	switch h {
	case TopLeft:
		return image.Pt(r.X, r.Y)
	case Top:
		return image.Pt(midX, r.Y)
	case TopRight:
		return image.Pt(r.Right(), r.Y)
	case Right:
		return image.Pt(r.Right(), midY)
	case BottomRight:
		return image.Pt(r.Right(), r.Bottom())
	case Bottom:
		return image.Pt(midX, r.Bottom())
	case BottomLeft:
		return image.Pt(r.X, r.Bottom())
	case Left:
		return image.Pt(r.X, midY)
	}
	return image.Point{}
}
