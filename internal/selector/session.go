// Package selector implements the region-selection overlay as a pointer
// driven state machine.
//
// A Session covers one display. The overlay surface is sized to the
// display's logical bounds and shows a background capture that may have a
// different pixel size (HiDPI); pointer coordinates arrive in overlay space
// and the confirmed rectangle is reported in background-image pixels.
//
// Events are expected on a single goroutine. Events that do not fit the
// current state are ignored.
package selector

import (
	"image"
	"math"
)

// Session tracks one selection gesture from first pointer-down to confirm
// or cancel.
type Session struct {
	size      image.Point // overlay logical size
	imageSize image.Point // background raster size in pixels
	onConfirm func(Rect)
	onCancel  func()

	state  State
	rect   Rect
	origin image.Point
	handle Handle

	gestureStart image.Point
	startRect    Rect
}

// Begin opens a session over displayBounds with a background raster of
// backgroundSize pixels. Exactly one of onConfirm or onCancel is called,
// once. Either callback may be nil.
func Begin(displayBounds image.Rectangle, backgroundSize image.Point, onConfirm func(Rect), onCancel func()) *Session {
	size := image.Pt(displayBounds.Dx(), displayBounds.Dy())
	if backgroundSize.X <= 0 || backgroundSize.Y <= 0 {
		backgroundSize = size
	}
	return &Session{
		size:      size,
		imageSize: backgroundSize,
		onConfirm: onConfirm,
		onCancel:  onCancel,
		state:     Idle,
	}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Rect returns the rectangle in overlay coordinates. It is empty in Idle.
func (s *Session) Rect() Rect { return s.rect }

// ActiveHandle returns the grip being dragged while Resizing.
func (s *Session) ActiveHandle() Handle { return s.handle }

// Done reports whether the session has confirmed or cancelled.
func (s *Session) Done() bool { return s.state.Terminal() }

// PointerDown handles a press at p (overlay coordinates).
func (s *Session) PointerDown(p image.Point) {
	p = s.clamp(p)

	switch s.state {
	case Idle:
		s.startDrawing(p)
	case Adjusting:
		if s.ConfirmControl().Contains(p) {
			s.confirm()
			return
		}
		if h := s.HandleAt(p); h != NoHandle {
			s.state = Resizing
			s.handle = h
			s.gestureStart = p
			s.startRect = s.rect
			return
		}
		if s.rect.Contains(p) {
			s.state = Dragging
			s.gestureStart = p
			s.startRect = s.rect
			return
		}
		s.startDrawing(p)
	}
}

// PointerMove handles pointer motion to p.
func (s *Session) PointerMove(p image.Point) {
	p = s.clamp(p)

	switch s.state {
	case Drawing:
		s.rect = boundingBox(s.origin, p)
	case Resizing:
		s.rect = s.resized(p)
	case Dragging:
		s.rect = s.dragged(p)
	}
}

// PointerUp handles a release at p.
func (s *Session) PointerUp(p image.Point) {
	switch s.state {
	case Drawing:
		s.PointerMove(p)
		if s.rect.Width > MinDrawSize && s.rect.Height > MinDrawSize {
			s.state = Adjusting
		} else {
			s.state = Idle
			s.rect = Rect{}
		}
	case Resizing, Dragging:
		s.PointerMove(p)
		s.state = Adjusting
		s.handle = NoHandle
	}
}

// Escape cancels the session from any non-terminal state.
func (s *Session) Escape() {
	if s.state.Terminal() {
		return
	}
	s.state = Cancelled
	s.rect = Rect{}
	s.handle = NoHandle
	if s.onCancel != nil {
		s.onCancel()
	}
}

// Confirm presses the confirm control, if it is showing.
func (s *Session) Confirm() {
	if s.state == Adjusting {
		s.confirm()
	}
}

// HandleAt returns the grip under p, or NoHandle. Only meaningful once a
// rectangle is showing.
func (s *Session) HandleAt(p image.Point) Handle {
	if s.rect.Empty() {
		return NoHandle
	}
	half := HandleSize / 2
	for _, h := range Handles {
		c := h.center(s.rect)
		if abs(p.X-c.X) <= half && abs(p.Y-c.Y) <= half {
			return h
		}
	}
	return NoHandle
}

// ConfirmControl returns where the confirm control is drawn: under the
// bottom-right corner, or just inside it when there is no room below.
// It is empty unless the session is Adjusting.
func (s *Session) ConfirmControl() Rect {
	if s.state != Adjusting {
		return Rect{}
	}
	c := Rect{
		X:      s.rect.Right() - ConfirmWidth,
		Y:      s.rect.Bottom() + confirmMargin,
		Width:  ConfirmWidth,
		Height: ConfirmHeight,
	}
	if c.Bottom() > s.size.Y {
		c.Y = s.rect.Bottom() - ConfirmHeight - confirmMargin
	}
	if c.X < 0 {
		c.X = 0
	}
	if c.Y < 0 {
		c.Y = 0
	}
	return c
}

// ToImage maps r from overlay coordinates to background pixels.
func (s *Session) ToImage(r Rect) Rect {
	if s.size.X <= 0 || s.size.Y <= 0 || s.size == s.imageSize {
		return r
	}
	sx := float64(s.imageSize.X) / float64(s.size.X)
	sy := float64(s.imageSize.Y) / float64(s.size.Y)

	x0 := scaleCoord(r.X, sx, s.imageSize.X)
	y0 := scaleCoord(r.Y, sy, s.imageSize.Y)
	x1 := scaleCoord(r.Right(), sx, s.imageSize.X)
	y1 := scaleCoord(r.Bottom(), sy, s.imageSize.Y)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func (s *Session) confirm() {
	s.state = Confirmed
	result := s.ToImage(s.rect)
	if s.onConfirm != nil {
		s.onConfirm(result)
	}
}

func (s *Session) startDrawing(p image.Point) {
	s.state = Drawing
	s.origin = p
	s.rect = Rect{X: p.X, Y: p.Y}
	s.handle = NoHandle
}

// resized applies the active handle's edit to the rectangle captured at
// gesture start. Edges the handle does not own stay put; a dimension that
// would drop under MinSize is held at MinSize against the fixed edge, and
// shifted back onto the overlay when that pushes it past a border.
func (s *Session) resized(p image.Point) Rect {
	dx := p.X - s.gestureStart.X
	dy := p.Y - s.gestureStart.Y
	r := s.startRect
	left, top, right, bottom := s.handle.edges()

	switch {
	case right:
		r.Width = max(MinSize, s.startRect.Width+dx)
	case left:
		fixed := s.startRect.Right()
		r.Width = max(MinSize, s.startRect.Width-dx)
		r.X = fixed - r.Width
	}

	switch {
	case bottom:
		r.Height = max(MinSize, s.startRect.Height+dy)
	case top:
		fixed := s.startRect.Bottom()
		r.Height = max(MinSize, s.startRect.Height-dy)
		r.Y = fixed - r.Height
	}

	r.X = clampInt(r.X, 0, max(0, s.size.X-r.Width))
	r.Y = clampInt(r.Y, 0, max(0, s.size.Y-r.Height))
	return r
}

// dragged translates the start rectangle by the pointer delta, keeping it
// on the overlay.
func (s *Session) dragged(p image.Point) Rect {
	r := s.startRect
	r.X = clampInt(s.startRect.X+p.X-s.gestureStart.X, 0, max(0, s.size.X-r.Width))
	r.Y = clampInt(s.startRect.Y+p.Y-s.gestureStart.Y, 0, max(0, s.size.Y-r.Height))
	return r
}

func (s *Session) clamp(p image.Point) image.Point {
	return image.Pt(clampInt(p.X, 0, s.size.X), clampInt(p.Y, 0, s.size.Y))
}

func boundingBox(a, b image.Point) Rect {
	return Rect{
		X:      min(a.X, b.X),
		Y:      min(a.Y, b.Y),
		Width:  abs(b.X - a.X),
		Height: abs(b.Y - a.Y),
	}
}

func scaleCoord(v int, factor float64, limit int) int {
	return clampInt(int(math.Round(float64(v)*factor)), 0, limit)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
