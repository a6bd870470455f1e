package selector

import (
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	confirmed []Rect
	cancelled int
}

func (r *recorder) onConfirm(rect Rect) { r.confirmed = append(r.confirmed, rect) }
func (r *recorder) onCancel()           { r.cancelled++ }

func newSession(rec *recorder) *Session {
	return Begin(image.Rect(0, 0, 1000, 800), image.Pt(1000, 800), rec.onConfirm, rec.onCancel)
}

func draw(s *Session, from, to image.Point) {
	s.PointerDown(from)
	s.PointerMove(to)
	s.PointerUp(to)
}

// adjusting returns a session showing {100,100,200,150}.
func adjusting(t *testing.T, rec *recorder) *Session {
	t.Helper()
	s := newSession(rec)
	draw(s, image.Pt(100, 100), image.Pt(300, 250))
	require.Equal(t, Adjusting, s.State())
	require.Equal(t, Rect{X: 100, Y: 100, Width: 200, Height: 150}, s.Rect())
	return s
}

func TestDrawing_BoundingBox(t *testing.T) {
	s := newSession(&recorder{})

	s.PointerDown(image.Pt(300, 300))
	assert.Equal(t, Drawing, s.State())
	assert.Equal(t, Rect{X: 300, Y: 300}, s.Rect())

	s.PointerMove(image.Pt(100, 200))
	assert.Equal(t, Rect{X: 100, Y: 200, Width: 200, Height: 100}, s.Rect())

	s.PointerMove(image.Pt(350, 250))
	assert.Equal(t, Rect{X: 300, Y: 250, Width: 50, Height: 50}, s.Rect())
}

func TestDrawing_MinimumSize(t *testing.T) {
	tests := []struct {
		name     string
		to       image.Point
		expected State
	}{
		{"click", image.Pt(100, 100), Idle},
		{"exactly ten wide", image.Pt(110, 200), Idle},
		{"exactly ten high", image.Pt(200, 110), Idle},
		{"thin horizontal", image.Pt(400, 105), Idle},
		{"just over both", image.Pt(111, 111), Adjusting},
		{"large", image.Pt(600, 500), Adjusting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(&recorder{})
			draw(s, image.Pt(100, 100), tt.to)
			assert.Equal(t, tt.expected, s.State())
			if tt.expected == Idle {
				assert.True(t, s.Rect().Empty(), "discarded drawing should clear the rectangle")
			}
		})
	}
}

func TestResize_Handles(t *testing.T) {
	tests := []struct {
		handle   Handle
		grab     image.Point
		to       image.Point
		expected Rect
	}{
		{BottomRight, image.Pt(300, 250), image.Pt(400, 300), Rect{X: 100, Y: 100, Width: 300, Height: 200}},
		{TopLeft, image.Pt(100, 100), image.Pt(50, 60), Rect{X: 50, Y: 60, Width: 250, Height: 190}},
		{Top, image.Pt(200, 100), image.Pt(260, 80), Rect{X: 100, Y: 80, Width: 200, Height: 170}},
		{Right, image.Pt(300, 175), image.Pt(350, 500), Rect{X: 100, Y: 100, Width: 250, Height: 150}},
		{Bottom, image.Pt(200, 250), image.Pt(0, 270), Rect{X: 100, Y: 100, Width: 200, Height: 170}},
		{Left, image.Pt(100, 175), image.Pt(150, 10), Rect{X: 150, Y: 100, Width: 150, Height: 150}},
		{TopRight, image.Pt(300, 100), image.Pt(320, 120), Rect{X: 100, Y: 120, Width: 220, Height: 130}},
		{BottomLeft, image.Pt(100, 250), image.Pt(90, 240), Rect{X: 90, Y: 100, Width: 210, Height: 140}},
	}

	for _, tt := range tests {
		t.Run(tt.handle.String(), func(t *testing.T) {
			s := adjusting(t, &recorder{})

			s.PointerDown(tt.grab)
			require.Equal(t, Resizing, s.State())
			require.Equal(t, tt.handle, s.ActiveHandle())

			s.PointerMove(tt.to)
			assert.Equal(t, tt.expected, s.Rect())

			s.PointerUp(tt.to)
			assert.Equal(t, Adjusting, s.State())
			assert.Equal(t, tt.expected, s.Rect())
		})
	}
}

func TestResize_FloorsAtMinimum(t *testing.T) {
	// Every handle dragged far past the opposite edge.
	tests := []struct {
		handle   Handle
		grab     image.Point
		to       image.Point
		expected Rect
	}{
		{TopLeft, image.Pt(100, 100), image.Pt(900, 700), Rect{X: 280, Y: 230, Width: 20, Height: 20}},
		{Top, image.Pt(200, 100), image.Pt(200, 700), Rect{X: 100, Y: 230, Width: 200, Height: 20}},
		{TopRight, image.Pt(300, 100), image.Pt(0, 700), Rect{X: 100, Y: 230, Width: 20, Height: 20}},
		{Right, image.Pt(300, 175), image.Pt(0, 175), Rect{X: 100, Y: 100, Width: 20, Height: 150}},
		{BottomRight, image.Pt(300, 250), image.Pt(0, 0), Rect{X: 100, Y: 100, Width: 20, Height: 20}},
		{Bottom, image.Pt(200, 250), image.Pt(200, 0), Rect{X: 100, Y: 100, Width: 200, Height: 20}},
		{BottomLeft, image.Pt(100, 250), image.Pt(900, 0), Rect{X: 280, Y: 100, Width: 20, Height: 20}},
		{Left, image.Pt(100, 175), image.Pt(900, 175), Rect{X: 280, Y: 100, Width: 20, Height: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.handle.String(), func(t *testing.T) {
			s := adjusting(t, &recorder{})
			s.PointerDown(tt.grab)
			require.Equal(t, tt.handle, s.ActiveHandle())

			s.PointerMove(tt.to)
			r := s.Rect()
			assert.Equal(t, tt.expected, r)
			assert.GreaterOrEqual(t, r.Width, MinSize)
			assert.GreaterOrEqual(t, r.Height, MinSize)
		})
	}
}

func TestResize_FloorStaysOnOverlay(t *testing.T) {
	// Narrow rectangles against each border, shrunk further by their
	// border-side handle.
	tests := []struct {
		name     string
		from, to image.Point
		handle   Handle
		grab     image.Point
		move     image.Point
		expected Rect
	}{
		{"left border", image.Pt(0, 100), image.Pt(12, 200), Left, image.Pt(0, 150), image.Pt(5, 150), Rect{X: 0, Y: 100, Width: 20, Height: 100}},
		{"right border", image.Pt(988, 100), image.Pt(1000, 200), Right, image.Pt(1000, 150), image.Pt(995, 150), Rect{X: 980, Y: 100, Width: 20, Height: 100}},
		{"top border", image.Pt(100, 0), image.Pt(200, 12), Top, image.Pt(150, 0), image.Pt(150, 5), Rect{X: 100, Y: 0, Width: 100, Height: 20}},
		{"bottom border", image.Pt(100, 788), image.Pt(200, 800), Bottom, image.Pt(150, 800), image.Pt(150, 795), Rect{X: 100, Y: 780, Width: 100, Height: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			s := newSession(rec)
			draw(s, tt.from, tt.to)
			require.Equal(t, Adjusting, s.State())

			s.PointerDown(tt.grab)
			require.Equal(t, tt.handle, s.ActiveHandle())
			s.PointerMove(tt.move)
			s.PointerUp(tt.move)
			assert.Equal(t, tt.expected, s.Rect())

			s.Confirm()
			require.Len(t, rec.confirmed, 1)
			got := rec.confirmed[0]
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got.X, 0)
			assert.GreaterOrEqual(t, got.Y, 0)
			assert.LessOrEqual(t, got.Right(), 1000)
			assert.LessOrEqual(t, got.Bottom(), 800)
		})
	}
}

func TestDrag_TranslatesWithoutResizing(t *testing.T) {
	s := adjusting(t, &recorder{})

	s.PointerDown(image.Pt(200, 175))
	require.Equal(t, Dragging, s.State())

	s.PointerMove(image.Pt(250, 200))
	assert.Equal(t, Rect{X: 150, Y: 125, Width: 200, Height: 150}, s.Rect())

	s.PointerUp(image.Pt(250, 200))
	assert.Equal(t, Adjusting, s.State())
	assert.Equal(t, Rect{X: 150, Y: 125, Width: 200, Height: 150}, s.Rect())
}

func TestDrag_StaysOnOverlay(t *testing.T) {
	s := adjusting(t, &recorder{})

	s.PointerDown(image.Pt(200, 175))
	s.PointerMove(image.Pt(-500, -500))
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 200, Height: 150}, s.Rect())

	s.PointerMove(image.Pt(5000, 5000))
	assert.Equal(t, Rect{X: 800, Y: 650, Width: 200, Height: 150}, s.Rect())
}

func TestConfirm_EmitsRect(t *testing.T) {
	rec := &recorder{}
	s := adjusting(t, rec)

	c := s.ConfirmControl()
	assert.Equal(t, Rect{X: 228, Y: 256, Width: ConfirmWidth, Height: ConfirmHeight}, c)

	s.PointerDown(image.Pt(c.X+5, c.Y+5))
	assert.Equal(t, Confirmed, s.State())
	require.Len(t, rec.confirmed, 1)
	assert.Equal(t, Rect{X: 100, Y: 100, Width: 200, Height: 150}, rec.confirmed[0])
	assert.Zero(t, rec.cancelled)

	// Terminal: later events change nothing.
	s.Escape()
	s.PointerDown(image.Pt(10, 10))
	assert.Equal(t, Confirmed, s.State())
	assert.Zero(t, rec.cancelled)
	assert.Len(t, rec.confirmed, 1)
}

func TestConfirm_ControlMovesInsideNearBottom(t *testing.T) {
	s := newSession(&recorder{})
	draw(s, image.Pt(100, 700), image.Pt(300, 790))
	require.Equal(t, Adjusting, s.State())

	c := s.ConfirmControl()
	assert.Equal(t, 790-ConfirmHeight-confirmMargin, c.Y)
	assert.LessOrEqual(t, c.Bottom(), 800)
}

func TestConfirm_ScalesToBackgroundPixels(t *testing.T) {
	rec := &recorder{}
	s := Begin(image.Rect(1920, 0, 2920, 800), image.Pt(2000, 1600), rec.onConfirm, rec.onCancel)
	draw(s, image.Pt(100, 100), image.Pt(300, 250))
	s.Confirm()

	require.Len(t, rec.confirmed, 1)
	assert.Equal(t, Rect{X: 200, Y: 200, Width: 400, Height: 300}, rec.confirmed[0])
}

func TestEscape_CancelsFromEveryLiveState(t *testing.T) {
	setups := map[string]func(s *Session){
		"idle":      func(s *Session) {},
		"drawing":   func(s *Session) { s.PointerDown(image.Pt(10, 10)) },
		"adjusting": func(s *Session) { draw(s, image.Pt(100, 100), image.Pt(300, 250)) },
		"resizing": func(s *Session) {
			draw(s, image.Pt(100, 100), image.Pt(300, 250))
			s.PointerDown(image.Pt(300, 250))
		},
		"dragging": func(s *Session) {
			draw(s, image.Pt(100, 100), image.Pt(300, 250))
			s.PointerDown(image.Pt(200, 175))
		},
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			s := newSession(rec)
			setup(s)

			s.Escape()
			assert.Equal(t, Cancelled, s.State())
			assert.Equal(t, 1, rec.cancelled)
			assert.Empty(t, rec.confirmed)

			s.Escape()
			assert.Equal(t, 1, rec.cancelled, "cancel must fire once")
		})
	}
}

func TestOutOfOrderEventsAreIgnored(t *testing.T) {
	s := newSession(&recorder{})

	s.PointerMove(image.Pt(50, 50))
	s.PointerUp(image.Pt(50, 50))
	assert.Equal(t, Idle, s.State())
	assert.True(t, s.Rect().Empty())

	s.Confirm()
	assert.Equal(t, Idle, s.State())

	s.PointerDown(image.Pt(10, 10))
	s.PointerDown(image.Pt(500, 500))
	assert.Equal(t, Drawing, s.State())
	assert.Equal(t, Rect{X: 10, Y: 10}, s.Rect(), "second press while drawing must not move the origin")
}

func TestAdjusting_PressOutsideStartsNewDrawing(t *testing.T) {
	s := adjusting(t, &recorder{})

	s.PointerDown(image.Pt(600, 600))
	assert.Equal(t, Drawing, s.State())
	assert.Equal(t, Rect{X: 600, Y: 600}, s.Rect())
}

func TestOverlay_SingleSession(t *testing.T) {
	var ov Overlay
	first := &recorder{}
	second := &recorder{}

	s1 := ov.Begin(image.Rect(0, 0, 1000, 800), image.Pt(1000, 800), first.onConfirm, first.onCancel)
	s1.PointerDown(image.Pt(10, 10))
	assert.Same(t, s1, ov.Current())

	s2 := ov.Begin(image.Rect(0, 0, 1000, 800), image.Pt(1000, 800), second.onConfirm, second.onCancel)
	assert.Equal(t, Cancelled, s1.State())
	assert.Equal(t, 1, first.cancelled)
	assert.Same(t, s2, ov.Current())

	ov.Close()
	assert.Nil(t, ov.Current())
	assert.Equal(t, 1, second.cancelled)
}

func TestReplayScript(t *testing.T) {
	script := `
# draw then nudge the corner
down 100 100
move 300 250
up 300 250
down 300 250
move 320 270
up 320 270
confirm
`
	events, err := ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, events, 7)

	rec := &recorder{}
	s := newSession(rec)
	assert.Equal(t, Confirmed, s.Replay(events))
	require.Len(t, rec.confirmed, 1)
	assert.Equal(t, Rect{X: 100, Y: 100, Width: 220, Height: 170}, rec.confirmed[0])
}

func TestParseScript_Errors(t *testing.T) {
	bad := []string{
		"down 1",
		"move a 2",
		"up 1 b",
		"jump 1 2",
		"esc now",
	}
	for _, line := range bad {
		_, err := ParseScript(strings.NewReader(line))
		assert.Error(t, err, line)
	}
}
