package capture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/qacapture/internal/notify"
)

var gray = color.RGBA{R: 100, G: 100, B: 100, A: 255}

type fakeSource struct {
	displays []Display
	rasters  map[int]*image.RGBA
	grabErr  error
	grabbed  []int
}

func (f *fakeSource) Displays() ([]Display, error) { return f.displays, nil }

func (f *fakeSource) Grab(_ context.Context, d Display) (*image.RGBA, error) {
	f.grabbed = append(f.grabbed, d.ID)
	if f.grabErr != nil {
		return nil, f.grabErr
	}
	r, ok := f.rasters[d.ID]
	if !ok {
		return nil, ErrNoSource
	}
	return r, nil
}

type fakeCursor struct {
	pos image.Point
	err error
}

func (f fakeCursor) Position() (image.Point, error) { return f.pos, f.err }

type fakeClipboard struct {
	data [][]byte
	err  error
}

func (f *fakeClipboard) WriteImage(b []byte) error {
	if f.err != nil {
		return f.err
	}
	f.data = append(f.data, b)
	return nil
}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

// twoDisplays has a 200x100 primary and a 100x100 display to its right.
func twoDisplays() *fakeSource {
	return &fakeSource{
		displays: []Display{
			{ID: 0, Label: "Display 1", Bounds: image.Rect(0, 0, 200, 100), Primary: true},
			{ID: 1, Label: "Display 2", Bounds: image.Rect(200, 0, 300, 100)},
		},
		rasters: map[int]*image.RGBA{0: solid(200, 100), 1: solid(100, 100)},
	}
}

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestCaptureFullscreen_WritesSequentialFiles(t *testing.T) {
	dir := t.TempDir()
	svc := New(twoDisplays(), zerolog.Nop())
	opts := Options{TargetFolder: dir}

	first, err := svc.CaptureFullscreen(context.Background(), 0, opts)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "screenshot-001.png", first.Filename)
	assert.Equal(t, filepath.Join(dir, "screenshot-001.png"), first.Filepath)

	second, err := svc.CaptureFullscreen(context.Background(), 1, opts)
	require.NoError(t, err)
	assert.Equal(t, "screenshot-002.png", second.Filename)

	assert.Equal(t, image.Pt(200, 100), decode(t, first.Filepath).Bounds().Size())
	assert.Equal(t, image.Pt(100, 100), decode(t, second.Filepath).Bounds().Size())
}

func TestCaptureFullscreen_OutOfRangeFallsBackToFirstDisplay(t *testing.T) {
	src := twoDisplays()
	svc := New(src, zerolog.Nop())

	res, err := svc.CaptureFullscreen(context.Background(), 7, Options{TargetFolder: t.TempDir()})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, []int{0}, src.grabbed)
}

func TestCaptureFullscreen_NoSourceReturnsNil(t *testing.T) {
	src := twoDisplays()
	delete(src.rasters, 1)
	svc := New(src, zerolog.Nop())
	dir := t.TempDir()

	res, err := svc.CaptureFullscreen(context.Background(), 1, Options{TargetFolder: dir})
	assert.NoError(t, err)
	assert.Nil(t, res)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)

	empty := New(&fakeSource{}, zerolog.Nop())
	res, err = empty.CaptureFullscreen(context.Background(), 0, Options{TargetFolder: dir})
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestCaptureFullscreen_GrabFailureIsNotified(t *testing.T) {
	src := twoDisplays()
	src.grabErr = errors.New("permission denied")
	rec := &notify.Recorder{}
	svc := New(src, zerolog.Nop(), WithNotifier(rec))

	res, err := svc.CaptureFullscreen(context.Background(), 0, Options{TargetFolder: t.TempDir()})
	assert.Error(t, err)
	assert.Nil(t, res)
	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, notify.LevelError, rec.Notices()[0].Level)
}

func TestCaptureArea_Crops(t *testing.T) {
	src := twoDisplays()
	src.rasters[0].SetRGBA(60, 30, color.RGBA{R: 255, A: 255})
	svc := New(src, zerolog.Nop())

	res, err := svc.CaptureArea(context.Background(), 0, image.Rect(50, 20, 90, 80), Options{TargetFolder: t.TempDir()})
	require.NoError(t, err)

	img := decode(t, res.Filepath)
	assert.Equal(t, image.Pt(40, 60), img.Bounds().Size())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgbaAt(img, 10, 10))
	assert.Equal(t, gray, rgbaAt(img, 0, 0))
}

func TestCaptureArea_OutsideRasterFails(t *testing.T) {
	rec := &notify.Recorder{}
	svc := New(twoDisplays(), zerolog.Nop(), WithNotifier(rec))

	_, err := svc.CaptureArea(context.Background(), 0, image.Rect(500, 500, 600, 600), Options{TargetFolder: t.TempDir()})
	assert.ErrorIs(t, err, ErrEmptyArea)
	assert.NotEmpty(t, rec.Notices())
}

func TestCursor_StampedWhenOnDisplay(t *testing.T) {
	svc := New(twoDisplays(), zerolog.Nop(), WithCursor(fakeCursor{pos: image.Pt(230, 40)}))

	res, err := svc.CaptureFullscreen(context.Background(), 1, Options{TargetFolder: t.TempDir(), CursorInScreenshots: true})
	require.NoError(t, err)

	img := decode(t, res.Filepath)
	assert.Equal(t, color.RGBA{A: 255}, rgbaAt(img, 30, 40), "cursor tip should be drawn at the display-relative position")
	assert.Equal(t, gray, rgbaAt(img, 29, 40))
}

func TestCursor_OffDisplayOrDisabledLeavesRaster(t *testing.T) {
	tests := []struct {
		name   string
		cursor CursorSource
		enable bool
	}{
		{"pointer on other display", fakeCursor{pos: image.Pt(250, 50)}, true},
		{"pointer error", fakeCursor{err: ErrCursorUnavailable}, true},
		{"disabled", fakeCursor{pos: image.Pt(10, 10)}, false},
		{"no cursor source", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.cursor != nil {
				opts = append(opts, WithCursor(tt.cursor))
			}
			svc := New(twoDisplays(), zerolog.Nop(), opts...)

			res, err := svc.CaptureFullscreen(context.Background(), 0, Options{TargetFolder: t.TempDir(), CursorInScreenshots: tt.enable})
			require.NoError(t, err)
			img := decode(t, res.Filepath)
			for _, p := range []image.Point{{10, 10}, {50, 50}, {0, 0}} {
				assert.Equal(t, gray, rgbaAt(img, p.X, p.Y))
			}
		})
	}
}

func TestCursor_NilGlyphDegradesGracefully(t *testing.T) {
	svc := New(twoDisplays(), zerolog.Nop(), WithCursor(fakeCursor{pos: image.Pt(10, 10)}), WithGlyph(nil))

	res, err := svc.CaptureFullscreen(context.Background(), 0, Options{TargetFolder: t.TempDir(), CursorInScreenshots: true})
	require.NoError(t, err)
	assert.Equal(t, gray, rgbaAt(decode(t, res.Filepath), 10, 10))
}

func TestCursor_AppliedBeforeCrop(t *testing.T) {
	svc := New(twoDisplays(), zerolog.Nop(), WithCursor(fakeCursor{pos: image.Pt(50, 50)}))

	res, err := svc.CaptureArea(context.Background(), 0, image.Rect(40, 40, 100, 100), Options{TargetFolder: t.TempDir(), CursorInScreenshots: true})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{A: 255}, rgbaAt(decode(t, res.Filepath), 10, 10))
}

func TestCursorOnRaster_ScalesToPixels(t *testing.T) {
	at, ok := cursorOnRaster(image.Pt(1930, 20), image.Rect(1920, 0, 2020, 100), image.Pt(200, 200))
	require.True(t, ok)
	assert.Equal(t, image.Pt(20, 40), at)

	_, ok = cursorOnRaster(image.Pt(2020, 20), image.Rect(1920, 0, 2020, 100), image.Pt(200, 200))
	assert.False(t, ok, "right edge is outside")
}

func TestClipboard(t *testing.T) {
	clip := &fakeClipboard{}
	svc := New(twoDisplays(), zerolog.Nop(), WithClipboard(clip))

	_, err := svc.CaptureFullscreen(context.Background(), 0, Options{TargetFolder: t.TempDir(), CopyToClipboard: true})
	require.NoError(t, err)
	require.Len(t, clip.data, 1)

	_, err = png.Decode(bytes.NewReader(clip.data[0]))
	assert.NoError(t, err)
}

func TestClipboard_FailureDoesNotFailCapture(t *testing.T) {
	rec := &notify.Recorder{}
	svc := New(twoDisplays(), zerolog.Nop(), WithClipboard(&fakeClipboard{err: errors.New("no display")}), WithNotifier(rec))

	res, err := svc.CaptureFullscreen(context.Background(), 0, Options{TargetFolder: t.TempDir(), CopyToClipboard: true})
	require.NoError(t, err)
	assert.NotNil(t, res)
	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, notify.LevelWarning, rec.Notices()[0].Level)
}

func TestWriteFailureIsNotified(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	rec := &notify.Recorder{}
	svc := New(twoDisplays(), zerolog.Nop(), WithNotifier(rec))

	res, err := svc.CaptureFullscreen(context.Background(), 0, Options{TargetFolder: blocker})
	assert.Error(t, err)
	assert.Nil(t, res)
	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, notify.LevelError, rec.Notices()[0].Level)
}

func TestPending_ReleasedCannotBeSaved(t *testing.T) {
	svc := New(twoDisplays(), zerolog.Nop())
	dir := t.TempDir()

	pending, err := svc.Grab(context.Background(), 0, Options{})
	require.NoError(t, err)
	require.Equal(t, image.Pt(200, 100), pending.Size())

	pending.Release()
	assert.True(t, pending.Released())

	_, err = svc.SavePending(pending, nil, Options{TargetFolder: dir})
	assert.ErrorIs(t, err, ErrReleased)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestCompositeCursor_DoesNotModifySource(t *testing.T) {
	src := solid(40, 40)
	out, err := CompositeCursor(src, DefaultCursor(), image.Pt(5, 5))
	require.NoError(t, err)

	assert.Equal(t, gray, src.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(5, 5))

	_, err = CompositeCursor(src, nil, image.Point{})
	assert.Error(t, err)
}

func TestCrop_ClipsToRaster(t *testing.T) {
	out, err := Crop(solid(50, 50), image.Rect(40, 40, 80, 80))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 10), out.Bounds().Size())

	_, err = Crop(solid(50, 50), image.Rect(60, 60, 80, 80))
	assert.ErrorIs(t, err, ErrEmptyArea)
}
