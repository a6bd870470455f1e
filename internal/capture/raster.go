package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// Crop copies area out of src into a new raster anchored at (0,0). The area
// is clipped to src; an area that misses src entirely is ErrEmptyArea.
func Crop(src *image.RGBA, area image.Rectangle) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("crop: nil raster")
	}
	area = area.Canon().Intersect(src.Bounds())
	if area.Empty() {
		return nil, ErrEmptyArea
	}

	dst := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	rowBytes := area.Dx() * 4
	for y := 0; y < area.Dy(); y++ {
		srcStart := src.PixOffset(area.Min.X, area.Min.Y+y)
		dstStart := y * dst.Stride
		copy(dst.Pix[dstStart:dstStart+rowBytes], src.Pix[srcStart:srcStart+rowBytes])
	}
	return dst, nil
}

// CompositeCursor returns a copy of src with glyph drawn so that the
// glyph's origin lands on at. src is not modified.
func CompositeCursor(src *image.RGBA, glyph image.Image, at image.Point) (*image.RGBA, error) {
	if src == nil {
		return nil, fmt.Errorf("composite cursor: nil raster")
	}
	if glyph == nil {
		return nil, fmt.Errorf("composite cursor: nil glyph")
	}

	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)

	gb := glyph.Bounds()
	target := image.Rectangle{Min: at, Max: at.Add(gb.Size())}.Add(src.Bounds().Min)
	draw.Draw(dst, target, glyph, gb.Min, draw.Over)
	return dst, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
