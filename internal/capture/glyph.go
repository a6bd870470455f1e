package capture

import (
	"image"
	"image/color"
)

// arrowBitmap is a classic pointer: B = outline, W = fill, . = transparent.
var arrowBitmap = []string{
	"B...........",
	"BB..........",
	"BWB.........",
	"BWWB........",
	"BWWWB.......",
	"BWWWWB......",
	"BWWWWWB.....",
	"BWWWWWWB....",
	"BWWWWWWWB...",
	"BWWWWWWWWB..",
	"BWWWWWWWWWB.",
	"BWWWWWWBBBBB",
	"BWWWBWWB....",
	"BWWBBWWB....",
	"BWB..BWWB...",
	"BB...BWWB...",
	"B.....BWWB..",
	"......BWWB..",
	".......BB...",
}

// DefaultCursor returns an arrow glyph whose tip is at (0,0).
func DefaultCursor() image.Image {
	h := len(arrowBitmap)
	w := len(arrowBitmap[0])
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y, row := range arrowBitmap {
		for x, c := range row {
			switch c {
			case 'B':
				img.SetRGBA(x, y, color.RGBA{A: 255})
			case 'W':
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}
	return img
}
