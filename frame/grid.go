// Package frame implements the 4-bit grayscale pixel codec and ASCII
// rendering used by the video path: packing a grayscale grid down to
// the wire format, unpacking it back to samples, and mapping samples
// to terminal glyphs.
package frame

import "math"

// Width and Height are the fixed dimensions of the wire format's
// video grid. PackedSize is the resulting byte count: two 4-bit
// samples per byte.
const (
	Width      = 92
	Height     = 28
	PackedSize = Width * Height / 2
)

// Grid is a grayscale pixel source: row-major luma samples in
// [0, 255], W*H entries long.
type Grid struct {
	W, H int
	Pix  []byte
}

// NewGrid allocates a zeroed w×h grid.
func NewGrid(w, h int) Grid {
	return Grid{W: w, H: h, Pix: make([]byte, w*h)}
}

// At returns the luma sample at (x, y).
func (g Grid) At(x, y int) byte {
	return g.Pix[y*g.W+x]
}

// Set assigns the luma sample at (x, y).
func (g Grid) Set(x, y int, luma byte) {
	g.Pix[y*g.W+x] = luma
}

// quantizeLuma maps an 8-bit luma sample to a 4-bit sample:
// min(15, round(luma*15/255)).
func quantizeLuma(luma byte) byte {
	v := int(math.Round(float64(luma) * 15 / 255))
	if v > 15 {
		v = 15
	}
	if v < 0 {
		v = 0
	}
	return byte(v)
}
