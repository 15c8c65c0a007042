package frame

import "fmt"

// Pack quantizes g to 4-bit samples and packs them two-per-byte, high
// nibble first, producing g.W*g.H/2 bytes. The horizontal direction is
// mirrored during packing (each row is read right-to-left) to produce
// a natural self-view mirror.
func Pack(g Grid) []byte {
	out := make([]byte, g.W*g.H/2)
	idx := 0
	for y := 0; y < g.H; y++ {
		for xb := 0; xb < g.W; xb += 2 {
			srcX0 := g.W - 1 - xb
			srcX1 := g.W - 1 - (xb + 1)
			hi := quantizeLuma(g.At(srcX0, y))
			lo := quantizeLuma(g.At(srcX1, y))
			out[idx] = hi<<4 | lo
			idx++
		}
	}
	return out
}

// Unpack splits a packed buffer for a w×h grid back into w*h 4-bit
// samples, in the same (mirrored) order they were packed in.
func Unpack(packed []byte, w, h int) ([]byte, error) {
	want := w * h / 2
	if len(packed) != want {
		return nil, fmt.Errorf("frame: packed buffer is %d bytes, want %d for %dx%d", len(packed), want, w, h)
	}
	out := make([]byte, w*h)
	for i, b := range packed {
		out[2*i] = b >> 4
		out[2*i+1] = b & 0x0F
	}
	return out, nil
}
