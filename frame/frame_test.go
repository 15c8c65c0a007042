package frame_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk6i/ascii-sfu/frame"
)

func quantize(luma byte) byte {
	v := int(math.Round(float64(luma) * 15 / 255))
	if v > 15 {
		v = 15
	}
	return byte(v)
}

func TestPack_NibblePackLiteralExample(t *testing.T) {
	g := frame.Grid{W: 4, H: 1, Pix: []byte{0, 17, 255, 255}}
	packed := frame.Pack(g)
	require.Len(t, packed, 2)
	assert.Equal(t, byte(0xFF), packed[0])
	assert.Equal(t, byte(0x10), packed[1])
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	g := frame.NewGrid(frame.Width, frame.Height)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.Set(x, y, byte((x*7+y*13)%256))
		}
	}

	packed := frame.Pack(g)
	assert.Len(t, packed, frame.PackedSize)

	samples, err := frame.Unpack(packed, g.W, g.H)
	require.NoError(t, err)
	require.Len(t, samples, g.W*g.H)

	// unpack(pack(grid)) equals quantize_to_nibbles(grid) after the mirror.
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			mirroredX := g.W - 1 - x
			want := quantize(g.At(mirroredX, y))
			got := samples[y*g.W+x]
			assert.Equal(t, want, got, "pixel (%d,%d)", x, y)
		}
	}
}

func TestUnpack_RejectsWrongSize(t *testing.T) {
	_, err := frame.Unpack([]byte{0x00}, 4, 1)
	assert.Error(t, err)
}

func TestGlyph_MapsFullRange(t *testing.T) {
	assert.Equal(t, ' ', frame.Glyph(0))
	assert.Equal(t, '@', frame.Glyph(15))
}

func TestRender_ProducesOneRowPerLine(t *testing.T) {
	samples := []byte{0, 15, 15, 0}
	out := frame.Render(samples, 2, 2)
	assert.Equal(t, " @\n@ ", out)
}

func TestResize_DownsamplesWithNearestNeighbour(t *testing.T) {
	samples := make([]byte, frame.Width*frame.Height)
	for i := range samples {
		samples[i] = byte(i % 16)
	}
	out := frame.Resize(samples, frame.Width, frame.Height, 10, 5)
	assert.Len(t, out, 50)
}
