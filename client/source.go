package client

import (
	"errors"

	"github.com/mk6i/ascii-sfu/frame"
)

// ErrCameraUnavailable is returned by NullCameraSource, which stands
// in for a real OpenCV-backed capture device: live camera capture is
// explicitly out of scope, but the CLI still needs something to bind
// "--source camera" to.
var ErrCameraUnavailable = errors.New("client: camera capture is not available in this build")

// FrameSource produces grayscale pixel grids on demand. Real capture
// and synthetic generation are both expressed through this single
// capability set rather than a class hierarchy.
type FrameSource interface {
	NextFrame() (frame.Grid, error)
	Dimensions() (w, h int)
}

// NullCameraSource always fails; it exists only so a "camera" source
// selection has a concrete, documented failure mode instead of a nil
// interface.
type NullCameraSource struct{}

func (NullCameraSource) NextFrame() (frame.Grid, error) {
	return frame.Grid{}, ErrCameraUnavailable
}

func (NullCameraSource) Dimensions() (int, int) {
	return frame.Width, frame.Height
}

// TestPatternSource generates a deterministic moving gradient, useful
// for exercising the send/receive/compose pipeline without a camera.
type TestPatternSource struct {
	w, h int
	tick int
}

// NewTestPatternSource builds a source at the wire format's fixed
// dimensions.
func NewTestPatternSource() *TestPatternSource {
	return &TestPatternSource{w: frame.Width, h: frame.Height}
}

func (s *TestPatternSource) Dimensions() (int, int) {
	return s.w, s.h
}

func (s *TestPatternSource) NextFrame() (frame.Grid, error) {
	g := frame.NewGrid(s.w, s.h)
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			luma := byte((x*4 + y*4 + s.tick*3) % 256)
			g.Set(x, y, luma)
		}
	}
	s.tick++
	return g, nil
}
