package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridDims_SingleFrameFillsScreen(t *testing.T) {
	cols, rows := gridDims(1, 100, 40)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)
}

func TestGridDims_TwoFramesSideBySideWhenWide(t *testing.T) {
	// width*0.38 >= height
	cols, rows := gridDims(2, 200, 40)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1, rows)
}

func TestGridDims_TwoFramesStackedWhenNarrow(t *testing.T) {
	cols, rows := gridDims(2, 40, 100)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 2, rows)
}

func TestGridDims_NFramesGridOfTwoColumns(t *testing.T) {
	cols, rows := gridDims(5, 100, 40)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 3, rows)
}

func TestComposite_BlankPanelForMissingFrame(t *testing.T) {
	panels := []panel{{samples: nil}}
	out := composite(panels, 4, 2)
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, strings.Repeat(" ", 4), line)
	}
}

func TestComposite_EmptyPanelsProducesEmptyString(t *testing.T) {
	assert.Equal(t, "", composite(nil, 10, 10))
}

func TestPanelsFromState_SelfFirstThenSortedPeers(t *testing.T) {
	self := []byte{1}
	peers := map[byte][]byte{5: {2}, 2: {3}}
	panels := panelsFromState(self, peers)
	assert.Len(t, panels, 3)
	assert.Equal(t, self, panels[0].samples)
}
