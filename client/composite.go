package client

import (
	"sort"
	"strings"

	"github.com/mk6i/ascii-sfu/frame"
)

// panel is one frame source (the local self-view or a remote peer,
// tagged by RSID) contributing to the composite. A nil samples slice
// renders as a blank panel (the peer has joined but hasn't sent a
// frame yet).
type panel struct {
	samples []byte
}

// gridDims decides the composite layout: 1 frame fills the screen; 2
// frames sit side-by-side if the terminal is wide, else stacked; N
// frames tile into a 2-column grid.
func gridDims(n, width, height int) (cols, rows int) {
	switch {
	case n <= 1:
		return 1, 1
	case n == 2:
		if float64(width)*0.38 >= float64(height) {
			return 2, 1
		}
		return 1, 2
	default:
		return 2, (n + 1) / 2
	}
}

// composite resizes each panel's samples into its grid cell and
// stitches the cells into a single text buffer. Each cell is
// width/cols by height/rows, so the buffer is at most width x height.
func composite(panels []panel, width, height int) string {
	n := len(panels)
	if n == 0 {
		return ""
	}

	cols, rows := gridDims(n, width, height)
	panelW := max(width/cols, 1)
	panelH := max(height/rows, 1)

	cells := make([][]string, cols*rows)
	for i := range cells {
		if i < n && panels[i].samples != nil {
			resized := frame.Resize(panels[i].samples, frame.Width, frame.Height, panelW, panelH)
			cells[i] = strings.Split(frame.Render(resized, panelW, panelH), "\n")
			continue
		}
		blank := strings.Repeat(" ", panelW)
		lines := make([]string, panelH)
		for j := range lines {
			lines[j] = blank
		}
		cells[i] = lines
	}

	var b strings.Builder
	for gy := 0; gy < rows; gy++ {
		for ly := 0; ly < panelH; ly++ {
			for gx := 0; gx < cols; gx++ {
				b.WriteString(cells[gy*cols+gx][ly])
			}
			if gy < rows-1 || ly < panelH-1 {
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// panelsFromState orders the local self-view (if captured) first,
// then remote peers sorted by RSID for deterministic layout.
func panelsFromState(self []byte, peers map[byte][]byte) []panel {
	panels := make([]panel, 0, len(peers)+1)
	if self != nil {
		panels = append(panels, panel{samples: self})
	}

	rsids := make([]byte, 0, len(peers))
	for rsid := range peers {
		rsids = append(rsids, rsid)
	}
	sort.Slice(rsids, func(i, j int) bool { return rsids[i] < rsids[j] })
	for _, rsid := range rsids {
		panels = append(panels, panel{samples: peers[rsid]})
	}
	return panels
}
