package client

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// clearHome clears the terminal and homes the cursor before every
// redraw; differential redraw is out of scope, so each Update is a
// full-buffer write.
const clearHome = "\x1b[H\x1b[2J"

// Renderer accepts a composed text buffer and displays it. Update must
// be idempotent: calling it twice with the same buffer leaves the
// same output.
type Renderer interface {
	Update(buf string, cols, rows int) error
}

// TerminalRenderer writes to an io.Writer, normally os.Stdout.
type TerminalRenderer struct {
	out io.Writer
}

// NewTerminalRenderer builds a renderer over out.
func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{out: out}
}

func (t *TerminalRenderer) Update(buf string, cols, rows int) error {
	_, err := fmt.Fprint(t.out, clearHome, buf)
	return err
}

// TerminalSize reports the current terminal dimensions, falling back
// to a conservative default when stdout isn't a terminal (e.g. when
// piped in tests).
func TerminalSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}
