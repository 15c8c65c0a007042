package frame

import "strings"

// Ramp is the 16-glyph luminance ramp, darkest to brightest, that a
// 4-bit sample is mapped onto for terminal display.
var Ramp = []rune{' ', '.', '^', '=', '~', '-', ',', ':', ';', '+', '*', '?', '%', 'S', '#', '@'}

// Glyph maps a 4-bit sample to its ramp character.
func Glyph(v byte) rune {
	idx := int(v) * (len(Ramp) - 1) / 15
	return Ramp[idx]
}

// Render maps w*h 4-bit samples to a newline-separated text buffer of
// w columns and h rows.
func Render(samples []byte, w, h int) string {
	var b strings.Builder
	b.Grow(w*h + h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.WriteRune(Glyph(samples[y*w+x]))
		}
		if y < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
