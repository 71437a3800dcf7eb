package tui

import (
	"strings"
	"unicode/utf8"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen-1 {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

// sliderBar draws a track of width runes with a knob at v's position in
// [lo, hi]. Values outside the range pin the knob to the nearest end.
func sliderBar(v, lo, hi float64, width int) string {
	if width < 2 {
		width = 2
	}
	pos := 0
	if hi > lo {
		f := (v - lo) / (hi - lo)
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		pos = int(f*float64(width-1) + 0.5)
	}
	return strings.Repeat("─", pos) + "●" + strings.Repeat("─", width-1-pos)
}
