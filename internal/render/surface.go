package render

import "image/color"

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Stroke describes how a line or outline is drawn. Dash lengths are in
// drawing units; an empty Dash is a solid line.
type Stroke struct {
	Color color.RGBA
	Width float64
	Dash  []float64
}

// TextStyle positions text relative to its anchor; y is the baseline.
type TextStyle struct {
	Color color.RGBA
	Size  float64
	Align Align
}

// Surface is a drawing target addressed in drawing coordinates: origin at
// the top-left corner, y growing downward.
type Surface interface {
	Size() (w, h float64)
	Clear()
	StrokeLine(x0, y0, x1, y1 float64, s Stroke)
	FillCircle(cx, cy, r float64, c color.RGBA)
	StrokeCircle(cx, cy, r float64, s Stroke)
	Text(x, y float64, text string, st TextStyle)
}
