package render

import "image/color"

var (
	GridColor     = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	AxisColor     = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	LabelColor    = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	LineColor     = color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}
	DistanceColor = color.RGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff}
	PointColor    = color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}
	PointRing     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ReadoutColor  = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

const (
	gridWidth     = 1
	axisWidth     = 2
	lineWidth     = 3
	distanceWidth = 1
	pointRadius   = 6
	ringWidth     = 2
	labelSize     = 12
	readoutSize   = 14
)

var distanceDash = []float64{5, 5}
