package domain

// Fixed drawing constants. The logical graph range and the drawing surface
// never change for the lifetime of the process.
const (
	GraphMin = -10.0
	GraphMax = 10.0

	SurfaceWidth  = 800.0
	SurfaceHeight = 600.0
	SurfaceMargin = 40.0

	GridDivisions = 20
	LabelStep     = 2

	SlopeSliderMin     = -5.0
	SlopeSliderMax     = 5.0
	InterceptSliderMin = -10.0
	InterceptSliderMax = 10.0
	SliderStep         = 0.1
)
