package train

import "github.com/aalvaropc/linefit/internal/domain"

// Normalizer is a per-axis min-max rescaling to [0,1]. A degenerate axis
// (all values equal) uses a range of 1 so nothing divides by zero.
type Normalizer struct {
	XMin, XRange float64
	YMin, YRange float64
}

func NewNormalizer(points []domain.Point) Normalizer {
	if len(points) == 0 {
		return Normalizer{XRange: 1, YRange: 1}
	}

	xMin, xMax := points[0].X, points[0].X
	yMin, yMax := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		xMin = min(xMin, p.X)
		xMax = max(xMax, p.X)
		yMin = min(yMin, p.Y)
		yMax = max(yMax, p.Y)
	}

	xr := xMax - xMin
	if xr == 0 {
		xr = 1
	}
	yr := yMax - yMin
	if yr == 0 {
		yr = 1
	}
	return Normalizer{XMin: xMin, XRange: xr, YMin: yMin, YRange: yr}
}

// Data returns the normalized x and y columns.
func (n Normalizer) Data(points []domain.Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = (p.X - n.XMin) / n.XRange
		ys[i] = (p.Y - n.YMin) / n.YRange
	}
	return xs, ys
}

// Normalize maps a line in data space to (kernel, bias) in normalized space.
func (n Normalizer) Normalize(l domain.Line) (kernel, bias float64) {
	kernel = l.Slope * (n.XRange / n.YRange)
	bias = (l.Slope*n.XMin + l.Intercept - n.YMin) / n.YRange
	return kernel, bias
}

// Denormalize is the inverse of Normalize.
func (n Normalizer) Denormalize(kernel, bias float64) domain.Line {
	m := kernel * (n.YRange / n.XRange)
	b := bias*n.YRange + n.YMin - m*n.XMin
	return domain.Line{Slope: m, Intercept: b}
}
