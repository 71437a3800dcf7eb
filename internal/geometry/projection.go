package geometry

import (
	"math"

	"github.com/aalvaropc/linefit/internal/domain"
)

// NearVerticalSlope is the |slope| above which a line is treated as vertical.
const NearVerticalSlope = 100.0

// ClosestPoint returns the point on line closest to p.
//
// For |slope| <= NearVerticalSlope this is the orthogonal projection. Above
// the threshold it returns (x-intercept, p.Y), which approximates the
// projection for near-vertical lines without evaluating 1+slope².
func ClosestPoint(p domain.Point, line domain.Line) domain.Point {
	m, b := line.Slope, line.Intercept

	if math.Abs(m) > NearVerticalSlope {
		return domain.Point{X: -b / m, Y: p.Y}
	}

	cx := (p.X + m*(p.Y-b)) / (1 + m*m)
	return domain.Point{X: cx, Y: m*cx + b}
}

// Distance is the length of the segment from p to ClosestPoint(p, line).
func Distance(p domain.Point, line domain.Line) float64 {
	c := ClosestPoint(p, line)
	return math.Hypot(p.X-c.X, p.Y-c.Y)
}
