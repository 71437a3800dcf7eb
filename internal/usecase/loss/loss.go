// Package loss evaluates squared-error readouts of a point set against a line.
package loss

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/aalvaropc/linefit/internal/domain"
)

// Evaluate returns the sum and mean of squared residuals y - (m*x + b).
// An empty point set yields zero for both, never NaN.
func Evaluate(points []domain.Point, line domain.Line) domain.Loss {
	if len(points) == 0 {
		return domain.Loss{}
	}

	var sse float64
	for _, p := range points {
		e := p.Y - line.Predict(p.X)
		sse += e * e
	}

	return domain.Loss{SSE: sse, MSE: sse / float64(len(points))}
}

// Residuals returns y - prediction for every point, in order.
func Residuals(points []domain.Point, line domain.Line) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Y - line.Predict(p.X)
	}
	return out
}

// LeastSquares returns the ordinary least-squares line through points.
// ok is false when fewer than 2 points exist or every x is identical.
func LeastSquares(points []domain.Point) (line domain.Line, ok bool) {
	if len(points) < 2 {
		return domain.Line{}, false
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	if stat.Variance(xs, nil) == 0 {
		return domain.Line{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return domain.Line{}, false
	}
	return domain.Line{Slope: beta, Intercept: alpha}, true
}
