// Package render draws the graph, the regression line, the residual
// segments and the data points onto a Surface.
package render

import (
	"fmt"
	"strconv"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/geometry"
	"github.com/aalvaropc/linefit/internal/usecase/loss"
)

// Scene is everything a frame depends on.
type Scene struct {
	Points []domain.Point
	Line   domain.Line

	// ShowReadouts draws the equation and loss text along the top margin.
	ShowReadouts bool
}

// Readouts are the numbers shown next to the graph.
type Readouts struct {
	Equation string
	Loss     domain.Loss
}

func (r Readouts) MSEText() string { return fmt.Sprintf("%.2f", r.Loss.MSE) }
func (r Readouts) SSEText() string { return fmt.Sprintf("%.2f", r.Loss.SSE) }

// ReadoutsFor computes the readouts of a scene without drawing anything.
func ReadoutsFor(points []domain.Point, line domain.Line) Readouts {
	return Readouts{Equation: line.Equation(), Loss: loss.Evaluate(points, line)}
}

// Render clears s and draws a full frame: grid, axes, then (only when points
// exist) residual segments and the line, then the point markers and finally
// the readouts. Markers are drawn after the grid so they are never hidden.
func Render(s Surface, sc Scene) Readouts {
	w, h := s.Size()
	m := geometry.NewMapper(w, h, domain.SurfaceMargin)

	s.Clear()
	drawGrid(s, m)
	drawAxes(s, m)

	if len(sc.Points) > 0 {
		drawDistances(s, m, sc.Points, sc.Line)
		drawLine(s, m, sc.Line)
	}

	drawPoints(s, m, sc.Points)

	r := ReadoutsFor(sc.Points, sc.Line)
	if sc.ShowReadouts {
		drawReadouts(s, m, r)
	}
	return r
}

func drawGrid(s Surface, m geometry.Mapper) {
	left, top, right, bottom := m.PlotRect()
	st := Stroke{Color: GridColor, Width: gridWidth}

	for i := 0; i <= domain.GridDivisions; i++ {
		x := left + float64(i)/domain.GridDivisions*(right-left)
		s.StrokeLine(x, top, x, bottom, st)
	}
	for i := 0; i <= domain.GridDivisions; i++ {
		y := top + float64(i)/domain.GridDivisions*(bottom-top)
		s.StrokeLine(left, y, right, y, st)
	}
}

func drawAxes(s Surface, m geometry.Mapper) {
	left, top, right, bottom := m.PlotRect()
	st := Stroke{Color: AxisColor, Width: axisWidth}

	s.StrokeLine(left, bottom, right, bottom, st)
	s.StrokeLine(left, top, left, bottom, st)

	xLabel := TextStyle{Color: LabelColor, Size: labelSize, Align: AlignCenter}
	for i := int(domain.GraphMin); i <= int(domain.GraphMax); i += domain.LabelStep {
		px, _ := m.ToDrawing(float64(i), 0)
		s.Text(px, bottom+20, strconv.Itoa(i), xLabel)
	}

	yLabel := TextStyle{Color: LabelColor, Size: labelSize, Align: AlignRight}
	for i := int(domain.GraphMin); i <= int(domain.GraphMax); i += domain.LabelStep {
		_, py := m.ToDrawing(0, float64(i))
		s.Text(left-10, py+4, strconv.Itoa(i), yLabel)
	}
}

func drawDistances(s Surface, m geometry.Mapper, points []domain.Point, line domain.Line) {
	st := Stroke{Color: DistanceColor, Width: distanceWidth, Dash: distanceDash}

	for _, p := range points {
		c := geometry.ClosestPoint(p, line)
		x0, y0 := m.ToDrawing(p.X, p.Y)
		x1, y1 := m.ToDrawing(c.X, c.Y)
		s.StrokeLine(x0, y0, x1, y1, st)
	}
}

func drawLine(s Surface, m geometry.Mapper, line domain.Line) {
	x0, y0 := m.ToDrawing(domain.GraphMin, line.Predict(domain.GraphMin))
	x1, y1 := m.ToDrawing(domain.GraphMax, line.Predict(domain.GraphMax))
	s.StrokeLine(x0, y0, x1, y1, Stroke{Color: LineColor, Width: lineWidth})
}

func drawPoints(s Surface, m geometry.Mapper, points []domain.Point) {
	ring := Stroke{Color: PointRing, Width: ringWidth}
	for _, p := range points {
		x, y := m.ToDrawing(p.X, p.Y)
		s.FillCircle(x, y, pointRadius, PointColor)
		s.StrokeCircle(x, y, pointRadius, ring)
	}
}

func drawReadouts(s Surface, m geometry.Mapper, r Readouts) {
	left, top, _, _ := m.PlotRect()
	txt := fmt.Sprintf("%s    MSE: %s    SSE: %s", r.Equation, r.MSEText(), r.SSEText())
	s.Text(left, top-14, txt, TextStyle{Color: ReadoutColor, Size: readoutSize, Align: AlignLeft})
}
