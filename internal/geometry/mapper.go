// Package geometry maps between graph and drawing coordinates and computes
// the closest point on a line.
package geometry

import "github.com/aalvaropc/linefit/internal/domain"

// Mapper is an affine transform between the logical graph range
// [GraphMin, GraphMax] on both axes and a drawing surface of Width x Height
// with Margin on every side. Drawing y grows downward.
type Mapper struct {
	Width  float64
	Height float64
	Margin float64
}

func NewMapper(width, height, margin float64) Mapper {
	return Mapper{Width: width, Height: height, Margin: margin}
}

// DefaultMapper is the 800x600 surface with a 40px margin.
func DefaultMapper() Mapper {
	return NewMapper(domain.SurfaceWidth, domain.SurfaceHeight, domain.SurfaceMargin)
}

const graphSpan = domain.GraphMax - domain.GraphMin

func (m Mapper) plotWidth() float64  { return m.Width - 2*m.Margin }
func (m Mapper) plotHeight() float64 { return m.Height - 2*m.Margin }

// ToDrawing converts graph coordinates to drawing coordinates. Inputs outside
// the graph range are not clamped.
func (m Mapper) ToDrawing(gx, gy float64) (px, py float64) {
	px = (gx-domain.GraphMin)/graphSpan*m.plotWidth() + m.Margin
	py = (domain.GraphMax-gy)/graphSpan*m.plotHeight() + m.Margin
	return px, py
}

// ToGraph is the inverse of ToDrawing.
func (m Mapper) ToGraph(px, py float64) (gx, gy float64) {
	gx = (px-m.Margin)/m.plotWidth()*graphSpan + domain.GraphMin
	gy = domain.GraphMax - (py-m.Margin)/m.plotHeight()*graphSpan
	return gx, gy
}

// PlotRect returns the drawing-space bounds of the graph area.
func (m Mapper) PlotRect() (left, top, right, bottom float64) {
	return m.Margin, m.Margin, m.Width - m.Margin, m.Height - m.Margin
}
