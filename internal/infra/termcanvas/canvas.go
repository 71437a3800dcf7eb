// Package termcanvas is a render.Surface that rasterizes onto terminal cells
// using braille dots (2x4 per cell), coloured with lipgloss.
package termcanvas

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/render"
)

const brailleBase = 0x2800

// brailleBits[row][col] is the dot bit for a position inside one cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type cell struct {
	dots     uint8
	dotColor color.RGBA
	text     rune
	txtColor color.RGBA
}

// Canvas keeps the logical drawing size of the desktop surface (800x600) and
// scales everything down to cols x rows cells.
type Canvas struct {
	cols, rows int
	w, h       float64
	sx, sy     float64 // drawing units -> dots
	cells      []cell
}

func New(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the cell grid and clears it.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c.cols, c.rows = cols, rows
	c.w, c.h = domain.SurfaceWidth, domain.SurfaceHeight
	c.sx = float64(cols*2) / c.w
	c.sy = float64(rows*4) / c.h
	c.cells = make([]cell, cols*rows)
}

func (c *Canvas) Cols() int { return c.cols }
func (c *Canvas) Rows() int { return c.rows }

var _ render.Surface = (*Canvas)(nil)

func (c *Canvas) Size() (float64, float64) { return c.w, c.h }

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
}

func (c *Canvas) toDots(x, y float64) (int, int) {
	return int(math.Floor(x * c.sx)), int(math.Floor(y * c.sy))
}

func (c *Canvas) set(dx, dy int, col color.RGBA) {
	if dx < 0 || dy < 0 || dx >= c.cols*2 || dy >= c.rows*4 {
		return
	}
	i := (dy/4)*c.cols + dx/2
	c.cells[i].dots |= brailleBits[dy%4][dx%2]
	c.cells[i].dotColor = col
}

// StrokeLine draws a one-dot-wide line; widths are not representable.
func (c *Canvas) StrokeLine(x0, y0, x1, y1 float64, s render.Stroke) {
	if anyNonFinite(x0, y0, x1, y1) {
		return
	}
	x0, y0, x1, y1, ok := clip(x0, y0, x1, y1, c.w, c.h)
	if !ok {
		return
	}
	ax, ay := c.toDots(x0, y0)
	bx, by := c.toDots(x1, y1)

	on, off := c.dashPattern(s.Dash)

	dx := abs(bx - ax)
	dy := -abs(by - ay)
	stepX, stepY := 1, 1
	if ax > bx {
		stepX = -1
	}
	if ay > by {
		stepY = -1
	}

	err := dx + dy
	for i := 0; ; i++ {
		if off == 0 || i%(on+off) < on {
			c.set(ax, ay, s.Color)
		}
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			ax += stepX
		}
		if e2 <= dx {
			err += dx
			ay += stepY
		}
	}
}

// clip trims a segment to [0,w]x[0,h] (Liang-Barsky). Steep fitted lines
// reach far outside the surface and must not be walked dot by dot.
func clip(x0, y0, x1, y1, w, h float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0},
		{dx, w - x0},
		{-dy, y0},
		{dy, h - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func (c *Canvas) dashPattern(dash []float64) (on, off int) {
	if len(dash) < 2 {
		return 1, 0
	}
	scale := (c.sx + c.sy) / 2
	on = max(1, int(math.Round(dash[0]*scale)))
	off = max(1, int(math.Round(dash[1]*scale)))
	return on, off
}

func (c *Canvas) FillCircle(cx, cy, r float64, col color.RGBA) {
	if anyNonFinite(cx, cy, r) {
		return
	}
	rx := math.Max(r*c.sx, 0.5)
	ry := math.Max(r*c.sy, 0.5)
	mx, my := cx*c.sx, cy*c.sy

	for dy := int(math.Floor(my - ry)); dy <= int(math.Ceil(my+ry)); dy++ {
		for dx := int(math.Floor(mx - rx)); dx <= int(math.Ceil(mx+rx)); dx++ {
			nx := (float64(dx) + 0.5 - mx) / rx
			ny := (float64(dy) + 0.5 - my) / ry
			if nx*nx+ny*ny <= 1 {
				c.set(dx, dy, col)
			}
		}
	}
	// always mark the centre so tiny markers stay visible
	px, py := c.toDots(cx, cy)
	c.set(px, py, col)
}

// StrokeCircle is a no-op: at braille resolution a marker ring would only
// repaint the marker's cells in the ring colour.
func (c *Canvas) StrokeCircle(_, _, _ float64, _ render.Stroke) {}

func (c *Canvas) Text(x, y float64, text string, st render.TextStyle) {
	if anyNonFinite(x, y) {
		return
	}
	runes := []rune(text)
	col := int(math.Floor(x * c.sx / 2))
	row := int(math.Floor((y - st.Size/2) * c.sy / 4))

	switch st.Align {
	case render.AlignCenter:
		col -= len(runes) / 2
	case render.AlignRight:
		col -= len(runes)
	}

	if row < 0 || row >= c.rows {
		return
	}
	for i, r := range runes {
		cc := col + i
		if cc < 0 || cc >= c.cols {
			continue
		}
		idx := row*c.cols + cc
		c.cells[idx].text = r
		c.cells[idx].txtColor = st.Color
	}
}

// Glyph returns the rune shown in a cell: text wins over dots.
func (c *Canvas) Glyph(col, row int) rune {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return ' '
	}
	ce := c.cells[row*c.cols+col]
	switch {
	case ce.text != 0:
		return ce.text
	case ce.dots != 0:
		return rune(brailleBase + int(ce.dots))
	default:
		return ' '
	}
}

// Plain renders the grid without colours.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			b.WriteRune(c.Glyph(col, row))
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// View renders the grid with colours, grouping runs of equally coloured cells.
func (c *Canvas) View() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		var run strings.Builder
		var runColor color.RGBA
		hasRun := false

		flush := func() {
			if !hasRun {
				return
			}
			b.WriteString(lipgloss.NewStyle().Foreground(hex(runColor)).Render(run.String()))
			run.Reset()
			hasRun = false
		}

		for col := 0; col < c.cols; col++ {
			ce := c.cells[row*c.cols+col]
			g := c.Glyph(col, row)
			if g == ' ' {
				flush()
				b.WriteByte(' ')
				continue
			}
			fg := ce.dotColor
			if ce.text != 0 {
				fg = ce.txtColor
			}
			if hasRun && fg != runColor {
				flush()
			}
			run.WriteRune(g)
			runColor = fg
			hasRun = true
		}
		flush()

		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func anyNonFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
