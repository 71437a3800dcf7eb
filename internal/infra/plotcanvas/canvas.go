// Package plotcanvas implements render.Surface on gonum/plot vector
// canvases so a scene can be exported as PNG or SVG.
package plotcanvas

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/aalvaropc/linefit/internal/domain"
	"github.com/aalvaropc/linefit/internal/render"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	default:
		return "", &domain.OpError{
			Op:   "plotcanvas.format",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("%w: unsupported export extension %q (want .png or .svg)", domain.ErrInvalidConfig, filepath.Ext(path)),
		}
	}
}

type writerTo interface {
	WriteTo(w io.Writer) (int64, error)
}

// Canvas is a drawing surface of w x h points. One drawing unit maps to one
// point; at 72 dpi the PNG is w x h pixels.
type Canvas struct {
	format Format
	w, h   float64
	dc     draw.Canvas
	out    writerTo
}

var _ render.Surface = (*Canvas)(nil)

func New(format Format, w, h float64) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, &domain.OpError{
			Op:   "plotcanvas.new",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: canvas size %gx%g", domain.ErrInvalidConfig, w, h),
		}
	}

	c := &Canvas{format: format, w: w, h: h}
	switch format {
	case FormatPNG:
		img := vgimg.NewWith(vgimg.UseWH(vg.Points(w), vg.Points(h)), vgimg.UseDPI(72))
		c.dc = draw.New(img)
		c.out = vgimg.PngCanvas{Canvas: img}
	case FormatSVG:
		svg := vgsvg.New(vg.Points(w), vg.Points(h))
		c.dc = draw.New(svg)
		c.out = svg
	default:
		return nil, &domain.OpError{
			Op:   "plotcanvas.new",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: unknown format %q", domain.ErrInvalidConfig, format),
		}
	}
	return c, nil
}

// NewDefault creates a canvas of the standard drawing surface size.
func NewDefault(format Format) (*Canvas, error) {
	return New(format, domain.SurfaceWidth, domain.SurfaceHeight)
}

func (c *Canvas) Format() Format { return c.format }

func (c *Canvas) Size() (float64, float64) { return c.w, c.h }

// pt converts drawing coordinates (y down) to vg coordinates (y up).
func (c *Canvas) pt(x, y float64) vg.Point {
	return vg.Point{X: vg.Points(x), Y: vg.Points(c.h - y)}
}

func (c *Canvas) Clear() {
	c.dc.FillPolygon(color.White, []vg.Point{
		c.pt(0, 0), c.pt(c.w, 0), c.pt(c.w, c.h), c.pt(0, c.h),
	})
}

func (c *Canvas) StrokeLine(x0, y0, x1, y1 float64, s render.Stroke) {
	if nonFinite(x0, y0, x1, y1) {
		return
	}
	a, b := c.pt(x0, y0), c.pt(x1, y1)
	c.dc.StrokeLine2(lineStyle(s), a.X, a.Y, b.X, b.Y)
}

func (c *Canvas) FillCircle(cx, cy, r float64, col color.RGBA) {
	if nonFinite(cx, cy, r) {
		return
	}
	c.dc.SetColor(col)
	c.dc.Fill(circle(c.pt(cx, cy), vg.Points(r)))
}

func (c *Canvas) StrokeCircle(cx, cy, r float64, s render.Stroke) {
	if nonFinite(cx, cy, r) {
		return
	}
	c.dc.SetLineStyle(lineStyle(s))
	c.dc.Stroke(circle(c.pt(cx, cy), vg.Points(r)))
}

func (c *Canvas) Text(x, y float64, txt string, st render.TextStyle) {
	if nonFinite(x, y) || txt == "" {
		return
	}
	size := st.Size
	if size <= 0 {
		size = 12
	}
	sty := text.Style{
		Color:   st.Color,
		Font:    font.From(plot.DefaultFont, vg.Points(size)),
		Handler: plot.DefaultTextHandler,
		XAlign:  xAlign(st.Align),
		YAlign:  text.YBottom,
	}
	c.dc.FillText(sty, c.pt(x, y), txt)
}

// WriteTo encodes the canvas in its format.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	n, err := c.out.WriteTo(w)
	if err != nil {
		return n, &domain.OpError{Op: "plotcanvas.write", Kind: domain.KindExecution, Err: err}
	}
	return n, nil
}

// Save writes the canvas to path, creating parent directories.
func (c *Canvas) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &domain.OpError{Op: "plotcanvas.save", Kind: domain.KindExecution, Path: dir, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &domain.OpError{Op: "plotcanvas.save", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if _, err := c.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &domain.OpError{Op: "plotcanvas.save", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// Export renders sc into a new file whose format follows the extension of
// path.
func Export(path string, sc render.Scene) (render.Readouts, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return render.Readouts{}, err
	}
	c, err := NewDefault(format)
	if err != nil {
		return render.Readouts{}, err
	}
	r := render.Render(c, sc)
	return r, c.Save(path)
}

func lineStyle(s render.Stroke) draw.LineStyle {
	w := s.Width
	if w <= 0 {
		w = 1
	}
	ls := draw.LineStyle{Color: s.Color, Width: vg.Points(w)}
	for _, d := range s.Dash {
		ls.Dashes = append(ls.Dashes, vg.Points(d))
	}
	return ls
}

func circle(c vg.Point, r vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: c.X + r, Y: c.Y})
	p.Arc(c, r, 0, 2*math.Pi)
	p.Close()
	return p
}

func xAlign(a render.Align) text.XAlignment {
	switch a {
	case render.AlignCenter:
		return text.XCenter
	case render.AlignRight:
		return text.XRight
	default:
		return text.XLeft
	}
}

func nonFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
