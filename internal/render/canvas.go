package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"

	"plm-whiteboard/pkg/geometry"

	"github.com/fogleman/gg"
)

// Canvas is the raster Surface, backed by a gg context drawing into an
// *image.RGBA sized display size × device pixel ratio.
type Canvas struct {
	dc    *gg.Context
	im    *image.RGBA
	fonts *FontCache

	width, height int // display size
	dpr           float64

	state canvasState
	stack []canvasState
}

// canvasState is the part of the drawing state gg does not track in user
// space.
type canvasState struct {
	alpha     float64
	fill      color.NRGBA
	stroke    color.NRGBA
	lineWidth float64
	dash      []float64
}

// NewCanvas returns a canvas with a 1×1 backing raster.
func NewCanvas(fonts *FontCache) *Canvas {
	if fonts == nil {
		fonts = NewFontCache()
	}
	c := &Canvas{fonts: fonts}
	c.Resize(1, 1, 1)
	return c
}

// Resize sizes the backing raster to width*dpr × height*dpr. It reports
// whether the raster was reallocated; an unchanged size keeps the raster.
func (c *Canvas) Resize(width, height int, dpr float64) bool {
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	width, height = max(width, 1), max(height, 1)
	if c.im != nil && width == c.width && height == c.height && dpr == c.dpr {
		return false
	}
	pw := int(math.Ceil(float64(width) * dpr))
	ph := int(math.Ceil(float64(height) * dpr))
	c.width, c.height, c.dpr = width, height, dpr
	c.im = image.NewRGBA(image.Rect(0, 0, pw, ph))
	c.dc = gg.NewContextForRGBA(c.im)
	c.dc.SetLineCapRound()
	c.dc.SetLineJoinRound()
	c.reset()
	return true
}

func (c *Canvas) reset() {
	c.state = canvasState{alpha: 1, fill: color.NRGBA{A: 255}, stroke: color.NRGBA{A: 255}, lineWidth: 1}
	c.stack = c.stack[:0]
	c.dc.Identity()
	c.dc.ClearPath()
}

// Image returns the backing raster. It is reused between frames.
func (c *Canvas) Image() *image.RGBA { return c.im }

// DisplaySize returns the size passed to Resize and the pixel ratio.
func (c *Canvas) DisplaySize() (width, height int, dpr float64) {
	return c.width, c.height, c.dpr
}

func (c *Canvas) Size() (int, int) {
	b := c.im.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *Canvas) Push() {
	c.dc.Push()
	saved := c.state
	saved.dash = slices.Clone(c.state.dash)
	c.stack = append(c.stack, saved)
}

func (c *Canvas) Pop() {
	if len(c.stack) == 0 {
		return
	}
	c.dc.Pop()
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *Canvas) Translate(x, y float64)  { c.dc.Translate(x, y) }
func (c *Canvas) Scale(sx, sy float64)    { c.dc.Scale(sx, sy) }
func (c *Canvas) Rotate(radians float64)  { c.dc.Rotate(radians) }
func (c *Canvas) MultiplyAlpha(a float64) { c.state.alpha *= clamp01(a) }

func (c *Canvas) SetFillColor(col color.Color)   { c.state.fill = toNRGBA(col) }
func (c *Canvas) SetStrokeColor(col color.Color) { c.state.stroke = toNRGBA(col) }
func (c *Canvas) SetLineWidth(w float64)         { c.state.lineWidth = w }
func (c *Canvas) SetDash(lengths ...float64)     { c.state.dash = slices.Clone(lengths) }

func (c *Canvas) MoveTo(x, y float64)              { c.dc.MoveTo(x, y) }
func (c *Canvas) LineTo(x, y float64)              { c.dc.LineTo(x, y) }
func (c *Canvas) QuadraticTo(cx, cy, x, y float64) { c.dc.QuadraticTo(cx, cy, x, y) }
func (c *Canvas) ClosePath()                       { c.dc.ClosePath() }
func (c *Canvas) NewSubPath()                      { c.dc.NewSubPath() }
func (c *Canvas) ClearPath()                       { c.dc.ClearPath() }

func (c *Canvas) Rect(x, y, w, h float64) { c.dc.DrawRectangle(x, y, w, h) }

func (c *Canvas) RoundedRect(x, y, w, h, r float64) {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		c.dc.DrawRectangle(x, y, w, h)
		return
	}
	c.dc.DrawRoundedRectangle(x, y, w, h, r)
}

func (c *Canvas) Ellipse(cx, cy, rx, ry float64) { c.dc.DrawEllipse(cx, cy, rx, ry) }

func (c *Canvas) Fill() {
	c.applyFill()
	c.dc.Fill()
}

func (c *Canvas) FillPreserve() {
	c.applyFill()
	c.dc.FillPreserve()
}

// Stroke converts the user-space line width and dashes to device pixels;
// gg applies them after the path has been transformed.
func (c *Canvas) Stroke() {
	s := c.deviceScale()
	c.dc.SetStrokeStyle(gg.NewSolidPattern(c.withAlpha(c.state.stroke)))
	c.dc.SetLineWidth(c.state.lineWidth * s)
	if len(c.state.dash) > 0 {
		dash := make([]float64, len(c.state.dash))
		for i, d := range c.state.dash {
			dash[i] = d * s
		}
		c.dc.SetDash(dash...)
	} else {
		c.dc.SetDash()
	}
	c.dc.Stroke()
}

func (c *Canvas) applyFill() {
	c.dc.SetFillStyle(gg.NewSolidPattern(c.withAlpha(c.state.fill)))
}

func (c *Canvas) withAlpha(col color.NRGBA) color.NRGBA {
	col.A = uint8(math.Round(float64(col.A) * c.state.alpha))
	return col
}

// deviceScale is the uniform scale of the current matrix.
func (c *Canvas) deviceScale() float64 {
	x0, y0 := c.dc.TransformPoint(0, 0)
	x1, y1 := c.dc.TransformPoint(1, 0)
	x2, y2 := c.dc.TransformPoint(0, 1)
	det := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	return math.Sqrt(math.Abs(det))
}

func (c *Canvas) DrawImage(img image.Image, box geometry.Rect) {
	b := img.Bounds()
	if b.Empty() || box.Width <= 0 || box.Height <= 0 {
		return
	}
	if c.state.alpha < 1 {
		img = fade(img, c.state.alpha)
		b = img.Bounds()
	}
	c.dc.Push()
	c.dc.Translate(box.X, box.Y)
	c.dc.Scale(box.Width/float64(b.Dx()), box.Height/float64(b.Dy()))
	c.dc.Translate(-float64(b.Min.X), -float64(b.Min.Y))
	c.dc.DrawImage(img, 0, 0)
	c.dc.Pop()
}

func (c *Canvas) DrawText(t TextBlock) {
	if t.Text == "" {
		return
	}
	c.dc.SetFontFace(c.fonts.Face(t.Font))
	c.dc.SetColor(c.withAlpha(toNRGBA(t.Color)))

	lines := c.dc.WordWrap(t.Text, math.Max(t.Box.Width, 1))
	lh := c.dc.FontHeight()
	h := float64(len(lines))*lh*LineSpacing - (LineSpacing-1)*lh

	y := t.Box.Y
	switch t.VAlign {
	case "middle":
		y += (t.Box.Height - h) / 2
	case "bottom":
		y = t.Box.Bottom() - h
	}
	x, ax := t.Box.X, 0.0
	switch t.Align {
	case "center":
		x, ax = t.Box.X+t.Box.Width/2, 0.5
	case "right":
		x, ax = t.Box.Right(), 1
	}
	for _, line := range lines {
		c.dc.DrawStringAnchored(line, x, y, ax, 1)
		y += lh * LineSpacing
	}
}

func fade(img image.Image, a float64) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(clamp01(a) * 255))})
	draw.DrawMask(out, out.Bounds(), img, b.Min, mask, image.Point{}, draw.Over)
	return out
}

func toNRGBA(col color.Color) color.NRGBA {
	if col == nil {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(col).(color.NRGBA)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
