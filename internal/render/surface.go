// Package render paints a scene snapshot onto a raster surface.
//
// All element and overlay geometry is expressed in world units; the
// pipeline sets up the single pan/zoom transform before any renderer runs.
package render

import (
	"image"
	"image/color"

	"plm-whiteboard/pkg/geometry"
)

// Surface is the immediate-mode drawing API the renderers target. Path
// operations accumulate into a current path that Fill or Stroke consume.
// Line widths and dash lengths are in the current user space, so they scale
// with the transform.
type Surface interface {
	// Size returns the backing raster size in device pixels.
	Size() (width, height int)
	Clear(c color.Color)

	Push()
	Pop()
	Translate(x, y float64)
	Scale(sx, sy float64)
	Rotate(radians float64)
	// MultiplyAlpha scales the opacity of everything drawn until the
	// matching Pop.
	MultiplyAlpha(a float64)

	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	SetDash(lengths ...float64)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	ClosePath()
	NewSubPath()
	Rect(x, y, w, h float64)
	RoundedRect(x, y, w, h, r float64)
	Ellipse(cx, cy, rx, ry float64)
	ClearPath()

	Fill()
	FillPreserve()
	Stroke()

	// DrawImage scales img into the box.
	DrawImage(img image.Image, box geometry.Rect)
	// DrawText lays out a text block inside its box.
	DrawText(t TextBlock)
}

// TextBlock is a wrapped, aligned run of text.
type TextBlock struct {
	Text   string
	Box    geometry.Rect
	Font   FontSpec
	Color  color.Color
	Align  string // left | center | right
	VAlign string // top | middle | bottom
}

// LineSpacing is the line height multiple used for wrapped text.
const LineSpacing = 1.2

// Polygon adds a closed polygon subpath.
func Polygon(s Surface, pts []geometry.Point2D) {
	if len(pts) == 0 {
		return
	}
	s.NewSubPath()
	s.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.LineTo(p.X, p.Y)
	}
	s.ClosePath()
}

// Polyline adds an open polyline subpath.
func Polyline(s Surface, pts []geometry.Point2D) {
	if len(pts) == 0 {
		return
	}
	s.NewSubPath()
	s.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.LineTo(p.X, p.Y)
	}
}
