package render

import (
	"image/color"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/pkg/colorutil"
	"plm-whiteboard/pkg/geometry"
)

// Overlay is the transient state the tool machine feeds to the pipeline.
// None of it is part of the scene.
type Overlay struct {
	Preview *element.Element
	Lasso   *geometry.Rect
	Guides  []geometry.Guide
}

// SelectionStyle sizes the overlay in screen pixels.
type SelectionStyle struct {
	HandleSize     float64
	RotationOffset float64
	LineWidth      float64
	Color          color.NRGBA
	GuideColor     color.NRGBA
}

// DefaultSelectionStyle matches the handle geometry used for hit-testing.
func DefaultSelectionStyle() SelectionStyle {
	return SelectionStyle{
		HandleSize:     geometry.DefaultHandleSize,
		RotationOffset: geometry.RotationHandleOffset,
		LineWidth:      1.5,
		Color:          colorutil.Selection,
		GuideColor:     colorutil.Guide,
	}
}

// DrawSelection outlines the selected elements. Handle sizes and line widths
// are divided by zoom so they keep their screen size.
func DrawSelection(s Surface, sn *scene.Snapshot, style SelectionStyle) {
	zoom := sn.Viewport.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	lw := style.LineWidth / zoom
	hs := style.HandleSize / zoom

	var selected []element.Element
	for _, id := range sn.Selected {
		e, ok := sn.Element(id)
		if !ok || !e.Valid() {
			continue
		}
		selected = append(selected, e)
	}

	s.SetStrokeColor(style.Color)
	s.SetLineWidth(lw)
	for i := range selected {
		e := &selected[i]
		switch e.Kind {
		case element.KindGroup:
			box := element.BoundingBox(e)
			s.SetDash(4/zoom, 3/zoom)
			s.Rect(box.X, box.Y, box.Width, box.Height)
			s.Stroke()
			s.SetDash()
		case element.KindLine:
			drawEndpointMarkers(s, e, hs, style)
		default:
			drawHandles(s, e, hs, style.RotationOffset/zoom, lw, style)
		}
	}

	if len(selected) > 1 {
		if box, ok := element.CombinedBoundingBox(selected); ok {
			pad := 4 / zoom
			box = box.Inset(-pad)
			s.SetStrokeColor(style.Color)
			s.SetLineWidth(lw)
			s.SetDash(6/zoom, 4/zoom)
			s.Rect(box.X, box.Y, box.Width, box.Height)
			s.Stroke()
			s.SetDash()
		}
	}
}

func drawEndpointMarkers(s Surface, e *element.Element, size float64, style SelectionStyle) {
	r := size / 2
	s.Ellipse(e.X, e.Y, r, r)
	s.Ellipse(e.Line.X2, e.Line.Y2, r, r)
	s.SetFillColor(colorutil.White)
	s.FillPreserve()
	s.SetStrokeColor(style.Color)
	s.Stroke()
}

// drawHandles draws the box outline, eight resize handles and the rotation
// handle in the element's rotated frame.
func drawHandles(s Surface, e *element.Element, size, offset, lw float64, style SelectionStyle) {
	box := e.Box()
	s.Push()
	defer s.Pop()
	if e.Rotation != 0 {
		c := box.Center()
		s.Translate(c.X, c.Y)
		s.Rotate(e.Rotation)
		s.Translate(-c.X, -c.Y)
	}

	s.SetStrokeColor(style.Color)
	s.SetLineWidth(lw)
	s.Rect(box.X, box.Y, box.Width, box.Height)

	top := geometry.HandlePosition(box, geometry.HandleN)
	rot := geometry.RotationHandle(box, offset)
	s.MoveTo(top.X, top.Y)
	s.LineTo(rot.X, rot.Y)
	s.Stroke()

	half := size / 2
	for _, h := range geometry.HandlePositions(box) {
		s.Rect(h.Point.X-half, h.Point.Y-half, size, size)
	}
	s.Ellipse(rot.X, rot.Y, half, half)
	s.SetFillColor(colorutil.White)
	s.FillPreserve()
	s.Stroke()
}

// DrawLasso paints the rubber-band rectangle.
func DrawLasso(s Surface, r geometry.Rect, zoom float64, style SelectionStyle) {
	if zoom <= 0 {
		zoom = 1
	}
	s.Rect(r.X, r.Y, r.Width, r.Height)
	s.SetFillColor(colorutil.WithAlpha(style.Color, 0.1))
	s.FillPreserve()
	s.SetStrokeColor(style.Color)
	s.SetLineWidth(1 / zoom)
	s.SetDash()
	s.Stroke()
}

// DrawGuides strokes each alignment guide across the span it covers.
func DrawGuides(s Surface, guides []geometry.Guide, zoom float64, style SelectionStyle) {
	if zoom <= 0 {
		zoom = 1
	}
	s.SetStrokeColor(style.GuideColor)
	s.SetLineWidth(1 / zoom)
	s.SetDash()
	for _, g := range guides {
		if g.Orientation == geometry.Vertical {
			s.MoveTo(g.Position, g.From)
			s.LineTo(g.Position, g.To)
		} else {
			s.MoveTo(g.From, g.Position)
			s.LineTo(g.To, g.Position)
		}
		s.Stroke()
	}
}
