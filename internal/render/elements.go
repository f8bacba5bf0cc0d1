package render

import (
	"image/color"
	"math"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/pkg/colorutil"
	"plm-whiteboard/pkg/geometry"
)

const (
	labelPadding   = 8.0
	minArrowLength = 10.0
	cylinderSteps  = 24
)

// Painter draws single elements in world space.
type Painter struct {
	Images  *ImageCache
	Symbols SymbolLookup
}

// DrawElement paints e, applying its rotation about the box center and its
// opacity. Groups paint nothing themselves.
func (p *Painter) DrawElement(s Surface, e *element.Element) {
	if e.Kind == element.KindGroup {
		return
	}
	s.Push()
	defer s.Pop()

	if e.Rotation != 0 && e.Kind != element.KindLine {
		c := e.Box().Center()
		s.Translate(c.X, c.Y)
		s.Rotate(e.Rotation)
		s.Translate(-c.X, -c.Y)
	}
	s.MultiplyAlpha(e.EffectiveOpacity())
	s.SetDash()

	switch e.Kind {
	case element.KindShape:
		p.drawShape(s, e)
	case element.KindText:
		drawText(s, e.Box(), e.Text)
	case element.KindLine:
		drawLine(s, e)
	case element.KindPath:
		drawPath(s, e)
	case element.KindImage:
		p.drawImage(s, e)
	}
}

func (p *Painter) drawShape(s Surface, e *element.Element) {
	sh := e.Shape
	box := e.Box()
	fill := colorutil.ParseOr(sh.Fill, colorutil.Transparent)
	fill = colorutil.WithAlpha(fill, clamp01(sh.FillOpacity))
	stroke := colorutil.ParseOr(sh.Stroke, colorutil.Transparent)

	variant := sh.Outline()
	if variant == element.VariantSymbol {
		if sym, ok := p.lookup(sh.Variant); ok && sym.Render != nil {
			drawShadow(s, sh.Shadow, func() { s.Rect(box.X, box.Y, box.Width, box.Height) })
			sym.Render(s, box.X, box.Y, box.Width, box.Height, stroke, fill)
			s.ClearPath()
			drawLabel(s, box, sh.Text)
			return
		}
		// Unresolved catalog ids paint as a plain rectangle.
		variant = element.VariantRectangle
	}

	outline := func() { traceOutline(s, variant, box, sh.CornerRadius) }
	drawShadow(s, sh.Shadow, outline)

	outline()
	if fill.A > 0 {
		s.SetFillColor(fill)
		s.FillPreserve()
	}
	if sh.StrokeWidth > 0 && stroke.A > 0 {
		s.SetStrokeColor(stroke)
		s.SetLineWidth(sh.StrokeWidth)
		s.Stroke()
		if variant == element.VariantCylinder {
			cylinderRim(s, box)
			s.Stroke()
		}
	} else {
		s.ClearPath()
	}
	drawLabel(s, box, sh.Text)
}

func (p *Painter) lookup(id string) (Symbol, bool) {
	if p.Symbols == nil {
		return Symbol{}, false
	}
	return p.Symbols.Symbol(id)
}

// traceOutline adds the variant's outline to the current path. The vertices
// are the ones element.HitTest uses.
func traceOutline(s Surface, v element.Variant, box geometry.Rect, radius float64) {
	switch v {
	case element.VariantRoundedRectangle:
		s.RoundedRect(box.X, box.Y, box.Width, box.Height, radius)
	case element.VariantEllipse:
		c := box.Center()
		s.Ellipse(c.X, c.Y, box.Width/2, box.Height/2)
	case element.VariantDiamond:
		Polygon(s, element.DiamondVertices(box))
	case element.VariantTriangle:
		t := element.TriangleVertices(box)
		Polygon(s, t[:])
	case element.VariantHexagon:
		Polygon(s, element.HexagonVertices(box))
	case element.VariantCylinder:
		Polygon(s, cylinderSilhouette(box))
	case element.VariantCloud:
		Polygon(s, element.CloudVertices(box))
	case element.VariantStar:
		Polygon(s, element.StarVertices(box))
	case element.VariantParallelogram:
		Polygon(s, element.ParallelogramVertices(box))
	default:
		s.Rect(box.X, box.Y, box.Width, box.Height)
	}
}

// cylinderSilhouette is the body plus the outer halves of both end caps.
func cylinderSilhouette(box geometry.Rect) []geometry.Point2D {
	ry := element.CylinderCap(box)
	rx := box.Width / 2
	cx := box.X + rx
	top, bottom := box.Y+ry, box.Bottom()-ry

	pts := make([]geometry.Point2D, 0, 2*cylinderSteps+2)
	// Top cap, left to right over the top.
	for i := 0; i <= cylinderSteps; i++ {
		a := math.Pi + float64(i)*math.Pi/cylinderSteps
		pts = append(pts, geometry.Point2D{X: cx + rx*math.Cos(a), Y: top + ry*math.Sin(a)})
	}
	// Bottom cap, right to left under the bottom.
	for i := 0; i <= cylinderSteps; i++ {
		a := float64(i) * math.Pi / cylinderSteps
		pts = append(pts, geometry.Point2D{X: cx + rx*math.Cos(a), Y: bottom + ry*math.Sin(a)})
	}
	return pts
}

// cylinderRim adds the visible front half of the top cap.
func cylinderRim(s Surface, box geometry.Rect) {
	ry := element.CylinderCap(box)
	rx := box.Width / 2
	cx := box.X + rx
	top := box.Y + ry
	pts := make([]geometry.Point2D, 0, cylinderSteps+1)
	for i := 0; i <= cylinderSteps; i++ {
		a := float64(i) * math.Pi / cylinderSteps
		pts = append(pts, geometry.Point2D{X: cx + rx*math.Cos(a), Y: top + ry*math.Sin(a)})
	}
	Polyline(s, pts)
}

func drawShadow(s Surface, sh *element.Shadow, outline func()) {
	if sh == nil {
		return
	}
	col := colorutil.ParseOr(sh.Color, colorutil.WithAlpha(colorutil.Black, 0.25))
	if col.A == 0 {
		return
	}
	s.Push()
	defer s.Pop()
	s.Translate(sh.OffsetX, sh.OffsetY)
	s.SetFillColor(col)
	// A soft edge: one wide translucent stroke around the filled outline.
	if sh.Blur > 0 {
		outline()
		s.SetStrokeColor(colorutil.WithAlpha(col, 0.5))
		s.SetLineWidth(sh.Blur)
		s.Stroke()
	}
	outline()
	s.Fill()
}

func drawLabel(s Surface, box geometry.Rect, t *element.TextContent) {
	if t == nil || t.Text == "" {
		return
	}
	inner := box.Inset(labelPadding)
	if inner.Width <= 0 || inner.Height <= 0 {
		inner = box
	}
	block := textBlock(inner, t)
	if t.Align == "" {
		block.Align = "center"
	}
	if t.VerticalAlign == "" {
		block.VAlign = "middle"
	}
	s.DrawText(block)
}

func drawText(s Surface, box geometry.Rect, t *element.TextContent) {
	if t.Text == "" {
		return
	}
	s.DrawText(textBlock(box, t))
}

func textBlock(box geometry.Rect, t *element.TextContent) TextBlock {
	return TextBlock{
		Text:   t.Text,
		Box:    box,
		Font:   FontSpecFor(t.FontFamily, t.FontWeight, t.FontStyle, t.FontSize),
		Color:  colorutil.ParseOr(t.Color, colorutil.Black),
		Align:  t.Align,
		VAlign: t.VerticalAlign,
	}
}

func drawLine(s Surface, e *element.Element) {
	l := e.Line
	col := colorutil.ParseOr(l.Stroke, colorutil.Black)
	if col.A == 0 || l.StrokeWidth <= 0 {
		return
	}
	start := geometry.Point2D{X: e.X, Y: e.Y}
	end := geometry.Point2D{X: l.X2, Y: l.Y2}

	s.SetStrokeColor(col)
	s.SetLineWidth(l.StrokeWidth)
	s.SetDash(l.Dash...)
	s.MoveTo(start.X, start.Y)
	from := start
	if l.Curvature != 0 {
		c := l.ControlPoint(e.X, e.Y)
		s.QuadraticTo(c.X, c.Y, end.X, end.Y)
		from = c
	} else {
		s.LineTo(end.X, end.Y)
	}
	s.Stroke()

	if l.ArrowEnd {
		s.SetDash()
		drawArrowHead(s, from, end, math.Max(minArrowLength, l.StrokeWidth*3), col)
	}
}

// drawArrowHead fills a triangle at tip pointing away from from.
func drawArrowHead(s Surface, from, tip geometry.Point2D, size float64, col color.Color) {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}
	ux, uy := dx/d, dy/d
	back := geometry.Point2D{X: tip.X - ux*size, Y: tip.Y - uy*size}
	half := size / 2
	Polygon(s, []geometry.Point2D{
		tip,
		{X: back.X - uy*half, Y: back.Y + ux*half},
		{X: back.X + uy*half, Y: back.Y - ux*half},
	})
	s.SetFillColor(col)
	s.Fill()
}

// drawPath strokes a freehand path smoothed through the midpoints of
// consecutive samples.
func drawPath(s Surface, e *element.Element) {
	pa := e.Path
	col := colorutil.ParseOr(pa.Stroke, colorutil.Black)
	if col.A == 0 || len(pa.Points) == 0 {
		return
	}
	pts := pa.WorldPoints(e.Box())
	if len(pts) == 1 {
		r := math.Max(pa.StrokeWidth/2, 0.5)
		s.Ellipse(pts[0].X, pts[0].Y, r, r)
		s.SetFillColor(col)
		s.Fill()
		return
	}

	s.SetStrokeColor(col)
	s.SetLineWidth(pa.StrokeWidth)
	s.MoveTo(pts[0].X, pts[0].Y)
	for i := 1; i < len(pts)-1; i++ {
		mid := geometry.Point2D{X: (pts[i].X + pts[i+1].X) / 2, Y: (pts[i].Y + pts[i+1].Y) / 2}
		s.QuadraticTo(pts[i].X, pts[i].Y, mid.X, mid.Y)
	}
	last := pts[len(pts)-1]
	s.LineTo(last.X, last.Y)
	s.Stroke()
}

func (p *Painter) drawImage(s Surface, e *element.Element) {
	box := e.Box()
	if p.Images != nil && e.Image.Source != "" {
		if img, err := p.Images.Get(e.Image.Source); err == nil {
			s.DrawImage(img, box)
			return
		}
	}
	drawPlaceholder(s, box)
}

// drawPlaceholder marks an image whose bitmap is unavailable.
func drawPlaceholder(s Surface, box geometry.Rect) {
	s.Rect(box.X, box.Y, box.Width, box.Height)
	s.SetFillColor(colorutil.WithAlpha(colorutil.Placeholder, 0.3))
	s.FillPreserve()
	s.SetStrokeColor(colorutil.Placeholder)
	s.SetLineWidth(1)
	s.Stroke()

	s.MoveTo(box.X, box.Y)
	s.LineTo(box.Right(), box.Bottom())
	s.MoveTo(box.Right(), box.Y)
	s.LineTo(box.X, box.Bottom())
	s.Stroke()
}
