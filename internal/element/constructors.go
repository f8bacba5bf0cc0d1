package element

import (
	"math"

	"plm-whiteboard/pkg/geometry"
)

// Defaults applied by the constructors.
const (
	DefaultStroke      = "#1f2937"
	DefaultFill        = "#ffffff"
	DefaultStrokeWidth = 2.0
	DefaultFontSize    = 16.0
	DefaultFontFamily  = "sans-serif"
	DefaultTextColor   = "#111827"
)

func base(kind Kind, x, y, w, h float64) Element {
	return Element{
		ID:      NewID(),
		Kind:    kind,
		X:       x,
		Y:       y,
		Width:   w,
		Height:  h,
		Visible: true,
		Opacity: 1,
	}
}

// NewShape creates a shape element with default styling.
func NewShape(variant string, r geometry.Rect) Element {
	e := base(KindShape, r.X, r.Y, r.Width, r.Height)
	e.Shape = &Shape{
		Variant:     variant,
		Fill:        DefaultFill,
		FillOpacity: 1,
		Stroke:      DefaultStroke,
		StrokeWidth: DefaultStrokeWidth,
	}
	if ParseVariant(variant) == VariantRoundedRectangle {
		e.Shape.CornerRadius = 12
	}
	return e
}

// DefaultTextContent returns text content with default font settings.
func DefaultTextContent(text string) TextContent {
	return TextContent{
		Text:          text,
		FontSize:      DefaultFontSize,
		FontFamily:    DefaultFontFamily,
		FontStyle:     "normal",
		FontWeight:    "normal",
		Color:         DefaultTextColor,
		Align:         "left",
		VerticalAlign: "top",
	}
}

// NewText creates a text element whose box fits one line of the default font.
func NewText(x, y float64, text string) Element {
	content := DefaultTextContent(text)
	e := base(KindText, x, y, 200, content.FontSize*1.4)
	e.Text = &content
	return e
}

// NewLine creates a straight line from (x1, y1) to (x2, y2).
func NewLine(x1, y1, x2, y2 float64) Element {
	e := base(KindLine, x1, y1, x2-x1, y2-y1)
	e.Line = &Line{
		X2:          x2,
		Y2:          y2,
		Stroke:      DefaultStroke,
		StrokeWidth: DefaultStrokeWidth,
	}
	return e
}

// NewPath creates a freehand path from points in world coordinates.
func NewPath(points []geometry.Point2D) Element {
	box := geometry.BoundingBox(points)
	rel := make([]geometry.Point2D, len(points))
	for i, p := range points {
		rel[i] = geometry.Point2D{X: p.X - box.X, Y: p.Y - box.Y}
	}
	e := base(KindPath, box.X, box.Y, box.Width, box.Height)
	e.Path = &Path{
		Points:      rel,
		BaseWidth:   box.Width,
		BaseHeight:  box.Height,
		Stroke:      DefaultStroke,
		StrokeWidth: DefaultStrokeWidth,
	}
	return e
}

// NewImage creates an image element showing source in box r.
func NewImage(source string, r geometry.Rect) Element {
	e := base(KindImage, r.X, r.Y, r.Width, r.Height)
	e.Image = &Image{Source: source}
	return e
}

// NewGroup creates a group over childIDs. Its box is normally recomputed by
// the scene store from the members.
func NewGroup(childIDs []string, bounds geometry.Rect) Element {
	e := base(KindGroup, bounds.X, bounds.Y, bounds.Width, bounds.Height)
	e.Group = &Group{ChildIDs: append([]string(nil), childIDs...)}
	return e
}

// WorldPoints returns a path's points mapped to world space for the current box.
func (p *Path) WorldPoints(box geometry.Rect) []geometry.Point2D {
	sx, sy := 1.0, 1.0
	if p.BaseWidth > 0 {
		sx = box.Width / p.BaseWidth
	}
	if p.BaseHeight > 0 {
		sy = box.Height / p.BaseHeight
	}
	out := make([]geometry.Point2D, len(p.Points))
	for i, pt := range p.Points {
		out[i] = geometry.Point2D{X: box.X + pt.X*sx, Y: box.Y + pt.Y*sy}
	}
	return out
}

// ControlPoint returns the quadratic control point of a curved line: the
// segment midpoint pushed Curvature units along the left-hand normal.
func (l *Line) ControlPoint(x1, y1 float64) geometry.Point2D {
	mx, my := (x1+l.X2)/2, (y1+l.Y2)/2
	dx, dy := l.X2-x1, l.Y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 || l.Curvature == 0 {
		return geometry.Point2D{X: mx, Y: my}
	}
	return geometry.Point2D{X: mx - dy/length*l.Curvature, Y: my + dx/length*l.Curvature}
}
