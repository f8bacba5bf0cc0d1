// Package element defines the whiteboard element records and the pure
// geometry derived from them.
//
// An Element is a closed tagged union: Kind selects exactly one of the
// payload pointers. Geometry is always derived from X, Y, Width, Height and
// Rotation; there is no hidden per-element state.
package element

import (
	"fmt"
	"math"
	"slices"

	"plm-whiteboard/pkg/geometry"

	"github.com/google/uuid"
)

// Kind identifies the element variant.
type Kind string

const (
	KindShape Kind = "shape"
	KindText  Kind = "text"
	KindLine  Kind = "line"
	KindPath  Kind = "path"
	KindImage Kind = "image"
	KindGroup Kind = "group"
)

// Variant is the closed set of built-in shape outlines. Every name that is
// not built in is treated as a symbol-catalog id.
type Variant int

const (
	VariantRectangle Variant = iota
	VariantRoundedRectangle
	VariantEllipse
	VariantDiamond
	VariantTriangle
	VariantHexagon
	VariantCylinder
	VariantCloud
	VariantStar
	VariantParallelogram
	VariantSymbol
)

var variantNames = map[string]Variant{
	"rectangle":         VariantRectangle,
	"rounded-rectangle": VariantRoundedRectangle,
	"ellipse":           VariantEllipse,
	"diamond":           VariantDiamond,
	"triangle":          VariantTriangle,
	"hexagon":           VariantHexagon,
	"cylinder":          VariantCylinder,
	"cloud":             VariantCloud,
	"star":              VariantStar,
	"parallelogram":     VariantParallelogram,
}

// ParseVariant maps a shape variant name to its outline. Unknown names are
// VariantSymbol.
func ParseVariant(name string) Variant {
	if v, ok := variantNames[name]; ok {
		return v
	}
	return VariantSymbol
}

// VariantNames returns the built-in variant names.
func VariantNames() []string {
	names := make([]string, 0, len(variantNames))
	for n := range variantNames {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Shadow is a drop shadow drawn under a shape.
type Shadow struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

// Shape is the payload of KindShape.
type Shape struct {
	Variant      string       `json:"variant"`
	Fill         string       `json:"fill"`
	FillOpacity  float64      `json:"fillOpacity"`
	Stroke       string       `json:"stroke"`
	StrokeWidth  float64      `json:"strokeWidth"`
	CornerRadius float64      `json:"cornerRadius,omitempty"`
	Text         *TextContent `json:"text,omitempty"`
	Shadow       *Shadow      `json:"shadow,omitempty"`
}

// Outline returns the parsed variant.
func (s *Shape) Outline() Variant {
	return ParseVariant(s.Variant)
}

// TextContent is the payload of KindText and the optional label of a shape.
type TextContent struct {
	Text          string  `json:"text"`
	FontSize      float64 `json:"fontSize"`
	FontFamily    string  `json:"fontFamily"`
	FontStyle     string  `json:"fontStyle"`  // normal | italic
	FontWeight    string  `json:"fontWeight"` // normal | bold
	Color         string  `json:"color"`
	Align         string  `json:"align"`         // left | center | right
	VerticalAlign string  `json:"verticalAlign"` // top | middle | bottom
}

// Line is the payload of KindLine. The start point is the element's X, Y.
type Line struct {
	X2          float64   `json:"x2"`
	Y2          float64   `json:"y2"`
	Curvature   float64   `json:"curvature,omitempty"`
	Stroke      string    `json:"stroke"`
	StrokeWidth float64   `json:"strokeWidth"`
	Dash        []float64 `json:"dash,omitempty"`
	ArrowEnd    bool      `json:"arrowEnd,omitempty"`
}

// Path is the payload of KindPath. Points are relative to the element origin
// and were captured when the box measured BaseWidth × BaseHeight; the path is
// scaled to the current box when drawn.
type Path struct {
	Points      []geometry.Point2D `json:"points"`
	BaseWidth   float64            `json:"baseWidth"`
	BaseHeight  float64            `json:"baseHeight"`
	Stroke      string             `json:"stroke"`
	StrokeWidth float64            `json:"strokeWidth"`
}

// Image is the payload of KindImage. Decoded pixels live in the render
// pipeline's cache, keyed by Source.
type Image struct {
	Source string `json:"source"`
}

// Group is the payload of KindGroup.
type Group struct {
	ChildIDs []string `json:"childIds"`
}

// Element is one record of the scene.
type Element struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Visible  bool    `json:"visible"`
	Opacity  float64 `json:"opacity"`

	Shape *Shape       `json:"shape,omitempty"`
	Text  *TextContent `json:"text,omitempty"`
	Line  *Line        `json:"line,omitempty"`
	Path  *Path        `json:"path,omitempty"`
	Image *Image       `json:"image,omitempty"`
	Group *Group       `json:"group,omitempty"`
}

// NewID returns a fresh element id.
func NewID() string {
	return uuid.NewString()
}

// Box returns the element's stored box.
func (e *Element) Box() geometry.Rect {
	return geometry.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// SetBox stores r as the element's box. Lines keep their endpoint
// orientation; path points are rescaled implicitly at draw time.
func (e *Element) SetBox(r geometry.Rect) {
	if e.Kind == KindLine && e.Line != nil {
		old := BoundingBox(e)
		start := geometry.ScalePointWithin(geometry.Point2D{X: e.X, Y: e.Y}, old, r)
		end := geometry.ScalePointWithin(geometry.Point2D{X: e.Line.X2, Y: e.Line.Y2}, old, r)
		e.X, e.Y = start.X, start.Y
		e.Line.X2, e.Line.Y2 = end.X, end.Y
		e.Width, e.Height = e.Line.X2-e.X, e.Line.Y2-e.Y
		return
	}
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.Width, r.Height
}

// Translate moves the element by (dx, dy), including line end points.
func (e *Element) Translate(dx, dy float64) {
	e.X += dx
	e.Y += dy
	if e.Kind == KindLine && e.Line != nil {
		e.Line.X2 += dx
		e.Line.Y2 += dy
	}
}

// Center returns the center of the element's bounding box.
func (e *Element) Center() geometry.Point2D {
	return BoundingBox(e).Center()
}

// EffectiveOpacity returns Opacity clamped to [0, 1].
func (e *Element) EffectiveOpacity() float64 {
	return math.Max(0, math.Min(1, e.Opacity))
}

// Children returns the member ids of a group, or nil.
func (e *Element) Children() []string {
	if e.Kind == KindGroup && e.Group != nil {
		return e.Group.ChildIDs
	}
	return nil
}

// Validate reports why an element cannot be drawn or hit-tested.
func (e *Element) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("element has no id")
	}
	if !e.Box().IsFinite() || !isFinite(e.Rotation) {
		return fmt.Errorf("element %s: non-finite geometry", e.ID)
	}
	payloads := 0
	for _, set := range []bool{e.Shape != nil, e.Text != nil, e.Line != nil, e.Path != nil, e.Image != nil, e.Group != nil} {
		if set {
			payloads++
		}
	}
	if payloads != 1 {
		return fmt.Errorf("element %s: expected one payload, found %d", e.ID, payloads)
	}

	var ok bool
	switch e.Kind {
	case KindShape:
		ok = e.Shape != nil
	case KindText:
		ok = e.Text != nil
	case KindLine:
		ok = e.Line != nil && isFinite(e.Line.X2) && isFinite(e.Line.Y2)
	case KindPath:
		ok = e.Path != nil
	case KindImage:
		ok = e.Image != nil
	case KindGroup:
		ok = e.Group != nil
	default:
		return fmt.Errorf("element %s: unknown kind %q", e.ID, e.Kind)
	}
	if !ok {
		return fmt.Errorf("element %s: payload does not match kind %q", e.ID, e.Kind)
	}
	if e.Kind != KindLine && (e.Width < 0 || e.Height < 0) {
		return fmt.Errorf("element %s: negative size", e.ID)
	}
	return nil
}

// Valid reports whether Validate succeeds.
func (e *Element) Valid() bool {
	return e.Validate() == nil
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	c := e
	if e.Shape != nil {
		s := *e.Shape
		if s.Text != nil {
			t := *s.Text
			s.Text = &t
		}
		if s.Shadow != nil {
			sh := *s.Shadow
			s.Shadow = &sh
		}
		c.Shape = &s
	}
	if e.Text != nil {
		t := *e.Text
		c.Text = &t
	}
	if e.Line != nil {
		l := *e.Line
		l.Dash = slices.Clone(e.Line.Dash)
		c.Line = &l
	}
	if e.Path != nil {
		p := *e.Path
		p.Points = slices.Clone(e.Path.Points)
		c.Path = &p
	}
	if e.Image != nil {
		im := *e.Image
		c.Image = &im
	}
	if e.Group != nil {
		g := Group{ChildIDs: slices.Clone(e.Group.ChildIDs)}
		c.Group = &g
	}
	return c
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
