package element

import (
	"math"
	"testing"

	"plm-whiteboard/pkg/geometry"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var outlineVariants = []string{
	"rectangle", "rounded-rectangle", "ellipse", "diamond", "triangle",
	"hexagon", "cylinder", "cloud", "star", "parallelogram", "flowchart-document",
}

func TestParseVariant(t *testing.T) {
	assert.Equal(t, VariantEllipse, ParseVariant("ellipse"))
	assert.Equal(t, VariantSymbol, ParseVariant("uml-class"))
	assert.Equal(t, VariantSymbol, ParseVariant(""))
	assert.Contains(t, VariantNames(), "cylinder")
}

func TestShapeCenterHitsOutsideMisses(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	for _, v := range outlineVariants {
		v := v
		properties.Property(v+" contains its center and nothing outside its box", prop.ForAll(
			func(x, y, w, h, out float64) bool {
				e := NewShape(v, geometry.NewRect(x, y, w, h))
				c := e.Center()
				if !HitTest(&e, c.X, c.Y) {
					return false
				}
				return !HitTest(&e, x+w+out, c.Y) &&
					!HitTest(&e, c.X, y-out) &&
					!HitTest(&e, x-out, y-out)
			},
			gen.Float64Range(-1000, 1000),
			gen.Float64Range(-1000, 1000),
			gen.Float64Range(20, 400),
			gen.Float64Range(20, 400),
			gen.Float64Range(0.5, 200),
		))
	}

	properties.TestingRun(t)
}

func TestShapeCornersFollowOutline(t *testing.T) {
	box := geometry.NewRect(0, 0, 100, 100)
	for _, v := range []string{"ellipse", "diamond", "triangle", "hexagon", "cylinder", "cloud", "star", "parallelogram"} {
		e := NewShape(v, box)
		assert.False(t, HitTest(&e, 1, 1), "%s should not hit its top-left corner", v)
	}
	for _, v := range []string{"rectangle", "rounded-rectangle", "uml-class"} {
		e := NewShape(v, box)
		assert.True(t, HitTest(&e, 1, 1), "%s should hit its top-left corner", v)
	}
}

func TestLineTolerance(t *testing.T) {
	e := NewLine(0, 0, 100, 0)

	assert.True(t, HitTest(&e, 50, 6))
	assert.False(t, HitTest(&e, 50, 6.5))
	assert.False(t, HitTest(&e, 110, 0))

	e.Line.StrokeWidth = 20
	assert.True(t, HitTest(&e, 50, 9))
}

func TestCurvedLineHitsAlongCurve(t *testing.T) {
	e := NewLine(0, 0, 100, 0)
	e.Line.Curvature = 40

	c := e.Line.ControlPoint(e.X, e.Y)
	assert.Equal(t, geometry.Point2D{X: 50, Y: 40}, c)
	// The curve's midpoint sits halfway to the control point.
	assert.True(t, HitTest(&e, 50, 20))
	assert.False(t, HitTest(&e, 50, 0))
}

func TestRotatedHitTest(t *testing.T) {
	e := NewShape("rectangle", geometry.NewRect(0, 0, 100, 20))
	e.Rotation = math.Pi / 2

	assert.True(t, HitTest(&e, 50, -30))
	assert.False(t, HitTest(&e, 0, 10))
}

func TestPathHitTest(t *testing.T) {
	e := NewPath([]geometry.Point2D{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}})

	assert.Equal(t, geometry.NewRect(0, 0, 100, 100), e.Box())
	assert.True(t, HitTest(&e, 50, 3))
	assert.False(t, HitTest(&e, 50, 50))

	// Paths scale with their box.
	e.SetBox(geometry.NewRect(0, 0, 200, 200))
	assert.True(t, HitTest(&e, 198, 100))
}

func TestInvalidElementNeverHits(t *testing.T) {
	e := NewShape("rectangle", geometry.NewRect(0, 0, 100, 100))
	e.Width = math.NaN()
	assert.False(t, HitTest(&e, 10, 10))

	e = NewShape("rectangle", geometry.NewRect(0, 0, 100, 100))
	e.Text = &TextContent{}
	assert.Error(t, e.Validate())
	assert.False(t, HitTest(&e, 10, 10))

	e = NewShape("rectangle", geometry.NewRect(0, 0, -5, 10))
	assert.Error(t, e.Validate())
}

func TestHandles(t *testing.T) {
	e := NewShape("rectangle", geometry.NewRect(0, 0, 100, 50))

	h, ok := HitTestHandles(&e, 99, 51, 8)
	require.True(t, ok)
	assert.Equal(t, geometry.HandleSE, h)
	assert.True(t, HitTestRotationHandle(&e, 50, -25, 8, 25))
	assert.False(t, HitTestRotationHandle(&e, 50, 0, 8, 25))

	line := NewLine(0, 0, 100, 0)
	assert.Empty(t, HandlePositions(&line))
	_, ok = HitTestHandles(&line, 0, 0, 8)
	assert.False(t, ok)
}

func TestRotatedHandlesFollowRotation(t *testing.T) {
	e := NewShape("rectangle", geometry.NewRect(0, 0, 100, 100))
	e.Rotation = math.Pi

	// Rotated half a turn the rotation handle sits below the box.
	p := RotationHandlePosition(&e, 25)
	assert.InDelta(t, 50, p.X, 1e-9)
	assert.InDelta(t, 125, p.Y, 1e-9)

	h, ok := HitTestHandles(&e, 0, 0, 8)
	require.True(t, ok)
	assert.Equal(t, geometry.HandleSE, h)
}

func TestLineSetBoxKeepsOrientation(t *testing.T) {
	e := NewLine(100, 0, 0, 50)
	e.SetBox(geometry.NewRect(0, 0, 200, 100))

	assert.Equal(t, 200.0, e.X)
	assert.Equal(t, 0.0, e.Y)
	assert.Equal(t, 0.0, e.Line.X2)
	assert.Equal(t, 100.0, e.Line.Y2)
	assert.Equal(t, geometry.NewRect(0, 0, 200, 100), BoundingBox(&e))
}

func TestTranslateMovesLineEnd(t *testing.T) {
	e := NewLine(0, 0, 10, 10)
	e.Translate(5, -5)
	assert.Equal(t, 15.0, e.Line.X2)
	assert.Equal(t, 5.0, e.Line.Y2)
}

func TestCloneIsDeep(t *testing.T) {
	e := NewShape("rectangle", geometry.NewRect(0, 0, 10, 10))
	text := DefaultTextContent("hello")
	e.Shape.Text = &text

	c := e.Clone()
	c.Shape.Text.Text = "changed"
	c.Shape.Fill = "#000000"

	assert.Equal(t, "hello", e.Shape.Text.Text)
	assert.Equal(t, DefaultFill, e.Shape.Fill)

	g := NewGroup([]string{"a", "b"}, geometry.Rect{})
	gc := g.Clone()
	gc.Group.ChildIDs[0] = "z"
	assert.Equal(t, "a", g.Group.ChildIDs[0])
}

func TestCombinedBoundingBox(t *testing.T) {
	_, ok := CombinedBoundingBox(nil)
	assert.False(t, ok)

	r, ok := CombinedBoundingBox([]Element{
		NewShape("rectangle", geometry.NewRect(0, 0, 10, 10)),
		NewLine(50, 40, 20, 5),
	})
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(0, 0, 50, 40), r)
}

func TestEffectiveOpacity(t *testing.T) {
	e := NewShape("rectangle", geometry.NewRect(0, 0, 10, 10))
	e.Opacity = 3
	assert.Equal(t, 1.0, e.EffectiveOpacity())
	e.Opacity = -1
	assert.Equal(t, 0.0, e.EffectiveOpacity())
}
