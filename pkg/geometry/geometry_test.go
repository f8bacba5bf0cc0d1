package geometry

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateResizeCorners(t *testing.T) {
	orig := NewRect(0, 0, 100, 50)

	assert.Equal(t, NewRect(0, 0, 120, 60), CalculateResize(orig, HandleSE, 20, 10, false))
	assert.Equal(t, NewRect(20, 10, 80, 40), CalculateResize(orig, HandleNW, 20, 10, false))
}

func TestCalculateResizeEdges(t *testing.T) {
	orig := NewRect(10, 10, 100, 50)

	assert.Equal(t, NewRect(10, 10, 130, 50), CalculateResize(orig, HandleE, 30, 99, false))
	assert.Equal(t, NewRect(10, 20, 100, 40), CalculateResize(orig, HandleN, 99, 10, false))
}

func TestCalculateResizeClampsToMinSize(t *testing.T) {
	orig := NewRect(0, 0, 100, 50)

	r := CalculateResize(orig, HandleNW, 200, 200, false)
	assert.Equal(t, MinSize, r.Width)
	assert.Equal(t, MinSize, r.Height)
	assert.Equal(t, orig.Right(), r.Right(), "east edge stays fixed")
	assert.Equal(t, orig.Bottom(), r.Bottom(), "south edge stays fixed")
}

func TestCalculateResizePreservesAspect(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	corners := []interface{}{HandleNW, HandleNE, HandleSE, HandleSW}
	properties.Property("corner drags keep width/height and the opposite corner", prop.ForAll(
		func(w, h, dx, dy float64, handle Handle) bool {
			orig := NewRect(0, 0, w, h)
			r := CalculateResize(orig, handle, dx, dy, true)
			if r.Width < MinSize-1e-9 || r.Height < MinSize-1e-9 {
				return false
			}
			if math.Abs(r.Width/r.Height-w/h) >= 1e-6 {
				return false
			}
			fixed := HandlePosition(orig, handle.Opposite())
			got := HandlePosition(r, handle.Opposite())
			return math.Abs(got.X-fixed.X) < 1e-9 && math.Abs(got.Y-fixed.Y) < 1e-9
		},
		gen.Float64Range(MinSize, 500),
		gen.Float64Range(MinSize, 500),
		gen.Float64Range(-600, 600),
		gen.Float64Range(-600, 600),
		gen.IntRange(0, len(corners)-1).Map(func(i int) Handle { return corners[i].(Handle) }),
	))

	properties.TestingRun(t)
}

func TestOppositeHandle(t *testing.T) {
	for _, h := range AllHandles {
		assert.Equal(t, h, h.Opposite().Opposite(), string(h))
	}
	assert.Equal(t, HandleSE, HandleNW.Opposite())
}

func TestHitTestHandles(t *testing.T) {
	r := NewRect(0, 0, 100, 50)

	h, ok := HitTestHandles(r, 101, 49, 8)
	require.True(t, ok)
	assert.Equal(t, HandleSE, h)

	h, ok = HitTestHandles(r, 50, -3, 8)
	require.True(t, ok)
	assert.Equal(t, HandleN, h)

	_, ok = HitTestHandles(r, 50, 25, 8)
	assert.False(t, ok)
}

func TestAngleFromCenter(t *testing.T) {
	c := Point2D{X: 0, Y: 0}
	assert.InDelta(t, 0, AngleFromCenter(c, Point2D{X: 0, Y: -10}), 1e-9)
	assert.InDelta(t, math.Pi/2, AngleFromCenter(c, Point2D{X: 10, Y: 0}), 1e-9)
	assert.InDelta(t, math.Pi, AngleFromCenter(c, Point2D{X: 0, Y: 10}), 1e-9)
	assert.InDelta(t, math.Pi/2, SnapAngle(1.5, math.Pi/12), 1e-9)
}

func TestAlignmentGuidesThreshold(t *testing.T) {
	moving := NewRect(0, 0, 100, 50)

	guides := AlignmentGuides(moving, []Rect{NewRect(105, 500, 50, 50)}, DefaultGuideThreshold)
	require.Len(t, guides, 1)
	assert.Equal(t, Vertical, guides[0].Orientation)
	assert.Equal(t, "right-left", guides[0].Match)
	assert.Equal(t, 105.0, guides[0].Position)
	assert.Equal(t, 5.0, guides[0].Delta)
	assert.Equal(t, 0.0, guides[0].From)
	assert.Equal(t, 550.0, guides[0].To)

	assert.Empty(t, AlignmentGuides(moving, []Rect{NewRect(106, 500, 50, 50)}, DefaultGuideThreshold))
}

func TestAlignmentGuidesCenters(t *testing.T) {
	moving := NewRect(0, 0, 100, 100)
	other := NewRect(302, 2, 100, 100)

	guides := AlignmentGuides(moving, []Rect{other}, DefaultGuideThreshold)
	var matches []string
	for _, g := range guides {
		matches = append(matches, g.Orientation.String()+":"+g.Match)
	}
	assert.ElementsMatch(t, []string{
		"horizontal:top-top",
		"horizontal:bottom-bottom",
		"horizontal:center-center",
	}, matches)
}

func TestSnapOffsetPicksSmallestDelta(t *testing.T) {
	guides := []Guide{
		{Orientation: Vertical, Delta: 4},
		{Orientation: Vertical, Delta: -2},
		{Orientation: Horizontal, Delta: 3},
	}

	dx, dy, sx, sy := SnapOffset(guides)
	assert.True(t, sx)
	assert.True(t, sy)
	assert.Equal(t, -2.0, dx)
	assert.Equal(t, 3.0, dy)

	kept := FilterSnapped(guides, dx, dy)
	require.Len(t, kept, 2)
	for _, g := range kept {
		assert.Zero(t, g.Delta)
	}
	assert.Len(t, guides, 3, "input is not modified")
}

func TestSnapToGrid(t *testing.T) {
	assert.Equal(t, Point2D{X: 20, Y: 40}, SnapToGrid(Point2D{X: 23, Y: 31}, 20))
	assert.Equal(t, Point2D{X: 23, Y: 31}, SnapToGrid(Point2D{X: 23, Y: 31}, 0))
	assert.Equal(t, -20.0, SnapValue(-11, 20))
}

func TestRectIntersectsSharedEdge(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	assert.True(t, IntersectsRect(a, NewRect(10, 0, 5, 5)))
	assert.True(t, IntersectsRect(a, NewRect(5, 5, 0, 0)))
	assert.False(t, IntersectsRect(a, NewRect(11, 0, 5, 5)))
}

func TestRectFromPointsNormalizes(t *testing.T) {
	assert.Equal(t, NewRect(10, 5, 20, 15), RectFromPoints(Point2D{X: 30, Y: 5}, Point2D{X: 10, Y: 20}))
}

func TestScaleRectWithin(t *testing.T) {
	from := NewRect(0, 0, 40, 10)
	to := NewRect(0, 0, 80, 20)
	assert.Equal(t, NewRect(60, 0, 20, 20), ScaleRectWithin(NewRect(30, 0, 10, 10), from, to))
}

func TestPointInPolygon(t *testing.T) {
	square := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	assert.True(t, PointInPolygon(Point2D{X: 5, Y: 5}, square))
	assert.False(t, PointInPolygon(Point2D{X: 15, Y: 5}, square))
	assert.InDelta(t, 5, DistanceToSegment(Point2D{X: 5, Y: 5}, Point2D{X: 0, Y: 0}, Point2D{X: 10, Y: 0}), 1e-9)
}

func TestTransformThenAndInvert(t *testing.T) {
	// Scale first, then offset: (3, -4) -> (6, -12) -> (16, -7).
	tr := ScaleBy(2, 3).Then(Translate(10, 5))
	assert.Equal(t, Point2D{X: 16, Y: -7}, tr.Apply(Point2D{X: 3, Y: -4}))

	inv, ok := tr.Invert()
	require.True(t, ok)
	back := inv.Apply(Point2D{X: 16, Y: -7})
	assert.InDelta(t, 3, back.X, 1e-9)
	assert.InDelta(t, -4, back.Y, 1e-9)

	_, ok = ScaleBy(0, 1).Invert()
	assert.False(t, ok)
}
