package element

import (
	"math"

	"plm-whiteboard/pkg/geometry"
)

// Outline vertices shared by the renderers and hit-testing, so that what is
// painted is exactly what is hit.

// TriangleVertices returns apex-up triangle corners.
func TriangleVertices(r geometry.Rect) [3]geometry.Point2D {
	return [3]geometry.Point2D{
		{X: r.X + r.Width/2, Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}
}

// DiamondVertices returns the edge midpoints of r, clockwise from the top.
func DiamondVertices(r geometry.Rect) []geometry.Point2D {
	c := r.Center()
	return []geometry.Point2D{
		{X: c.X, Y: r.Y},
		{X: r.Right(), Y: c.Y},
		{X: c.X, Y: r.Bottom()},
		{X: r.X, Y: c.Y},
	}
}

// HexagonVertices returns a flat-topped hexagon whose corners are cut a
// quarter of the width in from each side.
func HexagonVertices(r geometry.Rect) []geometry.Point2D {
	c := r.Center()
	q := r.Width / 4
	return []geometry.Point2D{
		{X: r.X + q, Y: r.Y},
		{X: r.Right() - q, Y: r.Y},
		{X: r.Right(), Y: c.Y},
		{X: r.Right() - q, Y: r.Bottom()},
		{X: r.X + q, Y: r.Bottom()},
		{X: r.X, Y: c.Y},
	}
}

// ParallelogramVertices returns a right-leaning parallelogram.
func ParallelogramVertices(r geometry.Rect) []geometry.Point2D {
	skew := ParallelogramSkew(r)
	return []geometry.Point2D{
		{X: r.X + skew, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right() - skew, Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}
}

// ParallelogramSkew is the horizontal offset of the top edge.
func ParallelogramSkew(r geometry.Rect) float64 {
	return math.Min(r.Width*0.25, r.Height)
}

// StarVertices returns a five-pointed star inscribed in r, first point up.
func StarVertices(r geometry.Rect) []geometry.Point2D {
	const points = 5
	const innerRatio = 0.4
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2
	pts := make([]geometry.Point2D, 0, points*2)
	for i := 0; i < points*2; i++ {
		a := -math.Pi/2 + float64(i)*math.Pi/points
		k := 1.0
		if i%2 == 1 {
			k = innerRatio
		}
		pts = append(pts, geometry.Point2D{X: c.X + rx*k*math.Cos(a), Y: c.Y + ry*k*math.Sin(a)})
	}
	return pts
}

// CloudVertices returns a scalloped outline inscribed in r's ellipse.
func CloudVertices(r geometry.Rect) []geometry.Point2D {
	const samples = 96
	const bumps = 8
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2
	pts := make([]geometry.Point2D, 0, samples)
	for i := 0; i < samples; i++ {
		a := float64(i) * 2 * math.Pi / samples
		k := 0.86 + 0.14*math.Abs(math.Sin(a*bumps/2))
		pts = append(pts, geometry.Point2D{X: c.X + rx*k*math.Cos(a), Y: c.Y + ry*k*math.Sin(a)})
	}
	return pts
}

// CylinderCap returns the vertical radius of the cylinder's end ellipses.
func CylinderCap(r geometry.Rect) float64 {
	return math.Min(r.Height*0.12, r.Width/2)
}
