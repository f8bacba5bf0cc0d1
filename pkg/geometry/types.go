// Package geometry provides the pure geometric types and functions used by
// the whiteboard engine: points, boxes, affine transforms, handles, resize
// math, alignment guides and grid snapping.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return r2.Norm(r2.Sub(p.vec(), other.vec()))
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return fromVec(r2.Add(p.vec(), other.vec()))
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return fromVec(r2.Sub(p.vec(), other.vec()))
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return fromVec(r2.Scale(factor, p.vec()))
}

// RotateAbout rotates the point by radians around center.
func (p Point2D) RotateAbout(radians float64, center Point2D) Point2D {
	if radians == 0 {
		return p
	}
	return fromVec(r2.Rotate(p.vec(), radians, center.vec()))
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point2D) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

func (p Point2D) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) Point2D {
	return Point2D{X: v.X, Y: v.Y}
}

// Rect represents an axis-aligned rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromPoints returns the normalized rectangle spanning two corners.
func RectFromPoints(a, b Point2D) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains returns true if the point is inside the rectangle (edges included).
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Inset returns the rectangle shrunk by d on every side (grown for negative d).
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Intersects returns true if this rectangle overlaps another. Rectangles
// that only share an edge also intersect, so zero-sized boxes (a horizontal
// line's bounds) can still be lasso-selected.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width && r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height && r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	x2 := math.Max(r.X+r.Width, other.X+other.Width)
	y2 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// IsFinite reports whether every field is a finite number.
func (r Rect) IsFinite() bool {
	return isFinite(r.X) && isFinite(r.Y) && isFinite(r.Width) && isFinite(r.Height)
}

// IsContainedWithin reports whether inner lies entirely inside outer.
func IsContainedWithin(inner, outer Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.Right() <= outer.Right() && inner.Bottom() <= outer.Bottom()
}

// IntersectsRect reports whether two rectangles overlap.
func IntersectsRect(a, b Rect) bool {
	return a.Intersects(b)
}

// Transform is a 2x3 matrix mapping (x, y) to
// (A*x + B*y + TX, C*x + D*y + TY). Viewports use it to move between world
// and screen space.
type Transform struct {
	A, B, TX float64
	C, D, TY float64
}

// Translate returns a transform that offsets by (tx, ty).
func Translate(tx, ty float64) Transform {
	return Transform{A: 1, D: 1, TX: tx, TY: ty}
}

// ScaleBy returns a transform that scales about the origin.
func ScaleBy(sx, sy float64) Transform {
	return Transform{A: sx, D: sy}
}

// Apply maps p.
func (t Transform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Then returns the transform that applies t first and u second.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		A:  u.A*t.A + u.B*t.C,
		B:  u.A*t.B + u.B*t.D,
		TX: u.A*t.TX + u.B*t.TY + u.TX,
		C:  u.C*t.A + u.D*t.C,
		D:  u.C*t.B + u.D*t.D,
		TY: u.C*t.TX + u.D*t.TY + u.TY,
	}
}

// Invert returns the inverse of t. A degenerate (zero-area) transform has
// none.
func (t Transform) Invert() (Transform, bool) {
	det := t.A*t.D - t.B*t.C
	if math.Abs(det) < 1e-12 {
		return Transform{}, false
	}
	return Transform{
		A:  t.D / det,
		B:  -t.B / det,
		TX: (t.B*t.TY - t.D*t.TX) / det,
		C:  -t.C / det,
		D:  t.A / det,
		TY: (t.C*t.TX - t.A*t.TY) / det,
	}, true
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
