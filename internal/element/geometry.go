package element

import (
	"math"

	"plm-whiteboard/pkg/geometry"
)

// LineTolerance is the hit distance around lines and freehand paths.
const LineTolerance = 6.0

// BoundingBox returns the element's axis-aligned box before rotation. For a
// line it spans both end points.
func BoundingBox(e *Element) geometry.Rect {
	if e.Kind == KindLine && e.Line != nil {
		return geometry.RectFromPoints(
			geometry.Point2D{X: e.X, Y: e.Y},
			geometry.Point2D{X: e.Line.X2, Y: e.Line.Y2},
		)
	}
	return e.Box()
}

// CombinedBoundingBox returns the union of the elements' boxes. ok is false
// for an empty input.
func CombinedBoundingBox(els []Element) (r geometry.Rect, ok bool) {
	for i := range els {
		b := BoundingBox(&els[i])
		if !ok {
			r, ok = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, ok
}

// LocalPoint maps a world point into the element's unrotated frame.
func LocalPoint(e *Element, px, py float64) geometry.Point2D {
	p := geometry.Point2D{X: px, Y: py}
	if e.Rotation == 0 || e.Kind == KindLine {
		return p
	}
	return p.RotateAbout(-e.Rotation, e.Box().Center())
}

// WorldPoint maps a point in the element's unrotated frame to world space.
func WorldPoint(e *Element, p geometry.Point2D) geometry.Point2D {
	if e.Rotation == 0 || e.Kind == KindLine {
		return p
	}
	return p.RotateAbout(e.Rotation, e.Box().Center())
}

// HitTest reports whether the world point lies on the painted element.
// Malformed elements never hit.
func HitTest(e *Element, px, py float64) bool {
	if !e.Valid() {
		return false
	}
	if e.Kind == KindLine {
		return hitLine(e, geometry.Point2D{X: px, Y: py})
	}

	box := e.Box()
	p := LocalPoint(e, px, py)

	switch e.Kind {
	case KindPath:
		if !box.Inset(-tolerance(e.Path.StrokeWidth)).Contains(p) {
			return false
		}
		pts := e.Path.WorldPoints(box)
		return geometry.DistanceToPolyline(p, pts) <= tolerance(e.Path.StrokeWidth)
	case KindShape:
		return hitShape(e.Shape.Outline(), box, p)
	default:
		return box.Contains(p)
	}
}

func tolerance(strokeWidth float64) float64 {
	return math.Max(LineTolerance, strokeWidth/2)
}

func hitLine(e *Element, p geometry.Point2D) bool {
	a := geometry.Point2D{X: e.X, Y: e.Y}
	b := geometry.Point2D{X: e.Line.X2, Y: e.Line.Y2}
	tol := tolerance(e.Line.StrokeWidth)
	if e.Line.Curvature == 0 {
		return geometry.DistanceToSegment(p, a, b) <= tol
	}
	c := e.Line.ControlPoint(e.X, e.Y)
	return geometry.DistanceToPolyline(p, geometry.QuadraticPoints(a, c, b, 24)) <= tol
}

func hitShape(v Variant, box geometry.Rect, p geometry.Point2D) bool {
	if !box.Contains(p) {
		return false
	}
	if box.Width <= 0 || box.Height <= 0 {
		return true
	}

	c := box.Center()
	nx := math.Abs(p.X-c.X) / (box.Width / 2)
	ny := math.Abs(p.Y-c.Y) / (box.Height / 2)

	switch v {
	case VariantEllipse:
		return nx*nx+ny*ny <= 1
	case VariantDiamond:
		return nx+ny <= 1
	case VariantTriangle:
		t := TriangleVertices(box)
		return geometry.PointInTriangle(p, t[0], t[1], t[2])
	case VariantHexagon:
		return nx+ny/2 <= 1
	case VariantCylinder:
		return hitCylinder(box, p)
	case VariantCloud:
		return geometry.PointInPolygon(p, CloudVertices(box))
	case VariantStar:
		return geometry.PointInPolygon(p, StarVertices(box))
	case VariantParallelogram:
		return geometry.PointInPolygon(p, ParallelogramVertices(box))
	default:
		// rectangle, rounded-rectangle and catalog symbols
		return true
	}
}

func hitCylinder(box geometry.Rect, p geometry.Point2D) bool {
	ry := CylinderCap(box)
	if ry <= 0 {
		return true
	}
	if p.Y >= box.Y+ry && p.Y <= box.Bottom()-ry {
		return true
	}
	cx := box.X + box.Width/2
	rx := box.Width / 2
	inCap := func(cy float64) bool {
		dx := (p.X - cx) / rx
		dy := (p.Y - cy) / ry
		return dx*dx+dy*dy <= 1
	}
	return inCap(box.Y+ry) || inCap(box.Bottom()-ry)
}

// HandlePositions returns the resize handles on the element's unrotated box.
// Lines have no handles.
func HandlePositions(e *Element) []geometry.HandlePoint {
	if e.Kind == KindLine {
		return nil
	}
	return geometry.HandlePositions(e.Box())
}

// HitTestHandles returns the handle under the world point. Lines never
// report a handle.
func HitTestHandles(e *Element, px, py, size float64) (geometry.Handle, bool) {
	if e.Kind == KindLine || !e.Valid() {
		return "", false
	}
	p := LocalPoint(e, px, py)
	return geometry.HitTestHandles(e.Box(), p.X, p.Y, size)
}

// RotationHandlePosition returns the world position of the rotation handle.
func RotationHandlePosition(e *Element, offset float64) geometry.Point2D {
	return WorldPoint(e, geometry.RotationHandle(e.Box(), offset))
}

// HitTestRotationHandle reports whether the world point is on the rotation
// handle. Lines and groups cannot be rotated by handle.
func HitTestRotationHandle(e *Element, px, py, size, offset float64) bool {
	if e.Kind == KindLine || e.Kind == KindGroup || !e.Valid() {
		return false
	}
	h := RotationHandlePosition(e, offset)
	return h.Distance(geometry.Point2D{X: px, Y: py}) <= size/2+1
}
