package geometry

import "math"

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PointInTriangle reports whether p lies inside (or on) triangle abc using
// the sign of the three edge cross products.
func PointInTriangle(p, a, b, c Point2D) bool {
	d1 := crossProduct(a, b, p)
	d2 := crossProduct(b, c, p)
	d3 := crossProduct(c, a, p)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// DistanceToSegment returns the shortest distance from p to segment ab.
func DistanceToSegment(p, a, b Point2D) float64 {
	lenSq := distSq(a, b)
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*(b.X-a.X) + (p.Y-a.Y)*(b.Y-a.Y)) / lenSq
	t = math.Max(0, math.Min(1, t))
	proj := Point2D{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
	return p.Distance(proj)
}

// DistanceToPolyline returns the shortest distance from p to any segment of
// the open polyline. A single point degenerates to point distance.
func DistanceToPolyline(p Point2D, pts []Point2D) float64 {
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return p.Distance(pts[0])
	}
	best := math.Inf(1)
	for i := 0; i < len(pts)-1; i++ {
		best = math.Min(best, DistanceToSegment(p, pts[i], pts[i+1]))
	}
	return best
}

// QuadraticPoints samples the quadratic Bézier from a through control c to b
// into n+1 points.
func QuadraticPoints(a, c, b Point2D, n int) []Point2D {
	if n < 1 {
		n = 1
	}
	pts := make([]Point2D, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		mt := 1 - t
		pts = append(pts, Point2D{
			X: mt*mt*a.X + 2*mt*t*c.X + t*t*b.X,
			Y: mt*mt*a.Y + 2*mt*t*c.Y + t*t*b.Y,
		})
	}
	return pts
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// distSq computes the squared distance between two points.
func distSq(a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
