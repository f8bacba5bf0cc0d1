package geometry

import "math"

// SnapValue rounds v to the nearest multiple of size. A non-positive size
// disables snapping.
func SnapValue(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	return math.Round(v/size) * size
}

// SnapToGrid rounds each coordinate of p to the nearest multiple of gridSize.
func SnapToGrid(p Point2D, gridSize float64) Point2D {
	return Point2D{X: SnapValue(p.X, gridSize), Y: SnapValue(p.Y, gridSize)}
}
