package geometry

import "math"

// Handle names a resize control point on a box.
type Handle string

const (
	HandleNW Handle = "nw"
	HandleN  Handle = "n"
	HandleNE Handle = "ne"
	HandleE  Handle = "e"
	HandleSE Handle = "se"
	HandleS  Handle = "s"
	HandleSW Handle = "sw"
	HandleW  Handle = "w"
)

const (
	// DefaultHandleSize is the side of the square hit area around a handle.
	DefaultHandleSize = 8.0

	// MinSize is the smallest width or height a resize may produce.
	MinSize = 10.0

	// RotationHandleOffset is the distance of the rotation handle above the
	// top-center handle, measured along the element's rotated axis.
	RotationHandleOffset = 25.0
)

// AllHandles lists the handles in the order they are hit-tested.
var AllHandles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// IsCorner reports whether h is one of the four corner handles.
func (h Handle) IsCorner() bool {
	return len(h) == 2
}

func (h Handle) has(edge byte) bool {
	for i := 0; i < len(h); i++ {
		if h[i] == edge {
			return true
		}
	}
	return false
}

// Opposite returns the handle diagonally or directly across the box.
func (h Handle) Opposite() Handle {
	switch h {
	case HandleNW:
		return HandleSE
	case HandleN:
		return HandleS
	case HandleNE:
		return HandleSW
	case HandleE:
		return HandleW
	case HandleSE:
		return HandleNW
	case HandleS:
		return HandleN
	case HandleSW:
		return HandleNE
	case HandleW:
		return HandleE
	}
	return h
}

// HandlePoint pairs a handle with its position.
type HandlePoint struct {
	Handle Handle
	Point  Point2D
}

// HandlePositions returns the eight handle points on the unrotated box, in
// AllHandles order.
func HandlePositions(r Rect) []HandlePoint {
	pts := make([]HandlePoint, 0, len(AllHandles))
	for _, h := range AllHandles {
		pts = append(pts, HandlePoint{Handle: h, Point: HandlePosition(r, h)})
	}
	return pts
}

// HandlePosition returns the position of a single handle on the unrotated box.
func HandlePosition(r Rect, h Handle) Point2D {
	x := r.X + r.Width/2
	y := r.Y + r.Height/2
	if h.has('w') {
		x = r.X
	} else if h.has('e') {
		x = r.Right()
	}
	if h.has('n') {
		y = r.Y
	} else if h.has('s') {
		y = r.Bottom()
	}
	return Point2D{X: x, Y: y}
}

// HitTestHandles returns the handle whose size×size square contains the
// point. The point is expected in the box's unrotated frame.
func HitTestHandles(r Rect, px, py, size float64) (Handle, bool) {
	if size <= 0 {
		size = DefaultHandleSize
	}
	half := size / 2
	for _, hp := range HandlePositions(r) {
		if math.Abs(px-hp.Point.X) <= half && math.Abs(py-hp.Point.Y) <= half {
			return hp.Handle, true
		}
	}
	return "", false
}

// RotationHandle returns the rotation handle position in the unrotated frame:
// offset units above the top-center handle.
func RotationHandle(r Rect, offset float64) Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y - offset}
}

// AngleFromCenter returns the rotation that points the element's "up" axis
// from center toward p. A pointer straight above the center yields 0.
func AngleFromCenter(center, p Point2D) float64 {
	return NormalizeAngle(math.Atan2(p.Y-center.Y, p.X-center.X) + math.Pi/2)
}

// NormalizeAngle maps an angle in radians into [0, 2π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// SnapAngle rounds an angle to the nearest multiple of step radians.
func SnapAngle(a, step float64) float64 {
	if step <= 0 {
		return a
	}
	return NormalizeAngle(math.Round(a/step) * step)
}
