package geometry

// CalculateResize returns the box produced by dragging handle h of orig by
// (dx, dy). Edges named by the handle move, the opposite edges stay fixed.
// With preserveAspect, corner handles derive height from width using the
// original ratio and re-anchor so the opposite corner does not move. Width
// and height never drop below MinSize; clamping keeps the fixed edge in place.
func CalculateResize(orig Rect, h Handle, dx, dy float64, preserveAspect bool) Rect {
	x, y, w, ht := orig.X, orig.Y, orig.Width, orig.Height

	if h.has('e') {
		w = orig.Width + dx
	}
	if h.has('w') {
		w = orig.Width - dx
	}
	if h.has('s') {
		ht = orig.Height + dy
	}
	if h.has('n') {
		ht = orig.Height - dy
	}

	if w < MinSize {
		w = MinSize
	}
	if ht < MinSize {
		ht = MinSize
	}

	if preserveAspect && h.IsCorner() && orig.Width > 0 && orig.Height > 0 {
		ratio := orig.Width / orig.Height
		ht = w / ratio
		if ht < MinSize {
			ht = MinSize
			w = ht * ratio
		}
	}

	// Re-anchor against the fixed edges.
	if h.has('w') {
		x = orig.Right() - w
	}
	if h.has('n') {
		y = orig.Bottom() - ht
	}

	return Rect{X: x, Y: y, Width: w, Height: ht}
}

// ScaleRectWithin maps r from the coordinate frame of box from into box to,
// scaling position and size proportionally. Used to resize group members
// along with their group.
func ScaleRectWithin(r, from, to Rect) Rect {
	sx, sy := 1.0, 1.0
	if from.Width != 0 {
		sx = to.Width / from.Width
	}
	if from.Height != 0 {
		sy = to.Height / from.Height
	}
	return Rect{
		X:      to.X + (r.X-from.X)*sx,
		Y:      to.Y + (r.Y-from.Y)*sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}
}

// ScalePointWithin maps p from box from into box to.
func ScalePointWithin(p Point2D, from, to Rect) Point2D {
	r := ScaleRectWithin(Rect{X: p.X, Y: p.Y}, from, to)
	return Point2D{X: r.X, Y: r.Y}
}
