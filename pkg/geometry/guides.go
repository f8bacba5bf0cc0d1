package geometry

import "math"

// DefaultGuideThreshold is the largest distance at which two references are
// considered aligned.
const DefaultGuideThreshold = 5.0

// Orientation distinguishes vertical guides (constant x) from horizontal
// guides (constant y).
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Guide is a transient alignment line between a moving box and another box.
type Guide struct {
	Orientation Orientation
	// Position is the x (vertical) or y (horizontal) of the target reference.
	Position float64
	// From and To span both boxes along the perpendicular axis.
	From, To float64
	// Delta is what must be added to the moving box to land exactly on Position.
	Delta float64
	// Match names the references compared, e.g. "left-right".
	Match string
}

type reference struct {
	name  string
	value float64
}

func verticalRefs(r Rect) [3]reference {
	return [3]reference{{"left", r.X}, {"center", r.X + r.Width/2}, {"right", r.Right()}}
}

func horizontalRefs(r Rect) [3]reference {
	return [3]reference{{"top", r.Y}, {"center", r.Y + r.Height/2}, {"bottom", r.Bottom()}}
}

// refPairs lists the five comparisons made per axis: the four edge pairs
// plus center-center.
var refPairs = [5][2]int{{0, 0}, {0, 2}, {2, 0}, {2, 2}, {1, 1}}

// AlignmentGuides compares moving against every box in others and returns a
// guide for each reference pair within threshold. It never modifies its
// inputs; callers decide whether to snap using Guide.Delta.
func AlignmentGuides(moving Rect, others []Rect, threshold float64) []Guide {
	if threshold < 0 {
		threshold = DefaultGuideThreshold
	}
	var guides []Guide
	mv, mh := verticalRefs(moving), horizontalRefs(moving)

	for _, other := range others {
		ov, oh := verticalRefs(other), horizontalRefs(other)

		for _, pair := range refPairs {
			m, o := mv[pair[0]], ov[pair[1]]
			if d := o.value - m.value; math.Abs(d) <= threshold {
				guides = append(guides, Guide{
					Orientation: Vertical,
					Position:    o.value,
					From:        math.Min(moving.Y, other.Y),
					To:          math.Max(moving.Bottom(), other.Bottom()),
					Delta:       d,
					Match:       m.name + "-" + o.name,
				})
			}
		}

		for _, pair := range refPairs {
			m, o := mh[pair[0]], oh[pair[1]]
			if d := o.value - m.value; math.Abs(d) <= threshold {
				guides = append(guides, Guide{
					Orientation: Horizontal,
					Position:    o.value,
					From:        math.Min(moving.X, other.X),
					To:          math.Max(moving.Right(), other.Right()),
					Delta:       d,
					Match:       m.name + "-" + o.name,
				})
			}
		}
	}
	return guides
}

// SnapOffset returns the smallest-magnitude delta per axis among guides, so a
// caller can snap the moving box onto the nearest alignment.
func SnapOffset(guides []Guide) (dx, dy float64, snappedX, snappedY bool) {
	bestX, bestY := math.Inf(1), math.Inf(1)
	for _, g := range guides {
		switch g.Orientation {
		case Vertical:
			if math.Abs(g.Delta) < bestX {
				bestX = math.Abs(g.Delta)
				dx, snappedX = g.Delta, true
			}
		case Horizontal:
			if math.Abs(g.Delta) < bestY {
				bestY = math.Abs(g.Delta)
				dy, snappedY = g.Delta, true
			}
		}
	}
	return dx, dy, snappedX, snappedY
}

// FilterSnapped keeps only the guides that still line up after the moving box
// has been shifted by (dx, dy), so the overlay shows what actually aligned.
func FilterSnapped(guides []Guide, dx, dy float64) []Guide {
	const eps = 1e-6
	out := guides[:0:0]
	for _, g := range guides {
		shift := dx
		if g.Orientation == Horizontal {
			shift = dy
		}
		if math.Abs(g.Delta-shift) < eps {
			g.Delta = 0
			out = append(out, g)
		}
	}
	return out
}
