package render

import (
	"image/color"
	"math"

	"plm-whiteboard/internal/scene"
	"plm-whiteboard/pkg/geometry"
)

// Grid density thresholds, in grid points (columns × rows) visible at the
// configured step.
const (
	GridDoubleStep    = 5000
	GridQuadrupleStep = 15000
	GridSkip          = 40000

	gridDotRadius = 1.0 // screen pixels
	gridLineWidth = 0.5 // screen pixels
)

// GridPlan is the outcome of the density check for one frame.
type GridPlan struct {
	Visible geometry.Rect
	Step    float64
	Count   int // points at the configured step
	Skip    bool
}

// PlanGrid decides the step used to draw the grid over a display of the
// given size. Dense grids are thinned and very dense grids skipped so the
// cost stays bounded.
func PlanGrid(v scene.Viewport, g scene.Grid, width, height float64) GridPlan {
	visible := v.VisibleWorld(width, height)
	plan := GridPlan{Visible: visible, Step: g.Size}
	if !g.Enabled || g.Size <= 0 || width <= 0 || height <= 0 {
		plan.Skip = true
		return plan
	}

	cols := math.Floor(visible.Width/g.Size) + 1
	rows := math.Floor(visible.Height/g.Size) + 1
	count := cols * rows
	if count > math.MaxInt32 {
		count = math.MaxInt32
	}
	plan.Count = int(count)

	switch {
	case plan.Count > GridSkip:
		plan.Skip = true
	case plan.Count > GridQuadrupleStep:
		if g.Style == scene.GridLines {
			plan.Step = g.Size * 2
		} else {
			plan.Step = g.Size * 4
		}
	case plan.Count > GridDoubleStep:
		plan.Step = g.Size * 2
	}
	return plan
}

// DrawGrid paints the background grid in world space. Dots go into one path
// filled once; vertical and horizontal lines are one stroke each.
func DrawGrid(s Surface, v scene.Viewport, g scene.Grid, width, height float64, col color.Color) GridPlan {
	plan := PlanGrid(v, g, width, height)
	if plan.Skip {
		return plan
	}
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	step := plan.Step
	r := plan.Visible
	x0 := math.Floor(r.X/step) * step
	y0 := math.Floor(r.Y/step) * step

	if g.Style == scene.GridLines {
		s.SetStrokeColor(col)
		s.SetLineWidth(gridLineWidth / zoom)
		s.SetDash()
		for x := x0; x <= r.Right(); x += step {
			s.MoveTo(x, r.Y)
			s.LineTo(x, r.Bottom())
		}
		s.Stroke()
		for y := y0; y <= r.Bottom(); y += step {
			s.MoveTo(r.X, y)
			s.LineTo(r.Right(), y)
		}
		s.Stroke()
		return plan
	}

	radius := gridDotRadius / zoom
	s.SetFillColor(col)
	for x := x0; x <= r.Right(); x += step {
		for y := y0; y <= r.Bottom(); y += step {
			s.Ellipse(x, y, radius, radius)
		}
	}
	s.Fill()
	return plan
}
