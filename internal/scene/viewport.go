package scene

import (
	"math"

	"plm-whiteboard/pkg/geometry"
)

const (
	MinZoom  = 0.1
	MaxZoom  = 10.0
	ZoomStep = 1.25
)

// Viewport maps world space to screen space: screen = world*Zoom + Pan.
type Viewport struct {
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport is unpanned at 100%.
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// Transform returns the world-to-screen transform.
func (v Viewport) Transform() geometry.Transform {
	z := v.zoom()
	return geometry.ScaleBy(z, z).Then(geometry.Translate(v.PanX, v.PanY))
}

// ScreenToWorld converts a screen position to world coordinates.
func (v Viewport) ScreenToWorld(p geometry.Point2D) geometry.Point2D {
	// zoom() is never zero, so the transform always inverts.
	inv, _ := v.Transform().Invert()
	return inv.Apply(p)
}

// WorldToScreen converts a world position to screen coordinates.
func (v Viewport) WorldToScreen(p geometry.Point2D) geometry.Point2D {
	return v.Transform().Apply(p)
}

// VisibleWorld returns the world rectangle shown in a display of the given
// size (in screen units).
func (v Viewport) VisibleWorld(width, height float64) geometry.Rect {
	tl := v.ScreenToWorld(geometry.Point2D{})
	z := v.zoom()
	return geometry.Rect{X: tl.X, Y: tl.Y, Width: width / z, Height: height / z}
}

// FitViewport returns the viewport that centers box in a display of the
// given size with margin screen units on each side. Zoom is clamped, so a
// huge or tiny box may not fill the display exactly.
func FitViewport(box geometry.Rect, width, height, margin float64) Viewport {
	aw, ah := width-2*margin, height-2*margin
	if box.Width <= 0 || box.Height <= 0 || aw <= 0 || ah <= 0 {
		c := box.Center()
		return Viewport{PanX: width/2 - c.X, PanY: height/2 - c.Y, Zoom: 1}
	}
	z := ClampZoom(math.Min(aw/box.Width, ah/box.Height))
	c := box.Center()
	return Viewport{PanX: width/2 - c.X*z, PanY: height/2 - c.Y*z, Zoom: z}
}

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// GridStyle selects how the background grid is drawn.
type GridStyle string

const (
	GridDots  GridStyle = "dots"
	GridLines GridStyle = "lines"
)

// Grid holds background grid settings.
type Grid struct {
	Enabled bool      `json:"enabled"`
	Size    float64   `json:"size"`
	Style   GridStyle `json:"style"`
}

// DefaultGrid is a 20-unit dot grid.
func DefaultGrid() Grid {
	return Grid{Enabled: true, Size: 20, Style: GridDots}
}

// Tool identifies the active pointer tool.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolShape  Tool = "shape"
	ToolText   Tool = "text"
	ToolLine   Tool = "line"
	ToolPath   Tool = "path"
)
