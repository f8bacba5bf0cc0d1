package scene

import (
	"math"

	"plm-whiteboard/pkg/geometry"
)

// Viewport returns the current pan and zoom.
func (s *Store) Viewport() Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// SetPan sets the screen offset of the world origin.
func (s *Store) SetPan(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	s.mu.Lock()
	s.viewport.PanX, s.viewport.PanY = x, y
	s.mu.Unlock()

	s.emit(ChangeViewport)
}

// PanBy shifts the viewport by a screen-space delta.
func (s *Store) PanBy(dx, dy float64) {
	v := s.Viewport()
	s.SetPan(v.PanX+dx, v.PanY+dy)
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (s *Store) SetZoom(z float64) {
	if math.IsNaN(z) || z <= 0 {
		return
	}
	s.mu.Lock()
	s.viewport.Zoom = ClampZoom(z)
	s.mu.Unlock()

	s.emit(ChangeViewport)
}

// ZoomAt multiplies the zoom by factor keeping the world point under the
// screen point fixed.
func (s *Store) ZoomAt(screen geometry.Point2D, factor float64) {
	if math.IsNaN(factor) || factor <= 0 {
		return
	}
	s.mu.Lock()
	v := s.viewport
	anchor := v.ScreenToWorld(screen)
	z := ClampZoom(v.zoom() * factor)
	s.viewport = Viewport{
		PanX: screen.X - anchor.X*z,
		PanY: screen.Y - anchor.Y*z,
		Zoom: z,
	}
	s.mu.Unlock()

	s.emit(ChangeViewport)
}

// SetViewport replaces pan and zoom.
func (s *Store) SetViewport(v Viewport) {
	v.Zoom = ClampZoom(v.zoom())
	s.mu.Lock()
	s.viewport = v
	s.mu.Unlock()

	s.emit(ChangeViewport)
}

// Grid returns the grid settings.
func (s *Store) Grid() Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// SetGrid replaces the grid settings. A non-positive size keeps the current
// size.
func (s *Store) SetGrid(g Grid) {
	s.mu.Lock()
	if g.Size <= 0 || math.IsNaN(g.Size) {
		g.Size = s.grid.Size
	}
	if g.Style != GridLines {
		g.Style = GridDots
	}
	s.grid = g
	s.mu.Unlock()

	s.emit(ChangeSettings)
}

// SnapToGrid reports whether dragging snaps to the grid.
func (s *Store) SnapToGrid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapToGrid
}

func (s *Store) SetSnapToGrid(on bool) {
	s.mu.Lock()
	s.snapToGrid = on
	s.mu.Unlock()

	s.emit(ChangeSettings)
}

// ShowAlignmentGuides reports whether alignment guides are computed while
// dragging.
func (s *Store) ShowAlignmentGuides() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showGuides
}

func (s *Store) SetShowAlignmentGuides(on bool) {
	s.mu.Lock()
	s.showGuides = on
	s.mu.Unlock()

	s.emit(ChangeSettings)
}

// ActiveTool returns the exclusive pointer tool.
func (s *Store) ActiveTool() Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

func (s *Store) SetActiveTool(t Tool) {
	s.mu.Lock()
	s.tool = t
	s.mu.Unlock()

	s.emit(ChangeTool)
}

// ShapeVariant returns the variant the shape tool creates.
func (s *Store) ShapeVariant() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shapeVariant
}

func (s *Store) SetShapeVariant(v string) {
	if v == "" {
		return
	}
	s.mu.Lock()
	s.shapeVariant = v
	s.mu.Unlock()

	s.emit(ChangeTool)
}
