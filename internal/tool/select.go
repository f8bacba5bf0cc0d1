package tool

import (
	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/render"
	"plm-whiteboard/pkg/geometry"
)

// beginSelect picks the select-tool gesture: rotation handle, resize
// handle, element body, or empty canvas.
func (m *Machine) beginSelect(ev PointerEvent) {
	world := m.g.startWorld
	zoom := m.zoom()
	size := m.cfg.HandleSize / zoom
	offset := m.cfg.RotationOffset / zoom

	selected := m.scene.SelectedIDs()
	for i := len(selected) - 1; i >= 0; i-- {
		e, ok := m.scene.Element(selected[i])
		if !ok {
			continue
		}
		if element.HitTestRotationHandle(&e, world.X, world.Y, size, offset) {
			m.beginTransform(gestureRotate, e, "")
			return
		}
		if h, ok := element.HitTestHandles(&e, world.X, world.Y, size); ok {
			m.beginTransform(gestureResize, e, h)
			return
		}
	}

	id, ok := m.hit(world)
	if !ok {
		if !ev.Mods.Shift {
			m.scene.ClearSelection()
		}
		m.g.kind = gestureLasso
		return
	}

	top := m.scene.TopLevel(id)
	if ev.Mods.Shift {
		m.warn(m.scene.ToggleSelection(top))
		if !m.scene.IsSelected(top) {
			return
		}
	} else if !m.scene.IsSelected(top) {
		m.warn(m.scene.SelectElement(top, false))
	}
	m.beginMove(top)
}

func (m *Machine) beginTransform(kind gestureKind, e element.Element, h geometry.Handle) {
	m.g.kind = kind
	m.g.id = e.ID
	m.g.handle = h
	m.g.original = e.Clone()
	m.g.originals = []element.Element{e.Clone()}
	for _, d := range m.scene.Descendants(e.ID) {
		if de, ok := m.scene.Element(d); ok {
			m.g.originals = append(m.g.originals, de)
		}
	}
}

func (m *Machine) beginMove(clicked string) {
	m.g.kind = gestureMove
	m.g.id = clicked
	m.g.ids = m.scene.SelectedIDs()
	m.g.wasAlone = len(m.g.ids) == 1

	m.g.exclude = make(map[string]bool)
	var els []element.Element
	for _, id := range m.g.ids {
		m.g.exclude[id] = true
		for _, d := range m.scene.Descendants(id) {
			m.g.exclude[d] = true
		}
		if e, ok := m.scene.Element(id); ok {
			els = append(els, e)
		}
	}
	m.g.origBox, _ = element.CombinedBoundingBox(els)
}

// hit returns the topmost element under the world point.
func (m *Machine) hit(world geometry.Point2D) (string, bool) {
	return render.HitTest(m.scene, world.X, world.Y)
}

// rotateTo points the element's up axis at the pointer.
func (m *Machine) rotateTo(world geometry.Point2D, snap bool) {
	orig := m.g.original
	angle := geometry.AngleFromCenter(orig.Box().Center(), world)
	if snap {
		angle = geometry.SnapAngle(angle, m.cfg.RotationSnap)
	}
	m.warn(m.scene.UpdateElement(orig.ID, func(e *element.Element) { e.Rotation = angle }))
}

// resizeTo drags the handle to the pointer. The delta is measured in the
// element's unrotated frame and the opposite handle stays put in world
// space.
func (m *Machine) resizeTo(world geometry.Point2D, preserveAspect bool) {
	orig := m.g.original
	box := orig.Box()
	h := m.g.handle

	delta := world.Sub(m.g.startWorld)
	if orig.Rotation != 0 {
		delta = delta.RotateAbout(-orig.Rotation, geometry.Point2D{})
	} else if m.scene.SnapToGrid() {
		start := geometry.HandlePosition(box, h)
		delta = m.snap(start.Add(delta)).Sub(start)
	}

	next := geometry.CalculateResize(box, h, delta.X, delta.Y, preserveAspect)
	if orig.Rotation != 0 {
		opp := h.Opposite()
		fixed := element.WorldPoint(&orig, geometry.HandlePosition(box, opp))
		moved := geometry.HandlePosition(next, opp).RotateAbout(orig.Rotation, next.Center())
		next = next.Translate(fixed.X-moved.X, fixed.Y-moved.Y)
	}
	m.warn(m.scene.ResizeElement(orig.ID, next))

	if orig.Rotation == 0 && m.scene.ShowAlignmentGuides() {
		m.overlay.SetGuides(geometry.AlignmentGuides(next, m.otherBoxes(orig.ID), m.cfg.GuideThreshold))
	}
}

// moveTo translates the selection so its combined box follows the pointer,
// snapping to the grid and then to alignment guides.
func (m *Machine) moveTo(world geometry.Point2D) {
	total := world.Sub(m.g.startWorld)
	proposed := m.g.origBox.Translate(total.X, total.Y)

	if m.scene.SnapToGrid() {
		tl := m.snap(proposed.TopLeft())
		total = total.Add(tl.Sub(proposed.TopLeft()))
		proposed = m.g.origBox.Translate(total.X, total.Y)
	}

	if m.scene.ShowAlignmentGuides() {
		guides := geometry.AlignmentGuides(proposed, m.otherBoxes(""), m.cfg.GuideThreshold)
		dx, dy, _, _ := geometry.SnapOffset(guides)
		total = total.Add(geometry.Point2D{X: dx, Y: dy})
		m.overlay.SetGuides(geometry.FilterSnapped(guides, dx, dy))
	}

	step := total.Sub(m.g.applied)
	if step == (geometry.Point2D{}) {
		return
	}
	m.warn(m.scene.MoveElements(m.g.ids, step.X, step.Y))
	m.g.applied = total
}

// otherBoxes returns the boxes of visible top-level elements that are not
// part of the current gesture.
func (m *Machine) otherBoxes(skip string) []geometry.Rect {
	var boxes []geometry.Rect
	for _, id := range m.scene.TopLevelIDs() {
		if id == skip || m.g.exclude[id] {
			continue
		}
		e, ok := m.scene.Element(id)
		if !ok || !e.Visible || !e.Valid() {
			continue
		}
		boxes = append(boxes, element.BoundingBox(&e))
	}
	return boxes
}

// finishMove collapses a multi-selection to the clicked element when the
// press did not turn into a drag.
func (m *Machine) finishMove() {
	if m.g.dragging || m.g.additive || m.g.wasAlone {
		return
	}
	m.warn(m.scene.SelectElement(m.g.id, false))
}

// finishLasso selects every visible top-level element whose box intersects
// the lasso. Shift adds to the selection instead of replacing it.
func (m *Machine) finishLasso(world geometry.Point2D) {
	if !m.g.dragging {
		return
	}
	lasso := geometry.RectFromPoints(m.g.startWorld, world)
	ids := LassoSelect(m.scene, lasso)
	if m.g.additive {
		m.scene.AddToSelection(ids)
	} else {
		m.scene.SelectElements(ids)
	}
}

// LassoSelect returns the visible top-level elements whose bounding box
// intersects r.
func LassoSelect(sc Scene, r geometry.Rect) []string {
	var ids []string
	for _, id := range sc.TopLevelIDs() {
		e, ok := sc.Element(id)
		if !ok || !e.Visible || !e.Valid() {
			continue
		}
		if geometry.IntersectsRect(element.BoundingBox(&e), r) {
			ids = append(ids, id)
		}
	}
	return ids
}
