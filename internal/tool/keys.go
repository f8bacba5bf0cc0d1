package tool

import (
	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"

	log "github.com/sirupsen/logrus"
)

// NudgeStep is the arrow-key move distance in world units. Shift moves by
// one grid cell instead.
const NudgeStep = 1.0

var toolKeys = map[Key]scene.Tool{
	KeyV: scene.ToolSelect,
	KeyR: scene.ToolShape,
	KeyT: scene.ToolText,
	KeyL: scene.ToolLine,
	KeyP: scene.ToolPath,
}

// KeyDown applies a keyboard shortcut and reports whether it was consumed.
// While an element is being edited only Escape is handled; everything else
// belongs to the text editor.
func (m *Machine) KeyDown(ev KeyEvent) bool {
	editing := m.scene.EditingID() != ""
	if ev.Key == KeyEscape {
		switch {
		case m.g.kind != gestureNone:
			m.Cancel()
		case editing:
			m.warn(m.scene.SetEditingElementID(""))
		default:
			m.scene.ClearSelection()
		}
		return true
	}
	if editing {
		return false
	}

	selected := m.scene.SelectedIDs()
	switch ev.Key {
	case KeyDelete, KeyBackspace:
		if len(selected) == 0 {
			return false
		}
		n := m.scene.DeleteElements(selected...)
		log.WithField("count", n).Debug("Tool: deleted selection")
		return true

	case KeyLeft, KeyRight, KeyUp, KeyDown:
		if len(selected) == 0 || m.g.kind != gestureNone {
			return false
		}
		step := NudgeStep
		if ev.Mods.Shift {
			step = m.scene.Grid().Size
		}
		dx, dy := 0.0, 0.0
		switch ev.Key {
		case KeyLeft:
			dx = -step
		case KeyRight:
			dx = step
		case KeyUp:
			dy = -step
		case KeyDown:
			dy = step
		}
		m.warn(m.scene.MoveElements(selected, dx, dy))
		return true

	case KeyA:
		if !ev.Mods.Ctrl {
			break
		}
		m.scene.SelectAll()
		return true

	case KeyG:
		if !ev.Mods.Ctrl {
			break
		}
		if ev.Mods.Shift {
			for _, id := range selected {
				if _, err := m.scene.Ungroup(id); err != nil && len(selected) == 1 {
					m.warn(err)
				}
			}
			return true
		}
		if len(selected) < 2 {
			return false
		}
		_, err := m.scene.Group(selected)
		m.warn(err)
		return true

	case KeyBracketRight:
		if len(selected) == 0 {
			return false
		}
		if ev.Mods.Ctrl {
			m.warn(m.scene.BringToFront(selected...))
		} else {
			m.warn(m.scene.BringForward(selected...))
		}
		return true

	case KeyBracketLeft:
		if len(selected) == 0 {
			return false
		}
		if ev.Mods.Ctrl {
			m.warn(m.scene.SendToBack(selected...))
		} else {
			m.warn(m.scene.SendBackward(selected...))
		}
		return true
	}

	if t, ok := toolKeys[ev.Key]; ok && !ev.Mods.Ctrl && !ev.Mods.Alt {
		if m.g.kind != gestureNone {
			m.Cancel()
		}
		m.scene.SetActiveTool(t)
		return true
	}
	return false
}

// Cursor names the pointer cursor the host should show at the screen point.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCrosshair
	CursorText
	CursorMove
	CursorResize
	CursorRotate
	CursorGrab
)

// CursorAt returns the cursor for hovering at screen point (x, y).
func (m *Machine) CursorAt(x, y float64) Cursor {
	switch m.g.kind {
	case gesturePan:
		return CursorGrab
	case gestureMove:
		return CursorMove
	case gestureResize:
		return CursorResize
	case gestureRotate:
		return CursorRotate
	}
	switch m.scene.ActiveTool() {
	case scene.ToolText:
		return CursorText
	case scene.ToolShape, scene.ToolLine, scene.ToolPath:
		return CursorCrosshair
	}

	world := m.toWorld(PointerEvent{X: x, Y: y}.screen())
	zoom := m.zoom()
	for _, id := range m.scene.SelectedIDs() {
		e, ok := m.scene.Element(id)
		if !ok {
			continue
		}
		if element.HitTestRotationHandle(&e, world.X, world.Y, m.cfg.HandleSize/zoom, m.cfg.RotationOffset/zoom) {
			return CursorRotate
		}
		if _, ok := element.HitTestHandles(&e, world.X, world.Y, m.cfg.HandleSize/zoom); ok {
			return CursorResize
		}
	}
	if _, ok := m.hit(world); ok {
		return CursorMove
	}
	return CursorDefault
}
