package tool

import (
	"math"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/pkg/geometry"

	log "github.com/sirupsen/logrus"
)

// updateCreate refreshes the creation preview for the pointer at world.
func (m *Machine) updateCreate(world geometry.Point2D, shift bool) {
	if m.g.tool == scene.ToolPath {
		last := m.g.points[len(m.g.points)-1]
		if world.Distance(last) >= 1/m.zoom() {
			m.g.points = append(m.g.points, world)
		}
	}
	if !m.g.dragging {
		return
	}
	if e, ok := m.draft(world, shift); ok {
		m.overlay.SetPreview(&e)
	}
}

// draft builds the element the gesture would commit with the pointer at
// world.
func (m *Machine) draft(world geometry.Point2D, shift bool) (element.Element, bool) {
	start := m.g.startWorld
	switch m.g.tool {
	case scene.ToolShape:
		return element.NewShape(m.scene.ShapeVariant(), shapeBox(start, m.snap(world), shift)), true
	case scene.ToolLine:
		end := m.snap(world)
		if shift {
			end = constrainAngle(start, end)
		}
		return element.NewLine(start.X, start.Y, end.X, end.Y), true
	case scene.ToolPath:
		return element.NewPath(m.g.points), true
	}
	return element.Element{}, false
}

// shapeBox spans start and end. With square, the shorter side grows to the
// longer one in the drag direction.
func shapeBox(start, end geometry.Point2D, square bool) geometry.Rect {
	if !square {
		return geometry.RectFromPoints(start, end)
	}
	dx, dy := end.X-start.X, end.Y-start.Y
	side := math.Max(math.Abs(dx), math.Abs(dy))
	return geometry.RectFromPoints(start, geometry.Point2D{
		X: start.X + math.Copysign(side, dx),
		Y: start.Y + math.Copysign(side, dy),
	})
}

// constrainAngle snaps the segment start→end to a multiple of 45°.
func constrainAngle(start, end geometry.Point2D) geometry.Point2D {
	d := end.Sub(start)
	length := math.Hypot(d.X, d.Y)
	a := math.Round(math.Atan2(d.Y, d.X)/(math.Pi/4)) * (math.Pi / 4)
	return geometry.Point2D{X: start.X + length*math.Cos(a), Y: start.Y + length*math.Sin(a)}
}

// finishCreate commits the drafted element. A press without a drag creates
// a default-sized shape or line at the press point.
func (m *Machine) finishCreate(world geometry.Point2D, shift bool) {
	start := m.g.startWorld
	var e element.Element
	switch {
	case m.g.dragging:
		var ok bool
		if e, ok = m.draft(world, shift); !ok {
			return
		}
	case m.g.tool == scene.ToolShape:
		size := m.cfg.DefaultSize
		e = element.NewShape(m.scene.ShapeVariant(), geometry.Rect{X: start.X, Y: start.Y, Width: size.Width, Height: size.Height})
	case m.g.tool == scene.ToolLine:
		e = element.NewLine(start.X, start.Y, start.X+m.cfg.DefaultSize.Width, start.Y)
	case m.g.tool == scene.ToolPath:
		e = element.NewPath(m.g.points)
	default:
		return
	}
	m.commit(e)
}

// createText drops an empty text element at p and starts editing it.
func (m *Machine) createText(p geometry.Point2D) {
	e := element.NewText(p.X, p.Y, "")
	if !m.commit(e) {
		return
	}
	m.warn(m.scene.SetEditingElementID(e.ID))
}

// commit adds e, selects it and returns to the select tool unless the
// machine is configured to stay in the creation tool.
func (m *Machine) commit(e element.Element) bool {
	if err := m.scene.AddElement(e); err != nil {
		m.warn(err)
		return false
	}
	m.warn(m.scene.SelectElement(e.ID, false))
	log.WithFields(log.Fields{"id": e.ID, "type": e.Kind}).Debug("Tool: element created")
	if !m.cfg.StayInTool {
		m.scene.SetActiveTool(scene.ToolSelect)
	}
	return true
}
