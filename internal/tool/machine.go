package tool

import (
	"math"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/pkg/geometry"

	log "github.com/sirupsen/logrus"
)

// Config tunes the machine. Sizes marked screen are divided by zoom.
type Config struct {
	HandleSize     float64 // screen
	RotationOffset float64 // screen
	GuideThreshold float64 // world
	DragThreshold  float64 // screen, before a press becomes a drag
	RotationSnap   float64 // radians, used with Shift
	ScrollStep     float64 // scroll delta per zoom step
	DefaultSize    geometry.Rect
	StayInTool     bool // keep the creation tool active after committing
}

// DefaultConfig returns the standard handle sizes and thresholds.
func DefaultConfig() Config {
	return Config{
		HandleSize:     geometry.DefaultHandleSize,
		RotationOffset: geometry.RotationHandleOffset,
		GuideThreshold: geometry.DefaultGuideThreshold,
		DragThreshold:  3,
		RotationSnap:   math.Pi / 12,
		ScrollStep:     10,
		DefaultSize:    geometry.Rect{Width: 120, Height: 80},
	}
}

type gestureKind int

const (
	gestureNone gestureKind = iota
	gesturePan
	gestureRotate
	gestureResize
	gestureMove
	gestureLasso
	gestureCreate
)

func (k gestureKind) String() string {
	return [...]string{"none", "pan", "rotate", "resize", "move", "lasso", "create"}[k]
}

// gesture is the state of one press-drag-release sequence.
type gesture struct {
	kind        gestureKind
	startScreen geometry.Point2D
	lastScreen  geometry.Point2D
	startWorld  geometry.Point2D
	dragging    bool
	additive    bool

	// rotate, resize
	id        string
	handle    geometry.Handle
	original  element.Element
	originals []element.Element // target and descendants, for Cancel

	// move
	ids      []string
	origBox  geometry.Rect
	applied  geometry.Point2D
	exclude  map[string]bool
	wasAlone bool

	// create
	tool   scene.Tool
	points []geometry.Point2D
}

// Machine is the pointer-driven tool state machine. It is not safe for
// concurrent use; feed it events from one goroutine.
type Machine struct {
	scene   Scene
	overlay Overlay
	cfg     Config
	g       gesture
}

// NewMachine creates a machine editing sc and drawing transient state on
// overlay.
func NewMachine(sc Scene, overlay Overlay, cfg Config) *Machine {
	if cfg.HandleSize <= 0 {
		cfg.HandleSize = geometry.DefaultHandleSize
	}
	if cfg.RotationOffset <= 0 {
		cfg.RotationOffset = geometry.RotationHandleOffset
	}
	if cfg.GuideThreshold < 0 {
		cfg.GuideThreshold = geometry.DefaultGuideThreshold
	}
	if cfg.ScrollStep <= 0 {
		cfg.ScrollStep = 10
	}
	if cfg.DefaultSize.Width <= 0 || cfg.DefaultSize.Height <= 0 {
		cfg.DefaultSize = DefaultConfig().DefaultSize
	}
	return &Machine{scene: sc, overlay: overlay, cfg: cfg}
}

// Config returns the machine's configuration.
func (m *Machine) Config() Config { return m.cfg }

// SetStayInTool changes whether creation tools stay active after a commit.
func (m *Machine) SetStayInTool(on bool) { m.cfg.StayInTool = on }

// Busy reports whether a gesture is in progress.
func (m *Machine) Busy() bool { return m.g.kind != gestureNone }

func (m *Machine) zoom() float64 {
	z := m.scene.Viewport().Zoom
	if z <= 0 {
		return 1
	}
	return z
}

func (m *Machine) toWorld(p geometry.Point2D) geometry.Point2D {
	return m.scene.Viewport().ScreenToWorld(p)
}

func (m *Machine) snap(p geometry.Point2D) geometry.Point2D {
	if !m.scene.SnapToGrid() {
		return p
	}
	return geometry.SnapToGrid(p, m.scene.Grid().Size)
}

// PointerDown starts a gesture according to the active tool and what lies
// under the pointer.
func (m *Machine) PointerDown(ev PointerEvent) {
	if m.g.kind != gestureNone {
		m.Cancel()
	}
	screen := ev.screen()
	m.g = gesture{
		startScreen: screen,
		lastScreen:  screen,
		startWorld:  m.toWorld(screen),
		additive:    ev.Mods.Shift,
	}

	switch ev.Button {
	case ButtonMiddle:
		m.g.kind = gesturePan
		return
	case ButtonSecondary:
		m.g = gesture{}
		return
	}

	switch t := m.scene.ActiveTool(); t {
	case scene.ToolSelect:
		m.beginSelect(ev)
	case scene.ToolText:
		m.createText(m.snap(m.g.startWorld))
		m.g = gesture{}
	default:
		m.g.kind = gestureCreate
		m.g.tool = t
		m.g.startWorld = m.snap(m.g.startWorld)
		m.g.points = []geometry.Point2D{m.g.startWorld}
	}
	if m.g.kind != gestureNone {
		log.WithField("gesture", m.g.kind).Debug("Tool: gesture started")
	}
}

// PointerMove advances the current gesture.
func (m *Machine) PointerMove(ev PointerEvent) {
	if m.g.kind == gestureNone {
		return
	}
	screen := ev.screen()
	last := m.g.lastScreen
	m.g.lastScreen = screen
	if !m.g.dragging && screen.Distance(m.g.startScreen) >= m.cfg.DragThreshold {
		m.g.dragging = true
	}
	world := m.toWorld(screen)

	switch m.g.kind {
	case gesturePan:
		m.scene.PanBy(screen.X-last.X, screen.Y-last.Y)
	case gestureRotate:
		m.rotateTo(world, ev.Mods.Shift)
	case gestureResize:
		m.resizeTo(world, ev.Mods.Shift || ev.Mods.Alt)
	case gestureMove:
		if m.g.dragging {
			m.moveTo(world)
		}
	case gestureLasso:
		r := geometry.RectFromPoints(m.g.startWorld, world)
		m.overlay.SetLasso(&r)
	case gestureCreate:
		m.updateCreate(world, ev.Mods.Shift)
	}
}

// PointerUp finishes the current gesture.
func (m *Machine) PointerUp(ev PointerEvent) {
	if m.g.kind == gestureNone {
		return
	}
	world := m.toWorld(ev.screen())
	switch m.g.kind {
	case gestureLasso:
		m.finishLasso(world)
	case gestureMove:
		m.finishMove()
	case gestureCreate:
		m.finishCreate(world, ev.Mods.Shift)
	}
	m.overlay.ClearOverlay()
	log.WithField("gesture", m.g.kind).Debug("Tool: gesture finished")
	m.g = gesture{}
}

// Cancel aborts the current gesture and restores what it changed.
func (m *Machine) Cancel() {
	switch m.g.kind {
	case gestureMove:
		if m.g.applied != (geometry.Point2D{}) {
			m.warn(m.scene.MoveElements(m.g.ids, -m.g.applied.X, -m.g.applied.Y))
		}
	case gestureRotate, gestureResize:
		m.restore()
	}
	m.overlay.ClearOverlay()
	m.g = gesture{}
}

// DoubleClick starts inline editing of the shape or text under the pointer.
// Inside a group the innermost member under the pointer is edited.
func (m *Machine) DoubleClick(ev PointerEvent) {
	if m.g.kind != gestureNone {
		m.Cancel()
	}
	world := m.toWorld(ev.screen())
	id, ok := m.hit(world)
	if !ok {
		return
	}
	e, _ := m.scene.Element(id)
	if e.Kind != element.KindShape && e.Kind != element.KindText {
		return
	}
	if e.Kind == element.KindShape && e.Shape.Text == nil {
		m.warn(m.scene.UpdateElement(id, func(e *element.Element) {
			t := element.DefaultTextContent("")
			t.Align, t.VerticalAlign = "center", "middle"
			e.Shape.Text = &t
		}))
	}
	m.warn(m.scene.SelectElement(id, false))
	m.warn(m.scene.SetEditingElementID(id))
}

// Scroll zooms about the pointer; with Shift it pans instead.
func (m *Machine) Scroll(ev ScrollEvent) {
	if ev.Mods.Shift {
		m.scene.PanBy(ev.DeltaY+ev.DeltaX, 0)
		return
	}
	if ev.DeltaY == 0 {
		return
	}
	factor := math.Pow(scene.ZoomStep, ev.DeltaY/m.cfg.ScrollStep)
	m.scene.ZoomAt(geometry.Point2D{X: ev.X, Y: ev.Y}, factor)
}

// restore puts the rotate or resize target and its members back.
func (m *Machine) restore() {
	for _, orig := range m.g.originals {
		orig := orig
		m.warn(m.scene.UpdateElement(orig.ID, func(e *element.Element) { *e = orig.Clone() }))
	}
}

func (m *Machine) warn(err error) {
	if err != nil {
		log.WithField("gesture", m.g.kind).Warnf("Tool: %v", err)
	}
}
