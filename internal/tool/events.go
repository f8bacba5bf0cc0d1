// Package tool turns pointer, keyboard and scroll input into scene edits.
// Events carry screen coordinates; the machine converts them to world space
// with the scene's viewport.
package tool

import (
	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/render"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/pkg/geometry"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Modifiers holds the keyboard modifier state. Ctrl also stands for the
// platform's command key.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// PointerEvent is a pointer press, motion or release in screen coordinates.
type PointerEvent struct {
	X, Y   float64
	Button Button
	Mods   Modifiers
}

func (e PointerEvent) screen() geometry.Point2D {
	return geometry.Point2D{X: e.X, Y: e.Y}
}

// ScrollEvent is a wheel or trackpad scroll at a screen position. Positive
// DeltaY scrolls up.
type ScrollEvent struct {
	X, Y           float64
	DeltaX, DeltaY float64
	Mods           Modifiers
}

// Key names the keys the machine reacts to.
type Key string

const (
	KeyDelete       Key = "Delete"
	KeyBackspace    Key = "BackSpace"
	KeyEscape       Key = "Escape"
	KeyLeft         Key = "Left"
	KeyRight        Key = "Right"
	KeyUp           Key = "Up"
	KeyDown         Key = "Down"
	KeyA            Key = "A"
	KeyG            Key = "G"
	KeyL            Key = "L"
	KeyP            Key = "P"
	KeyR            Key = "R"
	KeyT            Key = "T"
	KeyV            Key = "V"
	KeyBracketLeft  Key = "["
	KeyBracketRight Key = "]"
)

// KeyEvent is a key press.
type KeyEvent struct {
	Key  Key
	Mods Modifiers
}

// Scene is the scene access the machine needs. *scene.Store satisfies it.
type Scene interface {
	render.SceneView

	Viewport() scene.Viewport
	Grid() scene.Grid
	SnapToGrid() bool
	ShowAlignmentGuides() bool
	ActiveTool() scene.Tool
	SetActiveTool(scene.Tool)
	ShapeVariant() string

	SelectedIDs() []string
	IsSelected(id string) bool
	TopLevel(id string) string
	TopLevelIDs() []string
	Descendants(id string) []string
	EditingID() string

	AddElement(e element.Element) error
	UpdateElement(id string, mutate func(*element.Element)) error
	MoveElements(ids []string, dx, dy float64) error
	ResizeElement(id string, box geometry.Rect) error
	DeleteElements(ids ...string) int

	SelectElement(id string, additive bool) error
	ToggleSelection(id string) error
	SelectElements(ids []string)
	AddToSelection(ids []string)
	SelectAll()
	ClearSelection()
	SetEditingElementID(id string) error

	PanBy(dx, dy float64)
	ZoomAt(screen geometry.Point2D, factor float64)

	Group(ids []string) (string, error)
	Ungroup(id string) ([]string, error)
	BringToFront(ids ...string) error
	SendToBack(ids ...string) error
	BringForward(ids ...string) error
	SendBackward(ids ...string) error
}

// Overlay receives the transient drawing state of a gesture.
// *render.Pipeline satisfies it.
type Overlay interface {
	SetPreview(e *element.Element)
	SetLasso(r *geometry.Rect)
	SetGuides(g []geometry.Guide)
	ClearOverlay()
}
