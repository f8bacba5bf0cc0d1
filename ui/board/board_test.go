package board

import (
	"image"
	"testing"

	"plm-whiteboard/internal/app"
	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/internal/tool"
	"plm-whiteboard/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoard(t *testing.T) (*Board, *app.State) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	b := New()
	st := app.NewState(app.DefaultSettings(), b)
	t.Cleanup(st.Close)
	b.Attach(st)
	b.Resize(fyne.NewSize(100, 50))
	return b, st
}

func mouse(x, y float32, button desktop.MouseButton, mods fyne.KeyModifier) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     button,
		Modifier:   mods,
	}
}

func TestModifiers(t *testing.T) {
	assert.Equal(t, tool.Modifiers{Shift: true}, Modifiers(fyne.KeyModifierShift))
	assert.Equal(t, tool.Modifiers{Ctrl: true}, Modifiers(fyne.KeyModifierSuper))
	assert.Equal(t, tool.Modifiers{Ctrl: true, Alt: true}, Modifiers(fyne.KeyModifierControl|fyne.KeyModifierAlt))
}

func TestButton(t *testing.T) {
	assert.Equal(t, tool.ButtonPrimary, Button(desktop.MouseButtonPrimary))
	assert.Equal(t, tool.ButtonMiddle, Button(desktop.MouseButtonTertiary))
	assert.Equal(t, tool.ButtonSecondary, Button(desktop.MouseButtonSecondary))
}

func TestShortcutKey(t *testing.T) {
	ev, ok := ShortcutKey(&desktop.CustomShortcut{KeyName: fyne.KeyG, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift})
	require.True(t, ok)
	assert.Equal(t, tool.KeyG, ev.Key)
	assert.Equal(t, tool.Modifiers{Ctrl: true, Shift: true}, ev.Mods)

	ev, ok = ShortcutKey(&fyne.ShortcutSelectAll{})
	require.True(t, ok)
	assert.Equal(t, tool.KeyEvent{Key: tool.KeyA, Mods: tool.Modifiers{Ctrl: true}}, ev)

	_, ok = ShortcutKey(&fyne.ShortcutCopy{})
	assert.False(t, ok)
}

func TestFyneKeyNamesMatchToolKeys(t *testing.T) {
	assert.Equal(t, tool.KeyDelete, tool.Key(fyne.KeyDelete))
	assert.Equal(t, tool.KeyBackspace, tool.Key(fyne.KeyBackspace))
	assert.Equal(t, tool.KeyEscape, tool.Key(fyne.KeyEscape))
	assert.Equal(t, tool.KeyLeft, tool.Key(fyne.KeyLeft))
	assert.Equal(t, tool.KeyBracketLeft, tool.Key(fyne.KeyLeftBracket))
	assert.Equal(t, tool.KeyBracketRight, tool.Key(fyne.KeyRightBracket))
	assert.Equal(t, tool.KeyV, tool.Key(fyne.KeyV))
}

func TestDesktopCursor(t *testing.T) {
	assert.Equal(t, desktop.DefaultCursor, DesktopCursor(tool.CursorDefault))
	assert.Equal(t, desktop.TextCursor, DesktopCursor(tool.CursorText))
	assert.Equal(t, desktop.CrosshairCursor, DesktopCursor(tool.CursorCrosshair))
}

func TestBoardDrivesMachine(t *testing.T) {
	b, st := newBoard(t)
	require.NoError(t, st.Store.AddElement(element.NewShape("rectangle", geometry.NewRect(0, 0, 40, 40))))
	id := st.Store.Order()[0]

	b.MouseDown(mouse(20, 20, desktop.MouseButtonPrimary, 0))
	b.MouseMoved(mouse(30, 25, desktop.MouseButtonPrimary, 0))
	b.MouseUp(mouse(30, 25, desktop.MouseButtonPrimary, 0))

	e, ok := st.Store.Element(id)
	require.True(t, ok)
	assert.Equal(t, geometry.NewRect(10, 5, 40, 40), e.Box())
	assert.Equal(t, []string{id}, st.Store.SelectedIDs())

	b.TypedKey(&fyne.KeyEvent{Name: fyne.KeyDelete})
	assert.Zero(t, st.Store.Len())
}

func TestBoardTracksShiftForScroll(t *testing.T) {
	b, st := newBoard(t)

	b.KeyDown(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})
	b.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)}, Scrolled: fyne.Delta{DY: -10}})
	b.KeyUp(&fyne.KeyEvent{Name: desktop.KeyShiftLeft})

	v := st.Store.Viewport()
	assert.Equal(t, 1.0, v.Zoom, "shift scroll pans")
	assert.NotZero(t, v.PanX+v.PanY)
}

func TestBoardMiddleDragPans(t *testing.T) {
	b, st := newBoard(t)

	b.MouseDown(mouse(10, 10, desktop.MouseButtonTertiary, 0))
	b.MouseMoved(mouse(25, 40, desktop.MouseButtonTertiary, 0))
	b.MouseUp(mouse(25, 40, desktop.MouseButtonTertiary, 0))

	v := st.Store.Viewport()
	assert.Equal(t, scene.Viewport{PanX: 15, PanY: 30, Zoom: 1}, v)
}

func TestGenerateRunsQueuedFrames(t *testing.T) {
	b, st := newBoard(t)
	require.NoError(t, st.Store.AddElement(element.NewShape("rectangle", geometry.NewRect(0, 0, 40, 40))))
	assert.Positive(t, b.Pending())

	img := b.generate(200, 100)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds(), "raster follows the pixel ratio")
	assert.Zero(t, b.Pending())
	assert.Positive(t, st.Pipeline.Stats().Frames)
}

func TestPointerReportsWorldPosition(t *testing.T) {
	b, st := newBoard(t)
	st.Store.SetViewport(scene.Viewport{PanX: 10, Zoom: 2})

	var x, y float64
	b.OnPointer = func(wx, wy float64) { x, y = wx, wy }
	b.MouseMoved(mouse(30, 20, 0, 0))

	assert.Equal(t, 10.0, x)
	assert.Equal(t, 10.0, y)
}
