// Package board provides the fyne widget that shows the whiteboard raster
// and turns desktop input into tool machine events.
package board

import (
	"image"
	"image/draw"
	"sync"

	"plm-whiteboard/internal/app"
	"plm-whiteboard/internal/tool"
	"plm-whiteboard/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
)

// Board is the drawing surface. It implements render.Scheduler: frame
// requests are queued and run when fyne regenerates the raster.
type Board struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	mu     sync.Mutex // guards frames and out
	frames []func()
	out    *image.RGBA

	mods   tool.Modifiers
	button tool.Button
	down   bool
	cursor desktop.Cursor

	// OnPointer is called after pointer motion with the world position.
	OnPointer func(x, y float64)
}

var (
	_ desktop.Mouseable   = (*Board)(nil)
	_ desktop.Hoverable   = (*Board)(nil)
	_ desktop.Keyable     = (*Board)(nil)
	_ desktop.Cursorable  = (*Board)(nil)
	_ fyne.Draggable      = (*Board)(nil)
	_ fyne.Scrollable     = (*Board)(nil)
	_ fyne.DoubleTappable = (*Board)(nil)
	_ fyne.Shortcutable   = (*Board)(nil)
)

// New creates a board. Attach a state before showing it.
func New() *Board {
	b := &Board{cursor: desktop.DefaultCursor}
	b.raster = fynecanvas.NewRaster(b.generate)
	b.ExtendBaseWidget(b)
	return b
}

// Attach connects the board to the state whose pipeline it displays.
func (b *Board) Attach(state *app.State) {
	b.state = state
	state.Pipeline.MarkDirty()
}

// RequestFrame queues frame and asks fyne to regenerate the raster.
func (b *Board) RequestFrame(frame func()) {
	b.mu.Lock()
	b.frames = append(b.frames, frame)
	b.mu.Unlock()
	b.raster.Refresh()
}

// Pending returns the number of queued frames.
func (b *Board) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// generate runs queued frames at the raster's pixel size and returns a copy
// of the pipeline image.
func (b *Board) generate(w, h int) image.Image {
	if b.state == nil || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	size := b.Size()
	dpr := 1.0
	if size.Width > 0 {
		dpr = float64(w) / float64(size.Width)
	}

	b.mu.Lock()
	frames := b.frames
	b.frames = nil
	b.mu.Unlock()

	p := b.state.Pipeline
	p.Resize(int(size.Width+0.5), int(size.Height+0.5), dpr)
	for _, f := range frames {
		f()
	}
	// A resize marks the pipeline dirty after the queue was taken.
	p.Frame()

	b.mu.Lock()
	defer b.mu.Unlock()
	p.WithImage(func(src *image.RGBA) {
		if b.out == nil || b.out.Bounds() != src.Bounds() {
			b.out = image.NewRGBA(src.Bounds())
		}
		draw.Draw(b.out, b.out.Bounds(), src, image.Point{}, draw.Src)
	})
	return b.out
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}

func (b *Board) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

func (b *Board) machine() *tool.Machine {
	if b.state == nil {
		return nil
	}
	return b.state.Tools
}

func (b *Board) pointer(pos fyne.Position) tool.PointerEvent {
	return tool.PointerEvent{X: float64(pos.X), Y: float64(pos.Y), Button: b.button, Mods: b.mods}
}

func (b *Board) report(pos fyne.Position) {
	if b.OnPointer == nil || b.state == nil {
		return
	}
	w := b.state.Store.Viewport().ScreenToWorld(geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
	b.OnPointer(w.X, w.Y)
}

func (b *Board) MouseDown(ev *desktop.MouseEvent) {
	m := b.machine()
	if m == nil {
		return
	}
	if a := fyne.CurrentApp(); a != nil {
		if c := a.Driver().CanvasForObject(b); c != nil {
			c.Focus(b)
		}
	}
	b.mods = Modifiers(ev.Modifier)
	b.button = Button(ev.Button)
	b.down = true
	m.PointerDown(b.pointer(ev.Position))
}

func (b *Board) MouseUp(ev *desktop.MouseEvent) {
	m := b.machine()
	if m == nil || !b.down {
		return
	}
	b.mods = Modifiers(ev.Modifier)
	b.down = false
	m.PointerUp(b.pointer(ev.Position))
	b.updateCursor(ev.Position)
}

func (b *Board) MouseIn(ev *desktop.MouseEvent) {
	b.updateCursor(ev.Position)
}

func (b *Board) MouseMoved(ev *desktop.MouseEvent) {
	m := b.machine()
	if m == nil {
		return
	}
	b.mods = Modifiers(ev.Modifier)
	if b.down {
		m.PointerMove(b.pointer(ev.Position))
	}
	b.updateCursor(ev.Position)
	b.report(ev.Position)
}

func (b *Board) MouseOut() {
	b.cursor = desktop.DefaultCursor
}

// Dragged is delivered instead of MouseMoved by some drivers while a button
// is held.
func (b *Board) Dragged(ev *fyne.DragEvent) {
	if m := b.machine(); m != nil && b.down {
		m.PointerMove(b.pointer(ev.Position))
		b.report(ev.Position)
	}
}

func (b *Board) DragEnd() {}

func (b *Board) Scrolled(ev *fyne.ScrollEvent) {
	m := b.machine()
	if m == nil {
		return
	}
	m.Scroll(tool.ScrollEvent{
		X:      float64(ev.Position.X),
		Y:      float64(ev.Position.Y),
		DeltaX: float64(ev.Scrolled.DX),
		DeltaY: float64(ev.Scrolled.DY),
		Mods:   b.mods,
	})
}

func (b *Board) DoubleTapped(ev *fyne.PointEvent) {
	if m := b.machine(); m != nil {
		m.DoubleClick(tool.PointerEvent{X: float64(ev.Position.X), Y: float64(ev.Position.Y), Mods: b.mods})
	}
}

func (b *Board) FocusGained()     {}
func (b *Board) FocusLost()       { b.mods = tool.Modifiers{} }
func (b *Board) TypedRune(r rune) {}

func (b *Board) TypedKey(ev *fyne.KeyEvent) {
	if m := b.machine(); m != nil {
		m.KeyDown(tool.KeyEvent{Key: tool.Key(ev.Name), Mods: b.mods})
	}
}

// KeyDown and KeyUp track modifier state for pointer and scroll events,
// which do not always carry it.
func (b *Board) KeyDown(ev *fyne.KeyEvent) { b.setModifier(ev.Name, true) }
func (b *Board) KeyUp(ev *fyne.KeyEvent)   { b.setModifier(ev.Name, false) }

func (b *Board) setModifier(name fyne.KeyName, on bool) {
	switch name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		b.mods.Shift = on
	case desktop.KeyControlLeft, desktop.KeyControlRight, desktop.KeySuperLeft, desktop.KeySuperRight:
		b.mods.Ctrl = on
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		b.mods.Alt = on
	}
}

// TypedShortcut receives key presses made with Ctrl, Alt or Super held.
func (b *Board) TypedShortcut(s fyne.Shortcut) {
	m := b.machine()
	if m == nil {
		return
	}
	ev, ok := ShortcutKey(s)
	if !ok {
		log.WithField("shortcut", s.ShortcutName()).Debug("Board: unhandled shortcut")
		return
	}
	m.KeyDown(ev)
}

func (b *Board) Cursor() desktop.Cursor { return b.cursor }

func (b *Board) updateCursor(pos fyne.Position) {
	if m := b.machine(); m != nil {
		b.cursor = DesktopCursor(m.CursorAt(float64(pos.X), float64(pos.Y)))
	}
}
