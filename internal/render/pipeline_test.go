package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/pkg/colorutil"
	"plm-whiteboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type symbolMap map[string]Symbol

func (m symbolMap) Symbol(id string) (Symbol, bool) {
	s, ok := m[id]
	return s, ok
}

func newStore(t *testing.T, els ...element.Element) *scene.Store {
	t.Helper()
	s := scene.NewStore()
	s.SetGrid(scene.Grid{Enabled: false, Size: 20, Style: scene.GridDots})
	for _, e := range els {
		require.NoError(t, s.AddElement(e))
	}
	return s
}

func rect(x, y, w, h float64) element.Element {
	return element.NewShape("rectangle", geometry.NewRect(x, y, w, h))
}

func TestGridSkippedWhenTooDense(t *testing.T) {
	rec := NewRecorder(499, 399)
	g := scene.Grid{Enabled: true, Size: 2, Style: scene.GridDots}

	plan := DrawGrid(rec, scene.Viewport{Zoom: 1}, g, 499, 399, colorutil.Grid)

	assert.Equal(t, 50000, plan.Count)
	assert.True(t, plan.Skip)
	assert.Zero(t, rec.Fills)
	assert.Zero(t, rec.Shapes["ellipse"])
}

func TestGridThinning(t *testing.T) {
	tests := []struct {
		name   string
		zoom   float64
		width  float64
		style  scene.GridStyle
		step   float64
		skip   bool
		points int
	}{
		{"sparse", 1, 1000, scene.GridDots, 20, false, 51 * 26},
		{"double", 1, 2000, scene.GridDots, 40, false, 101 * 51},
		{"quadruple dots", 0.5, 2000, scene.GridDots, 80, false, 201 * 101},
		{"double lines", 0.5, 2000, scene.GridLines, 40, false, 201 * 101},
		{"skip", 0.125, 2000, scene.GridDots, 20, true, 801 * 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := scene.Grid{Enabled: true, Size: 20, Style: tt.style}
			plan := PlanGrid(scene.Viewport{Zoom: tt.zoom}, g, tt.width, tt.width/2)
			assert.Equal(t, tt.points, plan.Count)
			assert.Equal(t, tt.step, plan.Step)
			assert.Equal(t, tt.skip, plan.Skip)
		})
	}
}

func TestGridDotsAreOneFill(t *testing.T) {
	rec := NewRecorder(1000, 500)
	g := scene.Grid{Enabled: true, Size: 20, Style: scene.GridDots}

	DrawGrid(rec, scene.Viewport{Zoom: 1}, g, 1000, 500, colorutil.Grid)

	assert.Equal(t, 1, rec.Fills)
	assert.Equal(t, 51*26, rec.Shapes["ellipse"])
}

func TestGridLinesAreTwoStrokes(t *testing.T) {
	rec := NewRecorder(1000, 500)
	g := scene.Grid{Enabled: true, Size: 20, Style: scene.GridLines}

	DrawGrid(rec, scene.Viewport{Zoom: 1}, g, 1000, 500, colorutil.Grid)

	assert.Equal(t, 2, rec.Strokes)
	assert.Zero(t, rec.Fills)
	assert.Equal(t, 51+26, rec.Shapes["move"])
}

func TestGridDisabled(t *testing.T) {
	rec := NewRecorder(100, 100)
	plan := DrawGrid(rec, scene.Viewport{Zoom: 1}, scene.Grid{Size: 20}, 100, 100, colorutil.Grid)
	assert.True(t, plan.Skip)
	assert.Zero(t, rec.DrawCalls())
}

func TestMarkDirtyCoalesces(t *testing.T) {
	sched := &ManualScheduler{}
	p := NewPipeline(newStore(t, rect(0, 0, 10, 10)), sched, DefaultOptions())

	for i := 0; i < 100; i++ {
		p.MarkDirty()
	}
	assert.Equal(t, 1, sched.Requests())
	assert.Equal(t, 1, sched.Run())
	assert.Equal(t, 1, p.Stats().Frames)
	assert.False(t, p.Dirty())

	// Nothing changed: a stray frame paints nothing.
	assert.False(t, p.Frame())
	assert.Equal(t, 1, p.Stats().Frames)

	p.MarkDirty()
	assert.Equal(t, 2, sched.Requests())
	sched.Run()
	assert.Equal(t, 2, p.Stats().Frames)
}

func TestMarkDirtyFromManyGoroutines(t *testing.T) {
	sched := &ManualScheduler{}
	p := NewPipeline(newStore(t), sched, DefaultOptions())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p.MarkDirty()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sched.Requests())
	sched.Run()
	assert.Equal(t, 1, p.Stats().Frames)
}

func TestStoreChangesDriveFrames(t *testing.T) {
	sched := &ManualScheduler{}
	store := newStore(t)
	p := NewPipeline(store, sched, DefaultOptions())
	cancel := store.Subscribe(func(scene.Change) { p.MarkDirty() })
	defer cancel()

	require.NoError(t, store.AddElement(rect(0, 0, 10, 10)))
	require.NoError(t, store.AddElement(rect(20, 0, 10, 10)))
	store.SelectAll()

	assert.Equal(t, 1, sched.Pending())
	sched.Run()
	assert.Equal(t, 2, p.Stats().ElementsDrawn)
}

func TestRenderSkipsHiddenAndMalformed(t *testing.T) {
	visible := rect(0, 0, 10, 10)
	hidden := rect(20, 0, 10, 10)
	hidden.Visible = false
	editing := element.NewText(40, 0, "edit me")
	store := newStore(t, visible, hidden, editing)
	require.NoError(t, store.SetEditingElementID(editing.ID))

	sn := store.Snapshot()
	broken := rect(60, 0, 10, 10)
	broken.Height = math.Inf(1)
	sn.ElementsByID[broken.ID] = broken
	sn.PaintOrder = append(sn.PaintOrder, broken.ID, "ghost")

	p := NewPipeline(store, nil, DefaultOptions())
	rec := NewRecorder(800, 600)
	st := p.RenderTo(rec, sn, Overlay{}, 800, 600, 1)

	assert.Equal(t, 1, st.ElementsDrawn)
	assert.Equal(t, 2, st.ElementsSkipped)
	assert.Zero(t, rec.Texts, "the element being edited is left to the editor")
	assert.Zero(t, rec.Depth())
}

func TestInvisibleGroupHidesMembers(t *testing.T) {
	a, b := rect(0, 0, 10, 10), rect(20, 0, 10, 10)
	store := newStore(t, a, b)
	gid, err := store.Group([]string{a.ID, b.ID})
	require.NoError(t, err)
	require.NoError(t, store.UpdateElement(gid, func(e *element.Element) { e.Visible = false }))
	store.ClearSelection()

	p := NewPipeline(store, nil, DefaultOptions())
	st := p.RenderTo(NewRecorder(100, 100), store.Snapshot(), Overlay{}, 100, 100, 1)
	assert.Zero(t, st.ElementsDrawn)
}

func TestInvisibleGroupMembersAreNotHit(t *testing.T) {
	a, b := rect(0, 0, 100, 100), rect(200, 0, 50, 50)
	store := newStore(t, a, b)
	gid, err := store.Group([]string{a.ID, b.ID})
	require.NoError(t, err)

	id, ok := HitTest(store, 50, 50)
	require.True(t, ok)
	assert.Equal(t, a.ID, id)

	require.NoError(t, store.UpdateElement(gid, func(e *element.Element) { e.Visible = false }))
	_, ok = HitTest(store, 50, 50)
	assert.False(t, ok, "store")
	_, ok = HitTest(store.Snapshot(), 220, 20)
	assert.False(t, ok, "snapshot")
}

func TestNestedInvisibleGroupHidesMembers(t *testing.T) {
	a, b, c := rect(0, 0, 10, 10), rect(20, 0, 10, 10), rect(40, 0, 10, 10)
	store := newStore(t, a, b, c)
	inner, err := store.Group([]string{a.ID, b.ID})
	require.NoError(t, err)
	outer, err := store.Group([]string{inner, c.ID})
	require.NoError(t, err)
	require.NoError(t, store.UpdateElement(outer, func(e *element.Element) { e.Visible = false }))
	store.ClearSelection()

	p := NewPipeline(store, nil, DefaultOptions())
	st := p.RenderTo(NewRecorder(100, 100), store.Snapshot(), Overlay{}, 100, 100, 1)
	assert.Zero(t, st.ElementsDrawn)
	_, ok := p.HitTest(store, 5, 5)
	assert.False(t, ok)
}

func TestGroupDoesNotCoverElementsPaintedAboveMembers(t *testing.T) {
	a, c, b := rect(0, 0, 100, 100), rect(50, 50, 100, 100), rect(200, 0, 50, 50)
	store := newStore(t, a, c, b)
	gid, err := store.Group([]string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID, b.ID, gid}, store.Order())

	id, ok := HitTest(store, 120, 80)
	require.True(t, ok)
	assert.Equal(t, c.ID, id)

	// Inside the group's box but outside every member.
	_, ok = HitTest(store, 175, 25)
	assert.False(t, ok)

	id, ok = HitTest(store, 10, 10)
	require.True(t, ok)
	assert.Equal(t, gid, store.TopLevel(id))
}

func TestUnknownVariantDrawsRectangle(t *testing.T) {
	e := element.NewShape("no-such-symbol", geometry.NewRect(0, 0, 50, 50))
	rec := NewRecorder(100, 100)

	(&Painter{}).DrawElement(rec, &e)

	assert.Equal(t, 1, rec.Shapes["rect"])
	assert.Equal(t, 1, rec.Fills)
	assert.Equal(t, 1, rec.Strokes)
}

func TestSymbolVariantUsesCatalog(t *testing.T) {
	var got geometry.Rect
	syms := symbolMap{"badge": {
		ID: "badge",
		Render: func(s Surface, x, y, w, h float64, stroke, fill color.Color) {
			got = geometry.NewRect(x, y, w, h)
			s.Ellipse(x+w/2, y+h/2, w/2, h/2)
			s.Fill()
		},
	}}
	e := element.NewShape("badge", geometry.NewRect(5, 6, 70, 80))
	rec := NewRecorder(100, 100)

	(&Painter{Symbols: syms}).DrawElement(rec, &e)

	assert.Equal(t, e.Box(), got)
	assert.Equal(t, 1, rec.Shapes["ellipse"])
	assert.Zero(t, rec.Shapes["rect"])
}

func TestRendererPanicIsContained(t *testing.T) {
	syms := symbolMap{"broken": {
		ID: "broken",
		Render: func(s Surface, x, y, w, h float64, stroke, fill color.Color) {
			s.Push()
			panic("boom")
		},
	}}
	bad := element.NewShape("broken", geometry.NewRect(0, 0, 10, 10))
	store := newStore(t, bad, rect(20, 0, 10, 10))

	opts := DefaultOptions()
	opts.Symbols = syms
	p := NewPipeline(store, nil, opts)
	rec := NewRecorder(100, 100)
	st := p.RenderTo(rec, store.Snapshot(), Overlay{}, 100, 100, 1)

	assert.Equal(t, 1, st.Failures)
	assert.Equal(t, 1, st.ElementsDrawn)
	assert.Equal(t, 1, rec.Depth(), "only the symbol's own unbalanced push is left")
}

func TestRotationAndOpacity(t *testing.T) {
	e := rect(0, 0, 10, 10)
	e.Rotation = 0.5
	e.Opacity = 0.25
	rec := &alphaRecorder{Recorder: NewRecorder(10, 10)}

	(&Painter{}).DrawElement(rec, &e)

	assert.Contains(t, rec.Ops, "rotate")
	assert.Equal(t, 0.25, rec.fillAlpha)
	assert.Equal(t, 1.0, rec.Alpha(), "state is restored after the element")
}

type alphaRecorder struct {
	*Recorder
	fillAlpha float64
}

func (r *alphaRecorder) FillPreserve() {
	r.fillAlpha = r.Alpha()
	r.Recorder.FillPreserve()
}

func TestLineWithArrow(t *testing.T) {
	e := element.NewLine(0, 0, 100, 0)
	e.Line.ArrowEnd = true
	rec := NewRecorder(100, 100)

	(&Painter{}).DrawElement(rec, &e)

	assert.Equal(t, 1, rec.Strokes)
	assert.Equal(t, 1, rec.Fills)
	assert.NotContains(t, rec.Ops, "rotate")
}

func TestImagePlaceholder(t *testing.T) {
	e := element.NewImage("/no/such/file.png", geometry.NewRect(0, 0, 40, 30))
	rec := NewRecorder(100, 100)
	cache := NewImageCache()

	(&Painter{Images: cache}).DrawElement(rec, &e)

	assert.Zero(t, rec.Images)
	assert.Equal(t, 1, rec.Shapes["rect"])
	assert.Equal(t, 1, cache.Len(), "the failure is cached")
}

func TestImageFromDataURI(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	img, err := LoadImage(uri)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())

	e := element.NewImage(uri, geometry.NewRect(0, 0, 40, 30))
	rec := NewRecorder(100, 100)
	(&Painter{Images: NewImageCache()}).DrawElement(rec, &e)
	assert.Equal(t, 1, rec.Images)
}

func TestSupportedFormats(t *testing.T) {
	assert.True(t, IsSupportedFormat("photo.JPG"))
	assert.True(t, IsSupportedFormat("scan.webp"))
	assert.False(t, IsSupportedFormat("notes.txt"))
}

func TestSelectionHandles(t *testing.T) {
	a, b := rect(0, 0, 10, 10), rect(40, 0, 10, 10)
	store := newStore(t, a, b)
	require.NoError(t, store.SelectElement(a.ID, false))

	rec := NewRecorder(100, 100)
	DrawSelection(rec, store.Snapshot(), DefaultSelectionStyle())
	// Outline plus eight handles.
	assert.Equal(t, 9, rec.Shapes["rect"])
	assert.Equal(t, 1, rec.Shapes["ellipse"])

	store.SelectAll()
	rec.Reset()
	DrawSelection(rec, store.Snapshot(), DefaultSelectionStyle())
	// Two sets of handles and the combined box.
	assert.Equal(t, 19, rec.Shapes["rect"])
}

func TestGuidesDrawnOnlyWhenEnabled(t *testing.T) {
	store := newStore(t)
	p := NewPipeline(store, nil, DefaultOptions())
	overlay := Overlay{Guides: []geometry.Guide{{Orientation: geometry.Vertical, Position: 10, From: 0, To: 100}}}

	rec := NewRecorder(100, 100)
	p.RenderTo(rec, store.Snapshot(), overlay, 100, 100, 1)
	assert.Equal(t, 1, rec.Strokes)

	store.SetShowAlignmentGuides(false)
	rec.Reset()
	p.RenderTo(rec, store.Snapshot(), overlay, 100, 100, 1)
	assert.Zero(t, rec.Strokes)
}

func TestHitTestTopmost(t *testing.T) {
	below, above := rect(0, 0, 100, 100), rect(50, 50, 100, 100)
	store := newStore(t, below, above)

	id, ok := HitTest(store, 75, 75)
	require.True(t, ok)
	assert.Equal(t, above.ID, id)

	id, ok = HitTest(store, 10, 10)
	require.True(t, ok)
	assert.Equal(t, below.ID, id)

	require.NoError(t, store.UpdateElement(above.ID, func(e *element.Element) { e.Visible = false }))
	id, _ = HitTest(store, 75, 75)
	assert.Equal(t, below.ID, id)

	_, ok = HitTest(store, 500, 500)
	assert.False(t, ok)
}

func TestOverlayMarksDirty(t *testing.T) {
	sched := &ManualScheduler{}
	p := NewPipeline(newStore(t), sched, DefaultOptions())
	sched.Run()
	p.Frame()

	r := geometry.NewRect(0, 0, 10, 10)
	p.SetLasso(&r)
	r.Width = 99
	assert.Equal(t, 10.0, p.Overlay().Lasso.Width, "the overlay keeps its own copy")
	assert.True(t, p.Dirty())
	sched.Run()

	p.ClearOverlay()
	assert.True(t, p.Dirty())
	sched.Run()

	p.ClearOverlay()
	assert.False(t, p.Dirty(), "clearing an empty overlay is free")
}

func TestResizeReallocatesOnlyOnChange(t *testing.T) {
	c := NewCanvas(nil)
	assert.True(t, c.Resize(100, 50, 2))
	w, h := c.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
	assert.False(t, c.Resize(100, 50, 2))
	assert.True(t, c.Resize(100, 50, 1))

	p := NewPipeline(newStore(t), nil, DefaultOptions())
	p.Resize(300, 200, 1)
	p.Resize(300, 200, 1)
	assert.Equal(t, 1, p.Stats().Reallocations)
}

func TestCanvasPaintsPixels(t *testing.T) {
	c := NewCanvas(nil)
	c.Resize(40, 40, 1)
	c.Clear(colorutil.White)
	c.SetFillColor(color.NRGBA{R: 255, A: 255})
	c.Rect(10, 10, 20, 20)
	c.Fill()

	assert.Equal(t, color.RGBA{R: 255, A: 255}, c.Image().RGBAAt(20, 20))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, c.Image().RGBAAt(2, 2))
}

func TestCanvasAppliesViewport(t *testing.T) {
	store := newStore(t, element.NewShape("rectangle", geometry.NewRect(0, 0, 10, 10)))
	store.SetViewport(scene.Viewport{PanX: 20, PanY: 20, Zoom: 2})
	p := NewPipeline(store, nil, DefaultOptions())
	p.Resize(60, 60, 1)
	p.Frame()

	// The shape's white fill covers screen (20,20)-(40,40) with a dark outline.
	img := p.Image()
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(30, 30))
	edge := img.RGBAAt(20, 30)
	assert.Less(t, int(edge.R), 200, "outline at the left edge")
}
