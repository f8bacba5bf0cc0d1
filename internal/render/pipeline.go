package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/pkg/colorutil"
	"plm-whiteboard/pkg/geometry"

	log "github.com/sirupsen/logrus"
)

// PreviewOpacity is applied to the element being created.
const PreviewOpacity = 0.5

// Source supplies the scene to paint.
type Source interface {
	Snapshot() *scene.Snapshot
}

// SceneView is the read access hit-testing needs. Both *scene.Store and
// *scene.Snapshot satisfy it.
type SceneView interface {
	Order() []string
	Element(id string) (element.Element, bool)
	ParentOf(id string) (string, bool)
}

// Options configures a Pipeline.
type Options struct {
	Background color.Color
	GridColor  color.Color
	Selection  SelectionStyle
	Symbols    SymbolLookup
	Images     *ImageCache
	Fonts      *FontCache
}

// DefaultOptions returns a white board with the default overlay style.
func DefaultOptions() Options {
	return Options{
		Background: colorutil.White,
		GridColor:  colorutil.Grid,
		Selection:  DefaultSelectionStyle(),
	}
}

// Stats describes the pipeline's work.
type Stats struct {
	Frames          int // frames painted
	Requests        int // frame requests passed to the scheduler
	ElementsDrawn   int // in the last frame
	ElementsSkipped int // invisible, malformed or missing, in the last frame
	Failures        int // renderer panics, in the last frame
	GridStep        float64
	GridSkipped     bool
	Reallocations   int
}

// Pipeline owns one raster canvas and one image cache and repaints them on
// demand. MarkDirty may be called from any goroutine; many calls before the
// scheduled frame runs produce a single paint.
type Pipeline struct {
	source  Source
	sched   Scheduler
	opts    Options
	painter Painter

	mu        sync.Mutex // guards the fields below
	dirty     bool
	requested bool
	overlay   Overlay
	stats     Stats

	paintMu sync.Mutex // guards canvas
	canvas  *Canvas
}

// NewPipeline creates a pipeline painting source. A nil scheduler means
// frames only run when Frame is called.
func NewPipeline(source Source, sched Scheduler, opts Options) *Pipeline {
	if opts.Background == nil {
		opts.Background = colorutil.White
	}
	if opts.GridColor == nil {
		opts.GridColor = colorutil.Grid
	}
	if opts.Selection.HandleSize <= 0 {
		opts.Selection = DefaultSelectionStyle()
	}
	if opts.Images == nil {
		opts.Images = NewImageCache()
	}
	if opts.Fonts == nil {
		opts.Fonts = NewFontCache()
	}
	return &Pipeline{
		source:  source,
		sched:   sched,
		opts:    opts,
		painter: Painter{Images: opts.Images, Symbols: opts.Symbols},
		canvas:  NewCanvas(opts.Fonts),
		dirty:   true,
	}
}

// MarkDirty records that the scene changed and requests a frame unless one
// is already pending.
func (p *Pipeline) MarkDirty() {
	p.mu.Lock()
	p.dirty = true
	if p.requested || p.sched == nil {
		p.mu.Unlock()
		return
	}
	p.requested = true
	p.stats.Requests++
	p.mu.Unlock()

	p.sched.RequestFrame(func() { p.Frame() })
}

// Dirty reports whether a repaint is pending.
func (p *Pipeline) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Frame paints the scene if it is dirty and reports whether it painted.
func (p *Pipeline) Frame() bool {
	p.mu.Lock()
	p.requested = false
	if !p.dirty {
		p.mu.Unlock()
		return false
	}
	p.dirty = false
	p.mu.Unlock()

	p.Render(p.source.Snapshot())
	return true
}

// Resize sets the display size and device pixel ratio. The raster is only
// reallocated when one of them changes.
func (p *Pipeline) Resize(width, height int, dpr float64) {
	p.paintMu.Lock()
	realloc := p.canvas.Resize(width, height, dpr)
	p.paintMu.Unlock()

	if realloc {
		p.mu.Lock()
		p.stats.Reallocations++
		p.mu.Unlock()
		p.MarkDirty()
	}
}

// Image returns the most recently painted raster. The image is reused by
// the next frame.
func (p *Pipeline) Image() *image.RGBA {
	p.paintMu.Lock()
	defer p.paintMu.Unlock()
	return p.canvas.Image()
}

// WithImage calls fn with the raster while holding the paint lock.
func (p *Pipeline) WithImage(fn func(*image.RGBA)) {
	p.paintMu.Lock()
	defer p.paintMu.Unlock()
	fn(p.canvas.Image())
}

// Render paints sn onto the pipeline's canvas.
func (p *Pipeline) Render(sn *scene.Snapshot) {
	p.mu.Lock()
	overlay := p.overlay
	p.mu.Unlock()

	p.paintMu.Lock()
	w, h, dpr := p.canvas.DisplaySize()
	stats := p.RenderTo(p.canvas, sn, overlay, float64(w), float64(h), dpr)
	p.paintMu.Unlock()

	p.mu.Lock()
	stats.Frames = p.stats.Frames + 1
	stats.Requests = p.stats.Requests
	stats.Reallocations = p.stats.Reallocations
	p.stats = stats
	p.mu.Unlock()
}

// RenderTo paints sn with overlay onto s for a display of width × height
// at the given pixel ratio, and returns the per-frame statistics.
func (p *Pipeline) RenderTo(s Surface, sn *scene.Snapshot, overlay Overlay, width, height, dpr float64) Stats {
	var st Stats
	if dpr <= 0 {
		dpr = 1
	}
	zoom := sn.Viewport.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	s.Clear(p.opts.Background)
	s.Push()
	defer s.Pop()
	s.Scale(dpr, dpr)
	s.Translate(sn.Viewport.PanX, sn.Viewport.PanY)
	s.Scale(zoom, zoom)

	plan := DrawGrid(s, sn.Viewport, sn.Grid, width, height, p.opts.GridColor)
	st.GridStep, st.GridSkipped = plan.Step, plan.Skip

	for _, id := range sn.PaintOrder {
		e, ok := sn.ElementsByID[id]
		if !ok {
			log.WithField("element", id).Warn("Render: paint order references a missing element")
			st.ElementsSkipped++
			continue
		}
		if !shown(sn, e) || id == sn.EditingID || e.Kind == element.KindGroup {
			continue
		}
		if !e.Valid() {
			st.ElementsSkipped++
			continue
		}
		if p.drawSafely(s, &e) {
			st.ElementsDrawn++
		} else {
			st.Failures++
		}
	}
	if st.ElementsSkipped > 0 {
		log.WithField("skipped", st.ElementsSkipped).Debug("Render: skipped malformed elements")
	}

	if overlay.Preview != nil && overlay.Preview.Valid() {
		s.Push()
		s.MultiplyAlpha(PreviewOpacity)
		p.drawSafely(s, overlay.Preview)
		s.Pop()
	}

	DrawSelection(s, sn, p.opts.Selection)
	if overlay.Lasso != nil {
		DrawLasso(s, *overlay.Lasso, zoom, p.opts.Selection)
	}
	if sn.ShowAlignmentGuides && len(overlay.Guides) > 0 {
		DrawGuides(s, overlay.Guides, zoom, p.opts.Selection)
	}
	return st
}

// drawSafely paints one element; a panic inside a renderer is logged and
// the frame continues.
func (p *Pipeline) drawSafely(s Surface, e *element.Element) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"element": e.ID, "type": e.Kind}).Errorf("Render: element renderer failed: %v", r)
			s.ClearPath()
			ok = false
		}
	}()
	p.painter.DrawElement(s, e)
	return true
}

// maxGroupDepth bounds the parent walk in case a document links groups in
// a cycle.
const maxGroupDepth = 64

// shown reports whether e and every group above it are visible.
func shown(view SceneView, e element.Element) bool {
	if !e.Visible {
		return false
	}
	id := e.ID
	for depth := 0; depth < maxGroupDepth; depth++ {
		p, ok := view.ParentOf(id)
		if !ok {
			return true
		}
		if g, ok := view.Element(p); ok && !g.Visible {
			return false
		}
		id = p
	}
	return true
}

// HitTest returns the topmost element under the world point.
func (p *Pipeline) HitTest(view SceneView, x, y float64) (string, bool) {
	return HitTest(view, x, y)
}

// HitTest walks the paint order back to front and returns the first painted
// element whose shape contains the world point. Groups paint nothing, so a
// group is reached through its members; callers resolve the owner with
// TopLevel.
func HitTest(view SceneView, x, y float64) (string, bool) {
	order := view.Order()
	for i := len(order) - 1; i >= 0; i-- {
		e, ok := view.Element(order[i])
		if !ok || e.Kind == element.KindGroup || !shown(view, e) {
			continue
		}
		if element.HitTest(&e, x, y) {
			return e.ID, true
		}
	}
	return "", false
}

// ScreenToWorld converts a display point to world coordinates.
func ScreenToWorld(x, y float64, v scene.Viewport) geometry.Point2D {
	return v.ScreenToWorld(geometry.Point2D{X: x, Y: y})
}

// WorldToScreen converts a world point to display coordinates.
func WorldToScreen(x, y float64, v scene.Viewport) geometry.Point2D {
	return v.WorldToScreen(geometry.Point2D{X: x, Y: y})
}

// SetPreview shows e semi-transparently until cleared.
func (p *Pipeline) SetPreview(e *element.Element) {
	p.mu.Lock()
	if e != nil {
		c := e.Clone()
		e = &c
	}
	p.overlay.Preview = e
	p.mu.Unlock()
	p.MarkDirty()
}

// SetLasso shows the rubber-band rectangle; nil hides it.
func (p *Pipeline) SetLasso(r *geometry.Rect) {
	p.mu.Lock()
	if r != nil {
		c := *r
		r = &c
	}
	p.overlay.Lasso = r
	p.mu.Unlock()
	p.MarkDirty()
}

// SetGuides replaces the alignment guides shown in the next frame.
func (p *Pipeline) SetGuides(g []geometry.Guide) {
	p.mu.Lock()
	p.overlay.Guides = append([]geometry.Guide(nil), g...)
	p.mu.Unlock()
	p.MarkDirty()
}

// ClearOverlay removes preview, lasso and guides.
func (p *Pipeline) ClearOverlay() {
	p.mu.Lock()
	empty := p.overlay.Preview == nil && p.overlay.Lasso == nil && len(p.overlay.Guides) == 0
	p.overlay = Overlay{}
	p.mu.Unlock()
	if !empty {
		p.MarkDirty()
	}
}

// Overlay returns a copy of the transient overlay state.
func (p *Pipeline) Overlay() Overlay {
	p.mu.Lock()
	defer p.mu.Unlock()
	o := p.overlay
	o.Guides = append([]geometry.Guide(nil), o.Guides...)
	return o
}

// Stats returns counters for the pipeline and its last frame.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (s Stats) String() string {
	return fmt.Sprintf("frames=%d drawn=%d skipped=%d failures=%d grid=%.0f", s.Frames, s.ElementsDrawn, s.ElementsSkipped, s.Failures, s.GridStep)
}
