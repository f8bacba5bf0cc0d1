package render

import (
	"image"
	"image/color"

	"plm-whiteboard/pkg/geometry"
)

// Recorder is a Surface that draws nothing and counts what it is asked to
// do. The headless tests use it to check batching and fallbacks.
type Recorder struct {
	Width, Height int

	Fills   int
	Strokes int
	Images  int
	Texts   int

	// Shapes counts primitive path calls by name: "rect", "rounded-rect",
	// "ellipse", "move", "line", "quad", "close".
	Shapes map[string]int
	// Ops is the ordered log of draw calls and primitives.
	Ops []string

	depth int
	alpha []float64
}

func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height, Shapes: make(map[string]int), alpha: []float64{1}}
}

// DrawCalls returns the number of fill, stroke, image and text calls.
func (r *Recorder) DrawCalls() int {
	return r.Fills + r.Strokes + r.Images + r.Texts
}

// Depth returns the current Push nesting.
func (r *Recorder) Depth() int { return r.depth }

// Alpha returns the accumulated opacity.
func (r *Recorder) Alpha() float64 { return r.alpha[len(r.alpha)-1] }

// Reset clears all counters.
func (r *Recorder) Reset() {
	*r = *NewRecorder(r.Width, r.Height)
}

func (r *Recorder) op(name string) {
	r.Ops = append(r.Ops, name)
}

func (r *Recorder) shape(name string) {
	r.Shapes[name]++
	r.op(name)
}

func (r *Recorder) Size() (int, int)    { return r.Width, r.Height }
func (r *Recorder) Clear(c color.Color) { r.op("clear") }

func (r *Recorder) Push() {
	r.depth++
	r.alpha = append(r.alpha, r.Alpha())
}

func (r *Recorder) Pop() {
	if r.depth == 0 {
		return
	}
	r.depth--
	r.alpha = r.alpha[:len(r.alpha)-1]
}

func (r *Recorder) Translate(x, y float64) {}
func (r *Recorder) Scale(sx, sy float64)   {}
func (r *Recorder) Rotate(radians float64) { r.op("rotate") }

func (r *Recorder) MultiplyAlpha(a float64) {
	r.alpha[len(r.alpha)-1] *= clamp01(a)
}

func (r *Recorder) SetFillColor(c color.Color)   {}
func (r *Recorder) SetStrokeColor(c color.Color) {}
func (r *Recorder) SetLineWidth(w float64)       {}
func (r *Recorder) SetDash(lengths ...float64)   {}

func (r *Recorder) MoveTo(x, y float64)              { r.shape("move") }
func (r *Recorder) LineTo(x, y float64)              { r.shape("line") }
func (r *Recorder) QuadraticTo(cx, cy, x, y float64) { r.shape("quad") }
func (r *Recorder) ClosePath()                       { r.shape("close") }
func (r *Recorder) NewSubPath()                      {}
func (r *Recorder) ClearPath()                       {}

func (r *Recorder) Rect(x, y, w, h float64)            { r.shape("rect") }
func (r *Recorder) RoundedRect(x, y, w, h, rr float64) { r.shape("rounded-rect") }
func (r *Recorder) Ellipse(cx, cy, rx, ry float64)     { r.shape("ellipse") }

func (r *Recorder) Fill() {
	r.Fills++
	r.op("fill")
}

func (r *Recorder) FillPreserve() {
	r.Fills++
	r.op("fill")
}

func (r *Recorder) Stroke() {
	r.Strokes++
	r.op("stroke")
}

func (r *Recorder) DrawImage(img image.Image, box geometry.Rect) {
	r.Images++
	r.op("image")
}

func (r *Recorder) DrawText(t TextBlock) {
	r.Texts++
	r.op("text")
}
