package symbols

import (
	"image/color"
	"testing"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/render"
	"plm-whiteboard/pkg/colorutil"
	"plm-whiteboard/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(render.Surface, float64, float64, float64, float64, color.Color, color.Color) {}

func TestRegister(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(
		render.Symbol{ID: "a", Category: "x", Render: noop},
		render.Symbol{ID: "b", Category: "y", Render: noop},
		render.Symbol{ID: "c", Category: "x", Render: noop},
	))

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []string{"a", "b", "c"}, c.IDs())
	assert.Equal(t, []string{"x", "y"}, c.Categories())
	assert.Len(t, c.InCategory("x"), 2)

	s, ok := c.Symbol("b")
	require.True(t, ok)
	assert.Equal(t, "y", s.Category)
	_, ok = c.Symbol("missing")
	assert.False(t, ok)
}

func TestRegisterRejectsBadSymbols(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Register(render.Symbol{ID: "a", Render: noop}))

	assert.ErrorIs(t, c.Register(render.Symbol{Render: noop}), ErrEmptyID)
	assert.ErrorIs(t, c.Register(render.Symbol{ID: "b"}), ErrNoRenderer)
	assert.ErrorIs(t, c.Register(render.Symbol{ID: "a", Render: noop}), ErrDuplicateID)
	assert.Equal(t, 1, c.Len())
}

func TestCatalogsAreIndependent(t *testing.T) {
	a, b := Builtin(), NewCatalog()
	require.NoError(t, b.Register(render.Symbol{ID: "custom", Render: noop}))

	_, ok := a.Symbol("custom")
	assert.False(t, ok)
	assert.Equal(t, 1, b.Len())
}

func TestBuiltinSymbolsRender(t *testing.T) {
	c := Builtin()
	assert.Equal(t, []string{CategoryFlowchart, CategoryUML, CategoryInfrastructure}, c.Categories())

	for _, id := range c.IDs() {
		t.Run(id, func(t *testing.T) {
			sym, _ := c.Symbol(id)
			assert.Positive(t, sym.Width)
			assert.Positive(t, sym.Height)
			assert.Equal(t, element.VariantSymbol, element.ParseVariant(id), "symbol ids must not shadow built-in outlines")

			rec := render.NewRecorder(200, 200)
			sym.Render(rec, 10, 10, sym.Width, sym.Height, colorutil.Black, colorutil.White)
			assert.Positive(t, rec.DrawCalls())
			assert.Zero(t, rec.Depth())
		})
	}
}

func TestPainterResolvesBuiltin(t *testing.T) {
	e := element.NewShape("uml-class", geometry.NewRect(0, 0, 160, 120))
	rec := render.NewRecorder(200, 200)

	(&render.Painter{Symbols: Builtin()}).DrawElement(rec, &e)

	// Box plus two compartment dividers, no fallback rectangle.
	assert.Equal(t, 1, rec.Shapes["rect"])
	assert.Equal(t, 2, rec.Shapes["move"])
	assert.Equal(t, 1, rec.Fills)
	assert.Equal(t, 2, rec.Strokes)
}

func TestSymbolsOnCanvas(t *testing.T) {
	canvas := render.NewCanvas(nil)
	canvas.Resize(200, 200, 1)
	c := Builtin()
	for _, id := range c.IDs() {
		sym, _ := c.Symbol(id)
		canvas.Clear(colorutil.White)
		assert.NotPanics(t, func() {
			sym.Render(canvas, 10, 10, sym.Width, sym.Height, colorutil.Black, colorutil.White)
		}, id)
	}
}
