package render

import "image/color"

// Symbol is a catalog shape drawn in place of a built-in outline.
type Symbol struct {
	ID       string
	Name     string
	Category string
	// Width and Height are the symbol's natural size, used when a shape is
	// created from it.
	Width, Height float64
	// Render draws the symbol into the box. The surface's current path is
	// empty on entry; Render fills and strokes on its own.
	Render func(s Surface, x, y, w, h float64, stroke, fill color.Color)
}

// SymbolLookup resolves shape variants that are not built in.
type SymbolLookup interface {
	Symbol(id string) (Symbol, bool)
}
