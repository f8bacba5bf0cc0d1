package symbols

import (
	"image/color"
	"math"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/render"
	"plm-whiteboard/pkg/geometry"
)

// Categories of the built-in sets.
const (
	CategoryFlowchart      = "flowchart"
	CategoryUML            = "uml"
	CategoryInfrastructure = "infrastructure"
)

const symbolStrokeWidth = 2.0

// Builtin returns a catalog holding the flowchart, UML and infrastructure
// sets.
func Builtin() *Catalog {
	c := NewCatalog()
	for _, set := range [][]render.Symbol{Flowchart(), UML(), Infrastructure()} {
		if err := c.Register(set...); err != nil {
			// The built-in ids are unique; a failure here is a programming error.
			panic(err)
		}
	}
	return c
}

// paint fills and then strokes the current path.
func paint(s render.Surface, stroke, fill color.Color) {
	s.SetFillColor(fill)
	s.FillPreserve()
	s.SetStrokeColor(stroke)
	s.SetLineWidth(symbolStrokeWidth)
	s.Stroke()
}

func strokeOnly(s render.Surface, stroke color.Color) {
	s.SetStrokeColor(stroke)
	s.SetLineWidth(symbolStrokeWidth)
	s.Stroke()
}

func pts(xy ...float64) []geometry.Point2D {
	out := make([]geometry.Point2D, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geometry.Point2D{X: xy[i], Y: xy[i+1]})
	}
	return out
}

// Flowchart returns the flowchart symbols not covered by the built-in
// outlines.
func Flowchart() []render.Symbol {
	return []render.Symbol{
		{
			ID: "flowchart-terminator", Name: "Terminator", Category: CategoryFlowchart,
			Width: 160, Height: 60,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				s.RoundedRect(x, y, w, h, h/2)
				paint(s, stroke, fill)
			},
		},
		{
			ID: "flowchart-document", Name: "Document", Category: CategoryFlowchart,
			Width: 160, Height: 100,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				wave := h * 0.1
				s.NewSubPath()
				s.MoveTo(x, y)
				s.LineTo(x+w, y)
				s.LineTo(x+w, y+h-wave)
				s.QuadraticTo(x+w*0.75, y+h-3*wave, x+w/2, y+h-wave)
				s.QuadraticTo(x+w*0.25, y+h+wave, x, y+h-wave)
				s.ClosePath()
				paint(s, stroke, fill)
			},
		},
		{
			ID: "flowchart-predefined-process", Name: "Predefined process", Category: CategoryFlowchart,
			Width: 160, Height: 80,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				s.Rect(x, y, w, h)
				paint(s, stroke, fill)
				inset := math.Min(w*0.1, 16)
				s.MoveTo(x+inset, y)
				s.LineTo(x+inset, y+h)
				s.MoveTo(x+w-inset, y)
				s.LineTo(x+w-inset, y+h)
				strokeOnly(s, stroke)
			},
		},
		{
			ID: "flowchart-manual-input", Name: "Manual input", Category: CategoryFlowchart,
			Width: 160, Height: 80,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				render.Polygon(s, pts(x, y+h*0.3, x+w, y, x+w, y+h, x, y+h))
				paint(s, stroke, fill)
			},
		},
		{
			ID: "flowchart-delay", Name: "Delay", Category: CategoryFlowchart,
			Width: 120, Height: 80,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				r := math.Min(h/2, w/2)
				s.NewSubPath()
				s.MoveTo(x, y)
				s.LineTo(x+w-r, y)
				s.QuadraticTo(x+w, y, x+w, y+h/2)
				s.QuadraticTo(x+w, y+h, x+w-r, y+h)
				s.LineTo(x, y+h)
				s.ClosePath()
				paint(s, stroke, fill)
			},
		},
		{
			ID: "flowchart-off-page", Name: "Off-page connector", Category: CategoryFlowchart,
			Width: 80, Height: 80,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				render.Polygon(s, pts(x, y, x+w, y, x+w, y+h*0.7, x+w/2, y+h, x, y+h*0.7))
				paint(s, stroke, fill)
			},
		},
	}
}

// UML returns class-diagram and use-case symbols.
func UML() []render.Symbol {
	return []render.Symbol{
		{
			ID: "uml-class", Name: "Class", Category: CategoryUML,
			Width: 160, Height: 120,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				s.Rect(x, y, w, h)
				paint(s, stroke, fill)
				header := math.Min(h*0.25, 30)
				s.MoveTo(x, y+header)
				s.LineTo(x+w, y+header)
				mid := y + header + (h-header)/2
				s.MoveTo(x, mid)
				s.LineTo(x+w, mid)
				strokeOnly(s, stroke)
			},
		},
		{
			ID: "uml-actor", Name: "Actor", Category: CategoryUML,
			Width: 60, Height: 120,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				cx := x + w/2
				r := math.Min(w/2, h*0.14)
				s.Ellipse(cx, y+r, r, r)
				paint(s, stroke, fill)
				neck, hip := y+2*r, y+h*0.65
				s.MoveTo(cx, neck)
				s.LineTo(cx, hip)
				s.MoveTo(x, neck+(hip-neck)*0.3)
				s.LineTo(x+w, neck+(hip-neck)*0.3)
				s.MoveTo(cx, hip)
				s.LineTo(x, y+h)
				s.MoveTo(cx, hip)
				s.LineTo(x+w, y+h)
				strokeOnly(s, stroke)
			},
		},
		{
			ID: "uml-note", Name: "Note", Category: CategoryUML,
			Width: 140, Height: 100,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				fold := math.Min(math.Min(w, h)*0.2, 20)
				render.Polygon(s, pts(x, y, x+w-fold, y, x+w, y+fold, x+w, y+h, x, y+h))
				paint(s, stroke, fill)
				render.Polyline(s, pts(x+w-fold, y, x+w-fold, y+fold, x+w, y+fold))
				strokeOnly(s, stroke)
			},
		},
		{
			ID: "uml-component", Name: "Component", Category: CategoryUML,
			Width: 160, Height: 100,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				tab := math.Min(w*0.1, 16)
				s.Rect(x+tab/2, y, w-tab/2, h)
				paint(s, stroke, fill)
				s.Rect(x, y+h*0.2, tab, h*0.15)
				s.Rect(x, y+h*0.55, tab, h*0.15)
				paint(s, stroke, fill)
			},
		},
		{
			ID: "uml-package", Name: "Package", Category: CategoryUML,
			Width: 160, Height: 110,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				tabH := math.Min(h*0.18, 20)
				s.Rect(x, y, w*0.4, tabH)
				s.Rect(x, y+tabH, w, h-tabH)
				paint(s, stroke, fill)
			},
		},
	}
}

// Infrastructure returns architecture-diagram symbols.
func Infrastructure() []render.Symbol {
	return []render.Symbol{
		{
			ID: "infra-server", Name: "Server", Category: CategoryInfrastructure,
			Width: 80, Height: 110,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				s.RoundedRect(x, y, w, h, math.Min(w, h)*0.06)
				paint(s, stroke, fill)
				slot := h / 4
				for i := 1; i < 4; i++ {
					s.MoveTo(x, y+slot*float64(i))
					s.LineTo(x+w, y+slot*float64(i))
				}
				strokeOnly(s, stroke)
				r := math.Min(slot*0.12, w*0.05)
				for i := 0; i < 4; i++ {
					s.Ellipse(x+w*0.82, y+slot*(float64(i)+0.5), r, r)
				}
				s.SetFillColor(stroke)
				s.Fill()
			},
		},
		{
			ID: "infra-database", Name: "Database", Category: CategoryInfrastructure,
			Width: 90, Height: 110,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				box := geometry.Rect{X: x, Y: y, Width: w, Height: h}
				ry := element.CylinderCap(box)
				cx, rx := x+w/2, w/2
				s.Rect(x, y+ry, w, h-2*ry)
				s.Ellipse(cx, y+h-ry, rx, ry)
				s.SetFillColor(fill)
				s.Fill()
				s.Ellipse(cx, y+ry, rx, ry)
				paint(s, stroke, fill)
				s.MoveTo(x, y+ry)
				s.LineTo(x, y+h-ry)
				s.MoveTo(x+w, y+ry)
				s.LineTo(x+w, y+h-ry)
				for _, band := range []float64{h / 3, 2 * h / 3, h - ry} {
					arc := make([]geometry.Point2D, 0, 17)
					for i := 0; i <= 16; i++ {
						a := float64(i) * math.Pi / 16
						arc = append(arc, geometry.Point2D{X: cx + rx*math.Cos(a), Y: y + band + ry*math.Sin(a) - ry})
					}
					render.Polyline(s, arc)
				}
				strokeOnly(s, stroke)
			},
		},
		{
			ID: "infra-queue", Name: "Queue", Category: CategoryInfrastructure,
			Width: 160, Height: 60,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				s.RoundedRect(x, y, w, h, h*0.2)
				paint(s, stroke, fill)
				cell := w / 5
				for i := 1; i < 5; i++ {
					s.MoveTo(x+cell*float64(i), y+h*0.2)
					s.LineTo(x+cell*float64(i), y+h*0.8)
				}
				strokeOnly(s, stroke)
			},
		},
		{
			ID: "infra-user", Name: "User", Category: CategoryInfrastructure,
			Width: 80, Height: 90,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				r := math.Min(w, h) * 0.22
				s.Ellipse(x+w/2, y+r, r, r)
				paint(s, stroke, fill)
				s.NewSubPath()
				s.MoveTo(x, y+h)
				s.QuadraticTo(x, y+2.2*r, x+w/2, y+2.2*r)
				s.QuadraticTo(x+w, y+2.2*r, x+w, y+h)
				s.ClosePath()
				paint(s, stroke, fill)
			},
		},
		{
			ID: "infra-cloud", Name: "Cloud provider", Category: CategoryInfrastructure,
			Width: 160, Height: 100,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				render.Polygon(s, element.CloudVertices(geometry.Rect{X: x, Y: y, Width: w, Height: h}))
				paint(s, stroke, fill)
			},
		},
		{
			ID: "infra-load-balancer", Name: "Load balancer", Category: CategoryInfrastructure,
			Width: 90, Height: 90,
			Render: func(s render.Surface, x, y, w, h float64, stroke, fill color.Color) {
				c := geometry.Point2D{X: x + w/2, Y: y + h/2}
				s.Ellipse(c.X, c.Y, w/2, h/2)
				paint(s, stroke, fill)
				for _, dy := range []float64{-h / 4, 0, h / 4} {
					s.MoveTo(x+w*0.2, c.Y)
					s.LineTo(x+w*0.8, c.Y+dy)
				}
				strokeOnly(s, stroke)
			},
		},
	}
}
