// Package colorutil provides shared color utilities for the whiteboard renderers.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common overlay colors used throughout the application.
var (
	Black       = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.NRGBA{}
	Selection   = color.NRGBA{R: 0x1E, G: 0x88, B: 0xE5, A: 255} // handles and outlines
	Guide       = color.NRGBA{R: 255, G: 0, B: 255, A: 255}      // alignment guides
	Grid        = color.NRGBA{R: 0xC8, G: 0xC8, B: 0xC8, A: 255}
	Placeholder = color.NRGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 255}
)

var named = map[string]color.NRGBA{
	"black":       Black,
	"white":       White,
	"transparent": Transparent,
	"none":        Transparent,
	"red":         {R: 255, A: 255},
	"green":       {G: 128, A: 255},
	"blue":        {B: 255, A: 255},
	"yellow":      {R: 255, G: 255, A: 255},
	"orange":      {R: 255, G: 165, A: 255},
	"purple":      {R: 128, B: 128, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
	"cyan":        {G: 255, B: 255, A: 255},
	"magenta":     {R: 255, B: 255, A: 255},
}

// Parse converts a CSS-like color string (#rgb, #rrggbb, #rrggbbaa, or a
// small set of names) to a color.
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := named[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("unrecognized color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("unrecognized color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("unrecognized color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ParseOr parses s and returns fallback when it is empty or invalid.
func ParseOr(s string, fallback color.NRGBA) color.NRGBA {
	if s == "" {
		return fallback
	}
	c, err := Parse(s)
	if err != nil {
		return fallback
	}
	return c
}

// WithAlpha scales the alpha channel of c by a in [0, 1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(float64(c.A)*a + 0.5)
	return c
}

// Hex formats c as #rrggbb, or #rrggbbaa when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Darken returns c with its RGB channels scaled toward black by amount in [0, 1].
func Darken(c color.NRGBA, amount float64) color.NRGBA {
	f := 1 - amount
	return color.NRGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}
