package render

import (
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// FontSpec selects a face.
type FontSpec struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// FontSpecFor converts element text styling into a FontSpec.
func FontSpecFor(family, weight, style string, size float64) FontSpec {
	return FontSpec{
		Family: family,
		Size:   size,
		Bold:   weight == "bold" || weight == "700" || weight == "800" || weight == "900",
		Italic: style == "italic" || style == "oblique",
	}
}

func (f FontSpec) mono() bool {
	fam := strings.ToLower(f.Family)
	return strings.Contains(fam, "mono") || strings.Contains(fam, "courier") || strings.Contains(fam, "code")
}

type faceKey struct {
	mono, bold, italic bool
	size               float64
}

// FontCache parses the bundled Go fonts once and hands out sized faces.
// Sizes are quantized to quarter units so zooming does not grow the cache
// without bound.
type FontCache struct {
	mu    sync.Mutex
	fonts map[faceKey]*truetype.Font
	faces map[faceKey]font.Face
}

func NewFontCache() *FontCache {
	return &FontCache{
		fonts: make(map[faceKey]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

// Face returns a face for spec. It never returns nil.
func (c *FontCache) Face(spec FontSpec) font.Face {
	size := spec.Size
	if size <= 0 || math.IsNaN(size) {
		size = 16
	}
	size = math.Round(size*4) / 4
	key := faceKey{mono: spec.mono(), bold: spec.Bold, italic: spec.Italic, size: size}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.faces[key]; ok {
		return f
	}

	fontKey := key
	fontKey.size = 0
	ttf, ok := c.fonts[fontKey]
	if !ok {
		var err error
		ttf, err = truetype.Parse(fontData(key))
		if err != nil {
			log.Errorf("Render: parse bundled font: %v", err)
			ttf, _ = truetype.Parse(goregular.TTF)
		}
		c.fonts[fontKey] = ttf
	}
	face := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	c.faces[key] = face
	return face
}

func fontData(k faceKey) []byte {
	switch {
	case k.mono:
		return gomono.TTF
	case k.bold && k.italic:
		return gobolditalic.TTF
	case k.bold:
		return gobold.TTF
	case k.italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}
