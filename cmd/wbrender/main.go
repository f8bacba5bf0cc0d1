// Command wbrender renders a whiteboard document to a PNG without a window.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/logging"
	"plm-whiteboard/internal/render"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/internal/symbols"
	"plm-whiteboard/pkg/colorutil"

	log "github.com/sirupsen/logrus"
)

// options are the command line settings.
type options struct {
	in, out    string
	width      int
	height     int
	dpr        float64
	fit        bool
	margin     float64
	background string
	noGrid     bool
}

func main() {
	var o options
	flag.StringVar(&o.in, "in", "", "Path to whiteboard document (.wboard JSON)")
	flag.StringVar(&o.out, "out", "", "Output PNG path (default stdout)")
	flag.IntVar(&o.width, "width", 1280, "Display width")
	flag.IntVar(&o.height, "height", 800, "Display height")
	flag.Float64Var(&o.dpr, "dpr", 1, "Device pixel ratio")
	flag.BoolVar(&o.fit, "fit", false, "Fit the viewport to the content instead of the saved viewport")
	flag.Float64Var(&o.margin, "margin", 40, "Margin around content with -fit")
	flag.StringVar(&o.background, "bg", "", "Background color (#rrggbb)")
	flag.BoolVar(&o.noGrid, "nogrid", false, "Do not draw the grid")
	level := flag.String("log", "warn", "Log level")
	flag.Parse()

	logging.Setup(os.Stderr, logging.ParseLevel(*level))

	if o.in == "" {
		fmt.Fprintln(os.Stderr, "Usage: wbrender -in <board.wboard> [-out board.png] [-width 1280] [-height 800] [-dpr 1] [-fit]")
		os.Exit(1)
	}

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "wbrender: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	doc, err := scene.LoadDocumentFile(o.in)
	if err != nil {
		return fmt.Errorf("load %s: %w", o.in, err)
	}
	doc.ResolveSources(o.in)

	img, stats, err := renderDocument(doc, o)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"drawn":   stats.ElementsDrawn,
		"skipped": stats.ElementsSkipped,
		"grid":    stats.GridStep,
	}).Info("wbrender: rendered")

	var w io.Writer = os.Stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// renderDocument paints doc at the requested size and returns the raster.
func renderDocument(doc *scene.Document, o options) (*image.RGBA, render.Stats, error) {
	if o.width <= 0 || o.height <= 0 {
		return nil, render.Stats{}, fmt.Errorf("invalid size %dx%d", o.width, o.height)
	}

	store := scene.NewStore()
	if err := store.Replace(doc); err != nil {
		return nil, render.Stats{}, err
	}
	if o.noGrid {
		g := store.Grid()
		g.Enabled = false
		store.SetGrid(g)
	}
	if o.fit {
		if box, ok := element.CombinedBoundingBox(store.Elements()); ok {
			store.SetViewport(scene.FitViewport(box, float64(o.width), float64(o.height), o.margin))
		}
	}

	opts := render.DefaultOptions()
	opts.Symbols = symbols.Builtin()
	if o.background != "" {
		bg, err := colorutil.Parse(o.background)
		if err != nil {
			return nil, render.Stats{}, err
		}
		opts.Background = bg
	}

	sched := &render.ManualScheduler{}
	p := render.NewPipeline(store, sched, opts)
	p.Resize(o.width, o.height, o.dpr)
	p.Frame()
	// Images load synchronously, so one frame is complete.
	return p.Image(), p.Stats(), nil
}
