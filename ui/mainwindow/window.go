// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"plm-whiteboard/internal/app"
	"plm-whiteboard/internal/element"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/internal/tool"
	"plm-whiteboard/internal/version"
	"plm-whiteboard/pkg/geometry"
	"plm-whiteboard/ui/board"
	"plm-whiteboard/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
)

const (
	appTitle       = "Whiteboard"
	prefKeyLastDir = "lastDirectory"
	fitMargin      = 40
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs
	board *board.Board

	toolButtons map[scene.Tool]*widget.Button
	variant     *widget.Select
	snapCheck   *widget.Check
	gridCheck   *widget.Check
	statusBar   *widget.Label
	pointer     geometry.Point2D
}

// New creates the main window around b, which must already be attached to
// state.
func New(fyneApp fyne.App, state *app.State, b *board.Board, p *prefs.Prefs) *MainWindow {
	mw := &MainWindow{
		Window: fyneApp.NewWindow(appTitle),
		app:    fyneApp,
		state:  state,
		prefs:  p,
		board:  b,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.updateTitle()
	mw.updateStatus()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("")
	mw.board.OnPointer = func(x, y float64) {
		mw.pointer = geometry.Point2D{X: x, Y: y}
		mw.updateStatus()
	}

	content := container.NewBorder(
		mw.createToolbar(),                // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		mw.board,                          // center
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
	mw.Canvas().Focus(mw.board)
}

// createToolbar creates the tool buttons, shape picker and grid toggles.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	st := mw.state.Store
	tools := []struct {
		tool  scene.Tool
		label string
	}{
		{scene.ToolSelect, "Select (V)"},
		{scene.ToolShape, "Shape (R)"},
		{scene.ToolText, "Text (T)"},
		{scene.ToolLine, "Line (L)"},
		{scene.ToolPath, "Pen (P)"},
	}
	mw.toolButtons = make(map[scene.Tool]*widget.Button, len(tools))
	box := container.NewHBox()
	for _, t := range tools {
		t := t
		btn := widget.NewButton(t.label, func() {
			mw.state.Tools.Cancel()
			st.SetActiveTool(t.tool)
			mw.Canvas().Focus(mw.board)
		})
		mw.toolButtons[t.tool] = btn
		box.Add(btn)
	}

	variants := append(element.VariantNames(), mw.state.Symbols.IDs()...)
	mw.variant = widget.NewSelect(variants, func(v string) {
		st.SetShapeVariant(v)
		st.SetActiveTool(scene.ToolShape)
	})
	mw.variant.Selected = st.ShapeVariant()

	mw.gridCheck = widget.NewCheck("Grid", func(on bool) {
		g := st.Grid()
		g.Enabled = on
		st.SetGrid(g)
	})
	mw.gridCheck.Checked = st.Grid().Enabled
	mw.snapCheck = widget.NewCheck("Snap", st.SetSnapToGrid)
	mw.snapCheck.Checked = st.SnapToGrid()
	guides := widget.NewCheck("Guides", st.SetShowAlignmentGuides)
	guides.Checked = st.ShowAlignmentGuides()

	zoomOutBtn := widget.NewButton("-", func() { mw.zoomBy(1 / scene.ZoomStep) })
	zoomInBtn := widget.NewButton("+", func() { mw.zoomBy(scene.ZoomStep) })
	fitBtn := widget.NewButton("Fit", mw.onZoomToFit)

	mw.highlightTool(st.ActiveTool())
	return container.NewHBox(
		box,
		widget.NewSeparator(),
		mw.variant,
		widget.NewSeparator(),
		mw.gridCheck, mw.snapCheck, guides,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"), zoomOutBtn, zoomInBtn, fitBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	m := mw.state.Tools
	key := func(k tool.Key, mods tool.Modifiers) func() {
		return func() { m.KeyDown(tool.KeyEvent{Key: k, Mods: mods}) }
	}
	ctrl := tool.Modifiers{Ctrl: true}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Board", mw.onNew),
		fyne.NewMenuItem("Open...", mw.onOpen),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Save As...", mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Select All", key(tool.KeyA, ctrl)),
		fyne.NewMenuItem("Delete", key(tool.KeyDelete, tool.Modifiers{})),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Group", key(tool.KeyG, ctrl)),
		fyne.NewMenuItem("Ungroup", key(tool.KeyG, tool.Modifiers{Ctrl: true, Shift: true})),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Bring to Front", key(tool.KeyBracketRight, ctrl)),
		fyne.NewMenuItem("Bring Forward", key(tool.KeyBracketRight, tool.Modifiers{})),
		fyne.NewMenuItem("Send Backward", key(tool.KeyBracketLeft, tool.Modifiers{})),
		fyne.NewMenuItem("Send to Back", key(tool.KeyBracketLeft, ctrl)),
	)

	gridStyle := func(style scene.GridStyle) func() {
		return func() {
			g := mw.state.Store.Grid()
			g.Style = style
			mw.state.Store.SetGrid(g)
		}
	}
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.zoomBy(scene.ZoomStep) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.zoomBy(1 / scene.ZoomStep) }),
		fyne.NewMenuItem("Zoom to Fit", mw.onZoomToFit),
		fyne.NewMenuItem("Actual Size", func() { mw.state.Store.SetZoom(1) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Dot Grid", gridStyle(scene.GridDots)),
		fyne.NewMenuItem("Line Grid", gridStyle(scene.GridLines)),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDocumentLoaded, func(data interface{}) {
		mw.updateTitle()
		if path, ok := data.(string); ok && path != "" {
			mw.prefs.SetString(app.PrefLastDocument, path)
			mw.statusBar.SetText("Loaded " + path)
		}
	})
	mw.state.On(app.EventDocumentSaved, func(data interface{}) {
		mw.updateTitle()
		if path, ok := data.(string); ok {
			mw.prefs.SetString(app.PrefLastDocument, path)
		}
	})
	mw.state.On(app.EventModified, func(interface{}) { mw.updateTitle() })
	mw.state.On(app.EventToolChanged, func(data interface{}) {
		if t, ok := data.(scene.Tool); ok {
			mw.highlightTool(t)
		}
		mw.updateStatus()
	})
	mw.state.On(app.EventSettingsChanged, func(interface{}) {
		st := mw.state.Store
		mw.gridCheck.SetChecked(st.Grid().Enabled)
		mw.snapCheck.SetChecked(st.SnapToGrid())

		s := mw.state.Settings
		s.Grid = st.Grid()
		s.SnapToGrid = st.SnapToGrid()
		s.ShowGuides = st.ShowAlignmentGuides()
		s.Save(mw.prefs)
	})
	mw.state.On(app.EventSelectionChanged, func(interface{}) { mw.updateStatus() })
	mw.state.On(app.EventViewportChanged, func(interface{}) { mw.updateStatus() })
	mw.state.On(app.EventSceneChanged, func(interface{}) { mw.updateStatus() })
}

func (mw *MainWindow) highlightTool(active scene.Tool) {
	for t, btn := range mw.toolButtons {
		if t == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func (mw *MainWindow) updateTitle() {
	mw.SetTitle(appTitle + " - " + mw.state.Title())
}

// updateStatus shows the tool, zoom, selection and pointer position.
func (mw *MainWindow) updateStatus() {
	st := mw.state.Store
	text := fmt.Sprintf("%s | %.0f%% | %d elements", st.ActiveTool(), st.Viewport().Zoom*100, st.Len())
	if n := len(st.SelectedIDs()); n > 0 {
		text += fmt.Sprintf(" | %d selected", n)
	}
	text += fmt.Sprintf(" | %.0f, %.0f", mw.pointer.X, mw.pointer.Y)
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefKeyLastDir, "")
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// SavePreferences writes preferences to disk.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		log.WithError(err).Warn("MainWindow: saving preferences failed")
	}
}

// SavePreferencesIfChanged writes preferences when a value changed.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if mw.prefs.Changed() {
		mw.SavePreferences()
	}
}

func (mw *MainWindow) zoomBy(factor float64) {
	size := mw.board.Size()
	center := geometry.Point2D{X: float64(size.Width) / 2, Y: float64(size.Height) / 2}
	mw.state.Store.ZoomAt(center, factor)
}

// Menu action handlers

func (mw *MainWindow) onNew() {
	if err := mw.state.NewDocument(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.LoadDocument(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{app.DocumentExt, ".json"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	if mw.state.Path() == "" {
		mw.onSaveAs()
		return
	}
	if err := mw.state.SaveDocument(""); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != app.DocumentExt {
			path += app.DocumentExt
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveDocument(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("board" + app.DocumentExt)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		mw.saveLastDir(path)
		mw.state.Pipeline.Frame()
		mw.state.Pipeline.WithImage(func(img *image.RGBA) {
			err = png.Encode(writer, img)
		})
		if cerr := writer.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			dialog.ShowError(fmt.Errorf("export %s: %w", path, err), mw.Window)
			return
		}
		log.WithField("path", path).Info("MainWindow: exported PNG")
	}, mw.Window)
	fd.SetFileName("board.png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onZoomToFit() {
	st := mw.state.Store
	ids := st.TopLevelIDs()
	els := make([]element.Element, 0, len(ids))
	for _, id := range ids {
		if e, ok := st.Element(id); ok && e.Visible {
			els = append(els, e)
		}
	}
	box, ok := element.CombinedBoundingBox(els)
	if !ok {
		return
	}
	size := mw.board.Size()
	st.SetViewport(scene.FitViewport(box, float64(size.Width), float64(size.Height), fitMargin))
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"A whiteboard for diagrams: shapes, symbols, text, lines and freehand paths.\n\n"+
			"Shape variants: %d built in, %d symbols\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version,
			len(element.VariantNames()), mw.state.Symbols.Len(),
			version.BuildTime, version.GitCommit),
		mw.Window)
}

// OpenInitial loads path, or the last document when path is empty and the
// last document still exists.
func (mw *MainWindow) OpenInitial(path string) {
	if path == "" {
		last := mw.prefs.String(app.PrefLastDocument, "")
		if last == "" {
			return
		}
		if _, err := os.Stat(last); err != nil {
			return
		}
		path = last
	}
	if err := mw.state.LoadDocument(path); err != nil {
		log.WithError(err).WithField("path", path).Warn("MainWindow: failed to open document")
		dialog.ShowError(err, mw.Window)
	}
}
