// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"plm-whiteboard/internal/render"
	"plm-whiteboard/internal/scene"
	"plm-whiteboard/internal/symbols"
	"plm-whiteboard/internal/tool"

	log "github.com/sirupsen/logrus"
)

// DocumentExt is the file extension of saved boards.
const DocumentExt = ".wboard"

// State holds the application state: the scene, the pipeline painting it,
// the tool machine editing it, and the current document.
type State struct {
	mu sync.RWMutex

	// Document
	DocumentPath string
	Modified     bool

	Settings Settings
	Store    *scene.Store
	Symbols  *symbols.Catalog
	Pipeline *render.Pipeline
	Tools    *tool.Machine

	unsubscribe func()

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventDocumentLoaded EventType = iota
	EventDocumentSaved
	EventModified
	EventSceneChanged
	EventSelectionChanged
	EventEditingChanged
	EventViewportChanged
	EventSettingsChanged
	EventToolChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState wires a scene store to a render pipeline scheduled by sched and
// a tool machine. Every store change marks the pipeline dirty.
func NewState(settings Settings, sched render.Scheduler) *State {
	s := &State{
		Settings:  settings,
		Store:     scene.NewStore(),
		Symbols:   symbols.Builtin(),
		listeners: make(map[EventType][]EventListener),
	}
	settings.ApplyTo(s.Store)
	s.Pipeline = render.NewPipeline(s.Store, sched, settings.RenderOptions(s.Symbols))
	s.Tools = tool.NewMachine(s.Store, s.Pipeline, settings.ToolConfig())
	s.unsubscribe = s.Store.Subscribe(s.onChange)
	return s
}

// Close detaches the state from its store.
func (s *State) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *State) onChange(c scene.Change) {
	s.Pipeline.MarkDirty()

	switch c.Kind {
	case scene.ChangeElements, scene.ChangeOrder:
		s.SetModified(true)
		s.Emit(EventSceneChanged, c.IDs)
	case scene.ChangeSelection:
		s.Emit(EventSelectionChanged, s.Store.SelectedIDs())
	case scene.ChangeEditing:
		s.Emit(EventEditingChanged, s.Store.EditingID())
	case scene.ChangeViewport:
		s.Emit(EventViewportChanged, s.Store.Viewport())
	case scene.ChangeSettings:
		s.Emit(EventSettingsChanged, nil)
	case scene.ChangeTool:
		s.Emit(EventToolChanged, s.Store.ActiveTool())
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the document as modified and emits an event when the
// flag changes.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

// IsModified reports whether the scene changed since the last load or save.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// Path returns the current document path, empty for an unsaved board.
func (s *State) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DocumentPath
}

// Title returns the window title for the current document.
func (s *State) Title() string {
	name := "Untitled"
	if p := s.Path(); p != "" {
		name = strings.TrimSuffix(filepath.Base(p), DocumentExt)
	}
	if s.IsModified() {
		name += " *"
	}
	return name
}

// NewDocument clears the board.
func (s *State) NewDocument() error {
	s.Tools.Cancel()
	doc := scene.NewDocument("")
	doc.Grid = s.Settings.Grid
	doc.SnapToGrid = s.Settings.SnapToGrid
	doc.ShowAlignmentGuides = s.Settings.ShowGuides
	if err := s.Store.Replace(doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.DocumentPath = ""
	s.mu.Unlock()
	s.SetModified(false)
	s.Emit(EventDocumentLoaded, "")
	return nil
}

// LoadDocument replaces the board with the document at path.
func (s *State) LoadDocument(path string) error {
	doc, err := scene.LoadDocumentFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	doc.ResolveSources(path)

	s.Tools.Cancel()
	if err := s.Store.Replace(doc); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	s.mu.Lock()
	s.DocumentPath = path
	s.mu.Unlock()
	s.SetModified(false)

	log.WithFields(log.Fields{"path": path, "elements": s.Store.Len()}).Info("App: document loaded")
	s.Emit(EventDocumentLoaded, path)
	return nil
}

// SaveDocument writes the board to path, or to the current path when path
// is empty.
func (s *State) SaveDocument(path string) error {
	if path == "" {
		path = s.Path()
	}
	if path == "" {
		return fmt.Errorf("save: no document path")
	}
	if filepath.Ext(path) == "" {
		path += DocumentExt
	}

	doc := s.Store.Document()
	doc.Name = strings.TrimSuffix(filepath.Base(path), DocumentExt)
	if err := doc.Save(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	s.mu.Lock()
	s.DocumentPath = path
	s.mu.Unlock()
	s.SetModified(false)

	log.WithField("path", path).Info("App: document saved")
	s.Emit(EventDocumentSaved, path)
	return nil
}

// UpdateSettings replaces the settings and applies the grid, snap, guide and
// stay-in-tool options. Handle size, guide threshold and background are read
// when the state is created.
func (s *State) UpdateSettings(settings Settings) {
	s.mu.Lock()
	s.Settings = settings
	s.mu.Unlock()

	s.Tools.SetStayInTool(settings.StayInTool)
	settings.ApplyTo(s.Store)
}
