package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"plm-whiteboard/internal/element"

	log "github.com/sirupsen/logrus"
)

// DocumentVersion is the current document format version.
const DocumentVersion = 1

// Document is a JSON snapshot of a scene (.wboard). It is a fixture and
// interchange format for the headless renderer, not a sync protocol.
type Document struct {
	Version  int       `json:"version"`
	Name     string    `json:"name,omitempty"`
	Modified time.Time `json:"modified,omitempty"`

	// Elements in back-to-front paint order.
	Elements []element.Element `json:"elements"`

	Viewport            Viewport `json:"viewport"`
	Grid                Grid     `json:"grid"`
	SnapToGrid          bool     `json:"snapToGrid"`
	ShowAlignmentGuides bool     `json:"showAlignmentGuides"`
}

// NewDocument returns an empty document with default settings.
func NewDocument(name string) *Document {
	return &Document{
		Version:             DocumentVersion,
		Name:                name,
		Modified:            time.Now(),
		Viewport:            DefaultViewport(),
		Grid:                DefaultGrid(),
		ShowAlignmentGuides: true,
	}
}

// LoadDocument decodes a document.
func LoadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("document version %d is newer than supported version %d", doc.Version, DocumentVersion)
	}
	return &doc, nil
}

// LoadDocumentFile reads a document from path.
func LoadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDocument(f)
}

// Write encodes the document as indented JSON.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	d.Modified = time.Now()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ResolveSources rewrites relative image sources against the document's
// directory. data: URIs and absolute paths are left alone.
func (d *Document) ResolveSources(docPath string) {
	dir := filepath.Dir(docPath)
	for i := range d.Elements {
		im := d.Elements[i].Image
		if im == nil || im.Source == "" || strings.HasPrefix(im.Source, "data:") || filepath.IsAbs(im.Source) {
			continue
		}
		im.Source = filepath.Join(dir, im.Source)
	}
}

// Document captures the store as a document.
func (s *Store) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := &Document{
		Version:             DocumentVersion,
		Modified:            time.Now(),
		Elements:            make([]element.Element, 0, len(s.order)),
		Viewport:            s.viewport,
		Grid:                s.grid,
		SnapToGrid:          s.snapToGrid,
		ShowAlignmentGuides: s.showGuides,
	}
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok {
			doc.Elements = append(doc.Elements, e.Clone())
		}
	}
	return doc
}

// Replace discards the scene and loads the document. Duplicate ids are an
// error. Group references to missing elements, and second parents, are
// dropped with a warning. Malformed elements are kept; paint and hit-test
// skip them.
func (s *Store) Replace(doc *Document) error {
	elements := make(map[string]*element.Element, len(doc.Elements))
	order := make([]string, 0, len(doc.Elements))
	for _, e := range doc.Elements {
		if e.ID == "" {
			return fmt.Errorf("load element without id: %w", ErrInvalidElement)
		}
		if _, dup := elements[e.ID]; dup {
			return fmt.Errorf("load %s: %w", e.ID, ErrDuplicateID)
		}
		c := e.Clone()
		elements[c.ID] = &c
		order = append(order, c.ID)
	}

	parents := make(map[string]string)
	for _, id := range order {
		g := elements[id]
		if g.Kind != element.KindGroup || g.Group == nil {
			continue
		}
		kept := g.Group.ChildIDs[:0]
		for _, c := range g.Group.ChildIDs {
			if _, ok := elements[c]; !ok || c == id {
				log.WithFields(log.Fields{"group": id, "member": c}).Warn("Scene: dropping missing group member")
				continue
			}
			if p, ok := parents[c]; ok {
				log.WithFields(log.Fields{"group": id, "member": c, "parent": p}).Warn("Scene: dropping member with a second parent")
				continue
			}
			if ancestorOf(parents, c, id) {
				log.WithFields(log.Fields{"group": id, "member": c}).Warn("Scene: dropping member that would form a cycle")
				continue
			}
			parents[c] = id
			kept = append(kept, c)
		}
		g.Group.ChildIDs = kept
	}

	s.mu.Lock()
	s.elements = elements
	s.order = order
	s.parents = parents
	s.selected = make(map[string]bool)
	s.editing = ""
	s.viewport = doc.Viewport
	s.viewport.Zoom = ClampZoom(doc.Viewport.zoom())
	s.grid = doc.Grid
	if s.grid.Size <= 0 {
		s.grid.Size = DefaultGrid().Size
	}
	if s.grid.Style != GridLines {
		s.grid.Style = GridDots
	}
	s.snapToGrid = doc.SnapToGrid
	s.showGuides = doc.ShowAlignmentGuides
	for id, e := range s.elements {
		if e.Kind == element.KindGroup {
			s.refreshGroupBounds(id)
		}
	}
	s.mu.Unlock()

	log.WithField("elements", len(order)).Info("Scene: document loaded")
	s.emit(ChangeElements)
	return nil
}

// ancestorOf reports whether a is id or one of id's ancestors.
func ancestorOf(parents map[string]string, a, id string) bool {
	for p, ok := id, true; ok; p, ok = parents[p] {
		if p == a {
			return true
		}
	}
	return false
}
