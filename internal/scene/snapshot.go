package scene

import (
	"maps"
	"slices"

	"plm-whiteboard/internal/element"
)

// Snapshot is an immutable copy of the scene taken for one frame. The paint
// goroutine works from a Snapshot so it never races event handlers.
type Snapshot struct {
	ElementsByID        map[string]element.Element
	PaintOrder          []string
	Parents             map[string]string // member id -> direct group
	Selected            []string          // top-level ids in paint order
	EditingID           string
	Viewport            Viewport
	Grid                Grid
	SnapToGrid          bool
	ShowAlignmentGuides bool
}

// Snapshot copies the current scene.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	els := make(map[string]element.Element, len(s.elements))
	for id, e := range s.elements {
		els[id] = e.Clone()
	}
	return &Snapshot{
		ElementsByID:        els,
		PaintOrder:          slices.Clone(s.order),
		Parents:             maps.Clone(s.parents),
		Selected:            s.selectedInOrder(),
		EditingID:           s.editing,
		Viewport:            s.viewport,
		Grid:                s.grid,
		SnapToGrid:          s.snapToGrid,
		ShowAlignmentGuides: s.showGuides,
	}
}

// Order returns the back-to-front paint order.
func (sn *Snapshot) Order() []string {
	return sn.PaintOrder
}

// Element returns the element with the given id.
func (sn *Snapshot) Element(id string) (element.Element, bool) {
	e, ok := sn.ElementsByID[id]
	return e, ok
}

// ParentOf returns the group that directly contains id.
func (sn *Snapshot) ParentOf(id string) (string, bool) {
	p, ok := sn.Parents[id]
	return p, ok
}

// IsSelected reports whether id is in the selection.
func (sn *Snapshot) IsSelected(id string) bool {
	return slices.Contains(sn.Selected, id)
}

// Clone returns an independent copy, used by callers that mutate a
// snapshot before painting it.
func (sn *Snapshot) Clone() *Snapshot {
	c := *sn
	c.ElementsByID = maps.Clone(sn.ElementsByID)
	for id, e := range c.ElementsByID {
		c.ElementsByID[id] = e.Clone()
	}
	c.PaintOrder = slices.Clone(sn.PaintOrder)
	c.Parents = maps.Clone(sn.Parents)
	c.Selected = slices.Clone(sn.Selected)
	return &c
}
