// Package scene owns the whiteboard scene: elements, paint order, selection,
// viewport and grid settings. A Store is an explicit instance passed to the
// render pipeline and the tool machine; there is no package-level state.
package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"plm-whiteboard/internal/element"
	"plm-whiteboard/pkg/geometry"

	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound        = errors.New("element not found")
	ErrDuplicateID     = errors.New("duplicate element id")
	ErrInvalidElement  = errors.New("invalid element")
	ErrGroupTooSmall   = errors.New("a group needs at least two members")
	ErrNotGroup        = errors.New("element is not a group")
	ErrAlreadyGrouped  = errors.New("element already belongs to a group")
	ErrImmutableFields = errors.New("element id and kind cannot change")
)

// ChangeKind classifies a store mutation.
type ChangeKind int

const (
	ChangeElements ChangeKind = iota
	ChangeOrder
	ChangeSelection
	ChangeEditing
	ChangeViewport
	ChangeSettings
	ChangeTool
)

// Change describes one mutation. IDs lists affected elements when relevant.
type Change struct {
	Kind ChangeKind
	IDs  []string
}

// Listener is called after a mutation has been applied.
type Listener func(Change)

// Store holds the scene. All methods are safe for concurrent use; the paint
// goroutine reads through Snapshot while event handlers mutate.
type Store struct {
	mu sync.RWMutex

	elements map[string]*element.Element
	order    []string          // back-to-front paint order
	parents  map[string]string // child id -> group id
	selected map[string]bool
	editing  string

	viewport   Viewport
	grid       Grid
	snapToGrid bool
	showGuides bool

	tool         Tool
	shapeVariant string

	listeners    map[int]Listener
	nextListener int
}

// NewStore creates an empty scene with default viewport and grid.
func NewStore() *Store {
	return &Store{
		elements:     make(map[string]*element.Element),
		order:        make([]string, 0),
		parents:      make(map[string]string),
		selected:     make(map[string]bool),
		viewport:     DefaultViewport(),
		grid:         DefaultGrid(),
		showGuides:   true,
		tool:         ToolSelect,
		shapeVariant: "rectangle",
		listeners:    make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(kind ChangeKind, ids ...string) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	c := Change{Kind: kind, IDs: ids}
	for _, l := range listeners {
		l(c)
	}
}

// Element returns a copy of the element with the given id.
func (s *Store) Element(id string) (element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elements[id]
	if !ok {
		return element.Element{}, false
	}
	return e.Clone(), true
}

// Elements returns copies of all elements in paint order.
func (s *Store) Elements() []element.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]element.Element, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.elements[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Order returns the back-to-front paint order.
func (s *Store) Order() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Len returns the number of elements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// ParentOf returns the group that directly contains id.
func (s *Store) ParentOf(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parents[id]
	return p, ok
}

// TopLevel returns the outermost group containing id, or id itself.
func (s *Store) TopLevel(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topLevel(id)
}

func (s *Store) topLevel(id string) string {
	for {
		p, ok := s.parents[id]
		if !ok {
			return id
		}
		id = p
	}
}

// IsTopLevel reports whether id exists and has no parent group.
func (s *Store) IsTopLevel(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.elements[id]
	_, child := s.parents[id]
	return exists && !child
}

// Descendants returns every element nested under a group, depth first.
func (s *Store) Descendants(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.descendants(id)
}

func (s *Store) descendants(id string) []string {
	e, ok := s.elements[id]
	if !ok {
		return nil
	}
	var out []string
	for _, c := range e.Children() {
		out = append(out, c)
		out = append(out, s.descendants(c)...)
	}
	return out
}

// AddElement appends a new element to the scene and to the end of the paint
// order. Group members must already exist and must not belong to another group.
func (s *Store) AddElement(e element.Element) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidElement, err)
	}

	s.mu.Lock()
	if _, exists := s.elements[e.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("add %s: %w", e.ID, ErrDuplicateID)
	}
	for _, c := range e.Children() {
		if _, ok := s.elements[c]; !ok || c == e.ID {
			s.mu.Unlock()
			return fmt.Errorf("add group %s member %s: %w", e.ID, c, ErrNotFound)
		}
		if p, ok := s.parents[c]; ok {
			s.mu.Unlock()
			return fmt.Errorf("add group %s member %s (in %s): %w", e.ID, c, p, ErrAlreadyGrouped)
		}
	}

	el := e.Clone()
	s.elements[el.ID] = &el
	s.order = append(s.order, el.ID)
	for _, c := range el.Children() {
		s.parents[c] = el.ID
	}
	if el.Kind == element.KindGroup {
		s.refreshGroupBounds(el.ID)
	}
	s.mu.Unlock()

	s.emit(ChangeElements, e.ID)
	return nil
}

// UpdateElement applies mutate to a copy of the element and stores the
// result. The id and kind cannot change. Enclosing group bounds follow.
func (s *Store) UpdateElement(id string, mutate func(*element.Element)) error {
	s.mu.Lock()
	cur, ok := s.elements[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	next := cur.Clone()
	mutate(&next)
	if next.ID != cur.ID || next.Kind != cur.Kind {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrImmutableFields)
	}
	if next.Kind == element.KindGroup && !slices.Equal(next.Children(), cur.Children()) {
		s.mu.Unlock()
		return fmt.Errorf("update %s: membership changes go through Group/Ungroup: %w", id, ErrInvalidElement)
	}
	if next.Kind == element.KindLine && next.Line != nil {
		next.Width, next.Height = next.Line.X2-next.X, next.Line.Y2-next.Y
	}
	if err := next.Validate(); err != nil {
		// Stored anyway: the paint loop skips malformed elements rather than failing.
		log.WithField("element", id).Warnf("Scene: stored malformed element: %v", err)
	}
	s.elements[id] = &next
	s.refreshAncestors(id)
	s.mu.Unlock()

	s.emit(ChangeElements, id)
	return nil
}

// MoveElements translates the given elements by (dx, dy). Groups move with
// all of their members. Each element moves at most once.
func (s *Store) MoveElements(ids []string, dx, dy float64) error {
	s.mu.Lock()
	moved := make(map[string]bool)
	var touched []string
	for _, id := range ids {
		if _, ok := s.elements[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("move %s: %w", id, ErrNotFound)
		}
		for _, m := range append([]string{id}, s.descendants(id)...) {
			if moved[m] {
				continue
			}
			moved[m] = true
			s.elements[m].Translate(dx, dy)
			touched = append(touched, m)
		}
	}
	for _, id := range ids {
		s.refreshAncestors(id)
	}
	s.mu.Unlock()

	s.emit(ChangeElements, touched...)
	return nil
}

// ResizeElement sets the element's box. Group members are scaled
// proportionally into the new group box.
func (s *Store) ResizeElement(id string, box geometry.Rect) error {
	s.mu.Lock()
	e, ok := s.elements[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("resize %s: %w", id, ErrNotFound)
	}
	old := element.BoundingBox(e)
	touched := []string{id}
	if e.Kind == element.KindGroup {
		for _, d := range s.descendants(id) {
			m := s.elements[d]
			if m.Kind == element.KindGroup {
				continue
			}
			m.SetBox(geometry.ScaleRectWithin(element.BoundingBox(m), old, box))
			touched = append(touched, d)
		}
		s.refreshGroupBounds(id)
	} else {
		e.SetBox(box)
	}
	s.refreshAncestors(id)
	s.mu.Unlock()

	s.emit(ChangeElements, touched...)
	return nil
}

// DeleteElements removes elements from the scene, the paint order, the
// selection and from any group listing them. Deleting a group deletes its
// members. A group left without members is deleted as well. It returns the
// number of elements removed.
func (s *Store) DeleteElements(ids ...string) int {
	s.mu.Lock()
	doomed := make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.elements[id]; !ok {
			continue
		}
		doomed[id] = true
		for _, d := range s.descendants(id) {
			doomed[d] = true
		}
	}

	// Detach from surviving parents; empty parents cascade.
	for changed := true; changed; {
		changed = false
		for id := range doomed {
			p, ok := s.parents[id]
			if !ok || doomed[p] {
				continue
			}
			g := s.elements[p]
			g.Group.ChildIDs = slices.DeleteFunc(g.Group.ChildIDs, func(c string) bool { return c == id })
			delete(s.parents, id)
			if len(g.Group.ChildIDs) == 0 {
				doomed[p] = true
				changed = true
			}
		}
	}

	removed := make([]string, 0, len(doomed))
	for id := range doomed {
		delete(s.elements, id)
		delete(s.parents, id)
		delete(s.selected, id)
		if s.editing == id {
			s.editing = ""
		}
		removed = append(removed, id)
	}
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return doomed[id] })

	// Surviving groups that lost members shrink to what is left.
	for id := range s.elements {
		if s.elements[id].Kind == element.KindGroup {
			s.refreshGroupBounds(id)
		}
	}
	s.mu.Unlock()

	if len(removed) > 0 {
		s.emit(ChangeElements, removed...)
	}
	return len(removed)
}

// refreshAncestors recomputes the bounds of every group enclosing id.
// Caller holds the write lock.
func (s *Store) refreshAncestors(id string) {
	for p, ok := s.parents[id]; ok; p, ok = s.parents[p] {
		s.refreshGroupBounds(p)
	}
}

// refreshGroupBounds sets a group's box to the union of its members' boxes.
// Caller holds the write lock.
func (s *Store) refreshGroupBounds(id string) {
	g, ok := s.elements[id]
	if !ok || g.Kind != element.KindGroup {
		return
	}
	members := make([]element.Element, 0, len(g.Children()))
	for _, c := range g.Children() {
		m, ok := s.elements[c]
		if !ok {
			continue
		}
		if m.Kind == element.KindGroup {
			s.refreshGroupBounds(c)
		}
		members = append(members, *m)
	}
	if box, ok := element.CombinedBoundingBox(members); ok {
		g.X, g.Y, g.Width, g.Height = box.X, box.Y, box.Width, box.Height
	}
}
