package scene

import (
	"fmt"
	"slices"
)

// Selection always holds top-level elements. Selecting a group member
// selects the outermost group instead.

// SelectedIDs returns the selection in paint order.
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedInOrder()
}

func (s *Store) selectedInOrder() []string {
	out := make([]string, 0, len(s.selected))
	for _, id := range s.order {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// IsSelected reports whether id is selected.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// SelectElement selects the top-level owner of id. Without additive the
// previous selection is replaced.
func (s *Store) SelectElement(id string, additive bool) error {
	s.mu.Lock()
	if _, ok := s.elements[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("select %s: %w", id, ErrNotFound)
	}
	if !additive {
		clear(s.selected)
	}
	s.selected[s.topLevel(id)] = true
	s.mu.Unlock()

	s.emit(ChangeSelection, id)
	return nil
}

// ToggleSelection flips the selection state of id's top-level owner.
func (s *Store) ToggleSelection(id string) error {
	s.mu.Lock()
	if _, ok := s.elements[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("toggle %s: %w", id, ErrNotFound)
	}
	top := s.topLevel(id)
	if s.selected[top] {
		delete(s.selected, top)
	} else {
		s.selected[top] = true
	}
	s.mu.Unlock()

	s.emit(ChangeSelection, id)
	return nil
}

// SelectElements replaces the selection with the top-level owners of ids.
// Unknown ids are ignored.
func (s *Store) SelectElements(ids []string) {
	s.mu.Lock()
	clear(s.selected)
	s.addToSelection(ids)
	s.mu.Unlock()

	s.emit(ChangeSelection, ids...)
}

// AddToSelection adds the top-level owners of ids to the selection.
func (s *Store) AddToSelection(ids []string) {
	s.mu.Lock()
	s.addToSelection(ids)
	s.mu.Unlock()

	s.emit(ChangeSelection, ids...)
}

func (s *Store) addToSelection(ids []string) {
	for _, id := range ids {
		if _, ok := s.elements[id]; ok {
			s.selected[s.topLevel(id)] = true
		}
	}
}

// SelectAll selects every top-level element.
func (s *Store) SelectAll() {
	s.mu.Lock()
	clear(s.selected)
	for _, id := range s.order {
		if _, child := s.parents[id]; !child {
			s.selected[id] = true
		}
	}
	s.mu.Unlock()

	s.emit(ChangeSelection)
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	empty := len(s.selected) == 0
	clear(s.selected)
	s.mu.Unlock()

	if !empty {
		s.emit(ChangeSelection)
	}
}

// EditingID returns the element under inline text edit, or "".
func (s *Store) EditingID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editing
}

// SetEditingElementID marks id as being edited inline. An empty id ends
// editing.
func (s *Store) SetEditingElementID(id string) error {
	s.mu.Lock()
	if id != "" {
		if _, ok := s.elements[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("edit %s: %w", id, ErrNotFound)
		}
	}
	s.editing = id
	s.mu.Unlock()

	s.emit(ChangeEditing, id)
	return nil
}

// TopLevelIDs returns the ids of elements without a parent group, in paint
// order.
func (s *Store) TopLevelIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.DeleteFunc(slices.Clone(s.order), func(id string) bool {
		_, child := s.parents[id]
		return child
	})
}
