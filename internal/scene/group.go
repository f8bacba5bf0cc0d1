package scene

import (
	"fmt"
	"slices"

	"plm-whiteboard/internal/element"

	log "github.com/sirupsen/logrus"
)

// Group wraps the top-level owners of ids into a new group placed in the
// paint order directly after its last member. The members keep their paint
// positions; the group itself paints nothing. Members are listed in paint
// order.
func (s *Store) Group(ids []string) (string, error) {
	s.mu.Lock()
	want := make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.elements[id]; !ok {
			s.mu.Unlock()
			return "", fmt.Errorf("group member %s: %w", id, ErrNotFound)
		}
		want[s.topLevel(id)] = true
	}
	if len(want) < 2 {
		s.mu.Unlock()
		return "", ErrGroupTooSmall
	}

	members := make([]string, 0, len(want))
	boxes := make([]element.Element, 0, len(want))
	last := len(s.order) - 1
	for i, id := range s.order {
		if want[id] {
			members = append(members, id)
			boxes = append(boxes, *s.elements[id])
			last = i
		}
	}
	bounds, _ := element.CombinedBoundingBox(boxes)

	g := element.NewGroup(members, bounds)
	s.elements[g.ID] = &g
	s.order = slices.Insert(s.order, last+1, g.ID)
	for _, m := range members {
		s.parents[m] = g.ID
		delete(s.selected, m)
	}
	s.selected[g.ID] = true
	s.mu.Unlock()

	log.WithField("group", g.ID).Debugf("Scene: grouped %d elements", len(members))
	s.emit(ChangeElements, g.ID)
	return g.ID, nil
}

// Ungroup removes the group element and promotes its members to the group's
// parent (or top level). A selected group is replaced by its members in the
// selection. It returns the promoted member ids.
func (s *Store) Ungroup(id string) ([]string, error) {
	s.mu.Lock()
	g, ok := s.elements[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("ungroup %s: %w", id, ErrNotFound)
	}
	if g.Kind != element.KindGroup {
		s.mu.Unlock()
		return nil, fmt.Errorf("ungroup %s: %w", id, ErrNotGroup)
	}

	members := append([]string(nil), g.Children()...)
	parent, nested := s.parents[id]
	for _, m := range members {
		if nested {
			s.parents[m] = parent
		} else {
			delete(s.parents, m)
		}
	}
	if nested {
		pg := s.elements[parent]
		var next []string
		for _, c := range pg.Group.ChildIDs {
			if c == id {
				next = append(next, members...)
				continue
			}
			next = append(next, c)
		}
		pg.Group.ChildIDs = next
	}

	wasSelected := s.selected[id]
	delete(s.elements, id)
	delete(s.parents, id)
	delete(s.selected, id)
	if s.editing == id {
		s.editing = ""
	}
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if wasSelected && !nested {
		for _, m := range members {
			s.selected[m] = true
		}
	} else if wasSelected {
		s.selected[s.topLevel(parent)] = true
	}
	s.mu.Unlock()

	s.emit(ChangeElements, append([]string{id}, members...)...)
	return members, nil
}
