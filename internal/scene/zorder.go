package scene

import (
	"fmt"
	"slices"
)

// Z-order commands permute the paint order. A group moves together with
// all of its members, keeping their relative order.

// BringToFront moves the elements to the end of the paint order.
func (s *Store) BringToFront(ids ...string) error {
	return s.reorder(ids, func(order []string, m map[string]bool) []string {
		front := make([]string, 0, len(order))
		back := make([]string, 0, len(m))
		for _, id := range order {
			if m[id] {
				back = append(back, id)
			} else {
				front = append(front, id)
			}
		}
		return append(front, back...)
	})
}

// SendToBack moves the elements to the start of the paint order.
func (s *Store) SendToBack(ids ...string) error {
	return s.reorder(ids, func(order []string, m map[string]bool) []string {
		moved := make([]string, 0, len(m))
		rest := make([]string, 0, len(order))
		for _, id := range order {
			if m[id] {
				moved = append(moved, id)
			} else {
				rest = append(rest, id)
			}
		}
		return append(moved, rest...)
	})
}

// BringForward moves the elements one step towards the front.
func (s *Store) BringForward(ids ...string) error {
	return s.reorder(ids, func(order []string, m map[string]bool) []string {
		for i := len(order) - 2; i >= 0; i-- {
			if m[order[i]] && !m[order[i+1]] {
				order[i], order[i+1] = order[i+1], order[i]
			}
		}
		return order
	})
}

// SendBackward moves the elements one step towards the back.
func (s *Store) SendBackward(ids ...string) error {
	return s.reorder(ids, func(order []string, m map[string]bool) []string {
		for i := 1; i < len(order); i++ {
			if m[order[i]] && !m[order[i-1]] {
				order[i], order[i-1] = order[i-1], order[i]
			}
		}
		return order
	})
}

func (s *Store) reorder(ids []string, permute func([]string, map[string]bool) []string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	members := make(map[string]bool)
	for _, id := range ids {
		if _, ok := s.elements[id]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("reorder %s: %w", id, ErrNotFound)
		}
		members[id] = true
		for _, d := range s.descendants(id) {
			members[d] = true
		}
	}
	next := permute(slices.Clone(s.order), members)
	changed := !slices.Equal(next, s.order)
	s.order = next
	s.mu.Unlock()

	if changed {
		s.emit(ChangeOrder, ids...)
	}
	return nil
}
