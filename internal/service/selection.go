package service

// Selection is the ordered set of selected instance ids.
type Selection struct {
	ids []string
}

// Select applies the composer's selection policy: without multiSelect the
// set is cleared first, then membership of id is toggled. A single click on
// the only selected instance therefore keeps it selected, while a modifier
// click on a selected instance removes it.
func (s *Selection) Select(id string, multiSelect bool) {
	if !multiSelect {
		s.Clear()
	}
	s.Toggle(id)
}

// Toggle adds id if absent and removes it if present.
func (s *Selection) Toggle(id string) {
	if s.Remove(id) {
		return
	}
	s.ids = append(s.ids, id)
}

// Remove drops the given ids and reports whether any was present.
func (s *Selection) Remove(ids ...string) bool {
	removed := false
	for _, id := range ids {
		for i, cur := range s.ids {
			if cur == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				removed = true
				break
			}
		}
	}
	return removed
}

// Clear empties the set.
func (s *Selection) Clear() {
	s.ids = nil
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	for _, cur := range s.ids {
		if cur == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}
