package service

import (
	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Instance Store: every live instance, indexed and ordered
// ─────────────────────────────────────────────────────────────

// InstanceStore owns the instance tree of one composer. Roots keep their
// insertion order; children are ordered by their parent's Children slice.
// Every instance of the tree, at any depth, is indexed by id.
type InstanceStore struct {
	byID  map[string]*domain.ComponentInstance
	roots []*domain.ComponentInstance
}

// NewInstanceStore creates an empty store.
func NewInstanceStore() *InstanceStore {
	return &InstanceStore{byID: make(map[string]*domain.ComponentInstance)}
}

// Get returns the instance with the given id.
func (s *InstanceStore) Get(id string) (*domain.ComponentInstance, bool) {
	inst, ok := s.byID[id]
	return inst, ok
}

// Has reports whether id is in the store.
func (s *InstanceStore) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of instances at any depth.
func (s *InstanceStore) Len() int {
	return len(s.byID)
}

// Add appends inst (and its subtree) as a root.
func (s *InstanceStore) Add(inst *domain.ComponentInstance) {
	inst.Parent = nil
	s.roots = append(s.roots, inst)
	s.index(inst)
}

// AddChild appends inst (and its subtree) to parent's children.
func (s *InstanceStore) AddChild(parent, inst *domain.ComponentInstance) {
	inst.Parent = parent
	parent.Children = append(parent.Children, inst)
	s.index(inst)
}

func (s *InstanceStore) index(inst *domain.ComponentInstance) {
	inst.Walk(func(n *domain.ComponentInstance) {
		s.byID[n.ID] = n
	})
}

// Subtree returns the ids of id and all its descendants, parents first.
// It returns nil when id is absent.
func (s *InstanceStore) Subtree(id string) []string {
	inst, ok := s.byID[id]
	if !ok {
		return nil
	}
	var ids []string
	inst.Walk(func(n *domain.ComponentInstance) {
		ids = append(ids, n.ID)
	})
	return ids
}

// Remove detaches id and its descendants and returns their ids, parents
// first. Removing an absent id returns nil.
func (s *InstanceStore) Remove(id string) []string {
	inst, ok := s.byID[id]
	if !ok {
		return nil
	}
	ids := s.Subtree(id)
	if inst.Parent != nil {
		inst.Parent.RemoveChild(id)
	} else {
		for i, r := range s.roots {
			if r.ID == id {
				s.roots = append(s.roots[:i], s.roots[i+1:]...)
				break
			}
		}
	}
	for _, rid := range ids {
		delete(s.byID, rid)
	}
	return ids
}

// Roots returns the top-level instances in insertion order.
func (s *InstanceStore) Roots() []*domain.ComponentInstance {
	out := make([]*domain.ComponentInstance, len(s.roots))
	copy(out, s.roots)
	return out
}

// All returns every instance depth-first, parents before children.
func (s *InstanceStore) All() []*domain.ComponentInstance {
	out := make([]*domain.ComponentInstance, 0, len(s.byID))
	for _, r := range s.roots {
		r.Walk(func(n *domain.ComponentInstance) {
			out = append(out, n)
		})
	}
	return out
}

// Replace discards the current content and installs roots.
func (s *InstanceStore) Replace(roots []*domain.ComponentInstance) {
	s.byID = make(map[string]*domain.ComponentInstance)
	s.roots = nil
	for _, r := range roots {
		s.Add(r)
	}
}
