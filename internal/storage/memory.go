package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"composer/internal/codec"
	"composer/internal/domain"
)

// MemoryTemplateStore keeps templates in a map. Templates are deep-copied
// in and out with canonical props, so values read back exactly as from the
// SQL and bolt stores.
type MemoryTemplateStore struct {
	mu        sync.RWMutex
	templates map[string]domain.Template
}

func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{templates: make(map[string]domain.Template)}
}

func (s *MemoryTemplateStore) SaveTemplate(_ context.Context, t *domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = cloneTemplate(*t)
	return nil
}

func (s *MemoryTemplateStore) GetTemplate(_ context.Context, id string) (*domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("get template %s: %w", id, domain.ErrTemplateNotFound)
	}
	out := cloneTemplate(t)
	return &out, nil
}

func (s *MemoryTemplateStore) ListTemplates(_ context.Context) ([]domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, cloneTemplate(t))
	}
	sortTemplates(out)
	return out, nil
}

func (s *MemoryTemplateStore) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.templates, id)
	return nil
}

func (s *MemoryTemplateStore) Close() error { return nil }

// sortTemplates orders by creation time, then id.
func sortTemplates(ts []domain.Template) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.Before(ts[j].CreatedAt)
		}
		return ts[i].ID < ts[j].ID
	})
}

func cloneTemplate(t domain.Template) domain.Template {
	t.Components = codec.CanonicalComponents(t.Components)
	return t
}
