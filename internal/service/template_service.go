package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"composer/internal/codec"
	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Template Manager: persistence of canvas snapshots
// ─────────────────────────────────────────────────────────────

// TemplateManager stores and retrieves templates. Turning live instances
// into serialized trees and back is done by SerializeComponents and
// DeserializeComponents; the Composer combines both.
type TemplateManager struct {
	store domain.TemplateStore
	now   func() time.Time
}

// NewTemplateManager creates a TemplateManager over store.
func NewTemplateManager(store domain.TemplateStore) *TemplateManager {
	return &TemplateManager{store: store, now: time.Now}
}

// Create stores a new template under a generated id.
func (m *TemplateManager) Create(ctx context.Context, name, description string, comps []domain.SerializedComponent) (*domain.Template, error) {
	now := m.now()
	t := &domain.Template{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Components:  comps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.store.SaveTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	log.Printf("[TEMPLATES] saved %q (%s), %d root component(s)", name, t.ID, len(comps))
	return t, nil
}

// Upsert stores comps under a fixed id, keeping the original CreatedAt when
// the template already exists.
func (m *TemplateManager) Upsert(ctx context.Context, id, name, description string, comps []domain.SerializedComponent) (*domain.Template, error) {
	now := m.now()
	t := &domain.Template{
		ID:          id,
		Name:        name,
		Description: description,
		Components:  comps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	prev, err := m.store.GetTemplate(ctx, id)
	switch {
	case err == nil:
		t.CreatedAt = prev.CreatedAt
	case !errors.Is(err, domain.ErrTemplateNotFound):
		return nil, fmt.Errorf("upsert template %s: %w", id, err)
	}
	if err := m.store.SaveTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("upsert template %s: %w", id, err)
	}
	return t, nil
}

// Get returns the template with the given id.
func (m *TemplateManager) Get(ctx context.Context, id string) (*domain.Template, error) {
	t, err := m.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	return t, nil
}

// List returns summaries of every stored template.
func (m *TemplateManager) List(ctx context.Context) ([]domain.TemplateSummary, error) {
	ts, err := m.store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]domain.TemplateSummary, len(ts))
	for i := range ts {
		out[i] = ts[i].Summary()
	}
	return out, nil
}

// Delete removes a template. Deleting an unknown id is not an error.
func (m *TemplateManager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteTemplate(ctx, id)
}

// Export encodes a stored template.
func (m *TemplateManager) Export(ctx context.Context, id string, f codec.Format) ([]byte, error) {
	t, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return codec.Encode(t, f)
}

// Import decodes a template and stores it. A template without an id gets
// fallbackID, or a generated one when that is empty too.
func (m *TemplateManager) Import(ctx context.Context, data []byte, f codec.Format, fallbackID string) (*domain.Template, error) {
	t, err := codec.Decode(data, f)
	if err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = fallbackID
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := m.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if err := m.store.SaveTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("import template: %w", err)
	}
	log.Printf("[TEMPLATES] imported %q (%s)", t.Name, t.ID)
	return t, nil
}

// ── Serialization ──────────────────────────────────────────

// SerializeComponents converts instance trees into their persisted form,
// dropping parent back-references. Props and styles are shallow-copied.
func SerializeComponents(roots []*domain.ComponentInstance) []domain.SerializedComponent {
	out := make([]domain.SerializedComponent, 0, len(roots))
	for _, inst := range roots {
		out = append(out, serializeComponent(inst))
	}
	return out
}

func serializeComponent(inst *domain.ComponentInstance) domain.SerializedComponent {
	return domain.SerializedComponent{
		ID:           inst.ID,
		DefinitionID: inst.DefinitionID(),
		Position:     inst.Position,
		Size:         inst.Size,
		Props:        copyProps(inst.Props),
		Styles:       copyProps(inst.Styles),
		Children:     SerializeComponents(inst.Children),
	}
}

// DeserializeComponents rebuilds instance trees, resolving every definition
// against reg. Any unresolvable definition or duplicate id fails the whole
// call; nothing partial is returned.
func DeserializeComponents(reg *Registry, comps []domain.SerializedComponent) ([]*domain.ComponentInstance, error) {
	seen := make(map[string]bool)
	return deserializeLevel(reg, comps, nil, seen)
}

func deserializeLevel(reg *Registry, comps []domain.SerializedComponent, parent *domain.ComponentInstance, seen map[string]bool) ([]*domain.ComponentInstance, error) {
	out := make([]*domain.ComponentInstance, 0, len(comps))
	for _, sc := range comps {
		def, err := reg.Resolve(sc.DefinitionID)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", sc.ID, err)
		}
		if seen[sc.ID] {
			return nil, fmt.Errorf("duplicate component id %q", sc.ID)
		}
		seen[sc.ID] = true
		inst := &domain.ComponentInstance{
			ID:         sc.ID,
			Definition: def,
			Position:   sc.Position,
			Size:       sc.Size,
			Props:      copyProps(sc.Props),
			Styles:     copyProps(sc.Styles),
			Parent:     parent,
		}
		children, err := deserializeLevel(reg, sc.Children, inst, seen)
		if err != nil {
			return nil, err
		}
		inst.Children = children
		out = append(out, inst)
	}
	return out, nil
}
