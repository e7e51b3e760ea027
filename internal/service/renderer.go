package service

import (
	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Renderer: instance tree → adapter element tree
// ─────────────────────────────────────────────────────────────

// Renderer walks the instance tree and asks the adapter for elements. Each
// kind renders its own preview through the PreviewRenderer registered next
// to its definition.
type Renderer struct {
	registry *Registry
	adapter  domain.Adapter
}

// NewRenderer creates a Renderer without an adapter.
func NewRenderer(registry *Registry) *Renderer {
	return &Renderer{registry: registry}
}

// SetAdapter installs the rendering backend.
func (r *Renderer) SetAdapter(a domain.Adapter) {
	r.adapter = a
}

// Render produces the canvas element. It fails with domain.ErrNoAdapter
// before touching the adapter or the tree.
func (r *Renderer) Render(roots []*domain.ComponentInstance, selected []string) (domain.Element, error) {
	if r.adapter == nil {
		return nil, domain.ErrNoAdapter
	}
	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	sole := ""
	if len(selected) == 1 {
		sole = selected[0]
	}

	children := make([]domain.Element, 0, len(roots))
	for _, inst := range roots {
		children = append(children, r.renderInstance(inst, sel, sole))
	}
	return r.adapter.CreateElement("div", map[string]any{
		"class": "composer-canvas",
	}, children), nil
}

func (r *Renderer) renderInstance(inst *domain.ComponentInstance, sel map[string]bool, sole string) domain.Element {
	children := []domain.Element{r.preview(inst)}
	for _, child := range inst.Children {
		children = append(children, r.renderInstance(child, sel, sole))
	}
	if inst.ID == sole {
		for _, h := range domain.Handles {
			children = append(children, r.adapter.CreateElement("div", map[string]any{
				"class":             "resize-handle resize-handle-" + string(h),
				"data-handle":       string(h),
				"data-component-id": inst.ID,
			}, nil))
		}
	}

	class := "composer-component"
	if sel[inst.ID] {
		class += " selected"
	}
	return r.adapter.CreateElement("div", map[string]any{
		"class":              class,
		"data-component-id":  inst.ID,
		"data-definition-id": inst.DefinitionID(),
		"style": map[string]any{
			"position": "absolute",
			"left":     inst.Position.X,
			"top":      inst.Position.Y,
			"width":    inst.Size.Width,
			"height":   inst.Size.Height,
		},
	}, children)
}

func (r *Renderer) preview(inst *domain.ComponentInstance) domain.Element {
	if p := r.registry.Preview(inst.DefinitionID()); p != nil {
		return p.RenderPreview(inst, r.adapter)
	}
	label := inst.DefinitionID()
	if inst.Definition != nil && inst.Definition.Name != "" {
		label = inst.Definition.Name
	}
	return r.adapter.CreateElement("div", map[string]any{
		"class": "component-placeholder",
	}, []domain.Element{label})
}
