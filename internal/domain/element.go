package domain

// Element is an opaque value produced by a framework adapter. The composer
// never inspects it; it only passes it back as a child.
type Element any

// Adapter is the rendering backend (DOM, React, Vue, Svelte...).
type Adapter interface {
	CreateElement(tag string, props map[string]any, children []Element) Element
}

// AdapterFunc lets a plain function serve as an Adapter.
type AdapterFunc func(tag string, props map[string]any, children []Element) Element

func (f AdapterFunc) CreateElement(tag string, props map[string]any, children []Element) Element {
	return f(tag, props, children)
}

// PreviewRenderer is the per-kind render capability registered alongside a
// definition.
type PreviewRenderer interface {
	RenderPreview(inst *ComponentInstance, adapter Adapter) Element
}
