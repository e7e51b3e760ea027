package plugins

import (
	"fmt"
	"sort"

	"composer/internal/domain"
	"composer/internal/service"
)

// ─────────────────────────────────────────────────────────────
// Component plugins: definition + preview, registered together
// ─────────────────────────────────────────────────────────────

// ComponentPlugin is one component kind: its catalog definition and the
// preview it renders on the canvas.
type ComponentPlugin interface {
	domain.PreviewRenderer
	Definition() domain.ComponentDefinition
}

// PreviewFunc lets a plain function serve as a domain.PreviewRenderer.
type PreviewFunc func(inst *domain.ComponentInstance, a domain.Adapter) domain.Element

func (f PreviewFunc) RenderPreview(inst *domain.ComponentInstance, a domain.Adapter) domain.Element {
	return f(inst, a)
}

type plugin struct {
	def     domain.ComponentDefinition
	preview PreviewFunc
}

func (p *plugin) Definition() domain.ComponentDefinition { return p.def }

func (p *plugin) RenderPreview(inst *domain.ComponentInstance, a domain.Adapter) domain.Element {
	return p.preview(inst, a)
}

// Register adds every plugin to reg. Panics on duplicate ids, like
// Registry.Register.
func Register(reg *service.Registry, ps ...ComponentPlugin) {
	for _, p := range ps {
		reg.Register(p.Definition(), p)
	}
}

// Builtins returns the stock component kinds.
func Builtins() []ComponentPlugin {
	return []ComponentPlugin{
		&plugin{def: buttonDefinition, preview: renderButton},
		&plugin{def: inputDefinition, preview: renderInput},
		&plugin{def: textDefinition, preview: renderText},
		&plugin{def: cardDefinition, preview: renderCard},
		&plugin{def: containerDefinition, preview: renderContainer},
	}
}

// RegisterBuiltins registers Builtins() into reg.
func RegisterBuiltins(reg *service.Registry) {
	Register(reg, Builtins()...)
}

// previewFor finds a built-in preview for a catalog definition: first by
// id, then by category.
func previewFor(def domain.ComponentDefinition) domain.PreviewRenderer {
	byCategory := map[string]domain.PreviewRenderer{}
	for _, p := range Builtins() {
		d := p.Definition()
		if d.ID == def.ID {
			return p
		}
		if _, ok := byCategory[d.Category]; !ok {
			byCategory[d.Category] = p
		}
	}
	return byCategory[def.Category]
}

// ── built-in definitions ────────────────────────────────────

var buttonDefinition = domain.ComponentDefinition{
	ID:       "button",
	Name:     "Button",
	Category: "basic",
	DefaultProps: map[string]any{
		"label":    "Button",
		"variant":  "primary",
		"disabled": false,
	},
	PropSchema: map[string]domain.PropSpec{
		"label":    {Type: "string", Default: "Button", Required: true},
		"variant":  {Type: "enum", Default: "primary", Options: []string{"primary", "secondary", "danger"}},
		"disabled": {Type: "boolean", Default: false},
	},
	EventSchema: map[string]domain.EventSpec{
		"click": {Description: "Fired when the button is pressed"},
	},
	StyleSchema: map[string]domain.PropSpec{
		"background": {Type: "color"},
		"color":      {Type: "color"},
	},
}

var inputDefinition = domain.ComponentDefinition{
	ID:       "input",
	Name:     "Text Input",
	Category: "form",
	DefaultProps: map[string]any{
		"placeholder": "Enter text...",
		"value":       "",
		"type":        "text",
	},
	PropSchema: map[string]domain.PropSpec{
		"placeholder": {Type: "string", Default: "Enter text..."},
		"value":       {Type: "string", Default: ""},
		"type":        {Type: "enum", Default: "text", Options: []string{"text", "password", "email", "number"}},
	},
	EventSchema: map[string]domain.EventSpec{
		"change": {Description: "Fired when the value changes", Params: []string{"value"}},
	},
}

var textDefinition = domain.ComponentDefinition{
	ID:       "text",
	Name:     "Text",
	Category: "basic",
	DefaultProps: map[string]any{
		"content": "Text",
		"level":   "p",
	},
	PropSchema: map[string]domain.PropSpec{
		"content": {Type: "string", Default: "Text", Required: true},
		"level":   {Type: "enum", Default: "p", Options: []string{"h1", "h2", "h3", "p", "span"}},
	},
	StyleSchema: map[string]domain.PropSpec{
		"fontSize": {Type: "number"},
		"color":    {Type: "color"},
	},
}

var cardDefinition = domain.ComponentDefinition{
	ID:       "card",
	Name:     "Card",
	Category: "layout",
	DefaultProps: map[string]any{
		"title": "Card",
		"body":  "",
	},
	PropSchema: map[string]domain.PropSpec{
		"title": {Type: "string", Default: "Card"},
		"body":  {Type: "string", Default: ""},
	},
}

var containerDefinition = domain.ComponentDefinition{
	ID:           "container",
	Name:         "Container",
	Category:     "layout",
	DefaultProps: map[string]any{"direction": "column"},
	PropSchema: map[string]domain.PropSpec{
		"direction": {Type: "enum", Default: "column", Options: []string{"row", "column"}},
	},
	StyleSchema: map[string]domain.PropSpec{
		"background": {Type: "color"},
		"padding":    {Type: "number"},
	},
}

// ── built-in previews ───────────────────────────────────────

func renderButton(inst *domain.ComponentInstance, a domain.Adapter) domain.Element {
	return a.CreateElement("button", map[string]any{
		"class":    "preview-button preview-button-" + propString(inst, "variant", "primary"),
		"disabled": inst.Props["disabled"] == true,
	}, []domain.Element{propString(inst, "label", "Button")})
}

func renderInput(inst *domain.ComponentInstance, a domain.Adapter) domain.Element {
	return a.CreateElement("input", map[string]any{
		"class":       "preview-input",
		"type":        propString(inst, "type", "text"),
		"placeholder": propString(inst, "placeholder", ""),
		"value":       propString(inst, "value", ""),
		"readonly":    true,
	}, nil)
}

func renderText(inst *domain.ComponentInstance, a domain.Adapter) domain.Element {
	tag := propString(inst, "level", "p")
	return a.CreateElement(tag, map[string]any{"class": "preview-text"},
		[]domain.Element{propString(inst, "content", "")})
}

func renderCard(inst *domain.ComponentInstance, a domain.Adapter) domain.Element {
	return a.CreateElement("div", map[string]any{"class": "preview-card"}, []domain.Element{
		a.CreateElement("div", map[string]any{"class": "preview-card-title"},
			[]domain.Element{propString(inst, "title", "")}),
		a.CreateElement("div", map[string]any{"class": "preview-card-body"},
			[]domain.Element{propString(inst, "body", "")}),
	})
}

// renderContainer draws only the frame; the renderer appends the children.
func renderContainer(inst *domain.ComponentInstance, a domain.Adapter) domain.Element {
	return a.CreateElement("div", map[string]any{
		"class": "preview-container preview-container-" + propString(inst, "direction", "column"),
	}, nil)
}

func propString(inst *domain.ComponentInstance, key, fallback string) string {
	v, ok := inst.Props[key]
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// BuiltinIDs returns the ids of the stock kinds, sorted.
func BuiltinIDs() []string {
	var ids []string
	for _, p := range Builtins() {
		ids = append(ids, p.Definition().ID)
	}
	sort.Strings(ids)
	return ids
}
