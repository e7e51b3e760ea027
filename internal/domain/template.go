package domain

import (
	"context"
	"time"
)

// SerializedComponent is the persisted form of an instance. The parent
// back-reference is omitted; nesting is carried by Children.
type SerializedComponent struct {
	ID           string                `json:"id" msgpack:"id"`
	DefinitionID string                `json:"definitionId" msgpack:"definitionId"`
	Position     Position              `json:"position" msgpack:"position"`
	Size         Size                  `json:"size" msgpack:"size"`
	Props        map[string]any        `json:"props" msgpack:"props"`
	Styles       map[string]any        `json:"styles" msgpack:"styles"`
	Children     []SerializedComponent `json:"children" msgpack:"children"`
}

// Template is a named snapshot of the whole canvas.
type Template struct {
	ID          string                `json:"id" msgpack:"id"`
	Name        string                `json:"name" msgpack:"name"`
	Description string                `json:"description" msgpack:"description"`
	Components  []SerializedComponent `json:"components" msgpack:"components"`
	CreatedAt   time.Time             `json:"createdAt" msgpack:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt" msgpack:"updatedAt"`
}

// TemplateSummary is a template without its component tree.
type TemplateSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Components  int       `json:"components"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary returns t's summary.
func (t *Template) Summary() TemplateSummary {
	return TemplateSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Components:  len(t.Components),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TemplateStore persists templates. SaveTemplate upserts by ID. GetTemplate
// returns an error wrapping ErrTemplateNotFound for unknown ids.
type TemplateStore interface {
	SaveTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	DeleteTemplate(ctx context.Context, id string) error
	Close() error
}
