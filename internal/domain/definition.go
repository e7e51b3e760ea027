package domain

// PropSpec describes one entry of a definition's prop or style schema.
type PropSpec struct {
	Type     string   `json:"type" yaml:"type"`
	Default  any      `json:"default,omitempty" yaml:"default,omitempty"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// EventSpec describes an event a component kind can raise.
type EventSpec struct {
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// ComponentDefinition is an immutable catalog entry. Instances share the
// same pointer and must never write through it.
type ComponentDefinition struct {
	ID           string               `json:"id" yaml:"id"`
	Name         string               `json:"name" yaml:"name"`
	Category     string               `json:"category" yaml:"category"`
	DefaultProps map[string]any       `json:"defaultProps" yaml:"defaultProps"`
	PropSchema   map[string]PropSpec  `json:"propSchema" yaml:"propSchema"`
	EventSchema  map[string]EventSpec `json:"eventSchema,omitempty" yaml:"eventSchema,omitempty"`
	StyleSchema  map[string]PropSpec  `json:"styleSchema,omitempty" yaml:"styleSchema,omitempty"`
}
