package domain

// Event names emitted by the composer.
const (
	EventComponentAdded            = "componentAdded"
	EventComponentRemoved          = "componentRemoved"
	EventSelectionChanged          = "selectionChanged"
	EventComponentPropsUpdated     = "componentPropsUpdated"
	EventComponentStylesUpdated    = "componentStylesUpdated"
	EventComponentMoved            = "componentMoved"
	EventComponentResized          = "componentResized"
	EventComponentTransformUpdated = "componentTransformUpdated"
	EventRenderUpdate              = "renderUpdate"
	EventTemplateSaved             = "templateSaved"
	EventTemplateLoaded            = "templateLoaded"
	EventTemplateImported          = "templateImported"
	EventInteractionCancelled      = "interactionCancelled"
	EventHistoryChanged            = "historyChanged"
)

// SelectionChanged is the payload of EventSelectionChanged.
type SelectionChanged struct {
	SelectedIDs []string `json:"selectedIds"`
}

// ComponentMoved is the payload of EventComponentMoved.
type ComponentMoved struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
}

// ComponentResized is the payload of EventComponentResized.
type ComponentResized struct {
	ID       string   `json:"id"`
	Size     Size     `json:"size"`
	Position Position `json:"position"`
}

// ComponentTransform is the payload of EventComponentTransformUpdated.
type ComponentTransform struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// ComponentUpdate is the payload of the props and styles update events.
type ComponentUpdate struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// InteractionCancelled is the payload of EventInteractionCancelled.
type InteractionCancelled struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// HistoryChanged is the payload of EventHistoryChanged.
type HistoryChanged struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}
