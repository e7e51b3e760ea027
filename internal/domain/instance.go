package domain

// ComponentInstance is a placed, mutable node on the canvas.
type ComponentInstance struct {
	ID         string
	Definition *ComponentDefinition
	Position   Position
	Size       Size
	Props      map[string]any
	Styles     map[string]any
	Children   []*ComponentInstance
	Parent     *ComponentInstance
}

// DefinitionID returns the id of the definition the instance was created from.
func (c *ComponentInstance) DefinitionID() string {
	if c.Definition == nil {
		return ""
	}
	return c.Definition.ID
}

// Bounds returns the instance's bounding box.
func (c *ComponentInstance) Bounds() Rect {
	return Rect{Position: c.Position, Size: c.Size}
}

// Walk visits c and its descendants depth-first, parents before children.
func (c *ComponentInstance) Walk(fn func(*ComponentInstance)) {
	fn(c)
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

// RemoveChild detaches the child with the given id. It reports whether a
// child was removed.
func (c *ComponentInstance) RemoveChild(id string) bool {
	for i, child := range c.Children {
		if child.ID == id {
			c.Children = append(c.Children[:i], c.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// InstanceView is the JSON-friendly shape of an instance handed to hosts
// and agents; it carries the parent id instead of a back-reference.
type InstanceView struct {
	ID           string         `json:"id"`
	DefinitionID string         `json:"definitionId"`
	ParentID     string         `json:"parentId,omitempty"`
	Position     Position       `json:"position"`
	Size         Size           `json:"size"`
	Props        map[string]any `json:"props"`
	Styles       map[string]any `json:"styles"`
	Children     []InstanceView `json:"children,omitempty"`
}

// Bounds returns the bounding box captured in the view.
func (v InstanceView) Bounds() Rect {
	return Rect{Position: v.Position, Size: v.Size}
}

// View builds a detached InstanceView of c and its subtree. Props and
// styles are copied.
func (c *ComponentInstance) View() InstanceView {
	v := InstanceView{
		ID:           c.ID,
		DefinitionID: c.DefinitionID(),
		Position:     c.Position,
		Size:         c.Size,
		Props:        cloneValues(c.Props),
		Styles:       cloneValues(c.Styles),
	}
	if c.Parent != nil {
		v.ParentID = c.Parent.ID
	}
	for _, child := range c.Children {
		v.Children = append(v.Children, child.View())
	}
	return v
}

func cloneValues(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
