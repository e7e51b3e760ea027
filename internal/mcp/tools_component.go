package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"composer/internal/domain"
)

func (s *Server) registerComponentTools() {
	// ── list_definitions ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_definitions",
		mcp.WithDescription("List the component kinds that can be placed on the canvas, with their prop schemas"),
		mcp.WithString("category", mcp.Description("Filter by category (optional)")),
	), s.handleListDefinitions)

	// ── get_canvas ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_canvas",
		mcp.WithDescription("Return every component on the canvas, the current selection and the active interaction"),
	), s.handleGetCanvas)

	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Add a component to the canvas. Position is auto-calculated if not provided. The new component becomes the selection."),
		mcp.WithString("definitionId", mcp.Description("Component kind, see list_definitions"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithString("parentId", mcp.Description("Place inside this component instead of at the root (optional)")),
	), s.handleAddComponent)

	// ── remove_component (destructive) ─────────────────
	s.mcp.AddTool(mcp.NewTool("remove_component",
		mcp.WithDescription("Remove a component and everything nested inside it"),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveComponent)

	// ── select_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_component",
		mcp.WithDescription("Toggle a component in the selection. Without multiSelect the previous selection is cleared first. Omit componentId to clear the selection."),
		mcp.WithString("componentId", mcp.Description("Component ID (optional)")),
		mcp.WithBoolean("multiSelect", mcp.Description("Keep the current selection (default false)")),
	), s.handleSelectComponent)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component to an absolute position"),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveComponent)

	// ── resize_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_component",
		mcp.WithDescription("Resize a component. Each side is floored at the minimum size."),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
	), s.handleResizeComponent)

	// ── update_component_props ─────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_component_props",
		mcp.WithDescription("Merge props into a component. Keys not given are kept."),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("props", mcp.Description(`JSON object of props, e.g. {"label":"Save"}`), mcp.Required()),
	), s.handleUpdateComponentProps)

	// ── update_component_styles ────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_component_styles",
		mcp.WithDescription("Merge styles into a component. Keys not given are kept."),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("styles", mcp.Description(`JSON object of styles, e.g. {"background":"#fff"}`), mcp.Required()),
	), s.handleUpdateComponentStyles)

	// ── arrange_components ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_components",
		mcp.WithDescription("Auto-arrange the root components in rows"),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 0)")),
	), s.handleArrangeComponents)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last committed change to the canvas"),
	), s.handleUndo)
	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change"),
	), s.handleRedo)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListDefinitions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	defs := []*domain.ComponentDefinition{}
	for _, d := range s.composer.Registry().Definitions() {
		if category == "" || d.Category == category {
			defs = append(defs, d)
		}
	}
	return jsonResult(defs)
}

type canvasState struct {
	Components []domain.InstanceView `json:"components"`
	Selected   []string              `json:"selected"`
	Session    any                   `json:"session,omitempty"`
	CanUndo    bool                  `json:"canUndo"`
	CanRedo    bool                  `json:"canRedo"`
}

func (s *Server) canvas() canvasState {
	st := canvasState{
		Components: s.composer.Views(),
		Selected:   s.composer.SelectedComponentIDs(),
		CanUndo:    s.composer.CanUndo(),
		CanRedo:    s.composer.CanRedo(),
	}
	if info, ok := s.composer.ActiveSession(); ok {
		st.Session = info
	}
	return st
}

func (s *Server) handleGetCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.canvas())
}

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	defID := req.GetString("definitionId", "")
	if defID == "" {
		return nil, fmt.Errorf("definitionId is required")
	}
	parentID := req.GetString("parentId", "")

	// Auto-layout if position not provided
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	pos := domain.Position{X: x, Y: y}
	if (!hasX || !hasY) && parentID == "" {
		var existing []domain.Rect
		for _, v := range s.composer.Views() {
			existing = append(existing, v.Bounds())
		}
		pos = s.layout.NextPosition(existing, s.composer.Options().DefaultSize)
	}

	var inst *domain.ComponentInstance
	var err error
	if parentID != "" {
		inst, err = s.composer.AddChildComponent(parentID, defID, pos)
	} else {
		inst, err = s.composer.AddComponent(defID, pos)
	}
	if err != nil {
		return nil, err
	}
	return s.viewOf(inst.ID)
}

func (s *Server) handleRemoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inst, err := s.getComponentForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	s.composer.RemoveComponent(inst.ID)
	return textResult(fmt.Sprintf("Component %s removed", inst.ID)), nil
}

func (s *Server) handleSelectComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("componentId", "")
	if id == "" {
		s.composer.ClearSelection()
	} else {
		s.composer.SelectComponent(id, req.GetBool("multiSelect", false))
	}
	return jsonResult(map[string]any{"selected": s.composer.SelectedComponentIDs()})
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	inst, err := s.getComponentForTool(args)
	if err != nil {
		return nil, err
	}
	pos := domain.Position{
		X: getFloat(args, "x", inst.Position.X),
		Y: getFloat(args, "y", inst.Position.Y),
	}
	s.composer.MoveComponent(inst.ID, pos)
	return textResult(fmt.Sprintf("Component %s moved to (%.0f, %.0f)", inst.ID, pos.X, pos.Y)), nil
}

func (s *Server) handleResizeComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	inst, err := s.getComponentForTool(args)
	if err != nil {
		return nil, err
	}
	size := domain.Size{
		Width:  getFloat(args, "width", inst.Size.Width),
		Height: getFloat(args, "height", inst.Size.Height),
	}
	s.composer.ResizeComponent(inst.ID, size)
	return s.viewOf(inst.ID)
}

func (s *Server) handleUpdateComponentProps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	inst, err := s.getComponentForTool(args)
	if err != nil {
		return nil, err
	}
	props, err := getObject(args, "props")
	if err != nil {
		return nil, err
	}
	s.composer.UpdateComponentProps(inst.ID, props)
	return s.viewOf(inst.ID)
}

func (s *Server) handleUpdateComponentStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	inst, err := s.getComponentForTool(args)
	if err != nil {
		return nil, err
	}
	styles, err := getObject(args, "styles")
	if err != nil {
		return nil, err
	}
	s.composer.UpdateComponentStyles(inst.ID, styles)
	return s.viewOf(inst.ID)
}

func (s *Server) handleArrangeComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	start := domain.Position{X: getFloat(args, "startX", 0), Y: getFloat(args, "startY", 0)}

	roots := s.composer.Views()
	sizes := make([]domain.Size, len(roots))
	for i, r := range roots {
		sizes[i] = r.Size
	}
	positions := s.layout.ArrangeGroup(sizes, start)
	for i, r := range roots {
		s.composer.MoveComponent(r.ID, positions[i])
	}
	return textResult(fmt.Sprintf("Arranged %d components", len(roots))), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.composer.Undo() {
		return textResult("Nothing to undo"), nil
	}
	return jsonResult(s.canvas())
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.composer.Redo() {
		return textResult("Nothing to redo"), nil
	}
	return jsonResult(s.canvas())
}
