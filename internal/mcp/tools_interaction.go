package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"composer/internal/domain"
)

// Interaction tools replay a full pointer sequence (down, move, up) so
// agents go through the same drag and resize rules as a user would.
func (s *Server) registerInteractionTools() {
	// ── drag_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("drag_component",
		mcp.WithDescription("Drag a component by (dx, dy) with the pointer. Pressing makes it the only selected component. Moves within the drag threshold count as a click and only select. Snaps to the grid when snapping is enabled."),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithNumber("dx", mcp.Description("Horizontal pointer travel"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical pointer travel"), mcp.Required()),
	), s.handleDragComponent)

	// ── resize_with_handle ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_with_handle",
		mcp.WithDescription("Resize a component by dragging one of its handles by (dx, dy). The component becomes the only selection, since handles only show on a sole selection. The opposite edge or corner stays fixed."),
		mcp.WithString("componentId", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithString("handle",
			mcp.Description("Resize handle"),
			mcp.Enum("nw", "n", "ne", "e", "se", "s", "sw", "w"),
			mcp.Required(),
		),
		mcp.WithNumber("dx", mcp.Description("Horizontal pointer travel"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical pointer travel"), mcp.Required()),
	), s.handleResizeWithHandle)
}

func (s *Server) handleDragComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	inst, err := s.getComponentForTool(args)
	if err != nil {
		return nil, err
	}
	delta := domain.Position{X: getFloat(args, "dx", 0), Y: getFloat(args, "dy", 0)}

	// Grab the component at its centre.
	start := domain.Position{
		X: inst.Position.X + inst.Size.Width/2,
		Y: inst.Position.Y + inst.Size.Height/2,
	}
	if !s.composer.PointerDown(inst.ID, domain.PointerEvent{Position: start}) {
		return nil, fmt.Errorf("component %s: %w", inst.ID, domain.ErrUnknownInstance)
	}
	end := &domain.PointerEvent{Position: domain.Position{X: start.X + delta.X, Y: start.Y + delta.Y}}
	s.composer.PointerMove(end)
	s.composer.PointerUp(&domain.PointerEvent{Position: end.Position})

	return s.viewOf(inst.ID)
}

func (s *Server) handleResizeWithHandle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	inst, err := s.getComponentForTool(args)
	if err != nil {
		return nil, err
	}
	handle, err := domain.ParseHandle(req.GetString("handle", ""))
	if err != nil {
		return nil, err
	}

	s.composer.SelectComponent(inst.ID, false)
	start := handlePoint(inst.Bounds(), handle)
	ok, err := s.composer.PointerDownHandle(inst.ID, handle, domain.PointerEvent{Position: start})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("component %s is no longer the sole selection", inst.ID)
	}
	end := domain.Position{X: start.X + getFloat(args, "dx", 0), Y: start.Y + getFloat(args, "dy", 0)}
	s.composer.PointerMove(&domain.PointerEvent{Position: end})
	s.composer.PointerUp(&domain.PointerEvent{Position: end})

	return s.viewOf(inst.ID)
}

// handlePoint returns where handle h sits on r.
func handlePoint(r domain.Rect, h domain.Handle) domain.Position {
	p := domain.Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
	switch h {
	case domain.HandleNW, domain.HandleW, domain.HandleSW:
		p.X = r.X
	case domain.HandleNE, domain.HandleE, domain.HandleSE:
		p.X = r.X + r.Width
	}
	switch h {
	case domain.HandleNW, domain.HandleN, domain.HandleNE:
		p.Y = r.Y
	case domain.HandleSW, domain.HandleS, domain.HandleSE:
		p.Y = r.Y + r.Height
	}
	return p
}
