package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("build_form",
		mcp.WithPromptDescription("Guide through composing a form inside a card"),
		mcp.WithArgument("title",
			mcp.ArgumentDescription("Title of the form card"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("fields",
			mcp.ArgumentDescription("Comma-separated field labels"),
			mcp.RequiredArgument(),
		),
	), s.handleBuildFormPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("start_from_template",
		mcp.WithPromptDescription("Load a saved template and adapt it to a new purpose"),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the adapted canvas should present"),
			mcp.RequiredArgument(),
		),
	), s.handleStartFromTemplatePrompt)
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *Server) handleBuildFormPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	title := req.Params.Arguments["title"]
	var fields []string
	for _, f := range strings.Split(req.Params.Arguments["fields"], ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("fields must name at least one field")
	}

	var steps strings.Builder
	for i, f := range fields {
		fmt.Fprintf(&steps, "   %d. add_component with definitionId \"input\" and parentId set to the card, then update_component_props with {\"placeholder\": %q}\n", i+1, f)
	}
	return promptResult(
		fmt.Sprintf("Compose the %q form", title),
		fmt.Sprintf(`Compose a form titled "%s" on the canvas. Follow these steps:

1. Call list_definitions to confirm the card, input and button kinds are available
2. add_component with definitionId "card", then update_component_props with {"title": %q}
3. For each field:
%s4. Add a "button" inside the card labelled "Submit"
5. Call arrange_components if anything overlaps, then get_canvas to check the result
6. save_template with name %q

Keep every child inside the card's bounds; use resize_component on the card if needed.`, title, title, steps.String(), title),
	), nil
}

func (s *Server) handleStartFromTemplatePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	goal := req.Params.Arguments["goal"]
	names := "none saved yet"
	if summaries, err := s.composer.ListTemplates(ctx); err == nil && len(summaries) > 0 {
		parts := make([]string, len(summaries))
		for i, t := range summaries {
			parts[i] = fmt.Sprintf("%s (%s, %d components)", t.Name, t.ID, t.Components)
		}
		names = strings.Join(parts, "; ")
	}
	return promptResult(
		fmt.Sprintf("Adapt a template for: %s", goal),
		fmt.Sprintf(`Build a canvas for: %s

Available templates: %s

1. Pick the closest template and call load_template with its id (or start from an empty canvas)
2. Read get_canvas and update_component_props on every text, button and card so the content fits the goal
3. Remove components that do not serve the goal and add missing ones with add_component
4. Save the result with save_template under a new name; the original template stays untouched`, goal, names),
	), nil
}
