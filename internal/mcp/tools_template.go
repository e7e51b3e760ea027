package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"composer/internal/codec"
)

func (s *Server) registerTemplateTools() {
	// ── save_template ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_template",
		mcp.WithDescription("Save the whole canvas as a new template"),
		mcp.WithString("name", mcp.Description("Template name"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Template description (optional)")),
	), s.handleSaveTemplate)

	// ── load_template ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("load_template",
		mcp.WithDescription("Replace the canvas with a stored template. Fails without changes if any component kind is unknown."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
	), s.handleLoadTemplate)

	// ── list_templates ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List stored templates"),
	), s.handleListTemplates)

	// ── delete_template (destructive) ──────────────────
	s.mcp.AddTool(mcp.NewTool("delete_template",
		mcp.WithDescription("Delete a stored template"),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteTemplate)

	// ── export_template ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_template",
		mcp.WithDescription("Export a stored template. msgpack output is base64-encoded."),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
		mcp.WithString("format", mcp.Description("Encoding (default json)"), mcp.Enum("json", "msgpack")),
	), s.handleExportTemplate)

	// ── import_template ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("import_template",
		mcp.WithDescription("Store an exported template without loading it. msgpack input must be base64-encoded."),
		mcp.WithString("data", mcp.Description("Exported template"), mcp.Required()),
		mcp.WithString("format", mcp.Description("Encoding (default json)"), mcp.Enum("json", "msgpack")),
	), s.handleImportTemplate)
}

func (s *Server) handleSaveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	t, err := s.composer.SaveTemplate(ctx, name, req.GetString("description", ""))
	if err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	return jsonResult(t.Summary())
}

func (s *Server) handleLoadTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("templateId", "")
	if id == "" {
		return nil, fmt.Errorf("templateId is required")
	}
	if err := s.composer.LoadTemplate(ctx, id); err != nil {
		return nil, err
	}
	return jsonResult(s.canvas())
}

func (s *Server) handleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.composer.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return jsonResult(list)
}

func (s *Server) handleDeleteTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("templateId", "")
	if id == "" {
		return nil, fmt.Errorf("templateId is required")
	}
	if err := s.composer.DeleteTemplate(ctx, id); err != nil {
		return nil, fmt.Errorf("delete template: %w", err)
	}
	return textResult(fmt.Sprintf("Template %s deleted", id)), nil
}

func (s *Server) handleExportTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("templateId", "")
	if id == "" {
		return nil, fmt.Errorf("templateId is required")
	}
	f, err := codec.ParseFormat(req.GetString("format", ""))
	if err != nil {
		return nil, err
	}
	data, err := s.composer.ExportTemplate(ctx, id, f)
	if err != nil {
		return nil, err
	}
	if f == codec.FormatMsgpack {
		return textResult(base64.StdEncoding.EncodeToString(data)), nil
	}
	return textResult(string(data)), nil
}

func (s *Server) handleImportTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("data", "")
	if raw == "" {
		return nil, fmt.Errorf("data is required")
	}
	f, err := codec.ParseFormat(req.GetString("format", ""))
	if err != nil {
		return nil, err
	}
	data := []byte(raw)
	if f == codec.FormatMsgpack {
		if data, err = base64.StdEncoding.DecodeString(raw); err != nil {
			return nil, fmt.Errorf("msgpack data must be base64: %w", err)
		}
	}
	t, err := s.composer.ImportTemplate(ctx, data, f, "")
	if err != nil {
		return nil, err
	}
	return jsonResult(t.Summary())
}
