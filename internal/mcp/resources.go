package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	canvasURI    = "composer://canvas"
	templatesURI = "composer://templates"
)

func (s *Server) registerResources() {
	// ── composer://canvas ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		canvasURI,
		"Canvas",
		mcp.WithResourceDescription("Components, selection and interaction state of the canvas"),
		mcp.WithMIMEType("application/json"),
	), s.handleCanvasResource)

	// ── composer://templates ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		templatesURI,
		"Templates",
		mcp.WithResourceDescription("Summaries of the stored templates"),
		mcp.WithMIMEType("application/json"),
	), s.handleTemplatesResource)
}

func (s *Server) handleCanvasResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.canvas(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      canvasURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleTemplatesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	list, err := s.composer.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      templatesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
