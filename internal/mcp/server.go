package mcpserver

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"composer/internal/domain"
	"composer/internal/service"
)

// Server is the MCP server for the composer.
// It exposes tools, resources and prompts so AI agents can build on the canvas.
type Server struct {
	mcp      *server.MCPServer
	composer *service.Composer
	layout   *LayoutEngine
}

// Deps holds the dependencies passed from the App layer to the MCP server.
type Deps struct {
	Composer *service.Composer
	Version  string
}

// New creates and configures a new MCP server with all tools and resources.
func New(_ context.Context, deps Deps) *Server {
	version := deps.Version
	if version == "" {
		version = "1.0.0"
	}
	s := &Server{
		composer: deps.Composer,
		layout:   NewLayoutEngine(deps.Composer.Options().GridSize),
	}

	s.mcp = server.NewMCPServer(
		"composer-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerComponentTools()
	s.registerInteractionTools()
	s.registerTemplateTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// getComponentForTool returns a detached view of the instance named by
// componentId and validates it exists.
func (s *Server) getComponentForTool(args map[string]any) (domain.InstanceView, error) {
	id, ok := args["componentId"].(string)
	if !ok || id == "" {
		return domain.InstanceView{}, fmt.Errorf("componentId is required")
	}
	v, ok := s.composer.View(id)
	if !ok {
		return domain.InstanceView{}, fmt.Errorf("component %s: %w", id, domain.ErrUnknownInstance)
	}
	return v, nil
}

// viewOf returns the detached view of id after a mutation.
func (s *Server) viewOf(id string) (*mcp.CallToolResult, error) {
	v, ok := s.composer.View(id)
	if !ok {
		return nil, fmt.Errorf("component %s: %w", id, domain.ErrUnknownInstance)
	}
	return jsonResult(v)
}
