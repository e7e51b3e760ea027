package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"composer/internal/config"
	mcpserver "composer/internal/mcp"
)

// ServeMCP runs the composer as a standalone MCP server on stdin/stdout.
// It loads configPath (optional), starts the App and serves until stdin
// closes or the process is interrupted.
func ServeMCP(configPath, version string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	a := New(cfg)
	if err := a.Startup(ctx); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer a.Shutdown()

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Composer: a.Composer(),
		Version:  version,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	errc := make(chan error, 1)
	go func() { errc <- mcpSrv.ServeStdio() }()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
	case <-ctx.Done():
		log.Println("[MCP] Interrupted, shutting down")
	}
	return nil
}
