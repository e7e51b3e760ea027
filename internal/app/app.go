package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"composer/internal/config"
	"composer/internal/domain"
	"composer/internal/plugins"
	"composer/internal/service"
	"composer/internal/storage"
)

// App wires storage, the component catalog and the composer together and
// owns the background jobs (autosave, import watcher).
type App struct {
	ctx context.Context
	cfg *config.Config

	store    domain.TemplateStore
	registry *service.Registry
	events   *service.EventBus
	composer *service.Composer
	autosave *service.Autosave
	watcher  *service.TemplateWatcher
}

// New creates an App for cfg. Nothing is opened until Startup.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg, events: service.NewEventBus()}
}

// Startup opens the template store, builds the registry and the composer
// and starts the background jobs enabled in the config.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	store, err := storage.OpenTemplateStore(a.cfg.Templates)
	if err != nil {
		return fmt.Errorf("open template store: %w", err)
	}
	a.store = store

	a.registry = service.NewRegistry()
	plugins.RegisterBuiltins(a.registry)
	if a.cfg.Catalog != "" {
		cat, err := plugins.LoadCatalog(a.cfg.Catalog)
		if err != nil {
			a.Shutdown()
			return err
		}
		plugins.RegisterCatalog(a.registry, cat)
	}
	a.registry.Seal()
	log.Printf("[APP] %d component definitions (builtins: %s)", a.registry.Len(), strings.Join(plugins.BuiltinIDs(), ", "))

	var emitter service.EventEmitter = a.events
	if a.cfg.Debug {
		emitter = service.MultiEmitter{a.events, service.LogEmitter{}}
	}
	a.composer = service.NewComposer(ctx, a.registry, service.NewTemplateManager(store), emitter, a.cfg.ComposerOptions())

	if a.cfg.Autosave.Schedule != "" {
		a.restoreAutosave(ctx)
		job := service.NewAutosave(a.composer, a.cfg.Autosave.Schedule, a.cfg.Autosave.Name)
		if err := job.Start(ctx); err != nil {
			a.Shutdown()
			return err
		}
		a.autosave = job
	}
	if a.cfg.ImportDir != "" {
		a.watcher = service.NewTemplateWatcher(a.composer, a.cfg.ImportDir)
		if err := a.watcher.Start(ctx); err != nil {
			a.Shutdown()
			return err
		}
	}
	return nil
}

// restoreAutosave loads the last autosave snapshot, if any.
func (a *App) restoreAutosave(ctx context.Context) {
	err := a.composer.LoadTemplate(ctx, service.AutosaveTemplateID)
	switch {
	case err == nil:
		log.Println("[APP] Restored autosaved canvas")
	case !errors.Is(err, domain.ErrTemplateNotFound):
		log.Printf("[APP] Could not restore autosave: %v", err)
	}
}

// Shutdown stops the background jobs, takes a final autosave and closes
// the store. It is safe to call more than once.
func (a *App) Shutdown() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	if a.autosave != nil {
		a.autosave.Stop()
		if _, err := a.autosave.RunOnce(context.Background()); err != nil {
			log.Printf("[APP] Final autosave failed: %v", err)
		}
		a.autosave = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

// Composer returns the canvas. Nil before Startup.
func (a *App) Composer() *service.Composer {
	return a.composer
}

// Events returns the bus every composer event is published on.
func (a *App) Events() *service.EventBus {
	return a.events
}
