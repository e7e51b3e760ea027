package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"composer/internal/codec"
)

// ─────────────────────────────────────────────────────────────
// Template import directory
// ─────────────────────────────────────────────────────────────

// TemplateWatcher imports template files (.json, .msgpack) dropped into a
// directory. Each file maps to the template id "import:<basename>" unless
// the file carries its own id, so rewriting a file updates its template.
type TemplateWatcher struct {
	composer *Composer
	dir      string
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewTemplateWatcher creates a watcher over dir.
func NewTemplateWatcher(c *Composer, dir string) *TemplateWatcher {
	return &TemplateWatcher{composer: c, dir: dir}
}

// Start imports the files already present and then watches for new ones
// until ctx is done or Stop is called.
func (w *TemplateWatcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("template watcher: create %s: %w", w.dir, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("template watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("template watcher: watch %s: %w", w.dir, err)
	}
	w.watcher = watcher
	w.done = make(chan struct{})

	entries, _ := os.ReadDir(w.dir)
	for _, e := range entries {
		if !e.IsDir() {
			w.importFile(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	go w.loop(ctx, watcher)
	log.Printf("[WATCH] importing templates from %s", w.dir)
	return nil
}

// Stop closes the watcher and waits for the loop to exit.
func (w *TemplateWatcher) Stop() {
	if w.watcher == nil {
		return
	}
	w.watcher.Close()
	<-w.done
	w.watcher = nil
}

func (w *TemplateWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.importFile(ctx, ev.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WATCH] error: %v", err)
		case <-ctx.Done():
			return
		}
	}
}

func (w *TemplateWatcher) importFile(ctx context.Context, path string) {
	format, err := codec.FormatFromPath(path)
	if err != nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		// Editors often create the file empty and write it right after.
		return
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, err := w.composer.ImportTemplate(ctx, data, format, "import:"+base); err != nil {
		log.Printf("[WATCH] import %s: %v", path, err)
	}
}
