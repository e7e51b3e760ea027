package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// AutosaveTemplateID is the fixed id autosave snapshots are stored under.
const AutosaveTemplateID = "autosave"

// Autosave periodically upserts the canvas into the autosave template. A
// tick is skipped when nothing was committed since the last save.
type Autosave struct {
	composer *Composer
	schedule string
	name     string

	mu        sync.Mutex
	cron      *cron.Cron
	lastSaved uint64
	saved     bool
}

// NewAutosave creates an autosave job for c. schedule is a cron spec such
// as "@every 2m" or "*/5 * * * *".
func NewAutosave(c *Composer, schedule, name string) *Autosave {
	if name == "" {
		name = "Autosave"
	}
	return &Autosave{composer: c, schedule: schedule, name: name}
}

// Start schedules the job.
func (a *Autosave) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(a.schedule, func() {
		if _, err := a.RunOnce(ctx); err != nil {
			log.Printf("[AUTOSAVE] failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("autosave: invalid schedule %q: %w", a.schedule, err)
	}
	c.Start()
	a.cron = c
	log.Printf("[AUTOSAVE] scheduled %q", a.schedule)
	return nil
}

// Stop unschedules the job and waits for a running save to finish.
func (a *Autosave) Stop() {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// RunOnce saves the canvas if it changed since the last save and reports
// whether it did.
func (a *Autosave) RunOnce(ctx context.Context) (bool, error) {
	rev := a.composer.Revision()
	a.mu.Lock()
	unchanged := a.saved && rev == a.lastSaved
	a.mu.Unlock()
	if unchanged {
		return false, nil
	}
	if _, err := a.composer.SaveSnapshot(ctx, AutosaveTemplateID, a.name, "Automatic snapshot of the canvas"); err != nil {
		return false, err
	}
	a.mu.Lock()
	a.lastSaved = rev
	a.saved = true
	a.mu.Unlock()
	log.Printf("[AUTOSAVE] saved revision %d", rev)
	return true, nil
}
