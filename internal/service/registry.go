package service

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"composer/internal/codec"
	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Component Registry: definition catalog + preview capability
// ─────────────────────────────────────────────────────────────

type registryEntry struct {
	def     *domain.ComponentDefinition
	preview domain.PreviewRenderer
}

// Registry maps definition ids to immutable definitions and the preview
// renderer of each kind. It is populated once at startup and sealed.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
	order   []string
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds a definition. preview may be nil, in which case instances
// render as a placeholder. Panics on duplicate ids or once sealed.
func (r *Registry) Register(def domain.ComponentDefinition, preview domain.PreviewRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic(fmt.Sprintf("component registry: register %q after seal", def.ID))
	}
	if def.ID == "" {
		panic("component registry: definition without id")
	}
	if _, exists := r.entries[def.ID]; exists {
		panic(fmt.Sprintf("component registry: duplicate registration for definition %q", def.ID))
	}
	stored := def
	stored.DefaultProps = copyProps(def.DefaultProps)
	r.entries[def.ID] = registryEntry{def: &stored, preview: preview}
	r.order = append(r.order, def.ID)
}

// Seal freezes the registry. Further Register calls panic.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Lookup returns the definition registered under id.
func (r *Registry) Lookup(id string) (*domain.ComponentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e.def, ok
}

// Resolve is Lookup for callers that treat a miss as fatal. The error wraps
// domain.ErrUnknownDefinition and the registered ids are logged.
func (r *Registry) Resolve(id string) (*domain.ComponentDefinition, error) {
	if def, ok := r.Lookup(id); ok {
		return def, nil
	}
	ids := r.IDs()
	log.Printf("[COMPOSER] unknown definition %q; registered: [%s]", id, strings.Join(ids, ", "))
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDefinition, id)
}

// Preview returns the preview renderer of a definition, or nil.
func (r *Registry) Preview(id string) domain.PreviewRenderer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id].preview
}

// IDs returns the registered definition ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definitions returns the definitions in registration order.
func (r *Registry) Definitions() []*domain.ComponentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.ComponentDefinition, len(r.order))
	for i, id := range r.order {
		out[i] = r.entries[id].def
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// copyProps returns a deep copy of m in canonical form, never nil. Every
// props or styles map that enters or leaves the composer goes through it.
func copyProps(m map[string]any) map[string]any {
	return codec.CanonicalMap(m)
}
