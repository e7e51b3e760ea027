package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"composer/internal/codec"
	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Composer: the canvas, its selection and its interactions
// ─────────────────────────────────────────────────────────────

// Options tunes the canvas behaviour.
type Options struct {
	GridSize      float64
	SnapToGrid    bool
	DragThreshold float64
	MinSize       float64
	DefaultSize   domain.Size
	HistoryLimit  int
}

// DefaultOptions returns the stock canvas settings.
func DefaultOptions() Options {
	return Options{
		GridSize:      10,
		DragThreshold: 5,
		MinSize:       20,
		DefaultSize:   domain.Size{Width: 100, Height: 40},
		HistoryLimit:  DefaultHistoryLimit,
	}
}

// Composer owns one canvas: the instance store, the selection, the active
// interaction session and the undo history. Several composers can coexist;
// nothing is global.
//
// Mutations run under mu. Events are queued while the lock is held and
// emitted after it is released, so handlers may call back into the
// composer.
type Composer struct {
	ctx       context.Context
	opts      Options
	registry  *Registry
	templates *TemplateManager
	emitter   EventEmitter
	renderer  *Renderer
	doc       *ListenerTable

	mu        sync.Mutex
	store     *InstanceStore
	selection Selection
	session   *session
	history   *History
	revision  uint64
	pending   []EmittedEvent
}

// NewComposer creates a Composer. templates may be nil when the host does
// not persist templates; emitter may be nil to drop events.
func NewComposer(ctx context.Context, registry *Registry, templates *TemplateManager, emitter EventEmitter, opts Options) *Composer {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Composer{
		ctx:       ctx,
		opts:      opts,
		registry:  registry,
		templates: templates,
		emitter:   emitter,
		renderer:  NewRenderer(registry),
		doc:       NewListenerTable(),
		store:     NewInstanceStore(),
		history:   NewHistory(opts.HistoryLimit, []domain.SerializedComponent{}),
	}
}

// Options returns the canvas settings.
func (c *Composer) Options() Options { return c.opts }

// Registry returns the definition registry the composer resolves against.
func (c *Composer) Registry() *Registry { return c.registry }

// ── event plumbing ─────────────────────────────────────────

func (c *Composer) queue(event string, data any) {
	c.pending = append(c.pending, EmittedEvent{Event: event, Data: data})
}

func (c *Composer) queueSelection() {
	c.queue(domain.EventSelectionChanged, domain.SelectionChanged{SelectedIDs: c.selection.IDs()})
}

// unlockAndFlush releases mu and emits what was queued while it was held.
func (c *Composer) unlockAndFlush() {
	events := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, e := range events {
		c.emitter.Emit(c.ctx, e.Event, e.Data)
	}
}

// commitLocked records the current canvas in the undo history.
func (c *Composer) commitLocked() {
	c.revision++
	c.history.Push(SerializeComponents(c.store.Roots()))
	c.queue(domain.EventHistoryChanged, domain.HistoryChanged{CanUndo: c.history.CanUndo(), CanRedo: c.history.CanRedo()})
}

// Revision increases on every committed change of the canvas.
func (c *Composer) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

func transformOf(inst *domain.ComponentInstance) domain.ComponentTransform {
	return domain.ComponentTransform{ID: inst.ID, Position: inst.Position, Size: inst.Size}
}

// newInstanceID returns a timestamp-prefixed id with a random suffix.
func newInstanceID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("comp_%d_%s", time.Now().UnixMilli(), suffix)
}

// ── instances ──────────────────────────────────────────────

// AddComponent places a new root instance of definitionID at pos and makes
// it the only selected instance.
func (c *Composer) AddComponent(definitionID string, pos domain.Position) (*domain.ComponentInstance, error) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	return c.addLocked(nil, definitionID, pos)
}

// AddChildComponent places a new instance inside parentID.
func (c *Composer) AddChildComponent(parentID, definitionID string, pos domain.Position) (*domain.ComponentInstance, error) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	parent, ok := c.store.Get(parentID)
	if !ok {
		return nil, fmt.Errorf("add child to %s: %w", parentID, domain.ErrUnknownInstance)
	}
	return c.addLocked(parent, definitionID, pos)
}

func (c *Composer) addLocked(parent *domain.ComponentInstance, definitionID string, pos domain.Position) (*domain.ComponentInstance, error) {
	def, err := c.registry.Resolve(definitionID)
	if err != nil {
		return nil, fmt.Errorf("add component: %w", err)
	}
	inst := &domain.ComponentInstance{
		ID:         newInstanceID(),
		Definition: def,
		Position:   pos,
		Size:       c.opts.DefaultSize,
		Props:      copyProps(def.DefaultProps),
		Styles:     make(map[string]any),
	}
	if parent == nil {
		c.store.Add(inst)
	} else {
		c.store.AddChild(parent, inst)
	}
	c.selection.Select(inst.ID, false)

	c.queue(domain.EventComponentAdded, inst.View())
	c.queueSelection()
	c.queue(domain.EventRenderUpdate, nil)
	c.commitLocked()
	log.Printf("[COMPOSER] added %s (%s) at (%.0f, %.0f)", inst.ID, definitionID, pos.X, pos.Y)
	return inst, nil
}

// RemoveComponent deletes id and its descendants. Unknown ids are ignored.
func (c *Composer) RemoveComponent(id string) {
	c.mu.Lock()
	defer c.unlockAndFlush()

	ids := c.store.Subtree(id)
	if ids == nil {
		return
	}
	if c.session != nil {
		for _, rid := range ids {
			if rid == c.session.targetID {
				c.abortSessionLocked("removed")
				break
			}
		}
	}
	c.store.Remove(id)
	c.selection.Remove(ids...)

	c.queue(domain.EventComponentRemoved, map[string]any{"id": id, "removedIds": ids})
	c.queueSelection()
	c.queue(domain.EventRenderUpdate, nil)
	c.commitLocked()
}

// UpdateComponentProps merges props into the instance's props.
func (c *Composer) UpdateComponentProps(id string, props map[string]any) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	inst, ok := c.store.Get(id)
	if !ok {
		return
	}
	for k, v := range props {
		inst.Props[k] = codec.Canonical(v)
	}
	c.queue(domain.EventComponentPropsUpdated, domain.ComponentUpdate{ID: id, Values: copyProps(inst.Props)})
	c.queue(domain.EventRenderUpdate, nil)
	c.commitLocked()
}

// UpdateComponentStyles merges styles into the instance's styles.
func (c *Composer) UpdateComponentStyles(id string, styles map[string]any) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	inst, ok := c.store.Get(id)
	if !ok {
		return
	}
	for k, v := range styles {
		inst.Styles[k] = codec.Canonical(v)
	}
	c.queue(domain.EventComponentStylesUpdated, domain.ComponentUpdate{ID: id, Values: copyProps(inst.Styles)})
	c.queue(domain.EventRenderUpdate, nil)
	c.commitLocked()
}

// MoveComponent sets the position of id directly, bypassing drag rules.
func (c *Composer) MoveComponent(id string, pos domain.Position) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	inst, ok := c.store.Get(id)
	if !ok {
		return
	}
	inst.Position = pos
	c.queue(domain.EventComponentTransformUpdated, transformOf(inst))
	c.queue(domain.EventRenderUpdate, nil)
	c.commitLocked()
}

// ResizeComponent sets the size of id directly. Each axis is floored at
// the minimum size.
func (c *Composer) ResizeComponent(id string, size domain.Size) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	inst, ok := c.store.Get(id)
	if !ok {
		return
	}
	inst.Size = domain.Size{
		Width:  max(size.Width, c.opts.MinSize),
		Height: max(size.Height, c.opts.MinSize),
	}
	syncSizeProps(inst)
	c.queue(domain.EventComponentTransformUpdated, transformOf(inst))
	c.queue(domain.EventRenderUpdate, nil)
	c.commitLocked()
}

// GetComponent returns the live instance with the given id.
func (c *Composer) GetComponent(id string) (*domain.ComponentInstance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(id)
}

// Components returns the root instances in insertion order.
func (c *Composer) Components() []*domain.ComponentInstance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Roots()
}

// AllComponents returns every instance, parents before children.
func (c *Composer) AllComponents() []*domain.ComponentInstance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// View returns a detached copy of id and its subtree, read under the lock.
// Callers that only need geometry or props should prefer it over
// GetComponent, whose fields keep changing while a session runs.
func (c *Composer) View(id string) (domain.InstanceView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inst, ok := c.store.Get(id)
	if !ok {
		return domain.InstanceView{}, false
	}
	return inst.View(), true
}

// Views returns a detached JSON-friendly copy of the canvas.
func (c *Composer) Views() []domain.InstanceView {
	c.mu.Lock()
	defer c.mu.Unlock()
	roots := c.store.Roots()
	out := make([]domain.InstanceView, len(roots))
	for i, r := range roots {
		out[i] = r.View()
	}
	return out
}

// ── selection ──────────────────────────────────────────────

// SelectComponent clears the selection unless multiSelect is set, then
// toggles id. Unknown ids are ignored after the clear.
func (c *Composer) SelectComponent(id string, multiSelect bool) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.selectLocked(id, multiSelect)
	c.queueSelection()
}

func (c *Composer) selectLocked(id string, multiSelect bool) {
	if !c.store.Has(id) {
		if !multiSelect {
			c.selection.Clear()
		}
		return
	}
	c.selection.Select(id, multiSelect)
}

// ClearSelection deselects everything.
func (c *Composer) ClearSelection() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.selection.Clear()
	c.queueSelection()
}

// SelectedComponentIDs returns the selected ids in selection order.
func (c *Composer) SelectedComponentIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IDs()
}

// ── rendering ──────────────────────────────────────────────

// SetAdapter installs the framework adapter used by Render.
func (c *Composer) SetAdapter(a domain.Adapter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderer.SetAdapter(a)
}

// Render draws the canvas through the adapter.
func (c *Composer) Render() (domain.Element, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderer.Render(c.store.Roots(), c.selection.IDs())
}

// ── templates ──────────────────────────────────────────────

func (c *Composer) templateManager() (*TemplateManager, error) {
	if c.templates == nil {
		return nil, fmt.Errorf("composer has no template store")
	}
	return c.templates, nil
}

// Snapshot serializes the whole canvas.
func (c *Composer) Snapshot() []domain.SerializedComponent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SerializeComponents(c.store.Roots())
}

// SaveTemplate stores every instance on the canvas as a new template.
func (c *Composer) SaveTemplate(ctx context.Context, name, description string) (*domain.Template, error) {
	tm, err := c.templateManager()
	if err != nil {
		return nil, err
	}
	t, err := tm.Create(ctx, name, description, c.Snapshot())
	if err != nil {
		return nil, err
	}
	c.emitter.Emit(c.ctx, domain.EventTemplateSaved, t.Summary())
	return t, nil
}

// SaveSnapshot upserts the canvas under a fixed template id.
func (c *Composer) SaveSnapshot(ctx context.Context, id, name, description string) (*domain.Template, error) {
	tm, err := c.templateManager()
	if err != nil {
		return nil, err
	}
	t, err := tm.Upsert(ctx, id, name, description, c.Snapshot())
	if err != nil {
		return nil, err
	}
	c.emitter.Emit(c.ctx, domain.EventTemplateSaved, t.Summary())
	return t, nil
}

// LoadTemplate replaces the canvas with the template's instances and clears
// the selection. Every definition is resolved before anything changes; a
// single unknown definition fails the load and leaves the canvas intact.
func (c *Composer) LoadTemplate(ctx context.Context, id string) error {
	tm, err := c.templateManager()
	if err != nil {
		return err
	}
	t, err := tm.Get(ctx, id)
	if err != nil {
		return err
	}
	roots, err := DeserializeComponents(c.registry, t.Components)
	if err != nil {
		return fmt.Errorf("load template %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.unlockAndFlush()
	c.cancelSessionLocked("template loaded")
	c.store.Replace(roots)
	c.selection.Clear()
	c.queue(domain.EventTemplateLoaded, t.Summary())
	c.queueSelection()
	c.queue(domain.EventRenderUpdate, nil)
	c.commitLocked()
	log.Printf("[COMPOSER] loaded template %q (%s), %d instance(s)", t.Name, t.ID, c.store.Len())
	return nil
}

// ListTemplates returns summaries of the stored templates.
func (c *Composer) ListTemplates(ctx context.Context) ([]domain.TemplateSummary, error) {
	tm, err := c.templateManager()
	if err != nil {
		return nil, err
	}
	return tm.List(ctx)
}

// GetTemplate returns a stored template.
func (c *Composer) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	tm, err := c.templateManager()
	if err != nil {
		return nil, err
	}
	return tm.Get(ctx, id)
}

// DeleteTemplate removes a stored template.
func (c *Composer) DeleteTemplate(ctx context.Context, id string) error {
	tm, err := c.templateManager()
	if err != nil {
		return err
	}
	return tm.Delete(ctx, id)
}

// ExportTemplate encodes a stored template in format f.
func (c *Composer) ExportTemplate(ctx context.Context, id string, f codec.Format) ([]byte, error) {
	tm, err := c.templateManager()
	if err != nil {
		return nil, err
	}
	return tm.Export(ctx, id, f)
}

// ImportTemplate decodes and stores a template without loading it.
func (c *Composer) ImportTemplate(ctx context.Context, data []byte, f codec.Format, fallbackID string) (*domain.Template, error) {
	tm, err := c.templateManager()
	if err != nil {
		return nil, err
	}
	t, err := tm.Import(ctx, data, f, fallbackID)
	if err != nil {
		return nil, err
	}
	c.emitter.Emit(c.ctx, domain.EventTemplateImported, t.Summary())
	return t, nil
}

// ── history ────────────────────────────────────────────────

// Undo restores the previous committed canvas.
func (c *Composer) Undo() bool {
	c.mu.Lock()
	defer c.unlockAndFlush()
	snap, ok := c.history.Undo()
	if !ok {
		return false
	}
	c.restoreLocked(snap)
	return true
}

// Redo re-applies the next committed canvas.
func (c *Composer) Redo() bool {
	c.mu.Lock()
	defer c.unlockAndFlush()
	snap, ok := c.history.Redo()
	if !ok {
		return false
	}
	c.restoreLocked(snap)
	return true
}

// CanUndo reports whether Undo would change anything.
func (c *Composer) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanUndo()
}

// CanRedo reports whether Redo would change anything.
func (c *Composer) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanRedo()
}

func (c *Composer) restoreLocked(snap []domain.SerializedComponent) {
	roots, err := DeserializeComponents(c.registry, snap)
	if err != nil {
		// Snapshots come from this registry; a failure means a bug.
		log.Printf("[COMPOSER] history restore failed: %v", err)
		return
	}
	c.cancelSessionLocked("history")
	c.store.Replace(roots)
	c.selection.Clear()
	c.revision++
	c.queueSelection()
	c.queue(domain.EventRenderUpdate, nil)
	c.queue(domain.EventHistoryChanged, domain.HistoryChanged{CanUndo: c.history.CanUndo(), CanRedo: c.history.CanRedo()})
}
