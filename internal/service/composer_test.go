package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"composer/internal/domain"
	"composer/internal/service"
	"composer/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Composer instance tests
// ─────────────────────────────────────────────────────────────

func TestComposer_AddComponent(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())

	inst := mustAdd(t, c, "button", 10, 20)
	if !strings.HasPrefix(inst.ID, "comp_") {
		t.Errorf("unexpected id %q", inst.ID)
	}
	if inst.Position != (domain.Position{X: 10, Y: 20}) {
		t.Errorf("Position = %+v", inst.Position)
	}
	if inst.Size != (domain.Size{Width: 100, Height: 40}) {
		t.Errorf("Size = %+v, want the default size", inst.Size)
	}
	if inst.Props["label"] != "Button" {
		t.Errorf("default props not applied: %v", inst.Props)
	}

	// Instance props never alias the definition defaults.
	inst.Props["label"] = "changed"
	def, _ := c.Registry().Lookup("button")
	if def.DefaultProps["label"] != "Button" {
		t.Error("instance props alias the definition defaults")
	}

	want := []string{
		domain.EventComponentAdded,
		domain.EventSelectionChanged,
		domain.EventRenderUpdate,
		domain.EventHistoryChanged,
	}
	if diff := cmp.Diff(want, events.Names()); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{inst.ID}, c.SelectedComponentIDs()); diff != "" {
		t.Errorf("new instance should be the only selection (-want +got):\n%s", diff)
	}
}

func TestComposer_AddComponentUnknownDefinition(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())

	if _, err := c.AddComponent("nope", domain.Position{}); !errors.Is(err, domain.ErrUnknownDefinition) {
		t.Fatalf("expected ErrUnknownDefinition, got %v", err)
	}
	if len(c.Components()) != 0 || len(events.Names()) != 0 {
		t.Error("failed add must not change the canvas or emit")
	}
}

func TestComposer_AddChildComponent(t *testing.T) {
	c, _ := newTestComposer(t, service.DefaultOptions())
	parent := mustAdd(t, c, "container", 0, 0)

	child, err := c.AddChildComponent(parent.ID, "text", domain.Position{X: 5, Y: 5})
	if err != nil {
		t.Fatalf("AddChildComponent: %v", err)
	}
	if child.Parent != parent || len(parent.Children) != 1 {
		t.Fatal("child not attached to parent")
	}
	if len(c.Components()) != 1 || len(c.AllComponents()) != 2 {
		t.Errorf("roots=%d all=%d", len(c.Components()), len(c.AllComponents()))
	}
	views := c.Views()
	if len(views[0].Children) != 1 || views[0].Children[0].ParentID != parent.ID {
		t.Errorf("views do not carry the tree: %+v", views)
	}

	if _, err := c.AddChildComponent("missing", "text", domain.Position{}); !errors.Is(err, domain.ErrUnknownInstance) {
		t.Errorf("expected ErrUnknownInstance, got %v", err)
	}
}

func TestComposer_RemoveComponentPurgesSelection(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	parent := mustAdd(t, c, "container", 0, 0)
	child, _ := c.AddChildComponent(parent.ID, "text", domain.Position{})
	other := mustAdd(t, c, "button", 200, 0)

	c.SelectComponent(child.ID, false)
	c.SelectComponent(other.ID, true)
	events.Reset()

	c.RemoveComponent(parent.ID)

	if _, ok := c.GetComponent(child.ID); ok {
		t.Error("descendant survived removal")
	}
	if diff := cmp.Diff([]string{other.ID}, c.SelectedComponentIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	removed := events.Named(domain.EventComponentRemoved)
	if len(removed) != 1 {
		t.Fatalf("expected one componentRemoved, got %d", len(removed))
	}
	payload := removed[0].Data.(map[string]any)
	if diff := cmp.Diff([]string{parent.ID, child.ID}, payload["removedIds"]); diff != "" {
		t.Errorf("removedIds mismatch (-want +got):\n%s", diff)
	}

	events.Reset()
	c.RemoveComponent(parent.ID)
	if len(events.Names()) != 0 {
		t.Error("removing an unknown id should be a no-op")
	}
}

func TestComposer_UpdatePropsAndStyles(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 0, 0)
	events.Reset()

	c.UpdateComponentProps(inst.ID, map[string]any{"label": "Save"})
	c.UpdateComponentStyles(inst.ID, map[string]any{"color": "red"})
	c.UpdateComponentProps("missing", map[string]any{"label": "x"})

	want := map[string]any{"label": "Save", "variant": "primary"}
	if diff := cmp.Diff(want, inst.Props); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
	if inst.Styles["color"] != "red" {
		t.Errorf("styles = %v", inst.Styles)
	}
	upd := events.Named(domain.EventComponentPropsUpdated)
	if len(upd) != 1 {
		t.Fatalf("expected one props update, got %d", len(upd))
	}
	if diff := cmp.Diff(want, upd[0].Data.(domain.ComponentUpdate).Values); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if events.Count(domain.EventComponentStylesUpdated) != 1 {
		t.Error("expected one styles update")
	}
}

func TestComposer_MoveAndResizeDirect(t *testing.T) {
	c, _ := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 0, 0)

	c.MoveComponent(inst.ID, domain.Position{X: 33, Y: 44})
	c.ResizeComponent(inst.ID, domain.Size{Width: 5, Height: 80})

	if inst.Position != (domain.Position{X: 33, Y: 44}) {
		t.Errorf("Position = %+v", inst.Position)
	}
	if inst.Size != (domain.Size{Width: 20, Height: 80}) {
		t.Errorf("Size = %+v, want width floored at 20", inst.Size)
	}
	if inst.Props["width"] != 20.0 || inst.Props["height"] != 80.0 {
		t.Errorf("size props not synced: %v", inst.Props)
	}
}

func TestComposer_PropsAreStoredCanonically(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 0, 0)

	nested := map[string]any{"keys": []int{13, 32}}
	c.UpdateComponentProps(inst.ID, map[string]any{"tabIndex": 2, "aria": nested})
	c.UpdateComponentStyles(inst.ID, map[string]any{"zIndex": uint8(4)})
	nested["keys"] = nil

	if inst.Props["tabIndex"] != 2.0 || inst.Styles["zIndex"] != 4.0 {
		t.Errorf("numbers kept their Go types: %#v %#v", inst.Props["tabIndex"], inst.Styles["zIndex"])
	}
	if diff := cmp.Diff(map[string]any{"keys": []any{13.0, 32.0}}, inst.Props["aria"]); diff != "" {
		t.Errorf("nested prop mismatch (-want +got):\n%s", diff)
	}
	upd := events.Named(domain.EventComponentPropsUpdated)
	if got := upd[len(upd)-1].Data.(domain.ComponentUpdate).Values["tabIndex"]; got != 2.0 {
		t.Errorf("event payload tabIndex = %#v", got)
	}
}

func TestComposer_ViewIsDetached(t *testing.T) {
	c, _ := newTestComposer(t, service.DefaultOptions())
	box := mustAdd(t, c, "container", 10, 20)
	child, err := c.AddChildComponent(box.ID, "text", domain.Position{X: 5, Y: 5})
	if err != nil {
		t.Fatal(err)
	}

	v, ok := c.View(box.ID)
	if !ok {
		t.Fatal("View missed an existing instance")
	}
	if v.Bounds() != box.Bounds() {
		t.Errorf("Bounds = %+v, want %+v", v.Bounds(), box.Bounds())
	}
	if len(v.Children) != 1 || v.Children[0].ID != child.ID || v.Children[0].ParentID != box.ID {
		t.Errorf("children = %+v", v.Children)
	}

	c.MoveComponent(box.ID, domain.Position{X: 99, Y: 99})
	v.Props["direction"] = "mutated"
	if v.Position != (domain.Position{X: 10, Y: 20}) {
		t.Errorf("view follows the live instance: %+v", v.Position)
	}
	if box.Props["direction"] == "mutated" {
		t.Error("view shares props with the live instance")
	}
	if _, ok := c.View("missing"); ok {
		t.Error("View found an unknown id")
	}
}

// ─────────────────────────────────────────────────────────────
// Selection through the composer
// ─────────────────────────────────────────────────────────────

func TestComposer_SelectComponent(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	a := mustAdd(t, c, "button", 0, 0)
	b := mustAdd(t, c, "button", 200, 0)

	c.SelectComponent(a.ID, false)
	c.SelectComponent(a.ID, false)
	if diff := cmp.Diff([]string{a.ID}, c.SelectedComponentIDs()); diff != "" {
		t.Errorf("repeat plain select mismatch (-want +got):\n%s", diff)
	}

	c.SelectComponent(b.ID, true)
	if diff := cmp.Diff([]string{a.ID, b.ID}, lastSelection(t, events)); diff != "" {
		t.Errorf("multi-select mismatch (-want +got):\n%s", diff)
	}

	c.SelectComponent(a.ID, true)
	if diff := cmp.Diff([]string{b.ID}, c.SelectedComponentIDs()); diff != "" {
		t.Errorf("modifier toggle mismatch (-want +got):\n%s", diff)
	}

	c.SelectComponent("missing", true)
	if diff := cmp.Diff([]string{b.ID}, c.SelectedComponentIDs()); diff != "" {
		t.Errorf("unknown id with modifier should keep selection (-want +got):\n%s", diff)
	}
	c.SelectComponent("missing", false)
	if len(c.SelectedComponentIDs()) != 0 {
		t.Error("unknown id without modifier should clear the selection")
	}

	c.SelectComponent(a.ID, false)
	c.ClearSelection()
	if got := lastSelection(t, events); len(got) != 0 {
		t.Errorf("ClearSelection emitted %v", got)
	}
}

// ─────────────────────────────────────────────────────────────
// Re-entrancy
// ─────────────────────────────────────────────────────────────

func TestComposer_HandlersMayCallBack(t *testing.T) {
	bus := service.NewEventBus()
	tm := service.NewTemplateManager(storage.NewMemoryTemplateStore())
	c := service.NewComposer(context.Background(), newTestRegistry(), tm, bus, service.DefaultOptions())

	var seen []int
	bus.On(domain.EventComponentAdded, func(string, any) {
		seen = append(seen, len(c.Views()))
	})
	bus.On(domain.EventSelectionChanged, func(string, any) {
		_ = c.SelectedComponentIDs()
	})

	mustAdd(t, c, "button", 0, 0)
	mustAdd(t, c, "text", 0, 100)

	if diff := cmp.Diff([]int{1, 2}, seen); diff != "" {
		t.Errorf("handler views mismatch (-want +got):\n%s", diff)
	}
}

func TestComposer_IndependentInstances(t *testing.T) {
	a, _ := newTestComposer(t, service.DefaultOptions())
	b, _ := newTestComposer(t, service.DefaultOptions())
	mustAdd(t, a, "button", 0, 0)
	if len(b.Components()) != 0 {
		t.Error("composers share state")
	}
}
