package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"composer/internal/domain"
	"composer/internal/service"
)

func snapOptions() service.Options {
	opts := service.DefaultOptions()
	opts.SnapToGrid = true
	return opts
}

// ─────────────────────────────────────────────────────────────
// Drag
// ─────────────────────────────────────────────────────────────

func TestDrag_SnapsAndCommitsOnce(t *testing.T) {
	c, events := newTestComposer(t, snapOptions())
	inst := mustAdd(t, c, "button", 10, 10)
	events.Reset()

	if !c.PointerDown(inst.ID, down(10, 10)) {
		t.Fatal("PointerDown rejected a known instance")
	}
	for _, x := range []float64{20, 34, 47, 60} {
		c.PointerMove(at(x, 10))
	}
	c.PointerUp(at(60, 10))

	if inst.Position != (domain.Position{X: 60, Y: 10}) {
		t.Errorf("Position = %+v, want (60,10)", inst.Position)
	}
	moved := events.Named(domain.EventComponentMoved)
	if len(moved) != 1 {
		t.Fatalf("componentMoved fired %d times, want 1", len(moved))
	}
	if got := moved[0].Data.(domain.ComponentMoved); got.Position != inst.Position || got.ID != inst.ID {
		t.Errorf("componentMoved payload = %+v", got)
	}

	names := events.Names()
	tail := names[len(names)-3:]
	want := []string{domain.EventComponentMoved, domain.EventHistoryChanged, domain.EventSelectionChanged}
	if diff := cmp.Diff(want, tail); diff != "" {
		t.Errorf("pointer-up event order mismatch (-want +got):\n%s", diff)
	}
	if _, active := c.ActiveSession(); active {
		t.Error("session still active after pointer-up")
	}
	if c.Listeners().Len() != 0 {
		t.Errorf("%d document listeners leaked", c.Listeners().Len())
	}
}

func TestDrag_IntermediateMovesSnap(t *testing.T) {
	c, events := newTestComposer(t, snapOptions())
	inst := mustAdd(t, c, "button", 0, 0)
	events.Reset()

	c.PointerDown(inst.ID, down(5, 5))
	ev := at(19, 5)
	c.PointerMove(ev)

	if !ev.DefaultPrevented {
		t.Error("a dragging move should prevent the default action")
	}
	if inst.Position != (domain.Position{X: 10, Y: 0}) {
		t.Errorf("Position = %+v, want (10,0)", inst.Position)
	}
	updates := events.Named(domain.EventRenderUpdate)
	if len(updates) != 1 {
		t.Fatalf("expected one renderUpdate, got %d", len(updates))
	}
	if tr, ok := updates[0].Data.(domain.ComponentTransform); !ok || tr.Position != inst.Position {
		t.Errorf("renderUpdate payload = %+v", updates[0].Data)
	}
	if events.Count(domain.EventComponentMoved) != 0 {
		t.Error("componentMoved must wait for pointer-up")
	}
	info, _ := c.ActiveSession()
	if !info.Dragging || info.Kind != service.SessionDrag {
		t.Errorf("session = %+v", info)
	}
}

func TestDrag_WithinThresholdIsAClick(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 100, 100)
	rev := c.Revision()
	events.Reset()

	c.PointerDown(inst.ID, down(110, 110))
	ev := at(113, 114) // distance 5
	c.PointerMove(ev)
	c.PointerUp(at(113, 114))

	if inst.Position != (domain.Position{X: 100, Y: 100}) {
		t.Errorf("click moved the instance to %+v", inst.Position)
	}
	if ev.DefaultPrevented {
		t.Error("an armed move must not prevent the default action")
	}
	if events.Count(domain.EventComponentMoved) != 0 || c.Revision() != rev {
		t.Error("a click must not commit a move")
	}
	if diff := cmp.Diff([]string{inst.ID}, c.SelectedComponentIDs()); diff != "" {
		t.Errorf("click selection mismatch (-want +got):\n%s", diff)
	}
	if c.Listeners().Len() != 0 {
		t.Error("listeners leaked after click")
	}
}

func TestDrag_WithoutSnap(t *testing.T) {
	c, _ := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 0, 0)

	c.PointerDown(inst.ID, down(10, 10))
	c.PointerMove(at(23, 17))
	c.PointerUp(at(23, 17))

	if inst.Position != (domain.Position{X: 13, Y: 7}) {
		t.Errorf("Position = %+v, want (13,7)", inst.Position)
	}
}

func TestDrag_PointerDownSelectsOnlyTarget(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	a := mustAdd(t, c, "button", 0, 0)
	b := mustAdd(t, c, "button", 200, 0)
	c.SelectComponent(a.ID, true)
	if got := len(c.SelectedComponentIDs()); got != 2 {
		t.Fatalf("expected two selected before pointer-down, got %d", got)
	}

	c.PointerDown(b.ID, down(210, 10))
	if diff := cmp.Diff([]string{b.ID}, lastSelection(t, events)); diff != "" {
		t.Errorf("pointer-down selection mismatch (-want +got):\n%s", diff)
	}
	c.PointerUp(at(210, 10))

	// A second press on the selected target keeps it the only selection.
	c.PointerDown(b.ID, down(210, 10))
	c.PointerMove(at(240, 10))
	c.PointerUp(at(240, 10))
	if b.Position != (domain.Position{X: 230, Y: 0}) {
		t.Errorf("Position = %+v, want (230,0)", b.Position)
	}
	if diff := cmp.Diff([]string{b.ID}, lastSelection(t, events)); diff != "" {
		t.Errorf("pointer-up selection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{b.ID}, c.SelectedComponentIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestDrag_UnknownTarget(t *testing.T) {
	c, _ := newTestComposer(t, service.DefaultOptions())
	if c.PointerDown("missing", down(0, 0)) {
		t.Error("PointerDown accepted an unknown id")
	}
	if c.Listeners().Len() != 0 {
		t.Error("listeners registered for an unknown id")
	}
}

func TestDrag_StaleEventsAfterUpAreIgnored(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 0, 0)

	c.PointerDown(inst.ID, down(0, 0))
	c.PointerMove(at(50, 0))
	c.PointerUp(at(50, 0))
	events.Reset()

	c.PointerMove(at(300, 300))
	c.PointerUp(at(300, 300))

	if inst.Position != (domain.Position{X: 50, Y: 0}) {
		t.Errorf("stale move changed position to %+v", inst.Position)
	}
	if len(events.Names()) != 0 {
		t.Errorf("stale events emitted %v", events.Names())
	}
}

// ─────────────────────────────────────────────────────────────
// Resize
// ─────────────────────────────────────────────────────────────

func TestResizeRect(t *testing.T) {
	start := domain.Rect{Position: domain.Position{X: 50, Y: 50}, Size: domain.Size{Width: 100, Height: 100}}
	rect := func(x, y, w, h float64) domain.Rect {
		return domain.Rect{Position: domain.Position{X: x, Y: y}, Size: domain.Size{Width: w, Height: h}}
	}

	tests := []struct {
		name   string
		handle domain.Handle
		dx, dy float64
		want   domain.Rect
	}{
		{"se grows", domain.HandleSE, 30, 10, rect(50, 50, 130, 110)},
		{"nw keeps bottom-right", domain.HandleNW, -20, -20, rect(30, 30, 120, 120)},
		{"n moves top edge", domain.HandleN, 999, 40, rect(50, 90, 100, 60)},
		{"s ignores dx", domain.HandleS, 40, 25, rect(50, 50, 100, 125)},
		{"ne", domain.HandleNE, 10, 10, rect(50, 60, 110, 90)},
		{"sw", domain.HandleSW, 10, 10, rect(60, 50, 90, 110)},
		{"e floors width", domain.HandleE, -150, 0, rect(50, 50, 20, 100)},
		{"w floors width against right edge", domain.HandleW, 150, 0, rect(130, 50, 20, 100)},
		{"nw floors both axes", domain.HandleNW, 500, 500, rect(130, 130, 20, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.ResizeRect(start, tt.handle, tt.dx, tt.dy, 20)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResizeRect mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got := service.ResizeRect(start, domain.HandleNW, -20, -20, 20)
	if got.BottomRight() != start.BottomRight() {
		t.Errorf("nw resize moved the anchor: %+v -> %+v", start.BottomRight(), got.BottomRight())
	}
}

func TestResize_ThroughPointerEvents(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "container", 50, 50)
	c.ResizeComponent(inst.ID, domain.Size{Width: 100, Height: 100})
	events.Reset()

	ok, err := c.PointerDownHandle(inst.ID, domain.HandleNW, down(50, 50))
	if err != nil || !ok {
		t.Fatalf("PointerDownHandle = %v, %v", ok, err)
	}
	c.PointerMove(at(40, 40))
	c.PointerMove(at(30, 30))
	c.PointerUp(at(30, 30))

	if inst.Position != (domain.Position{X: 30, Y: 30}) || inst.Size != (domain.Size{Width: 120, Height: 120}) {
		t.Errorf("got %+v %+v", inst.Position, inst.Size)
	}
	if inst.Props["width"] != 120.0 || inst.Props["height"] != 120.0 {
		t.Errorf("size props not synced: %v", inst.Props)
	}
	resized := events.Named(domain.EventComponentResized)
	if len(resized) != 1 {
		t.Fatalf("componentResized fired %d times", len(resized))
	}
	want := domain.ComponentResized{ID: inst.ID, Size: inst.Size, Position: inst.Position}
	if diff := cmp.Diff(want, resized[0].Data); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if c.Listeners().Len() != 0 {
		t.Error("listeners leaked after resize")
	}
}

func TestResize_RequiresSoleSelection(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	a := mustAdd(t, c, "button", 0, 0)
	b := mustAdd(t, c, "button", 200, 0)
	c.SelectComponent(a.ID, false)
	events.Reset()

	refuse := func(name string) {
		t.Helper()
		ok, err := c.PointerDownHandle(b.ID, domain.HandleSE, down(300, 40))
		if ok || err != nil {
			t.Errorf("%s: PointerDownHandle = %v, %v, want false, nil", name, ok, err)
		}
		if _, active := c.ActiveSession(); active {
			t.Errorf("%s: session started", name)
		}
		if c.Listeners().Len() != 0 {
			t.Errorf("%s: listeners registered", name)
		}
		c.PointerMove(at(350, 90))
		c.PointerUp(at(350, 90))
		if b.Size != (domain.Size{Width: 100, Height: 40}) {
			t.Errorf("%s: size changed to %+v", name, b.Size)
		}
	}

	refuse("not selected")
	c.SelectComponent(b.ID, true)
	refuse("one of two selected")
	c.ClearSelection()
	refuse("nothing selected")
	if n := len(events.Named(domain.EventComponentResized)); n != 0 {
		t.Errorf("componentResized fired %d times", n)
	}

	c.SelectComponent(b.ID, false)
	if ok, err := c.PointerDownHandle(b.ID, domain.HandleSE, down(300, 40)); !ok || err != nil {
		t.Fatalf("sole selection: PointerDownHandle = %v, %v", ok, err)
	}
}

func TestResize_UnknownHandle(t *testing.T) {
	c, _ := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 0, 0)

	_, err := c.PointerDownHandle(inst.ID, domain.Handle("middle"), down(0, 0))
	if !errors.Is(err, domain.ErrUnknownHandle) {
		t.Errorf("expected ErrUnknownHandle, got %v", err)
	}
	if _, active := c.ActiveSession(); active {
		t.Error("invalid handle started a session")
	}
}

// ─────────────────────────────────────────────────────────────
// Session lifecycle
// ─────────────────────────────────────────────────────────────

func TestSession_CancelRestoresTarget(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 10, 10)

	c.PointerDown(inst.ID, down(10, 10))
	c.PointerMove(at(100, 100))
	if !c.CancelInteraction() {
		t.Fatal("CancelInteraction found no session")
	}
	if c.CancelInteraction() {
		t.Error("second cancel should report no session")
	}

	if inst.Position != (domain.Position{X: 10, Y: 10}) {
		t.Errorf("cancel left the instance at %+v", inst.Position)
	}
	cancelled := events.Named(domain.EventInteractionCancelled)
	if len(cancelled) != 1 || cancelled[0].Data.(domain.InteractionCancelled).Reason != "cancelled" {
		t.Errorf("interactionCancelled = %+v", cancelled)
	}
	if c.Listeners().Len() != 0 {
		t.Error("listeners leaked after cancel")
	}
}

func TestSession_NewPointerDownSupersedes(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	a := mustAdd(t, c, "button", 0, 0)
	b := mustAdd(t, c, "button", 200, 0)

	c.PointerDown(a.ID, down(0, 0))
	c.PointerMove(at(50, 50))
	c.PointerDown(b.ID, down(200, 0))

	if a.Position != (domain.Position{X: 0, Y: 0}) {
		t.Errorf("superseded drag left A at %+v", a.Position)
	}
	cancelled := events.Named(domain.EventInteractionCancelled)
	if len(cancelled) != 1 {
		t.Fatalf("expected one cancellation, got %d", len(cancelled))
	}
	want := domain.InteractionCancelled{ID: a.ID, Kind: "drag", Reason: "superseded"}
	if diff := cmp.Diff(want, cancelled[0].Data); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	info, _ := c.ActiveSession()
	if info.TargetID != b.ID || info.Kind != service.SessionDrag {
		t.Errorf("active session = %+v", info)
	}
	if c.Listeners().Len() != 2 {
		t.Errorf("expected only the new session's listeners, got %d", c.Listeners().Len())
	}
}

func TestSession_SupersedeOnSameTargetStartsFromRestoredGeometry(t *testing.T) {
	c, events := newTestComposer(t, service.DefaultOptions())
	a := mustAdd(t, c, "container", 0, 0)

	c.PointerDown(a.ID, down(0, 0))
	c.PointerMove(at(50, 50))
	ok, err := c.PointerDownHandle(a.ID, domain.HandleSE, down(100, 40))
	if !ok || err != nil {
		t.Fatalf("PointerDownHandle = %v, %v", ok, err)
	}
	if n := len(events.Named(domain.EventInteractionCancelled)); n != 1 {
		t.Fatalf("expected one cancellation, got %d", n)
	}
	info, _ := c.ActiveSession()
	if info.TargetID != a.ID || info.Kind != service.SessionResize || info.Handle != domain.HandleSE {
		t.Errorf("active session = %+v", info)
	}

	c.PointerMove(at(110, 50))
	c.PointerUp(at(110, 50))
	if a.Position != (domain.Position{X: 0, Y: 0}) || a.Size != (domain.Size{Width: 110, Height: 50}) {
		t.Errorf("got %+v %+v, want (0,0) 110x50", a.Position, a.Size)
	}
}

func TestSession_ReportsStartTime(t *testing.T) {
	c, _ := newTestComposer(t, service.DefaultOptions())
	inst := mustAdd(t, c, "button", 0, 0)

	before := time.Now()
	c.PointerDown(inst.ID, down(0, 0))
	after := time.Now()

	info, active := c.ActiveSession()
	if !active {
		t.Fatal("no active session after pointer-down")
	}
	if info.StartedAt.Before(before) || info.StartedAt.After(after) {
		t.Errorf("StartedAt = %v, want within [%v, %v]", info.StartedAt, before, after)
	}
	c.PointerUp(at(0, 0))
}

func TestSession_ReleasedOnEveryExit(t *testing.T) {
	ctx := context.Background()

	t.Run("target removed", func(t *testing.T) {
		c, events := newTestComposer(t, service.DefaultOptions())
		inst := mustAdd(t, c, "button", 0, 0)
		c.PointerDown(inst.ID, down(0, 0))
		c.RemoveComponent(inst.ID)
		if c.Listeners().Len() != 0 {
			t.Error("listeners leaked")
		}
		cancelled := events.Named(domain.EventInteractionCancelled)
		if len(cancelled) != 1 || cancelled[0].Data.(domain.InteractionCancelled).Reason != "removed" {
			t.Errorf("interactionCancelled = %+v", cancelled)
		}
	})

	t.Run("template loaded", func(t *testing.T) {
		c, _ := newTestComposer(t, service.DefaultOptions())
		inst := mustAdd(t, c, "button", 0, 0)
		tpl, err := c.SaveTemplate(ctx, "t", "")
		if err != nil {
			t.Fatalf("SaveTemplate: %v", err)
		}
		if ok, _ := c.PointerDownHandle(inst.ID, domain.HandleE, down(100, 20)); !ok {
			t.Fatal("PointerDownHandle refused the sole selection")
		}
		if err := c.LoadTemplate(ctx, tpl.ID); err != nil {
			t.Fatalf("LoadTemplate: %v", err)
		}
		if c.Listeners().Len() != 0 {
			t.Error("listeners leaked")
		}
	})

	t.Run("undo", func(t *testing.T) {
		c, _ := newTestComposer(t, service.DefaultOptions())
		mustAdd(t, c, "button", 0, 0)
		inst := mustAdd(t, c, "button", 200, 0)
		c.PointerDown(inst.ID, down(200, 0))
		if !c.Undo() {
			t.Fatal("Undo reported nothing to undo")
		}
		if c.Listeners().Len() != 0 {
			t.Error("listeners leaked")
		}
		if _, active := c.ActiveSession(); active {
			t.Error("session survived undo")
		}
	})
}
