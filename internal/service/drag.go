package service

import (
	"math"

	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Drag: Idle → Armed → Dragging → Idle
// ─────────────────────────────────────────────────────────────

// PointerDown arms a drag on the instance under the pointer and makes it the
// only selected instance. The instance does not move until the pointer
// travels further than the drag threshold; releasing before that is a plain
// click. Unknown ids are ignored.
func (c *Composer) PointerDown(id string, ev domain.PointerEvent) bool {
	c.mu.Lock()
	defer c.unlockAndFlush()

	inst, ok := c.store.Get(id)
	if !ok {
		return false
	}
	s := &session{kind: SessionDrag, startPointer: ev.Position}
	c.beginSessionLocked(s, inst, c.onDragMove, c.onDragUp)
	c.selectLocked(id, false)
	c.queueSelection()
	return true
}

func (c *Composer) onDragMove(s *session, ev *domain.PointerEvent) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.session != s {
		return
	}
	inst, ok := c.store.Get(s.targetID)
	if !ok {
		c.abortSessionLocked("removed")
		return
	}
	if !s.dragging {
		if ev.Position.Distance(s.startPointer) <= c.opts.DragThreshold {
			return
		}
		s.dragging = true
	}
	ev.PreventDefault()

	pos := ev.Position.Sub(s.offset)
	if c.opts.SnapToGrid {
		pos = c.snapPosition(pos)
	}
	inst.Position = pos
	c.queue(domain.EventRenderUpdate, transformOf(inst))
}

func (c *Composer) onDragUp(s *session, _ *domain.PointerEvent) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.session != s {
		return
	}
	c.endSessionLocked()
	if !s.dragging {
		return
	}
	inst, ok := c.store.Get(s.targetID)
	if !ok {
		return
	}
	c.queue(domain.EventComponentMoved, domain.ComponentMoved{ID: inst.ID, Position: inst.Position})
	c.commitLocked()
	// Property panels bound to position/size refresh on selection events.
	c.queueSelection()
}

// snapPosition rounds each axis to the nearest grid multiple.
func (c *Composer) snapPosition(p domain.Position) domain.Position {
	return domain.Position{X: snap(p.X, c.opts.GridSize), Y: snap(p.Y, c.opts.GridSize)}
}

func snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}
