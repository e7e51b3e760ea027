package service

import "composer/internal/domain"

// ─────────────────────────────────────────────────────────────
// Resize: Idle → Resizing → Idle, anchored per handle
// ─────────────────────────────────────────────────────────────

// PointerDownHandle starts resizing id from one of its eight handles.
// Handles only exist on the sole selection: unless the selection is exactly
// [id] the call is ignored and reports false. It fails only for an invalid
// handle.
func (c *Composer) PointerDownHandle(id string, handle domain.Handle, ev domain.PointerEvent) (bool, error) {
	if _, err := domain.ParseHandle(string(handle)); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.unlockAndFlush()

	inst, ok := c.store.Get(id)
	if !ok {
		return false, nil
	}
	if ids := c.selection.IDs(); len(ids) != 1 || ids[0] != id {
		return false, nil
	}
	s := &session{kind: SessionResize, startPointer: ev.Position, handle: handle}
	c.beginSessionLocked(s, inst, c.onResizeMove, c.onResizeUp)
	return true, nil
}

func (c *Composer) onResizeMove(s *session, ev *domain.PointerEvent) {
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
	ev.PreventDefault()

	delta := ev.Position.Sub(s.startPointer)
	r := ResizeRect(domain.Rect{Position: s.startPosition, Size: s.startSize}, s.handle, delta.X, delta.Y, c.opts.MinSize)
	inst.Position = r.Position
	inst.Size = r.Size
	syncSizeProps(inst)
	c.queue(domain.EventRenderUpdate, transformOf(inst))
}

func (c *Composer) onResizeUp(s *session, _ *domain.PointerEvent) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.session != s {
		return
	}
	c.endSessionLocked()
	inst, ok := c.store.Get(s.targetID)
	if !ok {
		return
	}
	c.queue(domain.EventComponentResized, domain.ComponentResized{ID: inst.ID, Size: inst.Size, Position: inst.Position})
	c.commitLocked()
	c.queueSelection()
}

// ResizeRect applies a pointer delta (dx, dy) from handle h to the start
// rectangle. The edge or corner opposite the handle stays fixed: whenever
// the anchor is not the top-left corner the position is recomputed as the
// fixed coordinate minus the new size. Width and height are floored at
// minSize independently; nothing is clamped to canvas bounds.
func ResizeRect(start domain.Rect, h domain.Handle, dx, dy, minSize float64) domain.Rect {
	right := start.X + start.Width
	bottom := start.Y + start.Height

	w, ht := start.Width, start.Height
	switch h {
	case domain.HandleE, domain.HandleNE, domain.HandleSE:
		w = start.Width + dx
	case domain.HandleW, domain.HandleNW, domain.HandleSW:
		w = start.Width - dx
	}
	switch h {
	case domain.HandleS, domain.HandleSE, domain.HandleSW:
		ht = start.Height + dy
	case domain.HandleN, domain.HandleNE, domain.HandleNW:
		ht = start.Height - dy
	}
	w = max(w, minSize)
	ht = max(ht, minSize)

	pos := start.Position
	switch h {
	case domain.HandleW, domain.HandleNW, domain.HandleSW:
		pos.X = right - w
	}
	switch h {
	case domain.HandleN, domain.HandleNE, domain.HandleNW:
		pos.Y = bottom - ht
	}
	return domain.Rect{Position: pos, Size: domain.Size{Width: w, Height: ht}}
}

// syncSizeProps mirrors the instance size into its width/height props so
// property panels bound to either stay consistent.
func syncSizeProps(inst *domain.ComponentInstance) {
	if inst.Props == nil {
		inst.Props = make(map[string]any)
	}
	inst.Props["width"] = inst.Size.Width
	inst.Props["height"] = inst.Size.Height
}
