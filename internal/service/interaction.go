package service

import (
	"log"
	"time"

	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Interaction sessions: one drag or resize at a time
// ─────────────────────────────────────────────────────────────

// SessionKind tells a drag session from a resize session.
type SessionKind string

const (
	SessionDrag   SessionKind = "drag"
	SessionResize SessionKind = "resize"
)

// session is the ephemeral state between pointer-down and pointer-up. The
// start position and size are snapshots: every move is computed against
// them, never against the live instance.
type session struct {
	kind          SessionKind
	targetID      string
	startPointer  domain.Position
	startedAt     time.Time
	startPosition domain.Position
	startSize     domain.Size
	offset        domain.Position // drag: pointer - position at pointer-down
	handle        domain.Handle   // resize only
	dragging      bool            // drag: threshold crossed
	listeners     []ListenerID
}

// SessionInfo describes the active interaction, for hosts and agents.
type SessionInfo struct {
	Kind      SessionKind   `json:"kind"`
	TargetID  string        `json:"targetId"`
	Handle    domain.Handle `json:"handle,omitempty"`
	Dragging  bool          `json:"dragging"`
	StartedAt time.Time     `json:"startedAt"`
}

// beginSessionLocked installs s as the active session on inst and acquires
// its document listeners. An already active session is force-cancelled
// first, so the start snapshot is taken after its target has been restored.
func (c *Composer) beginSessionLocked(s *session, inst *domain.ComponentInstance, onMove, onUp func(*session, *domain.PointerEvent)) {
	if c.session != nil {
		log.Printf("[COMPOSER] %s session on %s superseded by %s on %s", c.session.kind, c.session.targetID, s.kind, s.targetID)
		c.cancelSessionLocked("superseded")
	}
	s.targetID = inst.ID
	s.startedAt = time.Now()
	s.startPosition = inst.Position
	s.startSize = inst.Size
	if s.kind == SessionDrag {
		s.offset = s.startPointer.Sub(inst.Position)
	}
	c.session = s
	s.listeners = []ListenerID{
		c.doc.Add(ListenerPointerMove, func(ev *domain.PointerEvent) { onMove(s, ev) }),
		c.doc.Add(ListenerPointerUp, func(ev *domain.PointerEvent) { onUp(s, ev) }),
	}
}

// endSessionLocked is the single release path of a session: it drops the
// document listeners and clears the session state. Every exit (pointer-up,
// cancel, target removed, template load, undo) goes through here.
func (c *Composer) endSessionLocked() *session {
	s := c.session
	if s == nil {
		return nil
	}
	for _, id := range s.listeners {
		c.doc.Remove(id)
	}
	s.listeners = nil
	c.session = nil
	return s
}

// cancelSessionLocked ends the active session and restores its target to
// the snapshot taken at pointer-down.
func (c *Composer) cancelSessionLocked(reason string) {
	s := c.endSessionLocked()
	if s == nil {
		return
	}
	if inst, ok := c.store.Get(s.targetID); ok {
		inst.Position = s.startPosition
		inst.Size = s.startSize
		if s.kind == SessionResize {
			syncSizeProps(inst)
		}
		c.queue(domain.EventRenderUpdate, transformOf(inst))
	}
	c.queue(domain.EventInteractionCancelled, domain.InteractionCancelled{
		ID:     s.targetID,
		Kind:   string(s.kind),
		Reason: reason,
	})
}

// abortSessionLocked ends the active session without touching its target,
// used when the target is going away.
func (c *Composer) abortSessionLocked(reason string) {
	s := c.endSessionLocked()
	if s == nil {
		return
	}
	c.queue(domain.EventInteractionCancelled, domain.InteractionCancelled{
		ID:     s.targetID,
		Kind:   string(s.kind),
		Reason: reason,
	})
}

// PointerMove feeds a document-level pointer-move to the active session.
func (c *Composer) PointerMove(ev *domain.PointerEvent) {
	c.doc.Dispatch(ListenerPointerMove, ev)
}

// PointerUp feeds a document-level pointer-up to the active session.
func (c *Composer) PointerUp(ev *domain.PointerEvent) {
	c.doc.Dispatch(ListenerPointerUp, ev)
}

// CancelInteraction aborts the active drag or resize, restoring the target
// to where it was at pointer-down. It reports whether a session was active.
func (c *Composer) CancelInteraction() bool {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.session == nil {
		return false
	}
	c.cancelSessionLocked("cancelled")
	return true
}

// ActiveSession describes the active interaction, if any.
func (c *Composer) ActiveSession() (SessionInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return SessionInfo{}, false
	}
	return SessionInfo{
		Kind:      c.session.kind,
		TargetID:  c.session.targetID,
		Handle:    c.session.handle,
		Dragging:  c.session.dragging,
		StartedAt: c.session.startedAt,
	}, true
}

// Listeners exposes the document listener table the composer registers
// sessions on.
func (c *Composer) Listeners() *ListenerTable {
	return c.doc
}
