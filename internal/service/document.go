package service

import (
	"sort"
	"sync"

	"composer/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Document listeners: pointer listeners scoped to the whole page
// ─────────────────────────────────────────────────────────────

// ListenerKind is the pointer event a document listener receives.
type ListenerKind string

const (
	ListenerPointerMove ListenerKind = "pointermove"
	ListenerPointerUp   ListenerKind = "pointerup"
)

// ListenerID identifies one registration so it can be released.
type ListenerID uint64

// Listener handles one pointer event.
type Listener func(ev *domain.PointerEvent)

type listenerEntry struct {
	kind ListenerKind
	fn   Listener
}

// ListenerTable is the document-level listener registry. Interaction
// sessions register move/up listeners here on pointer-down and release them
// when the session ends; the host feeds every raw pointer event to Dispatch,
// including those released outside the canvas.
type ListenerTable struct {
	mu        sync.Mutex
	next      ListenerID
	listeners map[ListenerID]listenerEntry
}

// NewListenerTable creates an empty table.
func NewListenerTable() *ListenerTable {
	return &ListenerTable{listeners: make(map[ListenerID]listenerEntry)}
}

// Add registers fn for kind.
func (t *ListenerTable) Add(kind ListenerKind, fn Listener) ListenerID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.listeners[t.next] = listenerEntry{kind: kind, fn: fn}
	return t.next
}

// Remove releases a registration. It reports whether id was registered.
func (t *ListenerTable) Remove(id ListenerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.listeners[id]; !ok {
		return false
	}
	delete(t.listeners, id)
	return true
}

// Dispatch delivers ev to every listener of kind in registration order and
// returns how many were called. Listeners run outside the table lock, so
// they may add or remove registrations.
func (t *ListenerTable) Dispatch(kind ListenerKind, ev *domain.PointerEvent) int {
	t.mu.Lock()
	ids := make([]ListenerID, 0, len(t.listeners))
	for id, e := range t.listeners {
		if e.kind == kind {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]Listener, len(ids))
	for i, id := range ids {
		fns[i] = t.listeners[id].fn
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

// Len returns the number of live registrations.
func (t *ListenerTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}
