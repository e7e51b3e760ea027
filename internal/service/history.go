package service

import "composer/internal/domain"

// DefaultHistoryLimit bounds the number of snapshots kept for undo.
const DefaultHistoryLimit = 40

// History is a linear undo stack of canvas snapshots. cursor points at the
// snapshot matching the current canvas.
type History struct {
	limit     int
	snapshots [][]domain.SerializedComponent
	cursor    int
}

// NewHistory creates a history holding initial as its only snapshot.
func NewHistory(limit int, initial []domain.SerializedComponent) *History {
	if limit < 2 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, snapshots: [][]domain.SerializedComponent{initial}}
}

// Push records a new current snapshot, dropping any redo branch and the
// oldest entries beyond the limit.
func (h *History) Push(snap []domain.SerializedComponent) {
	h.snapshots = append(h.snapshots[:h.cursor+1], snap)
	if over := len(h.snapshots) - h.limit; over > 0 {
		h.snapshots = h.snapshots[over:]
	}
	h.cursor = len(h.snapshots) - 1
}

// Undo steps back and returns the snapshot to restore.
func (h *History) Undo() ([]domain.SerializedComponent, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.snapshots[h.cursor], true
}

// Redo steps forward and returns the snapshot to restore.
func (h *History) Redo() ([]domain.SerializedComponent, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.snapshots[h.cursor], true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.snapshots) }
