package history

import "github.com/dshills/piecetable/internal/engine/piece"

// Checkpoint marks a position in the undo history.
type Checkpoint struct {
	seq uint64
}

// CreateCheckpoint returns a checkpoint at the current history position.
func (h *History) CreateCheckpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{seq: h.seq}
}

// UndoToCheckpoint undoes every entry pushed after cp was created and
// returns how many it undid. Entries that were already recorded at cp are
// never touched, even if they were undone and redone since.
func (h *History) UndoToCheckpoint(cp Checkpoint, t *piece.Table) (int, error) {
	n := 0
	for h.newerThan(cp) {
		if err := h.Undo(t); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// newerThan reports whether the next undo entry was pushed after cp.
func (h *History) newerThan(cp Checkpoint) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return false
	}
	return h.undoStack[len(h.undoStack)-1].seq > cp.seq
}
