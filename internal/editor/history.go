package editor

// history is a bounded linear undo/redo stack. When the undo stack is full
// the oldest entry is evicted; a fresh edit clears the redo stack.
type history struct {
	capacity int
	undo     []string
	redo     []string
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = 100
	}
	return &history{capacity: capacity}
}

// push records the state being replaced by an edit.
func (h *history) push(state string) {
	if len(h.undo) == h.capacity {
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:h.capacity-1]
	}
	h.undo = append(h.undo, state)
	h.redo = h.redo[:0]
}

// undoTo exchanges current for the most recent undo state. Reports ok=false
// when there is nothing to undo.
func (h *history) undoTo(current string) (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	state := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return state, true
}

// redoTo exchanges current for the most recently undone state.
func (h *history) redoTo(current string) (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	state := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, state)
	return state, true
}

func (h *history) canUndo() bool { return len(h.undo) > 0 }
func (h *history) canRedo() bool { return len(h.redo) > 0 }
