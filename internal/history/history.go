// Package history keeps the linear undo/redo log of surface snapshots.
package history

import "github.com/example/photomark/internal/surface"

// DefaultLimit is the number of snapshots retained when no limit is given.
const DefaultLimit = 100

// History is a linear snapshot log with a cursor. Pushing while the cursor
// is not at the newest entry discards the entries after it.
type History struct {
	entries []surface.Snapshot
	index   int
	limit   int
}

// New returns an empty history keeping at most limit snapshots. A limit of
// zero or less keeps everything.
func New(limit int) *History {
	return &History{index: -1, limit: limit}
}

// Push records snap as the newest entry.
func (h *History) Push(snap surface.Snapshot) {
	if h.index < len(h.entries)-1 {
		for i := h.index + 1; i < len(h.entries); i++ {
			h.entries[i] = nil
		}
		h.entries = h.entries[:h.index+1]
	}
	h.entries = append(h.entries, snap)
	h.index = len(h.entries) - 1
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		kept := make([]surface.Snapshot, h.limit)
		copy(kept, h.entries[drop:])
		h.entries = kept
		h.index -= drop
	}
}

// Undo moves the cursor back and returns the snapshot to restore. It is a
// no-op at the oldest entry.
func (h *History) Undo() (surface.Snapshot, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.index--
	return h.entries[h.index], true
}

// Redo moves the cursor forward. It is a no-op at the newest entry.
func (h *History) Redo() (surface.Snapshot, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.index++
	return h.entries[h.index], true
}

func (h *History) CanUndo() bool { return h.index > 0 }
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }

// Current returns the snapshot under the cursor.
func (h *History) Current() (surface.Snapshot, bool) {
	if h.index < 0 {
		return nil, false
	}
	return h.entries[h.index], true
}

// Each calls fn for every retained snapshot, oldest first.
func (h *History) Each(fn func(surface.Snapshot)) {
	for _, e := range h.entries {
		fn(e)
	}
}

// Len returns the number of retained snapshots.
func (h *History) Len() int { return len(h.entries) }

// Index returns the cursor position, -1 when empty.
func (h *History) Index() int { return h.index }

// Limit returns the configured retention limit.
func (h *History) Limit() int { return h.limit }

// Reset drops every entry.
func (h *History) Reset() {
	h.entries = nil
	h.index = -1
}
