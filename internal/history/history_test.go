package history

import (
	"testing"

	"github.com/example/photomark/internal/surface"
)

func snap(s string) surface.Snapshot { return surface.Snapshot(s) }

func TestUndoRedoBounds(t *testing.T) {
	h := New(0)
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo on empty history should be a no-op")
	}
	h.Push(snap("s0"))
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo at the first entry should be a no-op")
	}
	h.Push(snap("s1"))
	h.Push(snap("s2"))
	if _, ok := h.Redo(); ok {
		t.Fatalf("redo at the newest entry should be a no-op")
	}
	got, ok := h.Undo()
	if !ok || string(got) != "s1" {
		t.Fatalf("expected s1, got %q %v", got, ok)
	}
	got, ok = h.Redo()
	if !ok || string(got) != "s2" {
		t.Fatalf("expected s2, got %q %v", got, ok)
	}
	if h.Index() != 2 || h.Len() != 3 {
		t.Fatalf("unexpected cursor %d len %d", h.Index(), h.Len())
	}
}

func TestPushTruncatesRedoBranch(t *testing.T) {
	h := New(0)
	for _, s := range []string{"s0", "s1", "s2", "s3"} {
		h.Push(snap(s))
	}
	h.Undo()
	h.Undo()
	h.Push(snap("x"))
	if h.Len() != 3 {
		t.Fatalf("expected 3 entries after truncation, got %d", h.Len())
	}
	if h.CanRedo() {
		t.Fatalf("redo branch should be gone")
	}
	cur, _ := h.Current()
	if string(cur) != "x" {
		t.Fatalf("expected x current, got %q", cur)
	}
	prev, _ := h.Undo()
	if string(prev) != "s1" {
		t.Fatalf("expected s1 before x, got %q", prev)
	}
}

func TestLimitDropsOldest(t *testing.T) {
	h := New(3)
	for _, s := range []string{"s0", "s1", "s2", "s3", "s4"} {
		h.Push(snap(s))
	}
	if h.Len() != 3 || h.Index() != 2 {
		t.Fatalf("expected len 3 index 2, got %d %d", h.Len(), h.Index())
	}
	h.Undo()
	got, _ := h.Undo()
	if string(got) != "s2" {
		t.Fatalf("expected oldest retained s2, got %q", got)
	}
	if h.CanUndo() {
		t.Fatalf("cannot undo past the oldest retained entry")
	}
}

func TestReset(t *testing.T) {
	h := New(DefaultLimit)
	h.Push(snap("a"))
	h.Reset()
	if h.Len() != 0 || h.Index() != -1 {
		t.Fatalf("reset did not clear history")
	}
	if _, ok := h.Current(); ok {
		t.Fatalf("expected no current entry")
	}
}
