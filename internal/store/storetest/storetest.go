// Package storetest checks that an export.Store behaves like the others.
package storetest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/example/photomark/internal/export"
)

// Sample returns a small encoded export for sessionID.
func Sample(t *testing.T, sessionID string) *export.Export {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	e, err := export.New(sessionID, buf.Bytes())
	if err != nil {
		t.Fatalf("new export: %v", err)
	}
	return e
}

// Run exercises put, get, list and delete against st.
func Run(t *testing.T, st export.Store) {
	t.Helper()
	ctx := context.Background()

	first := Sample(t, "session-a")
	second := Sample(t, "session-b")
	for _, e := range []*export.Export{first, second} {
		if err := st.Put(ctx, e); err != nil {
			t.Fatalf("Put(%s) failed: %v", e.ID, err)
		}
	}

	got, err := st.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !bytes.Equal(got.Data, first.Data) {
		t.Errorf("Get() data mismatch: got %d bytes, want %d", len(got.Data), len(first.Data))
	}
	if got.SessionID != "session-a" || got.Width != 4 || got.Height != 3 {
		t.Errorf("Get() metadata mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Get() created at %v, want %v", got.CreatedAt, first.CreatedAt)
	}

	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d exports, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("List() not newest first: %s, %s", list[0].ID, list[1].ID)
	}
	for _, e := range list {
		if e.Data != nil {
			t.Errorf("List() entry %s carries data", e.ID)
		}
		if e.Size != len(first.Data) {
			t.Errorf("List() entry %s size %d, want %d", e.ID, e.Size, len(first.Data))
		}
	}

	if err := st.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := st.Get(ctx, first.ID); !errors.Is(err, export.ErrNotFound) {
		t.Errorf("Get() after delete: got %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, first.ID); !errors.Is(err, export.ErrNotFound) {
		t.Errorf("second Delete(): got %v, want ErrNotFound", err)
	}
	if _, err := st.Get(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"); !errors.Is(err, export.ErrNotFound) {
		t.Errorf("Get() unknown id: got %v, want ErrNotFound", err)
	}
}
