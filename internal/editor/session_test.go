package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/example/photomark/internal/config"
	"github.com/example/photomark/internal/ingest"
	"github.com/example/photomark/internal/surface"
)

func photo(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func openSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := Open(context.Background(), ingest.Bytes(photo(t, 800, 600)), opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func drag(t *testing.T, s *Session, from, to surface.Point) {
	t.Helper()
	if err := s.PointerDown(from); err != nil {
		t.Fatalf("down: %v", err)
	}
	if err := s.PointerMove(to); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := s.PointerUp(to); err != nil {
		t.Fatalf("up: %v", err)
	}
}

func only[T surface.Object](t *testing.T, s *Session) T {
	t.Helper()
	objs := s.Objects()
	if len(objs) != 1 {
		t.Fatalf("expected one object, got %d", len(objs))
	}
	o, ok := objs[0].(T)
	if !ok {
		t.Fatalf("unexpected object type %T", objs[0])
	}
	return o
}

func TestOpenStartsInSelectMode(t *testing.T) {
	s := openSession(t)
	st := s.State()
	if st.Mode != ModeSelect {
		t.Fatalf("mode %q", st.Mode)
	}
	if !st.HasImage || st.Objects != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.CanUndo || st.CanRedo || st.HistoryLen != 1 {
		t.Fatalf("history should hold only the loaded image: %+v", st)
	}
	if st.Color != surface.DefaultColor {
		t.Fatalf("colour %v", st.Color)
	}
}

func TestRectangleDrag(t *testing.T) {
	s := openSession(t)
	if err := s.SetMode(ModeRectangle); err != nil {
		t.Fatalf("mode: %v", err)
	}
	drag(t, s, surface.Pt(100, 100), surface.Pt(40, 160))

	r := only[*surface.Rect](t, s)
	if r.Left != 40 || r.Top != 100 || r.Width != 60 || r.Height != 60 {
		t.Fatalf("unexpected geometry %+v", r)
	}
	if r.StrokeWidth != 2 || r.Stroke != surface.DefaultColor {
		t.Fatalf("unexpected style %+v", r)
	}
	st := s.State()
	if st.Mode != ModeRectangle || st.HasSelection {
		t.Fatalf("drawing should not select or switch mode: %+v", st)
	}
	if !st.CanUndo || st.HistoryLen != 2 {
		t.Fatalf("drag should record one snapshot: %+v", st)
	}
}

func TestCircleRadiusFromLargerDelta(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeCircle)
	drag(t, s, surface.Pt(200, 200), surface.Pt(260, 180))
	c := only[*surface.Circle](t, s)
	if c.Radius != 30 {
		t.Fatalf("radius %v, want 30", c.Radius)
	}
	if c.Center != surface.Pt(200, 200) {
		t.Fatalf("centre moved: %+v", c.Center)
	}
}

func TestArrowBecomesSingleGroupedObject(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeArrow)
	if err := s.PointerDown(surface.Pt(100, 100)); err != nil {
		t.Fatalf("down: %v", err)
	}
	s.PointerMove(surface.Pt(150, 100))
	if _, ok := s.Objects()[0].(*surface.Line); !ok {
		t.Fatalf("expected shaft preview while dragging, got %T", s.Objects()[0])
	}
	if err := s.PointerUp(surface.Pt(200, 100)); err != nil {
		t.Fatalf("up: %v", err)
	}
	a := only[*surface.Arrow](t, s)
	if a.StrokeWidth != 3 {
		t.Fatalf("stroke width %v", a.StrokeWidth)
	}
	if a.Shaft.To != surface.Pt(200, 100) {
		t.Fatalf("shaft %+v", a.Shaft)
	}
	for i, h := range a.Heads {
		if h.From != a.Shaft.To {
			t.Fatalf("head %d does not start at the tip", i)
		}
		length := math.Hypot(h.To.X-h.From.X, h.To.Y-h.From.Y)
		if math.Abs(length-15) > 1e-9 {
			t.Fatalf("head %d length %v", i, length)
		}
		angle := math.Atan2(h.From.Y-h.To.Y, h.From.X-h.To.X)
		if math.Abs(math.Abs(angle)-math.Pi/6) > 1e-9 {
			t.Fatalf("head %d angle %v", i, angle)
		}
	}
	if s.State().HistoryLen != 2 {
		t.Fatalf("arrow should be one history step")
	}
}

func TestTextPlacement(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeText)
	before := s.State().HistoryLen
	if err := s.PointerDown(surface.Pt(50, 60)); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if st := s.State(); st.Objects != 0 || st.Mode != ModeText || st.HistoryLen != before {
		t.Fatalf("empty text changed state: %+v", st)
	}

	s.SetText("Look here")
	if err := s.PointerDown(surface.Pt(50, 60)); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := s.PointerUp(surface.Pt(50, 60)); err != nil {
		t.Fatalf("up: %v", err)
	}
	txt := only[*surface.Text](t, s)
	if txt.Left != 50 || txt.Top != 60 || txt.Content != "Look here" {
		t.Fatalf("unexpected text %+v", txt)
	}
	if txt.FontFamily != "Arial" || txt.FontSize != 20 {
		t.Fatalf("unexpected font %+v", txt)
	}
	st := s.State()
	if st.Mode != ModeSelect || st.Selection != txt.ID {
		t.Fatalf("placed text should be selected in select mode: %+v", st)
	}
	if st.HistoryLen != 2 {
		t.Fatalf("history len %d", st.HistoryLen)
	}
}

func TestWhitespaceTextIsPlaced(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeText)
	s.SetText("   ")
	if err := s.PointerDown(surface.Pt(10, 10)); err != nil {
		t.Fatalf("place: %v", err)
	}
	if txt := only[*surface.Text](t, s); txt.Content != "   " {
		t.Fatalf("content %q, want three spaces", txt.Content)
	}
	if st := s.State(); st.HistoryLen != 2 {
		t.Fatalf("history len %d, want 2", st.HistoryLen)
	}
}

func TestSelectAndMove(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(100, 100), surface.Pt(200, 150))
	s.SetMode(ModeSelect)

	drag(t, s, surface.Pt(100, 120), surface.Pt(130, 140))
	r := only[*surface.Rect](t, s)
	if r.Left != 130 || r.Top != 120 {
		t.Fatalf("rect not moved: %+v", r)
	}
	st := s.State()
	if st.Selection != r.ID {
		t.Fatalf("moved object should stay selected")
	}
	if st.HistoryLen != 3 {
		t.Fatalf("move should be recorded, history len %d", st.HistoryLen)
	}

	if err := s.PointerDown(surface.Pt(700, 500)); err != nil {
		t.Fatalf("down: %v", err)
	}
	s.PointerUp(surface.Pt(700, 500))
	if s.State().HasSelection {
		t.Fatalf("click on empty canvas should clear selection")
	}
	if s.State().HistoryLen != 3 {
		t.Fatalf("selection change must not be recorded")
	}
}

func TestClickWithoutMoveIsNotRecorded(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(100, 100), surface.Pt(200, 150))
	s.SetMode(ModeSelect)
	before := s.State().HistoryLen
	s.PointerDown(surface.Pt(100, 100))
	s.PointerUp(surface.Pt(100, 100))
	if got := s.State().HistoryLen; got != before {
		t.Fatalf("history grew from %d to %d", before, got)
	}
}

func TestDrawingModesDoNotSelect(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(100, 100), surface.Pt(200, 150))
	drag(t, s, surface.Pt(150, 120), surface.Pt(170, 140))
	st := s.State()
	if st.HasSelection {
		t.Fatalf("selection in rectangle mode")
	}
	if st.Objects != 2 {
		t.Fatalf("expected second rectangle, got %d objects", st.Objects)
	}
}

func TestModeSwitchAbandonsDrawing(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	s.PointerDown(surface.Pt(10, 10))
	s.PointerMove(surface.Pt(60, 60))
	if s.State().Objects != 1 {
		t.Fatalf("expected preview object")
	}
	if err := s.SetMode(ModeCircle); err != nil {
		t.Fatalf("mode: %v", err)
	}
	st := s.State()
	if st.Objects != 0 || st.HistoryLen != 1 {
		t.Fatalf("abandoned shape left behind: %+v", st)
	}
	if err := s.PointerUp(surface.Pt(60, 60)); err != nil {
		t.Fatalf("stray up: %v", err)
	}
	if s.State().Objects != 0 {
		t.Fatalf("stray pointer-up created an object")
	}
}

func TestColorAppliesToNewObjectsOnly(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(10, 10), surface.Pt(50, 50))
	blue := surface.Color{B: 255, A: 255}
	s.SetColor(blue)
	drag(t, s, surface.Pt(100, 100), surface.Pt(150, 150))
	objs := s.Objects()
	if objs[0].(*surface.Rect).Stroke != surface.DefaultColor {
		t.Fatalf("existing object recoloured")
	}
	if objs[1].(*surface.Rect).Stroke != blue {
		t.Fatalf("new object has %v", objs[1].(*surface.Rect).Stroke)
	}
}

func TestUndoRedo(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(10, 10), surface.Pt(50, 50))
	drag(t, s, surface.Pt(100, 100), surface.Pt(150, 150))

	want, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if ok, err := s.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if ok, err := s.Redo(); !ok || err != nil {
		t.Fatalf("redo: %v %v", ok, err)
	}
	got, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("undo then redo changed the surface:\n%s\n%s", want, got)
	}

	if ok, err := s.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if n := s.State().Objects; n != 1 {
		t.Fatalf("after undo %d objects", n)
	}
	if ok, _ := s.Undo(); !ok {
		t.Fatalf("second undo failed")
	}
	if n := s.State().Objects; n != 0 {
		t.Fatalf("after two undos %d objects", n)
	}
	if ok, _ := s.Undo(); ok {
		t.Fatalf("undo past the loaded image")
	}
	if !s.State().HasImage {
		t.Fatalf("background lost")
	}
	if ok, _ := s.Redo(); !ok {
		t.Fatalf("redo failed")
	}
	if n := s.State().Objects; n != 1 {
		t.Fatalf("after redo %d objects", n)
	}

	s.SetMode(ModeCircle)
	drag(t, s, surface.Pt(300, 300), surface.Pt(320, 320))
	if s.State().CanRedo {
		t.Fatalf("new edit should drop the redo branch")
	}
	if ok, _ := s.Redo(); ok {
		t.Fatalf("redo after branch")
	}
}

func TestHistoryLimit(t *testing.T) {
	s := openSession(t, WithHistoryLimit(3))
	s.SetMode(ModeRectangle)
	for i := 0; i < 5; i++ {
		x := float64(10 + i*20)
		drag(t, s, surface.Pt(x, 10), surface.Pt(x+10, 20))
	}
	if n := s.State().HistoryLen; n != 3 {
		t.Fatalf("history len %d", n)
	}
	s.Undo()
	s.Undo()
	if ok, _ := s.Undo(); ok {
		t.Fatalf("undo beyond limit")
	}
	if n := s.State().Objects; n != 3 {
		t.Fatalf("oldest retained state has %d objects", n)
	}
}

func TestDeleteSelection(t *testing.T) {
	s := openSession(t)
	if ok, err := s.Delete(); ok || err != nil {
		t.Fatalf("delete with no selection: %v %v", ok, err)
	}
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(100, 100), surface.Pt(200, 150))
	s.SetMode(ModeSelect)
	s.PointerDown(surface.Pt(100, 100))
	s.PointerUp(surface.Pt(100, 100))
	before := s.State().HistoryLen
	if ok, err := s.Delete(); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if st := s.State(); st.Objects != 0 || st.HasSelection {
		t.Fatalf("unexpected state %+v", st)
	}
	if got := s.State().HistoryLen; got != before+1 {
		t.Fatalf("delete added %d history entries, want 1", got-before)
	}
	s.Undo()
	if s.State().Objects != 1 {
		t.Fatalf("delete not undoable")
	}
}

func TestSaveInvokesCallbackAndCloses(t *testing.T) {
	var got []byte
	s := openSession(t, WithOnSave(func(b []byte) { got = b }))
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(100, 100), surface.Pt(200, 150))
	data, err := s.Save()
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !bytes.Equal(data, got) {
		t.Fatalf("callback received different bytes")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("export size %v", b)
	}
	if !s.State().Closed {
		t.Fatalf("session still open")
	}
	if err := s.PointerDown(surface.Pt(1, 1)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := s.Save(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second save: %v", err)
	}
}

func TestSaveWithoutImage(t *testing.T) {
	called := false
	s := New(WithOnSave(func([]byte) { called = true }))
	if _, err := s.Save(); !errors.Is(err, surface.ErrEmptyExport) {
		t.Fatalf("expected ErrEmptyExport, got %v", err)
	}
	if called || s.State().Closed {
		t.Fatalf("failed save must leave the session open")
	}
}

func TestSaveClearsSelection(t *testing.T) {
	s := openSession(t)
	s.SetText("hi")
	s.SetMode(ModeText)
	s.PointerDown(surface.Pt(10, 10))
	if !s.State().HasSelection {
		t.Fatalf("text not selected")
	}
	if _, err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.State().HasSelection {
		t.Fatalf("selection survived export")
	}
}

func TestCancel(t *testing.T) {
	cancelled := 0
	saved := false
	s := openSession(t, WithOnCancel(func() { cancelled++ }), WithOnSave(func([]byte) { saved = true }))
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := s.Cancel(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second cancel: %v", err)
	}
	if cancelled != 1 || saved {
		t.Fatalf("cancelled=%d saved=%v", cancelled, saved)
	}
}

func TestLoadFailureKeepsState(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(100, 100), surface.Pt(200, 150))
	err := s.Load(context.Background(), ingest.Bytes([]byte("not an image")))
	if !errors.Is(err, surface.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	st := s.State()
	if st.Objects != 1 || !st.HasImage || st.HistoryLen != 2 {
		t.Fatalf("state changed by failed load: %+v", st)
	}
}

func TestLoadReplacesAnnotations(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(100, 100), surface.Pt(200, 150))
	if err := s.Load(context.Background(), ingest.Bytes(photo(t, 400, 400))); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := s.State().Objects; n != 0 {
		t.Fatalf("objects survived new image: %d", n)
	}
	s.Undo()
	if n := s.State().Objects; n != 1 {
		t.Fatalf("new image should be undoable, got %d objects", n)
	}
}

type gatedSource struct {
	release chan struct{}
	data    []byte
}

func (g *gatedSource) Origin() ingest.Origin { return ingest.OriginBytes }

func (g *gatedSource) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-g.release:
		return g.data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestInputRefusedWhileLoading(t *testing.T) {
	s := New()
	src := &gatedSource{release: make(chan struct{}), data: photo(t, 10, 10)}
	var wg sync.WaitGroup
	wg.Add(1)
	var loadErr error
	go func() {
		defer wg.Done()
		loadErr = s.Load(context.Background(), src)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !s.State().Loading {
		if time.Now().After(deadline) {
			t.Fatalf("load never started")
		}
		time.Sleep(time.Millisecond)
	}
	if err := s.PointerDown(surface.Pt(1, 1)); !errors.Is(err, ErrLoading) {
		t.Fatalf("expected ErrLoading, got %v", err)
	}
	close(src.release)
	wg.Wait()
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if err := s.PointerDown(surface.Pt(1, 1)); err != nil {
		t.Fatalf("input after load: %v", err)
	}
}

func TestSnapshotReferencesBackgroundByKey(t *testing.T) {
	s := openSession(t)
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap) > 4096 {
		t.Fatalf("snapshot embeds pixels: %d bytes", len(snap))
	}
}

func TestPreviewShowsSelection(t *testing.T) {
	s := openSession(t)
	s.SetText("hi")
	s.SetMode(ModeText)
	s.PointerDown(surface.Pt(100, 100))
	img, err := s.Preview()
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Fatalf("preview size %v", b)
	}
	if !s.State().HasSelection {
		t.Fatalf("preview must not clear selection")
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := config.New()
	cfg.CanvasWidth, cfg.CanvasHeight = 400, 300
	cfg.Color = "blue"
	cfg.HistoryLimit = 2
	opts, err := ConfigOptions(cfg)
	if err != nil {
		t.Fatalf("ConfigOptions: %v", err)
	}
	s := New(opts...)
	st := s.State()
	if st.Width != 400 || st.Height != 300 {
		t.Fatalf("size %dx%d, want 400x300", st.Width, st.Height)
	}
	if st.Color.Hex() != "#0000FF" {
		t.Fatalf("colour %s, want #0000FF", st.Color.Hex())
	}

	cfg.Backend = "crayon"
	if _, err := ConfigOptions(cfg); err == nil {
		t.Fatal("expected unknown backend error")
	}
}

func TestToolbarQueries(t *testing.T) {
	s := openSession(t)
	if s.Loading() || s.CanUndo() || s.CanRedo() || s.HasSelection() {
		t.Fatalf("fresh session reports activity")
	}
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(10, 10), surface.Pt(60, 40))
	if !s.CanUndo() {
		t.Fatalf("expected undo after drawing")
	}
	if _, err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !s.CanRedo() {
		t.Fatalf("expected redo after undo")
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.CanRedo() || s.CanUndo() {
		t.Fatalf("closed session offers history")
	}
	if _, err := s.Preview(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from preview, got %v", err)
	}
	if _, err := s.Snapshot(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from snapshot, got %v", err)
	}
}

func TestFarPointerIsPinned(t *testing.T) {
	s := openSession(t)
	s.SetMode(ModeArrow)
	drag(t, s, surface.Pt(10, 10), surface.Pt(2e7, 10))
	arrow := only[*surface.Arrow](t, s)
	if arrow.Shaft.To.X != 3*800 || arrow.Shaft.To.Y != 10 {
		t.Fatalf("shaft end %+v, want (2400, 10)", arrow.Shaft.To)
	}
	start := time.Now()
	img, err := s.Preview()
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Fatalf("preview took %s", d)
	}
	if got := img.RGBAAt(400, 10); got.R != 255 || got.G != 0 {
		t.Fatalf("shaft not painted across the canvas: %+v", got)
	}
}

func TestReloadReleasesOldPhotos(t *testing.T) {
	s := openSession(t, WithHistoryLimit(2))
	for i := 0; i < 4; i++ {
		if err := s.Load(context.Background(), ingest.Bytes(photo(t, 100+i, 100))); err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if n := s.surface.Assets(); n > 2 {
			t.Fatalf("load %d: %d photos held, history keeps at most 2", i, n)
		}
	}
	s.SetMode(ModeRectangle)
	drag(t, s, surface.Pt(10, 10), surface.Pt(50, 50))
	if n := s.surface.Assets(); n != 1 {
		t.Fatalf("%d photos held after the old one left history", n)
	}
	if ok, err := s.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if !s.State().HasImage {
		t.Fatalf("background lost")
	}
}
