package render

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/example/photomark/internal/surface"
)

var (
	red       = surface.Color{R: 255, A: 255}
	opaqueRed = color.RGBA{R: 255, A: 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func scene(objs ...surface.Object) surface.Scene {
	return surface.Scene{Width: 100, Height: 80, Objects: objs}
}

func renderers(t *testing.T) map[string]surface.Renderer {
	t.Helper()
	out := map[string]surface.Renderer{}
	for _, n := range Names() {
		r, err := New(n)
		if err != nil {
			t.Fatalf("New(%q): %v", n, err)
		}
		out[n] = r
	}
	return out
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("cairo"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	r, err := New("")
	if err != nil {
		t.Fatalf("default backend: %v", err)
	}
	if _, ok := r.(*Raster); !ok {
		t.Fatalf("default backend is %T", r)
	}
}

func TestBackgroundPlacement(t *testing.T) {
	for name, r := range renderers(t) {
		dst := image.NewRGBA(image.Rect(0, 0, 100, 80))
		sc := scene()
		sc.Background = solid(10, 10, color.RGBA{B: 255, A: 255})
		sc.Placement = surface.Background{Left: 10, Top: 0, Scale: 8, SourceWidth: 10, SourceHeight: 10}
		if err := r.Render(dst, sc); err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if got := dst.RGBAAt(50, 40); got.B != 255 || got.A != 255 {
			t.Errorf("%s: inside placement got %+v", name, got)
		}
		if got := dst.RGBAAt(5, 40); got.A != 0 {
			t.Errorf("%s: margin should stay transparent, got %+v", name, got)
		}
		if got := dst.RGBAAt(95, 40); got.A != 0 {
			t.Errorf("%s: right margin should stay transparent, got %+v", name, got)
		}
	}
}

func TestShapesPaintStroke(t *testing.T) {
	rect := &surface.Rect{ID: "r", Left: 10, Top: 10, Width: 40, Height: 30, Stroke: red, StrokeWidth: 2}
	circle := &surface.Circle{ID: "c", Center: surface.Pt(70, 40), Radius: 10, Stroke: red, StrokeWidth: 2}
	arrow := surface.NewArrow("a", surface.Pt(10, 70), surface.Pt(90, 70), red, 3, 15)
	for name, r := range renderers(t) {
		dst := image.NewRGBA(image.Rect(0, 0, 100, 80))
		if err := r.Render(dst, scene(rect, circle, arrow)); err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		checks := map[string]image.Point{
			"rect edge":   {30, 10},
			"circle edge": {80, 40},
			"arrow shaft": {50, 70},
			"arrow tip":   {89, 70},
		}
		for what, p := range checks {
			if got := dst.RGBAAt(p.X, p.Y); got.R < 128 || got.A < 128 {
				t.Errorf("%s: %s at %v not painted: %+v", name, what, p, got)
			}
		}
		if got := dst.RGBAAt(30, 25); got.A != 0 {
			t.Errorf("%s: rectangle interior painted: %+v", name, got)
		}
		if got := dst.RGBAAt(70, 40); got.A != 0 {
			t.Errorf("%s: circle interior painted: %+v", name, got)
		}
	}
}

func TestTextIsDrawnInsideBounds(t *testing.T) {
	txt := &surface.Text{ID: "t", Left: 5, Top: 5, Content: "Hello", FontSize: 20, Fill: red}
	b := txt.Bounds().Rectangle()
	for name, r := range renderers(t) {
		dst := image.NewRGBA(image.Rect(0, 0, 100, 80))
		if err := r.Render(dst, scene(txt)); err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		inside, outside := 0, 0
		for y := 0; y < 80; y++ {
			for x := 0; x < 100; x++ {
				if dst.RGBAAt(x, y).A == 0 {
					continue
				}
				if image.Pt(x, y).In(b.Inset(-2)) {
					inside++
				} else {
					outside++
				}
			}
		}
		if inside == 0 {
			t.Errorf("%s: no text pixels", name)
		}
		if outside != 0 {
			t.Errorf("%s: %d text pixels outside %v", name, outside, b)
		}
	}
}

func TestSelectionChromeOnlyWhenSelected(t *testing.T) {
	rect := &surface.Rect{ID: "r", Left: 30, Top: 30, Width: 20, Height: 20, Stroke: red, StrokeWidth: 2}
	chrome := selectionRect(rect)
	for name, r := range renderers(t) {
		plain := image.NewRGBA(image.Rect(0, 0, 100, 80))
		if err := r.Render(plain, scene(rect)); err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if got := plain.RGBAAt(chrome.Min.X, chrome.Min.Y); got.A != 0 {
			t.Errorf("%s: chrome painted without selection: %+v", name, got)
		}

		sel := scene(rect)
		sel.Selection = rect
		withSel := image.NewRGBA(image.Rect(0, 0, 100, 80))
		if err := r.Render(withSel, sel); err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if got := withSel.RGBAAt(chrome.Min.X, chrome.Min.Y); got.A == 0 {
			t.Errorf("%s: expected handle at selection corner", name)
		}
	}
}

func TestTranslucentStrokeDoesNotStack(t *testing.T) {
	half := surface.Color{R: 255, A: 128}
	line := &surface.Line{ID: "l", Segment: surface.Segment{From: surface.Pt(10, 10), To: surface.Pt(60, 40)}, Stroke: half, StrokeWidth: 4}
	dst := image.NewRGBA(image.Rect(0, 0, 100, 80))
	if err := NewRaster().Render(dst, scene(line)); err != nil {
		t.Fatalf("render: %v", err)
	}
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			if a := dst.RGBAAt(x, y).A; a != 0 && a != 128 {
				t.Fatalf("pixel (%d,%d) alpha %d, want 128", x, y, a)
			}
		}
	}
}

func TestHandleRects(t *testing.T) {
	hs := handleRects(image.Rect(0, 0, 20, 10))
	if len(hs) != 8 {
		t.Fatalf("got %d handles", len(hs))
	}
	if c := hs[4]; !image.Pt(20, 10).In(c) {
		t.Fatalf("bottom-right handle %v does not cover corner", c)
	}
}

func TestCheckerboard(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	Checkerboard(dst, dst.Bounds(), 8, color.White, color.Black)
	if dst.RGBAAt(0, 0).R != 255 || dst.RGBAAt(8, 0).R != 0 || dst.RGBAAt(8, 8).R != 255 {
		t.Fatalf("unexpected pattern")
	}
}

func TestRasterClipsFarGeometry(t *testing.T) {
	line := &surface.Line{ID: "l", Segment: surface.Segment{From: surface.Pt(10, 10), To: surface.Pt(2e7, 10)}, Stroke: red, StrokeWidth: 3}
	rect := &surface.Rect{ID: "r", Left: 20, Top: 20, Width: 3e7, Height: 3e7, Stroke: red, StrokeWidth: 2}
	ring := &surface.Circle{ID: "big", Center: surface.Pt(50, 40), Radius: 1e7, Stroke: red, StrokeWidth: 2}
	edge := &surface.Circle{ID: "edge", Center: surface.Pt(50, -1e5), Radius: 1e5 + 60, Stroke: red, StrokeWidth: 2}
	sc := scene(line, rect, ring, edge)
	sc.Selection = rect

	dst := image.NewRGBA(image.Rect(0, 0, 100, 80))
	start := time.Now()
	if err := NewRaster().Render(dst, sc); err != nil {
		t.Fatalf("render: %v", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Fatalf("render took %s", d)
	}
	if got := dst.RGBAAt(99, 10); got != opaqueRed {
		t.Errorf("line should reach the right edge, got %+v", got)
	}
	if got := dst.RGBAAt(60, 20); got != opaqueRed {
		t.Errorf("rect top edge missing, got %+v", got)
	}
	if got := dst.RGBAAt(50, 60); got != opaqueRed {
		t.Errorf("large circle crossing the canvas missing, got %+v", got)
	}
	if got := dst.RGBAAt(90, 70); got.A != 0 {
		t.Errorf("enclosing circle painted inside the canvas: %+v", got)
	}
}

func TestClipLine(t *testing.T) {
	r := image.Rect(0, 0, 10, 10)
	x0, y0, x1, y1, ok := clipLine(r, -5, 5, 20, 5)
	if !ok || x0 != 0 || y0 != 5 || x1 != 9 || y1 != 5 {
		t.Fatalf("got (%v,%v)-(%v,%v) %v", x0, y0, x1, y1, ok)
	}
	if _, _, _, _, ok := clipLine(r, -5, -5, 20, -1); ok {
		t.Fatalf("segment above the rectangle should be rejected")
	}
	x0, y0, x1, y1, ok = clipLine(r, 2, 3, 4, 5)
	if !ok || x0 != 2 || y0 != 3 || x1 != 4 || y1 != 5 {
		t.Fatalf("inside segment changed: (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}
}
