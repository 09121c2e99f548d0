// Package render paints a surface scene into an RGBA image. Two backends
// exist: a dependency free raster painter and a vector painter built on gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/photomark/internal/surface"
)

const (
	selectionPad  = 4
	selectionDash = 4
	handleSize    = 6
)

var (
	selectionLight = color.RGBA{255, 255, 255, 255}
	selectionDark  = color.RGBA{0, 0, 0, 255}
)

var backends = map[string]func() surface.Renderer{
	"raster": func() surface.Renderer { return NewRaster() },
	"gg":     func() surface.Renderer { return NewGG() },
}

// Names lists the available backends.
func Names() []string {
	out := make([]string, 0, len(backends))
	for n := range backends {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// New returns the backend called name. An empty name selects raster.
func New(name string) (surface.Renderer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "raster"
	}
	fn, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown renderer %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return fn(), nil
}

// paintBackground scales the scene's photo into its placement. The canvas
// outside the photo is left untouched.
func paintBackground(dst *image.RGBA, sc surface.Scene) {
	if sc.Background == nil {
		return
	}
	rect := sc.Placement.Bounds().Rectangle()
	xdraw.CatmullRom.Scale(dst, rect, sc.Background, sc.Background.Bounds(), xdraw.Over, nil)
}

// selectionRect is the box the selection chrome is drawn around.
func selectionRect(obj surface.Object) image.Rectangle {
	return obj.Bounds().Inflate(selectionPad).Rectangle()
}

// handleRects returns the eight resize handle squares around rect, clockwise
// from the top-left corner.
func handleRects(rect image.Rectangle) []image.Rectangle {
	hs := handleSize / 2
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	pts := []image.Point{
		rect.Min,
		{cx, rect.Min.Y},
		{rect.Max.X, rect.Min.Y},
		{rect.Max.X, cy},
		rect.Max,
		{cx, rect.Max.Y},
		{rect.Min.X, rect.Max.Y},
		{rect.Min.X, cy},
	}
	out := make([]image.Rectangle, len(pts))
	for i, p := range pts {
		out[i] = image.Rect(p.X-hs, p.Y-hs, p.X+hs, p.Y+hs)
	}
	return out
}

// Checkerboard fills rect of dst with squares of size alternating between
// light and dark. Editors paint it behind previews so transparent margins
// stay visible.
func Checkerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	if size <= 0 {
		size = 8
	}
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}
