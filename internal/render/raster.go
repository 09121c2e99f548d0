package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/example/photomark/internal/fonts"
	"github.com/example/photomark/internal/surface"
)

// Raster paints with integer Bresenham strokes and square brushes. Output is
// aliased but identical on every platform.
type Raster struct{}

func NewRaster() *Raster { return &Raster{} }

func (r *Raster) Render(dst *image.RGBA, sc surface.Scene) error {
	paintBackground(dst, sc)
	for _, obj := range sc.Objects {
		if err := r.paint(dst, obj); err != nil {
			return err
		}
	}
	if sc.Selection != nil {
		rect := selectionRect(sc.Selection)
		drawDashedRect(dst, rect, selectionDash, selectionDark, selectionLight)
		for _, h := range handleRects(rect) {
			draw.Draw(dst, h, image.NewUniform(selectionLight), image.Point{}, draw.Src)
			strokeRect(dst, h, selectionDark, 1)
		}
	}
	return nil
}

func (r *Raster) paint(dst *image.RGBA, obj surface.Object) error {
	switch o := obj.(type) {
	case *surface.Rect:
		b := image.Rect(px(o.Left), px(o.Top), px(o.Left+o.Width)+1, px(o.Top+o.Height)+1)
		strokeRect(dst, b, o.Stroke, thickness(o.StrokeWidth))
	case *surface.Circle:
		drawCircle(dst, px(o.Center.X), px(o.Center.Y), px(o.Radius), o.Stroke, thickness(o.StrokeWidth))
	case *surface.Line:
		drawSegment(dst, o.Segment, o.Stroke, thickness(o.StrokeWidth))
	case *surface.Arrow:
		t := thickness(o.StrokeWidth)
		drawSegment(dst, o.Shaft, o.Stroke, t)
		for _, h := range o.Heads {
			drawSegment(dst, h, o.Stroke, t)
		}
	case *surface.Text:
		face, err := fonts.Face(o.FontSize)
		if err != nil {
			return err
		}
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(o.Fill),
			Face: face,
			Dot:  fixed.P(px(o.Left), px(o.Top)+face.Metrics().Ascent.Ceil()),
		}
		d.DrawString(o.Content)
	}
	return nil
}

func px(v float64) int { return int(math.Round(v)) }

func thickness(w float64) int {
	t := px(w)
	if t < 1 {
		return 1
	}
	return t
}

// blend composites c over the pixel at (x, y) if it lies inside img.
func blend(img *image.RGBA, x, y int, c color.Color) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := c.RGBA()
	if sa == 0xffff {
		img.Set(x, y, c)
		return
	}
	d := img.RGBAAt(x, y)
	inv := 0xffff - sa
	img.SetRGBA(x, y, color.RGBA{
		R: uint8((sr + uint32(d.R)*0x101*inv/0xffff) >> 8),
		G: uint8((sg + uint32(d.G)*0x101*inv/0xffff) >> 8),
		B: uint8((sb + uint32(d.B)*0x101*inv/0xffff) >> 8),
		A: uint8((sa + uint32(d.A)*0x101*inv/0xffff) >> 8),
	})
}

// brush paints a thick square centred on (x, y). Pixels already painted in
// the same stroke are tracked in seen so translucent strokes do not darken
// where the brush overlaps itself.
func brush(img *image.RGBA, x, y, thick int, col color.Color, seen map[image.Point]struct{}) {
	lo := -(thick / 2)
	hi := lo + thick
	b := img.Bounds()
	for dy := lo; dy < hi; dy++ {
		for dx := lo; dx < hi; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(b) {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			blend(img, p.X, p.Y, col)
		}
	}
}

// clipLine trims a segment to r using Liang-Barsky. It reports false when no
// part of the segment lies inside r.
func clipLine(r image.Rectangle, x0, y0, x1, y1 float64) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - float64(r.Min.X)},
		{dx, float64(r.Max.X-1) - x0},
		{-dy, y0 - float64(r.Min.Y)},
		{dy, float64(r.Max.Y-1) - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

func drawSegment(img *image.RGBA, s surface.Segment, col color.Color, thick int) {
	x0, y0, x1, y1, ok := clipLine(img.Bounds().Inset(-thick), s.From.X, s.From.Y, s.To.X, s.To.Y)
	if !ok {
		return
	}
	drawLine(img, px(x0), px(y0), px(x1), px(y1), col, thick, make(map[image.Point]struct{}))
}

// drawLine only walks the part of the line within thick pixels of img.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int, seen map[image.Point]struct{}) {
	area := img.Bounds().Inset(-thick)
	if !image.Pt(x0, y0).In(area) || !image.Pt(x1, y1).In(area) {
		fx0, fy0, fx1, fy1, ok := clipLine(area, float64(x0), float64(y0), float64(x1), float64(y1))
		if !ok {
			return
		}
		x0, y0, x1, y1 = px(fx0), px(fy0), px(fx1), px(fy1)
	}
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		brush(img, x0, y0, thick, col, seen)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// strokeRect outlines rect with the stroke centred on its edges.
func strokeRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	seen := make(map[image.Point]struct{})
	x0, y0, x1, y1 := rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1
	drawLine(img, x0, y0, x1, y0, col, thick, seen)
	drawLine(img, x1, y0, x1, y1, col, thick, seen)
	drawLine(img, x1, y1, x0, y1, col, thick, seen)
	drawLine(img, x0, y1, x0, y0, col, thick, seen)
}

// drawCircle draws concentric midpoint circles so the ring is thick pixels
// wide and centred on r.
func drawCircle(img *image.RGBA, cx, cy, r int, col color.Color, thick int) {
	seen := make(map[image.Point]struct{})
	start := -(thick / 2)
	for i := 0; i < thick; i++ {
		if rr := r + start + i; rr >= 0 && ringVisible(img.Bounds(), cx, cy, rr) {
			circleRing(img, cx, cy, rr, col, seen)
		}
	}
}

// ringVisible reports whether a ring of radius r around (cx, cy) can touch
// b. Rings wholly outside b or wholly enclosing it cannot.
func ringVisible(b image.Rectangle, cx, cy, r int) bool {
	if !image.Rect(cx-r, cy-r, cx+r+1, cy+r+1).Overlaps(b) {
		return false
	}
	fx := math.Max(math.Abs(float64(b.Min.X-cx)), math.Abs(float64(b.Max.X-1-cx)))
	fy := math.Max(math.Abs(float64(b.Min.Y-cy)), math.Abs(float64(b.Max.Y-1-cy)))
	return math.Hypot(fx, fy) >= float64(r)-1
}

func circleRing(img *image.RGBA, cx, cy, r int, col color.Color, seen map[image.Point]struct{}) {
	b := img.Bounds()
	x, y := r, 0
	err := 1 - r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			pt := image.Pt(cx+p[0], cy+p[1])
			if !pt.In(b) {
				continue
			}
			if _, ok := seen[pt]; ok {
				continue
			}
			seen[pt] = struct{}{}
			blend(img, pt.X, pt.Y, col)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

// drawDashedRect outlines rect with a one pixel line alternating between c1
// and c2 every dash pixels.
func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash int, c1, c2 color.Color) {
	rect = rect.Intersect(img.Bounds().Inset(-1))
	if rect.Empty() {
		return
	}
	x0, y0, x1, y1 := rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1
	i := 0
	put := func(x, y int) {
		c := c1
		if (i/dash)%2 == 1 {
			c = c2
		}
		blend(img, x, y, c)
		i++
	}
	for x := x0; x < x1; x++ {
		put(x, y0)
	}
	for y := y0; y < y1; y++ {
		put(x1, y)
	}
	for x := x1; x > x0; x-- {
		put(x, y1)
	}
	for y := y1; y > y0; y-- {
		put(x0, y)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
