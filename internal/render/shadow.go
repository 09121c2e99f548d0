package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Shadow describes a soft drop shadow cast by the opaque parts of an image.
type Shadow struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// DefaultShadow is the shadow the editor window casts under the canvas.
func DefaultShadow() Shadow {
	return Shadow{Radius: 12, Offset: image.Pt(6, 6), Opacity: 0.45}
}

// Apply returns img composited over its blurred shadow on a canvas large
// enough for both, and where img's top-left corner landed on that canvas.
// A shadow with no opacity returns img itself.
func (s Shadow) Apply(img *image.RGBA) (*image.RGBA, image.Point) {
	if img == nil || img.Bounds().Empty() || s.Opacity <= 0 {
		return img, image.Point{}
	}
	opacity := min(s.Opacity, 1)
	radius := max(s.Radius, 0)

	src := img.Bounds()
	padded := src.Inset(-radius)
	cast := padded.Add(s.Offset)
	all := src.Union(cast)

	alpha := image.NewAlpha(padded.Sub(padded.Min))
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a != 0 {
				alpha.SetAlpha(x-padded.Min.X, y-padded.Min.Y, color.Alpha{A: a})
			}
		}
	}
	mask := boxBlur(alpha, radius)

	dst := image.NewRGBA(all.Sub(all.Min))
	tint := image.NewUniform(color.RGBA{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, mask.Bounds().Add(cast.Min.Sub(all.Min)), tint, image.Point{}, mask, image.Point{}, draw.Over)
	at := src.Min.Sub(all.Min)
	draw.Draw(dst, src.Sub(src.Min).Add(at), img, src.Min, draw.Over)
	return dst, at
}

// boxBlur runs a separable box filter of the given radius over a zero
// origin alpha mask.
func boxBlur(src *image.Alpha, radius int) *image.Alpha {
	b := src.Bounds()
	out := image.NewAlpha(b)
	if radius <= 0 {
		copy(out.Pix, src.Pix)
		return out
	}
	w, h := b.Dx(), b.Dy()
	tmp := image.NewAlpha(b)
	for y := 0; y < h; y++ {
		blurRun(src.Pix[y*src.Stride:], tmp.Pix[y*tmp.Stride:], w, 1, radius)
	}
	for x := 0; x < w; x++ {
		blurRun(tmp.Pix[x:], out.Pix[x:], h, tmp.Stride, radius)
	}
	return out
}

// blurRun averages n samples spaced step apart over a window of 2r+1,
// clamped at both ends.
func blurRun(in, out []uint8, n, step, r int) {
	prefix := make([]int, n+1)
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i] + int(in[i*step])
	}
	for i := 0; i < n; i++ {
		lo := max(i-r, 0)
		hi := min(i+r, n-1)
		out[i*step] = uint8((prefix[hi+1] - prefix[lo]) / (hi - lo + 1))
	}
}
