package render

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/example/photomark/internal/surface"
)

// GG paints antialiased strokes with fogleman/gg and text through the
// freetype rasteriser.
type GG struct {
	mu    sync.Mutex
	font  *truetype.Font
	faces map[float64]font.Face
}

func NewGG() *GG { return &GG{faces: make(map[float64]font.Face)} }

func (g *GG) face(size float64) (font.Face, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.font == nil {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		g.font = f
	}
	if face, ok := g.faces[size]; ok {
		return face, nil
	}
	face := truetype.NewFace(g.font, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	g.faces[size] = face
	return face, nil
}

func (g *GG) Render(dst *image.RGBA, sc surface.Scene) error {
	paintBackground(dst, sc)
	dc := gg.NewContextForRGBA(dst)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for _, obj := range sc.Objects {
		if err := g.paint(dc, obj); err != nil {
			return err
		}
	}
	if sc.Selection != nil {
		r := selectionRect(sc.Selection)
		dc.SetLineCap(gg.LineCapButt)
		dc.SetLineWidth(1)
		dc.SetDash(selectionDash, selectionDash)
		dc.SetColor(selectionDark)
		dc.DrawRectangle(float64(r.Min.X)+0.5, float64(r.Min.Y)+0.5, float64(r.Dx()-1), float64(r.Dy()-1))
		dc.Stroke()
		dc.SetDash()
		for _, h := range handleRects(r) {
			dc.DrawRectangle(float64(h.Min.X)+0.5, float64(h.Min.Y)+0.5, float64(h.Dx()-1), float64(h.Dy()-1))
			dc.SetColor(selectionLight)
			dc.FillPreserve()
			dc.SetColor(selectionDark)
			dc.Stroke()
		}
	}
	return nil
}

func (g *GG) paint(dc *gg.Context, obj surface.Object) error {
	switch o := obj.(type) {
	case *surface.Rect:
		dc.SetColor(o.Stroke)
		dc.SetLineWidth(o.StrokeWidth)
		dc.DrawRectangle(o.Left, o.Top, o.Width, o.Height)
		dc.Stroke()
	case *surface.Circle:
		dc.SetColor(o.Stroke)
		dc.SetLineWidth(o.StrokeWidth)
		dc.DrawCircle(o.Center.X, o.Center.Y, o.Radius)
		dc.Stroke()
	case *surface.Line:
		dc.SetColor(o.Stroke)
		dc.SetLineWidth(o.StrokeWidth)
		segment(dc, o.Segment)
		dc.Stroke()
	case *surface.Arrow:
		dc.SetColor(o.Stroke)
		dc.SetLineWidth(o.StrokeWidth)
		segment(dc, o.Shaft)
		for _, h := range o.Heads {
			segment(dc, h)
		}
		dc.Stroke()
	case *surface.Text:
		face, err := g.face(o.FontSize)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(o.Fill)
		ascent := float64(face.Metrics().Ascent.Ceil())
		dc.DrawString(o.Content, math.Round(o.Left), math.Round(o.Top)+ascent)
	}
	return nil
}

func segment(dc *gg.Context, s surface.Segment) {
	dc.MoveTo(s.From.X, s.From.Y)
	dc.LineTo(s.To.X, s.To.Y)
}
