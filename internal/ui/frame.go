package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/fonts"
	"github.com/example/photomark/internal/render"
)

const checkerSize = 8

// paint draws a full frame into dst, which must be width×height.
func (c *controller) paint(dst *image.RGBA) {
	st := c.sess.State()
	draw.Draw(dst, dst.Bounds(), &image.Uniform{c.theme.Background}, image.Point{}, draw.Src)
	c.paintCanvas(dst)
	c.paintToolbar(dst, st)
	c.paintStatus(dst, st)
	c.paintMessage(dst)
}

// paintCanvas draws the session preview, transparent margins shown as a
// checkerboard, over a soft shadow.
func (c *controller) paintCanvas(dst *image.RGBA) {
	rect, _ := c.canvas()
	if rect.Empty() {
		return
	}
	preview, err := c.sess.Preview()
	if err != nil {
		c.log.WithError(err).Warn("preview")
		return
	}
	canvas := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	render.Checkerboard(canvas, canvas.Bounds(), checkerSize, c.theme.CheckerLight, c.theme.CheckerDark)
	if preview.Bounds().Size() == canvas.Bounds().Size() {
		draw.Draw(canvas, canvas.Bounds(), preview, preview.Bounds().Min, draw.Over)
	} else {
		xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), preview, preview.Bounds(), draw.Over, nil)
	}
	shadowed, at := c.shadow.Apply(canvas)
	draw.Draw(dst, shadowed.Bounds().Add(rect.Min.Sub(at)), shadowed, image.Point{}, draw.Over)
}

func (c *controller) paintToolbar(dst *image.RGBA, st editor.State) {
	th := c.theme
	draw.Draw(dst, image.Rect(0, 0, c.toolbarW, c.height), &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	for i, b := range c.tools {
		state := StateDefault
		switch {
		case c.toolMode[i] == st.Mode:
			state = StatePressed
		case i == c.hoverButton:
			state = StateHover
		}
		b.Draw(dst, th, state)
	}
	for i, b := range c.actions {
		state := StateDefault
		switch {
		case !c.enabled[i](st):
			state = StateDisabled
		case i+len(c.tools) == c.hoverButton:
			state = StateHover
		}
		b.Draw(dst, th, state)
	}
	for i, r := range c.swatches {
		col := c.palette[i].Color
		draw.Draw(dst, r, &image.Uniform{col}, image.Point{}, draw.Src)
		if i == c.hoverSwatch {
			draw.Draw(dst, r, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
		}
		if col == st.Color {
			outline(dst, r.Inset(-1), th.SwatchHighlight)
		}
	}
}

func (c *controller) statusText(st editor.State) string {
	s := fmt.Sprintf("%s  %s  objects: %d", st.Mode, st.Color.Hex(), st.Objects)
	if st.Mode == editor.ModeText {
		s += fmt.Sprintf("  text: %q (type, then click)", st.Text)
	}
	if st.Loading {
		s += "  loading..."
	}
	return s
}

func (c *controller) paintStatus(dst *image.RGBA, st editor.State) {
	r := image.Rect(c.toolbarW, c.height-statusHeight, c.width, c.height)
	draw.Draw(dst, r, &image.Uniform{c.theme.ToolbarBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.theme.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(r.Min.X+6, r.Min.Y+16)}
	d.DrawString(c.statusText(st))
}

func (c *controller) paintMessage(dst *image.RGBA) {
	if c.message == "" || !c.now().Before(c.messageUntil) {
		return
	}
	face, err := fonts.Face(20)
	if err != nil {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.theme.Foreground), Face: face}
	w := d.MeasureString(c.message).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	px := c.toolbarW + (c.width-c.toolbarW-w)/2
	py := (c.height-ascent-descent)/2 + ascent
	box := image.Rect(px-8, py-ascent-8, px+w+8, py+descent+8)
	draw.Draw(dst, box, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	outline(dst, box, c.theme.ButtonBorder)
	d.Dot = fixed.P(px, py)
	d.DrawString(c.message)
}
