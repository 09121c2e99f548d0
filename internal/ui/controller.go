package ui

import (
	"errors"
	"fmt"
	"image"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/render"
	"github.com/example/photomark/internal/surface"
	"github.com/example/photomark/internal/theme"
)

const messageDuration = 2 * time.Second

// toolLabels are shown on the tool buttons; the first letter is the
// keyboard shortcut.
var toolLabels = map[editor.Mode]string{
	editor.ModeSelect:    "S:Select",
	editor.ModeRectangle: "R:Rect",
	editor.ModeCircle:    "C:Circle",
	editor.ModeArrow:     "A:Arrow",
	editor.ModeText:      "T:Text",
}

// controller turns window input into session calls and paints frames. It
// holds no screen resources so it can be driven directly.
type controller struct {
	sess    *editor.Session
	theme   *theme.Theme
	shadow  render.Shadow
	palette []surface.PaletteColor
	log     *logrus.Entry

	width, height int
	toolbarW      int

	tools    []*CacheButton
	toolMode []editor.Mode
	actions  []*CacheButton
	enabled  []func(editor.State) bool
	swatches []image.Rectangle

	hoverButton int
	hoverSwatch int
	dragging    bool

	message      string
	messageUntil time.Time
	now          func() time.Time

	done bool
}

func newController(sess *editor.Session, th *theme.Theme, log *logrus.Entry) *controller {
	c := &controller{
		sess:        sess,
		theme:       th,
		shadow:      render.DefaultShadow(),
		palette:     surface.Palette(),
		log:         log,
		hoverButton: -1,
		hoverSwatch: -1,
		now:         time.Now,
	}
	c.toolbarW = labelWidth("photomark") + 8
	for _, m := range editor.Modes() {
		lbl := toolLabels[m]
		c.tools = append(c.tools, &CacheButton{Button: &LabelButton{label: lbl, action: func() { c.setMode(m) }}})
		c.toolMode = append(c.toolMode, m)
		c.toolbarW = max(c.toolbarW, labelWidth(lbl)+8)
	}
	type action struct {
		label   string
		fn      func()
		enabled func(editor.State) bool
	}
	acts := []action{
		{"Undo", c.undo, func(st editor.State) bool { return st.CanUndo }},
		{"Redo", c.redo, func(st editor.State) bool { return st.CanRedo }},
		{"Delete", c.deleteSelection, func(st editor.State) bool { return st.HasSelection }},
		{"Save", c.save, func(st editor.State) bool { return st.HasImage }},
		{"Cancel", c.cancel, func(editor.State) bool { return true }},
	}
	for _, a := range acts {
		c.actions = append(c.actions, &CacheButton{Button: &LabelButton{label: a.label, action: a.fn}})
		c.enabled = append(c.enabled, a.enabled)
		c.toolbarW = max(c.toolbarW, labelWidth(a.label)+8)
	}
	c.layout()
	return c
}

// initialSize is the window size showing the canvas unscaled and the whole
// toolbar.
func (c *controller) initialSize(canvasW, canvasH int) (int, int) {
	w, h := windowSize(c.toolbarW, canvasW, canvasH)
	if n := len(c.swatches); n > 0 {
		h = max(h, c.swatches[n-1].Max.Y+8)
	}
	return w, h
}

func (c *controller) resize(w, h int) {
	c.width, c.height = w, h
	c.layout()
}

// layout places tool buttons, then action buttons, then palette swatches
// down the toolbar.
func (c *controller) layout() {
	y := 0
	for _, b := range c.tools {
		b.SetRect(image.Rect(0, y, c.toolbarW, y+buttonHeight))
		y += buttonHeight
	}
	y += 4
	for _, b := range c.actions {
		b.SetRect(image.Rect(0, y, c.toolbarW, y+buttonHeight))
		y += buttonHeight
	}
	y += 4
	x := 4
	c.swatches = c.swatches[:0]
	for range c.palette {
		if x+swatchSize > c.toolbarW {
			x = 4
			y += swatchSize + swatchGap
		}
		c.swatches = append(c.swatches, image.Rect(x, y, x+swatchSize, y+swatchSize))
		x += swatchSize + swatchGap
	}
}

func (c *controller) buttons() []*CacheButton {
	out := make([]*CacheButton, 0, len(c.tools)+len(c.actions))
	out = append(out, c.tools...)
	return append(out, c.actions...)
}

func (c *controller) canvas() (image.Rectangle, float64) {
	st := c.sess.State()
	return canvasRect(c.width, c.height, c.toolbarW, st.Width, st.Height)
}

func (c *controller) flash(format string, args ...any) {
	c.message = fmt.Sprintf(format, args...)
	c.messageUntil = c.now().Add(messageDuration)
}

// report shows err unless it is benign. It returns whether a repaint is due.
func (c *controller) report(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, editor.ErrLoading):
		return false
	case errors.Is(err, editor.ErrEmptyText):
		c.flash("type some text, then click to place it")
	default:
		c.log.WithError(err).Warn("editor action failed")
		c.flash("%v", err)
	}
	return true
}

func (c *controller) setMode(m editor.Mode) { c.report(c.sess.SetMode(m)) }

func (c *controller) undo() {
	_, err := c.sess.Undo()
	c.report(err)
}

func (c *controller) redo() {
	_, err := c.sess.Redo()
	c.report(err)
}

func (c *controller) deleteSelection() {
	_, err := c.sess.Delete()
	c.report(err)
}

func (c *controller) save() {
	if _, err := c.sess.Save(); err != nil {
		c.report(err)
		return
	}
	c.done = true
}

func (c *controller) cancel() {
	if err := c.sess.Cancel(); err != nil && !errors.Is(err, editor.ErrClosed) {
		c.report(err)
	}
	c.done = true
}

func (c *controller) setColor(col surface.Color) { c.report(c.sess.SetColor(col)) }

// mouse handles one pointer event and reports whether to repaint.
func (c *controller) mouse(e mouse.Event) bool {
	p := image.Pt(int(e.X), int(e.Y))
	if e.Direction == mouse.DirPress && c.message != "" && c.now().Before(c.messageUntil) {
		c.messageUntil = time.Time{}
	}
	if p.X < c.toolbarW && !c.dragging {
		return c.toolbarMouse(p, e)
	}
	repaint := c.hoverButton != -1 || c.hoverSwatch != -1
	c.hoverButton, c.hoverSwatch = -1, -1

	rect, zoom := c.canvas()
	x, y := toCanvas(p, rect, zoom)
	pt := surface.Pt(x, y)
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		if !p.In(rect) {
			return repaint
		}
		c.dragging = true
		c.report(c.sess.PointerDown(pt))
		return true
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		if !c.dragging {
			return repaint
		}
		c.dragging = false
		c.report(c.sess.PointerUp(pt))
		return true
	case e.Direction == mouse.DirNone && c.dragging:
		c.report(c.sess.PointerMove(pt))
		return true
	}
	return repaint
}

func (c *controller) toolbarMouse(p image.Point, e mouse.Event) bool {
	prevButton, prevSwatch := c.hoverButton, c.hoverSwatch
	c.hoverButton, c.hoverSwatch = -1, -1
	click := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress
	st := c.sess.State()
	for i, b := range c.buttons() {
		if !p.In(b.Rect()) {
			continue
		}
		c.hoverButton = i
		if click {
			if i >= len(c.tools) && !c.enabled[i-len(c.tools)](st) {
				return true
			}
			b.Activate()
			return true
		}
	}
	for i, r := range c.swatches {
		if !p.In(r) {
			continue
		}
		c.hoverSwatch = i
		if click {
			c.setColor(c.palette[i].Color)
			return true
		}
	}
	return prevButton != c.hoverButton || prevSwatch != c.hoverSwatch
}

// key handles one key event and reports whether to repaint. In text mode
// typed characters edit the pending text instead of triggering shortcuts.
func (c *controller) key(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	st := c.sess.State()
	ctrl := e.Modifiers&key.ModControl != 0
	if st.Mode == editor.ModeText && !ctrl {
		switch e.Code {
		case key.CodeEscape:
			c.setMode(editor.ModeSelect)
			return true
		case key.CodeDeleteBackspace:
			if r := []rune(st.Text); len(r) > 0 {
				c.report(c.sess.SetText(string(r[:len(r)-1])))
			}
			return true
		}
		if e.Rune > 0 && unicode.IsPrint(e.Rune) {
			c.report(c.sess.SetText(st.Text + string(e.Rune)))
			return true
		}
		return false
	}

	if ctrl {
		switch unicode.ToLower(e.Rune) {
		case 'z':
			if e.Modifiers&key.ModShift != 0 {
				c.redo()
			} else {
				c.undo()
			}
			return true
		case 'y':
			c.redo()
			return true
		case 's':
			c.save()
			return true
		case 'q', 'w':
			c.cancel()
			return true
		}
		return false
	}

	switch e.Code {
	case key.CodeDeleteForward, key.CodeDeleteBackspace:
		c.deleteSelection()
		return true
	case key.CodeEscape:
		c.cancel()
		return true
	}
	r := unicode.ToLower(e.Rune)
	for _, m := range editor.Modes() {
		if r == unicode.ToLower(rune(toolLabels[m][0])) {
			c.setMode(m)
			return true
		}
	}
	if r >= '1' && r <= '9' && int(r-'1') < len(c.palette) {
		c.setColor(c.palette[r-'1'].Color)
		return true
	}
	return false
}
