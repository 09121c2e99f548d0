// Package ui is the desktop editor window: a toolbar, a palette and the
// canvas, all driving one editing session.
package ui

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/theme"
)

// Window shows a session until it is saved or cancelled, or the window is
// closed. Closing the window cancels the session.
type Window struct {
	Title   string
	Session *editor.Session
	Theme   *theme.Theme
	Log     *logrus.Entry

	err error
}

// Run opens the window and blocks until it closes.
func (w *Window) Run() error {
	driver.Main(w.Main)
	return w.err
}

// Main runs the event loop on s.
func (w *Window) Main(s screen.Screen) {
	th := w.Theme
	if th == nil {
		th = theme.Default()
	}
	log := w.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := newController(w.Session, th, log.WithField("component", "ui"))
	st := w.Session.State()
	width, height := c.initialSize(st.Width, st.Height)
	c.resize(width, height)

	title := w.Title
	if title == "" {
		title = "photomark"
	}
	win, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: title})
	if err != nil {
		w.err = fmt.Errorf("new window: %w", err)
		return
	}
	defer win.Release()

	for {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				c.cancel()
				return
			}
		case size.Event:
			c.resize(e.WidthPx, e.HeightPx)
			win.Send(paint.Event{})
		case paint.Event:
			if err := w.publish(s, win, c); err != nil {
				log.WithError(err).Warn("paint")
			}
		case mouse.Event:
			if c.mouse(e) {
				win.Send(paint.Event{})
			}
		case key.Event:
			if c.key(e) {
				win.Send(paint.Event{})
			}
		case error:
			log.WithError(e).Warn("window event")
		}
		if c.done {
			return
		}
	}
}

func (w *Window) publish(s screen.Screen, win screen.Window, c *controller) error {
	if c.width <= 0 || c.height <= 0 {
		return nil
	}
	b, err := s.NewBuffer(image.Pt(c.width, c.height))
	if err != nil {
		return fmt.Errorf("new buffer: %w", err)
	}
	defer b.Release()
	c.paint(b.RGBA())
	win.Upload(image.Point{}, b, b.Bounds())
	win.Publish()
	return nil
}
