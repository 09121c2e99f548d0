// Package capture grabs desktop screenshots to annotate. Grabbers satisfy
// ingest.FrameGrabber so a capture feeds the editor like any other image
// source.
package capture

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/example/photomark/internal/ingest"
)

// Options tunes what the compositor includes in a capture.
type Options struct {
	// Interactive lets the user pick the area or window in the portal
	// dialog.
	Interactive   bool
	IncludeCursor bool
}

// Backends lists the grabber names accepted by New.
func Backends() []string { return []string{"auto", "portal", "x11"} }

// New returns the grabber called backend. "auto" prefers the desktop portal
// on Wayland sessions and the X server elsewhere.
func New(backend string, opts Options) (ingest.FrameGrabber, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "auto":
		if runningOnWayland() {
			return &Portal{Options: opts}, nil
		}
		return &X11{}, nil
	case "portal":
		return &Portal{Options: opts}, nil
	case "x11":
		return &X11{}, nil
	}
	return nil, fmt.Errorf("unknown capture backend %q", backend)
}

// Region crops every frame of G to Rect in screen coordinates.
type Region struct {
	G    ingest.FrameGrabber
	Rect image.Rectangle
}

func (r Region) Grab(ctx context.Context) (image.Image, error) {
	if r.Rect.Empty() {
		return nil, fmt.Errorf("region is empty")
	}
	img, err := r.G.Grab(ctx)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, r.Rect)
}

func cropToRect(src image.Image, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
