//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"context"
	"fmt"
	"image"
)

type X11 struct {
	Display string
}

func (x *X11) Grab(context.Context) (image.Image, error) {
	return nil, fmt.Errorf("X11 capture is not supported on this platform")
}
