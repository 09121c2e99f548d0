//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"context"
	"fmt"
	"image"
)

type Portal struct {
	Options
}

func (p *Portal) Grab(context.Context) (image.Image, error) {
	return nil, fmt.Errorf("portal screenshot is not supported on this platform")
}
