//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard image operations are not supported on this platform")

func WritePNG([]byte) error { return errUnsupported }

func ReadPNG() ([]byte, error) { return nil, errUnsupported }
