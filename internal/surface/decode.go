package surface

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeImage decodes any registered format into an RGBA copy and returns
// the content key used to share its pixels between snapshots.
func decodeImage(data []byte, maxPixels int64) (*image.RGBA, string, error) {
	if len(data) == 0 {
		return nil, "", &DecodeError{Err: errors.New("empty input")}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, "", &DecodeError{Err: fmt.Errorf("%dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, maxPixels)}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, "", &DecodeError{Err: errors.New("image has no pixels")}
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	sum := sha256.Sum256(data)
	return rgba, hex.EncodeToString(sum[:16]), nil
}
