package surface

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Scene is what a Renderer paints: the background placement and pixels, the
// objects in paint order and, for previews only, the selection.
type Scene struct {
	Width, Height int
	Background    *image.RGBA
	Placement     Background
	Objects       []Object
	Selection     Object
}

// Renderer paints a scene onto dst, which is Width×Height with a zero origin.
type Renderer interface {
	Render(dst *image.RGBA, scene Scene) error
}

func (s *Surface) scene() Scene {
	sc := Scene{
		Width:     s.width,
		Height:    s.height,
		Objects:   s.Objects(),
		Selection: s.selected,
	}
	if s.background != nil {
		sc.Placement = *s.background
		sc.Background = s.assets[s.background.Key]
	}
	return sc
}

// Flatten clears the selection and composites background and objects into a
// single image without selection chrome.
func (s *Surface) Flatten(r Renderer) (*image.RGBA, error) {
	if s.background == nil {
		return nil, ErrEmptyExport
	}
	s.selected = nil
	sc := s.scene()
	dst := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if err := r.Render(dst, sc); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return dst, nil
}

// FlattenPNG flattens the surface and encodes it as PNG.
func (s *Surface) FlattenPNG(r Renderer) ([]byte, error) {
	img, err := s.Flatten(r)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Preview renders the surface including the selection, for on screen display.
func (s *Surface) Preview(r Renderer) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if err := r.Render(dst, s.scene()); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return dst, nil
}
