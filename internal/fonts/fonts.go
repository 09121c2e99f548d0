// Package fonts provides the text faces used to measure and rasterise text
// annotations.
package fonts

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultSize is the point size used for text annotations when none is set.
const DefaultSize = 20

var (
	parseOnce sync.Once
	regular   *sfnt.Font
	parseErr  error
	faces     sync.Map // map[float64]font.Face
)

// Regular returns the parsed Go Regular font shared by every face.
func Regular() (*sfnt.Font, error) {
	parseOnce.Do(func() {
		regular, parseErr = opentype.Parse(goregular.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("parse font: %w", parseErr)
		}
	})
	return regular, parseErr
}

// Face returns a cached face for size points at 72 DPI, so one point maps to
// one canvas pixel.
func Face(size float64) (font.Face, error) {
	if size <= 0 {
		size = DefaultSize
	}
	size = math.Round(size*100) / 100
	if face, ok := faces.Load(size); ok {
		return face.(font.Face), nil
	}
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// Measure returns the bounding box of text rendered at size. baseline is the
// offset from the top of the box to the text baseline.
func Measure(text string, size float64) (width, height, baseline int, err error) {
	face, err := Face(size)
	if err != nil {
		return 0, 0, 0, err
	}
	drawer := &font.Drawer{Face: face}
	width = drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	return width, ascent + descent, ascent, nil
}
