// Package theme holds the colours of the editor window chrome.
package theme

import (
	"image/color"
)

// Theme defines the colours used by the editor window around the canvas.
type Theme struct {
	Name string

	Background color.RGBA // behind the canvas
	Foreground color.RGBA // labels and hints

	ToolbarBackground     color.RGBA
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonActive          color.RGBA // the selected tool
	ButtonText            color.RGBA
	ButtonTextActive      color.RGBA
	ButtonDisabled        color.RGBA
	ButtonBorder          color.RGBA

	// Swatch outline for the current colour.
	SwatchHighlight color.RGBA

	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the built in light theme.
func Default() *Theme {
	return &Theme{
		Name:                  "light",
		Background:            color.RGBA{208, 208, 208, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{232, 232, 232, 255},
		ButtonBackground:      color.RGBA{210, 210, 210, 255},
		ButtonBackgroundHover: color.RGBA{190, 190, 190, 255},
		ButtonActive:          color.RGBA{60, 120, 216, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonTextActive:      color.RGBA{255, 255, 255, 255},
		ButtonDisabled:        color.RGBA{150, 150, 150, 255},
		ButtonBorder:          color.RGBA{90, 90, 90, 255},
		SwatchHighlight:       color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
	}
}
