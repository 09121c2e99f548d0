package ui

import (
	"image"
	"math"
)

const (
	buttonHeight = 24
	statusHeight = 24
	swatchSize   = 16
	swatchGap    = 2
	margin       = 16
)

// canvasRect returns where a canvasW×canvasH canvas is drawn inside the
// window area right of the toolbar and above the status bar, and the zoom
// applied. The canvas is never enlarged.
func canvasRect(winW, winH, toolbarW, canvasW, canvasH int) (image.Rectangle, float64) {
	availW := winW - toolbarW - 2*margin
	availH := winH - statusHeight - 2*margin
	if availW <= 0 || availH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return image.Rectangle{}, 0
	}
	zoom := math.Min(1, math.Min(float64(availW)/float64(canvasW), float64(availH)/float64(canvasH)))
	w := int(float64(canvasW) * zoom)
	h := int(float64(canvasH) * zoom)
	x0 := toolbarW + margin + (availW-w)/2
	y0 := margin + (availH-h)/2
	return image.Rect(x0, y0, x0+w, y0+h), zoom
}

// toCanvas converts window pixels to canvas coordinates.
func toCanvas(p image.Point, rect image.Rectangle, zoom float64) (float64, float64) {
	if zoom == 0 {
		return 0, 0
	}
	return float64(p.X-rect.Min.X) / zoom, float64(p.Y-rect.Min.Y) / zoom
}

// windowSize is the initial window size for a canvas.
func windowSize(toolbarW, canvasW, canvasH int) (int, int) {
	return toolbarW + canvasW + 2*margin, canvasH + statusHeight + 2*margin
}
