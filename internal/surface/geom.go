package surface

import (
	"image"
	"math"
)

// Point is a position in canvas coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Segment is a straight stroke between two points.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

func (s Segment) translate(dx, dy float64) Segment {
	return Segment{From: s.From.Add(dx, dy), To: s.To.Add(dx, dy)}
}

func (s Segment) bounds() Bounds {
	return Bounds{
		Left:   math.Min(s.From.X, s.To.X),
		Top:    math.Min(s.From.Y, s.To.Y),
		Right:  math.Max(s.From.X, s.To.X),
		Bottom: math.Max(s.From.Y, s.To.Y),
	}
}

// Bounds is an axis aligned box in canvas coordinates.
type Bounds struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the horizontal extent of b.
func (b Bounds) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent of b.
func (b Bounds) Height() float64 { return b.Bottom - b.Top }

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Top && p.Y <= b.Bottom
}

// Inflate grows b by d on every side.
func (b Bounds) Inflate(d float64) Bounds {
	return Bounds{Left: b.Left - d, Top: b.Top - d, Right: b.Right + d, Bottom: b.Bottom + d}
}

// Union returns the smallest box covering b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Left:   math.Min(b.Left, o.Left),
		Top:    math.Min(b.Top, o.Top),
		Right:  math.Max(b.Right, o.Right),
		Bottom: math.Max(b.Bottom, o.Bottom),
	}
}

// Rectangle returns the pixel rectangle covering b.
func (b Bounds) Rectangle() image.Rectangle {
	return image.Rect(
		int(math.Floor(b.Left)),
		int(math.Floor(b.Top)),
		int(math.Ceil(b.Right)),
		int(math.Ceil(b.Bottom)),
	)
}
