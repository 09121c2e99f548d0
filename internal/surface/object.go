package surface

import (
	"math"
	"unicode/utf8"

	"github.com/example/photomark/internal/fonts"
)

// Kind discriminates the annotation variants.
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
	KindArrow  Kind = "arrow"
	KindText   Kind = "text"
)

// Default styling, matching what the editor toolbar produces.
const (
	DefaultShapeStrokeWidth = 2
	DefaultArrowStrokeWidth = 3
	DefaultArrowHeadLength  = 15
	DefaultFontFamily       = "Arial"
	DefaultFontSize         = fonts.DefaultSize
)

// Object is a drawn annotation owned by a Surface.
type Object interface {
	ObjectID() string
	Kind() Kind
	// Bounds is the painted extent, stroke included.
	Bounds() Bounds
	Translate(dx, dy float64)
	Clone() Object
}

// Rect is a stroked, unfilled rectangle.
type Rect struct {
	ID          string  `json:"id"`
	Left        float64 `json:"left"`
	Top         float64 `json:"top"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Stroke      Color   `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func (r *Rect) ObjectID() string { return r.ID }
func (r *Rect) Kind() Kind       { return KindRect }
func (r *Rect) Clone() Object    { c := *r; return &c }

func (r *Rect) Bounds() Bounds {
	return Bounds{Left: r.Left, Top: r.Top, Right: r.Left + r.Width, Bottom: r.Top + r.Height}.Inflate(r.StrokeWidth / 2)
}

func (r *Rect) Translate(dx, dy float64) {
	r.Left += dx
	r.Top += dy
}

// SetCorners spans r between two opposite corners.
func (r *Rect) SetCorners(a, b Point) {
	r.Left = math.Min(a.X, b.X)
	r.Top = math.Min(a.Y, b.Y)
	r.Width = math.Abs(b.X - a.X)
	r.Height = math.Abs(b.Y - a.Y)
}

// Circle is a stroked, unfilled circle.
type Circle struct {
	ID          string  `json:"id"`
	Center      Point   `json:"center"`
	Radius      float64 `json:"radius"`
	Stroke      Color   `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func (c *Circle) ObjectID() string { return c.ID }
func (c *Circle) Kind() Kind       { return KindCircle }
func (c *Circle) Clone() Object    { n := *c; return &n }

func (c *Circle) Bounds() Bounds {
	return Bounds{
		Left:   c.Center.X - c.Radius,
		Top:    c.Center.Y - c.Radius,
		Right:  c.Center.X + c.Radius,
		Bottom: c.Center.Y + c.Radius,
	}.Inflate(c.StrokeWidth / 2)
}

func (c *Circle) Translate(dx, dy float64) { c.Center = c.Center.Add(dx, dy) }

// Line is a single segment. The editor only uses it as the shaft of an arrow
// that is still being dragged.
type Line struct {
	ID          string  `json:"id"`
	Segment     Segment `json:"segment"`
	Stroke      Color   `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
}

func (l *Line) ObjectID() string { return l.ID }
func (l *Line) Kind() Kind       { return KindLine }
func (l *Line) Clone() Object    { c := *l; return &c }
func (l *Line) Bounds() Bounds   { return l.Segment.bounds().Inflate(l.StrokeWidth / 2) }

func (l *Line) Translate(dx, dy float64) { l.Segment = l.Segment.translate(dx, dy) }

// Arrow groups a shaft and two head strokes so they move as one object.
type Arrow struct {
	ID          string     `json:"id"`
	Shaft       Segment    `json:"shaft"`
	Heads       [2]Segment `json:"heads"`
	Stroke      Color      `json:"stroke"`
	StrokeWidth float64    `json:"strokeWidth"`
}

// NewArrow builds an arrow from tail to tip with heads of headLength.
func NewArrow(id string, tail, tip Point, stroke Color, strokeWidth, headLength float64) *Arrow {
	return &Arrow{
		ID:          id,
		Shaft:       Segment{From: tail, To: tip},
		Heads:       ArrowHeads(tail, tip, headLength),
		Stroke:      stroke,
		StrokeWidth: strokeWidth,
	}
}

// ArrowHeads returns the two head strokes for an arrow pointing from tail to
// tip. Each starts at the tip and runs back at 30 degrees either side of the
// shaft. A zero length shaft points along +X.
func ArrowHeads(tail, tip Point, length float64) [2]Segment {
	angle := math.Atan2(tip.Y-tail.Y, tip.X-tail.X)
	a1 := angle - math.Pi/6
	a2 := angle + math.Pi/6
	return [2]Segment{
		{From: tip, To: Point{X: tip.X - length*math.Cos(a1), Y: tip.Y - length*math.Sin(a1)}},
		{From: tip, To: Point{X: tip.X - length*math.Cos(a2), Y: tip.Y - length*math.Sin(a2)}},
	}
}

func (a *Arrow) ObjectID() string { return a.ID }
func (a *Arrow) Kind() Kind       { return KindArrow }
func (a *Arrow) Clone() Object    { c := *a; return &c }

func (a *Arrow) Bounds() Bounds {
	b := a.Shaft.bounds()
	for _, h := range a.Heads {
		b = b.Union(h.bounds())
	}
	return b.Inflate(a.StrokeWidth / 2)
}

func (a *Arrow) Translate(dx, dy float64) {
	a.Shaft = a.Shaft.translate(dx, dy)
	for i := range a.Heads {
		a.Heads[i] = a.Heads[i].translate(dx, dy)
	}
}

// Text is a single line label anchored at its top-left corner.
type Text struct {
	ID         string  `json:"id"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Content    string  `json:"content"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Fill       Color   `json:"fill"`
}

func (t *Text) ObjectID() string { return t.ID }
func (t *Text) Kind() Kind       { return KindText }
func (t *Text) Clone() Object    { c := *t; return &c }

func (t *Text) Bounds() Bounds {
	w, h, _, err := fonts.Measure(t.Content, t.FontSize)
	if err != nil {
		// rough fallback: average glyph advance of 0.6em
		w = int(math.Ceil(float64(utf8.RuneCountInString(t.Content)) * t.FontSize * 0.6))
		h = int(math.Ceil(t.FontSize * 1.2))
	}
	return Bounds{Left: t.Left, Top: t.Top, Right: t.Left + float64(w), Bottom: t.Top + float64(h)}
}

func (t *Text) Translate(dx, dy float64) {
	t.Left += dx
	t.Top += dy
}
