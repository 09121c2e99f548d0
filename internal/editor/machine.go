package editor

import (
	"math"

	"github.com/example/photomark/internal/surface"
)

// Style holds the fixed styling applied to new objects.
type Style struct {
	ShapeStrokeWidth float64
	ArrowStrokeWidth float64
	ArrowHeadLength  float64
	FontFamily       string
	FontSize         float64
}

// DefaultStyle returns the stock stroke widths and font.
func DefaultStyle() Style {
	return Style{
		ShapeStrokeWidth: surface.DefaultShapeStrokeWidth,
		ArrowStrokeWidth: surface.DefaultArrowStrokeWidth,
		ArrowHeadLength:  surface.DefaultArrowHeadLength,
		FontFamily:       surface.DefaultFontFamily,
		FontSize:         surface.DefaultFontSize,
	}
}

func (s Style) withDefaults() Style {
	d := DefaultStyle()
	if s.ShapeStrokeWidth <= 0 {
		s.ShapeStrokeWidth = d.ShapeStrokeWidth
	}
	if s.ArrowStrokeWidth <= 0 {
		s.ArrowStrokeWidth = d.ArrowStrokeWidth
	}
	if s.ArrowHeadLength <= 0 {
		s.ArrowHeadLength = d.ArrowHeadLength
	}
	if s.FontFamily == "" {
		s.FontFamily = d.FontFamily
	}
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	return s
}

// gesture is the in-progress pointer interaction: a shape being dragged out
// or a selected object being moved.
type gesture struct {
	mode   Mode
	anchor surface.Point
	last   surface.Point
	obj    surface.Object
	moved  bool
}

// Machine routes pointer input to the surface according to the active mode.
// Methods that return commit=true completed an edit that should be recorded
// in history. Machine is not safe for concurrent use.
type Machine struct {
	surface *surface.Surface
	style   Style
	mode    Mode
	color   surface.Color
	text    string
	gesture *gesture
}

// NewMachine returns a machine in select mode drawing with the default
// colour.
func NewMachine(s *surface.Surface, style Style) *Machine {
	m := &Machine{surface: s, style: style.withDefaults(), mode: ModeSelect, color: surface.DefaultColor}
	s.SetSelectionMode(true)
	return m
}

func (m *Machine) Mode() Mode           { return m.mode }
func (m *Machine) Color() surface.Color { return m.color }
func (m *Machine) Text() string         { return m.text }
func (m *Machine) Style() Style         { return m.style }
func (m *Machine) InGesture() bool      { return m.gesture != nil }
func (m *Machine) SetText(text string)  { m.text = text }

// SetColor changes the colour for objects created from now on. Objects
// already on the surface, including one being drawn, keep theirs.
func (m *Machine) SetColor(c surface.Color) { m.color = c }

// SetMode ends any gesture and switches mode. Selection is only possible in
// select mode.
func (m *Machine) SetMode(mode Mode) (commit bool) {
	commit = m.Abandon()
	m.mode = mode
	m.surface.SetSelectionMode(mode == ModeSelect)
	return commit
}

// Abandon ends the current gesture. A shape still being drawn is removed
// from the surface. A drag in select mode keeps its movement and reports it
// as a commit.
func (m *Machine) Abandon() (commit bool) {
	g := m.gesture
	m.gesture = nil
	if g == nil {
		return false
	}
	if !g.mode.drawing() {
		return g.moved
	}
	m.surface.Remove(g.obj)
	return false
}

// pointerReach is how many canvas sizes beyond each edge pointer input may
// travel before it is pinned.
const pointerReach = 2

// clamp pins p to the canvas widened by pointerReach on every side.
func (m *Machine) clamp(p surface.Point) surface.Point {
	w, h := m.surface.Size()
	return surface.Pt(pin(p.X, float64(w)), pin(p.Y, float64(h)))
}

func pin(v, size float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-pointerReach*size, math.Min(v, (pointerReach+1)*size))
}

// PointerDown starts a gesture at p.
func (m *Machine) PointerDown(p surface.Point) (commit bool, err error) {
	if m.gesture != nil {
		return false, nil
	}
	p = m.clamp(p)
	switch m.mode {
	case ModeSelect:
		hit := m.surface.HitTest(p)
		if hit == nil {
			m.surface.ClearSelection()
			return false, nil
		}
		if err := m.surface.Select(hit); err != nil {
			return false, err
		}
		m.gesture = &gesture{mode: ModeSelect, anchor: p, last: p, obj: hit}
	case ModeRectangle:
		obj := &surface.Rect{
			ID:          m.surface.NewID(surface.KindRect),
			Left:        p.X,
			Top:         p.Y,
			Stroke:      m.color,
			StrokeWidth: m.style.ShapeStrokeWidth,
		}
		m.begin(p, obj)
	case ModeCircle:
		obj := &surface.Circle{
			ID:          m.surface.NewID(surface.KindCircle),
			Center:      p,
			Stroke:      m.color,
			StrokeWidth: m.style.ShapeStrokeWidth,
		}
		m.begin(p, obj)
	case ModeArrow:
		obj := &surface.Line{
			ID:          m.surface.NewID(surface.KindLine),
			Segment:     surface.Segment{From: p, To: p},
			Stroke:      m.color,
			StrokeWidth: m.style.ArrowStrokeWidth,
		}
		m.begin(p, obj)
	case ModeText:
		return m.placeText(p)
	}
	return false, nil
}

func (m *Machine) begin(p surface.Point, obj surface.Object) {
	m.surface.Add(obj)
	m.gesture = &gesture{mode: m.mode, anchor: p, last: p, obj: obj}
}

func (m *Machine) placeText(p surface.Point) (bool, error) {
	if m.text == "" {
		return false, ErrEmptyText
	}
	obj := &surface.Text{
		ID:         m.surface.NewID(surface.KindText),
		Left:       p.X,
		Top:        p.Y,
		Content:    m.text,
		FontFamily: m.style.FontFamily,
		FontSize:   m.style.FontSize,
		Fill:       m.color,
	}
	m.surface.Add(obj)
	m.SetMode(ModeSelect)
	if err := m.surface.Select(obj); err != nil {
		return true, err
	}
	return true, nil
}

// PointerMove updates the geometry of the gesture in progress. Without a
// gesture it does nothing. Points far outside the canvas are pinned.
func (m *Machine) PointerMove(p surface.Point) {
	g := m.gesture
	if g == nil {
		return
	}
	p = m.clamp(p)
	if g.mode == ModeSelect {
		dx, dy := p.X-g.last.X, p.Y-g.last.Y
		if dx != 0 || dy != 0 {
			g.obj.Translate(dx, dy)
			g.moved = true
		}
		g.last = p
		return
	}
	switch obj := g.obj.(type) {
	case *surface.Rect:
		obj.SetCorners(g.anchor, p)
	case *surface.Circle:
		obj.Radius = math.Max(math.Abs(p.X-g.anchor.X), math.Abs(p.Y-g.anchor.Y)) / 2
	case *surface.Line:
		obj.Segment.To = p
	}
	g.last = p
}

// PointerUp finishes the gesture at p. Arrows get their heads here and
// replace the bare shaft as a single object.
func (m *Machine) PointerUp(p surface.Point) (commit bool, err error) {
	g := m.gesture
	if g == nil {
		return false, nil
	}
	m.PointerMove(p)
	m.gesture = nil
	switch g.mode {
	case ModeSelect:
		return g.moved, nil
	case ModeArrow:
		line := g.obj.(*surface.Line)
		arrow := surface.NewArrow(
			m.surface.NewID(surface.KindArrow),
			line.Segment.From,
			line.Segment.To,
			line.Stroke,
			line.StrokeWidth,
			m.style.ArrowHeadLength,
		)
		if err := m.surface.Replace(line, arrow); err != nil {
			return false, err
		}
	}
	return true, nil
}
