// Package surface holds the drawing surface of the annotation editor: a
// fixed size canvas with a scaled background photo and an ordered list of
// annotation objects.
package surface

import (
	"fmt"
	"image"
	"math"

	"github.com/example/photomark/internal/ids"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	// DefaultMaxPixels bounds the decoded size of a background photo.
	DefaultMaxPixels = 50_000_000
)

// Background places a decoded photo on the canvas. The pixels themselves
// live in the surface's asset table under Key.
type Background struct {
	Key          string  `json:"key"`
	Left         float64 `json:"left"`
	Top          float64 `json:"top"`
	Scale        float64 `json:"scale"`
	SourceWidth  int     `json:"sourceWidth"`
	SourceHeight int     `json:"sourceHeight"`
}

// Bounds returns the canvas area covered by the scaled photo.
func (b Background) Bounds() Bounds {
	return Bounds{
		Left:   b.Left,
		Top:    b.Top,
		Right:  b.Left + float64(b.SourceWidth)*b.Scale,
		Bottom: b.Top + float64(b.SourceHeight)*b.Scale,
	}
}

// Fit computes the placement of a w×h image scaled uniformly to fit inside a
// canvasW×canvasH canvas and centred on it.
func Fit(w, h, canvasW, canvasH int) (scale, left, top float64) {
	scale = math.Min(float64(canvasW)/float64(w), float64(canvasH)/float64(h))
	left = (float64(canvasW) - float64(w)*scale) / 2
	top = (float64(canvasH) - float64(h)*scale) / 2
	return scale, left, top
}

// Surface is not safe for concurrent use.
type Surface struct {
	width, height int
	background    *Background
	objects       []Object
	selected      Object
	selectable    bool
	assets        map[string]*image.RGBA
	maxPixels     int64
	newID         func(Kind) string
}

// Option configures a Surface during creation.
type Option func(*Surface)

// WithSize sets the canvas dimensions.
func WithSize(w, h int) Option {
	return func(s *Surface) {
		if w > 0 && h > 0 {
			s.width, s.height = w, h
		}
	}
}

// WithMaxPixels caps width×height of a photo accepted by LoadBackground.
// Zero or less disables the check.
func WithMaxPixels(n int64) Option {
	return func(s *Surface) { s.maxPixels = n }
}

// WithIDGenerator replaces the typeid based object id generator.
func WithIDGenerator(fn func(Kind) string) Option {
	return func(s *Surface) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates an empty surface with selection mode enabled.
func New(opts ...Option) *Surface {
	s := &Surface{
		width:      DefaultWidth,
		height:     DefaultHeight,
		selectable: true,
		assets:     make(map[string]*image.RGBA),
		maxPixels:  DefaultMaxPixels,
		newID:      func(k Kind) string { return ids.New(string(k)) },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Size returns the canvas dimensions.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// NewID mints an identifier for an object of kind k.
func (s *Surface) NewID(k Kind) string { return s.newID(k) }

// LoadBackground decodes data, scales it to fit the canvas and replaces all
// content with it. On a decode failure, including a photo larger than the
// pixel limit, the surface is left untouched and the error matches ErrDecode.
func (s *Surface) LoadBackground(data []byte) error {
	img, key, err := decodeImage(data, s.maxPixels)
	if err != nil {
		return err
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scale, left, top := Fit(w, h, s.width, s.height)
	s.assets[key] = img
	s.background = &Background{
		Key:          key,
		Left:         left,
		Top:          top,
		Scale:        scale,
		SourceWidth:  w,
		SourceHeight: h,
	}
	s.objects = nil
	s.selected = nil
	return nil
}

// Background returns the current background placement.
func (s *Surface) Background() (Background, bool) {
	if s.background == nil {
		return Background{}, false
	}
	return *s.background, true
}

// Assets returns the number of decoded photos held for snapshots.
func (s *Surface) Assets() int { return len(s.assets) }

// PruneAssets drops every decoded photo whose key fails keep. The current
// background is always kept.
func (s *Surface) PruneAssets(keep func(key string) bool) {
	for key := range s.assets {
		if s.background != nil && key == s.background.Key {
			continue
		}
		if !keep(key) {
			delete(s.assets, key)
		}
	}
}

// BackgroundImage returns the unscaled pixels of the current background.
func (s *Surface) BackgroundImage() *image.RGBA {
	if s.background == nil {
		return nil
	}
	return s.assets[s.background.Key]
}

// Add appends obj at the front of the paint order.
func (s *Surface) Add(obj Object) {
	s.objects = append(s.objects, obj)
}

// Replace swaps old for obj keeping its paint position.
func (s *Surface) Replace(old, obj Object) error {
	i := s.indexOf(old)
	if i < 0 {
		return fmt.Errorf("replace %s: %w", old.ObjectID(), ErrNotFound)
	}
	s.objects[i] = obj
	if s.selected == old {
		s.selected = obj
	}
	return nil
}

// Remove detaches obj, clearing the selection if it was selected.
func (s *Surface) Remove(obj Object) bool {
	i := s.indexOf(obj)
	if i < 0 {
		return false
	}
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	if s.selected == obj {
		s.selected = nil
	}
	return true
}

// RemoveSelection removes and returns the selected object, or nil when
// nothing is selected.
func (s *Surface) RemoveSelection() Object {
	obj := s.selected
	if obj == nil {
		return nil
	}
	s.Remove(obj)
	return obj
}

// Objects returns the objects back to front. The slice is a copy; the
// objects are not.
func (s *Surface) Objects() []Object {
	out := make([]Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Len returns the number of objects.
func (s *Surface) Len() int { return len(s.objects) }

// Find looks an object up by id.
func (s *Surface) Find(id string) (Object, bool) {
	for _, o := range s.objects {
		if o.ObjectID() == id {
			return o, true
		}
	}
	return nil, false
}

func (s *Surface) indexOf(obj Object) int {
	for i, o := range s.objects {
		if o == obj {
			return i
		}
	}
	return -1
}

// HitTest returns the topmost object whose painted bounds contain p.
func (s *Surface) HitTest(p Point) Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Bounds().Contains(p) {
			return s.objects[i]
		}
	}
	return nil
}

// Selection returns the selected object or nil.
func (s *Surface) Selection() Object { return s.selected }

// Select makes obj the selection.
func (s *Surface) Select(obj Object) error {
	if !s.selectable {
		return ErrNotSelectable
	}
	if s.indexOf(obj) < 0 {
		return fmt.Errorf("select: %w", ErrNotFound)
	}
	s.selected = obj
	return nil
}

// ClearSelection drops the selection.
func (s *Surface) ClearSelection() { s.selected = nil }

// SetSelectionMode enables or disables object selection. Disabling clears
// the current selection.
func (s *Surface) SetSelectionMode(enabled bool) {
	s.selectable = enabled
	if !enabled {
		s.selected = nil
	}
}

// SelectionMode reports whether objects can be selected.
func (s *Surface) SelectionMode() bool { return s.selectable }

// Close drops the background pixels and every object. The surface stays
// usable as an empty canvas of the same size.
func (s *Surface) Close() {
	s.background = nil
	s.objects = nil
	s.selected = nil
	s.assets = make(map[string]*image.RGBA)
}
