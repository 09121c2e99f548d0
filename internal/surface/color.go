package surface

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a straight (non premultiplied) RGBA colour. It marshals as a
// #RRGGBB or #RRGGBBAA string.
type Color color.RGBA

// DefaultColor is the stroke colour a new editing session starts with.
var DefaultColor = Color{R: 0xFF, A: 0xFF}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func (c Color) String() string { return c.Hex() }

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PaletteColor is a named entry of the toolbar palette.
type PaletteColor struct {
	Name  string
	Color Color
}

var palette = []PaletteColor{
	{"Red", Color{255, 0, 0, 255}},
	{"Black", Color{0, 0, 0, 255}},
	{"White", Color{255, 255, 255, 255}},
	{"Lime", Color{0, 255, 0, 255}},
	{"Blue", Color{0, 0, 255, 255}},
	{"Yellow", Color{255, 255, 0, 255}},
	{"Cyan", Color{0, 255, 255, 255}},
	{"Magenta", Color{255, 0, 255, 255}},
	{"Orange", Color{255, 165, 0, 255}},
	{"Green", Color{0, 128, 0, 255}},
	{"Navy", Color{0, 0, 128, 255}},
	{"Gray", Color{128, 128, 128, 255}},
}

// Palette returns the toolbar colours in display order.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// ParseColor accepts #RRGGBB, #RRGGBBAA, #RGB, a palette name or any CSS
// colour name.
func ParseColor(s string) (Color, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return Color{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return Color(c), nil
	}
	for _, entry := range palette {
		if strings.EqualFold(entry.Name, spec) {
			return entry.Color, nil
		}
	}
	if !strings.HasPrefix(spec, "#") {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	hex := spec[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		return Color{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	}
	return Color{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
}
