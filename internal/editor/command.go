package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/photomark/internal/surface"
)

// Op names a scripted editor action.
type Op string

const (
	OpMode   Op = "mode"
	OpColor  Op = "color"
	OpText   Op = "text"
	OpDown   Op = "down"
	OpMove   Op = "move"
	OpUp     Op = "up"
	OpClick  Op = "click"
	OpDrag   Op = "drag"
	OpUndo   Op = "undo"
	OpRedo   Op = "redo"
	OpDelete Op = "delete"
)

// Command is one scripted action. Coordinates are canvas pixels; drag uses
// X,Y as the start and X2,Y2 as the end.
type Command struct {
	Op    Op      `json:"op"`
	Mode  string  `json:"mode,omitempty"`
	Color string  `json:"color,omitempty"`
	Text  string  `json:"text,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
}

// Apply runs c against the session.
func (s *Session) Apply(c Command) error {
	p := surface.Pt(c.X, c.Y)
	switch c.Op {
	case OpMode:
		m, err := ParseMode(c.Mode)
		if err != nil {
			return err
		}
		return s.SetMode(m)
	case OpColor:
		col, err := surface.ParseColor(c.Color)
		if err != nil {
			return err
		}
		return s.SetColor(col)
	case OpText:
		return s.SetText(c.Text)
	case OpDown:
		return s.PointerDown(p)
	case OpMove:
		return s.PointerMove(p)
	case OpUp:
		return s.PointerUp(p)
	case OpClick:
		if err := s.PointerDown(p); err != nil {
			return err
		}
		return s.PointerUp(p)
	case OpDrag:
		end := surface.Pt(c.X2, c.Y2)
		if err := s.PointerDown(p); err != nil {
			return err
		}
		if err := s.PointerMove(end); err != nil {
			return err
		}
		return s.PointerUp(end)
	case OpUndo:
		_, err := s.Undo()
		return err
	case OpRedo:
		_, err := s.Redo()
		return err
	case OpDelete:
		_, err := s.Delete()
		return err
	}
	return fmt.Errorf("%w %q", ErrUnknownOp, c.Op)
}

// ParseCommand parses one script line of the form
//
//	op [args...]
//
// for example "mode arrow", "color blue", "text Hello there",
// "click 10 20" or "drag 10 20 110 80".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	c := Command{Op: Op(strings.ToLower(fields[0]))}
	args := fields[1:]
	switch c.Op {
	case OpMode:
		if len(args) != 1 {
			return c, fmt.Errorf("mode requires one argument")
		}
		c.Mode = args[0]
	case OpColor:
		if len(args) != 1 {
			return c, fmt.Errorf("color requires one argument")
		}
		c.Color = args[0]
	case OpText:
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		c.Text = rest
	case OpDown, OpMove, OpUp, OpClick:
		v, err := floats(args, 2)
		if err != nil {
			return c, fmt.Errorf("%s: %w", c.Op, err)
		}
		c.X, c.Y = v[0], v[1]
	case OpDrag:
		v, err := floats(args, 4)
		if err != nil {
			return c, fmt.Errorf("%s: %w", c.Op, err)
		}
		c.X, c.Y, c.X2, c.Y2 = v[0], v[1], v[2], v[3]
	case OpUndo, OpRedo, OpDelete:
		if len(args) != 0 {
			return c, fmt.Errorf("%s takes no arguments", c.Op)
		}
	default:
		return c, fmt.Errorf("%w %q", ErrUnknownOp, fields[0])
	}
	return c, nil
}

func floats(args []string, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d coordinates, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", a)
		}
		out[i] = v
	}
	return out, nil
}
