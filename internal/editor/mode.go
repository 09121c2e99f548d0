package editor

import (
	"fmt"
	"strings"
)

// Mode is the active interaction mode of the editor.
type Mode string

const (
	ModeSelect    Mode = "select"
	ModeRectangle Mode = "rectangle"
	ModeCircle    Mode = "circle"
	ModeArrow     Mode = "arrow"
	ModeText      Mode = "text"
)

// Modes returns every mode in toolbar order.
func Modes() []Mode {
	return []Mode{ModeSelect, ModeRectangle, ModeCircle, ModeArrow, ModeText}
}

// ParseMode accepts a mode name or one of its short aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "select", "move", "pointer":
		return ModeSelect, nil
	case "rectangle", "rect", "box":
		return ModeRectangle, nil
	case "circle":
		return ModeCircle, nil
	case "arrow":
		return ModeArrow, nil
	case "text":
		return ModeText, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

func (m Mode) drawing() bool {
	return m == ModeRectangle || m == ModeCircle || m == ModeArrow
}
