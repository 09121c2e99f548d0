package surface

import "errors"

var (
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("image could not be decoded")
	// ErrEmptyExport is returned when flattening a surface with no background.
	ErrEmptyExport = errors.New("nothing to export: no background image loaded")
	// ErrUnknownBackground is returned when a snapshot names a background the
	// surface has never loaded.
	ErrUnknownBackground = errors.New("snapshot references an unknown background")
	// ErrNotFound is returned when an object is not on the surface.
	ErrNotFound = errors.New("object not found")
	// ErrNotSelectable is returned by Select while selection mode is off.
	ErrNotSelectable = errors.New("selection is disabled")
)

// DecodeError wraps the decoder failure for an image that could not be
// loaded as a background.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode image: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }
