package editor

import "errors"

var (
	// ErrClosed is returned by every operation once the session was saved or
	// cancelled.
	ErrClosed = errors.New("editor session is closed")
	// ErrLoading is returned for input that arrives while an image is still
	// being ingested. Callers may ignore it.
	ErrLoading = errors.New("image is still loading")
	// ErrEmptyText is returned when placing text with no pending content.
	// Nothing is placed and the mode is unchanged.
	ErrEmptyText = errors.New("enter some text before placing it")
	// ErrUnknownOp is returned for a command naming no known action.
	ErrUnknownOp = errors.New("unknown op")
)
