// Package export defines saved annotation exports and the store contract
// they are persisted through.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/example/photomark/internal/ids"
)

// ErrNotFound is returned when no export has the requested id.
var ErrNotFound = errors.New("export not found")

// ContentType of every export.
const ContentType = "image/png"

// Export is one flattened PNG produced by saving a session.
type Export struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Data      []byte    `json:"-"`
}

// New wraps the PNG bytes saved from session with a fresh id.
func New(sessionID string, data []byte) (*Export, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	if format != "png" {
		return nil, fmt.Errorf("export: expected png, got %s", format)
	}
	return &Export{
		ID:        ids.NewExportID(),
		SessionID: sessionID,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Size:      len(data),
		CreatedAt: time.Now().UTC(),
		Data:      data,
	}, nil
}

// Meta returns a copy of e without its pixel data.
func (e *Export) Meta() *Export {
	c := *e
	c.Data = nil
	return &c
}

// Store persists exports.
type Store interface {
	Put(ctx context.Context, e *Export) error
	Get(ctx context.Context, id string) (*Export, error)
	// List returns metadata, without Data, newest first.
	List(ctx context.Context) ([]*Export, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
