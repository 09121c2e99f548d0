// Package ingest normalises the places a photo can come from into raw
// encoded bytes ready for the surface to decode.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/photomark/internal/clipboard"
)

// MaxBytes bounds how much a single source may read.
const MaxBytes = 64 << 20

// ErrTooLarge is returned when a source exceeds MaxBytes.
var ErrTooLarge = errors.New("image exceeds the size limit")

// Origin names where image bytes came from.
type Origin string

const (
	OriginFile      Origin = "file"
	OriginCamera    Origin = "camera"
	OriginFrame     Origin = "frame"
	OriginClipboard Origin = "clipboard"
	OriginReader    Origin = "reader"
	OriginBytes     Origin = "bytes"
)

// Source produces the encoded bytes of one image.
type Source interface {
	Origin() Origin
	Read(ctx context.Context) ([]byte, error)
}

// FrameGrabber captures a single frame from a live device such as a camera
// or the screen.
type FrameGrabber interface {
	Grab(ctx context.Context) (image.Image, error)
}

type fileSource struct {
	path   string
	origin Origin
}

// File reads an image picked from the filesystem.
func File(path string) Source { return &fileSource{path: path, origin: OriginFile} }

// Camera reads the file produced by a camera capture input. The bytes are
// treated exactly like a picked file.
func Camera(path string) Source { return &fileSource{path: path, origin: OriginCamera} }

func (f *fileSource) Origin() Origin { return f.origin }

func (f *fileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil {
			logrus.WithError(cerr).WithField("path", f.path).Warn("close image file")
		}
	}()
	data, err := readLimited(fh)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(f.path), err)
	}
	logrus.WithFields(logrus.Fields{"origin": f.origin, "path": f.path, "bytes": len(data)}).Debug("image read")
	return data, nil
}

type readerSource struct {
	r    io.Reader
	name string
}

// Reader reads an image from r, for example standard input or an upload.
func Reader(r io.Reader, name string) Source { return &readerSource{r: r, name: name} }

func (r *readerSource) Origin() Origin { return OriginReader }

func (r *readerSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readLimited(r.r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.name, err)
	}
	return data, nil
}

type bytesSource []byte

// Bytes wraps already loaded image bytes.
func Bytes(b []byte) Source { return bytesSource(b) }

func (b bytesSource) Origin() Origin { return OriginBytes }

func (b bytesSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(b) > MaxBytes {
		return nil, ErrTooLarge
	}
	return []byte(b), nil
}

type frameSource struct {
	g FrameGrabber
}

// Frame grabs one frame from g and encodes it as PNG.
func Frame(g FrameGrabber) Source { return &frameSource{g: g} }

func (f *frameSource) Origin() Origin { return OriginFrame }

func (f *frameSource) Read(ctx context.Context) ([]byte, error) {
	img, err := f.g.Grab(ctx)
	if err != nil {
		return nil, fmt.Errorf("grab frame: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

type clipboardSource struct{}

// Clipboard reads a PNG image from the system clipboard.
func Clipboard() Source { return clipboardSource{} }

func (clipboardSource) Origin() Origin { return OriginClipboard }

func (clipboardSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := clipboard.ReadPNG()
	if err != nil {
		return nil, fmt.Errorf("read clipboard image: %w", err)
	}
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Info describes encoded image bytes without decoding the pixels.
type Info struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Describe sniffs the format and dimensions of data.
func Describe(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, err
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
