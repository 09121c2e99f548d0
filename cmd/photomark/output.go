package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/example/photomark/internal/capture"
	"github.com/example/photomark/internal/clipboard"
	"github.com/example/photomark/internal/ingest"
)

// seams for tests
var (
	newGrabberFn     = capture.New
	clipboardWriteFn = clipboard.WritePNG
	now              = time.Now
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// inputSource picks where the photo comes from. Exactly one of path,
// fromClipboard and grab may be set; path "-" reads standard input.
func inputSource(path string, fromClipboard bool, grab *capture.Options, backend string) (ingest.Source, error) {
	n := 0
	for _, set := range []bool{path != "", fromClipboard, grab != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, fmt.Errorf("specify exactly one of an image file, -from-clipboard or -capture")
	}
	switch {
	case path == "-":
		return ingest.Reader(stdin, "stdin"), nil
	case path != "":
		return ingest.File(path), nil
	case fromClipboard:
		return ingest.Clipboard(), nil
	}
	g, err := newGrabberFn(backend, *grab)
	if err != nil {
		return nil, err
	}
	return ingest.Frame(g), nil
}

// defaultOutput names a timestamped file in dir, or the working directory.
func defaultOutput(dir string) string {
	name := fmt.Sprintf("photomark-%s.png", now().Format("20060102-150405"))
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// writeResult delivers an exported PNG to the requested destinations and
// fires the matching notifications.
func (r *root) writeResult(data []byte, output string, toStdout, toClipboard bool) error {
	if toStdout {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
	}
	if output != "" {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "saved %s\n", output)
		r.notifySave(output)
	}
	if toClipboard {
		if err := clipboardWriteFn(data); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(os.Stderr, "copied image to clipboard")
		r.notifyCopy("annotated image")
	}
	return nil
}
