package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/capture"
	"github.com/example/photomark/internal/config"
	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/ingest"
	"github.com/example/photomark/internal/ui"
)

func testRoot(t *testing.T) *root {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	cfg := config.New()
	cfg.CanvasWidth, cfg.CanvasHeight = 200, 100
	return &root{program: "photomark", config: cfg, log: logrus.NewEntry(logger)}
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, samplePNG(t, 40, 20), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = original })
	return &buf
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRootUnknownCommand(t *testing.T) {
	r := testRoot(t)
	r.fs = newRoot().fs
	err := r.Run([]string{"bogus"})
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if msg := uerr.Error(); !strings.Contains(msg, "Commands:") || !strings.Contains(msg, "-notify-save") {
		t.Fatalf("unexpected help text:\n%s", msg)
	}
}

func TestParseEditRequiresSource(t *testing.T) {
	_, err := parseEditCmd(nil, testRoot(t))
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(uerr.Error(), "-from-clipboard") {
		t.Fatalf("edit help should list its flags:\n%s", uerr.Error())
	}
}

func TestParseEditInteractiveNeedsCapture(t *testing.T) {
	_, err := parseEditCmd([]string{"-interactive", "photo.png"}, testRoot(t))
	if err == nil || !strings.Contains(err.Error(), "-capture") {
		t.Fatalf("expected -capture error, got %v", err)
	}
}

func TestInputSourceRejectsTwoOrigins(t *testing.T) {
	if _, err := inputSource("photo.png", true, nil, ""); err == nil {
		t.Fatalf("expected error for file and clipboard together")
	}
	if _, err := inputSource("", false, nil, ""); err == nil {
		t.Fatalf("expected error without any origin")
	}
	src, err := inputSource("-", false, nil, "")
	if err != nil {
		t.Fatalf("stdin source: %v", err)
	}
	if src.Origin() != ingest.OriginReader {
		t.Fatalf("expected reader origin, got %s", src.Origin())
	}
}

func TestEditRunWritesSavedImage(t *testing.T) {
	original := runWindowFn
	runWindowFn = func(w *ui.Window) error {
		if err := w.Session.Apply(editor.Command{Op: editor.OpMode, Mode: "rectangle"}); err != nil {
			return err
		}
		if err := w.Session.Apply(editor.Command{Op: editor.OpDrag, X: 10, Y: 10, X2: 60, Y2: 40}); err != nil {
			return err
		}
		_, err := w.Session.Save()
		return err
	}
	t.Cleanup(func() { runWindowFn = original })

	out := filepath.Join(t.TempDir(), "nested", "out.png")
	cmd, err := parseEditCmd([]string{"-output", out, writeSample(t)}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if w, h := decodeSize(t, data); w != 200 || h != 100 {
		t.Fatalf("expected 200x100 export, got %dx%d", w, h)
	}
}

func TestEditRunCancelledWritesNothing(t *testing.T) {
	original := runWindowFn
	runWindowFn = func(w *ui.Window) error { return w.Session.Cancel() }
	t.Cleanup(func() { runWindowFn = original })

	dir := t.TempDir()
	r := testRoot(t)
	r.config.SaveDir = dir
	cmd, err := parseEditCmd([]string{writeSample(t)}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected nothing saved, found %d files", len(entries))
	}
}

type stubGrabber struct {
	img image.Image
	err error
}

func (g stubGrabber) Grab(context.Context) (image.Image, error) { return g.img, g.err }

func TestEditCaptureError(t *testing.T) {
	original := newGrabberFn
	sentinel := errors.New("denied")
	newGrabberFn = func(string, capture.Options) (ingest.FrameGrabber, error) {
		return stubGrabber{err: sentinel}, nil
	}
	t.Cleanup(func() { newGrabberFn = original })

	cmd, err := parseEditCmd([]string{"-capture"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped capture error, got %v", err)
	}
	if want := "load frame image"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestParseApplyClipboardRequiresOutput(t *testing.T) {
	_, err := parseApplyCmd([]string{"-script", "s.txt", "-from-clipboard"}, testRoot(t))
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "output file is required"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseApplyRejectsDoubleStdin(t *testing.T) {
	_, err := parseApplyCmd([]string{"-script", "-", "-stdout", "-"}, testRoot(t))
	if err == nil || !strings.Contains(err.Error(), "standard input") {
		t.Fatalf("expected stdin conflict, got %v", err)
	}
}

func TestParseScript(t *testing.T) {
	script := strings.Join([]string{
		"# outline the sign",
		"mode rectangle",
		"drag 10 10 60 40",
		"",
		`{"op":"color","color":"blue"}`,
		"text hello there",
	}, "\n")
	lines, err := parseScript(strings.NewReader(script))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 commands, got %d", len(lines))
	}
	if lines[2].n != 5 || lines[2].cmd.Op != editor.OpColor || lines[2].cmd.Color != "blue" {
		t.Fatalf("unexpected json line: %+v", lines[2])
	}
	if lines[3].cmd.Text != "hello there" {
		t.Fatalf("unexpected text %q", lines[3].cmd.Text)
	}

	_, err = parseScript(strings.NewReader("mode rectangle\nwiggle 1 2\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error, got %v", err)
	}
	if !errors.Is(err, editor.ErrUnknownOp) {
		t.Fatalf("expected unknown op, got %v", err)
	}
}

func TestApplyRunStdout(t *testing.T) {
	out := captureStdout(t)
	scriptPath := filepath.Join(t.TempDir(), "script.txt")
	script := "mode arrow\ndrag 20 20 120 80\nmode text\nclick 5 5\nundo\nredo\n"
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cmd, err := parseApplyCmd([]string{"-script", scriptPath, "-stdout", writeSample(t)}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if w, h := decodeSize(t, out.Bytes()); w != 200 || h != 100 {
		t.Fatalf("expected 200x100 export, got %dx%d", w, h)
	}
}

func TestApplyRunReportsFailingLine(t *testing.T) {
	scriptPath := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(scriptPath, []byte("mode rectangle\nmode hexagon\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cmd, err := parseApplyCmd([]string{"-script", scriptPath, "-output", filepath.Join(t.TempDir(), "o.png"), writeSample(t)}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected failing line, got %v", err)
	}
}

func TestWriteResultClipboard(t *testing.T) {
	original := clipboardWriteFn
	var copied []byte
	clipboardWriteFn = func(data []byte) error { copied = data; return nil }
	t.Cleanup(func() { clipboardWriteFn = original })

	r := testRoot(t)
	if err := r.writeResult([]byte("png"), "", false, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	if string(copied) != "png" {
		t.Fatalf("expected data on the clipboard, got %q", copied)
	}

	sentinel := errors.New("no display")
	clipboardWriteFn = func([]byte) error { return sentinel }
	if err := r.writeResult([]byte("png"), "", false, true); !errors.Is(err, sentinel) {
		t.Fatalf("expected clipboard error, got %v", err)
	}
}

func TestDefaultOutput(t *testing.T) {
	got := defaultOutput("shots")
	if filepath.Dir(got) != "shots" || !strings.HasPrefix(filepath.Base(got), "photomark-") || filepath.Ext(got) != ".png" {
		t.Fatalf("unexpected default output %q", got)
	}
}

func TestColorsMarksCurrent(t *testing.T) {
	out := captureStdout(t)
	r := testRoot(t)
	r.config.Color = "#0000FF"
	cmd, err := parseColorsCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "* 5 Blue") {
		t.Fatalf("expected Blue marked current:\n%s", out.String())
	}
}

func TestConfigPrint(t *testing.T) {
	out := captureStdout(t)
	cmd, err := parseConfigCmd([]string{"print"}, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "canvas_width = 200") {
		t.Fatalf("unexpected config output:\n%s", out.String())
	}
}

func TestConfigRequiresSubcommand(t *testing.T) {
	cmd, err := parseConfigCmd(nil, testRoot(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var uerr *UsageError
	if err := cmd.Run(); !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out := captureStdout(t)
	if err := (&versionCmd{r: testRoot(t)}).Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "photomark version dev\n" {
		t.Fatalf("unexpected version output %q", got)
	}
}
