package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/photomark/internal/capture"
	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/ui"
)

var runWindowFn = func(w *ui.Window) error { return w.Run() }

// editCmd opens the editor window on one image.
type editCmd struct {
	file          string
	output        string
	fromClipboard bool
	toClipboard   bool
	grab          bool
	captureWith   string
	interactive   bool
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	if r != nil {
		e.root = r.subcommand("edit")
		e.captureWith = r.config.Capture
	}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.output, "output", "", "write the saved image here (defaults to a timestamped file in save_dir)")
	fs.BoolVar(&e.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&e.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.BoolVar(&e.toClipboard, "to-clipboard", false, "also copy the saved image to the clipboard")
	fs.BoolVar(&e.toClipboard, "to-clip", false, "also copy the saved image to the clipboard (alias)")
	fs.BoolVar(&e.grab, "capture", false, "capture the screen and annotate it")
	fs.StringVar(&e.captureWith, "capture-backend", e.captureWith, "capture backend ("+strings.Join(capture.Backends(), ", ")+")")
	fs.BoolVar(&e.interactive, "interactive", false, "let the desktop portal ask which area to capture")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		e.file = fs.Arg(0)
	default:
		return nil, &UsageError{of: e}
	}
	if e.file == "" && !e.fromClipboard && !e.grab {
		return nil, &UsageError{of: e}
	}
	if e.interactive && !e.grab {
		return nil, fmt.Errorf("-interactive only applies to -capture")
	}
	return e, nil
}

func (e *editCmd) Run() error {
	var grab *capture.Options
	if e.grab {
		grab = &capture.Options{Interactive: e.interactive}
	}
	src, err := inputSource(e.file, e.fromClipboard, grab, e.captureWith)
	if err != nil {
		return err
	}
	opts, err := e.sessionOptions()
	if err != nil {
		return err
	}
	var saved []byte
	opts = append(opts, editor.WithOnSave(func(data []byte) { saved = data }))
	sess, err := editor.Open(context.Background(), src, opts...)
	if err != nil {
		return err
	}

	title := "photomark"
	if e.file != "" && e.file != "-" {
		title = "photomark - " + filepath.Base(e.file)
	}
	win := &ui.Window{Title: title, Session: sess, Theme: e.activeTheme, Log: e.log}
	if err := runWindowFn(win); err != nil {
		return err
	}
	if saved == nil {
		fmt.Fprintln(os.Stderr, "cancelled, nothing saved")
		return nil
	}
	output := e.output
	if output == "" {
		output = defaultOutput(e.config.SaveDir)
	}
	return e.writeResult(saved, output, false, e.toClipboard)
}
