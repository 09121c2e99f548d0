//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"syscall/js"

	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/ingest"
	"github.com/example/photomark/internal/surface"
)

var sess *editor.Session

var errNoSession = errors.New("no image loaded")

func main() {
	api := js.Global().Get("Object").New()

	// --- Commands (page → editor) ---
	api.Set("open", js.FuncOf(open))
	api.Set("setMode", js.FuncOf(setMode))
	api.Set("setColor", js.FuncOf(setColor))
	api.Set("setText", js.FuncOf(setText))
	api.Set("pointerDown", js.FuncOf(pointer(editor.OpDown)))
	api.Set("pointerMove", js.FuncOf(pointer(editor.OpMove)))
	api.Set("pointerUp", js.FuncOf(pointer(editor.OpUp)))
	api.Set("apply", js.FuncOf(apply))
	api.Set("undo", js.FuncOf(simple(editor.OpUndo)))
	api.Set("redo", js.FuncOf(simple(editor.OpRedo)))
	api.Set("deleteSelection", js.FuncOf(simple(editor.OpDelete)))
	api.Set("save", js.FuncOf(save))
	api.Set("cancel", js.FuncOf(cancel))

	// --- Queries (page ← editor) ---
	api.Set("getState", js.FuncOf(getState))
	api.Set("getSnapshot", js.FuncOf(getSnapshot))
	api.Set("getPreview", js.FuncOf(getPreview))
	api.Set("getPalette", js.FuncOf(getPalette))

	js.Global().Set("photomark", api)
	js.Global().Set("photomarkWasmReady", js.ValueOf(true))

	select {}
}

func result(err error) any {
	if err != nil {
		return js.ValueOf(map[string]any{"error": err.Error()})
	}
	return js.ValueOf(map[string]any{"ok": true, "state": stateJSON()})
}

func stateJSON() string {
	if sess == nil {
		return "null"
	}
	b, _ := json.Marshal(sess.State())
	return string(b)
}

func bytesResult(data []byte) any {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

// --- Command Handlers ---

// open takes a Uint8Array of encoded image bytes and an optional JSON
// object {width, height, color, historyLimit}.
func open(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return result(errors.New("missing image bytes"))
	}
	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])

	var cfg struct {
		Width        int           `json:"width"`
		Height       int           `json:"height"`
		Color        surface.Color `json:"color"`
		HistoryLimit *int          `json:"historyLimit"`
	}
	cfg.Color = surface.DefaultColor
	if len(args) > 1 && args[1].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[1].String()), &cfg); err != nil {
			return result(err)
		}
	}
	opts := []editor.Option{editor.WithColor(cfg.Color)}
	if cfg.Width > 0 && cfg.Height > 0 {
		opts = append(opts, editor.WithSize(cfg.Width, cfg.Height))
	}
	if cfg.HistoryLimit != nil {
		opts = append(opts, editor.WithHistoryLimit(*cfg.HistoryLimit))
	}
	s, err := editor.Open(context.Background(), ingest.Bytes(data), opts...)
	if err != nil {
		return result(err)
	}
	if sess != nil {
		_ = sess.Cancel()
	}
	sess = s
	return result(nil)
}

func setMode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return result(errors.New("missing mode"))
	}
	return run(editor.Command{Op: editor.OpMode, Mode: args[0].String()})
}

func setColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return result(errors.New("missing color"))
	}
	return run(editor.Command{Op: editor.OpColor, Color: args[0].String()})
}

func setText(this js.Value, args []js.Value) any {
	text := ""
	if len(args) > 0 {
		text = args[0].String()
	}
	return run(editor.Command{Op: editor.OpText, Text: text})
}

func pointer(op editor.Op) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return result(errors.New("missing coordinates"))
		}
		return run(editor.Command{Op: op, X: args[0].Float(), Y: args[1].Float()})
	}
}

func simple(op editor.Op) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		return run(editor.Command{Op: op})
	}
}

// apply runs a JSON encoded command, the same shape the HTTP service takes.
func apply(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return result(errors.New("missing command JSON"))
	}
	var c editor.Command
	if err := json.Unmarshal([]byte(args[0].String()), &c); err != nil {
		return result(err)
	}
	return run(c)
}

func run(c editor.Command) any {
	if sess == nil {
		return result(errNoSession)
	}
	return result(sess.Apply(c))
}

// save returns the flattened PNG as a Uint8Array, or an error object.
func save(this js.Value, args []js.Value) any {
	if sess == nil {
		return result(errNoSession)
	}
	data, err := sess.Save()
	if err != nil {
		return result(err)
	}
	return bytesResult(data)
}

func cancel(this js.Value, args []js.Value) any {
	if sess == nil {
		return result(errNoSession)
	}
	return result(sess.Cancel())
}

// --- Query Handlers ---

func getState(this js.Value, args []js.Value) any {
	return js.ValueOf(stateJSON())
}

func getSnapshot(this js.Value, args []js.Value) any {
	if sess == nil {
		return js.ValueOf("null")
	}
	snap, err := sess.Snapshot()
	if err != nil {
		return result(err)
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return result(err)
	}
	return js.ValueOf(string(b))
}

// getPreview returns a PNG of the canvas including the selection outline.
func getPreview(this js.Value, args []js.Value) any {
	if sess == nil {
		return result(errNoSession)
	}
	img, err := sess.Preview()
	if err != nil {
		return result(err)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return result(err)
	}
	return bytesResult(buf.Bytes())
}

func getPalette(this js.Value, args []js.Value) any {
	out := make([]any, 0, len(surface.Palette()))
	for _, p := range surface.Palette() {
		out = append(out, map[string]any{"name": p.Name, "color": p.Color.Hex()})
	}
	return js.ValueOf(out)
}
