package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader(`
# comment
Name: ocean
Background: #102030
buttonactive = navy
Unknown: #FFFFFF
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if th.Name != "ocean" {
		t.Errorf("name %q", th.Name)
	}
	if th.Background != (color.RGBA{0x10, 0x20, 0x30, 255}) {
		t.Errorf("background %+v", th.Background)
	}
	if th.ButtonActive != (color.RGBA{0, 0, 128, 255}) {
		t.Errorf("button active %+v", th.ButtonActive)
	}
	if th.CheckerDark != Default().CheckerDark {
		t.Errorf("unset key lost its default")
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: #12")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.theme"), []byte("Background: #010203\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir, Extra: map[string]*Theme{"inline": {Name: "inline"}}}

	if th, err := l.Load(""); err != nil || th.Name != "light" {
		t.Fatalf("default: %v %v", th, err)
	}
	if th, err := l.Load("inline"); err != nil || th.Name != "inline" {
		t.Fatalf("inline: %v %v", th, err)
	}
	th, err := l.Load("dark")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if th.Name != "dark" || th.Background != (color.RGBA{0x1E, 0x1E, 0x1E, 255}) {
		t.Fatalf("builtin dark: %+v", th)
	}
	th, err = l.Load("mine")
	if err != nil {
		t.Fatalf("config dir: %v", err)
	}
	if th.Name != "mine" || th.Background != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("config dir theme: %+v", th)
	}
	if _, err := l.Load("missing"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestBuiltinAndFields(t *testing.T) {
	names := Builtin()
	if len(names) != 2 || names[0] != "dark" || names[1] != "light" {
		t.Fatalf("builtin %v", names)
	}
	fields := Fields(Default())
	if len(fields) == 0 || fields[0].Name != "Background" {
		t.Fatalf("fields %v", fields)
	}
}
