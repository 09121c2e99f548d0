package theme

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed defaults/*.theme
var embedded embed.FS

// Loader resolves theme names to definitions.
type Loader struct {
	ConfigDir string
	SystemDir string
	// Extra holds themes defined inline in the config file. They win over
	// every other source.
	Extra map[string]*Theme
}

// NewLoader creates a Loader with the standard search directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "photomark", "themes"),
		SystemDir: "/usr/share/photomark/themes",
	}
}

// Load finds a theme by name or path. The search order is: inline config
// themes, an existing file path, built in themes, ConfigDir, SystemDir. An
// empty name returns the default theme.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if t, ok := l.Extra[name]; ok {
		return t, nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}
	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if f, err := embedded.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return parseNamed(f, name)
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, filename)
		if _, err := os.Stat(p); err == nil {
			return parseFile(p)
		}
	}
	return nil, fmt.Errorf("theme %q not found", name)
}

// Builtin lists the names of the themes compiled into the binary.
func Builtin() []string {
	entries, _ := embedded.ReadDir("defaults")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".theme"))
	}
	sort.Strings(names)
	return names
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseNamed(f, strings.TrimSuffix(filepath.Base(path), ".theme"))
}

func parseNamed(r io.Reader, name string) (*Theme, error) {
	t, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	if t.Name == Default().Name && name != t.Name {
		t.Name = name
	}
	return t, nil
}
