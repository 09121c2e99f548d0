// Package config loads photomark settings from the RC file, the environment
// and an optional .env file.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/photomark/internal/surface"
	"github.com/example/photomark/internal/theme"
)

// Notify holds desktop notification settings.
type Notify struct {
	Save bool
	Copy bool
}

// Server configures `photomark serve`.
type Server struct {
	Listen         string
	AllowedOrigins []string `split_words:"true"`
	// PublicURL prefixes export links returned to clients.
	PublicURL string `split_words:"true"`
	// SessionTTL closes sessions left idle for longer. Zero keeps them.
	SessionTTL time.Duration `split_words:"true"`
}

// Store selects where saved exports are kept.
type Store struct {
	Type     string // memory, file, sqlite or s3
	Path     string // directory for file, database file for sqlite
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// Log configures logrus.
type Log struct {
	Level  string
	Format string // text or json
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string `split_words:"true"`
	// Backend names the renderer used for exports.
	Backend string
	// Capture names the screen capture backend.
	Capture string

	CanvasWidth  int     `split_words:"true"`
	CanvasHeight int     `split_words:"true"`
	HistoryLimit int     `split_words:"true"`
	MaxPixels    int64   `split_words:"true"`
	Color        string
	TextSize     float64 `split_words:"true"`

	Notify Notify
	Server Server
	Store  Store
	Log    Log

	Themes map[string]*theme.Theme `ignored:"true"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		Backend:      "raster",
		Capture:      "auto",
		CanvasWidth:  surface.DefaultWidth,
		CanvasHeight: surface.DefaultHeight,
		HistoryLimit: 100,
		MaxPixels:    surface.DefaultMaxPixels,
		Color:        surface.DefaultColor.Hex(),
		TextSize:     surface.DefaultFontSize,
		Server:       Server{Listen: "127.0.0.1:8080", SessionTTL: time.Hour},
		Store:        Store{Type: "memory"},
		Log:          Log{Level: "info", Format: "text"},
		Themes:       make(map[string]*theme.Theme),
	}
}

// Validate checks values that would otherwise fail later in a confusing
// place.
func (c *Config) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas size %dx%d must be positive", c.CanvasWidth, c.CanvasHeight)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative")
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("max_pixels must not be negative")
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must not be negative")
	}
	if c.TextSize <= 0 {
		return fmt.Errorf("text_size must be positive")
	}
	if _, err := surface.ParseColor(c.Color); err != nil {
		return err
	}
	switch c.Store.Type {
	case "memory", "file", "sqlite", "s3":
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// DrawColor returns the configured initial colour, falling back to the
// default on a bad value.
func (c *Config) DrawColor() surface.Color {
	col, err := surface.ParseColor(c.Color)
	if err != nil {
		return surface.DefaultColor
	}
	return col
}

// ThemeLoader returns a theme loader that also knows the inline themes.
func (c *Config) ThemeLoader() *theme.Loader {
	l := theme.NewLoader()
	l.Extra = c.Themes
	return l
}

// String returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "backend = %s\n", c.Backend)
	fmt.Fprintf(&sb, "capture = %s\n", c.Capture)
	fmt.Fprintf(&sb, "canvas_width = %d\n", c.CanvasWidth)
	fmt.Fprintf(&sb, "canvas_height = %d\n", c.CanvasHeight)
	fmt.Fprintf(&sb, "history_limit = %d\n", c.HistoryLimit)
	fmt.Fprintf(&sb, "max_pixels = %d\n", c.MaxPixels)
	fmt.Fprintf(&sb, "color = %s\n", c.Color)
	fmt.Fprintf(&sb, "text_size = %g\n", c.TextSize)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[server]\n")
	fmt.Fprintf(&sb, "listen = %s\n", c.Server.Listen)
	fmt.Fprintf(&sb, "session_ttl = %s\n", c.Server.SessionTTL)
	if len(c.Server.AllowedOrigins) > 0 {
		fmt.Fprintf(&sb, "allowed_origins = %s\n", strings.Join(c.Server.AllowedOrigins, ", "))
	}
	if c.Server.PublicURL != "" {
		fmt.Fprintf(&sb, "public_url = %s\n", c.Server.PublicURL)
	}
	sb.WriteString("\n")

	sb.WriteString("[store]\n")
	fmt.Fprintf(&sb, "type = %s\n", c.Store.Type)
	for _, kv := range [][2]string{
		{"path", c.Store.Path},
		{"bucket", c.Store.Bucket},
		{"prefix", c.Store.Prefix},
		{"region", c.Store.Region},
		{"endpoint", c.Store.Endpoint},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv[0], kv[1])
		}
	}
	sb.WriteString("\n")

	sb.WriteString("[log]\n")
	fmt.Fprintf(&sb, "level = %s\n", c.Log.Level)
	fmt.Fprintf(&sb, "format = %s\n", c.Log.Format)
	sb.WriteString("\n")

	names := make([]string, 0, len(c.Themes))
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, surface.Color(f.Color).Hex())
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
