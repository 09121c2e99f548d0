package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/photomark/internal/theme"
)

// Parse reads configuration in RC format.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:sep]))
		value := strings.TrimSpace(line[sep+1:])
		if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case current != nil:
			err = theme.Set(current, key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case section == "server":
			err = setServerField(&cfg.Server, key, value)
		case section == "store":
			err = setStoreField(&cfg.Store, key, value)
		case section == "log":
			err = setLogField(&cfg.Log, key, value)
		}
		if err != nil {
			where := "root section"
			if section != "" {
				where = "section [" + section + "]"
			}
			return nil, fmt.Errorf("line %d: error in %s: %w", lineNo, where, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "backend":
		cfg.Backend = value
	case "capture":
		cfg.Capture = value
	case "canvas_width":
		cfg.CanvasWidth, err = parseInt(key, value)
	case "canvas_height":
		cfg.CanvasHeight, err = parseInt(key, value)
	case "history_limit":
		cfg.HistoryLimit, err = parseInt(key, value)
	case "max_pixels":
		cfg.MaxPixels, err = strconv.ParseInt(value, 10, 64)
		if err != nil {
			err = fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
	case "color":
		cfg.Color = value
	case "text_size":
		cfg.TextSize, err = strconv.ParseFloat(value, 64)
		if err != nil {
			err = fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return err
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setServerField(s *Server, key, value string) error {
	switch key {
	case "listen":
		s.Listen = value
	case "allowed_origins":
		s.AllowedOrigins = splitList(value)
	case "public_url":
		s.PublicURL = strings.TrimSuffix(value, "/")
	case "session_ttl":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
		s.SessionTTL = d
	}
	return nil
}

func setStoreField(s *Store, key, value string) error {
	switch key {
	case "type":
		s.Type = strings.ToLower(value)
	case "path":
		s.Path = value
	case "bucket":
		s.Bucket = value
	case "prefix":
		s.Prefix = value
	case "region":
		s.Region = value
	case "endpoint":
		s.Endpoint = value
	}
	return nil
}

func setLogField(l *Log, key, value string) error {
	switch key {
	case "level":
		l.Level = strings.ToLower(value)
	case "format":
		l.Format = strings.ToLower(value)
	}
	return nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
