// Package filesystem stores each export as <id>.png beside an <id>.json
// metadata file.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/export"
	"github.com/example/photomark/internal/ids"
)

type Store struct {
	basePath string
}

// NewStore creates basePath if needed.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) paths(id string) (string, string, error) {
	if err := ids.ValidateExportID(id); err != nil {
		return "", "", err
	}
	base := filepath.Join(s.basePath, id)
	return base + ".png", base + ".json", nil
}

func (s *Store) Put(ctx context.Context, e *export.Export) error {
	pngPath, metaPath, err := s.paths(e.ID)
	if err != nil {
		return err
	}
	log := logrus.WithFields(logrus.Fields{"export_id": e.ID, "data_length": len(e.Data)})
	meta, err := json.Marshal(e.Meta())
	if err != nil {
		return fmt.Errorf("marshal export metadata: %w", err)
	}
	if err := writeFile(pngPath, e.Data); err != nil {
		log.WithError(err).Error("Failed to write export")
		return err
	}
	if err := writeFile(metaPath, meta); err != nil {
		os.Remove(pngPath)
		log.WithError(err).Error("Failed to write export metadata")
		return err
	}
	log.Info("Export stored")
	return nil
}

// writeFile writes through a temporary file so readers never see a partial
// export.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) readMeta(path string) (*export.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e export.Export
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &e, nil
}

func (s *Store) Get(ctx context.Context, id string) (*export.Export, error) {
	pngPath, metaPath, err := s.paths(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	e, err := s.readMeta(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if e.Data, err = os.ReadFile(pngPath); err != nil {
		return nil, fmt.Errorf("read export %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) List(ctx context.Context) ([]*export.Export, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	var out []*export.Export
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		e, err := s.readMeta(filepath.Join(s.basePath, name))
		if err != nil {
			logrus.WithError(err).WithField("file", name).Warn("Skipping unreadable export metadata")
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	pngPath, metaPath, err := s.paths(id)
	if err != nil {
		return fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	if err := os.Remove(metaPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", id, export.ErrNotFound)
		}
		return err
	}
	if err := os.Remove(pngPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	logrus.WithField("export_id", id).Info("Export deleted")
	return nil
}

func (s *Store) Close() error { return nil }
