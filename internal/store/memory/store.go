// Package memory keeps exports in process memory. Everything is lost on
// restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/export"
)

type Store struct {
	mu      sync.RWMutex
	exports map[string]*export.Export
}

func NewStore() *Store {
	return &Store{exports: make(map[string]*export.Export)}
}

func (s *Store) Put(ctx context.Context, e *export.Export) error {
	if e.ID == "" {
		return fmt.Errorf("export id cannot be empty")
	}
	c := *e
	c.Data = append([]byte(nil), e.Data...)
	s.mu.Lock()
	s.exports[e.ID] = &c
	s.mu.Unlock()
	logrus.WithFields(logrus.Fields{"export_id": e.ID, "data_length": len(e.Data)}).Info("Export stored")
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*export.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exports[id]
	if !ok {
		logrus.WithField("export_id", id).Warn("Export not found")
		return nil, fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	c := *e
	c.Data = append([]byte(nil), e.Data...)
	return &c, nil
}

func (s *Store) List(ctx context.Context) ([]*export.Export, error) {
	s.mu.RLock()
	out := make([]*export.Export, 0, len(s.exports))
	for _, e := range s.exports {
		out = append(out, e.Meta())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exports[id]; !ok {
		return fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	delete(s.exports, id)
	logrus.WithField("export_id", id).Info("Export deleted")
	return nil
}

func (s *Store) Close() error { return nil }
