// Package sqlite stores exports in a single table of a sqlite database using
// the cgo free modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/example/photomark/internal/export"
)

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	width INTEGER NOT NULL,
	height INTEGER NOT NULL,
	data BLOB NOT NULL,
	created_at DATETIME NOT NULL
);`

type Store struct {
	db *sql.DB
}

// NewStore opens dataSourceName and creates the exports table.
func NewStore(ctx context.Context, dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// an in-memory database only lives as long as its one connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create exports table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, e *export.Export) error {
	log := logrus.WithFields(logrus.Fields{
		"export_id":   e.ID,
		"data_length": len(e.Data),
	})
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO exports (id, session_id, width, height, data, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.SessionID, e.Width, e.Height, e.Data, e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		log.WithError(err).Error("Failed to store export")
		return err
	}
	log.Info("Export stored")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(row scanner, withData bool) (*export.Export, error) {
	var (
		e       export.Export
		created string
		size    int
	)
	dest := []any{&e.ID, &e.SessionID, &e.Width, &e.Height, &size, &created}
	if withData {
		dest = append(dest, &e.Data)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	e.Size = size
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("export %s: bad created_at %q: %w", e.ID, created, err)
	}
	e.CreatedAt = t
	return &e, nil
}

func (s *Store) Get(ctx context.Context, id string) (*export.Export, error) {
	log := logrus.WithField("export_id", id)
	row := s.db.QueryRowContext(ctx,
		"SELECT id, session_id, width, height, length(data), created_at, data FROM exports WHERE id = ?", id)
	e, err := scanExport(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("Export not found")
		return nil, fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	if err != nil {
		log.WithError(err).Error("Failed to retrieve export")
		return nil, err
	}
	return e, nil
}

func (s *Store) List(ctx context.Context) ([]*export.Export, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, width, height, length(data), created_at FROM exports ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*export.Export
	for rows.Next() {
		e, err := scanExport(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM exports WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	logrus.WithField("export_id", id).Info("Export deleted")
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
