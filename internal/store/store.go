// Package store opens the export store selected by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/config"
	"github.com/example/photomark/internal/export"
	"github.com/example/photomark/internal/store/filesystem"
	"github.com/example/photomark/internal/store/memory"
	"github.com/example/photomark/internal/store/s3"
	"github.com/example/photomark/internal/store/sqlite"
)

// Types lists the accepted store types.
var Types = []string{"memory", "file", "sqlite", "s3"}

// Open returns the store described by cfg. An empty type selects memory.
func Open(ctx context.Context, cfg config.Store) (export.Store, error) {
	var (
		st  export.Store
		err error
	)
	fields := logrus.Fields{"storageType": cfg.Type}
	switch cfg.Type {
	case "file", "filesystem":
		path := cfg.Path
		if path == "" {
			path = "./exports"
		}
		fields["basePath"] = path
		st, err = filesystem.NewStore(path)
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "photomark.db"
		}
		fields["dataSourceName"] = path
		st, err = sqlite.NewStore(ctx, path)
	case "s3":
		fields["bucketName"] = cfg.Bucket
		if cfg.Endpoint != "" {
			fields["endpoint"] = cfg.Endpoint
		}
		st, err = s3.NewStore(ctx, s3.Options{
			Bucket:   cfg.Bucket,
			Prefix:   cfg.Prefix,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
	case "", "memory":
		fields["storageType"] = "in-memory"
		st = memory.NewStore()
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
	if err != nil {
		logrus.WithFields(fields).WithError(err).Error("Failed to open storage")
		return nil, err
	}
	logrus.WithFields(fields).Info("Use storage")
	return st, nil
}
