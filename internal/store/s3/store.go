// Package s3 stores exports as objects in an S3 bucket. Export metadata is
// carried in the object's user metadata.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/export"
	"github.com/example/photomark/internal/ids"
)

// API is the subset of the S3 client the store calls.
type API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Options locate the bucket.
type Options struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

type Store struct {
	client API
	bucket string
	prefix string
}

// NewStore loads the default AWS configuration and connects to the bucket.
// A custom Endpoint switches to path style addressing for S3 compatible
// servers.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket must be set")
	}
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStoreWithClient(client, opts.Bucket, opts.Prefix), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client API, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *Store) key(id string) string {
	return path.Join(s.prefix, id+".png")
}

func (s *Store) listPrefix() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + "/"
}

const (
	metaSession = "session-id"
	metaWidth   = "width"
	metaHeight  = "height"
	metaCreated = "created-at"
)

func (s *Store) Put(ctx context.Context, e *export.Export) error {
	if err := ids.ValidateExportID(e.ID); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(e.ID)),
		Body:        bytes.NewReader(e.Data),
		ContentType: aws.String(export.ContentType),
		Metadata: map[string]string{
			metaSession: e.SessionID,
			metaWidth:   strconv.Itoa(e.Width),
			metaHeight:  strconv.Itoa(e.Height),
			metaCreated: e.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload export %s: %w", e.ID, err)
	}
	logrus.WithFields(logrus.Fields{"export_id": e.ID, "bucket": s.bucket, "data_length": len(e.Data)}).Info("Export stored")
	return nil
}

func fromMetadata(id string, md map[string]string, size int64) *export.Export {
	e := &export.Export{ID: id, SessionID: md[metaSession], Size: int(size)}
	e.Width, _ = strconv.Atoi(md[metaWidth])
	e.Height, _ = strconv.Atoi(md[metaHeight])
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, md[metaCreated])
	return e
}

func (s *Store) Get(ctx context.Context, id string) (*export.Export, error) {
	if ids.ValidateExportID(id) != nil {
		return nil, fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", id, export.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get export %s: %w", id, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export data: %w", err)
	}
	e := fromMetadata(id, resp.Metadata, int64(len(data)))
	e.Data = data
	return e, nil
}

func (s *Store) List(ctx context.Context) ([]*export.Export, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.listPrefix()),
	})
	var out []*export.Export
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			id := strings.TrimSuffix(path.Base(key), ".png")
			if ids.ValidateExportID(id) != nil {
				continue
			}
			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				logrus.WithError(err).WithField("key", key).Warn("Failed to read export metadata")
				continue
			}
			out = append(out, fromMetadata(id, head.Metadata, aws.ToInt64(obj.Size)))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if ids.ValidateExportID(id) != nil {
		return fmt.Errorf("%s: %w", id, export.ErrNotFound)
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return fmt.Errorf("%s: %w", id, export.ErrNotFound)
		}
		return fmt.Errorf("failed to check export %s: %w", id, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	}); err != nil {
		return fmt.Errorf("failed to delete export %s: %w", id, err)
	}
	logrus.WithField("export_id", id).Info("Export deleted")
	return nil
}

func (s *Store) Close() error { return nil }
