package tables

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// GCSConfig configures a GCSSource.
type GCSConfig struct {
	Bucket string
	Prefix string
	// CredentialsFile is a service account key; empty uses application
	// default credentials
	CredentialsFile string
}

// GCSSource reads tables from a Google Cloud Storage bucket.
type GCSSource struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
}

// NewGCSSource creates a client for cfg.Bucket. Close releases it.
func NewGCSSource(ctx context.Context, cfg GCSConfig) (*GCSSource, error) {
	if cfg.Bucket == "" {
		return nil, htmerrors.New(htmerrors.ErrorTypeConfig, "gcs bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "failed to create GCS client")
	}
	return &GCSSource{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
		name:   cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Open implements Source.
func (s *GCSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := objectKey(s.prefix, name)
	r, err := s.bucket.Object(key).NewRangeReader(ctx, 0, MaxTableBytes+1)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, notFound(name, s.String())
		}
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to read table object").
			WithDetail("bucket", s.name).
			WithDetail("key", key)
	}
	return r, nil
}

func (s *GCSSource) String() string { return "gs://" + s.name + "/" + s.prefix }

// Close releases the client.
func (s *GCSSource) Close() error {
	return s.client.Close()
}
