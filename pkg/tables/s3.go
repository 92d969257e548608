package tables

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// S3Config configures an S3Source.
type S3Config struct {
	Bucket string
	Prefix string
	// Region defaults to the AWS configuration chain
	Region string
	// Endpoint overrides the service endpoint, e.g. for MinIO
	Endpoint string
}

// S3Source reads tables from an S3 bucket. Downloads are ranged to one byte
// past MaxTableBytes so oversized objects are rejected without fetching them
// whole.
type S3Source struct {
	downloader *manager.Downloader
	bucket     string
	prefix     string
}

// NewS3Source builds a client from the default AWS credential chain.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, htmerrors.New(htmerrors.ErrorTypeConfig, "s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3SourceFromClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3SourceFromClient wraps an existing client.
func NewS3SourceFromClient(client manager.DownloadAPIClient, bucket, prefix string) *S3Source {
	return &S3Source{
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		prefix:     prefix,
	}
}

// Open implements Source.
func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := objectKey(s.prefix, name)
	limit := MaxTableBytes
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", limit)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, notFound(name, s.String())
		}
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to download table").
			WithDetail("bucket", s.bucket).
			WithDetail("key", key)
	}
	if int64(len(buf.Bytes())) > limit {
		return nil, tooLarge(name, limit).WithDetail("bucket", s.bucket)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func (s *S3Source) String() string { return "s3://" + s.bucket + "/" + s.prefix }

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return path.Clean(name)
	}
	return path.Join(prefix, name)
}
