package tables

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/observability"
)

// MaxTableBytes caps both the stored and the decompressed size of a table.
var MaxTableBytes int64 = 16 << 20

// Source opens named table files. Names use forward slashes,
// e.g. "beryllium/jones_1992_diffusivity.csv".
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// String describes the source in logs
	String() string
}

// DirSource reads tables from a file system, typically os.DirFS or an
// embed.FS.
type DirSource struct {
	fsys fs.FS
	desc string
}

// NewDirSource returns a source rooted at the local directory dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{fsys: os.DirFS(dir), desc: dir}
}

// NewFSSource returns a source reading from fsys.
func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys, desc: "fs"}
}

// Open implements Source.
func (s *DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := s.fsys.Open(path.Clean(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(name, s.desc)
		}
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to open table").WithDetail("table", name)
	}
	return f, nil
}

func (s *DirSource) String() string { return "dir:" + s.desc }

// cappedReader fails once more than MaxTableBytes have been read.
type cappedReader struct {
	r    io.Reader
	name string
	max  int64
	left int64
}

func capped(r io.Reader, name string) io.Reader {
	return &cappedReader{r: r, name: name, max: MaxTableBytes, left: MaxTableBytes + 1}
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		return 0, tooLarge(c.name, c.max)
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left <= 0 {
		return n, tooLarge(c.name, c.max)
	}
	return n, err
}

func tooLarge(name string, max int64) *htmerrors.Error {
	return htmerrors.Newf(htmerrors.ErrorTypeFile, "table %s exceeds %d bytes", name, max).
		WithDetail("table", name)
}

func notFound(name, where string) error {
	return htmerrors.Newf(htmerrors.ErrorTypeNotFound, "table %s not found in %s", name, where).
		WithDetail("table", name)
}

// Load opens name from src, decompresses it according to its extension and
// parses it with spec.
func Load(ctx context.Context, src Source, name string, spec Spec) (tb Table, err error) {
	ctx, span := observability.StartSpan(ctx, "tables.load",
		attribute.String("table", name),
		attribute.String("source", src.String()))
	defer func() { observability.EndSpan(span, err) }()

	rc, err := src.Open(ctx, name)
	if err != nil {
		return Table{}, err
	}
	defer rc.Close()

	algo := compression.FromExtension(name)
	r, err := compression.NewReader(capped(rc, name), algo)
	if err != nil {
		return Table{}, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to decompress table").
			WithDetail("table", name)
	}
	defer r.Close()

	tb, err = Read(capped(r, name), spec)
	if err != nil {
		var he *htmerrors.Error
		if errors.As(err, &he) {
			he.WithDetail("table", name)
		}
		return Table{}, err
	}

	logger.WithContext(ctx).Debug("table loaded",
		zap.String("table", name),
		zap.String("compression", string(algo)),
		zap.Int("rows", tb.Len()),
		zap.Int("dropped", tb.Dropped))
	return tb, nil
}
