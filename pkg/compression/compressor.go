// Package compression wraps the streaming codecs used for digitized tables
// and exported curves.
//
// # Overview
//
// Table files may be stored compressed ("schumacher.csv.gz",
// "reiter.csv.zst") and are decompressed transparently based on their
// extension. Curve exports can be compressed with any supported algorithm.
//
// # Basic Usage
//
//	// Read a table whatever its compression
//	r, err := compression.NewReader(f, compression.FromExtension(name))
//	defer r.Close()
//
//	// Write a zstd-compressed export
//	w, err := compression.NewWriter(out, compression.Config{Algorithm: compression.Zstd})
//	defer w.Close()
//
// # Algorithm Selection
//
//   - Gzip: Wide compatibility, the usual choice for published datasets
//   - Zstd: Best compression ratio, good speed
//   - LZ4/S2/Snappy: Fastest, moderate compression
package compression

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

// Config represents writer configuration. The zero Level means Default.
type Config struct {
	Algorithm Algorithm `yaml:"algorithm" json:"algorithm"`
	Level     Level     `yaml:"level" json:"level"`
}

var extensions = map[Algorithm]string{
	Gzip:   ".gz",
	Zstd:   ".zst",
	LZ4:    ".lz4",
	S2:     ".s2",
	Snappy: ".sz",
}

// ParseAlgorithm accepts algorithm names; the empty string means None.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "", None:
		return None, nil
	case Gzip, Snappy, LZ4, Zstd, S2:
		return a, nil
	case "gz":
		return Gzip, nil
	case "zst":
		return Zstd, nil
	default:
		return "", htmerrors.Newf(htmerrors.ErrorTypeConfig, "unsupported compression algorithm: %s", s)
	}
}

// Extension returns the file suffix for a, e.g. ".gz". None has no suffix.
func (a Algorithm) Extension() string {
	return extensions[a]
}

// FromExtension infers the algorithm from a file name. Unknown suffixes
// yield None.
func FromExtension(name string) Algorithm {
	ext := strings.ToLower(path.Ext(name))
	for a, e := range extensions {
		if e == ext {
			return a
		}
	}
	return None
}

// TrimExtension strips a compression suffix from name, so
// "reiter.csv.gz" becomes "reiter.csv".
func TrimExtension(name string) string {
	if a := FromExtension(name); a != None {
		return name[:len(name)-len(a.Extension())]
	}
	return name
}

// NewReader returns a reader decompressing r with algorithm a. Closing the
// returned reader releases codec resources but does not close r.
func NewReader(r io.Reader, a Algorithm) (io.ReadCloser, error) {
	switch a {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to open gzip stream")
		}
		return zr, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to open zstd stream")
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, htmerrors.Newf(htmerrors.ErrorTypeConfig, "unsupported compression algorithm: %s", a)
	}
}

// NewWriter returns a writer compressing into w. Close flushes the codec but
// does not close w.
func NewWriter(w io.Writer, cfg Config) (io.WriteCloser, error) {
	switch cfg.Algorithm {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		zw, err := gzip.NewWriterLevel(w, mapGzipLevel(cfg.Level))
		if err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to create gzip writer")
		}
		return zw, nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(cfg.Level)))
		if err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to create zstd writer")
		}
		return enc, nil
	case LZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(mapLZ4Level(cfg.Level))); err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to configure lz4 writer")
		}
		return lw, nil
	case S2:
		return s2.NewWriter(w, mapS2Options(cfg.Level)...), nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, htmerrors.Newf(htmerrors.ErrorTypeConfig, "unsupported compression algorithm: %s", cfg.Algorithm)
	}
}

// Compress compresses data in memory.
func Compress(data []byte, cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "compression failed")
	}
	if err := w.Close(); err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "compression failed")
	}
	return buf.Bytes(), nil
}

// Decompress decompresses data in memory.
func Decompress(data []byte, a Algorithm) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(data), a)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "decompression failed")
	}
	return out, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapS2Options(level Level) []s2.WriterOption {
	switch level {
	case Better:
		return []s2.WriterOption{s2.WriterBetterCompression()}
	case Best:
		return []s2.WriterOption{s2.WriterBestCompression()}
	default:
		return nil
	}
}
