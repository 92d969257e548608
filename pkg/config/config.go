// Package config provides the configuration of the htm tool and library.
//
// The configuration is organized into logical sections:
//   - Logging: level, encoding and outputs of the zap logger
//   - Data: where digitized tables and record manifests come from
//   - Evaluation: grid size, common range and interpolation default
//   - Export: curve output format and compression
//   - Store: database driver and DSN for persistence
//   - Observability: metrics dump and tracing
//
// Example usage:
//
//	cfg, err := config.LoadFile("htm.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.Export.Format = "parquet"
//
// YAML files may reference environment variables with ${VAR_NAME}.
package config

import (
	"strings"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/property"
)

// Config is the top-level configuration.
type Config struct {
	// Logging configures the global zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Data selects table sources, manifests and built-in materials
	Data DataConfig `yaml:"data" json:"data"`

	// Evaluation controls curve sampling
	Evaluation EvaluationConfig `yaml:"evaluation" json:"evaluation"`

	// Export controls curve output
	Export ExportConfig `yaml:"export" json:"export"`

	// Store configures persistence
	Store StoreConfig `yaml:"store" json:"store"`

	// Observability configures tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// DataConfig locates the inputs of the material loaders.
type DataConfig struct {
	// TablesDir is a local directory of digitized tables
	TablesDir string `yaml:"tables_dir" json:"tables_dir"`
	// TablesBucket is an object storage bucket holding the tables
	TablesBucket string `yaml:"tables_bucket" json:"tables_bucket"`
	// TablesPrefix is prepended to table names inside the bucket
	TablesPrefix string `yaml:"tables_prefix" json:"tables_prefix"`
	// TablesProvider is "s3" or "gcs"
	TablesProvider string `yaml:"tables_provider" json:"tables_provider"`
	// Region is the S3 region; empty uses the AWS default chain
	Region string `yaml:"region" json:"region"`
	// Endpoint overrides the S3 endpoint, e.g. for MinIO
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// CredentialsFile is a GCS service account key; empty uses ADC
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
	// Manifests lists YAML or JSON record manifests loaded after the
	// built-in materials
	Manifests []string `yaml:"manifests" json:"manifests"`
	// Materials restricts the built-in materials to load; empty loads all
	Materials []string `yaml:"materials" json:"materials"`
	// Workers is the number of materials built concurrently
	Workers int `yaml:"workers" json:"workers"`
}

// EvaluationConfig controls curve sampling.
type EvaluationConfig struct {
	// Range is a common temperature interval for every curve; zero samples
	// each record over its own validity range
	Range [2]float64 `yaml:"range" json:"range"`
	// Points is the number of temperatures per curve
	Points int `yaml:"points" json:"points"`
	// Interpolation is the default for tabulated manifest entries, e.g.
	// "inverse_log"
	Interpolation string `yaml:"interpolation" json:"interpolation"`
}

// ExportConfig controls curve output.
type ExportConfig struct {
	// Format is csv, json, parquet or avro
	Format string `yaml:"format" json:"format"`
	// Compression is none, gzip, zstd, lz4, s2 or snappy
	Compression string `yaml:"compression" json:"compression"`
	// CompressionLevel is 1 (fastest) to 9 (best); 0 means default
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
	// Output is the destination file; empty or "-" means stdout
	Output string `yaml:"output" json:"output"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	// Driver is sqlite or postgres
	Driver string `yaml:"driver" json:"driver"`
	// DSN is a file path for sqlite or a connection string for postgres
	DSN string `yaml:"dsn" json:"dsn"`
}

// ObservabilityConfig configures metrics and tracing.
type ObservabilityConfig struct {
	// Metrics dumps the Prometheus registry to stderr when a command ends
	Metrics bool `yaml:"metrics" json:"metrics"`
	// Tracing exports spans to stderr
	Tracing bool `yaml:"tracing" json:"tracing"`
	// SampleRate controls trace sampling (0.0-1.0)
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate"`
}

// Export formats.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
	FormatAvro    = "avro"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Default returns a configuration with sensible defaults: every built-in
// material, no table source, 50-point curves over each record's range, CSV
// output to stdout and a local SQLite store.
func Default() *Config {
	return &Config{
		Logging: logger.DefaultConfig(),
		Data: DataConfig{
			Workers: 1,
		},
		Evaluation: EvaluationConfig{
			Points:        50,
			Interpolation: property.DefaultInterpolation.String(),
		},
		Export: ExportConfig{
			Format:      FormatCSV,
			Compression: string(compression.None),
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			DSN:    "htm.db",
		},
		Observability: ObservabilityConfig{
			SampleRate: 1.0,
		},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Data.TablesBucket != "" {
		switch c.Data.TablesProvider {
		case "s3", "gcs":
		default:
			return configError("data.tables_provider must be s3 or gcs when tables_bucket is set, got %q",
				c.Data.TablesProvider)
		}
		if c.Data.TablesDir != "" {
			return configError("data.tables_dir and data.tables_bucket are mutually exclusive")
		}
	}

	if c.Data.Workers < 0 {
		return configError("data.workers must not be negative, got %d", c.Data.Workers)
	}

	if r := c.Evaluation.Range; r != [2]float64{} && (r[0] <= 0 || r[1] <= r[0]) {
		return configError("evaluation.range must satisfy 0 < min < max, got %v", r)
	}
	if c.Evaluation.Points < 2 {
		return configError("evaluation.points must be at least 2, got %d", c.Evaluation.Points)
	}
	if _, err := property.ParseInterpolation(c.Evaluation.Interpolation); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "invalid evaluation.interpolation")
	}

	switch strings.ToLower(c.Export.Format) {
	case FormatCSV, FormatJSON, FormatParquet, FormatAvro:
	default:
		return configError("export.format must be csv, json, parquet or avro, got %q", c.Export.Format)
	}
	if _, err := compression.ParseAlgorithm(c.Export.Compression); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "invalid export.compression")
	}
	if c.Export.CompressionLevel < 0 || c.Export.CompressionLevel > 9 {
		return configError("export.compression_level must be between 0 and 9, got %d", c.Export.CompressionLevel)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return configError("store.driver must be sqlite or postgres, got %q", c.Store.Driver)
	}

	if rate := c.Observability.SampleRate; rate < 0 || rate > 1 {
		return configError("observability.sample_rate must be within [0, 1], got %g", rate)
	}
	return nil
}

// GridRange returns the common curve range, zero when unset.
func (e EvaluationConfig) GridRange() property.Range {
	return property.Range{Min: e.Range[0], Max: e.Range[1]}
}

// CompressionConfig returns the export compression settings.
func (e ExportConfig) CompressionConfig() compression.Config {
	algo, _ := compression.ParseAlgorithm(e.Compression)
	return compression.Config{Algorithm: algo, Level: compression.Level(e.CompressionLevel)}
}

func configError(format string, args ...interface{}) error {
	return htmerrors.Newf(htmerrors.ErrorTypeConfig, format, args...)
}
