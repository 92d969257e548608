package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "htm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Evaluation.Points)
	assert.True(t, cfg.Evaluation.GridRange().IsZero())
	assert.Equal(t, "inverse_log", cfg.Evaluation.Interpolation)
	assert.Equal(t, FormatCSV, cfg.Export.Format)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	t.Setenv("HTM_TEST_BUCKET", "htm-tables")
	path := writeFile(t, `
logging:
  level: debug
data:
  tables_bucket: ${HTM_TEST_BUCKET}
  tables_provider: s3
  materials: [tungsten, beryllium]
evaluation:
  points: 10
  range: [300, 1200]
export:
  format: parquet
  compression: zstd
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "htm-tables", cfg.Data.TablesBucket)
	assert.Equal(t, []string{"tungsten", "beryllium"}, cfg.Data.Materials)
	assert.Equal(t, 10, cfg.Evaluation.Points)
	assert.Equal(t, [2]float64{300, 1200}, cfg.Evaluation.Range)
	assert.Equal(t, FormatParquet, cfg.Export.Format)
	assert.Equal(t, compression.Zstd, cfg.Export.CompressionConfig().Algorithm)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeConfig))
}

func TestLoadFileInvalidYAML(t *testing.T) {
	_, err := LoadFile(writeFile(t, "evaluation: [unclosed"))
	require.Error(t, err)
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bucket without provider", func(c *Config) { c.Data.TablesBucket = "b" }, "tables_provider"},
		{"dir and bucket", func(c *Config) {
			c.Data.TablesBucket, c.Data.TablesProvider, c.Data.TablesDir = "b", "gcs", "data"
		}, "mutually exclusive"},
		{"negative workers", func(c *Config) { c.Data.Workers = -1 }, "data.workers"},
		{"inverted range", func(c *Config) { c.Evaluation.Range = [2]float64{900, 300} }, "evaluation.range"},
		{"one point", func(c *Config) { c.Evaluation.Points = 1 }, "points"},
		{"bad interpolation", func(c *Config) { c.Evaluation.Interpolation = "cubic" }, "interpolation"},
		{"bad format", func(c *Config) { c.Export.Format = "xlsx" }, "export.format"},
		{"bad compression", func(c *Config) { c.Export.Compression = "brotli" }, "compression"},
		{"bad level", func(c *Config) { c.Export.CompressionLevel = 12 }, "compression_level"},
		{"bad driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"bad sample rate", func(c *Config) { c.Observability.SampleRate = 2 }, "sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeConfig))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Data.Manifests = []string{"extra.yaml"}
	cfg.Store.Driver = DriverPostgres
	cfg.Store.DSN = "postgres://localhost/htm"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data.Manifests, loaded.Data.Manifests)
	assert.Equal(t, cfg.Store, loaded.Store)
	assert.Equal(t, cfg.Evaluation, loaded.Evaluation)
	assert.Equal(t, cfg.Export, loaded.Export)
	assert.Equal(t, cfg.Observability, loaded.Observability)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("HTM_A", "x")
	assert.Equal(t, "x-x-", substituteEnvVars("${HTM_A}-${HTM_A}-${HTM_UNSET_VAR}"))
	assert.Equal(t, "no refs", substituteEnvVars("no refs"))
	assert.Equal(t, "open ${", substituteEnvVars("open ${"))
}
