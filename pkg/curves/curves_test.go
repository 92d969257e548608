package curves

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/linkedin/goavro/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/json"
	"github.com/ajitpratap0/htm/pkg/metrics"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

func tungsten(t *testing.T) database.Database {
	t.Helper()
	frauenfelder, err := property.NewDiffusivity(property.Spec{
		Material:  "tungsten",
		Isotope:   property.Hydrogen,
		Source:    "frauenfelder_solution_1969",
		PreExp:    units.Q(4.1e-7, "m^2 s^-1"),
		ActEnergy: units.Q(0.39, "eV"),
		Range:     property.Range{Min: 1100, Max: 2400},
	})
	require.NoError(t, err)
	heinola, err := property.NewDiffusivity(property.Spec{
		Material:  "tungsten",
		Isotope:   property.Hydrogen,
		Source:    "heinola_diffusion_2010",
		PreExp:    units.Q(5.2e-8, "m^2 s^-1"),
		ActEnergy: units.Q(0.21, "eV"),
	})
	require.NoError(t, err)
	return database.New(frauenfelder, heinola)
}

func TestSampleDefaultGrid(t *testing.T) {
	curves, err := Sample(context.Background(), tungsten(t), Options{Logger: zap.NewNop()})
	require.NoError(t, err)
	require.Len(t, curves, 2)

	c := curves[0]
	assert.Equal(t, "H Frauenfelder (1969)", c.Label)
	assert.Equal(t, "m^2 s^-1", c.Unit)
	require.Len(t, c.Points, DefaultPoints)
	assert.Equal(t, 1100.0, c.Points[0].T)
	assert.Equal(t, 2400.0, c.Points[DefaultPoints-1].T)
	assert.InDelta(t, 1.0/1100, c.Points[0].InvT, 1e-15)
	assert.Zero(t, c.Warnings)

	// heinola has no declared range, so the default one applies
	assert.Equal(t, 300.0, curves[1].Points[0].T)
	assert.Equal(t, 1200.0, curves[1].Points[DefaultPoints-1].T)

	for i := 1; i < len(c.Points); i++ {
		assert.Greater(t, c.Points[i].Value, c.Points[i-1].Value)
	}
}

func TestSampleCommonRangeWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	before := testutil.ToFloat64(metrics.RangeWarnings.WithLabelValues("tungsten", "diffusivity"))

	curves, err := Sample(context.Background(), tungsten(t), Options{
		Points: 5,
		Range:  property.Range{Min: 300, Max: 1200},
		Logger: zap.New(core),
	})
	require.NoError(t, err)

	// 300, 525, 750, 975 lie below frauenfelder's range
	assert.Equal(t, 4, curves[0].Warnings)
	assert.False(t, curves[0].Points[0].InRange)
	assert.True(t, curves[0].Points[4].InRange)
	assert.Zero(t, curves[1].Warnings)

	assert.Equal(t, 1, logs.FilterMessage("evaluated outside validity range").Len())
	after := testutil.ToFloat64(metrics.RangeWarnings.WithLabelValues("tungsten", "diffusivity"))
	assert.Equal(t, 4.0, after-before)
}

func TestSampleRejectsTinyGrid(t *testing.T) {
	_, err := Sample(context.Background(), tungsten(t), Options{Points: 1, Logger: zap.NewNop()})
	assert.Error(t, err)
}

func sampled(t *testing.T) []Curve {
	t.Helper()
	curves, err := Sample(context.Background(), tungsten(t), Options{Points: 3, Logger: zap.NewNop()})
	require.NoError(t, err)
	return curves
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampled(t), WriteOptions{Format: FormatCSV}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "H Frauenfelder (1969)", rows[1][0])
	assert.Equal(t, "1100", rows[1][6])
	assert.Equal(t, "true", rows[1][9])
}

func TestWriteCompressedJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := compression.Config{Algorithm: compression.Zstd}
	require.NoError(t, Write(&buf, sampled(t), WriteOptions{Format: FormatJSON, Compression: cfg}))

	raw, err := compression.Decompress(buf.Bytes(), compression.Zstd)
	require.NoError(t, err)

	var got []Curve
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 2)
	assert.Equal(t, property.Diffusivity, got[1].Kind)
	assert.Len(t, got[1].Points, 3)
}

func TestWriteParquet(t *testing.T) {
	for _, algo := range []compression.Algorithm{compression.None, compression.Snappy, compression.Zstd} {
		t.Run(string(algo), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, sampled(t), WriteOptions{
				Format:      FormatParquet,
				Compression: compression.Config{Algorithm: algo},
			}))

			tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(buf.Bytes()),
				parquet.NewReaderProperties(memory.DefaultAllocator), pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
			require.NoError(t, err)
			defer tbl.Release()

			assert.Equal(t, int64(6), tbl.NumRows())
			assert.Equal(t, int64(len(columns)), tbl.NumCols())
			assert.Equal(t, "value", tbl.Schema().Field(8).Name)
		})
	}
}

func TestWriteAvro(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampled(t), WriteOptions{
		Format:      FormatAvro,
		Compression: compression.Config{Algorithm: compression.Gzip},
	}))

	r, err := goavro.NewOCFReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	var labels []string
	for r.Scan() {
		datum, err := r.Read()
		require.NoError(t, err)
		labels = append(labels, datum.(map[string]interface{})["label"].(string))
	}
	require.NoError(t, r.Err())
	require.Len(t, labels, 6)
	assert.True(t, strings.HasPrefix(labels[5], "H Heinola"))
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, nil, WriteOptions{Format: "xlsx"})
	assert.Error(t, err)
}
