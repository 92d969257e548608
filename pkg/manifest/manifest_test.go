package manifest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/tables"
)

const tungstenYAML = `
material: tungsten
properties:
  - kind: diffusivity
    isotope: H
    source: frauenfelder_solution_1969
    range: {min: 1100, max: 2400}
    pre_exp: {value: 4.1e-7, unit: "m^2 s^-1"}
    act_energy: {value: 0.39, unit: eV}
  - kind: solubility
    isotope: H
    source: klepikov_hydrogen_2000
    material: v4cr4ti
    data_t: [673, 773, 873]
    data_y: [1.62e20, 9.84e19, 5.65e19]
    y_unit: "m^-3 Pa^-1/2"
    interpolation: linear_linear
  - kind: d
    isotope: deuterium
    source: reiter_solubility_1991
    name: D Reiter (1991)
    table:
      file: lipb/reiter.csv
      skip_rows: 1
      t_scale: 1000/K
      y_unit: "m^2 s^-1"
`

func opts() Options {
	return Options{
		Tables: tables.NewFSSource(fstest.MapFS{
			"lipb/reiter.csv": {Data: []byte("1000/T,D\n1.4,2e-9\n1.6,1e-9\n1.8,6e-10\n")},
		}),
		Logger: zap.NewNop(),
	}
}

func TestDecodeAndBuildYAML(t *testing.T) {
	f, err := Decode(strings.NewReader(tungstenYAML), FormatYAML)
	require.NoError(t, err)
	require.Len(t, f.Properties, 3)

	props, err := f.Build(context.Background(), opts())
	require.NoError(t, err)
	require.Len(t, props, 3)

	d := props[0]
	assert.Equal(t, "tungsten", d.Material())
	assert.Equal(t, "H Frauenfelder (1969)", d.Label())
	assert.Equal(t, property.Range{Min: 1100, Max: 2400}, d.Range())

	s := props[1]
	assert.Equal(t, "v4cr4ti", s.Material(), "entry material overrides the file default")
	assert.Equal(t, property.Tabulated, s.Mode())
	tb, _ := s.Table()
	assert.Equal(t, property.Interpolation{Axis: property.AxisLinear, Value: property.ScaleLinear}, tb.Interp)

	reiter := props[2]
	assert.Equal(t, property.Diffusivity, reiter.Kind())
	assert.Equal(t, "D Reiter (1991)", reiter.Label())
	assert.InDelta(t, 1000/1.8, reiter.Range().Min, 1e-9)
}

func TestDefaultInterpolationApplies(t *testing.T) {
	f, err := Decode(strings.NewReader(tungstenYAML), FormatYAML)
	require.NoError(t, err)

	o := opts()
	o.Interpolation = property.Interpolation{Axis: property.AxisLinear, Value: property.ScaleLog}
	props, err := f.Build(context.Background(), o)
	require.NoError(t, err)

	tb, _ := props[2].Table()
	assert.Equal(t, o.Interpolation, tb.Interp)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("properties:\n  - kind: diffusivity\n    colour: red\n"), FormatYAML)
	require.Error(t, err)
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeData))

	_, err = Decode(strings.NewReader(`{"properties": [{"colour": "red"}]}`), FormatJSON)
	require.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		is    htmerrors.ErrorType
	}{
		{"bad kind", Entry{Kind: "viscosity", Isotope: "H", Source: "a_2000"}, htmerrors.ErrorTypeConstruction},
		{"bad isotope", Entry{Kind: "diffusivity", Isotope: "X", Source: "a_2000"}, htmerrors.ErrorTypeConstruction},
		{"table without source", Entry{Kind: "diffusivity", Isotope: "H", Source: "a_2000",
			Table: &Table{File: "x.csv", YUnit: "m^2 s^-1"}}, htmerrors.ErrorTypeConfig},
		{"wide delimiter", Entry{Kind: "diffusivity", Isotope: "H", Source: "a_2000",
			Table: &Table{File: "x.csv", Delimiter: ";;", YUnit: "m^2 s^-1"}}, htmerrors.ErrorTypeData},
		{"wrong unit", Entry{Kind: "diffusivity", Isotope: "H", Source: "a_2000",
			DataT: []float64{300, 400}, DataY: []float64{1, 2}, YUnit: "m^4 s^-1"}, htmerrors.ErrorTypeUnit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{Material: "tungsten", Properties: []Entry{tt.entry}}
			o := Options{Logger: zap.NewNop()}
			if tt.name == "wide delimiter" {
				o.Tables = opts().Tables
			}
			_, err := f.Build(context.Background(), o)
			require.Error(t, err)
			assert.True(t, htmerrors.IsType(err, tt.is), err.Error())
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	f, err := Decode(strings.NewReader(tungstenYAML), FormatYAML)
	require.NoError(t, err)
	props, err := f.Build(context.Background(), opts())
	require.NoError(t, err)
	db := database.New(props...)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, db, format))

			back, err := Decode(&buf, format)
			require.NoError(t, err)
			again, err := back.Build(context.Background(), Options{Logger: zap.NewNop()})
			require.NoError(t, err, "encoded manifests need no table source")
			require.Len(t, again, db.Len())

			for i, p := range again {
				orig := db.At(i)
				assert.Equal(t, orig.Key(), p.Key())
				assert.Equal(t, orig.Label(), p.Label())
				assert.Equal(t, orig.Range(), p.Range())
				for _, temp := range []float64{600, 900, 1500} {
					want, _ := orig.Value(temp)
					got, _ := p.Value(temp)
					assert.InEpsilon(t, want, got, 1e-9)
				}
			}
		})
	}
}

func TestLoadCompressedManifest(t *testing.T) {
	data, err := compression.Compress([]byte(tungstenYAML), compression.Config{Algorithm: compression.Gzip})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "extra.yaml.gz")
	require.NoError(t, os.WriteFile(path, data, 0600))

	reg := database.NewRegistry(database.WithLogger(zap.NewNop()))
	n, err := Load(context.Background(), reg, path, opts())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"tungsten", "v4cr4ti"}, reg.Materials())
}

func TestLoadMissingFile(t *testing.T) {
	reg := database.NewRegistry(database.WithLogger(zap.NewNop()))
	_, err := Load(context.Background(), reg, filepath.Join(t.TempDir(), "absent.yaml"), opts())
	require.Error(t, err)
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeFile))
	assert.Zero(t, reg.Len())
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("a/b.JSON"))
	assert.Equal(t, FormatJSON, FormatFromPath("b.json.zst"))
	assert.Equal(t, FormatYAML, FormatFromPath("b.yml"))
}
