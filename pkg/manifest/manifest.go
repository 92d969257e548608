// Package manifest loads property records from YAML or JSON files, so that
// records can be added without recompiling, and dumps a database back to the
// same format.
//
// A manifest looks like:
//
//	material: tungsten
//	properties:
//	  - kind: diffusivity
//	    isotope: H
//	    source: frauenfelder_solution_1969
//	    range: {min: 1100, max: 2400}
//	    pre_exp: {value: 4.1e-7, unit: "m^2 s^-1"}
//	    act_energy: {value: 0.39, unit: eV}
//	  - kind: solubility
//	    isotope: H
//	    source: klepikov_hydrogen_2000
//	    material: v4cr4ti
//	    data_t: [673, 773, 873]
//	    data_y: [1.62e20, 9.84e19, 5.65e19]
//	    y_unit: "m^-3 Pa^-1/2"
//	  - kind: diffusivity
//	    isotope: D
//	    source: reiter_solubility_1991
//	    table: {file: lipb/reiter_1991/diffusivity.csv, skip_rows: 2, t_scale: 1000/K, y_unit: "m^2 s^-1"}
package manifest

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/htm/pkg/compression"
	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/json"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/observability"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/tables"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Format is the encoding of a manifest.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath infers the format from the file name, ignoring a
// compression suffix. Anything but .json is YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(compression.TrimExtension(path)), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// File is a manifest document.
type File struct {
	// Material applies to entries that do not set their own
	Material   string  `yaml:"material,omitempty" json:"material,omitempty"`
	Properties []Entry `yaml:"properties" json:"properties"`
}

// Entry declares one record.
type Entry struct {
	Kind     string          `yaml:"kind" json:"kind"`
	Material string          `yaml:"material,omitempty" json:"material,omitempty"`
	Isotope  string          `yaml:"isotope" json:"isotope"`
	Source   string          `yaml:"source" json:"source"`
	Author   string          `yaml:"author,omitempty" json:"author,omitempty"`
	Year     int             `yaml:"year,omitempty" json:"year,omitempty"`
	Name     string          `yaml:"name,omitempty" json:"name,omitempty"`
	Note     string          `yaml:"note,omitempty" json:"note,omitempty"`
	Range    *property.Range `yaml:"range,omitempty" json:"range,omitempty"`
	Law      string          `yaml:"law,omitempty" json:"law,omitempty"`

	PreExp    *units.Quantity `yaml:"pre_exp,omitempty" json:"pre_exp,omitempty"`
	ActEnergy *units.Quantity `yaml:"act_energy,omitempty" json:"act_energy,omitempty"`

	DataT         []float64 `yaml:"data_t,omitempty" json:"data_t,omitempty"`
	TScale        string    `yaml:"t_scale,omitempty" json:"t_scale,omitempty"`
	DataY         []float64 `yaml:"data_y,omitempty" json:"data_y,omitempty"`
	YUnit         string    `yaml:"y_unit,omitempty" json:"y_unit,omitempty"`
	Interpolation string    `yaml:"interpolation,omitempty" json:"interpolation,omitempty"`

	Table *Table `yaml:"table,omitempty" json:"table,omitempty"`
}

// Table references a digitized table file.
type Table struct {
	File          string  `yaml:"file" json:"file"`
	Delimiter     string  `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Comment       string  `yaml:"comment,omitempty" json:"comment,omitempty"`
	SkipRows      int     `yaml:"skip_rows,omitempty" json:"skip_rows,omitempty"`
	TColumn       int     `yaml:"t_column,omitempty" json:"t_column,omitempty"`
	YColumn       int     `yaml:"y_column,omitempty" json:"y_column,omitempty"`
	TScale        string  `yaml:"t_scale,omitempty" json:"t_scale,omitempty"`
	YTransform    string  `yaml:"y_transform,omitempty" json:"y_transform,omitempty"`
	YFactor       float64 `yaml:"y_factor,omitempty" json:"y_factor,omitempty"`
	YUnit         string  `yaml:"y_unit" json:"y_unit"`
	DropNonFinite bool    `yaml:"drop_non_finite,omitempty" json:"drop_non_finite,omitempty"`
	Limit         int     `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Options configures Build and Load.
type Options struct {
	// Tables resolves Entry.Table; entries with a table fail without it
	Tables tables.Source
	// Interpolation applies to tabulated entries that do not set one
	Interpolation property.Interpolation
	Logger        *zap.Logger
}

// Decode parses a manifest.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		if err := json.DecodeStrict(r, &f); err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeData, "failed to parse JSON manifest")
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeData, "failed to parse YAML manifest")
		}
	}
	return &f, nil
}

// Build constructs the records of f in order. The first invalid entry
// aborts the build.
func (f *File) Build(ctx context.Context, opts Options) ([]*property.Property, error) {
	props := make([]*property.Property, 0, len(f.Properties))
	for i, e := range f.Properties {
		p, err := e.build(ctx, f.Material, opts)
		if err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeConstruction, "invalid manifest entry").
				WithDetail("index", i).
				WithDetail("source", e.Source)
		}
		props = append(props, p)
	}
	return props, nil
}

func (e Entry) build(ctx context.Context, material string, opts Options) (*property.Property, error) {
	kind, err := property.ParseKind(e.Kind)
	if err != nil {
		return nil, err
	}
	iso, err := property.ParseIsotope(e.Isotope)
	if err != nil {
		return nil, err
	}
	law, err := property.ParseLaw(e.Law)
	if err != nil {
		return nil, err
	}

	spec := property.Spec{
		Material: material,
		Isotope:  iso,
		Source:   e.Source,
		Author:   e.Author,
		Year:     e.Year,
		Name:     e.Name,
		Note:     e.Note,
		Law:      law,
		DataT:    e.DataT,
		DataY:    e.DataY,
		YUnit:    e.YUnit,
	}
	if e.Material != "" {
		spec.Material = e.Material
	}
	if e.Range != nil {
		spec.Range = *e.Range
	}
	if e.PreExp != nil {
		spec.PreExp = *e.PreExp
	}
	if e.ActEnergy != nil {
		spec.ActEnergy = *e.ActEnergy
	}
	if spec.TScale, err = units.ParseTemperatureScale(e.TScale); err != nil {
		return nil, err
	}

	if e.Table != nil {
		if opts.Tables == nil {
			return nil, htmerrors.Newf(htmerrors.ErrorTypeConfig, "entry references table %s but no table source is configured",
				e.Table.File)
		}
		layout, err := e.Table.layout()
		if err != nil {
			return nil, err
		}
		tb, err := tables.Load(ctx, opts.Tables, e.Table.File, layout)
		if err != nil {
			return nil, err
		}
		spec = tb.Fill(spec)
	}

	spec.Interpolation = opts.Interpolation
	if e.Interpolation != "" {
		if spec.Interpolation, err = property.ParseInterpolation(e.Interpolation); err != nil {
			return nil, err
		}
	}

	return property.New(kind, spec)
}

func (t *Table) layout() (tables.Spec, error) {
	scale, err := units.ParseTemperatureScale(t.TScale)
	if err != nil {
		return tables.Spec{}, err
	}
	transform, err := tables.ParseTransform(t.YTransform)
	if err != nil {
		return tables.Spec{}, err
	}
	delim, err := singleRune("delimiter", t.Delimiter)
	if err != nil {
		return tables.Spec{}, err
	}
	comment, err := singleRune("comment", t.Comment)
	if err != nil {
		return tables.Spec{}, err
	}
	return tables.Spec{
		Delimiter:     delim,
		Comment:       comment,
		SkipRows:      t.SkipRows,
		TColumn:       t.TColumn,
		YColumn:       t.YColumn,
		TScale:        scale,
		YTransform:    transform,
		YFactor:       t.YFactor,
		YUnit:         t.YUnit,
		DropNonFinite: t.DropNonFinite,
		Limit:         t.Limit,
	}, nil
}

func singleRune(field, s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, htmerrors.Newf(htmerrors.ErrorTypeData, "table %s must be a single character, got %q", field, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Load reads the manifest at path, which may be compressed, and appends its
// records to reg.
func Load(ctx context.Context, reg *database.Registry, path string, opts Options) (n int, err error) {
	log := opts.Logger
	if log == nil {
		log = logger.Component("manifest")
	}
	ctx, span := observability.StartSpan(ctx, "manifest.load", attribute.String("path", path))
	defer func() { observability.EndSpan(span, err) }()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err != nil {
		return 0, htmerrors.Wrap(err, htmerrors.ErrorTypeFile, "failed to read manifest").WithDetail("path", path)
	}
	if algo := compression.FromExtension(path); algo != compression.None {
		if data, err = compression.Decompress(data, algo); err != nil {
			return 0, err
		}
	}

	f, err := Decode(bytes.NewReader(data), FormatFromPath(path))
	if err != nil {
		return 0, withPath(err, path)
	}
	props, err := f.Build(ctx, opts)
	if err != nil {
		return 0, withPath(err, path)
	}

	reg.Add(props...)
	log.Info("manifest loaded", zap.String("path", path), zap.Int("records", len(props)))
	return len(props), nil
}

func withPath(err error, path string) error {
	if he, ok := err.(*htmerrors.Error); ok {
		return he.WithDetail("path", path)
	}
	return err
}
