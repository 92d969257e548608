// Package tables reads digitized property tables: delimited text files of
// temperature and value columns extracted from published Arrhenius plots.
//
// A table is read with the column conventions of the publication it was
// digitized from, then turned into a tabulated property.Spec:
//
//	tb, err := tables.Load(ctx, src, "tungsten/frauenfelder_1969_diffusivity.csv.gz", tables.Spec{
//	    Delimiter: ',',
//	    SkipRows:  1,
//	    TScale:    units.InverseKilo,
//	    YUnit:     "m^2 s^-1",
//	})
//	spec := tb.Fill(property.Spec{Material: "tungsten", Isotope: property.Hydrogen, Source: "..."})
package tables

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Transform is applied to every parsed value before YFactor.
type Transform string

const (
	// Identity keeps values as read
	Identity Transform = ""
	// Exp maps v to exp(v), for columns digitized as ln(y)
	Exp Transform = "exp"
	// ExpNeg maps v to exp(-v)
	ExpNeg Transform = "exp_neg"
	// Pow10 maps v to 10^v, for columns digitized as log10(y)
	Pow10 Transform = "pow10"
)

// ParseTransform accepts the names above plus "identity".
func ParseTransform(s string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "identity", "none":
		return Identity, nil
	case "exp":
		return Exp, nil
	case "exp_neg":
		return ExpNeg, nil
	case "pow10":
		return Pow10, nil
	default:
		return "", htmerrors.Newf(htmerrors.ErrorTypeData, "unknown value transform %q", s)
	}
}

func (tr Transform) apply(v float64) float64 {
	switch tr {
	case Exp:
		return math.Exp(v)
	case ExpNeg:
		return math.Exp(-v)
	case Pow10:
		return math.Pow(10, v)
	default:
		return v
	}
}

// Spec describes the layout of a delimited table.
type Spec struct {
	// Delimiter separates fields; zero means ','
	Delimiter rune `yaml:"delimiter" json:"delimiter"`
	// Comment starts a comment line; zero disables comments
	Comment rune `yaml:"comment" json:"comment"`
	// SkipRows is the number of header rows to drop
	SkipRows int `yaml:"skip_rows" json:"skip_rows"`
	// TColumn and YColumn are zero-based column indices; YColumn zero
	// means 1
	TColumn int `yaml:"t_column" json:"t_column"`
	YColumn int `yaml:"y_column" json:"y_column"`

	TScale     units.TemperatureScale `yaml:"t_scale" json:"t_scale"`
	YTransform Transform              `yaml:"y_transform" json:"y_transform"`
	// YFactor multiplies every value after the transform; zero means 1
	YFactor float64 `yaml:"y_factor" json:"y_factor"`
	YUnit   string  `yaml:"y_unit" json:"y_unit"`

	// DropNonFinite skips rows whose fields do not parse to finite numbers
	// instead of failing
	DropNonFinite bool `yaml:"drop_non_finite" json:"drop_non_finite"`
	// Limit keeps only the first Limit data rows; zero keeps all
	Limit int `yaml:"limit" json:"limit"`
}

func (s Spec) withDefaults() Spec {
	if s.Delimiter == 0 {
		s.Delimiter = ','
	}
	if s.TColumn == 0 && s.YColumn == 0 {
		s.YColumn = 1
	}
	if s.YFactor == 0 {
		s.YFactor = 1
	}
	return s
}

// Table holds the columns of a digitized table, in file order.
type Table struct {
	T      []float64
	Y      []float64
	TScale units.TemperatureScale
	YUnit  string
	// Dropped counts rows skipped by DropNonFinite
	Dropped int
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.T) }

// Fill copies the table into the tabulated fields of spec.
func (t Table) Fill(spec property.Spec) property.Spec {
	spec.DataT = append([]float64(nil), t.T...)
	spec.DataY = append([]float64(nil), t.Y...)
	spec.TScale = t.TScale
	spec.YUnit = t.YUnit
	return spec
}

// Read parses a delimited table from r.
func Read(r io.Reader, spec Spec) (Table, error) {
	spec = spec.withDefaults()
	if spec.TColumn < 0 || spec.YColumn < 0 || spec.TColumn == spec.YColumn {
		return Table{}, htmerrors.Newf(htmerrors.ErrorTypeData, "invalid columns t=%d y=%d", spec.TColumn, spec.YColumn)
	}
	if spec.YUnit == "" {
		return Table{}, htmerrors.New(htmerrors.ErrorTypeData, "table value unit is required")
	}

	cr := csv.NewReader(r)
	cr.Comma = spec.Delimiter
	cr.Comment = spec.Comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	out := Table{TScale: spec.TScale, YUnit: spec.YUnit}
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, htmerrors.Wrap(err, htmerrors.ErrorTypeData, "malformed table").WithDetail("row", row)
		}
		if row < spec.SkipRows || blank(rec) {
			continue
		}

		t, y, perr := parseRow(rec, spec)
		if perr != nil {
			if spec.DropNonFinite {
				out.Dropped++
				continue
			}
			return Table{}, htmerrors.Wrap(perr, htmerrors.ErrorTypeData, "invalid table row").WithDetail("row", row)
		}
		out.T = append(out.T, t)
		out.Y = append(out.Y, y)
		if spec.Limit > 0 && len(out.T) == spec.Limit {
			break
		}
	}

	if len(out.T) == 0 {
		return Table{}, htmerrors.New(htmerrors.ErrorTypeData, "table has no data rows")
	}
	return out, nil
}

func parseRow(rec []string, spec Spec) (float64, float64, error) {
	if len(rec) <= spec.TColumn || len(rec) <= spec.YColumn {
		return 0, 0, htmerrors.Newf(htmerrors.ErrorTypeData, "row has %d fields", len(rec))
	}
	t, err := parseFloat(rec[spec.TColumn])
	if err != nil {
		return 0, 0, err
	}
	y, err := parseFloat(rec[spec.YColumn])
	if err != nil {
		return 0, 0, err
	}
	y = spec.YTransform.apply(y) * spec.YFactor
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, 0, htmerrors.Newf(htmerrors.ErrorTypeData, "value %q is not finite after transform", rec[spec.YColumn])
	}
	return t, y, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, htmerrors.Wrap(err, htmerrors.ErrorTypeData, "invalid number")
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, htmerrors.Newf(htmerrors.ErrorTypeData, "%q is not finite", s)
	}
	return v, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
