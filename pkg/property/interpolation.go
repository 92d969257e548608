package property

import (
	"math"
	"sort"
	"strings"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// Axis is the abscissa interpolation is linear in.
type Axis string

const (
	// AxisInverse interpolates linearly in 1/T, the Arrhenius plot axis
	AxisInverse Axis = "inverse"
	// AxisLinear interpolates linearly in T
	AxisLinear Axis = "linear"
)

// Scale is the ordinate interpolation is linear in.
type Scale string

const (
	// ScaleLog interpolates linearly in ln(y)
	ScaleLog Scale = "log"
	// ScaleLinear interpolates linearly in y
	ScaleLinear Scale = "linear"
)

// Interpolation selects how a tabulated record is evaluated between (and
// beyond) its points. The zero value means inverse/log, which is exact for
// data that follows an Arrhenius law.
type Interpolation struct {
	Axis  Axis  `yaml:"axis,omitempty" json:"axis,omitempty"`
	Value Scale `yaml:"value,omitempty" json:"value,omitempty"`
}

// DefaultInterpolation is linear in 1/T and ln(y).
var DefaultInterpolation = Interpolation{Axis: AxisInverse, Value: ScaleLog}

// ParseInterpolation parses "<axis>_<value>", e.g. "inverse_log" or
// "linear_linear". The empty string yields the default.
func ParseInterpolation(s string) (Interpolation, error) {
	if s == "" {
		return DefaultInterpolation, nil
	}
	axis, value, ok := strings.Cut(strings.ToLower(s), "_")
	if !ok {
		return Interpolation{}, htmerrors.Newf(htmerrors.ErrorTypeConstruction,
			"interpolation %q must look like <axis>_<value>", s)
	}
	return Interpolation{Axis: Axis(axis), Value: Scale(value)}.normalize()
}

// String renders the interpolation in the form ParseInterpolation accepts.
func (i Interpolation) String() string {
	n, err := i.normalize()
	if err != nil {
		return string(i.Axis) + "_" + string(i.Value)
	}
	return string(n.Axis) + "_" + string(n.Value)
}

func (i Interpolation) normalize() (Interpolation, error) {
	if i.Axis == "" {
		i.Axis = AxisInverse
	}
	if i.Value == "" {
		i.Value = ScaleLog
	}
	if i.Axis != AxisInverse && i.Axis != AxisLinear {
		return Interpolation{}, htmerrors.Newf(htmerrors.ErrorTypeConstruction, "unknown interpolation axis %q", i.Axis)
	}
	if i.Value != ScaleLog && i.Value != ScaleLinear {
		return Interpolation{}, htmerrors.Newf(htmerrors.ErrorTypeConstruction, "unknown interpolation scale %q", i.Value)
	}
	return i, nil
}

func (i Interpolation) x(t float64) float64 {
	if i.Axis == AxisInverse {
		return 1 / t
	}
	return t
}

func (i Interpolation) y(v float64) float64 {
	if i.Value == ScaleLog {
		return math.Log(v)
	}
	return v
}

func (i Interpolation) unY(v float64) float64 {
	if i.Value == ScaleLog {
		return math.Exp(v)
	}
	return v
}

// Table is a tabulated dataset sorted by ascending temperature.
type Table struct {
	T      []float64
	Y      []float64
	Interp Interpolation
}

// Span returns the lowest and highest tabulated temperature.
func (tb *Table) Span() Range {
	return Range{Min: tb.T[0], Max: tb.T[len(tb.T)-1]}
}

// eval interpolates between the bracketing points. Outside the tabulated
// domain the end segment is extended.
func (tb *Table) eval(t float64) float64 {
	n := len(tb.T)
	i := sort.SearchFloat64s(tb.T, t)
	if i < n && tb.T[i] == t {
		return tb.Y[i]
	}
	// bracket is [i-1, i]; clamp to the first or last segment
	switch {
	case i == 0:
		i = 1
	case i >= n:
		i = n - 1
	}

	x0, x1 := tb.Interp.x(tb.T[i-1]), tb.Interp.x(tb.T[i])
	y0, y1 := tb.Interp.y(tb.Y[i-1]), tb.Interp.y(tb.Y[i])
	frac := (tb.Interp.x(t) - x0) / (x1 - x0)
	return tb.Interp.unY(y0 + frac*(y1-y0))
}
