package property

import (
	"fmt"
	"math"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// RangeWarning reports an evaluation outside the validity range of a record.
// The accompanying value is still returned: the Arrhenius law evaluated as is
// for fitted records, the extended end segment for tabulated ones.
type RangeWarning struct {
	Key   Key
	Label string
	T     float64
	Range Range
	// Extrapolated is set when a tabulated record was evaluated beyond its
	// data.
	Extrapolated bool

	cause *htmerrors.Error
}

func newRangeWarning(p *Property, t float64, extrapolated bool) *RangeWarning {
	w := &RangeWarning{
		Key:          p.Key(),
		Label:        p.Label(),
		T:            t,
		Range:        p.rng,
		Extrapolated: extrapolated,
	}
	w.cause = htmerrors.New(htmerrors.ErrorTypeOutOfRange, w.message()).
		WithDetail("key", w.Key.String()).
		WithDetail("temperature", t)
	return w
}

func (w *RangeWarning) message() string {
	if w.Extrapolated {
		return fmt.Sprintf("%s: T=%g K is outside the tabulated domain %s, value extrapolated", w.Label, w.T, w.Range)
	}
	return fmt.Sprintf("%s: T=%g K is outside the validity range %s", w.Label, w.T, w.Range)
}

func (w *RangeWarning) Error() string {
	return w.message()
}

// Unwrap exposes the out_of_range error so htmerrors.IsType and
// htmerrors.IsFatal classify the warning.
func (w *RangeWarning) Unwrap() error {
	return w.cause
}

// Value evaluates the record at t kelvin in its canonical unit.
//
// A nil error means t is inside the validity range. A *RangeWarning comes
// with a usable value. A non-positive or NaN temperature yields NaN and a
// data error.
func (p *Property) Value(t float64) (float64, error) {
	if math.IsNaN(t) || t <= 0 {
		return math.NaN(), htmerrors.Newf(htmerrors.ErrorTypeData, "temperature %g K is not positive", t).
			WithDetail("key", p.Key().String())
	}

	var v float64
	extrapolated := false
	switch p.mode {
	case Fitted:
		v = p.fit.Eval(t)
	case Tabulated:
		v = p.table.eval(t)
		extrapolated = !p.table.Span().Contains(t)
	default:
		return math.NaN(), htmerrors.Newf(htmerrors.ErrorTypeInternal, "record %s has no payload", p.Key())
	}

	if extrapolated || !p.rng.Contains(t) {
		return v, newRangeWarning(p, t, extrapolated)
	}
	return v, nil
}

// Curve is a record evaluated over a temperature grid.
type Curve struct {
	T        []float64
	Values   []float64
	Warnings []*RangeWarning
}

// Values evaluates the record at every temperature. Range warnings are
// collected and never stop the evaluation; an invalid temperature aborts with
// its data error.
func (p *Property) Values(temps []float64) (Curve, error) {
	c := Curve{
		T:      append([]float64(nil), temps...),
		Values: make([]float64, len(temps)),
	}
	for i, t := range temps {
		v, err := p.Value(t)
		if err != nil {
			w, ok := err.(*RangeWarning)
			if !ok {
				return Curve{}, err
			}
			c.Warnings = append(c.Warnings, w)
		}
		c.Values[i] = v
	}
	return c, nil
}

// Grid returns n temperatures evenly spaced over r, endpoints included.
func Grid(r Range, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{r.Min}
	}
	out := make([]float64, n)
	step := (r.Max - r.Min) / float64(n-1)
	for i := range out {
		out[i] = r.Min + float64(i)*step
	}
	out[n-1] = r.Max
	return out
}
