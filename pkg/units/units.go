// Package units normalizes tagged physical quantities to canonical SI values.
//
// Unit expressions are products of base symbols with optional exponents:
//
//	"m^2 s^-1"   "m2 s-1"   "m**2*s**-1"   "m^2/s"
//	"kJ/mol"     "eV"       "m-3 Pa-1/2"   "mol m^-3 Pa^-0.5"
//
// A '/' inverts the symbol that follows it. Amount of substance is a
// dimension of its own, counted in particles: "mol" is 6.022e23 particles, so
// "mol m^-3" and "particle m^-3" are compatible while "mol m^2 s^-1" and
// "m^2 s^-1" are not. ConvertCount reads a unit without any amount, such as
// "m^-3", as a particle count.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// Dimension holds the exponents of length, mass, time, temperature and
// amount.
type Dimension [5]float64

const amountAxis = 4

var dimSymbols = [5]string{"m", "kg", "s", "K", "particle"}

// Common dimensions.
var (
	Dimensionless = Dimension{}
	Length        = Dimension{1, 0, 0, 0, 0}
	Time          = Dimension{0, 0, 1, 0, 0}
	Mass          = Dimension{0, 1, 0, 0, 0}
	Temperature   = Dimension{0, 0, 0, 1, 0}
	Amount        = Dimension{0, 0, 0, 0, 1}
	Energy        = Dimension{2, 1, -2, 0, 0}
	Pressure      = Dimension{-1, 1, -2, 0, 0}
	// MolarEnergy is energy per amount, e.g. kJ/mol or eV/particle
	MolarEnergy = Dimension{2, 1, -2, 0, -1}
)

// Add returns d + o (multiplication of the underlying units).
func (d Dimension) Add(o Dimension) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] + o[i]
	}
	return out
}

// Scale returns d with every exponent multiplied by k.
func (d Dimension) Scale(k float64) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] * k
	}
	return out
}

// Equal compares exponents with a tolerance suited to fractional powers.
func (d Dimension) Equal(o Dimension) bool {
	for i := range d {
		if math.Abs(d[i]-o[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// String renders the dimension in SI base symbols, e.g. "m^2 s^-1".
func (d Dimension) String() string {
	parts := make([]string, 0, len(d))
	for i, exp := range d {
		if math.Abs(exp) < 1e-9 {
			continue
		}
		if math.Abs(exp-1) < 1e-9 {
			parts = append(parts, dimSymbols[i])
			continue
		}
		parts = append(parts, dimSymbols[i]+"^"+strconv.FormatFloat(exp, 'g', -1, 64))
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, " ")
}

// Unit is a parsed unit expression: value_SI = value * Factor.
type Unit struct {
	Expr   string
	Factor float64
	Dim    Dimension
}

type baseUnit struct {
	factor float64
	dim    Dimension
}

var symbols = map[string]baseUnit{
	// length
	"m":  {1, Length},
	"cm": {1e-2, Length},
	"mm": {1e-3, Length},
	"um": {1e-6, Length},
	"µm": {1e-6, Length},
	"nm": {1e-9, Length},
	// time
	"s":   {1, Time},
	"min": {60, Time},
	"h":   {3600, Time},
	// mass
	"kg": {1, Mass},
	"g":  {1e-3, Mass},
	// temperature (absolute only; Celsius is an offset scale)
	"K": {1, Temperature},
	// energy
	"J":   {1, Energy},
	"kJ":  {1e3, Energy},
	"eV":  {ElementaryCharge, Energy},
	"meV": {1e-3 * ElementaryCharge, Energy},
	"keV": {1e3 * ElementaryCharge, Energy},
	// amount
	"mol":      {Avogadro, Amount},
	"particle": {1, Amount},
	"at":       {1, Amount},
	// pressure
	"Pa":   {1, Pressure},
	"kPa":  {1e3, Pressure},
	"MPa":  {1e6, Pressure},
	"bar":  {1e5, Pressure},
	"mbar": {1e2, Pressure},
	"atm":  {StandardAtm, Pressure},
	"Torr": {StandardAtm / 760, Pressure},
}

// Parse parses a unit expression.
func Parse(expr string) (Unit, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(expr, "**", "^"))
	if trimmed == "" {
		return Unit{}, htmerrors.New(htmerrors.ErrorTypeUnit, "empty unit expression")
	}

	u := Unit{Expr: expr, Factor: 1}
	if trimmed == "1" {
		return u, nil
	}

	runes := []rune(trimmed)
	invert := false
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ' ' || r == '*' || r == '·':
			i++
			continue
		case r == '/':
			invert = true
			i++
			continue
		}

		start := i
		for i < len(runes) && (unicode.IsLetter(runes[i]) || runes[i] == 'µ') {
			i++
		}
		symbol := string(runes[start:i])
		if symbol == "" {
			return Unit{}, htmerrors.Newf(htmerrors.ErrorTypeUnit, "unexpected %q in unit %q", string(r), expr)
		}
		base, ok := symbols[symbol]
		if !ok {
			if symbol == "degC" || symbol == "C" {
				return Unit{}, htmerrors.Newf(htmerrors.ErrorTypeUnit,
					"%q is an offset scale; use a TemperatureScale for temperatures", symbol)
			}
			return Unit{}, htmerrors.Newf(htmerrors.ErrorTypeUnit, "unknown unit symbol %q in %q", symbol, expr)
		}

		exp, next, err := parseExponent(runes, i)
		if err != nil {
			return Unit{}, htmerrors.Wrap(err, htmerrors.ErrorTypeUnit, fmt.Sprintf("bad exponent in unit %q", expr))
		}
		i = next
		if invert {
			exp = -exp
			invert = false
		}

		u.Factor *= math.Pow(base.factor, exp)
		u.Dim = u.Dim.Add(base.dim.Scale(exp))
	}
	if invert {
		return Unit{}, htmerrors.Newf(htmerrors.ErrorTypeUnit, "dangling '/' in unit %q", expr)
	}

	return u, nil
}

// parseExponent reads an optional exponent starting at runes[i]:
// "^2", "2", "-1", "^-1/2", "-0.5". Returns 1 when none is present.
func parseExponent(runes []rune, i int) (float64, int, error) {
	if i < len(runes) && runes[i] == '^' {
		i++
	}
	start := i
	if i < len(runes) && (runes[i] == '-' || runes[i] == '+') {
		i++
	}
	if i >= len(runes) || !unicode.IsDigit(runes[i]) {
		if i != start {
			return 0, i, fmt.Errorf("sign without digits")
		}
		return 1, i, nil
	}
	for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
		i++
	}
	num, err := strconv.ParseFloat(string(runes[start:i]), 64)
	if err != nil {
		return 0, i, err
	}
	if i+1 < len(runes) && runes[i] == '/' && unicode.IsDigit(runes[i+1]) {
		i++
		denStart := i
		for i < len(runes) && unicode.IsDigit(runes[i]) {
			i++
		}
		den, err := strconv.ParseFloat(string(runes[denStart:i]), 64)
		if err != nil || den == 0 {
			return 0, i, fmt.Errorf("bad denominator %q", string(runes[denStart:i]))
		}
		num /= den
	}
	return num, i, nil
}

// MustParse is Parse that panics on error. Intended for package-level constants.
func MustParse(expr string) Unit {
	u, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return u
}

// Compatible reports whether u and o share a dimension.
func (u Unit) Compatible(o Unit) bool {
	return u.Dim.Equal(o.Dim)
}

// Counted returns u with the amount exponent of target when u has no amount
// at all, so a bare "m^-3" reads as particles per cubic metre. Units that
// already carry an amount are returned unchanged.
func (u Unit) Counted(target Unit) Unit {
	if math.Abs(u.Dim[amountAxis]) < 1e-9 {
		u.Dim[amountAxis] = target.Dim[amountAxis]
	}
	return u
}

// Quantity is a value tagged with a unit expression.
type Quantity struct {
	Value float64 `yaml:"value" json:"value"`
	Unit  string  `yaml:"unit" json:"unit"`
}

// Q builds a Quantity.
func Q(value float64, unit string) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// IsZero reports whether the quantity was left unset.
func (q Quantity) IsZero() bool {
	return q.Unit == "" && q.Value == 0
}

// String renders the quantity as "value unit".
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit
}

// SI returns the value in SI base units together with its dimension.
func (q Quantity) SI() (float64, Dimension, error) {
	u, err := Parse(q.Unit)
	if err != nil {
		return 0, Dimension{}, err
	}
	return q.Value * u.Factor, u.Dim, nil
}

// Convert expresses q in the target unit. It fails with a unit error when
// the dimensions differ.
func Convert(q Quantity, target string) (float64, error) {
	from, err := Parse(q.Unit)
	if err != nil {
		return 0, err
	}
	to, err := Parse(target)
	if err != nil {
		return 0, err
	}
	if !from.Compatible(to) {
		return 0, htmerrors.Newf(htmerrors.ErrorTypeUnit, "cannot convert %q (%s) to %q (%s)",
			q.Unit, from.Dim, target, to.Dim).
			WithDetail("value", q.Value)
	}
	return q.Value * from.Factor / to.Factor, nil
}

// ConvertCount is Convert with a particle count assumed for a source unit
// that carries no amount (see Unit.Counted). An amount that is present must
// match the target's.
func ConvertCount(q Quantity, target string) (float64, error) {
	from, err := Parse(q.Unit)
	if err != nil {
		return 0, err
	}
	to, err := Parse(target)
	if err != nil {
		return 0, err
	}
	if !from.Counted(to).Compatible(to) {
		return 0, htmerrors.Newf(htmerrors.ErrorTypeUnit, "cannot convert %q (%s) to %q (%s)",
			q.Unit, from.Dim, target, to.Dim).
			WithDetail("value", q.Value)
	}
	return q.Value * from.Factor / to.Factor, nil
}

// electronvolts may stand alone as an energy per particle.
var electronvolts = map[string]bool{"eV": true, "meV": true, "keV": true}

// ActivationEnergy converts q to eV per particle. Energies per amount
// ("kJ mol^-1", "eV particle^-1") are accepted, as are a bare electronvolt
// unit and a temperature E/k_B in kelvin. Other bare energies such as "kJ"
// are rejected since the amount they refer to is unknown.
func ActivationEnergy(q Quantity) (float64, error) {
	si, dim, err := q.SI()
	if err != nil {
		return 0, err
	}
	switch {
	case dim.Equal(MolarEnergy):
		return si / ElementaryCharge, nil
	case dim.Equal(Energy) && electronvolts[strings.TrimSpace(q.Unit)]:
		return si / ElementaryCharge, nil
	case dim.Equal(Temperature):
		return si * Boltzmann, nil
	default:
		return 0, htmerrors.Newf(htmerrors.ErrorTypeUnit, "%q (%s) is not an activation energy unit", q.Unit, dim).
			WithDetail("value", q.Value)
	}
}
