package units

import (
	"math"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// TemperatureScale describes how a temperature column or value is expressed.
// Digitized Arrhenius plots are usually reported as 1000/T.
type TemperatureScale string

const (
	// Kelvin is absolute temperature in K
	Kelvin TemperatureScale = "K"
	// Celsius is temperature in degC
	Celsius TemperatureScale = "degC"
	// InverseKilo is 1000/T with T in K
	InverseKilo TemperatureScale = "1000/K"
	// Inverse is 1/T with T in K
	Inverse TemperatureScale = "1/K"
)

// ParseTemperatureScale accepts the canonical names plus a few aliases.
func ParseTemperatureScale(s string) (TemperatureScale, error) {
	switch s {
	case "", "K", "kelvin":
		return Kelvin, nil
	case "degC", "C", "celsius":
		return Celsius, nil
	case "1000/K", "1000/T", "inverse_kilo":
		return InverseKilo, nil
	case "1/K", "1/T", "inverse":
		return Inverse, nil
	default:
		return "", htmerrors.Newf(htmerrors.ErrorTypeUnit, "unknown temperature scale %q", s)
	}
}

// ToKelvin converts v expressed in scale s to kelvin.
func (s TemperatureScale) ToKelvin(v float64) (float64, error) {
	var k float64
	switch s {
	case Kelvin, "":
		k = v
	case Celsius:
		k = v + CelsiusOffset
	case InverseKilo:
		if v <= 0 {
			return math.NaN(), htmerrors.Newf(htmerrors.ErrorTypeData, "non-positive inverse temperature %g", v)
		}
		k = 1000 / v
	case Inverse:
		if v <= 0 {
			return math.NaN(), htmerrors.Newf(htmerrors.ErrorTypeData, "non-positive inverse temperature %g", v)
		}
		k = 1 / v
	default:
		return math.NaN(), htmerrors.Newf(htmerrors.ErrorTypeUnit, "unknown temperature scale %q", string(s))
	}
	return k, nil
}

// ToKelvinAll converts every value, stopping at the first error.
func (s TemperatureScale) ToKelvinAll(values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		k, err := s.ToKelvin(v)
		if err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeData, "temperature conversion failed").
				WithDetail("index", i)
		}
		out[i] = k
	}
	return out, nil
}
