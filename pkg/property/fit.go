package property

import (
	"math"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Arrhenius returns the Arrhenius parameters of the record. Fitted records
// return their own parameters; tabulated records are fitted by least squares
// of ln(y) against 1/T.
func (p *Property) Arrhenius() (Arrhenius, error) {
	switch p.mode {
	case Fitted:
		return p.fit, nil
	case Tabulated:
		return FitArrhenius(p.table.T, p.table.Y)
	default:
		return Arrhenius{}, htmerrors.Newf(htmerrors.ErrorTypeInternal, "record %s has no payload", p.Key())
	}
}

// FitArrhenius fits y = P0*exp(-E/(k_B*T)) to the points. All values must be
// positive and at least two distinct temperatures are required.
func FitArrhenius(temps, values []float64) (Arrhenius, error) {
	if len(temps) != len(values) {
		return Arrhenius{}, htmerrors.Newf(htmerrors.ErrorTypeData, "fit input lengths differ (%d != %d)",
			len(temps), len(values))
	}
	if len(temps) < 2 {
		return Arrhenius{}, htmerrors.New(htmerrors.ErrorTypeData, "fit needs at least 2 points")
	}

	distinct := false
	for _, t := range temps[1:] {
		if t != temps[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return Arrhenius{}, htmerrors.New(htmerrors.ErrorTypeData, "fit needs at least 2 distinct temperatures")
	}

	n := float64(len(temps))
	var sx, sy, sxx, sxy float64
	for i, t := range temps {
		if t <= 0 || values[i] <= 0 {
			return Arrhenius{}, htmerrors.Newf(htmerrors.ErrorTypeData,
				"point %d (T=%g, y=%g) cannot be fitted in log space", i, t, values[i])
		}
		x := 1 / t
		y := math.Log(values[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}

	slope := (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept := (sy - slope*sx) / n

	return Arrhenius{
		PreExp:    math.Exp(intercept),
		ActEnergy: -slope * units.Boltzmann,
	}, nil
}
