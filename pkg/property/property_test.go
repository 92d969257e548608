package property

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/units"
)

func abramov(t *testing.T) *Property {
	t.Helper()
	p, err := NewDiffusivity(Spec{
		Material:  "beryllium",
		Isotope:   Deuterium,
		Source:    "abramov_deuterium_1990",
		PreExp:    units.Q(8.0e-9, "m^2 s^-1"),
		ActEnergy: units.Q(35.1, "kJ mol^-1"),
		Range:     Range{Min: 620, Max: 775},
	})
	require.NoError(t, err)
	return p
}

func klepikov(t *testing.T, interp Interpolation) *Property {
	t.Helper()
	p, err := NewSolubility(Spec{
		Material:      "v4cr4ti",
		Isotope:       Hydrogen,
		Source:        "klepikov_hydrogen_2000",
		DataT:         []float64{873, 673, 1073, 773, 973},
		DataY:         []float64{5.65e19, 1.62e20, 2.94e19, 9.84e19, 4.91e19},
		YUnit:         "m-3 Pa-1/2",
		Interpolation: interp,
	})
	require.NoError(t, err)
	return p
}

func TestArrheniusExample(t *testing.T) {
	p := abramov(t)

	v, err := p.Value(700)
	require.NoError(t, err)

	assert.InEpsilon(t, 8.0e-9*math.Exp(-35100/(units.GasConstant*700)), v, 1e-8)
	assert.InEpsilon(t, 8.0e-9*math.Exp(-35100/(8.314*700)), v, 1e-3)
}

func TestFittedMonotonicInInverseTemperature(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		preExp := math.Pow(10, -12+rng.Float64()*30)
		actEnergy := 0.01 + rng.Float64()*2
		p, err := NewDiffusivity(Spec{
			Material:  "tungsten",
			Isotope:   Hydrogen,
			Source:    "random_fit_2000",
			PreExp:    units.Q(preExp, "m^2 s^-1"),
			ActEnergy: units.Q(actEnergy, "eV"),
		})
		require.NoError(t, err)

		t1 := 300 + rng.Float64()*900
		t2 := t1 + 1 + rng.Float64()*100

		// decreasing in 1/T, so increasing in T
		v1, _ := p.Value(t1)
		v2, _ := p.Value(t2)
		assert.Less(t, v1, v2, "P0=%g E=%g T1=%g T2=%g", preExp, actEnergy, t1, t2)
	}
}

func TestFittedDefaults(t *testing.T) {
	p, err := NewRecombinationCoeff(Spec{
		Material:  "beryllium",
		Isotope:   Hydrogen,
		Source:    "dolan_assessment_1994",
		PreExp:    units.Q(1.46e-29, "m^4 s^-1"),
		ActEnergy: units.Q(0.214, "eV particle^-1"),
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultRange, p.Range())
	assert.Equal(t, "dolan", p.Author())
	assert.Equal(t, 1994, p.Year())
	assert.Equal(t, "H Dolan (1994)", p.Label())
	assert.Equal(t, Fitted, p.Mode())
	assert.Equal(t, Key{Source: "dolan_assessment_1994", Isotope: Hydrogen, Kind: RecombinationCoeff}, p.Key())
}

func TestUnitNormalization(t *testing.T) {
	p, err := NewDiffusivity(Spec{
		Material:  "v4cr4ti",
		Isotope:   Tritium,
		Source:    "hashizume_diffusional_2007",
		PreExp:    units.Q(7.50e-4, "cm^2 s^-1"),
		ActEnergy: units.Q(0.13, "eV"),
	})
	require.NoError(t, err)

	fit, ok := p.Fit()
	require.True(t, ok)
	assert.InEpsilon(t, 7.50e-8, fit.PreExp, 1e-12)
	assert.Equal(t, "m^2 s^-1", p.Unit())

	s, err := NewSolubility(Spec{
		Material:  "beryllium",
		Isotope:   Hydrogen,
		Source:    "Shapovalov, V.I., Dukel'skii, Y.M., 1988",
		Author:    "shapovalov",
		Year:      1988,
		PreExp:    units.Q(1.90e-2, "mol m^-3 Pa^-1/2"),
		ActEnergy: units.Q(16.8, "kJ/mol"),
	})
	require.NoError(t, err)
	fit, _ = s.Fit()
	assert.InEpsilon(t, 1.90e-2*units.Avogadro, fit.PreExp, 1e-12)
	assert.Equal(t, Sieverts, s.Law())
	assert.Equal(t, "H Shapovalov (1988)", s.Label())
}

func TestLawInference(t *testing.T) {
	spec := Spec{
		Material:  "lipb",
		Isotope:   Hydrogen,
		Source:    "someone_henry_2001",
		PreExp:    units.Q(1e-3, "mol m^-3 Pa^-1"),
		ActEnergy: units.Q(0.1, "eV"),
	}
	p, err := NewSolubility(spec)
	require.NoError(t, err)
	assert.Equal(t, Henry, p.Law())
	assert.Equal(t, "particle m^-3 Pa^-1", p.Unit())

	spec.Law = Sieverts
	_, err = NewSolubility(spec)
	require.Error(t, err)
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeUnit))
}

func TestIncompatibleUnit(t *testing.T) {
	_, err := NewDiffusivity(Spec{
		Material:  "tungsten",
		Isotope:   Hydrogen,
		Source:    "frauenfelder_solution_1969",
		PreExp:    units.Q(1.87e24, "m^-3 Pa^-1/2"),
		ActEnergy: units.Q(1.04, "eV"),
	})
	require.Error(t, err)
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeUnit))
	assert.True(t, htmerrors.IsFatal(err))

	_, err = NewDiffusivity(Spec{
		Material:  "tungsten",
		Isotope:   Hydrogen,
		Source:    "frauenfelder_solution_1969",
		PreExp:    units.Q(4.1e-7, "m^2 s^-1"),
		ActEnergy: units.Q(0.39, "Pa"),
	})
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeUnit))
}

func TestAmountMistakesAreUnitErrors(t *testing.T) {
	base := Spec{Material: "beryllium", Isotope: Deuterium, Source: "abramov_deuterium_1990"}

	tests := []struct {
		name string
		kind Kind
		pre  units.Quantity
		act  units.Quantity
	}{
		{"diffusivity per mole", Diffusivity, units.Q(8.0e-9, "mol m^2 s^-1"), units.Q(35.1, "kJ mol^-1")},
		{"activation energy without amount", Diffusivity, units.Q(8.0e-9, "m^2 s^-1"), units.Q(35.1, "kJ")},
		{"activation energy in joules", Diffusivity, units.Q(8.0e-9, "m^2 s^-1"), units.Q(5.8e-20, "J")},
		{"solubility squared moles", Solubility, units.Q(1.9e-2, "mol^2 m^-3 Pa^-1/2"), units.Q(16.8, "kJ mol^-1")},
		{"recombination per mole squared", RecombinationCoeff, units.Q(1e-29, "m^4 s^-1 mol^-2"), units.Q(0.2, "eV")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base
			spec.PreExp = tt.pre
			spec.ActEnergy = tt.act
			_, err := New(tt.kind, spec)
			require.Error(t, err)
			assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeUnit), err.Error())
		})
	}
}

func TestConcentrationsCountParticles(t *testing.T) {
	spec := Spec{
		Material:  "tungsten",
		Isotope:   Hydrogen,
		Source:    "frauenfelder_solution_1969",
		PreExp:    units.Q(1.87e24, "m^-3 Pa^-1/2"),
		ActEnergy: units.Q(1.04, "eV"),
	}
	bare, err := NewSolubility(spec)
	require.NoError(t, err)
	assert.Equal(t, "particle m^-3 Pa^-1/2", bare.Unit())

	spec.PreExp = units.Q(1.87e24/units.Avogadro, "mol m^-3 Pa^-1/2")
	molar, err := NewSolubility(spec)
	require.NoError(t, err)

	b, _ := bare.Fit()
	m, _ := molar.Fit()
	assert.InEpsilon(t, b.PreExp, m.PreExp, 1e-12)

	kr, err := NewRecombinationCoeff(Spec{
		Material:  "beryllium",
		Isotope:   Deuterium,
		Source:    "anderl_deuterium_1999",
		PreExp:    units.Q(1.46e-29, "m^4 s^-1"),
		ActEnergy: units.Q(0.214, "eV particle^-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "m^4 s^-1 particle^-1", kr.Unit())
}

func TestConstructionErrors(t *testing.T) {
	base := func() Spec {
		return Spec{
			Material:  "tungsten",
			Isotope:   Hydrogen,
			Source:    "frauenfelder_solution_1969",
			PreExp:    units.Q(4.1e-7, "m^2 s^-1"),
			ActEnergy: units.Q(0.39, "eV"),
		}
	}

	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"both modes", func(s *Spec) {
			s.DataT = []float64{300, 400}
			s.DataY = []float64{1, 2}
			s.YUnit = "m^2 s^-1"
		}},
		{"neither mode", func(s *Spec) {
			s.PreExp = units.Quantity{}
			s.ActEnergy = units.Quantity{}
		}},
		{"only pre_exp", func(s *Spec) { s.ActEnergy = units.Quantity{} }},
		{"missing material", func(s *Spec) { s.Material = " " }},
		{"missing source", func(s *Spec) { s.Source = "" }},
		{"bad isotope", func(s *Spec) { s.Isotope = "X" }},
		{"negative pre_exp", func(s *Spec) { s.PreExp.Value = -1 }},
		{"inverted range", func(s *Spec) { s.Range = Range{Min: 900, Max: 600} }},
		{"non-positive range", func(s *Spec) { s.Range = Range{Min: -1, Max: 600} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base()
			tt.mutate(&spec)
			_, err := NewDiffusivity(spec)
			require.Error(t, err)
			assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeConstruction), "got %v", err)
		})
	}
}

func TestTableConstructionErrors(t *testing.T) {
	base := func() Spec {
		return Spec{
			Material: "v4cr4ti",
			Isotope:  Hydrogen,
			Source:   "klepikov_hydrogen_2000",
			DataT:    []float64{673, 773, 873},
			DataY:    []float64{1.62e20, 9.84e19, 5.65e19},
			YUnit:    "m-3 Pa-1/2",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"length mismatch", func(s *Spec) { s.DataY = s.DataY[:2] }},
		{"single point", func(s *Spec) { s.DataT, s.DataY = s.DataT[:1], s.DataY[:1] }},
		{"missing unit", func(s *Spec) { s.YUnit = "" }},
		{"duplicate temperature", func(s *Spec) { s.DataT[2] = 673 }},
		{"zero temperature", func(s *Spec) { s.DataT[0] = 0 }},
		{"non-positive value in log space", func(s *Spec) { s.DataY[1] = 0 }},
		{"nan value", func(s *Spec) { s.DataY[1] = math.NaN() }},
		{"unknown axis", func(s *Spec) { s.Interpolation.Axis = "cubic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := base()
			tt.mutate(&spec)
			_, err := NewSolubility(spec)
			require.Error(t, err)
			assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeConstruction), "got %v", err)
		})
	}
}

func TestTabulatedRoundTrip(t *testing.T) {
	interps := []Interpolation{
		{},
		{Axis: AxisLinear, Value: ScaleLinear},
		{Axis: AxisLinear, Value: ScaleLog},
		{Axis: AxisInverse, Value: ScaleLinear},
	}

	temps := []float64{673, 773, 873, 973, 1073}
	values := []float64{1.62e20, 9.84e19, 5.65e19, 4.91e19, 2.94e19}

	for _, interp := range interps {
		t.Run(interp.String(), func(t *testing.T) {
			p := klepikov(t, interp)
			for i, temp := range temps {
				v, err := p.Value(temp)
				require.NoError(t, err)
				assert.InEpsilon(t, values[i], v, 1e-6)
			}
		})
	}
}

func TestTabulatedSortedAndRange(t *testing.T) {
	p := klepikov(t, Interpolation{})

	tb, ok := p.Table()
	require.True(t, ok)
	assert.Equal(t, []float64{673, 773, 873, 973, 1073}, tb.T)
	assert.Equal(t, DefaultInterpolation, tb.Interp)
	assert.Equal(t, Range{Min: 673, Max: 1073}, p.Range())

	// the copy does not alias the record
	tb.Y[0] = 0
	v, err := p.Value(673)
	require.NoError(t, err)
	assert.Equal(t, 1.62e20, v)
}

func TestTabulatedInterpolationConventions(t *testing.T) {
	temps := []float64{500, 1000}
	values := []float64{1, 100}

	build := func(interp Interpolation) *Property {
		p, err := NewDiffusivity(Spec{
			Material:      "steel",
			Isotope:       Hydrogen,
			Source:        "table_test_2020",
			DataT:         temps,
			DataY:         values,
			YUnit:         "m^2 s^-1",
			Interpolation: interp,
		})
		require.NoError(t, err)
		return p
	}

	// midpoint in 1/T of 500 K and 1000 K
	tMid := 2 / (1.0/500 + 1.0/1000)

	v, err := build(Interpolation{Axis: AxisInverse, Value: ScaleLog}).Value(tMid)
	require.NoError(t, err)
	assert.InEpsilon(t, 10, v, 1e-9)

	v, err = build(Interpolation{Axis: AxisInverse, Value: ScaleLinear}).Value(tMid)
	require.NoError(t, err)
	assert.InEpsilon(t, 50.5, v, 1e-9)

	v, err = build(Interpolation{Axis: AxisLinear, Value: ScaleLinear}).Value(750)
	require.NoError(t, err)
	assert.InEpsilon(t, 50.5, v, 1e-9)

	v, err = build(Interpolation{Axis: AxisLinear, Value: ScaleLog}).Value(750)
	require.NoError(t, err)
	assert.InEpsilon(t, 10, v, 1e-9)
}

func TestOutOfRangeIsWarning(t *testing.T) {
	p := abramov(t)

	v, err := p.Value(1000)
	require.Error(t, err)
	assert.False(t, math.IsNaN(v))
	assert.InEpsilon(t, 8.0e-9*math.Exp(-35100/(units.GasConstant*1000)), v, 1e-8)

	var w *RangeWarning
	require.True(t, errors.As(err, &w))
	assert.Equal(t, 1000.0, w.T)
	assert.False(t, w.Extrapolated)
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeOutOfRange))
	assert.False(t, htmerrors.IsFatal(err))
}

func TestTabulatedExtrapolation(t *testing.T) {
	p := klepikov(t, Interpolation{})

	v, err := p.Value(1200)
	require.Error(t, err)

	var w *RangeWarning
	require.True(t, errors.As(err, &w))
	assert.True(t, w.Extrapolated)
	assert.Greater(t, v, 0.0)
	assert.Less(t, v, 2.94e19)
}

func TestInvalidTemperature(t *testing.T) {
	p := abramov(t)

	for _, temp := range []float64{0, -5, math.NaN()} {
		v, err := p.Value(temp)
		assert.True(t, math.IsNaN(v))
		assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeData))
	}
}

func TestValuesCollectsWarnings(t *testing.T) {
	p := abramov(t)

	c, err := p.Values([]float64{600, 700, 800})
	require.NoError(t, err)
	assert.Len(t, c.Values, 3)
	assert.Len(t, c.Warnings, 2)

	_, err = p.Values([]float64{700, 0})
	assert.True(t, htmerrors.IsType(err, htmerrors.ErrorTypeData))
}

func TestGrid(t *testing.T) {
	g := Grid(Range{Min: 300, Max: 1200}, 50)
	require.Len(t, g, 50)
	assert.Equal(t, 300.0, g[0])
	assert.Equal(t, 1200.0, g[49])

	assert.Nil(t, Grid(DefaultRange, 0))
	assert.Equal(t, []float64{300}, Grid(DefaultRange, 1))
}

func TestArrheniusFitOfTable(t *testing.T) {
	want := Arrhenius{PreExp: 2e-7, ActEnergy: 0.3}
	temps := []float64{400, 500, 600, 700, 800}
	values := make([]float64, len(temps))
	for i, temp := range temps {
		values[i] = want.Eval(temp)
	}

	p, err := NewDiffusivity(Spec{
		Material: "eurofer_97",
		Isotope:  Hydrogen,
		Source:   "synthetic_table_2022",
		DataT:    temps,
		DataY:    values,
		YUnit:    "m^2 s^-1",
	})
	require.NoError(t, err)

	got, err := p.Arrhenius()
	require.NoError(t, err)
	assert.InEpsilon(t, want.PreExp, got.PreExp, 1e-9)
	assert.InEpsilon(t, want.ActEnergy, got.ActEnergy, 1e-9)

	_, err = FitArrhenius([]float64{500, 500}, []float64{1, 2})
	assert.Error(t, err)
}

func TestTemperatureScaleTables(t *testing.T) {
	p, err := NewDiffusivity(Spec{
		Material: "lipb",
		Isotope:  Hydrogen,
		Source:   "shibuya_isothermal_1987",
		DataT:    []float64{300, 400, 500},
		TScale:   units.Celsius,
		DataY:    []float64{6.6e-6, 7.8e-6, 9.5e-6},
		YUnit:    "cm^2 s^-1",
	})
	require.NoError(t, err)

	assert.InDelta(t, 573.15, p.Range().Min, 1e-9)
	v, err := p.Value(673.15)
	require.NoError(t, err)
	assert.InEpsilon(t, 7.8e-10, v, 1e-9)
}

func TestParseBibKey(t *testing.T) {
	tests := []struct {
		source string
		author string
		year   int
	}{
		{"abramov_deuterium_1990", "abramov", 1990},
		{"Frauenfelder_solution_1969", "frauenfelder", 1969},
		{"montupet-leblond_permeation_2021", "montupet-leblond", 2021},
		{"Shapovalov, V.I., 1988", "", 0},
		{"nokey", "", 0},
		{"a_b_19x0", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			author, year := ParseBibKey(tt.source)
			assert.Equal(t, tt.author, author)
			assert.Equal(t, tt.year, year)
		})
	}
}

func TestLabel(t *testing.T) {
	p, err := NewPermeability(Spec{
		Material:  "lipb",
		Isotope:   Deuterium,
		Source:    "edao_2011",
		Author:    "EDAO",
		PreExp:    units.Q(1e-10, "mol m^-1 s^-1 Pa^-1/2"),
		ActEnergy: units.Q(30, "kJ/mol"),
	})
	require.NoError(t, err)
	assert.Equal(t, "D Edao (2011)", p.Label())

	p, err = NewPermeability(Spec{
		Material:  "lipb",
		Isotope:   Deuterium,
		Source:    "edao_2011",
		Name:      "Edao permeation rig",
		PreExp:    units.Q(1e-10, "mol m^-1 s^-1 Pa^-1/2"),
		ActEnergy: units.Q(30, "kJ/mol"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Edao permeation rig", p.Label())
}

func TestParseHelpers(t *testing.T) {
	iso, err := ParseIsotope("deuterium")
	require.NoError(t, err)
	assert.Equal(t, Deuterium, iso)

	_, err = ParseIsotope("muonium")
	assert.Error(t, err)

	k, err := ParseKind("recombination")
	require.NoError(t, err)
	assert.Equal(t, RecombinationCoeff, k)

	interp, err := ParseInterpolation("linear_log")
	require.NoError(t, err)
	assert.Equal(t, Interpolation{Axis: AxisLinear, Value: ScaleLog}, interp)

	_, err = ParseInterpolation("spline")
	assert.Error(t, err)
}
