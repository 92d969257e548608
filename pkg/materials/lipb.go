package materials

import (
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/tables"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Lithium-lead constants.
const (
	MolarMassLi = 0.06941   // kg/mol
	MolarMassPb = 0.2072    // kg/mol
	DensityLiPb = 10163.197 // kg/m^3 at 300 K
)

// MolarMassLiPb returns the molar mass in kg/mol of a compound with nbLi
// lithium and nbPb lead atoms.
func MolarMassLiPb(nbLi, nbPb int) float64 {
	return float64(nbPb)*MolarMassPb + float64(nbLi)*MolarMassLi
}

// AtomDensityLiPb returns the number density in m^-3 of the compound.
func AtomDensityLiPb(nbLi, nbPb int) float64 {
	return DensityLiPb * units.Avogadro / MolarMassLiPb(nbLi, nbPb)
}

var (
	li17pb83 = AtomDensityLiPb(17, 83)
	li17pb1  = AtomDensityLiPb(17, 1)
	li1pb1   = AtomDensityLiPb(1, 1)
)

const atomicSolubility = "m^-3 Pa^-1/2"

// inverseKiloTable is the layout of a digitized Arrhenius plot: 1000/T in
// the first column of a pair, value in the second.
func inverseKiloTable(name string, tCol, skip int, yUnit string) *TableRef {
	return &TableRef{
		Name: name,
		Layout: tables.Spec{
			SkipRows: skip,
			TColumn:  tCol,
			YColumn:  tCol + 1,
			TScale:   units.InverseKilo,
			YUnit:    yUnit,
		},
	}
}

func reiterSolubility(tCol int) *TableRef {
	ref := inverseKiloTable("lipb/reiter_1991/solubility.csv", tCol, 2, atomicSolubility)
	// atomic fraction per sqrt(Pa)
	ref.Layout.YFactor = li17pb1
	ref.Layout.DropNonFinite = true
	return ref
}

// LiPb is the lithium-lead eutectic breeder.
var LiPb = Material{
	Name:        "lipb",
	Description: "lithium-lead eutectic",
	Records: []Record{
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "fauvet_hydrogen_1988",
				Name:      "H Fauvet (1988)",
				PreExp:    units.Q(1.5e-9, "m^2 s^-1"),
				ActEnergy: units.Q(0, "eV particle^-1"),
				Range:     property.Range{Min: 722, Max: 724},
				Note:      "Fauvet gives the value for 723 K only",
			},
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope: property.Hydrogen,
				Source:  "reiter_solubility_1991",
				Name:    "H Reiter (1991)",
				Range:   property.Range{Min: 508, Max: 700},
			},
			Table: inverseKiloTable("lipb/reiter_1991/diffusivity.csv", 2, 2, "m^2 s^-1"),
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope: property.Deuterium,
				Source:  "reiter_solubility_1991",
				Name:    "D Reiter (1991)",
				Range:   property.Range{Min: 508, Max: 700},
			},
			Table: inverseKiloTable("lipb/reiter_1991/diffusivity.csv", 0, 2, "m^2 s^-1"),
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope: property.Tritium,
				Source:  "shibuya_isothermal_1987",
				Name:    "T Shibuya (1987)",
				DataT:   []float64{300, 400, 500},
				TScale:  units.Celsius,
				DataY:   []float64{6.6e-6, 7.8e-6, 9.5e-6},
				YUnit:   "cm^2 s^-1",
			},
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Tritium,
				Source:    "terai_diffusion_1992",
				Name:      "T Terai (1987)",
				PreExp:    units.Q(2.50e-7, "m^2 s^-1"),
				ActEnergy: units.Q(27000, "J mol^-1"),
				Range:     property.Range{Min: 573, Max: 973},
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Deuterium,
				Source:    "wu_solubility_1983",
				Name:      "D Wu (1983)",
				PreExp:    units.Q(6.33e-7*li17pb83, "particle m^-3 Pa^-1/2"),
				ActEnergy: units.Q(0, "eV particle^-1"),
				Range:     property.Range{Min: 850, Max: 1040},
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "chan_thermodynamic_1984",
				Name:      "H Chan (1984)",
				PreExp:    units.Q(4.7e-7*li17pb1, "particle m^-3 Pa^-1/2"),
				ActEnergy: units.Q(9000, "J mol^-1"),
				Range:     property.Range{Min: 573, Max: 773},
				Note:      "extrapolated to Pb-17Li",
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "katsuta_hydrogen_1985",
				Name:      "H Katsuta (1985)",
				PreExp:    units.Q(li17pb83/2.9e3, "particle m^-3 atm^-1/2"),
				ActEnergy: units.Q(0, "eV particle^-1"),
				Range:     property.Range{Min: 573, Max: 723},
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "fauvet_hydrogen_1988",
				Name:      "H Fauvet (1988)",
				PreExp:    units.Q(2.7e-8*li17pb83, "particle m^-3 Pa^-1/2"),
				ActEnergy: units.Q(0, "eV particle^-1"),
				Range:     property.Range{Min: 722, Max: 724},
				Note:      "Fauvet gives the value for 723 K only",
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope: property.Hydrogen,
				Source:  "schumacher_hydrogen_1990",
				Name:    "H Schumacher (1990)",
				Note: "in the review of E.Mas de les Valls there's a mistake in the conversion and " +
					"the activation energy of solubility should be positive. " +
					"We decided to refit Schumacher's data",
			},
			Table: &TableRef{
				Name: "lipb/schumacher_1990/solubility.csv",
				Layout: tables.Spec{
					TScale: units.InverseKilo,
					// digitized as ln(Ks/sqrt(bar)), Ks the Sieverts constant
					YTransform: tables.ExpNeg,
					YFactor:    li1pb1,
					YUnit:      "m^-3 bar^-1/2",
				},
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope: property.Hydrogen,
				Source:  "reiter_solubility_1991",
				Name:    "H Reiter (1991)",
				Range:   property.Range{Min: 508, Max: 700},
			},
			Table: reiterSolubility(0),
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope: property.Deuterium,
				Source:  "reiter_solubility_1991",
				Name:    "D Reiter (1991)",
				Range:   property.Range{Min: 508, Max: 700},
			},
			Table: reiterSolubility(2),
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Tritium,
				Source:    "reiter_solubility_1991",
				Name:      "T Reiter (1991)",
				PreExp:    units.Q(2.32e-8*li17pb1, "particle m^-3 Pa^-1/2"),
				ActEnergy: units.Q(1350, "J mol^-1"),
				Range:     property.Range{Min: 508, Max: 700},
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope: property.Hydrogen,
				Source:  "aiello_determination_2006",
				Name:    "H Aiello (2006)",
				Range:   property.Range{Min: 600, Max: 900},
			},
			Table: inverseKiloTable("lipb/aiello_2006/solubility_data.csv", 0, 0, "mol m^-3 Pa^-1/2"),
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "alberro_experimental_2015",
				Name:      "H Alberro (2015)",
				PreExp:    units.Q(8.64e-3, "mol m^-3 Pa^-1/2"),
				ActEnergy: units.Q(9000, "J mol^-1"),
				Range:     property.Range{Min: 523, Max: 922},
			},
		},
		// TODO: refit the Edao permeation data from the digitized curves
		// instead of using the published fit.
		edao(property.Permeability, property.Hydrogen, units.Q(1.20e-9, "mol s^-1 m^-1 Pa^-1/2"), units.Q(20.0, "kJ mol^-1")),
		edao(property.Permeability, property.Deuterium, units.Q(1.30e-9, "mol s^-1 m^-1 Pa^-1/2"), units.Q(16.7, "kJ mol^-1")),
		edao(property.Diffusivity, property.Hydrogen, units.Q(8.18e-8, "m^2 s^-1"), units.Q(15.8, "kJ mol^-1")),
		edao(property.Diffusivity, property.Deuterium, units.Q(5.73e-8, "m^2 s^-1"), units.Q(13.6, "kJ mol^-1")),
		edao(property.Solubility, property.Hydrogen, units.Q(2.73e-7*li17pb83, "particle m^-3 Pa^-1/2"), units.Q(4.18, "kJ mol^-1")),
		edao(property.Solubility, property.Deuterium, units.Q(4.21e-7*li17pb83, "particle m^-3 Pa^-1/2"), units.Q(3.10, "kJ mol^-1")),
	},
}

func edao(kind property.Kind, iso property.Isotope, preExp, actEnergy units.Quantity) Record {
	return Record{
		Kind: kind,
		Spec: property.Spec{
			Isotope:   iso,
			Source:    "edao_experiments_2011",
			PreExp:    preExp,
			ActEnergy: actEnergy,
			Range:     property.Range{Min: 573, Max: 873},
			Note:      "Li17Pb83",
		},
	}
}
