package materials

import (
	"math"

	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Beryllium is the first-wall material.
var Beryllium = Material{
	Name:        "beryllium",
	Description: "beryllium",
	Records: []Record{
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "Shapovalov, V.I., Dukel'skii, Y.M., 1988. Izv. Akad. Nauk SSR Met. 5, 201-203",
				Author:    "shapovalov",
				Year:      1988,
				PreExp:    units.Q(1.90e-2, "mol m^-3 Pa^-1/2"),
				ActEnergy: units.Q(16.8, "kJ mol^-1"),
				Range:     property.Range{Min: 673, Max: 1473},
				Note:      "couldn't find the original paper so took values from Shimada 2020 review",
			},
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Deuterium,
				Source:    "abramov_deuterium_1990",
				PreExp:    units.Q(8.0e-9, "m^2 s^-1"),
				ActEnergy: units.Q(35.1, "kJ mol^-1"),
				Range:     property.Range{Min: 620, Max: 775},
			},
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope: property.Tritium,
				Source:  "jones_hydrogen_1967",
				PreExp:  units.Q(math.Exp(-6.53), "cm^2 s^-1"),
				// published as E/k_B
				ActEnergy: units.Q(965, "K"),
				Range:     property.Range{Min: 400, Max: 900},
			},
		},
		{
			Kind: property.RecombinationCoeff,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "dolan_assessment_1994",
				PreExp:    units.Q(1.46e-29, "m^4 s^-1"),
				ActEnergy: units.Q(0.214, "eV particle^-1"),
				Note:      "Jones also gives a solubility but the units are weird",
			},
		},
	},
}
