package materials

import (
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Tungsten is the plasma-facing armour material.
var Tungsten = Material{
	Name:        "tungsten",
	Description: "tungsten",
	Records: []Record{
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "frauenfelder_solution_1969",
				PreExp:    units.Q(4.1e-7, "m^2 s^-1"),
				ActEnergy: units.Q(0.39, "eV"),
				Range:     property.Range{Min: 1100, Max: 2400},
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "frauenfelder_solution_1969",
				PreExp:    units.Q(1.87e24, "m^-3 Pa^-1/2"),
				ActEnergy: units.Q(1.04, "eV"),
				Range:     property.Range{Min: 1100, Max: 2400},
			},
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "heinola_diffusion_2010",
				PreExp:    units.Q(5.2e-8, "m^2 s^-1"),
				ActEnergy: units.Q(0.21, "eV"),
				Range:     property.Range{Min: 1500, Max: 2500},
				Note:      "first-principles calculation",
			},
		},
		{
			Kind: property.RecombinationCoeff,
			Spec: property.Spec{
				Isotope:   property.Deuterium,
				Source:    "anderl_deuterium_1992",
				PreExp:    units.Q(3.2e-15, "m^4 s^-1"),
				ActEnergy: units.Q(1.16, "eV"),
				Range:     property.Range{Min: 610, Max: 823},
			},
		},
	},
}
