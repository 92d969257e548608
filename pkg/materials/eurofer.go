package materials

import (
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

const (
	latticeOnly   = "in the paper, only the 3 hottest points are fitted to measure lattice diffusion only"
	molPermeation = "mol m^-1 s^-1 Pa^-1/2"
)

// Eurofer97 is the reduced-activation ferritic-martensitic steel.
var Eurofer97 = Material{
	Name:        "eurofer_97",
	Description: "EUROFER97 steel",
	Records: []Record{
		{
			Kind:  property.Permeability,
			Spec:  property.Spec{Isotope: property.Hydrogen, Source: "aiello_hydrogen_2002", Note: latticeOnly},
			Table: inverseKiloTable("eurofer_97/aiello_2002/permeability.csv", 0, 2, molPermeation),
		},
		{
			Kind:  property.Permeability,
			Spec:  property.Spec{Isotope: property.Deuterium, Source: "aiello_hydrogen_2002", Note: latticeOnly},
			Table: inverseKiloTable("eurofer_97/aiello_2002/permeability.csv", 2, 2, molPermeation),
		},
		{
			Kind:  property.Diffusivity,
			Spec:  property.Spec{Isotope: property.Hydrogen, Source: "aiello_hydrogen_2002", Note: latticeOnly},
			Table: aielloDiffusivity(0),
		},
		{
			Kind:  property.Diffusivity,
			Spec:  property.Spec{Isotope: property.Deuterium, Source: "aiello_hydrogen_2002", Note: latticeOnly},
			Table: aielloDiffusivity(2),
		},
		{
			Kind:  property.Permeability,
			Spec:  property.Spec{Isotope: property.Deuterium, Source: "chen_deuterium_2021", Note: latticeOnly},
			Table: inverseKiloTable("eurofer_97/chen_2021/permeability.csv", 0, 0, "mol m^-1 s^-1 MPa^-1/2"),
		},
		{
			Kind:  property.Diffusivity,
			Spec:  property.Spec{Isotope: property.Deuterium, Source: "chen_deuterium_2021", Note: latticeOnly},
			Table: inverseKiloTable("eurofer_97/chen_2021/diffusivity.csv", 0, 0, "m^2 s^-1"),
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Deuterium,
				Source:    "chen_deuterium_2021",
				PreExp:    units.Q(4.0e2, "mol m^-3 MPa^-1/2"),
				ActEnergy: units.Q(29.2, "kJ mol^-1"),
				Range:     property.Range{Min: 623, Max: 823},
				Note:      latticeOnly,
			},
		},
		{
			Kind:  property.Permeability,
			Spec:  property.Spec{Isotope: property.Hydrogen, Source: "esteban_hydrogen_2007"},
			Table: inverseKiloTable("eurofer_97/esteban_2007/permeability.csv", 0, 0, molPermeation),
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "esteban_hydrogen_2007",
				PreExp:    units.Q(4.57e-7, "m^2 s^-1"),
				ActEnergy: units.Q(22.3, "kJ mol^-1"),
				Range:     property.Range{Min: 376, Max: 724},
				Note:      "The authors also give an effective diffusivity, this is the lattice diffusivity measured at high temperature",
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "esteban_hydrogen_2007",
				PreExp:    units.Q(2.25e-2, "mol m^-3 Pa^-1/2"),
				ActEnergy: units.Q(15.1, "kJ mol^-1"),
				Range:     property.Range{Min: 376, Max: 724},
				Note:      "The authors also give an effective solubility, this is the lattice solubility measured at high temperature",
			},
		},
		{
			Kind:  property.Permeability,
			Spec:  property.Spec{Isotope: property.Hydrogen, Source: "montupet_leblond_permeation_2021"},
			Table: inverseKiloTable("eurofer_97/montupet_leblond_2021/permeability.csv", 0, 0, molPermeation),
		},
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "montupet_leblond_permeation_2021",
				PreExp:    units.Q(2.52e-7, "m^2 s^-1"),
				ActEnergy: units.Q(0.16, "eV particle^-1"),
				Range:     property.Range{Min: 473, Max: 673},
				Note:      "The authors also give an effective diffusivity, this is the lattice diffusivity measured at high temperature",
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope:   property.Hydrogen,
				Source:    "montupet_leblond_permeation_2021",
				PreExp:    units.Q(1.76e-1, "mol m^-3 Pa^-1/2"),
				ActEnergy: units.Q(0.27, "eV particle^-1"),
				Range:     property.Range{Min: 473, Max: 673},
				Note:      "The authors also give an effective solubility, this is the lattice solubility measured at high temperature",
			},
		},
	},
}

// aielloDiffusivity keeps the three hottest points, rows 2 to 4.
func aielloDiffusivity(tCol int) *TableRef {
	ref := inverseKiloTable("eurofer_97/aiello_2002/diffusivity.csv", tCol, 2, "m^2 s^-1")
	ref.Layout.Limit = 3
	return ref
}
