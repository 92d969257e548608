package materials

import (
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

// V4Cr4Ti is the V-4Cr-4Ti vanadium alloy.
var V4Cr4Ti = Material{
	Name:        "v4cr4ti",
	Description: "vanadium alloy V-4Cr-4Ti",
	Records: []Record{
		{
			Kind: property.Diffusivity,
			Spec: property.Spec{
				Isotope:   property.Tritium,
				Source:    "hashizume_diffusional_2007",
				PreExp:    units.Q(7.50e-4, "cm^2 s^-1"),
				ActEnergy: units.Q(0.13, "eV particle^-1"),
				Range:     property.Range{Min: 373, Max: 573},
				Note:      "there is a conversion mistake for D_0 in Shimada 2020 review",
			},
		},
		{
			Kind: property.Solubility,
			Spec: property.Spec{
				Isotope: property.Hydrogen,
				Source:  "klepikov_hydrogen_2000",
				DataT:   []float64{673, 773, 873, 973, 1073},
				DataY:   []float64{1.62e20, 9.84e19, 5.65e19, 4.91e19, 2.94e19},
				YUnit:   "m^-3 Pa^-1/2",
				Note:    "taken from Table 2",
			},
		},
	},
}
