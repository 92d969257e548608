package units

// Physical constants (CODATA 2018 exact values where defined).
const (
	Boltzmann        = 8.617333262e-5  // Boltzmann constant (eV/K)
	BoltzmannSI      = 1.380649e-23    // Boltzmann constant (J/K)
	ElementaryCharge = 1.602176634e-19 // Elementary charge (C), also J per eV
	Avogadro         = 6.02214076e23   // Avogadro number (1/mol)
	GasConstant      = 8.314462618     // Molar gas constant (J/mol/K)
	CelsiusOffset    = 273.15          // 0 degC in K
	StandardAtm      = 101325.0        // Standard atmosphere (Pa)
)
