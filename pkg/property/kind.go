package property

import (
	"strings"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Kind identifies the physical quantity a record describes.
type Kind string

const (
	Diffusivity        Kind = "diffusivity"
	Solubility         Kind = "solubility"
	Permeability       Kind = "permeability"
	RecombinationCoeff Kind = "recombination_coeff"
	DissociationCoeff  Kind = "dissociation_coeff"
)

// Kinds lists every supported kind in display order.
func Kinds() []Kind {
	return []Kind{Diffusivity, Solubility, Permeability, RecombinationCoeff, DissociationCoeff}
}

// ParseKind accepts the canonical names and a few short aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diffusivity", "d":
		return Diffusivity, nil
	case "solubility", "s":
		return Solubility, nil
	case "permeability", "p":
		return Permeability, nil
	case "recombination_coeff", "recombination", "kr":
		return RecombinationCoeff, nil
	case "dissociation_coeff", "dissociation", "kd":
		return DissociationCoeff, nil
	default:
		return "", htmerrors.Newf(htmerrors.ErrorTypeConstruction, "unknown property kind %q", s)
	}
}

// usesLaw reports whether the canonical unit of k depends on the
// pressure law.
func (k Kind) usesLaw() bool {
	return k == Solubility || k == Permeability
}

// CanonicalUnit returns the unit records of this kind are stored in. The law
// is ignored for kinds that do not depend on one. Concentrations are counted
// in particles; a unit given without any amount is read the same way.
func (k Kind) CanonicalUnit(law Law) string {
	if law == "" {
		law = Sieverts
	}
	switch k {
	case Diffusivity:
		return "m^2 s^-1"
	case Solubility:
		if law == Henry {
			return "particle m^-3 Pa^-1"
		}
		return "particle m^-3 Pa^-1/2"
	case Permeability:
		if law == Henry {
			return "particle m^-1 s^-1 Pa^-1"
		}
		return "particle m^-1 s^-1 Pa^-1/2"
	case RecombinationCoeff:
		return "m^4 s^-1 particle^-1"
	case DissociationCoeff:
		return "particle m^-2 s^-1 Pa^-1"
	default:
		return ""
	}
}

// Isotope is the diffusing hydrogen species.
type Isotope string

const (
	Hydrogen  Isotope = "H"
	Deuterium Isotope = "D"
	Tritium   Isotope = "T"
)

// ParseIsotope accepts symbols in either case and the full names.
func ParseIsotope(s string) (Isotope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "hydrogen", "protium":
		return Hydrogen, nil
	case "d", "deuterium":
		return Deuterium, nil
	case "t", "tritium":
		return Tritium, nil
	default:
		return "", htmerrors.Newf(htmerrors.ErrorTypeConstruction, "unknown isotope %q", s)
	}
}

// Valid reports whether i is one of H, D or T.
func (i Isotope) Valid() bool {
	return i == Hydrogen || i == Deuterium || i == Tritium
}

// Law is the pressure dependence of a solubility or permeability.
type Law string

const (
	// Sieverts is dissolution as atoms, proportional to sqrt(p)
	Sieverts Law = "sieverts"
	// Henry is dissolution as molecules, proportional to p
	Henry Law = "henry"
)

// ParseLaw parses a law name. The empty string means "infer from the unit".
func ParseLaw(s string) (Law, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "sieverts", "sievert":
		return Sieverts, nil
	case "henry":
		return Henry, nil
	default:
		return "", htmerrors.Newf(htmerrors.ErrorTypeConstruction, "unknown law %q", s)
	}
}

// resolveLaw picks the law whose canonical unit is compatible with unit.
// A law given explicitly must agree with the unit.
func resolveLaw(kind Kind, law Law, unit string) (Law, error) {
	if !kind.usesLaw() {
		return "", nil
	}

	u, err := units.Parse(unit)
	if err != nil {
		return "", err
	}

	candidates := []Law{Sieverts, Henry}
	if law != "" {
		candidates = []Law{law}
	}
	for _, l := range candidates {
		canon := units.MustParse(kind.CanonicalUnit(l))
		if u.Counted(canon).Compatible(canon) {
			return l, nil
		}
	}

	if law != "" {
		return "", htmerrors.Newf(htmerrors.ErrorTypeUnit, "unit %q is not a %s %s unit (want %s)",
			unit, law, kind, kind.CanonicalUnit(law))
	}
	return "", htmerrors.Newf(htmerrors.ErrorTypeUnit, "unit %q is not a %s unit (want %s or %s)",
		unit, kind, kind.CanonicalUnit(Sieverts), kind.CanonicalUnit(Henry))
}
