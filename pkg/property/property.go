// Package property implements evaluable hydrogen transport property records.
//
// A Property is either fitted (an Arrhenius law P0*exp(-E/(k_B*T))) or
// tabulated (paired temperatures and values digitized from a publication).
// Records are built in one step from a Spec, normalized to the canonical SI
// unit of their Kind, and are immutable afterwards.
//
//	d, err := property.NewDiffusivity(property.Spec{
//	    Material:  "beryllium",
//	    Isotope:   property.Deuterium,
//	    Source:    "abramov_deuterium_1990",
//	    PreExp:    units.Q(8.0e-9, "m^2 s^-1"),
//	    ActEnergy: units.Q(35.1, "kJ mol^-1"),
//	    Range:     property.Range{Min: 620, Max: 775},
//	})
//	v, err := d.Value(700) // err is a *RangeWarning only when 700 K is outside the range
package property

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/units"
)

// DefaultRange is the validity range assumed for fitted records that do not
// declare one.
var DefaultRange = Range{Min: 300, Max: 1200}

// Range is an inclusive temperature interval in kelvin. The zero value means
// "not specified".
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// IsZero reports whether the range was left unset.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains reports whether t lies within the inclusive interval.
func (r Range) Contains(t float64) bool {
	return t >= r.Min && t <= r.Max
}

func (r Range) String() string {
	return "(" + strconv.FormatFloat(r.Min, 'g', -1, 64) + ", " + strconv.FormatFloat(r.Max, 'g', -1, 64) + ") K"
}

func (r Range) validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "range %s is not finite", r)
	}
	if r.Min <= 0 || r.Max <= r.Min {
		return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "range %s must satisfy 0 < min < max", r)
	}
	return nil
}

// Mode tags which payload a record carries.
type Mode int

const (
	Fitted Mode = iota + 1
	Tabulated
)

func (m Mode) String() string {
	switch m {
	case Fitted:
		return "fitted"
	case Tabulated:
		return "tabulated"
	default:
		return "unknown"
	}
}

// Arrhenius holds the parameters of P0*exp(-E/(k_B*T)). PreExp is in the
// canonical unit of the owning kind; ActEnergy is in eV per particle.
type Arrhenius struct {
	PreExp    float64 `json:"pre_exp"`
	ActEnergy float64 `json:"act_energy"`
}

// Eval evaluates the law at t kelvin.
func (a Arrhenius) Eval(t float64) float64 {
	return a.PreExp * math.Exp(-a.ActEnergy/(units.Boltzmann*t))
}

// Spec is the construction input of a Property. Set either PreExp and
// ActEnergy (fitted) or DataT and DataY (tabulated), never both.
type Spec struct {
	Material string
	Isotope  Isotope
	// Source is the citation key, e.g. "abramov_deuterium_1990". Author and
	// Year are derived from it when left empty.
	Source string
	Author string
	Year   int
	Name   string
	Note   string
	Range  Range
	// Law applies to solubility and permeability. Empty means infer it
	// from the supplied unit.
	Law Law

	PreExp    units.Quantity
	ActEnergy units.Quantity

	DataT  []float64
	TScale units.TemperatureScale
	DataY  []float64
	YUnit  string

	Interpolation Interpolation
}

func (s *Spec) fitted() bool {
	return !s.PreExp.IsZero() || !s.ActEnergy.IsZero()
}

func (s *Spec) tabulated() bool {
	return len(s.DataT) > 0 || len(s.DataY) > 0
}

// unit returns the unit the record's values are expressed in.
func (s *Spec) unit() string {
	if s.fitted() {
		return s.PreExp.Unit
	}
	return s.YUnit
}

// Property is an immutable, evaluable transport property record.
type Property struct {
	kind     Kind
	material string
	isotope  Isotope
	source   string
	author   string
	year     int
	name     string
	note     string
	law      Law
	rng      Range
	unit     string

	mode  Mode
	fit   Arrhenius
	table *Table
}

// New validates spec, converts it to the canonical unit of kind, and returns
// the record. Malformed input yields a construction error, an incompatible
// unit a unit error.
func New(kind Kind, spec Spec) (*Property, error) {
	if kind.CanonicalUnit("") == "" {
		return nil, htmerrors.Newf(htmerrors.ErrorTypeConstruction, "unknown property kind %q", kind)
	}
	if err := validateMetadata(&spec); err != nil {
		return nil, annotate(err, kind, &spec)
	}

	p := &Property{
		kind:     kind,
		material: strings.TrimSpace(spec.Material),
		isotope:  spec.Isotope,
		source:   spec.Source,
		author:   spec.Author,
		year:     spec.Year,
		name:     spec.Name,
		note:     spec.Note,
	}
	if p.author == "" || p.year == 0 {
		author, year := ParseBibKey(spec.Source)
		if p.author == "" {
			p.author = author
		}
		if p.year == 0 {
			p.year = year
		}
	}

	law, err := resolveLaw(kind, spec.Law, spec.unit())
	if err != nil {
		return nil, annotate(err, kind, &spec)
	}
	p.law = law
	p.unit = kind.CanonicalUnit(law)

	switch {
	case spec.fitted():
		err = p.buildFitted(&spec)
	default:
		err = p.buildTable(&spec)
	}
	if err != nil {
		return nil, annotate(err, kind, &spec)
	}

	if !spec.Range.IsZero() {
		if err := spec.Range.validate(); err != nil {
			return nil, annotate(err, kind, &spec)
		}
		p.rng = spec.Range
	} else if p.mode == Tabulated {
		p.rng = p.table.Span()
	} else {
		p.rng = DefaultRange
	}

	return p, nil
}

// NewDiffusivity builds a diffusivity record (canonical unit m^2 s^-1).
func NewDiffusivity(spec Spec) (*Property, error) { return New(Diffusivity, spec) }

// NewSolubility builds a solubility record (m^-3 Pa^-1/2 or m^-3 Pa^-1).
func NewSolubility(spec Spec) (*Property, error) { return New(Solubility, spec) }

// NewPermeability builds a permeability record (m^-1 s^-1 Pa^-1/2 or m^-1 s^-1 Pa^-1).
func NewPermeability(spec Spec) (*Property, error) { return New(Permeability, spec) }

// NewRecombinationCoeff builds a recombination coefficient record (m^4 s^-1).
func NewRecombinationCoeff(spec Spec) (*Property, error) { return New(RecombinationCoeff, spec) }

// NewDissociationCoeff builds a dissociation coefficient record (m^-2 s^-1 Pa^-1).
func NewDissociationCoeff(spec Spec) (*Property, error) { return New(DissociationCoeff, spec) }

// MustNew is New that panics on error. Use it only for literal records whose
// failure is a programming error.
func MustNew(kind Kind, spec Spec) *Property {
	p, err := New(kind, spec)
	if err != nil {
		panic(err)
	}
	return p
}

func validateMetadata(spec *Spec) error {
	if strings.TrimSpace(spec.Material) == "" {
		return htmerrors.New(htmerrors.ErrorTypeConstruction, "material is required")
	}
	if !spec.Isotope.Valid() {
		return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "isotope %q must be one of H, D, T", spec.Isotope)
	}
	if strings.TrimSpace(spec.Source) == "" {
		return htmerrors.New(htmerrors.ErrorTypeConstruction, "source is required")
	}

	switch fitted, tabulated := spec.fitted(), spec.tabulated(); {
	case fitted && tabulated:
		return htmerrors.New(htmerrors.ErrorTypeConstruction,
			"both fitted (pre_exp, act_energy) and tabulated (data_T, data_y) parameters given")
	case !fitted && !tabulated:
		return htmerrors.New(htmerrors.ErrorTypeConstruction,
			"either fitted (pre_exp, act_energy) or tabulated (data_T, data_y) parameters are required")
	case fitted && (spec.PreExp.Unit == "" || spec.ActEnergy.Unit == ""):
		return htmerrors.New(htmerrors.ErrorTypeConstruction,
			"fitted records need both pre_exp and act_energy with units")
	case tabulated && spec.YUnit == "":
		return htmerrors.New(htmerrors.ErrorTypeConstruction, "data_y unit is required")
	}
	return nil
}

func (p *Property) buildFitted(spec *Spec) error {
	preExp, err := units.ConvertCount(spec.PreExp, p.unit)
	if err != nil {
		return err
	}
	if math.IsNaN(preExp) || math.IsInf(preExp, 0) || preExp <= 0 {
		return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "pre_exp %v must be positive and finite", spec.PreExp)
	}

	actEnergy, err := units.ActivationEnergy(spec.ActEnergy)
	if err != nil {
		return err
	}
	if math.IsNaN(actEnergy) || math.IsInf(actEnergy, 0) {
		return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "act_energy %v must be finite", spec.ActEnergy)
	}

	p.mode = Fitted
	p.fit = Arrhenius{PreExp: preExp, ActEnergy: actEnergy}
	return nil
}

func (p *Property) buildTable(spec *Spec) error {
	if len(spec.DataT) != len(spec.DataY) {
		return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "data_T and data_y lengths differ (%d != %d)",
			len(spec.DataT), len(spec.DataY))
	}
	if len(spec.DataT) < 2 {
		return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "tabulated records need at least 2 points, got %d",
			len(spec.DataT))
	}
	interp, err := spec.Interpolation.normalize()
	if err != nil {
		return err
	}

	temps, err := spec.TScale.ToKelvinAll(spec.DataT)
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeConstruction, "invalid data_T")
	}

	factor, err := units.ConvertCount(units.Q(1, spec.YUnit), p.unit)
	if err != nil {
		return err
	}

	type point struct{ t, y float64 }
	points := make([]point, len(temps))
	for i, t := range temps {
		y := spec.DataY[i] * factor
		switch {
		case math.IsNaN(t) || math.IsInf(t, 0) || t <= 0:
			return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "data_T[%d] = %g K is not a positive temperature", i, t)
		case math.IsNaN(y) || math.IsInf(y, 0):
			return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "data_y[%d] = %g is not finite", i, spec.DataY[i])
		case interp.Value == ScaleLog && y <= 0:
			return htmerrors.Newf(htmerrors.ErrorTypeConstruction,
				"data_y[%d] = %g must be positive for log interpolation", i, spec.DataY[i])
		}
		points[i] = point{t: t, y: y}
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].t < points[j].t })

	tb := &Table{T: make([]float64, len(points)), Y: make([]float64, len(points)), Interp: interp}
	for i, pt := range points {
		if i > 0 && pt.t == points[i-1].t {
			return htmerrors.Newf(htmerrors.ErrorTypeConstruction, "duplicate temperature %g K in data_T", pt.t)
		}
		tb.T[i] = pt.t
		tb.Y[i] = pt.y
	}

	p.mode = Tabulated
	p.table = tb
	return nil
}

// annotate attaches the identifying fields of the record being built.
func annotate(err error, kind Kind, spec *Spec) error {
	var e *htmerrors.Error
	if !errors.As(err, &e) {
		e = htmerrors.Wrap(err, htmerrors.ErrorTypeConstruction, "invalid property")
	}
	return e.
		WithDetail("kind", string(kind)).
		WithDetail("material", spec.Material).
		WithDetail("source", spec.Source)
}

// Kind returns the physical quantity of the record.
func (p *Property) Kind() Kind { return p.kind }

// Material returns the material tag.
func (p *Property) Material() string { return p.material }

// Isotope returns the diffusing species.
func (p *Property) Isotope() Isotope { return p.isotope }

// Source returns the citation key.
func (p *Property) Source() string { return p.source }

// Author returns the first author as stored (not capitalized).
func (p *Property) Author() string { return p.author }

// Year returns the publication year, or 0 when unknown.
func (p *Property) Year() int { return p.year }

// Name returns the explicit display name, which may be empty.
func (p *Property) Name() string { return p.name }

// Note returns the free-text note.
func (p *Property) Note() string { return p.note }

// Law returns the pressure law of a solubility or permeability, empty otherwise.
func (p *Property) Law() Law { return p.law }

// Range returns the validity range in kelvin.
func (p *Property) Range() Range { return p.rng }

// Unit returns the canonical unit values are expressed in.
func (p *Property) Unit() string { return p.unit }

// Mode reports whether the record is fitted or tabulated.
func (p *Property) Mode() Mode { return p.mode }

// Fit returns the Arrhenius parameters of a fitted record.
func (p *Property) Fit() (Arrhenius, bool) {
	return p.fit, p.mode == Fitted
}

// Table returns a copy of the data of a tabulated record.
func (p *Property) Table() (Table, bool) {
	if p.mode != Tabulated {
		return Table{}, false
	}
	return Table{
		T:      append([]float64(nil), p.table.T...),
		Y:      append([]float64(nil), p.table.Y...),
		Interp: p.table.Interp,
	}, true
}

// Key returns the identity of the record.
func (p *Property) Key() Key {
	return Key{Source: p.source, Isotope: p.isotope, Kind: p.kind}
}

// Key distinguishes records: two records with equal keys describe the same
// published result.
type Key struct {
	Source  string
	Isotope Isotope
	Kind    Kind
}

func (k Key) String() string {
	return string(k.Kind) + "/" + string(k.Isotope) + "/" + k.Source
}
