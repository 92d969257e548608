package manifest

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/json"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

// FromDatabase converts db to a manifest. Values are written in canonical
// SI units, activation energies in eV and temperatures in kelvin, so a
// digitized record becomes a self-contained tabulated entry.
func FromDatabase(db database.Database) *File {
	f := &File{Properties: make([]Entry, 0, db.Len())}
	for _, p := range db.All() {
		f.Properties = append(f.Properties, entryOf(p))
	}
	return f
}

func entryOf(p *property.Property) Entry {
	r := p.Range()
	e := Entry{
		Kind:     string(p.Kind()),
		Material: p.Material(),
		Isotope:  string(p.Isotope()),
		Source:   p.Source(),
		Author:   p.Author(),
		Year:     p.Year(),
		Name:     p.Name(),
		Note:     p.Note(),
		Range:    &r,
		Law:      string(p.Law()),
	}
	if fit, ok := p.Fit(); ok {
		pre := units.Q(fit.PreExp, p.Unit())
		act := units.Q(fit.ActEnergy, "eV")
		e.PreExp, e.ActEnergy = &pre, &act
		return e
	}
	if tb, ok := p.Table(); ok {
		e.DataT = tb.T
		e.DataY = tb.Y
		e.YUnit = p.Unit()
		e.Interpolation = tb.Interp.String()
	}
	return e
}

// Encode writes db as a manifest in the given format.
func Encode(w io.Writer, db database.Database, format Format) error {
	f := FromDatabase(db)
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to encode JSON manifest")
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write manifest")
		}
		return nil
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to encode YAML manifest")
		}
		if err := enc.Close(); err != nil {
			return htmerrors.Wrap(err, htmerrors.ErrorTypeExport, "failed to write manifest")
		}
		return nil
	}
}
