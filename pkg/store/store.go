// Package store persists a record database to SQLite or PostgreSQL.
//
// Records are stored one row each, in canonical SI units with activation
// energies in eV, so that a loaded database evaluates exactly like the one
// that was saved. Tabulated data is kept as JSON arrays. Save replaces the
// previous snapshot in a single transaction.
package store

import (
	"context"
	"strings"

	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/json"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

// Store saves and loads a database snapshot.
type Store interface {
	// Save replaces the stored records with db, preserving its order.
	Save(ctx context.Context, db database.Database) error
	// Load rebuilds the stored records.
	Load(ctx context.Context) (database.Database, error)
	Close() error
}

// Open connects to the store selected by driver ("sqlite" or "postgres").
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "":
		return NewSQLiteStore(ctx, dsn)
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, htmerrors.Newf(htmerrors.ErrorTypeConfig, "unknown store driver %q", driver)
	}
}

const createTable = `CREATE TABLE IF NOT EXISTS htm_records (
	position      INTEGER PRIMARY KEY,
	material      TEXT NOT NULL,
	kind          TEXT NOT NULL,
	isotope       TEXT NOT NULL,
	source        TEXT NOT NULL,
	author        TEXT NOT NULL DEFAULT '',
	year          INTEGER NOT NULL DEFAULT 0,
	name          TEXT NOT NULL DEFAULT '',
	note          TEXT NOT NULL DEFAULT '',
	law           TEXT NOT NULL DEFAULT '',
	unit          TEXT NOT NULL,
	range_min     DOUBLE PRECISION NOT NULL,
	range_max     DOUBLE PRECISION NOT NULL,
	mode          TEXT NOT NULL,
	pre_exp       DOUBLE PRECISION NOT NULL DEFAULT 0,
	act_energy    DOUBLE PRECISION NOT NULL DEFAULT 0,
	data_t        TEXT NOT NULL DEFAULT '',
	data_y        TEXT NOT NULL DEFAULT '',
	interpolation TEXT NOT NULL DEFAULT ''
)`

const deleteRecords = `DELETE FROM htm_records`

const selectRecords = `SELECT position, material, kind, isotope, source, author, year, name, note,
	law, unit, range_min, range_max, mode, pre_exp, act_energy, data_t, data_y, interpolation
	FROM htm_records ORDER BY position`

// insertRecords returns the INSERT statement using placeholder(i) for the
// i-th (1-based) argument.
func insertRecords(placeholder func(int) string) string {
	const cols = "position, material, kind, isotope, source, author, year, name, note, " +
		"law, unit, range_min, range_max, mode, pre_exp, act_energy, data_t, data_y, interpolation"
	ph := make([]string, 19)
	for i := range ph {
		ph[i] = placeholder(i + 1)
	}
	return "INSERT INTO htm_records (" + cols + ") VALUES (" + strings.Join(ph, ", ") + ")"
}

// row is the flattened form of a record.
type row struct {
	Position      int
	Material      string
	Kind          string
	Isotope       string
	Source        string
	Author        string
	Year          int
	Name          string
	Note          string
	Law           string
	Unit          string
	RangeMin      float64
	RangeMax      float64
	Mode          string
	PreExp        float64
	ActEnergy     float64
	DataT         string
	DataY         string
	Interpolation string
}

func (r *row) args() []interface{} {
	return []interface{}{
		r.Position, r.Material, r.Kind, r.Isotope, r.Source, r.Author, r.Year, r.Name, r.Note,
		r.Law, r.Unit, r.RangeMin, r.RangeMax, r.Mode, r.PreExp, r.ActEnergy, r.DataT, r.DataY, r.Interpolation,
	}
}

func (r *row) dest() []interface{} {
	return []interface{}{
		&r.Position, &r.Material, &r.Kind, &r.Isotope, &r.Source, &r.Author, &r.Year, &r.Name, &r.Note,
		&r.Law, &r.Unit, &r.RangeMin, &r.RangeMax, &r.Mode, &r.PreExp, &r.ActEnergy, &r.DataT, &r.DataY, &r.Interpolation,
	}
}

func rowOf(i int, p *property.Property) (row, error) {
	rng := p.Range()
	r := row{
		Position: i,
		Material: p.Material(),
		Kind:     string(p.Kind()),
		Isotope:  string(p.Isotope()),
		Source:   p.Source(),
		Author:   p.Author(),
		Year:     p.Year(),
		Name:     p.Name(),
		Note:     p.Note(),
		Law:      string(p.Law()),
		Unit:     p.Unit(),
		RangeMin: rng.Min,
		RangeMax: rng.Max,
		Mode:     p.Mode().String(),
	}
	if fit, ok := p.Fit(); ok {
		r.PreExp, r.ActEnergy = fit.PreExp, fit.ActEnergy
		return r, nil
	}

	tb, _ := p.Table()
	t, err := json.Marshal(tb.T)
	if err != nil {
		return row{}, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to encode temperatures")
	}
	y, err := json.Marshal(tb.Y)
	if err != nil {
		return row{}, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to encode values")
	}
	r.DataT, r.DataY = string(t), string(y)
	r.Interpolation = tb.Interp.String()
	return r, nil
}

func (r *row) property() (*property.Property, error) {
	law, err := property.ParseLaw(r.Law)
	if err != nil {
		return nil, err
	}
	spec := property.Spec{
		Material: r.Material,
		Isotope:  property.Isotope(r.Isotope),
		Source:   r.Source,
		Author:   r.Author,
		Year:     r.Year,
		Name:     r.Name,
		Note:     r.Note,
		Law:      law,
		Range:    property.Range{Min: r.RangeMin, Max: r.RangeMax},
	}

	switch r.Mode {
	case property.Fitted.String():
		spec.PreExp = units.Q(r.PreExp, r.Unit)
		spec.ActEnergy = units.Q(r.ActEnergy, "eV")
	case property.Tabulated.String():
		if err := json.Unmarshal([]byte(r.DataT), &spec.DataT); err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "corrupt stored temperatures")
		}
		if err := json.Unmarshal([]byte(r.DataY), &spec.DataY); err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "corrupt stored values")
		}
		spec.YUnit = r.Unit
		if spec.Interpolation, err = property.ParseInterpolation(r.Interpolation); err != nil {
			return nil, err
		}
	default:
		return nil, htmerrors.Newf(htmerrors.ErrorTypeStorage, "unknown stored mode %q", r.Mode)
	}
	return property.New(property.Kind(r.Kind), spec)
}

func rowsOf(db database.Database) ([]row, error) {
	rows := make([]row, 0, db.Len())
	for i, p := range db.All() {
		r, err := rowOf(i, p)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func rebuild(r *row) (*property.Property, error) {
	p, err := r.property()
	if err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to rebuild stored record").
			WithDetail("position", r.Position).
			WithDetail("source", r.Source)
	}
	return p, nil
}
