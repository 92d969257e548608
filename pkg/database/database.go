// Package database holds ordered collections of property records.
//
// Database is an immutable value: Union and Filter return new databases and
// never modify their receiver. Registry is the shared, mutex-guarded
// collection material loaders append to.
package database

import (
	"sort"
	"strings"

	"github.com/ajitpratap0/htm/pkg/property"
)

// Database is an ordered sequence of records. The zero value is empty and
// ready to use. Duplicates are kept.
type Database struct {
	props []*property.Property
}

// New returns a database holding props in order.
func New(props ...*property.Property) Database {
	return Database{props: append([]*property.Property(nil), props...)}
}

// Len returns the number of records.
func (db Database) Len() int { return len(db.props) }

// IsEmpty reports whether the database has no records.
func (db Database) IsEmpty() bool { return len(db.props) == 0 }

// At returns the i-th record in insertion order.
func (db Database) At(i int) *property.Property { return db.props[i] }

// All returns the records in insertion order. The slice is a copy.
func (db Database) All() []*property.Property {
	return append([]*property.Property(nil), db.props...)
}

// Union returns db followed by every record of others, in order. Neither db
// nor others is modified.
func (db Database) Union(others ...Database) Database {
	n := len(db.props)
	for _, o := range others {
		n += len(o.props)
	}
	out := make([]*property.Property, 0, n)
	out = append(out, db.props...)
	for _, o := range others {
		out = append(out, o.props...)
	}
	return Database{props: out}
}

// Append returns db followed by props.
func (db Database) Append(props ...*property.Property) Database {
	return db.Union(Database{props: props})
}

// Filter returns the records matching c, in insertion order. An empty result
// is not an error.
func (db Database) Filter(c Criteria) Database {
	m := c.matcher()
	var out []*property.Property
	for _, p := range db.props {
		if m.match(p) != c.Exclude {
			out = append(out, p)
		}
	}
	return Database{props: out}
}

// Equal reports whether both databases hold the same records in the same
// order.
func (db Database) Equal(o Database) bool {
	if len(db.props) != len(o.props) {
		return false
	}
	for i := range db.props {
		if db.props[i] != o.props[i] {
			return false
		}
	}
	return true
}

// Materials returns the distinct material tags, sorted.
func (db Database) Materials() []string {
	return db.distinct(func(p *property.Property) string { return p.Material() })
}

// Authors returns the distinct authors, sorted.
func (db Database) Authors() []string {
	return db.distinct(func(p *property.Property) string { return p.Author() })
}

// Sources returns the distinct citation keys, sorted.
func (db Database) Sources() []string {
	return db.distinct(func(p *property.Property) string { return p.Source() })
}

// Isotopes returns the distinct isotopes, sorted.
func (db Database) Isotopes() []property.Isotope {
	vals := db.distinct(func(p *property.Property) string { return string(p.Isotope()) })
	out := make([]property.Isotope, len(vals))
	for i, v := range vals {
		out[i] = property.Isotope(v)
	}
	return out
}

// Kinds returns the distinct kinds, sorted.
func (db Database) Kinds() []property.Kind {
	vals := db.distinct(func(p *property.Property) string { return string(p.Kind()) })
	out := make([]property.Kind, len(vals))
	for i, v := range vals {
		out[i] = property.Kind(v)
	}
	return out
}

func (db Database) distinct(field func(*property.Property) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range db.props {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// NameMatch selects how Criteria.Name is compared to a record label.
type NameMatch int

const (
	// NameExact requires the label to equal the name
	NameExact NameMatch = iota
	// NameSubstring requires the label to contain the name
	NameSubstring
)

// Criteria selects records. Each non-empty field is a list of accepted
// values (any of them matches); fields are combined with AND. Empty fields
// are ignored, so the zero Criteria matches everything.
type Criteria struct {
	Material []string
	Isotope  []property.Isotope
	// Author is matched exactly, or ignoring case when FoldAuthor is set.
	Author     []string
	FoldAuthor bool
	Source     []string
	Year       []int
	Kind       []property.Kind
	// Name is compared to the record label according to NameMatch.
	Name      []string
	NameMatch NameMatch
	// Exclude inverts the selection: matching records are dropped.
	Exclude bool
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return len(c.Material) == 0 && len(c.Isotope) == 0 && len(c.Author) == 0 &&
		len(c.Source) == 0 && len(c.Year) == 0 && len(c.Kind) == 0 && len(c.Name) == 0
}

type matcher struct {
	material  map[string]struct{}
	isotope   map[property.Isotope]struct{}
	author    map[string]struct{}
	foldAuth  bool
	source    map[string]struct{}
	year      map[int]struct{}
	kind      map[property.Kind]struct{}
	names     []string
	nameMatch NameMatch
}

func set[T comparable](vals []T, norm func(T) T) map[T]struct{} {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[T]struct{}, len(vals))
	for _, v := range vals {
		if norm != nil {
			v = norm(v)
		}
		m[v] = struct{}{}
	}
	return m
}

func (c Criteria) matcher() matcher {
	return matcher{
		material:  set(c.Material, nil),
		isotope:   set(c.Isotope, nil),
		author:    set(c.Author, authorNorm(c.FoldAuthor)),
		foldAuth:  c.FoldAuthor,
		source:    set(c.Source, nil),
		year:      set(c.Year, nil),
		kind:      set(c.Kind, nil),
		names:     c.Name,
		nameMatch: c.NameMatch,
	}
}

func authorNorm(fold bool) func(string) string {
	if fold {
		return strings.ToLower
	}
	return func(s string) string { return s }
}

func has[T comparable](m map[T]struct{}, v T) bool {
	if m == nil {
		return true
	}
	_, ok := m[v]
	return ok
}

func (m matcher) match(p *property.Property) bool {
	if !has(m.material, p.Material()) ||
		!has(m.isotope, p.Isotope()) ||
		!has(m.author, authorNorm(m.foldAuth)(p.Author())) ||
		!has(m.source, p.Source()) ||
		!has(m.year, p.Year()) ||
		!has(m.kind, p.Kind()) {
		return false
	}
	if len(m.names) == 0 {
		return true
	}

	label := p.Label()
	for _, n := range m.names {
		switch m.nameMatch {
		case NameSubstring:
			if strings.Contains(label, n) {
				return true
			}
		default:
			if label == n {
				return true
			}
		}
	}
	return false
}
