package database

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/htm/pkg/metrics"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/units"
)

func fitted(t *testing.T, kind property.Kind, material string, iso property.Isotope, source string) *property.Property {
	t.Helper()
	unit := kind.CanonicalUnit("")
	p, err := property.New(kind, property.Spec{
		Material:  material,
		Isotope:   iso,
		Source:    source,
		PreExp:    units.Q(1e-7, unit),
		ActEnergy: units.Q(0.2, "eV"),
	})
	require.NoError(t, err)
	return p
}

func mixed(t *testing.T) Database {
	t.Helper()
	return New(
		fitted(t, property.Diffusivity, "tungsten", property.Hydrogen, "frauenfelder_solution_1969"),
		fitted(t, property.Diffusivity, "beryllium", property.Deuterium, "abramov_deuterium_1990"),
		fitted(t, property.Solubility, "tungsten", property.Hydrogen, "frauenfelder_solution_1969"),
		fitted(t, property.Diffusivity, "tungsten", property.Hydrogen, "heinola_diffusion_2010"),
		fitted(t, property.RecombinationCoeff, "beryllium", property.Hydrogen, "dolan_assessment_1994"),
	)
}

func TestFilterMaterialPreservesOrder(t *testing.T) {
	db := mixed(t)

	got := db.Filter(Criteria{Material: []string{"tungsten"}})

	require.Equal(t, 3, got.Len())
	assert.Same(t, db.At(0), got.At(0))
	assert.Same(t, db.At(2), got.At(1))
	assert.Same(t, db.At(3), got.At(2))
	for _, p := range got.All() {
		assert.Equal(t, "tungsten", p.Material())
	}
}

func TestFilterCriteriaAreANDed(t *testing.T) {
	db := mixed(t)

	got := db.Filter(Criteria{
		Material: []string{"tungsten"},
		Kind:     []property.Kind{property.Diffusivity},
	})
	assert.Equal(t, 2, got.Len())

	got = db.Filter(Criteria{
		Material: []string{"tungsten"},
		Year:     []int{2010},
	})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "heinola", got.At(0).Author())

	got = db.Filter(Criteria{Isotope: []property.Isotope{property.Deuterium, property.Tritium}})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "beryllium", got.At(0).Material())
}

func TestFilterAuthorExactUnlessFolded(t *testing.T) {
	db := mixed(t)

	got := db.Filter(Criteria{Author: []string{"frauenfelder"}})
	assert.Equal(t, 2, got.Len())

	got = db.Filter(Criteria{Author: []string{"Frauenfelder"}})
	assert.True(t, got.IsEmpty())

	got = db.Filter(Criteria{Author: []string{"Frauenfelder"}, FoldAuthor: true})
	assert.Equal(t, 2, got.Len())
}

func TestFilterName(t *testing.T) {
	db := mixed(t)

	got := db.Filter(Criteria{Name: []string{"D Abramov (1990)"}})
	assert.Equal(t, 1, got.Len())

	got = db.Filter(Criteria{Name: []string{"Abramov"}})
	assert.True(t, got.IsEmpty())

	got = db.Filter(Criteria{Name: []string{"Abramov"}, NameMatch: NameSubstring})
	assert.Equal(t, 1, got.Len())
}

func TestFilterExclude(t *testing.T) {
	db := mixed(t)
	got := db.Filter(Criteria{Material: []string{"tungsten"}, Exclude: true})
	require.Equal(t, 2, got.Len())
	assert.Equal(t, []string{"beryllium"}, got.Materials())
}

func TestFilterEmptyIsNotAnError(t *testing.T) {
	db := mixed(t)
	got := db.Filter(Criteria{Material: []string{"eurofer_97"}})
	assert.True(t, got.IsEmpty())
	assert.Empty(t, got.All())
	assert.Empty(t, got.Materials())

	assert.True(t, db.Filter(Criteria{}).Equal(db))
}

func TestUnionAssociativeAndOrdered(t *testing.T) {
	all := mixed(t).All()
	db, a, b := New(all[0], all[1]), New(all[2]), New(all[3], all[4])

	left := db.Union(a.Union(b))
	right := db.Union(a).Union(b)

	assert.True(t, left.Equal(right))
	assert.Equal(t, all, left.All())

	// receivers are untouched
	assert.Equal(t, 2, db.Len())
	assert.Equal(t, 1, a.Len())
}

func TestUnionKeepsDuplicates(t *testing.T) {
	db := mixed(t)
	twice := db.Union(db)
	assert.Equal(t, 2*db.Len(), twice.Len())
}

func TestUnionDoesNotAlias(t *testing.T) {
	all := mixed(t).All()
	base := New(all[0])
	x := base.Append(all[1])
	y := base.Append(all[2])

	assert.Same(t, all[1], x.At(1))
	assert.Same(t, all[2], y.At(1))
}

func TestSetExtraction(t *testing.T) {
	db := mixed(t)
	assert.Equal(t, []string{"beryllium", "tungsten"}, db.Materials())
	assert.Equal(t, []string{"abramov", "dolan", "frauenfelder", "heinola"}, db.Authors())
	assert.Equal(t, []property.Isotope{property.Deuterium, property.Hydrogen}, db.Isotopes())
	assert.Equal(t, []property.Kind{property.Diffusivity, property.RecombinationCoeff, property.Solubility}, db.Kinds())
	assert.Len(t, db.Sources(), 4)
}

func TestRegistryAddAndSnapshot(t *testing.T) {
	reg := NewRegistry(WithLogger(zap.NewNop()))
	all := mixed(t).All()

	reg.Add(all[:2]...)
	snap := reg.Snapshot()
	reg.Add(all[2:]...)

	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, 5, reg.Len())
	assert.Equal(t, []string{"beryllium", "tungsten"}, reg.Materials())
	assert.Contains(t, reg.Authors(), "dolan")
}

func TestRegistryEmptyFilterIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reg := NewRegistry(WithLogger(zap.New(core)))
	reg.Union(mixed(t))

	empty := metrics.FilterQueries.WithLabelValues(metrics.ResultEmpty)
	before := testutil.ToFloat64(empty)

	got := reg.Filter(Criteria{Material: []string{"lipb"}})

	assert.True(t, got.IsEmpty())
	assert.Equal(t, before+1, testutil.ToFloat64(empty))
	assert.Equal(t, 1, logs.FilterMessage("filter matched no records").Len())
}

func TestRegistryConcurrentAdd(t *testing.T) {
	reg := NewRegistry(WithLogger(zap.NewNop()))

	batches := make([][]*property.Property, 8)
	for i := range batches {
		for j := 0; j < 25; j++ {
			batches[i] = append(batches[i],
				fitted(t, property.Diffusivity, "tungsten", property.Hydrogen, fmt.Sprintf("w%d_run_%d", i, 2000+j)))
		}
	}

	var wg sync.WaitGroup
	for _, batch := range batches {
		wg.Add(1)
		go func(batch []*property.Property) {
			defer wg.Done()
			for _, p := range batch {
				reg.Add(p)
				_ = reg.Filter(Criteria{Material: []string{"tungsten"}}).Len()
			}
		}(batch)
	}
	wg.Wait()

	assert.Equal(t, 200, reg.Len())
}
