// Package materials holds the curated property records of each material.
//
// A Material is a list of record declarations. Literal records carry their
// published Arrhenius parameters or short tables directly; digitized records
// reference a table file and are built only when a table source is
// available. LoadAll appends every material to a registry in catalog order.
package materials

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/metrics"
	"github.com/ajitpratap0/htm/pkg/observability"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/tables"
)

// Material is a named group of record declarations.
type Material struct {
	Name        string
	Description string
	Records     []Record
}

// Record declares one property record. Spec.Material is filled in from the
// owning Material.
type Record struct {
	Kind  property.Kind
	Spec  property.Spec
	Table *TableRef
}

// TableRef points a record at a digitized table.
type TableRef struct {
	// Name is the table path inside the table source
	Name   string
	Layout tables.Spec
}

// Digitized reports whether the record needs a table source.
func (r Record) Digitized() bool { return r.Table != nil }

// Build constructs the records of m. Digitized records are skipped when src
// is nil; with a source, a missing or malformed table is fatal.
func (m Material) Build(ctx context.Context, src tables.Source) ([]*property.Property, int, error) {
	props := make([]*property.Property, 0, len(m.Records))
	skipped := 0
	for _, rec := range m.Records {
		spec := rec.Spec
		spec.Material = m.Name

		if rec.Digitized() {
			if src == nil {
				skipped++
				continue
			}
			tb, err := tables.Load(ctx, src, rec.Table.Name, rec.Table.Layout)
			if err != nil {
				return nil, 0, err
			}
			spec = tb.Fill(spec)
		}

		p, err := property.New(rec.Kind, spec)
		if err != nil {
			return nil, 0, err
		}
		props = append(props, p)
	}
	return props, skipped, nil
}

var catalog = []Material{
	Tungsten,
	Beryllium,
	LiPb,
	V4Cr4Ti,
	Eurofer97,
}

// Catalog returns the built-in materials in load order.
func Catalog() []Material {
	return append([]Material(nil), catalog...)
}

// Lookup returns the built-in material called name.
func Lookup(name string) (Material, bool) {
	for _, m := range catalog {
		if m.Name == name {
			return m, true
		}
	}
	return Material{}, false
}

// Options configures LoadAll.
type Options struct {
	// Tables provides digitized tables; nil skips digitized records
	Tables tables.Source
	// Materials restricts loading to the named materials; empty loads all
	Materials []string
	// Workers is the number of materials built concurrently; 0 or 1 builds
	// them one after another
	Workers int
	Logger  *zap.Logger
}

// Result summarizes the loading of one material.
type Result struct {
	Material string
	Records  int
	Skipped  int
	Duration time.Duration
}

// LoadAll builds the selected materials and appends them to reg in catalog
// order, whatever the number of workers. Loading stops at the first fatal
// error; materials before it stay in the registry.
func LoadAll(ctx context.Context, reg *database.Registry, opts Options) ([]Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Component("materials")
	}

	selected, err := selectMaterials(opts.Materials)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(selected))
	for i, b := range buildAll(ctx, selected, opts.Tables, opts.Workers) {
		m := selected[i]
		if b.err != nil {
			log.Error("material failed to load", zap.String("material", m.Name), zap.Error(b.err))
			return results, b.err
		}
		reg.Add(b.props...)

		log.Info("material loaded",
			zap.String("material", m.Name),
			zap.Int("records", len(b.props)),
			zap.Int("skipped", b.skipped),
			zap.Duration("duration", b.duration))
		if b.skipped > 0 {
			log.Debug("digitized records skipped, no table source configured",
				zap.String("material", m.Name), zap.Int("skipped", b.skipped))
		}
		results = append(results, Result{Material: m.Name, Records: len(b.props), Skipped: b.skipped, Duration: b.duration})
	}
	return results, nil
}

type built struct {
	props    []*property.Property
	skipped  int
	duration time.Duration
	err      error
}

// buildAll returns one entry per material, in order, up to and including
// the first failure. Materials after a failure are not started.
func buildAll(ctx context.Context, selected []Material, src tables.Source, workers int) []built {
	out := make([]built, len(selected))
	if workers <= 1 {
		for i, m := range selected {
			out[i] = build(ctx, m, src)
			if out[i].err != nil {
				return out[:i+1]
			}
		}
		return out
	}

	var (
		mu     sync.Mutex
		failed = len(selected)
		wg     sync.WaitGroup
	)
	jobs := make(chan int)
	for w := 0; w < workers && w < len(selected); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				b := build(ctx, selected[i], src)
				mu.Lock()
				out[i] = b
				if b.err != nil && i < failed {
					failed = i
				}
				mu.Unlock()
			}
		}()
	}
	for i := range selected {
		mu.Lock()
		stop := i > failed
		mu.Unlock()
		if stop {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out[:min(failed+1, len(selected))]
}

func build(ctx context.Context, m Material, src tables.Source) (b built) {
	ctx = logger.ContextWithMaterial(ctx, m.Name)
	ctx, span := observability.StartSpan(ctx, "materials.load", attribute.String("material", m.Name))
	defer func() { observability.EndSpan(span, b.err) }()

	timer := metrics.NewTimer(m.Name)
	props, skipped, err := m.Build(ctx, src)
	if err != nil {
		var he *htmerrors.Error
		if errors.As(err, &he) {
			he.WithDetail("material", m.Name)
		}
		return built{err: err}
	}
	span.SetAttributes(attribute.Int("records", len(props)), attribute.Int("skipped", skipped))
	return built{props: props, skipped: skipped, duration: timer.ObserveLoad()}
}

func selectMaterials(names []string) ([]Material, error) {
	if len(names) == 0 {
		return Catalog(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := Lookup(n); !ok {
			return nil, htmerrors.Newf(htmerrors.ErrorTypeNotFound, "unknown material %q", n)
		}
		want[n] = true
	}
	var out []Material
	for _, m := range catalog {
		if want[m.Name] {
			out = append(out, m)
		}
	}
	return out, nil
}
