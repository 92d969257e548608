// Package curves samples property records over temperature grids and
// exports the result for plotting, e.g. every tungsten diffusivity as value
// against 1/T.
package curves

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/metrics"
	"github.com/ajitpratap0/htm/pkg/observability"
	"github.com/ajitpratap0/htm/pkg/property"
)

// DefaultPoints is the grid size used when Options.Points is zero.
const DefaultPoints = 50

// Point is one evaluation.
type Point struct {
	T     float64 `json:"t"`
	InvT  float64 `json:"inv_t"`
	Value float64 `json:"value"`
	// InRange is false for evaluations outside the record's validity range
	InRange bool `json:"in_range"`
}

// Curve is a record evaluated over a grid, in its canonical unit.
type Curve struct {
	Label    string           `json:"label"`
	Material string           `json:"material"`
	Kind     property.Kind    `json:"kind"`
	Isotope  property.Isotope `json:"isotope"`
	Source   string           `json:"source"`
	Unit     string           `json:"unit"`
	Points   []Point          `json:"points"`
	// Warnings counts out-of-range evaluations
	Warnings int `json:"warnings"`
}

// Options configures Sample.
type Options struct {
	// Points per curve; zero means DefaultPoints
	Points int
	// Range overrides every record's own range when set
	Range  property.Range
	Logger *zap.Logger
}

// Sample evaluates every record of db in order. Range warnings are counted,
// logged once per curve and never abort sampling.
func Sample(ctx context.Context, db database.Database, opts Options) (out []Curve, err error) {
	log := opts.Logger
	if log == nil {
		log = logger.Component("curves")
	}
	n := opts.Points
	if n == 0 {
		n = DefaultPoints
	}
	if n < 2 {
		return nil, htmerrors.Newf(htmerrors.ErrorTypeConfig, "a curve needs at least 2 points, got %d", n)
	}

	_, span := observability.StartSpan(ctx, "curves.sample",
		attribute.Int("records", db.Len()),
		attribute.Int("points", n))
	defer func() { observability.EndSpan(span, err) }()

	out = make([]Curve, 0, db.Len())
	for _, p := range db.All() {
		c, err := sample(p, n, opts.Range)
		if err != nil {
			return nil, err
		}
		if c.Warnings > 0 {
			metrics.RangeWarnings.WithLabelValues(p.Material(), string(p.Kind())).Add(float64(c.Warnings))
			log.Warn("evaluated outside validity range",
				zap.String("label", c.Label),
				zap.String("key", p.Key().String()),
				zap.Stringer("range", p.Range()),
				zap.Int("points", c.Warnings))
		}
		out = append(out, c)
	}
	return out, nil
}

func sample(p *property.Property, n int, override property.Range) (Curve, error) {
	r := p.Range()
	if !override.IsZero() {
		r = override
	}

	res, err := p.Values(property.Grid(r, n))
	if err != nil {
		metrics.Evaluations.WithLabelValues(string(p.Kind()), metrics.StatusError).Inc()
		return Curve{}, err
	}

	warned := make(map[float64]bool, len(res.Warnings))
	for _, w := range res.Warnings {
		warned[w.T] = true
	}

	c := Curve{
		Label:    p.Label(),
		Material: p.Material(),
		Kind:     p.Kind(),
		Isotope:  p.Isotope(),
		Source:   p.Source(),
		Unit:     p.Unit(),
		Points:   make([]Point, len(res.T)),
		Warnings: len(res.Warnings),
	}
	for i, t := range res.T {
		c.Points[i] = Point{T: t, InvT: 1 / t, Value: res.Values[i], InRange: !warned[t]}
	}

	kind := string(p.Kind())
	metrics.Evaluations.WithLabelValues(kind, metrics.StatusOK).Add(float64(len(res.T) - c.Warnings))
	if c.Warnings > 0 {
		metrics.Evaluations.WithLabelValues(kind, metrics.StatusOutOfRange).Add(float64(c.Warnings))
	}
	return c, nil
}
