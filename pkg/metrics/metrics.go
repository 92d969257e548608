// Package metrics exposes Prometheus metrics for loading, querying and
// evaluating the property database.
//
// # Basic Usage
//
//	// Count a loaded record
//	metrics.RecordsLoaded.WithLabelValues("tungsten", "diffusivity").Inc()
//
//	// Time a material loader
//	timer := metrics.NewTimer("tungsten")
//	loadTungsten(ctx, reg)
//	timer.ObserveLoad()
//
// All collectors are registered on the default Prometheus registry through
// promauto, so they are served by promhttp.Handler without further setup.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation status label values.
const (
	StatusOK         = "ok"
	StatusOutOfRange = "out_of_range"
	StatusError      = "error"
)

// Filter result label values.
const (
	ResultMatched = "matched"
	ResultEmpty   = "empty"
)

var (
	// RecordsLoaded counts records appended to a registry.
	// Labels: material, kind
	//
	// Example:
	//	metrics.RecordsLoaded.WithLabelValues("beryllium", "solubility").Inc()
	RecordsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "htm_records_loaded_total",
			Help: "Total number of property records loaded",
		},
		[]string{"material", "kind"},
	)

	// Evaluations counts point evaluations.
	// Labels: kind, status (ok/out_of_range/error)
	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "htm_evaluations_total",
			Help: "Total number of property evaluations",
		},
		[]string{"kind", "status"},
	)

	// RangeWarnings counts evaluations outside a record's validity range.
	// Labels: material, kind
	RangeWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "htm_range_warnings_total",
			Help: "Total number of evaluations outside the validity range",
		},
		[]string{"material", "kind"},
	)

	// FilterQueries counts registry filter queries.
	// Labels: result (matched/empty)
	FilterQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "htm_filter_queries_total",
			Help: "Total number of filter queries",
		},
		[]string{"result"},
	)

	// LoadDuration tracks how long each material loader takes in seconds.
	// Labels: material
	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "htm_load_duration_seconds",
			Help: "Material loader duration in seconds",
			Buckets: []float64{
				0.0001, // literal records only
				0.001,
				0.01, // local tables
				0.1,
				1, // object storage
				10,
			},
		},
		[]string{"material"},
	)
)

// Timer measures the duration of a material loader.
type Timer struct {
	start    time.Time
	material string
}

// NewTimer starts timing immediately.
func NewTimer(material string) *Timer {
	return &Timer{
		start:    time.Now(),
		material: material,
	}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveLoad records the elapsed time in LoadDuration and returns it.
func (t *Timer) ObserveLoad() time.Duration {
	d := t.Stop()
	LoadDuration.WithLabelValues(t.material).Observe(d.Seconds())
	return d
}
