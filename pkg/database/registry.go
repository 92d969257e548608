package database

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/metrics"
	"github.com/ajitpratap0/htm/pkg/property"
)

// Registry is the shared collection loaders append to and queries read
// from. Appends are serialized; reads work on an immutable snapshot, so
// evaluation of the returned records needs no locking.
type Registry struct {
	mu     sync.RWMutex
	db     Database
	logger *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{logger: logger.Component("registry")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends records in order. No deduplication is performed.
func (r *Registry) Add(props ...*property.Property) {
	if len(props) == 0 {
		return
	}

	r.mu.Lock()
	r.db = r.db.Append(props...)
	total := r.db.Len()
	r.mu.Unlock()

	for _, p := range props {
		metrics.RecordsLoaded.WithLabelValues(p.Material(), string(p.Kind())).Inc()
	}
	r.logger.Debug("records added", zap.Int("added", len(props)), zap.Int("total", total))
}

// Union appends every record of db.
func (r *Registry) Union(db Database) {
	r.Add(db.props...)
}

// Snapshot returns the current contents. Later appends do not affect it.
func (r *Registry) Snapshot() Database {
	r.mu.RLock()
	defer r.mu.RUnlock()
	// Append always allocates a fresh slice, so sharing it is safe.
	return r.db
}

// Filter queries the current contents. An empty result is logged and
// counted but is not an error.
func (r *Registry) Filter(c Criteria) Database {
	out := r.Snapshot().Filter(c)
	if out.IsEmpty() {
		metrics.FilterQueries.WithLabelValues(metrics.ResultEmpty).Inc()
		r.logger.Debug("filter matched no records",
			zap.Strings("material", c.Material),
			zap.Strings("author", c.Author),
			zap.Ints("year", c.Year),
			zap.Bool("exclude", c.Exclude))
		return out
	}
	metrics.FilterQueries.WithLabelValues(metrics.ResultMatched).Inc()
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db.Len()
}

// Materials returns the distinct material tags, sorted.
func (r *Registry) Materials() []string {
	return r.Snapshot().Materials()
}

// Authors returns the distinct authors, sorted.
func (r *Registry) Authors() []string {
	return r.Snapshot().Authors()
}
