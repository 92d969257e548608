// Package pipeline wires the configuration to the loaders, the curve
// exporter and the store. It is what the htm command runs:
//
//	p, err := pipeline.New(ctx, cfg, pipeline.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer p.Close(ctx)
//
//	if err := p.Load(ctx); err != nil {
//	    return err
//	}
//	err = p.Export(ctx, database.Criteria{Material: []string{"tungsten"}}, os.Stdout)
//
// Load runs once: the built-in materials first, in catalog order, then each
// manifest in the order configured.
package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/pkg/config"
	"github.com/ajitpratap0/htm/pkg/curves"
	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/manifest"
	"github.com/ajitpratap0/htm/pkg/materials"
	"github.com/ajitpratap0/htm/pkg/observability"
	"github.com/ajitpratap0/htm/pkg/property"
	"github.com/ajitpratap0/htm/pkg/store"
	"github.com/ajitpratap0/htm/pkg/tables"
)

// Pipeline owns the registry and the resources built from a Config.
type Pipeline struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *database.Registry
	tables   tables.Source
	closers  []io.Closer
	tracing  bool

	openStore func(ctx context.Context, driver, dsn string) (store.Store, error)

	loadOnce sync.Once
	loadErr  error
	stats    Stats
}

// Stats summarizes a Load.
type Stats struct {
	Materials []materials.Result
	Manifests int
	Records   int
	Skipped   int
	Duration  time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger instead of building one from the config.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTableSource overrides the table source selected by the config.
func WithTableSource(src tables.Source) Option {
	return func(p *Pipeline) { p.tables = src }
}

// New validates cfg and prepares logging, tracing and the table source.
// Close releases them.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{cfg: cfg, openStore: store.Open}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		l, err := logger.New(cfg.Logging)
		if err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "failed to create logger")
		}
		logger.Set(l)
		p.logger = l
	}
	p.registry = database.NewRegistry(database.WithLogger(p.logger.Named("registry")))

	if cfg.Observability.Tracing {
		tc := observability.DefaultConfig()
		tc.Enabled = true
		tc.SampleRate = cfg.Observability.SampleRate
		if err := observability.Init(tc); err != nil {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "failed to initialize tracing")
		}
		p.tracing = true
	}

	if p.tables == nil {
		src, err := tableSource(ctx, cfg.Data)
		if err != nil {
			_ = p.Close(ctx)
			return nil, err
		}
		p.tables = src
		if c, ok := src.(io.Closer); ok {
			p.closers = append(p.closers, c)
		}
	}
	return p, nil
}

// tableSource returns nil when no table location is configured.
func tableSource(ctx context.Context, data config.DataConfig) (tables.Source, error) {
	switch {
	case data.TablesDir != "":
		return tables.NewDirSource(data.TablesDir), nil
	case data.TablesBucket == "":
		return nil, nil
	case data.TablesProvider == "gcs":
		src, err := tables.NewGCSSource(ctx, tables.GCSConfig{
			Bucket:          data.TablesBucket,
			Prefix:          data.TablesPrefix,
			CredentialsFile: data.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		src, err := tables.NewS3Source(ctx, tables.S3Config{
			Bucket:   data.TablesBucket,
			Prefix:   data.TablesPrefix,
			Region:   data.Region,
			Endpoint: data.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

// Load populates the registry. Later calls return the first result.
func (p *Pipeline) Load(ctx context.Context) error {
	p.loadOnce.Do(func() { p.loadErr = p.load(ctx) })
	return p.loadErr
}

func (p *Pipeline) load(ctx context.Context) (err error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.load",
		attribute.Int("manifests", len(p.cfg.Data.Manifests)))
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	if p.tables == nil {
		p.logger.Info("no table source configured, digitized records will be skipped")
	} else {
		p.logger.Info("using table source", zap.Stringer("source", p.tables))
	}

	results, err := materials.LoadAll(ctx, p.registry, materials.Options{
		Tables:    p.tables,
		Materials: p.cfg.Data.Materials,
		Workers:   p.cfg.Data.Workers,
		Logger:    p.logger.Named("materials"),
	})
	p.stats.Materials = results
	for _, r := range results {
		p.stats.Skipped += r.Skipped
	}
	if err != nil {
		return err
	}

	interp, err := property.ParseInterpolation(p.cfg.Evaluation.Interpolation)
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "invalid evaluation.interpolation")
	}
	for _, path := range p.cfg.Data.Manifests {
		if _, err := manifest.Load(ctx, p.registry, path, manifest.Options{
			Tables:        p.tables,
			Interpolation: interp,
			Logger:        p.logger.Named("manifest"),
		}); err != nil {
			return err
		}
		p.stats.Manifests++
	}

	p.stats.Records = p.registry.Len()
	p.stats.Duration = time.Since(start)
	p.logger.Info("database loaded",
		zap.Int("records", p.stats.Records),
		zap.Int("skipped", p.stats.Skipped),
		zap.Int("manifests", p.stats.Manifests),
		zap.Duration("duration", p.stats.Duration))
	return nil
}

// Stats returns the summary of the last Load.
func (p *Pipeline) Stats() Stats { return p.stats }

// Registry returns the registry Load fills.
func (p *Pipeline) Registry() *database.Registry { return p.registry }

// Query loads the database if needed and returns the records matching c.
func (p *Pipeline) Query(ctx context.Context, c database.Criteria) (database.Database, error) {
	if err := p.Load(ctx); err != nil {
		return database.Database{}, err
	}
	return p.registry.Filter(c), nil
}

// Export samples the records matching c and writes them to w in the
// configured format. No matching record is an empty_result error.
func (p *Pipeline) Export(ctx context.Context, c database.Criteria, w io.Writer) (err error) {
	db, err := p.Query(ctx, c)
	if err != nil {
		return err
	}
	if db.IsEmpty() {
		return htmerrors.New(htmerrors.ErrorTypeEmptyResult, "no records match the query")
	}

	ctx, span := observability.StartSpan(ctx, "pipeline.export",
		attribute.String("format", p.cfg.Export.Format),
		attribute.Int("records", db.Len()))
	defer func() { observability.EndSpan(span, err) }()

	cs, err := curves.Sample(ctx, db, curves.Options{
		Points: p.cfg.Evaluation.Points,
		Range:  p.cfg.Evaluation.GridRange(),
		Logger: p.logger.Named("curves"),
	})
	if err != nil {
		return err
	}
	if err := curves.Write(w, cs, curves.WriteOptions{
		Format:      p.cfg.Export.Format,
		Compression: p.cfg.Export.CompressionConfig(),
	}); err != nil {
		return err
	}
	p.logger.Info("curves exported",
		zap.Int("curves", len(cs)),
		zap.String("format", p.cfg.Export.Format),
		zap.String("compression", p.cfg.Export.Compression))
	return nil
}

// DumpManifest writes the records matching c as a manifest.
func (p *Pipeline) DumpManifest(ctx context.Context, c database.Criteria, w io.Writer, format manifest.Format) error {
	db, err := p.Query(ctx, c)
	if err != nil {
		return err
	}
	return manifest.Encode(w, db, format)
}

// Persist saves the loaded database to the configured store.
func (p *Pipeline) Persist(ctx context.Context) (err error) {
	if err := p.Load(ctx); err != nil {
		return err
	}
	ctx, span := observability.StartSpan(ctx, "pipeline.persist", attribute.String("driver", p.cfg.Store.Driver))
	defer func() { observability.EndSpan(span, err) }()

	s, err := p.openStore(ctx, p.cfg.Store.Driver, p.cfg.Store.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return s.Save(ctx, p.registry.Snapshot())
}

// Restore reads the database saved in the configured store. The registry
// is left untouched.
func (p *Pipeline) Restore(ctx context.Context) (db database.Database, err error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.restore", attribute.String("driver", p.cfg.Store.Driver))
	defer func() { observability.EndSpan(span, err) }()

	s, err := p.openStore(ctx, p.cfg.Store.Driver, p.cfg.Store.DSN)
	if err != nil {
		return database.Database{}, err
	}
	defer func() { _ = s.Close() }()
	return s.Load(ctx)
}

// Close releases table clients, flushes spans and syncs the logger.
func (p *Pipeline) Close(ctx context.Context) error {
	var first error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	if p.tracing {
		if err := observability.Shutdown(ctx); err != nil && first == nil {
			first = err
		}
		p.tracing = false
	}
	_ = p.logger.Sync()
	return first
}
