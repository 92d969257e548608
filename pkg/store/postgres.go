package store

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/property"
)

// PostgresStore keeps records in a PostgreSQL table through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore connects to dsn, checks the connection and creates the
// records table if missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, htmerrors.New(htmerrors.ErrorTypeConfig, "postgres connection string is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeConfig, "failed to parse PostgreSQL connection string")
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to create PostgreSQL connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "PostgreSQL health check failed")
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to create records table")
	}

	log := logger.Component("store")
	log.Info("PostgreSQL connection pool created",
		zap.String("host", cfg.ConnConfig.Host),
		zap.String("database", cfg.ConnConfig.Database),
		zap.Int32("max_connections", cfg.MaxConns))
	return &PostgresStore{pool: pool, logger: log}, nil
}

// Save implements Store. Inserts are sent as one batch.
func (s *PostgresStore) Save(ctx context.Context, db database.Database) (retErr error) {
	rows, err := rowsOf(db)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to begin transaction")
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, deleteRecords); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to clear records")
	}

	insert := insertRecords(func(i int) string { return "$" + strconv.Itoa(i) })
	batch := &pgx.Batch{}
	for i := range rows {
		batch.Queue(insert, rows[i].args()...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to insert records")
	}
	if err := tx.Commit(ctx); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to commit records")
	}

	s.logger.Info("records saved", zap.String("driver", "postgres"), zap.Int("records", len(rows)))
	return nil
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context) (database.Database, error) {
	rs, err := s.pool.Query(ctx, selectRecords)
	if err != nil {
		return database.Database{}, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to query records")
	}
	defer rs.Close()

	var props []*property.Property
	for rs.Next() {
		var r row
		if err := rs.Scan(r.dest()...); err != nil {
			return database.Database{}, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to scan record")
		}
		p, err := rebuild(&r)
		if err != nil {
			return database.Database{}, err
		}
		props = append(props, p)
	}
	if err := rs.Err(); err != nil {
		return database.Database{}, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to read records")
	}

	s.logger.Debug("records loaded", zap.String("driver", "postgres"), zap.Int("records", len(props)))
	return database.New(props...), nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
