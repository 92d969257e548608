package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/ajitpratap0/htm/pkg/database"
	"github.com/ajitpratap0/htm/pkg/htmerrors"
	"github.com/ajitpratap0/htm/pkg/logger"
	"github.com/ajitpratap0/htm/pkg/property"
)

// SQLiteStore keeps records in a single SQLite file. The DSN ":memory:"
// opens a private in-memory database.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = "htm.db"
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to create store directory").
				WithDetail("path", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to open sqlite").
			WithDetail("path", path)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return nil, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to create records table")
	}
	return &SQLiteStore{db: db, path: path, logger: logger.Component("store")}, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, db database.Database) (retErr error) {
	rows, err := rowsOf(db)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to begin transaction")
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, deleteRecords); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to clear records")
	}
	stmt, err := tx.PrepareContext(ctx, insertRecords(func(int) string { return "?" }))
	if err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to prepare insert")
	}
	defer func() { _ = stmt.Close() }()

	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i].args()...); err != nil {
			return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to insert record").
				WithDetail("source", rows[i].Source)
		}
	}
	if err := tx.Commit(); err != nil {
		return htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to commit records")
	}

	s.logger.Info("records saved", zap.String("driver", "sqlite"), zap.String("path", s.path), zap.Int("records", len(rows)))
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (database.Database, error) {
	rs, err := s.db.QueryContext(ctx, selectRecords)
	if err != nil {
		return database.Database{}, htmerrors.Wrap(err, htmerrors.ErrorTypeStorage, "failed to query records")
	}
	defer func() { _ = rs.Close() }()

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

	s.logger.Debug("records loaded", zap.String("driver", "sqlite"), zap.Int("records", len(props)))
	return database.New(props...), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
