package store

import (
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database driver and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequenceCounter
	log logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report unreadable rows.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// Pragmas are per connection, and SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply pragmas")
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:  db,
		drv: entsql.OpenDB(dialect.SQLite, db),
		seq: seq,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// ItemRepo returns an ItemRepo backed by this store.
func (s *Store) ItemRepo() ItemRepo {
	return &itemRepo{s: s}
}

// ReviewRepo returns a ReviewRepo backed by this store.
func (s *Store) ReviewRepo() ReviewRepo {
	return &reviewRepo{s: s}
}

// SampleRepo returns a SampleRepo backed by this store.
func (s *Store) SampleRepo() SampleRepo {
	return &sampleRepo{s: s}
}

// ModelRepo returns a ModelRepo backed by this store.
func (s *Store) ModelRepo() ModelRepo {
	return &modelRepo{s: s}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{s: s}
}

// DeleteUser removes every review state, training sample, recall model and
// attempt event of the user in one transaction.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	return s.withTx(ctx, func(tx dialect.Tx) error {
		for _, table := range []string{tableReviewStates, tableTrainingSamples, tableRecallModels, tableAttemptEvents} {
			query, args := builder().Delete(table).Where(entsql.EQ("user_id", userID)).Query()
			if err := tx.Exec(ctx, query, args, nil); err != nil {
				return errors.Wrapf(err, "delete %s", table)
			}
		}
		return nil
	})
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return errors.Wrap(err, p)
		}
	}
	return nil
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (s *Store) exec(ctx context.Context, q entsql.Querier) error {
	query, args := q.Query()
	return s.drv.Exec(ctx, query, args, nil)
}

// query runs q and calls scan for every row.
func (s *Store) query(ctx context.Context, q entsql.Querier, scan func(*entsql.Rows) error) error {
	query, args := q.Query()
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(tx dialect.Tx) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.log.WithError(rerr).Warn("rollback failed")
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// DefaultDBPath resolves the database file path in priority order:
// 1. CARDWISE_DB environment variable
// 2. $XDG_DATA_HOME/cardwise/cardwise.db
// 3. ~/.local/share/cardwise/cardwise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CARDWISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "cardwise", "cardwise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
