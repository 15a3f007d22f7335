// Package sqlite provides the durable implementations of the persistence
// ports on a single SQLite database. All stores share one *sql.DB opened
// in WAL mode.
package sqlite

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	pkgerrors "capsulehub/pkg/errors"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS capsules (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	domain     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS provenance (
	id          TEXT PRIMARY KEY,
	capsule_id  TEXT NOT NULL UNIQUE,
	source_kind TEXT NOT NULL,
	source_ref  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS versions (
	capsule_id     TEXT NOT NULL,
	version_number INTEGER NOT NULL,
	content_hash   TEXT NOT NULL,
	change_summary TEXT NOT NULL DEFAULT '',
	truth          REAL,
	goodness       REAL,
	beauty         REAL,
	intelligence   REAL,
	confidence     REAL,
	created_at     TIMESTAMP NOT NULL,
	PRIMARY KEY (capsule_id, version_number)
);

CREATE TABLE IF NOT EXISTS relations (
	id                TEXT PRIMARY KEY,
	source_capsule_id TEXT NOT NULL,
	target_capsule_id TEXT NOT NULL,
	relation_type     TEXT NOT NULL,
	note              TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMP NOT NULL,
	CHECK (source_capsule_id <> target_capsule_id)
);

CREATE TABLE IF NOT EXISTS citations (
	id                TEXT PRIMARY KEY,
	cited_capsule_id  TEXT NOT NULL,
	citing_capsule_id TEXT,
	external_ref      TEXT NOT NULL DEFAULT '',
	context           TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS citation_counts (
	capsule_id TEXT PRIMARY KEY,
	count      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS validations (
	id                 TEXT PRIMARY KEY,
	capsule_id         TEXT NOT NULL,
	validator_identity TEXT NOT NULL,
	outcome            TEXT NOT NULL,
	evidence_note      TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_capsule_id);
CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_capsule_id);
CREATE INDEX IF NOT EXISTS idx_citations_cited ON citations(cited_capsule_id);
CREATE INDEX IF NOT EXISTS idx_validations_capsule ON validations(capsule_id);
`

// Store wraps the shared database handle and the write-contention policy
type Store struct {
	db           *sql.DB
	logger       *zap.Logger
	retryBudget  int
	retryBackoff time.Duration

	// relMu serializes relation writes so the cycle check always sees
	// every committed edge. The service is the only writer of its
	// database file.
	relMu sync.Mutex
}

// Open opens (or creates) the database at path, applies the connection
// pragmas, and migrates the schema.
func Open(path string, retryBudget int, retryBackoff time.Duration, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, pkgerrors.NewStorageUnavailableError("open database", err)
	}

	// WAL keeps readers unblocked during writes; the busy timeout bounds
	// how long a writer waits before ErrBusy surfaces into our retry loop.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, pkgerrors.NewStorageUnavailableError("configure database", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pkgerrors.NewStorageUnavailableError("migrate schema", err)
	}

	logger.Info("SQLite store opened",
		zap.String("path", path),
		zap.Int("retryBudget", retryBudget),
	)

	return &Store{
		db:           db,
		logger:       logger,
		retryBudget:  retryBudget,
		retryBackoff: retryBackoff,
	}, nil
}

// Close closes the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for test fixtures
func (s *Store) DB() *sql.DB {
	return s.db
}

// isContended reports whether the error is a transient lock or a
// write-write conflict worth retrying.
func isContended(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == sqlite3.ErrBusy ||
		se.Code == sqlite3.ErrLocked ||
		se.Code == sqlite3.ErrConstraint
}

// withRetry runs fn up to the retry budget, backing off linearly between
// contended attempts. A still-contended final attempt surfaces as
// ConflictRetryExhausted; any other failure passes through untouched.
func (s *Store) withRetry(operation string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.retryBudget; attempt++ {
		err = fn()
		if err == nil || !isContended(err) {
			return err
		}
		if attempt < s.retryBudget {
			time.Sleep(time.Duration(attempt) * s.retryBackoff)
		}
	}
	s.logger.Warn("Write contention exhausted retry budget",
		zap.String("operation", operation),
		zap.Int("attempts", s.retryBudget),
		zap.Error(err),
	)
	return pkgerrors.NewConflictRetryExhaustedError(operation, s.retryBudget)
}

// storageErr maps a driver failure to StorageUnavailable, passing
// AppErrors through unchanged.
func storageErr(operation string, err error) error {
	if pkgerrors.IsAppError(err) {
		return err
	}
	return pkgerrors.NewStorageUnavailableError(operation, err)
}
