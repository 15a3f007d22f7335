package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/mattn/go-sqlite3"
)

// CapsuleExists reports whether the capsule ID is known to the registry
func (s *Store) CapsuleExists(ctx context.Context, id valueobjects.CapsuleID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM capsules WHERE id = ?)`, id.String(),
	).Scan(&exists)
	if err != nil {
		return false, storageErr("capsule existence check", err)
	}
	return exists, nil
}

// SeedCapsule makes a capsule ID known to the registry. The engine never
// creates capsules itself; the owning CRUD service (or a test) seeds them.
func (s *Store) SeedCapsule(ctx context.Context, id valueobjects.CapsuleID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO capsules (id, created_at) VALUES (?, ?)`,
		id.String(), time.Now().UTC(),
	)
	if err != nil {
		return storageErr("seed capsule", err)
	}
	return nil
}

// Register stores the registration record; fails if already registered.
// The UNIQUE(capsule_id) constraint arbitrates concurrent registers, so
// there is no check-then-insert window.
func (s *Store) Register(ctx context.Context, record entities.ProvenanceRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO provenance (id, capsule_id, source_kind, source_ref, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.CapsuleID.String(), record.SourceKind.String(), record.SourceRef, record.CreatedAt,
	)
	if isDuplicateRegistration(err) {
		return pkgerrors.NewValidationError("capsule " + record.CapsuleID.String() + " is already registered")
	}
	if err != nil {
		return storageErr("register provenance", err)
	}
	return nil
}

// isDuplicateRegistration reports whether err is the UNIQUE violation on
// the provenance table's capsule_id column.
func isDuplicateRegistration(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// Get retrieves the registration record for a capsule
func (s *Store) Get(ctx context.Context, id valueobjects.CapsuleID) (entities.ProvenanceRecord, error) {
	var (
		record     entities.ProvenanceRecord
		capsuleID  string
		sourceKind string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, capsule_id, source_kind, source_ref, created_at
		FROM provenance WHERE capsule_id = ?`, id.String(),
	).Scan(&record.ID, &capsuleID, &sourceKind, &record.SourceRef, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return entities.ProvenanceRecord{}, pkgerrors.NewNotFoundError("provenance record for capsule " + id.String())
	}
	if err != nil {
		return entities.ProvenanceRecord{}, storageErr("get provenance", err)
	}

	if record.CapsuleID, err = valueobjects.NewCapsuleIDFromString(capsuleID); err != nil {
		return entities.ProvenanceRecord{}, storageErr("get provenance", err)
	}
	if record.SourceKind, err = valueobjects.ParseSourceKind(sourceKind); err != nil {
		return entities.ProvenanceRecord{}, storageErr("get provenance", err)
	}
	return record, nil
}

// IsRegistered reports whether a capsule has a provenance record
func (s *Store) IsRegistered(ctx context.Context, id valueobjects.CapsuleID) (bool, error) {
	var registered bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM provenance WHERE capsule_id = ?)`, id.String(),
	).Scan(&registered)
	if err != nil {
		return false, storageErr("registration check", err)
	}
	return registered, nil
}
