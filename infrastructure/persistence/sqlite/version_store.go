package sqlite

import (
	"context"
	"database/sql"

	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// AppendNext appends a snapshot with version number = current max + 1.
// The read-max-then-insert pair is optimistic: two writers racing on the
// same capsule both read the same max and the loser hits the primary key
// on (capsule_id, version_number), which feeds the bounded retry loop.
func (s *Store) AppendNext(ctx context.Context, id valueobjects.CapsuleID, contentHash, changeSummary string, datm *valueobjects.DATMInputs) (entities.CapsuleVersion, error) {
	var version entities.CapsuleVersion

	err := s.withRetry("append version", func() error {
		var maxVersion int
		err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version_number), 0) FROM versions WHERE capsule_id = ?`,
			id.String(),
		).Scan(&maxVersion)
		if err != nil {
			return err
		}

		candidate, err := entities.NewCapsuleVersion(id, maxVersion+1, contentHash, changeSummary, datm)
		if err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}

		var truth, goodness, beauty, intelligence, confidence sql.NullFloat64
		if datm != nil {
			truth = sql.NullFloat64{Float64: datm.Truth, Valid: true}
			goodness = sql.NullFloat64{Float64: datm.Goodness, Valid: true}
			beauty = sql.NullFloat64{Float64: datm.Beauty, Valid: true}
			intelligence = sql.NullFloat64{Float64: datm.Intelligence, Valid: true}
			confidence = sql.NullFloat64{Float64: datm.Confidence, Valid: true}
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO versions (capsule_id, version_number, content_hash, change_summary,
				truth, goodness, beauty, intelligence, confidence, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			candidate.CapsuleID.String(), candidate.VersionNumber, candidate.ContentHash, candidate.ChangeSummary,
			truth, goodness, beauty, intelligence, confidence, candidate.CreatedAt,
		)
		if err != nil {
			return err
		}
		version = candidate
		return nil
	})
	if err != nil {
		return entities.CapsuleVersion{}, storageErr("append version", err)
	}
	return version, nil
}

// Latest returns the newest version, or false if none exists
func (s *Store) Latest(ctx context.Context, id valueobjects.CapsuleID) (entities.CapsuleVersion, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT capsule_id, version_number, content_hash, change_summary,
			truth, goodness, beauty, intelligence, confidence, created_at
		FROM versions WHERE capsule_id = ?
		ORDER BY version_number DESC LIMIT 1`, id.String())

	version, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return entities.CapsuleVersion{}, false, nil
	}
	if err != nil {
		return entities.CapsuleVersion{}, false, storageErr("latest version", err)
	}
	return version, true, nil
}

// History returns all versions ascending by version number
func (s *Store) History(ctx context.Context, id valueobjects.CapsuleID) ([]entities.CapsuleVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT capsule_id, version_number, content_hash, change_summary,
			truth, goodness, beauty, intelligence, confidence, created_at
		FROM versions WHERE capsule_id = ?
		ORDER BY version_number ASC`, id.String())
	if err != nil {
		return nil, storageErr("version history", err)
	}
	defer rows.Close()

	var history []entities.CapsuleVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, storageErr("version history", err)
		}
		history = append(history, version)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("version history", err)
	}
	return history, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVersion(row rowScanner) (entities.CapsuleVersion, error) {
	var (
		version   entities.CapsuleVersion
		capsuleID string

		truth, goodness, beauty, intelligence, confidence sql.NullFloat64
	)
	err := row.Scan(&capsuleID, &version.VersionNumber, &version.ContentHash, &version.ChangeSummary,
		&truth, &goodness, &beauty, &intelligence, &confidence, &version.CreatedAt)
	if err != nil {
		return entities.CapsuleVersion{}, err
	}

	if version.CapsuleID, err = valueobjects.NewCapsuleIDFromString(capsuleID); err != nil {
		return entities.CapsuleVersion{}, err
	}
	if truth.Valid {
		version.DATM = &valueobjects.DATMInputs{
			Truth:        truth.Float64,
			Goodness:     goodness.Float64,
			Beauty:       beauty.Float64,
			Intelligence: intelligence.Float64,
			Confidence:   confidence.Float64,
		}
	}
	return version, nil
}
