package sqlite

import (
	"context"

	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
)

// Append stores a validation record
func (s *Store) Append(ctx context.Context, record entities.ValidationRecord) error {
	err := s.withRetry("record validation", func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO validations (id, capsule_id, validator_identity, outcome, evidence_note, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			record.ID, record.CapsuleID.String(), record.ValidatorIdentity,
			record.Outcome.String(), record.EvidenceNote, record.CreatedAt,
		)
		return err
	})
	if err != nil {
		return storageErr("record validation", err)
	}
	return nil
}

// List returns all records for a capsule ascending by created_at
func (s *Store) List(ctx context.Context, id valueobjects.CapsuleID) ([]entities.ValidationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, capsule_id, validator_identity, outcome, evidence_note, created_at
		FROM validations WHERE capsule_id = ?
		ORDER BY created_at ASC, id ASC`, id.String())
	if err != nil {
		return nil, storageErr("list validations", err)
	}
	defer rows.Close()

	var records []entities.ValidationRecord
	for rows.Next() {
		var (
			record    entities.ValidationRecord
			capsuleID string
			outcome   string
		)
		if err := rows.Scan(&record.ID, &capsuleID, &record.ValidatorIdentity, &outcome, &record.EvidenceNote, &record.CreatedAt); err != nil {
			return nil, storageErr("list validations", err)
		}
		if record.CapsuleID, err = valueobjects.NewCapsuleIDFromString(capsuleID); err != nil {
			return nil, storageErr("list validations", err)
		}
		if record.Outcome, err = valueobjects.ParseValidationOutcome(outcome); err != nil {
			return nil, storageErr("list validations", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list validations", err)
	}
	return records, nil
}

// TotalValidations returns the corpus-wide validation count
func (s *Store) TotalValidations(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM validations`).Scan(&total)
	if err != nil {
		return 0, storageErr("total validations", err)
	}
	return total, nil
}
