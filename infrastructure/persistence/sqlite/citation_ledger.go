package sqlite

import (
	"context"
	"database/sql"

	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
)

// Cite appends a citation record and bumps the counter. Ledger insert and
// counter upsert commit in one transaction, so the count can never drift
// from the number of ledger rows.
func (s *Store) Cite(ctx context.Context, record entities.CitationRecord) (int64, error) {
	var count int64

	err := s.withRetry("cite", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		var citingID sql.NullString
		if !record.CitingCapsuleID.IsZero() {
			citingID = sql.NullString{String: record.CitingCapsuleID.String(), Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO citations (id, cited_capsule_id, citing_capsule_id, external_ref, context, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			record.ID, record.CitedCapsuleID.String(), citingID, record.ExternalRef, record.Context, record.CreatedAt,
		)
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO citation_counts (capsule_id, count) VALUES (?, 1)
			ON CONFLICT(capsule_id) DO UPDATE SET count = count + 1
			RETURNING count`,
			record.CitedCapsuleID.String(),
		).Scan(&count)
		if err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return 0, storageErr("cite", err)
	}
	return count, nil
}

// Count returns the maintained citation count
func (s *Store) Count(ctx context.Context, id valueobjects.CapsuleID) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT count FROM citation_counts WHERE capsule_id = ?), 0)`,
		id.String(),
	).Scan(&count)
	if err != nil {
		return 0, storageErr("citation count", err)
	}
	return count, nil
}

// TotalCitations returns the corpus-wide citation count
func (s *Store) TotalCitations(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM citations`).Scan(&total)
	if err != nil {
		return 0, storageErr("total citations", err)
	}
	return total, nil
}
