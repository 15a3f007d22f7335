package entities

import (
	"errors"
	"time"

	"capsulehub/domain/core/valueobjects"
)

// CapsuleVersion is an immutable content snapshot of a capsule.
// Version numbers are contiguous per capsule, starting at 1. A snapshot
// may carry the DATM sub-scores assessed for that revision; the derived
// overall score is never stored, only recomputed.
type CapsuleVersion struct {
	CapsuleID     valueobjects.CapsuleID   `json:"capsule_id"`
	VersionNumber int                      `json:"version_number"`
	ContentHash   string                   `json:"content_hash"`
	ChangeSummary string                   `json:"change_summary,omitempty"`
	DATM          *valueobjects.DATMInputs `json:"datm,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// NewCapsuleVersion creates a snapshot with the given version number
func NewCapsuleVersion(capsuleID valueobjects.CapsuleID, versionNumber int, contentHash, changeSummary string, datm *valueobjects.DATMInputs) (CapsuleVersion, error) {
	if capsuleID.IsZero() {
		return CapsuleVersion{}, errors.New("capsule ID required")
	}
	if versionNumber < 1 {
		return CapsuleVersion{}, errors.New("version number must be positive")
	}
	if contentHash == "" {
		return CapsuleVersion{}, errors.New("content hash required")
	}

	return CapsuleVersion{
		CapsuleID:     capsuleID,
		VersionNumber: versionNumber,
		ContentHash:   contentHash,
		ChangeSummary: changeSummary,
		DATM:          datm,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
