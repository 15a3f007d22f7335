package queries

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// ListValidationsQuery retrieves a capsule's validation log and its
// outcome histogram
type ListValidationsQuery struct {
	CapsuleID string `json:"capsule_id"`
}

// Validate validates the query
func (q ListValidationsQuery) Validate() error {
	if q.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	return nil
}

// ValidationListResult is the ordered log plus its outcome summary
type ValidationListResult struct {
	CapsuleID   valueobjects.CapsuleID      `json:"capsule_id"`
	Validations []entities.ValidationRecord `json:"validations"`
	Summary     entities.ValidationSummary  `json:"summary"`
}

// ListValidationsHandler handles the ListValidationsQuery
type ListValidationsHandler struct {
	registry    ports.CapsuleRegistry
	validations ports.ValidationLog
}

// NewListValidationsHandler creates a new handler instance
func NewListValidationsHandler(registry ports.CapsuleRegistry, validations ports.ValidationLog) *ListValidationsHandler {
	return &ListValidationsHandler{registry: registry, validations: validations}
}

// Handle executes the query
func (h *ListValidationsHandler) Handle(ctx context.Context, q ListValidationsQuery) (*ValidationListResult, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(q.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	records, err := h.validations.List(ctx, capsuleID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []entities.ValidationRecord{}
	}

	return &ValidationListResult{
		CapsuleID:   capsuleID,
		Validations: records,
		Summary:     entities.Summarize(capsuleID, records),
	}, nil
}
