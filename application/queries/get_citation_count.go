package queries

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// GetCitationCountQuery reads the maintained citation counter
type GetCitationCountQuery struct {
	CapsuleID string `json:"capsule_id"`
}

// Validate validates the query
func (q GetCitationCountQuery) Validate() error {
	if q.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	return nil
}

// CitationCountResult pairs a capsule with its citation count
type CitationCountResult struct {
	CapsuleID valueobjects.CapsuleID `json:"capsule_id"`
	Count     int64                  `json:"count"`
}

// GetCitationCountHandler handles the GetCitationCountQuery
type GetCitationCountHandler struct {
	registry  ports.CapsuleRegistry
	citations ports.CitationLedger
}

// NewGetCitationCountHandler creates a new handler instance
func NewGetCitationCountHandler(registry ports.CapsuleRegistry, citations ports.CitationLedger) *GetCitationCountHandler {
	return &GetCitationCountHandler{registry: registry, citations: citations}
}

// Handle executes the query
func (h *GetCitationCountHandler) Handle(ctx context.Context, q GetCitationCountQuery) (*CitationCountResult, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(q.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	count, err := h.citations.Count(ctx, capsuleID)
	if err != nil {
		return nil, err
	}

	return &CitationCountResult{CapsuleID: capsuleID, Count: count}, nil
}
