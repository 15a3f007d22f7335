package queries

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// GetVersionHistoryQuery retrieves the full version history of a capsule
type GetVersionHistoryQuery struct {
	CapsuleID string `json:"capsule_id"`
}

// Validate validates the query
func (q GetVersionHistoryQuery) Validate() error {
	if q.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	return nil
}

// VersionHistoryResult is the ordered history plus its length
type VersionHistoryResult struct {
	CapsuleID    valueobjects.CapsuleID    `json:"capsule_id"`
	VersionCount int                       `json:"version_count"`
	Versions     []entities.CapsuleVersion `json:"versions"`
}

// GetVersionHistoryHandler handles the GetVersionHistoryQuery
type GetVersionHistoryHandler struct {
	registry ports.CapsuleRegistry
	versions ports.VersionStore
}

// NewGetVersionHistoryHandler creates a new handler instance
func NewGetVersionHistoryHandler(registry ports.CapsuleRegistry, versions ports.VersionStore) *GetVersionHistoryHandler {
	return &GetVersionHistoryHandler{registry: registry, versions: versions}
}

// Handle executes the query. A known capsule with no recorded versions
// yields an empty history, not an error.
func (h *GetVersionHistoryHandler) Handle(ctx context.Context, q GetVersionHistoryQuery) (*VersionHistoryResult, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(q.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	versions, err := h.versions.History(ctx, capsuleID)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []entities.CapsuleVersion{}
	}

	return &VersionHistoryResult{
		CapsuleID:    capsuleID,
		VersionCount: len(versions),
		Versions:     versions,
	}, nil
}

// requireCapsule enforces referential integrity against the registry
func requireCapsule(ctx context.Context, registry ports.CapsuleRegistry, id valueobjects.CapsuleID) error {
	exists, err := registry.CapsuleExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return pkgerrors.NewNotFoundError("capsule " + id.String())
	}
	return nil
}
