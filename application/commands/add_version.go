package commands

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/services"
	"capsulehub/domain/core/valueobjects"
	domainevents "capsulehub/domain/events"
	pkgerrors "capsulehub/pkg/errors"

	"go.uber.org/zap"
)

// AddVersionCommand appends a new content snapshot to a capsule's history.
// DATM sub-scores are optional; when present they are range-checked by the
// scorer before the snapshot is accepted.
type AddVersionCommand struct {
	CapsuleID     string                   `json:"capsule_id"`
	ContentHash   string                   `json:"content_hash"`
	ChangeSummary string                   `json:"change_summary"`
	DATM          *valueobjects.DATMInputs `json:"datm,omitempty"`
}

// Validate validates the command
func (cmd AddVersionCommand) Validate() error {
	if cmd.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	if cmd.ContentHash == "" {
		return errors.New("content hash is required")
	}
	if len(cmd.ChangeSummary) > MaxChangeSummaryLength {
		return errors.New("change summary exceeds maximum length")
	}
	return nil
}

const (
	MaxChangeSummaryLength = 2000
	MaxNoteLength          = 1000
	MaxContextLength       = 2000
	MaxEvidenceNoteLength  = 4000
)

// AddVersionHandler handles the AddVersionCommand
type AddVersionHandler struct {
	registry  ports.CapsuleRegistry
	versions  ports.VersionStore
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewAddVersionHandler creates a new handler instance
func NewAddVersionHandler(
	registry ports.CapsuleRegistry,
	versions ports.VersionStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *AddVersionHandler {
	return &AddVersionHandler{
		registry:  registry,
		versions:  versions,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the add version command
func (h *AddVersionHandler) Handle(ctx context.Context, cmd AddVersionCommand) (*entities.CapsuleVersion, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(cmd.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	// Reject out-of-range sub-scores before anything is written
	if cmd.DATM != nil {
		if _, err := services.ComputeScore(*cmd.DATM); err != nil {
			return nil, err
		}
	}

	// The store serializes per capsule, so the max+1 read and the append
	// happen as one unit
	version, err := h.versions.AppendNext(ctx, capsuleID, cmd.ContentHash, cmd.ChangeSummary, cmd.DATM)
	if err != nil {
		return nil, err
	}

	if err := h.publisher.Publish(ctx, domainevents.NewVersionAdded(capsuleID, version.VersionNumber, version.CreatedAt)); err != nil {
		h.logger.Warn("Failed to publish domain event", zap.Error(err))
	}

	h.logger.Info("Version appended",
		zap.String("capsuleID", capsuleID.String()),
		zap.Int("versionNumber", version.VersionNumber),
	)

	return &version, nil
}
