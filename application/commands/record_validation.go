package commands

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	domainevents "capsulehub/domain/events"
	pkgerrors "capsulehub/pkg/errors"

	"go.uber.org/zap"
)

// RecordValidationCommand logs one independent validation attempt. The same
// validator may validate the same capsule any number of times.
type RecordValidationCommand struct {
	CapsuleID         string `json:"capsule_id"`
	ValidatorIdentity string `json:"validator_identity"`
	Outcome           string `json:"outcome"`
	EvidenceNote      string `json:"evidence_note"`
}

// Validate validates the command
func (cmd RecordValidationCommand) Validate() error {
	if cmd.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	if cmd.ValidatorIdentity == "" {
		return errors.New("validator identity is required")
	}
	if cmd.Outcome == "" {
		return errors.New("outcome is required")
	}
	if len(cmd.EvidenceNote) > MaxEvidenceNoteLength {
		return errors.New("evidence note exceeds maximum length")
	}
	return nil
}

// RecordValidationHandler handles the RecordValidationCommand
type RecordValidationHandler struct {
	registry    ports.CapsuleRegistry
	validations ports.ValidationLog
	publisher   ports.EventPublisher
	logger      *zap.Logger
}

// NewRecordValidationHandler creates a new handler instance
func NewRecordValidationHandler(
	registry ports.CapsuleRegistry,
	validations ports.ValidationLog,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *RecordValidationHandler {
	return &RecordValidationHandler{
		registry:    registry,
		validations: validations,
		publisher:   publisher,
		logger:      logger,
	}
}

// Handle executes the record validation command
func (h *RecordValidationHandler) Handle(ctx context.Context, cmd RecordValidationCommand) (*entities.ValidationRecord, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(cmd.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	outcome, err := valueobjects.ParseValidationOutcome(cmd.Outcome)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	record, err := entities.NewValidationRecord(capsuleID, cmd.ValidatorIdentity, outcome, cmd.EvidenceNote)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := h.validations.Append(ctx, record); err != nil {
		return nil, err
	}

	if err := h.publisher.Publish(ctx, domainevents.NewValidationRecorded(capsuleID, outcome, record.CreatedAt)); err != nil {
		h.logger.Warn("Failed to publish domain event", zap.Error(err))
	}

	h.logger.Info("Validation recorded",
		zap.String("capsuleID", capsuleID.String()),
		zap.String("validator", cmd.ValidatorIdentity),
		zap.String("outcome", outcome.String()),
	)

	return &record, nil
}
