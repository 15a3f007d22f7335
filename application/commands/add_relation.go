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

// AddRelationCommand inserts a directed evolution edge between two capsules
type AddRelationCommand struct {
	SourceCapsuleID string `json:"source_capsule_id"`
	TargetCapsuleID string `json:"target_capsule_id"`
	RelationType    string `json:"relation_type"`
	Note            string `json:"note"`
}

// Validate validates the command
func (cmd AddRelationCommand) Validate() error {
	if cmd.SourceCapsuleID == "" || cmd.TargetCapsuleID == "" {
		return errors.New("source and target capsule IDs are required")
	}
	if cmd.RelationType == "" {
		return errors.New("relation type is required")
	}
	if len(cmd.Note) > MaxNoteLength {
		return errors.New("note exceeds maximum length")
	}
	return nil
}

// AddRelationHandler handles the AddRelationCommand
type AddRelationHandler struct {
	registry  ports.CapsuleRegistry
	relations ports.RelationStore
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewAddRelationHandler creates a new handler instance
func NewAddRelationHandler(
	registry ports.CapsuleRegistry,
	relations ports.RelationStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *AddRelationHandler {
	return &AddRelationHandler{
		registry:  registry,
		relations: relations,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the add relation command
func (h *AddRelationHandler) Handle(ctx context.Context, cmd AddRelationCommand) (*entities.EvolutionRelation, error) {
	sourceID, err := valueobjects.NewCapsuleIDFromString(cmd.SourceCapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("source: " + err.Error())
	}
	targetID, err := valueobjects.NewCapsuleIDFromString(cmd.TargetCapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError("target: " + err.Error())
	}

	relationType, err := valueobjects.ParseRelationType(cmd.RelationType)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	// Both endpoints must be known to the registry
	if err := requireCapsule(ctx, h.registry, sourceID); err != nil {
		return nil, err
	}
	if err := requireCapsule(ctx, h.registry, targetID); err != nil {
		return nil, err
	}

	rel, err := entities.NewEvolutionRelation(sourceID, targetID, relationType, cmd.Note)
	if err != nil {
		return nil, err
	}

	// Cycle check and insert run atomically in the store
	if err := h.relations.AddRelation(ctx, rel); err != nil {
		return nil, err
	}

	if err := h.publisher.Publish(ctx, domainevents.NewRelationAdded(sourceID, targetID, relationType, rel.CreatedAt)); err != nil {
		h.logger.Warn("Failed to publish domain event", zap.Error(err))
	}

	h.logger.Info("Evolution relation added",
		zap.String("sourceID", sourceID.String()),
		zap.String("targetID", targetID.String()),
		zap.String("relationType", relationType.String()),
	)

	return &rel, nil
}
