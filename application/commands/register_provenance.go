package commands

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/services"
	"capsulehub/domain/core/valueobjects"
	"capsulehub/domain/events"
	pkgerrors "capsulehub/pkg/errors"

	"go.uber.org/zap"
)

// RegisterProvenanceCommand enrolls a capsule in provenance tracking and
// records its first content snapshot.
type RegisterProvenanceCommand struct {
	CapsuleID   string                   `json:"capsule_id"`
	SourceKind  string                   `json:"source_kind"`
	SourceRef   string                   `json:"source_ref"`
	ContentHash string                   `json:"content_hash"`
	DATM        *valueobjects.DATMInputs `json:"datm,omitempty"`
}

// Validate validates the command
func (cmd RegisterProvenanceCommand) Validate() error {
	if cmd.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	if cmd.ContentHash == "" {
		return errors.New("content hash is required")
	}
	return nil
}

// RegisterProvenanceResult is returned to the caller
type RegisterProvenanceResult struct {
	Record         entities.ProvenanceRecord `json:"record"`
	InitialVersion entities.CapsuleVersion   `json:"initial_version"`
}

// RegisterProvenanceHandler handles the RegisterProvenanceCommand
type RegisterProvenanceHandler struct {
	registry   ports.CapsuleRegistry
	provenance ports.ProvenanceStore
	versions   ports.VersionStore
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewRegisterProvenanceHandler creates a new handler instance
func NewRegisterProvenanceHandler(
	registry ports.CapsuleRegistry,
	provenance ports.ProvenanceStore,
	versions ports.VersionStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *RegisterProvenanceHandler {
	return &RegisterProvenanceHandler{
		registry:   registry,
		provenance: provenance,
		versions:   versions,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle executes the register provenance command
func (h *RegisterProvenanceHandler) Handle(ctx context.Context, cmd RegisterProvenanceCommand) (*RegisterProvenanceResult, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(cmd.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	sourceKind := valueobjects.SourceManual
	if cmd.SourceKind != "" {
		sourceKind, err = valueobjects.ParseSourceKind(cmd.SourceKind)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
	}

	record, err := entities.NewProvenanceRecord(capsuleID, sourceKind, cmd.SourceRef)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if cmd.DATM != nil {
		if _, err := services.ComputeScore(*cmd.DATM); err != nil {
			return nil, err
		}
	}

	if err := h.provenance.Register(ctx, record); err != nil {
		return nil, err
	}

	// First snapshot starts the version history at 1
	version, err := h.versions.AppendNext(ctx, capsuleID, cmd.ContentHash, "initial version", cmd.DATM)
	if err != nil {
		return nil, err
	}

	h.publish(ctx, events.NewProvenanceRegistered(capsuleID, sourceKind, record.CreatedAt))

	h.logger.Info("Capsule registered for provenance tracking",
		zap.String("capsuleID", capsuleID.String()),
		zap.String("sourceKind", sourceKind.String()),
	)

	return &RegisterProvenanceResult{Record: record, InitialVersion: version}, nil
}

func (h *RegisterProvenanceHandler) publish(ctx context.Context, event events.DomainEvent) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		// Events are advisory; the mutation already committed
		h.logger.Warn("Failed to publish domain event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
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
