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

// CiteCommand records one citation of a capsule. The citing side is either
// another capsule or an external document reference; repeat citations are
// recorded, never deduplicated.
type CiteCommand struct {
	CitedCapsuleID  string `json:"cited_capsule_id"`
	CitingCapsuleID string `json:"citing_capsule_id"`
	ExternalRef     string `json:"external_ref"`
	Context         string `json:"context"`
}

// Validate validates the command
func (cmd CiteCommand) Validate() error {
	if cmd.CitedCapsuleID == "" {
		return errors.New("cited capsule ID is required")
	}
	if cmd.CitingCapsuleID == "" && cmd.ExternalRef == "" {
		return errors.New("either citing capsule ID or external reference is required")
	}
	if len(cmd.Context) > MaxContextLength {
		return errors.New("context exceeds maximum length")
	}
	return nil
}

// CiteResult carries the stored record and the updated count
type CiteResult struct {
	Record entities.CitationRecord `json:"record"`
	Count  int64                   `json:"count"`
}

// CiteHandler handles the CiteCommand
type CiteHandler struct {
	registry  ports.CapsuleRegistry
	citations ports.CitationLedger
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCiteHandler creates a new handler instance
func NewCiteHandler(
	registry ports.CapsuleRegistry,
	citations ports.CitationLedger,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CiteHandler {
	return &CiteHandler{
		registry:  registry,
		citations: citations,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the cite command
func (h *CiteHandler) Handle(ctx context.Context, cmd CiteCommand) (*CiteResult, error) {
	citedID, err := valueobjects.NewCapsuleIDFromString(cmd.CitedCapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, citedID); err != nil {
		return nil, err
	}

	var citingID valueobjects.CapsuleID
	if cmd.CitingCapsuleID != "" {
		citingID, err = valueobjects.NewCapsuleIDFromString(cmd.CitingCapsuleID)
		if err != nil {
			return nil, pkgerrors.NewValidationError("citing: " + err.Error())
		}
		if err := requireCapsule(ctx, h.registry, citingID); err != nil {
			return nil, err
		}
	}

	record, err := entities.NewCitationRecord(citedID, citingID, cmd.ExternalRef, cmd.Context)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	// Ledger append and counter increment are one atomic operation
	count, err := h.citations.Cite(ctx, record)
	if err != nil {
		return nil, err
	}

	if err := h.publisher.Publish(ctx, domainevents.NewCitationRecorded(citedID, count, record.CreatedAt)); err != nil {
		h.logger.Warn("Failed to publish domain event", zap.Error(err))
	}

	h.logger.Debug("Citation recorded",
		zap.String("citedID", citedID.String()),
		zap.Int64("count", count),
	)

	return &CiteResult{Record: record, Count: count}, nil
}
