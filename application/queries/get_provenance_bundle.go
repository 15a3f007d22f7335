package queries

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/aggregates"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/services"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"

	"golang.org/x/sync/errgroup"
)

// GetProvenanceBundleQuery composes the full provenance view of one
// capsule: history, evolution in both directions, citation count,
// validation log, and the current DATM score.
type GetProvenanceBundleQuery struct {
	CapsuleID string `json:"capsule_id"`
}

// Validate validates the query
func (q GetProvenanceBundleQuery) Validate() error {
	if q.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	return nil
}

// ProvenanceBundle is the composed read view.
// Empty sub-stores yield empty collections, never a failure.
type ProvenanceBundle struct {
	CapsuleID     valueobjects.CapsuleID      `json:"capsule_id"`
	Record        *entities.ProvenanceRecord  `json:"record,omitempty"`
	History       []entities.CapsuleVersion   `json:"history"`
	Evolution     aggregates.Subgraph         `json:"evolution"`
	CitationCount int64                       `json:"citation_count"`
	Validations   []entities.ValidationRecord `json:"validations"`
	Summary       entities.ValidationSummary  `json:"validation_summary"`
	CurrentDATM   *services.Score             `json:"current_datm,omitempty"`
}

// GetProvenanceBundleHandler handles the GetProvenanceBundleQuery
type GetProvenanceBundleHandler struct {
	registry    ports.CapsuleRegistry
	provenance  ports.ProvenanceStore
	versions    ports.VersionStore
	relations   ports.RelationStore
	citations   ports.CitationLedger
	validations ports.ValidationLog
	scoreCache  ports.ScoreCache
	cacheTTL    int
}

// NewGetProvenanceBundleHandler creates a new handler instance
func NewGetProvenanceBundleHandler(
	registry ports.CapsuleRegistry,
	provenance ports.ProvenanceStore,
	versions ports.VersionStore,
	relations ports.RelationStore,
	citations ports.CitationLedger,
	validations ports.ValidationLog,
	scoreCache ports.ScoreCache,
	cacheTTLSeconds int,
) *GetProvenanceBundleHandler {
	return &GetProvenanceBundleHandler{
		registry:    registry,
		provenance:  provenance,
		versions:    versions,
		relations:   relations,
		citations:   citations,
		validations: validations,
		scoreCache:  scoreCache,
		cacheTTL:    cacheTTLSeconds,
	}
}

// Handle executes the composed read. The four sub-store reads are
// independent, so they fan out concurrently; any failure fails the bundle.
func (h *GetProvenanceBundleHandler) Handle(ctx context.Context, q GetProvenanceBundleQuery) (*ProvenanceBundle, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(q.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	bundle := &ProvenanceBundle{CapsuleID: capsuleID}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		history, err := h.versions.History(gctx, capsuleID)
		if err != nil {
			return err
		}
		bundle.History = history
		return nil
	})

	g.Go(func() error {
		subgraph, err := h.relations.Subgraph(gctx, capsuleID, aggregates.DirectionBoth, 0, 0)
		if err != nil {
			return err
		}
		bundle.Evolution = subgraph
		return nil
	})

	g.Go(func() error {
		count, err := h.citations.Count(gctx, capsuleID)
		if err != nil {
			return err
		}
		bundle.CitationCount = count
		return nil
	})

	g.Go(func() error {
		records, err := h.validations.List(gctx, capsuleID)
		if err != nil {
			return err
		}
		bundle.Validations = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if bundle.History == nil {
		bundle.History = []entities.CapsuleVersion{}
	}
	if bundle.Validations == nil {
		bundle.Validations = []entities.ValidationRecord{}
	}
	bundle.Summary = entities.Summarize(capsuleID, bundle.Validations)

	// Registration is optional state; its absence does not fail the bundle
	if record, err := h.provenance.Get(ctx, capsuleID); err == nil {
		bundle.Record = &record
	} else if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	score, err := h.currentScore(ctx, bundle.History)
	if err != nil {
		return nil, err
	}
	bundle.CurrentDATM = score

	return bundle, nil
}

// currentScore computes the DATM score from the newest version carrying
// sub-scores. The memoized copy is keyed by a hash of the inputs, so any
// sub-score change produces a fresh key and the stale entry is never read.
func (h *GetProvenanceBundleHandler) currentScore(ctx context.Context, history []entities.CapsuleVersion) (*services.Score, error) {
	var inputs *valueobjects.DATMInputs
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].DATM != nil {
			inputs = history[i].DATM
			break
		}
	}
	if inputs == nil {
		return nil, nil
	}

	key := inputs.CacheKey()
	if score, ok := h.scoreCache.Get(ctx, key); ok {
		return &score, nil
	}

	score, err := services.ComputeScore(*inputs)
	if err != nil {
		return nil, err
	}
	_ = h.scoreCache.Set(ctx, key, score, h.cacheTTL)
	return &score, nil
}
