package queries

import (
	"context"
	"errors"

	"capsulehub/application/ports"
	"capsulehub/domain/core/aggregates"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// GetEvolutionQuery retrieves the evolution subgraph around a capsule.
// MaxDepth 0 walks the graph unbounded; MaxNodes 0 falls back to the
// configured cap.
type GetEvolutionQuery struct {
	CapsuleID string `json:"capsule_id"`
	Direction string `json:"direction"`
	MaxDepth  int    `json:"max_depth"`
	MaxNodes  int    `json:"max_nodes"`
}

// Validate validates the query
func (q GetEvolutionQuery) Validate() error {
	if q.CapsuleID == "" {
		return errors.New("capsule ID is required")
	}
	if q.MaxDepth < 0 || q.MaxNodes < 0 {
		return errors.New("depth and node bounds cannot be negative")
	}
	return nil
}

// GetEvolutionHandler handles the GetEvolutionQuery
type GetEvolutionHandler struct {
	registry        ports.CapsuleRegistry
	relations       ports.RelationStore
	defaultMaxNodes int
}

// NewGetEvolutionHandler creates a new handler instance
func NewGetEvolutionHandler(registry ports.CapsuleRegistry, relations ports.RelationStore, defaultMaxNodes int) *GetEvolutionHandler {
	return &GetEvolutionHandler{
		registry:        registry,
		relations:       relations,
		defaultMaxNodes: defaultMaxNodes,
	}
}

// Handle executes the query
func (h *GetEvolutionHandler) Handle(ctx context.Context, q GetEvolutionQuery) (*aggregates.Subgraph, error) {
	capsuleID, err := valueobjects.NewCapsuleIDFromString(q.CapsuleID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	if err := requireCapsule(ctx, h.registry, capsuleID); err != nil {
		return nil, err
	}

	direction := aggregates.DirectionBoth
	if q.Direction != "" {
		direction, err = aggregates.ParseTraversalDirection(q.Direction)
		if err != nil {
			return nil, err
		}
	}

	maxNodes := q.MaxNodes
	if maxNodes == 0 {
		maxNodes = h.defaultMaxNodes
	}

	subgraph, err := h.relations.Subgraph(ctx, capsuleID, direction, q.MaxDepth, maxNodes)
	if err != nil {
		return nil, err
	}
	return &subgraph, nil
}
