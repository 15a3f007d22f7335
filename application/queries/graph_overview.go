package queries

import (
	"context"

	"capsulehub/application/ports"
	"capsulehub/domain/core/aggregates"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"

	"golang.org/x/sync/errgroup"
)

// GraphOverviewQuery asks for corpus-wide graph statistics
type GraphOverviewQuery struct{}

// Validate validates the query
func (q GraphOverviewQuery) Validate() error {
	return nil
}

// GraphOverviewResult combines the graph aggregates with the corpus-wide
// citation and validation totals.
type GraphOverviewResult struct {
	Graph            aggregates.Overview `json:"graph"`
	TotalCitations   int64               `json:"total_citations"`
	TotalValidations int64               `json:"total_validations"`
}

// GraphOverviewHandler handles the GraphOverviewQuery
type GraphOverviewHandler struct {
	relations   ports.RelationStore
	citations   ports.CitationLedger
	validations ports.ValidationLog
}

// NewGraphOverviewHandler creates a new handler instance
func NewGraphOverviewHandler(relations ports.RelationStore, citations ports.CitationLedger, validations ports.ValidationLog) *GraphOverviewHandler {
	return &GraphOverviewHandler{
		relations:   relations,
		citations:   citations,
		validations: validations,
	}
}

// Handle executes the query
func (h *GraphOverviewHandler) Handle(ctx context.Context, q GraphOverviewQuery) (*GraphOverviewResult, error) {
	result := &GraphOverviewResult{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		overview, err := h.relations.Overview(gctx)
		if err != nil {
			return err
		}
		result.Graph = overview
		return nil
	})

	g.Go(func() error {
		total, err := h.citations.TotalCitations(gctx)
		if err != nil {
			return err
		}
		result.TotalCitations = total
		return nil
	})

	g.Go(func() error {
		total, err := h.validations.TotalValidations(gctx)
		if err != nil {
			return err
		}
		result.TotalValidations = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// FullGraphQuery asks for every node and edge of the evolution graph
type FullGraphQuery struct{}

// Validate validates the query
func (q FullGraphQuery) Validate() error {
	return nil
}

// FullGraphResult is the complete edge list plus the distinct node set
// in first-appearance order.
type FullGraphResult struct {
	Nodes []valueobjects.CapsuleID     `json:"nodes"`
	Edges []entities.EvolutionRelation `json:"edges"`
}

// FullGraphHandler handles the FullGraphQuery
type FullGraphHandler struct {
	relations ports.RelationStore
}

// NewFullGraphHandler creates a new handler instance
func NewFullGraphHandler(relations ports.RelationStore) *FullGraphHandler {
	return &FullGraphHandler{relations: relations}
}

// Handle executes the query
func (h *FullGraphHandler) Handle(ctx context.Context, q FullGraphQuery) (*FullGraphResult, error) {
	edges, err := h.relations.AllRelations(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[valueobjects.CapsuleID]bool)
	result := &FullGraphResult{Edges: edges}
	if result.Edges == nil {
		result.Edges = []entities.EvolutionRelation{}
	}
	result.Nodes = []valueobjects.CapsuleID{}
	for _, e := range edges {
		for _, id := range []valueobjects.CapsuleID{e.SourceCapsuleID, e.TargetCapsuleID} {
			if !seen[id] {
				seen[id] = true
				result.Nodes = append(result.Nodes, id)
			}
		}
	}
	return result, nil
}
