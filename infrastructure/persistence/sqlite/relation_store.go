package sqlite

import (
	"context"

	"capsulehub/domain/core/aggregates"
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
)

// AddRelation validates graph invariants and inserts the edge. The cycle
// check needs a consistent view of every edge, so the check and the
// insert run under the store's relation mutex; the database CHECK
// constraint independently rejects self-loops.
func (s *Store) AddRelation(ctx context.Context, rel entities.EvolutionRelation) error {
	s.relMu.Lock()
	defer s.relMu.Unlock()

	graph, err := s.loadGraph(ctx)
	if err != nil {
		return err
	}
	if err := graph.AddRelation(rel); err != nil {
		return err
	}

	err = s.withRetry("add relation", func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO relations (id, source_capsule_id, target_capsule_id, relation_type, note, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rel.ID, rel.SourceCapsuleID.String(), rel.TargetCapsuleID.String(),
			rel.Type.String(), rel.Note, rel.CreatedAt,
		)
		return err
	})
	if err != nil {
		return storageErr("add relation", err)
	}
	return nil
}

// Subgraph returns the bounded traversal around a capsule
func (s *Store) Subgraph(ctx context.Context, id valueobjects.CapsuleID, direction aggregates.TraversalDirection, maxDepth, maxNodes int) (aggregates.Subgraph, error) {
	graph, err := s.loadGraph(ctx)
	if err != nil {
		return aggregates.Subgraph{}, err
	}
	return graph.Subgraph(id, direction, maxDepth, maxNodes), nil
}

// Overview returns graph-wide aggregates
func (s *Store) Overview(ctx context.Context) (aggregates.Overview, error) {
	graph, err := s.loadGraph(ctx)
	if err != nil {
		return aggregates.Overview{}, err
	}
	return graph.Overview(), nil
}

// AllRelations returns every edge in creation order
func (s *Store) AllRelations(ctx context.Context) ([]entities.EvolutionRelation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_capsule_id, target_capsule_id, relation_type, note, created_at
		FROM relations ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, storageErr("load relations", err)
	}
	defer rows.Close()

	var edges []entities.EvolutionRelation
	for rows.Next() {
		var (
			edge             entities.EvolutionRelation
			sourceID, target string
			relationType     string
		)
		if err := rows.Scan(&edge.ID, &sourceID, &target, &relationType, &edge.Note, &edge.CreatedAt); err != nil {
			return nil, storageErr("load relations", err)
		}
		if edge.SourceCapsuleID, err = valueobjects.NewCapsuleIDFromString(sourceID); err != nil {
			return nil, storageErr("load relations", err)
		}
		if edge.TargetCapsuleID, err = valueobjects.NewCapsuleIDFromString(target); err != nil {
			return nil, storageErr("load relations", err)
		}
		if edge.Type, err = valueobjects.ParseRelationType(relationType); err != nil {
			return nil, storageErr("load relations", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load relations", err)
	}
	return edges, nil
}

// loadGraph rebuilds the aggregate from the persisted edge list. Writes
// already enforced the DAG invariant, so reconstruction cannot fail on a
// healthy database.
func (s *Store) loadGraph(ctx context.Context) (*aggregates.EvolutionGraph, error) {
	edges, err := s.AllRelations(ctx)
	if err != nil {
		return nil, err
	}
	graph, err := aggregates.ReconstructEvolutionGraph(edges)
	if err != nil {
		return nil, storageErr("reconstruct graph", err)
	}
	return graph, nil
}
