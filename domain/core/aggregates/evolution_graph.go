package aggregates

import (
	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"
)

// TraversalDirection selects which side of a node a subgraph query walks
type TraversalDirection string

const (
	DirectionAncestors   TraversalDirection = "ancestors"
	DirectionDescendants TraversalDirection = "descendants"
	DirectionBoth        TraversalDirection = "both"
)

// ParseTraversalDirection validates and converts a raw string
func ParseTraversalDirection(s string) (TraversalDirection, error) {
	switch TraversalDirection(s) {
	case DirectionAncestors, DirectionDescendants, DirectionBoth:
		return TraversalDirection(s), nil
	}
	return "", pkgerrors.NewValidationError("direction must be one of ancestors, descendants, both")
}

// EvolutionGraph is the aggregate holding all evolution relations as an
// adjacency structure. Edges point from ancestor (source) to descendant
// (target). Edge lists preserve insertion order so traversals are
// deterministic.
//
// The aggregate is not safe for concurrent use; repositories serialize
// access around it.
type EvolutionGraph struct {
	outgoing map[valueobjects.CapsuleID][]entities.EvolutionRelation
	incoming map[valueobjects.CapsuleID][]entities.EvolutionRelation
	edges    []entities.EvolutionRelation
}

// NewEvolutionGraph creates an empty graph
func NewEvolutionGraph() *EvolutionGraph {
	return &EvolutionGraph{
		outgoing: make(map[valueobjects.CapsuleID][]entities.EvolutionRelation),
		incoming: make(map[valueobjects.CapsuleID][]entities.EvolutionRelation),
	}
}

// ReconstructEvolutionGraph rebuilds a graph from persisted edges, which
// must be supplied in creation order. Edges that would violate the
// derivation DAG invariant are rejected, so a store that enforced the
// invariant on write always reloads cleanly.
func ReconstructEvolutionGraph(edges []entities.EvolutionRelation) (*EvolutionGraph, error) {
	g := NewEvolutionGraph()
	for _, e := range edges {
		if err := g.AddRelation(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddRelation inserts an edge after enforcing the graph invariants:
// no self-loops, and no directed cycle among derivation-type edges.
// The cycle check walks descendant edges from the new edge's target; if the
// source is reachable the target is already an ancestor of the source and
// the edge closes a cycle.
func (g *EvolutionGraph) AddRelation(rel entities.EvolutionRelation) error {
	if rel.SourceCapsuleID.Equals(rel.TargetCapsuleID) {
		return pkgerrors.NewInvalidRelationError("capsule cannot relate to itself")
	}

	if rel.Type.ParticipatesInAncestry() && g.reachesViaAncestry(rel.TargetCapsuleID, rel.SourceCapsuleID) {
		return pkgerrors.NewCycleDetectedError(rel.SourceCapsuleID.String(), rel.TargetCapsuleID.String())
	}

	g.outgoing[rel.SourceCapsuleID] = append(g.outgoing[rel.SourceCapsuleID], rel)
	g.incoming[rel.TargetCapsuleID] = append(g.incoming[rel.TargetCapsuleID], rel)
	g.edges = append(g.edges, rel)
	return nil
}

// reachesViaAncestry reports whether `to` is reachable from `from` along
// derivation-type edges. O(V+E) breadth-first walk.
func (g *EvolutionGraph) reachesViaAncestry(from, to valueobjects.CapsuleID) bool {
	if from.Equals(to) {
		return true
	}

	visited := map[valueobjects.CapsuleID]bool{from: true}
	queue := []valueobjects.CapsuleID{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range g.outgoing[current] {
			if !edge.Type.ParticipatesInAncestry() {
				continue
			}
			next := edge.TargetCapsuleID
			if next.Equals(to) {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Subgraph holds the nodes and edges reached by a bounded traversal.
// Nodes are listed in breadth-first discovery order.
type Subgraph struct {
	Root  valueobjects.CapsuleID       `json:"root"`
	Nodes []valueobjects.CapsuleID     `json:"nodes"`
	Edges []entities.EvolutionRelation `json:"edges"`
}

// Subgraph returns the induced subgraph reachable from root within
// maxDepth hops in the given direction. maxDepth <= 0 means unbounded;
// maxNodes <= 0 means uncapped. Ties at equal depth break by edge
// creation order, so output is deterministic for a given graph.
func (g *EvolutionGraph) Subgraph(root valueobjects.CapsuleID, direction TraversalDirection, maxDepth, maxNodes int) Subgraph {
	result := Subgraph{Root: root}

	type queued struct {
		id    valueobjects.CapsuleID
		depth int
	}

	visited := map[valueobjects.CapsuleID]bool{root: true}
	seenEdges := make(map[string]bool)
	queue := []queued{{id: root, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		result.Nodes = append(result.Nodes, current.id)
		if maxDepth > 0 && current.depth >= maxDepth {
			continue
		}

		for _, edge := range g.neighbors(current.id, direction) {
			next := edge.TargetCapsuleID
			if next.Equals(current.id) {
				next = edge.SourceCapsuleID
			}
			if !visited[next] {
				if maxNodes > 0 && len(result.Nodes)+len(queue)+1 > maxNodes {
					continue
				}
				visited[next] = true
				queue = append(queue, queued{id: next, depth: current.depth + 1})
			}

			// Only edges whose far endpoint made it into the subgraph
			// are part of the induced view.
			if visited[next] && !seenEdges[edge.ID] {
				seenEdges[edge.ID] = true
				result.Edges = append(result.Edges, edge)
			}
		}
	}
	return result
}

// neighbors returns the edges to follow from a node for a direction,
// preserving insertion order. For "both" the incoming edges (ancestors)
// come first, matching how provenance is usually read.
func (g *EvolutionGraph) neighbors(id valueobjects.CapsuleID, direction TraversalDirection) []entities.EvolutionRelation {
	switch direction {
	case DirectionAncestors:
		return g.incoming[id]
	case DirectionDescendants:
		return g.outgoing[id]
	default:
		edges := make([]entities.EvolutionRelation, 0, len(g.incoming[id])+len(g.outgoing[id]))
		edges = append(edges, g.incoming[id]...)
		edges = append(edges, g.outgoing[id]...)
		return edges
	}
}

// Overview aggregates graph-wide statistics
type Overview struct {
	NodeCount    int                      `json:"node_count"`
	EdgeCount    int                      `json:"edge_count"`
	EdgesByType  map[string]int           `json:"edges_by_type"`
	RootCapsules []valueobjects.CapsuleID `json:"root_capsules"`
	LeafCapsules []valueobjects.CapsuleID `json:"leaf_capsules"`
}

// Overview computes node/edge totals, the edge-type histogram, and the
// derivation roots (no incoming derivation edge) and leaves (no outgoing
// derivation edge). Node order follows first appearance in an edge.
func (g *EvolutionGraph) Overview() Overview {
	overview := Overview{
		EdgeCount:   len(g.edges),
		EdgesByType: make(map[string]int, len(valueobjects.AllRelationTypes())),
	}

	seen := make(map[valueobjects.CapsuleID]bool)
	var nodes []valueobjects.CapsuleID
	for _, edge := range g.edges {
		overview.EdgesByType[edge.Type.String()]++
		for _, id := range []valueobjects.CapsuleID{edge.SourceCapsuleID, edge.TargetCapsuleID} {
			if !seen[id] {
				seen[id] = true
				nodes = append(nodes, id)
			}
		}
	}
	overview.NodeCount = len(nodes)

	for _, id := range nodes {
		if !g.hasAncestryEdge(g.incoming[id]) {
			overview.RootCapsules = append(overview.RootCapsules, id)
		}
		if !g.hasAncestryEdge(g.outgoing[id]) {
			overview.LeafCapsules = append(overview.LeafCapsules, id)
		}
	}
	return overview
}

func (g *EvolutionGraph) hasAncestryEdge(edges []entities.EvolutionRelation) bool {
	for _, e := range edges {
		if e.Type.ParticipatesInAncestry() {
			return true
		}
	}
	return false
}

// Edges returns all edges in creation order
func (g *EvolutionGraph) Edges() []entities.EvolutionRelation {
	edges := make([]entities.EvolutionRelation, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// EdgeCount returns the total number of edges
func (g *EvolutionGraph) EdgeCount() int {
	return len(g.edges)
}

// HasNode reports whether the capsule appears in any edge
func (g *EvolutionGraph) HasNode(id valueobjects.CapsuleID) bool {
	return len(g.incoming[id]) > 0 || len(g.outgoing[id]) > 0
}
