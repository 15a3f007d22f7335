package aggregates

import (
	"fmt"
	"math/rand"
	"testing"

	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapsuleIDs(t *testing.T, n int) []valueobjects.CapsuleID {
	t.Helper()
	ids := make([]valueobjects.CapsuleID, n)
	for i := range ids {
		ids[i] = valueobjects.NewCapsuleID()
	}
	return ids
}

func mustRelation(t *testing.T, source, target valueobjects.CapsuleID, relType valueobjects.RelationType) entities.EvolutionRelation {
	t.Helper()
	rel, err := entities.NewEvolutionRelation(source, target, relType, "")
	require.NoError(t, err)
	return rel
}

func TestEvolutionGraph_AddRelation_RejectsSelfLoop(t *testing.T) {
	graph := NewEvolutionGraph()
	id := valueobjects.NewCapsuleID()

	rel := entities.EvolutionRelation{
		ID:              "edge-1",
		SourceCapsuleID: id,
		TargetCapsuleID: id,
		Type:            valueobjects.RelationDerivedFrom,
	}

	err := graph.AddRelation(rel)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidRelation(err))
}

func TestEvolutionGraph_AddRelation_DetectsCycle(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 3)

	// A -> B -> C along derivation edges
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[1], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[1], ids[2], valueobjects.RelationForkedFrom)))

	// C -> A closes the cycle
	err := graph.AddRelation(mustRelation(t, ids[2], ids[0], valueobjects.RelationDerivedFrom))

	require.Error(t, err)
	assert.True(t, pkgerrors.IsCycleDetected(err))
	assert.Equal(t, 2, graph.EdgeCount(), "rejected edge must not be inserted")
}

func TestEvolutionGraph_AddRelation_CritiqueEdgesExemptFromCycleCheck(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 2)

	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[1], valueobjects.RelationDerivedFrom)))

	// A critique pointing back along the ancestry is allowed; only
	// derivation-type edges participate in the DAG invariant.
	err := graph.AddRelation(mustRelation(t, ids[1], ids[0], valueobjects.RelationRefutedBy))

	require.NoError(t, err)
	assert.Equal(t, 2, graph.EdgeCount())
}

func TestEvolutionGraph_AddRelation_DiamondIsNotACycle(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 4)

	// A -> B, A -> C, B -> D, C -> D: two paths converge without a cycle
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[1], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[2], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[1], ids[3], valueobjects.RelationMergedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[2], ids[3], valueobjects.RelationMergedFrom)))

	assert.Equal(t, 4, graph.EdgeCount())
}

func TestEvolutionGraph_Subgraph_Directions(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 5)

	// ids[0] -> ids[1] -> ids[2], ids[3] -> ids[1], ids[2] -> ids[4]
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[1], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[1], ids[2], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[3], ids[1], valueobjects.RelationMergedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[2], ids[4], valueobjects.RelationDerivedFrom)))

	t.Run("ancestors", func(t *testing.T) {
		sub := graph.Subgraph(ids[1], DirectionAncestors, 0, 0)
		assert.ElementsMatch(t, []valueobjects.CapsuleID{ids[1], ids[0], ids[3]}, sub.Nodes)
		assert.Len(t, sub.Edges, 2)
	})

	t.Run("descendants", func(t *testing.T) {
		sub := graph.Subgraph(ids[1], DirectionDescendants, 0, 0)
		assert.ElementsMatch(t, []valueobjects.CapsuleID{ids[1], ids[2], ids[4]}, sub.Nodes)
		assert.Len(t, sub.Edges, 2)
	})

	t.Run("both", func(t *testing.T) {
		sub := graph.Subgraph(ids[1], DirectionBoth, 0, 0)
		assert.Len(t, sub.Nodes, 5)
		assert.Len(t, sub.Edges, 4)
	})
}

func TestEvolutionGraph_Subgraph_DepthBound(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 4)

	// Chain ids[0] -> ids[1] -> ids[2] -> ids[3]
	for i := 0; i < 3; i++ {
		require.NoError(t, graph.AddRelation(mustRelation(t, ids[i], ids[i+1], valueobjects.RelationDerivedFrom)))
	}

	sub := graph.Subgraph(ids[0], DirectionDescendants, 2, 0)

	assert.ElementsMatch(t, []valueobjects.CapsuleID{ids[0], ids[1], ids[2]}, sub.Nodes)
	assert.Len(t, sub.Edges, 2, "edge to the out-of-depth node is excluded")
}

func TestEvolutionGraph_Subgraph_NodeCap(t *testing.T) {
	graph := NewEvolutionGraph()
	root := valueobjects.NewCapsuleID()
	children := newCapsuleIDs(t, 10)

	for _, child := range children {
		require.NoError(t, graph.AddRelation(mustRelation(t, root, child, valueobjects.RelationDerivedFrom)))
	}

	sub := graph.Subgraph(root, DirectionDescendants, 0, 4)

	assert.Len(t, sub.Nodes, 4)
	assert.Len(t, sub.Edges, 3, "edges whose far endpoint was capped away are excluded")
	for _, edge := range sub.Edges {
		assert.Contains(t, sub.Nodes, edge.SourceCapsuleID)
		assert.Contains(t, sub.Nodes, edge.TargetCapsuleID)
	}
}

func TestEvolutionGraph_Subgraph_Deterministic(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 6)

	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[1], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[2], valueobjects.RelationForkedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[1], ids[3], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[2], ids[4], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[3], ids[5], valueobjects.RelationMergedFrom)))

	first := graph.Subgraph(ids[0], DirectionBoth, 0, 0)
	for i := 0; i < 20; i++ {
		again := graph.Subgraph(ids[0], DirectionBoth, 0, 0)
		assert.Equal(t, first.Nodes, again.Nodes)
		assert.Equal(t, first.Edges, again.Edges)
	}
}

func TestEvolutionGraph_Subgraph_UnknownRootYieldsSingleton(t *testing.T) {
	graph := NewEvolutionGraph()
	unknown := valueobjects.NewCapsuleID()

	sub := graph.Subgraph(unknown, DirectionBoth, 0, 0)

	assert.Equal(t, []valueobjects.CapsuleID{unknown}, sub.Nodes)
	assert.Empty(t, sub.Edges)
}

func TestEvolutionGraph_Overview(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 4)

	// ids[0] -> ids[1] -> ids[2]; ids[3] refutes ids[2]
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[1], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[1], ids[2], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[2], ids[3], valueobjects.RelationRefutedBy)))

	overview := graph.Overview()

	assert.Equal(t, 4, overview.NodeCount)
	assert.Equal(t, 3, overview.EdgeCount)
	assert.Equal(t, 2, overview.EdgesByType["derived_from"])
	assert.Equal(t, 1, overview.EdgesByType["refuted_by"])
	// Critique edges do not affect root/leaf classification
	assert.ElementsMatch(t, []valueobjects.CapsuleID{ids[0], ids[3]}, overview.RootCapsules)
	assert.ElementsMatch(t, []valueobjects.CapsuleID{ids[2], ids[3]}, overview.LeafCapsules)
}

func TestReconstructEvolutionGraph_ReplaysCleanly(t *testing.T) {
	graph := NewEvolutionGraph()
	ids := newCapsuleIDs(t, 3)
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[0], ids[1], valueobjects.RelationDerivedFrom)))
	require.NoError(t, graph.AddRelation(mustRelation(t, ids[1], ids[2], valueobjects.RelationSupersededBy)))

	rebuilt, err := ReconstructEvolutionGraph(graph.Edges())

	require.NoError(t, err)
	assert.Equal(t, graph.Edges(), rebuilt.Edges())
}

func TestEvolutionGraph_RandomDAGNeverAcceptsClosingEdge(t *testing.T) {
	ancestry := []valueobjects.RelationType{
		valueobjects.RelationDerivedFrom,
		valueobjects.RelationForkedFrom,
		valueobjects.RelationMergedFrom,
	}

	for _, seed := range []int64{1, 7, 42, 1337} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewSource(seed))
			const n = 12
			ids := newCapsuleIDs(t, n)
			graph := NewEvolutionGraph()

			// Edges drawn forward along a fixed topological order can
			// never close a cycle, so every insert must succeed.
			adjacency := make([][]int, n)
			for e := 0; e < 3*n; e++ {
				i := rng.Intn(n - 1)
				j := i + 1 + rng.Intn(n-1-i)
				relType := ancestry[rng.Intn(len(ancestry))]
				require.NoError(t, graph.AddRelation(mustRelation(t, ids[i], ids[j], relType)))
				adjacency[i] = append(adjacency[i], j)
			}
			edgeCount := graph.EdgeCount()

			// Independent reachability over the same edge set
			reaches := func(from, to int) bool {
				visited := make([]bool, n)
				visited[from] = true
				queue := []int{from}
				for len(queue) > 0 {
					cur := queue[0]
					queue = queue[1:]
					for _, next := range adjacency[cur] {
						if next == to {
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

			// Every back edge along an existing derivation path must be
			// rejected without mutating the graph.
			for u := 0; u < n; u++ {
				for v := 0; v < n; v++ {
					if u == v || !reaches(u, v) {
						continue
					}
					err := graph.AddRelation(mustRelation(t, ids[v], ids[u], ancestry[rng.Intn(len(ancestry))]))
					require.Error(t, err)
					assert.True(t, pkgerrors.IsCycleDetected(err))
				}
			}
			assert.Equal(t, edgeCount, graph.EdgeCount())
		})
	}
}
