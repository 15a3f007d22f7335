package queries

import (
	"context"
	"testing"

	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/services"
	"capsulehub/domain/core/valueobjects"
	"capsulehub/infrastructure/persistence/memory"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingCache counts lookups so tests can observe memoization
type recordingCache struct {
	items  map[string]services.Score
	hits   int
	misses int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{items: make(map[string]services.Score)}
}

func (c *recordingCache) Get(ctx context.Context, key string) (services.Score, bool) {
	score, ok := c.items[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return score, ok
}

func (c *recordingCache) Set(ctx context.Context, key string, score services.Score, ttl int) error {
	c.items[key] = score
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	delete(c.items, key)
	return nil
}

func newBundleHandler(store *memory.Store, cache *recordingCache) *GetProvenanceBundleHandler {
	return NewGetProvenanceBundleHandler(store, store, store, store, store, store, cache, 300)
}

func TestGetProvenanceBundleHandler_UnknownCapsuleIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	handler := newBundleHandler(store, newRecordingCache())

	_, err := handler.Handle(ctx, GetProvenanceBundleQuery{
		CapsuleID: valueobjects.NewCapsuleID().String(),
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err), "unknown capsule must fail, never return an empty bundle")
}

func TestGetProvenanceBundleHandler_EmptySubStoresYieldEmptyCollections(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	capsuleID := valueobjects.NewCapsuleID()
	store.SeedCapsule(capsuleID)
	handler := newBundleHandler(store, newRecordingCache())

	bundle, err := handler.Handle(ctx, GetProvenanceBundleQuery{CapsuleID: capsuleID.String()})

	require.NoError(t, err)
	assert.Empty(t, bundle.History)
	assert.NotNil(t, bundle.History)
	assert.Empty(t, bundle.Validations)
	assert.NotNil(t, bundle.Validations)
	assert.Zero(t, bundle.CitationCount)
	assert.Nil(t, bundle.Record, "unregistered capsule has no provenance record")
	assert.Nil(t, bundle.CurrentDATM)
	assert.Equal(t, []valueobjects.CapsuleID{capsuleID}, bundle.Evolution.Nodes)
}

func TestGetProvenanceBundleHandler_ComposesAllStores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	capsuleID := valueobjects.NewCapsuleID()
	ancestor := valueobjects.NewCapsuleID()
	store.SeedCapsule(capsuleID)
	store.SeedCapsule(ancestor)

	record, err := entities.NewProvenanceRecord(capsuleID, valueobjects.SourceImported, "batch-9")
	require.NoError(t, err)
	require.NoError(t, store.Register(ctx, record))

	_, err = store.AppendNext(ctx, capsuleID, "sha256:v1", "", nil)
	require.NoError(t, err)
	datm := &valueobjects.DATMInputs{Truth: 85, Goodness: 80, Beauty: 75, Intelligence: 90, Confidence: 0.85}
	_, err = store.AppendNext(ctx, capsuleID, "sha256:v2", "revised", datm)
	require.NoError(t, err)

	rel, err := entities.NewEvolutionRelation(ancestor, capsuleID, valueobjects.RelationDerivedFrom, "")
	require.NoError(t, err)
	require.NoError(t, store.AddRelation(ctx, rel))

	citation, err := entities.NewCitationRecord(capsuleID, ancestor, "", "")
	require.NoError(t, err)
	_, err = store.Cite(ctx, citation)
	require.NoError(t, err)

	validation, err := entities.NewValidationRecord(capsuleID, "lab-1", valueobjects.OutcomeConfirmed, "")
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, validation))

	handler := newBundleHandler(store, newRecordingCache())

	bundle, err := handler.Handle(ctx, GetProvenanceBundleQuery{CapsuleID: capsuleID.String()})

	require.NoError(t, err)
	require.NotNil(t, bundle.Record)
	assert.Equal(t, valueobjects.SourceImported, bundle.Record.SourceKind)
	assert.Len(t, bundle.History, 2)
	assert.Equal(t, int64(1), bundle.CitationCount)
	assert.Len(t, bundle.Validations, 1)
	assert.Equal(t, 1, bundle.Summary.Counts["confirmed"])
	assert.ElementsMatch(t, []valueobjects.CapsuleID{capsuleID, ancestor}, bundle.Evolution.Nodes)
	require.NotNil(t, bundle.CurrentDATM)
	assert.InDelta(t, 72.25, bundle.CurrentDATM.OverallScore, 1e-9)
	assert.Equal(t, "B", bundle.CurrentDATM.OverallGrade)
}

func TestGetProvenanceBundleHandler_ScoreIsMemoizedByInputs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	capsuleID := valueobjects.NewCapsuleID()
	store.SeedCapsule(capsuleID)

	datm := &valueobjects.DATMInputs{Truth: 70, Goodness: 70, Beauty: 70, Intelligence: 70, Confidence: 0.9}
	_, err := store.AppendNext(ctx, capsuleID, "sha256:v1", "", datm)
	require.NoError(t, err)

	cache := newRecordingCache()
	handler := newBundleHandler(store, cache)
	query := GetProvenanceBundleQuery{CapsuleID: capsuleID.String()}

	first, err := handler.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.misses)

	second, err := handler.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.CurrentDATM.OverallScore, second.CurrentDATM.OverallScore)

	// New sub-scores produce a new cache key; the stale entry is unreachable
	changed := &valueobjects.DATMInputs{Truth: 95, Goodness: 70, Beauty: 70, Intelligence: 70, Confidence: 0.9}
	_, err = store.AppendNext(ctx, capsuleID, "sha256:v2", "", changed)
	require.NoError(t, err)

	third, err := handler.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.misses)
	assert.Greater(t, third.CurrentDATM.OverallScore, first.CurrentDATM.OverallScore)
}

func TestGetProvenanceBundleHandler_UsesNewestVersionWithScores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	capsuleID := valueobjects.NewCapsuleID()
	store.SeedCapsule(capsuleID)

	datm := &valueobjects.DATMInputs{Truth: 60, Goodness: 60, Beauty: 60, Intelligence: 60, Confidence: 1}
	_, err := store.AppendNext(ctx, capsuleID, "sha256:v1", "", datm)
	require.NoError(t, err)
	// Newer version without sub-scores; the assessed version still governs
	_, err = store.AppendNext(ctx, capsuleID, "sha256:v2", "", nil)
	require.NoError(t, err)

	handler := newBundleHandler(store, newRecordingCache())

	bundle, err := handler.Handle(ctx, GetProvenanceBundleQuery{CapsuleID: capsuleID.String()})

	require.NoError(t, err)
	require.NotNil(t, bundle.CurrentDATM)
	assert.InDelta(t, 60.0, bundle.CurrentDATM.OverallScore, 1e-9)
}
