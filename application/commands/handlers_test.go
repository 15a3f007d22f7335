package commands

import (
	"context"
	"testing"

	"capsulehub/domain/core/valueobjects"
	"capsulehub/infrastructure/messaging"
	"capsulehub/infrastructure/persistence/memory"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T, capsules ...valueobjects.CapsuleID) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for _, id := range capsules {
		store.SeedCapsule(id)
	}
	return store
}

func testPublisher() *messaging.LogPublisher {
	return messaging.NewLogPublisher(zap.NewNop())
}

func TestRegisterProvenanceHandler_RegistersAndStartsHistory(t *testing.T) {
	ctx := context.Background()
	capsuleID := valueobjects.NewCapsuleID()
	store := newTestStore(t, capsuleID)
	handler := NewRegisterProvenanceHandler(store, store, store, testPublisher(), zap.NewNop())

	result, err := handler.Handle(ctx, RegisterProvenanceCommand{
		CapsuleID:   capsuleID.String(),
		SourceKind:  "discussion",
		SourceRef:   "thread-42",
		ContentHash: "sha256:abc",
	})

	require.NoError(t, err)
	assert.Equal(t, valueobjects.SourceDiscussion, result.Record.SourceKind)
	assert.Equal(t, 1, result.InitialVersion.VersionNumber)
	assert.Equal(t, "sha256:abc", result.InitialVersion.ContentHash)

	registered, err := store.IsRegistered(ctx, capsuleID)
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestRegisterProvenanceHandler_UnknownCapsuleIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	handler := NewRegisterProvenanceHandler(store, store, store, testPublisher(), zap.NewNop())

	_, err := handler.Handle(ctx, RegisterProvenanceCommand{
		CapsuleID:   valueobjects.NewCapsuleID().String(),
		ContentHash: "sha256:abc",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRegisterProvenanceHandler_RejectsBadDATM(t *testing.T) {
	ctx := context.Background()
	capsuleID := valueobjects.NewCapsuleID()
	store := newTestStore(t, capsuleID)
	handler := NewRegisterProvenanceHandler(store, store, store, testPublisher(), zap.NewNop())

	_, err := handler.Handle(ctx, RegisterProvenanceCommand{
		CapsuleID:   capsuleID.String(),
		ContentHash: "sha256:abc",
		DATM:        &valueobjects.DATMInputs{Truth: 120, Confidence: 0.5},
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidScoreInput(err))

	// The failed command must not have left partial state behind
	registered, err := store.IsRegistered(ctx, capsuleID)
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestAddVersionHandler_AppendsSequentially(t *testing.T) {
	ctx := context.Background()
	capsuleID := valueobjects.NewCapsuleID()
	store := newTestStore(t, capsuleID)
	handler := NewAddVersionHandler(store, store, testPublisher(), zap.NewNop())

	first, err := handler.Handle(ctx, AddVersionCommand{
		CapsuleID:   capsuleID.String(),
		ContentHash: "sha256:v1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.VersionNumber)

	second, err := handler.Handle(ctx, AddVersionCommand{
		CapsuleID:     capsuleID.String(),
		ContentHash:   "sha256:v2",
		ChangeSummary: "tightened argument",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.VersionNumber)
}

func TestAddVersionHandler_UnknownCapsuleIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	handler := NewAddVersionHandler(store, store, testPublisher(), zap.NewNop())

	_, err := handler.Handle(ctx, AddVersionCommand{
		CapsuleID:   valueobjects.NewCapsuleID().String(),
		ContentHash: "sha256:v1",
	})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestAddRelationHandler_EnforcesEndpointsAndAcyclicity(t *testing.T) {
	ctx := context.Background()
	a := valueobjects.NewCapsuleID()
	b := valueobjects.NewCapsuleID()
	c := valueobjects.NewCapsuleID()
	store := newTestStore(t, a, b, c)
	handler := NewAddRelationHandler(store, store, testPublisher(), zap.NewNop())

	_, err := handler.Handle(ctx, AddRelationCommand{
		SourceCapsuleID: a.String(),
		TargetCapsuleID: b.String(),
		RelationType:    "derived_from",
	})
	require.NoError(t, err)

	_, err = handler.Handle(ctx, AddRelationCommand{
		SourceCapsuleID: b.String(),
		TargetCapsuleID: c.String(),
		RelationType:    "derived_from",
	})
	require.NoError(t, err)

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := handler.Handle(ctx, AddRelationCommand{
			SourceCapsuleID: a.String(),
			TargetCapsuleID: valueobjects.NewCapsuleID().String(),
			RelationType:    "derived_from",
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("self loop", func(t *testing.T) {
		_, err := handler.Handle(ctx, AddRelationCommand{
			SourceCapsuleID: a.String(),
			TargetCapsuleID: a.String(),
			RelationType:    "forked_from",
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsInvalidRelation(err))
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := handler.Handle(ctx, AddRelationCommand{
			SourceCapsuleID: c.String(),
			TargetCapsuleID: a.String(),
			RelationType:    "derived_from",
		})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCycleDetected(err))
	})

	t.Run("critique closing the loop is allowed", func(t *testing.T) {
		_, err := handler.Handle(ctx, AddRelationCommand{
			SourceCapsuleID: c.String(),
			TargetCapsuleID: a.String(),
			RelationType:    "refuted_by",
		})
		require.NoError(t, err)
	})
}

func TestCiteHandler_RecordsRepeatCitations(t *testing.T) {
	ctx := context.Background()
	cited := valueobjects.NewCapsuleID()
	citer := valueobjects.NewCapsuleID()
	store := newTestStore(t, cited, citer)
	handler := NewCiteHandler(store, store, testPublisher(), zap.NewNop())

	for expected := int64(1); expected <= 3; expected++ {
		result, err := handler.Handle(ctx, CiteCommand{
			CitedCapsuleID:  cited.String(),
			CitingCapsuleID: citer.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, expected, result.Count, "repeat citations are never deduplicated")
	}
}

func TestCiteHandler_ExternalCitation(t *testing.T) {
	ctx := context.Background()
	cited := valueobjects.NewCapsuleID()
	store := newTestStore(t, cited)
	handler := NewCiteHandler(store, store, testPublisher(), zap.NewNop())

	result, err := handler.Handle(ctx, CiteCommand{
		CitedCapsuleID: cited.String(),
		ExternalRef:    "doi:10.1000/xyz",
	})

	require.NoError(t, err)
	assert.True(t, result.Record.IsExternal())
	assert.Equal(t, int64(1), result.Count)
}

func TestRecordValidationHandler_AppendsRecords(t *testing.T) {
	ctx := context.Background()
	capsuleID := valueobjects.NewCapsuleID()
	store := newTestStore(t, capsuleID)
	handler := NewRecordValidationHandler(store, store, testPublisher(), zap.NewNop())

	// Same validator re-validating is allowed
	for i := 0; i < 2; i++ {
		result, err := handler.Handle(ctx, RecordValidationCommand{
			CapsuleID:         capsuleID.String(),
			ValidatorIdentity: "lab-7",
			Outcome:           "confirmed",
			EvidenceNote:      "replicated on fresh data",
		})
		require.NoError(t, err)
		assert.Equal(t, valueobjects.OutcomeConfirmed, result.Outcome)
	}

	records, err := store.List(ctx, capsuleID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
