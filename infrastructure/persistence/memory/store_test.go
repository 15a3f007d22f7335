package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"capsulehub/domain/core/entities"
	"capsulehub/domain/core/valueobjects"
	pkgerrors "capsulehub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendNext_ContiguousNumbering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id := valueobjects.NewCapsuleID()

	for i, hash := range []string{"hash-a", "hash-b", "hash-c"} {
		version, err := store.AppendNext(ctx, id, hash, "", nil)
		require.NoError(t, err)
		assert.Equal(t, i+1, version.VersionNumber)
	}

	history, err := store.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, v := range history {
		assert.Equal(t, i+1, v.VersionNumber)
	}

	latest, ok, err := store.Latest(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, latest.VersionNumber)
	assert.Equal(t, "hash-c", latest.ContentHash)
}

func TestStore_AppendNext_ConcurrentWritersStayContiguous(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id := valueobjects.NewCapsuleID()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := store.AppendNext(ctx, id, fmt.Sprintf("hash-%d", n), "", nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := store.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, writers)
	for i, v := range history {
		assert.Equal(t, i+1, v.VersionNumber, "version numbers must be contiguous with no gaps")
	}
}

func TestStore_History_UnknownCapsuleIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	history, err := store.History(ctx, valueobjects.NewCapsuleID())

	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_Cite_CountsPerCapsule(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	cited := valueobjects.NewCapsuleID()
	other := valueobjects.NewCapsuleID()
	citer := valueobjects.NewCapsuleID()

	for i := 0; i < 5; i++ {
		record, err := entities.NewCitationRecord(cited, citer, "", "")
		require.NoError(t, err)
		_, err = store.Cite(ctx, record)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		record, err := entities.NewCitationRecord(other, valueobjects.CapsuleID{}, "doi:10.0/x", "")
		require.NoError(t, err)
		_, err = store.Cite(ctx, record)
		require.NoError(t, err)
	}

	count, err := store.Count(ctx, cited)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	count, err = store.Count(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err := store.TotalCitations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
}

func TestStore_Cite_ConcurrentCitersNeverLoseEvents(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	cited := valueobjects.NewCapsuleID()

	const citers = 100
	var wg sync.WaitGroup
	wg.Add(citers)
	for i := 0; i < citers; i++ {
		go func(n int) {
			defer wg.Done()
			record, err := entities.NewCitationRecord(cited, valueobjects.CapsuleID{}, fmt.Sprintf("ref-%d", n), "")
			assert.NoError(t, err)
			_, err = store.Cite(ctx, record)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx, cited)
	require.NoError(t, err)
	assert.Equal(t, int64(citers), count)

	records, err := store.Citations(ctx, cited)
	require.NoError(t, err)
	assert.Len(t, records, citers, "count must equal the number of ledger records")
}

func TestStore_Register_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id := valueobjects.NewCapsuleID()

	record, err := entities.NewProvenanceRecord(id, valueobjects.SourceManual, "")
	require.NoError(t, err)
	require.NoError(t, store.Register(ctx, record))

	again, err := entities.NewProvenanceRecord(id, valueobjects.SourceDiscussion, "thread-7")
	require.NoError(t, err)
	err = store.Register(ctx, again)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	stored, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, valueobjects.SourceManual, stored.SourceKind, "first registration wins")
}

func TestStore_Get_UnknownCapsuleIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_, err := store.Get(ctx, valueobjects.NewCapsuleID())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_Validations_AppendOnly(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id := valueobjects.NewCapsuleID()

	outcomes := []valueobjects.ValidationOutcome{
		valueobjects.OutcomeConfirmed,
		valueobjects.OutcomeConfirmed,
		valueobjects.OutcomeRefuted,
	}
	for _, outcome := range outcomes {
		record, err := entities.NewValidationRecord(id, "validator-1", outcome, "")
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, record))
	}

	records, err := store.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, records, 3)

	summary := entities.Summarize(id, records)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Counts["confirmed"])
	assert.Equal(t, 1, summary.Counts["refuted"])
	assert.Equal(t, 0, summary.Counts["inconclusive"])

	total, err := store.TotalValidations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestStore_CapsuleExists_SeededOnly(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	known := valueobjects.NewCapsuleID()
	store.SeedCapsule(known)

	exists, err := store.CapsuleExists(ctx, known)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.CapsuleExists(ctx, valueobjects.NewCapsuleID())
	require.NoError(t, err)
	assert.False(t, exists)
}
