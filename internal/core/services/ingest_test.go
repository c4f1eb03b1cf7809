package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-systems/clausewise/internal/adapters/driven/storage/memory"
	"github.com/verdict-systems/clausewise/internal/core/domain"
)

func TestIngestService_Ingest_SegmentsAndEmbeds(t *testing.T) {
	store := memory.NewClauseStore()
	svc := NewIngestService(store, NewEmbedder(newStubEmbedding(3)))

	contract, clauses, err := svc.Ingest(context.Background(), "MSA", sampleContract)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, contract.Status)
	require.Len(t, clauses, 4)
	for _, clause := range clauses {
		assert.Equal(t, contract.ID, clause.ContractID)
		assert.True(t, clause.HasEmbedding(), "clause %s should be embedded", clause.Number)
	}

	// Stored state matches.
	stored, err := store.GetContract(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestIngestService_Ingest_EmbeddingFailureKeepsClauses(t *testing.T) {
	store := memory.NewClauseStore()
	provider := newStubEmbedding(3)
	provider.batchErr = errors.New("provider down")
	svc := NewIngestService(store, NewEmbedder(provider))

	contract, clauses, err := svc.Ingest(context.Background(), "MSA", sampleContract)
	require.NoError(t, err)

	// The insert survived; the contract is marked failed.
	assert.Equal(t, domain.StatusFailed, contract.Status)
	require.Len(t, clauses, 4)
	for _, clause := range clauses {
		assert.False(t, clause.HasEmbedding())
	}
}

func TestIngestService_Ingest_NoEmbedderStoresUnembedded(t *testing.T) {
	store := memory.NewClauseStore()
	svc := NewIngestService(store, nil)

	contract, clauses, err := svc.Ingest(context.Background(), "MSA", sampleContract)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, contract.Status)
	for _, clause := range clauses {
		assert.False(t, clause.HasEmbedding())
	}
}

func TestIngestService_Backfill_EmbedsOnlyMissing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewClauseStore()
	provider := newStubEmbedding(3)

	contract := &domain.Contract{Title: "MSA", Text: "text"}
	require.NoError(t, store.SaveContract(ctx, contract))
	saved, err := store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Text: "already embedded clause", Embedding: []float32{9, 9, 9}},
		{ContractID: contract.ID, SegmentID: "s2", Text: "needs an embedding here"},
	})
	require.NoError(t, err)

	svc := NewIngestService(store, NewEmbedder(provider))
	n, err := svc.Backfill(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	clauses, err := store.GetClauses(ctx, contract.ID)
	require.NoError(t, err)
	// The existing embedding was not recomputed.
	assert.Equal(t, []float32{9, 9, 9}, clauses[0].Embedding)
	assert.True(t, clauses[1].HasEmbedding())
	assert.Equal(t, saved[1].ID, clauses[1].ID)
}

func TestIngestService_Backfill_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewClauseStore()
	provider := newStubEmbedding(3)

	contract := &domain.Contract{Title: "MSA", Text: "text"}
	require.NoError(t, store.SaveContract(ctx, contract))
	_, err := store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Text: "needs an embedding here"},
	})
	require.NoError(t, err)

	svc := NewIngestService(store, NewEmbedder(provider))

	n, err := svc.Backfill(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	callsAfterFirst := provider.calls

	// Second run finds nothing to do and never hits the provider.
	n, err = svc.Backfill(ctx, contract.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, callsAfterFirst, provider.calls)
}

func TestIngestService_Backfill_NoEmbedder(t *testing.T) {
	svc := NewIngestService(memory.NewClauseStore(), nil)

	_, err := svc.Backfill(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
