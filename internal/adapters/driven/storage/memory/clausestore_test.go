package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

func TestClauseStore_SaveContract_AssignsIDs(t *testing.T) {
	store := NewClauseStore()
	ctx := context.Background()

	first := &domain.Contract{Title: "A", Text: "text"}
	second := &domain.Contract{Title: "B", Text: "text"}
	require.NoError(t, store.SaveContract(ctx, first))
	require.NoError(t, store.SaveContract(ctx, second))

	assert.Equal(t, domain.ContractID(1), first.ID)
	assert.Equal(t, domain.ContractID(2), second.ID)
	assert.Equal(t, domain.StatusPending, first.Status)
}

func TestClauseStore_SaveClauses_DuplicateSegmentAllOrNothing(t *testing.T) {
	store := NewClauseStore()
	ctx := context.Background()

	contract := &domain.Contract{Title: "A", Text: "text"}
	require.NoError(t, store.SaveContract(ctx, contract))

	_, err := store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "dup", Text: "first"},
	})
	require.NoError(t, err)

	_, err = store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "new", Text: "fine"},
		{ContractID: contract.ID, SegmentID: "dup", Text: "collides"},
	})
	require.ErrorIs(t, err, domain.ErrDuplicateClause)

	clauses, err := store.GetClauses(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, clauses, 1)
}

func TestClauseStore_UpdateEmbedding_CopiesVector(t *testing.T) {
	store := NewClauseStore()
	ctx := context.Background()

	contract := &domain.Contract{Title: "A", Text: "text"}
	require.NoError(t, store.SaveContract(ctx, contract))
	saved, err := store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Text: "clause"},
	})
	require.NoError(t, err)

	vec := []float32{1, 2, 3}
	require.NoError(t, store.UpdateEmbedding(ctx, saved[0].ID, vec))

	// Mutating the caller's slice must not reach the store.
	vec[0] = 99
	clauses, err := store.GetClauses(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, float32(1), clauses[0].Embedding[0])
}

func TestClauseStore_SaveClauses_CopiesVector(t *testing.T) {
	store := NewClauseStore()
	ctx := context.Background()

	contract := &domain.Contract{Title: "A", Text: "text"}
	require.NoError(t, store.SaveContract(ctx, contract))

	vec := []float32{1, 2, 3}
	saved, err := store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Text: "clause", Embedding: vec},
	})
	require.NoError(t, err)

	// Neither the caller's original slice nor one read back from the
	// store can mutate stored state.
	vec[0] = 99
	clauses, err := store.GetClauses(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, float32(1), clauses[0].Embedding[0])

	clauses[0].Embedding[1] = 42
	again, err := store.GetClauses(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, float32(2), again[0].Embedding[1])
	assert.Equal(t, saved[0].ID, again[0].ID)
}

func TestClauseStore_DeleteContract_Cascades(t *testing.T) {
	store := NewClauseStore()
	ctx := context.Background()

	contract := &domain.Contract{Title: "A", Text: "text"}
	require.NoError(t, store.SaveContract(ctx, contract))
	_, err := store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Text: "clause"},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteContract(ctx, contract.ID))

	_, err = store.GetContract(ctx, contract.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	clauses, err := store.GetClauses(ctx, contract.ID)
	require.NoError(t, err)
	assert.Empty(t, clauses)
}

func TestHistoryStore_NewestFirst(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	require.NoError(t, store.RecordQA(ctx, &domain.QARecord{ContractID: 1, Question: "first?"}))
	require.NoError(t, store.RecordQA(ctx, &domain.QARecord{ContractID: 1, Question: "second?"}))
	require.NoError(t, store.RecordQA(ctx, &domain.QARecord{ContractID: 2, Question: "other contract"}))

	records, err := store.ListQA(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second?", records[0].Question)
	assert.Equal(t, "first?", records[1].Question)
}
