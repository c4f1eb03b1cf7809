package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-systems/clausewise/internal/core/domain"
)

func TestAnalysisStore_SaveRisks_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	analysisStore := store.AnalysisStore()
	contract := saveContract(t, store, "MSA")

	saved, err := store.ClauseStore().SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Number: "8.1", Title: "Liability", Text: "unlimited"},
	})
	require.NoError(t, err)

	risks, err := analysisStore.SaveRisks(ctx, []domain.RiskAssessment{
		{
			ContractID:      contract.ID,
			ClauseID:        &saved[0].ID,
			ClauseReference: "Clause 8.1",
			Type:            domain.RiskLiabilityCap,
			Level:           domain.RiskHigh,
			Description:     "No cap on liability.",
			Justification:   "Clause 8.1 excludes nothing.",
			Recommendation:  "Add a cap at fees paid.",
		},
		{
			ContractID:    contract.ID,
			Type:          domain.RiskPaymentTerms,
			Level:         domain.RiskLow,
			Description:   "Net-90 terms.",
			Justification: "Longer than typical.",
		},
	})
	require.NoError(t, err)
	require.Len(t, risks, 2)
	assert.NotZero(t, risks[0].ID)
	assert.False(t, risks[0].AssessedAt.IsZero())

	listed, err := analysisStore.ListRisks(ctx, contract.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Clause-linked risk round-trips its reference; contract-level stays nil.
	require.NotNil(t, listed[0].ClauseID)
	assert.Equal(t, saved[0].ID, *listed[0].ClauseID)
	assert.Equal(t, "Clause 8.1", listed[0].ClauseReference)
	assert.Nil(t, listed[1].ClauseID)
	assert.Equal(t, domain.RiskPaymentTerms, listed[1].Type)
}

func TestAnalysisStore_ListRisks_SeverityOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	analysisStore := store.AnalysisStore()
	contract := saveContract(t, store, "MSA")

	_, err := analysisStore.SaveRisks(ctx, []domain.RiskAssessment{
		{ContractID: contract.ID, Type: domain.RiskPaymentTerms, Level: domain.RiskLow,
			Description: "low", Justification: "j"},
		{ContractID: contract.ID, Type: domain.RiskTermination, Level: domain.RiskHigh,
			Description: "high", Justification: "j"},
		{ContractID: contract.ID, Type: domain.RiskWarranty, Level: domain.RiskMedium,
			Description: "medium", Justification: "j"},
	})
	require.NoError(t, err)

	listed, err := analysisStore.ListRisks(ctx, contract.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, domain.RiskHigh, listed[0].Level)
	assert.Equal(t, domain.RiskMedium, listed[1].Level)
	assert.Equal(t, domain.RiskLow, listed[2].Level)
}

func TestAnalysisStore_Summaries_RoundTripNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	analysisStore := store.AnalysisStore()
	contract := saveContract(t, store, "MSA")

	first := &domain.ContractSummary{
		ContractID: contract.ID,
		Type:       domain.SummaryOverview,
		Role:       domain.RoleNeutral,
		Content: domain.SummaryContent{
			Summary:   "A balanced services agreement.",
			KeyPoints: []string{"Net-30", "30-day termination", "Capped liability"},
			Obligations: map[string][]string{
				"supplier": {"deliver monthly reports"},
			},
			Confidence: "high",
		},
	}
	require.NoError(t, analysisStore.SaveSummary(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &domain.ContractSummary{
		ContractID: contract.ID,
		Type:       domain.SummaryRoleSpecific,
		Role:       domain.RoleSupplier,
		Content: domain.SummaryContent{
			Summary:   "Supplier view.",
			KeyPoints: []string{"a", "b", "c"},
		},
	}
	require.NoError(t, analysisStore.SaveSummary(ctx, second))

	listed, err := analysisStore.ListSummaries(ctx, contract.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, domain.RoleSupplier, listed[0].Role)
	assert.Equal(t, domain.RoleNeutral, listed[1].Role)

	// Structured content survives the JSON column intact.
	assert.Equal(t, first.Content.KeyPoints, listed[1].Content.KeyPoints)
	assert.Equal(t, first.Content.Obligations, listed[1].Content.Obligations)
}

func TestAnalysisStore_DeleteContract_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	analysisStore := store.AnalysisStore()
	contract := saveContract(t, store, "MSA")

	_, err := analysisStore.SaveRisks(ctx, []domain.RiskAssessment{
		{ContractID: contract.ID, Type: domain.RiskPenalty, Level: domain.RiskMedium,
			Description: "d", Justification: "j"},
	})
	require.NoError(t, err)
	require.NoError(t, analysisStore.SaveSummary(ctx, &domain.ContractSummary{
		ContractID: contract.ID,
		Type:       domain.SummaryOverview,
		Role:       domain.RoleNeutral,
	}))

	require.NoError(t, store.ClauseStore().DeleteContract(ctx, contract.ID))

	risks, err := analysisStore.ListRisks(ctx, contract.ID)
	require.NoError(t, err)
	assert.Empty(t, risks)

	summaries, err := analysisStore.ListSummaries(ctx, contract.ID)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
