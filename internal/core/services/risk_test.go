package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-systems/clausewise/internal/adapters/driven/storage/memory"
	"github.com/verdict-systems/clausewise/internal/core/domain"
)

// riskContractText is comfortably above the analysis minimum.
const riskContractText = `1 Termination
Either party may terminate with 30 days written notice, except the supplier
may terminate immediately without cause.

2.1 Limitation of Liability
Total liability is capped at one hundred pounds regardless of contract value.

3 Payment
Invoices are payable within 90 days with a 10% monthly late fee.`

// riskFixture wires a RiskAnalyzer over in-memory stores.
func riskFixture(t *testing.T, llm *stubLLM) (*RiskAnalyzer, domain.ContractID, []domain.Clause) {
	t.Helper()
	ctx := context.Background()

	store := memory.NewClauseStore()
	analyses := memory.NewAnalysisStore()

	contract := &domain.Contract{Title: "MSA", Text: riskContractText, Status: domain.StatusCompleted}
	require.NoError(t, store.SaveContract(ctx, contract))

	saved, err := store.SaveClauses(ctx, []domain.Clause{
		{ContractID: contract.ID, SegmentID: "s1", Number: "1", Title: "Termination", Text: "..."},
		{ContractID: contract.ID, SegmentID: "s2", Number: "2.1", Title: "Limitation of Liability", Text: "..."},
		{ContractID: contract.ID, SegmentID: "s3", Number: "3", Title: "Payment", Text: "..."},
	})
	require.NoError(t, err)

	return NewRiskAnalyzer(store, analyses, llm, nil), contract.ID, saved
}

// riskReply builds a one-risk JSON reply.
func riskReply(riskType, level, ref string) string {
	return fmt.Sprintf(`{"risks": [{"risk_type": %q, "risk_level": %q, "clause_reference": %q,
		"description": "A risky term.", "justification": "It is one-sided.", "recommendation": "Renegotiate."}]}`,
		riskType, level, ref)
}

func TestRiskAnalyzer_AnalyzeRisks_MatchesClauseByNumber(t *testing.T) {
	llm := &stubLLM{reply: riskReply("liability_cap", "high", "Clause 2.1")}
	svc, contractID, saved := riskFixture(t, llm)

	risks, err := svc.AnalyzeRisks(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, risks, 1)

	assert.Equal(t, domain.RiskLiabilityCap, risks[0].Type)
	assert.Equal(t, domain.RiskHigh, risks[0].Level)
	require.NotNil(t, risks[0].ClauseID)
	assert.Equal(t, saved[1].ID, *risks[0].ClauseID)
	assert.NotZero(t, risks[0].ID)

	// The request carried JSON mode and the clause structure listing.
	assert.True(t, llm.opts.JSONResponse)
	assert.Contains(t, llm.messages[1].Content, "Clause 2.1 - Limitation of Liability")
}

func TestRiskAnalyzer_AnalyzeRisks_MatchesClauseByTitle(t *testing.T) {
	llm := &stubLLM{reply: riskReply("payment_terms", "medium", "Payment")}
	svc, contractID, saved := riskFixture(t, llm)

	risks, err := svc.AnalyzeRisks(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	require.NotNil(t, risks[0].ClauseID)
	assert.Equal(t, saved[2].ID, *risks[0].ClauseID)
}

func TestRiskAnalyzer_AnalyzeRisks_UnmatchedReferenceIsContractLevel(t *testing.T) {
	llm := &stubLLM{reply: riskReply("force_majeure", "medium", "no such clause anywhere")}
	svc, contractID, _ := riskFixture(t, llm)

	risks, err := svc.AnalyzeRisks(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Nil(t, risks[0].ClauseID)
	assert.Equal(t, "no such clause anywhere", risks[0].ClauseReference)
}

func TestRiskAnalyzer_AnalyzeRisks_NormalisesTypeAndLevel(t *testing.T) {
	llm := &stubLLM{reply: riskReply("  INDEMNITY ", " High ", "Clause 1")}
	svc, contractID, _ := riskFixture(t, llm)

	risks, err := svc.AnalyzeRisks(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, domain.RiskIndemnity, risks[0].Type)
	assert.Equal(t, domain.RiskHigh, risks[0].Level)
}

func TestRiskAnalyzer_AnalyzeRisks_InvalidTypeFails(t *testing.T) {
	llm := &stubLLM{reply: riskReply("made_up_risk", "high", "Clause 1")}
	svc, contractID, _ := riskFixture(t, llm)

	_, err := svc.AnalyzeRisks(context.Background(), contractID)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestRiskAnalyzer_AnalyzeRisks_InvalidLevelFails(t *testing.T) {
	llm := &stubLLM{reply: riskReply("penalty", "severe", "Clause 3")}
	svc, contractID, _ := riskFixture(t, llm)

	_, err := svc.AnalyzeRisks(context.Background(), contractID)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestRiskAnalyzer_AnalyzeRisks_MissingJustificationFails(t *testing.T) {
	llm := &stubLLM{reply: `{"risks": [{"risk_type": "penalty", "risk_level": "low",
		"description": "A risk.", "justification": "  "}]}`}
	svc, contractID, _ := riskFixture(t, llm)

	_, err := svc.AnalyzeRisks(context.Background(), contractID)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestRiskAnalyzer_AnalyzeRisks_EmptyRisksIsValid(t *testing.T) {
	llm := &stubLLM{reply: `{"risks": []}`}
	svc, contractID, _ := riskFixture(t, llm)

	risks, err := svc.AnalyzeRisks(context.Background(), contractID)
	require.NoError(t, err)
	assert.Empty(t, risks)
}

func TestRiskAnalyzer_AnalyzeRisks_MalformedJSONFails(t *testing.T) {
	llm := &stubLLM{reply: "the contract looks risky"}
	svc, contractID, _ := riskFixture(t, llm)

	_, err := svc.AnalyzeRisks(context.Background(), contractID)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestRiskAnalyzer_AnalyzeRisks_LLMErrorWrapped(t *testing.T) {
	llm := &stubLLM{err: errors.New("rate limited")}
	svc, contractID, _ := riskFixture(t, llm)

	_, err := svc.AnalyzeRisks(context.Background(), contractID)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestRiskAnalyzer_AnalyzeRisks_ShortContractRejected(t *testing.T) {
	ctx := context.Background()
	store := memory.NewClauseStore()
	contract := &domain.Contract{Title: "stub", Text: "too short"}
	require.NoError(t, store.SaveContract(ctx, contract))

	llm := &stubLLM{reply: `{"risks": []}`}
	svc := NewRiskAnalyzer(store, memory.NewAnalysisStore(), llm, nil)

	_, err := svc.AnalyzeRisks(ctx, contract.ID)
	assert.ErrorIs(t, err, domain.ErrContractTooShort)
	assert.True(t, domain.IsInputError(err))
	assert.Empty(t, llm.messages, "LLM must not be called for too-short contracts")
}

func TestRiskAnalyzer_AnalyzeRisks_UnknownContract(t *testing.T) {
	svc := NewRiskAnalyzer(memory.NewClauseStore(), memory.NewAnalysisStore(), &stubLLM{}, nil)
	_, err := svc.AnalyzeRisks(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRiskAnalyzer_Risks_ListsHighestSeverityFirst(t *testing.T) {
	llm := &stubLLM{reply: `{"risks": [
		{"risk_type": "payment_terms", "risk_level": "low", "description": "d", "justification": "j"},
		{"risk_type": "liability_cap", "risk_level": "high", "description": "d", "justification": "j"},
		{"risk_type": "penalty", "risk_level": "medium", "description": "d", "justification": "j"}
	]}`}
	svc, contractID, _ := riskFixture(t, llm)

	_, err := svc.AnalyzeRisks(context.Background(), contractID)
	require.NoError(t, err)

	risks, err := svc.Risks(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, risks, 3)
	assert.Equal(t, domain.RiskHigh, risks[0].Level)
	assert.Equal(t, domain.RiskMedium, risks[1].Level)
	assert.Equal(t, domain.RiskLow, risks[2].Level)
}

func TestRiskAnalyzer_AnalyzeRisks_CapsLongFields(t *testing.T) {
	long := strings.Repeat("x", 5000)
	llm := &stubLLM{reply: fmt.Sprintf(`{"risks": [{"risk_type": "warranty", "risk_level": "low",
		"description": %q, "justification": "j", "recommendation": %q}]}`, long, long)}
	svc, contractID, _ := riskFixture(t, llm)

	risks, err := svc.AnalyzeRisks(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Len(t, risks[0].Description, maxRiskFieldLength)
	assert.True(t, strings.HasSuffix(risks[0].Description, "..."))
	assert.Len(t, risks[0].Recommendation, maxRiskFieldLength)
}

func TestMatchClauseReference_PrefersExactTitle(t *testing.T) {
	clauses := []domain.Clause{
		{ID: 1, Number: "5", Title: "Payment"},
		{ID: 2, Number: "5.2", Title: "Limitation of Liability"},
	}

	got := matchClauseReference("limitation of liability", clauses)
	require.NotNil(t, got)
	assert.Equal(t, domain.ClauseID(2), *got)

	// Number extraction picks the first clause-like number.
	got = matchClauseReference("see Clause 5.2 for details", clauses)
	require.NotNil(t, got)
	assert.Equal(t, domain.ClauseID(2), *got)

	assert.Nil(t, matchClauseReference("", clauses))
	assert.Nil(t, matchClauseReference("Clause 9", clauses))
}
